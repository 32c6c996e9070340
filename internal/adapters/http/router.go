package http

import (
	"context"
	"html/template"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/adapters/signal"
	"github.com/dkeye/Eden/internal/app"
	"github.com/dkeye/Eden/internal/config"
	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

const (
	clientTokenCookie = "ct"
	sessionName       = "EdenSessions"
	sessionMemberKey  = "member"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(clientTokenCookie)
		if token == "" {
			token = genClientToken()
			c.SetCookie(clientTokenCookie, token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// RestoreLoginMiddleware rebinds the member kept in the cookie session when the
// registry does not know the client token, e.g. after a restart.
func RestoreLoginMiddleware(orch *app.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := sessionID(c)
		if _, ok := orch.Registry.MemberOf(sid); ok {
			c.Next()
			return
		}
		session := sessions.Default(c)
		raw, _ := session.Get(sessionMemberKey).(string)
		if raw == "" {
			c.Next()
			return
		}
		id, err := domain.ParseMemberID(raw)
		if err == nil {
			_, err = orch.Login(c.Request.Context(), sid, id)
		}
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("sid", string(sid)).Msg("dropping stale login")
			session.Delete(sessionMemberKey)
			_ = session.Save()
		}
		c.Next()
	}
}

func sessionID(c *gin.Context) core.SessionID {
	return core.SessionID(c.GetString("client_token"))
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())
	r.Use(RestoreLoginMiddleware(orch))

	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templates, "templates/*.tmpl")))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &handlers{orch: orch, settle: 2 * time.Second}
	r.GET("/party/:partyId", h.partyPage)

	api := r.Group("/api")
	api.POST("/login", h.login)
	api.POST("/logout", h.logout)
	api.GET("/me", h.me)
	api.GET("/party/:partyId", h.party)
	api.POST("/profile", h.updateProfile)
	api.GET("/roles", h.roles)

	ctrl := signal.NewController(orch, cfg)
	api.GET("/ws/party/:partyId", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws party endpoint hit")
		ctrl.HandleParty(ctx, c)
	})

	return r
}
