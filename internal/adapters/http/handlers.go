package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/app"
	"github.com/dkeye/Eden/internal/app/party"
	"github.com/dkeye/Eden/internal/app/profile"
	"github.com/dkeye/Eden/internal/domain"
)

type LoginRequest struct {
	MemberID string `json:"member_id" binding:"required,max=64"`
}

type ProfileRequest struct {
	Field string `json:"field" binding:"required,max=32"`
	Value any    `json:"value"`
}

type handlers struct {
	orch *app.Orchestrator
	// settle bounds how long a request waits for the first room data.
	settle time.Duration
}

func (h *handlers) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member_id"})
		return
	}
	id, err := domain.ParseMemberID(req.MemberID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sid := sessionID(c)
	u, err := h.orch.Login(c.Request.Context(), sid, id)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Str("sid", string(sid)).Str("member", string(id)).Msg("login failed")
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown member"})
		return
	}
	session := sessions.Default(c)
	session.Set(sessionMemberKey, string(id))
	if err := session.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.JSON(http.StatusOK, gin.H{"member": u})
}

func (h *handlers) logout(c *gin.Context) {
	h.orch.Logout(sessionID(c))
	session := sessions.Default(c)
	session.Delete(sessionMemberKey)
	if err := session.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	u, err := h.orch.Viewer(c.Request.Context(), sessionID(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": u})
}

// snapshot takes a reference on the party view and waits until the room is resolved
// or settle elapses.
func (h *handlers) snapshot(c *gin.Context) party.Snapshot {
	s, release := h.orch.AcquireParty(c.Request.Context(), sessionID(c), domain.RoomID(c.Param("partyId")))
	defer release()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.settle)
	defer cancel()
	return waitSettled(ctx, s)
}

func waitSettled(ctx context.Context, s *party.Sync) party.Snapshot {
	snaps, stop := s.Watch()
	defer stop()
	last := s.Snapshot()
	for !settled(last) {
		select {
		case <-ctx.Done():
			return last
		case snap, ok := <-snaps:
			if !ok {
				return last
			}
			last = snap
		}
	}
	return last
}

func settled(s party.Snapshot) bool {
	if s.RoomID == "" || s.RoomMissing {
		return true
	}
	return s.Known && len(s.Members) == len(s.MemberIDs)
}

func (h *handlers) party(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshot(c))
}

func (h *handlers) partyPage(c *gin.Context) {
	snap := h.snapshot(c)
	c.HTML(http.StatusOK, "party.tmpl", newPartyPage(snap))
}

func (h *handlers) updateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile edit"})
		return
	}
	sid := sessionID(c)
	m, err := h.orch.UpdateProfile(c.Request.Context(), sid, req.Field, req.Value)
	switch {
	case errors.Is(err, profile.ErrNoViewer):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
	case errors.Is(err, profile.ErrNoRoom):
		c.JSON(http.StatusConflict, gin.H{"error": "no party"})
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Str("sid", string(sid)).Msg("update profile")
		c.JSON(http.StatusBadGateway, gin.H{"error": "update failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"member": m})
	}
}

func (h *handlers) roles(c *gin.Context) {
	roles, err := h.orch.RoleTemplates(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("role templates")
		c.JSON(http.StatusBadGateway, gin.H{"error": "roles unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}
