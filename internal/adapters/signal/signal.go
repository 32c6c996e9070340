package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/app"
	"github.com/dkeye/Eden/internal/config"
	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

const (
	sendBuffer   = 32
	writeTimeout = 5 * time.Second
)

// Controller serves the party websocket: it pushes the session's party view and
// accepts profile edits.
type Controller struct {
	Orch       *app.Orchestrator
	Limiter    *RateLimiter
	readLimit  int64
	pingPeriod time.Duration
}

func NewController(o *app.Orchestrator, cfg *config.Config) *Controller {
	ctl := &Controller{
		Orch:       o,
		Limiter:    NewRateLimiter(5, 10*time.Second),
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
	}
	if ctl.pingPeriod <= 0 {
		ctl.pingPeriod = 54 * time.Second
	}
	return ctl
}

// WsSignalConn is a websocket with a bounded outbound queue.
type WsSignalConn struct {
	conn   *websocket.Conn
	send   chan core.Frame
	sid    core.SessionID
	policy app.Policy

	mu     sync.RWMutex
	closed bool
	misses atomic.Int32
}

var _ core.SignalConnection = (*WsSignalConn)(nil)

func (c *WsSignalConn) TrySend(f core.Frame) error {
	err := c.trySend(f)
	if !errors.Is(err, ErrBackpressure) {
		if err == nil {
			c.misses.Store(0)
		}
		return err
	}
	misses := int(c.misses.Add(1))
	if c.policy != nil && c.policy.OnBackPressure(c.sid, misses) == app.CloseConn {
		log.Warn().Str("module", "signal").Str("sid", string(c.sid)).Int("misses", misses).Msg("closing slow connection")
		c.Close()
	}
	return err
}

func (c *WsSignalConn) trySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleParty upgrades the request and binds the connection to the session's view of
// the party in the path.
func (ctl *Controller) HandleParty(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	room := domain.RoomID(c.Param("partyId"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(room)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &WsSignalConn{
		conn:   ws,
		send:   make(chan core.Frame, sendBuffer),
		sid:    sid,
		policy: ctl.Orch.Policy,
	}

	ctx, cancel := context.WithCancel(ctx)
	s, release := ctl.Orch.AcquireParty(c.Request.Context(), sid, room)

	go ctl.writePump(ctx, conn)
	go ctl.pushParty(ctx, conn, s)
	go func() {
		defer release()
		defer cancel()
		ctl.readPump(ctx, sid, conn)
	}()
}
