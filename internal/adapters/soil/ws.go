package soil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	subprotocol  = "graphql-transport-ws"
	writeWait    = 5 * time.Second
	sendBuffer   = 64
	readLimit    = 1 << 20
	typeInit     = "connection_init"
	typeAck      = "connection_ack"
	typePing     = "ping"
	typePong     = "pong"
	typeSub      = "subscribe"
	typeNext     = "next"
	typeError    = "error"
	typeComplete = "complete"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrNotAcked     = errors.New("connection not acknowledged")
)

type envelope struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type nextPayload struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors"`
}

// sink receives the frames of one operation. Both methods run on the read pump.
type sink interface {
	deliver(data json.RawMessage)
	finish(err error)
}

// wsConn multiplexes subscriptions over one socket.
type wsConn struct {
	conn   *websocket.Conn
	send   chan []byte
	cancel context.CancelFunc

	mu     sync.Mutex
	subs   map[string]sink
	closed bool
	err    error
}

func dialWS(ctx context.Context, d *websocket.Dialer, url string, timeout time.Duration) (*wsConn, error) {
	conn, _, err := d.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(readLimit)

	if err := handshake(conn, timeout); err != nil {
		_ = conn.Close()
		return nil, err
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	c := &wsConn{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		cancel: cancel,
		subs:   make(map[string]sink),
	}
	go c.writePump(pumpCtx)
	go c.readPump()
	return c, nil
}

func handshake(conn *websocket.Conn, timeout time.Duration) error {
	init, _ := json.Marshal(envelope{Type: typeInit, Payload: json.RawMessage(`{}`)})
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, init); err != nil {
		return fmt.Errorf("connection_init: %w", err)
	}
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("await ack: %w", err)
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("await ack: %w", err)
		}
		switch env.Type {
		case typeAck:
			return conn.SetReadDeadline(time.Time{})
		case typePing:
			pong, _ := json.Marshal(envelope{Type: typePong})
			_ = conn.WriteMessage(websocket.TextMessage, pong)
		default:
			return fmt.Errorf("%w: got %q", ErrNotAcked, env.Type)
		}
	}
}

func (c *wsConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *wsConn) trySend(env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// subscribe registers s and starts the operation on the server.
func (c *wsConn) subscribe(query string, vars map[string]any, s sink) (string, error) {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return "", fmt.Errorf("encode subscribe: %w", err)
	}
	id := uuid.NewString()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	c.subs[id] = s
	c.mu.Unlock()

	if err := c.trySend(envelope{ID: id, Type: typeSub, Payload: payload}); err != nil {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
		return "", err
	}
	return id, nil
}

// unsubscribe stops delivery for id and tells the server, if the socket is still up.
func (c *wsConn) unsubscribe(id string) {
	c.mu.Lock()
	_, ok := c.subs[id]
	delete(c.subs, id)
	c.mu.Unlock()
	if !ok {
		return
	}
	if err := c.trySend(envelope{ID: id, Type: typeComplete}); err != nil && !errors.Is(err, ErrClosed) {
		log.Warn().Err(err).Str("module", "adapters.soil").Str("op", id).Msg("complete not sent")
	}
}

func (c *wsConn) take(id string) (sink, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.subs[id]
	delete(c.subs, id)
	return s, ok
}

func (c *wsConn) lookup(id string) (sink, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.subs[id]
	return s, ok
}

// shutdown closes the socket and ends every open operation with err.
func (c *wsConn) shutdown(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.err = err
	subs := c.subs
	c.subs = make(map[string]sink)
	close(c.send)
	c.mu.Unlock()

	c.cancel()
	_ = c.conn.Close()
	for _, s := range subs {
		s.finish(err)
	}
}

func (c *wsConn) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.shutdown(err)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.soil").Msg("writePump write error")
				c.shutdown(err)
				return
			}
		}
	}
}

func (c *wsConn) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.isClosed() {
				log.Error().Err(err).Str("module", "adapters.soil").Msg("readPump read error")
			}
			c.shutdown(err)
			return
		}
		c.handle(data)
	}
}

func (c *wsConn) handle(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "adapters.soil").Msg("bad frame")
		return
	}

	switch env.Type {
	case typePing:
		_ = c.trySend(envelope{Type: typePong})
	case typePong, typeAck:
	case typeNext:
		s, ok := c.lookup(env.ID)
		if !ok {
			return
		}
		var p nextPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Error().Err(err).Str("module", "adapters.soil").Str("op", env.ID).Msg("bad next payload")
			return
		}
		if len(p.Errors) > 0 {
			log.Warn().Err(p.Errors).Str("module", "adapters.soil").Str("op", env.ID).Msg("next carried errors")
		}
		if len(p.Data) > 0 && string(p.Data) != "null" {
			s.deliver(p.Data)
		}
	case typeError:
		s, ok := c.take(env.ID)
		if !ok {
			return
		}
		var errs Errors
		if err := json.Unmarshal(env.Payload, &errs); err != nil || len(errs) == 0 {
			errs = Errors{{Message: "subscription error"}}
		}
		s.finish(errs)
	case typeComplete:
		if s, ok := c.take(env.ID); ok {
			s.finish(nil)
		}
	default:
		log.Warn().Str("module", "adapters.soil").Str("type", env.Type).Msg("unknown frame")
	}
}
