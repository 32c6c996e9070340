package tui

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/adapters/signal"
	"github.com/dkeye/Eden/internal/domain"
)

// Conn is the party connection the model drives.
type Conn interface {
	Send(v any) error
	Recv() (any, error)
	Close() error
}

// Client talks to a party server as one browser-like session.
type Client struct {
	base *url.URL
	http *http.Client
}

func NewClient(server string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{base: base, http: &http.Client{Jar: jar}}, nil
}

// Login binds member to the client's session.
func (c *Client) Login(ctx context.Context, member domain.MemberID) (*domain.User, error) {
	body, err := json.Marshal(map[string]string{"member_id": string(member)})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.String()+"/api/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login %s: %s", member, resp.Status)
	}
	var out struct {
		Member *domain.User `json:"member"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("login response: %w", err)
	}
	return out.Member, nil
}

// Open dials the party websocket with the session cookies.
func (c *Client) Open(ctx context.Context, room domain.RoomID) (Conn, error) {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/api/ws/party/" + url.PathEscape(string(room))
	dialer := *websocket.DefaultDialer
	dialer.Jar = c.http.Jar
	ws, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial party %s: %w", room, err)
	}
	log.Debug().Str("module", "tui.client").Str("room", string(room)).Msg("party socket open")
	return &wsConn{ws: ws}, nil
}

type wsConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *wsConn) Recv() (any, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	return decodeFrame(data)
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.ws.Close()
}

// decodeFrame maps a server frame to its message struct. Unknown types decode to nil.
func decodeFrame(data []byte) (any, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	var v any
	switch env.Type {
	case signal.TypePartyState:
		v = &signal.PartyStateMessage{}
	case signal.TypeProfileUpdated:
		v = &signal.ProfileUpdatedMessage{}
	case signal.TypeRoles:
		v = &signal.RolesMessage{}
	case signal.TypeWhoAmI:
		v = &signal.WhoAmIMessage{}
	case signal.TypeError:
		v = &signal.ErrorMessage{}
	default:
		return nil, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

