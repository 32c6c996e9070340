// Package soil is the GraphQL client for the soil backend. Queries and mutations go over
// HTTP; subscriptions share one graphql-transport-ws websocket per client.
package soil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/config"
	"github.com/dkeye/Eden/internal/core"
)

var (
	ErrNoData     = errors.New("graphql response without data")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrClosed     = errors.New("soil client closed")
)

var _ core.SoilService = (*Client)(nil)

// Client talks to one named service, e.g. "soilservice".
type Client struct {
	name    string
	httpURL string
	wsURL   string
	timeout time.Duration

	http   *http.Client
	dialer *websocket.Dialer

	mu     sync.Mutex
	ws     *wsConn
	closed bool
}

type Option func(*Client)

// WithHTTPClient replaces the default http client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

func New(name string, svc config.ServiceConfig, opts ...Option) *Client {
	timeout := svc.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		name:    name,
		httpURL: svc.HTTPURL,
		wsURL:   svc.WSURL,
		timeout: timeout,
		http:    &http.Client{},
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
			Subprotocols:     []string{subprotocol},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return c.name }

// Close tears down the subscription socket. Open subscriptions end with ErrClosed.
func (c *Client) Close() {
	c.mu.Lock()
	ws := c.ws
	c.ws = nil
	c.closed = true
	c.mu.Unlock()
	if ws != nil {
		ws.shutdown(ErrClosed)
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors"`
}

// GraphQLError is one entry of a response "errors" array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions ErrorExtension `json:"extensions"`
}

type ErrorExtension struct {
	Code string `json:"code,omitempty"`
}

func (e GraphQLError) Error() string {
	if e.Extensions.Code != "" {
		return e.Extensions.Code + ": " + e.Message
	}
	return e.Message
}

type Errors []GraphQLError

func (es Errors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// do posts one operation and decodes its data into out.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.httpURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", c.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// GraphQL servers often report errors with 4xx and a regular body.
		var gr gqlResponse
		if json.Unmarshal(raw, &gr) == nil && len(gr.Errors) > 0 {
			return gr.Errors
		}
		return fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	var gr gqlResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Errors) > 0 {
		log.Debug().Str("module", "adapters.soil").Str("service", c.name).Err(gr.Errors).Msg("graphql errors")
		return gr.Errors
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return ErrNoData
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// conn returns the shared subscription socket, dialing it on first use.
func (c *Client) conn(ctx context.Context) (*wsConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.ws != nil && !c.ws.isClosed() {
		return c.ws, nil
	}
	ws, err := dialWS(ctx, c.dialer, c.wsURL, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%s subscribe: %w", c.name, err)
	}
	c.ws = ws
	log.Info().Str("module", "adapters.soil").Str("service", c.name).Str("url", c.wsURL).Msg("subscription socket connected")
	return ws, nil
}
