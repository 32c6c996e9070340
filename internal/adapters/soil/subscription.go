package soil

import (
	"context"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/core"
)

const eventBuffer = 16

// subscription decodes the payloads of one operation field into T.
type subscription[T any] struct {
	field  string
	events chan T
	done   chan struct{}
	ended  chan struct{}
	stop   func()

	mu       sync.Mutex // guards events and finished
	finished bool

	errMu sync.Mutex
	err   error

	closeOnce sync.Once
}

var _ core.Subscription[struct{}] = (*subscription[struct{}])(nil)

func newSubscription[T any](field string) *subscription[T] {
	return &subscription[T]{
		field:  field,
		events: make(chan T, eventBuffer),
		done:   make(chan struct{}),
		ended:  make(chan struct{}),
		stop:   func() {},
	}
}

func (s *subscription[T]) Events() <-chan T { return s.events }

func (s *subscription[T]) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close ends delivery and completes the operation upstream. Safe to call twice.
func (s *subscription[T]) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.stop()
		s.finish(nil)
	})
}

func (s *subscription[T]) deliver(data json.RawMessage) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		log.Error().Err(err).Str("module", "adapters.soil").Str("field", s.field).Msg("bad subscription data")
		return
	}
	raw, ok := fields[s.field]
	if !ok || string(raw) == "null" {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Error().Err(err).Str("module", "adapters.soil").Str("field", s.field).Msg("bad subscription payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	// The read pump is shared by every subscription on the socket and must not
	// wait on one consumer. A full stream loses its oldest payload.
	select {
	case s.events <- v:
		return
	default:
	}
	select {
	case <-s.events:
		log.Warn().Str("module", "adapters.soil").Str("field", s.field).Msg("slow subscriber, dropped oldest payload")
	default:
	}
	select {
	case s.events <- v:
	default:
		log.Warn().Str("module", "adapters.soil").Str("field", s.field).Msg("slow subscriber, dropped payload")
	}
}

func (s *subscription[T]) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
	close(s.events)
	close(s.ended)
}

// subscribe opens field on the shared socket. The stream is closed when ctx ends.
func subscribe[T any](ctx context.Context, c *Client, field, query string, vars map[string]any) (*subscription[T], error) {
	ws, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	s := newSubscription[T](field)
	id, err := ws.subscribe(query, vars, s)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.name, field, err)
	}
	s.stop = func() { ws.unsubscribe(id) }

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		case <-s.ended:
		}
	}()
	log.Debug().Str("module", "adapters.soil").Str("service", c.name).Str("field", field).Str("op", id).Msg("subscribed")
	return s, nil
}
