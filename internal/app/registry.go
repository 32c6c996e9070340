package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/app/party"
	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

type sessionEntry struct {
	Member   domain.MemberID
	Party    *party.Sync
	Cancel   context.CancelFunc
	Refs     int
	Failures *party.FailureRecord
}

// Registry tracks who is logged in on each session and which party view it holds.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.SessionID]*sessionEntry)}
}

// entry must be called with mu held for writing.
func (r *Registry) entry(sid core.SessionID) *sessionEntry {
	e, ok := r.sessions[sid]
	if !ok {
		e = &sessionEntry{Failures: party.NewFailureRecord()}
		r.sessions[sid] = e
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("created session")
	}
	return e
}

func (r *Registry) Login(sid core.SessionID, member domain.MemberID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(sid).Member = member
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("member", string(member)).Msg("logged in")
}

func (r *Registry) Logout(sid core.SessionID) domain.MemberID {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return ""
	}
	prev := e.Member
	e.Member = ""
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("member", string(prev)).Msg("logged out")
	return prev
}

func (r *Registry) MemberOf(sid core.SessionID) (domain.MemberID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.Member == "" {
		return "", false
	}
	return e.Member, true
}

// PartyOf returns the running party view of the session.
func (r *Registry) PartyOf(sid core.SessionID) (*party.Sync, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.Party == nil {
		return nil, false
	}
	return e.Party, true
}

// AcquireParty takes a reference on the session's view of room. start is called,
// with mu held, only when a new view is needed; a view of another room is cancelled.
func (r *Registry) AcquireParty(
	sid core.SessionID,
	room domain.RoomID,
	start func(f *party.FailureRecord) (*party.Sync, context.CancelFunc),
) *party.Sync {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entry(sid)
	if e.Party != nil && e.Party.RoomID() == room && !stopped(e.Party) {
		e.Refs++
		return e.Party
	}
	if e.Cancel != nil {
		e.Cancel()
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(e.Party.RoomID())).Msg("left party view")
	}
	e.Party, e.Cancel = start(e.Failures)
	e.Refs = 1
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("bound party view")
	return e.Party
}

// ReleaseParty drops one reference on s and stops it when nobody holds it.
func (r *Registry) ReleaseParty(sid core.SessionID, s *party.Sync) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.Party != s {
		return
	}
	e.Refs--
	if e.Refs > 0 {
		return
	}
	e.Cancel()
	e.Party, e.Cancel, e.Refs = nil, nil, 0
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(s.RoomID())).Msg("released party view")
}

// Unbind forgets the session and stops its party view.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

// Sessions returns the ids currently logged in as member.
func (r *Registry) Sessions(member domain.MemberID) []core.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SessionID, 0)
	for sid, e := range r.sessions {
		if e.Member == member {
			out = append(out, sid)
		}
	}
	return out
}

func stopped(s *party.Sync) bool {
	select {
	case <-s.Done():
		return true
	default:
		return false
	}
}
