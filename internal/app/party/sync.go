// Package party keeps the live view of one onboarding party: who is in the room, their
// enriched profiles, and the viewer's own enrollment. One goroutine owns all of it.
package party

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

var ErrStopped = errors.New("party sync stopped")

const eventBuffer = 64

// MemberObserver is told about every pushed member record.
type MemberObserver interface {
	Observe(m domain.Member)
}

// Snapshot is an immutable copy of the view state.
type Snapshot struct {
	RoomID      domain.RoomID     `json:"room_id"`
	Known       bool              `json:"known"`
	MemberIDs   []domain.MemberID `json:"member_ids"`
	Members     []domain.Member   `json:"members"`
	Viewer      *domain.User      `json:"viewer,omitempty"`
	RoomMissing bool              `json:"room_missing"`
	MissingWhy  string            `json:"missing_why,omitempty"`
	Version     uint64            `json:"version"`
}

// IsMember reports whether the viewer is in the derived member list.
func (s Snapshot) IsMember() bool {
	return s.Viewer != nil && core.ContainsMember(s.MemberIDs, s.Viewer.ID)
}

type Option func(*Sync)

func WithFailureRecord(f *FailureRecord) Option {
	return func(s *Sync) {
		if f != nil {
			s.failures = f
		}
	}
}

func WithObserver(o MemberObserver) Option {
	return func(s *Sync) { s.observer = o }
}

// Sync is the room sync view. Build it with New and drive it with Run.
type Sync struct {
	soil     core.SoilService
	roomID   domain.RoomID
	failures *FailureRecord
	observer MemberObserver
	logger   zerolog.Logger

	events chan event
	done   chan struct{}
	wg     conc.WaitGroup

	// loop-owned
	viewer       *domain.User
	fetched      *domain.Room
	fetchFailed  bool
	pushed       *domain.Room
	ids          []domain.MemberID
	known        bool
	cache        *core.MemberCache
	memberGen    uint64
	memberIDs    []domain.MemberID
	memberCancel context.CancelFunc
	enrolling    bool
	enrolledAs   domain.MemberID
	enriching    bool
	enrichedFor  []domain.MemberID
	pushedDuring map[domain.MemberID]domain.Member
	version      uint64

	snapMu   sync.RWMutex
	snap     Snapshot
	watchers map[int]chan Snapshot
	nextW    int
	stopped  bool
}

func New(soil core.SoilService, roomID domain.RoomID, viewer *domain.User, opts ...Option) *Sync {
	s := &Sync{
		soil:     soil,
		roomID:   roomID,
		failures: NewFailureRecord(),
		viewer:   viewer,
		events:   make(chan event, eventBuffer),
		done:     make(chan struct{}),
		cache:    core.NewMemberCache(),
		watchers: make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.With().Str("module", "app.party").Str("room", string(roomID)).Logger()
	s.snap = s.buildSnapshot()
	return s
}

func (s *Sync) RoomID() domain.RoomID { return s.roomID }

// Done is closed once Run has returned and every stream is torn down.
func (s *Sync) Done() <-chan struct{} { return s.done }

// Run processes events until ctx ends. It must be called once.
func (s *Sync) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.wg.Wait()
		s.closeWatchers()
		close(s.done)
		s.logger.Debug().Msg("party sync stopped")
	}()

	if s.roomID != "" {
		s.wg.Go(func() { s.fetchRoom(ctx) })
		s.wg.Go(func() { s.streamRoom(ctx) })
	}
	s.reconcile(ctx)
	s.publish()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.apply(ev)
			s.reconcile(ctx)
			s.publish()
		}
	}
}

// SetViewer swaps the current user, e.g. after login or logout.
func (s *Sync) SetViewer(viewer *domain.User) error {
	select {
	case <-s.done:
		return ErrStopped
	default:
	}
	select {
	case s.events <- viewerChanged{viewer: viewer}:
		return nil
	case <-s.done:
		return ErrStopped
	}
}

// Snapshot returns the last published state.
func (s *Sync) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// Watch streams snapshots, starting with the current one. A slow reader skips
// intermediate states but always gets the latest. The channel closes when the
// sync stops or cancel is called.
func (s *Sync) Watch() (<-chan Snapshot, func()) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	ch := make(chan Snapshot, 1)
	if s.stopped {
		ch <- s.snap
		close(ch)
		return ch, func() {}
	}
	id := s.nextW
	s.nextW++
	s.watchers[id] = ch
	ch <- s.snap

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.snapMu.Lock()
			defer s.snapMu.Unlock()
			if w, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(w)
			}
		})
	}
}

func (s *Sync) post(ctx context.Context, ev event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

func (s *Sync) apply(ev event) {
	switch e := ev.(type) {
	case roomFetched:
		if e.err != nil {
			s.fetchFailed = true
			s.logger.Warn().Err(e.err).Msg("findRoom failed")
			return
		}
		s.fetched = e.room
	case roomPushed:
		room := e.room
		s.pushed = &room
	case memberPushed:
		if s.cache.Replace(e.member) {
			if s.enriching {
				s.pushedDuring[e.member.ID] = e.member
			}
			s.logger.Debug().Str("member", string(e.member.ID)).Msg("member replaced")
		} else {
			s.logger.Debug().Str("member", string(e.member.ID)).Msg("member update dropped, not cached")
		}
		if s.observer != nil {
			s.observer.Observe(e.member)
		}
	case membersFetched:
		s.enriching = false
		s.enrichedFor = e.ids
		pushed := s.pushedDuring
		s.pushedDuring = nil
		if e.err != nil {
			s.logger.Warn().Err(e.err).Int("ids", len(e.ids)).Msg("findMembers failed")
			return
		}
		if len(e.members) < len(e.ids) {
			s.logger.Warn().Int("ids", len(e.ids)).Int("found", len(e.members)).Msg("findMembers answered partially")
		}
		s.cache.Reset(e.members, s.ids)
		// Pushes that arrived while the fetch was in flight are newer than its answer.
		for _, m := range pushed {
			s.cache.Replace(m)
		}
	case enrolled:
		s.enrolling = false
		if e.err != nil {
			s.failures.Record(s.roomID, e.err)
			s.logger.Warn().Err(e.err).Str("member", string(e.member)).Msg("enterRoom failed, room marked missing")
			return
		}
		s.enrolledAs = e.member
		s.logger.Info().Str("member", string(e.member)).Msg("entered room")
	case streamEnded:
		if e.err != nil {
			s.logger.Warn().Err(e.err).Str("stream", e.stream).Uint64("gen", e.gen).Msg("stream ended")
			return
		}
		s.logger.Info().Str("stream", e.stream).Uint64("gen", e.gen).Msg("stream ended")
	case viewerChanged:
		s.viewer = e.viewer
	}
}

// reconcile derives membership and runs every effect whose inputs changed.
func (s *Sync) reconcile(ctx context.Context) {
	ids, known := core.DeriveMemberIDs(s.fetched, s.pushed)
	s.ids, s.known = ids, known
	if !known {
		s.maybeEnroll(ctx)
		return
	}
	if n := s.cache.Retain(ids); n > 0 {
		s.logger.Debug().Int("dropped", n).Msg("members left room")
	}
	if s.viewer != nil && s.enrolledAs == s.viewer.ID && core.ContainsMember(ids, s.viewer.ID) {
		s.enrolledAs = ""
	}

	s.syncMemberStream(ctx)
	s.maybeEnroll(ctx)
	s.maybeEnrich(ctx)
}

func (s *Sync) syncMemberStream(ctx context.Context) {
	if len(s.ids) == 0 {
		if s.memberCancel != nil {
			s.memberCancel()
			s.memberCancel = nil
			s.memberIDs = nil
		}
		return
	}
	if s.memberCancel != nil && core.SameMemberSet(s.memberIDs, s.ids) {
		return
	}
	if s.memberCancel != nil {
		s.memberCancel()
	}
	s.memberGen++
	gen := s.memberGen
	ids := slices.Clone(s.ids)
	subCtx, cancel := context.WithCancel(ctx)
	s.memberCancel = cancel
	s.memberIDs = ids

	s.wg.Go(func() { s.streamMembers(ctx, subCtx, gen, ids) })
}

func (s *Sync) maybeEnroll(ctx context.Context) {
	if s.viewer == nil || s.roomID == "" || s.enrolling {
		return
	}
	if s.failures.Failed(s.roomID) {
		return
	}
	// Wait for membership unless the room could not be fetched at all;
	// then enrollment is what tells us whether the room exists.
	if !s.known && !s.fetchFailed {
		return
	}
	me := s.viewer.ID
	if s.known && core.ContainsMember(s.ids, me) {
		return
	}
	if s.enrolledAs == me {
		return
	}

	s.enrolling = true
	room := s.roomID
	s.logger.Info().Str("member", string(me)).Msg("entering room")
	s.wg.Go(func() {
		err := s.soil.EnterRoom(ctx, room, me)
		s.post(ctx, enrolled{member: me, err: err})
	})
}

func (s *Sync) maybeEnrich(ctx context.Context) {
	if s.enriching || len(s.ids) == 0 || s.cache.Complete(s.ids) {
		return
	}
	// One fetch per id set, whatever it answered.
	if s.enrichedFor != nil && core.SameMemberSet(s.enrichedFor, s.ids) {
		return
	}
	s.enriching = true
	s.pushedDuring = make(map[domain.MemberID]domain.Member)
	ids := slices.Clone(s.ids)
	s.wg.Go(func() {
		members, err := s.soil.FindMembers(ctx, ids)
		s.post(ctx, membersFetched{ids: ids, members: members, err: err})
	})
}

func (s *Sync) fetchRoom(ctx context.Context) {
	room, err := s.soil.FindRoom(ctx, s.roomID)
	if err == nil && room == nil {
		err = errors.New("empty room")
	}
	s.post(ctx, roomFetched{room: room, err: err})
}

func (s *Sync) streamRoom(ctx context.Context) {
	sub, err := s.soil.RoomUpdated(ctx, s.roomID)
	if err != nil {
		s.post(ctx, streamEnded{stream: "roomUpdated", err: err})
		return
	}
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case room, ok := <-sub.Events():
			if !ok {
				s.post(ctx, streamEnded{stream: "roomUpdated", err: sub.Err()})
				return
			}
			s.post(ctx, roomPushed{room: room})
		}
	}
}

// streamMembers posts on the loop context but stops with subCtx, which is
// cancelled when the member set changes.
func (s *Sync) streamMembers(ctx, subCtx context.Context, gen uint64, ids []domain.MemberID) {
	sub, err := s.soil.MemberUpdated(subCtx, ids)
	if err != nil {
		if subCtx.Err() == nil {
			s.post(ctx, streamEnded{stream: "memberUpdated", gen: gen, err: err})
		}
		return
	}
	defer sub.Close()
	for {
		select {
		case <-subCtx.Done():
			return
		case m, ok := <-sub.Events():
			if !ok {
				s.post(ctx, streamEnded{stream: "memberUpdated", gen: gen, err: sub.Err()})
				return
			}
			s.post(ctx, memberPushed{member: m})
		}
	}
}

func (s *Sync) buildSnapshot() Snapshot {
	return Snapshot{
		RoomID:      s.roomID,
		Known:       s.known,
		MemberIDs:   slices.Clone(s.ids),
		Members:     s.cache.List(s.ids),
		Viewer:      s.viewer,
		RoomMissing: s.failures.Failed(s.roomID),
		MissingWhy:  missingWhy(s.failures.Cause(s.roomID)),
		Version:     s.version,
	}
}

func missingWhy(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (s *Sync) publish() {
	s.version++
	snap := s.buildSnapshot()

	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	s.snap = snap
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Sync) closeWatchers() {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	s.stopped = true
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
}
