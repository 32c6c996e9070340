package party

import (
	"context"
	"sync"

	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

type fakeSub[T any] struct {
	ids    []domain.MemberID
	events chan T
	closed chan struct{}
	once   sync.Once
	endMu  sync.Mutex
	err    error
}

func newFakeSub[T any]() *fakeSub[T] {
	return &fakeSub[T]{events: make(chan T, 8), closed: make(chan struct{})}
}

func (f *fakeSub[T]) Events() <-chan T { return f.events }
func (f *fakeSub[T]) Close()           { f.once.Do(func() { close(f.closed) }) }

func (f *fakeSub[T]) Err() error {
	f.endMu.Lock()
	defer f.endMu.Unlock()
	return f.err
}

func (f *fakeSub[T]) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

type enterCall struct {
	room   domain.RoomID
	member domain.MemberID
}

// fakeSoil is a scripted SoilService. Room and member fetches can be held back with
// roomGate and membersGate; ids in missing are left out of member fetches.
type fakeSoil struct {
	mu          sync.Mutex
	rooms       map[domain.RoomID]*domain.Room
	profiles    map[domain.MemberID]domain.Member
	enterErr    error
	enters      []enterCall
	findRooms   int
	findMembers [][]domain.MemberID
	roomGate    chan struct{}
	membersGate chan struct{}
	missing     map[domain.MemberID]bool

	roomSubs   chan *fakeSub[domain.Room]
	memberSubs chan *fakeSub[domain.Member]
}

func newFakeSoil() *fakeSoil {
	return &fakeSoil{
		rooms:      make(map[domain.RoomID]*domain.Room),
		profiles:   make(map[domain.MemberID]domain.Member),
		roomSubs:   make(chan *fakeSub[domain.Room], 8),
		memberSubs: make(chan *fakeSub[domain.Member], 8),
	}
}

func (f *fakeSoil) setRoom(id string, members ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[domain.RoomID(id)] = makeRoom(id, members...)
}

func (f *fakeSoil) setProfile(m domain.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[m.ID] = m
}

func (f *fakeSoil) setMissing(ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing = make(map[domain.MemberID]bool, len(ids))
	for _, id := range ids {
		f.missing[domain.MemberID(id)] = true
	}
}

func (f *fakeSoil) holdMembers() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.membersGate = make(chan struct{})
	return f.membersGate
}

func (f *fakeSoil) enterCalls() []enterCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]enterCall(nil), f.enters...)
}

func (f *fakeSoil) findRoomCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findRooms
}

func (f *fakeSoil) findMembersCalls() [][]domain.MemberID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]domain.MemberID(nil), f.findMembers...)
}

func (f *fakeSoil) FindRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	f.mu.Lock()
	f.findRooms++
	gate := f.roomGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *room
	return &cp, nil
}

func (f *fakeSoil) FindMembers(ctx context.Context, ids []domain.MemberID) ([]domain.Member, error) {
	f.mu.Lock()
	f.findMembers = append(f.findMembers, ids)
	gate := f.membersGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Member, 0, len(ids))
	for _, id := range ids {
		if f.missing[id] {
			continue
		}
		if m, ok := f.profiles[id]; ok {
			out = append(out, m)
		} else {
			out = append(out, domain.Member{ID: id})
		}
	}
	return out, nil
}

func (f *fakeSoil) FindRoleTemplates(context.Context) ([]domain.Role, error) { return nil, nil }

func (f *fakeSoil) EnterRoom(_ context.Context, room domain.RoomID, member domain.MemberID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enters = append(f.enters, enterCall{room: room, member: member})
	return f.enterErr
}

func (f *fakeSoil) UpdateMember(_ context.Context, in core.UpdateMemberInput) (*domain.Member, error) {
	return &domain.Member{ID: in.ID}, nil
}

func (f *fakeSoil) RoomUpdated(context.Context, domain.RoomID) (core.Subscription[domain.Room], error) {
	sub := newFakeSub[domain.Room]()
	f.roomSubs <- sub
	return sub, nil
}

func (f *fakeSoil) MemberUpdated(_ context.Context, ids []domain.MemberID) (core.Subscription[domain.Member], error) {
	sub := newFakeSub[domain.Member]()
	sub.ids = ids
	f.memberSubs <- sub
	return sub, nil
}
