package signal

import (
	"context"
	"sync"

	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

type idleSub[T any] struct{ ch chan T }

func (s *idleSub[T]) Events() <-chan T { return s.ch }
func (s *idleSub[T]) Err() error       { return nil }
func (s *idleSub[T]) Close()           {}

// stubSoil serves one room with m1 and m2 and records mutations.
type stubSoil struct {
	mu      sync.Mutex
	updates []core.UpdateMemberInput
	failUpd error
}

func (s *stubSoil) FindRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	return &domain.Room{ID: id, Members: []domain.MemberRef{{ID: "m1"}, {ID: "m2"}}}, nil
}

func (s *stubSoil) FindMembers(_ context.Context, ids []domain.MemberID) ([]domain.Member, error) {
	out := make([]domain.Member, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Member{ID: id, DiscordName: "name-" + string(id)})
	}
	return out, nil
}

func (s *stubSoil) FindRoleTemplates(context.Context) ([]domain.Role, error) {
	return []domain.Role{{ID: "dev", Title: "Developer"}}, nil
}

func (s *stubSoil) EnterRoom(context.Context, domain.RoomID, domain.MemberID) error { return nil }

func (s *stubSoil) UpdateMember(_ context.Context, in core.UpdateMemberInput) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpd != nil {
		return nil, s.failUpd
	}
	s.updates = append(s.updates, in)
	m := &domain.Member{ID: in.ID}
	if in.Bio != nil {
		m.Bio = *in.Bio
	}
	return m, nil
}

func (s *stubSoil) RoomUpdated(context.Context, domain.RoomID) (core.Subscription[domain.Room], error) {
	return &idleSub[domain.Room]{ch: make(chan domain.Room)}, nil
}

func (s *stubSoil) MemberUpdated(context.Context, []domain.MemberID) (core.Subscription[domain.Member], error) {
	return &idleSub[domain.Member]{ch: make(chan domain.Member)}, nil
}
