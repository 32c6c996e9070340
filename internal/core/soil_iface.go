package core

import (
	"context"

	"github.com/dkeye/Eden/internal/domain"
)

//go:generate mockgen -destination=mock/soil_mock.go -package=mock_core . SoilService

// SoilService is the remote GraphQL backend that owns rooms and members.
// The party view only reads from it and requests mutations.
type SoilService interface {
	FindRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	FindMembers(ctx context.Context, ids []domain.MemberID) ([]domain.Member, error)
	FindRoleTemplates(ctx context.Context) ([]domain.Role, error)

	EnterRoom(ctx context.Context, room domain.RoomID, member domain.MemberID) error
	UpdateMember(ctx context.Context, in UpdateMemberInput) (*domain.Member, error)

	RoomUpdated(ctx context.Context, id domain.RoomID) (Subscription[domain.Room], error)
	MemberUpdated(ctx context.Context, ids []domain.MemberID) (Subscription[domain.Member], error)
}

// Subscription is a live push stream. Events is closed when the stream ends;
// Err reports why it ended (nil after Close or a server-side complete).
type Subscription[T any] interface {
	Events() <-chan T
	Err() error
	Close()
}

type SkillInput struct {
	ID    domain.SkillID `json:"id"`
	Level string         `json:"level"`
}

// UpdateMemberInput is the full profile sent by updateMember.
// Nil Bio and MemberRole are sent as null.
type UpdateMemberInput struct {
	ID         domain.MemberID `json:"_id"`
	ServerID   []string        `json:"serverID"`
	Skills     []SkillInput    `json:"skills"`
	Bio        *string         `json:"bio"`
	MemberRole *domain.RoleID  `json:"memberRole"`
}
