package signal

import (
	"github.com/dkeye/Eden/internal/app/party"
	"github.com/dkeye/Eden/internal/domain"
)

// Outbound message types.
const (
	TypePartyState     = "party_state"
	TypePong           = "pong"
	TypeWhoAmI         = "whoami"
	TypeProfileUpdated = "profile_updated"
	TypeRoles          = "roles"
	TypeError          = "error"
)

type PartyStateMessage struct {
	Type  string         `json:"type"`
	State party.Snapshot `json:"state"`
}

type WhoAmIMessage struct {
	Type   string        `json:"type"`
	Member *domain.User  `json:"member"`
	Room   domain.RoomID `json:"room,omitempty"`
}

type UpdateProfileRequest struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

type ProfileUpdatedMessage struct {
	Type   string         `json:"type"`
	Member *domain.Member `json:"member"`
}

type RolesMessage struct {
	Type  string        `json:"type"`
	Roles []domain.Role `json:"roles"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
