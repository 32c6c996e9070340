// Package profile turns a single edited field into a full updateMember request.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

const (
	FieldBio  = "bio"
	FieldRole = "role"
)

var (
	ErrNoViewer = errors.New("no current user")
	ErrNoRoom   = errors.New("no party")
)

type Gateway struct {
	soil core.SoilService
}

func NewGateway(soil core.SoilService) *Gateway {
	return &Gateway{soil: soil}
}

// UpdateField merges field=value onto the viewer's last known record and submits it.
// Values are forwarded unchecked; the backend is the only validator. The viewer
// record itself is not touched here.
func (g *Gateway) UpdateField(ctx context.Context, room domain.RoomID, viewer *domain.User, field string, value any) (*domain.Member, error) {
	if room == "" {
		return nil, ErrNoRoom
	}
	if viewer == nil {
		return nil, ErrNoViewer
	}
	in := Merge(viewer, field, value)
	log.Info().Str("module", "app.profile").Str("member", string(viewer.ID)).Str("field", field).Msg("update member")

	m, err := g.soil.UpdateMember(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", field, err)
	}
	return m, nil
}

// Merge builds the update input from the viewer with one field replaced.
// Unknown field names leave the record as it is.
func Merge(viewer *domain.User, field string, value any) core.UpdateMemberInput {
	in := core.UpdateMemberInput{
		ID:       viewer.ID,
		ServerID: viewer.ServerID,
		Skills:   make([]core.SkillInput, 0, len(viewer.Skills)),
	}
	for _, s := range viewer.Skills {
		var id domain.SkillID
		if s.Info != nil {
			id = s.Info.ID
		}
		in.Skills = append(in.Skills, core.SkillInput{ID: id, Level: s.Level})
	}
	if viewer.Bio != "" {
		bio := viewer.Bio
		in.Bio = &bio
	}
	if role := viewer.RoleID(); role != "" {
		in.MemberRole = &role
	}

	switch field {
	case FieldBio:
		in.Bio = bioValue(value)
	case FieldRole:
		in.MemberRole = roleValue(value)
	}
	return in
}

func bioValue(v any) *string {
	switch b := v.(type) {
	case nil:
		return nil
	case string:
		return &b
	case *string:
		return b
	default:
		s := fmt.Sprint(b)
		return &s
	}
}

// roleValue accepts a bare id or anything carrying an "_id".
func roleValue(v any) *domain.RoleID {
	var id domain.RoleID
	switch r := v.(type) {
	case nil:
		return nil
	case string:
		id = domain.RoleID(r)
	case domain.RoleID:
		id = r
	case domain.Role:
		id = r.ID
	case *domain.Role:
		if r == nil {
			return nil
		}
		id = r.ID
	case map[string]any:
		raw, ok := r["_id"]
		if !ok || raw == nil {
			return nil
		}
		id = domain.RoleID(fmt.Sprint(raw))
	default:
		id = domain.RoleID(fmt.Sprint(r))
	}
	return &id
}
