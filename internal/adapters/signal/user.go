package signal

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/app/profile"
	"github.com/dkeye/Eden/internal/core"
)

func (ctl *Controller) handleWhoAmI(ctx context.Context, sid core.SessionID, conn core.SignalConnection) {
	u, err := ctl.Orch.Viewer(ctx, sid)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("whoami lookup")
	}
	resp := WhoAmIMessage{Type: TypeWhoAmI, Member: u}
	if s, ok := ctl.Orch.Registry.PartyOf(sid); ok {
		resp.Room = s.RoomID()
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *Controller) handleUpdateProfile(ctx context.Context, sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p UpdateProfileRequest
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad update_profile payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if member, ok := ctl.Orch.Registry.MemberOf(sid); ok && !ctl.Limiter.Allow(member) {
		ctl.sendError(conn, "rate_limited")
		return
	}

	m, err := ctl.Orch.UpdateProfile(ctx, sid, p.Field, p.Value)
	switch {
	case errors.Is(err, profile.ErrNoViewer):
		ctl.sendError(conn, "not_logged_in")
		return
	case errors.Is(err, profile.ErrNoRoom):
		ctl.sendError(conn, "no_party")
		return
	case err != nil:
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("field", p.Field).Msg("update profile")
		ctl.sendError(conn, "update_failed")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("field", p.Field).Msg("profile updated")
	ctl.sendJSON(conn, ProfileUpdatedMessage{Type: TypeProfileUpdated, Member: m})
}

func (ctl *Controller) handleRoles(ctx context.Context, conn core.SignalConnection) {
	roles, err := ctl.Orch.RoleTemplates(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("role templates")
		ctl.sendError(conn, "roles_failed")
		return
	}
	ctl.sendJSON(conn, RolesMessage{Type: TypeRoles, Roles: roles})
}
