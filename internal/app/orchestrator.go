package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/app/party"
	"github.com/dkeye/Eden/internal/app/profile"
	"github.com/dkeye/Eden/internal/app/users"
	"github.com/dkeye/Eden/internal/core"
	"github.com/dkeye/Eden/internal/domain"
)

// Orchestrator wires sessions to party views, the current user context and the
// profile gateway.
type Orchestrator struct {
	Registry *Registry
	Soil     core.SoilService
	Users    *users.Provider
	Profiles *profile.Gateway
	Policy   Policy

	// Base bounds every party view; it is the server lifetime, not a request.
	Base context.Context
}

func NewOrchestrator(base context.Context, soil core.SoilService, provider *users.Provider) *Orchestrator {
	return &Orchestrator{
		Registry: NewRegistry(),
		Soil:     soil,
		Users:    provider,
		Profiles: profile.NewGateway(soil),
		Policy:   SimplePolicy{MaxMisses: 8},
		Base:     base,
	}
}

// Viewer resolves the session's current user. Guests get nil without error.
func (o *Orchestrator) Viewer(ctx context.Context, sid core.SessionID) (*domain.User, error) {
	id, ok := o.Registry.MemberOf(sid)
	if !ok {
		return nil, nil
	}
	return o.Users.Lookup(ctx, id)
}

// AcquireParty returns the session's live view of room, starting it if needed.
// Callers must release it when they stop watching.
func (o *Orchestrator) AcquireParty(ctx context.Context, sid core.SessionID, room domain.RoomID) (*party.Sync, func()) {
	viewer, err := o.Viewer(ctx, sid)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.orchestrator").Str("sid", string(sid)).Msg("viewer lookup failed, continuing as guest")
	}
	s := o.Registry.AcquireParty(sid, room, func(f *party.FailureRecord) (*party.Sync, context.CancelFunc) {
		s := party.New(o.Soil, room, viewer, party.WithFailureRecord(f), party.WithObserver(o.Users))
		runCtx, cancel := context.WithCancel(o.Base)
		go s.Run(runCtx)
		return s, cancel
	})
	return s, func() { o.Registry.ReleaseParty(sid, s) }
}

// Login binds member to the session and tells the running party view.
func (o *Orchestrator) Login(ctx context.Context, sid core.SessionID, member domain.MemberID) (*domain.User, error) {
	u, err := o.Users.Lookup(ctx, member)
	if err != nil {
		return nil, err
	}
	o.Registry.Login(sid, member)
	o.notifyViewer(sid, u)
	return u, nil
}

// Logout unbinds the session's member and drops its cached record, so the next
// login reads it fresh.
func (o *Orchestrator) Logout(sid core.SessionID) {
	prev := o.Registry.Logout(sid)
	if prev == "" {
		return
	}
	o.Users.Forget(prev)
	o.notifyViewer(sid, nil)
}

// RefreshViewer reloads member's record and hands it to every session logged in as
// member.
func (o *Orchestrator) RefreshViewer(ctx context.Context, member domain.MemberID) (*domain.User, error) {
	o.Users.Forget(member)
	u, err := o.Users.Lookup(ctx, member)
	if err != nil {
		return nil, err
	}
	for _, sid := range o.Registry.Sessions(member) {
		o.notifyViewer(sid, u)
	}
	return u, nil
}

func (o *Orchestrator) notifyViewer(sid core.SessionID, u *domain.User) {
	s, ok := o.Registry.PartyOf(sid)
	if !ok {
		return
	}
	if err := s.SetViewer(u); err != nil {
		log.Debug().Err(err).Str("module", "app.orchestrator").Str("sid", string(sid)).Msg("viewer not delivered")
	}
}

// UpdateProfile edits one field of the session's own profile, in the context of its
// current party.
func (o *Orchestrator) UpdateProfile(ctx context.Context, sid core.SessionID, field string, value any) (*domain.Member, error) {
	var room domain.RoomID
	if s, ok := o.Registry.PartyOf(sid); ok {
		room = s.RoomID()
	}
	viewer, err := o.Viewer(ctx, sid)
	if err != nil {
		return nil, err
	}
	m, err := o.Profiles.UpdateField(ctx, room, viewer, field, value)
	if err != nil {
		return nil, err
	}
	// The gateway does not touch the viewer record; it is read back from the service.
	if _, err := o.RefreshViewer(ctx, viewer.ID); err != nil {
		log.Warn().Err(err).Str("module", "app.orchestrator").Str("member", string(viewer.ID)).Msg("viewer refresh failed")
	}
	return m, nil
}

func (o *Orchestrator) RoleTemplates(ctx context.Context) ([]domain.Role, error) {
	return o.Soil.FindRoleTemplates(ctx)
}

func (o *Orchestrator) CloseSession(sid core.SessionID) {
	o.Registry.Unbind(sid)
}
