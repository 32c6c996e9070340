package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Eden/internal/app/party"
	"github.com/dkeye/Eden/internal/core"
)

// pushParty forwards every snapshot of s until ctx ends or the view stops.
func (ctl *Controller) pushParty(ctx context.Context, conn core.SignalConnection, s *party.Sync) {
	snaps, stop := s.Watch()
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				log.Info().Str("module", "signal").Str("room", string(s.RoomID())).Msg("party view stopped")
				conn.Close()
				return
			}
			ctl.sendJSON(conn, PartyStateMessage{Type: TypePartyState, State: snap})
		}
	}
}
