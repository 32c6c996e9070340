package signal

import "github.com/dkeye/Eden/internal/core"

func (ctl *Controller) handlePing(conn core.SignalConnection) {
	ctl.sendJSON(conn, struct {
		Type string `json:"type"`
	}{
		Type: TypePong,
	})
}
