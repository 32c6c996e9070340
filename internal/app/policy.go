package app

import "github.com/dkeye/Eden/internal/core"

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	CloseConn
)

// Policy decides what happens to a client whose send queue is full. misses counts
// consecutive dropped frames.
type Policy interface {
	OnBackPressure(sid core.SessionID, misses int) BackpressureAction
}

// SimplePolicy drops frames and gives up on the connection after MaxMisses in a row.
// Party state is latest-wins, so a dropped frame is repaired by the next one.
type SimplePolicy struct {
	MaxMisses int
}

func (p SimplePolicy) OnBackPressure(_ core.SessionID, misses int) BackpressureAction {
	if p.MaxMisses > 0 && misses >= p.MaxMisses {
		return CloseConn
	}
	return DropFrame
}
