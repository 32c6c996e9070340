package party

import (
	"sync"

	"github.com/dkeye/Eden/internal/domain"
)

// FailureRecord remembers rooms whose enrollment failed. It lives as long as the
// owning session, so a failed room is never retried while other rooms still are.
type FailureRecord struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]error
}

func NewFailureRecord() *FailureRecord {
	return &FailureRecord{rooms: make(map[domain.RoomID]error)}
}

func (f *FailureRecord) Record(room domain.RoomID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[room]; !ok {
		f.rooms[room] = err
	}
}

func (f *FailureRecord) Failed(room domain.RoomID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.rooms[room]
	return ok
}

// Cause returns the first error recorded for room.
func (f *FailureRecord) Cause(room domain.RoomID) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rooms[room]
}
