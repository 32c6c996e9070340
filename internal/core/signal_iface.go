package core

// Frame is one encoded message for a client connection.
type Frame []byte

// SignalConnection is a client push channel. Owned by the adapter; the adapter must
// Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
