package core

// SessionID identifies one browser or terminal client (the "ct" cookie).
type SessionID string
