package domain

import "time"

// Head is the latest observed block on one chain.
type Head struct {
	ChainID   uint64
	Number    uint64
	Hash      string
	Timestamp time.Time
}

// Age returns how long ago the head was observed.
func (h Head) Age() time.Duration {
	return time.Since(h.Timestamp)
}

// ConnectionState describes a chain watcher's connection.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnected
	StatePolling
)

// String returns the state name.
func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StatePolling:
		return "polling"
	default:
		return "disconnected"
	}
}
