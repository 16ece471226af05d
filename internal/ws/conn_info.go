package ws

import "time"

// ConnInfo carries per-connection metadata for logging, metrics, and audit
// events.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
