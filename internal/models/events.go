package models

// Realtime event names delivered over live connections.
const (
	EventDirectMessageSent     = "direct-message:sent"
	EventDirectMessageReceived = "direct-message:received"
	EventGroupMessageReceived  = "group-message:received"
)

// DirectMessageEvent is fanned out to a user's personal channel.
type DirectMessageEvent struct {
	Event   string         `json:"event"`
	Message *DirectMessage `json:"message"`
}

// GroupMessageEvent is fanned out to a group channel.
type GroupMessageEvent struct {
	Event   string        `json:"event"`
	Message *GroupMessage `json:"message"`
}
