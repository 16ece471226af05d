package messaging

// Broadcaster is the delivery side of the fan-out engine: best-effort
// publication to the live connections subscribed to a channel. A failed or
// absent recipient never fails the send that triggered the broadcast.
type Broadcaster interface {
	// PublishToUser delivers the event to every live session on the user's
	// personal channel.
	PublishToUser(userID int, event any)
	// PublishToGroup delivers the event to every live session on the group
	// channel except the one identified by excludeConnID (empty to exclude
	// nobody).
	PublishToGroup(groupID int, event any, excludeConnID string)
}

// NopBroadcaster drops every event. Used when the realtime layer is absent,
// such as in handler tests.
type NopBroadcaster struct{}

func (NopBroadcaster) PublishToUser(int, any)          {}
func (NopBroadcaster) PublishToGroup(int, any, string) {}
