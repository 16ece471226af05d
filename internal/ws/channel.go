package ws

import "strconv"

type channelKind int

const (
	channelPersonal channelKind = iota
	channelGroup
)

// ChannelKey identifies one delivery channel: a user's personal channel,
// which every session of that user is subscribed to for its whole lifetime,
// or a group channel that sessions join and leave explicitly. A tagged key
// type keeps the subscription tables type-checked instead of keyed by
// free-form strings.
type ChannelKey struct {
	kind channelKind
	id   int
}

// PersonalChannel is the channel all of a user's live sessions receive direct
// messages on.
func PersonalChannel(userID int) ChannelKey {
	return ChannelKey{kind: channelPersonal, id: userID}
}

// GroupChannel is the channel a group's messages are fanned out on.
func GroupChannel(groupID int) ChannelKey {
	return ChannelKey{kind: channelGroup, id: groupID}
}

// Kind returns "personal" or "group", used as a metric label.
func (k ChannelKey) Kind() string {
	if k.kind == channelGroup {
		return "group"
	}
	return "personal"
}

func (k ChannelKey) String() string {
	if k.kind == channelGroup {
		return "group:" + strconv.Itoa(k.id)
	}
	return "user:" + strconv.Itoa(k.id)
}
