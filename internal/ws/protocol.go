package ws

import (
	"encoding/json"
	"errors"

	"messaging-service/internal/messaging"
)

// Operations a client may request over an established connection. Every
// inbound frame is answered with exactly one ack carrying the frame's seq.
const (
	OpGroupJoin      = "group:join"
	OpGroupLeave     = "group:leave"
	OpDirectSend     = "direct-message:send"
	OpDirectMarkRead = "direct-message:mark-read"
	OpGroupSend      = "group-message:send"
)

// Frame is one inbound client request.
type Frame struct {
	Op   string          `json:"op"`
	Seq  int64           `json:"seq"`
	Data json.RawMessage `json:"data"`
}

// Ack answers one Frame. Error is a stable, machine-readable reason; it never
// echoes internal error text.
type Ack struct {
	Op      string `json:"op"`
	Seq     int64  `json:"seq"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message any    `json:"message,omitempty"`
}

type directSendPayload struct {
	ReceiverID int    `json:"receiverId"`
	Content    string `json:"content"`
}

type groupSendPayload struct {
	GroupID int    `json:"groupId"`
	Content string `json:"content"`
}

type groupRoomPayload struct {
	GroupID int `json:"groupId"`
}

type markReadPayload struct {
	MessageID int `json:"messageId"`
}

func okAck(frame Frame) Ack {
	return Ack{Op: frame.Op, Seq: frame.Seq, Success: true}
}

func okAckWith(frame Frame, message any) Ack {
	return Ack{Op: frame.Op, Seq: frame.Seq, Success: true, Message: message}
}

func failAck(frame Frame, err error) Ack {
	return Ack{Op: frame.Op, Seq: frame.Seq, Success: false, Error: ackReason(frame.Op, err)}
}

// ackReason maps a dispatch failure to the fixed reason string for the
// operation. Payload problems get their own reason regardless of operation;
// everything else collapses to the per-operation failure string so internal
// detail never leaks to clients.
func ackReason(op string, err error) string {
	if errors.Is(err, messaging.ErrInvalidPayload) {
		return "Invalid message data"
	}
	switch op {
	case OpDirectSend:
		return "Failed to send message"
	case OpGroupSend:
		return "Failed to send group message"
	case OpGroupJoin:
		return "Failed to join group room"
	case OpGroupLeave:
		return "Failed to leave group room"
	case OpDirectMarkRead:
		return "Failed to mark message as read"
	default:
		return "Unsupported operation"
	}
}
