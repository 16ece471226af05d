package models

import "time"

// DirectMessage is a message between exactly two users. The read flag is a
// single bit because there is exactly one receiver.
type DirectMessage struct {
	ID         int       `db:"id" json:"id"`
	Content    string    `db:"content" json:"content"`
	SenderID   int       `db:"sender_id" json:"senderId"`
	ReceiverID int       `db:"receiver_id" json:"receiverId"`
	Read       bool      `db:"read" json:"read"`
	SentAt     time.Time `db:"sent_at" json:"sentAt"`
}

// GroupMessage is a message sent into a group. Per-member read state lives in
// GroupMessageRead rows, not on the message itself.
type GroupMessage struct {
	ID        int       `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	GroupID   int       `db:"group_id" json:"groupId"`
	SenderID  int       `db:"sender_id" json:"senderId"`
	SentAt    time.Time `db:"sent_at" json:"sentAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// GroupMessageRead marks one group message as seen by one user. At most one
// row exists per (message, user).
type GroupMessageRead struct {
	ID        int       `db:"id" json:"id"`
	MessageID int       `db:"message_id" json:"messageId"`
	UserID    int       `db:"user_id" json:"userId"`
	ReadAt    time.Time `db:"read_at" json:"readAt"`
}

// GroupMessageView is a group message annotated with the caller's read state.
type GroupMessageView struct {
	GroupMessage
	IsRead bool `json:"isRead"`
}
