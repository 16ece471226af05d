package models

import "time"

// DirectUnread aggregates unread direct messages from one sender.
type DirectUnread struct {
	SenderID        int       `json:"senderId"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	UnreadCount     int       `json:"unreadCount"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
}

// GroupUnread aggregates unread messages in one group for one user.
type GroupUnread struct {
	GroupID         int       `json:"groupId"`
	GroupName       string    `json:"groupName"`
	UnreadCount     int       `json:"unreadCount"`
	LastSender      UserRef   `json:"lastSender"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
}

// UnreadSummary merges direct and group unread sources for a user.
type UnreadSummary struct {
	Count         int            `json:"count"`
	DirectUnreads []DirectUnread `json:"directUnreads"`
	GroupUnreads  []GroupUnread  `json:"groupUnreads"`
}

// Conversation is the per-participant projection of a user's direct message
// history: the latest message plus the receiver-side unread count.
type Conversation struct {
	UserID          int       `json:"userId"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
}

// ConversationRow is the raw store row the conversation projection is built
// from: one direct message joined with both participants' user records.
type ConversationRow struct {
	DirectMessage
	Sender   UserRef `json:"sender"`
	Receiver UserRef `json:"receiver"`
}

// GroupUnreadRow is one unread group message joined with its group name and
// sender, the raw input to the group side of the unread summary.
type GroupUnreadRow struct {
	GroupMessage
	GroupName string  `db:"group_name" json:"groupName"`
	Sender    UserRef `json:"sender"`
}
