package models

import "time"

// Group is a named multi-user conversation.
type Group struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedBy   int       `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// GroupMember records persisted membership of a user in a group,
// independent of any live connection.
type GroupMember struct {
	ID       int       `db:"id" json:"id"`
	GroupID  int       `db:"group_id" json:"groupId"`
	UserID   int       `db:"user_id" json:"userId"`
	IsAdmin  bool      `db:"is_admin" json:"isAdmin"`
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
}

// GroupMemberDetail joins a membership row with its user.
type GroupMemberDetail struct {
	GroupMember
	User UserRef `json:"user"`
}

// GroupDetail is a group with its member list.
type GroupDetail struct {
	Group
	Members []GroupMemberDetail `json:"members"`
}
