package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrMemberNotFound = errors.New("group member not found")
)

// GroupRepository abstracts group and membership persistence.
type GroupRepository interface {
	CreateGroup(ctx context.Context, name string, description *string, createdBy int) (models.Group, error)
	GetGroup(ctx context.Context, groupID int) (models.Group, error)
	UpdateGroup(ctx context.Context, groupID int, name, description *string) (models.Group, error)
	DeleteGroupCascade(ctx context.Context, groupID int) error
	ListGroupsForUser(ctx context.Context, userID int) ([]models.Group, error)
	IsMember(ctx context.Context, groupID, userID int) (bool, error)
	GetMember(ctx context.Context, groupID, userID int) (models.GroupMember, error)
	AddMember(ctx context.Context, groupID, userID int) (models.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID int) error
	CountAdmins(ctx context.Context, groupID int) (int, error)
	SetMemberAdmin(ctx context.Context, groupID, userID int, isAdmin bool) (models.GroupMember, error)
	ListMembers(ctx context.Context, groupID int) ([]models.GroupMemberDetail, error)
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// CreateGroup creates a group and its creator's admin membership in one
// transaction, so a group never exists without at least one admin member.
func (r *GroupRepo) CreateGroup(ctx context.Context, name string, description *string, createdBy int) (models.Group, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Group{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var group models.Group
	if err = tx.QueryRowxContext(ctx, `INSERT INTO groups (name, description, created_by) VALUES ($1, $2, $3) RETURNING id, name, description, created_by, created_at, updated_at`, name, description, createdBy).
		StructScan(&group); err != nil {
		return models.Group{}, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id, is_admin) VALUES ($1, $2, TRUE)`, group.ID, createdBy); err != nil {
		return models.Group{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Group{}, err
	}
	return group, nil
}

// GetGroup fetches a single group.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT id, name, description, created_by, created_at, updated_at FROM groups WHERE id=$1`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// UpdateGroup applies the non-nil fields and bumps updated_at.
func (r *GroupRepo) UpdateGroup(ctx context.Context, groupID int, name, description *string) (models.Group, error) {
	var group models.Group
	err := r.db.QueryRowxContext(ctx, `UPDATE groups SET
            name = COALESCE($2, name),
            description = COALESCE($3, description),
            updated_at = NOW()
        WHERE id=$1 RETURNING id, name, description, created_by, created_at, updated_at`, groupID, name, description).
		StructScan(&group)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// DeleteGroupCascade removes the group and everything hanging off it: read
// receipts, messages, memberships, then the group row, all-or-nothing.
func (r *GroupRepo) DeleteGroupCascade(ctx context.Context, groupID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM group_message_reads WHERE message_id IN (SELECT id FROM group_messages WHERE group_id=$1)`, groupID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM group_messages WHERE group_id=$1`, groupID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id=$1`, groupID); err != nil {
		return err
	}
	var deleted int
	if err = tx.GetContext(ctx, &deleted, `WITH del AS (DELETE FROM groups WHERE id=$1 RETURNING id) SELECT COUNT(*) FROM del`, groupID); err != nil {
		return err
	}
	if deleted == 0 {
		err = ErrGroupNotFound
		return err
	}

	return tx.Commit()
}

// ListGroupsForUser returns groups that include the user.
func (r *GroupRepo) ListGroupsForUser(ctx context.Context, userID int) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.SelectContext(ctx, &groups, `SELECT g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at
        FROM groups g INNER JOIN group_members gm ON gm.group_id = g.id
        WHERE gm.user_id=$1 ORDER BY g.created_at DESC`, userID)
	return groups, err
}

// IsMember checks current membership. Callers re-check on every send and join
// rather than caching the result for the life of a connection.
func (r *GroupRepo) IsMember(ctx context.Context, groupID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id=$1 AND user_id=$2)`, groupID, userID)
	return exists, err
}

// GetMember fetches one membership row.
func (r *GroupRepo) GetMember(ctx context.Context, groupID, userID int) (models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.GetContext(ctx, &member, `SELECT id, group_id, user_id, is_admin, joined_at FROM group_members WHERE group_id=$1 AND user_id=$2`, groupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMember{}, ErrMemberNotFound
	}
	return member, err
}

// AddMember inserts a non-admin membership.
func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID int) (models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.QueryRowxContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) RETURNING id, group_id, user_id, is_admin, joined_at`, groupID, userID).
		StructScan(&member)
	return member, err
}

// RemoveMember deletes a membership row.
func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, userID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_id=$1 AND user_id=$2`, groupID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// CountAdmins returns the number of admin members in the group.
func (r *GroupRepo) CountAdmins(ctx context.Context, groupID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM group_members WHERE group_id=$1 AND is_admin = TRUE`, groupID)
	return count, err
}

// SetMemberAdmin updates the admin flag on a membership.
func (r *GroupRepo) SetMemberAdmin(ctx context.Context, groupID, userID int, isAdmin bool) (models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.QueryRowxContext(ctx, `UPDATE group_members SET is_admin=$3 WHERE group_id=$1 AND user_id=$2 RETURNING id, group_id, user_id, is_admin, joined_at`, groupID, userID, isAdmin).
		StructScan(&member)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMember{}, ErrMemberNotFound
	}
	return member, err
}

// ListMembers returns memberships joined with their users.
func (r *GroupRepo) ListMembers(ctx context.Context, groupID int) ([]models.GroupMemberDetail, error) {
	var members []models.GroupMemberDetail
	err := r.db.SelectContext(ctx, &members, `SELECT gm.id, gm.group_id, gm.user_id, gm.is_admin, gm.joined_at,
            u.id AS "user.id", u.first_name AS "user.first_name", u.last_name AS "user.last_name", u.email AS "user.email"
        FROM group_members gm INNER JOIN users u ON u.id = gm.user_id
        WHERE gm.group_id=$1 ORDER BY gm.joined_at ASC`, groupID)
	return members, err
}
