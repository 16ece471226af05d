package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// GroupMessageRepository defines persistence for group messages and their
// per-member read receipts.
type GroupMessageRepository interface {
	CreateGroupMessage(ctx context.Context, groupID, senderID int, content string) (models.GroupMessage, error)
	GetGroupMessage(ctx context.Context, messageID int) (models.GroupMessage, error)
	ListGroupMessages(ctx context.Context, groupID, userID, limit, offset int) ([]models.GroupMessageView, error)
	UpdateGroupMessageContent(ctx context.Context, messageID int, content string) (models.GroupMessage, error)
	DeleteGroupMessage(ctx context.Context, messageID int) error
	InsertReadReceipt(ctx context.Context, messageID, userID int) (bool, error)
	ListUnreadGroupRows(ctx context.Context, userID int) ([]models.GroupUnreadRow, error)
}

// GroupMessageRepo is a sqlx-backed implementation.
type GroupMessageRepo struct {
	db *sqlx.DB
}

// NewGroupMessageRepo constructs a GroupMessageRepo.
func NewGroupMessageRepo(db *sqlx.DB) *GroupMessageRepo {
	return &GroupMessageRepo{db: db}
}

// CreateGroupMessage persists a group message.
func (r *GroupMessageRepo) CreateGroupMessage(ctx context.Context, groupID, senderID int, content string) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO group_messages (content, group_id, sender_id) VALUES ($1, $2, $3) RETURNING id, content, group_id, sender_id, sent_at, updated_at`, content, groupID, senderID).
		StructScan(&msg)
	return msg, err
}

// GetGroupMessage fetches a single message.
func (r *GroupMessageRepo) GetGroupMessage(ctx context.Context, messageID int) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.GetContext(ctx, &msg, `SELECT id, content, group_id, sender_id, sent_at, updated_at FROM group_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// ListGroupMessages returns messages in the group, newest first, each
// annotated with whether the given user has a read receipt for it.
func (r *GroupMessageRepo) ListGroupMessages(ctx context.Context, groupID, userID, limit, offset int) ([]models.GroupMessageView, error) {
	var msgs []models.GroupMessageView
	err := r.db.SelectContext(ctx, &msgs, `SELECT gm.id, gm.content, gm.group_id, gm.sender_id, gm.sent_at, gm.updated_at,
            (gmr.id IS NOT NULL) AS isread
        FROM group_messages gm
        LEFT JOIN group_message_reads gmr ON gmr.message_id = gm.id AND gmr.user_id=$2
        WHERE gm.group_id=$1
        ORDER BY gm.sent_at DESC LIMIT $3 OFFSET $4`, groupID, userID, limit, offset)
	return msgs, err
}

// UpdateGroupMessageContent replaces the content and bumps updated_at.
func (r *GroupMessageRepo) UpdateGroupMessageContent(ctx context.Context, messageID int, content string) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx, `UPDATE group_messages SET content=$2, updated_at=NOW() WHERE id=$1 RETURNING id, content, group_id, sender_id, sent_at, updated_at`, messageID, content).
		StructScan(&msg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteGroupMessage removes a message and its read receipts atomically.
func (r *GroupMessageRepo) DeleteGroupMessage(ctx context.Context, messageID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM group_message_reads WHERE message_id=$1`, messageID); err != nil {
		return err
	}
	res, execErr := tx.ExecContext(ctx, `DELETE FROM group_messages WHERE id=$1`, messageID)
	if execErr != nil {
		err = execErr
		return err
	}
	count, raErr := res.RowsAffected()
	if raErr != nil {
		err = raErr
		return err
	}
	if count == 0 {
		err = ErrMessageNotFound
		return err
	}

	return tx.Commit()
}

// InsertReadReceipt records that the user has seen the message. The conflict
// clause makes marking read idempotent; the return value reports whether a
// new row was created.
func (r *GroupMessageRepo) InsertReadReceipt(ctx context.Context, messageID, userID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO group_message_reads (message_id, user_id) VALUES ($1, $2) ON CONFLICT (message_id, user_id) DO NOTHING`, messageID, userID)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUnreadGroupRows returns, for every group the user belongs to, the
// messages that have no read receipt from the user, newest first within each
// group, joined with group name and sender.
func (r *GroupMessageRepo) ListUnreadGroupRows(ctx context.Context, userID int) ([]models.GroupUnreadRow, error) {
	var rows []models.GroupUnreadRow
	err := r.db.SelectContext(ctx, &rows, `SELECT gm.id, gm.content, gm.group_id, gm.sender_id, gm.sent_at, gm.updated_at,
            g.name AS group_name,
            s.id AS "sender.id", s.first_name AS "sender.first_name", s.last_name AS "sender.last_name", s.email AS "sender.email"
        FROM group_messages gm
        INNER JOIN groups g ON g.id = gm.group_id
        INNER JOIN group_members m ON m.group_id = gm.group_id AND m.user_id=$1
        INNER JOIN users s ON s.id = gm.sender_id
        LEFT JOIN group_message_reads gmr ON gmr.message_id = gm.id AND gmr.user_id=$1
        WHERE gmr.id IS NULL
        ORDER BY gm.group_id ASC, gm.sent_at DESC`, userID)
	return rows, err
}
