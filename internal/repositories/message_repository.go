package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines persistence for direct messages.
type MessageRepository interface {
	CreateDirectMessage(ctx context.Context, senderID, receiverID int, content string) (models.DirectMessage, error)
	GetDirectMessage(ctx context.Context, messageID int) (models.DirectMessage, error)
	ListConversationMessages(ctx context.Context, userID, otherUserID, limit, offset int) ([]models.DirectMessage, error)
	MarkConversationRead(ctx context.Context, userID, otherUserID int) (int64, error)
	MarkReadByID(ctx context.Context, messageID, userID int) (int64, error)
	ListUnreadForUser(ctx context.Context, userID int) ([]models.ConversationRow, error)
	ListConversationRows(ctx context.Context, userID int) ([]models.ConversationRow, error)
	DeleteDirectMessage(ctx context.Context, messageID int) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateDirectMessage inserts a direct message row. The id and sent_at are
// assigned by the store; this is the send operation's durability point.
func (r *MessageRepo) CreateDirectMessage(ctx context.Context, senderID, receiverID int, content string) (models.DirectMessage, error) {
	var msg models.DirectMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (content, sender_id, receiver_id, read) VALUES ($1, $2, $3, FALSE) RETURNING id, content, sender_id, receiver_id, read, sent_at`, content, senderID, receiverID).
		Scan(&msg.ID, &msg.Content, &msg.SenderID, &msg.ReceiverID, &msg.Read, &msg.SentAt)
	return msg, err
}

// GetDirectMessage retrieves a single message.
func (r *MessageRepo) GetDirectMessage(ctx context.Context, messageID int) (models.DirectMessage, error) {
	var msg models.DirectMessage
	err := r.db.GetContext(ctx, &msg, `SELECT id, content, sender_id, receiver_id, read, sent_at FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DirectMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// ListConversationMessages returns the direct messages between two users,
// newest first.
func (r *MessageRepo) ListConversationMessages(ctx context.Context, userID, otherUserID, limit, offset int) ([]models.DirectMessage, error) {
	var msgs []models.DirectMessage
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, content, sender_id, receiver_id, read, sent_at FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY sent_at DESC LIMIT $3 OFFSET $4`, userID, otherUserID, limit, offset)
	return msgs, err
}

// MarkConversationRead flips read=true on every unread message addressed to
// userID from otherUserID and reports how many rows changed. Zero rows is a
// success no-op.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, userID, otherUserID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read = TRUE WHERE receiver_id=$1 AND sender_id=$2 AND read = FALSE`, userID, otherUserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkReadByID flips read=true on one message, only when userID is its
// receiver. The conditional update makes the receiver check and the write a
// single statement.
func (r *MessageRepo) MarkReadByID(ctx context.Context, messageID, userID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read = TRUE WHERE id=$1 AND receiver_id=$2 AND read = FALSE`, messageID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListUnreadForUser returns unread messages addressed to the user joined with
// their senders, oldest first.
func (r *MessageRepo) ListUnreadForUser(ctx context.Context, userID int) ([]models.ConversationRow, error) {
	var rows []models.ConversationRow
	err := r.db.SelectContext(ctx, &rows, `SELECT m.id, m.content, m.sender_id, m.receiver_id, m.read, m.sent_at,
            s.id AS "sender.id", s.first_name AS "sender.first_name", s.last_name AS "sender.last_name", s.email AS "sender.email",
            u.id AS "receiver.id", u.first_name AS "receiver.first_name", u.last_name AS "receiver.last_name", u.email AS "receiver.email"
        FROM messages m
        INNER JOIN users s ON s.id = m.sender_id
        INNER JOIN users u ON u.id = m.receiver_id
        WHERE m.receiver_id=$1 AND m.read = FALSE
        ORDER BY m.sent_at ASC`, userID)
	return rows, err
}

// ListConversationRows returns every direct message involving the user,
// newest first, joined with both participants.
func (r *MessageRepo) ListConversationRows(ctx context.Context, userID int) ([]models.ConversationRow, error) {
	var rows []models.ConversationRow
	err := r.db.SelectContext(ctx, &rows, `SELECT m.id, m.content, m.sender_id, m.receiver_id, m.read, m.sent_at,
            s.id AS "sender.id", s.first_name AS "sender.first_name", s.last_name AS "sender.last_name", s.email AS "sender.email",
            u.id AS "receiver.id", u.first_name AS "receiver.first_name", u.last_name AS "receiver.last_name", u.email AS "receiver.email"
        FROM messages m
        INNER JOIN users s ON s.id = m.sender_id
        INNER JOIN users u ON u.id = m.receiver_id
        WHERE m.sender_id=$1 OR m.receiver_id=$1
        ORDER BY m.sent_at DESC`, userID)
	return rows, err
}

// DeleteDirectMessage removes a message row.
func (r *MessageRepo) DeleteDirectMessage(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
