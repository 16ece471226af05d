package messaging

import (
	"context"
	"errors"
	"fmt"
	"log"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// MessageService is the direct-message half of the ingest and fan-out engine,
// plus the read-side conversation and unread projections.
type MessageService struct {
	userRepo    repositories.UserRepository
	messageRepo repositories.MessageRepository
	broadcaster Broadcaster
}

// NewMessageService constructs a MessageService.
func NewMessageService(userRepo repositories.UserRepository, messageRepo repositories.MessageRepository, broadcaster Broadcaster) *MessageService {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &MessageService{userRepo: userRepo, messageRepo: messageRepo, broadcaster: broadcaster}
}

// SendDirect validates, persists, and fans out one direct message. The insert
// is the durability point: nothing is broadcast on a failed write, and a
// failed broadcast never rolls the write back. The stored message is published
// to the receiver's personal channel; echoing to the sender's own connection
// is the caller's job.
func (s *MessageService) SendDirect(ctx context.Context, senderID, receiverID int, content string) (models.DirectMessage, error) {
	if err := validateContent(content); err != nil {
		return models.DirectMessage{}, err
	}
	if receiverID <= 0 {
		return models.DirectMessage{}, fmt.Errorf("%w: receiver id must be positive", ErrInvalidPayload)
	}

	exists, err := s.userRepo.Exists(ctx, receiverID)
	if err != nil {
		return models.DirectMessage{}, err
	}
	if !exists {
		return models.DirectMessage{}, ErrUserNotFound
	}

	msg, err := s.messageRepo.CreateDirectMessage(ctx, senderID, receiverID, content)
	if err != nil {
		return models.DirectMessage{}, err
	}

	s.broadcaster.PublishToUser(receiverID, models.DirectMessageEvent{
		Event:   models.EventDirectMessageReceived,
		Message: &msg,
	})
	log.Printf("direct message sent id=%d sender=%d receiver=%d", msg.ID, senderID, receiverID)
	return msg, nil
}

// GetDirectMessages returns the conversation between two users, newest first.
func (s *MessageService) GetDirectMessages(ctx context.Context, userID, otherUserID, limit, offset int) ([]models.DirectMessage, error) {
	limit, offset = normalizePage(limit, offset)
	return s.messageRepo.ListConversationMessages(ctx, userID, otherUserID, limit, offset)
}

// MarkConversationRead flips every unread message from otherUserID to userID
// to read. Calling it with nothing unread is a success no-op.
func (s *MessageService) MarkConversationRead(ctx context.Context, userID, otherUserID int) (int64, error) {
	return s.messageRepo.MarkConversationRead(ctx, userID, otherUserID)
}

// MarkDirectReadByID marks one message read on behalf of its receiver. A
// message already read is a success no-op; a message addressed to someone
// else is rejected.
func (s *MessageService) MarkDirectReadByID(ctx context.Context, messageID, userID int) error {
	updated, err := s.messageRepo.MarkReadByID(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if updated > 0 {
		return nil
	}

	msg, err := s.messageRepo.GetDirectMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.ReceiverID != userID {
		return ErrNotReceiver
	}
	// Receiver re-marking an already-read message: idempotent success.
	return nil
}

// DeleteDirect removes a message; only its sender may do so.
func (s *MessageService) DeleteDirect(ctx context.Context, userID, messageID int) error {
	msg, err := s.messageRepo.GetDirectMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.SenderID != userID {
		return ErrNotSender
	}
	return s.messageRepo.DeleteDirectMessage(ctx, messageID)
}
