package messaging

import (
	"context"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// ConversationService derives per-user conversation lists and unread counts
// from persisted message and read state. Read-side only; it never mutates.
type ConversationService struct {
	messageRepo      repositories.MessageRepository
	groupMessageRepo repositories.GroupMessageRepository
}

// NewConversationService constructs a ConversationService.
func NewConversationService(messageRepo repositories.MessageRepository, groupMessageRepo repositories.GroupMessageRepository) *ConversationService {
	return &ConversationService{messageRepo: messageRepo, groupMessageRepo: groupMessageRepo}
}

// UnreadSummary merges the direct and group unread sources for a user:
// per-sender unread direct messages and, for each group the user belongs to,
// the messages carrying no read receipt from the user.
func (s *ConversationService) UnreadSummary(ctx context.Context, userID int) (models.UnreadSummary, error) {
	directRows, err := s.messageRepo.ListUnreadForUser(ctx, userID)
	if err != nil {
		return models.UnreadSummary{}, err
	}

	// Rows arrive oldest first; overwriting per sender leaves the latest
	// message in place.
	bySender := map[int]int{}
	directUnreads := make([]models.DirectUnread, 0, len(directRows))
	for _, row := range directRows {
		idx, ok := bySender[row.SenderID]
		if !ok {
			bySender[row.SenderID] = len(directUnreads)
			directUnreads = append(directUnreads, models.DirectUnread{
				SenderID:  row.SenderID,
				FirstName: row.Sender.FirstName,
				LastName:  row.Sender.LastName,
				Email:     row.Sender.Email,
			})
			idx = len(directUnreads) - 1
		}
		directUnreads[idx].UnreadCount++
		directUnreads[idx].LastMessage = row.Content
		directUnreads[idx].LastMessageTime = row.SentAt
	}

	groupRows, err := s.groupMessageRepo.ListUnreadGroupRows(ctx, userID)
	if err != nil {
		return models.UnreadSummary{}, err
	}

	// Rows arrive grouped by group, newest first within each group, so the
	// first row seen per group is its latest unread message.
	byGroup := map[int]int{}
	groupUnreads := make([]models.GroupUnread, 0)
	for _, row := range groupRows {
		idx, ok := byGroup[row.GroupID]
		if !ok {
			byGroup[row.GroupID] = len(groupUnreads)
			groupUnreads = append(groupUnreads, models.GroupUnread{
				GroupID:         row.GroupID,
				GroupName:       row.GroupName,
				LastSender:      row.Sender,
				LastMessage:     row.Content,
				LastMessageTime: row.SentAt,
			})
			idx = len(groupUnreads) - 1
		}
		groupUnreads[idx].UnreadCount++
	}

	return models.UnreadSummary{
		Count:         len(directRows),
		DirectUnreads: directUnreads,
		GroupUnreads:  groupUnreads,
	}, nil
}

// AllConversations groups the user's direct messages by the other
// participant, keeps the most recent message per participant, counts the
// receiver-side unread messages, and orders by most-recent-message time
// descending.
func (s *ConversationService) AllConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	rows, err := s.messageRepo.ListConversationRows(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Rows arrive newest first, so the first row seen per participant carries
	// the latest message, and appending in encounter order yields the
	// required most-recent-first ordering.
	byOther := map[int]int{}
	conversations := make([]models.Conversation, 0)
	for _, row := range rows {
		other := row.Sender
		otherID := row.SenderID
		if row.SenderID == userID {
			other = row.Receiver
			otherID = row.ReceiverID
		}

		idx, ok := byOther[otherID]
		if !ok {
			byOther[otherID] = len(conversations)
			conversations = append(conversations, models.Conversation{
				UserID:          otherID,
				FirstName:       other.FirstName,
				LastName:        other.LastName,
				Email:           other.Email,
				LastMessage:     row.Content,
				LastMessageTime: row.SentAt,
			})
			idx = len(conversations) - 1
		}
		if !row.Read && row.ReceiverID == userID {
			conversations[idx].UnreadCount++
		}
	}

	return conversations, nil
}
