package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func directRow(id, senderID, receiverID int, content string, read bool, sentAt time.Time) models.ConversationRow {
	return models.ConversationRow{
		DirectMessage: models.DirectMessage{
			ID: id, SenderID: senderID, ReceiverID: receiverID,
			Content: content, Read: read, SentAt: sentAt,
		},
		Sender:   models.UserRef{ID: senderID, FirstName: "u", Email: "u@example.com"},
		Receiver: models.UserRef{ID: receiverID, FirstName: "v", Email: "v@example.com"},
	}
}

func TestUnreadSummaryAggregatesPerSenderAndGroup(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupMessageRepo := new(mocks.GroupMessageRepositoryMock)
	svc := NewConversationService(messageRepo, groupMessageRepo)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Oldest first, as the store returns them.
	messageRepo.On("ListUnreadForUser", mock.Anything, 1).Return([]models.ConversationRow{
		directRow(10, 5, 1, "first from five", false, base),
		directRow(11, 6, 1, "from six", false, base.Add(time.Minute)),
		directRow(12, 5, 1, "latest from five", false, base.Add(2*time.Minute)),
	}, nil).Once()

	// Grouped by group, newest first within each group.
	groupMessageRepo.On("ListUnreadGroupRows", mock.Anything, 1).Return([]models.GroupUnreadRow{
		{GroupMessage: models.GroupMessage{ID: 20, GroupID: 3, SenderID: 7, Content: "newest in three", SentAt: base.Add(3 * time.Minute)}, GroupName: "three", Sender: models.UserRef{ID: 7}},
		{GroupMessage: models.GroupMessage{ID: 21, GroupID: 3, SenderID: 8, Content: "older in three", SentAt: base}, GroupName: "three", Sender: models.UserRef{ID: 8}},
	}, nil).Once()

	summary, err := svc.UnreadSummary(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, 3, summary.Count)
	require.Len(t, summary.DirectUnreads, 2)

	fromFive := summary.DirectUnreads[0]
	require.Equal(t, 5, fromFive.SenderID)
	require.Equal(t, 2, fromFive.UnreadCount)
	require.Equal(t, "latest from five", fromFive.LastMessage)

	require.Len(t, summary.GroupUnreads, 1)
	group := summary.GroupUnreads[0]
	require.Equal(t, 3, group.GroupID)
	require.Equal(t, "three", group.GroupName)
	require.Equal(t, 2, group.UnreadCount)
	require.Equal(t, "newest in three", group.LastMessage)
	require.Equal(t, 7, group.LastSender.ID)
}

func TestUnreadSummaryEmpty(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	groupMessageRepo := new(mocks.GroupMessageRepositoryMock)
	svc := NewConversationService(messageRepo, groupMessageRepo)

	messageRepo.On("ListUnreadForUser", mock.Anything, 1).Return([]models.ConversationRow{}, nil).Once()
	groupMessageRepo.On("ListUnreadGroupRows", mock.Anything, 1).Return([]models.GroupUnreadRow{}, nil).Once()

	summary, err := svc.UnreadSummary(context.Background(), 1)
	require.NoError(t, err)
	require.Zero(t, summary.Count)
	require.Empty(t, summary.DirectUnreads)
	require.Empty(t, summary.GroupUnreads)
}

func TestAllConversationsLatestWinsAndCountsReceiverSideUnread(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewConversationService(messageRepo, new(mocks.GroupMessageRepositoryMock))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Newest first across all of user 1's messages.
	messageRepo.On("ListConversationRows", mock.Anything, 1).Return([]models.ConversationRow{
		directRow(30, 2, 1, "latest with two", false, base.Add(4*time.Minute)),
		directRow(31, 1, 3, "latest with three", false, base.Add(3*time.Minute)),
		directRow(32, 1, 2, "own unread reply", false, base.Add(2*time.Minute)),
		directRow(33, 2, 1, "older unread from two", false, base.Add(time.Minute)),
		directRow(34, 3, 1, "read from three", true, base),
	}, nil).Once()

	conversations, err := svc.AllConversations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// Most recent conversation first.
	withTwo := conversations[0]
	require.Equal(t, 2, withTwo.UserID)
	require.Equal(t, "latest with two", withTwo.LastMessage)
	// Message 32 is unread but sent by user 1; only 30 and 33 count.
	require.Equal(t, 2, withTwo.UnreadCount)

	withThree := conversations[1]
	require.Equal(t, 3, withThree.UserID)
	require.Equal(t, "latest with three", withThree.LastMessage)
	require.Zero(t, withThree.UnreadCount)
}
