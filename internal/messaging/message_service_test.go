package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

func TestSendDirectPersistsThenBroadcasts(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	broadcaster := new(mocks.BroadcasterMock)
	svc := NewMessageService(userRepo, messageRepo, broadcaster)

	stored := models.DirectMessage{ID: 1, SenderID: 1, ReceiverID: 2, Content: "hi"}
	userRepo.On("Exists", mock.Anything, 2).Return(true, nil).Once()
	messageRepo.On("CreateDirectMessage", mock.Anything, 1, 2, "hi").Return(stored, nil).Once()
	broadcaster.On("PublishToUser", 2, mock.Anything).Once()

	msg, err := svc.SendDirect(context.Background(), 1, 2, "hi")
	require.NoError(t, err)
	require.Equal(t, stored, msg)

	event := broadcaster.Calls[0].Arguments.Get(1).(models.DirectMessageEvent)
	require.Equal(t, models.EventDirectMessageReceived, event.Event)
	require.Equal(t, stored.ID, event.Message.ID)
	broadcaster.AssertExpectations(t)
}

func TestSendDirectEmptyContentPersistsNothing(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewMessageService(userRepo, messageRepo, nil)

	_, err := svc.SendDirect(context.Background(), 1, 2, "")
	require.ErrorIs(t, err, ErrInvalidPayload)
	messageRepo.AssertNotCalled(t, "CreateDirectMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendDirectContentTooLong(t *testing.T) {
	svc := NewMessageService(new(mocks.UserRepositoryMock), new(mocks.MessageRepositoryMock), nil)

	_, err := svc.SendDirect(context.Background(), 1, 2, strings.Repeat("a", 2001))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestSendDirectContentAtLimit(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewMessageService(userRepo, messageRepo, nil)

	content := strings.Repeat("a", 2000)
	userRepo.On("Exists", mock.Anything, 2).Return(true, nil).Once()
	messageRepo.On("CreateDirectMessage", mock.Anything, 1, 2, content).Return(models.DirectMessage{ID: 1}, nil).Once()

	_, err := svc.SendDirect(context.Background(), 1, 2, content)
	require.NoError(t, err)
}

func TestSendDirectUnknownReceiver(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewMessageService(userRepo, messageRepo, nil)

	userRepo.On("Exists", mock.Anything, 99).Return(false, nil).Once()

	_, err := svc.SendDirect(context.Background(), 1, 99, "hi")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, err, ErrNotFound)
	messageRepo.AssertNotCalled(t, "CreateDirectMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkDirectReadByIDAlreadyReadIsIdempotent(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewMessageService(new(mocks.UserRepositoryMock), messageRepo, nil)

	messageRepo.On("MarkReadByID", mock.Anything, 5, 2).Return(int64(0), nil).Once()
	messageRepo.On("GetDirectMessage", mock.Anything, 5).Return(models.DirectMessage{ID: 5, ReceiverID: 2, Read: true}, nil).Once()

	require.NoError(t, svc.MarkDirectReadByID(context.Background(), 5, 2))
}

func TestMarkDirectReadByIDWrongReceiver(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewMessageService(new(mocks.UserRepositoryMock), messageRepo, nil)

	messageRepo.On("MarkReadByID", mock.Anything, 5, 3).Return(int64(0), nil).Once()
	messageRepo.On("GetDirectMessage", mock.Anything, 5).Return(models.DirectMessage{ID: 5, ReceiverID: 2}, nil).Once()

	err := svc.MarkDirectReadByID(context.Background(), 5, 3)
	require.ErrorIs(t, err, ErrNotReceiver)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestMarkConversationReadNothingUnread(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewMessageService(new(mocks.UserRepositoryMock), messageRepo, nil)

	messageRepo.On("MarkConversationRead", mock.Anything, 2, 1).Return(int64(0), nil).Once()

	updated, err := svc.MarkConversationRead(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Zero(t, updated)
}

func TestDeleteDirectOnlySender(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewMessageService(new(mocks.UserRepositoryMock), messageRepo, nil)

	messageRepo.On("GetDirectMessage", mock.Anything, 5).Return(models.DirectMessage{ID: 5, SenderID: 1}, nil).Once()

	err := svc.DeleteDirect(context.Background(), 2, 5)
	require.ErrorIs(t, err, ErrNotSender)
	messageRepo.AssertNotCalled(t, "DeleteDirectMessage", mock.Anything, mock.Anything)
}
