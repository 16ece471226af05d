package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

type groupFixture struct {
	userRepo         *mocks.UserRepositoryMock
	groupRepo        *mocks.GroupRepositoryMock
	groupMessageRepo *mocks.GroupMessageRepositoryMock
	broadcaster      *mocks.BroadcasterMock
	svc              *GroupService
}

func newGroupFixture() *groupFixture {
	f := &groupFixture{
		userRepo:         new(mocks.UserRepositoryMock),
		groupRepo:        new(mocks.GroupRepositoryMock),
		groupMessageRepo: new(mocks.GroupMessageRepositoryMock),
		broadcaster:      new(mocks.BroadcasterMock),
	}
	f.svc = NewGroupService(f.userRepo, f.groupRepo, f.groupMessageRepo, f.broadcaster)
	return f
}

func TestSendGroupMessageBroadcastsWithExclusion(t *testing.T) {
	f := newGroupFixture()
	stored := models.GroupMessage{ID: 3, GroupID: 9, SenderID: 1, Content: "hey"}

	f.groupRepo.On("GetGroup", mock.Anything, 9).Return(models.Group{ID: 9}, nil).Once()
	f.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(true, nil).Once()
	f.groupMessageRepo.On("CreateGroupMessage", mock.Anything, 9, 1, "hey").Return(stored, nil).Once()
	f.broadcaster.On("PublishToGroup", 9, mock.Anything, "conn-a").Once()

	msg, err := f.svc.SendGroupMessage(context.Background(), 1, 9, "hey", "conn-a")
	require.NoError(t, err)
	require.Equal(t, stored, msg)
	f.broadcaster.AssertExpectations(t)
}

func TestSendGroupMessageNonMemberWritesNothing(t *testing.T) {
	f := newGroupFixture()

	f.groupRepo.On("GetGroup", mock.Anything, 9).Return(models.Group{ID: 9}, nil).Once()
	f.groupRepo.On("IsMember", mock.Anything, 9, 1).Return(false, nil).Once()

	_, err := f.svc.SendGroupMessage(context.Background(), 1, 9, "hey", "")
	require.ErrorIs(t, err, ErrNotAMember)
	require.ErrorIs(t, err, ErrForbidden)
	f.groupMessageRepo.AssertNotCalled(t, "CreateGroupMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.broadcaster.AssertNotCalled(t, "PublishToGroup", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendGroupMessageUnknownGroup(t *testing.T) {
	f := newGroupFixture()

	f.groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	_, err := f.svc.SendGroupMessage(context.Background(), 1, 42, "hey", "")
	require.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAddMemberDuplicate(t *testing.T) {
	f := newGroupFixture()

	f.groupRepo.On("GetGroup", mock.Anything, 9).Return(models.Group{ID: 9}, nil).Once()
	f.userRepo.On("Exists", mock.Anything, 2).Return(true, nil).Once()
	f.groupRepo.On("GetMember", mock.Anything, 9, 2).Return(models.GroupMember{GroupID: 9, UserID: 2}, nil).Once()

	_, err := f.svc.AddMember(context.Background(), 9, 2)
	require.ErrorIs(t, err, ErrDuplicateMember)
	require.ErrorIs(t, err, ErrConflict)
	f.groupRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveMemberCreatorRejected(t *testing.T) {
	f := newGroupFixture()

	f.groupRepo.On("GetMember", mock.Anything, 9, 1).Return(models.GroupMember{GroupID: 9, UserID: 1, IsAdmin: true}, nil).Once()
	f.groupRepo.On("GetGroup", mock.Anything, 9).Return(models.Group{ID: 9, CreatedBy: 1}, nil).Once()

	err := f.svc.RemoveMember(context.Background(), 9, 1)
	require.ErrorIs(t, err, ErrCreatorRemoval)
	f.groupRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveMemberLastAdminRejected(t *testing.T) {
	f := newGroupFixture()

	f.groupRepo.On("GetMember", mock.Anything, 9, 2).Return(models.GroupMember{GroupID: 9, UserID: 2, IsAdmin: true}, nil).Once()
	f.groupRepo.On("GetGroup", mock.Anything, 9).Return(models.Group{ID: 9, CreatedBy: 5}, nil).Once()
	f.groupRepo.On("CountAdmins", mock.Anything, 9).Return(1, nil).Once()

	err := f.svc.RemoveMember(context.Background(), 9, 2)
	require.ErrorIs(t, err, ErrLastAdmin)
	require.ErrorIs(t, err, ErrConflict)
}

func TestLeaveGroupLastAdminRejected(t *testing.T) {
	f := newGroupFixture()

	f.groupRepo.On("GetMember", mock.Anything, 9, 1).Return(models.GroupMember{GroupID: 9, UserID: 1, IsAdmin: true}, nil).Once()
	f.groupRepo.On("CountAdmins", mock.Anything, 9).Return(1, nil).Once()

	err := f.svc.LeaveGroup(context.Background(), 9, 1)
	require.ErrorIs(t, err, ErrLastAdmin)
	f.groupRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveGroupRegularMember(t *testing.T) {
	f := newGroupFixture()

	f.groupRepo.On("GetMember", mock.Anything, 9, 2).Return(models.GroupMember{GroupID: 9, UserID: 2}, nil).Once()
	f.groupRepo.On("RemoveMember", mock.Anything, 9, 2).Return(nil).Once()

	require.NoError(t, f.svc.LeaveGroup(context.Background(), 9, 2))
}

func TestDemoteLastAdminRejected(t *testing.T) {
	f := newGroupFixture()

	f.groupRepo.On("GetMember", mock.Anything, 9, 1).Return(models.GroupMember{GroupID: 9, UserID: 1, IsAdmin: true}, nil).Twice()
	f.groupRepo.On("CountAdmins", mock.Anything, 9).Return(1, nil).Once()

	_, err := f.svc.DemoteAdmin(context.Background(), 9, 1, 1)
	require.ErrorIs(t, err, ErrLastAdmin)
}

func TestPromoteRequiresGroupAdmin(t *testing.T) {
	f := newGroupFixture()

	f.groupRepo.On("GetMember", mock.Anything, 9, 3).Return(models.GroupMember{GroupID: 9, UserID: 3}, nil).Once()

	_, err := f.svc.PromoteAdmin(context.Background(), 9, 2, 3)
	require.ErrorIs(t, err, ErrNotGroupAdmin)
	f.groupRepo.AssertNotCalled(t, "SetMemberAdmin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkGroupMessageReadIdempotent(t *testing.T) {
	f := newGroupFixture()

	f.groupMessageRepo.On("GetGroupMessage", mock.Anything, 3).Return(models.GroupMessage{ID: 3, GroupID: 9}, nil).Twice()
	f.groupRepo.On("IsMember", mock.Anything, 9, 2).Return(true, nil).Twice()
	f.groupMessageRepo.On("InsertReadReceipt", mock.Anything, 3, 2).Return(true, nil).Once()
	f.groupMessageRepo.On("InsertReadReceipt", mock.Anything, 3, 2).Return(false, nil).Once()

	require.NoError(t, f.svc.MarkGroupMessageRead(context.Background(), 3, 2))
	require.NoError(t, f.svc.MarkGroupMessageRead(context.Background(), 3, 2))
}

func TestMarkGroupMessageReadNonMember(t *testing.T) {
	f := newGroupFixture()

	f.groupMessageRepo.On("GetGroupMessage", mock.Anything, 3).Return(models.GroupMessage{ID: 3, GroupID: 9}, nil).Once()
	f.groupRepo.On("IsMember", mock.Anything, 9, 8).Return(false, nil).Once()

	err := f.svc.MarkGroupMessageRead(context.Background(), 3, 8)
	require.ErrorIs(t, err, ErrNotAMember)
	f.groupMessageRepo.AssertNotCalled(t, "InsertReadReceipt", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteGroupMessageBySenderOrAdmin(t *testing.T) {
	f := newGroupFixture()

	// Sender deletes own message.
	f.groupMessageRepo.On("GetGroupMessage", mock.Anything, 3).Return(models.GroupMessage{ID: 3, GroupID: 9, SenderID: 1}, nil).Once()
	f.groupMessageRepo.On("DeleteGroupMessage", mock.Anything, 3).Return(nil).Once()
	require.NoError(t, f.svc.DeleteGroupMessage(context.Background(), 3, 1))

	// Admin deletes someone else's message.
	f.groupMessageRepo.On("GetGroupMessage", mock.Anything, 4).Return(models.GroupMessage{ID: 4, GroupID: 9, SenderID: 1}, nil).Once()
	f.groupRepo.On("GetMember", mock.Anything, 9, 2).Return(models.GroupMember{GroupID: 9, UserID: 2, IsAdmin: true}, nil).Once()
	f.groupMessageRepo.On("DeleteGroupMessage", mock.Anything, 4).Return(nil).Once()
	require.NoError(t, f.svc.DeleteGroupMessage(context.Background(), 4, 2))

	// Plain member may not.
	f.groupMessageRepo.On("GetGroupMessage", mock.Anything, 5).Return(models.GroupMessage{ID: 5, GroupID: 9, SenderID: 1}, nil).Once()
	f.groupRepo.On("GetMember", mock.Anything, 9, 3).Return(models.GroupMember{GroupID: 9, UserID: 3}, nil).Once()
	require.ErrorIs(t, f.svc.DeleteGroupMessage(context.Background(), 5, 3), ErrNotGroupAdmin)
}

func TestEditGroupMessageOnlySender(t *testing.T) {
	f := newGroupFixture()

	f.groupMessageRepo.On("GetGroupMessage", mock.Anything, 3).Return(models.GroupMessage{ID: 3, GroupID: 9, SenderID: 1}, nil).Once()

	_, err := f.svc.EditGroupMessage(context.Background(), 3, 2, "edited")
	require.ErrorIs(t, err, ErrNotSender)
}

func TestCreateGroupValidatesName(t *testing.T) {
	f := newGroupFixture()

	_, err := f.svc.CreateGroup(context.Background(), 1, "", nil)
	require.ErrorIs(t, err, ErrInvalidPayload)
	f.groupRepo.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
