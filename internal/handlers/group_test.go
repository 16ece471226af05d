package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/messaging"
	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
)

type groupHandlerFixture struct {
	userRepo         *mocks.UserRepositoryMock
	groupRepo        *mocks.GroupRepositoryMock
	groupMessageRepo *mocks.GroupMessageRepositoryMock
	router           *gin.Engine
}

func setupGroupRouter() *groupHandlerFixture {
	gin.SetMode(gin.TestMode)
	f := &groupHandlerFixture{
		userRepo:         new(mocks.UserRepositoryMock),
		groupRepo:        new(mocks.GroupRepositoryMock),
		groupMessageRepo: new(mocks.GroupMessageRepositoryMock),
	}
	groups := messaging.NewGroupService(f.userRepo, f.groupRepo, f.groupMessageRepo, nil)
	handler := NewGroupHandler(groups, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/groups", handler.CreateGroup)
	r.GET("/groups/:group_id", handler.GetGroup)
	r.POST("/groups/:group_id/members", handler.AddMember)
	r.DELETE("/groups/:group_id/members/:user_id", handler.RemoveMember)
	r.POST("/groups/:group_id/leave", handler.LeaveGroup)
	r.DELETE("/groups/:group_id/members/:user_id/admin", handler.DemoteAdmin)
	r.GET("/groups/:group_id/messages", handler.GetGroupMessages)
	r.POST("/groups/:group_id/messages", handler.PostGroupMessage)
	r.POST("/group-messages/:message_id/read", handler.MarkGroupMessageRead)
	f.router = r
	return f
}

func TestCreateGroupSuccess(t *testing.T) {
	f := setupGroupRouter()

	f.userRepo.On("Exists", mock.Anything, 1).Return(true, nil).Once()
	f.groupRepo.On("CreateGroup", mock.Anything, "team", mock.Anything, 1).Return(models.Group{ID: 5, Name: "team", CreatedBy: 1}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewBufferString(`{"name":"team"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	f.groupRepo.AssertExpectations(t)
}

func TestCreateGroupInvalidBody(t *testing.T) {
	f := setupGroupRouter()

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewBufferString(`{"name":5}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGroupIncludesMembers(t *testing.T) {
	f := setupGroupRouter()

	f.groupRepo.On("GetGroup", mock.Anything, 5).Return(models.Group{ID: 5, Name: "team"}, nil).Once()
	f.groupRepo.On("ListMembers", mock.Anything, 5).Return([]models.GroupMemberDetail{
		{GroupMember: models.GroupMember{GroupID: 5, UserID: 1, IsAdmin: true}, User: models.UserRef{ID: 1, FirstName: "a"}},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/5", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"members"`)
}

func TestAddMemberDuplicateConflict(t *testing.T) {
	f := setupGroupRouter()

	f.groupRepo.On("GetGroup", mock.Anything, 5).Return(models.Group{ID: 5}, nil).Once()
	f.userRepo.On("Exists", mock.Anything, 2).Return(true, nil).Once()
	f.groupRepo.On("GetMember", mock.Anything, 5, 2).Return(models.GroupMember{GroupID: 5, UserID: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/5/members", bytes.NewBufferString(`{"userId":2}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRemoveMemberLastAdminConflict(t *testing.T) {
	f := setupGroupRouter()

	f.groupRepo.On("GetMember", mock.Anything, 5, 2).Return(models.GroupMember{GroupID: 5, UserID: 2, IsAdmin: true}, nil).Once()
	f.groupRepo.On("GetGroup", mock.Anything, 5).Return(models.Group{ID: 5, CreatedBy: 9}, nil).Once()
	f.groupRepo.On("CountAdmins", mock.Anything, 5).Return(1, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/5/members/2", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRemoveCreatorForbidden(t *testing.T) {
	f := setupGroupRouter()

	f.groupRepo.On("GetMember", mock.Anything, 5, 9).Return(models.GroupMember{GroupID: 5, UserID: 9, IsAdmin: true}, nil).Once()
	f.groupRepo.On("GetGroup", mock.Anything, 5).Return(models.Group{ID: 5, CreatedBy: 9}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/5/members/9", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLeaveGroupSuccess(t *testing.T) {
	f := setupGroupRouter()

	f.groupRepo.On("GetMember", mock.Anything, 5, 1).Return(models.GroupMember{GroupID: 5, UserID: 1}, nil).Once()
	f.groupRepo.On("RemoveMember", mock.Anything, 5, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/5/leave", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDemoteLastAdminConflict(t *testing.T) {
	f := setupGroupRouter()

	f.groupRepo.On("GetMember", mock.Anything, 5, 1).Return(models.GroupMember{GroupID: 5, UserID: 1, IsAdmin: true}, nil).Twice()
	f.groupRepo.On("CountAdmins", mock.Anything, 5).Return(1, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/5/members/1/admin", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetGroupMessagesForbiddenForNonMember(t *testing.T) {
	f := setupGroupRouter()

	f.groupRepo.On("IsMember", mock.Anything, 5, 1).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/5/messages", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostGroupMessageSuccess(t *testing.T) {
	f := setupGroupRouter()

	f.groupRepo.On("GetGroup", mock.Anything, 5).Return(models.Group{ID: 5}, nil).Once()
	f.groupRepo.On("IsMember", mock.Anything, 5, 1).Return(true, nil).Once()
	f.groupMessageRepo.On("CreateGroupMessage", mock.Anything, 5, 1, "hey").Return(models.GroupMessage{ID: 3, GroupID: 5, SenderID: 1, Content: "hey"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/groups/5/messages", bytes.NewBufferString(`{"content":"hey"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	f.groupMessageRepo.AssertExpectations(t)
}

func TestMarkGroupMessageRead(t *testing.T) {
	f := setupGroupRouter()

	f.groupMessageRepo.On("GetGroupMessage", mock.Anything, 3).Return(models.GroupMessage{ID: 3, GroupID: 5}, nil).Once()
	f.groupRepo.On("IsMember", mock.Anything, 5, 1).Return(true, nil).Once()
	f.groupMessageRepo.On("InsertReadReceipt", mock.Anything, 3, 1).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/group-messages/3/read", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
