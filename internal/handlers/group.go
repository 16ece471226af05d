package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/telemetry"
)

type groupService interface {
	CreateGroup(ctx context.Context, creatorID int, name string, description *string) (models.Group, error)
	UpdateGroup(ctx context.Context, groupID int, name, description *string) (models.Group, error)
	GetGroup(ctx context.Context, groupID int) (models.GroupDetail, error)
	ListGroups(ctx context.Context, userID int) ([]models.Group, error)
	DeleteGroup(ctx context.Context, groupID int) error
	ListMembers(ctx context.Context, groupID int) ([]models.GroupMemberDetail, error)
	AddMember(ctx context.Context, groupID, userID int) (models.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID int) error
	LeaveGroup(ctx context.Context, groupID, userID int) error
	PromoteAdmin(ctx context.Context, groupID, targetID, callerID int) (models.GroupMember, error)
	DemoteAdmin(ctx context.Context, groupID, targetID, callerID int) (models.GroupMember, error)
	SendGroupMessage(ctx context.Context, senderID, groupID int, content, excludeConnID string) (models.GroupMessage, error)
	GetGroupMessages(ctx context.Context, groupID, userID, limit, offset int) ([]models.GroupMessageView, error)
	EditGroupMessage(ctx context.Context, messageID, userID int, content string) (models.GroupMessage, error)
	DeleteGroupMessage(ctx context.Context, messageID, userID int) error
	MarkGroupMessageRead(ctx context.Context, messageID, userID int) error
}

// GroupHandler serves group lifecycle, membership, and group-message
// endpoints.
type GroupHandler struct {
	groups groupService
	audit  *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groups groupService, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{groups: groups, audit: audit}
}

// CreateGroup handles POST /groups.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		h.emitAudit(c, "ERROR", "failed to create group")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group created")
	c.JSON(http.StatusCreated, group)
}

// ListGroups handles GET /groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID := c.GetInt("userID")
	groups, err := h.groups.ListGroups(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetGroup handles GET /groups/:group_id.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}
	group, err := h.groups.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// UpdateGroup handles PUT /groups/:group_id.
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.UpdateGroup(c.Request.Context(), groupID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group updated")
	c.JSON(http.StatusOK, group)
}

// DeleteGroup handles DELETE /groups/:group_id.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}

	if err := h.groups.DeleteGroup(c.Request.Context(), groupID); err != nil {
		h.emitAudit(c, "ERROR", "failed to delete group")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group deleted")
	c.Status(http.StatusNoContent)
}

// ListMembers handles GET /groups/:group_id/members.
func (h *GroupHandler) ListMembers(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}
	members, err := h.groups.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// AddMember handles POST /groups/:group_id/members.
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}

	var req struct {
		UserID int `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.groups.AddMember(c.Request.Context(), groupID, req.UserID)
	if err != nil {
		h.emitAudit(c, "ERROR", "failed to add member")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group member added")
	c.JSON(http.StatusCreated, member)
}

// RemoveMember handles DELETE /groups/:group_id/members/:user_id.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id", "invalid user id")
	if !ok {
		return
	}

	if err := h.groups.RemoveMember(c.Request.Context(), groupID, targetID); err != nil {
		h.emitAudit(c, "ERROR", "failed to remove member")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group member removed")
	c.Status(http.StatusNoContent)
}

// LeaveGroup handles POST /groups/:group_id/leave.
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.groups.LeaveGroup(c.Request.Context(), groupID, userID); err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Left group")
	c.Status(http.StatusNoContent)
}

// PromoteAdmin handles PUT /groups/:group_id/members/:user_id/admin.
func (h *GroupHandler) PromoteAdmin(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id", "invalid user id")
	if !ok {
		return
	}
	callerID := c.GetInt("userID")

	member, err := h.groups.PromoteAdmin(c.Request.Context(), groupID, targetID, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group admin granted")
	c.JSON(http.StatusOK, member)
}

// DemoteAdmin handles DELETE /groups/:group_id/members/:user_id/admin.
func (h *GroupHandler) DemoteAdmin(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id", "invalid user id")
	if !ok {
		return
	}
	callerID := c.GetInt("userID")

	member, err := h.groups.DemoteAdmin(c.Request.Context(), groupID, targetID, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group admin revoked")
	c.JSON(http.StatusOK, member)
}

// GetGroupMessages handles GET /groups/:group_id/messages.
func (h *GroupHandler) GetGroupMessages(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	msgs, err := h.groups.GetGroupMessages(c.Request.Context(), groupID, userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostGroupMessage handles POST /groups/:group_id/messages. The message is
// broadcast to the group channel; REST sends exclude no connection.
func (h *GroupHandler) PostGroupMessage(c *gin.Context) {
	groupID, ok := pathID(c, "group_id", "invalid group id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.groups.SendGroupMessage(c.Request.Context(), userID, groupID, req.Content, "")
	if err != nil {
		h.emitAudit(c, "ERROR", "failed to send group message")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group message sent")
	c.JSON(http.StatusCreated, msg)
}

// EditGroupMessage handles PUT /group-messages/:message_id.
func (h *GroupHandler) EditGroupMessage(c *gin.Context) {
	messageID, ok := pathID(c, "message_id", "invalid message id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.groups.EditGroupMessage(c.Request.Context(), messageID, userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group message edited")
	c.JSON(http.StatusOK, msg)
}

// DeleteGroupMessage handles DELETE /group-messages/:message_id.
func (h *GroupHandler) DeleteGroupMessage(c *gin.Context) {
	messageID, ok := pathID(c, "message_id", "invalid message id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.groups.DeleteGroupMessage(c.Request.Context(), messageID, userID); err != nil {
		h.emitAudit(c, "ERROR", "failed to delete group message")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group message deleted")
	c.Status(http.StatusNoContent)
}

// MarkGroupMessageRead handles POST /group-messages/:message_id/read.
func (h *GroupHandler) MarkGroupMessageRead(c *gin.Context) {
	messageID, ok := pathID(c, "message_id", "invalid message id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.groups.MarkGroupMessageRead(c.Request.Context(), messageID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func pathID(c *gin.Context, param, msg string) (int, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return 0, false
	}
	return id, true
}
