package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/telemetry"
)

type messageService interface {
	SendDirect(ctx context.Context, senderID, receiverID int, content string) (models.DirectMessage, error)
	GetDirectMessages(ctx context.Context, userID, otherUserID, limit, offset int) ([]models.DirectMessage, error)
	MarkConversationRead(ctx context.Context, userID, otherUserID int) (int64, error)
	MarkDirectReadByID(ctx context.Context, messageID, userID int) error
	DeleteDirect(ctx context.Context, userID, messageID int) error
}

type conversationService interface {
	UnreadSummary(ctx context.Context, userID int) (models.UnreadSummary, error)
	AllConversations(ctx context.Context, userID int) ([]models.Conversation, error)
}

// MessageHandler serves the direct-message endpoints and the conversation
// and unread projections.
type MessageHandler struct {
	messages      messageService
	conversations conversationService
	audit         *telemetry.AuditEmitter
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages messageService, conversations conversationService, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messages: messages, conversations: conversations, audit: audit}
}

// SendMessage handles POST /messages.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		ReceiverID int    `json:"receiverId" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messages.SendDirect(c.Request.Context(), userID, req.ReceiverID, req.Content)
	if err != nil {
		h.emitAudit(c, "ERROR", "failed to send message")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Message sent")
	c.JSON(http.StatusCreated, msg)
}

// GetConversationMessages handles GET /messages/with/:user_id.
func (h *MessageHandler) GetConversationMessages(c *gin.Context) {
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID := c.GetInt("userID")

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	msgs, err := h.messages.GetDirectMessages(c.Request.Context(), userID, otherID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// GetConversations handles GET /messages/conversations.
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID := c.GetInt("userID")
	conversations, err := h.conversations.AllConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetUnreadSummary handles GET /messages/unread.
func (h *MessageHandler) GetUnreadSummary(c *gin.Context) {
	userID := c.GetInt("userID")
	summary, err := h.conversations.UnreadSummary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// MarkConversationRead handles PUT /messages/read/:user_id. It flips every
// unread message from that sender to the caller; nothing unread is still a
// success.
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	otherID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID := c.GetInt("userID")

	updated, err := h.messages.MarkConversationRead(c.Request.Context(), userID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// MarkMessageRead handles PUT /messages/:message_id/read.
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	userID := c.GetInt("userID")

	if err := h.messages.MarkDirectReadByID(c.Request.Context(), messageID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteMessage handles DELETE /messages/:message_id.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	userID := c.GetInt("userID")

	if err := h.messages.DeleteDirect(c.Request.Context(), userID, messageID); err != nil {
		h.emitAudit(c, "ERROR", "failed to delete message")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Message deleted")
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
