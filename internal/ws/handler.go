package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/auth"
	"messaging-service/internal/messaging"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
)

type directMessageService interface {
	SendDirect(ctx context.Context, senderID, receiverID int, content string) (models.DirectMessage, error)
	MarkDirectReadByID(ctx context.Context, messageID, userID int) error
}

type groupMessageService interface {
	SendGroupMessage(ctx context.Context, senderID, groupID int, content, excludeConnID string) (models.GroupMessage, error)
	IsMember(ctx context.Context, groupID, userID int) (bool, error)
}

// Handler owns the websocket endpoint: handshake, session registration, and
// the per-connection dispatch loop. Frames on one connection are processed
// in arrival order; the ack for a frame is sent only after its operation has
// completed.
type Handler struct {
	hub      *Hub
	verifier auth.Verifier
	messages directMessageService
	groups   groupMessageService
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, verifier auth.Verifier, messages directMessageService, groups groupMessageService) *Handler {
	return &Handler{hub: hub, verifier: verifier, messages: messages, groups: groups}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection, verifies the caller, and starts the
// session's pumps.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity, err := h.identify(ctx, c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      identity.UserID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	sess := NewSession(conn, info)
	h.hub.Bind(sess)

	observability.IncWSActive("session")
	observability.IncWSEvent("session", "ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.sessions", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(info, "ws_connect", 0, ""),
	}, observability.BuildHeaders(requestID, traceID))

	// The request context is cancelled as soon as this handler returns, even
	// though the hijacked connection lives on. The dispatch loop runs on a
	// connection-lifetime context that keeps the request's values.
	connCtx := context.WithoutCancel(ctx)

	go sess.WritePump()
	go h.readLoop(connCtx, sess)
}

// identify extracts the bearer token from the Authorization header or, for
// browser clients that cannot set headers on the upgrade request, the token
// query parameter.
func (h *Handler) identify(ctx context.Context, c *gin.Context) (auth.Identity, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("token"); token != "" {
			header = "Bearer " + token
		}
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return auth.Identity{}, fmt.Errorf("invalid token")
	}
	return h.verifier.Verify(ctx, parts[1])
}

func (h *Handler) readLoop(ctx context.Context, sess *Session) {
	info := sess.Info()
	var closeReason string
	defer func() {
		h.hub.Unbind(sess)
		sess.Close()
		observability.DecWSActive("session")
		observability.IncWSEvent("session", "ws_disconnect")
		_ = observability.PublishEvent(ctx, "ws_events.sessions", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_disconnect",
			Payload:   wsEventPayload(info, "ws_disconnect", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
		}, observability.BuildHeaders(info.RequestID, info.TraceID))
	}()

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("session", "ws_error")
				_ = observability.PublishEvent(ctx, "ws_events.sessions", observability.EventEnvelope{
					EventType: "ws_events",
					EventName: "ws_error",
					Payload:   wsEventPayload(info, "ws_error", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
				}, observability.BuildHeaders(info.RequestID, info.TraceID))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			sess.Queue(Ack{Success: false, Error: "Invalid message data"})
			continue
		}
		sess.Queue(h.dispatch(ctx, sess, frame))
	}
}

// dispatch runs one frame to completion and returns its ack.
func (h *Handler) dispatch(ctx context.Context, sess *Session, frame Frame) Ack {
	userID := sess.UserID()

	switch frame.Op {
	case OpDirectSend:
		var payload directSendPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return failAck(frame, messaging.ErrInvalidPayload)
		}
		msg, err := h.messages.SendDirect(ctx, userID, payload.ReceiverID, payload.Content)
		if err != nil {
			return failAck(frame, err)
		}
		// The receiver's sessions got direct-message:received from the
		// broadcast; the sending connection alone gets the sent echo.
		sess.Queue(models.DirectMessageEvent{Event: models.EventDirectMessageSent, Message: &msg})
		return okAckWith(frame, msg)

	case OpGroupSend:
		var payload groupSendPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return failAck(frame, messaging.ErrInvalidPayload)
		}
		msg, err := h.groups.SendGroupMessage(ctx, userID, payload.GroupID, payload.Content, sess.ConnID())
		if err != nil {
			return failAck(frame, err)
		}
		return okAckWith(frame, msg)

	case OpGroupJoin:
		var payload groupRoomPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.GroupID <= 0 {
			return failAck(frame, messaging.ErrInvalidPayload)
		}
		member, err := h.groups.IsMember(ctx, payload.GroupID, userID)
		if err != nil {
			return failAck(frame, err)
		}
		if !member {
			return failAck(frame, messaging.ErrNotAMember)
		}
		h.hub.Subscribe(sess, GroupChannel(payload.GroupID))
		return okAck(frame)

	case OpGroupLeave:
		var payload groupRoomPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.GroupID <= 0 {
			return failAck(frame, messaging.ErrInvalidPayload)
		}
		h.hub.Unsubscribe(sess, GroupChannel(payload.GroupID))
		return okAck(frame)

	case OpDirectMarkRead:
		var payload markReadPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.MessageID <= 0 {
			return failAck(frame, messaging.ErrInvalidPayload)
		}
		if err := h.messages.MarkDirectReadByID(ctx, payload.MessageID, userID); err != nil {
			return failAck(frame, err)
		}
		return okAck(frame)

	default:
		return failAck(frame, fmt.Errorf("unsupported op %q", frame.Op))
	}
}

func wsEventPayload(info ConnInfo, event string, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "session",
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
