package ws

import (
	"encoding/json"
	"log"
	"sync"

	"messaging-service/internal/observability"
)

// Hub is the connection registry and channel membership table. Every bound
// session is subscribed to its user's personal channel for the session's
// whole lifetime; group channel subscriptions come and go with join and
// leave. The hub implements messaging.Broadcaster for the services that fan
// events out.
type Hub struct {
	mu       sync.RWMutex
	channels map[ChannelKey]map[*Session]struct{}
	sessions map[*Session]map[ChannelKey]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[ChannelKey]map[*Session]struct{}),
		sessions: make(map[*Session]map[ChannelKey]struct{}),
	}
}

// Bind registers a session and subscribes it to its user's personal channel.
func (h *Hub) Bind(sess *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[sess]; ok {
		return
	}
	h.sessions[sess] = make(map[ChannelKey]struct{})
	h.subscribeLocked(sess, PersonalChannel(sess.UserID()))
}

// Unbind drops the session from every channel it is subscribed to, the
// personal channel included. Unbinding a session that was never bound, or
// unbinding twice, is a no-op.
func (h *Hub) Unbind(sess *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys, ok := h.sessions[sess]
	if !ok {
		return
	}
	for key := range keys {
		h.unsubscribeLocked(sess, key)
	}
	delete(h.sessions, sess)
}

// Subscribe adds the session to a channel. The session must be bound;
// subscribing an unbound session is a no-op, as is re-subscribing.
func (h *Hub) Subscribe(sess *Session, key ChannelKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[sess]; !ok {
		return
	}
	h.subscribeLocked(sess, key)
}

// Unsubscribe removes the session from a channel. Removing a subscription
// that does not exist is a no-op.
func (h *Hub) Unsubscribe(sess *Session, key ChannelKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[sess]; !ok {
		return
	}
	h.unsubscribeLocked(sess, key)
}

func (h *Hub) subscribeLocked(sess *Session, key ChannelKey) {
	if _, ok := h.channels[key]; !ok {
		h.channels[key] = make(map[*Session]struct{})
	}
	h.channels[key][sess] = struct{}{}
	h.sessions[sess][key] = struct{}{}
}

func (h *Hub) unsubscribeLocked(sess *Session, key ChannelKey) {
	if subs, ok := h.channels[key]; ok {
		delete(subs, sess)
		if len(subs) == 0 {
			delete(h.channels, key)
		}
	}
	if keys, ok := h.sessions[sess]; ok {
		delete(keys, key)
	}
}

// Subscribers returns the number of sessions on a channel.
func (h *Hub) Subscribers(key ChannelKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[key])
}

// PublishToUser delivers the event to every live session on the user's
// personal channel.
func (h *Hub) PublishToUser(userID int, event any) {
	h.publish(PersonalChannel(userID), event, "")
}

// PublishToGroup delivers the event to every session subscribed to the group
// channel except the connection identified by excludeConnID.
func (h *Hub) PublishToGroup(groupID int, event any, excludeConnID string) {
	h.publish(GroupChannel(groupID), event, excludeConnID)
}

func (h *Hub) publish(key ChannelKey, event any, excludeConnID string) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws marshal error channel=%s: %v", key, err)
		return
	}

	h.mu.RLock()
	targets := make([]*Session, 0, len(h.channels[key]))
	for sess := range h.channels[key] {
		if excludeConnID != "" && sess.ConnID() == excludeConnID {
			continue
		}
		targets = append(targets, sess)
	}
	h.mu.RUnlock()

	for _, sess := range targets {
		if !sess.queueRaw(payload) {
			log.Printf("ws send buffer full, dropping event channel=%s conn=%s", key, sess.ConnID())
			observability.IncWSEvent(key.Kind(), "ws_drop")
		}
	}
}
