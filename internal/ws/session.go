package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// sendBuffer bounds the per-session outbound queue. A session whose buffer is
// full has its events dropped rather than stalling the broadcast that
// produced them.
const sendBuffer = 64

// Session is one live websocket connection for one authenticated user. All
// writes to the underlying connection go through the send queue and the
// single write pump, so the dispatch loop and hub broadcasts never race on
// the socket.
type Session struct {
	conn *websocket.Conn
	info ConnInfo
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// NewSession wraps an upgraded connection. The caller starts WritePump.
func NewSession(conn *websocket.Conn, info ConnInfo) *Session {
	return &Session{
		conn: conn,
		info: info,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Info returns the connection metadata captured at handshake.
func (s *Session) Info() ConnInfo { return s.info }

// UserID returns the authenticated user the session belongs to.
func (s *Session) UserID() int { return s.info.UserID }

// ConnID returns the session's unique connection identifier.
func (s *Session) ConnID() string { return s.info.ConnID }

// Queue marshals the event and enqueues it for the write pump. It never
// blocks; a full buffer drops the event and reports false.
func (s *Session) Queue(event any) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws marshal error conn=%s: %v", s.info.ConnID, err)
		return false
	}
	return s.queueRaw(payload)
}

func (s *Session) queueRaw(payload []byte) bool {
	// Checked on its own first: a combined select would pick randomly when
	// the session is closed but the buffer still has room.
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// WritePump drains the send queue onto the socket until the session closes
// or a write fails. Run it in its own goroutine, one per session.
func (s *Session) WritePump() {
	for {
		select {
		case <-s.done:
			return
		case payload := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("websocket write error conn=%s: %v", s.info.ConnID, err)
				s.Close()
				return
			}
		}
	}
}

// Close shuts the session down. Safe to call more than once and from any
// goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}
