// Package session tracks one connected client per websocket.
package session

import (
	"sync"
	"time"

	"github.com/wfunc/yamb/network"
)

// Session is the per-connection state the relay cares about: who the player
// says they are and which room (and seat) they occupy.
type Session struct {
	ID         string
	Conn       network.Connection
	Nickname   string
	RoomID     string
	Seat       int // 0 or 1 once seated, -1 before
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		Seat:       -1,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) GetID() string { return s.ID }

func (s *Session) Send(msgID uint16, data []byte) error {
	s.Touch()
	return s.Conn.Send(msgID, data)
}

// SendJSON marshals and sends a payload on this session's connection.
func (s *Session) SendJSON(msgID uint16, payload interface{}) error {
	s.Touch()
	return s.Conn.SendJSON(msgID, payload)
}

// Touch refreshes the liveness timestamp.
func (s *Session) Touch() {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
}

// Seated assigns room membership.
func (s *Session) Seated(roomID string, seat int) {
	s.mutex.Lock()
	s.RoomID = roomID
	s.Seat = seat
	s.mutex.Unlock()
}

// Unseat clears room membership.
func (s *Session) Unseat() {
	s.Seated("", -1)
}

// Room returns the current room id and seat.
func (s *Session) Room() (string, int) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.RoomID, s.Seat
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager holds every live session keyed by id.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// All returns a snapshot of every live session, for broadcasts.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
