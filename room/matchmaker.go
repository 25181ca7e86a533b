package room

import (
	"sync"

	"github.com/wfunc/yamb/session"
)

// Match is a successful pairing. Seat order follows queue order: the player
// who waited gets seat 0.
type Match struct {
	RoomID   string
	Sessions [Seats]*session.Session
	Names    [Seats]string
}

// Matchmaker implements quick match with a single waiting slot: the first
// seeker waits, the second is paired with them immediately.
type Matchmaker struct {
	waiting     *session.Session
	waitingName string
	mutex       sync.Mutex
}

func NewMatchmaker() *Matchmaker {
	return &Matchmaker{}
}

// Enqueue offers a seeker to the queue. When someone is already waiting the
// pair is returned and the slot cleared; otherwise the seeker takes the slot
// and nil is returned. A seeker already in the slot is not paired with
// themselves.
func (m *Matchmaker) Enqueue(s *session.Session, name string) *Match {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.waiting == nil || m.waiting.GetID() == s.GetID() {
		m.waiting = s
		m.waitingName = name
		return nil
	}

	match := &Match{
		RoomID:   m.waiting.GetID() + "#" + s.GetID(),
		Sessions: [Seats]*session.Session{m.waiting, s},
		Names:    [Seats]string{m.waitingName, name},
	}
	m.waiting = nil
	m.waitingName = ""
	return match
}

// Leave removes a seeker from the slot, for when they disconnect before a
// match is found. Returns true when they were the one waiting.
func (m *Matchmaker) Leave(sessionID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.waiting != nil && m.waiting.GetID() == sessionID {
		m.waiting = nil
		m.waitingName = ""
		return true
	}
	return false
}

// WaitingCount reports queue occupancy for the monitor. Always 0 or 1.
func (m *Matchmaker) WaitingCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.waiting == nil {
		return 0
	}
	return 1
}
