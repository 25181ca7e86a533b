// Package room holds the two-seat relay rooms and the matchmaking queue.
package room

import (
	"sync"
	"time"

	"github.com/wfunc/yamb/session"
	"github.com/wfunc/yamb/state"
)

// Seats per room. Yamb online is strictly head-to-head.
const Seats = 2

// Room pairs two sessions and relays their traffic. Nicknames stick to seats
// so a rejoining player finds the game exactly as they left it; only the
// session pointer is swapped.
type Room struct {
	ID           string
	Names        [Seats]string
	StateMachine state.StateMachine
	CreatedAt    time.Time

	sessions    [Seats]*session.Session
	graceTasks  [Seats]int64 // pending per-seat expiry tasks, 0 when none
	broadcaster Broadcaster
	onExpire    func(roomID string)
	mutex       sync.RWMutex
	ticker      *time.Ticker
	closeChan   chan bool
	closeOnce   sync.Once
}

// NewRoom creates a room and starts its update loop. onExpire is called when
// the room empties before anyone ever sat down (see state.WaitingState);
// rooms that held players are removed by the server's grace timer instead.
func NewRoom(id string, broadcaster Broadcaster, onExpire func(roomID string)) *Room {
	room := &Room{
		ID:          id,
		CreatedAt:   time.Now(),
		broadcaster: broadcaster,
		onExpire:    onExpire,
		closeChan:   make(chan bool),
	}

	initialState := state.NewWaitingState(room)
	room.StateMachine = state.NewBaseStateMachine(initialState)

	room.ticker = time.NewTicker(100 * time.Millisecond) // 10 FPS
	go room.loop()

	return room
}

// --- state.RoomContext ---

func (r *Room) GetID() string {
	return r.ID
}

// OccupantCount returns the number of connected sessions. A vacated seat
// whose nickname is still remembered does not count.
func (r *Room) OccupantCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	count := 0
	for _, s := range r.sessions {
		if s != nil {
			count++
		}
	}
	return count
}

// EverSeated reports whether any seat was ever taken. Nicknames outlive
// their sessions, so a remembered name means the room once held a player.
func (r *Room) EverSeated() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, n := range r.Names {
		if n != "" {
			return true
		}
	}
	return false
}

func (r *Room) ChangeState(newState state.State) error {
	return r.StateMachine.ChangeState(newState)
}

func (r *Room) Broadcast(msgID uint16, data []byte) error {
	return r.broadcaster.BroadcastToRoom(r.ID, msgID, data)
}

// Expire hands the room back to its registry. Safe to call more than once.
func (r *Room) Expire() {
	if r.onExpire != nil {
		r.onExpire(r.ID)
	}
}

// --- seats ---

// Seat places a session on the given seat. Fails when the seat is occupied.
func (r *Room) Seat(s *session.Session, seat int, name string) bool {
	if seat < 0 || seat >= Seats {
		return false
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.sessions[seat] != nil {
		return false
	}

	r.sessions[seat] = s
	r.Names[seat] = name
	s.Seated(r.ID, seat)
	return true
}

// SeatAny takes the first free seat. Returns the seat index, or -1 when the
// room is full.
func (r *Room) SeatAny(s *session.Session, name string) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for seat, occupant := range r.sessions {
		if occupant == nil {
			r.sessions[seat] = s
			r.Names[seat] = name
			s.Seated(r.ID, seat)
			return seat
		}
	}
	return -1
}

// Vacate drops the session from a seat but keeps the nickname, so the seat
// stays reserved for a rejoin.
func (r *Room) Vacate(seat int) {
	if seat < 0 || seat >= Seats {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if s := r.sessions[seat]; s != nil {
		s.Unseat()
		r.sessions[seat] = nil
	}
}

// Reseat puts a new session on a vacated seat during the grace period. The
// nickname must match the one the seat remembers.
func (r *Room) Reseat(s *session.Session, seat int, name string) bool {
	if seat < 0 || seat >= Seats {
		return false
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.sessions[seat] != nil || r.Names[seat] != name {
		return false
	}

	r.sessions[seat] = s
	s.Seated(r.ID, seat)
	return true
}

// SessionAt returns the session on a seat, nil when vacant.
func (r *Room) SessionAt(seat int) *session.Session {
	if seat < 0 || seat >= Seats {
		return nil
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.sessions[seat]
}

// Other returns the session on the opposite seat.
func (r *Room) Other(seat int) *session.Session {
	return r.SessionAt(1 - seat)
}

// Sessions returns every connected session (thread-safe copy).
func (r *Room) Sessions() []*session.Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessions := make([]*session.Session, 0, Seats)
	for _, s := range r.sessions {
		if s != nil {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

// SeatOf finds the seat a nickname is registered on, -1 when unknown.
func (r *Room) SeatOf(name string) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for seat, n := range r.Names {
		if n == name {
			return seat
		}
	}
	return -1
}

// StateID reports the current lifecycle phase ("waiting", "playing",
// "grace").
func (r *Room) StateID() string {
	if r.StateMachine == nil {
		return ""
	}
	current := r.StateMachine.GetCurrentState()
	if current == nil {
		return ""
	}
	return current.GetID()
}

// SetGraceTask records the id of a seat's pending expiry task. Pass 0 to
// clear. Each seat carries its own task so two simultaneous drops each get
// their full rejoin window.
func (r *Room) SetGraceTask(seat int, id int64) {
	if seat < 0 || seat >= Seats {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.graceTasks[seat] = id
}

// GraceTask returns a seat's pending expiry task id, 0 when none.
func (r *Room) GraceTask(seat int) int64 {
	if seat < 0 || seat >= Seats {
		return 0
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.graceTasks[seat]
}

// --- lifecycle ---

func (r *Room) loop() {
	for {
		select {
		case <-r.ticker.C:
			r.Update()
		case <-r.closeChan:
			r.ticker.Stop()
			return
		}
	}
}

// Update is called by the loop and drives the state machine.
func (r *Room) Update() {
	if r.StateMachine != nil {
		currentState := r.StateMachine.GetCurrentState()
		if currentState != nil {
			currentState.OnUpdate()
		}
	}
}

// Close stops the update loop.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.closeChan)
	})
}

// --- registry ---

// Manager tracks every live room.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom builds a room wired to remove itself from this manager when it
// expires.
func (m *Manager) CreateRoom(id string, broadcaster Broadcaster) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room := NewRoom(id, broadcaster, m.RemoveRoom)
	m.rooms[id] = room
	return room
}

// RemoveRoom closes a room and drops it from the registry.
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists {
		room.Close()
		delete(m.rooms, id)
	}
}

func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}
