// Package state drives a room's lifecycle: waiting for a second occupant,
// relaying play, and the reconnect grace window after a disconnect.
package state

// RoomContext is what a room must expose to its states. Declared here to
// break the import cycle between room and state.
type RoomContext interface {
	GetID() string
	OccupantCount() int
	// EverSeated reports whether any seat was ever taken. An empty room
	// that once held a player is kept for the rejoin window; one that
	// never did is garbage.
	EverSeated() bool
	ChangeState(newState State) error
	Broadcast(msgID uint16, data []byte) error
	// Expire removes the room from its registry; called only for rooms
	// nobody ever sat in. Emptied rooms are deleted by the grace timer.
	Expire()
}
