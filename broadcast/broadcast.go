// Package broadcast fans messages out to rooms and to the whole server.
package broadcast

import (
	"errors"

	"github.com/wfunc/yamb/room"
	"github.com/wfunc/yamb/session"
)

var ErrRoomNotFound = errors.New("room not found")

type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	BroadcastToAll(msgID uint16, data []byte) error
	SendToOthers(roomID string, senderID string, msgID uint16, data []byte) error
}

// RoomBroadcaster delivers over the room and session registries.
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	r, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, s := range r.Sessions() {
		if err := s.Send(msgID, data); err != nil {
			// A dead connection is the reader goroutine's problem.
			continue
		}
	}

	return nil
}

// SendToOthers relays a message to everyone in the room except the sender.
// This is the relay's core primitive: moves, actions and chat pass through
// untouched.
func (b *RoomBroadcaster) SendToOthers(roomID string, senderID string, msgID uint16, data []byte) error {
	r, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	for _, s := range r.Sessions() {
		if s.GetID() == senderID {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}

	return nil
}

// BroadcastToAll reaches every connected session, in or out of a room. Used
// for highscore updates.
func (b *RoomBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}
