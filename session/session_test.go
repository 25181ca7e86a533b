package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/yamb/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error             { return nil }
func (m *MockConnection) SendJSON(msgID uint16, payload interface{}) error { return nil }
func (m *MockConnection) Close() error                                     { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                             { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)              {}
func (m *MockConnection) ReadPacket() (*network.Packet, error)             { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	// Test Add
	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	// Test Get
	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	// Test Remove
	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_Seating(t *testing.T) {
	sess := NewSession("s1", &MockConnection{})

	if roomID, seat := sess.Room(); roomID != "" || seat != -1 {
		t.Fatalf("A fresh session should be unseated, got room %q seat %d", roomID, seat)
	}

	sess.Seated("room1", 1)
	roomID, seat := sess.Room()
	if roomID != "room1" || seat != 1 {
		t.Errorf("Expected room1/seat 1, got %q/%d", roomID, seat)
	}

	sess.Unseat()
	if roomID, seat := sess.Room(); roomID != "" || seat != -1 {
		t.Errorf("Unseat should clear membership, got %q/%d", roomID, seat)
	}
}

func TestSession_TouchUpdatesLastActive(t *testing.T) {
	sess := NewSession("s1", &MockConnection{})
	before := sess.LastActive

	time.Sleep(10 * time.Millisecond)
	sess.Touch()

	if !sess.LastActive.After(before) {
		t.Error("Touch should advance LastActive")
	}
}

func TestManager_All(t *testing.T) {
	manager := NewManager()
	manager.Add(NewSession("s1", &MockConnection{}))
	manager.Add(NewSession("s2", &MockConnection{}))

	all := manager.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(all))
	}
}
