package roommanager

import (
	"testing"

	"go.uber.org/zap"
)

func TestManager_CreateAndGetRoom(t *testing.T) {
	m := NewManager(zap.NewNop())

	room := m.CreateRoom()
	if len(room.ID) != RoomIDLength {
		t.Fatalf("room id length = %d, want %d", len(room.ID), RoomIDLength)
	}

	got, ok := m.GetRoom(room.ID)
	if !ok || got != room {
		t.Fatalf("GetRoom did not return the created room")
	}
}

func TestManager_RemoveRoom(t *testing.T) {
	m := NewManager(zap.NewNop())
	room := m.CreateRoom()

	m.RemoveRoom(room.ID)
	if _, ok := m.GetRoom(room.ID); ok {
		t.Fatalf("expected room to be removed")
	}
}

func TestManager_CreateRoom_UniqueIDs(t *testing.T) {
	m := NewManager(zap.NewNop())
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room := m.CreateRoom()
		if seen[room.ID] {
			t.Fatalf("duplicate room id generated: %s", room.ID)
		}
		seen[room.ID] = true
	}
}

func TestManager_CleanupStaleRooms_KeepsActiveRooms(t *testing.T) {
	m := NewManager(zap.NewNop())
	room := m.CreateRoom()
	room.AddPlayer("p1", "Alice", "#fff", &noopConn{})

	removed := m.CleanupStaleRooms()
	if removed != 0 {
		t.Fatalf("expected 0 rooms reclaimed while a player is present, got %d", removed)
	}
	if _, ok := m.GetRoom(room.ID); !ok {
		t.Fatalf("active room should not have been removed")
	}
}

type noopConn struct{}

func (noopConn) Send([]byte) error   { return nil }
func (noopConn) Close() error        { return nil }
func (noopConn) RemoteAddr() string  { return "test" }
