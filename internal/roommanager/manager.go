// Package roommanager is the room registry: it creates rooms with
// short, URL-safe ids, looks them up for joining sessions, and reclaims
// rooms that have sat idle too long. Rooms are matched by an explicit
// room id a client already has (e.g. a shared link), rather than by
// matching players into capacity-based lobbies.
package roommanager

import (
	"crypto/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/donovan-yohan/dicetable-server/internal/game"
)

// roomIDAlphabet is a URL-safe character set used to build short room ids,
// standing in for the original's nanoid(6) generator.
const roomIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomIDLength is the length of a generated room id.
const RoomIDLength = 6

// Manager owns the set of live rooms, keyed by id.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*game.Room

	logger *zap.Logger
}

// NewManager creates an empty room manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		rooms:  make(map[string]*game.Room),
		logger: logger,
	}
}

// CreateRoom allocates a new room with a freshly generated id.
func (m *Manager) CreateRoom() *game.Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for {
		id = generateRoomID()
		if _, exists := m.rooms[id]; !exists {
			break
		}
	}

	room := game.NewRoom(id, m.logger)
	m.rooms[id] = room
	m.logger.Info("room created", zap.String("room_id", id))
	return room
}

// GetRoom looks up a room by id.
func (m *Manager) GetRoom(id string) (*game.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// RemoveRoom drops a room from the registry.
func (m *Manager) RemoveRoom(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}

// RoomCount returns the number of live rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// CleanupStaleRooms removes every room that has been empty past its idle
// timeout, returning the number reclaimed. Intended to run on a periodic
// ticker (every RoomCleanupIntervalSecs, per the server entrypoint).
func (m *Manager) CleanupStaleRooms() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stale []string
	for id, r := range m.rooms {
		if r.IsIdleExpired() {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		delete(m.rooms, id)
	}

	if len(stale) > 0 {
		m.logger.Info("reclaimed idle rooms", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// generateRoomID returns a random RoomIDLength-character id drawn from
// roomIDAlphabet. crypto/rand is used rather than a nanoid port, since no
// nanoid implementation is available in the dependency set this module
// draws from.
func generateRoomID() string {
	b := make([]byte, RoomIDLength)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read on the standard reader does not fail in
		// practice; panicking here would be worse than a degraded id.
		for i := range b {
			b[i] = roomIDAlphabet[0]
		}
		return string(b)
	}
	for i, v := range b {
		b[i] = roomIDAlphabet[int(v)%len(roomIDAlphabet)]
	}
	return string(b)
}
