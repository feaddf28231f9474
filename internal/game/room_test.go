package game

import (
	"testing"

	"github.com/g3n/engine/math32"
	"go.uber.org/zap"

	"github.com/donovan-yohan/dicetable-server/internal/network"
)

type fakeConn struct {
	sent [][]byte
}

func (f *fakeConn) Send(data []byte) error {
	f.sent = append(f.sent, data)
	return nil
}
func (f *fakeConn) Close() error       { return nil }
func (f *fakeConn) RemoteAddr() string { return "test" }

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	logger := zap.NewNop()
	return NewRoom("testroom", logger)
}

func spawnEntries(prefix string, types ...network.DiceType) []DiceSpawnRequest {
	entries := make([]DiceSpawnRequest, len(types))
	for i, typ := range types {
		entries[i] = DiceSpawnRequest{ID: prefix + string(rune('a'+i)), Type: typ}
	}
	return entries
}

func TestRoom_AddPlayer(t *testing.T) {
	r := newTestRoom(t)
	p, err := r.AddPlayer("p1", "Alice", "#ff0000", &fakeConn{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "p1" {
		t.Fatalf("got id %q, want p1", p.ID)
	}
	if r.PlayerCount() != 1 {
		t.Fatalf("got player count %d, want 1", r.PlayerCount())
	}
}

func TestRoom_AddPlayer_InvalidName(t *testing.T) {
	r := newTestRoom(t)
	_, err := r.AddPlayer("p1", "", "#ff0000", &fakeConn{})
	if err != ErrInvalidName {
		t.Fatalf("got %v, want ErrInvalidName", err)
	}
}

func TestRoom_AddPlayer_RoomFull(t *testing.T) {
	r := newTestRoom(t)
	for i := 0; i < MaxPlayers; i++ {
		if _, err := r.AddPlayer(string(rune('a'+i)), "Player", "#fff", &fakeConn{}); err != nil {
			t.Fatalf("unexpected error adding player %d: %v", i, err)
		}
	}
	if _, err := r.AddPlayer("overflow", "Player", "#fff", &fakeConn{}); err != ErrRoomFull {
		t.Fatalf("got %v, want ErrRoomFull", err)
	}
}

func TestRoom_RemovePlayer_RemovesOwnedDice(t *testing.T) {
	r := newTestRoom(t)
	r.AddPlayer("p1", "Alice", "#fff", &fakeConn{})

	spawned, err := r.SpawnDice("p1", spawnEntries("d", network.D6, network.D20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spawned) != 2 {
		t.Fatalf("got %d dice, want 2", len(spawned))
	}
	if r.DiceCount() != 2 {
		t.Fatalf("got dice count %d, want 2", r.DiceCount())
	}

	removed := r.RemovePlayer("p1")
	if len(removed) != 2 {
		t.Fatalf("got %d removed dice, want 2", len(removed))
	}
	if r.DiceCount() != 0 {
		t.Fatalf("expected dice count 0 after player removal, got %d", r.DiceCount())
	}
}

func TestRoom_SpawnDice_RespectsLimit(t *testing.T) {
	r := newTestRoom(t)
	r.AddPlayer("p1", "Alice", "#fff", &fakeConn{})

	entries := make([]DiceSpawnRequest, MaxDice+1)
	for i := range entries {
		entries[i] = DiceSpawnRequest{ID: "over" + string(rune(i)), Type: network.D6}
	}

	_, err := r.SpawnDice("p1", entries)
	if err != ErrDiceLimit {
		t.Fatalf("got %v, want ErrDiceLimit", err)
	}
}

func TestRoom_SpawnDice_IgnoresDuplicateID(t *testing.T) {
	r := newTestRoom(t)
	r.AddPlayer("p1", "Alice", "#fff", &fakeConn{})

	first, err := r.SpawnDice("p1", []DiceSpawnRequest{{ID: "die1", Type: network.D6}})
	if err != nil || len(first) != 1 {
		t.Fatalf("unexpected first spawn result: %v, %v", first, err)
	}

	second, err := r.SpawnDice("p1", []DiceSpawnRequest{{ID: "die1", Type: network.D20}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected colliding id to be skipped, got %d spawned", len(second))
	}
	if r.DiceCount() != 1 {
		t.Fatalf("expected dice count 1, got %d", r.DiceCount())
	}
}

func TestRoom_RemoveDice_OnlyOwnDice(t *testing.T) {
	r := newTestRoom(t)
	r.AddPlayer("p1", "Alice", "#fff", &fakeConn{})
	r.AddPlayer("p2", "Bob", "#000", &fakeConn{})

	spawned, _ := r.SpawnDice("p1", spawnEntries("d", network.D6))
	dieID := spawned[0].ID

	removed := r.RemoveDice("p2", []string{dieID})
	if len(removed) != 0 {
		t.Fatalf("expected p2 to remove nothing, removed %v", removed)
	}
	if r.DiceCount() != 1 {
		t.Fatalf("expected die to remain, count=%d", r.DiceCount())
	}

	removed = r.RemoveDice("p1", []string{dieID})
	if len(removed) != 1 {
		t.Fatalf("expected owner to remove the die, got %v", removed)
	}
}

func TestRoom_DragStart_RequiresOwnership(t *testing.T) {
	r := newTestRoom(t)
	r.AddPlayer("p1", "Alice", "#fff", &fakeConn{})
	r.AddPlayer("p2", "Bob", "#000", &fakeConn{})

	spawned, _ := r.SpawnDice("p1", spawnEntries("d", network.D6))
	dieID := spawned[0].ID

	if err := r.DragStart("p2", dieID, vec3Zero(), vec3Zero()); err != ErrNotOwner {
		t.Fatalf("got %v, want ErrNotOwner", err)
	}
	if err := r.DragStart("p1", dieID, vec3Zero(), vec3Zero()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.DragStart("p1", dieID, vec3Zero(), vec3Zero()); err != ErrAlreadyDragged {
		t.Fatalf("got %v, want ErrAlreadyDragged on second grab", err)
	}
}

func TestRoom_DragMove_RequiresDragger(t *testing.T) {
	r := newTestRoom(t)
	r.AddPlayer("p1", "Alice", "#fff", &fakeConn{})
	spawned, _ := r.SpawnDice("p1", spawnEntries("d", network.D6))
	dieID := spawned[0].ID

	if err := r.DragMove("p1", dieID, vec3Zero()); err != ErrNotDragger {
		t.Fatalf("got %v, want ErrNotDragger before drag_start", err)
	}

	r.DragStart("p1", dieID, vec3Zero(), vec3Zero())
	if err := r.DragMove("p1", dieID, vec3Zero()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRoom_DragMove_MovesDieTowardTarget(t *testing.T) {
	r := newTestRoom(t)
	r.AddPlayer("p1", "Alice", "#fff", &fakeConn{})
	spawned, _ := r.SpawnDice("p1", spawnEntries("d", network.D6))
	die := spawned[0]

	start, _ := r.world.Position(die.bodyHandle)
	r.DragStart("p1", die.ID, vec3Zero(), start)

	target := math32.Vector3{X: start.X + 3, Y: start.Y, Z: start.Z}
	r.DragMove("p1", die.ID, target)

	for i := 0; i < 10; i++ {
		r.PhysicsTick()
	}

	pos, _ := r.world.Position(die.bodyHandle)
	if pos.X <= start.X {
		t.Fatalf("expected die to move toward +X target, start.X=%v got.X=%v", start.X, pos.X)
	}
}

func TestRoom_DragEnd_AppliesThrowVelocity(t *testing.T) {
	r := newTestRoom(t)
	r.AddPlayer("p1", "Alice", "#fff", &fakeConn{})
	spawned, _ := r.SpawnDice("p1", spawnEntries("d", network.D6))
	die := spawned[0]

	start, _ := r.world.Position(die.bodyHandle)
	r.DragStart("p1", die.ID, vec3Zero(), start)

	history := []ThrowSample{
		{Position: start, TimeMs: 0},
		{Position: math32.Vector3{X: start.X + 1, Y: start.Y, Z: start.Z}, TimeMs: 100},
	}
	if err := r.DragEnd("p1", die.ID, history); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	velocity, _ := r.world.Velocity(die.bodyHandle)
	if velocity.X <= 0 {
		t.Fatalf("expected a positive X release velocity, got %v", velocity.X)
	}
	if die.isDragged() {
		t.Fatalf("die should no longer be marked as dragged")
	}
}

func TestRoom_RollPlayerDice_MarksSimulating(t *testing.T) {
	r := newTestRoom(t)
	r.AddPlayer("p1", "Alice", "#fff", &fakeConn{})
	r.SpawnDice("p1", spawnEntries("d", network.D6))

	if r.IsSimulating() {
		t.Fatalf("room should not be simulating before a roll")
	}
	rolled, err := r.RollPlayerDice("p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rolled) != 1 {
		t.Fatalf("got %d rolled dice, want 1", len(rolled))
	}
	if !r.IsSimulating() {
		t.Fatalf("room should be simulating after a roll")
	}
}

func TestRoom_UpdateColor_NoBroadcastSideEffect(t *testing.T) {
	r := newTestRoom(t)
	conn := &fakeConn{}
	r.AddPlayer("p1", "Alice", "#fff", conn)

	if err := r.UpdateColor("p1", "#00ff00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conn.sent) != 0 {
		t.Fatalf("update_color must not broadcast, got %d sent messages", len(conn.sent))
	}
}

func vec3Zero() math32.Vector3 { return math32.Vector3{} }
