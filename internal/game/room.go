// Package game implements the core game logic: players, dice, and the
// room that hosts a physics-simulated table for both.
package game

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/g3n/engine/math32"
	"go.uber.org/zap"

	"github.com/donovan-yohan/dicetable-server/internal/dice"
	"github.com/donovan-yohan/dicetable-server/internal/facedetect"
	"github.com/donovan-yohan/dicetable-server/internal/network"
	"github.com/donovan-yohan/dicetable-server/internal/physics"
)

// Room-level limits, per the original table-top arena.
const (
	MaxPlayers = 8
	MaxDice    = 30

	IdleTimeoutSecs = 1800

	PhysicsTickRate     = 60
	SnapshotTickDivisor = 1

	MaxDisplayNameLen = 20

	// Drag force tuning, per the original's client-follow spring.
	dragDistanceThreshold = 2.0
	dragFollowSpeed       = 8.0
	dragDistanceBoost     = 12.0
	dragRollFactor        = 1.5
	dragSpinFactor        = 2.5

	// motionGateThreshold is the squared-distance-since-last-snapshot
	// threshold a settled, non-dragged die must clear to still be
	// included in a physics_snapshot.
	motionGateThreshold = 0.01 * 0.01
)

// dragState tracks an in-progress drag of a single die: the position the
// die is being steered toward each tick, and the previous tick's target,
// used to derive a horizontal move direction for the roll/spin torque.
type dragState struct {
	draggerID           string
	grabOffset          math32.Vector3
	targetPosition      math32.Vector3
	lastTargetPosition  math32.Vector3
}

// ServerDie is the server-authoritative record of one die on the table.
type ServerDie struct {
	ID       string
	OwnerID  string
	DiceType network.DiceType

	bodyHandle uint64

	isRolling bool
	faceValue *int

	drag *dragState

	lastSnapshotPosition math32.Vector3
	hasSnapshotPosition  bool
}

// isDragged reports whether this die is currently being held by a player.
func (d *ServerDie) isDragged() bool { return d.drag != nil }

// Room hosts one table: its players, its dice, and the physics simulation
// that rolls run through. Methods ending in "Locked" expect the caller to
// already hold the room's lock.
type Room struct {
	mu sync.RWMutex

	ID      string
	players map[string]*Player
	dice    map[string]*ServerDie

	world *physics.World

	tickCount  uint64
	simulating atomic.Bool // is_simulating: at least one die is rolling or dragged
	simRunning atomic.Bool // is_sim_running: the tick goroutine is alive

	lastActivity time.Time

	logger *zap.Logger
}

// NewRoom creates a new, empty room.
func NewRoom(id string, logger *zap.Logger) *Room {
	return &Room{
		ID:           id,
		players:      make(map[string]*Player),
		dice:         make(map[string]*ServerDie),
		world:        physics.NewWorld(PhysicsTickRate),
		lastActivity: time.Now(),
		logger:       logger.With(zap.String("room_id", id)),
	}
}

// Errors returned by Room operations, one typed error per wire error code.
var (
	ErrRoomFull       = &RoomError{code: network.ErrCodeRoomFull, message: "room is full"}
	ErrInvalidName    = &RoomError{code: network.ErrCodeInvalidName, message: "display name must be 1-20 characters"}
	ErrDiceLimit      = &RoomError{code: network.ErrCodeDiceLimit, message: "table is full"}
	ErrPlayerNotFound = &RoomError{code: network.ErrCodePlayerNotFound, message: "player not found"}
	ErrNotOwner       = &RoomError{code: network.ErrCodeNotOwner, message: "not the owner of this die"}
	ErrNotDragger     = &RoomError{code: network.ErrCodeNotDragger, message: "not currently dragging this die"}
	ErrAlreadyDragged = &RoomError{code: network.ErrCodeAlreadyDragged, message: "die is already being dragged"}
	ErrDieNotFound    = &RoomError{code: network.ErrCodeDieNotFound, message: "die not found"}
)

// RoomError is a typed error carrying the wire error code it maps to.
type RoomError struct {
	code    string
	message string
}

func (e *RoomError) Error() string { return e.message }

// Code returns the wire error code for this error.
func (e *RoomError) Code() string { return e.code }

// PlayerCount returns the current number of players.
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// DiceCount returns the current number of dice on the table.
func (r *Room) DiceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.dice)
}

// IsFull reports whether the room is at player capacity.
func (r *Room) IsFull() bool {
	return r.PlayerCount() >= MaxPlayers
}

// IsEmpty reports whether the room has no players.
func (r *Room) IsEmpty() bool {
	return r.PlayerCount() == 0
}

// Touch records activity, resetting the idle-expiry clock.
func (r *Room) Touch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActivity = time.Now()
}

// IsIdleExpired reports whether the room has been empty and untouched for
// longer than IdleTimeoutSecs.
func (r *Room) IsIdleExpired() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players) == 0 && time.Since(r.lastActivity) > IdleTimeoutSecs*time.Second
}

// AddPlayer adds a new player to the room and returns it.
func (r *Room) AddPlayer(id, displayName, color string, conn PlayerConnection) (*Player, error) {
	if displayName == "" || len(displayName) > MaxDisplayNameLen {
		return nil, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= MaxPlayers {
		return nil, ErrRoomFull
	}

	player := NewPlayer(id, displayName, color, conn)
	r.players[id] = player
	r.lastActivity = time.Now()

	return player, nil
}

// RemovePlayer removes a player and every die they own, returning the ids
// of the dice that were removed.
func (r *Room) RemovePlayer(playerID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[playerID]
	if !ok {
		return nil
	}
	delete(r.players, playerID)
	r.lastActivity = time.Now()

	var removed []string
	for dieID, die := range r.dice {
		if die.OwnerID == playerID {
			r.world.RemoveBody(die.bodyHandle)
			delete(r.dice, dieID)
			removed = append(removed, dieID)
		}
	}

	player.Connection.Close()
	return removed
}

// GetPlayer returns a player by id.
func (r *Room) GetPlayer(playerID string) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[playerID]
	return p, ok
}

// UpdateColor changes a player's color. Per the wire protocol this never
// triggers a broadcast.
func (r *Room) UpdateColor(playerID, color string) error {
	r.mu.RLock()
	player, ok := r.players[playerID]
	r.mu.RUnlock()
	if !ok {
		return ErrPlayerNotFound
	}
	player.SetColor(color)
	return nil
}

// DiceSpawnRequest names one die a player wants spawned: the client
// assigns the id so it can correlate the spawned die with the one it
// requested.
type DiceSpawnRequest struct {
	ID   string
	Type network.DiceType
}

// SpawnDice creates one die per requested entry, owned by playerID, using
// the client-supplied die id, and inserts each into the physics world at a
// random spawn position. Entries whose id collides with an existing die in
// this room are skipped.
func (r *Room) SpawnDice(playerID string, entries []DiceSpawnRequest) ([]*ServerDie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}

	if len(r.dice)+len(entries) > MaxDice {
		return nil, ErrDiceLimit
	}

	spawned := make([]*ServerDie, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		if _, exists := r.dice[entry.ID]; exists {
			continue
		}

		pos := dice.GenerateSpawnPosition()
		rot := dice.GenerateSpawnRotation()

		handle := r.world.AddBody(pos, rot, colliderHalfExtents(entry.Type))

		die := &ServerDie{
			ID:         entry.ID,
			OwnerID:    playerID,
			DiceType:   entry.Type,
			bodyHandle: handle,
		}
		r.dice[entry.ID] = die
		spawned = append(spawned, die)
		player.AddDie(entry.ID)
	}

	r.lastActivity = time.Now()
	return spawned, nil
}

// colliderHalfExtents returns the axis-aligned bounding-box half-extent for
// a die type's collider, used by the broadphase/narrowphase in
// internal/physics. D6 uses the chamfered cuboid's half-extent directly;
// every other type derives its box from the type's actual convex hull
// (dice.HullVertices), so a D4 and a D20 no longer collide and settle as
// identical boxes.
func colliderHalfExtents(t network.DiceType) math32.Vector3 {
	if t == network.D6 {
		size := float32(dice.DiceSize - dice.EdgeChamferRadius)
		return math32.Vector3{X: size, Y: size, Z: size}
	}

	verts := dice.HullVertices(t)
	if len(verts) == 0 {
		size := float32(dice.DiceSize)
		return math32.Vector3{X: size, Y: size, Z: size}
	}

	var half math32.Vector3
	for _, v := range verts {
		if x := absF(v.X); x > half.X {
			half.X = x
		}
		if y := absF(v.Y); y > half.Y {
			half.Y = y
		}
		if z := absF(v.Z); z > half.Z {
			half.Z = z
		}
	}
	return half
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// RemoveDice removes the subset of diceIDs owned by playerID, returning
// the ids actually removed.
func (r *Room) RemoveDice(playerID string, diceIDs []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[playerID]
	if !ok {
		return nil
	}

	var removed []string
	for _, id := range diceIDs {
		die, ok := r.dice[id]
		if !ok || die.OwnerID != playerID {
			continue
		}
		r.world.RemoveBody(die.bodyHandle)
		delete(r.dice, id)
		player.RemoveDie(id)
		removed = append(removed, id)
	}

	if len(removed) > 0 {
		r.lastActivity = time.Now()
	}
	return removed
}

// RollPlayerDice applies a random roll impulse/torque to every die the
// player owns and marks the room as simulating. It returns the ids of the
// dice actually rolled (dice currently being dragged are skipped).
func (r *Room) RollPlayerDice(playerID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}

	var rolled []string
	for _, dieID := range player.DieIDs() {
		die, ok := r.dice[dieID]
		if !ok || die.drag != nil {
			continue
		}
		r.world.ApplyImpulse(die.bodyHandle, dice.GenerateRollImpulse())
		r.world.ApplyTorqueImpulse(die.bodyHandle, dice.GenerateRollTorque())
		die.isRolling = true
		die.faceValue = nil
		rolled = append(rolled, dieID)
	}

	r.simulating.Store(true)
	r.lastActivity = time.Now()
	return rolled, nil
}

// DragStart marks a die as grabbed by a player: its target position is
// seeded at the grab point so the first tick's drag force doesn't yank it.
func (r *Room) DragStart(playerID, dieID string, grabOffset, worldPosition math32.Vector3) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	die, ok := r.dice[dieID]
	if !ok {
		return ErrDieNotFound
	}
	if die.OwnerID != playerID {
		return ErrNotOwner
	}
	if die.isDragged() {
		return ErrAlreadyDragged
	}

	if !player.BeginDrag(dieID) {
		return ErrAlreadyDragged
	}
	die.drag = &dragState{
		draggerID:          playerID,
		grabOffset:         grabOffset,
		targetPosition:     worldPosition,
		lastTargetPosition: worldPosition,
	}
	die.isRolling = false
	die.faceValue = nil
	r.simulating.Store(true)
	r.lastActivity = time.Now()
	return nil
}

// DragMove shifts a dragged die's target position: the previous target
// becomes last_target_position (used to derive a move direction for
// drag torque) and worldPosition becomes the new target_position. The
// actual force application happens once per tick in PhysicsTick.
func (r *Room) DragMove(playerID, dieID string, worldPosition math32.Vector3) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	die, ok := r.dice[dieID]
	if !ok {
		return ErrDieNotFound
	}
	if _, playerOK := r.players[playerID]; !playerOK {
		return ErrPlayerNotFound
	}
	if die.drag == nil || die.drag.draggerID != playerID {
		return ErrNotDragger
	}
	if !r.players[playerID].dragRate.allow() {
		return nil // rate-limited: silently drop the move
	}

	die.drag.lastTargetPosition = die.drag.targetPosition
	die.drag.targetPosition = worldPosition
	return nil
}

// DragEnd releases a dragged die back to full physics, handing off a throw
// velocity computed from the client-reported drag history.
func (r *Room) DragEnd(playerID, dieID string, history []ThrowSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	die, ok := r.dice[dieID]
	if !ok {
		return ErrDieNotFound
	}
	if _, ok := r.players[playerID]; !ok {
		return ErrPlayerNotFound
	}
	if die.drag == nil || die.drag.draggerID != playerID {
		return ErrNotDragger
	}

	die.drag = nil
	die.isRolling = true
	die.faceValue = nil
	r.players[playerID].EndDrag(dieID)

	if velocity, ok := ThrowVelocity(history); ok {
		r.world.SetVelocity(die.bodyHandle, velocity)
		angular, _ := r.world.AngularVelocity(die.bodyHandle)
		angular.X *= throwAngularDamping
		angular.Y *= throwAngularDamping
		angular.Z *= throwAngularDamping
		r.world.SetAngularVelocity(die.bodyHandle, angular)
	}

	r.simulating.Store(true)
	r.lastActivity = time.Now()
	return nil
}

// IsSimulating reports whether any die is currently rolling or being dragged.
func (r *Room) IsSimulating() bool {
	return r.simulating.Load()
}

// TryStartSimulationLoop flips simRunning from false to true atomically,
// returning true if the caller won the race and should spawn the loop.
func (r *Room) TryStartSimulationLoop() bool {
	return r.simulating.Load() && !r.simRunning.Swap(true)
}

// PhysicsTickResult carries the outbound effects of one simulation step.
type PhysicsTickResult struct {
	Tick     uint64
	Snapshot []network.DiceSnapshot
	Settled  []network.DieSettledPayload
}

// PhysicsTick advances the simulation by one fixed step: apply drag
// forces, step physics, read back poses, build a motion-gated snapshot,
// detect settlement, then close the simulation if nothing is left moving.
func (r *Room) PhysicsTick() PhysicsTickResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, die := range r.dice {
		if die.drag != nil {
			r.applyDragForce(die)
		}
	}

	r.world.Step(1.0 / PhysicsTickRate)
	r.tickCount++

	result := PhysicsTickResult{Tick: r.tickCount}

	// Step 5: build the motion-gated snapshot before settlement detection
	// mutates isRolling, so a die that settles this tick still gets one
	// final physics_snapshot entry alongside its die_settled.
	if r.tickCount%SnapshotTickDivisor == 0 {
		for _, die := range r.dice {
			pos, _ := r.world.Position(die.bodyHandle)
			rot, _ := r.world.Rotation(die.bodyHandle)

			moved := true
			if die.hasSnapshotPosition {
				dx := pos.X - die.lastSnapshotPosition.X
				dy := pos.Y - die.lastSnapshotPosition.Y
				dz := pos.Z - die.lastSnapshotPosition.Z
				moved = dx*dx+dy*dy+dz*dz > motionGateThreshold
			}

			if !die.isRolling && die.drag == nil && !moved {
				continue
			}

			die.lastSnapshotPosition = pos
			die.hasSnapshotPosition = true

			result.Snapshot = append(result.Snapshot, network.DiceSnapshot{
				ID: die.ID,
				P:  [3]float32{pos.X, pos.Y, pos.Z},
				R:  [4]float32{rot.X, rot.Y, rot.Z, rot.W},
			})
		}
	}

	// Step 6: settlement detection.
	anyRolling := false
	anyDragging := false
	for _, die := range r.dice {
		if die.drag != nil {
			anyDragging = true
		}
		if !die.isRolling || die.drag != nil {
			continue
		}
		anyRolling = true

		if r.world.IsAtRest(die.bodyHandle) {
			pos, _ := r.world.Position(die.bodyHandle)
			rot, _ := r.world.Rotation(die.bodyHandle)
			faceValue := facedetect.DetectFaceValue([4]float32{rot.X, rot.Y, rot.Z, rot.W}, die.DiceType)

			die.isRolling = false
			die.faceValue = &faceValue

			result.Settled = append(result.Settled, network.DieSettledPayload{
				DiceID:    die.ID,
				FaceValue: faceValue,
				Position:  [3]float32{pos.X, pos.Y, pos.Z},
				Rotation:  [4]float32{rot.X, rot.Y, rot.Z, rot.W},
			})
		}
	}

	if !anyRolling && !anyDragging {
		r.simulating.Store(false)
	}

	return result
}

// applyDragForce steers a dragged die's body toward its target position:
// the die's velocity is set (not forced) toward the target each tick, with
// magnitude boosted the farther away the target is, plus a roll/spin
// torque derived from the target's horizontal move direction since the
// previous tick.
func (r *Room) applyDragForce(die *ServerDie) {
	pos, ok := r.world.Position(die.bodyHandle)
	if !ok {
		return
	}

	d := math32.Vector3{
		X: die.drag.targetPosition.X - pos.X,
		Y: die.drag.targetPosition.Y - pos.Y,
		Z: die.drag.targetPosition.Z - pos.Z,
	}
	distance := vecLen(d)

	speed := float32(dragFollowSpeed)
	if distance > dragDistanceThreshold {
		boost := (distance - dragDistanceThreshold) / dragDistanceThreshold
		if boost > 1 {
			boost = 1
		}
		speed += dragDistanceBoost * boost
	}

	r.world.SetVelocity(die.bodyHandle, math32.Vector3{X: d.X * speed, Y: d.Y * speed, Z: d.Z * speed})

	mx := die.drag.targetPosition.X - die.drag.lastTargetPosition.X
	mz := die.drag.targetPosition.Z - die.drag.lastTargetPosition.Z
	moveSpeed := vecLen(math32.Vector3{X: mx, Y: 0, Z: mz})
	if moveSpeed <= 0.001 {
		return
	}

	roll := math32.Vector3{X: -mz * moveSpeed * dragRollFactor, Y: 0, Z: mx * moveSpeed * dragRollFactor}
	spin := math32.Vector3{X: mx * moveSpeed * dragSpinFactor, Y: 0, Z: mz * moveSpeed * dragSpinFactor}
	r.world.ApplyTorqueImpulse(die.bodyHandle, math32.Vector3{X: roll.X + spin.X, Y: roll.Y + spin.Y, Z: roll.Z + spin.Z})
}

// StopSimulationLoop clears the sim-running flag; called by the owning
// goroutine when it observes IsSimulating() has gone false.
func (r *Room) StopSimulationLoop() {
	r.simRunning.Store(false)
}

// IsPlayerRollComplete reports whether every die a player owns has
// settled (none are still rolling or being dragged).
func (r *Room) IsPlayerRollComplete(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	player, ok := r.players[playerID]
	if !ok {
		return false
	}

	found := false
	for _, dieID := range player.DieIDs() {
		die, ok := r.dice[dieID]
		if !ok {
			continue
		}
		found = true
		if die.isRolling || die.drag != nil || die.faceValue == nil {
			return false
		}
	}
	return found
}

// GetPlayerResults returns each owned die's settled result plus the sum of
// their face values.
func (r *Room) GetPlayerResults(playerID string) ([]network.DieResult, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	player, ok := r.players[playerID]
	if !ok {
		return nil, 0
	}

	var results []network.DieResult
	total := 0
	for _, dieID := range player.DieIDs() {
		die, ok := r.dice[dieID]
		if !ok || die.faceValue == nil {
			continue
		}
		results = append(results, network.DieResult{
			DiceID:    die.ID,
			DiceType:  die.DiceType,
			FaceValue: *die.faceValue,
		})
		total += *die.faceValue
	}
	return results, total
}

// GetDiceState returns the full wire state for one die.
func (r *Room) GetDiceState(dieID string) (network.DiceState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.dice[dieID]
	if !ok {
		return network.DiceState{}, false
	}
	pos, _ := r.world.Position(d.bodyHandle)
	rot, _ := r.world.Rotation(d.bodyHandle)
	return network.DiceState{
		ID:       d.ID,
		OwnerID:  d.OwnerID,
		DiceType: d.DiceType,
		Position: [3]float32{pos.X, pos.Y, pos.Z},
		Rotation: [4]float32{rot.X, rot.Y, rot.Z, rot.W},
	}, true
}

// BuildRoomState returns the full room_state payload snapshot.
func (r *Room) BuildRoomState() network.RoomStatePayload {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]network.PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		id, name, color := p.Info()
		players = append(players, network.PlayerInfo{ID: id, DisplayName: name, Color: color})
	}

	diceStates := make([]network.DiceState, 0, len(r.dice))
	for _, d := range r.dice {
		pos, _ := r.world.Position(d.bodyHandle)
		rot, _ := r.world.Rotation(d.bodyHandle)
		diceStates = append(diceStates, network.DiceState{
			ID:       d.ID,
			OwnerID:  d.OwnerID,
			DiceType: d.DiceType,
			Position: [3]float32{pos.X, pos.Y, pos.Z},
			Rotation: [4]float32{rot.X, rot.Y, rot.Z, rot.W},
		})
	}

	return network.RoomStatePayload{RoomID: r.ID, Players: players, Dice: diceStates}
}

// Broadcast sends data to every player in the room.
func (r *Room) Broadcast(data []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.broadcastLocked(data)
}

func (r *Room) broadcastLocked(data []byte) {
	for _, p := range r.players {
		if err := p.Connection.Send(data); err != nil {
			r.logger.Warn("failed to send to player", zap.String("player_id", p.ID), zap.Error(err))
		}
	}
}

// BroadcastExcept sends data to every player except exceptID.
func (r *Room) BroadcastExcept(data []byte, exceptID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, p := range r.players {
		if id == exceptID {
			continue
		}
		if err := p.Connection.Send(data); err != nil {
			r.logger.Warn("failed to send to player", zap.String("player_id", p.ID), zap.Error(err))
		}
	}
}
