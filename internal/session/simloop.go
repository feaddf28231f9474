package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/donovan-yohan/dicetable-server/internal/game"
	"github.com/donovan-yohan/dicetable-server/internal/network"
)

// runSimulationLoop steps a room's physics at game.PhysicsTickRate until no
// die is left rolling or being dragged, broadcasting snapshots and settlement/roll-complete
// events along the way. One goroutine runs per room while any roll is in
// flight; TryStartSimulationLoop ensures only one is ever live at a time.
func runSimulationLoop(room *game.Room, logger *zap.Logger) {
	ticker := time.NewTicker(time.Second / time.Duration(game.PhysicsTickRate))
	defer ticker.Stop()
	defer room.StopSimulationLoop()

	announcedComplete := make(map[string]bool)

	for range ticker.C {
		if !room.IsSimulating() {
			return
		}

		result, ok := tickRoomSafely(room, logger)
		if !ok {
			continue
		}

		if len(result.Snapshot) > 0 {
			room.Broadcast(mustEncode(network.TypePhysicsSnapshot, network.PhysicsSnapshotPayload{
				Tick: result.Tick,
				Dice: result.Snapshot,
			}))
		}

		for _, settled := range result.Settled {
			room.Broadcast(mustEncode(network.TypeDieSettled, settled))
		}
		if len(result.Settled) == 0 {
			continue
		}

		// A roll_complete fires once per player who owns at least one die
		// in this tick's newly_settled set, once their full set of owned
		// dice has settled (which may include dice settled in an earlier
		// tick of the same roll).
		settledOwners := make(map[string]bool, len(result.Settled))
		for _, settled := range result.Settled {
			if die, ok := room.GetDiceState(settled.DiceID); ok {
				settledOwners[die.OwnerID] = true
			}
		}

		for playerID := range settledOwners {
			if announcedComplete[playerID] {
				continue
			}
			if !room.IsPlayerRollComplete(playerID) {
				continue
			}
			results, total := room.GetPlayerResults(playerID)
			if len(results) == 0 {
				continue
			}
			announcedComplete[playerID] = true
			room.Broadcast(mustEncode(network.TypeRollComplete, network.RollCompletePayload{
				PlayerID: playerID,
				Results:  results,
				Total:    total,
			}))
		}

		logger.Debug("tick settled dice", zap.String("room_id", room.ID), zap.Int("count", len(result.Settled)))
	}
}

// tickRoomSafely runs one physics tick with panic recovery: a crash inside
// the physics step for one room (e.g. a physics-engine failure) must not
// take the whole process down with it, since every other room's simulation
// loop runs as its own goroutine.
func tickRoomSafely(room *game.Room, logger *zap.Logger) (result game.PhysicsTickResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in physics tick",
				zap.String("room_id", room.ID),
				zap.Any("recover", r),
				zap.Stack("stack"))
			ok = false
		}
	}()
	result = room.PhysicsTick()
	return result, true
}
