package game

import (
	"math"

	"github.com/g3n/engine/math32"
)

// Throw-velocity tuning constants, matching the client's release-flick feel.
const (
	minThrowSpeed      = 0.5
	throwVelocityScale = 1.5
	maxThrowSpeed      = 15.0
	throwUpwardBoost   = 2.0

	// throwAngularDamping scales a die's angular velocity on release so a
	// thrown die doesn't keep spinning at its pre-release drag-torque
	// rate once the linear release velocity takes over.
	throwAngularDamping = 0.75
)

// ThrowSample is one client-reported position/time pair from a drag's
// recorded history, used to derive a release velocity when the drag ends.
type ThrowSample struct {
	Position math32.Vector3
	TimeMs   float64
}

// ThrowVelocity derives a release velocity from a drag_end message's
// recorded position history:
//  1. fewer than 2 samples: no throw.
//  2. take the last up to 3 samples.
//  3. compute per-step velocities (Δposition/Δtime) between adjacent pairs
//     with Δtime > 0.
//  4. no velocities computed: no throw.
//  5. average them.
//  6. below minThrowSpeed: no throw (the die is simply dropped in place).
//  7. rescale to min(|v_avg|*throwVelocityScale, maxThrowSpeed).
//  8. add throwUpwardBoost to the Y component.
func ThrowVelocity(history []ThrowSample) (math32.Vector3, bool) {
	if len(history) < 2 {
		return math32.Vector3{}, false
	}

	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	var sum math32.Vector3
	count := 0
	for i := 1; i < len(recent); i++ {
		dtMs := recent[i].TimeMs - recent[i-1].TimeMs
		if dtMs <= 0 {
			continue
		}
		dt := dtMs / 1000.0

		sum.X += float32((float64(recent[i].Position.X) - float64(recent[i-1].Position.X)) / dt)
		sum.Y += float32((float64(recent[i].Position.Y) - float64(recent[i-1].Position.Y)) / dt)
		sum.Z += float32((float64(recent[i].Position.Z) - float64(recent[i-1].Position.Z)) / dt)
		count++
	}
	if count == 0 {
		return math32.Vector3{}, false
	}

	avg := math32.Vector3{X: sum.X / float32(count), Y: sum.Y / float32(count), Z: sum.Z / float32(count)}
	speed := vecLen(avg)
	if speed < minThrowSpeed {
		return math32.Vector3{}, false
	}

	targetSpeed := speed * throwVelocityScale
	if targetSpeed > maxThrowSpeed {
		targetSpeed = maxThrowSpeed
	}
	scale := targetSpeed / speed
	avg.X *= scale
	avg.Y *= scale
	avg.Z *= scale

	avg.Y += throwUpwardBoost

	return avg, true
}

func vecLen(v math32.Vector3) float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}
