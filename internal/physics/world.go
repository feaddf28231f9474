// Package physics implements the fixed-step rigid body simulation the dice
// table runs per room: a small arena of static walls/floor/ceiling plus one
// dynamic body per live die, integrated with a semi-implicit Euler step and
// resolved against the arena and other dice with simple penalty contacts.
//
// There is no full rapier3d-equivalent rigid body engine in the retrieved
// Go corpus, so this package is written against the body/world vocabulary
// g3n/engine's physics.Simulation exposes (dynamic/static bodies, per-body
// Integrate, force fields, sleep state) while doing its own narrowphase —
// g3n/engine itself ships a general convex-hull solver that this dice table
// does not need since every collider here is a box approximation.
package physics

import (
	"sync"

	"github.com/g3n/engine/math32"
)

// World constants, reproduced from the original rapier3d arena setup.
const (
	Gravity           = -9.81
	DiceRestitution   = 0.3
	DiceFriction      = 0.6
	GroundY           = -0.5
	CeilingY          = 15.0
	WallHalfX         = 8.0
	WallHalfZ         = 5.0
	WallHeight        = 8.0
	WallThickness     = 0.5

	LinearVelocityThreshold  = 0.01
	AngularVelocityThreshold = 0.01
	RestDurationMs           = 500

	MaxDiceVelocity = 40.0
)

// RestTicksFor returns how many consecutive at-rest ticks are required
// before a body is considered settled, given the simulation's tick rate.
func RestTicksFor(tickRateHz int) uint32 {
	return uint32(RestDurationMs * tickRateHz / 1000)
}

// World owns the arena geometry and the set of live dice bodies for one
// room's table. Every method takes the World's own mutex; callers (Room)
// additionally hold their room lock around Step and body mutation.
type World struct {
	mu sync.Mutex

	nextID uint64
	bodies map[uint64]*Body
	static []*Body

	tickRate  int
	restTicks uint32

	grid *broadphase
}

// NewWorld constructs a World with the fixed arena (ground, ceiling, four
// walls) already inserted as static bodies.
func NewWorld(tickRateHz int) *World {
	w := &World{
		bodies:   make(map[uint64]*Body),
		tickRate: tickRateHz,
	}
	w.restTicks = RestTicksFor(tickRateHz)
	w.grid = newBroadphase(1.5)
	w.buildArena()
	return w
}

func (w *World) buildArena() {
	mk := func(pos, halfExtents math32.Vector3) *Body {
		return &Body{
			Type:        Static,
			Position:    pos,
			Rotation:    math32.Quaternion{W: 1},
			Restitution: DiceRestitution,
			Friction:    DiceFriction,
			HalfExtents: halfExtents,
		}
	}

	w.static = []*Body{
		mk(math32.Vector3{X: 0, Y: GroundY, Z: 0}, math32.Vector3{X: WallHalfX, Y: WallThickness, Z: WallHalfZ}),
		mk(math32.Vector3{X: 0, Y: CeilingY, Z: 0}, math32.Vector3{X: WallHalfX, Y: WallThickness, Z: WallHalfZ}),
		mk(math32.Vector3{X: -WallHalfX, Y: WallHeight / 2, Z: 0}, math32.Vector3{X: WallThickness, Y: WallHeight / 2, Z: WallHalfZ}),
		mk(math32.Vector3{X: WallHalfX, Y: WallHeight / 2, Z: 0}, math32.Vector3{X: WallThickness, Y: WallHeight / 2, Z: WallHalfZ}),
		mk(math32.Vector3{X: 0, Y: WallHeight / 2, Z: -WallHalfZ}, math32.Vector3{X: WallHalfX, Y: WallHeight / 2, Z: WallThickness}),
		mk(math32.Vector3{X: 0, Y: WallHeight / 2, Z: WallHalfZ}, math32.Vector3{X: WallHalfX, Y: WallHeight / 2, Z: WallThickness}),
	}
}

// AddBody inserts a new dynamic body (a die) into the world and returns its
// handle id.
func (w *World) AddBody(position math32.Vector3, rotation math32.Quaternion, halfExtents math32.Vector3) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	w.bodies[id] = &Body{
		ID:          id,
		Type:        Dynamic,
		Position:    position,
		Rotation:    rotation,
		Mass:        1,
		Restitution: DiceRestitution,
		Friction:    DiceFriction,
		HalfExtents: halfExtents,
	}
	return id
}

// RemoveBody drops a body from the world.
func (w *World) RemoveBody(id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.bodies, id)
}

// ApplyImpulse applies a linear impulse to a body (used for roll throws).
func (w *World) ApplyImpulse(id uint64, impulse math32.Vector3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.bodies[id]; ok {
		b.applyImpulse(impulse)
	}
}

// ApplyTorqueImpulse applies an angular impulse to a body.
func (w *World) ApplyTorqueImpulse(id uint64, torque math32.Vector3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.bodies[id]; ok {
		b.applyTorqueImpulse(torque)
	}
}

// SetVelocity sets a body's linear velocity directly: used both to steer a
// dragged die toward its target each tick and to hand off a throw velocity
// when a drag ends.
func (w *World) SetVelocity(id uint64, velocity math32.Vector3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.bodies[id]; ok {
		b.LinearVelocity = velocity
		b.restTicks = 0
	}
}

// SetAngularVelocity sets a body's angular velocity directly (used to damp
// spin when a drag ends and a throw velocity is handed off).
func (w *World) SetAngularVelocity(id uint64, velocity math32.Vector3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.bodies[id]; ok {
		b.AngularVelocity = velocity
	}
}

// AngularVelocity returns a body's current angular velocity.
func (w *World) AngularVelocity(id uint64) (math32.Vector3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		return math32.Vector3{}, false
	}
	return b.AngularVelocity, true
}

// Position returns a body's current world position.
func (w *World) Position(id uint64) (math32.Vector3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		return math32.Vector3{}, false
	}
	return b.Position, true
}

// Rotation returns a body's current world rotation.
func (w *World) Rotation(id uint64) (math32.Quaternion, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		return math32.Quaternion{}, false
	}
	return b.Rotation, true
}

// Velocity returns a body's current linear velocity.
func (w *World) Velocity(id uint64) (math32.Vector3, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		return math32.Vector3{}, false
	}
	return b.LinearVelocity, true
}

// IsAtRest reports whether a body's linear and angular speed have been
// below threshold for long enough to count as settled.
func (w *World) IsAtRest(id uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		return false
	}
	return b.restTicks >= w.restTicks
}

// Step advances the world by one fixed timestep: applies gravity,
// integrates bodies, resolves contacts against the arena and other dice,
// and updates rest-tick counters.
func (w *World) Step(dt float32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	gravity := math32.Vector3{X: 0, Y: Gravity, Z: 0}

	for _, b := range w.bodies {
		b.applyForce(gravity, dt)
		b.integrate(dt)
		clampVelocity(b)
	}

	for _, b := range w.bodies {
		for _, s := range w.static {
			resolveBoxContact(b, s)
		}
	}

	w.grid.rebuild(w.bodies)
	for _, pair := range w.grid.pairs() {
		resolveBoxContact(pair[0], pair[1])
	}

	for _, b := range w.bodies {
		if b.speed() < LinearVelocityThreshold && b.angularSpeed() < AngularVelocityThreshold {
			b.restTicks++
		} else {
			b.restTicks = 0
		}
	}
}

// clampVelocity caps runaway linear speed, e.g. from an overlapping spawn
// resolving violently. It is applied post-integration so a single
// substep's impulses may transiently push speed above the cap before the
// next step clamps it back down.
func clampVelocity(b *Body) {
	speed := b.speed()
	if speed > MaxDiceVelocity {
		scale := MaxDiceVelocity / speed
		b.LinearVelocity.X *= scale
		b.LinearVelocity.Y *= scale
		b.LinearVelocity.Z *= scale
	}
}

// resolveBoxContact is a simple axis-aligned penalty contact: if two
// bodies' bounding boxes overlap, push the dynamic one(s) out along the
// axis of least penetration and apply a restitution/friction response.
func resolveBoxContact(a, b *Body) {
	if a.Type != Dynamic && b.Type != Dynamic {
		return
	}

	dx := b.Position.X - a.Position.X
	dy := b.Position.Y - a.Position.Y
	dz := b.Position.Z - a.Position.Z

	overlapX := (a.HalfExtents.X + b.HalfExtents.X) - abs32(dx)
	overlapY := (a.HalfExtents.Y + b.HalfExtents.Y) - abs32(dy)
	overlapZ := (a.HalfExtents.Z + b.HalfExtents.Z) - abs32(dz)

	if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
		return
	}

	restitution := (a.Restitution + b.Restitution) / 2
	friction := (a.Friction + b.Friction) / 2

	switch {
	case overlapX <= overlapY && overlapX <= overlapZ:
		separateAxis(a, b, overlapX, dx, 0)
	case overlapY <= overlapX && overlapY <= overlapZ:
		separateAxis(a, b, overlapY, dy, 1)
	default:
		separateAxis(a, b, overlapZ, dz, 2)
	}

	applyRestitution(a, b, restitution, friction)
}

func separateAxis(a, b *Body, overlap, delta float32, axis int) {
	sign := float32(1)
	if delta < 0 {
		sign = -1
	}

	totalInvMass := a.invMass() + b.invMass()
	if totalInvMass == 0 {
		return
	}

	aShare := a.invMass() / totalInvMass
	bShare := b.invMass() / totalInvMass

	switch axis {
	case 0:
		a.Position.X -= sign * overlap * aShare
		b.Position.X += sign * overlap * bShare
	case 1:
		a.Position.Y -= sign * overlap * aShare
		b.Position.Y += sign * overlap * bShare
	default:
		a.Position.Z -= sign * overlap * aShare
		b.Position.Z += sign * overlap * bShare
	}
}

// applyRestitution bounces contacting dynamic bodies. A bounce slower than
// restingContactSpeed is cancelled so a body lying on a surface can reach
// rest, and friction damps angular velocity on every contact.
func applyRestitution(a, b *Body, restitution, friction float32) {
	const restingContactSpeed = 0.1
	for _, body := range [2]*Body{a, b} {
		if body.Type != Dynamic {
			continue
		}
		body.LinearVelocity.X *= -restitution * 0.1
		body.LinearVelocity.Y *= -restitution
		body.LinearVelocity.Z *= -restitution * 0.1
		if abs32(body.LinearVelocity.Y) < restingContactSpeed {
			body.LinearVelocity.Y = 0
		}
		body.AngularVelocity.X *= 1 - friction
		body.AngularVelocity.Y *= 1 - friction
		body.AngularVelocity.Z *= 1 - friction
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
