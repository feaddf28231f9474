package physics

import (
	"math"

	"github.com/g3n/engine/math32"
)

// BodyType distinguishes simulated dice from the static arena geometry,
// named after g3n/engine's object.Dynamic/object.Static body kinds.
type BodyType int

const (
	Dynamic BodyType = iota
	Static
)

// Body is a single rigid body tracked by the World: either a rolling die
// or one of the fixed arena surfaces (ground, ceiling, walls).
type Body struct {
	ID   uint64
	Type BodyType

	Position math32.Vector3
	Rotation math32.Quaternion

	LinearVelocity  math32.Vector3
	AngularVelocity math32.Vector3

	Mass        float32
	Restitution float32
	Friction    float32

	// HalfExtents describes the body's collider as an axis-aligned box in
	// its local frame, used for arena walls/floor/ceiling and as a
	// conservative bound for dice (the true collider per dice type is a
	// rounded cuboid or convex hull, but broadphase and wall contacts only
	// need a bounding box).
	HalfExtents math32.Vector3

	restTicks uint32
}

func (b *Body) invMass() float32 {
	if b.Type == Static || b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

// applyForce accumulates a constant-acceleration force (gravity) over dt.
func (b *Body) applyForce(force math32.Vector3, dt float32) {
	if b.Type != Dynamic {
		return
	}
	invM := b.invMass()
	b.LinearVelocity.X += force.X * invM * dt
	b.LinearVelocity.Y += force.Y * invM * dt
	b.LinearVelocity.Z += force.Z * invM * dt
}

// applyImpulse adds an instantaneous change in linear velocity.
func (b *Body) applyImpulse(impulse math32.Vector3) {
	if b.Type != Dynamic {
		return
	}
	invM := b.invMass()
	b.LinearVelocity.X += impulse.X * invM
	b.LinearVelocity.Y += impulse.Y * invM
	b.LinearVelocity.Z += impulse.Z * invM
}

// applyTorqueImpulse adds an instantaneous change in angular velocity.
func (b *Body) applyTorqueImpulse(torque math32.Vector3) {
	if b.Type != Dynamic {
		return
	}
	invM := b.invMass()
	b.AngularVelocity.X += torque.X * invM
	b.AngularVelocity.Y += torque.Y * invM
	b.AngularVelocity.Z += torque.Z * invM
}

// integrate advances position and rotation by dt given the current
// velocities, mirroring g3n/engine physics.Simulation's per-body Integrate
// step (semi-implicit Euler, followed by quaternion renormalization).
func (b *Body) integrate(dt float32) {
	if b.Type != Dynamic {
		return
	}

	b.Position.X += b.LinearVelocity.X * dt
	b.Position.Y += b.LinearVelocity.Y * dt
	b.Position.Z += b.LinearVelocity.Z * dt

	// Integrate orientation by treating angular velocity as the imaginary
	// part of a pure quaternion and applying it as a small rotation.
	w := math32.Quaternion{X: b.AngularVelocity.X, Y: b.AngularVelocity.Y, Z: b.AngularVelocity.Z, W: 0}
	dq := quatMultiply(w, b.Rotation)
	b.Rotation.X += 0.5 * dq.X * dt
	b.Rotation.Y += 0.5 * dq.Y * dt
	b.Rotation.Z += 0.5 * dq.Z * dt
	b.Rotation.W += 0.5 * dq.W * dt
	b.Rotation = quatNormalize(b.Rotation)
}

func (b *Body) speed() float32 {
	return vecLength(b.LinearVelocity)
}

func (b *Body) angularSpeed() float32 {
	return vecLength(b.AngularVelocity)
}

func quatMultiply(a, b math32.Quaternion) math32.Quaternion {
	return math32.Quaternion{
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}

func quatNormalize(q math32.Quaternion) math32.Quaternion {
	length := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if length == 0 {
		return math32.Quaternion{W: 1}
	}
	return math32.Quaternion{X: q.X / length, Y: q.Y / length, Z: q.Z / length, W: q.W / length}
}

func vecLength(v math32.Vector3) float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}
