package dice

import (
	"math"
	"math/rand"

	"github.com/g3n/engine/math32"
)

// Roll impulse/torque/spawn bounds, lifted from the original rapier3d dice
// physics constants.
const (
	RollHorizontalMin = 1.0
	RollHorizontalMax = 3.0
	RollVerticalMin   = 3.0
	RollVerticalMax   = 5.0
	RollTorqueMax     = 5.0

	SpawnXRange = 3.0
	SpawnY      = 2.0
	SpawnZRange = 2.0
)

func randRange(min, max float64) float32 {
	return float32(min + rand.Float64()*(max-min))
}

// GenerateRollImpulse returns a linear impulse with a random horizontal
// direction and magnitude in [RollHorizontalMin, RollHorizontalMax], and a
// vertical component in [RollVerticalMin, RollVerticalMax].
func GenerateRollImpulse() math32.Vector3 {
	angle := rand.Float64() * 2 * math.Pi
	horizontal := randRange(RollHorizontalMin, RollHorizontalMax)
	vertical := randRange(RollVerticalMin, RollVerticalMax)

	return math32.Vector3{
		X: horizontal * float32(math.Cos(angle)),
		Y: vertical,
		Z: horizontal * float32(math.Sin(angle)),
	}
}

// GenerateRollTorque returns a random torque impulse with each axis in
// [-RollTorqueMax, RollTorqueMax].
func GenerateRollTorque() math32.Vector3 {
	return math32.Vector3{
		X: randRange(-RollTorqueMax, RollTorqueMax),
		Y: randRange(-RollTorqueMax, RollTorqueMax),
		Z: randRange(-RollTorqueMax, RollTorqueMax),
	}
}

// GenerateSpawnPosition returns a random spawn point above the table.
func GenerateSpawnPosition() math32.Vector3 {
	return math32.Vector3{
		X: randRange(-SpawnXRange, SpawnXRange),
		Y: SpawnY,
		Z: randRange(-SpawnZRange, SpawnZRange),
	}
}

// GenerateSpawnRotation returns a uniformly random initial orientation for
// a freshly spawned die, built from random Euler angles about each axis.
// The middle (Y) angle is drawn as asin of a uniform value in [-1, 1], which
// makes the composed X*Y*Z rotation uniform over all orientations.
func GenerateSpawnRotation() math32.Quaternion {
	x := rand.Float64() * 2 * math.Pi
	y := math.Asin(2*rand.Float64() - 1)
	z := rand.Float64() * 2 * math.Pi

	qx := eulerAxis(1, 0, 0, x)
	qy := eulerAxis(0, 1, 0, y)
	qz := eulerAxis(0, 0, 1, z)

	q := quatMultiply(quatMultiply(qx, qy), qz)
	return quatNormalize(q)
}

func eulerAxis(ax, ay, az float32, angle float64) math32.Quaternion {
	half := angle / 2
	s := float32(math.Sin(half))
	return math32.Quaternion{X: ax * s, Y: ay * s, Z: az * s, W: float32(math.Cos(half))}
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
