// Package facedetect turns a settled die's world rotation into the face
// value showing upward (or downward, for d4).
package facedetect

import (
	"github.com/g3n/engine/math32"

	"github.com/donovan-yohan/dicetable-server/internal/dice"
	"github.com/donovan-yohan/dicetable-server/internal/network"
)

// targetUp and targetDown are the camera-facing directions a rolled die's
// face normal is compared against. A d4 shows its value on the face
// pointing down (its apex points up), every other die shows it face-up.
var (
	targetUp   = math32.Vector3{X: 0, Y: 1, Z: 0}
	targetDown = math32.Vector3{X: 0, Y: -1, Z: 0}
)

// DetectFaceValue rotates each face normal of t by rotation and returns the
// value whose rotated normal has the largest dot product with the target
// direction.
func DetectFaceValue(rotation [4]float32, t network.DiceType) int {
	faces := dice.FaceNormals(t)
	if len(faces) == 0 {
		return 0
	}

	target := targetUp
	if t == network.D4 {
		target = targetDown
	}

	q := math32.Quaternion{X: rotation[0], Y: rotation[1], Z: rotation[2], W: rotation[3]}

	bestValue := faces[0].Value
	bestDot := float32(-2) // below any possible dot product of unit vectors

	for _, f := range faces {
		rotated := f.Normal
		rotated.ApplyQuaternion(&q)
		d := rotated.Dot(&target)
		if d > bestDot {
			bestDot = d
			bestValue = f.Value
		}
	}

	return bestValue
}
