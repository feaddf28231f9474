package facedetect

import (
	"math"
	"testing"

	"github.com/donovan-yohan/dicetable-server/internal/network"
)

func axisAngleQuat(ax, ay, az float64, angleRad float64) [4]float32 {
	half := angleRad / 2
	s := math.Sin(half)
	return [4]float32{float32(ax * s), float32(ay * s), float32(az * s), float32(math.Cos(half))}
}

func TestDetectFaceValue_D6Identity(t *testing.T) {
	identity := [4]float32{0, 0, 0, 1}
	got := DetectFaceValue(identity, network.D6)
	if got != 6 {
		t.Fatalf("identity rotation: got face %d, want 6", got)
	}
}

func TestDetectFaceValue_D6Rotated180AboutX(t *testing.T) {
	q := axisAngleQuat(1, 0, 0, math.Pi)
	got := DetectFaceValue(q, network.D6)
	if got != 1 {
		t.Fatalf("180deg about X: got face %d, want 1", got)
	}
}

func TestDetectFaceValue_D6Rotated90AboutX(t *testing.T) {
	q := axisAngleQuat(1, 0, 0, math.Pi/2)
	got := DetectFaceValue(q, network.D6)
	if got != 5 {
		t.Fatalf("90deg about X: got face %d, want 5", got)
	}
}

func TestDetectFaceValue_D6Rotated90AboutZ(t *testing.T) {
	q := axisAngleQuat(0, 0, 1, math.Pi/2)
	got := DetectFaceValue(q, network.D6)
	if got != 3 {
		t.Fatalf("90deg about Z: got face %d, want 3", got)
	}
}

func TestDetectFaceValue_D20IdentityInRange(t *testing.T) {
	identity := [4]float32{0, 0, 0, 1}
	got := DetectFaceValue(identity, network.D20)
	if got < 1 || got > 20 {
		t.Fatalf("d20 identity: got %d, want value in [1,20]", got)
	}
}

func TestDetectFaceValue_AllTypesWithinMax(t *testing.T) {
	types := []network.DiceType{network.D4, network.D6, network.D8, network.D10, network.D12, network.D20}
	identity := [4]float32{0, 0, 0, 1}

	for _, ty := range types {
		got := DetectFaceValue(identity, ty)
		if got > ty.MaxFaceValue() {
			t.Errorf("%s: face value %d exceeds max %d", ty, got, ty.MaxFaceValue())
		}
	}
}
