package dice

import (
	"math"
	"testing"
)

func TestGenerateRollImpulse_WithinBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		impulse := GenerateRollImpulse()
		horizontal := math.Sqrt(float64(impulse.X*impulse.X + impulse.Z*impulse.Z))
		if horizontal < RollHorizontalMin-1e-3 || horizontal > RollHorizontalMax+1e-3 {
			t.Fatalf("horizontal impulse %f out of range [%f, %f]", horizontal, RollHorizontalMin, RollHorizontalMax)
		}
		if float64(impulse.Y) < RollVerticalMin-1e-3 || float64(impulse.Y) > RollVerticalMax+1e-3 {
			t.Fatalf("vertical impulse %f out of range [%f, %f]", impulse.Y, RollVerticalMin, RollVerticalMax)
		}
	}
}

func TestGenerateRollTorque_WithinBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		torque := GenerateRollTorque()
		for _, v := range []float32{torque.X, torque.Y, torque.Z} {
			if float64(v) < -RollTorqueMax-1e-3 || float64(v) > RollTorqueMax+1e-3 {
				t.Fatalf("torque component %f out of range [-%f, %f]", v, RollTorqueMax, RollTorqueMax)
			}
		}
	}
}

func TestGenerateSpawnPosition_WithinBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		pos := GenerateSpawnPosition()
		if float64(pos.X) < -SpawnXRange || float64(pos.X) > SpawnXRange {
			t.Fatalf("spawn X %f out of range", pos.X)
		}
		if pos.Y != SpawnY {
			t.Fatalf("spawn Y %f, want %f", pos.Y, float32(SpawnY))
		}
		if float64(pos.Z) < -SpawnZRange || float64(pos.Z) > SpawnZRange {
			t.Fatalf("spawn Z %f out of range", pos.Z)
		}
	}
}

func TestGenerateSpawnRotation_IsUnitQuaternion(t *testing.T) {
	q := GenerateSpawnRotation()
	lenSq := float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if lenSq < 0.98 || lenSq > 1.02 {
		t.Fatalf("spawn rotation not unit quaternion, lenSq=%f", lenSq)
	}
}
