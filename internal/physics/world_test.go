package physics

import (
	"testing"

	"github.com/g3n/engine/math32"
)

func TestWorld_ArenaHasStaticBodies(t *testing.T) {
	w := NewWorld(60)
	if len(w.static) != 6 {
		t.Fatalf("expected 6 static arena bodies (ground, ceiling, 4 walls), got %d", len(w.static))
	}
}

func TestWorld_DieFallsAndSettlesWithoutPenetratingGround(t *testing.T) {
	w := NewWorld(60)
	id := w.AddBody(math32.Vector3{X: 0, Y: 2, Z: 0}, math32.Quaternion{W: 1}, math32.Vector3{X: 0.5, Y: 0.5, Z: 0.5})

	dt := float32(1.0 / 60.0)
	settled := false
	for tick := 0; tick < 1200; tick++ {
		w.Step(dt)
		if w.IsAtRest(id) {
			settled = true
			break
		}
	}

	if !settled {
		t.Fatalf("die did not settle within 1200 ticks")
	}

	pos, ok := w.Position(id)
	if !ok {
		t.Fatalf("expected body to still exist")
	}
	if pos.Y < GroundY {
		t.Fatalf("die penetrated the ground: y=%f", pos.Y)
	}
	if pos.Y > CeilingY {
		t.Fatalf("die escaped above the ceiling: y=%f", pos.Y)
	}
}

func TestWorld_RemoveBody(t *testing.T) {
	w := NewWorld(60)
	id := w.AddBody(math32.Vector3{}, math32.Quaternion{W: 1}, math32.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	w.RemoveBody(id)

	if _, ok := w.Position(id); ok {
		t.Fatalf("expected removed body to be gone")
	}
}

func TestClampVelocity_CapsRunawaySpeed(t *testing.T) {
	b := &Body{Type: Dynamic, Mass: 1, LinearVelocity: math32.Vector3{X: 1000, Y: 0, Z: 0}}
	clampVelocity(b)

	if b.speed() > MaxDiceVelocity+1e-3 {
		t.Fatalf("expected speed clamped to %f, got %f", MaxDiceVelocity, b.speed())
	}
}
