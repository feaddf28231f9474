package dice

import (
	"testing"

	"github.com/g3n/engine/math32"
	"github.com/donovan-yohan/dicetable-server/internal/network"
)

func TestFaceNormals_CountsMatchDiceType(t *testing.T) {
	cases := []struct {
		t     network.DiceType
		count int
	}{
		{network.D4, 4},
		{network.D6, 6},
		{network.D8, 8},
		{network.D10, 10},
		{network.D12, 12},
		{network.D20, 20},
	}

	for _, c := range cases {
		faces := FaceNormals(c.t)
		if len(faces) != c.count {
			t.Errorf("%s: got %d faces, want %d", c.t, len(faces), c.count)
		}
	}
}

func TestFaceNormals_D6OppositeFacesSumToSeven(t *testing.T) {
	faces := FaceNormals(network.D6)
	byValue := make(map[int]Face)
	for _, f := range faces {
		byValue[f.Value] = f
	}

	for v := 1; v <= 6; v++ {
		f := byValue[v]
		opposite := byValue[7-v]
		dot := f.Normal.X*opposite.Normal.X + f.Normal.Y*opposite.Normal.Y + f.Normal.Z*opposite.Normal.Z
		if dot > -0.99 {
			t.Errorf("face %d and its opposite %d are not antiparallel (dot=%f)", v, 7-v, dot)
		}
	}
}

func TestFaceNormals_UnitLength(t *testing.T) {
	types := []network.DiceType{network.D4, network.D6, network.D8, network.D10, network.D12, network.D20}
	for _, ty := range types {
		for _, f := range FaceNormals(ty) {
			lenSq := f.Normal.X*f.Normal.X + f.Normal.Y*f.Normal.Y + f.Normal.Z*f.Normal.Z
			if lenSq < 0.98 || lenSq > 1.02 {
				t.Errorf("%s face %d: normal not unit length (lenSq=%f)", ty, f.Value, lenSq)
			}
		}
	}
}

func TestHullVertices_NonCuboidTypesHaveVertices(t *testing.T) {
	types := []network.DiceType{network.D4, network.D8, network.D10, network.D12, network.D20}
	for _, ty := range types {
		if len(HullVertices(ty)) == 0 {
			t.Errorf("%s: expected non-empty hull vertex set", ty)
		}
	}
}

func vertexClose(v math32.Vector3, x, y, z float32) bool {
	const eps = 1e-4
	return abs32(v.X-x) < eps && abs32(v.Y-y) < eps && abs32(v.Z-z) < eps
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func containsVertex(verts []math32.Vector3, x, y, z float32) bool {
	for _, v := range verts {
		if vertexClose(v, x, y, z) {
			return true
		}
	}
	return false
}

func TestHullVertices_D4MatchesScaledTetrahedron(t *testing.T) {
	verts := HullVertices(network.D4)
	if len(verts) != 4 {
		t.Fatalf("D4: got %d vertices, want 4", len(verts))
	}
	a := float32(DiceSize)
	want := [][3]float32{{a, a, a}, {a, -a, -a}, {-a, a, -a}, {-a, -a, a}}
	for _, w := range want {
		if !containsVertex(verts, w[0], w[1], w[2]) {
			t.Errorf("D4: missing expected vertex %v in %v", w, verts)
		}
	}
}

func TestHullVertices_D8MatchesScaledOctahedron(t *testing.T) {
	verts := HullVertices(network.D8)
	if len(verts) != 6 {
		t.Fatalf("D8: got %d vertices, want 6", len(verts))
	}
	a := float32(DiceSize)
	want := [][3]float32{{a, 0, 0}, {-a, 0, 0}, {0, a, 0}, {0, -a, 0}, {0, 0, a}, {0, 0, -a}}
	for _, w := range want {
		if !containsVertex(verts, w[0], w[1], w[2]) {
			t.Errorf("D8: missing expected vertex %v in %v", w, verts)
		}
	}
}

func TestHullVertices_D10HasApexAndRingVertices(t *testing.T) {
	verts := HullVertices(network.D10)
	if len(verts) != 12 {
		t.Fatalf("D10: got %d vertices, want 12", len(verts))
	}
	s := float32(DiceSize)
	if !containsVertex(verts, 0, s*0.8, 0) {
		t.Errorf("D10: missing top apex vertex in %v", verts)
	}
	if !containsVertex(verts, 0, -s*0.8, 0) {
		t.Errorf("D10: missing bottom apex vertex in %v", verts)
	}
}

func TestHullVertices_D12Has20Vertices(t *testing.T) {
	verts := HullVertices(network.D12)
	if len(verts) != 20 {
		t.Fatalf("D12: got %d vertices, want 20", len(verts))
	}
	s := float32(DiceSize)
	a := s * 0.5
	if !containsVertex(verts, a, a, a) {
		t.Errorf("D12: missing cube corner vertex in %v", verts)
	}
}

func TestHullVertices_D20MatchesScaledIcosahedron(t *testing.T) {
	verts := HullVertices(network.D20)
	if len(verts) != 12 {
		t.Fatalf("D20: got %d vertices, want 12", len(verts))
	}
	s := float32(DiceSize)
	phi := float32(1.6180340)
	a := s * 0.5
	b := s * 0.5 * phi
	if !containsVertex(verts, -a, b, 0) {
		t.Errorf("D20: missing expected vertex (-a,b,0) in %v", verts)
	}
}
