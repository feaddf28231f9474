// Package dice holds per-polyhedron geometry: collider vertex sets and the
// face value -> outward normal tables used by facedetect. Values are
// reproduced from the original rapier3d implementation's fixed tables so a
// client-side renderer built against the same tables matches bit for bit.
package dice

import (
	"math"

	"github.com/g3n/engine/math32"
	"github.com/donovan-yohan/dicetable-server/internal/network"
)

// DiceSize is the nominal bounding radius used when spawning a die body.
const DiceSize = 0.5

// EdgeChamferRadius rounds the d6 cuboid collider's edges.
const EdgeChamferRadius = 0.08

// Face pairs a die face value with its outward-facing unit normal in the
// die's local (unrotated) frame.
type Face struct {
	Value  int
	Normal math32.Vector3
}

var (
	d4Faces  []Face
	d6Faces  []Face
	d8Faces  []Face
	d10Faces []Face
	d12Faces []Face
	d20Faces []Face
)

func init() {
	d4Faces = buildD4Faces()
	d6Faces = buildD6Faces()
	d8Faces = buildD8Faces()
	d10Faces = buildD10Faces()
	d12Faces = buildD12Faces()
	d20Faces = buildD20Faces()
}

// FaceNormals returns the value->normal table for a dice type.
func FaceNormals(t network.DiceType) []Face {
	switch t {
	case network.D4:
		return d4Faces
	case network.D6:
		return d6Faces
	case network.D8:
		return d8Faces
	case network.D10:
		return d10Faces
	case network.D12:
		return d12Faces
	case network.D20:
		return d20Faces
	default:
		return nil
	}
}

func v3(x, y, z float32) math32.Vector3 {
	return math32.Vector3{X: x, Y: y, Z: z}
}

func buildD4Faces() []Face {
	s := float32(1.0 / math.Sqrt(3))
	return []Face{
		{1, v3(s, s, s)},
		{2, v3(s, -s, -s)},
		{3, v3(-s, s, -s)},
		{4, v3(-s, -s, s)},
	}
}

func buildD6Faces() []Face {
	return []Face{
		{1, v3(0, -1, 0)},
		{2, v3(0, 0, 1)},
		{3, v3(1, 0, 0)},
		{4, v3(-1, 0, 0)},
		{5, v3(0, 0, -1)},
		{6, v3(0, 1, 0)},
	}
}

func buildD8Faces() []Face {
	s := float32(1.0 / math.Sqrt(3))
	return []Face{
		{1, v3(s, s, s)},
		{2, v3(-s, s, s)},
		{3, v3(s, s, -s)},
		{4, v3(-s, s, -s)},
		{5, v3(s, -s, s)},
		{6, v3(-s, -s, s)},
		{7, v3(s, -s, -s)},
		{8, v3(-s, -s, -s)},
	}
}

func buildD10Faces() []Face {
	faces := make([]Face, 0, 10)
	upperValues := []int{0, 2, 4, 6, 8}
	lowerValues := []int{3, 1, 9, 7, 5}
	tau := 2 * math.Pi

	for i, val := range upperValues {
		angle := float64(i) * tau / 5
		n := math32.Vector3{X: float32(math.Cos(angle)), Y: 0.3, Z: float32(math.Sin(angle))}
		n.Normalize()
		faces = append(faces, Face{val, n})
	}
	for i, val := range lowerValues {
		angle := float64(i)*tau/5 + tau/10
		n := math32.Vector3{X: float32(math.Cos(angle)), Y: -0.3, Z: float32(math.Sin(angle))}
		n.Normalize()
		faces = append(faces, Face{val, n})
	}
	return faces
}

func buildD12Faces() []Face {
	a := float32(0.5257311)
	b := float32(0.8506508)
	return []Face{
		{1, v3(0, b, a)},
		{2, v3(0, b, -a)},
		{3, v3(0, -b, a)},
		{4, v3(0, -b, -a)},
		{5, v3(a, 0, b)},
		{6, v3(-a, 0, b)},
		{7, v3(a, 0, -b)},
		{8, v3(-a, 0, -b)},
		{9, v3(b, a, 0)},
		{10, v3(-b, a, 0)},
		{11, v3(b, -a, 0)},
		{12, v3(-b, -a, 0)},
	}
}

func buildD20Faces() []Face {
	phi := float32((1 + math.Sqrt(5)) / 2)

	verts := []math32.Vector3{
		v3(-1, phi, 0), v3(1, phi, 0), v3(-1, -phi, 0), v3(1, -phi, 0),
		v3(0, -1, phi), v3(0, 1, phi), v3(0, -1, -phi), v3(0, 1, -phi),
		v3(phi, 0, -1), v3(phi, 0, 1), v3(-phi, 0, -1), v3(-phi, 0, 1),
	}

	triples := [20][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	faces := make([]Face, 0, 20)
	for i, tri := range triples {
		centroid := math32.Vector3{
			X: (verts[tri[0]].X + verts[tri[1]].X + verts[tri[2]].X) / 3,
			Y: (verts[tri[0]].Y + verts[tri[1]].Y + verts[tri[2]].Y) / 3,
			Z: (verts[tri[0]].Z + verts[tri[1]].Z + verts[tri[2]].Z) / 3,
		}
		centroid.Normalize()
		faces = append(faces, Face{i + 1, centroid})
	}
	return faces
}

// HullVertices returns the convex hull vertex set used as the collider for
// non-cuboid dice types, scaled in units of DiceSize exactly as
// `get_dice_vertices` in the original rapier3d implementation (dice.rs)
// builds them. D6 uses a chamfered cuboid instead and has no vertex set
// here.
func HullVertices(t network.DiceType) []math32.Vector3 {
	s := float32(DiceSize)

	switch t {
	case network.D4:
		a := s
		return []math32.Vector3{v3(a, a, a), v3(a, -a, -a), v3(-a, a, -a), v3(-a, -a, a)}
	case network.D8:
		a := s
		return []math32.Vector3{
			v3(a, 0, 0), v3(-a, 0, 0),
			v3(0, a, 0), v3(0, -a, 0),
			v3(0, 0, a), v3(0, 0, -a),
		}
	case network.D10:
		top := s * 0.8
		bot := -s * 0.8
		midTop := s * 0.3
		midBot := -s * 0.3
		r := s * 0.9
		tau := 2 * math.Pi

		verts := make([]math32.Vector3, 0, 12)
		for i := 0; i < 5; i++ {
			angle := float64(i) * tau / 5
			offsetAngle := angle + tau/10
			verts = append(verts, math32.Vector3{X: float32(math.Cos(angle)) * r, Y: midTop, Z: float32(math.Sin(angle)) * r})
			verts = append(verts, math32.Vector3{X: float32(math.Cos(offsetAngle)) * r, Y: midBot, Z: float32(math.Sin(offsetAngle)) * r})
		}
		verts = append(verts, v3(0, top, 0), v3(0, bot, 0))
		return verts
	case network.D12:
		phi := float32((1 + math.Sqrt(5)) / 2)
		a := s * 0.5
		b := s * 0.5 / phi
		c := s * 0.5 * phi

		cube := make([]math32.Vector3, 0, 8)
		for _, x := range [2]float32{-a, a} {
			for _, y := range [2]float32{-a, a} {
				for _, z := range [2]float32{-a, a} {
					cube = append(cube, v3(x, y, z))
				}
			}
		}
		rect := []math32.Vector3{
			v3(0, b, c), v3(0, b, -c), v3(0, -b, c), v3(0, -b, -c),
			v3(b, c, 0), v3(b, -c, 0), v3(-b, c, 0), v3(-b, -c, 0),
			v3(c, 0, b), v3(c, 0, -b), v3(-c, 0, b), v3(-c, 0, -b),
		}
		return append(cube, rect...)
	case network.D20:
		phi := float32((1 + math.Sqrt(5)) / 2)
		a := s * 0.5
		b := s * 0.5 * phi
		return []math32.Vector3{
			v3(-a, b, 0), v3(a, b, 0), v3(-a, -b, 0), v3(a, -b, 0),
			v3(0, -a, b), v3(0, a, b), v3(0, -a, -b), v3(0, a, -b),
			v3(b, 0, -a), v3(b, 0, a), v3(-b, 0, -a), v3(-b, 0, a),
		}
	default:
		return nil
	}
}
