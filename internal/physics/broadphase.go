package physics

import "github.com/g3n/engine/math32"

// cellKey identifies a cell in the broadphase grid, adapted from the
// teacher's 2D SpatialGrid (internal/game/collision.go) to three axes since
// dice tumble in a full 3D arena rather than driving on a 2D plane.
type cellKey struct {
	X, Y, Z int64
}

// broadphase buckets dynamic bodies into a uniform grid so Step only runs
// narrowphase contact resolution on pairs that share or neighbor a cell,
// instead of every pair in the room.
type broadphase struct {
	cellSize float64
	cells    map[cellKey][]*Body
}

func newBroadphase(cellSize float64) *broadphase {
	return &broadphase{cellSize: cellSize, cells: make(map[cellKey][]*Body)}
}

func (g *broadphase) key(p math32.Vector3) cellKey {
	return cellKey{
		X: int64(float64(p.X) / g.cellSize),
		Y: int64(float64(p.Y) / g.cellSize),
		Z: int64(float64(p.Z) / g.cellSize),
	}
}

// rebuild clears and reinserts every dynamic body.
func (g *broadphase) rebuild(bodies map[uint64]*Body) {
	g.cells = make(map[cellKey][]*Body)
	for _, b := range bodies {
		k := g.key(b.Position)
		g.cells[k] = append(g.cells[k], b)
	}
}

// pairs returns candidate dynamic-dynamic body pairs that are in the same
// or an adjacent cell, deduplicated.
func (g *broadphase) pairs() [][2]*Body {
	seen := make(map[[2]uint64]bool)
	var out [][2]*Body

	consider := func(a, b *Body) {
		if a.ID == b.ID {
			return
		}
		key := [2]uint64{a.ID, b.ID}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, [2]*Body{a, b})
	}

	for key, bodies := range g.cells {
		for i := 0; i < len(bodies); i++ {
			for j := i + 1; j < len(bodies); j++ {
				consider(bodies[i], bodies[j])
			}
		}

		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					if dx == 0 && dy == 0 && dz == 0 {
						continue
					}
					neighbor := cellKey{X: key.X + dx, Y: key.Y + dy, Z: key.Z + dz}
					others, ok := g.cells[neighbor]
					if !ok {
						continue
					}
					for _, a := range bodies {
						for _, b := range others {
							consider(a, b)
						}
					}
				}
			}
		}
	}

	return out
}
