package scatter

import "github.com/chewxy/math32"

// DefaultCellSize is the spatial index cell size in world units. It is a
// fixed constant tuned to the expected point density over the nominal
// [-1, 1] world extent, not point-count-adaptive.
const DefaultCellSize = 0.05

// DefaultPickRadiusCells is the hard cap on the ring search radius: a
// query that finds no candidate within this many cells of the cursor
// returns no pick.
const DefaultPickRadiusCells = 6

// cellKey identifies a fixed-size square region of world space. A
// structured integer pair hashes directly and avoids the string-formatting
// key-collision class entirely.
type cellKey struct {
	CX, CY int32
}

// Grid is a uniform spatial index mapping grid cells to point indices.
// It turns picking into a small bounded number of cell lookups instead of
// an O(n) scan, which matters at tens of thousands of points under
// interactive latency budgets. Insertion is O(1) average.
//
// The grid is rebuilt after a wholesale point replacement (indices are
// invalidated) and extended incrementally after appends.
type Grid struct {
	cellSize float32
	cells    map[cellKey][]int
}

// NewGrid creates an empty grid with the given cell size in world units.
func NewGrid(cellSize float32) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

// CellSize returns the fixed cell size in world units.
func (g *Grid) CellSize() float32 { return g.cellSize }

func (g *Grid) keyFor(x, y float32) cellKey {
	return cellKey{
		CX: int32(math32.Floor(x / g.cellSize)),
		CY: int32(math32.Floor(y / g.cellSize)),
	}
}

// Rebuild clears the grid and reinserts every point's index keyed by its
// cell. O(n).
func (g *Grid) Rebuild(points []Point) {
	// Keep allocated cell slices; clear length only.
	for k, c := range g.cells {
		g.cells[k] = c[:0]
	}
	g.insert(points, 0)
}

// InsertRange inserts only the indices in [start, len(points)). O(k).
func (g *Grid) InsertRange(points []Point, start int) {
	g.insert(points, start)
}

func (g *Grid) insert(points []Point, start int) {
	for i := start; i < len(points); i++ {
		k := g.keyFor(points[i].X, points[i].Y)
		g.cells[k] = append(g.cells[k], i)
	}
}

// DistanceFunc measures the distance from a fixed query location to a
// candidate point's world position. Picking injects a screen-space pixel
// metric here; tests may use a plain world-space one.
type DistanceFunc func(x, y float32) float32

// Nearest finds the closest indexed point to the world position (wx, wy)
// by expanding a square ring search outward from the containing cell. At
// radius 0 only that cell is examined; at radius r > 0 only the ring
// boundary cells (max(|dx|,|dy|) == r), so interior cells are never
// re-scanned. Within each examined cell every candidate's distance is
// computed via dist and the minimum kept.
//
// The search stops expanding as soon as any candidate was found at the
// current or a smaller radius: first non-empty ring wins. This is a known
// approximation, not a guaranteed global nearest neighbor — a closer point
// can in principle sit in a farther cell near a cell boundary. maxRadius
// caps the search; if nothing was found within it, ok is false.
func (g *Grid) Nearest(wx, wy float32, maxRadius int, points []Point, dist DistanceFunc) (index int, d float32, ok bool) {
	center := g.keyFor(wx, wy)

	best := -1
	var bestDist float32

	scan := func(k cellKey) {
		for _, i := range g.cells[k] {
			p := points[i]
			cd := dist(p.X, p.Y)
			if best < 0 || cd < bestDist {
				best = i
				bestDist = cd
			}
		}
	}

	for r := 0; r <= maxRadius; r++ {
		if r == 0 {
			scan(center)
		} else {
			r32 := int32(r)
			// Top and bottom rows of the ring.
			for dx := -r32; dx <= r32; dx++ {
				scan(cellKey{CX: center.CX + dx, CY: center.CY - r32})
				scan(cellKey{CX: center.CX + dx, CY: center.CY + r32})
			}
			// Left and right columns, excluding the corners above.
			for dy := -r32 + 1; dy <= r32-1; dy++ {
				scan(cellKey{CX: center.CX - r32, CY: center.CY + dy})
				scan(cellKey{CX: center.CX + r32, CY: center.CY + dy})
			}
		}
		if best >= 0 {
			return best, bestDist, true
		}
	}
	return 0, 0, false
}
