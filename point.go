package scatter

import "github.com/chewxy/math32"

// Point is a single plotted point. ID is a stable external identifier
// (unique, not necessarily contiguous). X and Y are world coordinates,
// nominally in [-1, 1] but not clamped.
//
// Points are immutable once stored; the Store mutates only by wholesale
// replacement or append.
type Point struct {
	ID   int64
	X, Y float32
}

// Pt is a convenience function to create a Point.
func Pt(id int64, x, y float32) Point {
	return Point{ID: id, X: x, Y: y}
}

// Distance returns the Euclidean distance to q in world units.
func (p Point) Distance(q Point) float32 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math32.Sqrt(dx*dx + dy*dy)
}

// clamp32 limits v to [lo, hi].
func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
