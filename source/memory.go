package source

import (
	"context"

	"github.com/gogpu/scatter"
)

// SliceSource serves a fixed in-memory point slice as a paginated
// Source. Pages alias the backing slice; callers must not mutate them.
type SliceSource struct {
	points []scatter.Point
}

// NewSliceSource wraps points without copying.
func NewSliceSource(points []scatter.Point) *SliceSource {
	return &SliceSource{points: points}
}

// FetchPage returns points[offset : offset+limit], clamped to the data
// set. Offsets at or past the end return an empty page, not an error.
func (s *SliceSource) FetchPage(ctx context.Context, offset, limit int) ([]scatter.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 || limit <= 0 || offset >= len(s.points) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.points) {
		end = len(s.points)
	}
	return s.points[offset:end], nil
}
