package scatter

// Store owns the authoritative set of plotted points: an ordered sequence
// (order defines GPU draw order and nothing else), a packed float32 buffer
// mirroring it for GPU upload, and an id→index map for O(1) selection
// lookup.
//
// Invariants, maintained atomically with every mutation: len(packed) ==
// 2*len(points), and the id map is exactly onto [0, len(points)). Duplicate
// ids across inputs are permitted; the map keeps the most recent
// occurrence.
type Store struct {
	points []Point
	packed []float32
	index  map[int64]int

	// dirty marks GPU-resident data stale relative to packed.
	dirty bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{index: make(map[int64]int)}
}

// SetPoints replaces the sequence wholesale, rebuilding the packed buffer
// and id map from scratch. Any previously held selection index and any
// spatial index built over the old sequence are invalidated. O(n).
func (s *Store) SetPoints(points []Point) {
	s.points = append(s.points[:0], points...)
	s.packed = s.packed[:0]
	s.index = make(map[int64]int, len(points))
	for i, p := range s.points {
		s.packed = append(s.packed, p.X, p.Y)
		s.index[p.ID] = i
	}
	s.dirty = true
}

// AppendPoints extends the sequence, packed buffer, and id map without
// disturbing existing entries. A no-op on empty input. O(k).
func (s *Store) AppendPoints(points []Point) {
	if len(points) == 0 {
		return
	}
	base := len(s.points)
	s.points = append(s.points, points...)
	for i, p := range points {
		s.packed = append(s.packed, p.X, p.Y)
		s.index[p.ID] = base + i
	}
	s.dirty = true
}

// LookupIndex returns the current sequence index for an id. O(1).
func (s *Store) LookupIndex(id int64) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Len returns the number of stored points.
func (s *Store) Len() int { return len(s.points) }

// At returns the point at sequence index i.
func (s *Store) At(i int) Point { return s.points[i] }

// Points returns the ordered sequence. Callers must not mutate it.
func (s *Store) Points() []Point { return s.points }

// Packed returns the packed position buffer (2 floats per point).
// Callers must not mutate it.
func (s *Store) Packed() []float32 { return s.packed }

// TakeDirty reports whether the packed buffer changed since the last call
// and clears the flag. The viewer calls this once per frame to decide
// whether to hand the buffer to the renderer for upload.
func (s *Store) TakeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// markDirty re-arms the dirty flag. The viewer calls it when a frame
// carrying an upload fails, so the next frame re-sends the buffer.
func (s *Store) markDirty() {
	s.dirty = true
}
