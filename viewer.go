package scatter

import (
	"time"
)

// Viewer ties the point store, spatial index, view transform, renderer,
// and interaction state machine into one interactive point-cloud view.
//
// The store, grid, and transform are exclusively owned by the Viewer;
// nothing outside this package mutates them directly. All interaction is
// mediated through the exported operations, each of which runs
// synchronously inside the caller's event handler and redraws before
// returning. Callers performing several mutations in one synchronous
// block therefore redraw once per mutation; each redraw is cheap relative
// to input rates, so the redundancy is tolerated rather than coalesced.
type Viewer struct {
	store *Store
	grid  *Grid
	view  Transform

	renderer Renderer

	// selected is an index into the store's current sequence, or -1.
	// It is derived state: recomputed from the id map on SetSelectedID
	// and invalidated by SetPoints.
	selected int

	pick PickHandler

	// Displayed viewport size in device-independent pixels, and the
	// derived backing buffer size in device pixels.
	viewW, viewH float32
	bufW, bufH   uint32
	pixelRatio   float32

	drag dragState
	anim cameraAnim

	// now is swapped by tests to drive the camera animation clock.
	now func() time.Time

	pickRadius int
	background Color
	base       Color
	highlight  Color
}

// NewViewer constructs a viewer with a backing buffer of the given
// displayed size (device-independent pixels, device pixel ratio 1 until
// the first Resize). Construction fails if the GPU renderer cannot be
// initialized: no usable backend or adapter, shader compilation failure,
// or pipeline creation failure. There is no degraded-rendering fallback.
func NewViewer(width, height int, opts ...Option) (*Viewer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := o.renderer
	if r == nil {
		var err error
		r, err = newGPURenderer(uint32(width), uint32(height), o.provider)
		if err != nil {
			return nil, err
		}
	}

	v := &Viewer{
		store:      NewStore(),
		grid:       NewGrid(o.cellSize),
		view:       NewTransform(),
		renderer:   r,
		selected:   -1,
		viewW:      float32(width),
		viewH:      float32(height),
		bufW:       uint32(width),
		bufH:       uint32(height),
		pixelRatio: 1,
		now:        time.Now,
		pickRadius: o.pickRadius,
		background: o.background,
		base:       o.base,
		highlight:  o.highlight,
	}
	return v, nil
}

// Close releases the renderer and its GPU resources.
func (v *Viewer) Close() {
	v.renderer.Close()
}

// SetPoints replaces the plotted point set wholesale. The spatial index
// is rebuilt and any current selection is cleared: selection indices into
// the old sequence are meaningless against the new one.
func (v *Viewer) SetPoints(points []Point) {
	v.store.SetPoints(points)
	v.grid.Rebuild(v.store.Points())
	v.selected = -1
	Logger().Debug("scatter: points replaced", "count", v.store.Len())
	v.redraw()
}

// AppendPoints extends the plotted point set. Existing indices, the
// current selection, and existing grid entries are undisturbed; only the
// new suffix is indexed. A no-op on empty input.
func (v *Viewer) AppendPoints(points []Point) {
	if len(points) == 0 {
		return
	}
	base := v.store.Len()
	v.store.AppendPoints(points)
	v.grid.InsertRange(v.store.Points(), base)
	v.redraw()
}

// SetSelectedID selects the point with the given id, or clears the
// selection when the id is unknown.
func (v *Viewer) SetSelectedID(id int64) {
	if i, ok := v.store.LookupIndex(id); ok {
		v.selected = i
	} else {
		v.selected = -1
	}
	v.redraw()
}

// SelectedIndex returns the selected point's sequence index, or -1.
func (v *Viewer) SelectedIndex() int { return v.selected }

// SetPickHandler installs the single pick sink. Pick results are
// delivered synchronously from the triggering input event; passing nil
// uninstalls the sink.
func (v *Viewer) SetPickHandler(h PickHandler) {
	v.pick = h
}

// View returns the current view transform.
func (v *Viewer) View() Transform { return v.view }

// PointCount returns the number of plotted points.
func (v *Viewer) PointCount() int { return v.store.Len() }

// redraw produces one frame synchronously. The packed position buffer is
// handed to the renderer only when the store changed since the last
// frame; redundant uploads are forbidden by the Renderer contract.
// Runtime render errors are not fatal: they are logged and the viewer
// stays usable.
func (v *Viewer) redraw() {
	f := Frame{
		Count:      v.store.Len(),
		Scale:      v.view.Scale,
		Tx:         v.view.Tx,
		Ty:         v.view.Ty,
		PointSize:  PointSizeFor(v.view.Scale),
		PixelRatio: v.pixelRatio,
		Selected:   v.selected,
		Background: v.background,
		Base:       v.base,
		Highlight:  v.highlight,
	}
	if v.store.TakeDirty() {
		f.Positions = v.store.Packed()
	}
	if err := v.renderer.RenderFrame(f); err != nil {
		// A failed frame may have died before the vertex upload; keep
		// the store dirty so the next frame re-sends the buffer instead
		// of drawing stale data forever.
		if f.Positions != nil {
			v.store.markDirty()
		}
		Logger().Warn("scatter: frame render failed", "err", err)
	}
}
