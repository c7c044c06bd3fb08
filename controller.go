package scatter

import "github.com/chewxy/math32"

// Button identifies a pointer button as forwarded by the host.
type Button int

const (
	// ButtonPrimary picks the nearest visible point under the cursor.
	ButtonPrimary Button = iota
	// ButtonSecondary starts and drives a pan drag.
	ButtonSecondary
)

// PickResult is delivered to the PickHandler when a primary click
// resolves to a point.
type PickResult struct {
	// ID is the picked point's stable identifier.
	ID int64
	// X, Y are the picked point's world coordinates.
	X, Y float32
	// DistancePixels is the screen distance from the click to the point.
	DistancePixels float32
}

// PickHandler is the single-slot event sink for pick reports. The host
// installs it once via SetPickHandler; delivery is synchronous with the
// triggering input event. A nil result means the click resolved to no
// point within the search cap.
type PickHandler interface {
	HandlePick(r *PickResult)
}

// PickHandlerFunc adapts a function to the PickHandler interface.
type PickHandlerFunc func(r *PickResult)

// HandlePick calls f(r).
func (f PickHandlerFunc) HandlePick(r *PickResult) { f(r) }

// minPixelRatio and maxPixelRatio bound the backing buffer's device pixel
// ratio, capping memory and fill rate on high-density displays.
const (
	minPixelRatio = 1.0
	maxPixelRatio = 2.0
)

// dragState is the transient pan gesture state. It lives for the duration
// of a single drag and is never persisted.
type dragState struct {
	panning      bool
	lastX, lastY float32
}

// PointerDown feeds a button press at a viewport position in screen
// pixels. A secondary press inside the viewport enters the Panning state;
// a primary press is a pick request in any state.
func (v *Viewer) PointerDown(b Button, x, y float32) {
	switch b {
	case ButtonSecondary:
		if x < 0 || y < 0 || x > v.viewW || y > v.viewH {
			return
		}
		v.drag.panning = true
		v.drag.lastX, v.drag.lastY = x, y
	case ButtonPrimary:
		v.pickAt(x, y)
	}
}

// PointerMove feeds pointer motion. Outside a pan drag it is ignored; a
// move that never had a matching press is not an error. During a drag the
// pixel delta since the last observed position becomes a translation
// delta and triggers a redraw.
func (v *Viewer) PointerMove(x, y float32) {
	if !v.drag.panning || v.viewW == 0 || v.viewH == 0 {
		return
	}
	v.view.PanByPixels(x-v.drag.lastX, y-v.drag.lastY, v.viewW, v.viewH)
	v.drag.lastX, v.drag.lastY = x, y
	v.redraw()
}

// PointerUp feeds a button release. A secondary release always ends the
// drag, wherever the pointer is — otherwise a release outside the
// viewport would leave the gesture stuck.
func (v *Viewer) PointerUp(b Button) {
	if b == ButtonSecondary {
		v.drag.panning = false
	}
}

// Wheel feeds a wheel event at a cursor position in screen pixels. It
// zooms anchored at the cursor in any state and does not disturb the pan
// state machine. Only the sign of deltaY matters: one discrete zoom step
// per notch.
func (v *Viewer) Wheel(deltaY, x, y float32) {
	if v.viewW == 0 || v.viewH == 0 {
		return
	}
	v.view.ZoomAt(deltaY, x, y, v.viewW, v.viewH)
	v.redraw()
}

// Resize feeds the host's viewport size notification: the displayed size
// in device-independent pixels and the device pixel ratio, which is
// clamped to [1, 2]. The backing buffer is reallocated only when the
// derived pixel size actually changed; repeating the same size is free.
func (v *Viewer) Resize(width, height, pixelRatio float32) {
	v.viewW, v.viewH = width, height
	v.pixelRatio = clamp32(pixelRatio, minPixelRatio, maxPixelRatio)

	bw := uint32(math32.Round(width * v.pixelRatio))
	bh := uint32(math32.Round(height * v.pixelRatio))
	if bw != v.bufW || bh != v.bufH {
		v.bufW, v.bufH = bw, bh
		v.renderer.Resize(bw, bh)
	}
	v.redraw()
}

// pickAt resolves a click at screen pixel (px, py) to the nearest indexed
// point and reports it to the installed PickHandler. With no handler
// installed the click is inert. An empty point set or a search that
// exhausts the radius cap reports "no pick" — neither is an error.
func (v *Viewer) pickAt(px, py float32) {
	if v.pick == nil || v.viewW == 0 || v.viewH == 0 {
		return
	}

	wx, wy := v.view.ScreenToWorld(px, py, v.viewW, v.viewH)

	// Candidates are ranked by screen distance, not world distance: with
	// a non-square viewport the two orderings can disagree.
	dist := func(x, y float32) float32 {
		sx, sy := v.view.WorldToScreen(x, y, v.viewW, v.viewH)
		dx, dy := sx-px, sy-py
		return math32.Sqrt(dx*dx + dy*dy)
	}

	idx, d, ok := v.grid.Nearest(wx, wy, v.pickRadius, v.store.Points(), dist)
	if !ok {
		v.pick.HandlePick(nil)
	} else {
		p := v.store.At(idx)
		v.pick.HandlePick(&PickResult{ID: p.ID, X: p.X, Y: p.Y, DistancePixels: d})
	}
	v.redraw()
}
