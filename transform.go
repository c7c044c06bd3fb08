package scatter

// Transform is the camera model: a uniform scale plus a translation in
// normalized device coordinates. It maps world coordinates to NDC via
//
//	ndc = world*Scale + (Tx, Ty)
//
// Transform is a plain value; the viewer owns the single authoritative
// instance and passes it by exclusive reference to whichever operation is
// currently mutating it. The only invariant is Scale > 0.
type Transform struct {
	Scale  float32
	Tx, Ty float32
}

// NewTransform returns the identity view: scale 1, no translation.
func NewTransform() Transform {
	return Transform{Scale: 1}
}

// WorldToNDC converts a world-space position to normalized device
// coordinates.
func (t Transform) WorldToNDC(x, y float32) (nx, ny float32) {
	return x*t.Scale + t.Tx, y*t.Scale + t.Ty
}

// NDCToWorld is the exact inverse of WorldToNDC.
func (t Transform) NDCToWorld(nx, ny float32) (x, y float32) {
	return (nx - t.Tx) / t.Scale, (ny - t.Ty) / t.Scale
}

// NDCToScreen converts NDC to screen pixels for a viewport of the given
// displayed size. Screen Y grows downward while NDC Y grows upward, so the
// Y axis flips.
func NDCToScreen(nx, ny, viewW, viewH float32) (px, py float32) {
	return (nx + 1) * 0.5 * viewW, (1 - ny) * 0.5 * viewH
}

// ScreenToNDC converts screen pixels to NDC for a viewport of the given
// displayed size.
func ScreenToNDC(px, py, viewW, viewH float32) (nx, ny float32) {
	return px/viewW*2 - 1, 1 - py/viewH*2
}

// WorldToScreen composes WorldToNDC and NDCToScreen.
func (t Transform) WorldToScreen(x, y, viewW, viewH float32) (px, py float32) {
	nx, ny := t.WorldToNDC(x, y)
	return NDCToScreen(nx, ny, viewW, viewH)
}

// ScreenToWorld composes ScreenToNDC and NDCToWorld.
func (t Transform) ScreenToWorld(px, py, viewW, viewH float32) (x, y float32) {
	nx, ny := ScreenToNDC(px, py, viewW, viewH)
	return t.NDCToWorld(nx, ny)
}

// PanByPixels shifts the translation by a pointer delta given in screen
// pixels. The delta is converted through the displayed viewport size (not
// the backing pixel buffer) so panning stays resolution-independent.
func (t *Transform) PanByPixels(dx, dy, viewW, viewH float32) {
	t.Tx += dx / viewW * 2
	t.Ty -= dy / viewH * 2
}

// zoomStep is the per-notch zoom multiplier base.
const zoomStep = 1.1

// ZoomAt applies one discrete zoom step anchored at the given cursor
// position in screen pixels. The multiplier is zoomStep^(-sign(deltaY)):
// direction-only sensitivity, the magnitude of deltaY is ignored. The
// translation is recomputed so the world point under the cursor maps to
// the same screen position after the zoom — there is no visible jump.
func (t *Transform) ZoomAt(deltaY, px, py, viewW, viewH float32) {
	if deltaY == 0 {
		return
	}
	mult := float32(zoomStep)
	if deltaY > 0 {
		mult = 1 / zoomStep
	}

	nx, ny := ScreenToNDC(px, py, viewW, viewH)
	wx, wy := t.NDCToWorld(nx, ny)

	t.Scale *= mult
	t.Tx = nx - wx*t.Scale
	t.Ty = ny - wy*t.Scale
}
