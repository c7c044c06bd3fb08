package scatter

import "github.com/chewxy/math32"

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGB returns an opaque Color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// HighlightSizeFactor is the point-size multiplier applied to the selected
// point's overlay draw so it reads as on top regardless of draw order.
const HighlightSizeFactor = 1.8

// Frame is the complete description of one frame handed to a Renderer.
// It is a value snapshot: the renderer must not retain Positions beyond
// the RenderFrame call.
type Frame struct {
	// Positions is the packed position buffer (x0, y0, x1, y1, ...) to
	// upload before drawing, or nil when GPU-resident data is already
	// current. Redundant uploads are forbidden: the viewer sets this
	// only when the store changed since the last frame.
	Positions []float32

	// Count is the number of points to draw.
	Count int

	// Scale, Tx, Ty are the view transform: ndc = world*Scale + (Tx, Ty).
	Scale, Tx, Ty float32

	// PointSize is the base point diameter in device-independent pixels.
	PointSize float32

	// PixelRatio is the clamped device pixel ratio relating PointSize's
	// device-independent pixels to the backing buffer's device pixels.
	PixelRatio float32

	// Selected is the index of the highlighted point, or -1 for none.
	// When >= 0, the renderer issues one additional draw restricted to
	// this index with PointSize*HighlightSizeFactor and Highlight color.
	Selected int

	// Background, Base, Highlight are the clear, point, and selection
	// overlay colors.
	Background, Base, Highlight Color
}

// Renderer produces frames from Frame snapshots. The GPU implementation
// lives in internal/render; tests install recording fakes through
// WithRenderer.
type Renderer interface {
	// Resize reallocates the backing pixel buffer. Callers only invoke
	// it when the size actually changed.
	Resize(width, height uint32)

	// RenderFrame re-issues the full viewport/clear/draw sequence.
	// There is no frame diffing beyond the Positions upload contract.
	RenderFrame(f Frame) error

	// Close releases all renderer resources.
	Close()
}

// PointSizeFor computes the base point size in device-independent pixels
// for a view scale: clamp(3/sqrt(scale), 1.5, 6). Points shrink toward a
// floor as the view zooms in and grow toward a ceiling as it zooms out,
// keeping dot density legible across zoom levels.
func PointSizeFor(scale float32) float32 {
	return clamp32(3.0/math32.Sqrt(scale), 1.5, 6.0)
}
