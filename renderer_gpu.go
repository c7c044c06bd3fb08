package scatter

import (
	"errors"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/scatter/internal/render"
)

// DeviceHandle is the integration point between scatter and host GPU
// frameworks: the host implements gpucontext.DeviceProvider (exposing HAL
// device and queue) and passes it via WithDeviceProvider, so the viewer
// shares the host's GPU device instead of creating its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, keeping full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// ErrNoReadback is returned by ReadPixels when the installed renderer
// cannot read frames back to the CPU.
var ErrNoReadback = errors.New("scatter: renderer does not support pixel readback")

// FrameReader is implemented by renderers that can read the last rendered
// frame back to the CPU as tightly packed RGBA pixels.
type FrameReader interface {
	ReadPixels() (pix []byte, width, height uint32, err error)
}

// ReadPixels returns the last rendered frame as RGBA pixels, for
// screenshots and offscreen use. Returns ErrNoReadback if the installed
// renderer does not support it.
func (v *Viewer) ReadPixels() ([]byte, uint32, uint32, error) {
	if fr, ok := v.renderer.(FrameReader); ok {
		return fr.ReadPixels()
	}
	return nil, 0, 0, ErrNoReadback
}

// gpuRenderer adapts the internal WebGPU point renderer to the Renderer
// contract, translating device-independent sizes to device pixels.
type gpuRenderer struct {
	r *render.Renderer
}

func newGPURenderer(width, height uint32, provider DeviceHandle) (Renderer, error) {
	var (
		r   *render.Renderer
		err error
	)
	if provider != nil {
		r, err = render.NewWithProvider(provider, width, height)
	} else {
		r, err = render.New(width, height)
	}
	if err != nil {
		return nil, err
	}
	return &gpuRenderer{r: r}, nil
}

func (g *gpuRenderer) Resize(width, height uint32) {
	g.r.Resize(width, height)
}

func (g *gpuRenderer) RenderFrame(f Frame) error {
	pr := f.PixelRatio
	if pr <= 0 {
		pr = 1
	}
	return g.r.Frame(render.FrameParams{
		Positions:       f.Positions,
		Count:           uint32(f.Count),
		Scale:           f.Scale,
		Tx:              f.Tx,
		Ty:              f.Ty,
		PointSizePx:     f.PointSize * pr,
		HighlightSizePx: f.PointSize * pr * HighlightSizeFactor,
		Selected:        int32(f.Selected),
		Background:      [4]float32{f.Background.R, f.Background.G, f.Background.B, f.Background.A},
		Base:            [4]float32{f.Base.R, f.Base.G, f.Base.B, f.Base.A},
		Highlight:       [4]float32{f.Highlight.R, f.Highlight.G, f.Highlight.B, f.Highlight.A},
	})
}

func (g *gpuRenderer) ReadPixels() ([]byte, uint32, uint32, error) {
	return g.r.ReadPixels()
}

func (g *gpuRenderer) Close() {
	g.r.Close()
}
