package scatter

// options collects constructor configuration for NewViewer.
type options struct {
	cellSize   float32
	pickRadius int

	background Color
	base       Color
	highlight  Color

	renderer Renderer
	provider DeviceHandle
}

func defaultOptions() options {
	return options{
		cellSize:   DefaultCellSize,
		pickRadius: DefaultPickRadiusCells,
		background: RGB(0.07, 0.07, 0.09),
		base:       RGB(0.55, 0.78, 1.0),
		highlight:  RGB(1.0, 0.62, 0.18),
	}
}

// Option configures NewViewer behavior.
//
// Options exist to avoid exploding the constructor surface; the zero
// configuration is fully usable.
type Option func(*options)

// WithCellSize sets the spatial index cell size in world units. The cell
// size is fixed for the viewer's lifetime. Values <= 0 keep the default.
func WithCellSize(size float32) Option {
	return func(o *options) {
		if size > 0 {
			o.cellSize = size
		}
	}
}

// WithPickRadius sets the hard cap, in grid cells, on the pick ring
// search. Values < 0 keep the default.
func WithPickRadius(cells int) Option {
	return func(o *options) {
		if cells >= 0 {
			o.pickRadius = cells
		}
	}
}

// WithBackground sets the frame clear color.
func WithBackground(c Color) Option {
	return func(o *options) { o.background = c }
}

// WithPointColor sets the base point color.
func WithPointColor(c Color) Option {
	return func(o *options) { o.base = c }
}

// WithHighlightColor sets the selected-point overlay color.
func WithHighlightColor(c Color) Option {
	return func(o *options) { o.highlight = c }
}

// WithRenderer installs a custom Renderer instead of the built-in WebGPU
// one. The viewer takes ownership and closes it on Close. Tests use this
// to install recording fakes; hosts embedding scatter into an existing
// render loop can use it to reroute frames.
func WithRenderer(r Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithDeviceProvider shares a host application's GPU device instead of
// acquiring a standalone one. The provider must expose HAL types (see
// DeviceHandle); otherwise construction falls back to self-acquisition.
func WithDeviceProvider(p DeviceHandle) Option {
	return func(o *options) { o.provider = p }
}
