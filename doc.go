// Package scatter is an interactive 2D point-cloud viewer core.
//
// # Overview
//
// scatter renders tens of thousands of points through a WebGPU pipeline
// (gogpu/wgpu) and supports continuous pan/zoom navigation with sub-frame
// click-to-point picking. The host UI owns the surface and forwards raw
// pointer, wheel, and resize events; the viewer owns all view state.
//
// # Quick Start
//
//	v, err := scatter.NewViewer(800, 600)
//	if err != nil {
//	    log.Fatal(err) // GPU unavailable or shader/pipeline init failed
//	}
//	defer v.Close()
//
//	v.SetPoints(points)
//	v.SetPickHandler(scatter.PickHandlerFunc(func(r *scatter.PickResult) {
//	    if r != nil {
//	        fmt.Println("picked", r.ID)
//	    }
//	}))
//
//	// Forward host input events:
//	v.PointerDown(scatter.ButtonSecondary, x, y) // begin pan
//	v.PointerMove(x, y)
//	v.PointerUp(scatter.ButtonSecondary)
//	v.Wheel(deltaY, x, y) // zoom anchored at cursor
//
// # Coordinate Spaces
//
// Three spaces are in play: world (the point data's native coordinates,
// nominally [-1, 1]), normalized device coordinates (ndc = world*scale +
// translate), and screen pixels (viewport coordinates with Y growing
// downward). Transform holds the conversions; see transform.go.
//
// # Threading
//
// The viewer is single-threaded and event-driven. Every mutation (point
// ingestion, pan, zoom, pick, animation step) runs synchronously inside the
// calling event handler and is immediately followed by a redraw. Nothing in
// the core spawns goroutines.
package scatter
