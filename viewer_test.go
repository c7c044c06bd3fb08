package scatter

import (
	"errors"
	"testing"
)

var errFrame = errors.New("device lost")

// fakeRenderer records every Renderer call for assertions. Frames deep-
// copy Positions because the contract lets the viewer reuse the buffer.
type fakeRenderer struct {
	frames  []Frame
	resizes [][2]uint32
	closed  bool
	err     error
}

func (f *fakeRenderer) Resize(w, h uint32) {
	f.resizes = append(f.resizes, [2]uint32{w, h})
}

func (f *fakeRenderer) RenderFrame(fr Frame) error {
	if fr.Positions != nil {
		fr.Positions = append([]float32(nil), fr.Positions...)
	}
	f.frames = append(f.frames, fr)
	return f.err
}

func (f *fakeRenderer) Close() { f.closed = true }

func newTestViewer(t *testing.T, w, h int, opts ...Option) (*Viewer, *fakeRenderer) {
	t.Helper()
	fake := &fakeRenderer{}
	v, err := NewViewer(w, h, append([]Option{WithRenderer(fake)}, opts...)...)
	if err != nil {
		t.Fatalf("NewViewer: %v", err)
	}
	return v, fake
}

func (f *fakeRenderer) last(t *testing.T) Frame {
	t.Helper()
	if len(f.frames) == 0 {
		t.Fatal("no frames rendered")
	}
	return f.frames[len(f.frames)-1]
}

func TestViewerUploadsOnlyOnChange(t *testing.T) {
	v, fake := newTestViewer(t, 400, 300)

	v.SetPoints([]Point{{ID: 1, X: 0.5, Y: 0.5}})
	if fake.last(t).Positions == nil {
		t.Fatal("frame after SetPoints carries no position upload")
	}

	// A view-only mutation must not re-upload.
	v.Wheel(-1, 200, 150)
	if fake.last(t).Positions != nil {
		t.Error("frame after zoom re-uploaded unchanged positions")
	}

	v.AppendPoints([]Point{{ID: 2, X: -0.5, Y: -0.5}})
	f := fake.last(t)
	if f.Positions == nil {
		t.Fatal("frame after AppendPoints carries no position upload")
	}
	if f.Count != 2 {
		t.Errorf("Count = %d, want 2", f.Count)
	}
}

// TestViewerReuploadsAfterRenderError covers recovery from a failed
// frame: if the frame carrying a position upload errors out, the upload
// must be retried on the next frame, not silently dropped.
func TestViewerReuploadsAfterRenderError(t *testing.T) {
	v, fake := newTestViewer(t, 400, 300)

	fake.err = errFrame
	v.SetPoints([]Point{{ID: 1, X: 0.5, Y: 0.5}})
	if fake.last(t).Positions == nil {
		t.Fatal("failed frame did not carry the upload")
	}

	// Renderer recovers; the next frame must re-send the buffer.
	fake.err = nil
	v.Wheel(-1, 200, 150)
	if fake.last(t).Positions == nil {
		t.Fatal("upload lost after render error; next frame sent nil Positions")
	}

	// And only once: the frame after that goes back to nil.
	v.Wheel(-1, 200, 150)
	if fake.last(t).Positions != nil {
		t.Error("recovered upload repeated on a clean frame")
	}
}

// TestViewerViewOnlyFrameErrorKeepsClean pins the converse: a failed
// frame with no upload in flight must not force a redundant re-upload.
func TestViewerViewOnlyFrameErrorKeepsClean(t *testing.T) {
	v, fake := newTestViewer(t, 400, 300)
	v.SetPoints([]Point{{ID: 1}})

	fake.err = errFrame
	v.Wheel(-1, 200, 150)
	fake.err = nil
	v.Wheel(-1, 200, 150)
	if fake.last(t).Positions != nil {
		t.Error("view-only frame error triggered a spurious re-upload")
	}
}

func TestViewerRedrawPerMutation(t *testing.T) {
	v, fake := newTestViewer(t, 400, 300)

	v.SetPoints([]Point{{ID: 1}})
	v.SetSelectedID(1)
	v.Wheel(-1, 10, 10)
	if len(fake.frames) != 3 {
		t.Errorf("frames = %d, want 3 (one per mutation)", len(fake.frames))
	}

	// Empty append is a no-op, no frame.
	v.AppendPoints(nil)
	if len(fake.frames) != 3 {
		t.Errorf("empty append rendered a frame")
	}
}

func TestViewerSelection(t *testing.T) {
	v, fake := newTestViewer(t, 400, 300)
	v.SetPoints([]Point{{ID: 7, X: 0.1}, {ID: 8, X: 0.2}})

	v.SetSelectedID(8)
	if v.SelectedIndex() != 1 {
		t.Errorf("SelectedIndex = %d, want 1", v.SelectedIndex())
	}
	if fake.last(t).Selected != 1 {
		t.Errorf("frame Selected = %d, want 1", fake.last(t).Selected)
	}

	// Unknown id clears.
	v.SetSelectedID(99)
	if v.SelectedIndex() != -1 {
		t.Errorf("unknown id: SelectedIndex = %d, want -1", v.SelectedIndex())
	}

	// Replacement invalidates the selection.
	v.SetSelectedID(7)
	v.SetPoints([]Point{{ID: 7, X: 0.3}})
	if v.SelectedIndex() != -1 {
		t.Errorf("after replace: SelectedIndex = %d, want -1", v.SelectedIndex())
	}
}

func TestViewerFrameDerivedFields(t *testing.T) {
	v, fake := newTestViewer(t, 400, 300,
		WithBackground(RGB(0, 0, 0)),
		WithPointColor(RGB(1, 0, 0)),
		WithHighlightColor(RGB(0, 1, 0)),
	)
	v.SetPoints([]Point{{ID: 1}})

	f := fake.last(t)
	if f.Scale != 1 || f.Tx != 0 || f.Ty != 0 {
		t.Errorf("initial view in frame = (%v, %v, %v)", f.Scale, f.Tx, f.Ty)
	}
	if !near(f.PointSize, PointSizeFor(1)) {
		t.Errorf("PointSize = %v, want %v", f.PointSize, PointSizeFor(1))
	}
	if f.Base != RGB(1, 0, 0) || f.Highlight != RGB(0, 1, 0) {
		t.Errorf("colors not threaded through: %+v", f)
	}
}

func TestViewerClose(t *testing.T) {
	v, fake := newTestViewer(t, 100, 100)
	v.Close()
	if !fake.closed {
		t.Error("Close did not reach the renderer")
	}
}
