package scatter

import (
	"testing"
	"time"
)

func TestCenterImmediate(t *testing.T) {
	v, _ := newTestViewer(t, 400, 400)
	v.SetPoints([]Point{{ID: 1, X: 0.4, Y: -0.3}})
	v.Wheel(-1, 200, 200) // non-identity scale

	v.SetSelectedID(1)
	v.CenterOnSelected(true)

	tr := v.View()
	if tr.Tx != -0.4*tr.Scale || tr.Ty != 0.3*tr.Scale {
		t.Errorf("translation = (%v, %v), want exact (%v, %v)",
			tr.Tx, tr.Ty, -0.4*tr.Scale, 0.3*tr.Scale)
	}
	if v.Animating() {
		t.Error("immediate centering left a transition in flight")
	}

	// The selected point now sits at the NDC origin.
	nx, ny := tr.WorldToNDC(0.4, -0.3)
	if !near(nx, 0) || !near(ny, 0) {
		t.Errorf("selected point at NDC (%v, %v), want origin", nx, ny)
	}
}

func TestCenterNoSelection(t *testing.T) {
	v, fake := newTestViewer(t, 400, 400)
	v.SetPoints([]Point{{ID: 1, X: 0.4, Y: -0.3}})

	frames := len(fake.frames)
	v.CenterOnSelected(true)
	v.CenterOnSelected(false)
	if len(fake.frames) != frames {
		t.Error("centering without a selection rendered frames")
	}
	if v.Animating() {
		t.Error("centering without a selection started a transition")
	}
}

func TestCenterEasedConvergence(t *testing.T) {
	v, _ := newTestViewer(t, 400, 400)
	start := time.Unix(1000, 0)
	v.now = func() time.Time { return start }

	v.SetPoints([]Point{{ID: 1, X: 0.5, Y: 0.5}})
	v.SetSelectedID(1)
	v.CenterOnSelected(false)

	if !v.Animating() {
		t.Fatal("eased centering did not start a transition")
	}

	// Midway: translation is strictly between start and target.
	v.Tick(start.Add(75 * time.Millisecond))
	tr := v.View()
	if tr.Tx >= 0 || tr.Tx <= -0.5 {
		t.Errorf("midway Tx = %v, want in (-0.5, 0)", tr.Tx)
	}
	if !v.Animating() {
		t.Error("transition ended before its duration")
	}

	// At the full duration the translation lands exactly on the target.
	v.Tick(start.Add(150 * time.Millisecond))
	tr = v.View()
	if tr.Tx != -0.5 || tr.Ty != -0.5 {
		t.Errorf("final translation = (%v, %v), want exact (-0.5, -0.5)", tr.Tx, tr.Ty)
	}
	if v.Animating() {
		t.Error("transition still in flight after its duration")
	}
}

func TestCenterEasedOvershootClock(t *testing.T) {
	v, _ := newTestViewer(t, 400, 400)
	start := time.Unix(1000, 0)
	v.now = func() time.Time { return start }

	v.SetPoints([]Point{{ID: 1, X: -0.25, Y: 0.75}})
	v.SetSelectedID(1)
	v.CenterOnSelected(false)

	// A single late tick (frame drop) still lands exactly on the target.
	v.Tick(start.Add(3 * time.Second))
	tr := v.View()
	if tr.Tx != 0.25 || tr.Ty != -0.75 {
		t.Errorf("translation = (%v, %v), want exact (0.25, -0.75)", tr.Tx, tr.Ty)
	}
	if v.Animating() {
		t.Error("transition survived a late tick")
	}
}

func TestCenterLastCallWins(t *testing.T) {
	v, _ := newTestViewer(t, 400, 400)
	start := time.Unix(1000, 0)
	clock := start
	v.now = func() time.Time { return clock }

	v.SetPoints([]Point{
		{ID: 1, X: 0.5, Y: 0},
		{ID: 2, X: -0.5, Y: 0},
	})
	v.SetSelectedID(1)
	v.CenterOnSelected(false)
	v.Tick(start.Add(75 * time.Millisecond))
	midTx := v.View().Tx

	// Retarget mid-flight: the new transition starts from the current
	// translation, not from the original start.
	clock = start.Add(75 * time.Millisecond)
	v.SetSelectedID(2)
	v.CenterOnSelected(false)
	if v.anim.fromX != midTx {
		t.Errorf("restart fromX = %v, want current %v", v.anim.fromX, midTx)
	}

	v.Tick(clock.Add(150 * time.Millisecond))
	if tr := v.View(); tr.Tx != 0.5 {
		t.Errorf("final Tx = %v, want exact 0.5 (second target)", tr.Tx)
	}
	if v.Animating() {
		t.Error("transition still in flight")
	}
}

func TestTickOutsideTransition(t *testing.T) {
	v, fake := newTestViewer(t, 400, 400)
	frames := len(fake.frames)
	v.Tick(time.Now())
	if len(fake.frames) != frames {
		t.Error("idle tick rendered a frame")
	}
}

func TestEaseOutShape(t *testing.T) {
	if got := easeOut(0); got != 0 {
		t.Errorf("easeOut(0) = %v", got)
	}
	if got := easeOut(1); got != 1 {
		t.Errorf("easeOut(1) = %v", got)
	}
	// Decelerating: the first half covers more than half the distance.
	if got := easeOut(0.5); got <= 0.5 {
		t.Errorf("easeOut(0.5) = %v, want > 0.5", got)
	}
}
