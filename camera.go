package scatter

import "time"

// centerDuration is the fixed length of the eased centering transition.
const centerDuration = 150 * time.Millisecond

// cameraAnim is the state of an in-flight centering transition. The
// translation interpolates linearly between from and to by the eased
// elapsed-time fraction.
type cameraAnim struct {
	active       bool
	start        time.Time
	fromX, fromY float32
	toX, toY     float32
}

// easeOut is the transition's easing curve on the normalized elapsed-time
// fraction t in [0, 1].
func easeOut(t float32) float32 {
	return t * (2 - t)
}

// CenterOnSelected moves the view so the selected point's world position
// sits at the NDC origin under the current scale. With immediate set the
// target translation is applied directly; otherwise an eased transition
// runs over 150 ms, sampled by Tick at the host's frame rate. A no-op
// without a current selection.
//
// A second call while a transition is in flight is not a cancellation: it
// starts a fresh transition from whatever the translation is at that
// instant, which can produce a visible kink. Last call wins.
func (v *Viewer) CenterOnSelected(immediate bool) {
	if v.selected < 0 {
		return
	}
	p := v.store.At(v.selected)
	toX := -p.X * v.view.Scale
	toY := -p.Y * v.view.Scale

	if immediate {
		v.anim.active = false
		v.view.Tx, v.view.Ty = toX, toY
		v.redraw()
		return
	}

	v.anim = cameraAnim{
		active: true,
		start:  v.now(),
		fromX:  v.view.Tx,
		fromY:  v.view.Ty,
		toX:    toX,
		toY:    toY,
	}
	v.redraw()
}

// Animating reports whether a centering transition is in flight. Hosts
// keep scheduling frame ticks while it returns true.
func (v *Viewer) Animating() bool { return v.anim.active }

// Tick advances the centering transition to the given instant and
// redraws. Once the full duration has elapsed the translation lands on
// the precomputed target exactly — not merely close — and the transition
// ends. Outside a transition Tick does nothing.
func (v *Viewer) Tick(now time.Time) {
	if !v.anim.active {
		return
	}
	elapsed := now.Sub(v.anim.start)
	if elapsed >= centerDuration {
		v.view.Tx, v.view.Ty = v.anim.toX, v.anim.toY
		v.anim.active = false
		v.redraw()
		return
	}

	e := easeOut(float32(elapsed) / float32(centerDuration))
	v.view.Tx = v.anim.fromX + (v.anim.toX-v.anim.fromX)*e
	v.view.Ty = v.anim.fromY + (v.anim.toY-v.anim.fromY)*e
	v.redraw()
}
