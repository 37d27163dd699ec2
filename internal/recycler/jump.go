package recycler

import "math"

// jumpLookback keeps the target off the leading edge of the window.
const jumpLookback = 2

// ScrollTo jumps straight to the item at index, rebinding every slot instead
// of walking the window there. The index is clamped into the list.
func (e *Engine[V]) ScrollTo(index int) {
	if !e.initialized || e.count == 0 {
		return
	}
	if !e.enter("ScrollTo") {
		return
	}
	defer e.leave()

	e.snap.settling = false
	index = max(0, min(index, e.count-1))
	start := e.clampWindow(index - jumpLookback)
	if start <= 0 {
		e.initData(e.count, false)
	} else {
		e.bindWindow(start, true)
	}

	offset := max(0, min(e.table.OffsetBefore(index), e.maxOffset()))
	e.vp.SetOffset(offset)
	e.lastOffset = offset
	e.vp.SetVelocity(e.residualVelocity(index, offset))
}

// residualVelocity lets attached inertia ease out after a jump instead of
// stopping dead. It moves the target toward the middle of the viewport so
// the drift never carries it off screen, and is zero when the offset sits on
// the bound it would cross.
func (e *Engine[V]) residualVelocity(index int, offset float64) float64 {
	mid := e.table.Start(index) + e.table.Size(index)/2 - offset
	half := e.vp.Extent() / 2
	switch {
	case mid < half && offset > 0:
		return -e.opts.jumpVelocity
	case mid > half && offset < e.maxOffset():
		return e.opts.jumpVelocity
	}
	return 0
}

// ScrollToNormalized jumps to the item at the normalized position p, as a
// scrollbar drag would. It does nothing while snapping is enabled since snap
// settling also moves the offset.
func (e *Engine[V]) ScrollToNormalized(p float64) {
	if e.opts.snap {
		return
	}
	e.ScrollTo(int(math.Round(float64(e.count) * p)))
}
