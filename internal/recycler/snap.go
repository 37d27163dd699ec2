package recycler

import (
	"log/slog"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// settleDistance is how close the offset must get to its target before a
// settle completes.
const settleDistance = 0.5

type snapState struct {
	// fast is true while the viewport is dragged or flung faster than the
	// slow velocity.
	fast     bool
	settling bool
	index    int
	target   float64
	velocity float64
}

// snapPadding returns paddings that let the first and last item reach the
// anchor with the configured alignment.
func snapPadding(o *options, viewport, first, last float64) (near, far float64) {
	near = o.snapAnchor * viewport
	far = (1 - o.snapAnchor) * viewport
	switch o.snapAlign {
	case AlignStart:
		far -= last
	case AlignMiddle:
		near -= first / 2
		far -= last / 2
	case AlignEnd:
		near -= first
	}
	return near, far
}

// snapTarget is the offset that puts the aligned point of item index on the
// viewport anchor.
func (e *Engine[V]) snapTarget(index int) float64 {
	point := e.table.Start(index) + e.table.Size(index)*e.opts.snapAlign.ratio()
	return point - e.opts.snapAnchor*e.vp.Extent()
}

// SnapTo starts settling on the item at index. Out of range indices are
// ignored.
func (e *Engine[V]) SnapTo(index int) {
	if !e.initialized || index < 0 || index >= e.count {
		return
	}
	e.vp.SetVelocity(0)
	e.snap = snapState{
		settling: true,
		index:    index,
		target:   e.snapTarget(index),
	}
}

// Settling reports whether a settle is in progress and toward which item.
func (e *Engine[V]) Settling() (int, bool) {
	return e.snap.index, e.snap.settling
}

// updateSnap runs the Idle/Settling state machine for one tick.
func (e *Engine[V]) updateSnap(dt time.Duration) {
	fast := math.Abs(e.vp.Velocity()) >= e.opts.slowVelocity || e.vp.Dragging()
	if fast != e.snap.fast {
		e.snap.fast = fast
		switch {
		case fast:
			e.snap.settling = false
		case e.opts.snap:
			e.pickSnapTarget()
		}
	}
	if !e.snap.settling {
		return
	}

	e.vp.SetVelocity(0)
	next := e.snap.target
	if e.opts.snapElasticity > 0 && dt > 0 {
		// Critically damped, so the distance to the target never grows.
		spring := harmonica.NewSpring(dt.Seconds(), 2/e.opts.snapElasticity, 1)
		next, e.snap.velocity = spring.Update(e.vp.Offset(), e.snap.velocity, e.snap.target)
	}
	if math.Abs(next-e.snap.target) >= settleDistance {
		e.vp.SetOffset(next)
		return
	}

	e.vp.SetOffset(e.snap.target)
	e.snap.settling = false
	e.snap.velocity = 0
	e.finishSnap()
}

func (e *Engine[V]) finishSnap() {
	index := e.snap.index
	n := len(e.slots)
	if e.slots[index%n].Index != index {
		// The incremental path has not caught up with the settle.
		e.bindWindow(e.clampWindow(e.table.IndexAt(e.snap.target)), true)
		if e.slots[index%n].Index != index {
			e.bindWindow(e.clampWindow(index-jumpLookback), true)
		}
	}
	slog.Debug("Snapped", "index", index, "offset", e.snap.target)
	if e.cb.Snap != nil {
		e.cb.Snap(index, e.slots[index%n].View)
	}
}

// pickSnapTarget scans the bound window for the first item whose aligned
// point lies past the anchor. When the list was last moving forward the item
// just before that crossing wins, which stops two neighbours from trading
// places.
func (e *Engine[V]) pickSnapTarget() {
	first := e.windowStart
	last := min(first+len(e.slots), e.count)
	if last < 1 || first >= last {
		return
	}
	offset := e.vp.Offset()
	anchor := e.opts.snapAnchor * e.vp.Extent()
	ratio := e.opts.snapAlign.ratio()

	index := first
	for ; index < last; index++ {
		if e.table.Start(index)+e.table.Size(index)*ratio-offset > anchor {
			break
		}
	}
	switch {
	case index >= last:
		index = last - 1
	case e.direction >= 0 && index > first:
		index--
	}

	e.snap.settling = true
	e.snap.index = index
	e.snap.target = e.snapTarget(index)
	e.snap.velocity = 0
}

// SetSnap turns snapping on or off and rebuilds the table with the matching
// padding.
func (e *Engine[V]) SetSnap(enabled bool, anchor float64, align Alignment, elasticity float64) {
	if !enabled {
		e.Configure(WithoutSnap())
		return
	}
	e.Configure(WithSnap(anchor, align), WithSnapElasticity(elasticity))
}
