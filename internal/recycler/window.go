package recycler

import "math"

// Index i is always bound to slot i mod N, so a window of N consecutive
// indices occupies every slot exactly once.

// clampWindow keeps a window start inside [0, count-N] so the window is full
// whenever there are enough items.
func (e *Engine[V]) clampWindow(start int) int {
	return max(0, min(start, e.count-len(e.slots)))
}

// bindWindow binds [start, start+N) clipped to the item count and
// deactivates slots left without an item. With force every slot is refilled
// even if it already holds the right index.
func (e *Engine[V]) bindWindow(start int, force bool) {
	n := len(e.slots)
	end := min(start+n, e.count)
	for i := start; i < end; i++ {
		e.bind(i%n, i, force)
	}
	for k := max(0, end-start); k < n; k++ {
		s := &e.slots[(start+k)%n]
		s.Index = Unbound
		e.setActive(s, false)
	}
	e.windowStart = start
}

func (e *Engine[V]) bind(slot, index int, force bool) {
	s := &e.slots[slot]
	if !force && s.Index == index && s.Active {
		return
	}
	s.Index = index
	s.Start = e.table.Start(index)
	s.Extent = e.table.Size(index)
	e.setActive(s, true)
	e.cb.Fill(index, s.View)
}

func (e *Engine[V]) setActive(s *Slot[V], active bool) {
	if s.Active == active {
		return
	}
	s.Active = active
	if e.cb.Activate != nil {
		e.cb.Activate(s.View, active)
	}
}

// stepUniform derives the window directly from the offset. It is O(N) and
// idempotent for an unchanged offset.
func (e *Engine[V]) stepUniform(offset float64, changed bool) {
	if !changed {
		return
	}
	first := 0
	if step := e.table.Mean() + e.table.Spacing(); step > 0 {
		near, _ := e.table.Padding()
		first = int(math.Floor((offset - near) / step))
	}
	first = e.clampWindow(first)
	e.bindWindow(first, false)
}

// stepVariable moves the window by at most one index per tick: forward once
// the leading item's cell has scrolled out, backward once the offset is
// before it. Offsets that jump more than one item per tick desynchronize the
// window; ScrollTo exists for those.
func (e *Engine[V]) stepVariable(offset float64, changed bool) {
	if !changed || offset < 0 {
		return
	}
	n := len(e.slots)
	p := e.windowStart
	switch {
	case offset > e.table.End(p)+e.table.Spacing() && p+n < e.count:
		e.bind(p%n, p+n, true)
		e.windowStart = p + 1
	case offset < e.table.Start(p) && p > 0:
		e.bind((p-1)%n, p-1, true)
		e.windowStart = p - 1
	}
}

// Sync rebinds the window for the current offset in one step. Hosts call it
// after moving the offset by more than an item outside of a drag or fling,
// such as paging or following a growing list.
func (e *Engine[V]) Sync() {
	if !e.initialized || e.count == 0 || e.busy {
		return
	}
	offset := e.vp.Offset()
	e.lastOffset = offset
	offset = max(0, min(offset, e.maxOffset()))
	e.bindWindow(e.clampWindow(e.table.IndexAt(offset)), false)
}
