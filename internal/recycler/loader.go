package recycler

import "log/slog"

// ApplyData updates the list after newCount items were loaded at the edge
// dir, keeping items that were on screen where they were. count is the new
// total.
func (e *Engine[V]) ApplyData(count, newCount int, dir Direction) {
	if !e.initialized {
		return
	}
	if !e.enter("ApplyData") {
		return
	}
	defer e.leave()

	if e.count == 0 || count <= len(e.slots) {
		e.initData(count, false)
		return
	}
	newCount = max(0, min(newCount, count))
	oldNear, _ := e.table.Padding()
	oldMax := e.maxOffset()
	if err := e.rebuild(count); err != nil {
		slog.Warn("Failed to rebuild item table", "count", count, "error", err)
		return
	}
	e.snap.settling = false

	offset := e.vp.Offset()
	if dir.IsNear() {
		// Everything shifted by the prepended items and by any change of the
		// near padding, which snapping derives from the first item.
		newNear, _ := e.table.Padding()
		offset += e.table.span(0, newCount) + newNear - oldNear
	} else if offset > oldMax {
		// A view parked past the old end lands on the old end; any other
		// view keeps its offset.
		offset = oldMax
	}
	e.vp.SetOffset(offset)
	e.lastOffset = offset

	// Index identities moved, so every slot is refilled.
	e.bindWindow(e.clampWindow(e.table.IndexAt(offset)), true)
	slog.Debug("Applied data", "count", count, "new", newCount, "direction", dir, "window", e.windowStart)
}
