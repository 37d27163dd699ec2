package recycler

import (
	"errors"
	"log/slog"
	"math"
	"slices"
	"time"
)

// Errors returned by New and the table builder.
var (
	ErrNoViewport    = errors.New("recycler: viewport is required")
	ErrNoViewFactory = errors.New("recycler: view factory is required")
	ErrNoFill        = errors.New("recycler: fill callback is required")
	ErrEmptyTable    = errors.New("recycler: table needs at least one item")
)

// Unbound is the index of a slot that holds no item.
const Unbound = -1

// Viewport is the scroll surface the engine reads and drives. Offsets are
// distances scrolled toward the far end: negative values overscroll the
// near edge, values past Extent of the content overscroll the far edge.
type Viewport interface {
	// Extent is the visible size along the scroll axis.
	Extent() float64
	Offset() float64
	SetOffset(offset float64)
	Velocity() float64
	SetVelocity(velocity float64)
	// SetContentExtent is called whenever the table is rebuilt.
	SetContentExtent(extent float64)
	// Dragging reports whether the user is manually dragging the content.
	Dragging() bool
}

// Callbacks are the host collaborators. They are invoked synchronously and
// must not call back into InitData, ApplyData, ScrollTo or RefreshViews.
type Callbacks[V any] struct {
	// NewView creates the physical view for a slot. Required.
	NewView func(slot int) V
	// Fill populates a view for the item at index. Required.
	Fill func(index int, view V)
	// Size queries item extents when dynamic sizing is enabled.
	Size SizeFunc
	// Pull receives the edge a released pull gesture armed.
	Pull func(dir Direction)
	// Snap receives the item a settle ended on.
	Snap func(index int, view V)
	// Release disposes of a view when the pool is rebuilt.
	Release func(view V)
	// Activate shows or hides a view.
	Activate func(view V, active bool)
}

// Slot is one reusable view holder and its current geometry.
type Slot[V any] struct {
	View   V
	Index  int
	Start  float64
	Extent float64
	Active bool
}

// Engine recycles a fixed pool of slots over a list of items. It is driven
// by a single goroutine through Tick and is not safe for concurrent use.
type Engine[V any] struct {
	opts options
	vp   Viewport
	cb   Callbacks[V]

	table *Table
	slots []Slot[V]

	count       int
	windowStart int
	lastOffset  float64
	direction   int
	initialized bool
	busy        bool

	pull pullState
	snap snapState
}

// New returns an engine bound to vp. It fails when a required collaborator
// is missing.
func New[V any](vp Viewport, cb Callbacks[V], opts ...Option) (*Engine[V], error) {
	switch {
	case vp == nil:
		return nil, ErrNoViewport
	case cb.NewView == nil:
		return nil, ErrNoViewFactory
	case cb.Fill == nil:
		return nil, ErrNoFill
	}
	e := &Engine[V]{
		opts: defaultOptions(),
		vp:   vp,
		cb:   cb,
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	e.pull.reset(&e.opts)
	return e, nil
}

func (e *Engine[V]) enter(op string) bool {
	if e.busy {
		slog.Warn("Ignoring reentrant call into recycler", "op", op)
		return false
	}
	e.busy = true
	return true
}

func (e *Engine[V]) leave() {
	e.busy = false
}

// InitData builds the table and the slot pool for count items and binds the
// first window. With atFarEnd the list starts scrolled to its end.
func (e *Engine[V]) InitData(count int, atFarEnd bool) {
	if count <= 0 {
		slog.Warn("Can't init empty list", "count", count)
		return
	}
	if !e.enter("InitData") {
		return
	}
	defer e.leave()
	e.initData(count, atFarEnd)
}

func (e *Engine[V]) initData(count int, atFarEnd bool) {
	if err := e.rebuild(count); err != nil {
		slog.Warn("Failed to build item table", "count", count, "error", err)
		return
	}
	e.createViews(false)
	e.initialized = true

	offset := 0.0
	start := 0
	if atFarEnd {
		offset = e.maxOffset()
		start = e.clampWindow(count - len(e.slots))
	}
	e.vp.SetOffset(offset)
	e.lastOffset = offset
	e.bindWindow(start, true)
}

// rebuild recomputes the table for count items and publishes the new
// content extent.
func (e *Engine[V]) rebuild(count int) error {
	t, err := buildTable(count, e.cb.Size, &e.opts, e.vp.Extent())
	if err != nil {
		return err
	}
	e.table = t
	e.count = count
	e.vp.SetContentExtent(t.Extent())
	return nil
}

func (e *Engine[V]) createViews(force bool) {
	if e.slots != nil && !force {
		return
	}
	n := slotCount(e.vp.Extent(), e.table.Mean(), e.opts.addon)
	e.slots = make([]Slot[V], n)
	for i := range e.slots {
		e.slots[i] = Slot[V]{View: e.cb.NewView(i), Index: Unbound}
	}
	slog.Debug("Created slot pool", "slots", n, "mean", e.table.Mean())
}

// slotCount is the number of slots needed to cover the viewport plus addon.
func slotCount(viewport, mean float64, addon int) int {
	if mean < 1 {
		mean = 1
	}
	return max(1, int(math.Ceil(viewport/mean))) + max(0, addon)
}

// RecycleAll deactivates every slot and forgets the item count along with
// the scroll direction, snap and pull state. The table is kept so a
// following InitData restarts quickly.
func (e *Engine[V]) RecycleAll() {
	e.count = 0
	e.direction = 0
	e.snap = snapState{}
	e.pull.reset(&e.opts)
	if e.slots == nil || !e.initialized {
		return
	}
	for j := range e.slots {
		e.setActive(&e.slots[j], false)
	}
}

// Recycle removes the item at index, rebuilds the table and rebinds the
// window around the current offset.
func (e *Engine[V]) Recycle(index int) {
	if !e.initialized {
		e.RecycleAll()
		return
	}
	if index < 0 || index >= e.count {
		slog.Warn("Recycle index out of range", "index", index, "count", e.count)
		return
	}
	if e.count-1 == 0 {
		e.RecycleAll()
		return
	}
	if !e.enter("Recycle") {
		return
	}
	defer e.leave()
	if err := e.rebuild(e.count - 1); err != nil {
		slog.Warn("Failed to rebuild item table", "error", err)
		return
	}
	offset := max(0, min(e.vp.Offset(), e.maxOffset()))
	e.bindWindow(e.clampWindow(e.table.IndexAt(offset)), true)
}

// RefreshViews releases the whole slot pool and creates a new one sized for
// count items. The engine is left uninitialized until the next InitData.
func (e *Engine[V]) RefreshViews(count int) {
	if e.slots == nil {
		return
	}
	if !e.enter("RefreshViews") {
		return
	}
	defer e.leave()
	e.initialized = false
	e.snap.settling = false
	if e.cb.Release != nil {
		for j := len(e.slots) - 1; j >= 0; j-- {
			e.cb.Release(e.slots[j].View)
		}
	}
	e.slots = nil
	if err := e.rebuild(count); err != nil {
		slog.Warn("Can't refresh views", "count", count, "error", err)
		return
	}
	e.createViews(true)
}

// Configure applies opts and, when initialized, rebuilds the table and
// rebinds the current window. Options that change the slot count only take
// effect after RefreshViews.
func (e *Engine[V]) Configure(opts ...Option) {
	if !e.enter("Configure") {
		return
	}
	defer e.leave()
	for _, opt := range opts {
		opt(&e.opts)
	}
	e.pull.reset(&e.opts)
	if !e.initialized || e.count == 0 {
		return
	}
	e.snap.settling = false
	if err := e.rebuild(e.count); err != nil {
		slog.Warn("Failed to rebuild item table", "error", err)
		return
	}
	offset := max(0, min(e.vp.Offset(), e.maxOffset()))
	e.bindWindow(e.clampWindow(e.table.IndexAt(offset)), true)
}

// UpdateVisible refills every bound slot, for when item content changed but
// the count did not.
func (e *Engine[V]) UpdateVisible() {
	if !e.initialized {
		return
	}
	for _, s := range e.slots {
		if s.Active && s.Index >= 0 && s.Index < e.count {
			e.cb.Fill(s.Index, s.View)
		}
	}
}

// Tick advances the engine by one frame: rebinds slots for the current
// offset, updates pull labels and steps snapping.
func (e *Engine[V]) Tick(dt time.Duration) {
	if e.slots == nil || e.busy {
		return
	}
	e.busy = true
	defer e.leave()

	offset := e.vp.Offset()
	if e.initialized && e.count > 0 {
		changed := !approxEqual(offset, e.lastOffset)
		if changed {
			if offset < e.lastOffset {
				e.direction = -1
			} else {
				e.direction = 1
			}
		}
		e.lastOffset = offset

		if e.table.Variable() {
			e.stepVariable(offset, changed)
		} else {
			e.stepUniform(offset, changed)
		}
		if e.windowStart >= e.count {
			e.windowStart = e.count - 1
		}
	}

	e.updatePull(offset)

	if e.initialized && e.count > 0 {
		e.updateSnap(dt)
	}
}

func (e *Engine[V]) maxOffset() float64 {
	if e.table == nil {
		return 0
	}
	return max(0, e.table.Extent()-e.vp.Extent())
}

// Initialized reports whether InitData has run since the last RefreshViews.
func (e *Engine[V]) Initialized() bool { return e.initialized }

// ViewsCount returns the size of the slot pool.
func (e *Engine[V]) ViewsCount() int { return len(e.slots) }

// Count returns the current item count.
func (e *Engine[V]) Count() int { return e.count }

// WindowStart returns the lowest index of the bound window.
func (e *Engine[V]) WindowStart() int { return e.windowStart }

// Table returns the current size/position table, or nil before InitData.
func (e *Engine[V]) Table() *Table { return e.table }

// NormalizedPosition returns the offset as a fraction of the scrollable
// range: 0 at the near end, 1 at the far end, outside [0,1] when
// overscrolled.
func (e *Engine[V]) NormalizedPosition() float64 {
	m := e.maxOffset()
	if m <= 0 {
		return 0
	}
	return e.vp.Offset() / m
}

// Views returns every view in the pool in slot order.
func (e *Engine[V]) Views() []V {
	views := make([]V, len(e.slots))
	for i, s := range e.slots {
		views[i] = s.View
	}
	return views
}

// Slots returns a snapshot of the pool.
func (e *Engine[V]) Slots() []Slot[V] {
	return slices.Clone(e.slots)
}
