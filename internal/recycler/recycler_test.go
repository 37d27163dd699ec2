package recycler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

type fakeViewport struct {
	extent   float64
	offset   float64
	velocity float64
	content  float64
	dragging bool
}

func (v *fakeViewport) Extent() float64              { return v.extent }
func (v *fakeViewport) Offset() float64              { return v.offset }
func (v *fakeViewport) SetOffset(offset float64)     { v.offset = offset }
func (v *fakeViewport) Velocity() float64            { return v.velocity }
func (v *fakeViewport) SetVelocity(velocity float64) { v.velocity = velocity }
func (v *fakeViewport) SetContentExtent(e float64)   { v.content = e }
func (v *fakeViewport) Dragging() bool               { return v.dragging }

type testView struct {
	slot   int
	index  int
	active bool
}

// recorder collects every callback the engine makes.
type recorder struct {
	created  int
	fills    int
	released []int
	pulls    []Direction
	snaps    []int
	snapView *testView
}

func (r *recorder) callbacks(size SizeFunc) Callbacks[*testView] {
	return Callbacks[*testView]{
		NewView: func(slot int) *testView {
			r.created++
			return &testView{slot: slot, index: Unbound}
		},
		Fill: func(index int, v *testView) {
			r.fills++
			v.index = index
		},
		Size: size,
		Pull: func(dir Direction) {
			r.pulls = append(r.pulls, dir)
		},
		Snap: func(index int, v *testView) {
			r.snaps = append(r.snaps, index)
			r.snapView = v
		},
		Release: func(v *testView) {
			r.released = append(r.released, v.slot)
		},
		Activate: func(v *testView, active bool) {
			v.active = active
		},
	}
}

// newFixedEngine returns an engine over items 20 units tall, 10 apart, with
// 10 units of padding in a 100 unit viewport: 7 slots, one item every 30
// units starting at 10.
func newFixedEngine(t testing.TB, opts ...Option) (*Engine[*testView], *fakeViewport, *recorder) {
	t.Helper()
	vp := &fakeViewport{extent: 100}
	rec := &recorder{}
	opts = append([]Option{WithFixedSize(20), WithAddonViews(2)}, opts...)
	e, err := New(vp, rec.callbacks(nil), opts...)
	require.NoError(t, err)
	return e, vp, rec
}

// alternating sizes 10 and 30 with no gaps or padding: items 2k and 2k+1
// start at 40k and 40k+10.
func alternating(i int) float64 {
	if i%2 == 0 {
		return 10
	}
	return 30
}

func newVariableEngine(t testing.TB, opts ...Option) (*Engine[*testView], *fakeViewport, *recorder) {
	t.Helper()
	vp := &fakeViewport{extent: 100}
	rec := &recorder{}
	opts = append([]Option{WithSpacing(0), WithPadding(0, 0), WithAddonViews(2)}, opts...)
	e, err := New(vp, rec.callbacks(alternating), opts...)
	require.NoError(t, err)
	return e, vp, rec
}

// requireWindow checks that every index of the window is bound to its slot
// and that no other slot is active.
func requireWindow(t *testing.T, e *Engine[*testView], start int) {
	t.Helper()
	require.Equal(t, start, e.WindowStart())
	n := e.ViewsCount()
	end := min(start+n, e.Count())
	slots := e.Slots()
	bound := 0
	for i := start; i < end; i++ {
		s := slots[i%n]
		require.Equal(t, i, s.Index, "slot %d", i%n)
		require.True(t, s.Active, "slot %d", i%n)
		require.Equal(t, i, s.View.index)
		require.Equal(t, e.Table().Start(i), s.Start)
		bound++
	}
	active := 0
	for _, s := range slots {
		if s.Active {
			active++
		}
	}
	require.Equal(t, bound, active)
}

func TestNew(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	cb := rec.callbacks(nil)

	t.Run("should require a viewport", func(t *testing.T) {
		t.Parallel()
		_, err := New(nil, cb)
		require.ErrorIs(t, err, ErrNoViewport)
	})

	t.Run("should require a view factory", func(t *testing.T) {
		t.Parallel()
		missing := cb
		missing.NewView = nil
		_, err := New(&fakeViewport{extent: 100}, missing)
		require.ErrorIs(t, err, ErrNoViewFactory)
	})

	t.Run("should require a fill callback", func(t *testing.T) {
		t.Parallel()
		missing := cb
		missing.Fill = nil
		_, err := New(&fakeViewport{extent: 100}, missing)
		require.ErrorIs(t, err, ErrNoFill)
	})

	t.Run("should start uninitialized", func(t *testing.T) {
		t.Parallel()
		e, err := New(&fakeViewport{extent: 100}, cb)
		require.NoError(t, err)
		assert.False(t, e.Initialized())
		assert.Zero(t, e.ViewsCount())
		assert.Nil(t, e.Table())
	})
}

func TestSlotCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 9, slotCount(100, 20, 4))
	assert.Equal(t, 10, slotCount(100, 12, 1), "partial items round up")
	assert.Equal(t, 104, slotCount(100, 0, 4), "mean floors to one unit")
	assert.Equal(t, 5, slotCount(0, 20, 4), "at least one slot")
	assert.Equal(t, 5, slotCount(100, 20, -3), "negative addon is ignored")
}

func TestInitData(t *testing.T) {
	t.Parallel()

	t.Run("should bind the first window", func(t *testing.T) {
		t.Parallel()
		e, vp, rec := newFixedEngine(t)
		e.InitData(50, false)

		require.True(t, e.Initialized())
		assert.Equal(t, 7, e.ViewsCount())
		assert.Equal(t, 7, rec.created)
		assert.Equal(t, 7, rec.fills)
		assert.Equal(t, 0.0, vp.offset)
		assert.Equal(t, 1510.0, vp.content)
		requireWindow(t, e, 0)
	})

	t.Run("should start at the far end", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newFixedEngine(t)
		e.InitData(50, true)

		assert.Equal(t, 1410.0, vp.offset)
		requireWindow(t, e, 43)
	})

	t.Run("should leave spare slots inactive for short lists", func(t *testing.T) {
		t.Parallel()
		e, _, _ := newFixedEngine(t)
		e.InitData(3, false)

		requireWindow(t, e, 0)
		for _, s := range e.Slots()[3:] {
			assert.Equal(t, Unbound, s.Index)
			assert.False(t, s.View.active)
		}
	})

	t.Run("should ignore an empty list", func(t *testing.T) {
		t.Parallel()
		e, _, rec := newFixedEngine(t)
		e.InitData(0, false)

		assert.False(t, e.Initialized())
		assert.Zero(t, rec.created)
	})

	t.Run("should be idempotent after recycle all", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newFixedEngine(t)
		e.InitData(50, false)
		vp.offset = 400
		e.Tick(frame)

		first, firstOffset := e.Slots(), vp.offset
		e.RecycleAll()
		e.InitData(50, false)
		vp.offset = 400
		e.Tick(frame)

		assert.Equal(t, first, e.Slots())
		assert.Equal(t, firstOffset, vp.offset)
	})
}

func TestRecycle(t *testing.T) {
	t.Parallel()

	t.Run("should deactivate every slot", func(t *testing.T) {
		t.Parallel()
		e, _, _ := newFixedEngine(t)
		e.InitData(50, false)
		e.RecycleAll()

		assert.Zero(t, e.Count())
		for _, s := range e.Slots() {
			assert.False(t, s.View.active)
		}
	})

	t.Run("should remove one item", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newFixedEngine(t)
		e.InitData(50, false)
		vp.offset = 300
		e.Tick(frame)

		e.Recycle(3)
		assert.Equal(t, 49, e.Count())
		assert.Equal(t, 1480.0, vp.content)
		requireWindow(t, e, e.Table().IndexAt(300))
	})

	t.Run("should ignore out of range indices", func(t *testing.T) {
		t.Parallel()
		e, _, _ := newFixedEngine(t)
		e.InitData(50, false)
		e.Recycle(50)
		e.Recycle(-1)
		assert.Equal(t, 50, e.Count())
	})

	t.Run("should recycle all when the last item goes", func(t *testing.T) {
		t.Parallel()
		e, _, _ := newFixedEngine(t)
		e.InitData(1, false)
		e.Recycle(0)

		assert.Zero(t, e.Count())
		assert.Equal(t, 1, e.Table().Len(), "table is kept")
		for _, s := range e.Slots() {
			assert.False(t, s.View.active)
		}
	})
}

func TestRefreshViews(t *testing.T) {
	t.Parallel()

	e, _, rec := newFixedEngine(t)
	e.InitData(50, false)
	e.RefreshViews(20)

	assert.Equal(t, []int{6, 5, 4, 3, 2, 1, 0}, rec.released)
	assert.Equal(t, 14, rec.created)
	assert.Equal(t, 7, e.ViewsCount())
	assert.False(t, e.Initialized())

	e.InitData(20, false)
	requireWindow(t, e, 0)
}

func TestUpdateVisible(t *testing.T) {
	t.Parallel()

	e, _, rec := newFixedEngine(t)
	e.UpdateVisible()
	assert.Zero(t, rec.fills)

	e.InitData(4, false)
	e.UpdateVisible()
	assert.Equal(t, 8, rec.fills, "only bound slots are refilled")
}

func TestConfigure(t *testing.T) {
	t.Parallel()

	e, vp, _ := newFixedEngine(t)
	e.InitData(50, false)
	e.Configure(WithSpacing(0))

	assert.Equal(t, 1020.0, vp.content)
	requireWindow(t, e, 0)
}

func TestReentrantCallsAreDropped(t *testing.T) {
	t.Parallel()

	vp := &fakeViewport{extent: 100}
	var e *Engine[*testView]
	rec := &recorder{}
	cb := rec.callbacks(nil)
	cb.Fill = func(index int, v *testView) {
		v.index = index
		e.ScrollTo(40)
	}
	e, err := New(vp, cb, WithFixedSize(20), WithAddonViews(2))
	require.NoError(t, err)

	e.InitData(50, false)
	assert.Equal(t, 0.0, vp.offset)
	assert.Equal(t, 0, e.WindowStart())
}
