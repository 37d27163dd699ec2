package recycler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformWindow(t *testing.T) {
	t.Parallel()

	t.Run("should derive the window from the offset", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newFixedEngine(t)
		e.InitData(50, false)

		vp.offset = 300
		e.Tick(frame)
		requireWindow(t, e, 9)

		vp.offset = 100
		e.Tick(frame)
		requireWindow(t, e, 3)
	})

	t.Run("should clamp the window at both ends", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newFixedEngine(t)
		e.InitData(50, false)

		vp.offset = -200
		e.Tick(frame)
		requireWindow(t, e, 0)

		vp.offset = 5000
		e.Tick(frame)
		requireWindow(t, e, 43)
	})

	t.Run("should not refill for an unchanged offset", func(t *testing.T) {
		t.Parallel()
		e, vp, rec := newFixedEngine(t)
		e.InitData(50, false)
		vp.offset = 300
		e.Tick(frame)

		fills := rec.fills
		e.Tick(frame)
		e.Tick(frame)
		assert.Equal(t, fills, rec.fills)
	})

	t.Run("should only refill slots that changed item", func(t *testing.T) {
		t.Parallel()
		e, vp, rec := newFixedEngine(t)
		e.InitData(50, false)

		fills := rec.fills
		vp.offset = 70
		e.Tick(frame)
		requireWindow(t, e, 2)
		assert.Equal(t, fills+2, rec.fills)
	})

	t.Run("should keep the window bijective across a sweep", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newFixedEngine(t)
		e.InitData(50, false)

		for offset := -100.0; offset < 1600; offset += 7 {
			vp.offset = offset
			e.Tick(frame)
			requireWindow(t, e, e.WindowStart())
		}
	})
}

func TestVariableWindow(t *testing.T) {
	t.Parallel()

	t.Run("should step forward once the leading item scrolled out", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newVariableEngine(t)
		e.InitData(40, false)
		require.True(t, e.Table().Variable())
		assert.Equal(t, 7, e.ViewsCount())

		vp.offset = 5
		e.Tick(frame)
		requireWindow(t, e, 0)

		vp.offset = 11
		e.Tick(frame)
		requireWindow(t, e, 1)
	})

	t.Run("should hold while the leading edge is inside an item", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newVariableEngine(t)
		e.InitData(40, false)

		vp.offset = 11
		e.Tick(frame)
		for _, offset := range []float64{12, 20, 39, 25, 11} {
			vp.offset = offset
			e.Tick(frame)
			requireWindow(t, e, 1)
		}
	})

	t.Run("should step backward and reuse the departed slot", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newVariableEngine(t)
		e.InitData(40, false)

		for _, offset := range []float64{11, 41} {
			vp.offset = offset
			e.Tick(frame)
		}
		requireWindow(t, e, 2)
		assert.Equal(t, 8, e.Slots()[1].Index)

		vp.offset = 39
		e.Tick(frame)
		requireWindow(t, e, 1)
		assert.Equal(t, 1, e.Slots()[1].Index)
	})

	t.Run("should move at most one item per tick", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newVariableEngine(t)
		e.InitData(40, false)

		vp.offset = 400
		e.Tick(frame)
		requireWindow(t, e, 1)
		e.Tick(frame)
		requireWindow(t, e, 1)
	})

	t.Run("should ignore near overscroll", func(t *testing.T) {
		t.Parallel()
		e, vp, rec := newVariableEngine(t)
		e.InitData(40, false)

		fills := rec.fills
		vp.offset = -50
		e.Tick(frame)
		requireWindow(t, e, 0)
		assert.Equal(t, fills, rec.fills)
	})

	t.Run("should follow a slow scroll to the end", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newVariableEngine(t)
		e.InitData(40, false)

		for offset := 0.0; offset <= 700; offset += 5 {
			vp.offset = offset
			e.Tick(frame)
			requireWindow(t, e, e.WindowStart())
		}
		assert.Equal(t, 33, e.WindowStart())
	})
}

func TestSync(t *testing.T) {
	t.Parallel()

	t.Run("should catch up after a jump of many items", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newVariableEngine(t)
		e.InitData(50, false)

		vp.offset = 400
		e.Tick(frame)
		require.Equal(t, 1, e.WindowStart(), "one step per tick")

		e.Sync()
		requireWindow(t, e, 20)

		e.Tick(frame)
		requireWindow(t, e, 20)
	})

	t.Run("should clamp an overscrolled offset", func(t *testing.T) {
		t.Parallel()
		e, vp, _ := newVariableEngine(t)
		e.InitData(50, false)

		vp.offset = 5000
		e.Sync()
		requireWindow(t, e, 43)

		vp.offset = -30
		e.Sync()
		requireWindow(t, e, 0)
	})

	t.Run("should ignore an uninitialized engine", func(t *testing.T) {
		t.Parallel()
		e, _, rec := newFixedEngine(t)
		e.Sync()
		assert.Zero(t, rec.fills)
	})
}
