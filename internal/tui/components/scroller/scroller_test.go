package scroller

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tujuhre12/recycler/internal/config"
	"github.com/tujuhre12/recycler/internal/recycler"
)

func numbered(prefix string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%s %d", prefix, i)
	}
	return lines
}

func newTestModel(t *testing.T, lines []string, source Source, width, height int) *Model {
	t.Helper()
	m, err := New(config.Default(), lines, source)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return m
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyPressMsg
		switch k {
		case "enter":
			msg = tea.KeyPressMsg{Code: tea.KeyEnter}
		case "esc":
			msg = tea.KeyPressMsg{Code: tea.KeyEscape}
		case "backspace":
			msg = tea.KeyPressMsg{Code: tea.KeyBackspace}
		default:
			msg = tea.KeyPressMsg{Code: []rune(k)[0], Text: k}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func typeText(m *Model, text string) {
	for _, r := range text {
		press(m, string(r))
	}
}

// settle feeds frames until nothing moves.
func settle(t *testing.T, m *Model) {
	t.Helper()
	for range 1000 {
		if !m.moving() {
			return
		}
		m.Update(frameMsg(time.Time{}))
	}
	t.Fatal("list never came to rest")
}

// collect runs cmd and every command it batches, returning the messages
// other than animation frames.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var msgs []tea.Msg
		for _, c := range msg {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	case frameMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func plain(m *Model) string {
	return ansi.Strip(m.render())
}

func TestModel(t *testing.T) {
	t.Parallel()

	t.Run("should render the visible items", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, numbered("line", 100), nil, 20, 6)
		out := plain(m)
		assert.Contains(t, out, "line 0")
		assert.Contains(t, out, "line 2")
		assert.NotContains(t, out, "line 3")
		assert.Contains(t, out, "2/100", "the anchor sits on the second item")
		assert.Equal(t, 5+4, m.engine.ViewsCount())
	})

	t.Run("should scroll a line per key", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, numbered("line", 100), nil, 20, 6)
		press(m, "j", "j")
		assert.Equal(t, 2.0, m.surface.Offset())
		out := plain(m)
		assert.Contains(t, out, "line 3")
		assert.NotContains(t, out, "line 0")

		press(m, "k", "k", "k")
		assert.Equal(t, 0.0, m.surface.Offset(), "keys never overscroll")
	})

	t.Run("should page and keep the window in sync", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, numbered("line", 100), nil, 20, 6)
		press(m, "f", "f", "f")
		assert.Equal(t, 15.0, m.surface.Offset())
		assert.Equal(t, m.engine.Table().IndexAt(15), m.engine.WindowStart())
		assert.Contains(t, plain(m), "line 8")
	})

	t.Run("should jump to the last item", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, numbered("line", 100), nil, 20, 6)
		cmd := press(m, "G")
		require.NotNil(t, cmd, "the jump starts the frame loop")
		settle(t, m)
		assert.Equal(t, m.surface.MaxOffset(), m.surface.Offset())
		assert.Contains(t, plain(m), "line 99")
		assert.Equal(t, m.items[99].ID, m.selectedID)

		press(m, "g")
		settle(t, m)
		assert.Contains(t, plain(m), "line 0")
	})

	t.Run("should quit", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, numbered("line", 3), nil, 20, 6)
		cmd := press(m, "q")
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("should show an empty list", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, nil, nil, 20, 6)
		assert.False(t, m.engine.Initialized())
		assert.Contains(t, plain(m), "No items")

		m.Update(AppendMsg{Lines: []string{"first"}})
		assert.True(t, m.engine.Initialized())
		assert.Contains(t, plain(m), "first")
	})
}

func TestPullToLoad(t *testing.T) {
	t.Parallel()

	source := func(dir recycler.Direction, n int) []string {
		return numbered("new "+dir.String(), n)
	}

	t.Run("should load above after a released pull", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, numbered("line", 100), source, 20, 6)

		m.Update(tea.MouseClickMsg{Y: 1, Button: tea.MouseLeft})
		m.Update(tea.MouseMotionMsg{Y: 6, Button: tea.MouseLeft})
		assert.Equal(t, -5.0, m.surface.Offset())
		near, _ := m.engine.CanLoad()
		require.True(t, near)
		assert.Contains(t, plain(m), recycler.DefaultReleaseText)

		_, cmd := m.Update(tea.MouseReleaseMsg{Y: 6, Button: tea.MouseLeft})
		msgs := collect(cmd)
		require.Len(t, msgs, 1)
		m.Update(msgs[0])

		require.Len(t, m.items, 120)
		assert.Equal(t, "new top 0", m.items[0].Text)
		assert.Equal(t, "line 0", m.items[20].Text)
		assert.Equal(t, 120, m.engine.Count())
		assert.Equal(t, 35.0, m.surface.Offset(), "the content stays where it was")
	})

	t.Run("should not arm on a short pull", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, numbered("line", 100), source, 20, 6)

		m.Update(tea.MouseClickMsg{Y: 1, Button: tea.MouseLeft})
		m.Update(tea.MouseMotionMsg{Y: 4, Button: tea.MouseLeft})
		assert.Contains(t, plain(m), recycler.DefaultPullText)

		_, cmd := m.Update(tea.MouseReleaseMsg{Y: 4, Button: tea.MouseLeft})
		assert.Empty(t, collect(cmd))
		settle(t, m)
		assert.Equal(t, 0.0, m.surface.Offset())
		assert.Len(t, m.items, 100)
	})

	t.Run("should load below on request", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, numbered("line", 100), source, 20, 6)
		msgs := collect(press(m, "L"))
		require.Len(t, msgs, 1)
		assert.Nil(t, press(m, "L"), "one load per edge at a time")

		m.Update(msgs[0])
		require.Len(t, m.items, 120)
		assert.Equal(t, "new bottom 19", m.items[119].Text)
		assert.Equal(t, 0.0, m.surface.Offset())
	})

	t.Run("should report a list without a source", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, numbered("line", 10), nil, 40, 6)
		assert.Nil(t, press(m, "L"))
		assert.Contains(t, plain(m), "nothing more to load")
	})
}

func TestFollow(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, numbered("line", 10), nil, 20, 6)
	press(m, "G")
	settle(t, m)
	require.Equal(t, 14.0, m.surface.Offset())

	m.Update(AppendMsg{Lines: []string{"tail 0", "tail 1"}})
	assert.Equal(t, 18.0, m.surface.Offset())
	assert.Contains(t, plain(m), "tail 1")

	press(m, "g")
	settle(t, m)
	m.Update(AppendMsg{Lines: []string{"tail 2"}})
	assert.Equal(t, 0.0, m.surface.Offset(), "only a list at its end follows")
}

func TestSearch(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, numbered("line", 100), nil, 20, 6)
	press(m, "/")
	typeText(m, "line 422")
	press(m, "backspace")
	assert.Contains(t, plain(m), "/line 42")

	press(m, "enter")
	assert.False(t, m.search.active)
	assert.Equal(t, m.engine.Table().OffsetBefore(42), m.surface.Offset())
	assert.Equal(t, m.items[42].ID, m.selectedID)
	assert.Contains(t, m.status, "match 1/1")

	press(m, "/")
	typeText(m, "zzz")
	press(m, "enter")
	assert.Contains(t, m.status, "no match")

	press(m, "/")
	typeText(m, "abc")
	press(m, "esc")
	assert.False(t, m.search.active)
}

func TestSnapToggle(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, numbered("line", 100), nil, 20, 6)
	require.False(t, m.snap)

	press(m, "s")
	require.True(t, m.snap)
	near, far := m.engine.Table().Padding()
	assert.Equal(t, 2.0, near)
	assert.Equal(t, 2.0, far)

	settle(t, m)
	assert.Equal(t, m.items[0].ID, m.selectedID)

	press(m, "j")
	index, settling := m.engine.Settling()
	require.True(t, settling)
	assert.Equal(t, 1, index)
	settle(t, m)
	assert.Equal(t, m.items[1].ID, m.selectedID)

	press(m, "s")
	assert.False(t, m.snap)
	near, _ = m.engine.Table().Padding()
	assert.Equal(t, 0.0, near)
}

func TestYank(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	m := newTestModel(t, numbered("line", 100), nil, 20, 6)
	msgs := collect(press(m, "y"))
	require.Len(t, msgs, 1)
	assert.Equal(t, "line 1", copied)

	m.Update(msgs[0])
	assert.Equal(t, "copied item 2", m.status)
}

func TestReconfigure(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, []string{"short", "a line that wraps twice"}, nil, 10, 6)
	assert.Equal(t, 1.0, m.engine.Table().Size(0))
	assert.Equal(t, 3.0, m.engine.Table().Size(1))

	cfg := config.Default()
	cfg.Engine.Spacing = 0
	cfg.TUI.Wrap = false
	m.Update(ConfigMsg{Config: cfg})
	assert.Equal(t, 0.0, m.engine.Table().Spacing())
	assert.Equal(t, 1.0, m.engine.Table().Size(1))
	assert.Contains(t, plain(m), "a line th…")

	m.Update(tea.WindowSizeMsg{Width: 30, Height: 6})
	assert.Contains(t, plain(m), "a line that wraps twice")
}
