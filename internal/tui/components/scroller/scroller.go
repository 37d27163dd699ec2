package scroller

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"

	"github.com/tujuhre12/recycler/internal/config"
	"github.com/tujuhre12/recycler/internal/recycler"
)

// wheelVelocity is the speed in lines per second added by one wheel notch.
const wheelVelocity = 40

// Source returns n new lines for the edge dir, in display order. It runs
// outside the update loop.
type Source func(dir recycler.Direction, n int) []string

// AppendMsg adds lines at the far end, as when a followed file grows.
type AppendMsg struct {
	Lines []string
}

// ConfigMsg replaces the configuration after a reload.
type ConfigMsg struct {
	Config *config.Config
}

type (
	frameMsg  time.Time
	statusMsg string
	loadedMsg struct {
		dir   recycler.Direction
		lines []string
	}
)

var writeClipboard = clipboard.WriteAll

// view is a pooled row holder filled with the laid out lines of one item.
type view struct {
	slot   int
	index  int
	lines  []string
	active bool
}

// Model is a bubbletea model that shows a list through a recycling engine.
// Only the items bound to the engine's slot pool are laid out and drawn.
type Model struct {
	cfg        *config.Config
	keyMap     KeyMap
	searchKeys SearchKeyMap
	styles     styles
	source     Source

	surface *recycler.Surface
	engine  *recycler.Engine[*view]
	items   []Item
	cache   *renderCache

	width, height int
	snap          bool
	selectedID    string
	dragY         int
	ticking       bool
	pending       []recycler.Direction
	loading       map[recycler.Direction]bool
	search        search
	status        string
}

// New returns a model showing lines. source may be nil when no more items
// can be loaded.
func New(cfg *config.Config, lines []string, source Source) (*Model, error) {
	m := &Model{
		cfg:        cfg,
		keyMap:     DefaultKeyMap(),
		searchKeys: DefaultSearchKeyMap(),
		styles:     defaultStyles(),
		source:     source,
		items:      newItems(lines),
		cache:      newRenderCache(),
		snap:       cfg.Engine.Snap,
		loading:    make(map[recycler.Direction]bool),
	}
	m.surface = recycler.NewSurface(0)
	m.surface.SetDeceleration(cfg.TUI.Deceleration)
	m.surface.SetReturnTime(cfg.TUI.ReturnTime)

	engine, err := recycler.New(m.surface, recycler.Callbacks[*view]{
		NewView: func(slot int) *view {
			return &view{slot: slot, index: recycler.Unbound}
		},
		Fill: func(index int, v *view) {
			v.index = index
			v.lines = m.cache.lines(m.items[index].Text)
		},
		Size: func(index int) float64 {
			return float64(len(m.cache.lines(m.items[index].Text)))
		},
		Pull: func(dir recycler.Direction) {
			m.pending = append(m.pending, dir)
		},
		Snap: func(index int, _ *view) {
			m.selectedID = m.items[index].ID
		},
		Release: func(v *view) {
			v.lines = nil
		},
		Activate: func(v *view, active bool) {
			v.active = active
		},
	}, m.options()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	m.engine = engine
	return m, nil
}

// options are the engine options for the current config. The terminal list
// always scrolls vertically.
func (m *Model) options() []recycler.Option {
	e := m.cfg.Engine
	opts := append(m.cfg.ToOptions(), recycler.WithAxis(recycler.Vertical))
	if m.snap {
		return append(opts, recycler.WithSnap(e.SnapAnchor, e.Alignment()))
	}
	return append(opts, recycler.WithoutSnap())
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case frameMsg:
		return m, m.frame()
	case tea.KeyPressMsg:
		if m.search.active {
			return m, m.handleSearchKey(msg)
		}
		return m, m.handleKey(msg)
	case tea.MouseClickMsg:
		if msg.Button != tea.MouseLeft {
			return m, nil
		}
		m.surface.BeginDrag()
		m.dragY = msg.Y
		return m, m.animate()
	case tea.MouseMotionMsg:
		if !m.surface.Dragging() {
			return m, nil
		}
		m.surface.DragBy(float64(m.dragY - msg.Y))
		m.dragY = msg.Y
		m.engine.Tick(0)
		return m, nil
	case tea.MouseReleaseMsg:
		if !m.surface.Dragging() {
			return m, nil
		}
		m.surface.EndDrag()
		m.engine.Drop()
		return m, tea.Batch(m.loadPending(), m.animate())
	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelDown:
			m.surface.Fling(m.surface.Velocity() + wheelVelocity)
		case tea.MouseWheelUp:
			m.surface.Fling(m.surface.Velocity() - wheelVelocity)
		}
		return m, m.animate()
	case AppendMsg:
		m.follow(msg.Lines)
		return m, nil
	case loadedMsg:
		m.loading[msg.dir] = false
		m.status = ""
		m.insert(msg.lines, msg.dir)
		return m, m.animate()
	case ConfigMsg:
		m.reconfigure(msg.Config)
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	page := float64(m.listHeight())
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keyMap.Down):
		return m.step(1)
	case key.Matches(msg, m.keyMap.Up):
		return m.step(-1)
	case key.Matches(msg, m.keyMap.PageDown):
		m.scrollBy(page)
	case key.Matches(msg, m.keyMap.PageUp):
		m.scrollBy(-page)
	case key.Matches(msg, m.keyMap.HalfPageDown):
		m.scrollBy(math.Floor(page / 2))
	case key.Matches(msg, m.keyMap.HalfPageUp):
		m.scrollBy(-math.Floor(page / 2))
	case key.Matches(msg, m.keyMap.Home):
		return m.jumpTo(0)
	case key.Matches(msg, m.keyMap.End):
		return m.jumpTo(len(m.items) - 1)
	case key.Matches(msg, m.keyMap.Snap):
		return m.toggleSnap()
	case key.Matches(msg, m.keyMap.Search):
		m.search = search{active: true}
	case key.Matches(msg, m.keyMap.NextMatch):
		if index, ok := m.search.next(); ok {
			m.status = m.search.describe()
			return m.jumpTo(index)
		}
	case key.Matches(msg, m.keyMap.Yank):
		return m.yank()
	case key.Matches(msg, m.keyMap.LoadMore):
		return m.load(recycler.DirectionBottom)
	}
	return nil
}

// step moves by one line, or by one item while snapping.
func (m *Model) step(delta int) tea.Cmd {
	if !m.snap {
		m.scrollBy(float64(delta))
		return nil
	}
	index := m.anchorItem()
	if current, settling := m.engine.Settling(); settling {
		index = current
	}
	m.engine.SnapTo(max(0, min(index+delta, len(m.items)-1)))
	return m.animate()
}

func (m *Model) scrollBy(delta float64) {
	m.surface.ScrollBy(delta)
	m.engine.Sync()
	m.engine.Tick(0)
}

// jumpTo brings the item at index into view and marks it selected.
func (m *Model) jumpTo(index int) tea.Cmd {
	if index < 0 || index >= len(m.items) {
		return nil
	}
	m.engine.ScrollTo(index)
	// Keyboard jumps land exactly on the item.
	m.surface.SetVelocity(0)
	if m.snap {
		m.engine.SnapTo(index)
	}
	m.selectedID = m.items[index].ID
	return m.animate()
}

func (m *Model) toggleSnap() tea.Cmd {
	e := m.cfg.Engine
	m.snap = !m.snap
	m.engine.SetSnap(m.snap, e.SnapAnchor, e.Alignment(), e.SnapElasticity)
	if !m.snap {
		m.status = "snapping off"
		return nil
	}
	m.status = "snapping on"
	m.engine.SnapTo(m.anchorItem())
	return m.animate()
}

// anchorItem is the item under the snap anchor, or -1 without items.
func (m *Model) anchorItem() int {
	table := m.engine.Table()
	if !m.engine.Initialized() || table == nil || m.engine.Count() == 0 {
		return -1
	}
	offset := max(0, min(m.surface.Offset(), m.surface.MaxOffset()))
	return table.IndexAt(offset + m.cfg.Engine.SnapAnchor*m.surface.Extent())
}

func (m *Model) yank() tea.Cmd {
	index := m.anchorItem()
	if index < 0 {
		return nil
	}
	item := m.items[index]
	return func() tea.Msg {
		if err := writeClipboard(item.Text); err != nil {
			slog.Warn("Failed to copy item", "id", item.ID, "error", err)
			return statusMsg("copy failed")
		}
		return statusMsg(fmt.Sprintf("copied item %d", index+1))
	}
}

// frame advances inertia, the elastic return and snapping by one frame.
func (m *Model) frame() tea.Cmd {
	dt := m.frameDuration()
	m.surface.Step(dt)
	m.engine.Tick(dt)
	if m.moving() {
		return m.tick()
	}
	m.ticking = false
	return nil
}

func (m *Model) moving() bool {
	_, settling := m.engine.Settling()
	return m.surface.Dragging() ||
		m.surface.Velocity() != 0 ||
		m.surface.Overscroll() != 0 ||
		settling
}

// animate starts the frame loop unless it is already running.
func (m *Model) animate() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frameDuration(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) frameDuration() time.Duration {
	return time.Second / time.Duration(max(1, m.cfg.TUI.FrameRate))
}

// loadPending starts a load for every edge released since the last call.
func (m *Model) loadPending() tea.Cmd {
	var cmds []tea.Cmd
	for _, dir := range m.pending {
		cmds = append(cmds, m.load(dir))
	}
	m.pending = nil
	return tea.Batch(cmds...)
}

func (m *Model) load(dir recycler.Direction) tea.Cmd {
	if m.source == nil || m.cfg.TUI.LoadBatch == 0 {
		m.status = "nothing more to load"
		return nil
	}
	if m.loading[dir] {
		return nil
	}
	m.loading[dir] = true
	m.status = "loading…"
	source, n := m.source, m.cfg.TUI.LoadBatch
	slog.Debug("Loading items", "direction", dir, "count", n)
	return func() tea.Msg {
		return loadedMsg{dir: dir, lines: source(dir, n)}
	}
}

// insert adds lines at the edge dir. Items already on screen keep their
// place.
func (m *Model) insert(lines []string, dir recycler.Direction) {
	if len(lines) == 0 {
		return
	}
	added := newItems(lines)
	if dir.IsNear() {
		m.items = append(added, m.items...)
	} else {
		m.items = append(m.items, added...)
	}
	if m.search.query != "" {
		// Indices moved.
		m.search.run(m.items)
	}
	if !m.engine.Initialized() {
		if m.height > 0 {
			m.engine.InitData(len(m.items), false)
		}
		return
	}
	m.engine.ApplyData(len(m.items), len(added), dir)
}

// follow appends lines and keeps the end in view if it was in view.
func (m *Model) follow(lines []string) {
	atEnd := m.engine.Initialized() && m.surface.Offset() >= m.surface.MaxOffset()
	m.insert(lines, recycler.DirectionBottom)
	if !atEnd {
		return
	}
	m.surface.SetOffset(m.surface.MaxOffset())
	m.surface.SetVelocity(0)
	m.engine.Sync()
}

func (m *Model) listHeight() int {
	return max(0, m.height-1)
}

func (m *Model) resize(width, height int) {
	anchor := m.anchorItem()
	m.width, m.height = width, height
	m.surface.Resize(float64(m.listHeight()))
	m.cache.reset(width, m.cfg.TUI.Wrap)
	m.rebuild(anchor)
}

func (m *Model) reconfigure(cfg *config.Config) {
	anchor := m.anchorItem()
	m.cfg = cfg
	m.snap = cfg.Engine.Snap
	m.surface.SetDeceleration(cfg.TUI.Deceleration)
	m.surface.SetReturnTime(cfg.TUI.ReturnTime)
	m.cache.reset(m.width, cfg.TUI.Wrap)
	m.engine.Configure(m.options()...)
	m.rebuild(anchor)
}

// rebuild recreates the slot pool for the current layout and brings the
// item at anchor back into view.
func (m *Model) rebuild(anchor int) {
	count := len(m.items)
	if count == 0 || m.height == 0 {
		return
	}
	m.engine.RefreshViews(count)
	m.engine.InitData(count, false)
	if anchor > 0 {
		m.engine.ScrollTo(min(anchor, count-1))
		m.surface.SetVelocity(0)
	}
}

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m *Model) render() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	listHeight := m.listHeight()
	if listHeight == 0 {
		return m.statusLine()
	}
	scr := uv.NewScreenBuffer(m.width, listHeight)
	if len(m.items) == 0 {
		m.drawLine(scr, 0, m.styles.Muted.Render("No items"))
		return scr.Render() + "\n" + m.statusLine()
	}

	offset := m.surface.Offset()
	for _, s := range m.engine.Slots() {
		if !s.Active || s.Index < 0 || s.Index >= len(m.items) {
			continue
		}
		style := m.itemStyle(s.Index)
		top := int(math.Round(s.Start - offset))
		for k, line := range s.View.lines {
			row := top + k
			if row < 0 || row >= listHeight {
				continue
			}
			m.drawLine(scr, row, style.Render(line))
		}
	}

	near, far := m.engine.Labels()
	nearProgress, farProgress := m.engine.PullProgress()
	if near.Visible {
		m.drawLabel(scr, int(-offset)/2, near.Text, nearProgress)
	}
	if far.Visible {
		end := int(math.Round(m.surface.ContentExtent() - offset))
		m.drawLabel(scr, (end+listHeight)/2, far.Text, farProgress)
	}
	return scr.Render() + "\n" + m.statusLine()
}

func (m *Model) itemStyle(index int) lipgloss.Style {
	switch {
	case m.items[index].ID == m.selectedID:
		return m.styles.Selected
	case m.search.matched(index):
		return m.styles.Match
	}
	return m.styles.Item
}

func (m *Model) drawLine(scr uv.ScreenBuffer, row int, s string) {
	uv.NewStyledString(s).Draw(scr, uv.Rect(0, row, m.width, 1))
}

func (m *Model) drawLabel(scr uv.ScreenBuffer, row int, text string, progress float64) {
	row = max(0, min(row, m.listHeight()-1))
	label := lipgloss.NewStyle().
		Width(m.width).
		Align(lipgloss.Center).
		Foreground(pullColor(progress)).
		Render(ansi.Truncate(text, m.width, "…"))
	m.drawLine(scr, row, label)
}

func (m *Model) statusLine() string {
	if m.search.active {
		return m.styles.Prompt.Width(m.width).Render(ansi.Truncate("/"+m.search.query, m.width, "…"))
	}
	left := fmt.Sprintf(" %d/%d", m.anchorItem()+1, len(m.items))
	if m.snap {
		left += " · snap"
	}
	if m.status != "" {
		left += " · " + m.status
	}
	pos := max(0, min(1, m.engine.NormalizedPosition()))
	right := fmt.Sprintf("%3.0f%% ", pos*100)
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	line := ansi.Truncate(left+strings.Repeat(" ", gap)+right, m.width, "")
	return m.styles.Status.Render(line)
}
