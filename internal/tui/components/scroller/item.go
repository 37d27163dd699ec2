package scroller

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
	"github.com/rivo/uniseg"
	"github.com/zeebo/xxh3"
)

const tabWidth = 4

// Item is one line of input shown in the list.
type Item struct {
	ID   string
	Text string
}

func newItems(lines []string) []Item {
	items := make([]Item, len(lines))
	for i, line := range lines {
		items[i] = Item{ID: uuid.NewString(), Text: sanitize(line)}
	}
	return items
}

// sanitize drops escape sequences and expands tabs so cell widths are
// predictable.
func sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.TrimRight(s, "\r")
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// wrap breaks s into lines of at most width cells, splitting between
// grapheme clusters.
func wrap(s string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	var (
		lines []string
		line  strings.Builder
		w     int
	)
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		cw := gr.Width()
		if w+cw > width && w > 0 {
			lines = append(lines, line.String())
			line.Reset()
			w = 0
		}
		line.WriteString(gr.Str())
		w += cw
	}
	return append(lines, line.String())
}

// layout returns the lines an item occupies at width.
func layout(text string, width int, wrapped bool) []string {
	if !wrapped {
		return []string{ansi.Truncate(text, width, "…")}
	}
	return wrap(text, width)
}

// renderCache keeps laid out items keyed by content and layout so identical
// lines share one entry.
type renderCache struct {
	width   int
	wrapped bool
	entries map[uint64][]string
}

func newRenderCache() *renderCache {
	return &renderCache{entries: make(map[uint64][]string)}
}

// reset drops every entry when the layout changes.
func (c *renderCache) reset(width int, wrapped bool) {
	if c.width == width && c.wrapped == wrapped {
		return
	}
	c.width = width
	c.wrapped = wrapped
	clear(c.entries)
}

func (c *renderCache) lines(text string) []string {
	key := xxh3.HashString(strconv.FormatBool(c.wrapped) + strconv.Itoa(c.width) + "\x00" + text)
	if lines, ok := c.entries[key]; ok {
		return lines
	}
	lines := layout(text, c.width, c.wrapped)
	c.entries[key] = lines
	return lines
}
