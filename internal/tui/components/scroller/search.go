package scroller

import (
	"fmt"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/sahilm/fuzzy"
)

type search struct {
	active  bool
	query   string
	matches fuzzy.Matches
	hits    map[int]struct{}
	cursor  int
}

// itemSource exposes item texts to the fuzzy matcher without copying them.
type itemSource []Item

func (s itemSource) String(i int) string { return s[i].Text }
func (s itemSource) Len() int            { return len(s) }

func (m *Model) handleSearchKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.searchKeys.Cancel):
		m.search.active = false
	case key.Matches(msg, m.searchKeys.Delete):
		if q := []rune(m.search.query); len(q) > 0 {
			m.search.query = string(q[:len(q)-1])
		}
	case key.Matches(msg, m.searchKeys.Accept):
		m.search.active = false
		m.search.run(m.items)
		if len(m.search.matches) == 0 {
			m.status = fmt.Sprintf("no match for %q", m.search.query)
			return nil
		}
		m.status = m.search.describe()
		return m.jumpTo(m.search.matches[0].Index)
	default:
		m.search.query += msg.Text
	}
	return nil
}

// run ranks items against the query, best match first.
func (s *search) run(items []Item) {
	s.cursor = 0
	s.matches = nil
	s.hits = nil
	if s.query == "" {
		return
	}
	s.matches = fuzzy.FindFrom(s.query, itemSource(items))
	s.hits = make(map[int]struct{}, len(s.matches))
	for _, match := range s.matches {
		s.hits[match.Index] = struct{}{}
	}
}

// next advances to the following match, wrapping around.
func (s *search) next() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	s.cursor = (s.cursor + 1) % len(s.matches)
	return s.matches[s.cursor].Index, true
}

func (s *search) matched(index int) bool {
	_, ok := s.hits[index]
	return ok
}

func (s *search) describe() string {
	return fmt.Sprintf("match %d/%d", s.cursor+1, len(s.matches))
}
