package cmd

import (
	"fmt"

	"github.com/tujuhre12/recycler/internal/recycler"
)

var phrases = []string{
	"",
	"short",
	"a few more words than its neighbours",
	"long enough to wrap onto a second line once the terminal gets narrower than about sixty columns",
	"",
	"ends the cycle",
}

func itemText(i int) string {
	p := phrases[((i%len(phrases))+len(phrases))%len(phrases)]
	if p == "" {
		return fmt.Sprintf("Item %d", i)
	}
	return fmt.Sprintf("Item %d: %s", i, p)
}

// generator numbers items outward from zero as pulls load more at either
// end.
type generator struct {
	first int // lowest number handed out
	next  int // number of the next item appended
}

func (g *generator) initial(count int) []string {
	lines := make([]string, count)
	for i := range lines {
		lines[i] = itemText(i)
	}
	g.first, g.next = 0, count
	return lines
}

// Load returns n new items for the edge dir in display order.
func (g *generator) Load(dir recycler.Direction, n int) []string {
	lines := make([]string, n)
	if dir.IsNear() {
		g.first -= n
		for i := range lines {
			lines[i] = itemText(g.first + i)
		}
		return lines
	}
	for i := range lines {
		lines[i] = itemText(g.next + i)
	}
	g.next += n
	return lines
}
