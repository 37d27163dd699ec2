package scroller

import (
	"image/color"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
	"github.com/lucasb-eyer/go-colorful"
)

type styles struct {
	Item     lipgloss.Style
	Selected lipgloss.Style
	Match    lipgloss.Style
	Status   lipgloss.Style
	Muted    lipgloss.Style
	Prompt   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Item:     lipgloss.NewStyle().Foreground(charmtone.Smoke),
		Selected: lipgloss.NewStyle().Foreground(charmtone.Charple).Bold(true),
		Match:    lipgloss.NewStyle().Foreground(charmtone.Zest),
		Status:   lipgloss.NewStyle().Foreground(charmtone.Salt).Background(charmtone.Charcoal),
		Muted:    lipgloss.NewStyle().Foreground(charmtone.Squid).Background(charmtone.Charcoal),
		Prompt:   lipgloss.NewStyle().Foreground(charmtone.Charple).Background(charmtone.Charcoal),
	}
}

var (
	pullFrom = mustColor(charmtone.Squid)
	pullTo   = mustColor(charmtone.Guac)
)

func mustColor(c color.Color) colorful.Color {
	cc, _ := colorful.MakeColor(c)
	return cc
}

// pullColor fades the pull label toward the armed color as progress
// approaches the release threshold.
func pullColor(progress float64) color.Color {
	return pullFrom.BlendLab(pullTo, min(1, max(0, progress))).Clamped()
}
