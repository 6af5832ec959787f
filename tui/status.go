package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// sideStatus is the short form of one side for the status bar:
// "p1 zapdos 100%" or "p1 —" before the lead is revealed.
func sideStatus(b *state.Battle, id types.SideID) string {
	side, err := b.Side(id)
	if err != nil {
		return string(id)
	}
	mon := side.Active()
	if mon == nil {
		return fmt.Sprintf("%s —", id)
	}
	label := "?"
	if sp, ok := mon.Species.Definite(); ok {
		label = string(sp)
	}
	if mon.Fainted {
		return fmt.Sprintf("%s %s fnt", id, label)
	}
	return fmt.Sprintf("%s %s %d%%", id, label, mon.HPPercent)
}

// weatherStatus renders the weather cell, or "" for clear skies.
func weatherStatus(b *state.Battle) string {
	w := &b.Weather
	if w.Kind == types.WeatherNone {
		return ""
	}
	if w.Infinite() {
		return fmt.Sprintf("%s ∞", w.Kind)
	}
	return fmt.Sprintf("%s %dt", w.Kind, w.Turns())
}

// renderStatusBar produces a full-width inverted status line showing both
// actives, the weather, the turn, and the log position.
func (m Model) renderStatusBar() string {
	b := m.engine.Battle

	cells := []string{
		sideStatus(b, "p1"),
		sideStatus(b, "p2"),
	}
	if w := weatherStatus(b); w != "" {
		cells = append(cells, w)
	}
	left := " " + strings.Join(cells, " | ")

	right := fmt.Sprintf("T:%d ", b.Turn)
	if len(m.log) > 0 {
		right = fmt.Sprintf("line %d/%d | T:%d ", m.pos, len(m.log), b.Turn)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
