package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// player's vitals on the left and level progress on the right.
func (m Model) renderStatusBar() string {
	r := m.result
	st := r.Stats

	left := fmt.Sprintf(" HP %d/%d | Mana %d/%d | Stamina %d",
		st.HP, st.MaxHP, st.Mana, st.MaxMana, st.Stamina)
	right := fmt.Sprintf("Lv %d  %d/%d XP ", r.Level, r.XPProgress, r.XPTarget)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
