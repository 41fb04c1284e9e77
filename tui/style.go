package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("228"))

	styleBody = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	styleLoot = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleCursor = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	styleOption = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleDisabled = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)
)

// lineKind identifies the type of a narration line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindLoot
	kindDamage
	kindSystem
)

// classifyLine determines what kind of narration line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You obtain:"),
		strings.HasPrefix(line, "Loot acquired:"):
		return kindLoot
	case strings.Contains(line, "damage"),
		strings.Contains(line, "HP"):
		return kindDamage
	default:
		return kindNarration
	}
}

// renderLine applies the style for a narration line.
func renderLine(line string) string {
	switch classifyLine(line) {
	case kindLoot:
		return styleLoot.Render(line)
	case kindDamage:
		return styleDamage.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	default:
		return styleNarration.Render(line)
	}
}
