// Package tui is the Bubble Tea front-end. It is a pure consumer of the
// engine's Result snapshots and producer of option-index selections.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder/storyforge/engine"
	"github.com/calder/storyforge/engine/save"
	"github.com/calder/storyforge/engine/state"
	"github.com/calder/storyforge/types"
)

// Model is the Bubble Tea model for the StoryForge TUI.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs

	result types.Result
	cursor int

	viewport viewport.Model
	notice   string // transient system message shown above the options

	width    int
	height   int
	ready    bool
	quitting bool
	savePath string
}

// New creates a TUI model showing the given opening screen.
func New(eng *engine.Engine, defs *state.Defs, first types.Result, savePath string) Model {
	return Model{
		engine:   eng,
		defs:     defs,
		result:   first,
		cursor:   firstEnabled(first.Options),
		savePath: savePath,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs, first types.Result, savePath string) error {
	m := New(eng, defs, first, savePath)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Room for the option list, status bar, and help line.
		vpHeight := m.height - len(m.result.Options) - 4
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.cursor = step(m.result.Options, m.cursor, -1)

		case "down", "j":
			m.cursor = step(m.result.Options, m.cursor, +1)

		case "enter", " ":
			return m.choose(m.cursor), nil

		case "1", "2", "3", "4":
			idx := int(msg.String()[0] - '1')
			return m.choose(idx), nil

		case "ctrl+s":
			if err := save.Write(m.engine.Snapshot(), m.savePath); err != nil {
				m.notice = fmt.Sprintf("Save failed: %v", err)
			} else {
				m.notice = "Game saved."
			}

		case "ctrl+l":
			if data, ok := save.Read(m.savePath); ok {
				m.applyResult(m.engine.Resume(data))
				m.notice = "Game loaded."
			} else {
				m.notice = "No save found."
			}

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
	}
	return m, nil
}

// choose submits an option index to the engine and swaps in the new screen.
func (m Model) choose(idx int) Model {
	opts := m.result.Options
	if idx < 0 || idx >= len(opts) || !opts[idx].Enabled {
		return m
	}
	m.applyResult(m.engine.Choose(idx))
	return m
}

func (m *Model) applyResult(r types.Result) {
	m.result = r
	m.cursor = firstEnabled(r.Options)
	m.notice = ""
	m.refreshViewport()
}

// refreshViewport re-renders the narrative pane at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := m.width
	if width < 10 {
		width = 10
	}

	var lines []string
	if m.result.Title != "" {
		lines = append(lines, styleTitle.Render(m.result.Title), "")
	}
	if m.result.Body != "" {
		lines = append(lines, styleBody.Render(wordWrap(m.result.Body, width)))
	}
	if len(m.result.Lines) > 0 {
		lines = append(lines, "")
		for _, line := range m.result.Lines {
			lines = append(lines, renderLine(wordWrap(line, width)))
		}
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// View renders the full layout: narrative + options + status bar + help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(styleSystem.Render("[" + m.notice + "]"))
		b.WriteString("\n")
	}

	for i, opt := range m.result.Options {
		prefix := "  "
		if i == m.cursor {
			prefix = styleCursor.Render("> ")
		}
		label := fmt.Sprintf("%d. %s", i+1, opt.Label)
		if opt.Enabled {
			b.WriteString(prefix + styleOption.Render(label))
		} else {
			b.WriteString("  " + styleDisabled.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(styleSystem.Render(" ↑/↓ select · enter choose · ctrl+s save · ctrl+l load · q quit"))
	return b.String()
}

// firstEnabled returns the index of the first selectable option, or 0.
func firstEnabled(opts []types.OptionView) int {
	for i, opt := range opts {
		if opt.Enabled {
			return i
		}
	}
	return 0
}

// step moves the cursor in the given direction, skipping disabled entries.
func step(opts []types.OptionView, cursor, dir int) int {
	if len(opts) == 0 {
		return 0
	}
	i := cursor
	for n := 0; n < len(opts); n++ {
		i += dir
		if i < 0 || i >= len(opts) {
			return cursor
		}
		if opts[i].Enabled {
			return i
		}
	}
	return cursor
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (those move the option cursor).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
