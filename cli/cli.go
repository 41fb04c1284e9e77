// Package cli provides a plain terminal front-end: numbered options in,
// option index out, plus meta-command dispatch.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/calder/storyforge/engine"
	"github.com/calder/storyforge/engine/save"
	"github.com/calder/storyforge/engine/state"
	"github.com/calder/storyforge/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine   *engine.Engine
	Defs     *state.Defs
	In       io.Reader
	Out      io.Writer
	SavePath string
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs, savePath string) *CLI {
	return &CLI{
		Engine:   eng,
		Defs:     defs,
		In:       os.Stdin,
		Out:      os.Stdout,
		SavePath: savePath,
	}
}

// Run starts the game loop with the given opening screen, then loops:
// prompt → input → dispatch → output.
func (c *CLI) Run(result types.Result) {
	if c.Defs.Game.Byline != "" {
		c.printLine(c.Defs.Game.Byline)
		c.printLine("")
	}
	c.printResult(result)

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script playback).
		if strings.HasPrefix(input, "#") {
			continue
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		n, err := strconv.Atoi(input)
		if err != nil {
			c.printSystem("Enter an option number, or /help for commands.")
			continue
		}
		c.printResult(c.Engine.Choose(n - 1))
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave()

	case "/load":
		c.cmdLoad()

	case "/use":
		if arg == "" {
			c.printSystem("Usage: /use <item id>")
			break
		}
		c.printResult(c.Engine.UseItem(arg))

	case "/items":
		c.cmdItems()

	case "/stats":
		c.cmdStats()

	case "/help":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave() {
	if err := save.Write(c.Engine.Snapshot(), c.SavePath); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", c.SavePath))
}

func (c *CLI) cmdLoad() {
	data, ok := save.Read(c.SavePath)
	if !ok {
		c.printSystem("No save found.")
		return
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s.", c.SavePath))
	c.printResult(c.Engine.Resume(data))
}

func (c *CLI) cmdItems() {
	s := c.Engine.State
	if len(s.Inventory) == 0 {
		c.printSystem("Inventory is empty.")
		return
	}
	for id, count := range s.Inventory {
		def := c.Defs.Item(id)
		if count > 1 {
			c.printLine(fmt.Sprintf("  %s ×%d (%s)", def.Name, count, id))
		} else {
			c.printLine(fmt.Sprintf("  %s (%s)", def.Name, id))
		}
	}
}

func (c *CLI) cmdStats() {
	r := c.Engine.View()
	st := r.Stats
	c.printSystem(fmt.Sprintf("HP %d/%d  Mana %d/%d  Stamina %d", st.HP, st.MaxHP, st.Mana, st.MaxMana, st.Stamina))
	c.printSystem(fmt.Sprintf("Attack %d  Defence %d  Level %d (%d/%d XP)", st.Attack, st.Defence, r.Level, r.XPProgress, r.XPTarget))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save          — Save game",
		"  /load          — Load game",
		"  /use <item>    — Use or equip an inventory item",
		"  /items         — List inventory",
		"  /stats         — Show player stats",
		"  /quit          — Exit game",
		"  /help          — Show this help",
		"",
		"Game:",
		"  Type the number of an option to choose it.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printResult(result types.Result) {
	if result.Title != "" {
		c.printLine(result.Title)
		c.printLine(strings.Repeat("=", len(result.Title)))
	}
	if result.Body != "" {
		c.printLine(result.Body)
	}
	for _, line := range result.Lines {
		c.printLine(line)
	}
	c.printLine("")
	for i, opt := range result.Options {
		if opt.Enabled {
			c.printLine(fmt.Sprintf("  %d. %s", i+1, opt.Label))
		} else {
			c.printLine(fmt.Sprintf("  -  %s", opt.Label))
		}
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
