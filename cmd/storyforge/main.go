// StoryForge is a deterministic, content-driven interpreter for branching
// text adventures.
// Usage: storyforge [--validate] [--plain] [--seed <n>] [--config <file>] <content_directory>
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/calder/storyforge/cli"
	"github.com/calder/storyforge/config"
	"github.com/calder/storyforge/engine"
	"github.com/calder/storyforge/engine/save"
	"github.com/calder/storyforge/loader"
	"github.com/calder/storyforge/tui"
	"github.com/calder/storyforge/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	validate := false
	plain := false
	var contentDir string
	var configFile string
	var seed int64
	seedSet := false

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("storyforge %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--validate":
			validate = true
		case "--plain":
			plain = true
		case "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--seed requires a number\n")
				os.Exit(1)
			}
			i++
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				os.Exit(1)
			}
			seed = n
			seedSet = true
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--config requires a file path\n")
				os.Exit(1)
			}
			i++
			configFile = args[i]
		default:
			if contentDir == "" {
				contentDir = args[i]
			}
		}
	}

	if contentDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: storyforge [--validate] [--plain] [--seed <n>] [--config <file>] <content_directory>\n")
		os.Exit(1)
	}

	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Load and compile Lua game content. Load runs the graph validator.
	defs, err := loader.Load(contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		if validate {
			fmt.Println("FAIL")
		}
		os.Exit(1)
	}

	if validate {
		fmt.Printf("%s: %d rooms, %d battles, %d items\n",
			defs.Game.Title, len(defs.Rooms), len(defs.Battles), len(defs.Items))
		fmt.Println("PASS")
		return
	}

	if !seedSet {
		seed = cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
	}

	eng := engine.New(defs, seed)
	var first types.Result
	if data, ok := save.Read(cfg.SavePath); cfg.Autoload && ok {
		first = eng.Resume(data)
	} else {
		first = eng.Start()
	}

	// Use the plain CLI if --plain or stdout is not a terminal.
	if plain || !isTerminal() {
		fmt.Printf("%s\n\n", defs.Game.Title)
		c := cli.New(eng, defs, cfg.SavePath)
		c.Run(first)
		return
	}

	if err := tui.Run(eng, defs, first, cfg.SavePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
