// Package loader loads Lua game content into Go structs at startup.
// The Lua VM is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/calder/storyforge/engine/state"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game    *lua.LTable
	rooms   []rawDef
	battles []rawDef
	items   []rawItem
	images  map[string]string
	sounds  map[string]string
}

// rawDef holds a room or battle table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// rawItem holds an item table before compilation.
type rawItem struct {
	id     string
	weapon bool
	table  *lua.LTable
}

// Load reads all .lua files from dir, compiles them into game definitions,
// validates the content graph, and returns the immutable Defs. The Lua VM
// is discarded after loading.
func Load(dir string) (*state.Defs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// game.lua first so the header exists before rooms reference its tuning,
	// rest alphabetical for stable duplicate-id reporting.
	sort.Slice(luaFiles, func(i, j int) bool {
		if luaFiles[i] == "game.lua" {
			return true
		}
		if luaFiles[j] == "game.lua" {
			return false
		}
		return luaFiles[i] < luaFiles[j]
	})

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{
		images: map[string]string{},
		sounds: map[string]string{},
	}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game data: %w", err)
	}

	if err := Validate(defs); err != nil {
		return nil, err
	}

	return defs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that would let content reach outside the VM.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Remove math.randomseed to preserve determinism.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
