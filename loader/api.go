package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// reqKey marks a table as a requirement node built by the helpers below.
// compileRequirement accepts only marked tables, keeping the vocabulary closed.
const reqKey = "__req"

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerRequirementHelpers(L)
	registerPassThroughs(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Room "id" { ... } — curried: Room("id") returns a function that takes a table.
	L.SetGlobal("Room", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.rooms = append(coll.rooms, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Battle "id" { ... } — curried.
	L.SetGlobal("Battle", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.battles = append(coll.battles, rawDef{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Item "id" { ... } — curried.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.items = append(coll.items, rawItem{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Weapon "id" { ... } — curried; forces category = weapon.
	L.SetGlobal("Weapon", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.items = append(coll.items, rawItem{id: id, weapon: true, table: tbl})
			return 0
		}))
		return 1
	}))

	// Images { key = "file.png", ... } — merged across files.
	L.SetGlobal("Images", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				if vs, ok := v.(lua.LString); ok {
					coll.images[string(ks)] = string(vs)
				}
			}
		})
		return 0
	}))

	// Sounds { key = "file.ogg", ... } — merged across files.
	L.SetGlobal("Sounds", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				if vs, ok := v.(lua.LString); ok {
					coll.sounds[string(ks)] = string(vs)
				}
			}
		})
		return 0
	}))
}

func registerRequirementHelpers(L *lua.LState) {
	// Flag("f") — flag must be set (nonzero).
	L.SetGlobal("Flag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString(reqKey, lua.LString("flag"))
		tbl.RawSetString("flag", lua.LString(flag))
		L.Push(tbl)
		return 1
	}))

	// NotFlag("f") — flag must be unset or zero.
	L.SetGlobal("NotFlag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString(reqKey, lua.LString("not_flag"))
		tbl.RawSetString("flag", lua.LString(flag))
		L.Push(tbl)
		return 1
	}))

	// MinFlags { kills = 3, keys = 1 } — every flag at or above its threshold.
	L.SetGlobal("MinFlags", L.NewFunction(func(L *lua.LState) int {
		min := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString(reqKey, lua.LString("min_flags"))
		tbl.RawSetString("min", min)
		L.Push(tbl)
		return 1
	}))

	// AlertBelow(3) — alert level strictly below the threshold.
	L.SetGlobal("AlertBelow", L.NewFunction(func(L *lua.LState) int {
		below := L.CheckNumber(1)
		tbl := L.NewTable()
		tbl.RawSetString(reqKey, lua.LString("alert_below"))
		tbl.RawSetString("below", below)
		L.Push(tbl)
		return 1
	}))

	// All { req1, req2, ... } — conjunction; empty list is true.
	L.SetGlobal("All", L.NewFunction(func(L *lua.LState) int {
		sub := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString(reqKey, lua.LString("all"))
		tbl.RawSetString("sub", sub)
		L.Push(tbl)
		return 1
	}))

	// Any { req1, req2, ... } — disjunction; empty list is false.
	L.SetGlobal("Any", L.NewFunction(func(L *lua.LState) int {
		sub := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString(reqKey, lua.LString("any"))
		tbl.RawSetString("sub", sub)
		L.Push(tbl)
		return 1
	}))
}

// Pass-through markers. They return their argument unchanged; content reads
// better with Option { ... } than a bare table.
func registerPassThroughs(L *lua.LState) {
	for _, name := range []string{"Option", "Action", "Loot", "Effects", "Stats"} {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			L.Push(tbl)
			return 1
		}))
	}
}
