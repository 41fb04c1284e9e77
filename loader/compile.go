package loader

import (
	"fmt"
	"sort"

	"github.com/calder/storyforge/engine/state"
	"github.com/calder/storyforge/types"
	lua "github.com/yuin/gopher-lua"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// has reports whether the key is present at all, so optional fields can
// distinguish "absent" from an explicit zero.
func has(tbl *lua.LTable, key string) bool {
	return tbl.RawGetString(key) != lua.LNil
}

// checkKeys rejects string keys outside the allowed set. Typos in content
// become load errors instead of silently ignored fields.
func checkKeys(tbl *lua.LTable, what string, allowed ...string) error {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	var bad []string
	tbl.ForEach(func(k, _ lua.LValue) {
		if ks, isStr := k.(lua.LString); isStr && !ok[string(ks)] {
			bad = append(bad, string(ks))
		}
	})
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("%s: unknown key %q", what, bad[0])
	}
	return nil
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// tableToIntMap converts a Lua table to a map[string]int.
func tableToIntMap(tbl *lua.LTable) map[string]int {
	if tbl == nil {
		return nil
	}
	m := map[string]int{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vn, ok := v.(lua.LNumber); ok {
				m[string(ks)] = int(vn)
			}
		}
	})
	return m
}

// toStringList accepts either a single string or an array of strings.
func toStringList(v lua.LValue) []string {
	switch val := v.(type) {
	case lua.LString:
		return []string{string(val)}
	case *lua.LTable:
		var out []string
		for i := 1; i <= val.MaxN(); i++ {
			if s, ok := val.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	default:
		return nil
	}
}

// toIntList converts a Lua array to []int.
func toIntList(tbl *lua.LTable) []int {
	if tbl == nil {
		return nil
	}
	var out []int
	for i := 1; i <= tbl.MaxN(); i++ {
		if n, ok := tbl.RawGetInt(i).(lua.LNumber); ok {
			out = append(out, int(n))
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	game, err := compileGame(coll.game)
	if err != nil {
		return nil, err
	}

	defs := &state.Defs{
		Game:    game,
		Items:   map[string]types.ItemDef{},
		Rooms:   map[string]types.RoomSpec{},
		Battles: map[string]types.BattleSpec{},
		Images:  coll.images,
		Sounds:  coll.sounds,
	}

	for _, raw := range coll.items {
		if _, exists := defs.Items[raw.id]; exists {
			return nil, fmt.Errorf("duplicate item id %q", raw.id)
		}
		item, err := compileItem(raw)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", raw.id, err)
		}
		defs.Items[raw.id] = item
	}

	for _, raw := range coll.rooms {
		if _, exists := defs.Rooms[raw.id]; exists {
			return nil, fmt.Errorf("duplicate room id %q", raw.id)
		}
		room, err := compileRoom(raw)
		if err != nil {
			return nil, fmt.Errorf("room %s: %w", raw.id, err)
		}
		defs.Rooms[raw.id] = room
	}

	for _, raw := range coll.battles {
		if _, exists := defs.Battles[raw.id]; exists {
			return nil, fmt.Errorf("duplicate battle id %q", raw.id)
		}
		battle, err := compileBattle(raw)
		if err != nil {
			return nil, fmt.Errorf("battle %s: %w", raw.id, err)
		}
		defs.Battles[raw.id] = battle
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) (types.GameDef, error) {
	if err := checkKeys(tbl, "Game",
		"title", "byline", "start", "defeat_room", "starting_stats",
		"damage_variance", "crit_chance", "crit_multiplier",
		"xp_per_victory", "mana_per_room", "xp_requirements",
		"xp_growth_factor"); err != nil {
		return types.GameDef{}, err
	}

	game := types.GameDef{
		Title:          getString(tbl, "title"),
		Byline:         getString(tbl, "byline"),
		Start:          getString(tbl, "start"),
		DefeatRoom:     getString(tbl, "defeat_room"),
		StartingStats:  compileStats(getTable(tbl, "starting_stats")),
		DamageVariance: 2,
		CritMultiplier: 1.5,
		XPPerVictory:   5,
		ManaPerRoom:    0.25,
		XPRequirements: toIntList(getTable(tbl, "xp_requirements")),
		XPGrowthFactor: getNumber(tbl, "xp_growth_factor"),
	}
	if has(tbl, "damage_variance") {
		game.DamageVariance = getInt(tbl, "damage_variance")
	}
	if has(tbl, "crit_chance") {
		game.CritChance = getNumber(tbl, "crit_chance")
	}
	if has(tbl, "crit_multiplier") {
		game.CritMultiplier = getNumber(tbl, "crit_multiplier")
	}
	if has(tbl, "xp_per_victory") {
		game.XPPerVictory = getInt(tbl, "xp_per_victory")
	}
	if has(tbl, "mana_per_room") {
		game.ManaPerRoom = getNumber(tbl, "mana_per_room")
	}
	return game, nil
}

// compileStats fills the starting block, overriding defaults with any
// fields the content declares.
func compileStats(tbl *lua.LTable) types.Stats {
	stats := types.Stats{
		HP: 10, MaxHP: 10,
		Mana: 5, MaxMana: 5,
		Stamina: 5,
		Attack:  1,
	}
	if tbl == nil {
		return stats
	}
	fields := map[string]*int{
		"hp": &stats.HP, "max_hp": &stats.MaxHP,
		"mana": &stats.Mana, "max_mana": &stats.MaxMana,
		"stamina": &stats.Stamina,
		"attack":  &stats.Attack, "defence": &stats.Defence,
		"xp": &stats.XP,
	}
	for key, dst := range fields {
		if has(tbl, key) {
			*dst = getInt(tbl, key)
		}
	}
	return stats
}

func compileItem(raw rawItem) (types.ItemDef, error) {
	tbl := raw.table
	if err := checkKeys(tbl, "item",
		"name", "description", "category", "effects", "stackable",
		"weapon_type", "ammo_item", "ammo_per_use"); err != nil {
		return types.ItemDef{}, err
	}

	item := types.ItemDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Category:    getString(tbl, "category"),
		Effects:     tableToIntMap(getTable(tbl, "effects")),
		Stackable:   getBool(tbl, "stackable", !raw.weapon),
		WeaponType:  getString(tbl, "weapon_type"),
		AmmoItem:    getString(tbl, "ammo_item"),
		AmmoPerUse:  getInt(tbl, "ammo_per_use"),
	}
	if raw.weapon {
		item.Category = types.CategoryWeapon
		if item.WeaponType == "" {
			item.WeaponType = types.SlotMelee
		}
	} else if item.Category == "" {
		item.Category = types.CategoryConsumable
	}
	switch item.Category {
	case types.CategoryConsumable, types.CategoryWeapon, types.CategoryAmmo, types.CategoryQuest:
	default:
		return types.ItemDef{}, fmt.Errorf("unknown category %q", item.Category)
	}
	if item.Category == types.CategoryWeapon {
		switch item.WeaponType {
		case types.SlotMelee, types.SlotRanged:
		default:
			return types.ItemDef{}, fmt.Errorf("unknown weapon_type %q", item.WeaponType)
		}
	}
	return item, nil
}

func compileRoom(raw rawDef) (types.RoomSpec, error) {
	tbl := raw.table
	if err := checkKeys(tbl, "room",
		"title", "body", "background", "music", "enter_sound",
		"options"); err != nil {
		return types.RoomSpec{}, err
	}

	room := types.RoomSpec{
		ID:            raw.id,
		Title:         getString(tbl, "title"),
		Body:          getString(tbl, "body"),
		BackgroundKey: getString(tbl, "background"),
		MusicKey:      getString(tbl, "music"),
		EnterSoundKey: getString(tbl, "enter_sound"),
	}

	if opts := getTable(tbl, "options"); opts != nil {
		for i := 1; i <= opts.MaxN(); i++ {
			optTbl, ok := opts.RawGetInt(i).(*lua.LTable)
			if !ok {
				return types.RoomSpec{}, fmt.Errorf("option %d is not a table", i)
			}
			opt, err := compileOption(optTbl)
			if err != nil {
				return types.RoomSpec{}, fmt.Errorf("option %d: %w", i, err)
			}
			room.Options = append(room.Options, opt)
		}
	}
	return room, nil
}

func compileOption(tbl *lua.LTable) (types.OptionSpec, error) {
	if err := checkKeys(tbl, "option",
		"label", "to", "battle", "hint", "require",
		"requires_flag", "requires_not_flag", "gain_items",
		"set_flag", "clear_flag", "effects",
		"loot", "loot_rolls",
		"repeat_limit", "repeat_message", "repeat_key",
		"sound"); err != nil {
		return types.OptionSpec{}, err
	}

	opt := types.OptionSpec{
		Label:           getString(tbl, "label"),
		To:              getString(tbl, "to"),
		BattleID:        getString(tbl, "battle"),
		Hint:            getString(tbl, "hint"),
		RequiresFlag:    getString(tbl, "requires_flag"),
		RequiresNotFlag: getString(tbl, "requires_not_flag"),
		GainItems:       toStringList(tbl.RawGetString("gain_items")),
		SetFlag:         getString(tbl, "set_flag"),
		ClearFlag:       getString(tbl, "clear_flag"),
		LootRolls:       getInt(tbl, "loot_rolls"),
		RepeatLimit:     getInt(tbl, "repeat_limit"),
		RepeatMessage:   getString(tbl, "repeat_message"),
		RepeatKey:       getString(tbl, "repeat_key"),
		SoundKey:        getString(tbl, "sound"),
	}
	if opt.Label == "" {
		return types.OptionSpec{}, fmt.Errorf("label is required")
	}

	if v := tbl.RawGetString("require"); v != lua.LNil {
		req, err := compileRequirement(v)
		if err != nil {
			return types.OptionSpec{}, err
		}
		opt.Require = req
	}
	if v := tbl.RawGetString("effects"); v != lua.LNil {
		effTbl, ok := v.(*lua.LTable)
		if !ok {
			return types.OptionSpec{}, fmt.Errorf("effects is not a table")
		}
		eff, err := compileEffects(effTbl)
		if err != nil {
			return types.OptionSpec{}, err
		}
		opt.Effects = eff
	}
	if v := tbl.RawGetString("loot"); v != lua.LNil {
		loot, err := compileLootTable(v)
		if err != nil {
			return types.OptionSpec{}, err
		}
		opt.LootTable = loot
	}
	return opt, nil
}

// compileRequirement accepts only tables built by the requirement helpers.
// Anything else is a load error, never a silently-true predicate.
func compileRequirement(v lua.LValue) (*types.Requirement, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("requirement is not a helper table")
	}
	kind := getString(tbl, reqKey)
	switch kind {
	case "flag":
		return &types.Requirement{Kind: types.ReqFlag, Flag: getString(tbl, "flag")}, nil
	case "not_flag":
		return &types.Requirement{Kind: types.ReqNotFlag, Flag: getString(tbl, "flag")}, nil
	case "min_flags":
		return &types.Requirement{Kind: types.ReqMinFlags, Min: tableToIntMap(getTable(tbl, "min"))}, nil
	case "alert_below":
		return &types.Requirement{Kind: types.ReqAlertBelow, AlertBelow: getInt(tbl, "below")}, nil
	case "all", "any":
		req := &types.Requirement{Kind: types.ReqAll}
		if kind == "any" {
			req.Kind = types.ReqAny
		}
		sub := getTable(tbl, "sub")
		if sub != nil {
			for i := 1; i <= sub.MaxN(); i++ {
				child, err := compileRequirement(sub.RawGetInt(i))
				if err != nil {
					return nil, err
				}
				req.Sub = append(req.Sub, child)
			}
		}
		return req, nil
	default:
		return nil, fmt.Errorf("requirement must use Flag/NotFlag/MinFlags/AlertBelow/All/Any")
	}
}

func compileEffects(tbl *lua.LTable) (*types.EffectSpec, error) {
	if err := checkKeys(tbl, "effects",
		"equip_item", "timer_rooms", "set", "inc", "energy_cost",
		"alert", "enemy_stunned", "roll_check",
		"hp_delta_on_fail", "alert_on_fail"); err != nil {
		return nil, err
	}

	eff := &types.EffectSpec{
		EquipItems:    toStringList(tbl.RawGetString("equip_item")),
		TimerRooms:    getInt(tbl, "timer_rooms"),
		Set:           tableToIntMap(getTable(tbl, "set")),
		Inc:           tableToIntMap(getTable(tbl, "inc")),
		EnergyCost:    getInt(tbl, "energy_cost"),
		Alert:         getInt(tbl, "alert"),
		HPDeltaOnFail: getInt(tbl, "hp_delta_on_fail"),
	}
	if has(tbl, "enemy_stunned") {
		n := getInt(tbl, "enemy_stunned")
		eff.EnemyStunned = &n
	}
	if has(tbl, "alert_on_fail") {
		n := getInt(tbl, "alert_on_fail")
		eff.AlertOnFail = &n
	}
	if rc := getTable(tbl, "roll_check"); rc != nil {
		if err := checkKeys(rc, "roll_check",
			"pass", "fail_text", "success_text",
			"on_fail_alert", "hp_delta_on_fail"); err != nil {
			return nil, err
		}
		eff.RollCheck = &types.RollCheck{
			Pass:          getNumber(rc, "pass"),
			FailText:      getString(rc, "fail_text"),
			SuccessText:   getString(rc, "success_text"),
			OnFailAlert:   getInt(rc, "on_fail_alert"),
			HPDeltaOnFail: getInt(rc, "hp_delta_on_fail"),
		}
	}
	return eff, nil
}

func compileLootTable(v lua.LValue) ([]types.LootEntry, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("loot is not a table")
	}
	var out []types.LootEntry
	for i := 1; i <= tbl.MaxN(); i++ {
		row, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("loot entry %d is not a table", i)
		}
		if err := checkKeys(row, "loot entry",
			"item", "chance", "unique", "unique_key"); err != nil {
			return nil, err
		}
		entry := types.LootEntry{
			Item:      getString(row, "item"),
			Chance:    getNumber(row, "chance"),
			HasChance: has(row, "chance"),
			Unique:    getBool(row, "unique", false),
			UniqueKey: getString(row, "unique_key"),
		}
		if entry.Item == "" {
			return nil, fmt.Errorf("loot entry %d has no item", i)
		}
		out = append(out, entry)
	}
	return out, nil
}

func compileBattle(raw rawDef) (types.BattleSpec, error) {
	tbl := raw.table
	if err := checkKeys(tbl, "battle",
		"title", "enemy", "actions",
		"victory_to", "defeat_to", "victory_text", "defeat_text",
		"loot", "loot_rolls"); err != nil {
		return types.BattleSpec{}, err
	}

	battle := types.BattleSpec{
		ID:          raw.id,
		Title:       getString(tbl, "title"),
		VictoryTo:   getString(tbl, "victory_to"),
		DefeatTo:    getString(tbl, "defeat_to"),
		VictoryText: getString(tbl, "victory_text"),
		DefeatText:  getString(tbl, "defeat_text"),
		LootRolls:   getInt(tbl, "loot_rolls"),
	}

	enemy := getTable(tbl, "enemy")
	if enemy == nil {
		return types.BattleSpec{}, fmt.Errorf("enemy is required")
	}
	if err := checkKeys(enemy, "enemy",
		"id", "name", "hp", "attack", "defence", "loot"); err != nil {
		return types.BattleSpec{}, err
	}
	battle.Enemy = types.Enemy{
		ID:      getString(enemy, "id"),
		Name:    getString(enemy, "name"),
		HP:      getInt(enemy, "hp"),
		Attack:  getInt(enemy, "attack"),
		Defence: getInt(enemy, "defence"),
		Loot:    toStringList(enemy.RawGetString("loot")),
	}
	if battle.Enemy.HP < 1 {
		return types.BattleSpec{}, fmt.Errorf("enemy hp must be at least 1")
	}

	if v := tbl.RawGetString("loot"); v != lua.LNil {
		loot, err := compileLootTable(v)
		if err != nil {
			return types.BattleSpec{}, err
		}
		battle.LootTable = loot
	}

	if actions := getTable(tbl, "actions"); actions != nil {
		for i := 1; i <= actions.MaxN(); i++ {
			actTbl, ok := actions.RawGetInt(i).(*lua.LTable)
			if !ok {
				return types.BattleSpec{}, fmt.Errorf("action %d is not a table", i)
			}
			act, err := compileAction(actTbl)
			if err != nil {
				return types.BattleSpec{}, fmt.Errorf("action %d: %w", i, err)
			}
			battle.Actions = append(battle.Actions, act)
		}
	}
	return battle, nil
}

func compileAction(tbl *lua.LTable) (types.BattleAction, error) {
	if err := checkKeys(tbl, "action",
		"kind", "label", "bonus", "variance", "stat", "gte",
		"success_damage", "fail_damage", "success_heal", "fail_heal",
		"mana_cost", "sound",
		"requires_weapon_type", "requires_weapon_id",
		"ammo_item", "ammo_cost", "hit_chance",
		"show_if_unavailable"); err != nil {
		return types.BattleAction{}, err
	}

	act := types.BattleAction{
		Kind:               getString(tbl, "kind"),
		Label:              getString(tbl, "label"),
		Bonus:              getInt(tbl, "bonus"),
		Variance:           2,
		Stat:               getString(tbl, "stat"),
		GTE:                getInt(tbl, "gte"),
		SuccessDamage:      getInt(tbl, "success_damage"),
		FailDamage:         getInt(tbl, "fail_damage"),
		SuccessHeal:        getInt(tbl, "success_heal"),
		FailHeal:           getInt(tbl, "fail_heal"),
		ManaCost:           getInt(tbl, "mana_cost"),
		SoundKey:           getString(tbl, "sound"),
		RequiresWeaponType: getString(tbl, "requires_weapon_type"),
		RequiresWeaponID:   getString(tbl, "requires_weapon_id"),
		AmmoItem:           getString(tbl, "ammo_item"),
		AmmoCost:           1,
		HitChance:          1,
		ShowIfUnavailable:  getBool(tbl, "show_if_unavailable", false),
	}
	if has(tbl, "variance") {
		act.Variance = getInt(tbl, "variance")
	}
	if has(tbl, "ammo_cost") {
		act.AmmoCost = getInt(tbl, "ammo_cost")
	}
	if has(tbl, "hit_chance") {
		act.HitChance = getNumber(tbl, "hit_chance")
	}
	switch act.Kind {
	case types.ActionAttack, types.ActionSkillCheck, types.ActionCast:
	default:
		return types.BattleAction{}, fmt.Errorf("unknown kind %q", act.Kind)
	}
	if act.Label == "" {
		return types.BattleAction{}, fmt.Errorf("label is required")
	}
	return act, nil
}
