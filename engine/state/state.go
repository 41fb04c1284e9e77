// Package state manages the mutable game state: flags, inventory,
// equipment, and stat access by name. Definitions are immutable after load;
// all cross-references between them are string ids.
package state

import (
	"github.com/calder/storyforge/engine/progress"
	"github.com/calder/storyforge/types"
)

// Defs holds the immutable game definitions assembled by the loader.
type Defs struct {
	Game    types.GameDef
	Items   map[string]types.ItemDef
	Rooms   map[string]types.RoomSpec
	Battles map[string]types.BattleSpec
	Images  map[string]string
	Sounds  map[string]string
}

// Curve returns the progression curve declared by the game header, falling
// back to the built-in defaults.
func (d *Defs) Curve() progress.Curve {
	c := progress.Default()
	if len(d.Game.XPRequirements) > 0 {
		c.Requirements = d.Game.XPRequirements
	}
	if d.Game.XPGrowthFactor > 0 {
		c.GrowthFactor = d.Game.XPGrowthFactor
	}
	return c
}

// DefeatRoom returns the room the player wakes in after losing a battle
// with no explicit defeat target.
func (d *Defs) DefeatRoom() string {
	if d.Game.DefeatRoom != "" {
		return d.Game.DefeatRoom
	}
	return d.Game.Start
}

// Item returns the definition for an item id. Unknown ids get a bare
// placeholder definition so runtime lookups never fail.
func (d *Defs) Item(id string) types.ItemDef {
	if def, ok := d.Items[id]; ok {
		return def
	}
	return types.ItemDef{ID: id, Name: id}
}

// New creates a fresh game state from definitions.
func New(defs *Defs) *types.State {
	return &types.State{
		Stats:       defs.Game.StartingStats,
		Inventory:   map[string]int{},
		Equipment:   map[string]string{},
		Flags:       map[string]int{},
		TimedFlags:  map[string]int{},
		RepeatCount: map[string]int{},
		UniqueLoot:  map[string]bool{},
		RoomID:      defs.Game.Start,
	}
}

// FlagValue returns the value of a flag. Unset flags read as 0.
func FlagValue(s *types.State, flag string) int {
	return s.Flags[flag]
}

// SetFlag sets a flag and reports whether the stored value changed.
func SetFlag(s *types.State, flag string, value int) bool {
	current, ok := s.Flags[flag]
	if ok && current == value {
		return false
	}
	s.Flags[flag] = value
	return true
}

// ClearFlag removes a flag and any timed-flag entry attached to it.
// Reports whether the flag existed.
func ClearFlag(s *types.State, flag string) bool {
	_, existed := s.Flags[flag]
	delete(s.Flags, flag)
	delete(s.TimedFlags, flag)
	return existed
}

// AddItem adds count copies of an item to the inventory.
func AddItem(s *types.State, id string, count int) {
	if count <= 0 {
		return
	}
	s.Inventory[id] += count
}

// ConsumeItem removes up to amount copies of an item, dropping the entry
// when it reaches zero.
func ConsumeItem(s *types.State, id string, amount int) {
	if amount <= 0 {
		return
	}
	remaining := s.Inventory[id] - amount
	if remaining <= 0 {
		delete(s.Inventory, id)
	} else {
		s.Inventory[id] = remaining
	}
}

// StatValue reads a stat by its content-facing name. Unknown names read as
// (0, false).
func StatValue(st *types.Stats, name string) (int, bool) {
	switch name {
	case "hp":
		return st.HP, true
	case "max_hp":
		return st.MaxHP, true
	case "mana":
		return st.Mana, true
	case "max_mana":
		return st.MaxMana, true
	case "stamina":
		return st.Stamina, true
	case "attack":
		return st.Attack, true
	case "defence":
		return st.Defence, true
	case "xp":
		return st.XP, true
	default:
		return 0, false
	}
}

// AddStat adds a delta to a stat by name. HP is clamped to [0, max_hp] and
// mana to [0, max_mana]; other stats are adjusted raw. Unknown names are
// ignored.
func AddStat(st *types.Stats, name string, delta int) {
	switch name {
	case "hp":
		st.HP = clamp(st.HP+delta, 0, st.MaxHP)
	case "max_hp":
		st.MaxHP += delta
	case "mana":
		st.Mana = clamp(st.Mana+delta, 0, st.MaxMana)
	case "max_mana":
		st.MaxMana += delta
	case "stamina":
		st.Stamina += delta
	case "attack":
		st.Attack += delta
	case "defence":
		st.Defence += delta
	case "xp":
		st.XP += delta
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WeaponSlot returns the equipment slot a weapon occupies.
func WeaponSlot(def types.ItemDef) string {
	if def.WeaponType == types.SlotRanged {
		return types.SlotRanged
	}
	return types.SlotMelee
}

// IsWeapon reports whether a definition can be equipped.
func IsWeapon(def types.ItemDef) bool {
	return def.Category == types.CategoryWeapon || def.WeaponType != ""
}

// EquippedSlot returns the slot an item is equipped in, or "".
func EquippedSlot(s *types.State, itemID string) string {
	for slot, equipped := range s.Equipment {
		if equipped == itemID {
			return slot
		}
	}
	return ""
}

// Equip places a weapon in its slot, first unequipping whatever occupies
// it, and applies the weapon's stat effects. Equipping the item already in
// the slot is a no-op and returns false.
func Equip(s *types.State, defs *Defs, itemID string) bool {
	def := defs.Item(itemID)
	slot := WeaponSlot(def)
	if s.Equipment[slot] == itemID {
		return false
	}
	if current := s.Equipment[slot]; current != "" {
		Unequip(s, defs, slot)
	}
	s.Equipment[slot] = itemID
	applyGearEffects(&s.Stats, def.Effects, false)
	return true
}

// Unequip removes the weapon in a slot, reversing exactly the stat effects
// applied when it was equipped.
func Unequip(s *types.State, defs *Defs, slot string) {
	itemID := s.Equipment[slot]
	if itemID == "" {
		return
	}
	def := defs.Item(itemID)
	applyGearEffects(&s.Stats, def.Effects, true)
	delete(s.Equipment, slot)
}

// applyGearEffects adds (or subtracts, when removing) an item's stat
// effects. Gear bonuses are raw adjustments: no clamping, so equip followed
// by unequip restores the prior stats exactly.
func applyGearEffects(st *types.Stats, effects map[string]int, remove bool) {
	for name, delta := range effects {
		if remove {
			delta = -delta
		}
		switch name {
		case "hp":
			st.HP += delta
		case "max_hp":
			st.MaxHP += delta
		case "mana":
			st.Mana += delta
		case "max_mana":
			st.MaxMana += delta
		case "stamina":
			st.Stamina += delta
		case "attack":
			st.Attack += delta
		case "defence":
			st.Defence += delta
		case "xp":
			st.XP += delta
		}
	}
}
