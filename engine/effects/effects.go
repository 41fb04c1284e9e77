// Package effects applies the declarative effect block of a chosen option
// to the game state. Steps run in a fixed order so later keys observe the
// mutations of earlier ones; the only nondeterminism is the loot roll and
// the roll_check draw.
package effects

import (
	"fmt"
	"strings"

	"github.com/calder/storyforge/engine/loot"
	"github.com/calder/storyforge/engine/rng"
	"github.com/calder/storyforge/engine/state"
	"github.com/calder/storyforge/types"
)

// Apply runs an option's item grants, flag mutations, and effect block.
// It returns the narration lines produced and whether the caller must
// recompute the visible option list (a flag or inventory change may alter
// requirement outcomes).
func Apply(s *types.State, defs *state.Defs, opt *types.OptionSpec, src rng.Source) (lines []string, refresh bool) {
	var messages []string
	failTriggered := false
	hpFailDelta := 0

	// 1. Literal item grants merged with a loot table roll.
	gained := append([]string(nil), opt.GainItems...)
	gained = append(gained, loot.Roll(opt.LootTable, opt.LootRolls, s.UniqueLoot, src)...)
	if len(gained) > 0 {
		messages = append(messages, "You obtain: "+collectItems(s, defs, gained)+".")
		refresh = true
	}

	// 2. Legacy set_flag shorthand.
	if opt.SetFlag != "" && state.SetFlag(s, opt.SetFlag, 1) {
		refresh = true
	}

	eff := opt.Effects
	if eff == nil {
		eff = &types.EffectSpec{}
	}

	// 3. Silent equip of owned weapons.
	for _, itemID := range eff.EquipItems {
		if s.Inventory[itemID] <= 0 {
			continue
		}
		def := defs.Item(itemID)
		if !state.IsWeapon(def) {
			continue
		}
		if state.Equip(s, defs, itemID) {
			messages = append(messages, def.Name+" equipped.")
			refresh = true
		}
	}

	// 4–5. Flag sets, with a rooms-remaining timer when one is declared.
	timer := eff.TimerRooms
	if timer < 0 {
		timer = 0
	}
	for flag, value := range eff.Set {
		if state.SetFlag(s, flag, value) {
			refresh = true
		}
		if timer > 0 {
			s.TimedFlags[flag] = timer
		}
	}

	// 6. Flag increments.
	for flag, delta := range eff.Inc {
		if state.SetFlag(s, flag, s.Flags[flag]+delta) {
			refresh = true
		}
	}

	// 7. Stamina cost.
	if cost := eff.EnergyCost; cost > 0 {
		s.Stats.Stamina -= cost
		if s.Stats.Stamina < 0 {
			s.Stats.Stamina = 0
		}
		messages = append(messages, fmt.Sprintf("You expend %d stamina.", cost))
	}

	// 8. Alert level delta, floored at zero.
	if eff.Alert != 0 {
		s.AlertLevel += eff.Alert
		if s.AlertLevel < 0 {
			s.AlertLevel = 0
		}
		messages = append(messages, "Facility alert increases.")
	}

	// 9. Stun charge for the next battle start.
	if eff.EnemyStunned != nil {
		if state.SetFlag(s, "enemy_stunned", *eff.EnemyStunned) {
			refresh = true
		}
	}

	// 10. Probabilistic roll check.
	if rc := eff.RollCheck; rc != nil {
		chance := rc.Pass
		if chance < 0 {
			chance = 0
		} else if chance > 1 {
			chance = 1
		}
		if src.Float64() > chance {
			failTriggered = true
			if rc.FailText != "" {
				messages = append(messages, rc.FailText)
			} else {
				messages = append(messages, "The attempt draws suspicion.")
			}
			if rc.OnFailAlert != 0 {
				s.AlertLevel += rc.OnFailAlert
				if s.AlertLevel < 0 {
					s.AlertLevel = 0
				}
				messages = append(messages, "Security tightens.")
			}
			hpFailDelta += rc.HPDeltaOnFail
		} else if rc.SuccessText != "" {
			messages = append(messages, rc.SuccessText)
		}
	}
	hpFailDelta += eff.HPDeltaOnFail

	// 11. Legacy clear_flag shorthand; removes the timed entry too.
	if opt.ClearFlag != "" && state.ClearFlag(s, opt.ClearFlag) {
		refresh = true
	}

	// 12. Duplicate-path compatibility: a timer also arms the legacy
	// set_flag shorthand.
	if timer > 0 && opt.SetFlag != "" {
		s.TimedFlags[opt.SetFlag] = timer
	}

	// 13. Failed-roll fallout: alternate alert key plus accumulated hp delta.
	if failTriggered {
		if eff.AlertOnFail != nil {
			s.AlertLevel += *eff.AlertOnFail
			if s.AlertLevel < 0 {
				s.AlertLevel = 0
			}
		}
		if hpFailDelta != 0 {
			hp := s.Stats.HP + hpFailDelta
			if hp < 0 {
				hp = 0
			}
			if hp > s.Stats.MaxHP {
				hp = s.Stats.MaxHP
			}
			s.Stats.HP = hp
			if hpFailDelta < 0 {
				messages = append(messages, fmt.Sprintf("You lose %d HP.", -hpFailDelta))
			} else {
				messages = append(messages, fmt.Sprintf("You recover %d HP.", hpFailDelta))
			}
		}
	}

	return messages, refresh
}

// collectItems adds the ids to the inventory as a multiset and formats the
// display list in first-seen order.
func collectItems(s *types.State, defs *state.Defs, ids []string) string {
	counts := map[string]int{}
	var order []string
	for _, id := range ids {
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}
	var display []string
	for _, id := range order {
		count := counts[id]
		state.AddItem(s, id, count)
		name := defs.Item(id).Name
		if count > 1 {
			name = fmt.Sprintf("%s x%d", name, count)
		}
		display = append(display, name)
	}
	return strings.Join(display, ", ")
}

// Collect awards a plain list of item ids (battle loot) and returns the
// "Loot acquired" narration line, or "" when the list is empty.
func Collect(s *types.State, defs *state.Defs, ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return "Loot acquired: " + collectItems(s, defs, ids) + "."
}
