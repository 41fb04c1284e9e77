package engine

import (
	"fmt"
	"strings"

	"github.com/calder/storyforge/engine/effects"
	"github.com/calder/storyforge/engine/loot"
	"github.com/calder/storyforge/engine/state"
	"github.com/calder/storyforge/types"
)

// hpPerStunTurn converts banked stun turns into the pre-battle HP
// reduction applied to the enemy.
const hpPerStunTurn = 4

// startBattle opens an encounter. A banked enemy_stunned flag is consumed
// here, pre-reducing the enemy's HP before the first turn.
func (e *Engine) startBattle(battle *types.BattleSpec, optionTo, repeatKey string) {
	s := e.State
	stunned := s.Flags["enemy_stunned"]
	delete(s.Flags, "enemy_stunned")
	if stunned < 0 {
		stunned = 0
	}
	enc := &types.Encounter{
		Spec:      battle,
		EnemyHP:   battle.Enemy.HP,
		OptionTo:  optionTo,
		RepeatKey: repeatKey,
	}
	if stunned > 0 {
		reduction := stunned * hpPerStunTurn
		if reduction > enc.EnemyHP {
			reduction = enc.EnemyHP
		}
		enc.EnemyHP -= reduction
		e.body = fmt.Sprintf("%s\n%s reels from your setup, losing %d HP before the fight truly begins!",
			battle.Title, battle.Enemy.Name, reduction)
	} else {
		e.body = fmt.Sprintf("%s\n%s prepares to strike!", battle.Title, battle.Enemy.Name)
	}
	e.lines = nil
	s.Battle = enc
	e.refreshBattleActions()
}

// actionAvailable checks weapon and ammo requirements. The reason string
// is shown on disabled entries when the content asks for them to stay
// visible.
func (e *Engine) actionAvailable(a *types.BattleAction) (bool, string) {
	s := e.State
	if a.RequiresWeaponType != "" {
		equipped := s.Equipment[a.RequiresWeaponType]
		if equipped == "" {
			return false, fmt.Sprintf("Requires %s weapon", a.RequiresWeaponType)
		}
		if a.RequiresWeaponID != "" && equipped != a.RequiresWeaponID {
			return false, "Requires " + e.Defs.Item(a.RequiresWeaponID).Name
		}
	} else if a.RequiresWeaponID != "" {
		if state.EquippedSlot(s, a.RequiresWeaponID) == "" {
			return false, "Requires " + e.Defs.Item(a.RequiresWeaponID).Name
		}
	}
	if a.AmmoItem != "" {
		cost := a.AmmoCost
		if cost < 0 {
			cost = 0
		}
		if s.Inventory[a.AmmoItem] < cost {
			return false, "Out of ammo"
		}
	}
	return true, ""
}

// refreshBattleActions rebuilds the option list from the battle's actions,
// hiding unavailable ones unless flagged visible. With nothing left, a
// synthetic Endure action keeps the turn loop alive.
func (e *Engine) refreshBattleActions() {
	enc := e.State.Battle
	if enc == nil {
		return
	}
	e.options = e.options[:0]
	for i := range enc.Spec.Actions {
		action := &enc.Spec.Actions[i]
		available, reason := e.actionAvailable(action)
		if !available && !action.ShowIfUnavailable {
			continue
		}
		label := action.Label
		if !available && reason != "" {
			label = fmt.Sprintf("%s (%s)", label, reason)
		}
		a := action
		e.options = append(e.options, choice{label: label, enabled: available, run: func() { e.resolveAction(a) }})
	}
	if len(e.options) == 0 {
		e.options = append(e.options, choice{label: "Endure", enabled: true, run: e.passTurn})
	}
}

// passTurn forfeits the player's action: the enemy attacks for free.
func (e *Engine) passTurn() {
	enc := e.State.Battle
	if enc == nil {
		return
	}
	log := []string{enc.Spec.Title, "You take a defensive stance."}
	log = append(log, e.enemyAttack(enc.Spec)...)
	if e.State.Stats.HP <= 0 {
		e.handleDefeat()
		return
	}
	e.setBattleLog(log)
}

// resolveAction executes one player turn and the enemy's counter-attack.
func (e *Engine) resolveAction(a *types.BattleAction) {
	enc := e.State.Battle
	if enc == nil {
		return
	}
	s := e.State
	log := []string{enc.Spec.Title}

	// Guard against stale front-end state: an unavailable action forfeits
	// the turn.
	available, reason := e.actionAvailable(a)
	if !available {
		if reason == "" {
			reason = "You cannot take that action right now."
		}
		log = append(log, reason)
		e.finishTurn(log)
		return
	}

	if a.AmmoItem != "" {
		cost := a.AmmoCost
		if cost < 0 {
			cost = 0
		}
		if cost > 0 {
			if s.Inventory[a.AmmoItem] < cost {
				log = append(log, "Out of ammo!")
				e.finishTurn(log)
				return
			}
			state.ConsumeItem(s, a.AmmoItem, cost)
		}
	}

	if a.Kind == types.ActionAttack || a.Kind == types.ActionCast {
		chance := a.HitChance
		if chance < 0 {
			chance = 0
		} else if chance > 1 {
			chance = 1
		}
		if chance < 1 && e.RNG.Float64() >= chance {
			log = append(log, a.Label+" misses.")
			e.finishTurn(log)
			return
		}
	}

	switch a.Kind {
	case types.ActionAttack:
		damage := e.playerDamage(a.Bonus, a.Variance)
		enc.EnemyHP = maxInt(0, enc.EnemyHP-damage)
		log = append(log, fmt.Sprintf("You use %s for %d damage.", a.Label, damage))

	case types.ActionSkillCheck:
		value, _ := state.StatValue(&s.Stats, a.Stat)
		if value >= a.GTE {
			if a.SuccessDamage > 0 {
				enc.EnemyHP = maxInt(0, enc.EnemyHP-a.SuccessDamage)
			}
			if a.SuccessHeal > 0 {
				e.healPlayer(a.SuccessHeal)
			}
			log = append(log, fmt.Sprintf("Success! %s lands.", a.Label))
		} else {
			if a.FailDamage > 0 {
				e.takeDamage(a.FailDamage)
			}
			if a.FailHeal > 0 {
				e.healPlayer(a.FailHeal)
			}
			log = append(log, fmt.Sprintf("Failed check. %s falters.", a.Label))
		}

	case types.ActionCast:
		if s.Stats.Mana < a.ManaCost {
			// No mana spent, no enemy counter-attack: the turn simply
			// never happens.
			log = append(log, "Not enough mana.")
			e.setBattleLog(log)
			return
		}
		s.Stats.Mana -= a.ManaCost
		damage := e.playerDamage(a.Bonus, a.Variance)
		enc.EnemyHP = maxInt(0, enc.EnemyHP-damage)
		log = append(log, fmt.Sprintf("You channel energy! %d damage dealt.", damage))

	default:
		log = append(log, "You hesitate.")
	}

	if enc.EnemyHP <= 0 {
		e.handleVictory()
		return
	}
	e.finishTurn(log)
}

// finishTurn runs the enemy counter-attack, checks for defeat, and
// republishes the action list.
func (e *Engine) finishTurn(log []string) {
	enc := e.State.Battle
	if enc == nil {
		return
	}
	log = append(log, e.enemyAttack(enc.Spec)...)
	if e.State.Stats.HP <= 0 {
		e.handleDefeat()
		return
	}
	e.setBattleLog(log)
}

func (e *Engine) setBattleLog(log []string) {
	e.body = strings.Join(log, "\n")
	e.lines = nil
	e.refreshBattleActions()
}

// playerDamage computes attack-style damage: attack + bonus + a uniform
// variance roll, less the enemy's defence, floored at zero, with a
// critical-hit multiplier applied on a successful crit draw.
func (e *Engine) playerDamage(bonus, variance int) int {
	game := &e.Defs.Game
	totalVariance := variance + game.DamageVariance
	if totalVariance < 0 {
		totalVariance = 0
	}
	roll := e.RNG.IntN(totalVariance)
	damage := e.State.Stats.Attack + bonus + roll
	if enc := e.State.Battle; enc != nil {
		damage -= enc.Spec.Enemy.Defence
	}
	damage = maxInt(0, damage)
	if game.CritChance > 0 && e.RNG.Float64() < game.CritChance {
		mult := game.CritMultiplier
		if mult <= 0 {
			mult = 1.5
		}
		damage = int(float64(damage) * mult)
	}
	return damage
}

// enemyAttack rolls the enemy's counter-attack against the player.
func (e *Engine) enemyAttack(battle *types.BattleSpec) []string {
	variance := e.Defs.Game.DamageVariance
	if variance < 0 {
		variance = 0
	}
	roll := e.RNG.IntN(variance)
	damage := maxInt(0, battle.Enemy.Attack+roll-e.State.Stats.Defence)
	if damage > 0 {
		e.takeDamage(damage)
		return []string{fmt.Sprintf("%s strikes for %d damage!", battle.Enemy.Name, damage)}
	}
	return []string{fmt.Sprintf("%s's attack glances off your armour.", battle.Enemy.Name)}
}

func (e *Engine) takeDamage(amount int) {
	hp := e.State.Stats.HP - amount
	if hp < 0 {
		hp = 0
	}
	e.State.Stats.HP = hp
}

func (e *Engine) healPlayer(amount int) {
	hp := e.State.Stats.HP + amount
	if hp > e.State.Stats.MaxHP {
		hp = e.State.Stats.MaxHP
	}
	e.State.Stats.HP = hp
}

// handleVictory awards XP and loot, bumps the repeat tracker, and stages
// the transition to the victory room.
func (e *Engine) handleVictory() {
	s := e.State
	enc := s.Battle
	if enc == nil {
		return
	}
	battle := enc.Spec
	e.body = battle.VictoryText
	e.lines = nil
	s.Stats.XP += e.Defs.Game.XPPerVictory
	if line := effects.Collect(s, e.Defs, battle.Enemy.Loot); line != "" {
		e.appendLine(line)
	}
	rolled := loot.Roll(battle.LootTable, battle.LootRolls, s.UniqueLoot, e.RNG)
	if line := effects.Collect(s, e.Defs, rolled); line != "" {
		e.appendLine(line)
	}
	nextRoom := battle.VictoryTo
	if nextRoom == "" {
		nextRoom = enc.OptionTo
	}
	if nextRoom == "" {
		nextRoom = s.RoomID
	}
	if enc.RepeatKey != "" {
		s.RepeatCount[enc.RepeatKey]++
	}
	s.Battle = nil
	e.prepareTransition(nextRoom, "Continue")
}

// handleDefeat restores the player and stages the transition to the
// defeat room. There is no permadeath.
func (e *Engine) handleDefeat() {
	s := e.State
	enc := s.Battle
	if enc == nil {
		return
	}
	battle := enc.Spec
	e.body = battle.DefeatText
	e.lines = nil
	s.Stats.HP = s.Stats.MaxHP
	defeatRoom := battle.DefeatTo
	if defeatRoom == "" {
		defeatRoom = e.Defs.DefeatRoom()
	}
	s.Battle = nil
	e.prepareTransition(defeatRoom, "Continue")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
