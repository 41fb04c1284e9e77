// Package engine implements the interpreter core: room navigation, option
// dispatch, timed-flag expiry, passive regeneration, and the battle state
// machine. Every public operation runs to completion and returns a Result
// the presentation layer can render directly.
package engine

import (
	"fmt"
	"strings"

	"github.com/calder/storyforge/engine/effects"
	"github.com/calder/storyforge/engine/require"
	"github.com/calder/storyforge/engine/rng"
	"github.com/calder/storyforge/engine/save"
	"github.com/calder/storyforge/engine/state"
	"github.com/calder/storyforge/types"
)

// MaxOptions caps how many option descriptors a Result carries.
const MaxOptions = 4

// fillerLabel is offered when a room has no visible options left.
const fillerLabel = "Catch your breath."

// choice is one live option: its display label, whether it can be taken,
// and the handler that runs when it is.
type choice struct {
	label   string
	enabled bool
	run     func()
}

// Engine holds the game definitions and the mutable session state.
type Engine struct {
	Defs  *state.Defs
	State *types.State
	RNG   *rng.RNG

	title    string
	body     string
	lines    []string
	soundKey string // one-shot effect key, cleared after each Result
	options  []choice
}

// New creates an engine from definitions with a seeded random stream. The
// start room is not entered until Start or Resume is called.
func New(defs *state.Defs, seed int64) *Engine {
	return &Engine{
		Defs:  defs,
		State: state.New(defs),
		RNG:   rng.New(seed),
	}
}

// Start enters the starting room and returns the first view.
func (e *Engine) Start() types.Result {
	e.goTo(e.Defs.Game.Start, true)
	return e.result()
}

// Resume applies a save snapshot and re-enters the recorded room as an
// initial transition (no timed-flag tick, no regeneration). A recorded RNG
// seed rewinds the random stream to the saved position, so a resumed session
// draws exactly what the interrupted one would have.
func (e *Engine) Resume(d *save.Data) types.Result {
	save.Apply(d, e.State)
	if d.RNGSeed != 0 {
		e.RNG = rng.Restore(d.RNGSeed, d.RNGPos)
	}
	e.goTo(e.State.RoomID, true)
	return e.result()
}

// Snapshot returns the persistable slice of the current state, including the
// RNG stream position.
func (e *Engine) Snapshot() *save.Data {
	d := save.Snapshot(e.State)
	d.RNGSeed = e.RNG.Seed()
	d.RNGPos = e.RNG.Position()
	return d
}

// View returns the current presentation state without mutating anything.
func (e *Engine) View() types.Result {
	return e.result()
}

// Choose runs the option at the given index and returns the new view.
// Out-of-range or disabled selections are ignored; stale front-end state
// must never corrupt the session.
func (e *Engine) Choose(index int) types.Result {
	if index < 0 || index >= len(e.options) {
		return e.result()
	}
	opt := e.options[index]
	if !opt.enabled || opt.run == nil {
		return e.result()
	}
	opt.run()
	return e.result()
}

// Go navigates to a room directly. Missing ids degrade to a placeholder
// message instead of failing.
func (e *Engine) Go(roomID string) types.Result {
	e.goTo(roomID, false)
	return e.result()
}

// UseItem activates an inventory item: weapons equip, ammo refuses,
// consumables apply their stat effects and are spent.
func (e *Engine) UseItem(itemID string) types.Result {
	s := e.State
	if s.Inventory[itemID] <= 0 {
		e.appendLine("You don't have that.")
		return e.result()
	}
	def := e.Defs.Item(itemID)
	switch {
	case state.IsWeapon(def):
		if state.Equip(s, e.Defs, itemID) {
			slot := state.WeaponSlot(def)
			e.appendLine(fmt.Sprintf("Equipped %s to your %s slot.", def.Name, slot))
			if s.Battle != nil {
				e.refreshBattleActions()
			}
		} else {
			e.appendLine(def.Name + " is already equipped.")
		}
	case def.Category == types.CategoryAmmo:
		e.appendLine("Ammo is spent automatically by ranged weapons during combat.")
	default:
		for stat, delta := range def.Effects {
			state.AddStat(&s.Stats, stat, delta)
		}
		if def.Category == types.CategoryConsumable {
			state.ConsumeItem(s, itemID, 1)
			s.ItemsUsed = append(s.ItemsUsed, itemID)
		}
		e.appendLine("Used " + def.Name + ".")
	}
	return e.result()
}

// PickBattle selects a battle id from the pool by weighted random draw.
// An empty pool selects from every defined battle with equal weight.
func (e *Engine) PickBattle(pool []string, weights []int) (*types.BattleSpec, error) {
	ids := pool
	if len(ids) == 0 {
		for id := range e.Defs.Battles {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("battle pool is empty")
	}
	if len(weights) == 0 {
		weights = make([]int, len(ids))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(ids) {
		return nil, fmt.Errorf("weights length %d does not match pool length %d", len(weights), len(ids))
	}
	id := ids[e.RNG.WeightedSelect(weights)]
	battle, ok := e.Defs.Battles[id]
	if !ok {
		return nil, fmt.Errorf("battle %q not found", id)
	}
	return &battle, nil
}

// goTo performs a room transition. On non-initial transitions timed flags
// tick down first and passive mana regeneration accrues, so expiry messages
// land in the room the player arrives in.
func (e *Engine) goTo(roomID string, initial bool) {
	room, ok := e.Defs.Rooms[roomID]
	if !ok {
		e.body = fmt.Sprintf("Room %q is missing.", roomID)
		e.lines = nil
		return
	}
	var expired []string
	if !initial {
		expired = e.tickTimedFlags()
		e.regenMana()
	}
	s := e.State
	s.RoomID = roomID
	s.Battle = nil
	e.title = room.Title
	e.body = room.Body
	e.lines = expired
	if room.EnterSoundKey != "" {
		e.soundKey = room.EnterSoundKey
	}
	e.buildRoomOptions(&room)
}

// buildRoomOptions filters the room's options through the requirement
// evaluator. An empty result gets the filler no-op.
func (e *Engine) buildRoomOptions(room *types.RoomSpec) {
	e.options = e.options[:0]
	for i := range room.Options {
		opt := &room.Options[i]
		if !require.OptionVisible(opt, e.State) {
			continue
		}
		label := opt.Label
		if opt.Hint != "" {
			label = fmt.Sprintf("%s (%s)", label, opt.Hint)
		}
		o := opt
		e.options = append(e.options, choice{label: label, enabled: true, run: func() { e.handleOption(o) }})
	}
	if len(e.options) == 0 {
		e.options = append(e.options, choice{label: fillerLabel, enabled: true, run: func() {}})
	}
}

// refreshRoomOptions recomputes the current room's option list after a
// state change that may alter requirement outcomes.
func (e *Engine) refreshRoomOptions() {
	room, ok := e.Defs.Rooms[e.State.RoomID]
	if !ok {
		return
	}
	e.buildRoomOptions(&room)
}

// handleOption applies an option's effects and then dispatches its primary
// outcome: a battle, a room transition, or in-place narration.
func (e *Engine) handleOption(opt *types.OptionSpec) {
	if opt.SoundKey != "" {
		e.soundKey = opt.SoundKey
	}
	messages, refresh := effects.Apply(e.State, e.Defs, opt, e.RNG)

	if opt.BattleID != "" {
		repeatKey := ""
		if opt.RepeatLimit > 0 {
			repeatKey = e.repeatKeyFor(opt)
			if e.State.RepeatCount[repeatKey] >= opt.RepeatLimit {
				msg := opt.RepeatMessage
				if msg == "" {
					msg = "The encounter no longer responds."
				}
				e.appendLine(msg)
				return
			}
		}
		battle, ok := e.Defs.Battles[opt.BattleID]
		if !ok {
			e.body = fmt.Sprintf("Battle %q not found.", opt.BattleID)
			e.lines = nil
			return
		}
		e.startBattle(&battle, opt.To, repeatKey)
		return
	}
	if opt.To != "" {
		e.goTo(opt.To, false)
		return
	}
	if len(messages) > 0 {
		e.lines = append(e.lines, messages...)
	} else {
		e.appendLine("You wait, but nothing happens.")
	}
	if refresh {
		e.refreshRoomOptions()
	}
}

// repeatKeyFor derives a stable tracker key for a repeat-limited option.
func (e *Engine) repeatKeyFor(opt *types.OptionSpec) string {
	if opt.RepeatKey != "" {
		return opt.RepeatKey
	}
	label := strings.ToLower(strings.TrimSpace(opt.Label))
	label = strings.ReplaceAll(label, " ", "_")
	if label == "" {
		label = "option"
	}
	roomID := e.State.RoomID
	if roomID == "" {
		roomID = "room"
	}
	return roomID + ":" + label
}

// tickTimedFlags decrements every timed flag by one room-step, removing
// flags that expire and producing their fade messages.
func (e *Engine) tickTimedFlags() []string {
	s := e.State
	var expired []string
	for flag, remaining := range s.TimedFlags {
		remaining--
		if remaining <= 0 {
			delete(s.TimedFlags, flag)
			if _, had := s.Flags[flag]; had {
				delete(s.Flags, flag)
				expired = append(expired, humanFlag(flag)+" fades.")
			}
		} else {
			s.TimedFlags[flag] = remaining
		}
	}
	return expired
}

// regenMana adds the per-room regeneration to a fractional reserve and
// converts whole points, keeping the remainder so non-integer rates do not
// drift.
func (e *Engine) regenMana() {
	rate := e.Defs.Game.ManaPerRoom
	if rate <= 0 {
		return
	}
	s := e.State
	s.ManaReserve += rate
	points := int(s.ManaReserve)
	if points <= 0 {
		return
	}
	s.ManaReserve -= float64(points)
	s.Stats.Mana += points
	if s.Stats.Mana > s.Stats.MaxMana {
		s.Stats.Mana = s.Stats.MaxMana
	}
}

// prepareTransition replaces the option list with a single handler that
// completes a pending room change (after a battle resolves).
func (e *Engine) prepareTransition(roomID, label string) {
	e.options = []choice{{label: label, enabled: true, run: func() {
		if roomID != "" {
			e.goTo(roomID, false)
			return
		}
		e.refreshRoomOptions()
	}}}
}

func (e *Engine) appendLine(line string) {
	e.lines = append(e.lines, line)
}

// result assembles the presentation view from the current engine state.
func (e *Engine) result() types.Result {
	s := e.State
	level, prog, target := e.Defs.Curve().Level(s.Stats.XP)
	views := make([]types.OptionView, 0, len(e.options))
	for i, opt := range e.options {
		if i >= MaxOptions {
			break
		}
		views = append(views, types.OptionView{Label: opt.label, Enabled: opt.enabled})
	}
	r := types.Result{
		Title:      e.title,
		Body:       e.body,
		Lines:      append([]string(nil), e.lines...),
		Options:    views,
		Stats:      s.Stats,
		Level:      level,
		XPProgress: prog,
		XPTarget:   target,
		SoundKey:   e.soundKey,
	}
	if room, ok := e.Defs.Rooms[s.RoomID]; ok {
		r.BackgroundKey = room.BackgroundKey
		r.MusicKey = room.MusicKey
	}
	e.soundKey = ""
	return r
}

// humanFlag turns a flag id into display text: "guard_distracted" becomes
// "Guard distracted".
func humanFlag(flag string) string {
	text := strings.ReplaceAll(flag, "_", " ")
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}
