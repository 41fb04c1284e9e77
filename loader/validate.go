package loader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/calder/storyforge/engine/state"
	"github.com/calder/storyforge/types"
)

// Validate runs the static content-graph checks: an asset pass, then a
// reachability pass. Structural problems (a dangling room or battle id, a
// missing asset key) abort on the first one found; unreachable rooms fail
// with the full sorted set; unknown item ids are warnings printed to stderr.
func Validate(defs *state.Defs) error {
	if defs.Game.Title == "" {
		return fmt.Errorf("validation failed: Game.title is required")
	}
	start := defs.Game.Start
	if start == "" {
		return fmt.Errorf("validation failed: Game.start is required")
	}
	if _, ok := defs.Rooms[start]; !ok {
		return fmt.Errorf("validation failed: start room %q is not defined", start)
	}
	if dr := defs.Game.DefeatRoom; dr != "" {
		if _, ok := defs.Rooms[dr]; !ok {
			return fmt.Errorf("validation failed: defeat room %q is not defined", dr)
		}
	}

	roomIDs := make([]string, 0, len(defs.Rooms))
	for id := range defs.Rooms {
		roomIDs = append(roomIDs, id)
	}
	sort.Strings(roomIDs)

	// Asset pass.
	for _, id := range roomIDs {
		room := defs.Rooms[id]
		if k := room.BackgroundKey; k != "" {
			if _, ok := defs.Images[k]; !ok {
				return fmt.Errorf("validation failed: room %q background %q is not a registered image", id, k)
			}
		}
		if k := room.MusicKey; k != "" {
			if _, ok := defs.Sounds[k]; !ok {
				return fmt.Errorf("validation failed: room %q music %q is not a registered sound", id, k)
			}
		}
		if k := room.EnterSoundKey; k != "" {
			if _, ok := defs.Sounds[k]; !ok {
				return fmt.Errorf("validation failed: room %q enter_sound %q is not a registered sound", id, k)
			}
		}
	}

	// Reachability pass. Build the adjacency map, failing on the first
	// reference to an undefined room or battle.
	edges := map[string][]string{}
	var warnings []string
	for _, id := range roomIDs {
		room := defs.Rooms[id]
		for i, opt := range room.Options {
			if opt.To != "" {
				if _, ok := defs.Rooms[opt.To]; !ok {
					return fmt.Errorf("validation failed: room %q option %d targets undefined room %q", id, i, opt.To)
				}
				edges[id] = append(edges[id], opt.To)
			}
			if opt.BattleID != "" {
				battle, ok := defs.Battles[opt.BattleID]
				if !ok {
					return fmt.Errorf("validation failed: room %q option %d references undefined battle %q", id, i, opt.BattleID)
				}
				victory := battle.VictoryTo
				if victory == "" {
					victory = opt.To
				}
				if victory != "" {
					if _, ok := defs.Rooms[victory]; !ok {
						return fmt.Errorf("validation failed: battle %q victory_to targets undefined room %q", opt.BattleID, victory)
					}
					edges[id] = append(edges[id], victory)
				}
				defeat := battle.DefeatTo
				if defeat == "" {
					defeat = defs.DefeatRoom()
				}
				if _, ok := defs.Rooms[defeat]; !ok {
					return fmt.Errorf("validation failed: battle %q defeat_to targets undefined room %q", opt.BattleID, defeat)
				}
				edges[id] = append(edges[id], defeat)
			}
			warnings = append(warnings, itemWarnings(defs, id, i, opt)...)
		}
	}
	for _, battle := range sortedBattles(defs) {
		for _, itemID := range battle.Enemy.Loot {
			if _, ok := defs.Items[itemID]; !ok {
				warnings = append(warnings, fmt.Sprintf(
					"battle %q enemy loot references unknown item %q", battle.ID, itemID))
			}
		}
		for _, entry := range battle.LootTable {
			if _, ok := defs.Items[entry.Item]; !ok {
				warnings = append(warnings, fmt.Sprintf(
					"battle %q loot table references unknown item %q", battle.ID, entry.Item))
			}
		}
	}

	// Breadth-first walk from the start room.
	reachable := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range edges[cur] {
			if !reachable[next] {
				reachable[next] = true
				queue = append(queue, next)
			}
		}
	}
	var unreachable []string
	for _, id := range roomIDs {
		if !reachable[id] {
			unreachable = append(unreachable, id)
		}
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(unreachable) > 0 {
		return fmt.Errorf("validation failed: unreachable rooms: %s", strings.Join(unreachable, ", "))
	}
	return nil
}

// itemWarnings flags item ids an option hands out that no Item/Weapon
// block defines. The engine substitutes a placeholder at runtime, so these
// are warnings rather than failures.
func itemWarnings(defs *state.Defs, roomID string, optIndex int, opt types.OptionSpec) []string {
	var out []string
	for _, itemID := range opt.GainItems {
		if _, ok := defs.Items[itemID]; !ok {
			out = append(out, fmt.Sprintf(
				"room %q option %d gains unknown item %q", roomID, optIndex, itemID))
		}
	}
	for _, entry := range opt.LootTable {
		if _, ok := defs.Items[entry.Item]; !ok {
			out = append(out, fmt.Sprintf(
				"room %q option %d loot table references unknown item %q", roomID, optIndex, entry.Item))
		}
	}
	if opt.Effects != nil {
		for _, itemID := range opt.Effects.EquipItems {
			if _, ok := defs.Items[itemID]; !ok {
				out = append(out, fmt.Sprintf(
					"room %q option %d equips unknown item %q", roomID, optIndex, itemID))
			}
		}
	}
	return out
}

func sortedBattles(defs *state.Defs) []types.BattleSpec {
	out := make([]types.BattleSpec, 0, len(defs.Battles))
	for _, b := range defs.Battles {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
