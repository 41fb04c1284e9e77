// Package loot resolves ordered probability tables into awarded item ids.
// Uniqueness tracking lives in the session's unique-award set, so a unique
// entry can never drop twice within one playthrough.
package loot

import (
	"github.com/calder/storyforge/engine/rng"
	"github.com/calder/storyforge/types"
)

// Roll makes max(1, rolls) independent attempts against the table. Each
// attempt scans entries in declared order and stops at the first award, so
// an attempt yields at most one item. Unique entries already recorded in
// awards are skipped and the scan continues past them.
func Roll(table []types.LootEntry, rolls int, awards map[string]bool, src rng.Source) []string {
	if len(table) == 0 {
		return nil
	}
	attempts := rolls
	if attempts < 1 {
		attempts = 1
	}
	var won []string
	for i := 0; i < attempts; i++ {
		for _, entry := range table {
			if entry.Item == "" {
				continue
			}
			chance := entry.Chance
			if !entry.HasChance {
				chance = 1.0
			}
			if chance < 0 {
				chance = 0
			} else if chance > 1 {
				chance = 1
			}
			if chance < 1.0 && src.Float64() > chance {
				continue
			}
			if entry.Unique {
				key := entry.UniqueKey
				if key == "" {
					key = entry.Item
				}
				if awards[key] {
					continue
				}
				awards[key] = true
			}
			won = append(won, entry.Item)
			break
		}
	}
	return won
}
