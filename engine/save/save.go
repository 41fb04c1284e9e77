// Package save implements the flat JSON snapshot of a play session. A
// missing or unreadable file is treated as "no save", never an error the
// caller has to distinguish.
package save

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/calder/storyforge/types"
)

// Data is the serialized snapshot format.
type Data struct {
	RoomID         string         `json:"room_id"`
	Stats          types.Stats    `json:"stats"`
	Inventory      map[string]int `json:"inventory"`
	Flags          map[string]int `json:"flags"`
	Counters       map[string]int `json:"counters,omitempty"`
	StoryItemsUsed []string       `json:"story_items_used,omitempty"`
	UniqueLoot     []string       `json:"unique_loot,omitempty"`
	RNGSeed        int64          `json:"rng_seed,omitempty"`
	RNGPos         int64          `json:"rng_pos,omitempty"`
}

// Snapshot captures the persistable slice of a game state.
func Snapshot(s *types.State) *Data {
	d := &Data{
		RoomID:    s.RoomID,
		Stats:     s.Stats,
		Inventory: s.Inventory,
		Flags:     s.Flags,
	}
	if len(s.RepeatCount) > 0 {
		d.Counters = s.RepeatCount
	}
	if len(s.ItemsUsed) > 0 {
		d.StoryItemsUsed = s.ItemsUsed
	}
	if len(s.UniqueLoot) > 0 {
		keys := make([]string, 0, len(s.UniqueLoot))
		for k := range s.UniqueLoot {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d.UniqueLoot = keys
	}
	return d
}

// Write serializes a snapshot to the given path, creating parent
// directories as needed.
func Write(d *Data, path string) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Read loads a snapshot. A missing file or malformed content yields
// (nil, false): no save, not a crash.
func Read(path string) (*Data, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, false
	}
	if d.Inventory == nil {
		d.Inventory = map[string]int{}
	}
	if d.Flags == nil {
		d.Flags = map[string]int{}
	}
	return &d, true
}

// Apply restores a snapshot onto a state. Fields the snapshot does not
// carry (timed flags, alert level, active battle) keep their fresh-session
// values.
func Apply(d *Data, s *types.State) {
	s.RoomID = d.RoomID
	s.Stats = d.Stats
	s.Inventory = d.Inventory
	s.Flags = d.Flags
	if d.Counters != nil {
		s.RepeatCount = d.Counters
	}
	s.ItemsUsed = append([]string(nil), d.StoryItemsUsed...)
	s.UniqueLoot = map[string]bool{}
	for _, key := range d.UniqueLoot {
		s.UniqueLoot[key] = true
	}
}

// Delete removes a save file if it exists.
func Delete(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
