package save

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calder/storyforge/types"
)

func sampleState() *types.State {
	return &types.State{
		RoomID: "armory",
		Stats:  types.Stats{HP: 7, MaxHP: 10, Mana: 2, MaxMana: 5, Stamina: 4, Attack: 3, XP: 55},
		Inventory: map[string]int{
			"arrows": 5,
			"sword":  1,
		},
		Flags:       map[string]int{"gate_open": 1},
		TimedFlags:  map[string]int{"warmth": 2},
		RepeatCount: map[string]int{"hall:fight": 2},
		UniqueLoot:  map[string]bool{"relic": true},
		ItemsUsed:   []string{"healing_draught"},
		AlertLevel:  3,
	}
}

func TestRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "slot.json")
	s := sampleState()

	if err := Write(Snapshot(s), path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	d, ok := Read(path)
	if !ok {
		t.Fatal("Read reported no save")
	}

	restored := &types.State{
		TimedFlags:  map[string]int{},
		RepeatCount: map[string]int{},
	}
	Apply(d, restored)

	if restored.RoomID != s.RoomID {
		t.Errorf("RoomID = %q, want %q", restored.RoomID, s.RoomID)
	}
	if restored.Stats != s.Stats {
		t.Errorf("Stats = %+v, want %+v", restored.Stats, s.Stats)
	}
	if restored.Inventory["arrows"] != 5 || restored.Inventory["sword"] != 1 {
		t.Errorf("Inventory = %v", restored.Inventory)
	}
	if restored.Flags["gate_open"] != 1 {
		t.Errorf("Flags = %v", restored.Flags)
	}
	if restored.RepeatCount["hall:fight"] != 2 {
		t.Errorf("RepeatCount = %v", restored.RepeatCount)
	}
	if !restored.UniqueLoot["relic"] {
		t.Errorf("UniqueLoot = %v", restored.UniqueLoot)
	}
	if len(restored.ItemsUsed) != 1 || restored.ItemsUsed[0] != "healing_draught" {
		t.Errorf("ItemsUsed = %v", restored.ItemsUsed)
	}

	// Transient per-session fields are not persisted.
	if restored.AlertLevel != 0 {
		t.Errorf("AlertLevel = %d, want 0", restored.AlertLevel)
	}
	if len(restored.TimedFlags) != 0 {
		t.Errorf("TimedFlags = %v, want empty", restored.TimedFlags)
	}
}

func TestRead_Missing(t *testing.T) {
	if d, ok := Read(filepath.Join(t.TempDir(), "nope.json")); ok || d != nil {
		t.Error("missing file should yield no save")
	}
}

func TestRead_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if d, ok := Read(path); ok || d != nil {
		t.Error("malformed file should yield no save")
	}
}

func TestRead_FillsNilMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.json")
	if err := os.WriteFile(path, []byte(`{"room_id":"start"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	d, ok := Read(path)
	if !ok {
		t.Fatal("Read failed")
	}
	if d.Inventory == nil || d.Flags == nil {
		t.Error("maps should be non-nil after Read")
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slot.json")
	if err := Write(&Data{RoomID: "start"}, path); err != nil {
		t.Fatal(err)
	}
	if err := Delete(path); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists")
	}
	// Deleting a missing save is not an error.
	if err := Delete(path); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
}
