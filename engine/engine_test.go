package engine

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/calder/storyforge/engine/save"
	"github.com/calder/storyforge/engine/state"
	"github.com/calder/storyforge/types"
)

func navDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title: "Nav Test",
			Start: "start",
			StartingStats: types.Stats{
				HP: 10, MaxHP: 10, Mana: 5, MaxMana: 5, Stamina: 5, Attack: 1,
			},
			DamageVariance: 2,
			XPPerVictory:   5,
			ManaPerRoom:    0.25,
		},
		Items: map[string]types.ItemDef{
			"sword": {
				ID: "sword", Name: "Sword", Category: types.CategoryWeapon,
				WeaponType: types.SlotMelee, Effects: map[string]int{"attack": 2},
			},
			"draught": {
				ID: "draught", Name: "Draught", Category: types.CategoryConsumable,
				Effects: map[string]int{"hp": 4},
			},
			"arrows": {ID: "arrows", Name: "Arrows", Category: types.CategoryAmmo},
		},
		Rooms: map[string]types.RoomSpec{
			"start": {
				ID: "start", Title: "Start", Body: "The start.",
				BackgroundKey: "bg_start",
				Options: []types.OptionSpec{
					{Label: "Go east", To: "east"},
					{Label: "Pull the lever", SetFlag: "lever"},
					{Label: "Enter the vault", To: "east", RequiresFlag: "lever", Hint: "needs lever"},
				},
			},
			"east": {
				ID: "east", Title: "East", Body: "The east room.",
				Options: []types.OptionSpec{
					{Label: "Go back", To: "start"},
				},
			},
			"empty": {ID: "empty", Title: "Empty", Body: "Nothing here."},
		},
		Battles: map[string]types.BattleSpec{},
	}
}

func TestStart(t *testing.T) {
	eng := New(navDefs(), 1)
	r := eng.Start()
	if r.Title != "Start" {
		t.Errorf("Title = %q, want Start", r.Title)
	}
	if r.BackgroundKey != "bg_start" {
		t.Errorf("BackgroundKey = %q", r.BackgroundKey)
	}
	if len(r.Options) != 2 {
		t.Fatalf("options = %v, want 2 (gated option hidden)", r.Options)
	}
	if r.Options[0].Label != "Go east" {
		t.Errorf("options[0] = %q", r.Options[0].Label)
	}
}

func TestChoose_Transition(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	r := eng.Choose(0)
	if r.Title != "East" {
		t.Errorf("Title = %q, want East", r.Title)
	}
	if eng.State.RoomID != "east" {
		t.Errorf("RoomID = %q, want east", eng.State.RoomID)
	}
}

func TestChoose_FlagRevealsOption(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	r := eng.Choose(1) // pull the lever
	if eng.State.Flags["lever"] != 1 {
		t.Fatalf("lever flag = %d", eng.State.Flags["lever"])
	}
	if len(r.Options) != 3 {
		t.Fatalf("options = %v, want 3 after refresh", r.Options)
	}
	if r.Options[2].Label != "Enter the vault (needs lever)" {
		t.Errorf("options[2] = %q, want hint suffix", r.Options[2].Label)
	}
}

func TestChoose_OutOfRangeIgnored(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	r := eng.Choose(99)
	if r.Title != "Start" {
		t.Errorf("out-of-range choice mutated state: %q", r.Title)
	}
	r = eng.Choose(-1)
	if r.Title != "Start" {
		t.Errorf("negative choice mutated state: %q", r.Title)
	}
}

func TestFillerOption(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	r := eng.Go("empty")
	if len(r.Options) != 1 || r.Options[0].Label != "Catch your breath." {
		t.Fatalf("options = %v, want the filler", r.Options)
	}
	r = eng.Choose(0)
	if eng.State.RoomID != "empty" {
		t.Errorf("filler moved the player to %q", eng.State.RoomID)
	}
}

func TestGo_MissingRoom(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	r := eng.Go("nowhere")
	if r.Body != `Room "nowhere" is missing.` {
		t.Errorf("Body = %q", r.Body)
	}
	if eng.State.RoomID != "start" {
		t.Errorf("RoomID = %q, want unchanged", eng.State.RoomID)
	}
}

func TestTimedFlag_ExpiresOnSecondTransition(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	eng.State.Flags["warmth"] = 1
	eng.State.TimedFlags["warmth"] = 2

	r := eng.Go("east")
	for _, line := range r.Lines {
		if strings.Contains(line, "fades") {
			t.Fatalf("flag expired on first transition: %v", r.Lines)
		}
	}
	if eng.State.TimedFlags["warmth"] != 1 {
		t.Errorf("timer = %d, want 1", eng.State.TimedFlags["warmth"])
	}

	r = eng.Go("start")
	found := false
	for _, line := range r.Lines {
		if line == "Warmth fades." {
			found = true
		}
	}
	if !found {
		t.Errorf("Lines = %v, want fade message on second transition", r.Lines)
	}
	if _, ok := eng.State.Flags["warmth"]; ok {
		t.Error("flag still set after expiry")
	}
	if _, ok := eng.State.TimedFlags["warmth"]; ok {
		t.Error("timed entry still present after expiry")
	}
}

func TestManaRegen_AccumulatorCrossesOnFourth(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	eng.State.Stats.Mana = 0

	rooms := []string{"east", "start", "east", "start"}
	for i, room := range rooms {
		eng.Go(room)
		want := 0
		if i == 3 {
			want = 1
		}
		if eng.State.Stats.Mana != want {
			t.Fatalf("after transition %d: mana = %d, want %d", i+1, eng.State.Stats.Mana, want)
		}
	}
	if eng.State.ManaReserve != 0 {
		t.Errorf("reserve = %v, want 0 after conversion", eng.State.ManaReserve)
	}
}

func TestManaRegen_ClampsAtMax(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	for i := 0; i < 8; i++ {
		eng.Go("east")
		eng.Go("start")
	}
	if eng.State.Stats.Mana != 5 {
		t.Errorf("mana = %d, want clamp at max 5", eng.State.Stats.Mana)
	}
}

func TestUseItem_Consumable(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	eng.State.Stats.HP = 5
	eng.State.Inventory["draught"] = 1

	r := eng.UseItem("draught")
	if eng.State.Stats.HP != 9 {
		t.Errorf("hp = %d, want 9", eng.State.Stats.HP)
	}
	if _, ok := eng.State.Inventory["draught"]; ok {
		t.Error("consumable not spent")
	}
	if len(eng.State.ItemsUsed) != 1 || eng.State.ItemsUsed[0] != "draught" {
		t.Errorf("ItemsUsed = %v", eng.State.ItemsUsed)
	}
	if !containsLine(r.Lines, "Used Draught.") {
		t.Errorf("Lines = %v", r.Lines)
	}
}

func TestUseItem_Weapon(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	eng.State.Inventory["sword"] = 1
	attack := eng.State.Stats.Attack

	eng.UseItem("sword")
	if eng.State.Equipment[types.SlotMelee] != "sword" {
		t.Errorf("equipment = %v", eng.State.Equipment)
	}
	if eng.State.Stats.Attack != attack+2 {
		t.Errorf("attack = %d, want %d", eng.State.Stats.Attack, attack+2)
	}

	r := eng.UseItem("sword")
	if !containsLine(r.Lines, "Sword is already equipped.") {
		t.Errorf("Lines = %v", r.Lines)
	}
}

func TestUseItem_AmmoRefused(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	eng.State.Inventory["arrows"] = 3
	r := eng.UseItem("arrows")
	if eng.State.Inventory["arrows"] != 3 {
		t.Error("ammo count changed")
	}
	if !containsLine(r.Lines, "Ammo is spent automatically by ranged weapons during combat.") {
		t.Errorf("Lines = %v", r.Lines)
	}
}

func TestUseItem_Missing(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	r := eng.UseItem("ghost")
	if !containsLine(r.Lines, "You don't have that.") {
		t.Errorf("Lines = %v", r.Lines)
	}
}

func TestMaxOptionsCap(t *testing.T) {
	defs := navDefs()
	room := defs.Rooms["start"]
	room.Options = nil
	for _, label := range []string{"A", "B", "C", "D", "E", "F"} {
		room.Options = append(room.Options, types.OptionSpec{Label: label})
	}
	defs.Rooms["start"] = room

	eng := New(defs, 1)
	r := eng.Start()
	if len(r.Options) != MaxOptions {
		t.Errorf("options = %d, want cap %d", len(r.Options), MaxOptions)
	}
}

func TestSnapshotResume(t *testing.T) {
	eng := New(navDefs(), 1)
	eng.Start()
	eng.Choose(0) // east
	eng.State.Flags["lever"] = 1
	eng.State.Inventory["sword"] = 1
	snap := eng.Snapshot()

	eng2 := New(navDefs(), 1)
	r := eng2.Resume(snap)
	if r.Title != "East" {
		t.Errorf("resumed title = %q, want East", r.Title)
	}
	if eng2.State.Flags["lever"] != 1 || eng2.State.Inventory["sword"] != 1 {
		t.Errorf("resumed state incomplete: flags=%v inv=%v", eng2.State.Flags, eng2.State.Inventory)
	}
}

func TestSnapshotRestoresRNGStream(t *testing.T) {
	eng := New(navDefs(), 42)
	eng.Start()
	eng.RNG.IntN(7)
	eng.RNG.Float64()

	snap := eng.Snapshot()
	if snap.RNGSeed != 42 || snap.RNGPos != 2 {
		t.Fatalf("snapshot rng = seed %d pos %d, want 42/2", snap.RNGSeed, snap.RNGPos)
	}
	path := filepath.Join(t.TempDir(), "save.json")
	if err := save.Write(snap, path); err != nil {
		t.Fatal(err)
	}
	data, ok := save.Read(path)
	if !ok {
		t.Fatal("snapshot did not read back")
	}

	eng2 := New(navDefs(), 1)
	eng2.Resume(data)
	for i := 0; i < 4; i++ {
		if a, b := eng.RNG.IntN(7), eng2.RNG.IntN(7); a != b {
			t.Fatalf("draw %d after resume: %d != %d", i, a, b)
		}
	}
}

func TestNoOptionOutcomeNarrates(t *testing.T) {
	defs := navDefs()
	room := defs.Rooms["start"]
	room.Options = []types.OptionSpec{{Label: "Ponder"}}
	defs.Rooms["start"] = room

	eng := New(defs, 1)
	eng.Start()
	r := eng.Choose(0)
	if !containsLine(r.Lines, "You wait, but nothing happens.") {
		t.Errorf("Lines = %v", r.Lines)
	}
}

func TestPickBattle(t *testing.T) {
	defs := navDefs()
	defs.Battles["a"] = types.BattleSpec{ID: "a"}
	eng := New(defs, 1)

	battle, err := eng.PickBattle([]string{"a"}, nil)
	if err != nil {
		t.Fatalf("PickBattle failed: %v", err)
	}
	if battle.ID != "a" {
		t.Errorf("picked %q", battle.ID)
	}

	if _, err := eng.PickBattle([]string{"a", "b"}, []int{1}); err == nil {
		t.Error("mismatched weights should error")
	}

	eng2 := New(navDefs(), 1)
	if _, err := eng2.PickBattle(nil, nil); err == nil {
		t.Error("empty pool should error")
	}
}

func TestSoundKey_OneShot(t *testing.T) {
	defs := navDefs()
	room := defs.Rooms["east"]
	room.EnterSoundKey = "door"
	defs.Rooms["east"] = room

	eng := New(defs, 1)
	eng.Start()
	r := eng.Choose(0)
	if r.SoundKey != "door" {
		t.Errorf("SoundKey = %q, want door", r.SoundKey)
	}
	if r := eng.View(); r.SoundKey != "" {
		t.Errorf("SoundKey = %q, want cleared on next view", r.SoundKey)
	}
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}
	return false
}
