// Package types defines the shared data structures for the StoryForge engine.
// This package contains only type definitions — no logic, no methods.
package types

// Stats holds the player's core numbers. Level is derived from XP by the
// progression curve and is never stored.
type Stats struct {
	HP      int `json:"hp"`
	MaxHP   int `json:"max_hp"`
	Mana    int `json:"mana"`
	MaxMana int `json:"max_mana"`
	Stamina int `json:"stamina"`
	Attack  int `json:"attack"`
	Defence int `json:"defence"`
	XP      int `json:"xp"`
}

// Item categories.
const (
	CategoryConsumable = "consumable"
	CategoryWeapon     = "weapon"
	CategoryAmmo       = "ammo"
	CategoryQuest      = "quest"
)

// Weapon types / equipment slots.
const (
	SlotMelee  = "melee"
	SlotRanged = "ranged"
	SlotMagic  = "magic"
)

// ItemDef is the immutable definition of an item or weapon, keyed by id in
// the registry assembled at load time.
type ItemDef struct {
	ID          string
	Name        string
	Description string
	Category    string         // consumable, weapon, ammo, quest
	Effects     map[string]int // stat name → delta
	Stackable   bool
	WeaponType  string // melee or ranged; weapons only
	AmmoItem    string // item id consumed per use; ranged weapons
	AmmoPerUse  int
}

// Enemy is the static opponent attached to a battle.
type Enemy struct {
	ID      string
	Name    string
	HP      int
	Attack  int
	Defence int
	Loot    []string // unconditional drops on victory, in order
}

// ReqKind discriminates the closed requirement expression vocabulary.
type ReqKind int

const (
	ReqFlag ReqKind = iota
	ReqNotFlag
	ReqMinFlags
	ReqAlertBelow
	ReqAll
	ReqAny
)

// Requirement is one node of a requirement expression tree. The vocabulary
// is closed: the loader only constructs these kinds, so a malformed shape is
// a load-time error rather than a silently-true predicate.
type Requirement struct {
	Kind       ReqKind
	Flag       string         // ReqFlag, ReqNotFlag
	Min        map[string]int // ReqMinFlags: flag → threshold
	AlertBelow int            // ReqAlertBelow
	Sub        []*Requirement // ReqAll, ReqAny
}

// RollCheck is the probabilistic check inside an effects block.
type RollCheck struct {
	Pass          float64 // chance of success in [0,1]
	FailText      string
	SuccessText   string
	OnFailAlert   int
	HPDeltaOnFail int
}

// EffectSpec is the structured effects descriptor attached to an option.
// Fields are applied in a fixed order so later steps observe earlier
// mutations; see effects.Apply.
type EffectSpec struct {
	EquipItems    []string       // weapon ids to equip silently
	TimerRooms    int            // rooms-remaining for flags set alongside
	Set           map[string]int // flag → value
	Inc           map[string]int // flag → delta
	EnergyCost    int            // stamina drain, floored at 0
	Alert         int            // alert level delta
	EnemyStunned  *int           // sets the enemy_stunned flag for the next battle
	RollCheck     *RollCheck
	HPDeltaOnFail int  // legacy top-level form, additive with RollCheck's
	AlertOnFail   *int // legacy alternate key applied after a failed roll
}

// LootEntry is one row of an ordered loot table.
type LootEntry struct {
	Item      string
	Chance    float64 // award probability per attempt
	HasChance bool    // distinguishes "absent" (guaranteed) from an explicit value
	Unique    bool
	UniqueKey string // defaults to Item when empty
}

// OptionSpec is one branch choice inside a room. At most one of To/BattleID
// is the primary navigation outcome; both absent means a no-op option.
type OptionSpec struct {
	Label           string
	To              string
	BattleID        string
	Hint            string
	Require         *Requirement
	RequiresFlag    string // legacy shorthand, checked before Require
	RequiresNotFlag string
	GainItems       []string
	SetFlag         string
	ClearFlag       string
	Effects         *EffectSpec
	LootTable       []LootEntry
	LootRolls       int
	RepeatLimit     int // 0 = unlimited battle repeats
	RepeatMessage   string
	RepeatKey       string
	SoundKey        string
}

// RoomSpec is the static definition of one room.
type RoomSpec struct {
	ID            string
	Title         string
	Body          string
	BackgroundKey string
	MusicKey      string
	EnterSoundKey string
	Options       []OptionSpec
}

// Battle action kinds.
const (
	ActionAttack     = "attack"
	ActionSkillCheck = "skill_check"
	ActionCast       = "cast"
)

// BattleAction is one choice offered during a battle turn.
type BattleAction struct {
	Kind               string
	Label              string
	Bonus              int
	Variance           int
	Stat               string // skill_check only
	GTE                int    // skill_check threshold
	SuccessDamage      int
	FailDamage         int
	SuccessHeal        int
	FailHeal           int
	ManaCost           int
	SoundKey           string
	RequiresWeaponType string
	RequiresWeaponID   string
	AmmoItem           string
	AmmoCost           int
	HitChance          float64 // probability the action lands; the loader defaults an absent key to 1
	ShowIfUnavailable  bool
}

// BattleSpec is the static definition of one battle encounter.
type BattleSpec struct {
	ID          string
	Title       string
	Enemy       Enemy
	Actions     []BattleAction
	VictoryTo   string
	DefeatTo    string
	VictoryText string
	DefeatText  string
	LootTable   []LootEntry
	LootRolls   int
}

// GameDef holds the game header and tuning declared in content.
type GameDef struct {
	Title          string
	Byline         string
	Start          string // starting room id
	DefeatRoom     string // fallback after a lost battle; defaults to Start
	StartingStats  Stats
	DamageVariance int
	CritChance     float64
	CritMultiplier float64
	XPPerVictory   int
	ManaPerRoom    float64
	XPRequirements []int
	XPGrowthFactor float64
}

// Encounter is the transient per-battle state, alive only while a battle
// is running.
type Encounter struct {
	Spec      *BattleSpec
	EnemyHP   int
	OptionTo  string // fallback victory target from the triggering option
	RepeatKey string
}

// State is the complete mutable session state, mutated only by the engine
// and its effect/combat subpackages.
type State struct {
	Stats       Stats
	Inventory   map[string]int    // item id → count ≥ 1
	Equipment   map[string]string // slot → item id ("" = empty)
	Flags       map[string]int
	TimedFlags  map[string]int // flag → rooms remaining
	AlertLevel  int
	RoomID      string
	Battle      *Encounter
	RepeatCount map[string]int // battle repeat key → fights won
	UniqueLoot  map[string]bool
	ItemsUsed   []string // consumable ids spent, in order

	ManaReserve float64 // fractional mana regeneration accumulator
}

// OptionView is one selectable entry handed to a front-end.
type OptionView struct {
	Label   string
	Enabled bool
}

// Result is what a public engine operation returns to the presentation
// layer: the text to show, the selectable options, and opaque asset keys.
type Result struct {
	Title         string
	Body          string
	Lines         []string // appended narration below the body
	Options       []OptionView
	Stats         Stats
	Level         int
	XPProgress    int
	XPTarget      int
	BackgroundKey string
	MusicKey      string
	SoundKey      string // one-shot effect for this transition, if any
}
