// Package progress maps cumulative experience to a level, the progress
// within that level, and the target for the next one.
package progress

import "math"

// Default curve values. Content can override both through the game header.
var (
	DefaultRequirements = []int{50, 90, 140, 200, 270}
	DefaultGrowthFactor = 1.25
)

// Curve describes a progression curve: explicit per-level requirements for
// the early levels, then the last requirement scaled by GrowthFactor for
// each additional level.
type Curve struct {
	Requirements []int
	GrowthFactor float64
}

// Default returns the built-in curve.
func Default() Curve {
	return Curve{Requirements: DefaultRequirements, GrowthFactor: DefaultGrowthFactor}
}

// requirement returns the XP needed to clear the level at the given index,
// counting from 0 for level 1 → 2.
func (c Curve) requirement(index int) int {
	if index < len(c.Requirements) {
		v := c.Requirements[index]
		if v < 1 {
			return 1
		}
		return v
	}
	if len(c.Requirements) == 0 {
		return 100
	}
	steps := index - len(c.Requirements) + 1
	base := float64(c.Requirements[len(c.Requirements)-1])
	req := int(math.Ceil(base * math.Pow(c.GrowthFactor, float64(steps))))
	if req < 1 {
		return 1
	}
	return req
}

// Level walks the curve for the given total XP and returns the level
// reached, the XP progressed into it, and the XP target for the next level.
// Progress is always strictly below target.
func (c Curve) Level(totalXP int) (level, progress, target int) {
	remaining := totalXP
	if remaining < 0 {
		remaining = 0
	}
	level = 1
	for index := 0; ; index++ {
		req := c.requirement(index)
		if remaining < req {
			return level, remaining, req
		}
		remaining -= req
		level++
	}
}
