// Package rng provides the deterministic random source used for hit chance,
// critical hits, damage variance, and loot draws. Position tracking lets a
// save restore the exact stream.
package rng

import "math/rand"

// Source is the draw interface the combat, effects, and loot code depend on.
// Tests substitute a scripted implementation to force outcomes.
type Source interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// IntN returns a uniform integer in [0, n]. n < 1 returns 0.
	IntN(n int) int
}

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every call, enabling save/restore.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// New creates a deterministic RNG from a seed.
func New(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a uniform draw in [0, 1).
func (r *RNG) Float64() float64 {
	r.pos++
	return r.src.Float64()
}

// IntN returns a uniform integer in [0, n] inclusive.
func (r *RNG) IntN(n int) int {
	if n < 1 {
		return 0
	}
	r.pos++
	return r.src.Intn(n + 1)
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r.pos++
	roll := r.src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// Restore creates an RNG and advances it to the given position.
// This reproduces the exact RNG stream for save/load.
func Restore(seed int64, position int64) *RNG {
	r := New(seed)
	for i := int64(0); i < position; i++ {
		r.src.Int63()
	}
	r.pos = position
	return r
}
