package rng

import "testing"

func TestDeterminism(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("draw %d: %v != %v", i, av, bv)
		}
	}
}

func TestIntN_Bounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := r.IntN(3)
		if v < 0 || v > 3 {
			t.Fatalf("IntN(3) = %d, want 0..3 inclusive", v)
		}
	}
}

func TestIntN_Inclusive(t *testing.T) {
	// The upper bound must actually be reachable.
	r := New(1)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		seen[r.IntN(2)] = true
	}
	for v := 0; v <= 2; v++ {
		if !seen[v] {
			t.Errorf("IntN(2) never produced %d", v)
		}
	}
}

func TestIntN_Degenerate(t *testing.T) {
	r := New(1)
	if v := r.IntN(0); v != 0 {
		t.Errorf("IntN(0) = %d, want 0", v)
	}
	if v := r.IntN(-5); v != 0 {
		t.Errorf("IntN(-5) = %d, want 0", v)
	}
}

func TestWeightedSelect(t *testing.T) {
	r := New(3)
	if v := r.WeightedSelect([]int{5}); v != 0 {
		t.Errorf("single weight select = %d, want 0", v)
	}

	// A zero-weight entry must never be picked.
	counts := map[int]int{}
	for i := 0; i < 1000; i++ {
		counts[r.WeightedSelect([]int{1, 0, 1})]++
	}
	if counts[1] != 0 {
		t.Errorf("zero-weight index selected %d times", counts[1])
	}
	if counts[0] == 0 || counts[2] == 0 {
		t.Errorf("positive weights starved: %v", counts)
	}
}

func TestPosition(t *testing.T) {
	r := New(9)
	r.Float64()
	r.IntN(10)
	r.Float64()
	if r.Position() != 3 {
		t.Errorf("Position = %d, want 3", r.Position())
	}
	if r.Seed() != 9 {
		t.Errorf("Seed = %d, want 9", r.Seed())
	}
}

func TestRestore(t *testing.T) {
	a := New(11)
	for i := 0; i < 5; i++ {
		a.Float64()
	}
	b := Restore(11, a.Position())
	if b.Position() != a.Position() {
		t.Fatalf("restored position = %d, want %d", b.Position(), a.Position())
	}
	for i := 0; i < 10; i++ {
		if av, bv := a.Float64(), b.Float64(); av != bv {
			t.Fatalf("post-restore draw %d: %v != %v", i, av, bv)
		}
	}
}
