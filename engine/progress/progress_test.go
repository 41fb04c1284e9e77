package progress

import "testing"

func TestLevel_KnownPoints(t *testing.T) {
	c := Default()
	cases := []struct {
		xp                      int
		level, progress, target int
	}{
		{0, 1, 0, 50},
		{49, 1, 49, 50},
		{50, 2, 0, 90},
		{100, 2, 50, 90},
		{140, 3, 0, 140},
		// Sum of the explicit list: 50+90+140+200+270 = 750.
		// Next requirement extrapolates: ceil(270 * 1.25) = 338.
		{750, 6, 0, 338},
		{751, 6, 1, 338},
	}
	for _, tc := range cases {
		level, progress, target := c.Level(tc.xp)
		if level != tc.level || progress != tc.progress || target != tc.target {
			t.Errorf("Level(%d) = (%d, %d, %d), want (%d, %d, %d)",
				tc.xp, level, progress, target, tc.level, tc.progress, tc.target)
		}
	}
}

func TestLevel_GrowthCompounds(t *testing.T) {
	c := Default()
	// Past 750+338 = 1088 the requirement compounds again:
	// ceil(270 * 1.25^2) = ceil(421.875) = 422.
	level, progress, target := c.Level(1088)
	if level != 7 || progress != 0 || target != 422 {
		t.Errorf("Level(1088) = (%d, %d, %d), want (7, 0, 422)", level, progress, target)
	}
}

func TestLevel_Monotonic(t *testing.T) {
	c := Default()
	prevLevel := 0
	for xp := 0; xp <= 5000; xp++ {
		level, progress, target := c.Level(xp)
		if level < prevLevel {
			t.Fatalf("xp=%d: level %d dropped below %d", xp, level, prevLevel)
		}
		if progress >= target {
			t.Fatalf("xp=%d: progress %d not below target %d", xp, progress, target)
		}
		prevLevel = level
	}
}

func TestLevel_NegativeXP(t *testing.T) {
	level, progress, target := Default().Level(-10)
	if level != 1 || progress != 0 || target != 50 {
		t.Errorf("Level(-10) = (%d, %d, %d), want (1, 0, 50)", level, progress, target)
	}
}

func TestLevel_EmptyCurve(t *testing.T) {
	c := Curve{GrowthFactor: 1.5}
	level, progress, target := c.Level(150)
	if level != 2 || progress != 50 || target != 100 {
		t.Errorf("Level(150) = (%d, %d, %d), want (2, 50, 100)", level, progress, target)
	}
}
