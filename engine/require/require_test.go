package require

import (
	"testing"

	"github.com/calder/storyforge/types"
)

func newState() *types.State {
	return &types.State{Flags: map[string]int{}}
}

func TestEval_Nil(t *testing.T) {
	if !Eval(nil, newState()) {
		t.Error("nil requirement should be true")
	}
}

func TestEval_FlagAndNotFlag(t *testing.T) {
	s := newState()
	flag := &types.Requirement{Kind: types.ReqFlag, Flag: "door_open"}
	notFlag := &types.Requirement{Kind: types.ReqNotFlag, Flag: "door_open"}

	// not_flag is the exact complement of flag, set or not.
	for _, set := range []bool{false, true} {
		if set {
			s.Flags["door_open"] = 1
		} else {
			delete(s.Flags, "door_open")
		}
		if Eval(flag, s) == Eval(notFlag, s) {
			t.Errorf("set=%v: flag and not_flag agree", set)
		}
	}

	s.Flags["door_open"] = 0
	if Eval(flag, s) {
		t.Error("zero-valued flag should not satisfy flag check")
	}
	if !Eval(notFlag, s) {
		t.Error("zero-valued flag should satisfy not_flag check")
	}
}

func TestEval_MinFlags(t *testing.T) {
	s := newState()
	s.Flags["kills"] = 3
	s.Flags["keys"] = 1
	req := &types.Requirement{Kind: types.ReqMinFlags, Min: map[string]int{"kills": 3, "keys": 1}}
	if !Eval(req, s) {
		t.Error("thresholds met, want true")
	}
	s.Flags["kills"] = 2
	if Eval(req, s) {
		t.Error("kills below threshold, want false")
	}
}

func TestEval_AlertBelow(t *testing.T) {
	s := newState()
	req := &types.Requirement{Kind: types.ReqAlertBelow, AlertBelow: 3}
	s.AlertLevel = 2
	if !Eval(req, s) {
		t.Error("alert 2 < 3, want true")
	}
	s.AlertLevel = 3
	if Eval(req, s) {
		t.Error("alert 3 is not below 3, want false")
	}
}

func TestEval_EmptyAllAny(t *testing.T) {
	s := newState()
	if !Eval(&types.Requirement{Kind: types.ReqAll}, s) {
		t.Error("empty all should be true")
	}
	if Eval(&types.Requirement{Kind: types.ReqAny}, s) {
		t.Error("empty any should be false")
	}
}

func TestEval_Nested(t *testing.T) {
	s := newState()
	s.Flags["a"] = 1
	req := &types.Requirement{
		Kind: types.ReqAll,
		Sub: []*types.Requirement{
			{Kind: types.ReqFlag, Flag: "a"},
			{Kind: types.ReqAny, Sub: []*types.Requirement{
				{Kind: types.ReqFlag, Flag: "b"},
				{Kind: types.ReqNotFlag, Flag: "c"},
			}},
		},
	}
	if !Eval(req, s) {
		t.Error("a set, c unset: want true")
	}
	s.Flags["c"] = 1
	if Eval(req, s) {
		t.Error("c set, b unset: any branch fails, want false")
	}
	s.Flags["b"] = 1
	if !Eval(req, s) {
		t.Error("b set: any branch passes, want true")
	}
}

func TestOptionVisible_Shorthands(t *testing.T) {
	s := newState()
	opt := &types.OptionSpec{Label: "x", RequiresFlag: "gate_open"}
	if OptionVisible(opt, s) {
		t.Error("requires_flag unset, want hidden")
	}
	s.Flags["gate_open"] = 1
	if !OptionVisible(opt, s) {
		t.Error("requires_flag set, want visible")
	}

	opt = &types.OptionSpec{Label: "x", RequiresNotFlag: "gate_open"}
	if OptionVisible(opt, s) {
		t.Error("requires_not_flag with flag set, want hidden")
	}

	// The shorthand and the expression tree must both pass.
	s.Flags["a"] = 1
	opt = &types.OptionSpec{
		Label:        "x",
		RequiresFlag: "a",
		Require:      &types.Requirement{Kind: types.ReqFlag, Flag: "b"},
	}
	if OptionVisible(opt, s) {
		t.Error("tree unsatisfied, want hidden")
	}
	s.Flags["b"] = 1
	if !OptionVisible(opt, s) {
		t.Error("both satisfied, want visible")
	}
}
