// Package require evaluates requirement expression trees against the
// current game state. Expressions are a closed vocabulary built by the
// loader; evaluation is a pure predicate with no side effects.
package require

import "github.com/calder/storyforge/types"

// Eval evaluates a requirement tree. A nil expression is vacuously true.
func Eval(expr *types.Requirement, s *types.State) bool {
	if expr == nil {
		return true
	}
	switch expr.Kind {
	case types.ReqFlag:
		return s.Flags[expr.Flag] > 0

	case types.ReqNotFlag:
		return s.Flags[expr.Flag] == 0

	case types.ReqMinFlags:
		for flag, threshold := range expr.Min {
			if s.Flags[flag] < threshold {
				return false
			}
		}
		return true

	case types.ReqAlertBelow:
		return s.AlertLevel < expr.AlertBelow

	case types.ReqAll:
		// All of nothing is true.
		for _, sub := range expr.Sub {
			if !Eval(sub, s) {
				return false
			}
		}
		return true

	case types.ReqAny:
		// Any of nothing is false.
		for _, sub := range expr.Sub {
			if Eval(sub, s) {
				return true
			}
		}
		return false

	default:
		return true
	}
}

// OptionVisible reports whether an option should be offered: the legacy
// requires_flag / requires_not_flag shorthands are checked first, then the
// expression tree. All must pass.
func OptionVisible(opt *types.OptionSpec, s *types.State) bool {
	if opt.RequiresFlag != "" && s.Flags[opt.RequiresFlag] <= 0 {
		return false
	}
	if opt.RequiresNotFlag != "" && s.Flags[opt.RequiresNotFlag] > 0 {
		return false
	}
	return Eval(opt.Require, s)
}
