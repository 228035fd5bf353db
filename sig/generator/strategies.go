package generator

import "github.com/lookbusy1344/sig-forge/sig/types"

// Strategy names the nine wildcarding strategies as a closed set of string
// constants rather than an enum, since they are surfaced directly in
// Signature.Strategy and in CLI/HTTP input.
type Strategy string

const (
	StrategyMinimal        Strategy = "minimal"
	StrategyConservative   Strategy = "conservative"
	StrategyBalanced       Strategy = "balanced"
	StrategyAggressive     Strategy = "aggressive"
	StrategyStackFocus     Strategy = "stack_focus"
	StrategyGlobalFocus    Strategy = "global_focus"
	StrategyMemoryHeavy    Strategy = "memory_heavy"
	StrategyMaxStability   Strategy = "max_stability"
	StrategyImmediatesOnly Strategy = "immediates_only"
)

// AllStrategies lists every supported strategy in a stable order, for CLI
// help text and "run every strategy" batch modes.
var AllStrategies = []Strategy{
	StrategyMinimal, StrategyConservative, StrategyBalanced, StrategyAggressive,
	StrategyStackFocus, StrategyGlobalFocus, StrategyMemoryHeavy,
	StrategyMaxStability, StrategyImmediatesOnly,
}

// fixedReasonSets holds the hardcoded reason-code sets for every strategy
// that doesn't defer to the caller's WildcardRules. aggressive and
// max_stability are absent here: both realize every candidate position
// regardless of reason, handled directly in realizesAll.
var fixedReasonSets = map[Strategy]map[types.ReasonCode]bool{
	StrategyMinimal: {
		types.ReasonRelativeJump: true,
		types.ReasonRelativeCall: true,
	},
	StrategyStackFocus: {
		types.ReasonStackOffset: true,
	},
	StrategyGlobalFocus: {
		types.ReasonGlobalAddress: true,
	},
	StrategyMemoryHeavy: {
		types.ReasonStackOffset:        true,
		types.ReasonGlobalAddress:      true,
		types.ReasonStructOffset:       true,
		types.ReasonMemoryDisplacement: true,
	},
	StrategyImmediatesOnly: {
		types.ReasonImmediate: true,
	},
}

// realizesAll reports whether a strategy wildcards every candidate position
// the Analyzer flagged, irrespective of reason code.
func realizesAll(s Strategy) bool {
	return s == StrategyAggressive || s == StrategyMaxStability
}

// shouldRealize decides whether a given candidate position should actually
// be turned into a wildcard under the named strategy.
func shouldRealize(s Strategy, reason types.ReasonCode, rules WildcardRules) bool {
	if realizesAll(s) {
		return true
	}
	if s == StrategyConservative {
		return allowedByRules(reason, rules)
	}
	if s == StrategyBalanced {
		return allowedByRules(reason, rules) || reason == types.ReasonStructOffset
	}
	if set, ok := fixedReasonSets[s]; ok {
		return set[reason]
	}
	return false
}
