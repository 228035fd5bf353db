package generator

import (
	"github.com/lookbusy1344/sig-forge/sig/analyzer"
	"github.com/lookbusy1344/sig-forge/sig/types"
)

// reasonForPosition sub-classifies a single candidate byte position into one
// of the seven fine-grained reason codes, combining the Analyzer's coarse
// ByteCategory with the instruction's type and operand text. The result
// does not depend on the strategy or the wildcard_rules; those are applied
// afterward by shouldRealize.
func reasonForPosition(inst types.Instruction, pos int) (types.ReasonCode, bool) {
	if pos < 0 || pos >= len(inst.ByteCategories) {
		return 0, false
	}
	switch inst.ByteCategories[pos] {
	case types.CategoryRelativeOffset:
		if inst.Type == types.TypeCall {
			return types.ReasonRelativeCall, true
		}
		return types.ReasonRelativeJump, true
	case types.CategoryImmediate:
		return types.ReasonImmediate, true
	case types.CategoryDisplacement:
		switch {
		case analyzer.IsStackOffset(inst.OperandsNormalized):
			return types.ReasonStackOffset, true
		case analyzer.IsGlobalAddress(inst.OperandsNormalized):
			return types.ReasonGlobalAddress, true
		case analyzer.IsStructOffset(inst.OperandsNormalized):
			return types.ReasonStructOffset, true
		default:
			return types.ReasonMemoryDisplacement, true
		}
	}
	return 0, false
}

// allowedByRules reports whether a reason code is enabled under the given
// WildcardRules, used by the conservative and balanced strategies.
// MemoryDisplacements is the superset rule: it enables every memory
// displacement reason, not only the unclassified one.
func allowedByRules(r types.ReasonCode, rules WildcardRules) bool {
	switch r {
	case types.ReasonRelativeJump:
		return rules.RelativeJumps
	case types.ReasonRelativeCall:
		return rules.RelativeCalls
	case types.ReasonStackOffset:
		return rules.StackOffsets || rules.MemoryDisplacements
	case types.ReasonGlobalAddress:
		return rules.GlobalAddresses || rules.MemoryDisplacements
	case types.ReasonImmediate:
		return rules.Immediates
	case types.ReasonStructOffset:
		return rules.StructOffsets || rules.MemoryDisplacements
	case types.ReasonMemoryDisplacement:
		return rules.MemoryDisplacements
	}
	return false
}
