package generator

import (
	"strconv"
	"strings"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

// SpecialToken is one of the "all*" special target-selection tokens.
type SpecialToken int

const (
	SpecialNone SpecialToken = iota
	SpecialAll
	SpecialAllLabeled
	SpecialAllJumps
	SpecialAllCalls
)

// TargetSelection is a tagged sum type: either an explicit list of target
// identifiers, or one of the special tokens. Only one of the two fields is
// meaningful at a time.
type TargetSelection struct {
	Explicit []string
	Special  SpecialToken
}

// Targets builds an explicit TargetSelection from one or more identifiers.
// Each identifier is a literal label, "jump@<address>", "call@<address>",
// or a decimal instruction index.
func Targets(ids ...string) TargetSelection {
	return TargetSelection{Explicit: ids}
}

// AllTargets selects every instruction as its own anchor.
func AllTargets() TargetSelection { return TargetSelection{Special: SpecialAll} }

// AllLabeledTargets selects every instruction that carries a label.
func AllLabeledTargets() TargetSelection { return TargetSelection{Special: SpecialAllLabeled} }

// AllJumpsTargets selects every conditional or unconditional jump.
func AllJumpsTargets() TargetSelection { return TargetSelection{Special: SpecialAllJumps} }

// AllCallsTargets selects every call instruction.
func AllCallsTargets() TargetSelection { return TargetSelection{Special: SpecialAllCalls} }

// ParseTargetToken parses a single caller-supplied token into a
// TargetSelection, recognizing the four special tokens and otherwise
// treating it as one explicit identifier.
func ParseTargetToken(token string) TargetSelection {
	switch token {
	case "all":
		return AllTargets()
	case "all_labeled":
		return AllLabeledTargets()
	case "all_jumps":
		return AllJumpsTargets()
	case "all_calls":
		return AllCallsTargets()
	default:
		return Targets(token)
	}
}

type resolvedTarget struct {
	ID    string
	Index int
}

// resolveTargets expands a TargetSelection against an instruction stream.
// Unresolved explicit identifiers are returned separately rather than
// failing the whole batch.
func resolveTargets(instrs []types.Instruction, sel TargetSelection) (resolved []resolvedTarget, unresolved []string) {
	switch sel.Special {
	case SpecialAll:
		for i := range instrs {
			resolved = append(resolved, resolvedTarget{ID: "idx@" + strconv.Itoa(i), Index: i})
		}
		return resolved, nil
	case SpecialAllLabeled:
		for i, inst := range instrs {
			if inst.Label != "" {
				resolved = append(resolved, resolvedTarget{ID: inst.Label, Index: i})
			}
		}
		return resolved, nil
	case SpecialAllJumps:
		for i, inst := range instrs {
			if inst.Type == types.TypeConditionalJump || inst.Type == types.TypeUnconditionalJump {
				resolved = append(resolved, resolvedTarget{ID: "jump@" + inst.Address, Index: i})
			}
		}
		return resolved, nil
	case SpecialAllCalls:
		for i, inst := range instrs {
			if inst.Type == types.TypeCall {
				resolved = append(resolved, resolvedTarget{ID: "call@" + inst.Address, Index: i})
			}
		}
		return resolved, nil
	}

	for _, id := range sel.Explicit {
		idx, ok := resolveOne(instrs, id)
		if !ok {
			unresolved = append(unresolved, id)
			continue
		}
		resolved = append(resolved, resolvedTarget{ID: id, Index: idx})
	}
	return resolved, unresolved
}

func resolveOne(instrs []types.Instruction, id string) (int, bool) {
	switch {
	case strings.HasPrefix(id, "jump@"):
		addr := strings.ToUpper(strings.TrimPrefix(id, "jump@"))
		for i, inst := range instrs {
			if inst.Address == addr && (inst.Type == types.TypeConditionalJump || inst.Type == types.TypeUnconditionalJump) {
				return i, true
			}
		}
		return 0, false
	case strings.HasPrefix(id, "call@"):
		addr := strings.ToUpper(strings.TrimPrefix(id, "call@"))
		for i, inst := range instrs {
			if inst.Address == addr && inst.Type == types.TypeCall {
				return i, true
			}
		}
		return 0, false
	default:
		numeric := strings.TrimPrefix(id, "idx@")
		if idx, err := strconv.Atoi(numeric); err == nil {
			if idx >= 0 && idx < len(instrs) {
				return idx, true
			}
			return 0, false
		}
		for i, inst := range instrs {
			if inst.Label == id {
				return i, true
			}
		}
		return 0, false
	}
}
