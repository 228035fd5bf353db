package generator

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

// GenerateResult collects every target's ranked signatures, keyed by the
// target identifier the caller asked for (label, "jump@<addr>",
// "call@<addr>", or "idx@<n>"), plus any identifiers that failed to
// resolve against the instruction stream.
type GenerateResult struct {
	Signatures map[string][]types.Signature
	Unresolved []string
}

// Generate synthesizes signatures for every target in sel under the given
// strategy and options. It never returns an error for an unresolved or
// too-short target; those are reported through GenerateResult and a
// per-signature Warning. Only a programmer error in opts fails the whole
// call.
func Generate(instrs []types.Instruction, sel TargetSelection, strategy Strategy, opts Options) (GenerateResult, error) {
	if err := opts.Validate(); err != nil {
		return GenerateResult{}, err
	}

	resolved, unresolved := resolveTargets(instrs, sel)
	result := GenerateResult{
		Signatures: make(map[string][]types.Signature, len(resolved)),
		Unresolved: unresolved,
	}

	for _, target := range resolved {
		sigs := generateForAnchor(instrs, target.Index, strategy, opts)
		result.Signatures[target.ID] = dedupAndRank(sigs, opts.Variants)
	}

	return result, nil
}

// GenerateForID is a convenience wrapper for the common case of generating
// signatures for a single explicit target identifier.
func GenerateForID(instrs []types.Instruction, id string, strategy Strategy, opts Options) ([]types.Signature, error) {
	res, err := Generate(instrs, Targets(id), strategy, opts)
	if err != nil {
		return nil, err
	}
	if len(res.Unresolved) > 0 {
		return nil, fmt.Errorf("generator: target %q did not resolve", id)
	}
	return res.Signatures[id], nil
}

// defaultTargetedStrategy is the strategy GenerateTargeted applies, matching
// the config package's own default_strategy.
const defaultTargetedStrategy = StrategyBalanced

// GenerateTargeted takes no target selection at all: it anchors on the
// first instruction in the stream and returns its synthesized target id
// ("auto@<first-addr>") alongside the ranked signatures for that anchor.
func GenerateTargeted(instrs []types.Instruction, opts Options) (string, []types.Signature, error) {
	if err := opts.Validate(); err != nil {
		return "", nil, err
	}
	if len(instrs) == 0 {
		return "", nil, fmt.Errorf("generator: cannot auto-anchor an empty instruction stream")
	}

	id := fmt.Sprintf("auto@%s", instrs[0].Address)
	sigs := generateForAnchor(instrs, 0, defaultTargetedStrategy, opts)
	return id, dedupAndRank(sigs, opts.Variants), nil
}

// generateForAnchor sweeps the fixed 11 context variations for a single
// anchor instruction, building and scoring one candidate signature per
// variation. The anchor-shifted variation clamps its ±3 search range at the
// stream boundaries.
func generateForAnchor(instrs []types.Instruction, anchorIdx int, strategy Strategy, opts Options) []types.Signature {
	var out []types.Signature
	for _, v := range contextVariations {
		idx := anchorIdx
		variation := v
		if v.anchorShift {
			idx = pickAnchorShift(instrs, anchorIdx)
			variation = contextVariation{name: v.name, before: opts.ContextBefore, after: opts.ContextAfter}
		}

		w := buildWindow(instrs, idx, variation, opts)
		sig := buildSignature(instrs[w.Start:w.End], strategy, opts.WildcardRules)
		if w.TooShort {
			sig.Warning = "window shorter than min_length: insufficient surrounding instructions"
			sig.Stability = types.StabilityLow
		}
		out = append(out, sig)
	}
	return out
}

// buildSignature realizes wildcards across a contiguous instruction window
// under the given strategy, then scores the result.
func buildSignature(window []types.Instruction, strategy Strategy, rules WildcardRules) types.Signature {
	var (
		bytes       []*byte
		maskBuilder strings.Builder
		patternToks []string
		wildcardPos []int
		reasons     []types.WildcardReason
	)

	offset := 0
	for _, inst := range window {
		for i := 0; i < inst.Size; i++ {
			b := inst.Bytes[i]
			pos := offset + i

			reason, isCandidate := reasonForPosition(inst, i)
			realize := isCandidate && shouldRealize(strategy, reason, rules)

			if realize {
				bytes = append(bytes, nil)
				maskBuilder.WriteByte('?')
				patternToks = append(patternToks, "??")
				wildcardPos = append(wildcardPos, pos)
				reasons = append(reasons, types.WildcardReason{
					Position:    pos,
					Reason:      reason,
					HumanDetail: fmt.Sprintf("%s (%s): %s", inst.Address, inst.Mnemonic, humanDetail(reason)),
				})
			} else {
				bv := b
				bytes = append(bytes, &bv)
				maskBuilder.WriteByte('x')
				patternToks = append(patternToks, fmt.Sprintf("%02X", b))
			}
		}
		offset += inst.Size
	}

	total := len(bytes)
	maxRun := maxConsecutiveRun(wildcardPos)
	highVolAllWildcarded := highVolatilityBytesWildcarded(window, wildcardPos)

	return types.Signature{
		Pattern:           strings.Join(patternToks, " "),
		Mask:              maskBuilder.String(),
		Bytes:             bytes,
		Length:            total,
		WildcardCount:     len(wildcardPos),
		WildcardPositions: wildcardPos,
		UniquenessScore:   uniquenessScore(total, len(wildcardPos), maxRun),
		Stability:         rateStability(len(wildcardPos), total, highVolAllWildcarded),
		Strategy:          string(strategy),
		WildcardReasons:   reasons,
	}
}

// highVolatilityBytesWildcarded reports whether every wildcard-candidate
// byte of an instruction with VolatilityHigh operand rating ended up
// wildcarded, which gates the "high" stability rating.
func highVolatilityBytesWildcarded(window []types.Instruction, wildcardPos []int) bool {
	wildSet := make(map[int]bool, len(wildcardPos))
	for _, p := range wildcardPos {
		wildSet[p] = true
	}

	offset := 0
	for _, inst := range window {
		if inst.Volatility.Operand == types.VolatilityHigh {
			for _, p := range inst.WildcardPositions {
				if !wildSet[offset+p] {
					return false
				}
			}
		}
		offset += inst.Size
	}
	return true
}

func humanDetail(r types.ReasonCode) string {
	switch r {
	case types.ReasonRelativeJump:
		return "relative jump displacement, rebased on every relink"
	case types.ReasonRelativeCall:
		return "relative call displacement, rebased on every relink"
	case types.ReasonStackOffset:
		return "frame-relative stack offset, shifts with local layout"
	case types.ReasonGlobalAddress:
		return "absolute address of a global, moves with the image base"
	case types.ReasonImmediate:
		return "literal immediate operand"
	case types.ReasonStructOffset:
		return "register-relative field offset"
	case types.ReasonMemoryDisplacement:
		return "memory displacement of unclassified origin"
	default:
		return ""
	}
}
