// Package smartanalyzer ranks instructions as signature anchors and finds
// maximal stable regions, sitting downstream of the analyzer and generator
// as a recommendation layer rather than a generation one: it never mutates
// or builds a Signature itself. Analyze returns the scores and summaries a
// caller uses to decide where to point the generator; SmartGenerate hands
// its chosen anchors to the generator and returns what that produces.
package smartanalyzer

import (
	"strconv"

	"github.com/lookbusy1344/sig-forge/sig/types"
	"github.com/lookbusy1344/sig-forge/sig/x86decode"
)

const (
	weightStability  = 0.45
	weightUniqueness = 0.35
	weightContext    = 0.20
)

// AnchorScore is one instruction's suitability rating as a signature
// anchor point.
type AnchorScore struct {
	Index           int               `json:"index"`
	Instruction     types.Instruction `json:"instruction"`
	StabilityScore  float64           `json:"stability_score"`
	UniquenessScore float64           `json:"uniqueness_score"`
	ContextScore    float64           `json:"context_score"`
	CompositeScore  float64           `json:"score"`
}

// ScoreAnchors rates every instruction in the stream as a candidate anchor.
// Return instructions are scored too (with the ret penalty in
// stabilityScore), but RankAnchors excludes them from its top-N results: a ret's surrounding
// bytes vary so much by calling convention and epilogue shape that it makes
// a poor signature anchor even when its own encoding is stable.
func ScoreAnchors(instrs []types.Instruction) []AnchorScore {
	out := make([]AnchorScore, len(instrs))
	for i, inst := range instrs {
		stability := stabilityScore(inst, instrs)
		uniqueness := uniquenessScore(instrs, i)
		context := contextScore(instrs, i)
		out[i] = AnchorScore{
			Index:           i,
			Instruction:     inst,
			StabilityScore:  stability,
			UniquenessScore: uniqueness,
			ContextScore:    context,
			CompositeScore:  weightStability*stability + weightUniqueness*uniqueness + weightContext*context,
		}
	}
	return out
}

// RankAnchors returns the top n anchors by composite score, excluding
// return instructions, highest first, breaking ties toward the earliest
// instruction index.
func RankAnchors(instrs []types.Instruction, n int) []AnchorScore {
	scores := ScoreAnchors(instrs)
	var candidates []AnchorScore
	for _, s := range scores {
		if s.Instruction.Type == types.TypeReturn {
			continue
		}
		candidates = append(candidates, s)
	}
	sortByCompositeDesc(candidates)
	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// sortByCompositeDesc is a stable insertion sort: the inputs here are small
// (a couple hundred instructions at most) and stability keeps ties resolved
// by earliest index without a secondary sort key.
func sortByCompositeDesc(scores []AnchorScore) {
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && scores[j].CompositeScore > scores[j-1].CompositeScore; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
}

// stabilityScore favors instructions whose bytes are mostly low-volatility,
// then applies three penalties: a leaf ret varies too much by epilogue
// shape to anchor reliably, a purely trivial one-byte opcode is too common
// across unrelated code to be distinctive, and a relative jump/call whose
// target falls outside the instruction stream it was found in can't be
// verified stable from the bytes alone.
func stabilityScore(inst types.Instruction, instrs []types.Instruction) float64 {
	opcode := volatilityPenalty(inst.Volatility.Opcode)
	operand := volatilityPenalty(inst.Volatility.Operand)
	score := 100 - (opcode*40 + operand*60)

	if inst.Type == types.TypeReturn {
		score -= 30
	}
	if inst.Size == 1 {
		score -= 20
	}
	if targetOutsideWindow(inst, instrs) {
		score -= 25
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func volatilityPenalty(v types.Volatility) float64 {
	switch v {
	case types.VolatilityHigh:
		return 1.0
	case types.VolatilityMedium:
		return 0.5
	default:
		return 0.0
	}
}

// targetOutsideWindow reports whether inst is a relative jump or call whose
// resolved target address falls outside the address range spanned by
// instrs. It re-decodes the instruction's bytes rather than trusting a
// precomputed target, since Instruction itself carries no resolved-address
// field (only the Analyzer's byte categories survive into the record).
func targetOutsideWindow(inst types.Instruction, instrs []types.Instruction) bool {
	switch inst.Type {
	case types.TypeConditionalJump, types.TypeUnconditionalJump, types.TypeCall:
	default:
		return false
	}
	addr, err := strconv.ParseUint(inst.Address, 16, 32)
	if err != nil {
		return false
	}
	d, derr := x86decode.Decode(inst.Bytes, uint32(addr))
	if derr != nil || !d.HasRelative {
		return false
	}
	lo, hi, ok := addressRange(instrs)
	if !ok {
		return false
	}
	return d.RelativeTarget < lo || d.RelativeTarget > hi
}

func addressRange(instrs []types.Instruction) (lo, hi uint32, ok bool) {
	first := true
	for _, inst := range instrs {
		a, err := strconv.ParseUint(inst.Address, 16, 32)
		if err != nil {
			continue
		}
		addr := uint32(a)
		if first {
			lo, hi, first = addr, addr, false
			continue
		}
		if addr < lo {
			lo = addr
		}
		if addr > hi {
			hi = addr
		}
	}
	return lo, hi, !first
}

// uniquenessScore favors uncommon opcode bigrams, measured against the
// built-in frequency table: an instruction flanked by pairings the table
// rates common (push/mov prologues, pop/ret epilogues) scores low, one
// flanked by rarer pairings scores high.
func uniquenessScore(instrs []types.Instruction, idx int) float64 {
	var freqs []float64
	if idx > 0 {
		freqs = append(freqs, bigramScore(instrs[idx-1].Mnemonic, instrs[idx].Mnemonic))
	}
	if idx < len(instrs)-1 {
		freqs = append(freqs, bigramScore(instrs[idx].Mnemonic, instrs[idx+1].Mnemonic))
	}
	if len(freqs) == 0 {
		return 50
	}
	sum := 0.0
	for _, f := range freqs {
		sum += f
	}
	avg := sum / float64(len(freqs))
	return (1 - avg) * 100
}

// contextScore favors instructions flanked by at least 3 other
// medium-or-better instructions on each side, scaling linearly below that.
func contextScore(instrs []types.Instruction, idx int) float64 {
	const flankWanted = 3
	before := countMediumOrBetter(instrs, idx-1, -1, flankWanted)
	after := countMediumOrBetter(instrs, idx+1, 1, flankWanted)
	beforeFrac := float64(before) / float64(flankWanted)
	afterFrac := float64(after) / float64(flankWanted)
	return (beforeFrac + afterFrac) / 2 * 100
}

func countMediumOrBetter(instrs []types.Instruction, start, step, limit int) int {
	count := 0
	for i, n := start, 0; i >= 0 && i < len(instrs) && n < limit; i, n = i+step, n+1 {
		if isMediumOrBetter(instrs[i]) {
			count++
		}
	}
	return count
}

// isMediumOrBetter reports whether an instruction's volatility rating is
// medium or low on both dimensions, i.e. not a high-volatility byte source.
func isMediumOrBetter(inst types.Instruction) bool {
	return inst.Volatility.Opcode != types.VolatilityHigh && inst.Volatility.Operand != types.VolatilityHigh
}
