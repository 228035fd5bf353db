package generator

import "github.com/lookbusy1344/sig-forge/sig/types"

// contextVariation is one point in the fixed 11-variation context table
// the Generator sweeps per anchor. before/after are expressed in
// instruction counts; toNextRet requests extending after out to the next
// ret instruction (or end of stream) instead of a fixed count.
type contextVariation struct {
	name        string
	before      int
	after       int
	toNextRet   bool
	anchorShift bool
}

// contextVariations is the Generator's fixed sweep table: every
// context_after value at context_before=0, a thinned set at context_before=1
// and 2, plus one anchor-shifted variation that re-centers the window on a
// neighboring instruction with a higher concrete-byte fraction. The full
// before x after cross product adds little: neighboring combinations
// produce near-identical windows the dedup pass would discard anyway.
var contextVariations = []contextVariation{
	{name: "cb0_ca4", before: 0, after: 4},
	{name: "cb0_ca6", before: 0, after: 6},
	{name: "cb0_ca8", before: 0, after: 8},
	{name: "cb0_ca10", before: 0, after: 10},
	{name: "cb0_toret", before: 0, toNextRet: true},
	{name: "cb1_ca4", before: 1, after: 4},
	{name: "cb1_ca8", before: 1, after: 8},
	{name: "cb1_toret", before: 1, toNextRet: true},
	{name: "cb2_ca6", before: 2, after: 6},
	{name: "cb2_ca10", before: 2, after: 10},
	{name: "anchor_shift", anchorShift: true},
}

// window is a resolved, in-bounds instruction range [Start, End) together
// with the accounting needed to report a fail-soft warning instead of a
// hard error when the instructions available can't fill MinLength.
type window struct {
	Start, End int
	TooShort   bool
}

// buildWindow resolves a contextVariation against an instruction stream
// anchored at anchorIdx, honoring the caller's min/max byte-length bounds.
// When toNextRet is set, the window extends forward until the next return
// instruction (inclusive) or the end of the stream, whichever comes first.
func buildWindow(instrs []types.Instruction, anchorIdx int, v contextVariation, opts Options) window {
	start := anchorIdx - v.before
	if start < 0 {
		start = 0
	}

	end := anchorIdx + 1
	if v.toNextRet {
		end = anchorIdx + 1
		for end < len(instrs) {
			if instrs[end-1].Type == types.TypeReturn {
				break
			}
			end++
		}
	} else {
		end = anchorIdx + 1 + v.after
		if end > len(instrs) {
			end = len(instrs)
		}
	}

	start, end = extendToMinLength(instrs, start, end, opts.MinLength)
	start, end = trimToMaxLength(instrs, start, end, anchorIdx, opts.MaxLength)

	return window{Start: start, End: end, TooShort: windowByteLength(instrs, start, end) < opts.MinLength}
}

func windowByteLength(instrs []types.Instruction, start, end int) int {
	n := 0
	for i := start; i < end; i++ {
		n += instrs[i].Size
	}
	return n
}

// extendToMinLength grows the window, preferring to extend forward first
// and only reaching backward once the stream end is hit, until MinLength
// bytes are covered or there is nothing left to extend into.
func extendToMinLength(instrs []types.Instruction, start, end, minLength int) (int, int) {
	for windowByteLength(instrs, start, end) < minLength {
		grew := false
		if end < len(instrs) {
			end++
			grew = true
		} else if start > 0 {
			start--
			grew = true
		}
		if !grew {
			break
		}
	}
	return start, end
}

// trimToMaxLength shrinks the window symmetrically around the anchor when
// it exceeds MaxLength bytes, never trimming past the anchor itself.
func trimToMaxLength(instrs []types.Instruction, start, end, anchorIdx, maxLength int) (int, int) {
	for windowByteLength(instrs, start, end) > maxLength && end-start > 1 {
		trimmedBack := false
		if end-1 > anchorIdx {
			end--
			trimmedBack = true
		}
		if windowByteLength(instrs, start, end) <= maxLength {
			break
		}
		if start < anchorIdx {
			start++
		} else if !trimmedBack {
			break
		}
	}
	return start, end
}

// pickAnchorShift scans the instructions within 3 positions of anchorIdx
// and returns the index of the one with the highest concrete-byte fraction,
// breaking ties toward the original anchor. It is a small local heuristic,
// not the SmartAnalyzer's scoring, to avoid a circular import.
func pickAnchorShift(instrs []types.Instruction, anchorIdx int) int {
	best := anchorIdx
	bestFrac := concreteFraction(instrs[anchorIdx])
	lo, hi := anchorIdx-3, anchorIdx+3
	if lo < 0 {
		lo = 0
	}
	if hi >= len(instrs) {
		hi = len(instrs) - 1
	}
	for i := lo; i <= hi; i++ {
		if i == anchorIdx {
			continue
		}
		if f := concreteFraction(instrs[i]); f > bestFrac {
			bestFrac = f
			best = i
		}
	}
	return best
}

func concreteFraction(inst types.Instruction) float64 {
	if inst.Size == 0 {
		return 0
	}
	wildcardable := len(inst.WildcardPositions)
	concrete := inst.Size - wildcardable
	return float64(concrete) / float64(inst.Size)
}
