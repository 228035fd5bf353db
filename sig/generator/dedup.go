package generator

import (
	"sort"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

// maskSimilarityThreshold is the fixed dedup threshold. Kept as a literal
// constant rather than an Options field: it is a policy, not a per-call
// tunable.
const maskSimilarityThreshold = 0.75

// uniquenessOverrideMargin lets a signature survive deduplication anyway
// when its uniqueness_score beats the kept candidate's by more than this
// fraction, even past the similarity threshold.
const uniquenessOverrideMargin = 0.10

// dedupAndRank removes near-duplicate signatures by mask similarity, then
// sorts the survivors deterministically (uniqueness desc, stability desc,
// length desc) and caps the result at maxVariants.
func dedupAndRank(sigs []types.Signature, maxVariants int) []types.Signature {
	sort.SliceStable(sigs, func(i, j int) bool {
		return rankLess(sigs[j], sigs[i])
	})

	var kept []types.Signature
	for _, cand := range sigs {
		dup := false
		for _, k := range kept {
			sim := maskSimilarity(cand.Mask, k.Mask)
			if sim < maskSimilarityThreshold {
				continue
			}
			if cand.UniquenessScore > k.UniquenessScore*(1+uniquenessOverrideMargin) {
				continue
			}
			dup = true
			break
		}
		if !dup {
			kept = append(kept, cand)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return rankLess(kept[j], kept[i])
	})

	if maxVariants > 0 && len(kept) > maxVariants {
		kept = kept[:maxVariants]
	}
	return kept
}

// rankLess reports whether a ranks strictly below b in the order uniqueness
// desc, then stability desc, then length desc.
func rankLess(a, b types.Signature) bool {
	if a.UniquenessScore != b.UniquenessScore {
		return a.UniquenessScore < b.UniquenessScore
	}
	if a.Stability != b.Stability {
		return a.Stability < b.Stability
	}
	return a.Length < b.Length
}

// maskSimilarity computes a Hamming-style similarity between two mask
// strings, padding the shorter one with 'x' so differing lengths still
// compare positionally rather than being treated as automatically distinct.
func maskSimilarity(a, b string) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n == 0 {
		return 1
	}
	match := 0
	for i := 0; i < n; i++ {
		ca := byte('x')
		if i < len(a) {
			ca = a[i]
		}
		cb := byte('x')
		if i < len(b) {
			cb = b[i]
		}
		if ca == cb {
			match++
		}
	}
	return float64(match) / float64(n)
}
