package generator

import (
	"math"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

// uniquenessScore computes, clamped to [0,1]:
//
//	uniqueness_score = concrete_bytes/total_bytes * length_bonus * consecutive_penalty
//	length_bonus      = min(1.2, 0.8 + length/100)
//	consecutive_penalty = 0.9 ^ (max_run_of_wildcards/4)
func uniquenessScore(totalBytes, wildcardCount, maxConsecutiveWildcards int) float64 {
	if totalBytes == 0 {
		return 0
	}
	concrete := totalBytes - wildcardCount
	concreteFrac := float64(concrete) / float64(totalBytes)

	lengthBonus := 0.8 + float64(totalBytes)/100
	if lengthBonus > 1.2 {
		lengthBonus = 1.2
	}

	consecutivePenalty := math.Pow(0.9, float64(maxConsecutiveWildcards)/4)

	score := concreteFrac * lengthBonus * consecutivePenalty
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// maxConsecutiveRun returns the longest run of adjacent positions present
// in sorted wildcard position list positions.
func maxConsecutiveRun(positions []int) int {
	if len(positions) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// rateStability classifies a signature's overall stability from its
// wildcard ratio and whether every high-volatility byte ended up
// wildcarded. A pattern that leaves a high-volatility byte concrete can
// never be rated high, regardless of how low its wildcard ratio is:
// that byte is exactly the one likely to drift between builds.
func rateStability(wildcardCount, totalBytes int, highVolAllWildcarded bool) types.Stability {
	if totalBytes == 0 {
		return types.StabilityLow
	}
	ratio := float64(wildcardCount) / float64(totalBytes)

	switch {
	case ratio >= 0.25 && highVolAllWildcarded:
		return types.StabilityHigh
	case ratio < 0.08:
		return types.StabilityLow
	default:
		return types.StabilityMedium
	}
}
