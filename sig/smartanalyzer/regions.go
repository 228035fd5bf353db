package smartanalyzer

// stableRegionMinLength is the minimum instruction count a run must reach
// to count as a stable region.
const stableRegionMinLength = 4

// stableRegionThreshold is the minimum per-instruction stability_score a
// run must maintain throughout to count as stable.
const stableRegionThreshold = 60.0

// Region is a maximal contiguous run of instructions each scoring at least
// stableRegionThreshold on stability.
type Region struct {
	Start        int    `json:"start"` // [Start, End), instruction indices
	End          int    `json:"end"`
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
	ByteCount    int    `json:"byte_count"`
}

// FindStableRegions scans the stream for every maximal run of at least
// stableRegionMinLength consecutive instructions whose stability_score is
// at or above stableRegionThreshold.
func FindStableRegions(scores []AnchorScore) []Region {
	var regions []Region
	start := -1
	for i, s := range scores {
		if s.StabilityScore >= stableRegionThreshold {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if i-start >= stableRegionMinLength {
				regions = append(regions, makeRegion(scores, start, i))
			}
			start = -1
		}
	}
	if start >= 0 && len(scores)-start >= stableRegionMinLength {
		regions = append(regions, makeRegion(scores, start, len(scores)))
	}
	return regions
}

func makeRegion(scores []AnchorScore, start, end int) Region {
	bytes := 0
	for i := start; i < end; i++ {
		bytes += scores[i].Instruction.Size
	}
	return Region{
		Start:        start,
		End:          end,
		StartAddress: scores[start].Instruction.Address,
		EndAddress:   scores[end-1].Instruction.Address,
		ByteCount:    bytes,
	}
}
