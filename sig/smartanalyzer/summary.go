package smartanalyzer

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

// strongAnchorThreshold is the composite score a ranked anchor must clear
// to count as "strong" in the summary text.
const strongAnchorThreshold = 60.0

// Report is the smart analyzer's complete output for one instruction
// stream: the per-instruction scores, the ranked anchor shortlist, the
// stable regions found, and a short human summary of all three.
type Report struct {
	Scores           []AnchorScore `json:"scores"`
	TopN             []AnchorScore `json:"top_n"`
	Regions          []Region      `json:"regions"`
	AverageStability float64       `json:"average_stability"`
	Summary          string        `json:"summary"`
}

// Analyze scores every instruction, ranks the top n anchors (excluding
// returns), finds stable regions, and renders a short summary.
func Analyze(instrs []types.Instruction, topN int) Report {
	scores := ScoreAnchors(instrs)
	ranked := RankAnchors(instrs, topN)
	regions := FindStableRegions(scores)
	avg := averageStability(scores)
	return Report{
		Scores:           scores,
		TopN:             ranked,
		Regions:          regions,
		AverageStability: avg,
		Summary:          renderSummary(instrs, ranked, regions, avg),
	}
}

func averageStability(scores []AnchorScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s.StabilityScore
	}
	return sum / float64(len(scores))
}

func countStrong(top []AnchorScore) int {
	n := 0
	for _, a := range top {
		if a.CompositeScore >= strongAnchorThreshold {
			n++
		}
	}
	return n
}

// renderSummary renders "Analyzed N instructions; found K strong anchors;
// average stability S%." with the best anchor and the stable regions
// appended as supplementary detail lines.
func renderSummary(instrs []types.Instruction, top []AnchorScore, regions []Region, avgStability float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d instructions; found %d strong anchors; average stability %.0f%%.",
		len(instrs), countStrong(top), avgStability)

	if len(top) > 0 {
		fmt.Fprintf(&b, "\nBest anchor: %s at %s (score %.1f).", top[0].Instruction.Mnemonic, top[0].Instruction.Address, top[0].CompositeScore)
	}
	for _, r := range regions {
		fmt.Fprintf(&b, "\nStable region: instructions %d-%d (%s..%s, %d bytes).", r.Start, r.End-1, r.StartAddress, r.EndAddress, r.ByteCount)
	}
	return b.String()
}
