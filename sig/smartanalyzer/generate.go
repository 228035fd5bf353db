package smartanalyzer

import (
	"fmt"

	"github.com/lookbusy1344/sig-forge/sig/generator"
	"github.com/lookbusy1344/sig-forge/sig/types"
)

// SmartGenerateResult pairs the analysis report with the signatures
// generated for its own recommended anchors.
type SmartGenerateResult struct {
	Report     Report                        `json:"report"`
	Signatures map[string][]types.Signature `json:"signatures"`
}

// SmartGenerate picks the topN best anchors itself, then runs the
// generator against each one, so a caller can go from a raw instruction
// stream straight to ranked signatures without separately choosing targets.
func SmartGenerate(instrs []types.Instruction, topN int, strategy generator.Strategy, opts generator.Options) (SmartGenerateResult, error) {
	report := Analyze(instrs, topN)

	ids := make([]string, 0, len(report.TopN))
	for _, a := range report.TopN {
		ids = append(ids, fmt.Sprintf("idx@%d", a.Index))
	}

	res, err := generator.Generate(instrs, generator.Targets(ids...), strategy, opts)
	if err != nil {
		return SmartGenerateResult{}, err
	}
	return SmartGenerateResult{Report: report, Signatures: res.Signatures}, nil
}
