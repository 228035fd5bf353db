package smartanalyzer

import (
	"testing"

	"github.com/lookbusy1344/sig-forge/sig/generator"
)

func TestSmartGenerateWiresTopAnchorsIntoGenerator(t *testing.T) {
	instrs := sampleFunction()
	opts := generator.DefaultOptions()
	opts.MinLength = 1

	res, err := SmartGenerate(instrs, 3, generator.StrategyBalanced, opts)
	if err != nil {
		t.Fatalf("SmartGenerate: %v", err)
	}
	if len(res.Report.TopN) == 0 {
		t.Fatal("expected ranked anchors")
	}
	if len(res.Signatures) != len(res.Report.TopN) {
		t.Errorf("got %d signature groups, want %d (one per ranked anchor)", len(res.Signatures), len(res.Report.TopN))
	}
	for id, sigs := range res.Signatures {
		if len(sigs) == 0 {
			t.Errorf("target %q produced no signatures", id)
		}
	}
}
