package smartanalyzer

import (
	"testing"

	"github.com/lookbusy1344/sig-forge/sig/analyzer"
	"github.com/lookbusy1344/sig-forge/sig/types"
)

func sampleFunction() []types.Instruction {
	raw := []types.Instruction{
		{Address: "00000000", Bytes: []byte{0x55}, Size: 1, Mnemonic: "push", OperandsNormalized: "ebp", Type: types.TypeStack},
		{Address: "00000001", Bytes: []byte{0x8B, 0xEC}, Size: 2, Mnemonic: "mov", OperandsNormalized: "ebp,esp", Type: types.TypeMov},
		{Address: "00000003", Bytes: []byte{0x83, 0xEC, 0x10}, Size: 3, Mnemonic: "sub", OperandsNormalized: "esp,0x10", Type: types.TypeArithmetic},
		{Address: "00000006", Bytes: []byte{0x33, 0xC0}, Size: 2, Mnemonic: "xor", OperandsNormalized: "eax,eax", Type: types.TypeLogic},
		{Address: "00000008", Bytes: []byte{0x89, 0x45, 0xFC}, Size: 3, Mnemonic: "mov", OperandsNormalized: "[ebp-0x4],eax", Type: types.TypeMov},
		{Address: "0000000B", Bytes: []byte{0x8B, 0xE5}, Size: 2, Mnemonic: "mov", OperandsNormalized: "esp,ebp", Type: types.TypeMov},
		{Address: "0000000D", Bytes: []byte{0x5D}, Size: 1, Mnemonic: "pop", OperandsNormalized: "ebp", Type: types.TypeStack},
		{Address: "0000000E", Bytes: []byte{0xC3}, Size: 1, Mnemonic: "ret", OperandsNormalized: "", Type: types.TypeReturn},
	}
	out := make([]types.Instruction, len(raw))
	for i, inst := range raw {
		out[i] = analyzer.Analyze(inst)
	}
	return out
}

func TestRankAnchorsExcludesReturns(t *testing.T) {
	instrs := sampleFunction()
	top := RankAnchors(instrs, 5)

	for _, a := range top {
		if a.Instruction.Type == types.TypeReturn {
			t.Errorf("ret instruction at %s should not appear in top anchors", a.Instruction.Address)
		}
	}
	if len(top) == 0 {
		t.Fatal("expected at least one ranked anchor")
	}
}

func TestFindStableRegionsRequiresMinimumRunLength(t *testing.T) {
	instrs := sampleFunction()
	scores := ScoreAnchors(instrs)
	regions := FindStableRegions(scores)

	for _, r := range regions {
		if r.End-r.Start < stableRegionMinLength {
			t.Errorf("region [%d,%d) shorter than minimum run length %d", r.Start, r.End, stableRegionMinLength)
		}
	}
}

func TestAnalyzeProducesNonEmptySummary(t *testing.T) {
	instrs := sampleFunction()
	report := Analyze(instrs, 5)
	if report.Summary == "" {
		t.Error("expected non-empty summary")
	}
}
