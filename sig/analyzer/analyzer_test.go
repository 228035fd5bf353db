package analyzer

import (
	"testing"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

func TestAnalyzeConditionalJumpWildcardCandidates(t *testing.T) {
	inst := types.Instruction{
		Address:            "00B27AB0",
		Bytes:              []byte{0x0F, 0x84, 0x79, 0x05, 0x00, 0x00},
		Size:               6,
		Mnemonic:           "je",
		OperandsNormalized: "apr24.2020.b2802f",
		Type:               types.TypeConditionalJump,
	}
	out := Analyze(inst)

	if err := out.Validate(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
	want := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, p := range out.WildcardPositions {
		if p < 2 {
			t.Errorf("unexpected wildcard candidate at opcode byte %d", p)
		}
	}
	for p := range want {
		found := false
		for _, c := range out.WildcardPositions {
			if c == p {
				found = true
			}
		}
		if !found {
			t.Errorf("expected wildcard candidate at %d", p)
		}
	}
	if out.Volatility.Operand != types.VolatilityHigh {
		t.Errorf("operand volatility = %v, want high", out.Volatility.Operand)
	}
}

func TestAnalyzeByteAccounting(t *testing.T) {
	instrs := []types.Instruction{
		{Address: "00000000", Bytes: []byte{0x55}, Size: 1, Mnemonic: "push", OperandsNormalized: "ebp", Type: types.TypeStack},
		{Address: "00000001", Bytes: []byte{0x8B, 0xEC}, Size: 2, Mnemonic: "mov", OperandsNormalized: "ebp,esp", Type: types.TypeMov},
		{Address: "00000003", Bytes: []byte{0x83, 0xEC, 0x10}, Size: 3, Mnemonic: "sub", OperandsNormalized: "esp,0x10", Type: types.TypeArithmetic},
	}
	for _, out := range AnalyzeAll(instrs) {
		if len(out.ByteCategories) != out.Size {
			t.Errorf("instruction %s: %d byte categories, want %d", out.Address, len(out.ByteCategories), out.Size)
		}
		for _, p := range out.WildcardPositions {
			if p < 0 || p >= out.Size {
				t.Errorf("instruction %s: wildcard position %d out of range", out.Address, p)
			}
		}
	}
}

func TestStackVsStructOffsetClassification(t *testing.T) {
	if !IsStackOffset("[ebp-0x10]") {
		t.Error("expected [ebp-0x10] to classify as stack offset")
	}
	if !IsStackOffset("[esp+8]") {
		t.Error("expected [esp+8] to classify as stack offset")
	}
	if !IsStructOffset("[eax+0x4]") {
		t.Error("expected [eax+0x4] to classify as struct offset")
	}
	if IsStructOffset("[ebp-0x10]") {
		t.Error("[ebp-0x10] should not classify as struct offset")
	}
}
