package parser

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

func TestParseX64dbgScenario(t *testing.T) {
	line := "00B27AB0 | 0F84 79050000 | je apr24.2020.B2802F | Lawnmower_A"
	res, err := Parse(line, FormatX64dbg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(res.Instructions))
	}
	inst := res.Instructions[0]
	want := []byte{0x0F, 0x84, 0x79, 0x05, 0x00, 0x00}
	if len(inst.Bytes) != len(want) {
		t.Fatalf("bytes = %x, want %x", inst.Bytes, want)
	}
	for i := range want {
		if inst.Bytes[i] != want[i] {
			t.Fatalf("bytes = %x, want %x", inst.Bytes, want)
		}
	}
	if inst.Type != types.TypeConditionalJump {
		t.Errorf("type = %v, want conditional_jump", inst.Type)
	}
	if inst.Label != "Lawnmower_A" {
		t.Errorf("label = %q, want Lawnmower_A", inst.Label)
	}
	if len(res.Labels) != 1 || res.Labels[0] != "Lawnmower_A" {
		t.Errorf("labels = %v", res.Labels)
	}
}

func TestParseHexScenario(t *testing.T) {
	input := "0F 84 79 05 00 00 8B 8D 2C FE FF FF"
	res, err := Parse(input, FormatAuto)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Format != FormatHex {
		t.Fatalf("format = %v, want hex", res.Format)
	}
	if len(res.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d: %+v", len(res.Instructions), res.Instructions)
	}
	if res.Instructions[0].Address != "00000000" {
		t.Errorf("first address = %s, want 00000000", res.Instructions[0].Address)
	}
	if res.Instructions[1].Address != "00000006" {
		t.Errorf("second address = %s, want 00000006", res.Instructions[1].Address)
	}
	if res.Instructions[0].Type != types.TypeConditionalJump {
		t.Errorf("first instruction type = %v, want conditional_jump", res.Instructions[0].Type)
	}
	if res.Instructions[1].Mnemonic != "mov" {
		t.Errorf("second instruction mnemonic = %q, want mov", res.Instructions[1].Mnemonic)
	}
}

func TestParseCheatEngineScenario(t *testing.T) {
	line := "Apr24.2020.exe+46751D - 0F84 85020000 - je Apr24.2020.exe+4677A8"
	res, err := Parse(line, FormatCheatEngine)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Module != "Apr24.2020.exe" {
		t.Errorf("module = %q, want Apr24.2020.exe", res.Module)
	}
	if len(res.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(res.Instructions))
	}
	inst := res.Instructions[0]
	if inst.Address != "0046751D" {
		t.Errorf("address = %s, want 0046751D", inst.Address)
	}
	if inst.Type != types.TypeConditionalJump {
		t.Errorf("type = %v, want conditional_jump", inst.Type)
	}
}

func TestAutoDetectRejectsGarbage(t *testing.T) {
	_, err := Parse("this is not a disassembly listing\nnor is this\n", FormatAuto)
	if err == nil {
		t.Fatal("expected ParseError for unrecognizable input")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != ErrKindNoFormatMatch {
		t.Fatalf("expected ErrKindNoFormatMatch, got %v", err)
	}
}

func TestMnemonicWithoutBytesDropped(t *testing.T) {
	input := "00000000 | | mov eax,ebx\n00000001 | 90 | nop"
	res, err := Parse(input, FormatX64dbg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Instructions) != 1 {
		t.Fatalf("expected 1 surviving instruction, got %d", len(res.Instructions))
	}
	if res.Stats.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", res.Stats.Dropped)
	}
}

func TestBytesWithoutMnemonicBecomeDB(t *testing.T) {
	input := "00000000 | 90 90 | "
	res, err := Parse(input, FormatX64dbg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(res.Instructions))
	}
	if res.Instructions[0].Mnemonic != "db" {
		t.Errorf("mnemonic = %q, want db", res.Instructions[0].Mnemonic)
	}
}

func TestRoundTripBytes(t *testing.T) {
	lines := []string{
		"00B27AB0 | 0F84 79050000 | je apr24.2020.B2802F | Lawnmower_A",
		"00B27AB6 | 55 | push ebp",
		"00B27AB7 | 8BEC | mov ebp,esp",
	}
	res, err := Parse(strings.Join(lines, "\n"), FormatX64dbg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Instructions) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(res.Instructions))
	}
	for _, inst := range res.Instructions {
		if err := inst.Validate(); err != nil {
			t.Errorf("invariant violated: %v", err)
		}
	}
}
