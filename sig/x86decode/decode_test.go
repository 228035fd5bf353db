package x86decode

import (
	"testing"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

func TestDecodeConditionalJumpRel32(t *testing.T) {
	buf := []byte{0x0F, 0x84, 0x79, 0x05, 0x00, 0x00}
	d, err := Decode(buf, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Length != 6 {
		t.Fatalf("length = %d, want 6", d.Length)
	}
	if d.Mnemonic != "je" {
		t.Errorf("mnemonic = %q, want je", d.Mnemonic)
	}
	if d.Type != types.TypeConditionalJump {
		t.Errorf("type = %v, want conditional_jump", d.Type)
	}
	if !d.HasRelative {
		t.Fatal("expected HasRelative")
	}
	for _, pos := range []int{2, 3, 4, 5} {
		if d.ByteCategories[pos] != types.CategoryRelativeOffset {
			t.Errorf("byte %d category = %v, want relative_offset", pos, d.ByteCategories[pos])
		}
	}
}

func TestDecodeMovModRMDisp32(t *testing.T) {
	buf := []byte{0x8B, 0x8D, 0x2C, 0xFE, 0xFF, 0xFF}
	d, err := Decode(buf, 6)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Length != 6 {
		t.Fatalf("length = %d, want 6", d.Length)
	}
	if d.Mnemonic != "mov" {
		t.Errorf("mnemonic = %q, want mov", d.Mnemonic)
	}
	if d.ByteCategories[0] != types.CategoryOpcode || d.ByteCategories[1] != types.CategoryModRM {
		t.Errorf("unexpected leading categories: %v", d.ByteCategories)
	}
	for _, pos := range []int{2, 3, 4, 5} {
		if d.ByteCategories[pos] != types.CategoryDisplacement {
			t.Errorf("byte %d category = %v, want displacement", pos, d.ByteCategories[pos])
		}
	}
}

func TestDecodeByteAccounting(t *testing.T) {
	vectors := [][]byte{
		{0x55},                               // push ebp
		{0xC3},                                // ret
		{0x83, 0xEC, 0x10},                    // sub esp, 0x10
		{0xE8, 0x00, 0x01, 0x00, 0x00},        // call rel32
		{0xB8, 0x01, 0x00, 0x00, 0x00},        // mov eax, 1
		{0x89, 0x45, 0xFC},                    // mov [ebp-4], eax
	}
	for _, buf := range vectors {
		d, err := Decode(buf, 0)
		if err != nil {
			t.Fatalf("Decode(%x): %v", buf, err)
		}
		if d.Length != len(buf) {
			t.Errorf("Decode(%x): length = %d, want %d", buf, d.Length, len(buf))
		}
		if len(d.ByteCategories) != d.Length {
			t.Errorf("Decode(%x): %d byte categories, want %d", buf, len(d.ByteCategories), d.Length)
		}
	}
}
