package export

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

func sampleSignature() types.Signature {
	b1, b2 := byte(0x0F), byte(0x84)
	return types.Signature{
		Pattern:           "0F 84 ?? ?? ?? ??",
		Mask:              "xx????",
		Bytes:             []*byte{&b1, &b2, nil, nil, nil, nil},
		Length:            6,
		WildcardCount:     4,
		WildcardPositions: []int{2, 3, 4, 5},
		Strategy:          "conservative",
	}
}

func TestRenderAOB(t *testing.T) {
	got := Render(sampleSignature(), FormatAOB)
	if got != "0F 84 ?? ?? ?? ??" {
		t.Errorf("renderAOB = %q", got)
	}
}

func TestRenderIDAUsesSingleQuestionMark(t *testing.T) {
	got := Render(sampleSignature(), FormatIDA)
	if strings.Contains(got, "??") {
		t.Errorf("renderIDA should not contain doubled wildcards: %q", got)
	}
	if !strings.Contains(got, "?") {
		t.Errorf("renderIDA should contain wildcard markers: %q", got)
	}
}

func TestRenderMaskHasTwoLines(t *testing.T) {
	got := Render(sampleSignature(), FormatMask)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if lines[1] != "xx????" {
		t.Errorf("mask line = %q, want xx????", lines[1])
	}
}

func TestRenderCPPContainsPatternAndMask(t *testing.T) {
	got := Render(sampleSignature(), FormatCPP)
	if !strings.Contains(got, "unsigned char pattern[]") || !strings.Contains(got, "char mask[]") {
		t.Errorf("renderCPP missing expected declarations: %q", got)
	}
}

func TestParseFormatRoundTrips(t *testing.T) {
	for _, name := range []string{"aob", "mask", "ida", "cheatengine", "cpp", "x64dbg"} {
		f, err := ParseFormat(name)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", name, err)
		}
		if f.String() != name && !(name == "cpp" && f.String() == "cpp") {
			t.Errorf("ParseFormat(%q).String() = %q", name, f.String())
		}
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	if _, err := ParseFormat("bogus"); err == nil {
		t.Error("expected error for unknown format")
	}
}
