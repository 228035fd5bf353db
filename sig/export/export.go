// Package export renders a types.Signature into the handful of textual
// formats downstream reverse-engineering tools expect, one pure render
// function per output style.
package export

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

// Format names one of the six supported output styles.
type Format int

const (
	FormatAOB Format = iota
	FormatMask
	FormatIDA
	FormatCheatEngine
	FormatCPP
	FormatX64dbg
)

func (f Format) String() string {
	switch f {
	case FormatMask:
		return "mask"
	case FormatIDA:
		return "ida"
	case FormatCheatEngine:
		return "cheatengine"
	case FormatCPP:
		return "cpp"
	case FormatX64dbg:
		return "x64dbg"
	default:
		return "aob"
	}
}

// ParseFormat resolves a CLI/HTTP-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "aob":
		return FormatAOB, nil
	case "mask":
		return FormatMask, nil
	case "ida":
		return FormatIDA, nil
	case "cheatengine":
		return FormatCheatEngine, nil
	case "cpp", "c++":
		return FormatCPP, nil
	case "x64dbg":
		return FormatX64dbg, nil
	default:
		return 0, fmt.Errorf("export: unknown format %q", name)
	}
}

// Render renders sig under the given format. Every renderer is a pure
// function of the Signature; none of them touch the filesystem or network.
func Render(sig types.Signature, f Format) string {
	switch f {
	case FormatMask:
		return renderMask(sig)
	case FormatIDA:
		return renderIDA(sig)
	case FormatCheatEngine:
		return renderCheatEngine(sig)
	case FormatCPP:
		return renderCPP(sig)
	case FormatX64dbg:
		return renderX64dbg(sig)
	default:
		return renderAOB(sig)
	}
}

// renderAOB renders the plain "array of bytes" style: uppercase hex pairs
// and "??" wildcards, space-separated. This is simply Signature.Pattern,
// already built in this shape by the generator.
func renderAOB(sig types.Signature) string {
	return sig.Pattern
}

// renderMask renders the byte stream and its x/? mask on two lines, for
// tools that want the pattern and mask supplied separately.
func renderMask(sig types.Signature) string {
	var bytesLine strings.Builder
	for i, b := range sig.Bytes {
		if i > 0 {
			bytesLine.WriteByte(' ')
		}
		if b == nil {
			bytesLine.WriteString("00")
		} else {
			fmt.Fprintf(&bytesLine, "%02X", *b)
		}
	}
	return bytesLine.String() + "\n" + sig.Mask
}

// renderIDA renders IDA Pro's "FindBinary" style: hex pairs with "?" for
// wildcard bytes, no doubled question marks.
func renderIDA(sig types.Signature) string {
	toks := strings.Fields(sig.Pattern)
	for i, t := range toks {
		if t == "??" {
			toks[i] = "?"
		}
	}
	return strings.Join(toks, " ")
}

// renderCheatEngine renders Cheat Engine's AOB scan style, identical in
// shape to the plain AOB form but kept as its own renderer since Cheat
// Engine input/output historically diverges on wildcard spelling.
func renderCheatEngine(sig types.Signature) string {
	return sig.Pattern
}

// renderCPP renders a C/C++ byte array plus a matching parallel mask
// string, the form tools embed directly into a signature-scanning source
// file.
func renderCPP(sig types.Signature) string {
	var bytesLine, maskLine strings.Builder
	bytesLine.WriteString("unsigned char pattern[] = { ")
	for i, b := range sig.Bytes {
		if i > 0 {
			bytesLine.WriteString(", ")
		}
		if b == nil {
			bytesLine.WriteString("0x00")
		} else {
			fmt.Fprintf(&bytesLine, "0x%02X", *b)
		}
	}
	bytesLine.WriteString(" };")

	maskLine.WriteString(`char mask[] = "`)
	maskLine.WriteString(sig.Mask)
	maskLine.WriteString(`";`)

	return bytesLine.String() + "\n" + maskLine.String()
}

// renderX64dbg renders x64dbg's "Find Pattern" style, which accepts the
// same hex/?? shape as plain AOB.
func renderX64dbg(sig types.Signature) string {
	return renderAOB(sig)
}
