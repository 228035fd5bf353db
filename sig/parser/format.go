package parser

import "fmt"

// Format identifies which disassembler dialect produced an input listing.
type Format int

const (
	FormatAuto Format = iota
	FormatX64dbg
	FormatCheatEngine
	FormatHex
)

func (f Format) String() string {
	switch f {
	case FormatX64dbg:
		return "x64dbg"
	case FormatCheatEngine:
		return "cheatengine"
	case FormatHex:
		return "hex"
	default:
		return "auto"
	}
}

// ParseFormatHint turns a caller-supplied hint string into a Format. An
// empty string or "auto" both mean FormatAuto.
func ParseFormatHint(hint string) (Format, error) {
	switch hint {
	case "", "auto":
		return FormatAuto, nil
	case "x64dbg":
		return FormatX64dbg, nil
	case "cheatengine":
		return FormatCheatEngine, nil
	case "hex":
		return FormatHex, nil
	default:
		return FormatAuto, fmt.Errorf("unrecognized format hint %q", hint)
	}
}

// detectionSampleSize is N in "scan the first N non-empty lines".
const detectionSampleSize = 20

// formatAcceptThreshold is the minimum fraction of sampled lines a format
// must match to be accepted during auto-detection.
const formatAcceptThreshold = 0.30

// detectFormat scores every candidate format against a sample of the input
// and returns the highest scorer, provided it clears formatAcceptThreshold.
func detectFormat(lines []string) (Format, map[Format]float64) {
	sample := make([]string, 0, detectionSampleSize)
	for _, l := range lines {
		if trimmed := trimLine(l); trimmed != "" {
			sample = append(sample, trimmed)
			if len(sample) == detectionSampleSize {
				break
			}
		}
	}
	if len(sample) == 0 {
		return FormatAuto, nil
	}

	scores := map[Format]float64{
		FormatX64dbg:      0,
		FormatCheatEngine: 0,
		FormatHex:         0,
	}
	for _, l := range sample {
		if looksLikeX64dbg(l) {
			scores[FormatX64dbg]++
		}
		if looksLikeCheatEngine(l) {
			scores[FormatCheatEngine]++
		}
		if looksLikeHex(l) {
			scores[FormatHex]++
		}
	}
	n := float64(len(sample))
	for f := range scores {
		scores[f] /= n
	}

	best := FormatAuto
	bestScore := 0.0
	for _, f := range []Format{FormatX64dbg, FormatCheatEngine, FormatHex} {
		if scores[f] > bestScore {
			bestScore = scores[f]
			best = f
		}
	}
	if bestScore < formatAcceptThreshold {
		return FormatAuto, scores
	}
	return best, scores
}
