package parser

import (
	"strings"
)

func trimLine(l string) string {
	return strings.TrimSpace(l)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// looksLikeX64dbg matches "<addr> | <bytes> | <instr> [| <label>]".
func looksLikeX64dbg(l string) bool {
	parts := splitPipe(l)
	if len(parts) < 3 {
		return false
	}
	addr := strings.TrimSpace(parts[0])
	if !isHexToken(addr) {
		return false
	}
	return isByteField(strings.TrimSpace(parts[1]))
}

// looksLikeCheatEngine matches "<module>.exe+<offset> - <bytes> - <instr>".
func looksLikeCheatEngine(l string) bool {
	parts := splitDash(l)
	if len(parts) < 3 {
		return false
	}
	head := strings.TrimSpace(parts[0])
	if !strings.Contains(head, "+") {
		return false
	}
	idx := strings.LastIndex(head, "+")
	module, offset := head[:idx], head[idx+1:]
	if module == "" || !isHexToken(offset) {
		return false
	}
	return isByteField(strings.TrimSpace(parts[1]))
}

// looksLikeHex matches a line that is nothing but hex-pair bytes.
func looksLikeHex(l string) bool {
	stripped := strings.ReplaceAll(l, " ", "")
	if stripped == "" || len(stripped)%2 != 0 {
		return false
	}
	for i := 0; i < len(stripped); i++ {
		if !isHexDigit(stripped[i]) {
			return false
		}
	}
	return true
}

func isHexToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

// isByteField reports whether s is a whitespace-separated run of hex-pair
// tokens (the normalized byte field of an x64dbg/cheatengine line).
func isByteField(s string) bool {
	stripped := strings.ReplaceAll(s, " ", "")
	return stripped != "" && len(stripped)%2 == 0 && isHexToken(stripped)
}

// splitPipe splits on '|' and trims each field.
func splitPipe(l string) []string {
	return splitAndTrim(l, "|")
}

// splitDash splits on " - " (a bare '-' also appears inside negative operand
// offsets like "[ebp-4]", so we only split on the spaced form used as a
// field delimiter).
func splitDash(l string) []string {
	return splitAndTrim(l, " - ")
}

func splitAndTrim(l, sep string) []string {
	raw := strings.Split(l, sep)
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = strings.TrimSpace(r)
	}
	return out
}

// normalizeAddress upper-cases and zero-pads a hex address to 8 characters.
func normalizeAddress(hex string) string {
	hex = strings.ToUpper(strings.TrimSpace(hex))
	for len(hex) < 8 {
		hex = "0" + hex
	}
	return hex
}

// normalizeByteField strips intra-byte spaces and uppercases a byte field.
func normalizeByteField(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

// decodeHexBytes turns a contiguous hex-pair string into raw bytes. It
// returns false if the string has odd length or a non-hex character, or if
// it would decode to more than 15 bytes (the x86 max encoding length).
func decodeHexBytes(s string) ([]byte, bool) {
	if len(s) == 0 || len(s)%2 != 0 {
		return nil, false
	}
	n := len(s) / 2
	if n > 15 {
		return nil, false
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		hi, ok1 := hexVal(s[i*2])
		lo, ok2 := hexVal(s[i*2+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		out[i] = hi<<4 | lo
	}
	return out, true
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
