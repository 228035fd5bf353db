// Package parser ingests free-form disassembly text, auto-detects which of
// three supported dialects produced it, and reconstructs an ordered list of
// types.Instruction records with their raw bytes.
package parser

import (
	"strings"

	"github.com/lookbusy1344/sig-forge/sig/types"
	"github.com/lookbusy1344/sig-forge/sig/x86decode"
)

// Result is the output of a successful Parse call.
type Result struct {
	Instructions []types.Instruction
	Labels       []string
	Format       Format
	Module       string
	Stats        types.Stats
}

// Parse detects the dialect of text (unless hint pins one) and parses it
// into an ordered instruction list. It returns a hard *Error only when no
// line matches any supported format; invalid individual lines are dropped
// and counted in Stats.Dropped.
func Parse(text string, hint Format) (*Result, error) {
	lines := strings.Split(text, "\n")

	format := hint
	var scores map[Format]float64
	if format == FormatAuto {
		format, scores = detectFormat(lines)
		if format == FormatAuto {
			return nil, NewError(ErrKindNoFormatMatch, "no input line matched any supported disassembly format")
		}
	}

	res := &Result{Format: format}
	res.Stats.Scores = make(map[string]float64, len(scores))
	for f, s := range scores {
		res.Stats.Scores[f.String()] = s
	}

	seenLabels := make(map[string]bool)

	switch format {
	case FormatHex:
		instrs, err := parseHex(lines)
		if err != nil {
			return nil, err
		}
		res.Instructions = instrs
		res.Stats.Parsed = len(instrs)

	case FormatX64dbg:
		for _, raw := range lines {
			line := trimLine(raw)
			if line == "" {
				continue
			}
			inst, ok, err := parseX64dbgLine(line)
			if err != nil {
				res.Stats.Dropped++
				continue
			}
			if !ok {
				continue
			}
			res.Stats.Parsed++
			if inst.Label != "" && !seenLabels[inst.Label] {
				seenLabels[inst.Label] = true
				res.Labels = append(res.Labels, inst.Label)
			}
			res.Instructions = append(res.Instructions, *inst)
		}

	case FormatCheatEngine:
		for _, raw := range lines {
			line := trimLine(raw)
			if line == "" {
				continue
			}
			inst, module, ok, err := parseCheatEngineLine(line)
			if err != nil {
				res.Stats.Dropped++
				continue
			}
			if !ok {
				continue
			}
			if res.Module == "" {
				res.Module = module
			}
			res.Stats.Parsed++
			if inst.Label != "" && !seenLabels[inst.Label] {
				seenLabels[inst.Label] = true
				res.Labels = append(res.Labels, inst.Label)
			}
			res.Instructions = append(res.Instructions, *inst)
		}
	}

	res.Stats.FormatDetected = format.String()
	return res, nil
}

// parseX64dbgLine parses "<addr> | <bytes> | <mnemonic> <operands> [| <label>]".
// ok is false (with a nil error) when the line doesn't have the pipe shape
// at all, so the caller can silently skip it rather than count it dropped.
func parseX64dbgLine(line string) (inst *types.Instruction, ok bool, err error) {
	parts := splitPipe(line)
	if len(parts) < 3 {
		return nil, false, nil
	}
	addr := parts[0]
	if !isHexToken(addr) {
		return nil, false, nil
	}
	byteField := normalizeByteField(parts[1])

	instrField := parts[2]
	mnemonic, operands := splitMnemonic(instrField)

	var label string
	if len(parts) > 3 {
		trailing := strings.TrimSpace(strings.Join(parts[3:], "|"))
		if trailing != "" && !looksLikeOperandContinuation(trailing) {
			label = trailing
		}
	}

	inst, err = buildInstruction(normalizeAddress(addr), byteField, mnemonic, operands, label)
	if err != nil {
		return nil, false, err
	}
	return inst, true, nil
}

// parseCheatEngineLine parses "<module>.exe+<offset> - <bytes> - <mnemonic> <operands> [- <label>]".
func parseCheatEngineLine(line string) (inst *types.Instruction, module string, ok bool, err error) {
	parts := splitDash(line)
	if len(parts) < 3 {
		return nil, "", false, nil
	}
	head := parts[0]
	idx := strings.LastIndex(head, "+")
	if idx < 0 {
		return nil, "", false, nil
	}
	module = head[:idx]
	offset := head[idx+1:]
	if module == "" || !isHexToken(offset) {
		return nil, "", false, nil
	}

	byteField := normalizeByteField(parts[1])

	mnemonic, operands := splitMnemonic(parts[2])

	var label string
	if len(parts) > 3 {
		trailing := strings.TrimSpace(strings.Join(parts[3:], " - "))
		if trailing != "" && !looksLikeOperandContinuation(trailing) {
			label = trailing
		}
	}

	result, err := buildInstruction(normalizeAddress(offset), byteField, mnemonic, operands, label)
	if err != nil {
		return nil, "", false, err
	}
	return result, module, true, nil
}

// splitMnemonic separates the first whitespace-delimited token (the
// mnemonic) from the remainder (the operands) of an instruction field.
func splitMnemonic(field string) (mnemonic, operands string) {
	field = strings.TrimSpace(field)
	i := strings.IndexAny(field, " \t")
	if i < 0 {
		return strings.ToLower(field), ""
	}
	return strings.ToLower(field[:i]), strings.TrimSpace(field[i+1:])
}

// looksLikeOperandContinuation guards against mistaking a second operand
// clause (rare in these single-line dumps, but seen when an operand string
// itself legitimately contains the line's delimiter character) for a label.
func looksLikeOperandContinuation(s string) bool {
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-")
}

// buildInstruction turns a normalized address/byte-field/mnemonic/operands
// quadruple into a types.Instruction, applying the edge-case rules: a
// mnemonic with no bytes is dropped, and bytes with no mnemonic become "db".
func buildInstruction(addr, byteField, mnemonic, operands, label string) (*types.Instruction, error) {
	if byteField == "" {
		return nil, NewError(ErrKindInvalidBytes, "line has a mnemonic but no byte tokens")
	}
	bytes, ok := decodeHexBytes(byteField)
	if !ok {
		return nil, NewError(ErrKindInvalidBytes, "byte field is not a valid hex sequence or exceeds 15 bytes")
	}
	if mnemonic == "" {
		mnemonic = "db"
	}

	inst := &types.Instruction{
		Address:            addr,
		Bytes:              bytes,
		Size:               len(bytes),
		Mnemonic:           mnemonic,
		Operands:           operands,
		OperandsNormalized: normalizeOperands(operands),
		Label:              label,
	}
	if mnemonic == "db" {
		inst.Type = types.TypeOther
	} else {
		inst.Type = ClassifyMnemonic(mnemonic)
	}
	return inst, nil
}

func normalizeOperands(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

// parseHex coalesces every hex pair in the input and disassembles the
// resulting buffer with the x86decode length-disassembler, synthesizing
// sequential addresses starting at 0x00000000. Lines that are not pure
// hex-pair runs are skipped.
func parseHex(lines []string) ([]types.Instruction, error) {
	var sb strings.Builder
	for _, raw := range lines {
		line := trimLine(raw)
		if line == "" || !looksLikeHex(line) {
			continue
		}
		sb.WriteString(strings.ReplaceAll(line, " ", ""))
	}
	stripped := sb.String()
	buf, ok := decodeHexBytesUnbounded(stripped)
	if !ok {
		return nil, NewError(ErrKindNoFormatMatch, "hex input is not a valid hex byte stream")
	}

	var out []types.Instruction
	pc := 0
	for pc < len(buf) {
		d, err := x86decode.Decode(buf[pc:], uint32(pc))
		if err != nil {
			break
		}
		length := d.Length
		if length == 0 {
			length = 1
		}
		if pc+length > len(buf) {
			length = len(buf) - pc
		}
		inst := types.Instruction{
			Address:            normalizeAddress(hexAddr(uint32(pc))),
			Bytes:              append([]byte(nil), buf[pc:pc+length]...),
			Size:               length,
			Mnemonic:           d.Mnemonic,
			Operands:           d.Operands,
			OperandsNormalized: normalizeOperands(d.Operands),
			Type:               d.Type,
		}
		out = append(out, inst)
		pc += length
	}
	return out, nil
}

// decodeHexBytesUnbounded is like decodeHexBytes but has no 15-byte cap,
// since raw-hex input is a whole program image, not a single instruction's
// byte field.
func decodeHexBytesUnbounded(s string) ([]byte, bool) {
	if len(s) == 0 || len(s)%2 != 0 {
		return nil, false
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, ok1 := hexVal(s[i*2])
		lo, ok2 := hexVal(s[i*2+1])
		if !ok1 || !ok2 {
			return nil, false
		}
		out[i] = hi<<4 | lo
	}
	return out, true
}

func hexAddr(v uint32) string {
	const digits = "0123456789ABCDEF"
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = digits[v&0xF]
		v >>= 4
	}
	return string(b)
}
