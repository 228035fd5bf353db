// Package analyzer enriches a parsed types.Instruction with a per-byte
// structural classification and a volatility rating, without mutating the
// instruction it was given. Each call returns a new, fully-populated
// record, so the pipeline stays raw -> parsed -> analyzed with no step
// reaching back into an earlier one.
package analyzer

import (
	"strconv"
	"strings"

	"github.com/lookbusy1344/sig-forge/sig/types"
	"github.com/lookbusy1344/sig-forge/sig/x86decode"
)

// commonOpcodes are single-byte or common two-byte-0F forms that rate
// low opcode volatility; anything else (prefixed, or a rarely-emitted
// encoding) rates medium.
var commonOpcodes = map[string]bool{
	"mov": true, "push": true, "pop": true, "call": true, "jmp": true,
	"ret": true, "lea": true, "test": true, "cmp": true, "add": true,
	"sub": true, "and": true, "or": true, "xor": true, "nop": true,
	"movzx": true, "movsx": true,
}

// Analyze enriches a single instruction. It is pure: the input is read only.
func Analyze(inst types.Instruction) types.Instruction {
	out := inst

	addr, err := strconv.ParseUint(inst.Address, 16, 32)
	if err != nil {
		addr = 0
	}

	var structural *x86decode.Decoded
	if len(inst.Bytes) > 0 {
		if d, derr := x86decode.Decode(inst.Bytes, uint32(addr)); derr == nil && d.Length == inst.Size {
			structural = d
		}
	}

	out.ByteCategories = deriveByteCategories(inst, structural)
	out.WildcardPositions = candidatePositions(out.ByteCategories)
	out.Volatility = rateVolatility(inst, out.ByteCategories, structural)

	return out
}

// AnalyzeAll enriches every instruction in order.
func AnalyzeAll(instrs []types.Instruction) []types.Instruction {
	out := make([]types.Instruction, len(instrs))
	for i, inst := range instrs {
		out[i] = Analyze(inst)
	}
	return out
}

// deriveByteCategories prefers the structural decode (the authoritative
// byte-for-byte reconstruction) whenever it fully accounts for the
// instruction's bytes. When it doesn't (an instruction assembled by hand
// in the input, or one x86decode doesn't model), every byte is
// conservatively treated as opcode, which yields no wildcard candidates
// rather than guessed ones.
func deriveByteCategories(inst types.Instruction, structural *x86decode.Decoded) []types.ByteCategory {
	if structural != nil && len(structural.ByteCategories) == inst.Size {
		return structural.ByteCategories
	}
	cats := make([]types.ByteCategory, inst.Size)
	for i := range cats {
		cats[i] = types.CategoryOpcode
	}
	return cats
}

// candidatePositions returns every byte offset whose category is a
// wildcard candidate: displacement, immediate, or relative_offset. The
// Analyzer reports the full candidate set; the Generator's strategies
// decide which of these are actually realized.
func candidatePositions(cats []types.ByteCategory) []int {
	var out []int
	for i, c := range cats {
		switch c {
		case types.CategoryDisplacement, types.CategoryImmediate, types.CategoryRelativeOffset:
			out = append(out, i)
		}
	}
	return out
}

func hasRelativeOffset(cats []types.ByteCategory) bool {
	for _, c := range cats {
		if c == types.CategoryRelativeOffset {
			return true
		}
	}
	return false
}

func hasDisplacement(cats []types.ByteCategory) bool {
	for _, c := range cats {
		if c == types.CategoryDisplacement {
			return true
		}
	}
	return false
}

// rateVolatility derives the opcode/operand volatility pair, reconciling
// the textual operand string against the structural decode: when they
// disagree on whether a memory displacement is present, the structural view
// wins but operand volatility is marked one step lower.
func rateVolatility(inst types.Instruction, cats []types.ByteCategory, structural *x86decode.Decoded) types.VolatilityPair {
	opcodeCount := 0
	for _, c := range cats {
		if c == types.CategoryOpcode {
			opcodeCount++
		}
	}
	opcodeVol := types.VolatilityLow
	if opcodeCount > 2 || !commonOpcodes[strings.ToLower(baseMnemonic(inst.Mnemonic))] {
		opcodeVol = types.VolatilityMedium
	}

	textualHasMemory := strings.Contains(inst.OperandsNormalized, "[")
	structuralHasMemory := hasDisplacement(cats)
	disagreement := structuralHasMemory != textualHasMemory

	var operandVol types.Volatility
	switch {
	case hasRelativeOffset(cats) || IsGlobalAddress(inst.OperandsNormalized):
		operandVol = types.VolatilityHigh
	case structuralHasMemory:
		operandVol = types.VolatilityMedium
	default:
		operandVol = types.VolatilityLow
	}

	if disagreement && operandVol > types.VolatilityLow {
		operandVol--
	}

	return types.VolatilityPair{Opcode: opcodeVol, Operand: operandVol}
}

func baseMnemonic(m string) string {
	if i := strings.IndexByte(m, '.'); i >= 0 {
		return m[:i]
	}
	return m
}

// IsGlobalAddress reports whether the operand text contains a bare
// absolute address with no base register, e.g. "[0x401000]".
func IsGlobalAddress(operands string) bool {
	i := strings.Index(operands, "[0x")
	if i < 0 {
		return false
	}
	end := strings.IndexByte(operands[i:], ']')
	if end < 0 {
		return false
	}
	inside := operands[i+1 : i+end]
	for _, r := range inside {
		if (r >= 'a' && r <= 'z' && r != 'x') || r == '+' {
			return false
		}
	}
	return true
}

// IsStackOffset reports whether the operand text names a frame/stack
// pointer relative memory operand, e.g. "[ebp-0x10]" or "[esp+8]".
func IsStackOffset(operands string) bool {
	return strings.Contains(operands, "[ebp") || strings.Contains(operands, "[esp")
}

// IsStructOffset reports whether the operand text names a non-stack
// register-relative memory operand with a displacement, e.g. "[eax+0x4]".
func IsStructOffset(operands string) bool {
	if IsStackOffset(operands) || IsGlobalAddress(operands) {
		return false
	}
	i := strings.IndexByte(operands, '[')
	if i < 0 {
		return false
	}
	return strings.ContainsAny(operands[i:], "+-")
}
