// Package x86decode is a small length-disassembler for 32-bit x86 machine
// code. It exists to recover instruction boundaries, a best-effort
// mnemonic/operand rendering, and an authoritative per-byte structural
// category (opcode/modrm/sib/displacement/immediate/relative_offset) for
// two callers: the parser's raw-hex format (which has no mnemonics at all
// and must synthesize instruction boundaries from bytes alone) and the
// analyzer's structural reconciliation pass (which cross-checks a textual
// operand-string parse against this structural view).
//
// It is not a full x86 instruction set decoder: it covers the common
// mnemonic families a compiler actually emits (mov, arithmetic, logic,
// compare, stack, jumps, calls, return) and falls back to a conservative
// "db" pseudo-instruction covering just the prefix and opcode bytes it
// consumed (one byte for a bare one-byte opcode) for anything else, like the
// parser's own edge case for bytes without a recognizable mnemonic. It
// never executes or symbolically analyzes anything: it only needs to know
// how many bytes an instruction occupies and which bytes are which kind of
// byte.
package x86decode

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

// Decoded is the structural result of decoding one instruction.
type Decoded struct {
	Length         int
	Mnemonic       string
	Operands       string
	Type           types.InstructionType
	ByteCategories []types.ByteCategory
	// RelativeTarget is the address a relative jump/call resolves to, valid
	// only when ByteCategories contains CategoryRelativeOffset.
	RelativeTarget uint32
	HasRelative    bool
}

// ErrTooShort means the buffer ended in the middle of an instruction.
var ErrTooShort = fmt.Errorf("x86decode: buffer too short")

func isPrefixByte(b byte) bool {
	switch b {
	case 0x66, 0x67, 0xF0, 0xF2, 0xF3, 0x2E, 0x36, 0x3E, 0x26, 0x64, 0x65:
		return true
	default:
		return false
	}
}

// Decode decodes a single instruction starting at buf[0]. addr is the
// instruction's own address, used to resolve relative jump/call targets.
func Decode(buf []byte, addr uint32) (*Decoded, error) {
	if len(buf) == 0 {
		return nil, ErrTooShort
	}

	var cats []types.ByteCategory
	pos := 0
	for pos < len(buf) && isPrefixByte(buf[pos]) {
		cats = append(cats, types.CategoryOpcode)
		pos++
	}
	if pos >= len(buf) {
		return nil, ErrTooShort
	}

	twoByte := false
	op := buf[pos]
	if op == 0x0F {
		cats = append(cats, types.CategoryOpcode)
		pos++
		if pos >= len(buf) {
			return nil, ErrTooShort
		}
		op = buf[pos]
		twoByte = true
	}
	cats = append(cats, types.CategoryOpcode)
	pos++

	d := &Decoded{}

	switch {
	case !twoByte && op >= 0x50 && op <= 0x57:
		d.Mnemonic, d.Operands, d.Type = "push", reg32[op-0x50], types.TypeStack

	case !twoByte && op >= 0x58 && op <= 0x5F:
		d.Mnemonic, d.Operands, d.Type = "pop", reg32[op-0x58], types.TypeStack

	case !twoByte && op >= 0xB8 && op <= 0xBF:
		imm, n, err := consumeImm32(buf, pos, &cats)
		if err != nil {
			return nil, err
		}
		pos = n
		d.Mnemonic = "mov"
		d.Operands = fmt.Sprintf("%s,0x%X", reg32[op-0xB8], imm)
		d.Type = types.TypeMov

	case !twoByte && op == 0xE8:
		rel, n, err := consumeRel32(buf, pos, &cats)
		if err != nil {
			return nil, err
		}
		pos = n
		d.Mnemonic, d.Type = "call", types.TypeCall
		d.HasRelative = true
		d.RelativeTarget = uint32(int64(addr) + int64(pos) + int64(rel))
		d.Operands = fmt.Sprintf("0x%08X", d.RelativeTarget)

	case !twoByte && op == 0xE9:
		rel, n, err := consumeRel32(buf, pos, &cats)
		if err != nil {
			return nil, err
		}
		pos = n
		d.Mnemonic, d.Type = "jmp", types.TypeUnconditionalJump
		d.HasRelative = true
		d.RelativeTarget = uint32(int64(addr) + int64(pos) + int64(rel))
		d.Operands = fmt.Sprintf("0x%08X", d.RelativeTarget)

	case !twoByte && op == 0xEB:
		rel, n, err := consumeRel8(buf, pos, &cats)
		if err != nil {
			return nil, err
		}
		pos = n
		d.Mnemonic, d.Type = "jmp", types.TypeUnconditionalJump
		d.HasRelative = true
		d.RelativeTarget = uint32(int64(addr) + int64(pos) + int64(rel))
		d.Operands = fmt.Sprintf("0x%08X", d.RelativeTarget)

	case !twoByte && op >= 0x70 && op <= 0x7F:
		rel, n, err := consumeRel8(buf, pos, &cats)
		if err != nil {
			return nil, err
		}
		pos = n
		d.Mnemonic, d.Type = jccMnemonics[op-0x70], types.TypeConditionalJump
		d.HasRelative = true
		d.RelativeTarget = uint32(int64(addr) + int64(pos) + int64(rel))
		d.Operands = fmt.Sprintf("0x%08X", d.RelativeTarget)

	case twoByte && op >= 0x80 && op <= 0x8F:
		rel, n, err := consumeRel32(buf, pos, &cats)
		if err != nil {
			return nil, err
		}
		pos = n
		d.Mnemonic, d.Type = jccMnemonics[op-0x80], types.TypeConditionalJump
		d.HasRelative = true
		d.RelativeTarget = uint32(int64(addr) + int64(pos) + int64(rel))
		d.Operands = fmt.Sprintf("0x%08X", d.RelativeTarget)

	case !twoByte && op == 0xC3:
		d.Mnemonic, d.Type = "ret", types.TypeReturn

	case !twoByte && op == 0xC2:
		imm, n, err := consumeImm16(buf, pos, &cats)
		if err != nil {
			return nil, err
		}
		pos = n
		d.Mnemonic, d.Type = "ret", types.TypeReturn
		d.Operands = fmt.Sprintf("0x%X", imm)

	case !twoByte && op == 0x90:
		d.Mnemonic, d.Type = "nop", types.TypeOther

	case !twoByte && op == 0xCC:
		d.Mnemonic, d.Type = "int3", types.TypeOther

	case !twoByte && (op == 0x88 || op == 0x8A):
		mem, reg, n, mcats, err := decodeModRM(buf, pos, "b")
		if err != nil {
			return nil, err
		}
		pos = n
		cats = append(cats, mcats...)
		d.Mnemonic, d.Type = "mov", types.TypeMov
		if op == 0x88 {
			d.Operands = fmt.Sprintf("%s,%s", mem, reg8[reg])
		} else {
			d.Operands = fmt.Sprintf("%s,%s", reg8[reg], mem)
		}

	case !twoByte && (op == 0x89 || op == 0x8B):
		mem, reg, n, mcats, err := decodeModRM(buf, pos, "v")
		if err != nil {
			return nil, err
		}
		pos = n
		cats = append(cats, mcats...)
		d.Mnemonic, d.Type = "mov", types.TypeMov
		if op == 0x89 {
			d.Operands = fmt.Sprintf("%s,%s", mem, reg32[reg])
		} else {
			d.Operands = fmt.Sprintf("%s,%s", reg32[reg], mem)
		}

	case !twoByte && op == 0x8D:
		mem, reg, n, mcats, err := decodeModRM(buf, pos, "v")
		if err != nil {
			return nil, err
		}
		pos = n
		cats = append(cats, mcats...)
		d.Mnemonic, d.Type = "lea", types.TypeMov
		d.Operands = fmt.Sprintf("%s,%s", reg32[reg], mem)

	case !twoByte && op == 0xC6:
		mem, _, n, mcats, err := decodeModRM(buf, pos, "b")
		if err != nil {
			return nil, err
		}
		cats = append(cats, mcats...)
		imm, n2, err := consumeImm8(buf, n, &cats)
		if err != nil {
			return nil, err
		}
		pos = n2
		d.Mnemonic, d.Type = "mov", types.TypeMov
		d.Operands = fmt.Sprintf("%s,0x%X", mem, imm)

	case !twoByte && op == 0xC7:
		mem, _, n, mcats, err := decodeModRM(buf, pos, "v")
		if err != nil {
			return nil, err
		}
		cats = append(cats, mcats...)
		imm, n2, err := consumeImm32(buf, n, &cats)
		if err != nil {
			return nil, err
		}
		pos = n2
		d.Mnemonic, d.Type = "mov", types.TypeMov
		d.Operands = fmt.Sprintf("%s,0x%X", mem, imm)

	case !twoByte && (op == 0x84 || op == 0x85):
		width := "v"
		if op == 0x84 {
			width = "b"
		}
		mem, reg, n, mcats, err := decodeModRM(buf, pos, width)
		if err != nil {
			return nil, err
		}
		pos = n
		cats = append(cats, mcats...)
		d.Mnemonic, d.Type = "test", types.TypeLogic
		regName := reg32[reg]
		if width == "b" {
			regName = reg8[reg]
		}
		d.Operands = fmt.Sprintf("%s,%s", mem, regName)

	case !twoByte && (op == 0x80 || op == 0x81 || op == 0x83):
		width := "v"
		if op == 0x80 {
			width = "b"
		}
		mem, reg, n, mcats, err := decodeModRM(buf, pos, width)
		if err != nil {
			return nil, err
		}
		cats = append(cats, mcats...)
		var imm int64
		var n2 int
		var err2 error
		switch op {
		case 0x80:
			imm, n2, err2 = consumeImm8(buf, n, &cats)
		case 0x81:
			imm, n2, err2 = consumeImm32(buf, n, &cats)
		case 0x83:
			imm, n2, err2 = consumeImm8Signed(buf, n, &cats)
		}
		if err2 != nil {
			return nil, err2
		}
		pos = n2
		d.Mnemonic = grp1Mnemonics[reg]
		d.Type = arithOrLogicType(d.Mnemonic)
		d.Operands = fmt.Sprintf("%s,0x%X", mem, imm)

	case !twoByte && (op == 0xF6 || op == 0xF7):
		width := "v"
		if op == 0xF6 {
			width = "b"
		}
		mem, reg, n, mcats, err := decodeModRM(buf, pos, width)
		if err != nil {
			return nil, err
		}
		cats = append(cats, mcats...)
		d.Mnemonic = grp3Mnemonics[reg]
		d.Type = types.TypeLogic
		if reg == 0 || reg == 1 {
			var imm int64
			var n2 int
			var err2 error
			if width == "b" {
				imm, n2, err2 = consumeImm8(buf, n, &cats)
			} else {
				imm, n2, err2 = consumeImm32(buf, n, &cats)
			}
			if err2 != nil {
				return nil, err2
			}
			pos = n2
			d.Operands = fmt.Sprintf("%s,0x%X", mem, imm)
		} else {
			pos = n
			d.Operands = mem
		}

	case !twoByte && op == 0xFF:
		mem, reg, n, mcats, err := decodeModRM(buf, pos, "v")
		if err != nil {
			return nil, err
		}
		pos = n
		cats = append(cats, mcats...)
		d.Mnemonic = grp5Mnemonics[reg]
		d.Operands = mem
		switch d.Mnemonic {
		case "call":
			d.Type = types.TypeCall
		case "jmp":
			d.Type = types.TypeUnconditionalJump
		case "push":
			d.Type = types.TypeStack
		default:
			d.Type = types.TypeArithmetic
		}

	case !twoByte && (op == 0x69 || op == 0x6B):
		mem, reg, n, mcats, err := decodeModRM(buf, pos, "v")
		if err != nil {
			return nil, err
		}
		cats = append(cats, mcats...)
		var imm int64
		var n2 int
		var err2 error
		if op == 0x69 {
			imm, n2, err2 = consumeImm32(buf, n, &cats)
		} else {
			imm, n2, err2 = consumeImm8Signed(buf, n, &cats)
		}
		if err2 != nil {
			return nil, err2
		}
		pos = n2
		d.Mnemonic, d.Type = "imul", types.TypeArithmetic
		d.Operands = fmt.Sprintf("%s,%s,0x%X", reg32[reg], mem, imm)

	case !twoByte && op == 0x68:
		imm, n, err := consumeImm32(buf, pos, &cats)
		if err != nil {
			return nil, err
		}
		pos = n
		d.Mnemonic, d.Type = "push", types.TypeStack
		d.Operands = fmt.Sprintf("0x%X", imm)

	case !twoByte && op == 0x6A:
		imm, n, err := consumeImm8Signed(buf, pos, &cats)
		if err != nil {
			return nil, err
		}
		pos = n
		d.Mnemonic, d.Type = "push", types.TypeStack
		d.Operands = fmt.Sprintf("0x%X", imm)

	case twoByte && (op == 0xB6 || op == 0xB7):
		width := "b"
		if op == 0xB7 {
			width = "v"
		}
		mem, reg, n, mcats, err := decodeModRM(buf, pos, width)
		if err != nil {
			return nil, err
		}
		pos = n
		cats = append(cats, mcats...)
		d.Mnemonic, d.Type = "movzx", types.TypeMov
		d.Operands = fmt.Sprintf("%s,%s", reg32[reg], mem)

	case twoByte && (op == 0xBE || op == 0xBF):
		width := "b"
		if op == 0xBF {
			width = "v"
		}
		mem, reg, n, mcats, err := decodeModRM(buf, pos, width)
		if err != nil {
			return nil, err
		}
		pos = n
		cats = append(cats, mcats...)
		d.Mnemonic, d.Type = "movsx", types.TypeMov
		d.Operands = fmt.Sprintf("%s,%s", reg32[reg], mem)

	case !twoByte && op <= 0x3D && arithGroup[op&0xF8] != "" && (op&0x7) <= 5:
		name := arithGroup[op&0xF8]
		form := op & 0x7
		d.Mnemonic = name
		d.Type = arithOrLogicType(name)
		switch form {
		case 0, 1:
			width := "v"
			if form == 0 {
				width = "b"
			}
			mem, reg, n, mcats, err := decodeModRM(buf, pos, width)
			if err != nil {
				return nil, err
			}
			pos = n
			cats = append(cats, mcats...)
			regName := reg32[reg]
			if width == "b" {
				regName = reg8[reg]
			}
			d.Operands = fmt.Sprintf("%s,%s", mem, regName)
		case 2, 3:
			width := "v"
			if form == 2 {
				width = "b"
			}
			mem, reg, n, mcats, err := decodeModRM(buf, pos, width)
			if err != nil {
				return nil, err
			}
			pos = n
			cats = append(cats, mcats...)
			regName := reg32[reg]
			if width == "b" {
				regName = reg8[reg]
			}
			d.Operands = fmt.Sprintf("%s,%s", regName, mem)
		case 4:
			imm, n, err := consumeImm8(buf, pos, &cats)
			if err != nil {
				return nil, err
			}
			pos = n
			d.Operands = fmt.Sprintf("al,0x%X", imm)
		case 5:
			imm, n, err := consumeImm32(buf, pos, &cats)
			if err != nil {
				return nil, err
			}
			pos = n
			d.Operands = fmt.Sprintf("eax,0x%X", imm)
		}

	default:
		// Unrecognized opcode: fall back to a one-byte "db" pseudo-instruction
		// covering just the opcode byte(s) consumed so far, the same way the
		// parser treats a byte-only line it cannot otherwise classify.
		d.Mnemonic, d.Type = "db", types.TypeOther
	}

	d.Length = pos
	d.ByteCategories = cats
	return d, nil
}

func arithOrLogicType(mnemonic string) types.InstructionType {
	switch mnemonic {
	case "and", "or", "xor":
		return types.TypeLogic
	case "cmp":
		return types.TypeCompare
	default:
		return types.TypeArithmetic
	}
}

func consumeImm8(buf []byte, pos int, cats *[]types.ByteCategory) (int64, int, error) {
	if pos+1 > len(buf) {
		return 0, pos, ErrTooShort
	}
	*cats = append(*cats, types.CategoryImmediate)
	return int64(buf[pos]), pos + 1, nil
}

func consumeImm8Signed(buf []byte, pos int, cats *[]types.ByteCategory) (int64, int, error) {
	if pos+1 > len(buf) {
		return 0, pos, ErrTooShort
	}
	*cats = append(*cats, types.CategoryImmediate)
	return int64(int8(buf[pos])), pos + 1, nil
}

func consumeImm16(buf []byte, pos int, cats *[]types.ByteCategory) (int64, int, error) {
	if pos+2 > len(buf) {
		return 0, pos, ErrTooShort
	}
	*cats = append(*cats, types.CategoryImmediate, types.CategoryImmediate)
	return int64(binary.LittleEndian.Uint16(buf[pos : pos+2])), pos + 2, nil
}

func consumeImm32(buf []byte, pos int, cats *[]types.ByteCategory) (int64, int, error) {
	if pos+4 > len(buf) {
		return 0, pos, ErrTooShort
	}
	for i := 0; i < 4; i++ {
		*cats = append(*cats, types.CategoryImmediate)
	}
	return int64(binary.LittleEndian.Uint32(buf[pos : pos+4])), pos + 4, nil
}

func consumeRel8(buf []byte, pos int, cats *[]types.ByteCategory) (int64, int, error) {
	if pos+1 > len(buf) {
		return 0, pos, ErrTooShort
	}
	*cats = append(*cats, types.CategoryRelativeOffset)
	return int64(int8(buf[pos])), pos + 1, nil
}

func consumeRel32(buf []byte, pos int, cats *[]types.ByteCategory) (int64, int, error) {
	if pos+4 > len(buf) {
		return 0, pos, ErrTooShort
	}
	for i := 0; i < 4; i++ {
		*cats = append(*cats, types.CategoryRelativeOffset)
	}
	return int64(int32(binary.LittleEndian.Uint32(buf[pos : pos+4]))), pos + 4, nil
}

// decodeModRM decodes a ModR/M byte (and its optional SIB/displacement) at
// buf[pos], returning a rendered memory-or-register operand string, the reg
// field, the new buffer position, and the byte categories it consumed.
func decodeModRM(buf []byte, pos int, width string) (operand string, reg int, next int, cats []types.ByteCategory, err error) {
	if pos >= len(buf) {
		return "", 0, pos, nil, ErrTooShort
	}
	b := buf[pos]
	mod := b >> 6
	reg = int((b >> 3) & 7)
	rm := int(b & 7)
	cats = append(cats, types.CategoryModRM)
	pos++

	if mod == 3 {
		if width == "b" {
			operand = reg8[rm]
		} else {
			operand = reg32[rm]
		}
		return operand, reg, pos, cats, nil
	}

	var base, index string
	scale := 1
	noBase := false

	if rm == 4 {
		if pos >= len(buf) {
			return "", 0, pos, nil, ErrTooShort
		}
		sib := buf[pos]
		cats = append(cats, types.CategorySIB)
		pos++
		ss := sib >> 6
		idx := int((sib >> 3) & 7)
		sibBase := int(sib & 7)
		scale = 1 << ss
		if idx != 4 {
			index = reg32[idx]
		}
		if sibBase == 5 && mod == 0 {
			noBase = true
		} else {
			base = reg32[sibBase]
		}
	} else if mod == 0 && rm == 5 {
		noBase = true
	} else {
		base = reg32[rm]
	}

	dispSize := 0
	switch {
	case mod == 0 && noBase:
		dispSize = 4
	case mod == 1:
		dispSize = 1
	case mod == 2:
		dispSize = 4
	}

	var disp int64
	if dispSize > 0 {
		if pos+dispSize > len(buf) {
			return "", 0, pos, nil, ErrTooShort
		}
		if dispSize == 1 {
			disp = int64(int8(buf[pos]))
		} else {
			disp = int64(int32(binary.LittleEndian.Uint32(buf[pos : pos+dispSize])))
		}
		for i := 0; i < dispSize; i++ {
			cats = append(cats, types.CategoryDisplacement)
		}
		pos += dispSize
	}

	var sb strings.Builder
	sb.WriteByte('[')
	wrote := false
	if base != "" {
		sb.WriteString(base)
		wrote = true
	}
	if index != "" {
		if wrote {
			sb.WriteByte('+')
		}
		sb.WriteString(index)
		if scale > 1 {
			fmt.Fprintf(&sb, "*%d", scale)
		}
		wrote = true
	}
	if dispSize > 0 {
		if !wrote {
			fmt.Fprintf(&sb, "0x%X", uint32(disp))
		} else if disp < 0 {
			fmt.Fprintf(&sb, "-0x%X", -disp)
		} else if disp > 0 {
			fmt.Fprintf(&sb, "+0x%X", disp)
		}
	}
	sb.WriteByte(']')
	operand = sb.String()
	return operand, reg, pos, cats, nil
}
