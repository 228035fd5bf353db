package parser

import (
	"strings"

	"github.com/lookbusy1344/sig-forge/sig/types"
)

// conditionalJumps is the closed set of conditional-jump mnemonics (the j*
// family other than the unconditional jmp).
var conditionalJumps = map[string]bool{
	"je": true, "jz": true, "jne": true, "jnz": true,
	"ja": true, "jae": true, "jb": true, "jbe": true,
	"jg": true, "jge": true, "jl": true, "jle": true,
	"jo": true, "jno": true, "js": true, "jns": true,
	"jp": true, "jpe": true, "jnp": true, "jpo": true,
	"jc": true, "jnc": true, "jcxz": true, "jecxz": true,
}

var arithmeticMnemonics = map[string]bool{
	"add": true, "adc": true, "sub": true, "sbb": true,
	"inc": true, "dec": true, "neg": true, "mul": true,
	"imul": true, "div": true, "idiv": true,
}

var logicMnemonics = map[string]bool{
	"and": true, "or": true, "xor": true, "not": true,
	"shl": true, "shr": true, "sal": true, "sar": true,
	"rol": true, "ror": true, "rcl": true, "rcr": true,
	"test": true,
}

var stackMnemonics = map[string]bool{
	"push": true, "pop": true, "pushad": true, "popad": true,
	"pushfd": true, "popfd": true, "enter": true, "leave": true,
}

var floatMnemonics = map[string]bool{
	"fld": true, "fst": true, "fstp": true, "fadd": true, "fsub": true,
	"fmul": true, "fdiv": true, "fild": true, "fist": true, "fistp": true,
	"fcom": true, "fcomp": true, "fxch": true, "fchs": true, "fabs": true,
}

var stringMnemonics = map[string]bool{
	"movs": true, "movsb": true, "movsw": true, "movsd": true,
	"cmps": true, "cmpsb": true, "cmpsw": true, "cmpsd": true,
	"scas": true, "scasb": true, "scasw": true, "scasd": true,
	"stos": true, "stosb": true, "stosw": true, "stosd": true,
	"lods": true, "lodsb": true, "lodsw": true, "lodsd": true,
	"rep": true, "repe": true, "repne": true, "repz": true, "repnz": true,
}

// ClassifyMnemonic maps a mnemonic to its InstructionType by table lookup.
// The base mnemonic is taken before any "."-separated suffix, so dumps that
// annotate mnemonics still classify.
func ClassifyMnemonic(mnemonic string) types.InstructionType {
	base := strings.ToLower(mnemonic)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	switch {
	case base == "jmp":
		return types.TypeUnconditionalJump
	case conditionalJumps[base]:
		return types.TypeConditionalJump
	case base == "call":
		return types.TypeCall
	case base == "ret" || base == "retn" || base == "retf" || base == "iret":
		return types.TypeReturn
	case base == "mov" || base == "movzx" || base == "movsx" || base == "lea":
		return types.TypeMov
	case arithmeticMnemonics[base]:
		return types.TypeArithmetic
	case logicMnemonics[base]:
		return types.TypeLogic
	case base == "cmp":
		return types.TypeCompare
	case stackMnemonics[base]:
		return types.TypeStack
	case floatMnemonics[base] || strings.HasPrefix(base, "f"):
		return types.TypeFloat
	case stringMnemonics[base]:
		return types.TypeString
	default:
		return types.TypeOther
	}
}
