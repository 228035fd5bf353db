package x86decode

// reg32 and reg8 give the canonical AT&T-less Intel-syntax register names
// for a 3-bit ModR/M reg/rm field, matching the convention x64dbg/IDA-style
// disassemblers use in the listings the parser ingests.
var reg32 = [8]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"}
var reg8 = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}

// arithGroup names the eight one-byte-opcode-group ALU mnemonics, each
// spanning opcodes base..base+5 (Eb/Gb, Ev/Gv, Gb/Eb, Gv/Ev, AL/Ib, eAX/Iz).
var arithGroup = map[byte]string{
	0x00: "add", 0x08: "or", 0x10: "adc", 0x18: "sbb",
	0x20: "and", 0x28: "sub", 0x30: "xor", 0x38: "cmp",
}

// grp1Mnemonics are the /digit extensions of opcodes 0x80/0x81/0x83.
var grp1Mnemonics = [8]string{"add", "or", "adc", "sbb", "and", "sub", "xor", "cmp"}

// grp3Mnemonics are the /digit extensions of opcodes 0xF6/0xF7.
var grp3Mnemonics = [8]string{"test", "test", "not", "neg", "mul", "imul", "div", "idiv"}

// grp5Mnemonics are the /digit extensions of opcode 0xFF.
var grp5Mnemonics = [8]string{"inc", "dec", "call", "callf", "jmp", "jmpf", "push", "push"}

// jccMnemonics maps the low nibble of a Jcc opcode (0x70-0x7F or the
// 0x0F 0x80-0x8F two-byte form) to its conditional-jump mnemonic.
var jccMnemonics = [16]string{
	"jo", "jno", "jb", "jae", "je", "jne", "jbe", "ja",
	"js", "jns", "jp", "jnp", "jl", "jge", "jle", "jg",
}
