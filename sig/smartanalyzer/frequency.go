package smartanalyzer

import "strings"

// bigramFrequency holds a small table of common x86 opcode bigrams and how
// often they turn up in ordinary compiler output, on a 0-1 scale. It is a
// hand-curated approximation, not a measured statistic: the exact
// values matter far less than the ordering they induce between common
// prologue/epilogue idioms and rarer instruction pairs.
var bigramFrequency = map[[2]string]float64{
	{"push", "mov"}:   0.90,
	{"mov", "mov"}:    0.70,
	{"mov", "sub"}:    0.55,
	{"sub", "mov"}:    0.50,
	{"mov", "push"}:   0.45,
	{"push", "call"}:  0.60,
	{"call", "add"}:   0.40,
	{"call", "mov"}:   0.50,
	{"test", "je"}:    0.65,
	{"test", "jne"}:   0.65,
	{"cmp", "je"}:     0.65,
	{"cmp", "jne"}:    0.65,
	{"mov", "pop"}:    0.40,
	{"pop", "ret"}:    0.80,
	{"mov", "ret"}:    0.35,
	{"lea", "push"}:   0.35,
	{"lea", "call"}:   0.30,
	{"xor", "ret"}:    0.30,
	{"movzx", "push"}: 0.25,
}

// bigramScore returns the known frequency for consecutive mnemonics a
// then b, or a low default for pairs the table doesn't cover.
func bigramScore(a, b string) float64 {
	if f, ok := bigramFrequency[[2]string{strings.ToLower(a), strings.ToLower(b)}]; ok {
		return f
	}
	return 0.20
}
