// Package types holds the immutable value types shared by the parser,
// analyzer, generator, and smart analyzer: Instruction, Signature, and the
// small closed enumerations that classify them.
package types

import (
	"encoding/json"
	"fmt"
)

// InstructionType categorizes an instruction for classification and scoring.
type InstructionType int

const (
	TypeOther InstructionType = iota
	TypeConditionalJump
	TypeUnconditionalJump
	TypeCall
	TypeReturn
	TypeMov
	TypeArithmetic
	TypeLogic
	TypeCompare
	TypeStack
	TypeFloat
	TypeString
)

func (t InstructionType) String() string {
	switch t {
	case TypeConditionalJump:
		return "conditional_jump"
	case TypeUnconditionalJump:
		return "unconditional_jump"
	case TypeCall:
		return "call"
	case TypeReturn:
		return "return"
	case TypeMov:
		return "mov"
	case TypeArithmetic:
		return "arithmetic"
	case TypeLogic:
		return "logic"
	case TypeCompare:
		return "compare"
	case TypeStack:
		return "stack"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "other"
	}
}

var instructionTypeNames = map[string]InstructionType{
	"conditional_jump":   TypeConditionalJump,
	"unconditional_jump": TypeUnconditionalJump,
	"call":               TypeCall,
	"return":             TypeReturn,
	"mov":                TypeMov,
	"arithmetic":         TypeArithmetic,
	"logic":              TypeLogic,
	"compare":            TypeCompare,
	"stack":              TypeStack,
	"float":              TypeFloat,
	"string":             TypeString,
	"other":              TypeOther,
}

// MarshalJSON renders the type as its lowercase string tag rather than the
// underlying int, so JSON callers (the HTTP API, exported fixtures) see
// "conditional_jump" instead of an opaque ordinal.
func (t InstructionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the same string tags MarshalJSON produces.
func (t *InstructionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := instructionTypeNames[s]
	if !ok {
		return fmt.Errorf("types: unknown instruction type %q", s)
	}
	*t = v
	return nil
}

// Volatility rates how likely a byte or operand is to change across rebuilds.
type Volatility int

const (
	VolatilityLow Volatility = iota
	VolatilityMedium
	VolatilityHigh
)

func (v Volatility) String() string {
	switch v {
	case VolatilityMedium:
		return "medium"
	case VolatilityHigh:
		return "high"
	default:
		return "low"
	}
}

var volatilityNames = map[string]Volatility{
	"low":    VolatilityLow,
	"medium": VolatilityMedium,
	"high":   VolatilityHigh,
}

// MarshalJSON renders the volatility rating as its "low"/"medium"/"high" tag.
func (v Volatility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts the same string tags MarshalJSON produces.
func (v *Volatility) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	val, ok := volatilityNames[s]
	if !ok {
		return fmt.Errorf("types: unknown volatility %q", s)
	}
	*v = val
	return nil
}

// VolatilityPair is the (opcode_level, operand_level) rating the analyzer
// attaches to an instruction.
type VolatilityPair struct {
	Opcode  Volatility `json:"opcode_level"`
	Operand Volatility `json:"operand_level"`
}

// ByteCategory classifies a single byte of an instruction's encoding.
type ByteCategory int

const (
	CategoryOpcode ByteCategory = iota
	CategoryModRM
	CategorySIB
	CategoryDisplacement
	CategoryImmediate
	CategoryRelativeOffset
)

func (c ByteCategory) String() string {
	switch c {
	case CategoryModRM:
		return "modrm"
	case CategorySIB:
		return "sib"
	case CategoryDisplacement:
		return "displacement"
	case CategoryImmediate:
		return "immediate"
	case CategoryRelativeOffset:
		return "relative_offset"
	default:
		return "opcode"
	}
}

var byteCategoryNames = map[string]ByteCategory{
	"opcode":          CategoryOpcode,
	"modrm":           CategoryModRM,
	"sib":             CategorySIB,
	"displacement":    CategoryDisplacement,
	"immediate":       CategoryImmediate,
	"relative_offset": CategoryRelativeOffset,
}

// MarshalJSON renders the byte category as its lowercase tag.
func (c ByteCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the same string tags MarshalJSON produces.
func (c *ByteCategory) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := byteCategoryNames[s]
	if !ok {
		return fmt.Errorf("types: unknown byte category %q", s)
	}
	*c = v
	return nil
}

// RawBytes is a byte slice that marshals to JSON as an array of 0-255
// integers rather than Go's default base64-string encoding for []byte. It is
// otherwise a plain byte slice wherever it's sliced, indexed, or appended to.
type RawBytes []byte

// MarshalJSON renders the bytes as a JSON array of integers.
func (b RawBytes) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON accepts a JSON array of 0-255 integers.
func (b *RawBytes) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("types: byte value %d out of range", v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// Instruction is the fundamental parsed-and-analyzed record. It is built in
// two stages: the parser constructs the address/bytes/mnemonic/operand
// fields, and the analyzer enriches it once with Volatility and
// WildcardPositions. Neither stage mutates a record after returning it.
type Instruction struct {
	Address            string         `json:"address"` // 8 uppercase hex digits
	Bytes              RawBytes       `json:"bytes"`
	Size               int            `json:"size"`
	Mnemonic           string         `json:"mnemonic"`
	Operands           string         `json:"operands"`
	OperandsNormalized string         `json:"operands_normalized"`
	Label              string         `json:"label,omitempty"`
	Type               InstructionType `json:"type"`
	Volatility         VolatilityPair `json:"volatility"`
	WildcardPositions  []int          `json:"wildcard_positions"`
	ByteCategories     []ByteCategory `json:"byte_categories,omitempty"` // len == Size, one category per byte
}

// Validate checks the Instruction invariants: size matches the byte count
// and every wildcard position is in range. It is used by tests and by
// callers that build Instructions by hand.
func (i *Instruction) Validate() error {
	if i.Size != len(i.Bytes) {
		return fmt.Errorf("instruction %s: size %d does not match len(bytes) %d", i.Address, i.Size, len(i.Bytes))
	}
	for _, p := range i.WildcardPositions {
		if p < 0 || p >= i.Size {
			return fmt.Errorf("instruction %s: wildcard position %d out of range [0,%d)", i.Address, p, i.Size)
		}
	}
	if len(i.ByteCategories) != 0 && len(i.ByteCategories) != i.Size {
		return fmt.Errorf("instruction %s: byte categories len %d does not match size %d", i.Address, len(i.ByteCategories), i.Size)
	}
	return nil
}

// Stability rates how likely a signature is to survive a rebuild.
type Stability int

const (
	StabilityLow Stability = iota
	StabilityMedium
	StabilityHigh
)

func (s Stability) String() string {
	switch s {
	case StabilityMedium:
		return "medium"
	case StabilityHigh:
		return "high"
	default:
		return "low"
	}
}

var stabilityNames = map[string]Stability{
	"low":    StabilityLow,
	"medium": StabilityMedium,
	"high":   StabilityHigh,
}

// MarshalJSON renders the stability rating as its "low"/"medium"/"high" tag.
func (s Stability) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the same string tags MarshalJSON produces.
func (s *Stability) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, ok := stabilityNames[str]
	if !ok {
		return fmt.Errorf("types: unknown stability %q", str)
	}
	*s = v
	return nil
}

// ReasonCode explains why a particular byte position was wildcarded.
type ReasonCode int

const (
	ReasonRelativeJump ReasonCode = iota
	ReasonRelativeCall
	ReasonStackOffset
	ReasonGlobalAddress
	ReasonImmediate
	ReasonStructOffset
	ReasonMemoryDisplacement
)

func (r ReasonCode) String() string {
	switch r {
	case ReasonRelativeCall:
		return "relative_call"
	case ReasonStackOffset:
		return "stack_offset"
	case ReasonGlobalAddress:
		return "global_address"
	case ReasonImmediate:
		return "immediate"
	case ReasonStructOffset:
		return "struct_offset"
	case ReasonMemoryDisplacement:
		return "memory_displacement"
	default:
		return "relative_jump"
	}
}

var reasonCodeNames = map[string]ReasonCode{
	"relative_jump":       ReasonRelativeJump,
	"relative_call":       ReasonRelativeCall,
	"stack_offset":        ReasonStackOffset,
	"global_address":      ReasonGlobalAddress,
	"immediate":           ReasonImmediate,
	"struct_offset":       ReasonStructOffset,
	"memory_displacement": ReasonMemoryDisplacement,
}

// MarshalJSON renders the reason code as its lowercase tag.
func (r ReasonCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts the same string tags MarshalJSON produces.
func (r *ReasonCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := reasonCodeNames[s]
	if !ok {
		return fmt.Errorf("types: unknown reason code %q", s)
	}
	*r = v
	return nil
}

// WildcardReason documents one realized wildcard position in a Signature.
type WildcardReason struct {
	Position    int        `json:"position"`
	Reason      ReasonCode `json:"reason_code"`
	HumanDetail string     `json:"human_detail"`
}

// Signature is an output artifact of the generator: a byte window with some
// positions wildcarded, plus the scoring that explains why it was kept.
type Signature struct {
	Pattern           string           `json:"pattern"` // space-separated "XX"/"??" tokens
	Mask              string           `json:"mask"`    // same token count, 'x' or '?' per position
	Bytes             []*byte          `json:"bytes"`
	Length            int              `json:"length"`
	WildcardCount     int              `json:"wildcard_count"`
	WildcardPositions []int            `json:"wildcard_positions"`
	UniquenessScore   float64          `json:"uniqueness_score"`
	Stability         Stability        `json:"stability"`
	Strategy          string           `json:"strategy"`
	WildcardReasons   []WildcardReason `json:"wildcard_reasons"`
	Warning           string           `json:"warning,omitempty"` // set when emitted under WindowTooShort fail-soft
}

// Validate checks the pattern/mask/bytes consistency invariants.
func (s *Signature) Validate() error {
	tokens := splitTokens(s.Pattern)
	if len(tokens) != len(s.Mask) || len(tokens) != len(s.Bytes) {
		return fmt.Errorf("signature %s: token/mask/bytes length mismatch %d/%d/%d", s.Strategy, len(tokens), len(s.Mask), len(s.Bytes))
	}
	wc := 0
	for i, tok := range tokens {
		isWild := tok == "??"
		maskWild := s.Mask[i] == '?'
		byteWild := s.Bytes[i] == nil
		if isWild != maskWild || isWild != byteWild {
			return fmt.Errorf("signature %s: position %d disagrees on wildcard status", s.Strategy, i)
		}
		if isWild {
			wc++
		}
	}
	if wc != s.WildcardCount {
		return fmt.Errorf("signature %s: wildcard_count %d does not match computed %d", s.Strategy, s.WildcardCount, wc)
	}
	return nil
}

func splitTokens(pattern string) []string {
	var tokens []string
	start := -1
	for i := 0; i <= len(pattern); i++ {
		if i < len(pattern) && pattern[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, pattern[start:i])
			start = -1
		}
	}
	return tokens
}

// Stats records aggregate statistics from a parse.
type Stats struct {
	Parsed         int                `json:"parsed"`
	Dropped        int                `json:"dropped"`
	FormatDetected string             `json:"format_detected"`
	Scores         map[string]float64 `json:"scores,omitempty"`
}
