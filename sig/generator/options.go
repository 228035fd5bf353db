// Package generator synthesizes ranked, wildcarded byte-pattern Signatures
// from an analyzed instruction stream, under nine distinct strategies.
package generator

import "fmt"

// WildcardRules is the set of seven independently-configurable flags that
// gate which candidate byte categories the "conservative" and "balanced"
// strategies are willing to realize. Every other strategy either ignores
// the rules (aggressive, max_stability) or hardcodes its own fixed subset
// (minimal, stack_focus, global_focus, memory_heavy, immediates_only).
type WildcardRules struct {
	RelativeJumps       bool `json:"relative_jumps"`
	RelativeCalls       bool `json:"relative_calls"`
	StackOffsets        bool `json:"stack_offsets"`
	GlobalAddresses     bool `json:"global_addresses"`
	Immediates          bool `json:"immediates"`
	StructOffsets       bool `json:"struct_offsets"`
	MemoryDisplacements bool `json:"memory_displacements"`
}

// DefaultWildcardRules returns the default rule set: relative jumps/calls,
// stack offsets, and global addresses on; immediates, struct offsets, and
// the memory_displacements superset off.
func DefaultWildcardRules() WildcardRules {
	return WildcardRules{
		RelativeJumps:   true,
		RelativeCalls:   true,
		StackOffsets:    true,
		GlobalAddresses: true,
	}
}

// Options configures a Generate/GenerateTargeted/GenerateForID call. It is passed by
// value, as an explicit immutable configuration struct rather than a
// process-wide option object.
type Options struct {
	MinLength     int           `json:"min_length"`
	MaxLength     int           `json:"max_length"`
	Variants      int           `json:"variants"`
	ContextBefore int           `json:"context_before"`
	ContextAfter  int           `json:"context_after"`
	WildcardRules WildcardRules `json:"wildcard_rules"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MinLength:     20,
		MaxLength:     50,
		Variants:      10,
		ContextBefore: 0,
		ContextAfter:  10,
		WildcardRules: DefaultWildcardRules(),
	}
}

// Validate reports the one programmer error treated as a hard failure: an
// impossible length bound.
func (o Options) Validate() error {
	if o.MinLength > o.MaxLength {
		return fmt.Errorf("generator: min_length (%d) > max_length (%d)", o.MinLength, o.MaxLength)
	}
	return nil
}
