package tc

import (
	"fmt"

	"github.com/coregx/congru/coset"
)

// Strategy selects how an Engine's initial coset table is built (spec §4.F).
type Strategy uint8

const (
	// UseRelations starts from a single coset (the identity) and discovers
	// the rest by scanning defining relations and generating pairs. The
	// only strategy this package fully drives itself.
	UseRelations Strategy = iota
	// UseCayleyGraph and Prefill both start from a caller-supplied Config.
	// Initial table instead of building one from scratch. Deriving that
	// table from a base semigroup's Cayley graph is the congruence
	// façade's job (it has both this package and the pair-closure engine
	// available); tc itself only validates and closes whatever table it is
	// given.
	UseCayleyGraph
	Prefill
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case UseRelations:
		return "use-relations"
	case UseCayleyGraph:
		return "use-cayley-graph"
	case Prefill:
		return "prefill"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// Config controls coset-table construction and the packing/compression
// cadence (spec §4.F).
type Config struct {
	// Strategy selects how the initial table is built. Default:
	// UseRelations.
	Strategy Strategy

	// Initial is the starting coset table for UseCayleyGraph and Prefill;
	// ignored (and may be nil) for UseRelations.
	Initial *coset.Table

	// Pack is the coset-table row count that triggers a compression pass
	// (dead rows reclaimed, live cosets renumbered contiguously). Default:
	// 120000.
	Pack uint64

	// PackGrowth is the fraction by which the next pack threshold grows
	// past the post-compression row count, so a presentation that keeps
	// discovering new cosets doesn't compress on every single row added.
	// Default: 0.10.
	PackGrowth float64
}

// DefaultConfig returns the defaults listed in spec §4.F.
func DefaultConfig() Config {
	return Config{
		Strategy:   UseRelations,
		Pack:       120000,
		PackGrowth: 0.10,
	}
}

// Validate reports whether c's fields are self-consistent.
func (c Config) Validate() error {
	if c.Pack == 0 {
		return &ConfigError{Field: "Pack", Message: "must be >= 1"}
	}
	if c.PackGrowth <= 0 {
		return &ConfigError{Field: "PackGrowth", Message: "must be > 0"}
	}
	if c.Strategy > Prefill {
		return &ConfigError{Field: "Strategy", Message: "unknown strategy"}
	}
	if c.Strategy != UseRelations && c.Initial == nil {
		return &ConfigError{Field: "Initial", Message: "required for non-UseRelations strategies"}
	}
	return nil
}

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("congru: tc: invalid config: %s: %s", e.Field, e.Message)
}
