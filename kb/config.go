package kb

import (
	"fmt"

	"github.com/coregx/congru/presentation"
)

// OverlapPolicy selects which overlap measure bounds critical-pair
// generation (spec §4.D).
type OverlapPolicy uint8

const (
	// ABC measures |A|+|B|+|C| for an overlap A·B·C.
	ABC OverlapPolicy = iota
	// ABBC measures |AB|+|BC|.
	ABBC
	// MaxABBC measures max(|AB|, |BC|).
	MaxABBC
)

// String implements fmt.Stringer.
func (p OverlapPolicy) String() string {
	switch p {
	case ABC:
		return "ABC"
	case ABBC:
		return "AB_BC"
	case MaxABBC:
		return "MAX_AB_BC"
	default:
		return fmt.Sprintf("OverlapPolicy(%d)", uint8(p))
	}
}

// Config controls the completion loop's batching, confluence-check cadence,
// and overlap bounds (spec §4.D configuration table). Grounded on
// meta.Config / meta.DefaultConfig / meta.Config.Validate.
type Config struct {
	// MaxPendingRules is validated (it must be at least 1) and defaults to
	// 128, but the completion loop does not read it: each step drains the
	// whole pending stack before it generates overlaps.
	MaxPendingRules int

	// CheckConfluenceInterval is how many new overlaps are generated
	// between confluence tests. Default: 4096.
	CheckConfluenceInterval int

	// MaxOverlap bounds the overlap measure (selected by OverlapPolicy);
	// an overlap exceeding it is skipped. presentation.Unbounded means no
	// bound. Default: presentation.Unbounded.
	MaxOverlap uint64

	// MaxRules caps the number of active rules; completion stops (without
	// necessarily reaching confluence) once hit. presentation.Unbounded
	// means no cap. Default: presentation.Unbounded.
	MaxRules uint64

	// OverlapPolicy selects which of the three overlap measures is used.
	// Default: ABC.
	OverlapPolicy OverlapPolicy
}

// DefaultConfig returns the defaults listed in spec §4.D.
func DefaultConfig() Config {
	return Config{
		MaxPendingRules:         128,
		CheckConfluenceInterval: 4096,
		MaxOverlap:              presentation.Unbounded,
		MaxRules:                presentation.Unbounded,
		OverlapPolicy:           ABC,
	}
}

// Validate reports whether c's fields are self-consistent.
func (c Config) Validate() error {
	if c.MaxPendingRules < 1 {
		return &ConfigError{Field: "MaxPendingRules", Message: "must be >= 1"}
	}
	if c.CheckConfluenceInterval < 1 {
		return &ConfigError{Field: "CheckConfluenceInterval", Message: "must be >= 1"}
	}
	if c.OverlapPolicy > MaxABBC {
		return &ConfigError{Field: "OverlapPolicy", Message: "unknown overlap policy"}
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
	return fmt.Sprintf("congru: kb: invalid config: %s: %s", e.Field, e.Message)
}
