package quotient

import (
	"github.com/coregx/congru/congruence"
	"github.com/coregx/congru/presentation"
)

// NewFromCongruence races eng to completion (if it hasn't already) and
// wraps its coset table as a quotient semigroup. Returns
// presentation.ErrNotTwoSided for a Left or Right congruence (spec §9
// "NotTwoSided"), and presentation.ErrUndecidable if the race didn't
// produce a Todd-Coxeter winner to take a table from.
func NewFromCongruence(eng *congruence.Engine) (*Semigroup, error) {
	if eng.Kind() != presentation.TwoSided {
		return nil, presentation.ErrNotTwoSided
	}
	tbl, err := eng.CosetTable()
	if err != nil {
		return nil, err
	}
	return New(tbl), nil
}
