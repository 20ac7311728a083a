// Package coset implements the sparse coset-by-generator table Todd-Coxeter
// coset enumeration tests and mutates (spec §4.E). A table grows one row at
// a time as new cosets are defined; the reverse direction (which cosets map
// into a given coset under a given generator) is kept as an intrusive
// singly-linked preimage chain per (coset, generator) cell rather than a
// reverse index, mirroring the active-rule list's forwarding-pointer style
// in package rewrite.
package coset

import (
	"iter"

	"github.com/coregx/congru/presentation"
)

// Letter re-exports presentation.Letter so callers that only need this
// package avoid an extra import.
type Letter = presentation.Letter

// Undefined marks a table cell with no entry.
const Undefined = presentation.Undefined

// Table is a coset x generator table. Row c, column g holds the coset
// reached from coset c by (right) multiplication by generator g, or
// Undefined if that transition has not yet been determined.
type Table struct {
	nrGens int

	image     [][]uint64 // image[c][g]
	preimInit [][]uint64 // preimInit[c][g]: head of the preimage chain into c under g
	preimNext [][]uint64 // preimNext[c][g]: next link after c in whatever chain c is in
}

// NewTable creates an empty table (zero rows) over nrGens generators.
func NewTable(nrGens int) *Table {
	return &Table{nrGens: nrGens}
}

// NrGens returns the number of generator columns.
func (t *Table) NrGens() int { return t.nrGens }

// NrCosets returns the number of rows currently allocated.
func (t *Table) NrCosets() int { return len(t.image) }

// AddRow appends a new, entirely-undefined coset row and returns its index.
func (t *Table) AddRow() uint64 {
	t.image = append(t.image, undefinedRow(t.nrGens))
	t.preimInit = append(t.preimInit, undefinedRow(t.nrGens))
	t.preimNext = append(t.preimNext, undefinedRow(t.nrGens))
	return uint64(len(t.image) - 1)
}

func undefinedRow(n int) []uint64 {
	row := make([]uint64, n)
	for i := range row {
		row[i] = Undefined
	}
	return row
}

// Image returns the coset reached from c via g, or Undefined.
func (t *Table) Image(c uint64, g Letter) uint64 { return t.image[c][g] }

// SetImage records that c maps to d under g, replacing any previous image
// and relinking c into d's preimage chain.
func (t *Table) SetImage(c uint64, g Letter, d uint64) {
	if old := t.image[c][g]; old != Undefined {
		t.unlinkPreimage(c, g, old)
	}
	t.image[c][g] = d
	t.preimNext[c][g] = t.preimInit[d][g]
	t.preimInit[d][g] = c
}

// ClearImage removes the mapping from c under g, if any, unlinking c from
// the preimage chain of whatever coset it pointed to.
func (t *Table) ClearImage(c uint64, g Letter) {
	d := t.image[c][g]
	if d == Undefined {
		return
	}
	t.unlinkPreimage(c, g, d)
	t.image[c][g] = Undefined
}

func (t *Table) unlinkPreimage(c uint64, g Letter, d uint64) {
	head := t.preimInit[d][g]
	if head == c {
		t.preimInit[d][g] = t.preimNext[c][g]
		t.preimNext[c][g] = Undefined
		return
	}
	prev := head
	for prev != Undefined && t.preimNext[prev][g] != c {
		prev = t.preimNext[prev][g]
	}
	if prev != Undefined {
		t.preimNext[prev][g] = t.preimNext[c][g]
	}
	t.preimNext[c][g] = Undefined
}

// PreimageChain lazily yields every coset d with Image(d, g) == c, in
// most-recently-linked-first order.
func (t *Table) PreimageChain(c uint64, g Letter) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for d := t.preimInit[c][g]; d != Undefined; d = t.preimNext[d][g] {
			if !yield(d) {
				return
			}
		}
	}
}

// Validate reports whether every defined image cell refers to a row that
// exists, for a caller-supplied (e.g. prefilled) table.
func (t *Table) Validate() error {
	n := uint64(len(t.image))
	for c := range t.image {
		for g := 0; g < t.nrGens; g++ {
			d := t.image[c][g]
			if d != Undefined && d >= n {
				return &presentation.TableError{Coset: uint64(c), Generator: Letter(g), Reason: "image out of range"}
			}
		}
	}
	return nil
}
