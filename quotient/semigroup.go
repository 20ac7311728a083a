// Package quotient wraps a finished two-sided congruence into a concrete
// base semigroup (spec §4.K): once Todd-Coxeter enumeration has closed its
// coset table, that table already is the Cayley graph of the quotient, and
// can be handed straight back to anything expecting a
// pairs.BaseSemigroup — most usefully, a further pair-closure engine
// computing a congruence of the quotient itself.
package quotient

import (
	"github.com/coregx/congru/coset"
	"github.com/coregx/congru/internal/conv"
	"github.com/coregx/congru/internal/sparse"
	"github.com/coregx/congru/pairs"
	"github.com/coregx/congru/presentation"
)

// Element is a quotient element: a coset index from the wrapped table.
// Two Elements are the same quotient element exactly when their indices
// are equal (spec §4.K "equality is coset-index equality").
type Element struct {
	idx uint64
}

// Key implements pairs.Element.
func (e Element) Key() any { return e.idx }

// Semigroup is a finished congruence's quotient, concretely represented by
// its coset table. Generators are the coset elements reached from the
// identity by a single alphabet letter (spec §4.K "one generator per
// alphabet letter").
type Semigroup struct {
	table *coset.Table
}

// New wraps tbl, a closed coset table (every cell defined, dead rows
// already reclaimed), as a base semigroup.
func New(tbl *coset.Table) *Semigroup {
	return &Semigroup{table: tbl}
}

// NrGenerators implements pairs.BaseSemigroup.
func (s *Semigroup) NrGenerators() int { return s.table.NrGens() }

// Size implements pairs.BaseSemigroup: it is the table's row count. Coset 0
// (the empty word) is one of those rows, so for a congruence over a
// semigroup presentation Size is one more than the congruence's NrClasses.
func (s *Semigroup) Size() uint64 { return uint64(s.table.NrCosets()) }

// IsFinite implements pairs.BaseSemigroup. A closed coset table is always
// finite by construction.
func (s *Semigroup) IsFinite() presentation.Tri { return presentation.TriYes }

// Evaluate implements pairs.BaseSemigroup: trace w from the identity coset
// through the table.
func (s *Semigroup) Evaluate(w presentation.Word) pairs.Element {
	c := uint64(0)
	for _, a := range w {
		next := s.table.Image(c, a)
		if next == coset.Undefined {
			return Element{idx: presentation.Undefined}
		}
		c = next
	}
	return Element{idx: c}
}

// Factorise implements pairs.BaseSemigroup: the shortest word (breadth
// first, ties broken by generator order) reaching e's coset from the
// identity.
func (s *Semigroup) Factorise(e pairs.Element) presentation.Word {
	target := e.(Element).idx
	n := s.table.NrCosets()
	if target >= uint64(n) {
		return nil
	}
	visited := sparse.NewSparseSet(conv.IntToUint32(n))
	parent := make([]int64, n)
	via := make([]presentation.Letter, n)
	for i := range parent {
		parent[i] = -1
	}
	visited.Insert(0)
	queue := []uint64{0}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == target {
			break
		}
		for g := 0; g < s.table.NrGens(); g++ {
			next := s.table.Image(c, presentation.Letter(g))
			if next == coset.Undefined || visited.Contains(conv.Uint64ToUint32(next)) {
				continue
			}
			visited.Insert(conv.Uint64ToUint32(next))
			parent[next] = int64(c)
			via[next] = presentation.Letter(g)
			queue = append(queue, next)
		}
	}
	if !visited.Contains(conv.Uint64ToUint32(target)) {
		return nil
	}
	var rev presentation.Word
	for c := target; c != 0; c = uint64(parent[c]) {
		rev = append(rev, via[c])
	}
	out := make(presentation.Word, len(rev))
	for i, a := range rev {
		out[len(rev)-1-i] = a
	}
	return out
}

// Multiply implements pairs.BaseSemigroup: x*y is computed by factorising y
// back to a word and tracing it from x's coset, since the table only
// records right-multiplication by single generators directly.
func (s *Semigroup) Multiply(x, y pairs.Element) pairs.Element {
	c := x.(Element).idx
	for _, a := range s.Factorise(y) {
		next := s.table.Image(c, a)
		if next == coset.Undefined {
			return Element{idx: presentation.Undefined}
		}
		c = next
	}
	return Element{idx: c}
}

// Enumerate implements pairs.BaseSemigroup. The wrapped table already has
// every element and transition defined, so there is nothing left to
// discover.
func (s *Semigroup) Enumerate(cancel func() bool) {}

// NrElements implements pairs.RightCayleyGraph.
func (s *Semigroup) NrElements() int { return s.table.NrCosets() }

// ElementIndex implements pairs.RightCayleyGraph.
func (s *Semigroup) ElementIndex(e pairs.Element) int { return int(e.(Element).idx) }

// RightCayleyGraphRow implements pairs.RightCayleyGraph: row i is exactly
// the table's row i, with Undefined cells reported as -1.
func (s *Semigroup) RightCayleyGraphRow(i int) []int {
	row := make([]int, s.table.NrGens())
	for g := 0; g < s.table.NrGens(); g++ {
		img := s.table.Image(uint64(i), presentation.Letter(g))
		if img == coset.Undefined {
			row[g] = -1
			continue
		}
		row[g] = int(img)
	}
	return row
}
