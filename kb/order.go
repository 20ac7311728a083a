package kb

import "github.com/coregx/congru/presentation"

// Word and Letter save callers an extra import in the common case of using
// only this package's types.
type (
	Word   = presentation.Word
	Letter = presentation.Letter
)

// Order is a total, well-founded reduction ordering on words, monotonic
// under concatenation on both sides (spec §3 "Reduction ordering"). Less(u,
// v) reports whether u is strictly smaller than v.
type Order interface {
	Less(u, v Word) bool
}

// ShortLex orders first by length, then lexicographically by alphabet
// order. This is the default ordering and the one every scenario in spec
// §8 is checked against.
type ShortLex struct{}

// Less implements Order.
func (ShortLex) Less(u, v Word) bool {
	if len(u) != len(v) {
		return len(u) < len(v)
	}
	for i := range u {
		if u[i] != v[i] {
			return u[i] < v[i]
		}
	}
	return false
}

// RecursivePath is a lexicographic path order over words induced by a
// precedence (total order) on letters, used only where explicitly
// requested (spec §3). It is the word-level specialisation of Dershowitz's
// recursive path order: for nonempty u = a.u', v = b.v',
//
//	u > v  iff  (a = b and u' > v') or (a ≻ b and u > v') or (a ≺ b and u' ≥ v)
//
// and the empty word is smaller than every nonempty word. This is a string
// rewriting ordering, not the general term-RPO with multiset status that a
// full term-rewriting framework would need (out of scope per spec §1
// Non-goals).
type RecursivePath struct {
	rank []int // rank[letter] = precedence; higher is more senior
}

// NewRecursivePath builds a RecursivePath from precedence, a permutation of
// [0, alphabetSize) listing letters from least to most senior. Returns an
// error if precedence is not such a permutation.
func NewRecursivePath(precedence []Letter, alphabetSize int) (*RecursivePath, error) {
	if len(precedence) != alphabetSize {
		return nil, &precedenceError{"precedence length does not match alphabet size"}
	}
	rank := make([]int, alphabetSize)
	seen := make([]bool, alphabetSize)
	for i, l := range precedence {
		if int(l) >= alphabetSize || seen[l] {
			return nil, &precedenceError{"precedence is not a permutation of the alphabet"}
		}
		seen[l] = true
		rank[l] = i
	}
	return &RecursivePath{rank: rank}, nil
}

type precedenceError struct{ msg string }

func (e *precedenceError) Error() string { return "congru: kb: " + e.msg }

// Less implements Order.
func (o *RecursivePath) Less(u, v Word) bool {
	return o.greater(v, u)
}

func (o *RecursivePath) greater(u, v Word) bool {
	if len(v) == 0 {
		return len(u) > 0
	}
	if len(u) == 0 {
		return false
	}
	a, uRest := u[0], u[1:]
	b, vRest := v[0], v[1:]
	if a == b {
		return o.greater(uRest, vRest)
	}
	if o.rank[a] > o.rank[b] {
		return o.greater(u, vRest)
	}
	return uRest.Equal(v) || o.greater(uRest, v)
}

// reorder swaps a rule's sides so that Lhs is the larger of the two under
// order, per spec §3 ("reorder swaps a rule's sides so lhs is the larger").
func reorder(order Order, lhs, rhs Word) (Word, Word) {
	if order.Less(lhs, rhs) {
		return rhs, lhs
	}
	return lhs, rhs
}
