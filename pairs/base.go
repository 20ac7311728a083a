// Package pairs implements the pair-closure engine: given an abstract base
// semigroup and a list of generating pairs, it computes the congruence they
// generate by orbiting the pairs under multiplication (spec §4.G).
package pairs

import "github.com/coregx/congru/presentation"

// Element is an opaque handle to a base semigroup's element, compared only
// by the base semigroup's own Equal/hash discipline. The pair-closure
// engine never inspects an Element's internals; it only feeds it back to
// the BaseSemigroup that produced it.
type Element interface {
	// Key returns a value usable as a Go map key that uniquely identifies
	// the element within its base semigroup.
	Key() any
}

// BaseSemigroup is the external collaborator a pair-closure engine (and,
// indirectly, Todd-Coxeter's use-cayley-graph seeding) needs from a
// concrete semigroup implementation (spec §6 "Base semigroup collaborator
// interface").
type BaseSemigroup interface {
	// NrGenerators returns the number of generators of the semigroup.
	NrGenerators() int

	// Size returns the semigroup's cardinality, or
	// presentation.PositiveInfinity if it is known to be infinite.
	Size() uint64

	// IsFinite reports whether the semigroup is known to be finite,
	// known to be infinite, or undetermined.
	IsFinite() presentation.Tri

	// Evaluate computes the element reached by multiplying the
	// generators named by w in order.
	Evaluate(w presentation.Word) Element

	// Factorise produces some word that evaluates to e.
	Factorise(e Element) presentation.Word

	// Multiply returns x*y.
	Multiply(x, y Element) Element

	// Enumerate grows the semigroup's internal element set up to its
	// full size or until cancel reports true, whichever comes first.
	// Implementations that already know their full element set may
	// treat this as a no-op.
	Enumerate(cancel func() bool)
}

// RightCayleyGraph is an optional capability: a base semigroup that can
// hand back its right Cayley graph lets Todd-Coxeter seed a coset table
// directly (the UseCayleyGraph strategy) instead of tracing relations from
// scratch. A base semigroup that does not implement this forces
// UseRelations seeding (spec §6, "optional; when absent, use_relations
// policy must be chosen").
type RightCayleyGraph interface {
	// RightCayleyGraphRow returns, for element index i, the index reached
	// by right-multiplying by each of the NrGenerators() generators in
	// turn. The mapping between Element and a dense index is the base
	// semigroup's own; callers that need one go through ElementIndex.
	RightCayleyGraphRow(i int) []int

	// ElementIndex returns the dense index assigned to e, or -1 if e has
	// not been enumerated.
	ElementIndex(e Element) int

	// NrElements returns how many elements have been enumerated so far.
	NrElements() int
}
