// Package congru decides and enumerates congruences of finitely-presented
// semigroups and monoids.
//
// Given a finite alphabet, a set of defining relations, and optionally a
// set of extra generating pairs, congru answers whether two words are
// related by the resulting congruence, counts and enumerates its classes,
// and (for a two-sided congruence) builds the quotient as a concrete finite
// semigroup.
//
// Three independent strategies attack the same problem concurrently:
// Knuth-Bendix completion rewrites relations into a confluent term-rewriting
// system; Todd-Coxeter coset enumeration builds a coset table whose rows are
// the classes; pair-closure orbits generating pairs directly over a known
// base semigroup. Whichever finishes first answers the query; the others
// are killed.
//
// Basic usage:
//
//	pres, err := congru.NewPresentation("ab", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pres.AddRuleString("aaa", "a")
//	pres.AddRuleString("a", "bb")
//
//	c, err := congru.NewCongruence(congru.TwoSided, pres)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := c.Run(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(c.NrClasses()) // 5
package congru

import (
	"github.com/coregx/congru/congruence"
	"github.com/coregx/congru/pairs"
	"github.com/coregx/congru/presentation"
)

// Word, Kind, and ClassCount save callers an extra import in the common
// case.
type (
	Word       = presentation.Word
	Kind       = presentation.Kind
	ClassCount = presentation.ClassCount
)

// Sided congruence kinds.
const (
	TwoSided = presentation.TwoSided
	Left     = presentation.Left
	Right    = presentation.Right
)

// Presentation is an alphabet plus a list of defining relations.
type Presentation = presentation.Presentation

// BaseSemigroup is the collaborator interface a caller-supplied concrete
// semigroup must implement to seed a pair-closure or Cayley-graph-backed
// congruence.
type BaseSemigroup = pairs.BaseSemigroup

// NewPresentation builds an empty presentation over an alphabet made of
// chars's distinct runes, for either a monoid (isMonoid true, empty words
// permitted) or a semigroup (isMonoid false, empty words rejected).
//
// Example:
//
//	pres, err := congru.NewPresentation("ab", false)
func NewPresentation(chars string, isMonoid bool) (*Presentation, error) {
	alphabet, err := presentation.NewAlphabet([]rune(chars))
	if err != nil {
		return nil, err
	}
	return presentation.New(alphabet, isMonoid), nil
}

// Congruence is a congruence under computation, wrapping package
// congruence's Engine with a string-based convenience API on top of the
// word-based one.
//
// Queries may update state cached inside the engines (the pair-closure
// engine's indices for elements outside its closure, the Knuth-Bendix lhs
// index), so a Congruence is not safe to query from several goroutines at
// once; AddGeneratingPair must not race with Run or a query.
type Congruence struct {
	engine   *congruence.Engine
	alphabet *presentation.Alphabet
}

// NewCongruence builds a congruence engine from a presentation (spec §4.J
// presentation constructor). No work is done until Run is called, or a
// query implicitly triggers it.
//
// Example:
//
//	c, err := congru.NewCongruence(congru.TwoSided, pres)
func NewCongruence(kind Kind, pres *Presentation) (*Congruence, error) {
	engine, err := congruence.New(kind, pres)
	if err != nil {
		return nil, err
	}
	return &Congruence{engine: engine, alphabet: pres.Alphabet()}, nil
}

// NewCongruenceFromBaseSemigroup builds a congruence engine directly from a
// concrete base semigroup (spec §4.J base-semigroup constructor), bypassing
// presentations entirely. String-based convenience methods are unavailable
// on the result, since a base semigroup has no alphabet of its own.
func NewCongruenceFromBaseSemigroup(kind Kind, base BaseSemigroup) (*Congruence, error) {
	engine, err := congruence.NewFromBaseSemigroup(kind, base)
	if err != nil {
		return nil, err
	}
	return &Congruence{engine: engine}, nil
}

// Engine returns the underlying congruence.Engine, for callers that need
// access to operations (e.g. building a quotient.Semigroup) this wrapper
// doesn't expose directly.
func (c *Congruence) Engine() *congruence.Engine { return c.engine }

// AddGeneratingPair queues (u, v) to be folded into every installed runner.
// Rejected once the congruence has started.
func (c *Congruence) AddGeneratingPair(u, v Word) error {
	return c.engine.AddGeneratingPair(u, v)
}

// AddGeneratingPairString is AddGeneratingPair, converting u and v through
// the presentation's alphabet first. Returns an error if this Congruence
// was built from a base semigroup rather than a presentation.
func (c *Congruence) AddGeneratingPairString(u, v string) error {
	uw, vw, err := c.wordsFromStrings(u, v)
	if err != nil {
		return err
	}
	return c.AddGeneratingPair(uw, vw)
}

// Run races every installed runner to completion, returning the first
// error encountered (presentation.ErrAlreadyStarted if called twice,
// presentation.ErrUndecidable if no runner succeeded). Calling a query
// method without calling Run triggers the same race implicitly.
func (c *Congruence) Run() error {
	return c.engine.Run()
}

// NrClasses returns the number of classes of the congruence, racing it to
// completion first if it hasn't run yet. Returns the infinity sentinel for
// a known-infinite congruence, and presentation.Undefined if undecidable
// within the resources given.
func (c *Congruence) NrClasses() ClassCount {
	return c.engine.NrClasses()
}

// Contains reports whether u and v are related by the congruence.
func (c *Congruence) Contains(u, v Word) (bool, error) {
	return c.engine.Contains(u, v)
}

// ContainsString is Contains, converting u and v through the
// presentation's alphabet first.
func (c *Congruence) ContainsString(u, v string) (bool, error) {
	uw, vw, err := c.wordsFromStrings(u, v)
	if err != nil {
		return false, err
	}
	return c.Contains(uw, vw)
}

// WordToClassIndex returns w's class index under the congruence.
func (c *Congruence) WordToClassIndex(w Word) (uint64, error) {
	return c.engine.WordToClassIndex(w)
}

// ClassIndexToWord returns some word whose class index is idx.
func (c *Congruence) ClassIndexToWord(idx uint64) (Word, error) {
	return c.engine.ClassIndexToWord(idx)
}

// Reduce returns w's normal form under the presentation's own relations,
// independent of any added generating pairs. See congruence.Engine.Reduce.
func (c *Congruence) Reduce(w Word) (Word, error) {
	return c.engine.Reduce(w)
}

// NonTrivialClasses samples short words and groups those that collide under
// the congruence. See congruence.Engine.NonTrivialClasses for the bound.
func (c *Congruence) NonTrivialClasses() ([][]Word, error) {
	return c.engine.NonTrivialClasses()
}

// NrRules returns the size of a winning Knuth-Bendix runner's confluent
// rewriting system. See congruence.Engine.NrRules.
func (c *Congruence) NrRules() (int, error) {
	return c.engine.NrRules()
}

func (c *Congruence) wordsFromStrings(u, v string) (Word, Word, error) {
	if c.alphabet == nil {
		return nil, nil, presentation.ErrAlphabetNotSet
	}
	uw, err := c.alphabet.StringToWord(u)
	if err != nil {
		return nil, nil, err
	}
	vw, err := c.alphabet.StringToWord(v)
	if err != nil {
		return nil, nil, err
	}
	return uw, vw, nil
}
