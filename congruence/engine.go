// Package congruence is the façade that ties the three completion engines
// together (spec §4.J): given a presentation or a base semigroup, it builds
// whichever runners apply, races them through package race, and answers
// queries against whichever one wins.
package congruence

import (
	"github.com/coregx/congru/coset"
	"github.com/coregx/congru/kb"
	"github.com/coregx/congru/pairs"
	"github.com/coregx/congru/presentation"
	"github.com/coregx/congru/race"
	"github.com/coregx/congru/tc"
)

// Engine is a congruence under computation: a set of runners racing toward
// an answer, plus enough bookkeeping to answer queries once one wins.
type Engine struct {
	kind presentation.Kind
	pres *presentation.Presentation
	base pairs.BaseSemigroup

	alphabetSize int

	coord *race.Coordinator

	tcRel    *tc.Engine // traces the presentation's own relations (or a synthesized alphabet-only one)
	tcCayley *tc.Engine // seeded from a base semigroup's Cayley graph, when available
	kbPlain  *kb.Engine // Knuth-Bendix over the presentation as given
	kbPairs  *kb.Engine // Knuth-Bendix with generating pairs folded in as extra rules
	pc       *pairs.Engine

	started bool
}

// New builds a congruence engine from a presentation. For a two-sided
// congruence this installs a Todd-Coxeter runner and a Knuth-Bendix runner
// that treats every generating pair as an extra rule (kbPairs); rewriting
// is inherently two-sided, so for a Left or Right congruence only the
// Todd-Coxeter runner (which already reverses words for Left per tc's
// sidedRule) is installed.
//
// A second Knuth-Bendix engine, kbPlain, is built over the presentation's
// own relations only and never folds in generating pairs; it does not race
// and never answers nr_classes/contains, since doing so would answer a
// different (pairs-less) congruence whenever pairs are added. It exists
// solely to serve Reduce, the underlying presentation's own word problem.
func New(kind presentation.Kind, pres *presentation.Presentation) (*Engine, error) {
	if pres == nil || pres.Alphabet() == nil {
		return nil, presentation.ErrAlphabetNotSet
	}
	e := &Engine{
		kind:         kind,
		pres:         pres,
		alphabetSize: pres.Alphabet().Size(),
		coord:        race.New(race.DefaultConfig()),
	}

	tcRel, err := tc.New(pres, kind, tc.DefaultConfig())
	if err != nil {
		return nil, err
	}
	e.tcRel = tcRel
	e.coord.Add(tcRel)

	if kind == presentation.TwoSided {
		kbPlain, err := kb.NewDefault(pres)
		if err != nil {
			return nil, err
		}
		e.kbPlain = kbPlain

		kbPairs, err := kb.NewDefault(pres)
		if err != nil {
			return nil, err
		}
		e.kbPairs = kbPairs
		e.coord.Add(kbPairs)
	}
	return e, nil
}

// NewFromBaseSemigroup builds a congruence engine from a concrete base
// semigroup (spec §4.J base-semigroup constructor). This installs a
// pair-closure runner whenever the semigroup isn't known-infinite, plus a
// Todd-Coxeter runner seeded from the semigroup's Cayley graph when it
// implements the optional pairs.RightCayleyGraph capability. The spec's
// literal wording calls for two Todd-Coxeter runners here (one from
// relations, one from the Cayley graph); a base semigroup exposed only as
// the BaseSemigroup interface has no word relations to trace, so only the
// Cayley-graph-seeded runner is buildable without a presentation-extraction
// procedure this pack has no precedent for (see DESIGN.md).
func NewFromBaseSemigroup(kind presentation.Kind, base pairs.BaseSemigroup) (*Engine, error) {
	e := &Engine{
		kind:         kind,
		base:         base,
		alphabetSize: base.NrGenerators(),
		coord:        race.New(race.DefaultConfig()),
	}

	if base.IsFinite() != presentation.TriNo {
		e.pc = pairs.New(base, kind)
		e.coord.Add(e.pc)
	}

	if rcg, ok := base.(pairs.RightCayleyGraph); ok {
		alphabet, err := presentation.NewAlphabetSize(base.NrGenerators())
		if err != nil {
			return nil, err
		}
		tbl, err := tableFromCayleyGraph(base, rcg)
		if err == nil {
			relPres := presentation.New(alphabet, true)
			cfg := tc.DefaultConfig()
			cfg.Strategy = tc.UseCayleyGraph
			cfg.Initial = tbl
			tcCayley, err := tc.New(relPres, kind, cfg)
			if err == nil {
				e.tcCayley = tcCayley
				e.coord.Add(tcCayley)
			}
		}
	}

	if e.coord.NrRunners() == 0 {
		return nil, presentation.ErrNoRunners
	}
	return e, nil
}

// tableFromCayleyGraph enumerates base fully and builds a coset table whose
// row i is base element i's right Cayley graph row, for seeding a
// Cayley-graph Todd-Coxeter runner.
func tableFromCayleyGraph(base pairs.BaseSemigroup, rcg pairs.RightCayleyGraph) (*coset.Table, error) {
	base.Enumerate(func() bool { return false })
	n := rcg.NrElements()
	if n == 0 {
		return nil, presentation.ErrInvalidTable
	}
	tbl := coset.NewTable(base.NrGenerators())
	for i := 0; i < n; i++ {
		tbl.AddRow()
	}
	for i := 0; i < n; i++ {
		row := rcg.RightCayleyGraphRow(i)
		for g, dest := range row {
			if dest < 0 {
				continue
			}
			tbl.SetImage(uint64(i), presentation.Letter(g), uint64(dest))
		}
	}
	if err := tbl.Validate(); err != nil {
		return nil, err
	}
	return tbl, nil
}

// AddGeneratingPair queues (u, v) with every installed runner: the
// Todd-Coxeter runner(s) via AddGeneratingPair, the pair-extended
// Knuth-Bendix runner as an extra rule, and the pair-closure runner via its
// own AddGeneratingPair. Rejected once the engine has started.
func (e *Engine) AddGeneratingPair(u, v presentation.Word) error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	if e.tcRel != nil {
		if err := e.tcRel.AddGeneratingPair(u, v); err != nil {
			return err
		}
	}
	if e.tcCayley != nil {
		if err := e.tcCayley.AddGeneratingPair(u, v); err != nil {
			return err
		}
	}
	if e.kbPairs != nil {
		if err := e.kbPairs.AddRule(u, v); err != nil {
			return err
		}
	}
	if e.pc != nil {
		if err := e.pc.AddGeneratingPair(u, v); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the race and blocks until a winner is found or every runner
// gives up. Calling a query method without calling Run first triggers the
// same race implicitly; Run itself may only be called once.
func (e *Engine) Run() error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	_, err := e.ensureRaced()
	return err
}

// ensureRaced starts the race on first call (from Run or from a query) and
// returns the cached winner on every subsequent call (race.Coordinator.Run
// itself caches, so this only needs to track the engine-level started flag
// for AddGeneratingPair's gate).
func (e *Engine) ensureRaced() (race.Runner, error) {
	e.started = true
	return e.coord.Run()
}

// runners lists every congruence-aware runner: kbPlain is deliberately
// excluded, since it never sees generating pairs and so cannot answer for
// the congruence once any have been added.
func (e *Engine) runners() []race.Runner {
	var out []race.Runner
	if e.kbPairs != nil {
		out = append(out, e.kbPairs)
	}
	if e.tcRel != nil {
		out = append(out, e.tcRel)
	}
	if e.tcCayley != nil {
		out = append(out, e.tcCayley)
	}
	if e.pc != nil {
		out = append(out, e.pc)
	}
	return out
}

// NrClasses races the engine to completion (if it hasn't already) and
// returns the winning runner's class count, or presentation.Undefined if no
// runner succeeded.
func (e *Engine) NrClasses() presentation.ClassCount {
	winner, err := e.ensureRaced()
	if err != nil {
		return presentation.ClassCount(presentation.Undefined)
	}
	switch r := winner.(type) {
	case *tc.Engine:
		return r.NrClasses()
	case *pairs.Engine:
		return r.NrClasses()
	case *kb.Engine:
		size, err := r.Size()
		if err != nil {
			return presentation.ClassCount(presentation.Undefined)
		}
		return size
	}
	return presentation.ClassCount(presentation.Undefined)
}

// WordToClassIndex races the engine to completion and returns w's class
// index under the winning runner. A Knuth-Bendix winner (kbPairs) has no
// coset numbering to report, so it returns presentation.ErrUndecidable
// here; use Contains or Reduce against a Knuth-Bendix result instead.
func (e *Engine) WordToClassIndex(w presentation.Word) (uint64, error) {
	winner, err := e.ensureRaced()
	if err != nil {
		return presentation.Undefined, err
	}
	switch r := winner.(type) {
	case *tc.Engine:
		return r.WordToClassIndex(w)
	case *pairs.Engine:
		return r.WordToClassIndex(w)
	}
	return presentation.Undefined, presentation.ErrUndecidable
}

// ClassIndexToWord is the inverse of WordToClassIndex, against whichever
// runner won.
func (e *Engine) ClassIndexToWord(idx uint64) (presentation.Word, error) {
	winner, err := e.ensureRaced()
	if err != nil {
		return nil, err
	}
	switch r := winner.(type) {
	case *tc.Engine:
		return r.ClassIndexToWord(idx)
	case *pairs.Engine:
		return r.ClassIndexToWord(idx)
	}
	return nil, presentation.ErrUndecidable
}

// Reduce returns w's normal form under the presentation's own relations,
// via kbPlain, run independently of the congruence race: Reduce answers the
// underlying word problem, not the full congruence, so generating pairs
// added via AddGeneratingPair play no part in it. Returns
// presentation.ErrUndecidable for a Left/Right congruence (no kbPlain is
// built) or if completion didn't reach confluence.
func (e *Engine) Reduce(w presentation.Word) (presentation.Word, error) {
	if e.kbPlain == nil {
		return w, presentation.ErrUndecidable
	}
	if !e.kbPlain.Finished() {
		if err := e.kbPlain.Run(); err != nil {
			return w, err
		}
	}
	if !e.kbPlain.Success() {
		return w, presentation.ErrUndecidable
	}
	return e.kbPlain.Rewrite(w), nil
}

// CurrentlyContains gives a cheap, possibly incomplete verdict on whether u
// and v are related, without forcing the race to a conclusion: every
// installed runner is asked in turn, and the first definite answer wins.
// Knuth-Bendix can always give a sound "yes" by rewriting both sides to the
// same normal form even mid-completion, and a sound "no" once its active
// rules are confluent with no rule left pending; Todd-Coxeter and
// pair-closure only answer once
// finished successfully (except pair-closure, which can answer "yes"
// immediately when u and v evaluate to the same base-semigroup element).
func (e *Engine) CurrentlyContains(u, v presentation.Word) presentation.Tri {
	for _, r := range e.runners() {
		switch eng := r.(type) {
		case *kb.Engine:
			if eng.Rewrite(u).Equal(eng.Rewrite(v)) {
				return presentation.TriYes
			}
			if confluent, err := eng.Confluent(); err == nil && confluent && eng.Stats().PendingRules == 0 {
				return presentation.TriNo
			}
		case *tc.Engine:
			if eng.Finished() && eng.Success() {
				if ok, err := eng.Contains(u, v); err == nil {
					return triFromBool(ok)
				}
			}
		case *pairs.Engine:
			if ok, _ := eng.Contains(u, v); ok {
				return presentation.TriYes
			}
			if eng.Finished() && eng.Success() {
				return presentation.TriNo
			}
		}
	}
	return presentation.TriUnknown
}

func triFromBool(b bool) presentation.Tri {
	if b {
		return presentation.TriYes
	}
	return presentation.TriNo
}

// Contains reports whether u and v are related by the congruence, trying
// CurrentlyContains first and only racing the engine to completion if no
// runner already has a definite answer.
func (e *Engine) Contains(u, v presentation.Word) (bool, error) {
	if tri := e.CurrentlyContains(u, v); tri != presentation.TriUnknown {
		return tri == presentation.TriYes, nil
	}
	winner, err := e.ensureRaced()
	if err != nil {
		return false, err
	}
	switch r := winner.(type) {
	case *tc.Engine:
		return r.Contains(u, v)
	case *pairs.Engine:
		return r.Contains(u, v)
	case *kb.Engine:
		return r.EqualTo(u, v), nil
	}
	return false, presentation.ErrUndecidable
}

// Kind reports which sided congruence this engine computes.
func (e *Engine) Kind() presentation.Kind { return e.kind }

// CosetTable returns the coset table of a winning Todd-Coxeter runner, the
// quotient's Cayley graph (spec §4.F "Pre-computed quotient"). Returns
// presentation.ErrUndecidable if the race hasn't produced a Todd-Coxeter
// winner.
func (e *Engine) CosetTable() (*coset.Table, error) {
	winner, err := e.ensureRaced()
	if err != nil {
		return nil, err
	}
	if r, ok := winner.(*tc.Engine); ok {
		return r.Table(), nil
	}
	return nil, presentation.ErrUndecidable
}

// NrRules returns the number of active rewriting rules of a winning
// Knuth-Bendix runner, the size of its confluent rewriting system. Returns
// presentation.ErrUndecidable if the race hasn't produced a Knuth-Bendix
// winner.
func (e *Engine) NrRules() (int, error) {
	winner, err := e.ensureRaced()
	if err != nil {
		return 0, err
	}
	if r, ok := winner.(*kb.Engine); ok {
		return r.Stats().ActiveRules, nil
	}
	return 0, presentation.ErrUndecidable
}

// NonTrivialClasses returns every discovered group of distinct words, among
// those up to nonTrivialMaxWordLen letters long, that land in the same
// class. This is a bounded sample rather than an exhaustive enumeration: a
// class may have members longer than the bound that go unreported.
func (e *Engine) NonTrivialClasses() ([][]presentation.Word, error) {
	winner, err := e.ensureRaced()
	if err != nil {
		return nil, err
	}
	words := bfsWords(e.alphabetSize, nonTrivialMaxWordLen)
	switch r := winner.(type) {
	case *tc.Engine:
		return groupByKey(words, func(w presentation.Word) (uint64, bool) {
			idx, err := r.WordToClassIndex(w)
			return idx, err == nil
		}), nil
	case *pairs.Engine:
		return groupByKey(words, func(w presentation.Word) (uint64, bool) {
			idx, err := r.WordToClassIndex(w)
			return idx, err == nil
		}), nil
	case *kb.Engine:
		return groupByKey(words, func(w presentation.Word) (string, bool) {
			return wordKey(r.Rewrite(w)), true
		}), nil
	}
	return nil, presentation.ErrUndecidable
}
