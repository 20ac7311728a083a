// Package tc implements Todd-Coxeter coset enumeration (spec §4.F): given a
// presentation (and optional extra generating pairs), it builds and closes
// a coset table whose rows are the classes of the resulting congruence.
//
// Coset identification uses forward-pointer chasing directly (spec §9
// "Union-find for cosets" design note) rather than package uf, since a
// coset's forward pointer and its table row need to be updated together
// during coincidence processing and keeping them in the same structure
// avoids a second index.
package tc

import (
	"github.com/coregx/congru/coset"
	"github.com/coregx/congru/internal/conv"
	"github.com/coregx/congru/internal/sparse"
	"github.com/coregx/congru/presentation"
	"github.com/coregx/congru/runner"
)

// Word and Letter save callers an extra import in the common case.
type (
	Word   = presentation.Word
	Letter = presentation.Letter
)

// Engine runs Todd-Coxeter coset enumeration. The zero value is not usable;
// construct with New.
type Engine struct {
	runner.Runner

	pres *presentation.Presentation
	kind presentation.Kind
	cfg  Config

	table   *coset.Table
	forward []uint64
	dead    []bool

	relations []presentation.Rule

	nrActive int
	started  bool

	coincidences  [][2]uint64
	packThreshold uint64
}

// New builds an engine over pres's relations, enumerating the kind of
// congruence requested (two-sided, left, or right).
func New(pres *presentation.Presentation, kind presentation.Kind, cfg Config) (*Engine, error) {
	if pres == nil || pres.Alphabet() == nil {
		return nil, presentation.ErrAlphabetNotSet
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		pres:          pres,
		kind:          kind,
		cfg:           cfg,
		relations:     sidedRelations(pres.Rules(), kind),
		packThreshold: cfg.Pack,
	}
	if cfg.Strategy == UseRelations {
		e.table = coset.NewTable(pres.Alphabet().Size())
		e.addCosetRow()
	} else {
		if err := cfg.Initial.Validate(); err != nil {
			return nil, err
		}
		e.table = cfg.Initial
		n := e.table.NrCosets()
		e.forward = make([]uint64, n)
		e.dead = make([]bool, n)
		for i := range e.forward {
			e.forward[i] = uint64(i)
		}
		e.nrActive = n
	}
	return e, nil
}

// NewDefault builds a two-sided congruence engine over pres with DefaultConfig.
func NewDefault(pres *presentation.Presentation) (*Engine, error) {
	return New(pres, presentation.TwoSided, DefaultConfig())
}

func sidedRelations(rules []presentation.Rule, kind presentation.Kind) []presentation.Rule {
	out := make([]presentation.Rule, len(rules))
	for i, r := range rules {
		out[i] = sidedRule(r.Lhs, r.Rhs, kind)
	}
	return out
}

// sidedRule applies the standard reversal trick for a left congruence: a
// right-multiplication coset table computes the left congruence on the
// original words by tracing their reversals instead (spec §9 "word
// reversal" design note). Right and two-sided relations are traced as-is;
// full two-sided semantics beyond that is an accepted simplification (see
// DESIGN.md).
func sidedRule(lhs, rhs Word, kind presentation.Kind) presentation.Rule {
	if kind == presentation.Left {
		return presentation.Rule{Lhs: lhs.Reversed(), Rhs: rhs.Reversed()}
	}
	return presentation.Rule{Lhs: lhs.Clone(), Rhs: rhs.Clone()}
}

// AddGeneratingPair stages an extra relation (u, v) to be traced alongside
// the presentation's own. Returns presentation.ErrAlreadyStarted if Run has
// already been called.
func (e *Engine) AddGeneratingPair(u, v Word) error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	if err := e.pres.ValidateRule(u, v); err != nil {
		return err
	}
	e.relations = append(e.relations, sidedRule(u, v, e.kind))
	return nil
}

// Kind reports which sided congruence this engine enumerates.
func (e *Engine) Kind() presentation.Kind { return e.kind }

// Table returns the engine's current coset table. The returned value must
// not be mutated by the caller; after a successful Run it is closed (every
// cell defined) and compacted (dead rows reclaimed).
func (e *Engine) Table() *coset.Table { return e.table }

func (e *Engine) addCosetRow() uint64 {
	c := e.table.AddRow()
	e.forward = append(e.forward, c)
	e.dead = append(e.dead, false)
	e.nrActive++
	return c
}

func (e *Engine) find(c uint64) uint64 {
	root := c
	for e.forward[root] != root {
		root = e.forward[root]
	}
	for e.forward[c] != root {
		next := e.forward[c]
		e.forward[c] = root
		c = next
	}
	return root
}

// scanAndFill traces w from coset c, defining (growing the table for) any
// transition not yet known, and returns the coset reached.
func (e *Engine) scanAndFill(c uint64, w Word) uint64 {
	cur := e.find(c)
	for _, a := range w {
		next := e.table.Image(cur, a)
		if next == coset.Undefined {
			next = e.addCosetRow()
			e.table.SetImage(cur, a, next)
		}
		cur = e.find(next)
	}
	return cur
}

func (e *Engine) mergeCosets(a, b uint64) {
	e.coincidences = append(e.coincidences, [2]uint64{a, b})
}

// processCoincidences drains the coincidence queue, identifying cosets and
// redirecting every transition into or out of a dead coset to its survivor
// (spec §4.F "Coincidence processing").
func (e *Engine) processCoincidences() {
	for len(e.coincidences) > 0 {
		pair := e.coincidences[len(e.coincidences)-1]
		e.coincidences = e.coincidences[:len(e.coincidences)-1]
		a, b := e.find(pair[0]), e.find(pair[1])
		if a == b {
			continue
		}
		survivor, victim := a, b
		if victim < survivor {
			survivor, victim = victim, survivor
		}
		e.forward[victim] = survivor
		if !e.dead[victim] {
			e.dead[victim] = true
			e.nrActive--
		}

		for g := 0; g < e.table.NrGens(); g++ {
			gl := Letter(g)

			if img := e.table.Image(victim, gl); img != coset.Undefined {
				e.table.ClearImage(victim, gl)
				img = e.find(img)
				if existing := e.table.Image(survivor, gl); existing != coset.Undefined {
					if e.find(existing) != img {
						e.mergeCosets(existing, img)
					}
				} else {
					e.table.SetImage(survivor, gl, img)
				}
			}

			var preimages []uint64
			for p := range e.table.PreimageChain(victim, gl) {
				preimages = append(preimages, p)
			}
			for _, p := range preimages {
				e.table.ClearImage(p, gl)
				e.table.SetImage(p, gl, survivor)
			}
		}
	}
}

// traceAllRelations runs one full pass over every currently-known coset
// (including ones discovered mid-pass) and every relation, reporting
// whether the pass produced any new coset or coincidence.
func (e *Engine) traceAllRelations() bool {
	before := e.nrActive
	grew := false
	for c := uint64(0); c < uint64(e.table.NrCosets()); c++ {
		if e.dead[c] {
			continue
		}
		if e.Runner.Killed() || e.Runner.TimedOut() {
			return grew
		}
		for _, rel := range e.relations {
			nrCosetsBefore := e.table.NrCosets()
			pu := e.scanAndFill(c, rel.Lhs)
			pv := e.scanAndFill(c, rel.Rhs)
			if e.table.NrCosets() != nrCosetsBefore {
				grew = true
			}
			if pu != pv {
				e.mergeCosets(pu, pv)
				e.processCoincidences()
				grew = true
			}
		}
	}
	return grew || e.nrActive != before
}

// isObviouslyInfinite is a cheap pre-enumeration check: a presentation with
// generators but no relations or generating pairs at all presents the free
// semigroup/monoid on them, which has infinitely many elements whenever
// there is at least one generator (spec §4.F "obvious infiniteness
// heuristic" — a deliberately narrow special case, not a general decision
// procedure). Only meaningful for UseRelations, which starts from a single
// coset and grows the table purely by tracing relations; a caller-supplied
// initial table (UseCayleyGraph, Prefill) already carries whatever
// structure it has independent of the relation list.
func (e *Engine) isObviouslyInfinite() bool {
	return e.cfg.Strategy == UseRelations && len(e.relations) == 0 && e.pres.Alphabet().Size() > 0
}

// Run closes the coset table: traces relations to a fixed point (success).
// An obviously infinite presentation finishes at once without success; any
// other presentation whose table keeps growing runs until Kill or a
// deadline stops it. Returns presentation.ErrUndecidable if interrupted by
// Kill or a deadline.
func (e *Engine) Run() error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	e.started = true
	e.Runner.Run(e.step)
	if e.Runner.Killed() || e.Runner.TimedOut() {
		return presentation.ErrUndecidable
	}
	return nil
}

// RunUntil drives closure like Run, but also stops as soon as pred returns
// true, checked once per step (spec §4.I "runners cooperatively check
// pred() in their own loops").
func (e *Engine) RunUntil(pred func() bool) error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	e.started = true
	e.Runner.RunUntil(pred, e.step)
	if e.Runner.Killed() || e.Runner.TimedOut() {
		return presentation.ErrUndecidable
	}
	return nil
}

func (e *Engine) step() bool {
	if e.isObviouslyInfinite() {
		e.Runner.SetSuccess(false)
		return true
	}
	changed := e.traceAllRelations()
	if uint64(e.table.NrCosets()) >= e.packThreshold {
		e.pack()
	}
	if !changed {
		e.compress()
		e.Runner.SetSuccess(true)
		return true
	}
	return false
}

// pack reclaims dead rows (a no-op correctness-wise, a memory bound in
// practice) and raises the next threshold so a presentation that keeps
// discovering genuinely new cosets doesn't compress on every row.
func (e *Engine) pack() {
	e.compress()
	grown := uint64(float64(e.table.NrCosets()) * (1 + e.cfg.PackGrowth))
	if grown < e.cfg.Pack {
		grown = e.cfg.Pack
	}
	e.packThreshold = grown
}

// compress rebuilds the table with dead rows dropped and live cosets
// renumbered contiguously from 0 (spec §4.F "termination/compression").
func (e *Engine) compress() {
	n := e.table.NrCosets()
	oldToNew := make([]uint64, n)
	next := uint64(0)
	for c := 0; c < n; c++ {
		if e.dead[c] {
			continue
		}
		oldToNew[c] = next
		next++
	}

	fresh := coset.NewTable(e.table.NrGens())
	for i := uint64(0); i < next; i++ {
		fresh.AddRow()
	}
	for c := 0; c < n; c++ {
		if e.dead[c] {
			continue
		}
		for g := 0; g < e.table.NrGens(); g++ {
			img := e.table.Image(uint64(c), Letter(g))
			if img == coset.Undefined {
				continue
			}
			img = e.find(img)
			fresh.SetImage(oldToNew[uint64(c)], Letter(g), oldToNew[img])
		}
	}

	e.table = fresh
	e.forward = make([]uint64, next)
	e.dead = make([]bool, next)
	for i := range e.forward {
		e.forward[i] = uint64(i)
	}
}

// NrClasses returns the number of classes the congruence was found to have;
// an empty alphabet gives 0. Only meaningful once Run has returned with
// Success() true; otherwise it returns presentation.Undefined.
func (e *Engine) NrClasses() presentation.ClassCount {
	if !e.Runner.Success() {
		return presentation.ClassCount(presentation.Undefined)
	}
	if e.table.NrGens() == 0 {
		return 0
	}
	count := e.nrActive
	if !e.pres.IsMonoid() {
		count-- // coset 0 is the empty word, not a legal semigroup element
	}
	return presentation.ClassCount(count)
}

// WordToClassIndex traces w from the identity coset through the closed
// table. Returns presentation.ErrUndecidable if Run has not completed
// successfully.
func (e *Engine) WordToClassIndex(w Word) (uint64, error) {
	if !e.Runner.Success() {
		return presentation.Undefined, presentation.ErrUndecidable
	}
	c := uint64(0)
	for _, a := range w {
		next := e.table.Image(c, a)
		if next == coset.Undefined {
			return presentation.Undefined, &presentation.TableError{Coset: c, Generator: a, Reason: "undefined in closed table"}
		}
		c = next
	}
	return c, nil
}

// ClassIndexToWord returns the shortest word (breadth-first, ties broken by
// alphabet order) reaching coset idx from the identity.
func (e *Engine) ClassIndexToWord(idx uint64) (Word, error) {
	if !e.Runner.Success() {
		return nil, presentation.ErrUndecidable
	}
	n := e.table.NrCosets()
	if idx >= uint64(n) {
		return nil, presentation.ErrInvalidTable
	}
	visited := sparse.NewSparseSet(conv.IntToUint32(n))
	parent := make([]int64, n)
	via := make([]Letter, n)
	for i := range parent {
		parent[i] = -1
	}
	visited.Insert(0)
	queue := []uint64{0}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == idx {
			break
		}
		for g := 0; g < e.table.NrGens(); g++ {
			next := e.table.Image(c, Letter(g))
			if next == coset.Undefined || visited.Contains(conv.Uint64ToUint32(next)) {
				continue
			}
			visited.Insert(conv.Uint64ToUint32(next))
			parent[next] = int64(c)
			via[next] = Letter(g)
			queue = append(queue, next)
		}
	}
	if !visited.Contains(conv.Uint64ToUint32(idx)) {
		return nil, presentation.ErrUndecidable
	}
	var rev Word
	for c := idx; c != 0; c = uint64(parent[c]) {
		rev = append(rev, via[c])
	}
	out := make(Word, len(rev))
	for i, a := range rev {
		out[len(rev)-1-i] = a
	}
	return out, nil
}

// Contains reports whether u and v land on the same coset, i.e. are related
// by the enumerated congruence.
func (e *Engine) Contains(u, v Word) (bool, error) {
	cu, err := e.WordToClassIndex(u)
	if err != nil {
		return false, err
	}
	cv, err := e.WordToClassIndex(v)
	if err != nil {
		return false, err
	}
	return cu == cv, nil
}
