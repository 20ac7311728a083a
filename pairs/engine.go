package pairs

import (
	"github.com/coregx/congru/presentation"
	"github.com/coregx/congru/runner"
	"github.com/coregx/congru/uf"
)

// Engine computes the congruence generated by a list of generating pairs
// over a concrete base semigroup, by orbiting the pairs under
// multiplication until no new identification is produced (spec §4.G).
type Engine struct {
	runner.Runner

	base BaseSemigroup
	kind presentation.Kind

	started bool

	nodeIndex map[any]int
	elements  []Element
	uf        *uf.UnionFind
	seenPairs map[[2]int]bool
	queue     [][2]int

	initial []pair

	unreached     map[any]uint64
	nextUnreached uint64
}

type pair struct {
	u, v presentation.Word
}

// New creates a pair-closure engine over base for the given congruence
// sense. No work is done until Run is called.
func New(base BaseSemigroup, kind presentation.Kind) *Engine {
	return &Engine{
		base:      base,
		kind:      kind,
		nodeIndex: make(map[any]int),
		uf:        uf.New(0),
		seenPairs: make(map[[2]int]bool),
		unreached: make(map[any]uint64),
	}
}

// AddGeneratingPair queues (u, v) to be folded into the closure once Run
// starts. Rejected once the engine has started (spec §4.J
// "AlreadyStarted").
func (e *Engine) AddGeneratingPair(u, v presentation.Word) error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	if u.Equal(v) {
		return nil
	}
	e.initial = append(e.initial, pair{u: u.Clone(), v: v.Clone()})
	return nil
}

// indexOf returns the dense node index assigned to x, assigning one (and
// a matching union-find entry) on first sight.
func (e *Engine) indexOf(x Element) int {
	k := x.Key()
	if idx, ok := e.nodeIndex[k]; ok {
		return idx
	}
	idx := len(e.elements)
	e.elements = append(e.elements, x)
	e.nodeIndex[k] = idx
	e.uf.AddEntry()
	return idx
}

// addPair implements internal_add_pair: ignore x == y, otherwise assign
// node indices, skip a canonical pair already seen, else record it as seen,
// enqueue it, and unite the two nodes.
func (e *Engine) addPair(x, y Element) {
	if x.Key() == y.Key() {
		return
	}
	ix, iy := e.indexOf(x), e.indexOf(y)
	lo, hi := ix, iy
	if lo > hi {
		lo, hi = hi, lo
	}
	key := [2]int{lo, hi}
	if e.seenPairs[key] {
		return
	}
	e.seenPairs[key] = true
	e.queue = append(e.queue, [2]int{ix, iy})
	e.uf.Unite(ix, iy)
}

// Run drives the closure to completion, to cancellation, or to a deadline.
// An infinite base semigroup (spec §9 "Open questions": behaviour for
// infinite base semigroups is undefined in the source) is rejected
// immediately when known infinite; an undetermined one is allowed to run,
// subject to the runner's own deadline and Kill.
func (e *Engine) Run() error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	e.started = true

	if e.base.IsFinite() == presentation.TriNo {
		return presentation.ErrUndecidable
	}

	for _, p := range e.initial {
		e.addPair(e.base.Evaluate(p.u), e.base.Evaluate(p.v))
	}

	e.Runner.Run(e.step)

	if e.Runner.Killed() || e.Runner.TimedOut() {
		return presentation.ErrUndecidable
	}
	e.Runner.SetSuccess(true)
	return nil
}

// RunUntil drives the closure like Run, but also stops as soon as pred
// returns true, checked once per step (spec §4.I "runners cooperatively
// check pred() in their own loops").
func (e *Engine) RunUntil(pred func() bool) error {
	if e.started {
		return presentation.ErrAlreadyStarted
	}
	e.started = true

	if e.base.IsFinite() == presentation.TriNo {
		return presentation.ErrUndecidable
	}

	for _, p := range e.initial {
		e.addPair(e.base.Evaluate(p.u), e.base.Evaluate(p.v))
	}

	e.Runner.RunUntil(pred, e.step)

	if e.Runner.Killed() || e.Runner.TimedOut() {
		return presentation.ErrUndecidable
	}
	e.Runner.SetSuccess(true)
	return nil
}

// step pops one pending pair and, for each generator, computes its
// left/right/two-sided product pairs per e.kind, folding each result back
// in through addPair. Returns true once the queue is empty.
func (e *Engine) step() bool {
	if len(e.queue) == 0 {
		return true
	}
	p := e.queue[0]
	e.queue = e.queue[1:]
	x, y := e.elements[p[0]], e.elements[p[1]]

	n := e.base.NrGenerators()
	for g := 0; g < n; g++ {
		gen := e.base.Evaluate(presentation.Word{presentation.Letter(g)})
		if e.kind == presentation.Left || e.kind == presentation.TwoSided {
			e.addPair(e.base.Multiply(gen, x), e.base.Multiply(gen, y))
		}
		if e.kind == presentation.Right || e.kind == presentation.TwoSided {
			e.addPair(e.base.Multiply(x, gen), e.base.Multiply(y, gen))
		}
	}
	return len(e.queue) == 0
}

// NrClasses returns |S| - |elements_reached| + unionfind.nr_blocks(): every
// element the closure never touched keeps its own singleton class (spec
// §4.G step 4).
func (e *Engine) NrClasses() presentation.ClassCount {
	if e.base.IsFinite() != presentation.TriYes {
		return presentation.ClassCount(presentation.PositiveInfinity)
	}
	total := e.base.Size()
	reached := uint64(len(e.elements))
	blocks := uint64(e.uf.NrBlocks())
	return presentation.ClassCount(total - reached + blocks)
}

// classIndex returns a class index for e that is stable for the lifetime
// of this Engine: reached elements get the union-find representative of
// their node; elements the closure never touched are assigned a fresh
// index at or above the base semigroup's Size(), clear of every node
// index, lazily and consistently, the first time they're asked about.
func (e *Engine) classIndex(el Element) uint64 {
	if idx, ok := e.nodeIndex[el.Key()]; ok {
		return uint64(e.uf.Find(idx))
	}
	if idx, ok := e.unreached[el.Key()]; ok {
		return idx
	}
	idx := e.base.Size() + e.nextUnreached
	e.nextUnreached++
	e.unreached[el.Key()] = idx
	return idx
}

// WordToClassIndex evaluates w in the base semigroup and returns its class
// index. The error return exists only to keep this method's signature
// compatible with tc.Engine's; evaluating a word against a base semigroup
// never fails once it validates against the alphabet.
func (e *Engine) WordToClassIndex(w presentation.Word) (uint64, error) {
	return e.classIndex(e.base.Evaluate(w)), nil
}

// ClassIndexToWord returns some word whose class index is idx, by finding
// a reached element with that union-find representative and factorising
// it. Elements the closure never touched (an index at or above the base
// semigroup's Size()) have no element on file to factorise, so this
// returns presentation.ErrUndecidable for those.
func (e *Engine) ClassIndexToWord(idx uint64) (presentation.Word, error) {
	for node, el := range e.elements {
		if uint64(e.uf.Find(node)) == idx {
			return e.base.Factorise(el), nil
		}
	}
	return nil, presentation.ErrUndecidable
}

// Contains reports whether u and v are related by the computed congruence.
func (e *Engine) Contains(u, v presentation.Word) (bool, error) {
	iu, _ := e.WordToClassIndex(u)
	iv, _ := e.WordToClassIndex(v)
	return iu == iv, nil
}
