package pairs

import (
	"fmt"
	"testing"

	"github.com/coregx/congru/presentation"
)

// cyclicElem is a trivial Element over Z_n, used to exercise the
// closure/union-find bookkeeping against numbers a reader can check by
// hand.
type cyclicElem int

func (c cyclicElem) Key() any { return int(c) }

type cyclicGroup struct{ n int }

func (g cyclicGroup) NrGenerators() int                  { return 1 }
func (g cyclicGroup) Size() uint64                       { return uint64(g.n) }
func (g cyclicGroup) IsFinite() presentation.Tri         { return presentation.TriYes }
func (g cyclicGroup) Evaluate(w presentation.Word) Element {
	return cyclicElem(len(w) % g.n)
}
func (g cyclicGroup) Factorise(e Element) presentation.Word {
	return make(presentation.Word, int(e.(cyclicElem)))
}
func (g cyclicGroup) Multiply(x, y Element) Element {
	return cyclicElem((int(x.(cyclicElem)) + int(y.(cyclicElem))) % g.n)
}
func (g cyclicGroup) Enumerate(cancel func() bool) {}

func TestPairClosureCyclicGroupIdentifiesCosetsOfThree(t *testing.T) {
	base := cyclicGroup{n: 6}
	e := New(base, presentation.TwoSided)
	// 3 == 0 forces x == x+3 for every x, splitting Z6 into 3 classes:
	// {0,3}, {1,4}, {2,5}.
	if err := e.AddGeneratingPair(presentation.Word{0, 0, 0}, presentation.Word{0, 0, 0, 0, 0, 0}); err != nil {
		t.Fatalf("AddGeneratingPair: %v", err)
	}
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := e.NrClasses(); got != 3 {
		t.Fatalf("NrClasses() = %v, want 3", got)
	}
	if ok, err := e.Contains(presentation.Word{0}, presentation.Word{0, 0, 0, 0}); err != nil || !ok {
		t.Fatalf("Contains(1, 4) = %v, %v, want true, nil", ok, err)
	}
	if ok, err := e.Contains(presentation.Word{0}, presentation.Word{0, 0}); err != nil || ok {
		t.Fatalf("Contains(1, 2) = %v, %v, want false, nil", ok, err)
	}

	idx, err := e.WordToClassIndex(presentation.Word{0})
	if err != nil {
		t.Fatalf("WordToClassIndex: %v", err)
	}
	w, err := e.ClassIndexToWord(idx)
	if err != nil {
		t.Fatalf("ClassIndexToWord: %v", err)
	}
	back, err := e.WordToClassIndex(w)
	if err != nil || back != idx {
		t.Fatalf("roundtrip class index = %v, %v, want %d, nil", back, err, idx)
	}
}

func TestPairClosureNoOpPairLeavesEverythingDistinct(t *testing.T) {
	base := cyclicGroup{n: 4}
	e := New(base, presentation.TwoSided)
	if err := e.AddGeneratingPair(presentation.Word{0}, presentation.Word{0}); err != nil {
		t.Fatalf("AddGeneratingPair: %v", err)
	}
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := e.NrClasses(); got != 4 {
		t.Fatalf("NrClasses() = %v, want 4 (the (u,u) pair should be a no-op)", got)
	}
}

func TestPairClosureAddPairAfterStartRejected(t *testing.T) {
	base := cyclicGroup{n: 4}
	e := New(base, presentation.TwoSided)
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := e.AddGeneratingPair(presentation.Word{0}, presentation.Word{0, 0}); err != presentation.ErrAlreadyStarted {
		t.Fatalf("AddGeneratingPair after Run = %v, want ErrAlreadyStarted", err)
	}
}

// infiniteGroup reports itself as known-infinite, exercising the rejection
// path documented for pair-closure over an infinite base semigroup.
type infiniteGroup struct{}

func (infiniteGroup) NrGenerators() int                    { return 1 }
func (infiniteGroup) Size() uint64                         { return presentation.PositiveInfinity }
func (infiniteGroup) IsFinite() presentation.Tri           { return presentation.TriNo }
func (infiniteGroup) Evaluate(w presentation.Word) Element { return cyclicElem(len(w)) }
func (infiniteGroup) Factorise(e Element) presentation.Word {
	return make(presentation.Word, int(e.(cyclicElem)))
}
func (infiniteGroup) Multiply(x, y Element) Element {
	return cyclicElem(int(x.(cyclicElem)) + int(y.(cyclicElem)))
}
func (infiniteGroup) Enumerate(cancel func() bool) {}

func TestPairClosureRejectsKnownInfiniteBase(t *testing.T) {
	e := New(infiniteGroup{}, presentation.TwoSided)
	if err := e.AddGeneratingPair(presentation.Word{0}, presentation.Word{0, 0}); err != nil {
		t.Fatalf("AddGeneratingPair: %v", err)
	}
	if err := e.Run(); err != presentation.ErrUndecidable {
		t.Fatalf("Run() = %v, want ErrUndecidable", err)
	}
}

// transformation is a degree-n full transformation represented as the
// dense slice of images. Multiplication composes left-to-right: (x*y)(i)
// == y(x(i)).
type transformation struct {
	images []int
}

func (tr transformation) Key() any { return fmt.Sprint(tr.images) }

func compose(x, y transformation) transformation {
	out := make([]int, len(x.images))
	for i, xi := range x.images {
		out[i] = y.images[xi]
	}
	return transformation{images: out}
}

// fullTransformationSemigroup enumerates, lazily, the semigroup generated
// by a fixed set of transformations under composition (spec's "Base
// semigroup collaborator interface").
type fullTransformationSemigroup struct {
	degree int
	gens   []transformation

	elements []transformation
	wordOf   []presentation.Word
	index    map[string]int
}

func newFullTransformationSemigroup(degree int, gens [][]int) *fullTransformationSemigroup {
	s := &fullTransformationSemigroup{degree: degree}
	for _, g := range gens {
		s.gens = append(s.gens, transformation{images: append([]int(nil), g...)})
	}
	return s
}

func (s *fullTransformationSemigroup) ensureEnumerated() {
	if s.elements != nil {
		return
	}
	s.index = make(map[string]int)
	add := func(tr transformation, w presentation.Word) {
		k := tr.Key().(string)
		if _, ok := s.index[k]; ok {
			return
		}
		s.index[k] = len(s.elements)
		s.elements = append(s.elements, tr)
		s.wordOf = append(s.wordOf, w)
	}
	for gi, g := range s.gens {
		add(g, presentation.Word{presentation.Letter(gi)})
	}
	for i := 0; i < len(s.elements); i++ {
		cur, curWord := s.elements[i], s.wordOf[i]
		for gi, g := range s.gens {
			add(compose(cur, g), curWord.Append(presentation.Word{presentation.Letter(gi)}))
		}
	}
}

func (s *fullTransformationSemigroup) NrGenerators() int { return len(s.gens) }

func (s *fullTransformationSemigroup) Size() uint64 {
	s.ensureEnumerated()
	return uint64(len(s.elements))
}

func (s *fullTransformationSemigroup) IsFinite() presentation.Tri { return presentation.TriYes }

func (s *fullTransformationSemigroup) Evaluate(w presentation.Word) Element {
	if len(w) == 0 {
		images := make([]int, s.degree)
		for i := range images {
			images[i] = i
		}
		return transformation{images: images}
	}
	cur := s.gens[w[0]]
	for _, a := range w[1:] {
		cur = compose(cur, s.gens[a])
	}
	return cur
}

func (s *fullTransformationSemigroup) Factorise(e Element) presentation.Word {
	s.ensureEnumerated()
	idx, ok := s.index[e.(transformation).Key().(string)]
	if !ok {
		return nil
	}
	return s.wordOf[idx]
}

func (s *fullTransformationSemigroup) Multiply(x, y Element) Element {
	return compose(x.(transformation), y.(transformation))
}

func (s *fullTransformationSemigroup) Enumerate(cancel func() bool) { s.ensureEnumerated() }

func TestPairClosureTransformationSemigroup(t *testing.T) {
	// Degree-5 transformations [1,3,4,2,3] and [3,2,1,3,3], given as image
	// lists on {0, ..., 4}; the semigroup they generate has 88 elements, a
	// standard worked example in the semigroup-theory literature.
	base := newFullTransformationSemigroup(5, [][]int{
		{1, 3, 4, 2, 3},
		{3, 2, 1, 3, 3},
	})
	if got := base.Size(); got != 88 {
		t.Fatalf("base semigroup Size() = %d, want 88", got)
	}

	e := New(base, presentation.TwoSided)
	// aabaabba = bbaabbb, with a = gens[0], b = gens[1].
	u := presentation.Word{0, 0, 1, 0, 0, 1, 1, 0}
	v := presentation.Word{1, 1, 0, 0, 1, 1, 1}
	if err := e.AddGeneratingPair(u, v); err != nil {
		t.Fatalf("AddGeneratingPair: %v", err)
	}
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := e.NrClasses(); got != 21 {
		t.Fatalf("NrClasses() = %v, want 21", got)
	}
}
