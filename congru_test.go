package congru

import (
	"strconv"
	"testing"

	"github.com/coregx/congru/pairs"
	"github.com/coregx/congru/presentation"
)

// transformation is a full transformation on {0, ..., degree-1}, represented
// by its image list.
type transformation struct{ images []int }

func (t transformation) Key() any {
	var b []byte
	for i, v := range t.images {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, int64(v), 10)
	}
	return string(b)
}

func composeTransformations(x, y transformation) transformation {
	images := make([]int, len(x.images))
	for i, v := range x.images {
		images[i] = y.images[v]
	}
	return transformation{images: images}
}

// transformationSemigroup enumerates, lazily, the full semigroup generated
// by a fixed set of transformations under composition, the BaseSemigroup
// collaborator a pair-closure congruence needs.
type transformationSemigroup struct {
	degree int
	gens   []transformation

	elements []transformation
	wordOf   []presentation.Word
	index    map[string]int
}

func newTransformationSemigroup(degree int, gens [][]int) *transformationSemigroup {
	s := &transformationSemigroup{degree: degree}
	for _, g := range gens {
		s.gens = append(s.gens, transformation{images: append([]int(nil), g...)})
	}
	return s
}

func (s *transformationSemigroup) ensureEnumerated() {
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
			add(composeTransformations(cur, g), curWord.Append(presentation.Word{presentation.Letter(gi)}))
		}
	}
}

func (s *transformationSemigroup) NrGenerators() int { return len(s.gens) }

func (s *transformationSemigroup) Size() uint64 {
	s.ensureEnumerated()
	return uint64(len(s.elements))
}

func (s *transformationSemigroup) IsFinite() presentation.Tri { return presentation.TriYes }

func (s *transformationSemigroup) Evaluate(w presentation.Word) pairs.Element {
	if len(w) == 0 {
		images := make([]int, s.degree)
		for i := range images {
			images[i] = i
		}
		return transformation{images: images}
	}
	cur := s.gens[w[0]]
	for _, a := range w[1:] {
		cur = composeTransformations(cur, s.gens[a])
	}
	return cur
}

func (s *transformationSemigroup) Factorise(e pairs.Element) presentation.Word {
	s.ensureEnumerated()
	idx, ok := s.index[e.(transformation).Key().(string)]
	if !ok {
		return nil
	}
	return s.wordOf[idx]
}

func (s *transformationSemigroup) Multiply(x, y pairs.Element) pairs.Element {
	return composeTransformations(x.(transformation), y.(transformation))
}

func (s *transformationSemigroup) Enumerate(cancel func() bool) { s.ensureEnumerated() }

// TestS3TransformationSemigroupTwentyOneClasses is spec scenario S3: the
// degree-5 full transformation semigroup generated by [1,3,4,2,3] and
// [3,2,1,3,3] (88 elements), congruence closed under the generating pair
// aabaabba = bbaabbb, expected to collapse onto 21 classes.
func TestS3TransformationSemigroupTwentyOneClasses(t *testing.T) {
	base := newTransformationSemigroup(5, [][]int{
		{1, 3, 4, 2, 3},
		{3, 2, 1, 3, 3},
	})
	if got := base.Size(); got != 88 {
		t.Fatalf("base semigroup Size() = %d, want 88", got)
	}

	c, err := NewCongruenceFromBaseSemigroup(TwoSided, base)
	if err != nil {
		t.Fatalf("NewCongruenceFromBaseSemigroup: %v", err)
	}
	// a = gens[0], b = gens[1]: aabaabba = bbaabbb.
	u := Word{0, 0, 1, 0, 0, 1, 1, 0}
	v := Word{1, 1, 0, 0, 1, 1, 1}
	if err := c.AddGeneratingPair(u, v); err != nil {
		t.Fatalf("AddGeneratingPair: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.NrClasses(); got != 21 {
		t.Fatalf("NrClasses() = %v, want 21", got)
	}
}

// TestS1TwoSidedFiveClasses is spec scenario S1.
func TestS1TwoSidedFiveClasses(t *testing.T) {
	pres, err := NewPresentation("ab", false)
	if err != nil {
		t.Fatalf("NewPresentation: %v", err)
	}
	if err := pres.AddRuleString("aaa", "a"); err != nil {
		t.Fatalf("AddRuleString: %v", err)
	}
	if err := pres.AddRuleString("a", "bb"); err != nil {
		t.Fatalf("AddRuleString: %v", err)
	}

	c, err := NewCongruence(TwoSided, pres)
	if err != nil {
		t.Fatalf("NewCongruence: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.NrClasses(); got != 5 {
		t.Fatalf("NrClasses() = %v, want 5", got)
	}
	ok, err := c.ContainsString("aab", "aaaab")
	if err != nil || !ok {
		t.Fatalf("ContainsString(aab, aaaab) = %v, %v, want true, nil", ok, err)
	}
}

// TestS2LeftFiveClasses is spec scenario S2.
func TestS2LeftFiveClasses(t *testing.T) {
	pres, err := NewPresentation("ab", false)
	if err != nil {
		t.Fatalf("NewPresentation: %v", err)
	}
	if err := pres.AddRuleString("aaa", "a"); err != nil {
		t.Fatalf("AddRuleString: %v", err)
	}
	if err := pres.AddRuleString("a", "bb"); err != nil {
		t.Fatalf("AddRuleString: %v", err)
	}

	c, err := NewCongruence(Left, pres)
	if err != nil {
		t.Fatalf("NewCongruence: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.NrClasses(); got != 5 {
		t.Fatalf("NrClasses() = %v, want 5", got)
	}
}

// TestS4BicyclicMonoidThreeClasses is spec scenario S4. The rule e = "" makes
// the letter e the identity.
func TestS4BicyclicMonoidThreeClasses(t *testing.T) {
	pres, err := NewPresentation("abe", true)
	if err != nil {
		t.Fatalf("NewPresentation: %v", err)
	}
	if err := pres.AddRuleString("ab", "e"); err != nil {
		t.Fatalf("AddRuleString: %v", err)
	}
	if err := pres.AddRuleString("e", ""); err != nil {
		t.Fatalf("AddRuleString: %v", err)
	}

	c, err := NewCongruence(TwoSided, pres)
	if err != nil {
		t.Fatalf("NewCongruence: %v", err)
	}
	if err := c.AddGeneratingPairString("bbb", "e"); err != nil {
		t.Fatalf("AddGeneratingPairString: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.NrClasses(); got != 3 {
		t.Fatalf("NrClasses() = %v, want 3", got)
	}
}

// TestBoundaryEmptyAlphabetIsZeroClasses covers the boundary behaviour for
// an empty-alphabet presentation: there are no words and no classes.
func TestBoundaryEmptyAlphabetIsZeroClasses(t *testing.T) {
	pres, err := NewPresentation("", true)
	if err != nil {
		t.Fatalf("NewPresentation: %v", err)
	}

	c, err := NewCongruence(TwoSided, pres)
	if err != nil {
		t.Fatalf("NewCongruence: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.NrClasses(); got != 0 {
		t.Fatalf("NrClasses() = %v, want 0", got)
	}
}

// TestS7DihedralOrderSixMergesTwoInvolutions is spec scenario S7: starting
// from the dihedral group of order 12 (generators r of order 6, s of order
// 2, relation sr = r^5 s) and adding the pair r^3 = s collapses it onto the
// dihedral group of order 6, identifying the two distinct order-12
// involutions r^3 and s.
func TestS7DihedralOrderSixMergesTwoInvolutions(t *testing.T) {
	pres, err := NewPresentation("rs", true)
	if err != nil {
		t.Fatalf("NewPresentation: %v", err)
	}
	for _, rule := range [][2]string{
		{"rrrrrr", ""},
		{"ss", ""},
		{"sr", "rrrrrs"},
	} {
		if err := pres.AddRuleString(rule[0], rule[1]); err != nil {
			t.Fatalf("AddRuleString(%q, %q): %v", rule[0], rule[1], err)
		}
	}

	c, err := NewCongruence(TwoSided, pres)
	if err != nil {
		t.Fatalf("NewCongruence: %v", err)
	}
	if err := c.AddGeneratingPairString("rrr", "s"); err != nil {
		t.Fatalf("AddGeneratingPairString: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.NrClasses(); got != 6 {
		t.Fatalf("NrClasses() = %v, want 6", got)
	}
	ok, err := c.ContainsString("rrr", "s")
	if err != nil || !ok {
		t.Fatalf("ContainsString(rrr, s) = %v, %v, want true, nil", ok, err)
	}
}

// TestBoundaryObviouslyInfiniteQuotient covers the free-semigroup case: no
// relations and at least one generator means infinitely many classes,
// returned without exhausting the resources given.
func TestBoundaryObviouslyInfiniteQuotient(t *testing.T) {
	pres, err := NewPresentation("ab", false)
	if err != nil {
		t.Fatalf("NewPresentation: %v", err)
	}

	c, err := NewCongruence(TwoSided, pres)
	if err != nil {
		t.Fatalf("NewCongruence: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.NrClasses(); !got.IsInfinite() {
		t.Fatalf("NrClasses() = %v, want infinite", got)
	}
	ok, err := c.ContainsString("a", "b")
	if err != nil || ok {
		t.Fatalf("ContainsString(a, b) = %v, %v, want false, nil", ok, err)
	}
}
