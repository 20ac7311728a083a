package rewrite

import (
	"github.com/coregx/ahocorasick"
)

// lhsIndex answers two questions the store needs: "does this new lhs shadow
// (or get shadowed by) an existing active lhs" and "what is the active rule
// whose lhs is the longest suffix of this window". Grounded on
// meta/engine.go's ahoCorasick field and meta/compile.go's
// NewBuilder/AddPattern/Build sequence, which the teacher uses for "large
// literal alternations"; an active rule-set's left-hand sides are exactly
// such an alternation.
//
// The automaton only understands byte patterns. When the alphabet fits in a
// byte (<=256 internal letters — true of every presentation this system is
// built for) words are encoded one letter per byte and the automaton is
// used directly. For larger alphabets lhsIndex.usable is false and the
// store performs a plain linear scan instead, so correctness never depends
// on the byte encoding, only performance does.
type lhsIndex struct {
	usable bool

	automaton *ahocorasick.Automaton
	byPattern []*Rule // parallel to the order patterns were added to the builder
}

func newLhsIndex(alphabetSize int) *lhsIndex {
	return &lhsIndex{usable: alphabetSize > 0 && alphabetSize <= 256}
}

func encodeWord(w Word) []byte {
	b := make([]byte, len(w))
	for i, l := range w {
		b[i] = byte(l)
	}
	return b
}

// rebuild reconstructs the automaton from scratch over the current active
// rule list. Called lazily (on the next query after a mutation) rather
// than incrementally, batching the cost of add/deactivate churn the way a
// B-tree index would batch rebalancing.
func (idx *lhsIndex) rebuild(active []*Rule) {
	idx.automaton = nil
	idx.byPattern = nil
	if !idx.usable || len(active) == 0 {
		return
	}
	builder := ahocorasick.NewBuilder()
	idx.byPattern = make([]*Rule, 0, len(active))
	for _, r := range active {
		builder.AddPattern(encodeWord(r.Lhs))
		idx.byPattern = append(idx.byPattern, r)
	}
	auto, err := builder.Build()
	if err != nil {
		idx.byPattern = nil
		return
	}
	idx.automaton = auto
}

// longestActiveSuffixFast returns the active rule whose lhs is the longest
// suffix of window, using the built automaton. It repeatedly calls Find,
// advancing past each match's start, collecting every match that ends at
// len(window) and keeping the longest (i.e. the one with the smallest
// Start) — mirroring how meta.findAhoCorasickAt walks matches from a given
// offset.
func (idx *lhsIndex) longestActiveSuffixFast(window Word) (*Rule, bool) {
	if idx.automaton == nil {
		return nil, false
	}
	hay := encodeWord(window)
	var best *Rule
	at := 0
	for at <= len(hay) {
		m := idx.automaton.Find(hay, at)
		if m == nil {
			break
		}
		if m.End == len(hay) {
			cand := idx.byPattern[m.Pattern]
			if best == nil || len(cand.Lhs) > len(best.Lhs) {
				best = cand
			}
		}
		at = m.Start + 1
	}
	return best, best != nil
}

// shadowsAgainst reports whether lhs would collide with an already-active
// rule: the lhs-indexed lookup's comparator "treats two windows as equal
// iff one is a suffix of the other" (spec §4.C).
func shadowsAgainst(lhs Word, active []*Rule) bool {
	for _, r := range active {
		if isSuffix(r.Lhs, lhs) || isSuffix(lhs, r.Lhs) {
			return true
		}
	}
	return false
}

// longestActiveSuffixSlow is the linear-scan fallback used when the
// alphabet is too large to byte-encode, or as ground truth in tests.
func longestActiveSuffixSlow(window Word, active []*Rule) (*Rule, bool) {
	var best *Rule
	for _, r := range active {
		if isSuffix(r.Lhs, window) && (best == nil || len(r.Lhs) > len(best.Lhs)) {
			best = r
		}
	}
	return best, best != nil
}

func isSuffix(suffix, whole Word) bool {
	if len(suffix) > len(whole) {
		return false
	}
	off := len(whole) - len(suffix)
	for i := range suffix {
		if suffix[i] != whole[off+i] {
			return false
		}
	}
	return true
}
