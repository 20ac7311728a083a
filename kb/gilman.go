package kb

import (
	"strconv"
	"strings"

	"github.com/coregx/congru/presentation"
	"github.com/coregx/congru/rewrite"
)

// GilmanNode is one state of a Gilman graph: an irreducible word together
// with its outgoing transitions. Edges is indexed by letter; -1 means the
// extension by that letter is reducible (no such state exists).
type GilmanNode struct {
	Word  Word
	Edges []int
}

// GilmanGraph is the finite-state automaton recognising the language of
// irreducible (normal form) words with respect to a confluent rule set
// (spec §3 "Gilman graph"; a supplemented feature, libsemigroups'
// gilman_digraph). Because rewriting only ever depends on a bounded
// trailing context (no active lhs is longer than the completed system's
// longest rule), states are irreducible words of length strictly less than
// that bound rather than arbitrary words — the standard construction that
// makes the graph finite even when the underlying language is infinite.
type GilmanGraph struct {
	Nodes  []GilmanNode
	ctxLen int
}

// GilmanGraph builds (or returns the cached) automaton for the current
// active rule set. Returns ErrNotConfluent if the set is not known to be
// confluent; call Confluent or Run first.
func (e *Engine) GilmanGraph() (*GilmanGraph, error) {
	if e.gilman != nil {
		return e.gilman, nil
	}
	ok, err := e.Confluent()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotConfluent
	}

	n := e.pres.Alphabet().Size()
	rules := e.store.ActiveRules()
	maxLen := 0
	for _, r := range rules {
		if len(r.Lhs) > maxLen {
			maxLen = len(r.Lhs)
		}
	}
	ctxLen := maxLen - 1
	if ctxLen < 0 {
		ctxLen = 0
	}

	states := enumerateIrreducible(ctxLen, n, rules)
	index := make(map[string]int, len(states))
	nodes := make([]GilmanNode, len(states))
	for i, w := range states {
		edges := make([]int, n)
		for k := range edges {
			edges[k] = -1
		}
		nodes[i] = GilmanNode{Word: w, Edges: edges}
		index[wordKey(w)] = i
	}
	for i, w := range states {
		for a := 0; a < n; a++ {
			cand := w.Append(Word{Letter(a)})
			if containsAnyLhs(cand, rules) {
				continue
			}
			next := cand
			if len(next) > ctxLen {
				next = next[len(next)-ctxLen:]
			}
			if idx, ok := index[wordKey(next)]; ok {
				nodes[i].Edges[a] = idx
			}
		}
	}

	e.gilman = &GilmanGraph{Nodes: nodes, ctxLen: ctxLen}
	return e.gilman, nil
}

// IsFinite reports whether the quotient presented by the active (confluent)
// rule set has finitely many normal-form words, equivalently whether the
// Gilman graph is acyclic.
func (e *Engine) IsFinite() (presentation.Tri, error) {
	g, err := e.GilmanGraph()
	if err != nil {
		return presentation.TriUnknown, err
	}
	if g.acyclic() {
		return presentation.TriYes, nil
	}
	return presentation.TriNo, nil
}

// Size returns the number of normal-form words (the quotient's class
// count), or presentation.PositiveInfinity if the Gilman graph has a cycle.
// An empty alphabet gives 0.
func (e *Engine) Size() (presentation.ClassCount, error) {
	if e.pres.Alphabet().Size() == 0 {
		return 0, nil
	}
	fin, err := e.IsFinite()
	if err != nil {
		return presentation.ClassCount(presentation.Undefined), err
	}
	if fin != presentation.TriYes {
		return presentation.ClassCount(presentation.PositiveInfinity), nil
	}
	g, _ := e.GilmanGraph()
	total := make([]uint64, len(g.Nodes))
	for _, i := range g.topoOrder() {
		total[i] = 1
		for _, next := range g.Nodes[i].Edges {
			if next >= 0 {
				total[i] += total[next]
			}
		}
	}
	count := total[0]
	if !e.pres.IsMonoid() {
		count-- // exclude the empty word, not a legal semigroup element
	}
	return presentation.ClassCount(count), nil
}

// NormalForms enumerates every normal-form word of length <= upTo, in the
// order libsemigroups' own traversal produces: increasing length, then the
// order letters appear in the alphabet at each branch.
func (e *Engine) NormalForms(upTo int) ([]Word, error) {
	g, err := e.GilmanGraph()
	if err != nil {
		return nil, err
	}
	if len(g.Nodes) == 0 {
		return nil, nil
	}
	type item struct {
		state int
		word  Word
	}
	var out []Word
	if e.pres.IsMonoid() {
		out = append(out, Word{})
	}
	queue := []item{{0, Word{}}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if len(it.word) >= upTo {
			continue
		}
		for a, next := range g.Nodes[it.state].Edges {
			if next < 0 {
				continue
			}
			nw := it.word.Append(Word{Letter(a)})
			out = append(out, nw)
			queue = append(queue, item{next, nw})
		}
	}
	return out, nil
}

func (g *GilmanGraph) acyclic() bool {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(g.Nodes))
	var visit func(i int) bool
	visit = func(i int) bool {
		color[i] = gray
		for _, next := range g.Nodes[i].Edges {
			if next < 0 {
				continue
			}
			if color[next] == gray {
				return false
			}
			if color[next] == white && !visit(next) {
				return false
			}
		}
		color[i] = black
		return true
	}
	for i := range g.Nodes {
		if color[i] == white && !visit(i) {
			return false
		}
	}
	return true
}

// topoOrder returns node indices in postorder DFS: every node's descendants
// appear before it, which is what Size's path-counting dp needs. Only valid
// when the graph is acyclic (callers check IsFinite first).
func (g *GilmanGraph) topoOrder() []int {
	visited := make([]bool, len(g.Nodes))
	order := make([]int, 0, len(g.Nodes))
	var visit func(i int)
	visit = func(i int) {
		visited[i] = true
		for _, next := range g.Nodes[i].Edges {
			if next >= 0 && !visited[next] {
				visit(next)
			}
		}
		order = append(order, i)
	}
	for i := range g.Nodes {
		if !visited[i] {
			visit(i)
		}
	}
	return order
}

// enumerateIrreducible lists every word of length 0..ctxLen, over an
// n-letter alphabet, that contains no active lhs as a substring, built
// level by level so index 0 is always the empty word.
func enumerateIrreducible(ctxLen, n int, rules []*rewrite.Rule) []Word {
	level := []Word{{}}
	out := append([]Word{}, level...)
	for length := 1; length <= ctxLen; length++ {
		var next []Word
		for _, w := range level {
			for a := 0; a < n; a++ {
				cand := w.Append(Word{Letter(a)})
				if !containsAnyLhs(cand, rules) {
					next = append(next, cand)
				}
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}

func containsAnyLhs(w Word, rules []*rewrite.Rule) bool {
	for _, r := range rules {
		if len(r.Lhs) == 0 {
			continue
		}
		if containsSubstring(w, r.Lhs) {
			return true
		}
	}
	return false
}

// wordKey encodes w as a map key. Letters are formatted with a separator
// rather than cast to rune/byte since a Letter can exceed 255.
func wordKey(w Word) string {
	var b strings.Builder
	for _, l := range w {
		b.WriteString(strconv.FormatUint(uint64(l), 10))
		b.WriteByte(',')
	}
	return b.String()
}
