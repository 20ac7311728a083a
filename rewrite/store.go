// Package rewrite owns the three rule pools (active, inactive, pending) that
// back Knuth-Bendix completion, plus the lhs-indexed lookup the rewriting
// loop needs at every letter it advances (spec §4.C).
package rewrite

import (
	"github.com/coregx/congru/presentation"
)

// Word and Letter are re-exported for callers that only need package
// rewrite, mirroring how nfa re-exports nothing but callers import both
// together; here the two packages are used together often enough this
// saves an import in most call sites.
type (
	Word   = presentation.Word
	Letter = presentation.Letter
)

// Rule is an owned, mutable rewrite rule. Its Id is positive while active
// and negative while inactive, per spec §3 ("Each rule carries a signed
// integer id whose sign encodes active/inactive"); the magnitude never
// changes across (de)activation so a caller holding an old signed Id can
// still recognise the same underlying rule.
type Rule struct {
	Lhs, Rhs Word
	id       uint64 // magnitude, assigned once, reused across activation
	active   bool
	arenaIdx int32 // backing Store slot, set by Store.NewRule
}

// Id returns the rule's signed identifier: positive while active, negative
// while inactive.
func (r *Rule) Id() int64 {
	if r.active {
		return int64(r.id)
	}
	return -int64(r.id)
}

// Active reports whether the rule is currently in the active pool.
func (r *Rule) Active() bool { return r.active }

// node is one arena slot. The active sublist is an intrusive doubly-linked
// list over node indices (spec §9 "Intrusive linked list" design note,
// applied here to rules instead of cosets); inactive and pending are plain
// index stacks since neither needs mid-list removal.
type node struct {
	rule       Rule
	prev, next int32 // valid only while linked into the active list
}

const nilNode int32 = -1

// Store holds active/inactive/pending rule pools and an index over active
// left-hand sides. arena holds *node rather than node so that Rule pointers
// handed out by NewRule stay valid as the arena grows: growing a []*node
// only ever relocates the pointers, never the pointed-to nodes.
type Store struct {
	arena []*node

	activeHead, activeTail int32
	activeLen              int

	inactivePool []int32 // arena indices available for reuse
	pending      []int32 // stack of arena indices awaiting processing

	cursors []*Cursor // registered active-list cursors (spec §4.C "Validity of cursors")

	nextID uint64

	idx      *lhsIndex
	idxDirty bool
}

// NewStore creates an empty rule store. alphabetSize bounds the
// byte-encoding used by the Aho-Corasick lhs index: when the alphabet fits
// in a byte (<=256 letters, true for essentially every presentation this
// system is used on) active lhs's are indexed with
// github.com/coregx/ahocorasick; otherwise the store falls back to a linear
// scan over the active list (see lhsIndex.usable).
func NewStore(alphabetSize int) *Store {
	return &Store{
		activeHead: nilNode,
		activeTail: nilNode,
		idx:        newLhsIndex(alphabetSize),
	}
}

// NewRule obtains a rule object with empty Lhs/Rhs and a fresh id, reusing
// arena storage from a freed inactive slot when one is available.
func (s *Store) NewRule() *Rule {
	s.nextID++
	if len(s.inactivePool) > 0 {
		i := s.inactivePool[len(s.inactivePool)-1]
		s.inactivePool = s.inactivePool[:len(s.inactivePool)-1]
		*s.arena[i] = node{rule: Rule{id: s.nextID, arenaIdx: i}, prev: nilNode, next: nilNode}
		return &s.arena[i].rule
	}
	i := int32(len(s.arena))
	s.arena = append(s.arena, &node{rule: Rule{id: s.nextID, arenaIdx: i}, prev: nilNode, next: nilNode})
	return &s.arena[i].rule
}

// PushPending enqueues rule unless it is trivial (Lhs == Rhs), in which
// case it is recycled back to the inactive pool immediately.
func (s *Store) PushPending(r *Rule) {
	i := r.arenaIdx
	if r.Lhs.Equal(r.Rhs) {
		s.recycle(i)
		return
	}
	s.pending = append(s.pending, i)
}

// Discard recycles r without activating it, for a caller that rewrote a
// pending rule to a trivial one (Lhs == Rhs) after popping it.
func (s *Store) Discard(r *Rule) { s.recycle(r.arenaIdx) }

// PopPending pops the most recently pushed pending rule, or nil if empty.
func (s *Store) PopPending() *Rule {
	if len(s.pending) == 0 {
		return nil
	}
	i := s.pending[len(s.pending)-1]
	s.pending = s.pending[:len(s.pending)-1]
	return &s.arena[i].rule
}

// PendingLen returns the number of rules awaiting processing.
func (s *Store) PendingLen() int { return len(s.pending) }

// ActiveLen returns the number of currently active rules.
func (s *Store) ActiveLen() int { return s.activeLen }

// activeSlice materialises the active list as a []*Rule, for the lhs index
// rebuild and its linear-scan fallback.
func (s *Store) activeSlice() []*Rule {
	out := make([]*Rule, 0, s.activeLen)
	for i := s.activeHead; i != nilNode; i = s.arena[i].next {
		out = append(out, &s.arena[i].rule)
	}
	return out
}

// ActiveRules returns a snapshot of the active list in order, for callers
// (the Knuth-Bendix overlap scan, confluence test) that need to iterate it
// more than once without repeated list walks.
func (s *Store) ActiveRules() []*Rule { return s.activeSlice() }

// AddActive makes r active: inserts it into the lhs index. If an
// equivalent key (one lhs a suffix of the other) is already indexed, r was
// not actually reduced against the current active set, so it is pushed
// back onto pending instead (spec §4.C).
func (s *Store) AddActive(r *Rule) {
	if shadowsAgainst(r.Lhs, s.activeSlice()) {
		s.PushPending(r)
		return
	}
	r.active = true
	s.linkActive(r.arenaIdx)
	s.idxDirty = true
}

// LongestActiveSuffix returns the active rule whose lhs is the longest
// suffix of window, the operation the rewriting loop of spec §4.D performs
// at every letter it advances.
func (s *Store) LongestActiveSuffix(window Word) (*Rule, bool) {
	if s.idxDirty {
		s.idx.rebuild(s.activeSlice())
		s.idxDirty = false
	}
	if s.idx.usable {
		return s.idx.longestActiveSuffixFast(window)
	}
	return longestActiveSuffixSlow(window, s.activeSlice())
}

func (s *Store) linkActive(i int32) {
	n := s.arena[i]
	n.prev = s.activeTail
	n.next = nilNode
	if s.activeTail != nilNode {
		s.arena[s.activeTail].next = i
	} else {
		s.activeHead = i
	}
	s.activeTail = i
	s.activeLen++
}

func (s *Store) unlinkActive(i int32) {
	n := s.arena[i]
	if n.prev != nilNode {
		s.arena[n.prev].next = n.next
	} else {
		s.activeHead = n.next
	}
	if n.next != nilNode {
		s.arena[n.next].prev = n.prev
	} else {
		s.activeTail = n.prev
	}
	n.prev, n.next = nilNode, nilNode
	s.activeLen--
}

// recycle moves arena slot i to the inactive pool without going through
// the active list (used for rules that never became active, e.g. trivial
// pending rules).
func (s *Store) recycle(i int32) {
	s.arena[i].rule.active = false
	s.inactivePool = append(s.inactivePool, i)
}

// Deactivate moves the rule under cursor c from active to inactive,
// removing it from the lhs index. Any other registered cursor pointing at
// the same node is advanced to that node's successor first, preserving the
// iteration semantics the completion loop's two cursors depend on (spec
// §4.C "Validity of cursors").
func (s *Store) Deactivate(c *Cursor) {
	if !c.Valid() {
		return
	}
	i := c.node
	for _, other := range s.cursors {
		if other != c && other.node == i {
			other.node = s.arena[i].next
		}
	}
	c.node = s.arena[i].next

	s.unlinkActive(i)
	s.arena[i].rule.active = false
	s.inactivePool = append(s.inactivePool, i)
	s.idxDirty = true
}

// Active returns a fresh cursor positioned at the first active rule. The
// cursor is registered with the store so Deactivate can keep it valid
// across removals; callers should discard cursors they no longer iterate
// with (there is no explicit unregister; the slice only shrinks when
// CompactCursors is called).
func (s *Store) Active() *Cursor {
	c := &Cursor{store: s, node: s.activeHead}
	s.cursors = append(s.cursors, c)
	return c
}

// CompactCursors drops cursors that are no longer referenced by the caller.
// It is not required for correctness, only to bound s.cursors' growth.
// Package kb does not call it, so during completion s.cursors grows by one
// for every Active call.
func (s *Store) CompactCursors(keep ...*Cursor) {
	s.cursors = append(s.cursors[:0], keep...)
}

// Cursor is a stable iterator into the active rule list. Deactivating the
// rule a cursor currently points at advances that cursor to the next
// active rule automatically.
type Cursor struct {
	store *Store
	node  int32
}

// Valid reports whether the cursor currently references a rule.
func (c *Cursor) Valid() bool { return c.node != nilNode }

// Rule returns the rule the cursor currently references. Panics if !Valid().
func (c *Cursor) Rule() *Rule { return &c.store.arena[c.node].rule }

// Next advances the cursor to the next active rule.
func (c *Cursor) Next() {
	if c.Valid() {
		c.node = c.store.arena[c.node].next
	}
}

// Clone returns an independent cursor at the same position, registered so
// it too is kept valid across Deactivate.
func (c *Cursor) Clone() *Cursor {
	nc := &Cursor{store: c.store, node: c.node}
	c.store.cursors = append(c.store.cursors, nc)
	return nc
}
