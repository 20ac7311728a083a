// Package uf provides an incremental disjoint-set over a growing index
// space, used by the pair-closure engine to track which discovered elements
// have been identified (spec §4.B).
package uf

// UnionFind is a disjoint-set structure over the dense integer range
// [0, Size()). Grounded on internal/sparse.SparseSet's discipline of
// pre-sized backing slices grown by append, applied here to parent/rank
// arrays instead of a sparse/dense membership pair.
type UnionFind struct {
	parent []int32
	rank   []uint8
	blocks int
}

// New creates a UnionFind with n singleton classes.
func New(n int) *UnionFind {
	u := &UnionFind{
		parent: make([]int32, n, n+n/4+8),
		rank:   make([]uint8, n, n+n/4+8),
		blocks: n,
	}
	for i := range u.parent {
		u.parent[i] = int32(i)
	}
	return u
}

// AddEntry extends the universe by one singleton class and returns its
// index.
func (u *UnionFind) AddEntry() int {
	i := len(u.parent)
	u.parent = append(u.parent, int32(i))
	u.rank = append(u.rank, 0)
	u.blocks++
	return i
}

// Size returns the number of elements tracked (n).
func (u *UnionFind) Size() int { return len(u.parent) }

// NrBlocks returns the number of disjoint classes, maintained incrementally
// so it never costs more than O(1) to read.
func (u *UnionFind) NrBlocks() int { return u.blocks }

// Find returns the representative of i's class, compressing the path
// traversed so future Find(i) calls are ~O(1).
func (u *UnionFind) Find(i int) int {
	root := i
	for int(u.parent[root]) != root {
		root = int(u.parent[root])
	}
	for int(u.parent[i]) != root {
		next := int(u.parent[i])
		u.parent[i] = int32(root)
		i = next
	}
	return root
}

// Unite merges the classes containing i and j. Returns true if they were
// previously distinct (and thus NrBlocks decreased).
func (u *UnionFind) Unite(i, j int) bool {
	ri, rj := u.Find(i), u.Find(j)
	if ri == rj {
		return false
	}
	if u.rank[ri] < u.rank[rj] {
		ri, rj = rj, ri
	}
	u.parent[rj] = int32(ri)
	if u.rank[ri] == u.rank[rj] {
		u.rank[ri]++
	}
	u.blocks--
	return true
}

// Connected reports whether i and j are in the same class.
func (u *UnionFind) Connected(i, j int) bool {
	return u.Find(i) == u.Find(j)
}
