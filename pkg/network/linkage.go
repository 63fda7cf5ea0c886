package network

import (
	"fmt"
	"math"
)

// Merge is one row of a hierarchical clustering: clusters A and B join at
// Height. Leaves are numbered 0..N-1 and merge k creates cluster N+k.
type Merge struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Height float64 `json:"height"`
}

// Linkage is an agglomerative clustering tree over the network's nodes.
// A complete linkage over N leaves has N-1 merges.
type Linkage struct {
	Merges []Merge
}

// Leaves returns the number of leaves the linkage covers.
func (l *Linkage) Leaves() int {
	if l == nil {
		return 0
	}
	return len(l.Merges) + 1
}

// Validate checks that every merge references an existing cluster that has
// not been merged already.
func (l *Linkage) Validate() error {
	if l == nil {
		return nil
	}
	n := l.Leaves()
	used := make([]bool, n+len(l.Merges))
	for k, mg := range l.Merges {
		limit := n + k
		for _, id := range [2]int{mg.A, mg.B} {
			if id < 0 || id >= limit {
				return fmt.Errorf("%w: merge %d references cluster %d, valid range [0, %d)", ErrInvalidLinkage, k, id, limit)
			}
			if used[id] {
				return fmt.Errorf("%w: merge %d reuses cluster %d", ErrInvalidLinkage, k, id)
			}
			used[id] = true
		}
		if mg.A == mg.B {
			return fmt.Errorf("%w: merge %d joins cluster %d with itself", ErrInvalidLinkage, k, mg.A)
		}
		if math.IsNaN(mg.Height) {
			return fmt.Errorf("%w: merge %d has NaN height", ErrInvalidLinkage, k)
		}
	}
	return nil
}

// Clone returns a deep copy of l.
func (l *Linkage) Clone() *Linkage {
	if l == nil {
		return nil
	}
	return &Linkage{Merges: append([]Merge(nil), l.Merges...)}
}

// LeafOrder returns the leaves in dendrogram order: a depth-first walk from
// the root visiting A before B. Views lay nodes out in this order so that
// clusters sit next to each other.
func (l *Linkage) LeafOrder() []int {
	n := l.Leaves()
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []int{0}
	}
	order := make([]int, 0, n)
	stack := []int{n + len(l.Merges) - 1}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id < n {
			order = append(order, id)
			continue
		}
		mg := l.Merges[id-n]
		stack = append(stack, mg.B, mg.A)
	}
	return order
}

// Flatten cuts the tree into at most k clusters by undoing the k-1 highest
// merges. It returns one cluster id per leaf; ids start at 1 and are numbered
// in dendrogram order. k is clamped into [1, Leaves()].
func (l *Linkage) Flatten(k int) []int {
	n := l.Leaves()
	if n == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	// rep maps any cluster id to one of its leaves.
	rep := make([]int, n+len(l.Merges))
	for i := 0; i < n; i++ {
		rep[i] = i
	}
	for m, mg := range l.Merges {
		rep[n+m] = rep[mg.A]
		if m >= n-k {
			continue
		}
		a, b := find(rep[mg.A]), find(rep[mg.B])
		if a != b {
			parent[b] = a
		}
	}

	ids := make([]int, n)
	next := 1
	byRoot := make(map[int]int, k)
	for _, leaf := range l.LeafOrder() {
		root := find(leaf)
		id, ok := byRoot[root]
		if !ok {
			id = next
			next++
			byRoot[root] = id
		}
		ids[leaf] = id
	}
	return ids
}
