// Package equivalence implements the union-find table that tracks which
// provisional labels belong to the same connected component.
//
// The table is a flat slice indexed by label: entry l holds the label l was
// merged into, or l itself for a root. Merges always point at the lowest
// root, so every chain strictly decreases towards its root.
package equivalence

import (
	"errors"

	"golang.org/x/exp/constraints"
)

const (
	// Background is the label of false voxels
	Background = 0
	// Sentinel marks a foreground voxel that has no label yet
	Sentinel = 1
)

// ErrLabelOverflow is returned when a new region would not fit in the label type
var ErrLabelOverflow = errors.New("too many regions for label type")

// Table is the equivalence array of one labeling run
type Table[L constraints.Unsigned] struct {
	parent []L
}

// New returns a table holding only the background and sentinel entries
func New[L constraints.Unsigned]() *Table[L] {
	return &Table[L]{parent: []L{Background, Sentinel}}
}

// Next returns the label the next Allocate call would hand out
func (t *Table[L]) Next() int {
	return len(t.parent)
}

// Allocate appends a new root and returns it
func (t *Table[L]) Allocate() (L, error) {
	n := uint64(len(t.parent))
	if n > uint64(^L(0)) {
		return 0, ErrLabelOverflow
	}
	l := L(n)
	t.parent = append(t.parent, l)
	return l, nil
}

// FindRoot follows l to its root
func (t *Table[L]) FindRoot(l L) L {
	for t.parent[l] != l {
		l = t.parent[l]
	}
	return l
}

// Union merges the sets of a and b and returns the lowest of their roots.
// Every label on the paths from a and from b is repointed at that root.
func (t *Table[L]) Union(a, b L) L {
	ra, rb := t.FindRoot(a), t.FindRoot(b)
	lowest := min(ra, rb)
	t.parent[ra] = lowest
	t.parent[rb] = lowest
	t.flatten(a, lowest)
	t.flatten(b, lowest)
	return lowest
}

func (t *Table[L]) flatten(l, root L) {
	for l != root {
		next := t.parent[l]
		t.parent[l] = root
		l = next
	}
}

// Merge combines the current label of a voxel with the label of an adjacent,
// already labeled voxel and returns the voxel's new label.
func (t *Table[L]) Merge(current, neighbor L) L {
	switch {
	case neighbor == Background:
		return current
	case current == Sentinel:
		return neighbor
	case current != neighbor:
		return t.Union(neighbor, current)
	}
	return current
}

// Compact renumbers the roots to the dense range 1..K, points every other
// label at its root's new number and returns K. Afterwards Lookup maps a
// provisional label straight to its final label.
func (t *Table[L]) Compact() int {
	if len(t.parent) == 2 {
		return 0
	}
	var dest L = 1
	for i := 2; i < len(t.parent); i++ {
		l := L(i)
		if t.parent[l] == l {
			t.parent[l] = dest
			dest++
		} else {
			// Roots are below their followers and were renumbered already.
			t.parent[l] = t.parent[t.parent[l]]
		}
	}
	return int(dest - 1)
}

// Lookup returns the table entry for l
func (t *Table[L]) Lookup(l L) L {
	return t.parent[l]
}
