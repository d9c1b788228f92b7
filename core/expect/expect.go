// Package expect records the alternatives a parser could have taken.
//
// A Tree holds a forest of items plus a current path into it. Parsers advance
// along the path while trying candidates and retract when a candidate does not
// apply; retracting never removes nodes, so everything tried remains visible
// to Flatten. This is the single record/rollback primitive used for
// completion.
package expect

import "github.com/opal-lang/interact/core/invariant"

type node[T comparable] struct {
	item T
	next []*node[T]
}

func (n *node[T]) clone() *node[T] {
	c := &node[T]{item: n.item}
	if len(n.next) > 0 {
		c.next = make([]*node[T], len(n.next))
		for i, sub := range n.next {
			c.next[i] = sub.clone()
		}
	}
	return c
}

// flatten returns leaf-first sequences; Tree.Flatten reverses them.
func (n *node[T]) flatten() [][]T {
	if len(n.next) == 0 {
		return [][]T{{n.item}}
	}
	var out [][]T
	for _, sub := range n.next {
		for _, seq := range sub.flatten() {
			out = append(out, append(seq, n.item))
		}
	}
	return out
}

// Tree is an expectation tree. The zero value is empty and ready to use.
type Tree[T comparable] struct {
	path  []int
	roots []*node[T]
}

// New returns an empty tree.
func New[T comparable]() *Tree[T] {
	return &Tree[T]{}
}

func (t *Tree[T]) tip() *[]*node[T] {
	level := &t.roots
	for _, idx := range t.path {
		level = &(*level)[idx].next
	}
	return level
}

// Advance descends into v, inserting it under the current tip if no equal
// item is there yet.
func (t *Tree[T]) Advance(v T) {
	level := t.tip()
	for idx, n := range *level {
		if n.item == v {
			t.path = append(t.path, idx)
			return
		}
	}
	*level = append(*level, &node[T]{item: v})
	t.path = append(t.path, len(*level)-1)
}

// Reset discards everything recorded so far.
func (t *Tree[T]) Reset() {
	t.path = nil
	t.roots = nil
}

// RetractOne moves the path up by one item.
func (t *Tree[T]) RetractOne() {
	invariant.Precondition(len(t.path) > 0, "retract on empty expectation path")
	t.path = t.path[:len(t.path)-1]
}

// RetractPath truncates the path to n items.
func (t *Tree[T]) RetractPath(n int) {
	invariant.InRange(n, 0, len(t.path), "expectation path length")
	t.path = t.path[:n]
}

// PathLen returns the current path length.
func (t *Tree[T]) PathLen() int {
	return len(t.path)
}

// Last returns the item at the tip of the path.
func (t *Tree[T]) Last() (T, bool) {
	var (
		item  T
		found bool
	)
	level := t.roots
	for _, idx := range t.path {
		item, found = level[idx].item, true
		level = level[idx].next
	}
	return item, found
}

// Empty reports whether nothing was ever recorded.
func (t *Tree[T]) Empty() bool {
	return len(t.roots) == 0
}

// Clone returns a deep copy.
func (t *Tree[T]) Clone() *Tree[T] {
	c := &Tree[T]{path: append([]int(nil), t.path...)}
	if len(t.roots) > 0 {
		c.roots = make([]*node[T], len(t.roots))
		for i, n := range t.roots {
			c.roots[i] = n.clone()
		}
	}
	return c
}

// Flatten returns one root-to-leaf sequence per leaf, in insertion order.
func (t *Tree[T]) Flatten() [][]T {
	var out [][]T
	for _, root := range t.roots {
		for _, seq := range root.flatten() {
			for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
				seq[i], seq[j] = seq[j], seq[i]
			}
			out = append(out, seq)
		}
	}
	return out
}
