package interact

import (
	"sync/atomic"

	"github.com/opal-lang/interact/runtime/deser"
)

type sharedBox[T any] struct {
	refs  atomic.Int64
	value T
}

// Shared is a reference-counted handle to a value owned jointly by every
// handle cloned from it.
type Shared[T any] struct {
	box *sharedBox[T]
}

// NewShared returns the first handle to v.
func NewShared[T any](v T) Shared[T] {
	b := &sharedBox[T]{value: v}
	b.refs.Store(1)
	return Shared[T]{box: b}
}

// Clone returns another handle to the same value.
func (s Shared[T]) Clone() Shared[T] {
	s.box.refs.Add(1)
	return s
}

// Release drops this handle.
func (s Shared[T]) Release() {
	s.box.refs.Add(-1)
}

// Unique reports whether this is the only live handle.
func (s Shared[T]) Unique() bool {
	return s.box.refs.Load() == 1
}

// Get returns the shared value.
func (s Shared[T]) Get() *T {
	return &s.box.value
}

type sharedAccess[T any] struct {
	s    Shared[T]
	elem func(*T) Access
}

// SharedAccess adapts a Shared handle. The value may only be modified
// through a unique handle; otherwise its mutable view is immutable.
func SharedAccess[T any](s Shared[T], elem func(*T) Access) Access {
	return &sharedAccess[T]{s: s, elem: elem}
}

func (a *sharedAccess[T]) ImmutAccess() ImmutAccess {
	return a.elem(a.s.Get()).ImmutAccess()
}

func (a *sharedAccess[T]) MutAccess() MutAccess {
	if !a.s.Unique() {
		return MutAccess{}
	}
	return a.elem(a.s.Get()).MutAccess()
}

func (a *sharedAccess[T]) Call(name string, mode Mode, c *Climber, ret RetCall) error {
	return callOf(a.elem(a.s.Get()), name, mode, c, ret)
}

func (a *sharedAccess[T]) Assign(t *deser.Tracker, probeOnly bool) error {
	if !a.s.Unique() {
		return &AssignError{Kind: Immutable}
	}
	return assignOf(a.elem(a.s.Get()), t, probeOnly)
}
