package interact

import (
	"sync"

	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/runtime/deser"
)

// guarded adapts a Guard. Climbing goes through Climber.GuardedAccess in
// either mode, so a read-only path may still modify the guarded value.
type guarded struct {
	g Guard

	// marker renders in place of the value when it cannot be acquired.
	marker nodetree.Kind
}

// Guarded adapts a value reachable only through g. marker renders in place
// of the value while g cannot be acquired.
func Guarded(g Guard, marker nodetree.Kind) Access {
	return &guarded{g: g, marker: marker}
}

func (a *guarded) ImmutAccess() ImmutAccess { return ImmutAccess{Direct: a} }

func (a *guarded) MutAccess() MutAccess { return MutAccess{Direct: a} }

func (a *guarded) Reflect(r *Reflector) *nodetree.Node {
	release, err := a.g.TryAcquire(Immut)
	if err != nil {
		return nodetree.NewMarker(a.marker)
	}
	defer release()
	return r.Reflect(a.g.Value())
}

func (a *guarded) Climb(c *Climber, _ Mode) (*nodetree.Node, error) {
	return c.GuardedAccess(a.g)
}

// Assign replaces the guarded value while holding the lock exclusively.
func (a *guarded) Assign(t *deser.Tracker, probeOnly bool) error {
	release, err := a.g.TryAcquire(Mut)
	if err != nil {
		return err
	}
	defer release()
	return assignOf(a.g.Value(), t, probeOnly)
}

type mutexGuard struct {
	mu    *sync.Mutex
	inner Access
}

func (g *mutexGuard) TryAcquire(Mode) (func(), error) {
	if !g.mu.TryLock() {
		return nil, NewClimbError(Locked, nil)
	}
	return g.mu.Unlock, nil
}

func (g *mutexGuard) Value() Access { return g.inner }

// Mutex adapts a value protected by mu. The lock is only ever tried; a
// held lock renders as a locked marker and fails climbs with Locked.
func Mutex(mu *sync.Mutex, inner Access) Access {
	return &guarded{g: &mutexGuard{mu: mu, inner: inner}, marker: nodetree.Locked}
}

type rwMutexGuard struct {
	mu    *sync.RWMutex
	inner Access
}

func (g *rwMutexGuard) TryAcquire(mode Mode) (func(), error) {
	if mode == Immut {
		if !g.mu.TryRLock() {
			return nil, NewClimbError(Locked, nil)
		}
		return g.mu.RUnlock, nil
	}
	if !g.mu.TryLock() {
		return nil, NewClimbError(Locked, nil)
	}
	return g.mu.Unlock, nil
}

func (g *rwMutexGuard) Value() Access { return g.inner }

// RWMutex adapts a value protected by mu. Reads take the read lock and
// writes the write lock, both without waiting.
func RWMutex(mu *sync.RWMutex, inner Access) Access {
	return &guarded{g: &rwMutexGuard{mu: mu, inner: inner}, marker: nodetree.Locked}
}

// Cell holds a value with dynamically checked borrows: any number of shared
// borrows or a single exclusive one. Borrowing never waits.
type Cell[T any] struct {
	mu       sync.Mutex
	shared   int
	borrowed bool
	value    T
}

// NewCell returns a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// TryBorrow takes a shared borrow.
func (c *Cell[T]) TryBorrow() (*T, func(), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.borrowed {
		return nil, nil, false
	}
	c.shared++
	return &c.value, c.release, true
}

// TryBorrowMut takes the exclusive borrow.
func (c *Cell[T]) TryBorrowMut() (*T, func(), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.borrowed || c.shared > 0 {
		return nil, nil, false
	}
	c.borrowed = true
	return &c.value, c.release, true
}

func (c *Cell[T]) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.borrowed {
		c.borrowed = false
		return
	}
	c.shared--
}

type cellGuard[T any] struct {
	cell *Cell[T]
	elem func(*T) Access
}

func (g *cellGuard[T]) TryAcquire(mode Mode) (func(), error) {
	if mode == Immut {
		if _, release, ok := g.cell.TryBorrow(); ok {
			return release, nil
		}
		return nil, NewClimbError(Borrowed, nil)
	}
	if _, release, ok := g.cell.TryBorrowMut(); ok {
		return release, nil
	}
	return nil, NewClimbError(BorrowedMut, nil)
}

func (g *cellGuard[T]) Value() Access { return g.elem(&g.cell.value) }

// CellAccess adapts a Cell whose content is adapted by elem. A cell that is
// exclusively borrowed renders as a borrowed-mut marker.
func CellAccess[T any](cell *Cell[T], elem func(*T) Access) Access {
	return &guarded{g: &cellGuard[T]{cell: cell, elem: elem}, marker: nodetree.BorrowedMut}
}
