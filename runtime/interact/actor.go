package interact

import (
	"sync"
)

// Actor owns a value on a dedicated goroutine. Expressions reach the value
// indirectly: each access is queued in the actor's mailbox and served in
// order. The mailbox is unbounded, so a request issued from inside the actor
// never blocks it.
type Actor struct {
	value Access

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closed  bool
	stopped chan struct{}
}

// NewActor starts an actor serving value.
func NewActor(value Access) *Actor {
	a := &Actor{value: value, stopped: make(chan struct{})}
	a.cond = sync.NewCond(&a.mu)
	go a.serve()
	return a
}

func (a *Actor) serve() {
	defer close(a.stopped)
	for {
		a.mu.Lock()
		for len(a.queue) == 0 && !a.closed {
			a.cond.Wait()
		}
		if len(a.queue) == 0 {
			a.mu.Unlock()
			return
		}
		fn := a.queue[0]
		a.queue[0] = nil
		a.queue = a.queue[1:]
		a.mu.Unlock()

		fn()
	}
}

// Do runs fn on the actor's goroutine. It returns false when the actor has
// been closed.
func (a *Actor) Do(fn func()) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	a.queue = append(a.queue, fn)
	a.cond.Signal()
	return true
}

// Close stops the actor once the queued requests have been served, and waits
// for it.
func (a *Actor) Close() {
	a.mu.Lock()
	a.closed = true
	a.cond.Signal()
	a.mu.Unlock()
	<-a.stopped
}

func (a *Actor) ImmutAccess() ImmutAccess { return ImmutAccess{Indirect: a} }

func (a *Actor) MutAccess() MutAccess { return MutAccess{Indirect: a} }

// Indirect queues fn. Once the actor is closed nothing else owns the value,
// so fn runs on the calling goroutine.
func (a *Actor) Indirect(fn func(Access)) {
	if !a.Do(func() { fn(a.value) }) {
		fn(a.value)
	}
}

func (a *Actor) IndirectMut(fn func(Access)) {
	a.Indirect(fn)
}
