// Package assist accumulates completion hints for a sequence of items.
package assist

// NextOptions lists the items that may follow the valid and pending ones.
// When Avail is false there are no options.
type NextOptions[T any] struct {
	Avail bool
	Pos   int
	Items []T
}

// Avail builds available options at position pos relative to the valid count.
func Avail[T any](pos int, items []T) NextOptions[T] {
	return NextOptions[T]{Avail: true, Pos: pos, Items: items}
}

// IntoPosition resolves the options against a valid count.
func (n NextOptions[T]) IntoPosition(valid int) (int, []T) {
	if !n.Avail {
		return 0, nil
	}
	return valid + n.Pos, n.Items
}

// Assist describes how much of an input is valid and what could come next.
type Assist[T any] struct {
	// Valid is the count of leading items that are known good.
	Valid int
	// Pending items follow the valid ones and become valid once more
	// input arrives.
	Pending int
	// PendingSpecial marks the last items of Pending for highlighting.
	PendingSpecial int
	Next           NextOptions[T]
}

// Pend extends the pending run by count.
func (a *Assist[T]) Pend(count int) {
	a.Pending += count
}

// PendOne extends the pending run by one.
func (a *Assist[T]) PendOne() {
	a.Pend(1)
}

// HasPending reports whether any item is pending.
func (a *Assist[T]) HasPending() bool {
	return a.Pending > 0
}

// CommitPending turns the pending items into valid ones.
func (a *Assist[T]) CommitPending() {
	a.Valid += a.Pending
	a.Pending = 0
	a.PendingSpecial = 0
}

// SetPendingSpecial sets how many trailing pending items are special.
func (a *Assist[T]) SetPendingSpecial(n int) {
	a.PendingSpecial = n
}

// SetNextOptions replaces the next options.
func (a *Assist[T]) SetNextOptions(n NextOptions[T]) {
	a.Next = n
}

// WithNextOptions returns a copy with the next options replaced.
func (a Assist[T]) WithNextOptions(n NextOptions[T]) Assist[T] {
	a.Next = n
	return a
}

// WithValid returns a copy whose valid count is raised by n.
func (a Assist[T]) WithValid(n int) Assist[T] {
	a.Valid += n
	return a
}

// Dismantle returns the parts of the assist.
func (a Assist[T]) Dismantle() (valid, pending, pendingSpecial int, next NextOptions[T]) {
	return a.Valid, a.Pending, a.PendingSpecial, a.Next
}
