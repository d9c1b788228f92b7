package demo

import (
	"sync"

	"github.com/opal-lang/interact/runtime/deser"
	"github.com/opal-lang/interact/runtime/interact"
)

// Foo is a pair of numbers.
type Foo struct {
	A uint32
	B uint32
}

func (f *Foo) Desc() interact.StructDesc {
	return interact.StructDesc{Name: "Foo", Kind: interact.FieldsStruct, Fields: []string{"a", "b"}}
}

func (f *Foo) FieldByName(name string) interact.Access {
	switch name {
	case "a":
		return interact.Uint32(&f.A)
	case "b":
		return interact.Uint32(&f.B)
	}
	return nil
}

func (f *Foo) FieldByIdx(int) interact.Access { return nil }

func (f *Foo) Assign(t *deser.Tracker, probeOnly bool) error {
	return interact.DeserAssign(f, parseFoo, t, probeOnly)
}

func parseFoo(t *deser.Tracker) (Foo, error) {
	var f Foo
	err := deser.Struct(t, "Foo", []string{"a", "b"}, func(t *deser.Tracker, field string) (err error) {
		if field == "a" {
			f.A, err = deser.Uint32(t)
		} else {
			f.B, err = deser.Uint32(t)
		}
		return
	})
	return f, err
}

func fooAccess(f *Foo) interact.Access { return interact.Struct(f) }

// State is a small mixed-shape value.
type State struct {
	U    uint32
	Opt  *Foo
	Op2  *uint32
	Foo  Foo
	Test interact.Shared[*FooGuard]
	V    []uint32
	M    map[uint32]uint32
}

// FooGuard is a Foo behind a mutex.
type FooGuard struct {
	sync.Mutex
	Foo Foo
}

var stateFields = []string{"u", "opt", "op2", "foo", "test", "v", "m"}

func (s *State) Desc() interact.StructDesc {
	return interact.StructDesc{Name: "State", Kind: interact.FieldsStruct, Fields: stateFields}
}

func (s *State) FieldByName(name string) interact.Access {
	switch name {
	case "u":
		return interact.Uint32(&s.U)
	case "opt":
		return interact.Option(&s.Opt, fooAccess)
	case "op2":
		return interact.Option(&s.Op2, interact.Uint32)
	case "foo":
		return interact.Struct(&s.Foo)
	case "test":
		return interact.SharedAccess(s.Test, func(g **FooGuard) interact.Access {
			return interact.Mutex(&(*g).Mutex, interact.Struct(&(*g).Foo))
		})
	case "v":
		return interact.Slice(&s.V, interact.Uint32)
	case "m":
		return interact.Map(&s.M, deser.Uint32, interact.Uint32, interact.Uint32)
	}
	return nil
}

func (s *State) FieldByIdx(int) interact.Access { return nil }

// NewState returns the fixed State value.
func NewState() *State {
	return &State{
		U:    10,
		Opt:  &Foo{A: 10, B: 100},
		Foo:  Foo{A: 2, B: 4},
		Test: interact.NewShared(&FooGuard{Foo: Foo{A: 10, B: 100}}),
		V:    []uint32{1, 2, 3},
		M:    map[uint32]uint32{3: 4, 7: 8},
	}
}

// NewWorker returns an actor owning a Foo. Every access to it is served by
// the actor's goroutine.
func NewWorker(f Foo) *interact.Actor {
	return interact.NewActor(fooAccess(&f))
}
