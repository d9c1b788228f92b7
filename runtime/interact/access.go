// Package interact exposes live Go values to path expressions.
//
// A value takes part by implementing Access, usually through one of the
// adapters in this package (Uint32, Struct, Map, Mutex, ...). The Climber
// walks an expression such as `state.m[3]` or `complex.add((3))` over those
// values, and the Reflector renders whatever the walk ends on.
//
// Both views of a value are exposed. ImmutAccess is always available;
// MutAccess may report the value as immutable. A read-only walk that reaches
// an assignment or a mutating call fails with NeedMutPath, and the caller
// retries the whole walk in Mut mode.
package interact

import (
	"errors"

	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/runtime/deser"
)

// Mode selects which view of a value the climber works with.
type Mode int

const (
	Immut Mode = iota
	Mut
)

func (m Mode) String() string {
	if m == Mut {
		return "mut"
	}
	return "immut"
}

// Access is implemented by every value reachable from a root.
type Access interface {
	ImmutAccess() ImmutAccess
	MutAccess() MutAccess
}

// ImmutAccess describes the read-only view. Exactly one of Direct and
// Indirect is set.
type ImmutAccess struct {
	Direct    Direct
	Indirect  Indirect
	Functions []Function
}

// MutAccess describes the writable view. When neither Direct nor Indirect is
// set the value cannot be modified from an expression.
type MutAccess struct {
	Direct    Direct
	Indirect  Indirect
	Functions []Function
}

// Immutable reports whether the value refuses mutable access.
func (m MutAccess) Immutable() bool {
	return m.Direct == nil && m.Indirect == nil
}

// Direct is implemented by values the current goroutine may touch.
type Direct interface {
	Reflect(r *Reflector) *nodetree.Node

	// Climb consumes the part of the expression that addresses something
	// inside the value. It returns (nil, nil) when the remaining tokens do not
	// apply to it.
	Climb(c *Climber, mode Mode) (*nodetree.Node, error)
}

// Indirect is implemented by values owned by another goroutine. The callback
// may run on any goroutine, at any later time.
type Indirect interface {
	Indirect(fn func(Access))
	IndirectMut(fn func(Access))
}

// Function names a callable method and its argument names.
type Function struct {
	Name string
	Args []string
}

// RetCall receives the return value of a method call together with the
// climber that should continue the walk into it.
type RetCall func(ret Access, c *Climber)

// Caller is implemented by values that expose Functions.
type Caller interface {
	Call(name string, mode Mode, c *Climber, ret RetCall) error
}

// Assigner is implemented by values that can be replaced from an expression.
// When probeOnly is set the value is parsed but not stored.
type Assigner interface {
	Assign(t *deser.Tracker, probeOnly bool) error
}

// DeserAssign parses a T and stores it in dst unless probing.
func DeserAssign[T any](dst *T, parse deser.Func[T], t *deser.Tracker, probeOnly bool) error {
	v, err := parse(t)
	if err != nil {
		return &AssignError{Kind: AssignDeser, Deser: asDeserError(err)}
	}
	if !probeOnly {
		*dst = v
	}
	return nil
}

// CallWith is the glue between a method and the climber. It parses the
// argument tuple, refuses mutating methods in Immut mode, and unless probing
// invokes the method and hands its result to ret.
func CallWith[A any](c *Climber, mode Mode, needsMut bool, parseArgs deser.Func[A], invoke func(A) Access, ret RetCall) error {
	args, err := parseArgs(c.Tracker())
	if err != nil {
		return &CallError{Kind: CallDeser, Deser: asDeserError(err)}
	}
	if needsMut && mode == Immut {
		return &CallError{Kind: NeedMutable}
	}
	if c.ProbeOnly {
		return nil
	}
	ret(invoke(args), c)
	return nil
}

func asDeserError(err error) deser.Error {
	var de deser.Error
	if errors.As(err, &de) {
		return de
	}
	return deser.Unbuildable
}

func callOf(v any, name string, mode Mode, c *Climber, ret RetCall) error {
	if caller, ok := v.(Caller); ok {
		return caller.Call(name, mode, c, ret)
	}
	return &CallError{Kind: NoSuchFunction}
}

func assignOf(v any, t *deser.Tracker, probeOnly bool) error {
	if assigner, ok := v.(Assigner); ok {
		return assigner.Assign(t, probeOnly)
	}
	return &AssignError{Kind: Unbuildable}
}

// functionsOf returns the functions a domain type lists through an optional
// Functions method.
func functionsOf(v any) []Function {
	if f, ok := v.(interface{ Functions() []Function }); ok {
		return f.Functions()
	}
	return nil
}
