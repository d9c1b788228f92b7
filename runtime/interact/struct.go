package interact

import (
	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/runtime/deser"
)

// StructKind is the shape of a struct or enum variant.
type StructKind int

const (
	UnitStruct StructKind = iota
	TupleStruct
	FieldsStruct
)

// StructDesc describes the shape of a struct.
type StructDesc struct {
	Name   string
	Kind   StructKind
	Len    int      // TupleStruct
	Fields []string // FieldsStruct
}

// ReflectStruct is implemented by domain structs, normally on a pointer
// receiver so that the pointer serves as the struct's identity.
//
// A struct may additionally implement `Functions() []Function` together with
// Caller, and Assigner.
type ReflectStruct interface {
	Desc() StructDesc
	FieldByName(name string) Access
	FieldByIdx(idx int) Access
}

// EnumDesc describes an enum type.
type EnumDesc struct {
	Name     string
	Variants []string
}

// ReflectEnum is implemented by domain sum types. Variant returns the active
// variant as a struct whose Desc().Name is the variant name.
type ReflectEnum interface {
	EnumDesc() EnumDesc
	Variant() ReflectStruct
}

type structAccess struct {
	s ReflectStruct
}

// Struct adapts a ReflectStruct.
func Struct(s ReflectStruct) Access {
	return &structAccess{s: s}
}

func (a *structAccess) ImmutAccess() ImmutAccess {
	return ImmutAccess{Direct: a, Functions: functionsOf(a.s)}
}

func (a *structAccess) MutAccess() MutAccess {
	return MutAccess{Direct: a, Functions: functionsOf(a.s)}
}

func (a *structAccess) Reflect(r *Reflector) *nodetree.Node {
	return r.ReflectStruct(a.s.Desc(), a.s, false)
}

func (a *structAccess) Climb(c *Climber, mode Mode) (*nodetree.Node, error) {
	return c.FieldAccess(a.s, mode)
}

func (a *structAccess) Call(name string, mode Mode, c *Climber, ret RetCall) error {
	return callOf(a.s, name, mode, c, ret)
}

func (a *structAccess) Assign(t *deser.Tracker, probeOnly bool) error {
	return assignOf(a.s, t, probeOnly)
}

type enumAccess struct {
	e ReflectEnum
}

// Enum adapts a ReflectEnum. The active variant renders like a struct of
// that name.
func Enum(e ReflectEnum) Access {
	return &enumAccess{e: e}
}

func (a *enumAccess) ImmutAccess() ImmutAccess {
	return ImmutAccess{Direct: a, Functions: functionsOf(a.e)}
}

func (a *enumAccess) MutAccess() MutAccess {
	return MutAccess{Direct: a, Functions: functionsOf(a.e)}
}

func (a *enumAccess) Reflect(r *Reflector) *nodetree.Node {
	v := a.e.Variant()
	return r.ReflectStruct(v.Desc(), v, false)
}

func (a *enumAccess) Climb(c *Climber, mode Mode) (*nodetree.Node, error) {
	return c.VariantAccess(a.e, mode)
}

func (a *enumAccess) Call(name string, mode Mode, c *Climber, ret RetCall) error {
	return callOf(a.e, name, mode, c, ret)
}

func (a *enumAccess) Assign(t *deser.Tracker, probeOnly bool) error {
	return assignOf(a.e, t, probeOnly)
}

// tuple is an anonymous positional struct.
type tuple struct {
	fields []Access
}

func (t *tuple) Desc() StructDesc {
	return StructDesc{Kind: TupleStruct, Len: len(t.fields)}
}

func (t *tuple) FieldByName(string) Access { return nil }

func (t *tuple) FieldByIdx(idx int) Access { return t.fields[idx] }

// Tuple groups values into an anonymous tuple addressed as .0, .1, ...
func Tuple(fields ...Access) Access {
	return Struct(&tuple{fields: fields})
}

type unit struct{}

func (unit) ImmutAccess() ImmutAccess { return ImmutAccess{Direct: unit{}} }

func (unit) MutAccess() MutAccess { return MutAccess{Direct: unit{}} }

func (unit) Reflect(*Reflector) *nodetree.Node { return nodetree.NewLeaf("()") }

func (unit) Climb(*Climber, Mode) (*nodetree.Node, error) { return nil, nil }

// Unit is the empty value, returned by methods that have no result.
func Unit() Access {
	return unit{}
}
