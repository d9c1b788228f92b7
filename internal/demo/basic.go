// Package demo builds the object graphs the interact tool is exercised on:
// scalars of every kind, enums, maps keyed by structs, locks, shared cycles
// and an actor-owned value.
package demo

import (
	"cmp"

	"github.com/opal-lang/interact/runtime/deser"
	"github.com/opal-lang/interact/runtime/interact"
)

// Basic holds one field of every scalar kind.
type Basic struct {
	US         uint
	Is         int
	U64        uint64
	U32        uint32
	U16        uint16
	U8         uint8
	Bo         bool
	St         string
	Ch         rune
	I64        int64
	I32        int32
	I16        int16
	I8         int8
	Arr        []uint8
	OptionNone *uint8
	OptionSome *uint8
	ResultOk   Result
	ResultErr  Result
}

var basicFields = []string{
	"u_s", "is", "u_64", "u_32", "u_16", "u_8", "bo", "st", "ch",
	"i_64", "i_32", "i_16", "i_8", "arr", "option_none", "option_some",
	"result_ok", "result_err",
}

func (b *Basic) Desc() interact.StructDesc {
	return interact.StructDesc{Name: "Basic", Kind: interact.FieldsStruct, Fields: basicFields}
}

func (b *Basic) FieldByName(name string) interact.Access {
	switch name {
	case "u_s":
		return interact.Uint(&b.US)
	case "is":
		return interact.Int(&b.Is)
	case "u_64":
		return interact.Uint64(&b.U64)
	case "u_32":
		return interact.Uint32(&b.U32)
	case "u_16":
		return interact.Uint16(&b.U16)
	case "u_8":
		return interact.Uint8(&b.U8)
	case "bo":
		return interact.Bool(&b.Bo)
	case "st":
		return interact.String(&b.St)
	case "ch":
		return interact.Char(&b.Ch)
	case "i_64":
		return interact.Int64(&b.I64)
	case "i_32":
		return interact.Int32(&b.I32)
	case "i_16":
		return interact.Int16(&b.I16)
	case "i_8":
		return interact.Int8(&b.I8)
	case "arr":
		return interact.Slice(&b.Arr, interact.Uint8)
	case "option_none":
		return interact.Option(&b.OptionNone, interact.Uint8)
	case "option_some":
		return interact.Option(&b.OptionSome, interact.Uint8)
	case "result_ok":
		return interact.Enum(&b.ResultOk)
	case "result_err":
		return interact.Enum(&b.ResultErr)
	}
	return nil
}

func (b *Basic) FieldByIdx(int) interact.Access { return nil }

// Result is either Ok(uint8) or Err(uint32).
type Result struct {
	IsErr bool
	Ok    uint8
	Err   uint32
}

type resultVariant struct {
	r *Result
}

func (v resultVariant) Desc() interact.StructDesc {
	if v.r.IsErr {
		return interact.StructDesc{Name: "Err", Kind: interact.TupleStruct, Len: 1}
	}
	return interact.StructDesc{Name: "Ok", Kind: interact.TupleStruct, Len: 1}
}

func (v resultVariant) FieldByName(string) interact.Access { return nil }

func (v resultVariant) FieldByIdx(int) interact.Access {
	if v.r.IsErr {
		return interact.Uint32(&v.r.Err)
	}
	return interact.Uint8(&v.r.Ok)
}

func (r *Result) EnumDesc() interact.EnumDesc {
	return interact.EnumDesc{Name: "Result", Variants: []string{"Ok", "Err"}}
}

func (r *Result) Variant() interact.ReflectStruct { return resultVariant{r: r} }

func (r *Result) Assign(t *deser.Tracker, probeOnly bool) error {
	return interact.DeserAssign(r, parseResult, t, probeOnly)
}

func parseResult(t *deser.Tracker) (Result, error) {
	var r Result
	err := deser.Variant(t, []string{"Ok", "Err"}, func(t *deser.Tracker, name string) error {
		if name == "Err" {
			r.IsErr = true
			return deser.TupleStruct(t, "", 1, func(t *deser.Tracker, _ int) (err error) {
				r.Err, err = deser.Uint32(t)
				return
			})
		}
		return deser.TupleStruct(t, "", 1, func(t *deser.Tracker, _ int) (err error) {
			r.Ok, err = deser.Uint8(t)
			return
		})
	})
	return r, err
}

// Key is a struct used as a map key.
type Key struct {
	FieldA uint64
	FieldB uint32
}

func (k *Key) Desc() interact.StructDesc {
	return interact.StructDesc{Name: "Key", Kind: interact.FieldsStruct, Fields: []string{"field_a", "field_b"}}
}

func (k *Key) FieldByName(name string) interact.Access {
	switch name {
	case "field_a":
		return interact.Uint64(&k.FieldA)
	case "field_b":
		return interact.Uint32(&k.FieldB)
	}
	return nil
}

func (k *Key) FieldByIdx(int) interact.Access { return nil }

func (k *Key) Assign(t *deser.Tracker, probeOnly bool) error {
	return interact.DeserAssign(k, ParseKey, t, probeOnly)
}

// ParseKey parses a literal such as Key { field_a: 1, field_b: 2 }.
func ParseKey(t *deser.Tracker) (Key, error) {
	var k Key
	err := deser.Struct(t, "Key", []string{"field_a", "field_b"}, func(t *deser.Tracker, field string) (err error) {
		if field == "field_a" {
			k.FieldA, err = deser.Uint64(t)
		} else {
			k.FieldB, err = deser.Uint32(t)
		}
		return
	})
	return k, err
}

// CompareKeys orders keys field by field.
func CompareKeys(a, b Key) int {
	return cmp.Or(cmp.Compare(a.FieldA, b.FieldA), cmp.Compare(a.FieldB, b.FieldB))
}

// EnumKind selects the active variant of an EnumExample.
type EnumKind int

const (
	VarUnit EnumKind = iota
	VarUnnamed
	VarNamed
)

var enumVariants = []string{"VarUnit", "VarUnnamed", "VarNamed"}

// EnumExample is VarUnit, VarUnnamed(uint8, uint32) or VarNamed { a: uint8, b: uint16 }.
type EnumExample struct {
	Kind EnumKind

	U0 uint8
	U1 uint32

	A uint8
	B uint16
}

type enumVariant struct {
	e *EnumExample
}

func (v enumVariant) Desc() interact.StructDesc {
	switch v.e.Kind {
	case VarUnnamed:
		return interact.StructDesc{Name: "VarUnnamed", Kind: interact.TupleStruct, Len: 2}
	case VarNamed:
		return interact.StructDesc{Name: "VarNamed", Kind: interact.FieldsStruct, Fields: []string{"a", "b"}}
	}
	return interact.StructDesc{Name: "VarUnit", Kind: interact.UnitStruct}
}

func (v enumVariant) FieldByName(name string) interact.Access {
	switch name {
	case "a":
		return interact.Uint8(&v.e.A)
	case "b":
		return interact.Uint16(&v.e.B)
	}
	return nil
}

func (v enumVariant) FieldByIdx(idx int) interact.Access {
	if idx == 0 {
		return interact.Uint8(&v.e.U0)
	}
	return interact.Uint32(&v.e.U1)
}

func (e *EnumExample) EnumDesc() interact.EnumDesc {
	return interact.EnumDesc{Name: "EnumExample", Variants: enumVariants}
}

func (e *EnumExample) Variant() interact.ReflectStruct { return enumVariant{e: e} }

func (e *EnumExample) Assign(t *deser.Tracker, probeOnly bool) error {
	return interact.DeserAssign(e, parseEnumExample, t, probeOnly)
}

func parseEnumExample(t *deser.Tracker) (EnumExample, error) {
	var e EnumExample
	err := deser.Variant(t, enumVariants, func(t *deser.Tracker, name string) error {
		switch name {
		case "VarUnnamed":
			e.Kind = VarUnnamed
			return deser.TupleStruct(t, "", 2, func(t *deser.Tracker, idx int) (err error) {
				if idx == 0 {
					e.U0, err = deser.Uint8(t)
				} else {
					e.U1, err = deser.Uint32(t)
				}
				return
			})
		case "VarNamed":
			e.Kind = VarNamed
			return deser.Struct(t, "", []string{"a", "b"}, func(t *deser.Tracker, field string) (err error) {
				if field == "a" {
					e.A, err = deser.Uint8(t)
				} else {
					e.B, err = deser.Uint16(t)
				}
				return
			})
		}
		e.Kind = VarUnit
		return nil
	})
	return e, err
}
