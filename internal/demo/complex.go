package demo

import (
	"sync"
	"time"

	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/runtime/deser"
	"github.com/opal-lang/interact/runtime/interact"
)

// UnnamedFields is a positional struct.
type UnnamedFields struct {
	S string
	N uint32
}

func (u *UnnamedFields) Desc() interact.StructDesc {
	return interact.StructDesc{Name: "UnnamedFields", Kind: interact.TupleStruct, Len: 2}
}

func (u *UnnamedFields) FieldByName(string) interact.Access { return nil }

func (u *UnnamedFields) FieldByIdx(idx int) interact.Access {
	if idx == 0 {
		return interact.String(&u.S)
	}
	return interact.Uint32(&u.N)
}

// UnitStruct has no fields.
type UnitStruct struct{}

func (*UnitStruct) Desc() interact.StructDesc {
	return interact.StructDesc{Name: "UnitStruct", Kind: interact.UnitStruct}
}

func (*UnitStruct) FieldByName(string) interact.Access { return nil }

func (*UnitStruct) FieldByIdx(int) interact.Access { return nil }

// RefsAndLocks holds shared handles, some of them clones of each other.
type RefsAndLocks struct {
	ArcA interact.Shared[uint32]
	ArcB interact.Shared[Key]
	ArcC interact.Shared[Key]
	ArcD interact.Shared[uint32]
	ArcE interact.Shared[uint32]
	ArcF interact.Shared[uint32]
}

func (r *RefsAndLocks) Desc() interact.StructDesc {
	return interact.StructDesc{
		Name:   "RefsAndLocks",
		Kind:   interact.FieldsStruct,
		Fields: []string{"arc_a", "arc_b", "arc_c", "arc_d", "arc_e", "arc_f"},
	}
}

func (r *RefsAndLocks) FieldByName(name string) interact.Access {
	keyAccess := func(k *Key) interact.Access { return interact.Struct(k) }
	switch name {
	case "arc_a":
		return interact.SharedAccess(r.ArcA, interact.Uint32)
	case "arc_b":
		return interact.SharedAccess(r.ArcB, keyAccess)
	case "arc_c":
		return interact.SharedAccess(r.ArcC, keyAccess)
	case "arc_d":
		return interact.SharedAccess(r.ArcD, interact.Uint32)
	case "arc_e":
		return interact.SharedAccess(r.ArcE, interact.Uint32)
	case "arc_f":
		return interact.SharedAccess(r.ArcF, interact.Uint32)
	}
	return nil
}

func (r *RefsAndLocks) FieldByIdx(int) interact.Access { return nil }

// PseudoMutex is a lock that is never contended: both shared and exclusive
// acquisition always succeed.
type PseudoMutex[T any] struct {
	value T
	elem  func(*T) interact.Access
}

// NewPseudoMutex returns a PseudoMutex holding v, adapted by elem.
func NewPseudoMutex[T any](v T, elem func(*T) interact.Access) *PseudoMutex[T] {
	return &PseudoMutex[T]{value: v, elem: elem}
}

func (m *PseudoMutex[T]) TryAcquire(interact.Mode) (func(), error) {
	return func() {}, nil
}

func (m *PseudoMutex[T]) Value() interact.Access { return m.elem(&m.value) }

// Guarded is a u32 behind its own mutex, the way it is kept when shared.
type Guarded struct {
	sync.Mutex
	V uint32
}

// VecItem is one element of Complex.Vec.
type VecItem struct {
	N uint32
	E EnumExample
}

// Nested is the first element of Complex.Tuple.
type Nested struct {
	N    uint32
	E    EnumExample
	Pair [2]uint8
}

// Complex exercises containers, enums, tuples, locks and methods.
type Complex struct {
	Simple        map[uint64]uint32
	ComplexKey    map[Key]uint32
	Map           map[string]uint32
	StructUnnamed UnnamedFields
	StructUnit    UnitStruct
	EnumUnit      EnumExample
	EnumUnnamed   EnumExample
	EnumNamed     EnumExample
	Boxed         *EnumExample
	Tuple         Nested
	TupleI        int32
	Tuple1        uint32
	Vec           []VecItem

	BehindMutexLock   sync.Mutex
	BehindMutex       uint32
	BehindPseudoMutex *PseudoMutex[uint64]
	BehindArcMutex    interact.Shared[*Guarded]

	Instant time.Time
	Refs    RefsAndLocks
}

var complexFields = []string{
	"simple", "complex_key", "map", "struct_unnamed", "struct_unit",
	"enum_unit", "enum_unnamed", "enum_named", "boxed", "tuple", "tuple_1",
	"vec", "behind_mutex", "behind_pseudo_mutex", "behind_arc_mutex",
	"instant", "refs",
}

func (c *Complex) Desc() interact.StructDesc {
	return interact.StructDesc{Name: "Complex", Kind: interact.FieldsStruct, Fields: complexFields}
}

func (c *Complex) FieldByName(name string) interact.Access {
	switch name {
	case "simple":
		return interact.Map(&c.Simple, deser.Uint64, interact.Uint64, interact.Uint32)
	case "complex_key":
		return interact.MapBy(&c.ComplexKey, CompareKeys, ParseKey,
			func(k *Key) interact.Access { return interact.Struct(k) }, interact.Uint32)
	case "map":
		return interact.Map(&c.Map, deser.String, interact.String, interact.Uint32)
	case "struct_unnamed":
		return interact.Struct(&c.StructUnnamed)
	case "struct_unit":
		return interact.Struct(&c.StructUnit)
	case "enum_unit":
		return interact.Enum(&c.EnumUnit)
	case "enum_unnamed":
		return interact.Enum(&c.EnumUnnamed)
	case "enum_named":
		return interact.Enum(&c.EnumNamed)
	case "boxed":
		return interact.Enum(c.Boxed)
	case "tuple":
		t := &c.Tuple
		return interact.Tuple(
			interact.Tuple(
				interact.Uint32(&t.N),
				interact.Enum(&t.E),
				interact.Tuple(interact.Uint8(&t.Pair[0]), interact.Uint8(&t.Pair[1])),
			),
			interact.Int32(&c.TupleI),
		)
	case "tuple_1":
		return interact.Tuple(interact.Uint32(&c.Tuple1))
	case "vec":
		return interact.Slice(&c.Vec, func(it *VecItem) interact.Access {
			return interact.Tuple(interact.Uint32(&it.N), interact.Enum(&it.E))
		})
	case "behind_mutex":
		return interact.Mutex(&c.BehindMutexLock, interact.Uint32(&c.BehindMutex))
	case "behind_pseudo_mutex":
		return interact.Guarded(c.BehindPseudoMutex, nodetree.Locked)
	case "behind_arc_mutex":
		return interact.SharedAccess(c.BehindArcMutex, func(g **Guarded) interact.Access {
			return interact.Mutex(&(*g).Mutex, interact.Uint32(&(*g).V))
		})
	case "instant":
		return interact.Elapsed(&c.Instant)
	case "refs":
		return interact.Struct(&c.Refs)
	}
	return nil
}

func (c *Complex) FieldByIdx(int) interact.Access { return nil }

func (c *Complex) Functions() []interact.Function {
	return []interact.Function{
		{Name: "check"},
		{Name: "add", Args: []string{"a"}},
	}
}

func (c *Complex) Call(name string, mode interact.Mode, cl *interact.Climber, ret interact.RetCall) error {
	switch name {
	case "check":
		return interact.CallWith(cl, mode, false, deser.Unit, func(struct{}) interact.Access {
			ok := c.Check()
			return interact.Bool(&ok)
		}, ret)
	case "add":
		return interact.CallWith(cl, mode, true, deser.Tuple1(deser.Uint32), func(a uint32) interact.Access {
			c.Add(a)
			return interact.Unit()
		}, ret)
	}
	return &interact.CallError{Kind: interact.NoSuchFunction}
}

// Check reports whether the first tuple number equals the single-element one.
func (c *Complex) Check() bool {
	return c.Tuple.N == c.Tuple1
}

// Add increases the number of the first vector element.
func (c *Complex) Add(a uint32) {
	c.Vec[0].N += a
}
