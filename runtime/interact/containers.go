package interact

import (
	"cmp"
	"iter"
	"maps"
	"slices"

	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/runtime/deser"
)

var lenFunctions = []Function{{Name: "len"}}

// callLen answers the len() function shared by the collections.
func callLen(name string, mode Mode, c *Climber, ret RetCall, n func() int) error {
	if name != "len" {
		return &CallError{Kind: NoSuchFunction}
	}
	return CallWith(c, mode, false, deser.Unit, func(struct{}) Access {
		l := uint(n())
		return Uint(&l)
	}, ret)
}

type sliceAccess[T any] struct {
	s    *[]T
	elem func(*T) Access
}

// Slice adapts a slice whose elements are adapted by elem. Elements are
// addressed by index in brackets.
func Slice[T any](s *[]T, elem func(*T) Access) Access {
	return &sliceAccess[T]{s: s, elem: elem}
}

func (a *sliceAccess[T]) ImmutAccess() ImmutAccess {
	return ImmutAccess{Direct: a, Functions: lenFunctions}
}

func (a *sliceAccess[T]) MutAccess() MutAccess {
	return MutAccess{Direct: a, Functions: lenFunctions}
}

func (a *sliceAccess[T]) Reflect(r *Reflector) *nodetree.Node {
	return r.ReflectVec(a.s, "", len(*a.s), func(i int) Access {
		return a.elem(&(*a.s)[i])
	})
}

func (a *sliceAccess[T]) Climb(c *Climber, mode Mode) (*nodetree.Node, error) {
	return IndexAccess(c, mode, deser.Uint, func(i uint) (Access, bool) {
		if i >= uint(len(*a.s)) {
			return nil, false
		}
		return a.elem(&(*a.s)[i]), true
	})
}

func (a *sliceAccess[T]) Call(name string, mode Mode, c *Climber, ret RetCall) error {
	return callLen(name, mode, c, ret, func() int { return len(*a.s) })
}

type mapAccess[K comparable, V any] struct {
	m        *map[K]V
	compare  func(a, b K) int
	parseKey deser.Func[K]
	key      func(*K) Access
	value    func(*V) Access
}

// Map adapts a map. Entries render in key order and are addressed as
// m[key], the key being parsed by parseKey.
//
// Map values are not addressable, so a climb works on a copy of the entry.
// After a mutable climb that was not a probe the copy is stored back.
func Map[K cmp.Ordered, V any](m *map[K]V, parseKey deser.Func[K], key func(*K) Access, value func(*V) Access) Access {
	return MapBy(m, cmp.Compare[K], parseKey, key, value)
}

// MapBy is Map for keys without a natural order. Entries render in the order
// given by compare.
func MapBy[K comparable, V any](m *map[K]V, compare func(a, b K) int, parseKey deser.Func[K], key func(*K) Access, value func(*V) Access) Access {
	return &mapAccess[K, V]{m: m, compare: compare, parseKey: parseKey, key: key, value: value}
}

func (a *mapAccess[K, V]) ImmutAccess() ImmutAccess {
	return ImmutAccess{Direct: a, Functions: lenFunctions}
}

func (a *mapAccess[K, V]) MutAccess() MutAccess {
	return MutAccess{Direct: a, Functions: lenFunctions}
}

func (a *mapAccess[K, V]) entries() iter.Seq2[Access, Access] {
	return func(yield func(Access, Access) bool) {
		for _, k := range slices.SortedFunc(maps.Keys(*a.m), a.compare) {
			v := (*a.m)[k]
			if !yield(a.key(&k), a.value(&v)) {
				return
			}
		}
	}
}

func (a *mapAccess[K, V]) Reflect(r *Reflector) *nodetree.Node {
	return r.ReflectMap(a.m, "map", a.entries())
}

func (a *mapAccess[K, V]) Climb(c *Climber, mode Mode) (*nodetree.Node, error) {
	var (
		key   K
		entry V
		found bool
	)
	node, err := IndexAccess(c, mode, a.parseKey, func(k K) (Access, bool) {
		key = k
		entry, found = (*a.m)[k]
		return a.value(&entry), found
	})
	if found && mode == Mut && !c.ProbeOnly {
		(*a.m)[key] = entry
	}
	return node, err
}

func (a *mapAccess[K, V]) Call(name string, mode Mode, c *Climber, ret RetCall) error {
	return callLen(name, mode, c, ret, func() int { return len(*a.m) })
}

type setAccess[K cmp.Ordered] struct {
	s   *map[K]struct{}
	key func(*K) Access
}

// Set adapts a set kept as a map to empty structs. Members render in order.
func Set[K cmp.Ordered](s *map[K]struct{}, key func(*K) Access) Access {
	return &setAccess[K]{s: s, key: key}
}

func (a *setAccess[K]) ImmutAccess() ImmutAccess {
	return ImmutAccess{Direct: a, Functions: lenFunctions}
}

func (a *setAccess[K]) MutAccess() MutAccess {
	return MutAccess{Direct: a, Functions: lenFunctions}
}

func (a *setAccess[K]) Reflect(r *Reflector) *nodetree.Node {
	return r.ReflectSet(a.s, "set", func(yield func(Access) bool) {
		for _, k := range slices.Sorted(maps.Keys(*a.s)) {
			if !yield(a.key(&k)) {
				return
			}
		}
	})
}

func (a *setAccess[K]) Climb(*Climber, Mode) (*nodetree.Node, error) {
	return nil, nil
}

func (a *setAccess[K]) Call(name string, mode Mode, c *Climber, ret RetCall) error {
	return callLen(name, mode, c, ret, func() int { return len(*a.s) })
}

// optionVariant is the active variant of an Option.
type optionVariant[T any] struct {
	p    **T
	elem func(*T) Access
}

func (v *optionVariant[T]) Desc() StructDesc {
	if *v.p == nil {
		return StructDesc{Name: "None", Kind: UnitStruct}
	}
	return StructDesc{Name: "Some", Kind: TupleStruct, Len: 1}
}

func (v *optionVariant[T]) FieldByName(string) Access { return nil }

func (v *optionVariant[T]) FieldByIdx(int) Access { return v.elem(*v.p) }

type option[T any] struct {
	variant *optionVariant[T]
}

func (o *option[T]) EnumDesc() EnumDesc {
	return EnumDesc{Name: "Option", Variants: []string{"None", "Some"}}
}

func (o *option[T]) Variant() ReflectStruct { return o.variant }

// Option adapts an optional value held as a nil-able pointer. It renders as
// None or Some(value) and is climbed like an enum: `.Some.0`.
func Option[T any](p **T, elem func(*T) Access) Access {
	return Enum(&option[T]{variant: &optionVariant[T]{p: p, elem: elem}})
}

type readOnly struct {
	inner Access
}

// ReadOnly exposes a shared reference: readable like inner, but neither
// assignable nor climbable for mutation.
func ReadOnly(inner Access) Access {
	return &readOnly{inner: inner}
}

func (r *readOnly) ImmutAccess() ImmutAccess { return r.inner.ImmutAccess() }

func (r *readOnly) MutAccess() MutAccess { return MutAccess{} }

func (r *readOnly) Call(name string, mode Mode, c *Climber, ret RetCall) error {
	return callOf(r.inner, name, mode, c, ret)
}

func (r *readOnly) Assign(*deser.Tracker, bool) error {
	return &AssignError{Kind: Immutable}
}
