package interact

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/runtime/deser"
	"github.com/opal-lang/interact/runtime/lexer"
)

type point struct {
	X, Y uint32
}

func (p *point) Desc() StructDesc {
	return StructDesc{Name: "Point", Kind: FieldsStruct, Fields: []string{"x", "y"}}
}

func (p *point) FieldByName(name string) Access {
	switch name {
	case "x":
		return Uint32(&p.X)
	case "y":
		return Uint32(&p.Y)
	}
	return nil
}

func (p *point) FieldByIdx(int) Access { return nil }

type counter struct {
	N     uint32
	Items []uint32
	M     map[uint32]uint32
}

func (k *counter) Desc() StructDesc {
	return StructDesc{Name: "Counter", Kind: FieldsStruct, Fields: []string{"n", "items", "m"}}
}

func (k *counter) FieldByName(name string) Access {
	switch name {
	case "n":
		return Uint32(&k.N)
	case "items":
		return Slice(&k.Items, Uint32)
	case "m":
		return Map(&k.M, deser.Uint32, Uint32, Uint32)
	}
	return nil
}

func (k *counter) FieldByIdx(int) Access { return nil }

func (k *counter) Functions() []Function {
	return []Function{{Name: "check"}, {Name: "add", Args: []string{"a"}}}
}

func (k *counter) Call(name string, mode Mode, c *Climber, ret RetCall) error {
	switch name {
	case "check":
		return CallWith(c, mode, false, deser.Unit, func(struct{}) Access {
			ok := k.N > 0
			return Bool(&ok)
		}, ret)
	case "add":
		return CallWith(c, mode, true, deser.Tuple1(deser.Uint32), func(a uint32) Access {
			k.N += a
			return Unit()
		}, ret)
	}
	return &CallError{Kind: NoSuchFunction}
}

func newCounter() *counter {
	return &counter{
		N:     1,
		Items: []uint32{1, 2, 3},
		M:     map[uint32]uint32{3: 4, 7: 8},
	}
}

// shape is a sum type: Empty, Circle(radius) or Rect { x, y }.
type shape struct {
	kind   int
	radius uint32
	rect   point
}

type shapeVariant struct {
	s *shape
}

func (v *shapeVariant) Desc() StructDesc {
	switch v.s.kind {
	case 1:
		return StructDesc{Name: "Circle", Kind: TupleStruct, Len: 1}
	case 2:
		return StructDesc{Name: "Rect", Kind: FieldsStruct, Fields: []string{"x", "y"}}
	}
	return StructDesc{Name: "Empty", Kind: UnitStruct}
}

func (v *shapeVariant) FieldByName(name string) Access { return v.s.rect.FieldByName(name) }

func (v *shapeVariant) FieldByIdx(int) Access { return Uint32(&v.s.radius) }

func (s *shape) EnumDesc() EnumDesc {
	return EnumDesc{Name: "Shape", Variants: []string{"Empty", "Circle", "Rect"}}
}

func (s *shape) Variant() ReflectStruct { return &shapeVariant{s: s} }

// guardedValue keeps a counter-like value behind each kind of lock.
type guardedValue struct {
	mu   sync.Mutex
	rw   sync.RWMutex
	pmu  sync.Mutex
	cell *Cell[uint32]
	V    uint32
	W    uint32
	P    point
}

func (g *guardedValue) Desc() StructDesc {
	return StructDesc{Name: "Guarded", Kind: FieldsStruct, Fields: []string{"v", "w", "c", "p"}}
}

func (g *guardedValue) FieldByName(name string) Access {
	switch name {
	case "v":
		return Mutex(&g.mu, Uint32(&g.V))
	case "w":
		return RWMutex(&g.rw, Uint32(&g.W))
	case "c":
		return CellAccess(g.cell, Uint32)
	case "p":
		return Mutex(&g.pmu, Struct(&g.P))
	}
	return nil
}

func (g *guardedValue) FieldByIdx(int) Access { return nil }

// chain links cells through shared handles and may form a loop.
type chain struct {
	Value uint32
	Nest  *Shared[*Cell[chain]]
}

func (ch *chain) Desc() StructDesc {
	return StructDesc{Name: "Chain", Kind: FieldsStruct, Fields: []string{"value", "nest"}}
}

func (ch *chain) FieldByName(name string) Access {
	switch name {
	case "value":
		return Uint32(&ch.Value)
	case "nest":
		return Option(&ch.Nest, sharedChain)
	}
	return nil
}

func (ch *chain) FieldByIdx(int) Access { return nil }

func sharedChain(s *Shared[*Cell[chain]]) Access {
	return SharedAccess(*s, func(cell **Cell[chain]) Access {
		return CellAccess(*cell, func(ch *chain) Access { return Struct(ch) })
	})
}

type result struct {
	climber *Climber
	node    *nodetree.Node
	err     error
}

// rendered returns the one-line rendering of a successful walk.
func rendered(t *testing.T, r result) string {
	t.Helper()
	require.NoError(t, r.err)
	require.NotNil(t, r.node)
	return r.node.String()
}

// climb runs one walk over v.
func climb(t *testing.T, v Access, input string, mode Mode, probe bool) result {
	t.Helper()
	tokens, err := lexer.Tokenize(input)
	require.NoError(t, err)

	c := NewClimber(200, probe, tokens)
	node, err := c.GeneralAccess(v, mode)
	if node != nil {
		node.Resolve()
	}
	return result{climber: c, node: node, err: err}
}

// access walks immutably and retries mutably when the expression needs it.
func access(t *testing.T, v Access, input string, probe bool) result {
	t.Helper()
	res := climb(t, v, input, Immut, probe)
	if IsKind(res.err, NeedMutPath) {
		return climb(t, v, input, Mut, probe)
	}
	return res
}

// options returns the recorded completions, each joined into one string.
func options(c *Climber) []string {
	var out []string
	for _, seq := range c.Expect().Flatten() {
		var b strings.Builder
		for _, tok := range seq {
			b.WriteString(tok.Text)
		}
		out = append(out, b.String())
	}
	return out
}
