package interact

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/interact/core/nodetree"
)

func TestScalarRendering(t *testing.T) {
	var (
		u8  = uint8(255)
		i16 = int16(-3)
		b   = true
		s   = "a\"b"
		ch  = 'x'
	)

	tests := []struct {
		name     string
		access   Access
		expected string
	}{
		{"uint8", Uint8(&u8), "255"},
		{"int16", Int16(&i16), "-3"},
		{"bool", Bool(&b), "true"},
		{"string is quoted", String(&s), `"a\"b"`},
		{"char is quoted", Char(&ch), "'x'"},
		{"unit", Unit(), "()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewReflector(10).Reflect(tt.access).String())
		})
	}
}

func TestElapsed(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	node := NewReflector(10).Reflect(Elapsed(&start))
	assert.True(t, strings.HasPrefix(node.String(), "1m"), "got %s", node.String())

	res := access(t, Elapsed(&start), "= 3", false)
	assert.True(t, IsKind(res.err, AssignFailed))
}

func TestBudgetTruncation(t *testing.T) {
	items := make([]uint32, 50)
	node := NewReflector(10).Reflect(Slice(&items, Uint32))

	children := node.Sub().Children
	require.Len(t, children, 11)
	assert.Equal(t, nodetree.Limited, children[10].Kind)
	for _, c := range children[:10] {
		assert.Equal(t, nodetree.Leaf, c.Kind)
	}
}

func TestBudgetTruncatesFields(t *testing.T) {
	k := newCounter()
	node := NewReflector(2).Reflect(Struct(k))

	// Two keys fit the budget; their values no longer do.
	assert.Equal(t, "Counter { n : ..., items : ..., ... }", node.String())
}

func TestSeenMarksRepeats(t *testing.T) {
	r := NewReflector(10)
	v := uint32(1)

	meta, rep := r.Seen(&v)
	require.Nil(t, rep)
	assert.Equal(t, int64(1), meta.Refs())

	again, rep := r.Seen(&v)
	assert.Nil(t, again)
	require.NotNil(t, rep)
	assert.Equal(t, nodetree.Repeated, rep.Kind)
	assert.Same(t, meta, rep.Meta)
	assert.Equal(t, int64(2), meta.Refs())

	// Same address, different type: a distinct identity.
	type wrapper struct{ v uint32 }
	w := &wrapper{}
	_, rep = r.Seen(w)
	assert.Nil(t, rep)
	_, rep = r.Seen(&w.v)
	assert.Nil(t, rep)
}

func TestSharedCycle(t *testing.T) {
	a := NewCell(chain{Value: 1})
	b := NewCell(chain{Value: 2})
	sa := NewShared(a)
	sb := NewShared(b)
	a.value.Nest = &sb
	loop := sa.Clone()
	b.value.Nest = &loop

	root := &chain{Value: 0, Nest: &sa}

	res := access(t, Struct(root), "", false)
	out := rendered(t, res)
	assert.Equal(t,
		"Chain { value : 0, nest : Some ( Chain { value : 1, nest : Some ( Chain { value : 2, nest : Some ( <repeated> ) } ) } ) }",
		out)

	// The first rendering of the repeated chain carries the shared tag.
	fields := res.node.Children[1].Sub().Children
	some := fields[1].Children[1]
	first := some.Children[1].Sub().Children[0]
	require.NotNil(t, first.Meta)
	assert.Equal(t, int64(2), first.Meta.Refs())
}

func TestSharedMutation(t *testing.T) {
	a := NewCell(chain{Value: 1})
	sa := NewShared(a)
	root := &chain{Nest: &sa}

	// Borrowing through a cell promotes on its own, even with a shared handle.
	res := access(t, Struct(root), ".nest.Some.0.value = 5", false)
	require.NoError(t, res.err)
	assert.Equal(t, uint32(5), a.value.Value)

	// Replacing the whole shared value needs a unique handle.
	extra := sa.Clone()
	res = climb(t, Struct(root), ".nest.Some.0 = 1", Mut, false)
	var ae *AssignError
	require.ErrorAs(t, res.err, &ae)
	assert.Equal(t, Immutable, ae.Kind)

	extra.Release()
	assert.True(t, sa.Unique())
}

func TestSharedCycleMutationIsBorrowed(t *testing.T) {
	a := NewCell(chain{Value: 1})
	sa := NewShared(a)
	loop := sa.Clone()
	a.value.Nest = &loop
	root := &chain{Nest: &sa}

	// The outer borrow of the same cell is still held when the inner one
	// asks for exclusive access.
	res := access(t, Struct(root), ".nest.Some.0.nest.Some.0.value = 5", false)
	assert.True(t, IsKind(res.err, BorrowedMut), "got %v", res.err)
	assert.Equal(t, uint32(1), a.value.Value)
}
