package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// holder keeps a reference to an actor, possibly the one that owns it.
type holder struct {
	B *Actor
}

func (h *holder) Desc() StructDesc {
	return StructDesc{Name: "Holder", Kind: FieldsStruct, Fields: []string{"b"}}
}

func (h *holder) FieldByName(name string) Access {
	if name == "b" {
		return h.B
	}
	return nil
}

func (h *holder) FieldByIdx(int) Access { return nil }

func TestActorAccess(t *testing.T) {
	p := &point{X: 1, Y: 2}
	a := NewActor(Struct(p))
	defer a.Close()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"whole value", "", "Point { x : 1, y : 2 }"},
		{"field", ".y", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rendered(t, access(t, a, tt.input, false)))
		})
	}
}

func TestActorMutation(t *testing.T) {
	p := &point{X: 1, Y: 2}
	a := NewActor(Struct(p))

	res := climb(t, a, ".x = 5", Immut, false)
	assert.True(t, IsKind(res.err, NeedMutPath), "got %v", res.err)

	res = access(t, a, ".x = 5", false)
	require.NoError(t, res.err)
	assert.Equal(t, 4, res.climber.ValidPos)

	a.Close()
	assert.Equal(t, uint32(5), p.X)
}

func TestActorSuggestions(t *testing.T) {
	a := NewActor(Struct(&point{}))
	defer a.Close()

	res := climb(t, a, ".", Immut, false)
	require.NoError(t, res.err)
	assert.Equal(t, []string{"x", "y"}, options(res.climber))
}

func TestNestedActors(t *testing.T) {
	inner := NewActor(Struct(&point{X: 1, Y: 2}))
	defer inner.Close()
	outer := NewActor(Struct(&holder{B: inner}))
	defer outer.Close()

	assert.Equal(t, "1", rendered(t, access(t, outer, ".b.x", false)))
	assert.Equal(t, "Holder { b : Point { x : 1, y : 2 } }", rendered(t, access(t, outer, "", false)))

	res := access(t, outer, ".b.y = 7", false)
	require.NoError(t, res.err)
	assert.Equal(t, "7", rendered(t, access(t, outer, ".b.y", false)))
}

func TestSelfReferencingActor(t *testing.T) {
	h := &holder{}
	a := NewActor(Struct(h))
	h.B = a
	defer a.Close()

	assert.Equal(t, "Holder { b : <repeated> }", rendered(t, access(t, a, "", false)))
	assert.Equal(t, "Holder { b : <repeated> }", rendered(t, access(t, a, ".b", false)))
}

func TestClosedActorRunsInline(t *testing.T) {
	p := &point{X: 3}
	a := NewActor(Struct(p))
	a.Close()

	assert.False(t, a.Do(func() {}))
	assert.Equal(t, "3", rendered(t, access(t, a, ".x", false)))
}
