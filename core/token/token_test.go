package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilar(t *testing.T) {
	tests := []struct {
		name string
		a, b Token
		want bool
	}{
		{"same_ident", Ident("foo"), Ident("foo"), true},
		{"comma_with_space", New(COMMA, ","), New(COMMA, ", "), true},
		{"brace_with_leading_space", New(LBRACE, "{"), New(LBRACE, " {"), true},
		{"different_ident", Ident("foo"), Ident("bar"), false},
		{"different_type", New(LPAREN, "("), New(LSQUARE, "("), false},
		{"different_payload", Token{Type: INTEGER, Text: "1", Uint: 1}, Token{Type: INTEGER, Text: "1", Uint: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Similar(tt.b))
		})
	}
}

func TestIsPrefixOf(t *testing.T) {
	assert.True(t, Ident("tr").IsPrefixOf(Ident("true")))
	assert.True(t, Ident("true").IsPrefixOf(Ident("true")))
	assert.False(t, Ident("x").IsPrefixOf(Ident("true")))
	assert.False(t, New(DOT, ".").IsPrefixOf(Ident(".x")))
}

func TestSpaceSuffix(t *testing.T) {
	assert.Equal(t, 0, New(COMMA, ",").SpaceSuffix())
	assert.Equal(t, 1, New(COMMA, ", ").SpaceSuffix())
	assert.Equal(t, 1, New(LBRACE, " {").SpaceSuffix())
}

func TestCursor(t *testing.T) {
	c := NewCursor([]Token{Ident("a"), New(DOT, "."), Ident("b")})

	assert.Equal(t, 3, c.Remaining())
	assert.Equal(t, Ident("a"), c.Top())

	save := c
	c.Advance(2)
	assert.Equal(t, 2, c.Pos())
	assert.Equal(t, Ident("b"), c.Top())

	c = save
	assert.Equal(t, 0, c.Pos(), "restoring a copy rewinds the cursor")

	c.TakePos(3)
	assert.True(t, c.Empty())
}

func TestCursorAdvancePastEndPanics(t *testing.T) {
	c := NewCursor([]Token{Ident("a")})
	assert.Panics(t, func() { c.Advance(2) })
}
