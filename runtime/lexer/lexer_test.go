package lexer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/interact/core/token"
)

// tokenExpectation represents an expected token for testing
type tokenExpectation struct {
	Type  token.Type
	Text  string
	Space int
}

func assertTokens(t *testing.T, input string, expected []tokenExpectation) []token.Token {
	t.Helper()
	tokens, err := Tokenize(input)
	require.NoError(t, err)

	var actual []tokenExpectation
	for _, tok := range tokens {
		actual = append(actual, tokenExpectation{tok.Type, tok.Text, tok.Space})
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("Token mismatch for %q (-expected +actual):\n%s", input, diff)
	}
	return tokens
}

func TestPaths(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenExpectation
	}{
		{
			name:  "field access",
			input: "state.u",
			expected: []tokenExpectation{
				{token.IDENT, "state", 0},
				{token.DOT, ".", 0},
				{token.IDENT, "u", 0},
			},
		},
		{
			name:  "index",
			input: "state.m[3]",
			expected: []tokenExpectation{
				{token.IDENT, "state", 0},
				{token.DOT, ".", 0},
				{token.IDENT, "m", 0},
				{token.LSQUARE, "[", 0},
				{token.INTEGER, "3", 0},
				{token.RSQUARE, "]", 0},
			},
		},
		{
			name:  "assignment with spaces",
			input: "foo.bar  =\t-5",
			expected: []tokenExpectation{
				{token.IDENT, "foo", 0},
				{token.DOT, ".", 0},
				{token.IDENT, "bar", 0},
				{token.EQUALS, "=", 2},
				{token.SIGNED_INTEGER, "-5", 1},
			},
		},
		{
			name:  "struct literal",
			input: "x = Foo { a: 1, b: \"s\" }",
			expected: []tokenExpectation{
				{token.IDENT, "x", 0},
				{token.EQUALS, "=", 1},
				{token.IDENT, "Foo", 1},
				{token.LBRACE, "{", 1},
				{token.IDENT, "a", 1},
				{token.COLON, ":", 0},
				{token.INTEGER, "1", 1},
				{token.COMMA, ",", 0},
				{token.IDENT, "b", 1},
				{token.COLON, ":", 0},
				{token.STRING, `"s"`, 1},
				{token.RBRACE, "}", 1},
			},
		},
		{
			name:  "tuple index",
			input: "t.0.1",
			expected: []tokenExpectation{
				{token.IDENT, "t", 0},
				{token.DOT, ".", 0},
				{token.INTEGER, "0", 0},
				{token.DOT, ".", 0},
				{token.INTEGER, "1", 0},
			},
		},
		{
			name:  "ranges",
			input: "v[1..3] v[1..=3]",
			expected: []tokenExpectation{
				{token.IDENT, "v", 0},
				{token.LSQUARE, "[", 0},
				{token.INTEGER, "1", 0},
				{token.RANGE, "..", 0},
				{token.INTEGER, "3", 0},
				{token.RSQUARE, "]", 0},
				{token.IDENT, "v", 1},
				{token.LSQUARE, "[", 0},
				{token.INTEGER, "1", 0},
				{token.RANGE, "..=", 0},
				{token.INTEGER, "3", 0},
				{token.RSQUARE, "]", 0},
			},
		},
		{
			name:  "illegal stops tokenizing",
			input: "a.b $ c",
			expected: []tokenExpectation{
				{token.IDENT, "a", 0},
				{token.DOT, ".", 0},
				{token.IDENT, "b", 0},
				{token.ILLEGAL, "$", 1},
			},
		},
		{
			name:  "dash without digits is illegal",
			input: "a -b",
			expected: []tokenExpectation{
				{token.IDENT, "a", 0},
				{token.ILLEGAL, "-", 1},
			},
		},
		{
			name:     "only whitespace",
			input:    "  \n ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.input, tt.expected)
		})
	}
}

func TestLiteralPayloads(t *testing.T) {
	tokens, err := Tokenize(`18446744073709551615 -9223372036854775808 '\u{1F600}' '\'' "a\tb\"" ..=`)
	require.NoError(t, err)
	require.Len(t, tokens, 6)

	assert.Equal(t, uint64(18446744073709551615), tokens[0].Uint)
	assert.Equal(t, int64(-9223372036854775808), tokens[1].Int)
	assert.Equal(t, '😀', tokens[2].Char)
	assert.Equal(t, '\'', tokens[3].Char)
	assert.Equal(t, "a\tb\"", tokens[4].Str)
	assert.True(t, tokens[5].Inclusive)
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
	}{
		{"unsigned overflow", "x = 18446744073709551616", 4},
		{"signed overflow", "x = -9223372036854775809", 4},
		{"unterminated string", `a = "abc`, 4},
		{"unterminated char", "a = 'bc'", 4},
		{"empty char", "''", 0},
		{"bad escape", `"\q"`, 1},
		{"bad unicode escape", `'\u{110000}'`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			var lexErr *LexError
			require.True(t, errors.As(err, &lexErr), "expected *LexError, got %v", err)
			assert.Equal(t, tt.pos, lexErr.Pos)
		})
	}
}

func TestDebugEvents(t *testing.T) {
	l := NewLexer("a.1")
	_, err := l.Tokenize()
	require.NoError(t, err)
	assert.Nil(t, l.DebugEvents(), "debug off should not record events")

	l = NewLexer("a.1", WithDebug())
	_, err = l.Tokenize()
	require.NoError(t, err)

	var names []string
	for _, ev := range l.DebugEvents() {
		names = append(names, ev.Event)
	}
	assert.Contains(t, names, "enter_lexIdentifier")
	assert.Contains(t, names, "enter_lexNumber")
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("u_16"))
	assert.True(t, IsIdentifier("_x"))
	assert.False(t, IsIdentifier("1x"))
	assert.False(t, IsIdentifier("a-b"))
	assert.False(t, IsIdentifier(""))
}
