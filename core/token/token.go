// Package token defines the lexical tokens of interact path expressions and a
// cursor for walking them.
package token

import (
	"fmt"
	"strings"
)

// Type represents the lexical class of a token
type Type int

const (
	// Special tokens
	ILLEGAL Type = iota // unrecognized input, always the last token

	// Literals
	IDENT          // field, method, variant or root name
	INTEGER        // 42
	SIGNED_INTEGER // -42
	CHAR           // 'c'
	STRING         // "text"

	// Brackets
	LSQUARE // [
	RSQUARE // ]
	LPAREN  // (
	RPAREN  // )
	LBRACE  // {
	RBRACE  // }

	// Punctuation
	DOT    // .
	EQUALS // =
	COLON  // :
	COMMA  // ,
	RANGE  // .. or ..= (see Token.Inclusive)
)

// String returns a string representation of the token type
func (t Type) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case IDENT:
		return "IDENT"
	case INTEGER:
		return "INTEGER"
	case SIGNED_INTEGER:
		return "SIGNED_INTEGER"
	case CHAR:
		return "CHAR"
	case STRING:
		return "STRING"
	case LSQUARE:
		return "LSQUARE"
	case RSQUARE:
		return "RSQUARE"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case DOT:
		return "DOT"
	case EQUALS:
		return "EQUALS"
	case COLON:
		return "COLON"
	case COMMA:
		return "COMMA"
	case RANGE:
		return "RANGE"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Token is one lexical element of a path expression.
//
// Text is the source slice for tokens produced by the lexer. Tokens built by
// the engine as suggestions carry the text to offer, which may include
// trailing spaces (", ") or a leading one (" {").
type Token struct {
	Type  Type
	Text  string
	Space int // whitespace characters preceding the token

	// Literal payload, set according to Type
	Uint      uint64 // INTEGER
	Int       int64  // SIGNED_INTEGER
	Char      rune   // CHAR
	Str       string // STRING (unescaped)
	Inclusive bool   // RANGE
}

// New builds a payload-free token, the form used for suggestions.
func New(typ Type, text string) Token {
	return Token{Type: typ, Text: text}
}

// Ident builds an identifier token.
func Ident(text string) Token {
	return Token{Type: IDENT, Text: text}
}

func (t Token) sameInner(o Token) bool {
	return t.Type == o.Type &&
		t.Uint == o.Uint &&
		t.Int == o.Int &&
		t.Char == o.Char &&
		t.Str == o.Str &&
		t.Inclusive == o.Inclusive
}

// Similar reports whether o is the same token ignoring surrounding
// whitespace: same type and payload, and the same first word of text.
func (t Token) Similar(o Token) bool {
	if !t.sameInner(o) {
		return false
	}
	return firstWord(t.Text) == firstWord(o.Text)
}

// IsPrefixOf reports whether t is a partially typed form of o.
func (t Token) IsPrefixOf(o Token) bool {
	if !t.sameInner(o) {
		return false
	}
	return strings.HasPrefix(o.Text, t.Text)
}

// SpaceSuffix returns the number of bytes following the first word of the
// token text.
func (t Token) SpaceSuffix() int {
	return len(t.Text) - len(firstWord(t.Text))
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Text)
}

// firstWord returns the first whitespace-separated word of s.
func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
