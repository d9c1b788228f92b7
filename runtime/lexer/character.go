package lexer

import "github.com/opal-lang/interact/core/token"

// ASCII character lookup tables for fast classification.
//
// Use inline bounds-checked lookups:
//
//	if ch < 128 && isIdentStart[ch] { ... }
var (
	isWhitespace     [128]bool // Space, tab, carriage return, newline
	isDigit          [128]bool // 0-9
	isIdentStart     [128]bool // Letter or _
	isIdentPart      [128]bool // Letter, digit or _
	isHexDigit       [128]bool // 0-9, a-f, A-F
	singleCharTokens [128]token.Type
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
		isDigit[i] = '0' <= ch && ch <= '9'
		isIdentStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isIdentPart[i] = isIdentStart[i] || isDigit[i]
		isHexDigit[i] = isDigit[i] || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
		singleCharTokens[i] = token.ILLEGAL
	}

	singleCharTokens['['] = token.LSQUARE
	singleCharTokens[']'] = token.RSQUARE
	singleCharTokens['('] = token.LPAREN
	singleCharTokens[')'] = token.RPAREN
	singleCharTokens['{'] = token.LBRACE
	singleCharTokens['}'] = token.RBRACE
	singleCharTokens['='] = token.EQUALS
	singleCharTokens[':'] = token.COLON
	singleCharTokens[','] = token.COMMA
}

// IsIdentifier reports whether s is a complete identifier: [A-Za-z_][A-Za-z0-9_]*
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}

	first := s[0]
	if first >= 128 || !isIdentStart[first] {
		return false
	}

	for i := 1; i < len(s); i++ {
		ch := s[i]
		if ch >= 128 || !isIdentPart[ch] {
			return false
		}
	}

	return true
}
