package token

import "github.com/opal-lang/interact/core/invariant"

// Cursor walks an immutable token sequence.
//
// A Cursor is a small value: copying it takes a snapshot that can later be
// restored by assignment. The underlying slice is never written to, so
// snapshots share storage.
type Cursor struct {
	tokens []Token
	pos    int
}

// NewCursor returns a cursor positioned at the first token.
func NewCursor(tokens []Token) Cursor {
	return Cursor{tokens: tokens}
}

// Top returns the token under the cursor. The cursor must not be empty.
func (c *Cursor) Top() Token {
	invariant.Precondition(c.pos < len(c.tokens), "top of exhausted cursor (pos %d, len %d)", c.pos, len(c.tokens))
	return c.tokens[c.pos]
}

// Advance moves the cursor forward by n tokens.
func (c *Cursor) Advance(n int) {
	c.pos += n
	invariant.Precondition(c.pos <= len(c.tokens), "invalid token advance %d > %d", c.pos, len(c.tokens))
}

// Step advances by one token.
func (c *Cursor) Step() {
	c.Advance(1)
}

// Pos returns the number of consumed tokens.
func (c *Cursor) Pos() int {
	return c.pos
}

// TakePos moves the cursor to an absolute position.
func (c *Cursor) TakePos(pos int) {
	invariant.InRange(pos, 0, len(c.tokens), "cursor position")
	c.pos = pos
}

// Len returns the total number of tokens.
func (c *Cursor) Len() int {
	return len(c.tokens)
}

// Remaining returns the number of unconsumed tokens.
func (c *Cursor) Remaining() int {
	return len(c.tokens) - c.pos
}

// HasRemaining reports whether any token is left.
func (c *Cursor) HasRemaining() bool {
	return c.Remaining() > 0
}

// Empty reports whether all tokens were consumed.
func (c *Cursor) Empty() bool {
	return c.Remaining() == 0
}

// Tokens returns the full underlying sequence.
func (c *Cursor) Tokens() []Token {
	return c.tokens
}
