// Package deser parses values out of a token stream while recording what
// could have been typed instead.
//
// Parsers share a Tracker. When input runs out or only partially matches an
// expected token, the Tracker records the expected token in the climber's
// expectation tree so the caller can offer it as a completion.
package deser

import (
	"github.com/opal-lang/interact/core/expect"
	"github.com/opal-lang/interact/core/token"
)

// Error is a deserialization failure.
type Error int

const (
	EndOfTokenList Error = iota + 1
	NumberTooLarge
	NumberTooSmall
	UnexpectedToken
	Unbuildable
)

func (e Error) Error() string {
	switch e {
	case EndOfTokenList:
		return "end of token list"
	case NumberTooLarge:
		return "number too large"
	case NumberTooSmall:
		return "number too small"
	case UnexpectedToken:
		return "unexpected token"
	case Unbuildable:
		return "value cannot be built from an expression"
	default:
		return "unknown deser error"
	}
}

// String returns the name of the error kind.
func (e Error) String() string {
	switch e {
	case EndOfTokenList:
		return "EndOfTokenList"
	case NumberTooLarge:
		return "NumberTooLarge"
	case NumberTooSmall:
		return "NumberTooSmall"
	case UnexpectedToken:
		return "UnexpectedToken"
	case Unbuildable:
		return "Unbuildable"
	default:
		return "Unknown"
	}
}

// Func parses a T from the tracker.
type Func[T any] func(*Tracker) (T, error)

// Tracker couples a token cursor with the expectation tree that collects
// completion hints. Both are owned by the caller and modified in place.
type Tracker struct {
	expect *expect.Tree[token.Token]
	cursor *token.Cursor
	steps  int
}

// NewTracker returns a tracker over the given tree and cursor.
func NewTracker(e *expect.Tree[token.Token], c *token.Cursor) *Tracker {
	return &Tracker{expect: e, cursor: c}
}

// PossibleToken records tok as an alternative at the current point without
// moving along it.
func (t *Tracker) PossibleToken(tok token.Token) {
	t.expect.Advance(tok)
	t.expect.RetractOne()
}

// TryToken consumes the next token if it is similar to tok.
//
// It returns false without error when tok was recorded as an expectation
// instead: either the input is exhausted or the next token is a partially
// typed tok. A token that cannot lead to tok is UnexpectedToken.
func (t *Tracker) TryToken(tok token.Token) (bool, error) {
	if !t.cursor.HasRemaining() {
		if last, ok := t.expect.Last(); ok {
			if last.Type == token.COMMA && last.SpaceSuffix() == 0 {
				tok.Space++
			}
		} else if t.steps == 0 {
			tok.Space++
		}
		t.expect.Advance(tok)
		return false, nil
	}

	top := t.cursor.Top()
	switch {
	case top.Similar(tok):
		t.Step()
		return true, nil
	case top.IsPrefixOf(tok):
		t.expect.Advance(tok)
		return false, nil
	default:
		return false, UnexpectedToken
	}
}

// HasRemaining reports whether input is left.
func (t *Tracker) HasRemaining() bool {
	return t.cursor.HasRemaining()
}

// Top returns the next input token.
func (t *Tracker) Top() token.Token {
	return t.cursor.Top()
}

// Step consumes one token. Expectations recorded before it are dropped
// since they no longer describe the end of the input.
func (t *Tracker) Step() {
	t.expect.Reset()
	t.cursor.Step()
	t.steps++
}
