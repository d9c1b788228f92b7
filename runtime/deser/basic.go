package deser

import (
	"math"
	"strings"

	"github.com/opal-lang/interact/core/token"
)

type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

func parseUnsigned[T unsigned](t *Tracker, limit uint64) (T, error) {
	if !t.HasRemaining() {
		return 0, EndOfTokenList
	}

	switch top := t.Top(); top.Type {
	case token.INTEGER:
		if top.Uint > limit {
			return 0, NumberTooLarge
		}
		t.Step()
		return T(top.Uint), nil
	case token.SIGNED_INTEGER:
		if top.Int < 0 {
			return 0, NumberTooSmall
		}
		if uint64(top.Int) > limit {
			return 0, NumberTooLarge
		}
		t.Step()
		return T(top.Int), nil
	}
	return 0, UnexpectedToken
}

func parseSigned[T signed](t *Tracker, lo, hi int64) (T, error) {
	if !t.HasRemaining() {
		return 0, EndOfTokenList
	}

	switch top := t.Top(); top.Type {
	case token.INTEGER:
		if top.Uint > uint64(hi) {
			return 0, NumberTooLarge
		}
		t.Step()
		return T(top.Uint), nil
	case token.SIGNED_INTEGER:
		if top.Int < lo {
			return 0, NumberTooSmall
		}
		if top.Int > hi {
			return 0, NumberTooLarge
		}
		t.Step()
		return T(top.Int), nil
	}
	return 0, UnexpectedToken
}

func Uint(t *Tracker) (uint, error)     { return parseUnsigned[uint](t, math.MaxUint) }
func Uint8(t *Tracker) (uint8, error)   { return parseUnsigned[uint8](t, math.MaxUint8) }
func Uint16(t *Tracker) (uint16, error) { return parseUnsigned[uint16](t, math.MaxUint16) }
func Uint32(t *Tracker) (uint32, error) { return parseUnsigned[uint32](t, math.MaxUint32) }
func Uint64(t *Tracker) (uint64, error) { return parseUnsigned[uint64](t, math.MaxUint64) }

func Int(t *Tracker) (int, error)     { return parseSigned[int](t, math.MinInt, math.MaxInt) }
func Int8(t *Tracker) (int8, error)   { return parseSigned[int8](t, math.MinInt8, math.MaxInt8) }
func Int16(t *Tracker) (int16, error) { return parseSigned[int16](t, math.MinInt16, math.MaxInt16) }
func Int32(t *Tracker) (int32, error) { return parseSigned[int32](t, math.MinInt32, math.MaxInt32) }
func Int64(t *Tracker) (int64, error) { return parseSigned[int64](t, math.MinInt64, math.MaxInt64) }

// String parses a double-quoted string literal.
func String(t *Tracker) (string, error) {
	if !t.HasRemaining() {
		return "", EndOfTokenList
	}
	if top := t.Top(); top.Type == token.STRING {
		t.Step()
		return top.Str, nil
	}
	return "", UnexpectedToken
}

// Char parses a single-quoted char literal.
func Char(t *Tracker) (rune, error) {
	if !t.HasRemaining() {
		return 0, EndOfTokenList
	}
	if top := t.Top(); top.Type == token.CHAR {
		t.Step()
		return top.Char, nil
	}
	return 0, UnexpectedToken
}

var boolValues = []struct {
	text  string
	value bool
}{
	{"false", false},
	{"true", true},
}

// Bool parses the identifiers false and true.
func Bool(t *Tracker) (bool, error) {
	if !t.HasRemaining() {
		for _, v := range boolValues {
			t.PossibleToken(token.Ident(v.text))
		}
		return false, EndOfTokenList
	}

	if top := t.Top(); top.Type == token.IDENT {
		for _, v := range boolValues {
			if v.text == top.Text {
				t.Step()
				return v.value, nil
			}
		}
		for _, v := range boolValues {
			if strings.HasPrefix(v.text, top.Text) {
				t.PossibleToken(token.Ident(v.text))
			}
		}
	}
	return false, UnexpectedToken
}

// Pointer parses a T and returns it boxed.
func Pointer[T any](f Func[T]) Func[*T] {
	return func(t *Tracker) (*T, error) {
		v, err := f(t)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}

// Any erases the result type of f.
func Any[T any](f Func[T]) Func[any] {
	return func(t *Tracker) (any, error) {
		return f(t)
	}
}

// Fail returns a parser that always fails with Unbuildable.
func Fail[T any]() Func[T] {
	return func(*Tracker) (T, error) {
		var zero T
		return zero, Unbuildable
	}
}
