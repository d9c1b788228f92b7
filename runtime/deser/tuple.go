package deser

import "github.com/opal-lang/interact/core/token"

var (
	tupleOpen  = token.New(token.LPAREN, "(")
	tupleClose = token.New(token.RPAREN, ")")
	tupleComma = token.New(token.COMMA, ", ")
)

// Pair is a parsed two-element tuple.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is a parsed three-element tuple.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Unit parses ().
func Unit(t *Tracker) (struct{}, error) {
	if _, err := t.TryToken(tupleOpen); err != nil {
		return struct{}{}, err
	}
	if _, err := t.TryToken(tupleClose); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, nil
}

// Tuple1 parses (a).
func Tuple1[A any](fa Func[A]) Func[A] {
	return func(t *Tracker) (A, error) {
		var zero A
		if _, err := t.TryToken(tupleOpen); err != nil {
			return zero, err
		}
		a, err := fa(t)
		if err != nil {
			return zero, err
		}
		if _, err := t.TryToken(tupleClose); err != nil {
			return zero, err
		}
		return a, nil
	}
}

// Tuple2 parses (a, b).
func Tuple2[A, B any](fa Func[A], fb Func[B]) Func[Pair[A, B]] {
	return func(t *Tracker) (Pair[A, B], error) {
		var p Pair[A, B]
		elems := []func() error{
			func() (err error) { p.First, err = fa(t); return },
			func() (err error) { p.Second, err = fb(t); return },
		}
		return p, parseTuple(t, elems)
	}
}

// Tuple3 parses (a, b, c).
func Tuple3[A, B, C any](fa Func[A], fb Func[B], fc Func[C]) Func[Triple[A, B, C]] {
	return func(t *Tracker) (Triple[A, B, C], error) {
		var p Triple[A, B, C]
		elems := []func() error{
			func() (err error) { p.First, err = fa(t); return },
			func() (err error) { p.Second, err = fb(t); return },
			func() (err error) { p.Third, err = fc(t); return },
		}
		return p, parseTuple(t, elems)
	}
}

// TupleOf parses a tuple whose arity is known only at run time.
func TupleOf(parsers ...Func[any]) Func[[]any] {
	return func(t *Tracker) ([]any, error) {
		values := make([]any, len(parsers))
		elems := make([]func() error, len(parsers))
		for i, f := range parsers {
			elems[i] = func() (err error) { values[i], err = f(t); return }
		}
		return values, parseTuple(t, elems)
	}
}

// parseTuple reads "(", the elements separated by ", ", then ")".
func parseTuple(t *Tracker, elems []func() error) error {
	if _, err := t.TryToken(tupleOpen); err != nil {
		return err
	}
	for i, elem := range elems {
		if err := elem(); err != nil {
			return err
		}
		next := tupleComma
		if i == len(elems)-1 {
			next = tupleClose
		}
		if _, err := t.TryToken(next); err != nil {
			return err
		}
	}
	if len(elems) == 0 {
		if _, err := t.TryToken(tupleClose); err != nil {
			return err
		}
	}
	return nil
}
