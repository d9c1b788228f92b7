package deser

import (
	"slices"
	"strings"

	"github.com/opal-lang/interact/core/token"
)

var (
	curlyOpen  = token.New(token.LBRACE, " {")
	curlyClose = token.New(token.RBRACE, "}")
	fieldComma = token.New(token.COMMA, ", ")
	fieldColon = token.New(token.COLON, ": ")
)

// FieldFunc parses the value of one field and stores it in the value being
// built.
type FieldFunc func(t *Tracker, field string) error

// IndexFunc parses the value of one positional field.
type IndexFunc func(t *Tracker, idx int) error

// Struct parses a struct literal such as Foo {a: 1, b: 2}. Fields may come in
// any order but each exactly once. An empty name skips the name, which is how
// enum variants are parsed after their variant name was consumed.
func Struct(t *Tracker, name string, fields []string, parseField FieldFunc) error {
	if name != "" {
		if _, err := t.TryToken(token.Ident(name)); err != nil {
			return err
		}
	}
	if _, err := t.TryToken(curlyOpen); err != nil {
		return err
	}
	if len(fields) == 0 {
		_, err := t.TryToken(curlyClose)
		return err
	}

	assigned := make([]bool, len(fields))
	for expecting := len(fields); expecting > 0; expecting-- {
		if !t.HasRemaining() {
			for i, f := range fields {
				if !assigned[i] {
					t.PossibleToken(token.Ident(f))
				}
			}
			return EndOfTokenList
		}

		top := t.Top()
		if top.Type != token.IDENT {
			return UnexpectedToken
		}

		idx := slices.Index(fields, top.Text)
		if idx < 0 {
			for i, f := range fields {
				if !assigned[i] && strings.HasPrefix(f, top.Text) {
					t.PossibleToken(token.Ident(f))
				}
			}
			return UnexpectedToken
		}
		if assigned[idx] {
			return Unbuildable
		}

		t.Step()
		if _, err := t.TryToken(fieldColon); err != nil {
			return err
		}
		if err := parseField(t, fields[idx]); err != nil {
			return err
		}
		assigned[idx] = true

		next := fieldComma
		if expecting == 1 {
			next = curlyClose
		}
		if _, err := t.TryToken(next); err != nil {
			return err
		}
	}
	return nil
}

// TupleStruct parses a positional struct literal such as Foo2(1, 2).
func TupleStruct(t *Tracker, name string, n int, parseIdx IndexFunc) error {
	if name != "" {
		if _, err := t.TryToken(token.Ident(name)); err != nil {
			return err
		}
	}
	if _, err := t.TryToken(tupleOpen); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, err := t.TryToken(tupleComma); err != nil {
				return err
			}
		}
		if err := parseIdx(t, i); err != nil {
			return err
		}
	}
	_, err := t.TryToken(tupleClose)
	return err
}

// UnitStruct parses the bare name of a field-less struct.
func UnitStruct(t *Tracker, name string) error {
	if name == "" {
		return nil
	}
	_, err := t.TryToken(token.Ident(name))
	return err
}

// Variant parses an enum literal: a variant name followed by whatever the
// variant's parse function reads.
func Variant(t *Tracker, names []string, parse func(t *Tracker, name string) error) error {
	if !t.HasRemaining() {
		for _, n := range names {
			t.PossibleToken(token.Ident(n))
		}
		return EndOfTokenList
	}

	top := t.Top()
	if top.Type != token.IDENT {
		return UnexpectedToken
	}
	if slices.Contains(names, top.Text) {
		t.Step()
		return parse(t, top.Text)
	}
	for _, n := range names {
		if strings.HasPrefix(n, top.Text) {
			t.PossibleToken(token.Ident(n))
		}
	}
	return UnexpectedToken
}
