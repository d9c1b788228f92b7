package interact

import (
	"strconv"
	"time"

	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/runtime/deser"
)

// scalar renders a single value as a leaf and assigns it by parsing.
type scalar[T any] struct {
	p      *T
	parse  deser.Func[T]
	format func(T) string
}

func newScalar[T any](p *T, parse deser.Func[T], format func(T) string) Access {
	return &scalar[T]{p: p, parse: parse, format: format}
}

func (s *scalar[T]) ImmutAccess() ImmutAccess { return ImmutAccess{Direct: s} }

func (s *scalar[T]) MutAccess() MutAccess { return MutAccess{Direct: s} }

func (s *scalar[T]) Reflect(r *Reflector) *nodetree.Node {
	meta, rep := r.Seen(s.p)
	if rep != nil {
		return rep
	}
	return nodetree.NewLeaf(s.format(*s.p)).WithMeta(meta)
}

func (s *scalar[T]) Climb(*Climber, Mode) (*nodetree.Node, error) {
	return nil, nil
}

func (s *scalar[T]) Assign(t *deser.Tracker, probeOnly bool) error {
	return DeserAssign(s.p, s.parse, t, probeOnly)
}

func formatUnsigned[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

func formatSigned[T ~int | ~int8 | ~int16 | ~int32 | ~int64](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

func Uint(p *uint) Access     { return newScalar(p, deser.Uint, formatUnsigned[uint]) }
func Uint8(p *uint8) Access   { return newScalar(p, deser.Uint8, formatUnsigned[uint8]) }
func Uint16(p *uint16) Access { return newScalar(p, deser.Uint16, formatUnsigned[uint16]) }
func Uint32(p *uint32) Access { return newScalar(p, deser.Uint32, formatUnsigned[uint32]) }
func Uint64(p *uint64) Access { return newScalar(p, deser.Uint64, formatUnsigned[uint64]) }

func Int(p *int) Access     { return newScalar(p, deser.Int, formatSigned[int]) }
func Int8(p *int8) Access   { return newScalar(p, deser.Int8, formatSigned[int8]) }
func Int16(p *int16) Access { return newScalar(p, deser.Int16, formatSigned[int16]) }
func Int32(p *int32) Access { return newScalar(p, deser.Int32, formatSigned[int32]) }
func Int64(p *int64) Access { return newScalar(p, deser.Int64, formatSigned[int64]) }

// Bool adapts a bool rendered as true or false.
func Bool(p *bool) Access { return newScalar(p, deser.Bool, strconv.FormatBool) }

// String adapts a string rendered as a quoted literal.
func String(p *string) Access { return newScalar(p, deser.String, strconv.Quote) }

// Char adapts a rune rendered as a quoted character literal.
func Char(p *rune) Access { return newScalar(p, deser.Char, strconv.QuoteRune) }

type elapsed struct {
	p *time.Time
}

// Elapsed adapts an instant, rendered as the time passed since it. It cannot
// be assigned.
func Elapsed(p *time.Time) Access {
	return &elapsed{p: p}
}

func (e *elapsed) ImmutAccess() ImmutAccess { return ImmutAccess{Direct: e} }

func (e *elapsed) MutAccess() MutAccess { return MutAccess{Direct: e} }

func (e *elapsed) Reflect(r *Reflector) *nodetree.Node {
	meta, rep := r.Seen(e.p)
	if rep != nil {
		return rep
	}
	return nodetree.NewLeaf(time.Since(*e.p).String()).WithMeta(meta)
}

func (e *elapsed) Climb(*Climber, Mode) (*nodetree.Node, error) {
	return nil, nil
}
