package interact

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/opal-lang/interact/core/expect"
	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/core/token"
	"github.com/opal-lang/interact/runtime/deser"
)

// ClimberOpt represents a climber configuration option
type ClimberOpt func(*ClimberConfig)

// ClimberConfig holds climber configuration
type ClimberConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger that receives branch decisions at Debug level
func WithLogger(logger *slog.Logger) ClimberOpt {
	return func(c *ClimberConfig) {
		c.logger = logger
	}
}

// indirectReply carries the outcome of a climb finished on another goroutine.
type indirectReply struct {
	climber *Climber
	node    *nodetree.Node
	err     error
}

// Climber walks a token sequence over Access values.
//
// The walk backtracks: every candidate interpretation of the next tokens
// starts from a saved cursor, and the tokens it would have accepted are
// recorded in the expectation tree so they can be offered as completions.
type Climber struct {
	// ProbeOnly parses assignments and calls without performing them.
	ProbeOnly bool

	// ValidPos is the number of tokens known to form a valid prefix.
	ValidPos int

	cursor    token.Cursor
	expect    *expect.Tree[token.Token]
	reflector *Reflector
	sender    chan<- indirectReply
	logger    *slog.Logger
}

// NewClimber creates a climber over tokens whose renderings are limited to
// maxNodes nodes.
func NewClimber(maxNodes int, probeOnly bool, tokens []token.Token, opts ...ClimberOpt) *Climber {
	config := &ClimberConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		config.logger = defaultLogger()
	}

	return &Climber{
		ProbeOnly: probeOnly,
		cursor:    token.NewCursor(tokens),
		expect:    expect.New[token.Token](),
		reflector: NewReflector(maxNodes),
		logger:    config.logger,
	}
}

// defaultLogger discards output unless INTERACT_DEBUG is set.
func defaultLogger() *slog.Logger {
	var w io.Writer = io.Discard
	if os.Getenv("INTERACT_DEBUG") != "" {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Clone returns an independent copy used to save and restore the climber.
// The reflector is shared.
func (c *Climber) Clone() *Climber {
	cl := *c
	cl.expect = c.expect.Clone()
	return &cl
}

// Pos returns the number of consumed tokens.
func (c *Climber) Pos() int {
	return c.cursor.Pos()
}

// Cursor returns a copy of the token cursor.
func (c *Climber) Cursor() token.Cursor {
	return c.cursor
}

// Expect returns the expectation tree collected so far.
func (c *Climber) Expect() *expect.Tree[token.Token] {
	return c.expect
}

// Reflector returns the reflector shared by this climb.
func (c *Climber) Reflector() *Reflector {
	return c.reflector
}

// Tracker returns a deserialization tracker positioned at the cursor.
func (c *Climber) Tracker() *deser.Tracker {
	return deser.NewTracker(c.expect, &c.cursor)
}

func (c *Climber) suggest(typ token.Type, text string) {
	c.expect.Advance(token.New(typ, text))
}

func (c *Climber) atType(typ token.Type) bool {
	return c.cursor.HasRemaining() && c.cursor.Top().Type == typ
}

// GeneralAccess climbs v with the remaining tokens.
func (c *Climber) GeneralAccess(v Access, mode Mode) (*nodetree.Node, error) {
	c.expect.Reset()
	c.ValidPos = c.cursor.Pos()

	if c.atType(token.EQUALS) {
		if mode == Immut {
			c.logger.Debug("assignment needs a mutable path", "pos", c.cursor.Pos())
			return nil, NewClimbError(NeedMutPath, nil)
		}
		return c.assign(v)
	}

	var (
		functions []Function
		direct    Direct
		indirect  Indirect
	)
	if mode == Immut {
		a := v.ImmutAccess()
		functions, direct, indirect = a.Functions, a.Direct, a.Indirect
	} else {
		a := v.MutAccess()
		functions, direct, indirect = a.Functions, a.Direct, a.Indirect
	}

	save := c.cursor
	node, err := c.checkFunctions(functions, v, mode)
	if err != nil || node != nil {
		return node, err
	}
	c.expect.RetractPath(0)
	pos := c.cursor.Pos()
	c.cursor = save

	switch {
	case direct != nil:
		node, err := direct.Climb(c, mode)
		if err != nil || node != nil {
			return node, err
		}
		c.expect.RetractPath(0)
		pos = max(c.cursor.Pos(), pos)
		c.cursor = save
	case indirect != nil:
		return c.indirectCall(indirect, mode)
	default:
		// Mut view of a value that refuses mutation
		c.cursor.TakePos(pos)
		if c.cursor.HasRemaining() {
			c.logger.Debug("mutable path through immutable value", "pos", pos)
			return nil, NewClimbError(UnattainedMutability, nil)
		}
	}

	c.cursor.TakePos(pos)
	if c.cursor.HasRemaining() {
		return nil, NewClimbError(UnexpectedToken, nil)
	}

	return c.reflector.Reflect(v), nil
}

func (c *Climber) assign(v Access) (*nodetree.Node, error) {
	c.cursor.Step()
	if err := assignOf(v, c.Tracker(), c.ProbeOnly); err != nil {
		c.logger.Debug("assignment failed", "error", err)
		var ce *ClimbError
		if errors.As(err, &ce) {
			return nil, ce
		}
		return nil, NewClimbError(AssignFailed, toAssignError(err))
	}
	c.ValidPos = c.cursor.Pos()
	return nodetree.NewLeaf(""), nil
}

func toAssignError(err error) *AssignError {
	var ae *AssignError
	if errors.As(err, &ae) {
		return ae
	}
	return &AssignError{Kind: AssignDeser, Deser: asDeserError(err)}
}

func (c *Climber) checkFunctions(functions []Function, v Access, mode Mode) (*nodetree.Node, error) {
	if len(functions) == 0 {
		return nil, nil
	}

	prefix := ""
	if c.cursor.HasRemaining() {
		if c.cursor.Top().Type != token.DOT {
			return nil, nil
		}
		c.cursor.Step()
		if c.cursor.HasRemaining() {
			top := c.cursor.Top()
			if top.Type != token.IDENT {
				return nil, NewClimbError(UnexpectedToken, nil)
			}
			prefix = top.Text
		}
	} else {
		c.suggest(token.DOT, ".")
	}

	for _, fn := range functions {
		if fn.Name == prefix {
			c.cursor.Step()
			if c.cursor.Empty() {
				c.suggest(token.LPAREN, "(")
				return nil, nil
			}
			if c.cursor.Top().Type != token.LPAREN {
				return nil, NewClimbError(UnexpectedToken, nil)
			}
			return c.call(fn, v, mode)
		}

		if strings.HasPrefix(fn.Name, prefix) {
			c.suggest(token.IDENT, fn.Name)
			c.suggest(token.LPAREN, "(")
			c.expect.RetractOne()
			c.expect.RetractOne()
		}
	}

	return nil, nil
}

func (c *Climber) call(fn Function, v Access, mode Mode) (*nodetree.Node, error) {
	c.logger.Debug("calling function", "name", fn.Name, "mode", mode, "probe", c.ProbeOnly)

	var (
		called  bool
		retNode *nodetree.Node
		retErr  error
	)
	err := callOf(v, fn.Name, mode, c, func(ret Access, c *Climber) {
		called = true
		retNode, retErr = c.GeneralAccess(ret, Immut)
	})
	if err != nil {
		var ce *CallError
		ok := errors.As(err, &ce)
		if ok && ce.Kind == NeedMutable {
			if mode == Mut {
				return nil, NewClimbError(UnattainedMutability, nil)
			}
			return nil, NewClimbError(NeedMutPath, nil)
		}
		if !ok {
			ce = &CallError{Kind: CallDeser, Deser: asDeserError(err)}
		}
		return nil, NewClimbError(CallFailed, ce)
	}
	if called {
		return retNode, retErr
	}
	return nil, nil
}

// fieldPrefix consumes the `.` that introduces a field and returns the text
// typed after it. It reports false when the next token is not a `.`.
func (c *Climber) fieldPrefix() (string, bool, error) {
	if c.cursor.Empty() {
		c.suggest(token.DOT, ".")
		return "", true, nil
	}

	if c.cursor.Top().Type != token.DOT {
		c.suggest(token.DOT, ".")
		return "", false, nil
	}
	c.cursor.Step()

	if c.cursor.Empty() {
		return "", true, nil
	}
	top := c.cursor.Top()
	switch top.Type {
	case token.IDENT:
		return top.Text, true, nil
	case token.INTEGER:
		return strconv.FormatUint(top.Uint, 10), true, nil
	default:
		return "", false, NewClimbError(UnexpectedToken, nil)
	}
}

// FieldAccess climbs into a field of s named by the next tokens.
func (c *Climber) FieldAccess(s ReflectStruct, mode Mode) (*nodetree.Node, error) {
	prefix, ok, err := c.fieldPrefix()
	if !ok || err != nil {
		return nil, err
	}

	desc := s.Desc()
	switch desc.Kind {
	case TupleStruct:
		for i := 0; i < desc.Len; i++ {
			name := strconv.Itoa(i)
			if name == prefix {
				c.cursor.Step()
				return c.GeneralAccess(s.FieldByIdx(i), mode)
			}
			if strings.HasPrefix(name, prefix) {
				c.suggest(token.IDENT, name)
				c.expect.RetractOne()
			}
		}
	case FieldsStruct:
		for _, name := range desc.Fields {
			if name == prefix {
				c.cursor.Step()
				return c.GeneralAccess(s.FieldByName(name), mode)
			}
			if strings.HasPrefix(name, prefix) {
				c.suggest(token.IDENT, name)
				c.expect.RetractOne()
			}
		}
	}

	return nil, nil
}

// VariantAccess climbs into the active variant of e. The variant name must
// be spelled out before any of its fields.
func (c *Climber) VariantAccess(e ReflectEnum, mode Mode) (*nodetree.Node, error) {
	prefix, ok, err := c.fieldPrefix()
	if !ok || err != nil {
		return nil, err
	}

	variant := e.Variant()
	desc := variant.Desc()
	if desc.Name == prefix {
		c.cursor.Step()
		node, err := c.FieldAccess(variant, mode)
		if err != nil || node != nil {
			return node, err
		}
		if c.cursor.HasRemaining() {
			return nil, NewClimbError(UnexpectedToken, nil)
		}
		return c.reflector.ReflectStruct(desc, variant, true), nil
	}
	if strings.HasPrefix(desc.Name, prefix) {
		c.suggest(token.IDENT, desc.Name)
		c.expect.RetractOne()
	}

	return nil, nil
}

// OpenBracket consumes a `[`. At the end of input it records `[` as a
// possible continuation.
func (c *Climber) OpenBracket() bool {
	if c.cursor.Empty() {
		c.suggest(token.LSQUARE, "[")
		return false
	}
	if c.cursor.Top().Type == token.LSQUARE {
		c.cursor.Step()
		return true
	}
	return false
}

// CloseBracket consumes a `]`.
func (c *Climber) CloseBracket() error {
	if c.cursor.Empty() {
		c.suggest(token.RPAREN, "]")
		return NewClimbError(UnexpectedExpressionEnd, nil)
	}
	if c.cursor.Top().Type == token.RSQUARE {
		c.cursor.Step()
		return nil
	}
	return NewClimbError(UnexpectedToken, nil)
}

// IndexAccess climbs into the element selected by a bracketed key. lookup
// reports false when the key is absent.
func IndexAccess[K any](c *Climber, mode Mode, parseKey deser.Func[K], lookup func(K) (Access, bool)) (*nodetree.Node, error) {
	if !c.OpenBracket() {
		return nil, nil
	}

	key, err := parseKey(c.Tracker())
	if err != nil {
		return nil, NewClimbError(DeserFailed, asDeserError(err))
	}
	elem, ok := lookup(key)
	if !ok {
		return nil, NewClimbError(NotFound, nil)
	}

	if err := c.CloseBracket(); err != nil {
		return nil, err
	}
	return c.GeneralAccess(elem, mode)
}

// indirectCall continues the climb inside the Indirect's callback. The
// outermost hop owns the reply channel and blocks on it; nested hops hand the
// channel down and report IndirectPending.
func (c *Climber) indirectCall(ind Indirect, mode Mode) (*nodetree.Node, error) {
	clone := c.Clone()
	clone.reflector = c.reflector.remote()
	clone.sender = nil

	var recv <-chan indirectReply
	if c.sender == nil {
		ch := make(chan indirectReply, 1)
		clone.sender = ch
		recv = ch
	} else {
		clone.sender = c.sender
		c.sender = nil
	}

	c.logger.Debug("indirect hop", "mode", mode, "owner", recv != nil)
	climb := func(v Access) {
		node, err := clone.GeneralAccess(v, mode)
		if IsKind(err, IndirectPending) {
			return
		}
		sender := clone.sender
		clone.sender = nil
		sender <- indirectReply{climber: clone, node: node, err: err}
	}
	if mode == Immut {
		ind.Indirect(climb)
	} else {
		ind.IndirectMut(climb)
	}

	if recv == nil {
		return nil, NewClimbError(IndirectPending, nil)
	}

	reply := <-recv
	c.expect = reply.climber.expect
	c.cursor.TakePos(reply.climber.cursor.Pos())
	c.ValidPos = reply.climber.ValidPos
	return reply.node, reply.err
}

// Guard grants non-blocking access to a value behind a lock.
type Guard interface {
	// TryAcquire takes the lock for the given mode. It fails with a
	// ClimbError of kind Locked, Borrowed or BorrowedMut instead of waiting.
	TryAcquire(mode Mode) (release func(), err error)
	Value() Access
}

// GuardedAccess climbs a locked value, first with shared access and, when the
// expression turns out to need it, again with exclusive access.
func (c *Climber) GuardedAccess(g Guard) (*nodetree.Node, error) {
	save := c.Clone()

	release, err := g.TryAcquire(Immut)
	if err != nil {
		return nil, err
	}
	node, err := c.GeneralAccess(g.Value(), Immut)
	release()
	if !IsKind(err, NeedMutPath) {
		return node, err
	}

	c.logger.Debug("promoting guarded value to mutable access")
	*c = *save
	release, err = g.TryAcquire(Mut)
	if err != nil {
		return nil, err
	}
	defer release()
	return c.GeneralAccess(g.Value(), Mut)
}
