// Package root resolves path expressions against named values and converts
// the climber's token-based completion state into character offsets.
package root

import (
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/opal-lang/interact/core/assist"
	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/core/token"
	"github.com/opal-lang/interact/runtime/interact"
	"github.com/opal-lang/interact/runtime/lexer"
)

// DefaultMaxNodes bounds the rendering of one query.
const DefaultMaxNodes = 200

// maxSuggestionSpace caps the leading spaces kept in a suggestion.
const maxSuggestionSpace = 13

// Option represents a root configuration option
type Option func(*Config)

// Config holds root configuration
type Config struct {
	maxNodes int
	logger   *slog.Logger
	lexTrace bool
}

// WithMaxNodes sets the render budget of each query.
func WithMaxNodes(n int) Option {
	return func(c *Config) {
		c.maxNodes = n
	}
}

// WithLogger sets the logger handed to the lexer and climber.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithLexTrace records the lexer's path through each query and logs it
// when tokenizing fails.
func WithLexTrace() Option {
	return func(c *Config) {
		c.lexTrace = true
	}
}

// Send holds values that may be reached from any goroutine.
type Send struct {
	mu    sync.Mutex
	owned map[string]interact.Access
}

// NewSend returns an empty registry.
func NewSend() *Send {
	return &Send{owned: make(map[string]interact.Access)}
}

// Insert registers v under name, replacing any previous value.
func (s *Send) Insert(name string, v interact.Access) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owned[name] = v
}

// Remove unregisters name.
func (s *Send) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owned, name)
}

func (s *Send) snapshot(into map[string]interact.Access) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(into, s.owned)
}

// Local holds values confined to the goroutine that queries them.
type Local struct {
	owned map[string]interact.Access
}

// NewLocal returns an empty registry.
func NewLocal() *Local {
	return &Local{owned: make(map[string]interact.Access)}
}

// Insert registers v under name, replacing any previous value.
func (l *Local) Insert(name string, v interact.Access) {
	l.owned[name] = v
}

// Root answers queries over the values of a Send and a Local registry.
// Either registry may be nil. A Local value shadows a Send value of the same
// name.
type Root struct {
	send  *Send
	local *Local

	// mu serializes queries
	mu     sync.Mutex
	config *Config
}

// New creates a root over send and local.
func New(send *Send, local *Local, opts ...Option) *Root {
	config := &Config{maxNodes: DefaultMaxNodes}
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		config.logger = defaultLogger()
	}
	return &Root{send: send, local: local, config: config}
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

func (r *Root) items() map[string]interact.Access {
	items := make(map[string]interact.Access)
	if r.send != nil {
		r.send.snapshot(items)
	}
	if r.local != nil {
		maps.Copy(items, r.local.owned)
	}
	return items
}

// Keys returns the registered names in order.
func (r *Root) Keys() []string {
	return slices.Sorted(maps.Keys(r.items()))
}

// Probe evaluates path without performing assignments or calls.
func (r *Root) Probe(path string) (*nodetree.Node, assist.Assist[string], error) {
	return r.query(path, true)
}

// Access evaluates path.
func (r *Root) Access(path string) (*nodetree.Node, assist.Assist[string], error) {
	return r.query(path, false)
}

func (r *Root) query(path string, probeOnly bool) (*nodetree.Node, assist.Assist[string], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items()
	names := slices.Sorted(maps.Keys(items))
	var matching []string
	for _, name := range names {
		if strings.HasPrefix(name, path) {
			matching = append(matching, name)
		}
	}
	rootAssist := func(valid int) assist.Assist[string] {
		var a assist.Assist[string]
		if len(matching) > 0 {
			a.Pend(valid)
		}
		a.SetNextOptions(assist.Avail(0, matching))
		return a
	}

	tokens, err := r.tokenize(path)
	if err != nil {
		return nil, assist.Assist[string]{}, interact.NewClimbError(interact.UnexpectedToken, err)
	}
	if len(tokens) == 0 {
		return nil, rootAssist(0), interact.NewClimbError(interact.NullPath, nil)
	}

	first := tokens[0]
	v, ok := items[first.Text]
	if !ok {
		cerr := interact.NewClimbError(interact.MissingStartComponent, nil)
		cerr.Suggestions = similar(first.Text, names)
		r.config.logger.Debug("unknown root", "name", first.Text, "suggestions", cerr.Suggestions)
		return nil, rootAssist(len(first.Text)), cerr
	}

	startPos := first.Space + len(first.Text)
	rest := tokens[1:]

	c := r.newClimber(probeOnly, rest)
	node, err := c.GeneralAccess(v, interact.Immut)
	if interact.IsKind(err, interact.NeedMutPath) {
		r.config.logger.Debug("retrying with mutable access", "path", path)
		c = r.newClimber(probeOnly, rest)
		node, err = c.GeneralAccess(v, interact.Mut)
	}
	if err == nil && node != nil {
		node.Resolve()
	}

	return node, charAssist(c, rest, startPos), err
}

func (r *Root) newClimber(probeOnly bool, tokens []token.Token) *interact.Climber {
	return interact.NewClimber(r.config.maxNodes, probeOnly, tokens, interact.WithLogger(r.config.logger))
}

// charAssist converts the climber's position and expectations, counted in
// tokens, into an assist counted in characters of the input.
func charAssist(c *interact.Climber, tokens []token.Token, startPos int) assist.Assist[string] {
	cursor := c.Cursor()
	options := c.Expect().Flatten()

	// A trailing token that every option extends is still being typed.
	partial := 0
	if cursor.HasRemaining() && len(options) > 0 {
		text := cursor.Top().Text
		extended := true
		for _, opt := range options {
			if len(opt) == 0 || !strings.HasPrefix(opt[0].Text, text) {
				extended = false
				break
			}
		}
		if extended {
			partial = len(text)
			cursor.Advance(1)
		}
	}

	valid := min(c.ValidPos, len(tokens))
	pending := max(cursor.Pos()-valid, 0)

	var out assist.Assist[string]
	validLen := startPos
	for _, tok := range tokens[:valid] {
		validLen += tok.Space + len(tok.Text)
	}
	out.Pend(validLen)
	out.CommitPending()

	pendingLen := 0
	for _, tok := range tokens[valid:min(valid+pending, len(tokens))] {
		pendingLen += tok.Space + len(tok.Text)
	}
	out.Pend(pendingLen)

	suggestions := make([]string, 0, len(options))
	for _, opt := range options {
		var b strings.Builder
		for _, tok := range opt {
			b.WriteString(strings.Repeat(" ", min(maxSuggestionSpace, tok.Space)))
			b.WriteString(tok.Text)
		}
		suggestions = append(suggestions, b.String())
	}
	out.SetNextOptions(assist.Avail(pendingLen-partial, suggestions))
	return out
}

// similar returns the names close to an unknown one, best first.
func similar(name string, names []string) []string {
	ranks := fuzzy.RankFindFold(name, names)
	sort.Sort(ranks)

	var out []string
	for _, rank := range ranks {
		out = append(out, rank.Target)
	}
	if len(out) > 0 {
		return out
	}

	for _, n := range names {
		if fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(n)) <= 2 {
			out = append(out, n)
		}
	}
	return out
}

func (r *Root) tokenize(path string) ([]token.Token, error) {
	opts := []lexer.LexerOpt{lexer.WithLogger(r.config.logger)}
	if r.config.lexTrace {
		opts = append(opts, lexer.WithDebug())
	}

	l := lexer.NewLexer(path, opts...)
	tokens, err := l.Tokenize()
	if err != nil {
		for _, ev := range l.DebugEvents() {
			r.config.logger.Debug("lex trace", "event", ev.Event, "pos", ev.Position, "context", ev.Context)
		}
	}
	return tokens, err
}
