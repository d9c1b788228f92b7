// Package lexer turns path expressions into tokens.
//
//	state.m[3]        IDENT DOT IDENT LSQUARE INTEGER RSQUARE
//	foo.bar = -5      IDENT DOT IDENT EQUALS SIGNED_INTEGER
//	c.add((1, 'x'))   IDENT DOT IDENT LPAREN LPAREN INTEGER COMMA CHAR RPAREN RPAREN
//
// Whitespace is not a token; its length is carried by the following token in
// Space so that token positions can be mapped back to the input text.
package lexer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/opal-lang/interact/core/token"
)

// LexerOpt represents a lexer configuration option
type LexerOpt func(*LexerConfig)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff   DebugLevel = iota // No debug info (default)
	DebugPaths                   // Method call tracing
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	debug  DebugLevel
	logger *slog.Logger
}

// WithDebug enables debug event tracing
func WithDebug() LexerOpt {
	return func(c *LexerConfig) {
		c.debug = DebugPaths
	}
}

// WithLogger sets the logger that receives one Debug record per token
func WithLogger(logger *slog.Logger) LexerOpt {
	return func(c *LexerConfig) {
		c.logger = logger
	}
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "enter_lexNumber", "found_identifier", ...
	Position  int    // Byte offset in the input
	Context   string // Current character, token being built, etc.
}

// LexError reports input that looks like a literal but cannot be one, such as
// an integer wider than 64 bits or an unterminated string.
type LexError struct {
	Pos     int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Pos, e.Message)
}

// Lexer tokenizes one expression.
type Lexer struct {
	input    string
	position int

	logger      *slog.Logger
	debugLevel  DebugLevel
	debugEvents []DebugEvent // nil when debug is off
}

// NewLexer creates a new lexer instance with optional configuration
func NewLexer(input string, opts ...LexerOpt) *Lexer {
	config := &LexerConfig{}
	for _, opt := range opts {
		opt(config)
	}

	l := &Lexer{
		input:      input,
		logger:     config.logger,
		debugLevel: config.debug,
	}
	if l.logger == nil {
		l.logger = defaultLogger()
	}
	if config.debug > DebugOff {
		l.debugEvents = make([]DebugEvent, 0, 64)
	}
	return l
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
			// Remove timestamp and level for cleaner output
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Tokenize splits text into tokens.
func Tokenize(text string, opts ...LexerOpt) ([]token.Token, error) {
	return NewLexer(text, opts...).Tokenize()
}

// Tokenize returns all tokens of the input. An ILLEGAL token, when present, is
// the last one.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		space := l.skipWhitespace()
		if l.position >= len(l.input) {
			return tokens, nil
		}

		tok, err := l.lexToken()
		if err != nil {
			l.logger.Debug("lex failed", "error", err)
			return nil, err
		}
		tok.Space = space
		tokens = append(tokens, tok)
		l.logger.Debug("token", "type", tok.Type, "text", tok.Text, "space", space)

		if tok.Type == token.ILLEGAL {
			return tokens, nil
		}
	}
}

// DebugEvents returns debug events (development only)
func (l *Lexer) DebugEvents() []DebugEvent {
	if l.debugLevel == DebugOff || l.debugEvents == nil {
		return nil
	}

	result := make([]DebugEvent, len(l.debugEvents))
	copy(result, l.debugEvents)
	return result
}

func (l *Lexer) recordDebugEvent(event, context string) {
	if l.debugLevel == DebugOff {
		return
	}

	l.debugEvents = append(l.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Position:  l.position,
		Context:   context,
	})
}

// skipWhitespace returns the number of bytes skipped.
func (l *Lexer) skipWhitespace() int {
	start := l.position
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch >= 128 || !isWhitespace[ch] {
			break
		}
		l.position++
	}
	return l.position - start
}

func (l *Lexer) peek(offset int) byte {
	if l.position+offset >= len(l.input) {
		return 0
	}
	return l.input[l.position+offset]
}

func (l *Lexer) lexToken() (token.Token, error) {
	start := l.position
	ch := l.input[l.position]
	l.recordDebugEvent("current_char", string(ch))

	if ch < 128 && isIdentStart[ch] {
		return l.lexIdentifier(), nil
	}
	if ch < 128 && isDigit[ch] {
		return l.lexNumber()
	}

	switch ch {
	case '-':
		if next := l.peek(1); next < 128 && isDigit[next] {
			return l.lexNumber()
		}
	case '\'':
		return l.lexChar()
	case '"':
		return l.lexString()
	case '.':
		if l.peek(1) == '.' {
			if l.peek(2) == '=' {
				l.position += 3
				return token.Token{Type: token.RANGE, Text: l.input[start:l.position], Inclusive: true}, nil
			}
			l.position += 2
			return token.Token{Type: token.RANGE, Text: l.input[start:l.position]}, nil
		}
		l.position++
		return token.New(token.DOT, "."), nil
	}

	if ch < 128 && singleCharTokens[ch] != token.ILLEGAL {
		l.position++
		return token.New(singleCharTokens[ch], l.input[start:l.position]), nil
	}

	// Unrecognized character: emit it alone and stop
	_, size := utf8.DecodeRuneInString(l.input[l.position:])
	l.position += size
	l.recordDebugEvent("found_illegal", l.input[start:l.position])
	return token.New(token.ILLEGAL, l.input[start:l.position]), nil
}

func (l *Lexer) lexIdentifier() token.Token {
	l.recordDebugEvent("enter_lexIdentifier", "reading identifier")
	start := l.position
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch >= 128 || !isIdentPart[ch] {
			break
		}
		l.position++
	}
	return token.Ident(l.input[start:l.position])
}

// lexNumber reads an optionally negative decimal integer.
func (l *Lexer) lexNumber() (token.Token, error) {
	l.recordDebugEvent("enter_lexNumber", "reading integer literal")
	start := l.position
	if l.input[l.position] == '-' {
		l.position++
	}
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch >= 128 || !isDigit[ch] {
			break
		}
		l.position++
	}

	text := l.input[start:l.position]
	if text[0] == '-' {
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return token.Token{}, &LexError{Pos: start, Message: fmt.Sprintf("integer literal %s does not fit in 64 bits", text)}
		}
		return token.Token{Type: token.SIGNED_INTEGER, Text: text, Int: v}, nil
	}

	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return token.Token{}, &LexError{Pos: start, Message: fmt.Sprintf("integer literal %s does not fit in 64 bits", text)}
	}
	return token.Token{Type: token.INTEGER, Text: text, Uint: v}, nil
}

func (l *Lexer) lexChar() (token.Token, error) {
	l.recordDebugEvent("enter_lexChar", "reading char literal")
	start := l.position
	l.position++ // opening quote

	if l.position >= len(l.input) || l.input[l.position] == '\'' {
		return token.Token{}, &LexError{Pos: start, Message: "empty char literal"}
	}

	r, err := l.readLiteralRune()
	if err != nil {
		return token.Token{}, err
	}
	if l.peek(0) != '\'' {
		return token.Token{}, &LexError{Pos: start, Message: "unterminated char literal"}
	}
	l.position++

	return token.Token{Type: token.CHAR, Text: l.input[start:l.position], Char: r}, nil
}

func (l *Lexer) lexString() (token.Token, error) {
	l.recordDebugEvent("enter_lexString", "reading string literal")
	start := l.position
	l.position++ // opening quote

	var b strings.Builder
	for {
		if l.position >= len(l.input) {
			return token.Token{}, &LexError{Pos: start, Message: "unterminated string literal"}
		}
		if l.input[l.position] == '"' {
			l.position++
			break
		}
		r, err := l.readLiteralRune()
		if err != nil {
			return token.Token{}, err
		}
		b.WriteRune(r)
	}

	return token.Token{Type: token.STRING, Text: l.input[start:l.position], Str: b.String()}, nil
}

// readLiteralRune reads one possibly escaped rune of a char or string literal.
func (l *Lexer) readLiteralRune() (rune, error) {
	if l.input[l.position] != '\\' {
		r, size := utf8.DecodeRuneInString(l.input[l.position:])
		l.position += size
		return r, nil
	}

	escapePos := l.position
	l.position++
	if l.position >= len(l.input) {
		return 0, &LexError{Pos: escapePos, Message: "unterminated escape sequence"}
	}

	ch := l.input[l.position]
	l.position++
	switch ch {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\', '\'', '"':
		return rune(ch), nil
	case 'u':
		return l.readUnicodeEscape(escapePos)
	default:
		return 0, &LexError{Pos: escapePos, Message: fmt.Sprintf("unknown escape sequence \\%c", ch)}
	}
}

// readUnicodeEscape reads the {XXXX} part of a \u{XXXX} escape.
func (l *Lexer) readUnicodeEscape(escapePos int) (rune, error) {
	if l.peek(0) != '{' {
		return 0, &LexError{Pos: escapePos, Message: "expected { after \\u"}
	}
	l.position++

	start := l.position
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch >= 128 || !isHexDigit[ch] {
			break
		}
		l.position++
	}
	digits := l.input[start:l.position]

	if l.peek(0) != '}' || digits == "" || len(digits) > 6 {
		return 0, &LexError{Pos: escapePos, Message: "malformed unicode escape"}
	}
	l.position++

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, &LexError{Pos: escapePos, Message: fmt.Sprintf("invalid unicode scalar \\u{%s}", digits)}
	}
	return rune(v), nil
}
