// Package prompt is an interactive shell over a root: it reads expressions
// with line editing and tab completion, evaluates them and pretty-prints the
// results.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/opal-lang/interact/core/assist"
	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/core/nodetree/formatter"
	"github.com/opal-lang/interact/runtime/interact"
	"github.com/opal-lang/interact/runtime/root"
)

const banner = "Go `interact`, type '?' for more information"

// Settings configure a prompt.
type Settings struct {
	// HistoryFile, when set, is loaded on start and saved on exit.
	HistoryFile string
	// InitialCommand is echoed and run before the first prompt.
	InitialCommand string

	MaxLineLength int
	IndentStep    int
	Color         bool
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	f := formatter.DefaultSettings()
	return Settings{MaxLineLength: f.MaxLineLength, IndentStep: f.IndentStep}
}

// Interaction is one event read from the terminal.
type Interaction struct {
	Kind InteractionKind
	Line string // Line
}

// InteractionKind classifies an Interaction.
type InteractionKind int

const (
	Line InteractionKind = iota
	CtrlC
	CtrlD
	Err
)

// Response tells the prompt whether to keep reading.
type Response int

const (
	Continue Response = iota
	Exit
)

// Handler receives every interaction. Embedders implement it to intercept
// lines or keys before, or instead of, the default behavior.
type Handler interface {
	Receive(p *Prompt, intr Interaction) Response
}

// DefaultHandler runs lines as commands and exits on Ctrl-C and Ctrl-D.
type DefaultHandler struct{}

func (DefaultHandler) Receive(p *Prompt, intr Interaction) Response {
	switch intr.Kind {
	case Line:
		return p.HandleLine(intr.Line)
	case CtrlC, CtrlD:
		return Exit
	}
	return Continue
}

// Opt represents a prompt configuration option
type Opt func(*Prompt)

// WithHandler replaces the default handler.
func WithHandler(h Handler) Opt {
	return func(p *Prompt) {
		p.handler = h
	}
}

// WithOutput sets where results are printed.
func WithOutput(w io.Writer) Opt {
	return func(p *Prompt) {
		p.out = w
	}
}

// WithLogger sets the logger for prompt events.
func WithLogger(logger *slog.Logger) Opt {
	return func(p *Prompt) {
		p.logger = logger
	}
}

// Prompt evaluates lines against a root.
type Prompt struct {
	root     *root.Root
	settings Settings
	commands map[string]Command
	handler  Handler
	out      io.Writer
	logger   *slog.Logger
}

// New creates a prompt over r.
func New(r *root.Root, settings Settings, opts ...Opt) *Prompt {
	p := &Prompt{
		root:     r,
		settings: settings,
		commands: make(map[string]Command),
		handler:  DefaultHandler{},
		out:      os.Stdout,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, cmd := range []Command{helpCommand{}, exitCommand{}} {
		p.commands[cmd.Name()] = cmd
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run reads and handles lines until the handler answers Exit or the input
// ends. A canceled ctx stops the loop after the current line.
func (p *Prompt) Run(ctx context.Context) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetTabCompletionStyle(liner.TabPrints)
	ln.SetWordCompleter(p.complete)

	p.printf("%s\n", banner)

	if p.settings.HistoryFile != "" {
		if f, err := os.Open(p.settings.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer p.saveHistory(ln)
	}

	if cmd := p.settings.InitialCommand; cmd != "" {
		p.printf("%s\n", cmd)
		if p.handler.Receive(p, Interaction{Kind: Line, Line: cmd}) == Exit {
			return nil
		}
	}

	promptText := formatter.Colorize(">>>", formatter.ColorBold, p.settings.Color) + " "
	for ctx.Err() == nil {
		line, err := ln.Prompt(promptText)

		var intr Interaction
		switch {
		case err == nil:
			if strings.TrimSpace(line) != "" {
				ln.AppendHistory(line)
			}
			intr = Interaction{Kind: Line, Line: line}
		case errors.Is(err, liner.ErrPromptAborted):
			intr = Interaction{Kind: CtrlC}
		case errors.Is(err, io.EOF):
			intr = Interaction{Kind: CtrlD}
		default:
			p.logger.Debug("prompt read failed", "error", err)
			intr = Interaction{Kind: Err}
		}

		if p.handler.Receive(p, intr) == Exit {
			break
		}
	}
	return nil
}

func (p *Prompt) saveHistory(ln *liner.State) {
	f, err := os.Create(p.settings.HistoryFile)
	if err != nil {
		p.logger.Debug("cannot save history", "file", p.settings.HistoryFile, "error", err)
		return
	}
	defer f.Close()
	_, _ = ln.WriteHistory(f)
}

// complete adapts NextOptions to liner: the line is split at the position
// the options apply from.
func (p *Prompt) complete(line string, pos int) (head string, completions []string, tail string) {
	a := p.NextOptions(line, pos)
	from, items := a.Next.IntoPosition(a.Valid)
	from = min(from, pos)
	return line[:from], items, line[pos:]
}

func (p *Prompt) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Prompt) formatterSettings() formatter.Settings {
	return formatter.Settings{
		MaxLineLength: p.settings.MaxLineLength,
		IndentStep:    p.settings.IndentStep,
		Color:         p.settings.Color,
	}
}

func (p *Prompt) printNode(n *nodetree.Node) {
	formatter.Format(p.out, n, p.formatterSettings())
}

// printError shows the error kind and the input with its understood part
// highlighted.
func (p *Prompt) printError(line string, a assist.Assist[string], err error) {
	p.printf("%s\n", formatter.Colorize(errorKind(err), formatter.ColorRed, p.settings.Color))

	var ce *interact.ClimbError
	if errors.As(err, &ce) && len(ce.Suggestions) > 0 {
		p.printf("did you mean: %s?\n", strings.Join(ce.Suggestions, ", "))
	}
	if line != "" {
		p.printf("    %s\n", Highlight(line, a, p.settings.Color))
	}
}

// paint colors s, leaving empty strings alone.
func paint(s, color string, on bool) string {
	if s == "" {
		return ""
	}
	return formatter.Colorize(s, color, on)
}
