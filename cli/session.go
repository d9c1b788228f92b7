package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/opal-lang/interact/core/nodetree/formatter"
	"github.com/opal-lang/interact/runtime/prompt"
	"github.com/opal-lang/interact/runtime/root"
)

// globalOptions are the persistent flags.
type globalOptions struct {
	configPath string
	debug      bool
	noColor    bool
	maxNodes   int
}

// session is everything a command needs: the merged settings and the graph.
type session struct {
	graph    *demoGraph
	logger   *slog.Logger
	settings prompt.Settings
}

func newSession(cmd *cobra.Command, opts *globalOptions, stderr io.Writer) (*session, error) {
	cfg := &Config{}
	if opts.configPath != "" {
		var err error
		if cfg, err = LoadConfigFile(opts.configPath); err != nil {
			return nil, err
		}
	}

	logger := newLogger(stderr, opts.debug)

	maxNodes := root.DefaultMaxNodes
	if cfg.MaxNodes > 0 {
		maxNodes = cfg.MaxNodes
	}
	if cmd.Flags().Changed("max-nodes") {
		maxNodes = opts.maxNodes
	}

	settings := prompt.DefaultSettings()
	settings.HistoryFile = cfg.HistoryFile
	settings.InitialCommand = cfg.InitialCommand
	settings.Color = ShouldUseColor(opts.noColor, cfg.Color)
	if cfg.IndentStep > 0 {
		settings.IndentStep = cfg.IndentStep
	}
	switch {
	case cfg.MaxLineLength > 0:
		settings.MaxLineLength = cfg.MaxLineLength
	case isTerminal(os.Stdout):
		if width, ok := terminalWidth(os.Stdout); ok {
			settings.MaxLineLength = width
		}
	}

	logger.Debug("session", "max_nodes", maxNodes, "line_length", settings.MaxLineLength, "color", settings.Color)

	return &session{
		graph:    newDemoGraph(rootOptions(opts, maxNodes, logger)...),
		logger:   logger,
		settings: settings,
	}, nil
}

func rootOptions(opts *globalOptions, maxNodes int, logger *slog.Logger) []root.Option {
	ropts := []root.Option{root.WithMaxNodes(maxNodes), root.WithLogger(logger)}
	if opts.debug {
		ropts = append(ropts, root.WithLexTrace())
	}
	return ropts
}

// newLogger returns a debug logger on w when debug is set, and a discarding
// one otherwise.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	if !debug {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func (s *session) Close() {
	s.graph.Close()
}

func (s *session) formatterSettings() formatter.Settings {
	return formatter.Settings{
		MaxLineLength: s.settings.MaxLineLength,
		IndentStep:    s.settings.IndentStep,
		Color:         s.settings.Color,
	}
}
