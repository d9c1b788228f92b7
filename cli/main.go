package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opal-lang/interact/core/nodetree/formatter"
	"github.com/opal-lang/interact/runtime/prompt"
)

// Version is the version of the interact tool, checked against a config's
// `requires`.
const Version = "0.1.0"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "interact",
		Short:         "Explore and modify a live value graph with path expressions",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, opts, stdout, stderr)
		},
	}

	// Add flags
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().IntVar(&opts.maxNodes, "max-nodes", 0, "Render budget per query (overrides config)")

	rootCmd.AddCommand(
		newReplCmd(opts, stdout, stderr),
		newEvalCmd(opts, stdout, stderr),
		newWatchCmd(opts, stdout, stderr),
		newSnapshotCmd(opts, stdout, stderr),
	)
	return rootCmd
}

// reportErrors prints err the way every subcommand does and hands it back
// so the exit code is set.
func reportErrors(stderr io.Writer, opts *globalOptions, err error) error {
	if err != nil {
		FormatError(stderr, err, ShouldUseColor(opts.noColor, ""))
	}
	return err
}

func newReplCmd(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, opts, stdout, stderr)
		},
	}
}

func runRepl(cmd *cobra.Command, opts *globalOptions, stdout, stderr io.Writer) error {
	s, err := newSession(cmd, opts, stderr)
	if err != nil {
		return reportErrors(stderr, opts, err)
	}
	defer s.Close()

	p := prompt.New(s.graph.root, s.settings, prompt.WithOutput(stdout), prompt.WithLogger(s.logger))
	return reportErrors(stderr, opts, p.Run(contextOf(cmd)))
}

func newEvalCmd(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	var eo evalOptions

	cmd := &cobra.Command{
		Use:   "eval EXPR",
		Short: "Evaluate one expression and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts, stderr)
			if err != nil {
				return reportErrors(stderr, opts, err)
			}
			defer s.Close()

			if err := s.evaluate(stdout, args[0], eo); err != nil {
				FormatError(stderr, err, s.settings.Color)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&eo.probe, "probe", false, "Evaluate without performing assignments or calls")
	cmd.Flags().BoolVar(&eo.json, "json", false, "Print the result as JSON")
	cmd.Flags().StringVar(&eo.jq, "jq", "", "Filter the JSON result with a jq expression")
	cmd.Flags().StringVar(&eo.snapshot, "snapshot", "", "Store the result in a snapshot file")
	return cmd
}

func newWatchCmd(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "Evaluate every line of FILE, again on each change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, opts, stderr)
			if err != nil {
				return reportErrors(stderr, opts, err)
			}
			defer s.Close()

			return reportErrors(stderr, opts, s.watch(contextOf(cmd), stdout, args[0]))
		},
	}
}

func newSnapshotCmd(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect stored snapshots",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show FILE",
		Short: "Pretty-print a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := formatter.DefaultSettings()
			settings.Color = ShouldUseColor(opts.noColor, "")
			return reportErrors(stderr, opts, showSnapshot(stdout, args[0], settings))
		},
	})
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
