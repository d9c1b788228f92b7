package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opal-lang/interact/core/nodetree"
	"github.com/opal-lang/interact/core/nodetree/formatter"
	"github.com/opal-lang/interact/core/snapshot"
)

// evalOptions select how one evaluation is run and printed.
type evalOptions struct {
	probe    bool
	json     bool
	jq       string
	snapshot string // file to store the result in
}

// evaluate runs expr and writes its result to w.
func (s *session) evaluate(w io.Writer, expr string, opts evalOptions) error {
	query := s.graph.root.Access
	if opts.probe {
		query = s.graph.root.Probe
	}

	node, a, err := query(expr)
	if err != nil {
		s.logger.Debug("evaluation failed", "expr", expr, "error", err)
		return &EvalError{Expr: expr, Assist: a, Err: err}
	}
	if node == nil {
		return nil
	}

	if opts.snapshot != "" {
		if err := writeSnapshotFile(opts.snapshot, expr, node); err != nil {
			return err
		}
	}

	switch {
	case opts.jq != "":
		return runJQ(w, node, opts.jq)
	case opts.json:
		return writeJSON(w, node)
	}
	formatter.Format(w, node, s.formatterSettings())
	return nil
}

func writeSnapshotFile(path, expr string, node *nodetree.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return &CLIError{Type: "snapshot", Message: fmt.Sprintf("cannot create snapshot %s", path), Details: err.Error()}
	}
	defer func() { _ = f.Close() }()

	if _, err := snapshot.Write(f, expr, node); err != nil {
		return &CLIError{Type: "snapshot", Message: "cannot encode snapshot", Details: err.Error()}
	}
	return f.Close()
}

// showSnapshot prints the query and tree stored at path.
func showSnapshot(w io.Writer, path string, settings formatter.Settings) error {
	f, err := os.Open(path)
	if err != nil {
		return &CLIError{Type: "snapshot", Message: fmt.Sprintf("cannot open snapshot %s", path), Details: err.Error()}
	}
	defer func() { _ = f.Close() }()

	snap, digest, err := snapshot.Read(f)
	if err != nil {
		return &CLIError{
			Type:    "snapshot",
			Message: fmt.Sprintf("cannot read snapshot %s", path),
			Details: err.Error(),
			Hint:    "Snapshots are written by `interact eval --snapshot FILE`",
		}
	}

	_, _ = fmt.Fprintf(w, "%s %s\n", Colorize(">>>", ColorCyan, settings.Color), snap.Query)
	_, _ = fmt.Fprintf(w, "digest: %x\n", digest)
	formatter.Format(w, snap.Tree, settings)
	return nil
}

// evalScript evaluates every non-empty line of the script at path. Lines
// starting with # are comments. Failed lines are reported on w and do not
// stop the script.
func (s *session) evalScript(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &CLIError{Type: "watch", Message: fmt.Sprintf("cannot read script %s", path), Details: err.Error()}
	}

	// Output is built first so a re-run prints in one write.
	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		_, _ = fmt.Fprintf(&out, "%s %s\n", Colorize(">>>", ColorCyan, s.settings.Color), line)
		if err := s.evaluate(&out, line, evalOptions{}); err != nil {
			FormatError(&out, err, s.settings.Color)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	_, err = w.Write(out.Bytes())
	return err
}
