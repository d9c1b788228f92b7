package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

var (
	errInterrupted = errors.New("interrupted")
	errWatchClosed = errors.New("watcher closed")
)

// watch evaluates the script at path now and again after every write to it,
// until ctx is done or an interrupt arrives.
func (s *session) watch(ctx context.Context, w io.Writer, path string) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return &CLIError{Type: "watch", Message: fmt.Sprintf("cannot watch %s", path), Details: err.Error()}
	}

	if err := s.evalScript(w, path); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-sigs:
			return errInterrupted
		case <-gctx.Done():
			return nil
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return errWatchClosed
				}
				if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				s.logger.Debug("script changed", "path", path, "op", ev.Op.String())
				if err := s.evalScript(w, path); err != nil {
					return err
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return errWatchClosed
				}
				return &CLIError{Type: "watch", Message: fmt.Sprintf("watching %s failed", path), Details: err.Error()}
			}
		}
	})

	err = g.Wait()
	if errors.Is(err, errInterrupted) || errors.Is(err, errWatchClosed) {
		return nil
	}
	return err
}
