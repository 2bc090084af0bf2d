// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package watch implements the exchange-directory bridge for hosts that
// cannot invoke the CLI directly: the host drops <stem>.suggestions.txt next
// to an exported snapshot, and the watcher runs a pass for each settled pair.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// suggestionsSuffix marks a drop file holding raw suggestion text.
	suggestionsSuffix = ".suggestions.txt"

	// defaultDebounce is how long a drop file must stay quiet before it is
	// considered fully written. Editors and hosts often write in bursts.
	defaultDebounce = 500 * time.Millisecond

	// sweepInterval is how often settled drops are collected.
	sweepInterval = 100 * time.Millisecond
)

// PassFunc runs one pass over a snapshot with pre-supplied suggestion text.
type PassFunc func(ctx context.Context, snapshotPath, responseText string) error

// Config holds watcher settings.
type Config struct {
	Dir      string        // Exchange directory to watch (required)
	Debounce time.Duration // Settle window; zero means defaultDebounce
	Logger   *zap.Logger   // nil falls back to a no-op logger
}

func (c Config) debounce() time.Duration {
	if c.Debounce <= 0 {
		return defaultDebounce
	}
	return c.Debounce
}

// Watcher turns drop files into passes, one at a time.
type Watcher struct {
	cfg Config
	run PassFunc
	log *zap.Logger
	fsw *fsnotify.Watcher
}

// New creates a Watcher and registers the exchange directory with the
// filesystem notifier, so drops written after New returns are never missed.
// The pass function is invoked serially: the bridge never runs two passes
// at once.
func New(cfg Config, run PassFunc) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if run == nil {
		return nil, fmt.Errorf("pass function is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(cfg.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", cfg.Dir, err)
	}

	return &Watcher{cfg: cfg, run: run, log: log, fsw: fsw}, nil
}

// Run processes drops until the context is cancelled. Cancellation is a
// clean shutdown, not an error. Run consumes the watcher; call it once.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.log.Info("watching exchange directory", zap.String("dir", w.cfg.Dir))

	pending := make(chan string, 16)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.watch(ctx, pending) })
	g.Go(func() error { return w.work(ctx, pending) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watch collects filesystem events and forwards drop files that have stayed
// quiet for the settle window. It owns the pending channel.
func (w *Watcher) watch(ctx context.Context, pending chan<- string) error {
	defer close(pending)

	seen := make(map[string]time.Time)

	// Drops that were already waiting when the bridge started.
	if entries, err := os.ReadDir(w.cfg.Dir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), suggestionsSuffix) {
				seen[filepath.Join(w.cfg.Dir, e.Name())] = time.Now()
			}
		}
	}

	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, suggestionsSuffix) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			seen[event.Name] = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-sweep.C:
			now := time.Now()
			for path, stamp := range seen {
				if now.Sub(stamp) < w.cfg.debounce() {
					continue
				}
				delete(seen, path)
				select {
				case pending <- path:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// work runs passes for settled drops, strictly one at a time.
func (w *Watcher) work(ctx context.Context, pending <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-pending:
			if !ok {
				return nil
			}
			w.process(ctx, path)
		}
	}
}

// process runs one pass for a settled drop file. Failures are logged, not
// returned: one bad drop must not stop the bridge.
func (w *Watcher) process(ctx context.Context, dropPath string) {
	text, err := os.ReadFile(dropPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Deleted before it settled.
			return
		}
		w.log.Warn("reading drop file", zap.String("path", dropPath), zap.Error(err))
		return
	}
	if strings.TrimSpace(string(text)) == "" {
		w.log.Warn("ignoring empty drop file", zap.String("path", dropPath))
		return
	}

	snapPath, err := pairedSnapshot(dropPath)
	if err != nil {
		w.log.Warn("orphan drop file", zap.String("path", dropPath), zap.Error(err))
		return
	}

	w.log.Info("running pass", zap.String("snapshot", snapPath))
	if err := w.run(ctx, snapPath, string(text)); err != nil {
		w.log.Warn("pass failed", zap.String("snapshot", snapPath), zap.Error(err))
		return
	}

	// Consume the drop so the host can tell the pass finished. The report
	// written next to the snapshot is the success signal.
	if err := os.Remove(dropPath); err != nil && !os.IsNotExist(err) {
		w.log.Warn("removing drop file", zap.String("path", dropPath), zap.Error(err))
	}
}

// pairedSnapshot finds the snapshot a drop file belongs to:
// fn.suggestions.txt pairs with fn.json, fn.yaml, or fn.yml, in that order.
func pairedSnapshot(dropPath string) (string, error) {
	stem := strings.TrimSuffix(dropPath, suggestionsSuffix)
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		candidate := stem + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no snapshot found for %s", filepath.Base(dropPath))
}
