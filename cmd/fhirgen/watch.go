package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(logger loggerFunc) *cobra.Command {
	var (
		f        projectFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [flags] [path...]",
		Short: "Regenerate whenever the schemas change",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger(cmd)
			p, err := f.project(cmd, args, log)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			w := &watcher{project: p, debounce: debounce, logger: log}
			return w.run(ctx)
		},
	}
	f.register(cmd, true)
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before regenerating")
	return cmd
}

// watcher regenerates a project when its schema files change. Bursts of
// events within the debounce period trigger a single run. Besides the
// project paths, every document reached through an include is watched.
type watcher struct {
	project  *project
	debounce time.Duration
	logger   *slog.Logger
	// done, if set, is called after every generation attempt.
	done func(error)

	fw      *fsnotify.Watcher
	watched map[string]bool
}

func (w *watcher) run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	w.fw, w.watched = fw, make(map[string]bool)
	for _, p := range w.project.paths {
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("fhirgen: watch %s: %w", p, err)
		}
		if abs, err := filepath.Abs(p); err == nil {
			w.watched[abs] = true
		}
	}
	w.regenerate(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !schemaChange(ev) {
				continue
			}
			w.logger.Debug("schema changed", "file", ev.Name, "op", ev.Op.String())
			if ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
				// The watch on a replaced file is gone; the next run adds it again.
				if abs, err := filepath.Abs(ev.Name); err == nil {
					delete(w.watched, abs)
				}
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-timer.C:
			w.regenerate(ctx)
		}
	}
}

func schemaChange(ev fsnotify.Event) bool {
	return filepath.Ext(ev.Name) == ".xsd" &&
		ev.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename)
}

func (w *watcher) regenerate(ctx context.Context) {
	start := time.Now()
	g, err := w.project.graph()
	if err == nil {
		w.track(g.Schema.Files())
		err = g.Gen(ctx)
	}
	if err != nil {
		w.logger.Error("generation failed", "error", err)
	} else {
		w.logger.Info("regenerated", "took", time.Since(start))
	}
	if w.done != nil {
		w.done(err)
	}
}

// track adds the given schema documents to the watch list.
func (w *watcher) track(files []string) {
	for _, f := range files {
		if w.watched[f] || w.watched[filepath.Dir(f)] {
			continue
		}
		if err := w.fw.Add(f); err != nil {
			w.logger.Warn("cannot watch schema", "file", f, "error", err)
			continue
		}
		w.watched[f] = true
		w.logger.Debug("watching included schema", "file", f)
	}
}
