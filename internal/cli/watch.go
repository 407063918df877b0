package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/idilsaglam/todo/internal/app"
	"github.com/idilsaglam/todo/internal/kv"
	"github.com/idilsaglam/todo/internal/ui"
)

const watchDebounce = 200 * time.Millisecond

// watch re-renders the list whenever another process rewrites the storage
// file, until ctx is cancelled (Ctrl+C).
func (r *runner) watch(ctx context.Context, a *app.App) error {
	var target string
	switch r.cfg.Storage.Backend {
	case kv.BackendFile, "":
		target = r.cfg.Storage.File
	case kv.BackendSQLite:
		target = r.cfg.Storage.SQLiteFile
	default:
		return usagef("--watch needs the file or sqlite backend, not %q", r.cfg.Storage.Backend)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: the file backend replaces its file by rename.
	if err := watcher.Add(r.cfg.Storage.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", r.cfg.Storage.Dir, err)
	}

	r.render(a.Store.Items())
	ui.Hint(r.opt.Stderr, "Watching for changes... (Press Ctrl+C to exit)")

	refresh := func() {
		if err := a.Reload(ctx); err != nil {
			r.logger.Warn("reload failed", "err", err)
		}
		fmt.Fprintln(r.opt.Stdout)
		r.render(a.Store.Items())
	}
	err = watchLoop(ctx, watcher.Events, watcher.Errors, storageMatcher(target), watchDebounce, refresh, r.logger)
	ui.Hint(r.opt.Stderr, "Stopped watching.")
	return err
}

// storageMatcher accepts events on the storage file and, for SQLite, its
// journal files.
func storageMatcher(name string) func(string) bool {
	return func(path string) bool {
		base := filepath.Base(path)
		return base == name || strings.HasPrefix(base, name+"-")
	}
}

// watchLoop calls refresh once per burst of matching write events. It returns
// nil when ctx is done or the event channel closes.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	match func(string) bool, debounce time.Duration, refresh func(), logger *log.Logger) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !match(event.Name) {
				continue
			}
			logger.Debug("storage changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			refresh()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
