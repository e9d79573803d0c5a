package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CycleFunc runs one scan/resolve/commit pass. done stops the watcher
// cleanly; a non-nil error stops it with that error.
type CycleFunc func(ctx context.Context) (done bool, err error)

// Watcher blocks until the watched directory changes and runs a cycle.
type Watcher interface {
	Run(ctx context.Context, cycle CycleFunc) error
}

// ErrWatchInit marks failures to set up change notification.
var ErrWatchInit = errors.New("watch init failed")

// DirWatcher watches a directory for entry creation and removal using
// inotify through fsnotify.
type DirWatcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// NewDirWatcher creates a watcher for dir. A positive debounce coalesces
// bursts of events into one cycle.
func NewDirWatcher(dir string, debounce time.Duration, logger *slog.Logger) *DirWatcher {
	return &DirWatcher{dir: dir, debounce: debounce, logger: logger}
}

// Run registers the watch, runs an initial cycle, then one cycle per wake.
// Blocks until ctx is cancelled, a cycle reports done, or a cycle fails.
func (w *DirWatcher) Run(ctx context.Context, cycle CycleFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: inotify init: %w", ErrWatchInit, err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("%w: add watch %s: %w", ErrWatchInit, w.dir, err)
	}

	if done, err := cycle(ctx); done || err != nil {
		return err
	}

	// Single debounce timer, reset on each event. Stopped until the
	// first event arrives; nil channel when debounce is disabled.
	var debounceC <-chan time.Time
	var debounceTimer *time.Timer
	if w.debounce > 0 {
		debounceTimer = time.NewTimer(w.debounce)
		debounceTimer.Stop()
		defer debounceTimer.Stop()
		debounceC = debounceTimer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounceC:
			if done, err := cycle(ctx); done || err != nil {
				return err
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isEntryChange(event) {
				continue
			}
			w.logger.Debug("watch event", "op", event.Op.String(), "name", event.Name)

			if debounceTimer == nil {
				if done, err := cycle(ctx); done || err != nil {
					return err
				}
				continue
			}
			debounceTimer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
			// Lost events are harmless: a full rescan recovers the state.
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				if done, err := cycle(ctx); done || err != nil {
					return err
				}
			}
		}
	}
}

// isEntryChange reports whether the event adds or removes a directory entry.
func isEntryChange(event fsnotify.Event) bool {
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// PollWatcher detects directory changes by comparing listings.
// Used on kernels built without inotify.
type PollWatcher struct {
	dir      string
	interval time.Duration
	logger   *slog.Logger
}

// NewPollWatcher creates a polling-based watcher.
func NewPollWatcher(dir string, interval time.Duration, logger *slog.Logger) *PollWatcher {
	if interval <= 0 {
		interval = pollDefault
	}
	return &PollWatcher{dir: dir, interval: interval, logger: logger}
}

// pollDefault is the polling interval when none is configured.
const pollDefault = 2 * time.Second

// Run polls the directory. Blocks until ctx is cancelled, a cycle
// reports done, or a cycle fails.
func (w *PollWatcher) Run(ctx context.Context, cycle CycleFunc) error {
	last, err := listNames(w.dir)
	if err != nil {
		return fmt.Errorf("%w: list %s: %w", ErrWatchInit, w.dir, err)
	}
	if done, err := cycle(ctx); done || err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			names, err := listNames(w.dir)
			if err != nil {
				// Let the cycle's own scan report the failure.
				names = nil
			}
			if err == nil && slices.Equal(names, last) {
				continue
			}
			last = names
			if done, err := cycle(ctx); done || err != nil {
				return err
			}
		}
	}
}

func listNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
