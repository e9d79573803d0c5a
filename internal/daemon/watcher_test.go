package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/tegra-fqd/internal/logging"
)

func countingCycle(n *atomic.Int32) CycleFunc {
	return func(context.Context) (bool, error) {
		n.Add(1)
		return false, nil
	}
}

func TestDirWatcherRunsInitialCycle(t *testing.T) {
	dir := t.TempDir()
	var cycles atomic.Int32
	w := NewDirWatcher(dir, 0, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, countingCycle(&cycles)) }()

	waitFor(t, func() bool { return cycles.Load() == 1 })
}

func TestDirWatcherCreateAndRemove(t *testing.T) {
	dir := t.TempDir()
	var cycles atomic.Int32
	w := NewDirWatcher(dir, 0, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, countingCycle(&cycles)) }()
	waitFor(t, func() bool { return cycles.Load() == 1 })

	path := filepath.Join(dir, "screen_on")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return cycles.Load() >= 2 })

	before := cycles.Load()
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return cycles.Load() > before })
}

func TestDirWatcherIgnoresContentWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audio_on")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}

	var cycles atomic.Int32
	w := NewDirWatcher(dir, 0, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, countingCycle(&cycles)) }()
	waitFor(t, func() bool { return cycles.Load() == 1 })

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.Write([]byte("1"))
	_ = f.Close()

	time.Sleep(200 * time.Millisecond)
	if n := cycles.Load(); n != 1 {
		t.Errorf("content write triggered a cycle: %d cycles", n)
	}
}

func TestDirWatcherDebounceCoalesces(t *testing.T) {
	dir := t.TempDir()
	var cycles atomic.Int32
	w := NewDirWatcher(dir, 150*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, countingCycle(&cycles)) }()
	waitFor(t, func() bool { return cycles.Load() == 1 })

	for _, name := range []string{"screen_on", "audio_on", "a2dp_on", "mtp_on"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool { return cycles.Load() == 2 })
	time.Sleep(300 * time.Millisecond)
	if n := cycles.Load(); n != 2 {
		t.Errorf("expected burst coalesced into one cycle, got %d cycles total", n)
	}
}

func TestDirWatcherStopsWhenDone(t *testing.T) {
	dir := t.TempDir()
	w := NewDirWatcher(dir, 0, logging.NewNop())
	err := w.Run(context.Background(), func(context.Context) (bool, error) { return true, nil })
	if err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
}

func TestDirWatcherPropagatesCycleError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("scan failed")
	w := NewDirWatcher(dir, 0, logging.NewNop())
	if err := w.Run(context.Background(), func(context.Context) (bool, error) { return true, boom }); !errors.Is(err, boom) {
		t.Errorf("Run = %v, want %v", err, boom)
	}
}

func TestDirWatcherContextCancellation(t *testing.T) {
	dir := t.TempDir()
	w := NewDirWatcher(dir, 0, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var cycles atomic.Int32
	go func() { done <- w.Run(ctx, countingCycle(&cycles)) }()

	waitFor(t, func() bool { return cycles.Load() == 1 })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil error on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}

func TestDirWatcherMissingDir(t *testing.T) {
	w := NewDirWatcher(filepath.Join(t.TempDir(), "absent"), 0, logging.NewNop())
	var cycles atomic.Int32
	err := w.Run(context.Background(), countingCycle(&cycles))
	if !errors.Is(err, ErrWatchInit) {
		t.Fatalf("Run = %v, want ErrWatchInit", err)
	}
	if cycles.Load() != 0 {
		t.Error("no cycle should run without a watch")
	}
}

func TestPollWatcherDetectsChange(t *testing.T) {
	dir := t.TempDir()
	var cycles atomic.Int32
	w := NewPollWatcher(dir, 30*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, countingCycle(&cycles)) }()
	waitFor(t, func() bool { return cycles.Load() == 1 })

	if err := os.WriteFile(filepath.Join(dir, "mtp_on"), nil, 0600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return cycles.Load() == 2 })
}

func TestPollWatcherDoesNotRepeat(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "screen_on"), nil, 0600); err != nil {
		t.Fatal(err)
	}
	var cycles atomic.Int32
	w := NewPollWatcher(dir, 20*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, countingCycle(&cycles)) }()

	time.Sleep(200 * time.Millisecond)
	if n := cycles.Load(); n != 1 {
		t.Errorf("unchanged directory should cycle once, got %d", n)
	}
}

func TestPollWatcherMissingDir(t *testing.T) {
	w := NewPollWatcher(filepath.Join(t.TempDir(), "absent"), 0, logging.NewNop())
	var cycles atomic.Int32
	if err := w.Run(context.Background(), countingCycle(&cycles)); !errors.Is(err, ErrWatchInit) {
		t.Fatalf("Run = %v, want ErrWatchInit", err)
	}
}

func TestIsEntryChange(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want bool
	}{
		{fsnotify.Create, true},
		{fsnotify.Remove, true},
		{fsnotify.Rename, true},
		{fsnotify.Write, false},
		{fsnotify.Chmod, false},
		{fsnotify.Create | fsnotify.Write, true},
	}
	for _, tt := range tests {
		if got := isEntryChange(fsnotify.Event{Name: "x", Op: tt.op}); got != tt.want {
			t.Errorf("isEntryChange(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}
