package sysfs

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
)

// Writer writes an integer directive to a control file.
type Writer interface {
	Write(path string, value int) error
}

// FileWriter writes to real control files. Files are never created or
// truncated: a missing surface on an unsupported kernel is an error for
// that surface only.
type FileWriter struct{}

// Write opens path write-only and writes value as a decimal string in a
// single write call.
func (FileWriter) Write(path string, value int) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(strconv.Itoa(value))); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// BestEffort performs a write whose failure is logged and discarded.
// It reports whether the write succeeded.
func BestEffort(logger *slog.Logger, w Writer, path string, value int) bool {
	if err := w.Write(path, value); err != nil {
		logger.Error("control surface write failed", "path", path, "value", value, "error", err)
		return false
	}
	logger.Debug("wrote control surface", "path", path, "value", value)
	return true
}

// Op is one recorded write.
type Op struct {
	Path  string
	Value int
}

// Recorder captures writes in order. Paths listed in Fail return an error.
type Recorder struct {
	mu   sync.Mutex
	ops  []Op
	Fail map[string]error
}

// Write records the write.
func (r *Recorder) Write(path string, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Path: path, Value: value})
	if err, ok := r.Fail[path]; ok {
		return err
	}
	return nil
}

// Ops returns a copy of the recorded writes.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Reset drops all recorded writes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}
