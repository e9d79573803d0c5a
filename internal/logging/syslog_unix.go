//go:build !windows && !plan9

package logging

import (
	"context"
	"log/slog"
	"log/syslog"
	"strings"
)

// syslogHandler forwards records to the local system log at the matching priority.
type syslogHandler struct {
	writer *syslog.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
}

func newSyslogHandler(tag string, lvl *slog.LevelVar) (slog.Handler, error) {
	w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, tag)
	if err != nil {
		return nil, err
	}
	return &syslogHandler{writer: w, level: lvl}, nil
}

func (h *syslogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *syslogHandler) Handle(_ context.Context, record slog.Record) error {
	var kvs []kv
	for _, attr := range h.attrs {
		flattenAttr(&kvs, h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	var b strings.Builder
	b.WriteString(record.Message)
	for _, kv := range kvs {
		b.WriteByte(' ')
		b.WriteString(kv.key)
		b.WriteByte('=')
		b.WriteString(formatValue(kv.value))
	}
	msg := b.String()

	switch {
	case record.Level >= slog.LevelError:
		return h.writer.Err(msg)
	case record.Level >= slog.LevelWarn:
		return h.writer.Warning(msg)
	case record.Level >= slog.LevelInfo:
		return h.writer.Info(msg)
	default:
		return h.writer.Debug(msg)
	}
}

func (h *syslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *syslogHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}
