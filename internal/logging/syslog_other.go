//go:build windows || plan9

package logging

import (
	"errors"
	"log/slog"
)

func newSyslogHandler(string, *slog.LevelVar) (slog.Handler, error) {
	return nil, errors.New("syslog is not supported on this platform")
}
