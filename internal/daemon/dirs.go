package daemon

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/tegra-fqd/internal/config"
)

// EnsureWatchDir creates the flag directory and hands it to the flag
// setter's uid/gid. The mode is applied only when the directory is created.
// Every step is attempted; the joined error lists what failed.
func EnsureWatchDir(w config.Watch) error {
	var errs []error

	if _, err := os.Stat(w.Dir); os.IsNotExist(err) {
		if err := os.MkdirAll(w.Dir, w.Mode.Perm()); err != nil {
			return fmt.Errorf("create directory %s: %w", w.Dir, err)
		}
		// MkdirAll is subject to the umask; set the exact mode afterwards.
		if err := os.Chmod(w.Dir, w.Mode.Perm()); err != nil {
			errs = append(errs, fmt.Errorf("chmod %s: %w", w.Dir, err))
		}
	}

	if w.UID >= 0 || w.GID >= 0 {
		if err := os.Chown(w.Dir, w.UID, w.GID); err != nil {
			errs = append(errs, fmt.Errorf("chown %s to %d:%d: %w", w.Dir, w.UID, w.GID, err))
		}
	}
	return errors.Join(errs...)
}
