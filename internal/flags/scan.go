package flags

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppiankov/tegra-fqd/internal/config"
	"github.com/ppiankov/tegra-fqd/internal/policy"
)

// Result is the outcome of one scan: either a folded policy to commit,
// or a request to terminate the daemon.
type Result struct {
	Policy    policy.Intermediate
	Terminate bool
	// Present lists recognized markers seen during the scan, sorted.
	Present []string
}

// Scanner folds the marker files in Dir into an intermediate policy.
type Scanner struct {
	Dir    string
	Names  config.Flags
	Freq   config.Frequencies
	Logger *slog.Logger
	// KeepSuicide leaves the suicide marker in place. Used by dry runs.
	KeepSuicide bool
}

// Scan lists the directory and folds every recognized marker. A suicide
// marker is removed and ends the scan immediately with Terminate set.
func (s *Scanner) Scan() (Result, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return Result{}, fmt.Errorf("scan %s: %w", s.Dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return s.fold(names), nil
}

// fold combines names in any order. Numeric fields only ever rise and the
// mask only gains bits, so the result does not depend on enumeration order.
func (s *Scanner) fold(names []string) Result {
	ip := policy.Intermediate{MinFreq: s.Freq.MinBase}
	var present []string

	for _, name := range names {
		switch name {
		case s.Names.Suicide:
			if !s.KeepSuicide {
				s.removeSuicideMarker(name)
			}
			return Result{Terminate: true, Present: []string{name}}
		case s.Names.ScreenOn:
			ip.ScreenOn = true
		case s.Names.Audio:
			ip.MinFreq = max(ip.MinFreq, s.Freq.AudioMin)
			ip.ReqFreq = max(ip.ReqFreq, s.Freq.AudioReq)
			ip.Mask |= policy.MaskAudio
		case s.Names.A2DP:
			ip.MinFreq = max(ip.MinFreq, s.Freq.A2DPMin)
			ip.ReqFreq = max(ip.ReqFreq, s.Freq.AudioReq)
			ip.Mask |= policy.MaskA2DP
		case s.Names.MTP:
			ip.MinFreq = max(ip.MinFreq, s.Freq.MTPMin)
		default:
			s.logger().Debug("ignoring unknown entry", "name", name)
			continue
		}
		present = append(present, name)
	}

	sort.Strings(present)
	return Result{Policy: ip, Present: present}
}

func (s *Scanner) removeSuicideMarker(name string) {
	path := filepath.Join(s.Dir, name)
	s.logger().Info("exiting due to suicide request", "path", path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger().Warn("remove suicide marker", "path", path, "error", err)
	}
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// AccessoryPreference reports whether the accessory preference marker
// exists. Only its presence matters, not its content.
func AccessoryPreference(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
