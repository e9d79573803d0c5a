package commit

import (
	"log/slog"

	"github.com/ppiankov/tegra-fqd/internal/config"
	"github.com/ppiankov/tegra-fqd/internal/policy"
	"github.com/ppiankov/tegra-fqd/internal/sysfs"
)

// Sequencer writes a resolved policy to the control surfaces.
type Sequencer struct {
	Surfaces config.Surfaces
	Writer   sysfs.Writer
	Logger   *slog.Logger
}

// Commit writes r in the order the cpufreq and tegra_cap drivers expect.
//
// Write order (must not be changed):
//  1. Accessory force mode, always, even when unmanaged
//  2. Stop when unmanaged
//  3. min, max, then min, max again
//  4. User cap, same value as max
//  5. Core cap level, then core cap state
//
// The min/max pair is written twice because the tegra cpufreq driver
// rejects a single transition where the new min exceeds the old max.
// The user cap is deliberately written once, after both pairs, and not
// repeated with each pair: a second write would carry the same value.
// Every write is best-effort. Commit returns the number that failed.
func (s *Sequencer) Commit(r policy.Resolved, unmanaged bool) int {
	failed := 0
	write := func(path string, value int) {
		if !sysfs.BestEffort(s.logger(), s.Writer, path, value) {
			failed++
		}
	}

	write(s.Surfaces.AccessoryForce, boolInt(r.ForceAccessory))

	if unmanaged {
		return failed
	}

	for range 2 {
		write(s.Surfaces.ScalingMin, r.MinFreq)
		write(s.Surfaces.ScalingMax, r.MaxFreq)
	}
	write(s.Surfaces.UserCap, r.MaxFreq)
	write(s.Surfaces.CoreCapLevel, r.CoreCapLevel)
	write(s.Surfaces.CoreCapState, r.CoreCapState)
	return failed
}

// Plan returns the writes Commit would perform, in order.
func (s *Sequencer) Plan(r policy.Resolved, unmanaged bool) []sysfs.Op {
	rec := &sysfs.Recorder{}
	dry := Sequencer{Surfaces: s.Surfaces, Writer: rec, Logger: slog.New(slog.DiscardHandler)}
	dry.Commit(r, unmanaged)
	return rec.Ops()
}

func (s *Sequencer) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
