package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/tegra-fqd/internal/commit"
	"github.com/ppiankov/tegra-fqd/internal/config"
	"github.com/ppiankov/tegra-fqd/internal/flags"
	"github.com/ppiankov/tegra-fqd/internal/journal"
	"github.com/ppiankov/tegra-fqd/internal/policy"
	"github.com/ppiankov/tegra-fqd/internal/profile"
)

// Recorder stores committed cycles. *journal.Journal satisfies it.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Config holds full daemon configuration.
type Config struct {
	Watch         config.Watch
	AccessoryPref string
	Selection     profile.Selection
	Scanner       *flags.Scanner
	Sequencer     *commit.Sequencer
	Journal       Recorder // optional
	Logger        *slog.Logger
}

// Daemon watches the flag directory and commits the resulting policy.
type Daemon struct {
	cfg     Config
	logger  *slog.Logger
	watcher Watcher
}

// Evaluation is the outcome of scanning and resolving without committing.
type Evaluation struct {
	Scan         flags.Result
	Intermediate policy.Intermediate
	Resolved     policy.Resolved
}

// New creates a daemon with validated configuration.
func New(cfg Config) (*Daemon, error) {
	if cfg.Watch.Dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if cfg.Scanner == nil || cfg.Sequencer == nil {
		return nil, fmt.Errorf("scanner and sequencer are required")
	}
	if cfg.Scanner.Dir == "" {
		cfg.Scanner.Dir = cfg.Watch.Dir
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "daemon")

	var w Watcher
	if cfg.Watch.PollInterval > 0 {
		w = NewPollWatcher(cfg.Watch.Dir, cfg.Watch.PollInterval, logger)
	} else {
		w = NewDirWatcher(cfg.Watch.Dir, cfg.Watch.Debounce, logger)
	}

	return &Daemon{cfg: cfg, logger: logger, watcher: w}, nil
}

// Run prepares the watched directory and processes changes until a
// suicide request, cancellation of ctx, or a fatal error. A nil return
// means a clean shutdown.
func (d *Daemon) Run(ctx context.Context) error {
	if err := EnsureWatchDir(d.cfg.Watch); err != nil {
		// Watch registration below decides whether this is fatal.
		d.logger.Warn("prepare watch directory", "dir", d.cfg.Watch.Dir, "error", err)
	}

	sel := d.cfg.Selection
	d.logger.Info("starting",
		"dir", d.cfg.Watch.Dir,
		"profile", sel.Profile.Label(sel.Index),
		"profile_index", sel.Index,
		"profile_source", sel.Source,
		"unmanaged", sel.Unmanaged,
	)

	return d.watcher.Run(ctx, d.Cycle)
}

// Evaluate scans the directory and resolves the policy without writing.
func (d *Daemon) Evaluate() (Evaluation, error) {
	res, err := d.cfg.Scanner.Scan()
	if err != nil {
		return Evaluation{}, err
	}
	ev := Evaluation{Scan: res}
	if res.Terminate {
		return ev, nil
	}

	ip := res.Policy
	if flags.AccessoryPreference(d.cfg.AccessoryPref) {
		ip.Mask |= policy.MaskAccessoryPref
	}
	ev.Intermediate = ip
	ev.Resolved = policy.Resolve(ip, d.cfg.Selection.Profile)
	return ev, nil
}

// Cycle runs one scan/resolve/commit pass. It reports done after a
// suicide request, once the grace delay has elapsed.
func (d *Daemon) Cycle(ctx context.Context) (bool, error) {
	ev, err := d.Evaluate()
	if err != nil {
		return true, err
	}
	if ev.Scan.Terminate {
		d.logger.Info("suicide request, shutting down", "grace", d.cfg.Watch.SuicideGrace)
		sleepCtx(ctx, d.cfg.Watch.SuicideGrace)
		return true, nil
	}

	sel := d.cfg.Selection
	r := ev.Resolved
	failed := d.cfg.Sequencer.Commit(r, sel.Unmanaged)

	d.logger.Info("policy committed",
		"flags", ev.Scan.Present,
		"mask", ev.Intermediate.Mask.String(),
		"min_freq", r.MinFreq,
		"max_freq", r.MaxFreq,
		"core_cap_level", r.CoreCapLevel,
		"core_cap_state", r.CoreCapState,
		"force_accessory", r.ForceAccessory,
		"unmanaged", sel.Unmanaged,
		"failed_writes", failed,
	)

	if d.cfg.Journal != nil {
		entry := journal.Entry{
			CommittedAt:  time.Now(),
			Flags:        ev.Scan.Present,
			ScreenOn:     ev.Intermediate.ScreenOn,
			ProfileIndex: sel.Index,
			Unmanaged:    sel.Unmanaged,
			Resolved:     r,
			FailedWrites: failed,
		}
		if err := d.cfg.Journal.Record(ctx, entry); err != nil {
			d.logger.Warn("journal record failed", "error", err)
		}
	}
	return false, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
