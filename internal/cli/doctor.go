package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tegra-fqd/internal/journal"
	"github.com/ppiankov/tegra-fqd/internal/systemd"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the daemon can run on this system",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checks := collectChecks(configPath)
	if !printChecks(cmd.OutOrStdout(), checks) {
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

func collectChecks(path string) []checkResult {
	var checks []checkResult

	// 1. Configuration.
	if _, err := os.Stat(path); err != nil {
		checks = append(checks, checkResult{label: "config file", ok: true, detail: "not found, using defaults"})
	} else {
		checks = append(checks, checkResult{label: "config file", ok: true, detail: path})
	}
	st, err := loadSetup(path)
	if err != nil {
		return append(checks, checkResult{
			label:  "configuration",
			detail: err.Error(),
			fix:    "fix " + path,
		})
	}
	cfg := st.cfg
	checks = append(checks, checkResult{
		label:  "profiles",
		ok:     true,
		detail: fmt.Sprintf("%d available, using %s (%s)", len(st.table), st.sel.Profile.Label(st.sel.Index), st.sel.Source),
	})

	// 2. Profile selector.
	if _, err := os.Stat(cfg.ProfileSelector); err != nil {
		checks = append(checks, checkResult{label: "profile selector", ok: true, detail: "not set, using entry 0"})
	} else {
		checks = append(checks, checkResult{label: "profile selector", ok: true, detail: fmt.Sprintf("%s = %d", cfg.ProfileSelector, st.sel.Raw)})
	}

	// 3. Flag directory.
	if info, err := os.Stat(cfg.Watch.Dir); os.IsNotExist(err) {
		checks = append(checks, checkResult{label: "flag directory", ok: true, detail: "missing, created at startup"})
	} else if err != nil {
		checks = append(checks, checkResult{label: "flag directory", detail: err.Error()})
	} else if !info.IsDir() {
		checks = append(checks, checkResult{label: "flag directory", detail: cfg.Watch.Dir + " is not a directory"})
	} else if err := accessible(cfg.Watch.Dir); err != nil {
		checks = append(checks, checkResult{label: "flag directory", detail: fmt.Sprintf("%s: %v", cfg.Watch.Dir, err), fix: "run as root"})
	} else {
		checks = append(checks, checkResult{label: "flag directory", ok: true, detail: cfg.Watch.Dir})
	}

	// 4. Control surfaces.
	for _, s := range []struct{ label, path string }{
		{"scaling_min_freq", cfg.Surfaces.ScalingMin},
		{"scaling_max_freq", cfg.Surfaces.ScalingMax},
		{"cpu_user_cap", cfg.Surfaces.UserCap},
		{"core_cap_level", cfg.Surfaces.CoreCapLevel},
		{"core_cap_state", cfg.Surfaces.CoreCapState},
		{"force_h2w", cfg.Surfaces.AccessoryForce},
	} {
		if err := writable(s.path); err != nil {
			checks = append(checks, checkResult{label: s.label, detail: fmt.Sprintf("%s: %v", s.path, err), fix: "check kernel support or run as root"})
			continue
		}
		checks = append(checks, checkResult{label: s.label, ok: true, detail: s.path})
	}

	// 5. Journal.
	if cfg.Journal.Path == "" {
		checks = append(checks, checkResult{label: "journal", ok: true, detail: "disabled"})
	} else if j, err := journal.Open(cfg.Journal.Path, cfg.Journal.Keep); err != nil {
		checks = append(checks, checkResult{label: "journal", detail: err.Error()})
	} else {
		_ = j.Close()
		checks = append(checks, checkResult{label: "journal", ok: true, detail: cfg.Journal.Path})
	}

	// 6. systemd unit (Linux only, informational).
	if runtime.GOOS == "linux" {
		checks = append(checks, unitCheck())
	}
	return checks
}

func unitCheck() checkResult {
	status, err := systemd.CheckInstalledUnit()
	switch {
	case err != nil:
		return checkResult{label: "systemd unit", detail: err.Error()}
	case status.Path == "":
		return checkResult{label: "systemd unit", ok: true, detail: "not installed (init.rc or manual start)"}
	case !status.Current:
		return checkResult{
			label:  "systemd unit",
			ok:     true,
			detail: fmt.Sprintf("%s differs from built-in template (%s != %s)", status.Path, status.Actual, status.Expected),
			fix:    "tegra-fqd unit > " + status.Path,
		}
	default:
		return checkResult{label: "systemd unit", ok: true, detail: status.Path}
	}
}

// printChecks writes one line per check and reports whether all passed.
func printChecks(w io.Writer, checks []checkResult) bool {
	passed := true
	for _, c := range checks {
		mark := "\u2713" // ✓
		if !c.ok {
			mark = "\u2717" // ✗
			passed = false
		}
		line := fmt.Sprintf("%s %-18s %s", mark, c.label+":", c.detail)
		if c.fix != "" {
			line += fmt.Sprintf("  ->  %s", c.fix)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	if !passed {
		fmt.Fprintln(w, "Some checks failed. Frequency writes are best-effort, the daemon still starts.")
		return false
	}
	fmt.Fprintln(w, "All checks passed.")
	return true
}
