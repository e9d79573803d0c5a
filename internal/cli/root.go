package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tegra-fqd/internal/commit"
	"github.com/ppiankov/tegra-fqd/internal/config"
	"github.com/ppiankov/tegra-fqd/internal/daemon"
	"github.com/ppiankov/tegra-fqd/internal/journal"
	"github.com/ppiankov/tegra-fqd/internal/logging"
	"github.com/ppiankov/tegra-fqd/internal/sysfs"
)

var configPath string

// errReported is returned once a fatal error has been logged.
var errReported = errors.New("fatal error reported")

var rootCmd = &cobra.Command{
	Use:   "tegra-fqd",
	Short: "Tegra CPU frequency policy daemon",
	Long: "Watches a directory of flag files set by the system (screen on, audio,\n" +
		"a2dp, mtp) and commits the resulting CPU frequency policy to the\n" +
		"cpufreq and tegra_cap control files. Run without a subcommand to start\n" +
		"the daemon.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDaemon,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to config file")
	_ = rootCmd.PersistentFlags().MarkHidden("config")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	boot, _ := logging.New(logging.Options{Syslog: true})

	st, err := loadSetup(configPath)
	if err != nil {
		logging.Fatal(boot, "load configuration", err)
		return errReported
	}
	cfg := st.cfg

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Syslog: cfg.Log.Syslog,
	})
	if err != nil {
		logging.Fatal(boot, "init logger", err)
		return errReported
	}

	dcfg := daemon.Config{
		Watch:         cfg.Watch,
		AccessoryPref: cfg.AccessoryPref,
		Selection:     st.sel,
		Scanner:       st.scanner(logger, false),
		Sequencer: &commit.Sequencer{
			Surfaces: cfg.Surfaces,
			Writer:   sysfs.FileWriter{},
			Logger:   logger,
		},
		Logger: logger,
	}

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path, cfg.Journal.Keep)
		if err != nil {
			logger.Warn("journal disabled", "path", cfg.Journal.Path, "error", err)
		} else {
			defer func() { _ = j.Close() }()
			dcfg.Journal = j
		}
	}

	d, err := daemon.New(dcfg)
	if err != nil {
		logging.Fatal(logger, "init daemon", err)
		return errReported
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		logging.Fatal(logger, "daemon stopped", err)
		return errReported
	}
	logger.Info("stopped")
	return nil
}
