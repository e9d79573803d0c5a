package cli

import (
	"log/slog"

	"github.com/ppiankov/tegra-fqd/internal/config"
	"github.com/ppiankov/tegra-fqd/internal/flags"
	"github.com/ppiankov/tegra-fqd/internal/profile"
)

// setup is the state every command derives from the config file.
type setup struct {
	cfg   *config.Config
	table profile.Table
	sel   profile.Selection
}

func loadSetup(path string) (*setup, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	table, err := cfg.ProfileTable()
	if err != nil {
		return nil, err
	}
	return &setup{
		cfg:   cfg,
		table: table,
		sel:   profile.Select(cfg.ProfileSelector, table),
	}, nil
}

func (st *setup) scanner(logger *slog.Logger, keepSuicide bool) *flags.Scanner {
	return &flags.Scanner{
		Dir:         st.cfg.Watch.Dir,
		Names:       st.cfg.Flags,
		Freq:        st.cfg.Frequencies,
		Logger:      logger,
		KeepSuicide: keepSuicide,
	}
}
