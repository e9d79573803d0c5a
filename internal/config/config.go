package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tegra-fqd/internal/profile"
)

// DefaultPath is where the daemon looks for its config when none is given.
const DefaultPath = "/system/etc/tegra-fqd.yaml"

// Android ids for the watch directory owner.
const (
	aidSystem = 1000
	aidAudio  = 1005
)

// Watch configures the flag directory and how changes are detected.
type Watch struct {
	Dir  string      `yaml:"dir"`
	UID  int         `yaml:"uid"`
	GID  int         `yaml:"gid"`
	Mode os.FileMode `yaml:"mode"`
	// Debounce coalesces bursts of events into one cycle. Zero runs a cycle per wake.
	Debounce time.Duration `yaml:"debounce"`
	// PollInterval switches from inotify to directory polling when non-zero.
	PollInterval time.Duration `yaml:"poll_interval"`
	SuicideGrace time.Duration `yaml:"suicide_grace"`
}

// Flags holds the marker file names the daemon recognizes.
type Flags struct {
	ScreenOn string `yaml:"screen_on"`
	Audio    string `yaml:"audio"`
	A2DP     string `yaml:"a2dp"`
	MTP      string `yaml:"mtp"`
	Suicide  string `yaml:"suicide"`
}

// Frequencies are the per-use-case floors and requests, in kHz.
type Frequencies struct {
	MinBase  int `yaml:"min_base"`
	AudioMin int `yaml:"audio_min"`
	A2DPMin  int `yaml:"a2dp_min"`
	MTPMin   int `yaml:"mtp_min"`
	AudioReq int `yaml:"audio_req"`
}

// Surfaces are the control files a commit writes to.
type Surfaces struct {
	ScalingMin     string `yaml:"scaling_min"`
	ScalingMax     string `yaml:"scaling_max"`
	UserCap        string `yaml:"user_cap"`
	CoreCapLevel   string `yaml:"core_cap_level"`
	CoreCapState   string `yaml:"core_cap_state"`
	AccessoryForce string `yaml:"accessory_force"`
}

// Log configures the daemon logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Syslog bool   `yaml:"syslog"`
}

// Journal configures the optional commit history database.
type Journal struct {
	Path string `yaml:"path"`
	Keep int    `yaml:"keep"`
}

// Config is the full daemon configuration.
type Config struct {
	Watch           Watch             `yaml:"watch"`
	Flags           Flags             `yaml:"flags"`
	Frequencies     Frequencies       `yaml:"frequencies"`
	Surfaces        Surfaces          `yaml:"surfaces"`
	ProfileSelector string            `yaml:"profile_selector"`
	AccessoryPref   string            `yaml:"accessory_pref"`
	Profiles        []profile.Profile `yaml:"profiles"`
	Log             Log               `yaml:"log"`
	Journal         Journal           `yaml:"journal"`
}

// Default returns the built-in configuration for the HOX board.
func Default() *Config {
	return &Config{
		Watch: Watch{
			Dir:          "/dev/tegra-fqd",
			UID:          aidSystem,
			GID:          aidAudio,
			Mode:         0o770,
			SuicideGrace: time.Second,
		},
		Flags: Flags{
			ScreenOn: "screen_on",
			Audio:    "audio_on",
			A2DP:     "a2dp_on",
			MTP:      "mtp_on",
			Suicide:  "suicide",
		},
		Frequencies: Frequencies{
			MinBase:  51000,
			AudioMin: 340000,
			A2DPMin:  475000,
			MTPMin:   475000,
			AudioReq: 640000,
		},
		Surfaces: Surfaces{
			ScalingMin:     "/sys/devices/system/cpu/cpu0/cpufreq/scaling_min_freq",
			ScalingMax:     "/sys/devices/system/cpu/cpu0/cpufreq/scaling_max_freq",
			UserCap:        "/sys/module/cpu_tegra/parameters/cpu_user_cap",
			CoreCapLevel:   "/sys/kernel/tegra_cap/core_cap_level",
			CoreCapState:   "/sys/kernel/tegra_cap/core_cap_state",
			AccessoryForce: "/sys/class/htc_accessory/h2w/force_h2w",
		},
		ProfileSelector: "/data/misc/hox_pp",
		AccessoryPref:   "/data/misc/tegra-fqd/force_h2w",
		Log: Log{
			Level:  "info",
			Format: "console",
			Syslog: true,
		},
		Journal: Journal{
			Keep: 500,
		},
	}
}

// Load reads configuration from a YAML file.
// Empty path uses DefaultPath. Missing file returns defaults.
// Invalid YAML or an invalid result returns an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ProfileTable returns the configured profile table, or the built-in one
// when the config does not define any.
func (c *Config) ProfileTable() (profile.Table, error) {
	if len(c.Profiles) == 0 {
		return profile.Builtin()
	}
	table := profile.Table(c.Profiles)
	if err := profile.Validate(table); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Watch.Dir) == "" {
		return fmt.Errorf("watch.dir is required")
	}
	// The flag setter creates entries in the directory; the owner needs rwx.
	if perm := c.Watch.Mode.Perm(); perm&0o700 != 0o700 || c.Watch.Mode&^os.ModePerm != 0 {
		return fmt.Errorf("watch.mode %#o must be a permission mode granting the owner rwx", uint32(c.Watch.Mode))
	}
	if c.Watch.Debounce < 0 || c.Watch.PollInterval < 0 || c.Watch.SuicideGrace < 0 {
		return fmt.Errorf("watch durations must not be negative")
	}
	if err := c.Flags.validate(); err != nil {
		return err
	}
	if err := c.Frequencies.validate(); err != nil {
		return err
	}
	if err := c.Surfaces.validate(); err != nil {
		return err
	}
	if len(c.Profiles) > 0 {
		if err := profile.Validate(profile.Table(c.Profiles)); err != nil {
			return err
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Log.Format)
	}
	if c.Journal.Keep < 0 {
		return fmt.Errorf("journal.keep must not be negative")
	}
	return nil
}

func (f Flags) validate() error {
	seen := make(map[string]string, 5)
	for _, entry := range []struct{ key, name string }{
		{"screen_on", f.ScreenOn},
		{"audio", f.Audio},
		{"a2dp", f.A2DP},
		{"mtp", f.MTP},
		{"suicide", f.Suicide},
	} {
		if entry.name == "" {
			return fmt.Errorf("flags.%s is required", entry.key)
		}
		if strings.ContainsRune(entry.name, '/') || entry.name == "." || entry.name == ".." {
			return fmt.Errorf("flags.%s: invalid marker name %q", entry.key, entry.name)
		}
		if other, ok := seen[entry.name]; ok {
			return fmt.Errorf("flags.%s: marker %q already used by flags.%s", entry.key, entry.name, other)
		}
		seen[entry.name] = entry.key
	}
	return nil
}

func (f Frequencies) validate() error {
	if f.MinBase <= 0 {
		return fmt.Errorf("frequencies.min_base must be positive")
	}
	for _, v := range []int{f.AudioMin, f.A2DPMin, f.MTPMin, f.AudioReq} {
		if v < 0 {
			return fmt.Errorf("frequencies must not be negative")
		}
	}
	return nil
}

func (s Surfaces) validate() error {
	for _, entry := range []struct{ key, path string }{
		{"scaling_min", s.ScalingMin},
		{"scaling_max", s.ScalingMax},
		{"user_cap", s.UserCap},
		{"core_cap_level", s.CoreCapLevel},
		{"core_cap_state", s.CoreCapState},
		{"accessory_force", s.AccessoryForce},
	} {
		if strings.TrimSpace(entry.path) == "" {
			return fmt.Errorf("surfaces.%s is required", entry.key)
		}
	}
	return nil
}
