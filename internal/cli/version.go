package cli

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/ppiankov/tegra-fqd/internal/cli.version=0.4.0 \
//	    -X github.com/ppiankov/tegra-fqd/internal/cli.gitCommit=$(git rev-parse --short HEAD)"
var (
	version   = ""
	gitCommit = ""
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = buildVersion()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := json.MarshalIndent(versionInfo(), "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	},
}

// buildVersion prefers the linker-provided version, then the module
// version recorded by `go install`, then "dev".
func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func buildCommit() string {
	if gitCommit != "" {
		return gitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}

func versionInfo() map[string]string {
	return map[string]string{
		"name":    "tegra-fqd",
		"version": buildVersion(),
		"commit":  buildCommit(),
		"go":      runtime.Version(),
		"target":  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
