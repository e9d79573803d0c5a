package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tegra-fqd/internal/systemd"
)

func init() {
	rootCmd.AddCommand(unitCmd)
}

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Print the systemd unit for running tegra-fqd",
	Long:  "Prints a unit file suitable for /etc/systemd/system/" + systemd.UnitName + ".",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), systemd.DaemonTemplate())
	},
}
