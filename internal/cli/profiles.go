package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(profilesCmd)
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List power profiles and the current selection",
	Args:  cobra.NoArgs,
	RunE:  runProfiles,
}

func runProfiles(cmd *cobra.Command, args []string) error {
	st, err := loadSetup(configPath)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	rows := make([][]string, 0, len(st.table))
	for i, p := range st.table {
		mark := ""
		if i == st.sel.Index {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			strconv.Itoa(i),
			p.Label(i),
			strconv.Itoa(p.ScreenOnMax),
			strconv.Itoa(p.ScreenOffMax),
			fmt.Sprintf("%d/%d", p.CoreCapLevelOn, p.CoreCapLevelOff),
			fmt.Sprintf("%d/%d", p.CoreCapStateOn, p.CoreCapStateOff),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"", "Index", "Name", "Max on", "Max off", "Core cap on/off", "Cap state on/off"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))

	line := fmt.Sprintf("Selector %s: %s", st.cfg.ProfileSelector, st.sel.Source)
	if st.sel.Unmanaged {
		line += " (frequency management disabled)"
	}
	fmt.Fprintln(w, highlight(w, line))
	return nil
}
