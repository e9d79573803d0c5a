package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tegra-fqd/internal/journal"
)

var historyLines int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLines, "lines", "n", 20, "Number of recent commits to show")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently committed policies from the journal",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := loadSetup(configPath)
	if err != nil {
		return err
	}
	path := st.cfg.Journal.Path
	if path == "" {
		return fmt.Errorf("journal is disabled (set journal.path in %s)", configPath)
	}

	j, err := journal.Open(path, st.cfg.Journal.Keep)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	entries, err := j.Recent(cmd.Context(), historyLines)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(w, "No commits recorded in %s\n", path)
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		flags := strings.Join(e.Flags, " ")
		if flags == "" {
			flags = "-"
		}
		failed := strconv.Itoa(e.FailedWrites)
		if e.FailedWrites > 0 {
			failed = highlight(w, failed)
		}
		rows = append(rows, []string{
			e.CommittedAt.Local().Format(time.DateTime),
			flags,
			strconv.Itoa(e.ProfileIndex),
			strconv.Itoa(e.Resolved.MinFreq),
			strconv.Itoa(e.Resolved.MaxFreq),
			fmt.Sprintf("%d/%d", e.Resolved.CoreCapLevel, e.Resolved.CoreCapState),
			strconv.FormatBool(e.Resolved.ForceAccessory),
			failed,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Committed", "Flags", "Profile", "Min", "Max", "Core cap", "H2W", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignRight},
	))
	return nil
}
