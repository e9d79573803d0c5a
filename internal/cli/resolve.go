package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tegra-fqd/internal/commit"
	"github.com/ppiankov/tegra-fqd/internal/daemon"
	"github.com/ppiankov/tegra-fqd/internal/logging"
	"github.com/ppiankov/tegra-fqd/internal/profile"
)

var (
	resolveDir          string
	resolveProfileIndex int
	resolveJSON         bool
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveDir, "dir", "", "Flag directory to scan (default: watch.dir from config)")
	resolveCmd.Flags().IntVar(&resolveProfileIndex, "profile-index", 0, "Use this profile index instead of the selector file")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Output as JSON")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the policy the current flags resolve to, without writing",
	Long: "Scans the flag directory once and prints the resolved policy and the\n" +
		"control file writes a commit would perform. Nothing is written and a\n" +
		"suicide marker is left in place.",
	Args: cobra.NoArgs,
	RunE: runResolve,
}

type plannedWrite struct {
	Path  string `json:"path"`
	Value int    `json:"value"`
}

type resolveOutput struct {
	Profile        string         `json:"profile"`
	ProfileIndex   int            `json:"profile_index"`
	ProfileSource  string         `json:"profile_source"`
	Unmanaged      bool           `json:"unmanaged"`
	Terminate      bool           `json:"terminate"`
	Flags          []string       `json:"flags"`
	Mask           string         `json:"mask"`
	MinFreq        int            `json:"min_freq"`
	MaxFreq        int            `json:"max_freq"`
	CoreCapLevel   int            `json:"core_cap_level"`
	CoreCapState   int            `json:"core_cap_state"`
	ForceAccessory bool           `json:"force_accessory"`
	Writes         []plannedWrite `json:"writes"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	st, err := loadSetup(configPath)
	if err != nil {
		return err
	}
	cfg := st.cfg
	if resolveDir != "" {
		cfg.Watch.Dir = resolveDir
	}
	sel := st.sel
	if cmd.Flags().Changed("profile-index") {
		sel = profile.ForIndex(resolveProfileIndex, st.table)
	}

	logger := logging.NewNop()
	// Only Plan is used, so the sequencer needs no writer.
	seq := &commit.Sequencer{Surfaces: cfg.Surfaces, Logger: logger}
	d, err := daemon.New(daemon.Config{
		Watch:         cfg.Watch,
		AccessoryPref: cfg.AccessoryPref,
		Selection:     sel,
		Scanner:       st.scanner(logger, true),
		Sequencer:     seq,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	ev, err := d.Evaluate()
	if err != nil {
		return err
	}

	out := resolveOutput{
		Profile:       sel.Profile.Label(sel.Index),
		ProfileIndex:  sel.Index,
		ProfileSource: sel.Source,
		Unmanaged:     sel.Unmanaged,
		Terminate:     ev.Scan.Terminate,
		Flags:         ev.Scan.Present,
		Writes:        []plannedWrite{},
	}
	if out.Flags == nil {
		out.Flags = []string{}
	}
	if !ev.Scan.Terminate {
		r := ev.Resolved
		out.Mask = ev.Intermediate.Mask.String()
		out.MinFreq = r.MinFreq
		out.MaxFreq = r.MaxFreq
		out.CoreCapLevel = r.CoreCapLevel
		out.CoreCapState = r.CoreCapState
		out.ForceAccessory = r.ForceAccessory
		for _, op := range seq.Plan(r, sel.Unmanaged) {
			out.Writes = append(out.Writes, plannedWrite{Path: op.Path, Value: op.Value})
		}
	}

	w := cmd.OutOrStdout()
	if resolveJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "Profile:  %s (index %d, %s)\n", out.Profile, out.ProfileIndex, out.ProfileSource)
	if out.Unmanaged {
		fmt.Fprintln(w, "          unmanaged: only the accessory mode is written")
	}
	if out.Terminate {
		fmt.Fprintln(w, highlight(w, "Suicide marker present: the daemon would exit without writing."))
		return nil
	}
	flagList := "none"
	if len(out.Flags) > 0 {
		flagList = strings.Join(out.Flags, " ")
	}
	fmt.Fprintf(w, "Flags:    %s\n", flagList)
	fmt.Fprintf(w, "Mask:     %s\n", out.Mask)
	fmt.Fprintf(w, "Policy:   min=%d max=%d core_cap=%d/%d force_accessory=%t\n\n",
		out.MinFreq, out.MaxFreq, out.CoreCapLevel, out.CoreCapState, out.ForceAccessory)

	rows := make([][]string, 0, len(out.Writes))
	for i, wr := range out.Writes {
		rows = append(rows, []string{strconv.Itoa(i + 1), wr.Path, strconv.Itoa(wr.Value)})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Control file", "Value"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight}))
	return nil
}
