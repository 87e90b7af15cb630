package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	statsFrom string
	statsTo   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	Long: `Print the owner's history statistics as JSON: task counts, planning
accuracy, success rate and weekday spread, overall and per category.`,
	RunE: runStats,
}

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Freeze the current statistics under a share key",
	RunE:  runShare,
}

var sharedCmd = &cobra.Command{
	Use:   "shared <key>",
	Short: "Show statistics frozen under a share key",
	Args:  cobra.ExactArgs(1),
	RunE:  runShared,
}

func init() {
	for _, cmd := range []*cobra.Command{statsCmd, shareCmd} {
		cmd.Flags().StringVar(&statsFrom, "from", "", "start of the execution-date interval (YYYY-MM-DD)")
		cmd.Flags().StringVar(&statsTo, "to", "", "end of the execution-date interval (YYYY-MM-DD)")
	}

	statsCmd.AddCommand(shareCmd)
	statsCmd.AddCommand(sharedCmd)
}

// statsRange parses the optional --from/--to flags.
func statsRange() (from, to *time.Time, err error) {
	parse := func(flag, value string) (*time.Time, error) {
		if value == "" {
			return nil, nil
		}
		day, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, fmt.Errorf("parse --%s %q: %w", flag, value, err)
		}
		return &day, nil
	}
	if from, err = parse("from", statsFrom); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to", statsTo); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ownerID, err := owner()
	if err != nil {
		return err
	}
	from, to, err := statsRange()
	if err != nil {
		return err
	}
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	payload, err := tracker.Statistics(cmd.Context(), ownerID, from, to)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(raw))
	return nil
}

func runShare(cmd *cobra.Command, args []string) error {
	ownerID, err := owner()
	if err != nil {
		return err
	}
	from, to, err := statsRange()
	if err != nil {
		return err
	}
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	key, err := tracker.ShareStatistics(cmd.Context(), ownerID, from, to)
	if err != nil {
		return err
	}
	cmd.Println(key)
	return nil
}

func runShared(cmd *cobra.Command, args []string) error {
	tracker, st, err := openTracker()
	if err != nil {
		return err
	}
	defer st.Close()

	payload, err := tracker.SharedStatistics(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(raw))
	return nil
}
