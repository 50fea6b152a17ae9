package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chromacheck/chromacheck/internal/store"
)

var historyLimit int

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored sessions and tuning runs",
		Long: `List the sessions and tuning runs recorded in the results database.

Examples:
  chromacheck history --db results.db
  chromacheck history --db results.db --limit 50`,
		RunE: runHistory,
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows per table")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	if flagDB == "" {
		return fmt.Errorf("history requires --db")
	}
	st, err := store.Open(flagDB)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	sessions, err := st.ListSessions(historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sessions (%d):\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(out, "  %s  %-10s %-12s control %3d%%  confusion %3d%%  %s\n",
			s.ID[:8], s.Mode, s.Bucket, s.ControlScore, s.ConfusionScore,
			s.CreatedAt.Format("2006-01-02 15:04"))
	}

	runs, err := st.ListTuning(historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Tuning runs (%d):\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(out, "  %s  best %3d%%  baseline %3d%%  rounds %d  %s\n",
			r.ID[:8], r.BestScore, r.BaselineScore, r.Rounds,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
