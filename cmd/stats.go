package cmd

import (
	"fmt"
	"io"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ccnaprep/ccnaprep/internal/app"
	"github.com/ccnaprep/ccnaprep/internal/score"
	"github.com/ccnaprep/ccnaprep/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show answer history and the weakest questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui, _ := cmd.Flags().GetBool("tui"); tui {
			return runApp(cmd, app.StartStats)
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if e.store == nil {
			return fmt.Errorf("history is disabled")
		}

		sum, err := e.store.StatsRepo().Summary(cmd.Context())
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		limit, _ := cmd.Flags().GetInt("limit")
		printSummary(cmd.OutOrStdout(), sum, limit)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("limit", 20, "Number of questions to list, weakest first (0 for all)")
	statsCmd.Flags().Bool("tui", false, "Open the interactive stats screen")
}

func printSummary(w io.Writer, sum store.Summary, limit int) {
	if sum.Attempts == 0 && sum.Exams == 0 {
		fmt.Fprintln(w, "No history yet.")
		return
	}

	fmt.Fprintf(w, "Sessions:   %d\n", sum.Sessions)
	fmt.Fprintf(w, "Verified:   %d (%.0f%% correct)\n", sum.Attempts, score.Percent(sum.Correct, sum.Attempts))
	fmt.Fprintf(w, "Timeouts:   %d\n", sum.Timeouts)
	fmt.Fprintf(w, "Errors:     %d\n", sum.Failures)
	if sum.Exams > 0 {
		fmt.Fprintf(w, "Exams:      %d (best %.0f%%, last %.0f%%)\n", sum.Exams, sum.BestExam, sum.LastExam)
	}

	qs := sum.Questions
	if limit > 0 && len(qs) > limit {
		qs = qs[:limit]
	}
	if len(qs) == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("QUESTION", "CORRECT", "ATTEMPTS", "ACCURACY", "LAST")
	for _, q := range qs {
		t.Row(
			q.QuestionID,
			strconv.Itoa(q.Correct),
			strconv.Itoa(q.Attempts),
			fmt.Sprintf("%.0f%%", q.Accuracy()*100),
			humanize.Time(q.LastAnswered),
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, t.String())
}
