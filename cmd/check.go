package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/coord"
	"github.com/ccnaprep/ccnaprep/internal/feedback"
	"github.com/ccnaprep/ccnaprep/internal/qstate"
	"github.com/ccnaprep/ccnaprep/internal/store"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

var checkCmd = &cobra.Command{
	Use:   "check QUESTION_ID LETTER...",
	Short: "Verify a single answer against the server",
	Long: `Verify one answer and print the verdict. The question bank is used to
look up the question type and valid letters.

Exits non-zero when the request times out or fails.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	b, err := bank.Load(cfg.Bank.Path)
	if err != nil {
		return err
	}
	q, ok := findQuestion(b, args[0])
	if !ok {
		return fmt.Errorf("question %q not found in %s", args[0], cfg.Bank.Path)
	}
	if !q.Answerable() {
		return fmt.Errorf("question %q is %s and cannot be checked by letter", q.ID, q.Kind)
	}

	if q.Kind == bank.KindSingle && len(args) > 2 {
		return fmt.Errorf("question %q takes a single answer", q.ID)
	}

	panel := feedback.NewPanel(q)
	for _, letter := range args[1:] {
		i := q.OptionIndex(strings.ToUpper(letter))
		if i < 0 {
			return fmt.Errorf("question %q has no option %q", q.ID, letter)
		}
		panel.Toggle(i)
	}
	if !panel.AnyChecked() {
		return errors.New("no option selected")
	}

	client, err := newClient(cfg.Server.URL, cfg.Server.CSRFToken, e)
	if err != nil {
		return err
	}
	var v verify.Verifier = client
	if repo := e.eventRepo(); repo != nil {
		v = verify.WithRecording(client, repo, uuid.NewString(), store.ModeCheck, e.logger)
	}

	c := coord.New(v, qstate.New(), coord.WithTimeout(cfg.Server.Timeout), coord.WithLogger(e.logger))
	t, err := c.Submit(q.ID, verify.NewPayload(q.ID, q.Kind, panel.Choice()...))
	if err != nil {
		return err
	}
	st := c.Run(cmd.Context(), t)

	out := cmd.OutOrStdout()
	switch outcome := c.Settle(st); outcome {
	case coord.Accepted:
		feedback.PaintOutcome(panel, st.Result, st.Ticket.Payload.Letters)
		fmt.Fprintln(out, panel.Badge.Text)
		if panel.Explanation != "" {
			fmt.Fprintln(out, panel.Explanation)
		}
		return nil
	case coord.Failed:
		feedback.PaintFailure(panel, st.Failure)
		return fmt.Errorf("%s: %w", strings.TrimSuffix(panel.Badge.Text, feedback.TextRetryHint), st.Err)
	default:
		return fmt.Errorf("verification %s", outcome)
	}
}

func findQuestion(b bank.Bank, id string) (bank.Question, bool) {
	for _, q := range b.Questions {
		if strings.EqualFold(q.ID, id) {
			return q, true
		}
	}
	return bank.Question{}, false
}
