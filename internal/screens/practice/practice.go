package practice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/coord"
	"github.com/ccnaprep/ccnaprep/internal/feedback"
	"github.com/ccnaprep/ccnaprep/internal/imageload"
	"github.com/ccnaprep/ccnaprep/internal/nav"
	"github.com/ccnaprep/ccnaprep/internal/qstate"
	"github.com/ccnaprep/ccnaprep/internal/router"
	"github.com/ccnaprep/ccnaprep/internal/score"
	"github.com/ccnaprep/ccnaprep/internal/screen"
	"github.com/ccnaprep/ccnaprep/internal/screens/quiz"
	"github.com/ccnaprep/ccnaprep/internal/screens/results"
	"github.com/ccnaprep/ccnaprep/internal/ui/layout"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

// Timings tunes the practice flow.
type Timings struct {
	Timeout      time.Duration
	VerifyDelay  time.Duration
	AutoAdvance  time.Duration
	PreloadDelay time.Duration
}

// Options are the dependencies of a practice screen.
type Options struct {
	Questions []bank.Question
	Verifier  verify.Verifier
	Images    *imageload.Loader
	Logger    *slog.Logger
	Timings   Timings
	// Restart builds a fresh practice screen for the results screen.
	Restart func() screen.Screen
}

// PracticeScreen verifies each answer with the server as soon as it is
// given and shows the verdict in place.
type PracticeScreen struct {
	opts   Options
	deck   *quiz.Deck
	coord  *coord.Coordinator
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	selSeq map[string]int
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.StatusProvider = (*PracticeScreen)(nil)
var _ screen.Closer = (*PracticeScreen)(nil)

// New creates a practice screen over the answerable questions in opts.
func New(opts Options) *PracticeScreen {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := coord.New(opts.Verifier, qstate.New(),
		coord.WithTimeout(opts.Timings.Timeout),
		coord.WithLogger(logger),
		coord.WithBaseContext(ctx),
	)
	return &PracticeScreen{
		opts:   opts,
		deck:   quiz.NewDeck(ctx, opts.Questions, nav.PolicyVerify, opts.Images, opts.Timings.PreloadDelay, logger),
		coord:  c,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		selSeq: make(map[string]int),
	}
}

func (s *PracticeScreen) Init() tea.Cmd {
	if len(s.opts.Questions) == 0 {
		return nil
	}
	return s.deck.Preload()
}

func (s *PracticeScreen) Title() string { return "Practice" }

// Status shows the live "correct / attempted" score.
func (s *PracticeScreen) Status() string {
	return "Score " + score.Recompute(s.coord.States()).String()
}

// Close cancels every in-flight verification.
func (s *PracticeScreen) Close() {
	if n := s.coord.CancelAll(); n > 0 {
		s.logger.Debug("practice closed with requests in flight", "cancelled", n)
	}
	s.cancel()
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	if len(s.opts.Questions) == 0 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	if s.deck.Jumping() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	q, p := s.deck.Current()
	hints := []layout.KeyHint{{Key: "A-E", Description: "Choose"}}
	if q.Kind == bank.KindMulti && !p.Locked {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Confirm"})
	}
	if p.Badge.Kind == feedback.BadgeRetry {
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Retry"})
	}
	return append(hints,
		layout.KeyHint{Key: "←/→", Description: "Prev/" + s.deck.Nav.NextLabel()},
		layout.KeyHint{Key: "g", Description: "Go to"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

// CapturingInput reports whether the jump prompt owns the keyboard.
func (s *PracticeScreen) CapturingInput() bool { return s.deck.Jumping() }

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if handled, cmd := s.deck.Update(msg); handled {
		return s, cmd
	}

	switch msg := msg.(type) {
	case verifyDueMsg:
		if msg.owner != s {
			return s, nil
		}
		return s, s.handleVerifyDue(msg)
	case verifySettledMsg:
		if msg.owner != s {
			return s, nil
		}
		return s, s.handleSettled(msg.Settlement)
	case autoAdvanceMsg:
		if msg.owner != s || msg.Gen != s.deck.Nav.Generation() || s.deck.Nav.IsLast() {
			return s, nil
		}
		return s, s.next()
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if len(s.opts.Questions) == 0 {
		return router.Pop()
	}
	if s.deck.Jumping() {
		moved, cmd := s.deck.UpdateJump(msg)
		if moved {
			return tea.Batch(cmd, s.deck.Preload())
		}
		return cmd
	}

	key := msg.String()
	switch key {
	case "up", "k":
		s.deck.MoveCursor(-1)
		return nil
	case "down", "j":
		s.deck.MoveCursor(1)
		return nil
	case "enter":
		q, _ := s.deck.Current()
		if q.Kind == bank.KindMulti {
			return s.confirm()
		}
		return s.choose(s.deck.Cursor())
	case "x":
		return s.choose(s.deck.Cursor())
	case "r":
		return s.retry()
	case "left", "h":
		if s.deck.Nav.Prev() {
			return s.deck.Preload()
		}
		return nil
	case "right", "l", "space", " ":
		return s.next()
	case "home":
		if s.deck.Nav.First() {
			return s.deck.Preload()
		}
		return nil
	case "end":
		if s.deck.Nav.Last() {
			return s.deck.Preload()
		}
		return nil
	case "g":
		return s.deck.OpenJump()
	}

	if i, ok := s.deck.OptionForKey(key); ok {
		return s.choose(i)
	}
	return nil
}

// choose toggles option i of the current question. SINGLE questions are
// verified once the selection has settled.
func (s *PracticeScreen) choose(i int) tea.Cmd {
	q, p := s.deck.Current()
	if !p.Toggle(i) {
		return nil
	}
	s.deck.Cursors[s.deck.Nav.Current()] = i
	feedback.PaintSelection(p)
	if p.Badge.Kind == feedback.BadgeRetry {
		feedback.Clear(p)
	}
	if q.Kind != bank.KindSingle {
		return nil
	}

	s.selSeq[q.ID]++
	seq := s.selSeq[q.ID]
	if s.opts.Timings.VerifyDelay <= 0 {
		return s.handleVerifyDue(verifyDueMsg{owner: s, QuestionID: q.ID, Seq: seq})
	}
	id := q.ID
	return tea.Tick(s.opts.Timings.VerifyDelay, func(time.Time) tea.Msg {
		return verifyDueMsg{owner: s, QuestionID: id, Seq: seq}
	})
}

func (s *PracticeScreen) handleVerifyDue(msg verifyDueMsg) tea.Cmd {
	if msg.Seq != s.selSeq[msg.QuestionID] {
		return nil
	}
	p, i, ok := s.deck.PanelFor(msg.QuestionID)
	if !ok || !p.AnyChecked() {
		return nil
	}
	return s.submit(s.deck.Questions[i], p)
}

// confirm verifies a MULTI question, or nudges when nothing is checked.
func (s *PracticeScreen) confirm() tea.Cmd {
	q, p := s.deck.Current()
	if p.Locked || p.ConfirmDisabled {
		return nil
	}
	if !p.AnyChecked() {
		return s.deck.Nudge(p)
	}
	return s.submit(q, p)
}

func (s *PracticeScreen) submit(q bank.Question, p *feedback.Panel) tea.Cmd {
	t, err := s.coord.Submit(q.ID, verify.NewPayload(q.ID, q.Kind, p.Choice()...))
	if err != nil {
		s.logger.Debug("submit refused", "question_id", q.ID, "error", err)
		return nil
	}
	feedback.PaintPending(p)
	return s.run(t)
}

func (s *PracticeScreen) retry() tea.Cmd {
	_, p := s.deck.Current()
	if p.Badge.Kind != feedback.BadgeRetry {
		return nil
	}
	t, err := s.coord.Retry(p.QuestionID)
	if err != nil {
		if !errors.Is(err, coord.ErrAlreadyAttempted) {
			s.logger.Debug("retry refused", "question_id", p.QuestionID, "error", err)
		}
		return nil
	}
	feedback.PaintPending(p)
	return s.run(t)
}

func (s *PracticeScreen) run(t coord.Ticket) tea.Cmd {
	return func() tea.Msg {
		return verifySettledMsg{owner: s, Settlement: s.coord.Run(s.ctx, t)}
	}
}

func (s *PracticeScreen) handleSettled(st coord.Settlement) tea.Cmd {
	p, _, ok := s.deck.PanelFor(st.Ticket.QuestionID)
	if !ok {
		return nil
	}
	switch s.coord.Settle(st) {
	case coord.Accepted:
		feedback.PaintOutcome(p, st.Result, st.Ticket.Payload.Letters)
		feedback.Lock(p)
		return s.scheduleAutoAdvance(p)
	case coord.Failed:
		feedback.PaintFailure(p, st.Failure)
	}
	return nil
}

func (s *PracticeScreen) scheduleAutoAdvance(p *feedback.Panel) tea.Cmd {
	cur, curPanel := s.deck.Current()
	if s.opts.Timings.AutoAdvance <= 0 || cur.Kind != bank.KindSingle || curPanel != p || s.deck.Nav.IsLast() {
		return nil
	}
	gen := s.deck.Nav.Generation()
	return tea.Tick(s.opts.Timings.AutoAdvance, func(time.Time) tea.Msg {
		return autoAdvanceMsg{owner: s, Gen: gen}
	})
}

func (s *PracticeScreen) status() nav.Status {
	_, p := s.deck.Current()
	st, _ := s.coord.States().Lookup(p.QuestionID)
	return nav.Status{Attempted: st.Attempted, Pending: st.Pending, AnyChecked: p.AnyChecked()}
}

func (s *PracticeScreen) next() tea.Cmd {
	switch s.deck.Nav.Next(s.status()) {
	case nav.Moved:
		return s.deck.Preload()
	case nav.Finish:
		return s.finish()
	default:
		return s.deck.ShowHint("Answer this question before moving on.")
	}
}

func (s *PracticeScreen) finish() tea.Cmd {
	tally := score.Recompute(s.coord.States())
	return router.Replace(results.NewPractice(results.PracticeSummary{
		Tally:   tally,
		Total:   len(s.opts.Questions),
		Restart: s.opts.Restart,
	}))
}
