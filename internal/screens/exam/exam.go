// Package exam implements the exam screen: answers are collected without
// feedback and graded together when the candidate finishes.
package exam

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/feedback"
	"github.com/ccnaprep/ccnaprep/internal/grading"
	"github.com/ccnaprep/ccnaprep/internal/imageload"
	"github.com/ccnaprep/ccnaprep/internal/nav"
	"github.com/ccnaprep/ccnaprep/internal/router"
	"github.com/ccnaprep/ccnaprep/internal/screen"
	"github.com/ccnaprep/ccnaprep/internal/screens/quiz"
	"github.com/ccnaprep/ccnaprep/internal/screens/results"
	"github.com/ccnaprep/ccnaprep/internal/store"
	"github.com/ccnaprep/ccnaprep/internal/ui/layout"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

// Options are the dependencies of an exam screen.
type Options struct {
	SessionID    string
	Questions    []bank.Question
	Verifier     verify.Verifier
	Images       *imageload.Loader
	EventRepo    store.EventRepo // optional
	Logger       *slog.Logger
	Grading      grading.Options
	PreloadDelay time.Duration
	Restart      func() screen.Screen
}

// gradedMsg carries the finished grading.
type gradedMsg struct {
	owner  *ExamScreen
	Report grading.Report
	Err    error
}

// ExamScreen implements screen.Screen for exam mode.
type ExamScreen struct {
	opts    Options
	deck    *quiz.Deck
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	started time.Time

	grading bool
	errMsg  string
}

var _ screen.Screen = (*ExamScreen)(nil)
var _ screen.KeyHintProvider = (*ExamScreen)(nil)
var _ screen.StatusProvider = (*ExamScreen)(nil)
var _ screen.Closer = (*ExamScreen)(nil)

// New creates an exam screen.
func New(opts Options) *ExamScreen {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ExamScreen{
		opts:    opts,
		deck:    quiz.NewDeck(ctx, opts.Questions, nav.PolicyExam, opts.Images, opts.PreloadDelay, logger),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
		started: time.Now(),
	}
}

func (s *ExamScreen) Init() tea.Cmd {
	if len(s.opts.Questions) == 0 {
		return nil
	}
	return s.deck.Preload()
}

func (s *ExamScreen) Title() string { return "Exam" }

// Answered counts questions with at least one option checked.
func (s *ExamScreen) Answered() int {
	n := 0
	for _, p := range s.deck.Panels {
		if p.AnyChecked() {
			n++
		}
	}
	return n
}

// Status shows how many questions have an answer.
func (s *ExamScreen) Status() string {
	return fmt.Sprintf("Answered %d / %d", s.Answered(), len(s.opts.Questions))
}

// Close abandons grading in progress.
func (s *ExamScreen) Close() { s.cancel() }

// CapturingInput reports whether the jump prompt owns the keyboard.
func (s *ExamScreen) CapturingInput() bool { return s.deck.Jumping() }

func (s *ExamScreen) KeyHints() []layout.KeyHint {
	if s.grading {
		return []layout.KeyHint{{Key: "Esc", Description: "Abandon"}}
	}
	if s.deck.Jumping() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "A-E", Description: "Choose"},
		{Key: "←/→", Description: "Prev/" + s.deck.Nav.NextLabel()},
		{Key: "Home/End", Description: "First/Last"},
		{Key: "g", Description: "Go to"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ExamScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if handled, cmd := s.deck.Update(msg); handled {
		return s, cmd
	}
	switch msg := msg.(type) {
	case gradedMsg:
		if msg.owner != s {
			return s, nil
		}
		return s, s.handleGraded(msg)
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *ExamScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if len(s.opts.Questions) == 0 || s.errMsg != "" {
		return router.Pop()
	}
	if s.grading {
		return nil
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
	case "enter", "x":
		return s.choose(s.deck.Cursor())
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

func (s *ExamScreen) choose(i int) tea.Cmd {
	_, p := s.deck.Current()
	if p.Toggle(i) {
		s.deck.Cursors[s.deck.Nav.Current()] = i
		feedback.PaintSelection(p)
	}
	return nil
}

func (s *ExamScreen) next() tea.Cmd {
	_, p := s.deck.Current()
	switch s.deck.Nav.Next(nav.Status{AnyChecked: p.AnyChecked()}) {
	case nav.Moved:
		return s.deck.Preload()
	case nav.Finish:
		return s.finish()
	default:
		return tea.Batch(s.deck.Nudge(p), s.deck.ShowHint("Select at least one option to continue."))
	}
}

// Sheet returns the candidate's answers in question order.
func (s *ExamScreen) Sheet() []grading.Entry {
	sheet := make([]grading.Entry, len(s.opts.Questions))
	for i, q := range s.opts.Questions {
		sheet[i] = grading.Entry{Question: q, Choice: s.deck.Panels[i].Choice()}
	}
	return sheet
}

func (s *ExamScreen) finish() tea.Cmd {
	s.grading = true
	for _, p := range s.deck.Panels {
		feedback.Lock(p)
	}
	sheet := s.Sheet()
	ctx := s.ctx
	v := s.opts.Verifier
	opts := s.opts.Grading
	return func() tea.Msg {
		r, err := grading.Grade(ctx, v, sheet, opts)
		return gradedMsg{owner: s, Report: r, Err: err}
	}
}

func (s *ExamScreen) handleGraded(msg gradedMsg) tea.Cmd {
	s.grading = false
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		s.logger.Warn("exam grading failed", "error", msg.Err)
		return nil
	}
	r := msg.Report
	s.logger.Info("exam graded",
		"session_id", s.opts.SessionID, "total", r.Total, "correct", r.Correct, "failed", r.Failed, "percent", r.Percent)

	if s.opts.EventRepo != nil {
		err := s.opts.EventRepo.AppendExamResult(context.Background(), store.ExamResultData{
			SessionID:    s.opts.SessionID,
			Total:        r.Total,
			Answered:     r.Answered,
			Correct:      r.Correct,
			Failed:       r.Failed,
			Percent:      r.Percent,
			DurationSecs: int(time.Since(s.started).Seconds()),
		})
		if err != nil {
			s.logger.Warn("failed to record exam result", "error", err)
		}
	}
	return router.Replace(results.NewExam(r, s.opts.Restart))
}
