// Package stats shows the verification history.
package stats

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/ccnaprep/ccnaprep/internal/router"
	"github.com/ccnaprep/ccnaprep/internal/score"
	"github.com/ccnaprep/ccnaprep/internal/screen"
	"github.com/ccnaprep/ccnaprep/internal/store"
	"github.com/ccnaprep/ccnaprep/internal/ui/layout"
	"github.com/ccnaprep/ccnaprep/internal/ui/theme"
)

type statsLoadedMsg struct {
	Summary store.Summary
	Err     error
}

// StatsScreen displays history totals and the weakest questions.
type StatsScreen struct {
	repo    store.StatsRepo
	summary store.Summary
	offset  int
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates a StatsScreen. repo may be nil when history is disabled.
func New(repo store.StatsRepo) *StatsScreen {
	return &StatsScreen{repo: repo}
}

func (s *StatsScreen) Init() tea.Cmd {
	if s.repo == nil {
		return nil
	}
	repo := s.repo
	return func() tea.Msg {
		sum, err := repo.Summary(context.Background())
		return statsLoadedMsg{Summary: sum, Err: err}
	}
}

func (s *StatsScreen) Title() string {
	return "Stats"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.summary = msg.Summary
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, router.Pop()
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < len(s.summary.Questions)-1 {
				s.offset++
			}
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	switch {
	case s.repo == nil:
		return center(dim.Render("\n\nHistory is disabled."))
	case s.errMsg != "":
		return center(lipgloss.NewStyle().Foreground(theme.Error).Render("\n\nError: " + s.errMsg))
	case !s.loaded:
		return center(dim.Render("\n\nLoading history..."))
	case s.summary.Attempts == 0 && s.summary.Exams == 0:
		return center(dim.Italic(true).Render("\n\nNo history yet. Start practicing!"))
	}

	sum := s.summary
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(theme.Body.Render(fmt.Sprintf(
		"%d sessions   %d verified   %.0f%% correct   %d timeouts   %d errors",
		sum.Sessions, sum.Attempts, score.Percent(sum.Correct, sum.Attempts), sum.Timeouts, sum.Failures))))
	b.WriteString("\n")
	if sum.Exams > 0 {
		b.WriteString(center(theme.Body.Render(fmt.Sprintf(
			"%d exams   best %.0f%%   last %.0f%%", sum.Exams, sum.BestExam, sum.LastExam))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(center(theme.Title.Render("Weakest questions")))
	b.WriteString("\n\n")

	rows := max(height-8, 1)
	end := min(s.offset+rows, len(sum.Questions))
	for _, q := range sum.Questions[s.offset:end] {
		style := theme.Correct
		if q.Accuracy() < 0.5 {
			style = theme.Incorrect
		} else if q.Accuracy() < 0.8 {
			style = theme.BadgeRetry
		}
		line := fmt.Sprintf("%-14s %3d/%-3d %4.0f%%   %s",
			q.QuestionID, q.Correct, q.Attempts, q.Accuracy()*100, humanize.Time(q.LastAnswered))
		b.WriteString(center(style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}
