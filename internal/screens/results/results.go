// Package results shows the end-of-run summary for practice and exam.
package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ccnaprep/ccnaprep/internal/grading"
	"github.com/ccnaprep/ccnaprep/internal/router"
	"github.com/ccnaprep/ccnaprep/internal/score"
	"github.com/ccnaprep/ccnaprep/internal/screen"
	"github.com/ccnaprep/ccnaprep/internal/ui/components"
	"github.com/ccnaprep/ccnaprep/internal/ui/layout"
	"github.com/ccnaprep/ccnaprep/internal/ui/theme"
)

// PassPercent is the score shown as a pass.
const PassPercent = 80

// PracticeSummary is the outcome of a practice run.
type PracticeSummary struct {
	Tally   score.Tally
	Total   int
	Restart func() screen.Screen
}

// ResultsScreen implements screen.Screen for both modes.
type ResultsScreen struct {
	title   string
	percent float64
	lines   []string
	items   []grading.Item
	restart func() screen.Screen
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// NewPractice summarizes a practice run.
func NewPractice(sum PracticeSummary) *ResultsScreen {
	return &ResultsScreen{
		title:   "Practice complete",
		percent: sum.Tally.Percent(sum.Total),
		lines: []string{
			fmt.Sprintf("Correct / attempted: %s", sum.Tally),
			fmt.Sprintf("Questions: %d", sum.Total),
		},
		restart: sum.Restart,
	}
}

// NewExam summarizes a graded exam.
func NewExam(r grading.Report, restart func() screen.Screen) *ResultsScreen {
	lines := []string{
		fmt.Sprintf("Correct: %d of %d", r.Correct, r.Total),
		fmt.Sprintf("Answered: %d", r.Answered),
	}
	if r.Failed > 0 {
		lines = append(lines, fmt.Sprintf("Could not verify: %d (counted as wrong)", r.Failed))
	}
	return &ResultsScreen{
		title:   "Exam complete",
		percent: r.Percent,
		lines:   lines,
		items:   r.Items,
		restart: restart,
	}
}

func (s *ResultsScreen) Init() tea.Cmd { return nil }

func (s *ResultsScreen) Title() string { return "Results" }

// Percent returns the score shown.
func (s *ResultsScreen) Percent() float64 { return s.percent }

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Esc", Description: "Home"}}
	if s.restart != nil {
		hints = append([]layout.KeyHint{{Key: "r", Description: "Restart"}}, hints...)
	}
	return hints
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "r":
		if s.restart != nil {
			return s, router.Replace(s.restart())
		}
	case "enter", "q":
		return s, router.Pop()
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(s.title))
	b.WriteString("\n\n")

	pctStyle := theme.Incorrect
	if s.percent >= PassPercent {
		pctStyle = theme.Correct
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, pctStyle.Render(fmt.Sprintf("%.0f%%", s.percent))))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	bar := components.NewProgressBar("Score", int(s.percent+0.5), barWidth).View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar))
	b.WriteString("\n\n")

	for _, l := range s.lines {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Body.Render(l)))
		b.WriteString("\n")
	}

	if len(s.items) > 0 && !layout.IsCompactHeight(height) {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.itemList(height-14)))
	}
	return b.String()
}

func (s *ResultsScreen) itemList(maxRows int) string {
	var rows []string
	for i, it := range s.items {
		if maxRows > 0 && i >= maxRows {
			rows = append(rows, theme.Hint.Render(fmt.Sprintf("… %d more", len(s.items)-i)))
			break
		}
		rows = append(rows, itemRow(i, it))
	}
	return strings.Join(rows, "\n")
}

func itemRow(i int, it grading.Item) string {
	answer := strings.Join(it.Choice, ", ")
	switch {
	case !it.Answered:
		return theme.Disabled.Render(fmt.Sprintf("%3d. %-12s  unanswered", i+1, it.QuestionID))
	case it.Err != nil:
		return theme.BadgeRetry.Render(fmt.Sprintf("%3d. %-12s  %-10s  not verified", i+1, it.QuestionID, answer))
	case it.Correct:
		return theme.Correct.Render(fmt.Sprintf("%3d. %-12s  %-10s  ✓", i+1, it.QuestionID, answer))
	default:
		return theme.Incorrect.Render(fmt.Sprintf("%3d. %-12s  %-10s  ✗ %s", i+1, it.QuestionID, answer,
			strings.Join(it.Result.CorrectLetters, ", ")))
	}
}
