package exam

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/ccnaprep/ccnaprep/internal/ui/components"
	"github.com/ccnaprep/ccnaprep/internal/ui/theme"
)

func (s *ExamScreen) View(width, height int) string {
	if len(s.opts.Questions) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\nNo answerable questions in this bank.\n\nPress any key to go back.")
	}
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("\n\nGrading failed: " + s.errMsg + "\n\nPress any key to go back.")
	}
	if s.grading {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Primary).
			Render("\n\nGrading your answers…")
	}

	var b strings.Builder
	b.WriteString(s.deck.Progress(width - 4))
	b.WriteString("\n\n")
	b.WriteString(s.deck.Card(false).View(width - 2))
	b.WriteString("\n")

	_, p := s.deck.Current()
	prev := components.Button{Label: "← Prev", Enabled: s.deck.Nav.PrevEnabled()}
	next := components.Button{Label: s.deck.Nav.NextLabel() + " →", Enabled: p.AnyChecked()}
	b.WriteString(components.NavBar(prev, next))

	if hint := s.deck.Hint(); hint != "" {
		b.WriteString("\n" + theme.BadgeRetry.Render("⚠ "+hint))
	}
	if j := s.deck.JumpView(); j != "" {
		b.WriteString("\n\n" + j)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}
