package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/ccnaprep/ccnaprep/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent int // 0..100
	Width   int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, Width: width}
}

// Filled returns the number of filled cells for barWidth.
func (p ProgressBar) Filled(barWidth int) int {
	filled := barWidth * p.Percent / 100
	return max(0, min(filled, barWidth))
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	const percentWidth = 6 // "  100%"
	barWidth := p.Width - lipgloss.Width(result) - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := p.Filled(barWidth)
	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %d%%", p.Percent))
	return result
}
