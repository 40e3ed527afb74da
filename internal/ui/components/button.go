package components

import (
	"charm.land/lipgloss/v2"

	"github.com/ccnaprep/ccnaprep/internal/ui/theme"
)

// Button is a styled navigation control.
type Button struct {
	Label   string
	Enabled bool
}

// View renders the button.
func (b Button) View() string {
	if b.Enabled {
		return theme.ButtonActive.Render(b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}

// NavBar lays out Prev and Next/Finish controls side by side.
func NavBar(prev, next Button) string {
	return lipgloss.JoinHorizontal(lipgloss.Center, prev.View(), "  ", next.View())
}
