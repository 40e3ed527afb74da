package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, cool console tones
var (
	Primary   = lipgloss.Color("#38BDF8") // Sky
	Secondary = lipgloss.Color("#2DD4BF") // Teal
	Accent    = lipgloss.Color("#FBBF24") // Amber
	Success   = lipgloss.Color("#4ADE80") // Green
	Error     = lipgloss.Color("#F87171") // Red
	Warning   = lipgloss.Color("#FB923C") // Orange
	Text      = lipgloss.Color("#E2E8F0") // Light slate
	TextDim   = lipgloss.Color("#64748B") // Slate
	BgCard    = lipgloss.Color("#111827") // Near black
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Option states
var (
	Cursor = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	Selected = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Disabled = lipgloss.NewStyle().
			Foreground(TextDim)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Badges
var (
	BadgePending = lipgloss.NewStyle().
			Foreground(Primary).
			Italic(true)

	BadgeRetry = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgCard).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)

	CardNudged = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Error).
			Padding(0, 2)
)
