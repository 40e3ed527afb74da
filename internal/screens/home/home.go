package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ccnaprep/ccnaprep/internal/router"
	"github.com/ccnaprep/ccnaprep/internal/screen"
	"github.com/ccnaprep/ccnaprep/internal/ui/components"
	"github.com/ccnaprep/ccnaprep/internal/ui/theme"
)

// Options wires the home menu to the screens it opens.
type Options struct {
	BankTitle     string
	QuestionCount int
	Server        string
	NewPractice   func() screen.Screen
	NewExam       func() screen.Screen
	NewStats      func() screen.Screen
}

// HomeScreen is the main menu.
type HomeScreen struct {
	opts Options
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	push := func(factory func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd { return router.Push(factory()) }
	}
	items := []components.MenuItem{
		{Label: "Practice", Key: "p", Description: "Each answer is checked as you go", Action: push(opts.NewPractice), Disabled: opts.NewPractice == nil || opts.QuestionCount == 0},
		{Label: "Exam", Key: "e", Description: "Answer everything, then get graded", Action: push(opts.NewExam), Disabled: opts.NewExam == nil || opts.QuestionCount == 0},
		{Label: "Stats", Key: "s", Description: "Accuracy history and weakest questions", Action: push(opts.NewStats), Disabled: opts.NewStats == nil},
		{Label: "Quit", Key: "q", Action: func() tea.Cmd { return tea.Quit }},
	}
	return &HomeScreen{opts: opts, menu: components.NewMenu(items)}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	title := h.opts.BankTitle
	if title == "" {
		title = "CCNA practice"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(
		fmt.Sprintf("%d questions · %s", h.opts.QuestionCount, h.opts.Server)))
	b.WriteString("\n\n")

	menu := theme.Card.Render(strings.TrimRight(h.menu.View(), "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, menu))
	return b.String()
}

func (h *HomeScreen) Title() string {
	return "Home"
}
