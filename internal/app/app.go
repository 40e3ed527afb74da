package app

import (
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/config"
	"github.com/ccnaprep/ccnaprep/internal/grading"
	"github.com/ccnaprep/ccnaprep/internal/imageload"
	"github.com/ccnaprep/ccnaprep/internal/router"
	"github.com/ccnaprep/ccnaprep/internal/screen"
	"github.com/ccnaprep/ccnaprep/internal/screens/exam"
	"github.com/ccnaprep/ccnaprep/internal/screens/home"
	"github.com/ccnaprep/ccnaprep/internal/screens/practice"
	"github.com/ccnaprep/ccnaprep/internal/screens/stats"
	"github.com/ccnaprep/ccnaprep/internal/store"
	"github.com/ccnaprep/ccnaprep/internal/ui/layout"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

// Start selects the first screen.
type Start int

const (
	StartHome Start = iota
	StartPractice
	StartExam
	StartStats
)

// Options holds the dependencies injected into the TUI.
type Options struct {
	Title     string
	Questions []bank.Question
	Config    config.Config
	Verifier  verify.Verifier
	Images    *imageload.Loader
	EventRepo store.EventRepo // nil when history is disabled
	StatsRepo store.StatsRepo // nil when history is disabled
	Logger    *slog.Logger
	Start     Start
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel on the requested start screen.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	f := factories{opts: opts}

	homeScreen := home.New(home.Options{
		BankTitle:     opts.Title,
		QuestionCount: len(opts.Questions),
		Server:        opts.Config.Server.URL,
		NewPractice:   f.practice,
		NewExam:       f.exam,
		NewStats:      f.stats,
	})
	r := router.New(homeScreen)

	var first screen.Screen
	switch opts.Start {
	case StartPractice:
		first = f.practice()
	case StartExam:
		first = f.exam()
	case StartStats:
		first = f.stats()
	}
	if first != nil {
		r.Push(first)
	}
	return AppModel{router: r}
}

// factories builds a fresh screen, with its own session, per visit.
type factories struct {
	opts Options
}

func (f factories) questions() []bank.Question {
	if f.opts.Config.Bank.Shuffle {
		return bank.Shuffled(f.opts.Questions, nil)
	}
	return f.opts.Questions
}

func (f factories) verifier(sessionID, mode string) verify.Verifier {
	if f.opts.EventRepo == nil {
		return f.opts.Verifier
	}
	return verify.WithRecording(f.opts.Verifier, f.opts.EventRepo, sessionID, mode, f.opts.Logger)
}

func (f factories) practice() screen.Screen {
	sessionID := uuid.NewString()
	cfg := f.opts.Config
	return practice.New(practice.Options{
		Questions: f.questions(),
		Verifier:  f.verifier(sessionID, store.ModePractice),
		Images:    f.opts.Images,
		Logger:    f.opts.Logger.With("session_id", sessionID, "mode", store.ModePractice),
		Timings: practice.Timings{
			Timeout:      cfg.Server.Timeout,
			VerifyDelay:  cfg.Practice.VerifyDelay,
			AutoAdvance:  cfg.Practice.AutoAdvance,
			PreloadDelay: cfg.Practice.PreloadDelay,
		},
		Restart: f.practice,
	})
}

func (f factories) exam() screen.Screen {
	sessionID := uuid.NewString()
	cfg := f.opts.Config
	return exam.New(exam.Options{
		SessionID: sessionID,
		Questions: f.questions(),
		Verifier:  f.verifier(sessionID, store.ModeExam),
		Images:    f.opts.Images,
		EventRepo: f.opts.EventRepo,
		Logger:    f.opts.Logger.With("session_id", sessionID, "mode", store.ModeExam),
		Grading: grading.Options{
			Concurrency: cfg.Exam.Concurrency,
			Timeout:     cfg.Server.Timeout,
		},
		PreloadDelay: cfg.Practice.PreloadDelay,
		Restart:      f.exam,
	})
}

func (f factories) stats() screen.Screen {
	return stats.New(f.opts.StatsRepo)
}

func (m AppModel) Init() tea.Cmd {
	if m.router.Depth() > 1 {
		return m.router.Active().Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Pop()
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(hp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program. Every screen still on the stack is
// closed on exit, cancelling in-flight verifications.
func Run(opts Options) error {
	model := newAppModel(opts)
	defer model.router.CloseAll()

	p := tea.NewProgram(model)
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
