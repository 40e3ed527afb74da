package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/config"
	"github.com/ccnaprep/ccnaprep/internal/logging"
	"github.com/ccnaprep/ccnaprep/internal/router"
	"github.com/ccnaprep/ccnaprep/internal/screens/practice"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

func testOptions(start Start) Options {
	return Options{
		Title: "Test bank",
		Questions: []bank.Question{
			{ID: "Q1", Kind: bank.KindSingle, Text: "one", Options: []bank.Option{{Letter: "A", Text: "a"}, {Letter: "B", Text: "b"}}},
			{ID: "Q2", Kind: bank.KindSingle, Text: "two", Options: []bank.Option{{Letter: "A", Text: "a"}, {Letter: "B", Text: "b"}}},
		},
		Config: config.DefaultConfig(),
		Verifier: verify.VerifierFunc(func(context.Context, verify.Payload) (verify.Result, error) {
			return verify.Result{Correct: true, CorrectLetters: []string{"A"}}, nil
		}),
		Logger: logging.Discard(),
		Start:  start,
	}
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am, cmd
}

func TestNewAppModel_StartScreens(t *testing.T) {
	tests := []struct {
		start Start
		depth int
		title string
	}{
		{StartHome, 1, "Home"},
		{StartPractice, 2, "Practice"},
		{StartExam, 2, "Exam"},
		{StartStats, 2, "Stats"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			m := newAppModel(testOptions(tt.start))
			assert.Equal(t, tt.depth, m.router.Depth())
			assert.Equal(t, tt.title, m.router.Active().Title())
		})
	}
}

func TestAppModel_EscPops(t *testing.T) {
	m := newAppModel(testOptions(StartStats))
	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, 1, m.router.Depth())

	// Esc on the home screen does nothing.
	_, cmd = update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
}

func TestAppModel_EscClosesJumpPromptFirst(t *testing.T) {
	m := newAppModel(testOptions(StartPractice))
	p, ok := m.router.Active().(*practice.PracticeScreen)
	require.True(t, ok)

	m, _ = update(t, m, tea.KeyPressMsg{Code: 'g', Text: "g"})
	require.True(t, p.CapturingInput())

	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, p.CapturingInput())
	assert.Equal(t, 2, m.router.Depth())
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newAppModel(testOptions(StartHome))
	_, cmd := update(t, m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppModel_HomeOpensFreshSessions(t *testing.T) {
	m := newAppModel(testOptions(StartHome))

	_, cmd := update(t, m, tea.KeyPressMsg{Code: 'p', Text: "p"})
	require.NotNil(t, cmd)
	first, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)

	_, cmd = update(t, m, tea.KeyPressMsg{Code: 'p', Text: "p"})
	second := cmd().(router.PushScreenMsg)
	assert.NotSame(t, first.Screen, second.Screen)
}

func TestAppModel_ShuffleKeepsQuestions(t *testing.T) {
	opts := testOptions(StartHome)
	opts.Config.Bank.Shuffle = true
	f := factories{opts: opts}
	assert.ElementsMatch(t, opts.Questions, f.questions())
}

func TestAppModel_ViewBeforeSize(t *testing.T) {
	m := newAppModel(testOptions(StartHome))
	v := m.View()
	assert.True(t, v.AltScreen)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 100, m.width)
	assert.NotPanics(t, func() { m.View() })
}
