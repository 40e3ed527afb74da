package results

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnaprep/ccnaprep/internal/grading"
	"github.com/ccnaprep/ccnaprep/internal/router"
	"github.com/ccnaprep/ccnaprep/internal/score"
	"github.com/ccnaprep/ccnaprep/internal/screen"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestNewPractice(t *testing.T) {
	s := NewPractice(PracticeSummary{Tally: score.Tally{Correct: 3, Attempted: 4}, Total: 5})
	assert.Equal(t, "Results", s.Title())
	assert.InDelta(t, 60.0, s.Percent(), 0.001)

	view := s.View(80, 24)
	assert.Contains(t, view, "Practice complete")
	assert.Contains(t, view, "3 / 4")
	assert.Contains(t, view, "60%")
}

func TestNewExam(t *testing.T) {
	r := grading.Report{
		Total: 3, Answered: 2, Correct: 1, Failed: 1, Percent: 100.0 / 3,
		Items: []grading.Item{
			{QuestionID: "Q1", Choice: []string{"A"}, Answered: true, Correct: true},
			{QuestionID: "Q2", Choice: []string{"B"}, Answered: true, Err: errors.New("timeout")},
			{QuestionID: "Q3"},
		},
	}
	s := NewExam(r, nil)
	view := s.View(80, 40)
	assert.Contains(t, view, "Exam complete")
	assert.Contains(t, view, "Correct: 1 of 3")
	assert.Contains(t, view, "Could not verify: 1")
	assert.Contains(t, view, "not verified")
	assert.Contains(t, view, "unanswered")
}

func TestIncorrectItemShowsAnswer(t *testing.T) {
	row := itemRow(0, grading.Item{
		QuestionID: "Q9", Choice: []string{"A"}, Answered: true,
		Result: verify.Result{CorrectLetters: []string{"C", "D"}},
	})
	assert.Contains(t, row, "C, D")
}

func TestRestart(t *testing.T) {
	restarted := NewPractice(PracticeSummary{})
	s := NewPractice(PracticeSummary{Restart: func() screen.Screen { return restarted }})
	assert.Len(t, s.KeyHints(), 2)

	_, cmd := s.Update(keyPress('r'))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Same(t, restarted, msg.Screen)
}

func TestRestartUnavailable(t *testing.T) {
	s := NewPractice(PracticeSummary{})
	assert.Len(t, s.KeyHints(), 1)
	_, cmd := s.Update(keyPress('r'))
	assert.Nil(t, cmd)
}

func TestEnterReturnsHome(t *testing.T) {
	s := NewPractice(PracticeSummary{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}
