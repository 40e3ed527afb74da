package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

func panelOf(kind bank.Kind, letters ...string) *Panel {
	q := bank.Question{ID: "q1", Kind: kind}
	for _, l := range letters {
		q.Options = append(q.Options, bank.Option{Letter: l, Text: "option " + l})
	}
	return NewPanel(q)
}

func marks(p *Panel, pick func(Option) bool) []string {
	var out []string
	for _, o := range p.Options {
		if pick(o) {
			out = append(out, o.Letter)
		}
	}
	return out
}

func TestToggleSingleIsExclusive(t *testing.T) {
	p := panelOf(bank.KindSingle, "A", "B", "C")
	require.True(t, p.Toggle(0))
	require.True(t, p.Toggle(1))
	assert.Equal(t, []string{"B"}, p.Choice())
}

func TestToggleMulti(t *testing.T) {
	p := panelOf(bank.KindMulti, "A", "B", "C")
	p.Toggle(0)
	p.Toggle(2)
	p.Toggle(1)
	p.Toggle(1)
	assert.Equal(t, []string{"A", "C"}, p.Choice())
	assert.True(t, p.AnyChecked())
}

func TestToggleRefusedWhenDisabled(t *testing.T) {
	p := panelOf(bank.KindSingle, "A", "B")
	PaintPending(p)
	assert.False(t, p.Toggle(0))
	assert.False(t, p.AnyChecked())
	assert.False(t, panelOf(bank.KindSingle, "A").Toggle(5))
}

func TestPaintSelectionIdempotent(t *testing.T) {
	p := panelOf(bank.KindMulti, "A", "B", "C")
	p.Toggle(0)
	p.Toggle(2)

	PaintSelection(p)
	first := marks(p, func(o Option) bool { return o.Selected })
	PaintSelection(p)
	assert.Equal(t, first, marks(p, func(o Option) bool { return o.Selected }))
	assert.Equal(t, []string{"A", "C"}, first)

	p.Toggle(0)
	PaintSelection(p)
	assert.Equal(t, []string{"C"}, marks(p, func(o Option) bool { return o.Selected }))
}

func TestPaintOutcomeSingleCorrect(t *testing.T) {
	p := panelOf(bank.KindSingle, "A", "B", "C", "D")
	PaintOutcome(p, verify.Result{Correct: true, CorrectLetters: []string{"B"}}, []string{"B"})

	assert.Equal(t, []string{"B"}, marks(p, func(o Option) bool { return o.Correct }))
	assert.Empty(t, marks(p, func(o Option) bool { return o.Wrong }))
	assert.Equal(t, Badge{Kind: BadgeSuccess, Text: TextCorrect}, p.Badge)
}

func TestPaintOutcomeMultiIncorrect(t *testing.T) {
	p := panelOf(bank.KindMulti, "A", "B", "C", "D")
	res := verify.Result{Correct: false, CorrectLetters: []string{"A", "B"}, Explanation: "A and B"}
	PaintOutcome(p, res, []string{"C", "A"})

	assert.Equal(t, []string{"A", "B"}, marks(p, func(o Option) bool { return o.Correct }))
	assert.Equal(t, []string{"C"}, marks(p, func(o Option) bool { return o.Wrong }))
	assert.Equal(t, BadgeFailure, p.Badge.Kind)
	assert.Equal(t, "Incorrect. Answer: A, B", p.Badge.Text)
	assert.Equal(t, "A and B", p.Explanation)
}

func TestPaintFailureMessages(t *testing.T) {
	p := panelOf(bank.KindSingle, "A", "B")
	PaintPending(p)
	assert.True(t, p.InputsDisabled)
	assert.Equal(t, TextPending, p.Badge.Text)

	PaintFailure(p, verify.Failure{Kind: verify.FailureTimeout})
	assert.Equal(t, BadgeRetry, p.Badge.Kind)
	assert.Contains(t, p.Badge.Text, TextTimeout)
	assert.False(t, p.InputsDisabled)

	PaintFailure(p, verify.Failure{Kind: verify.FailureOther})
	assert.Contains(t, p.Badge.Text, TextFailed)
	assert.NotContains(t, p.Badge.Text, TextTimeout)
}

func TestLockIsIrreversible(t *testing.T) {
	p := panelOf(bank.KindMulti, "A", "B")
	Lock(p)
	SetInputsEnabled(p, true)
	assert.True(t, p.Locked)
	assert.True(t, p.InputsDisabled)
	assert.True(t, p.ConfirmDisabled)
	assert.False(t, p.Toggle(0))
}

func TestNudgeOnlyLatestClears(t *testing.T) {
	p := panelOf(bank.KindMulti, "A", "B")
	first := Nudge(p)
	second := Nudge(p)

	EndNudge(p, first)
	assert.True(t, p.Nudged)
	EndNudge(p, second)
	assert.False(t, p.Nudged)
}
