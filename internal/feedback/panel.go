// Package feedback models the visible state of one question: which options
// are checked and how they are marked, whether inputs are usable, and the
// result badge.
package feedback

import (
	"time"

	"github.com/ccnaprep/ccnaprep/internal/bank"
)

// NudgeDuration is how long a nudge stays visible.
const NudgeDuration = 400 * time.Millisecond

// BadgeKind selects how a badge is styled.
type BadgeKind int

const (
	BadgeNone BadgeKind = iota
	BadgePending
	BadgeSuccess
	BadgeFailure
	BadgeRetry
)

// Badge is the result line under a question.
type Badge struct {
	Kind BadgeKind
	Text string
}

// Option is one answer choice and its markers.
type Option struct {
	Letter string
	Text   string

	Checked  bool
	Selected bool
	Correct  bool
	Wrong    bool
}

// Panel is the rendered state of one question.
type Panel struct {
	QuestionID string
	Kind       bank.Kind
	Options    []Option

	InputsDisabled  bool
	ConfirmDisabled bool
	Locked          bool
	Badge           Badge
	Explanation     string

	// Nudged is set while the question shakes; NudgeSeq identifies the
	// nudge so only the latest one clears it.
	Nudged   bool
	NudgeSeq int
}

// NewPanel builds an unchecked panel for q.
func NewPanel(q bank.Question) *Panel {
	p := &Panel{QuestionID: q.ID, Kind: q.Kind}
	for _, o := range q.Options {
		p.Options = append(p.Options, Option{Letter: o.Letter, Text: o.Text})
	}
	return p
}

// Choice returns the checked letters in option order.
func (p *Panel) Choice() []string {
	var out []string
	for _, o := range p.Options {
		if o.Checked {
			out = append(out, o.Letter)
		}
	}
	return out
}

// AnyChecked reports whether at least one option is checked.
func (p *Panel) AnyChecked() bool {
	for _, o := range p.Options {
		if o.Checked {
			return true
		}
	}
	return false
}

// Toggle checks option i. SINGLE panels behave like radio buttons: the
// chosen option becomes the only checked one. Returns false when inputs
// are disabled or i is out of range.
func (p *Panel) Toggle(i int) bool {
	if p.InputsDisabled || p.Locked || i < 0 || i >= len(p.Options) {
		return false
	}
	if p.Kind == bank.KindMulti {
		p.Options[i].Checked = !p.Options[i].Checked
		return true
	}
	for j := range p.Options {
		p.Options[j].Checked = j == i
	}
	return true
}
