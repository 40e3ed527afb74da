package feedback

import (
	"slices"
	"strings"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

// Badge texts.
const (
	TextPending   = "Verifying…"
	TextCorrect   = "Correct"
	TextIncorrect = "Incorrect. Answer: "
	TextTimeout   = "Timed out waiting for the server."
	TextFailed    = "Could not verify the answer."
	TextRetryHint = " Press r to retry."
)

// PaintSelection marks every checked option as selected and clears the
// rest.
func PaintSelection(p *Panel) {
	for i := range p.Options {
		p.Options[i].Selected = p.Options[i].Checked
	}
}

// PaintOutcome marks the correct options and, when the answer was wrong,
// the chosen options outside the correct set. choice may be in any order.
func PaintOutcome(p *Panel, res verify.Result, choice []string) {
	chosen := normalize(choice)
	for i := range p.Options {
		o := &p.Options[i]
		o.Correct = slices.Contains(res.CorrectLetters, o.Letter)
		o.Wrong = !res.Correct && !o.Correct && slices.Contains(chosen, o.Letter)
	}
	if res.Correct {
		p.Badge = Badge{Kind: BadgeSuccess, Text: TextCorrect}
	} else {
		p.Badge = Badge{Kind: BadgeFailure, Text: TextIncorrect + strings.Join(normalize(res.CorrectLetters), ", ")}
	}
	p.Explanation = res.Explanation
}

// PaintPending shows the verifying indicator and disables input until the
// request settles.
func PaintPending(p *Panel) {
	p.Badge = Badge{Kind: BadgePending, Text: TextPending}
	SetInputsEnabled(p, false)
}

// PaintFailure shows a retry badge and re-enables input. Timeouts get
// their own message.
func PaintFailure(p *Panel, f verify.Failure) {
	text := TextFailed
	if f.Timeout() {
		text = TextTimeout
	}
	p.Badge = Badge{Kind: BadgeRetry, Text: text + TextRetryHint}
	SetInputsEnabled(p, true)
}

// Clear removes the badge, leaving markers intact.
func Clear(p *Panel) {
	p.Badge = Badge{}
}

// SetInputsEnabled toggles the options and the confirm control. Locked
// panels stay disabled.
func SetInputsEnabled(p *Panel, enabled bool) {
	if p.Locked {
		return
	}
	p.InputsDisabled = !enabled
	p.ConfirmDisabled = !enabled
}

// Lock disables every input for the rest of the session.
func Lock(p *Panel) {
	p.InputsDisabled = true
	p.ConfirmDisabled = true
	p.Locked = true
}

// Nudge starts a shake and returns its sequence number; pass it to
// EndNudge after NudgeDuration.
func Nudge(p *Panel) int {
	p.NudgeSeq++
	p.Nudged = true
	return p.NudgeSeq
}

// EndNudge clears the shake if seq is still the latest nudge.
func EndNudge(p *Panel, seq int) {
	if seq == p.NudgeSeq {
		p.Nudged = false
	}
}

// normalize orders letters as A..E and drops duplicates and unknowns.
func normalize(letters []string) []string {
	out := make([]string, 0, len(letters))
	for _, l := range bank.Letters {
		if slices.Contains(letters, l) {
			out = append(out, l)
		}
	}
	return out
}
