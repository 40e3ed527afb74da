package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/feedback"
	"github.com/ccnaprep/ccnaprep/internal/imageload"
	"github.com/ccnaprep/ccnaprep/internal/ui/theme"
)

// ImageState is what the question card knows about its image.
type ImageState int

const (
	ImageNone ImageState = iota
	ImageLoading
	ImageLoaded
	ImageHidden
)

// QuestionCard renders one question and its feedback panel.
type QuestionCard struct {
	Question   bank.Question
	Panel      *feedback.Panel
	Cursor     int
	Image      imageload.Image
	ImageState ImageState
	// ShowConfirm renders the confirm control for MULTI questions.
	ShowConfirm bool
}

// View renders the card at width.
func (c QuestionCard) View(width int) string {
	inner := max(width-6, 20)
	var b strings.Builder

	kind := "Choose one"
	if c.Question.Kind == bank.KindMulti {
		kind = "Choose all that apply"
	}
	b.WriteString(theme.Hint.Render(kind) + "\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(inner).Render(c.Question.Text))
	b.WriteString("\n")

	if img := c.imageLine(); img != "" {
		b.WriteString("\n" + img + "\n")
	}
	b.WriteString("\n")

	for i, o := range c.Panel.Options {
		b.WriteString(c.optionLine(i, o, inner) + "\n")
	}

	if c.ShowConfirm && c.Question.Kind == bank.KindMulti && !c.Panel.Locked {
		b.WriteString("\n" + Button{Label: "Confirm (enter)", Enabled: !c.Panel.ConfirmDisabled}.View() + "\n")
	}

	if badge := RenderBadge(c.Panel.Badge); badge != "" {
		b.WriteString("\n" + badge + "\n")
	}
	if c.Panel.Explanation != "" {
		b.WriteString(theme.Hint.Width(inner).Render(c.Panel.Explanation) + "\n")
	}

	style := theme.Card
	if c.Panel.Nudged {
		style = theme.CardNudged
	}
	return style.Width(width - 2).Render(b.String())
}

func (c QuestionCard) optionLine(i int, o feedback.Option, width int) string {
	mark := "( )"
	if c.Question.Kind == bank.KindMulti {
		mark = "[ ]"
	}
	if o.Checked {
		mark = strings.Replace(mark, " ", "x", 1)
		if c.Question.Kind == bank.KindSingle {
			mark = "(•)"
		}
	}

	prefix := "  "
	if i == c.Cursor && !c.Panel.InputsDisabled {
		prefix = "▸ "
	}
	line := fmt.Sprintf("%s%s %s) %s", prefix, mark, o.Letter, o.Text)

	var style lipgloss.Style
	switch {
	case o.Correct:
		style = theme.Correct
		line += "  ✓"
	case o.Wrong:
		style = theme.Incorrect
		line += "  ✗"
	case c.Panel.InputsDisabled:
		style = theme.Disabled
	case i == c.Cursor:
		style = theme.Cursor
	case o.Selected:
		style = theme.Selected
	default:
		style = theme.Unselected
	}
	return style.Width(width).Render(line)
}

func (c QuestionCard) imageLine() string {
	switch c.ImageState {
	case ImageLoading:
		return theme.Hint.Render("[loading image…]")
	case ImageLoaded:
		img := c.Image
		return lipgloss.NewStyle().Foreground(theme.Secondary).Render(
			fmt.Sprintf("[image: %s · %s %dx%d · %s]", img.Name, img.Format, img.Width, img.Height, humanize.IBytes(uint64(img.Bytes))))
	default:
		return ""
	}
}

// RenderBadge styles a feedback badge. Returns "" for BadgeNone.
func RenderBadge(b feedback.Badge) string {
	switch b.Kind {
	case feedback.BadgePending:
		return theme.BadgePending.Render("… " + b.Text)
	case feedback.BadgeSuccess:
		return theme.Correct.Render("✓ " + b.Text)
	case feedback.BadgeFailure:
		return theme.Incorrect.Render("✗ " + b.Text)
	case feedback.BadgeRetry:
		return theme.BadgeRetry.Render("⚠ " + b.Text)
	default:
		return ""
	}
}
