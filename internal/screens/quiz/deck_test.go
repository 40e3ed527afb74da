package quiz

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/imageload"
	"github.com/ccnaprep/ccnaprep/internal/logging"
	"github.com/ccnaprep/ccnaprep/internal/nav"
	"github.com/ccnaprep/ccnaprep/internal/ui/components"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func testDeck(t *testing.T) *Deck {
	t.Helper()
	qs := []bank.Question{
		{ID: "Q1", Kind: bank.KindSingle, Text: "one", Image: "one.png", Options: []bank.Option{
			{Letter: "A", Text: "a"}, {Letter: "B", Text: "b"}, {Letter: "C", Text: "c"},
		}},
		{ID: "Q2", Kind: bank.KindMulti, Text: "two", Image: "two.png", Options: []bank.Option{
			{Letter: "A", Text: "a"}, {Letter: "B", Text: "b"},
		}},
		{ID: "Q3", Kind: bank.KindSingle, Text: "three", Options: []bank.Option{
			{Letter: "A", Text: "a"}, {Letter: "B", Text: "b"},
		}},
	}
	return NewDeck(context.Background(), qs, nav.PolicyExam, nil, 0, logging.Discard())
}

func TestDeck_OptionForKey(t *testing.T) {
	d := testDeck(t)

	i, ok := d.OptionForKey("b")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = d.OptionForKey("3")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = d.OptionForKey("e")
	assert.False(t, ok)
	_, ok = d.OptionForKey("4")
	assert.False(t, ok)
	_, ok = d.OptionForKey("enter")
	assert.False(t, ok)
}

func TestDeck_MoveCursorClamps(t *testing.T) {
	d := testDeck(t)
	d.MoveCursor(-1)
	assert.Equal(t, 0, d.Cursor())
	d.MoveCursor(5)
	assert.Equal(t, 2, d.Cursor())
}

func TestDeck_PanelFor(t *testing.T) {
	d := testDeck(t)
	p, i, ok := d.PanelFor("Q2")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, "Q2", p.QuestionID)

	_, _, ok = d.PanelFor("missing")
	assert.False(t, ok)
}

func TestDeck_PreloadWithoutLoaderHidesImages(t *testing.T) {
	d := testDeck(t)
	d.Preload()
	assert.Equal(t, components.ImageHidden, d.ImageState(0))
	assert.Equal(t, components.ImageHidden, d.ImageState(1))
	assert.Equal(t, components.ImageNone, d.ImageState(2))
}

func TestDeck_ImageMessages(t *testing.T) {
	d := testDeck(t)

	handled, _ := d.Update(imageLoadedMsg{deck: d, Key: "Q1", Image: imageload.Image{Name: "one.png"}})
	assert.True(t, handled)
	assert.Equal(t, components.ImageLoaded, d.ImageState(0))

	handled, _ = d.Update(imageFailedMsg{deck: d, Key: "Q2", Err: errors.New("404")})
	assert.True(t, handled)
	assert.Equal(t, components.ImageHidden, d.ImageState(1))
}

func TestDeck_DropsOtherDecksMessages(t *testing.T) {
	d := testDeck(t)
	other := testDeck(t)

	handled, cmd := d.Update(imageLoadedMsg{deck: other, Key: "Q1"})
	assert.True(t, handled)
	assert.Nil(t, cmd)
	assert.Equal(t, components.ImageNone, d.ImageState(0))

	d.ShowHint("hint")
	d.Update(hintDoneMsg{deck: other, Seq: 1})
	assert.Equal(t, "hint", d.Hint())
}

func TestDeck_UnrelatedMessageNotHandled(t *testing.T) {
	d := testDeck(t)
	handled, _ := d.Update(keyPress('a'))
	assert.False(t, handled)
}

func TestDeck_HintExpiresOnlyForLatest(t *testing.T) {
	d := testDeck(t)
	require.NotNil(t, d.ShowHint("first"))
	require.NotNil(t, d.ShowHint("second"))

	d.Update(hintDoneMsg{deck: d, Seq: 1})
	assert.Equal(t, "second", d.Hint())
	d.Update(hintDoneMsg{deck: d, Seq: 2})
	assert.Empty(t, d.Hint())
}

func TestDeck_NudgeEnds(t *testing.T) {
	d := testDeck(t)
	_, p := d.Current()
	require.NotNil(t, d.Nudge(p))
	assert.True(t, p.Nudged)

	d.Update(nudgeDoneMsg{deck: d, QuestionID: "Q1", Seq: p.NudgeSeq})
	assert.False(t, p.Nudged)
}

func TestDeck_PreloadDueDroppedAfterNavigation(t *testing.T) {
	d := testDeck(t)
	gen := d.Nav.Generation()
	d.Nav.Show(2)

	handled, cmd := d.Update(preloadDueMsg{deck: d, Gen: gen, Index: 1})
	assert.True(t, handled)
	assert.Nil(t, cmd)
	assert.Equal(t, components.ImageNone, d.ImageState(1))
}

func TestDeck_Jump(t *testing.T) {
	d := testDeck(t)
	d.Nav.Show(2)
	d.Nav.First()

	d.OpenJump()
	require.True(t, d.Jumping())
	d.UpdateJump(keyPress('x'))
	d.UpdateJump(keyPress('3'))
	moved, _ := d.UpdateJump(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.True(t, moved)
	assert.False(t, d.Jumping())
	assert.Equal(t, 2, d.Nav.Current())
}

func TestDeck_JumpBeyondRangeKeepsPromptOpen(t *testing.T) {
	d := testDeck(t)

	d.OpenJump()
	d.UpdateJump(keyPress('3'))
	moved, _ := d.UpdateJump(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.False(t, moved)
	assert.True(t, d.Jumping())
	assert.Contains(t, d.JumpView(), "not reached yet")

	d.UpdateJump(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, d.Jumping())
	assert.Empty(t, d.JumpView())
}

func TestDeck_Progress(t *testing.T) {
	d := testDeck(t)
	assert.Contains(t, d.Progress(60), "Question 1 of 3")
}
