// Package quiz holds the state shared by the practice and exam screens:
// the question deck, per-question panels and cursors, navigation, image
// preloading and the jump prompt.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/feedback"
	"github.com/ccnaprep/ccnaprep/internal/imageload"
	"github.com/ccnaprep/ccnaprep/internal/nav"
	"github.com/ccnaprep/ccnaprep/internal/ui/components"
)

// HintDuration is how long the validation hint stays visible.
const HintDuration = 3 * time.Second

type imageSlot struct {
	state components.ImageState
	image imageload.Image
}

// Deck is the navigable set of questions of one screen session.
type Deck struct {
	Questions []bank.Question
	Panels    []*feedback.Panel
	Cursors   []int
	Nav       *nav.Controller

	ctx          context.Context
	images       *imageload.Loader
	preloadDelay time.Duration
	slots        map[string]imageSlot
	logger       *slog.Logger

	jump    *components.JumpInput
	hint    string
	hintSeq int
}

// NewDeck builds a deck over qs. loader may be nil, in which case images
// are hidden.
func NewDeck(ctx context.Context, qs []bank.Question, policy nav.Policy, loader *imageload.Loader, preloadDelay time.Duration, logger *slog.Logger) *Deck {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Deck{
		Questions:    qs,
		Panels:       make([]*feedback.Panel, len(qs)),
		Cursors:      make([]int, len(qs)),
		Nav:          nav.New(len(qs), policy),
		ctx:          ctx,
		images:       loader,
		preloadDelay: preloadDelay,
		slots:        make(map[string]imageSlot),
		logger:       logger,
	}
	for i, q := range qs {
		d.Panels[i] = feedback.NewPanel(q)
	}
	return d
}

// Current returns the question and panel on screen.
func (d *Deck) Current() (bank.Question, *feedback.Panel) {
	i := d.Nav.Current()
	return d.Questions[i], d.Panels[i]
}

// PanelFor returns the panel of questionID.
func (d *Deck) PanelFor(questionID string) (*feedback.Panel, int, bool) {
	for i, p := range d.Panels {
		if p.QuestionID == questionID {
			return p, i, true
		}
	}
	return nil, -1, false
}

// MoveCursor moves the option cursor of the current question.
func (d *Deck) MoveCursor(delta int) {
	i := d.Nav.Current()
	n := len(d.Panels[i].Options)
	if n == 0 {
		return
	}
	d.Cursors[i] = max(0, min(d.Cursors[i]+delta, n-1))
}

// Cursor returns the option cursor of the current question.
func (d *Deck) Cursor() int {
	return d.Cursors[d.Nav.Current()]
}

// OptionForKey maps a-e or 1-5 to an option index of the current question.
func (d *Deck) OptionForKey(key string) (int, bool) {
	_, p := d.Current()
	if len(key) != 1 {
		return 0, false
	}
	k := strings.ToUpper(key)
	if k[0] >= '1' && k[0] <= '9' {
		i := int(k[0] - '1')
		return i, i < len(p.Options)
	}
	for i, o := range p.Options {
		if o.Letter == k {
			return i, true
		}
	}
	return 0, false
}

// Nudge shakes the panel and schedules its end.
func (d *Deck) Nudge(p *feedback.Panel) tea.Cmd {
	seq := feedback.Nudge(p)
	id := p.QuestionID
	return tea.Tick(feedback.NudgeDuration, func(time.Time) tea.Msg {
		return nudgeDoneMsg{deck: d, QuestionID: id, Seq: seq}
	})
}

// ShowHint displays a validation hint for HintDuration.
func (d *Deck) ShowHint(text string) tea.Cmd {
	d.hintSeq++
	d.hint = text
	seq := d.hintSeq
	return tea.Tick(HintDuration, func(time.Time) tea.Msg { return hintDoneMsg{deck: d, Seq: seq} })
}

// Hint returns the current validation hint.
func (d *Deck) Hint() string { return d.hint }

// Update handles deck-owned messages. It returns false for messages the
// deck does not own.
func (d *Deck) Update(msg tea.Msg) (bool, tea.Cmd) {
	if owner, ok := deckOf(msg); ok && owner != d {
		// Scheduled by a deck that has since left the screen stack.
		return true, nil
	}
	switch msg := msg.(type) {
	case imageLoadedMsg:
		d.slots[msg.Key] = imageSlot{state: components.ImageLoaded, image: msg.Image}
		return true, nil
	case imageFailedMsg:
		d.logger.Debug("question image hidden", "question_id", msg.Key, "error", msg.Err)
		d.slots[msg.Key] = imageSlot{state: components.ImageHidden}
		return true, nil
	case preloadDueMsg:
		if msg.Gen != d.Nav.Generation() {
			return true, nil
		}
		return true, d.load(msg.Index)
	case nudgeDoneMsg:
		if p, _, ok := d.PanelFor(msg.QuestionID); ok {
			feedback.EndNudge(p, msg.Seq)
		}
		return true, nil
	case hintDoneMsg:
		if msg.Seq == d.hintSeq {
			d.hint = ""
		}
		return true, nil
	}
	return false, nil
}

func deckOf(msg tea.Msg) (*Deck, bool) {
	switch msg := msg.(type) {
	case imageLoadedMsg:
		return msg.deck, true
	case imageFailedMsg:
		return msg.deck, true
	case preloadDueMsg:
		return msg.deck, true
	case nudgeDoneMsg:
		return msg.deck, true
	case hintDoneMsg:
		return msg.deck, true
	}
	return nil, false
}

// Preload loads the current question's image now and the next one after
// the preload delay. Navigating again before the delay elapses drops the
// delayed load.
func (d *Deck) Preload() tea.Cmd {
	cur := d.Nav.Current()
	cmds := []tea.Cmd{d.load(cur)}
	next := cur + 1
	if next < len(d.Questions) && d.Questions[next].HasImage() {
		gen := d.Nav.Generation()
		if d.preloadDelay <= 0 {
			cmds = append(cmds, d.load(next))
		} else {
			cmds = append(cmds, tea.Tick(d.preloadDelay, func(time.Time) tea.Msg {
				return preloadDueMsg{deck: d, Gen: gen, Index: next}
			}))
		}
	}
	return tea.Batch(cmds...)
}

func (d *Deck) load(i int) tea.Cmd {
	if i < 0 || i >= len(d.Questions) {
		return nil
	}
	q := d.Questions[i]
	if !q.HasImage() {
		return nil
	}
	if d.images == nil {
		d.slots[q.ID] = imageSlot{state: components.ImageHidden}
		return nil
	}
	if slot, ok := d.slots[q.ID]; ok && slot.state != components.ImageNone {
		return nil
	}
	d.slots[q.ID] = imageSlot{state: components.ImageLoading}
	f := d.images.Load(d.ctx, q.ID, q.Image)
	key := q.ID
	return func() tea.Msg {
		select {
		case img := <-f.Loaded():
			return imageLoadedMsg{deck: d, Key: key, Image: img}
		case err := <-f.Failed():
			return imageFailedMsg{deck: d, Key: key, Err: err}
		}
	}
}

// ImageState reports the image state of question i.
func (d *Deck) ImageState(i int) components.ImageState {
	return d.slots[d.Questions[i].ID].state
}

// Card builds the question card for the current question.
func (d *Deck) Card(showConfirm bool) components.QuestionCard {
	i := d.Nav.Current()
	slot := d.slots[d.Questions[i].ID]
	return components.QuestionCard{
		Question:    d.Questions[i],
		Panel:       d.Panels[i],
		Cursor:      d.Cursors[i],
		Image:       slot.image,
		ImageState:  slot.state,
		ShowConfirm: showConfirm,
	}
}

// Jumping reports whether the jump prompt is open.
func (d *Deck) Jumping() bool { return d.jump != nil }

// OpenJump opens the "go to question" prompt.
func (d *Deck) OpenJump() tea.Cmd {
	j := components.NewJumpInput(len(d.Questions))
	d.jump = &j
	return j.Init()
}

// UpdateJump feeds a key to the prompt. It returns moved=true when the
// deck navigated.
func (d *Deck) UpdateJump(msg tea.KeyMsg) (moved bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		d.jump = nil
		return false, nil
	case "enter":
		n, err := d.jump.Value()
		if err == nil {
			err = d.Nav.GoTo(n)
		}
		if err != nil {
			d.jump.SetError(err)
			return false, nil
		}
		d.jump = nil
		return true, nil
	}
	j, cmd := d.jump.Update(msg)
	d.jump = &j
	return false, cmd
}

// JumpView renders the prompt, or "" when closed.
func (d *Deck) JumpView() string {
	if d.jump == nil {
		return ""
	}
	return d.jump.View()
}

// Progress renders the position line and progress bar.
func (d *Deck) Progress(width int) string {
	label := fmt.Sprintf("Question %d of %d", d.Nav.Position(), d.Nav.Total())
	return components.NewProgressBar(label, d.Nav.Progress(), width).View()
}
