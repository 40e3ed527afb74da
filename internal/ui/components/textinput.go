package components

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ccnaprep/ccnaprep/internal/ui/theme"
)

// JumpInput is the numeric "go to question" prompt.
type JumpInput struct {
	Model textinput.Model
	Max   int
	err   string
}

// NewJumpInput creates a focused prompt accepting 1..max.
func NewJumpInput(max int) JumpInput {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("1-%d", max)
	ti.Prompt = "Go to question: "
	ti.CharLimit = len(strconv.Itoa(max))
	ti.Focus()
	return JumpInput{Model: ti, Max: max}
}

// Init returns the focus command.
func (j JumpInput) Init() tea.Cmd {
	return j.Model.Focus()
}

// Update filters non-digits and forwards the rest to the text input.
func (j JumpInput) Update(msg tea.Msg) (JumpInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return j, nil
		}
	}
	var cmd tea.Cmd
	j.Model, cmd = j.Model.Update(msg)
	j.err = ""
	return j, cmd
}

// Value parses the entered position.
func (j JumpInput) Value() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(j.Model.Value()))
	if err != nil {
		return 0, fmt.Errorf("enter a number between 1 and %d", j.Max)
	}
	return n, nil
}

// SetError shows err beside the prompt.
func (j *JumpInput) SetError(err error) {
	if err != nil {
		j.err = err.Error()
	}
}

// View renders the prompt.
func (j JumpInput) View() string {
	view := j.Model.View()
	if j.err != "" {
		view += "  " + lipgloss.NewStyle().Foreground(theme.Error).Render(j.err)
	}
	return view
}
