// Package nav tracks the current question and decides which navigation
// controls are enabled.
package nav

import (
	"errors"
	"fmt"
	"math"
)

// Policy decides when Next is enabled.
type Policy int

const (
	// PolicyVerify requires the current question to be verified and settled.
	PolicyVerify Policy = iota
	// PolicyExam requires at least one option checked.
	PolicyExam
)

// Status describes the current question for the Next policy.
type Status struct {
	Attempted  bool
	Pending    bool
	AnyChecked bool
}

// Step is the result of a Next request.
type Step int

const (
	// Blocked means the policy refused to advance.
	Blocked Step = iota
	// Moved means the controller advanced one question.
	Moved
	// Finish means Next was pressed on the last question.
	Finish
)

// ErrOutOfRange is returned by GoTo for positions outside the reachable
// range.
var ErrOutOfRange = errors.New("question out of range")

// Controller holds the current index. Forward jumps are limited to the
// furthest question reached through Next so gating cannot be skipped.
type Controller struct {
	policy   Policy
	total    int
	current  int
	frontier int
	gen      uint64
}

// New creates a controller positioned on the first of total questions.
func New(total int, policy Policy) *Controller {
	return &Controller{policy: policy, total: total}
}

// Current returns the zero-based index.
func (c *Controller) Current() int { return c.current }

// Total returns the number of questions.
func (c *Controller) Total() int { return c.total }

// Position returns the one-based position shown in the header.
func (c *Controller) Position() int { return c.current + 1 }

// Frontier returns the furthest index reached.
func (c *Controller) Frontier() int { return c.frontier }

// Progress returns round((current+1)/total*100).
func (c *Controller) Progress() int {
	if c.total == 0 {
		return 0
	}
	return int(math.Round(float64(c.current+1) / float64(c.total) * 100))
}

// Generation changes every time the current question changes. Delayed work
// scheduled for one question compares it to detect navigation.
func (c *Controller) Generation() uint64 { return c.gen }

// PrevEnabled reports whether Prev can move.
func (c *Controller) PrevEnabled() bool { return c.current > 0 }

// IsLast reports whether the current question is the last one.
func (c *Controller) IsLast() bool { return c.current == c.total-1 }

// NextEnabled applies the policy to the current question.
func (c *Controller) NextEnabled(s Status) bool {
	if c.total == 0 {
		return false
	}
	switch c.policy {
	case PolicyExam:
		return s.AnyChecked
	default:
		return s.Attempted && !s.Pending
	}
}

// NextLabel is "Finish" on the last question and "Next" otherwise.
func (c *Controller) NextLabel() string {
	if c.IsLast() {
		return "Finish"
	}
	return "Next"
}

// Show moves to index and reports whether the current question changed.
func (c *Controller) Show(index int) bool {
	if index < 0 || index >= c.total || index == c.current {
		return false
	}
	c.current = index
	if index > c.frontier {
		c.frontier = index
	}
	c.gen++
	return true
}

// Next advances if the policy allows.
func (c *Controller) Next(s Status) Step {
	if !c.NextEnabled(s) {
		return Blocked
	}
	if c.IsLast() {
		return Finish
	}
	c.Show(c.current + 1)
	return Moved
}

// Prev moves back one question.
func (c *Controller) Prev() bool {
	return c.Show(c.current - 1)
}

// First moves to the first question.
func (c *Controller) First() bool {
	return c.Show(0)
}

// Last moves to the furthest question reached.
func (c *Controller) Last() bool {
	return c.Show(c.frontier)
}

// GoTo moves to the one-based position pos.
func (c *Controller) GoTo(pos int) error {
	i := pos - 1
	if i < 0 || i >= c.total {
		return fmt.Errorf("%w: %d not in 1..%d", ErrOutOfRange, pos, c.total)
	}
	if i > c.frontier {
		return fmt.Errorf("%w: %d not reached yet", ErrOutOfRange, pos)
	}
	c.Show(i)
	return nil
}
