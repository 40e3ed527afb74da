// Package score tallies verified answers.
package score

import (
	"fmt"

	"github.com/ccnaprep/ccnaprep/internal/qstate"
)

// Tally counts accepted verifications.
type Tally struct {
	Correct   int
	Attempted int
}

// Recompute counts attempted and correct questions across s.
func Recompute(s *qstate.Store) Tally {
	var t Tally
	s.Each(func(_ string, st qstate.State) {
		if !st.Attempted {
			return
		}
		t.Attempted++
		if st.Correct {
			t.Correct++
		}
	})
	return t
}

// String renders the tally as "correct / attempted".
func (t Tally) String() string {
	return fmt.Sprintf("%d / %d", t.Correct, t.Attempted)
}

// Percent returns correct as a percentage of total, or 0 when total is 0.
func (t Tally) Percent(total int) float64 {
	return Percent(t.Correct, total)
}

// Percent returns n/total*100, or 0 when total is 0.
func Percent(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
