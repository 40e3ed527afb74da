package score

import (
	"context"
	"testing"

	"github.com/ccnaprep/ccnaprep/internal/qstate"
)

func begin(st *qstate.State) {
	_, cancel := context.WithCancelCause(context.Background())
	st.Begin(cancel)
}

func TestRecompute(t *testing.T) {
	s := qstate.New()

	if got := Recompute(s).String(); got != "0 / 0" {
		t.Errorf("empty = %q, want %q", got, "0 / 0")
	}

	begin(s.Get("q1"))
	s.Get("q1").Accept(true)
	begin(s.Get("q2"))
	s.Get("q2").Accept(false)
	begin(s.Get("q3")) // pending, not counted
	begin(s.Get("q4"))
	s.Get("q4").Fail() // failed, not counted

	got := Recompute(s)
	if got != (Tally{Correct: 1, Attempted: 2}) {
		t.Errorf("Recompute = %+v", got)
	}
	if got.String() != "1 / 2" {
		t.Errorf("String = %q", got.String())
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		n, total int
		want     float64
	}{
		{0, 0, 0},
		{1, 4, 25},
		{3, 3, 100},
		{0, 5, 0},
	}
	for _, tt := range tests {
		if got := Percent(tt.n, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %v, want %v", tt.n, tt.total, got, tt.want)
		}
	}
	if got := (Tally{Correct: 2, Attempted: 2}).Percent(4); got != 50 {
		t.Errorf("Tally.Percent = %v, want 50", got)
	}
}
