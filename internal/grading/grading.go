// Package grading scores a finished exam sheet against the verification
// endpoint.
package grading

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/score"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

// DefaultConcurrency bounds in-flight verifications while grading.
const DefaultConcurrency = 4

// Entry is one question and the letters the candidate chose.
type Entry struct {
	Question bank.Question
	Choice   []string
}

// Answered reports whether anything was chosen.
func (e Entry) Answered() bool { return len(e.Choice) > 0 }

// Item is the graded result of one entry.
type Item struct {
	QuestionID string
	Choice     []string
	Answered   bool
	Correct    bool
	Result     verify.Result
	// Err is set when the verification failed; the item counts as wrong.
	Err error
}

// Report summarizes a graded sheet.
type Report struct {
	Total    int
	Answered int
	Correct  int
	Failed   int
	Percent  float64
	Duration time.Duration
	Items    []Item
}

// Options tune grading.
type Options struct {
	Concurrency int
	// Timeout bounds each verification. Zero means no per-item deadline.
	Timeout time.Duration
}

// Grade verifies every answered entry. Unanswered entries and failed
// verifications count as wrong. Per-item failures are recorded rather than
// returned; the only error is ctx ending before grading completes.
func Grade(ctx context.Context, v verify.Verifier, sheet []Entry, opts Options) (Report, error) {
	start := time.Now()
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	items := make([]Item, len(sheet))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, e := range sheet {
		items[i] = Item{QuestionID: e.Question.ID, Choice: e.Choice, Answered: e.Answered()}
		if !e.Answered() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reqCtx := gctx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				reqCtx, cancel = context.WithTimeoutCause(gctx, opts.Timeout, verify.ErrTimeout)
				defer cancel()
			}
			res, err := v.Verify(reqCtx, verify.NewPayload(e.Question.ID, e.Question.Kind, e.Choice...))
			if err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Result = res
			items[i].Correct = res.Correct
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	r := Report{Total: len(sheet), Items: items, Duration: time.Since(start)}
	for _, it := range items {
		if it.Answered {
			r.Answered++
		}
		if it.Correct {
			r.Correct++
		}
		if it.Err != nil {
			r.Failed++
		}
	}
	r.Percent = score.Percent(r.Correct, r.Total)
	return r, nil
}
