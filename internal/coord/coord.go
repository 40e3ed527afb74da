// Package coord issues answer verifications so that each question has at
// most one authoritative request in flight. A newer request supersedes any
// older one, and responses are only applied if they still belong to the
// question's latest generation.
//
// Submit, Retry, Cancel and Settle must be called from a single goroutine
// (the Bubble Tea update loop). Run blocks and is meant for a tea.Cmd; it
// reads only the ticket and immutable coordinator fields.
package coord

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ccnaprep/ccnaprep/internal/qstate"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

// DefaultTimeout bounds a single verification request.
const DefaultTimeout = 8000 * time.Millisecond

var (
	// ErrSuperseded is the cancellation cause of a request replaced by a
	// newer one for the same question.
	ErrSuperseded = errors.New("request superseded")
	// ErrCancelled is the cancellation cause used by Cancel and CancelAll.
	ErrCancelled = errors.New("request cancelled")
	// ErrAlreadyAttempted is returned when the question already has an
	// accepted verdict.
	ErrAlreadyAttempted = errors.New("question already attempted")
	// ErrPending is returned when a request is already in flight.
	ErrPending = errors.New("verification pending")
	// ErrNothingToRetry is returned by Retry when no request was ever made.
	ErrNothingToRetry = errors.New("no previous request to retry")
)

// Outcome is what Settle decided about a settlement.
type Outcome int

const (
	// Stale settlements belong to an older generation and were discarded.
	Stale Outcome = iota
	// Accepted settlements carried a verdict that is now recorded.
	Accepted
	// Failed settlements left the question retryable.
	Failed
	// Cancelled settlements were aborted by Cancel or supersession.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "stale"
	}
}

// Ticket identifies one issued request.
type Ticket struct {
	QuestionID string
	Generation uint64
	Payload    verify.Payload

	ctx    context.Context
	cancel context.CancelCauseFunc
}

// Settlement is the result of running a ticket.
type Settlement struct {
	Ticket  Ticket
	Result  verify.Result
	Err     error
	Failure verify.Failure
	Latency time.Duration
	// Cancelled is set when the request context was cancelled by
	// supersession or Cancel rather than by its deadline.
	Cancelled bool
}

// Coordinator owns the request lifecycle of a session's questions.
type Coordinator struct {
	verifier verify.Verifier
	states   *qstate.Store
	timeout  time.Duration
	base     context.Context
	logger   *slog.Logger

	payloads map[string]verify.Payload
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for settle diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBaseContext sets the parent context of every request.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.base = ctx }
}

// New creates a Coordinator that records state in states.
func New(v verify.Verifier, states *qstate.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		verifier: v,
		states:   states,
		timeout:  DefaultTimeout,
		base:     context.Background(),
		logger:   slog.Default(),
		payloads: make(map[string]verify.Payload),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// States returns the underlying state store.
func (c *Coordinator) States() *qstate.Store { return c.states }

// Timeout returns the per-request deadline.
func (c *Coordinator) Timeout() time.Duration { return c.timeout }

// Submit issues a verification for questionID. It refuses questions that
// are already attempted or have a request in flight.
func (c *Coordinator) Submit(questionID string, p verify.Payload) (Ticket, error) {
	st := c.states.Get(questionID)
	if st.Attempted {
		return Ticket{}, ErrAlreadyAttempted
	}
	if st.Pending {
		return Ticket{}, ErrPending
	}
	return c.issue(questionID, st, p), nil
}

// Retry re-issues the last payload submitted for questionID under a new
// generation, superseding anything still in flight.
func (c *Coordinator) Retry(questionID string) (Ticket, error) {
	st := c.states.Get(questionID)
	if st.Attempted {
		return Ticket{}, ErrAlreadyAttempted
	}
	p, ok := c.payloads[questionID]
	if !ok {
		return Ticket{}, ErrNothingToRetry
	}
	return c.issue(questionID, st, p), nil
}

func (c *Coordinator) issue(questionID string, st *qstate.State, p verify.Payload) Ticket {
	if st.Abort(ErrSuperseded) {
		c.logger.Debug("request superseded", "question_id", questionID, "generation", st.Generation)
	}
	ctx, cancel := context.WithCancelCause(c.base)
	gen := st.Begin(cancel)
	c.payloads[questionID] = p
	return Ticket{
		QuestionID: questionID,
		Generation: gen,
		Payload:    p,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run performs the blocking verification for t. ctx bounds the call in
// addition to the ticket's own cancellation and the request deadline.
func (c *Coordinator) Run(ctx context.Context, t Ticket) Settlement {
	reqCtx := t.ctx
	if reqCtx == nil {
		reqCtx = context.Background()
	}
	reqCtx, cancelTimeout := context.WithTimeoutCause(reqCtx, c.timeout, verify.ErrTimeout)
	defer cancelTimeout()
	if ctx != nil {
		stop := context.AfterFunc(ctx, func() {
			if t.cancel != nil {
				t.cancel(ErrCancelled)
			}
		})
		defer stop()
	}

	start := time.Now()
	res, err := c.verifier.Verify(reqCtx, t.Payload)
	s := Settlement{Ticket: t, Result: res, Err: err, Latency: time.Since(start)}
	if err != nil {
		s.Failure = verify.Classify(reqCtx, err)
		cause := context.Cause(reqCtx)
		s.Cancelled = errors.Is(cause, ErrSuperseded) || errors.Is(cause, ErrCancelled)
	}
	return s
}

// Settle applies s if it still belongs to the question's latest
// generation. Stale and cancelled settlements change nothing.
func (c *Coordinator) Settle(s Settlement) Outcome {
	id := s.Ticket.QuestionID
	st := c.states.Get(id)

	switch {
	case s.Ticket.Generation != st.Generation:
		c.logger.Debug("stale response discarded",
			"question_id", id, "generation", s.Ticket.Generation, "current", st.Generation)
		return Stale
	case !st.Pending:
		if s.Cancelled {
			c.logger.Debug("cancelled response discarded", "question_id", id, "generation", s.Ticket.Generation)
			return Cancelled
		}
		return Stale
	case s.Cancelled:
		st.Fail()
		return Cancelled
	case s.Err == nil:
		st.Accept(s.Result.Correct)
		c.logger.Info("verification accepted",
			"question_id", id, "correct", s.Result.Correct, "latency_ms", s.Latency.Milliseconds())
		return Accepted
	default:
		st.Fail()
		c.logger.Warn("verification failed",
			"question_id", id, "timeout", s.Failure.Timeout(), "error", s.Err)
		return Failed
	}
}

// Cancel aborts the outstanding request for questionID, if any.
func (c *Coordinator) Cancel(questionID string) bool {
	st, ok := c.states.Lookup(questionID)
	if !ok || !st.Outstanding() {
		return false
	}
	return c.states.Get(questionID).Abort(ErrCancelled)
}

// CancelAll aborts every outstanding request. Call it when the screen that
// owns the coordinator closes.
func (c *Coordinator) CancelAll() int {
	return c.states.AbortAll(ErrCancelled)
}
