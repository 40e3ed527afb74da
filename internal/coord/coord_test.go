package coord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/qstate"
	"github.com/ccnaprep/ccnaprep/internal/store"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

func answer(letters ...string) verify.Payload {
	return verify.NewPayload("q1", bank.KindSingle, letters...)
}

func respond(res verify.Result, err error) verify.Verifier {
	return verify.VerifierFunc(func(context.Context, verify.Payload) (verify.Result, error) {
		return res, err
	})
}

// blocking waits for the request context to end and reports its error.
var blocking = verify.VerifierFunc(func(ctx context.Context, _ verify.Payload) (verify.Result, error) {
	<-ctx.Done()
	return verify.Result{}, ctx.Err()
})

var correctB = verify.Result{Correct: true, CorrectLetters: []string{"B"}}

func TestSubmitAcceptsLatest(t *testing.T) {
	c := New(respond(correctB, nil), qstate.New())

	tk, err := c.Submit("q1", answer("B"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tk.Generation)

	st, _ := c.States().Lookup("q1")
	assert.True(t, st.Pending)

	out := c.Settle(c.Run(context.Background(), tk))
	assert.Equal(t, Accepted, out)

	st, _ = c.States().Lookup("q1")
	assert.True(t, st.Attempted)
	assert.True(t, st.Correct)
	assert.False(t, st.Pending)
}

func TestSubmitPreconditions(t *testing.T) {
	c := New(respond(correctB, nil), qstate.New())

	tk, err := c.Submit("q1", answer("B"))
	require.NoError(t, err)

	_, err = c.Submit("q1", answer("A"))
	assert.ErrorIs(t, err, ErrPending)
	st, _ := c.States().Lookup("q1")
	assert.Equal(t, uint64(1), st.Generation, "rejected submit must not bump generation")

	require.Equal(t, Accepted, c.Settle(c.Run(context.Background(), tk)))

	_, err = c.Submit("q1", answer("A"))
	assert.ErrorIs(t, err, ErrAlreadyAttempted)
	_, err = c.Retry("q1")
	assert.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestSupersededResponseDiscarded(t *testing.T) {
	tests := []struct {
		name string
		res  verify.Result
		err  error
	}{
		{"late success", correctB, nil},
		{"late failure", verify.Result{}, &verify.StatusError{StatusCode: 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(respond(tt.res, tt.err), qstate.New())

			first, err := c.Submit("q1", answer("B"))
			require.NoError(t, err)
			second, err := c.Retry("q1")
			require.NoError(t, err)
			assert.Greater(t, second.Generation, first.Generation)

			assert.ErrorIs(t, context.Cause(first.ctx), ErrSuperseded)

			before, _ := c.States().Lookup("q1")
			out := c.Settle(c.Run(context.Background(), first))
			assert.Equal(t, Stale, out)

			after, _ := c.States().Lookup("q1")
			assert.Equal(t, before.Attempted, after.Attempted)
			assert.Equal(t, before.Pending, after.Pending)
			assert.Equal(t, before.Generation, after.Generation)
			assert.True(t, after.Pending, "second request still in flight")
		})
	}
}

type historyRepo struct {
	events []store.VerificationEventData
}

func (h *historyRepo) AppendVerification(_ context.Context, d store.VerificationEventData) error {
	h.events = append(h.events, d)
	return nil
}

func (h *historyRepo) AppendExamResult(context.Context, store.ExamResultData) error { return nil }

func TestHistoryMatchesSettleOutcome(t *testing.T) {
	repo := &historyRepo{}
	v := verify.WithRecording(respond(correctB, nil), repo, "sess", store.ModePractice, nil)
	c := New(v, qstate.New())

	first, err := c.Submit("q1", answer("B"))
	require.NoError(t, err)
	second, err := c.Retry("q1")
	require.NoError(t, err)

	// Runs sequentially, so both round-trips reach the server.
	assert.Equal(t, Stale, c.Settle(c.Run(context.Background(), first)))
	assert.Equal(t, Accepted, c.Settle(c.Run(context.Background(), second)))

	require.Len(t, repo.events, 2)
	assert.Equal(t, store.OutcomeCancelled, repo.events[0].Outcome)
	assert.False(t, repo.events[0].Correct)
	assert.Equal(t, store.OutcomeOK, repo.events[1].Outcome)
	assert.True(t, repo.events[1].Correct)
}

func TestOutOfOrderSettlesApplyOnlyLatest(t *testing.T) {
	wrong := verify.Result{Correct: false, CorrectLetters: []string{"A"}}
	c := New(respond(wrong, nil), qstate.New())

	first, err := c.Submit("q1", answer("B"))
	require.NoError(t, err)
	second, err := c.Retry("q1")
	require.NoError(t, err)

	// The newer request settles first; the older one arrives afterwards.
	secondSettle := c.Run(context.Background(), second)
	firstSettle := Settlement{Ticket: first, Result: correctB}

	assert.Equal(t, Accepted, c.Settle(secondSettle))
	assert.Equal(t, Stale, c.Settle(firstSettle))

	st, _ := c.States().Lookup("q1")
	assert.True(t, st.Attempted)
	assert.False(t, st.Correct, "older verdict must not overwrite newer one")
}

func TestDuplicateSettleIgnored(t *testing.T) {
	c := New(respond(correctB, nil), qstate.New())
	tk, err := c.Submit("q1", answer("B"))
	require.NoError(t, err)

	s := c.Run(context.Background(), tk)
	assert.Equal(t, Accepted, c.Settle(s))
	assert.Equal(t, Stale, c.Settle(s))
}

func TestTimeoutIsRetryableAndDistinct(t *testing.T) {
	c := New(blocking, qstate.New(), WithTimeout(20*time.Millisecond))

	tk, err := c.Submit("q1", answer("B"))
	require.NoError(t, err)

	s := c.Run(context.Background(), tk)
	require.Error(t, s.Err)
	assert.True(t, s.Failure.Timeout())
	assert.False(t, s.Cancelled)
	assert.Equal(t, Failed, c.Settle(s))

	st, _ := c.States().Lookup("q1")
	assert.False(t, st.Attempted)
	assert.False(t, st.Pending)

	retry, err := c.Retry("q1")
	require.NoError(t, err)
	assert.Equal(t, tk.Generation+1, retry.Generation)
	assert.True(t, retry.Payload.Equal(tk.Payload))
}

func TestTransportFailureNotTimeout(t *testing.T) {
	c := New(respond(verify.Result{}, &verify.TransportError{Err: errors.New("connection refused")}), qstate.New())

	tk, err := c.Submit("q1", answer("B"))
	require.NoError(t, err)

	s := c.Run(context.Background(), tk)
	assert.False(t, s.Failure.Timeout())
	assert.Equal(t, Failed, c.Settle(s))

	st, _ := c.States().Lookup("q1")
	assert.False(t, st.Attempted)
}

func TestRetryWithoutSubmit(t *testing.T) {
	c := New(blocking, qstate.New())
	_, err := c.Retry("q1")
	assert.ErrorIs(t, err, ErrNothingToRetry)
}

func TestCancelReportsCancelled(t *testing.T) {
	c := New(blocking, qstate.New())

	tk, err := c.Submit("q1", answer("B"))
	require.NoError(t, err)
	assert.True(t, c.Cancel("q1"))
	assert.False(t, c.Cancel("q1"))

	s := c.Run(context.Background(), tk)
	assert.True(t, s.Cancelled)
	assert.False(t, s.Failure.Timeout())
	assert.Equal(t, Cancelled, c.Settle(s))

	st, _ := c.States().Lookup("q1")
	assert.False(t, st.Attempted)
	assert.False(t, st.Pending)
}

func TestCancelAll(t *testing.T) {
	c := New(blocking, qstate.New())
	for _, id := range []string{"q1", "q2", "q3"} {
		_, err := c.Submit(id, verify.NewPayload(id, bank.KindSingle, "A"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, c.CancelAll())
	assert.Equal(t, 0, c.CancelAll())
}

func TestRunParentCancellation(t *testing.T) {
	c := New(blocking, qstate.New())
	tk, err := c.Submit("q1", answer("B"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := c.Run(ctx, tk)
	assert.True(t, s.Cancelled)
	assert.Equal(t, Cancelled, c.Settle(s))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "stale", Stale.String())
}
