package verify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ccnaprep/ccnaprep/internal/store"
)

// RecordingVerifier is a decorator that records every verification as a
// history event.
type RecordingVerifier struct {
	inner     Verifier
	eventRepo store.EventRepo
	sessionID string
	mode      string
	logger    *slog.Logger
}

// WithRecording wraps a Verifier with history recording.
func WithRecording(v Verifier, repo store.EventRepo, sessionID, mode string, logger *slog.Logger) Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordingVerifier{inner: v, eventRepo: repo, sessionID: sessionID, mode: mode, logger: logger}
}

func (r *RecordingVerifier) Verify(ctx context.Context, p Payload) (Result, error) {
	start := time.Now()
	res, err := r.inner.Verify(ctx, p)
	latency := time.Since(start)

	data := store.VerificationEventData{
		SessionID:    r.sessionID,
		Mode:         r.mode,
		QuestionID:   p.QuestionID,
		QuestionType: string(p.Kind),
		Answer:       p.Letters,
		Outcome:      outcomeOf(ctx, err),
		LatencyMs:    latency.Milliseconds(),
	}
	data.Correct = data.Outcome == store.OutcomeOK && res.Correct
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	r.logger.Info("verification",
		"question_id", p.QuestionID,
		"answer", p.Letters,
		"outcome", data.Outcome,
		"correct", data.Correct,
		"latency_ms", data.LatencyMs,
	)

	// The request context may already be cancelled; the record still lands.
	if logErr := r.eventRepo.AppendVerification(context.WithoutCancel(ctx), data); logErr != nil {
		r.logger.Warn("failed to record verification event", "error", logErr)
	}

	return res, err
}

// outcomeOf classifies a round-trip. A response that arrives after its
// request was superseded or cancelled is recorded as cancelled even when it
// carried a verdict, since the coordinator never applies it.
func outcomeOf(ctx context.Context, err error) string {
	switch {
	case abandoned(ctx):
		return store.OutcomeCancelled
	case err == nil:
		return store.OutcomeOK
	case IsTimeout(ctx, err):
		return store.OutcomeTimeout
	default:
		return store.OutcomeError
	}
}

// abandoned reports whether ctx ended for a reason other than its deadline.
func abandoned(ctx context.Context) bool {
	err := ctx.Err()
	return err != nil && !errors.Is(err, context.DeadlineExceeded)
}
