package store

import (
	"context"
	"time"
)

// Verification outcomes as stored.
const (
	OutcomeOK        = "ok"
	OutcomeTimeout   = "timeout"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Modes a verification can originate from.
const (
	ModePractice = "practice"
	ModeExam     = "exam"
	ModeCheck    = "check"
)

// VerificationEventData captures one round-trip to the check-answer endpoint.
type VerificationEventData struct {
	SessionID    string
	Mode         string
	QuestionID   string
	QuestionType string
	Answer       []string
	Outcome      string
	Correct      bool
	LatencyMs    int64
	ErrorMessage string
}

// ExamResultData captures a graded exam sheet.
type ExamResultData struct {
	SessionID    string
	Total        int
	Answered     int
	Correct      int
	Failed       int
	Percent      float64
	DurationSecs int
}

// EventRepo provides append access to history events.
type EventRepo interface {
	// AppendVerification records a verification round-trip.
	AppendVerification(ctx context.Context, data VerificationEventData) error

	// AppendExamResult records a graded exam.
	AppendExamResult(ctx context.Context, data ExamResultData) error
}

// QuestionStats aggregates accepted verifications for one question.
type QuestionStats struct {
	QuestionID   string
	Attempts     int
	Correct      int
	LastAnswered time.Time
}

// Accuracy returns correct/attempts, or 0 when never attempted.
func (q QuestionStats) Accuracy() float64 {
	if q.Attempts == 0 {
		return 0
	}
	return float64(q.Correct) / float64(q.Attempts)
}

// Summary aggregates the whole history.
type Summary struct {
	Sessions  int
	Attempts  int
	Correct   int
	Timeouts  int
	Failures  int
	Exams     int
	BestExam  float64
	LastExam  float64
	Questions []QuestionStats
}

// StatsRepo answers read queries over the history.
type StatsRepo interface {
	// Summary returns totals and per-question stats, weakest questions first.
	Summary(ctx context.Context) (Summary, error)
}

func nowUTC() time.Time { return time.Now().UTC() }
