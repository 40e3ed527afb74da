package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out a monotonic sequence shared by every event
// table so verifications and exam results can be ordered against each other.
// The mutex serializes within the process; the transaction takes the write
// lock with the increment before reading the value back.
type sequenceCounter struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	tx, err := sc.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin sequence tx: %w", err)
	}
	seq, err := nextInTx(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence tx: %w", err)
	}
	return seq, nil
}

func nextInTx(ctx context.Context, tx dialect.Tx) (int64, error) {
	b := entsql.Dialect(dialect.SQLite)

	query, args := b.Update(globalSequenceTable).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	query, args = b.Select("next_val").
		From(entsql.Table(globalSequenceTable)).
		Where(entsql.EQ("id", 1)).
		Query()
	var rows entsql.Rows
	if err := tx.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("next sequence: %w", err)
		}
		return 0, fmt.Errorf("next sequence: %s row missing", globalSequenceTable)
	}
	var next int64
	if err := rows.Scan(&next); err != nil {
		return 0, fmt.Errorf("scan sequence: %w", err)
	}
	return next - 1, nil
}

type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

// answerSep joins letters in the answer column, e.g. "A-C".
const answerSep = "-"

func (r *eventRepo) AppendVerification(ctx context.Context, data VerificationEventData) error {
	if err := validOutcome(data.Outcome); err != nil {
		return err
	}
	if err := validMode(data.Mode); err != nil {
		return err
	}
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(verificationEventsTable).
		Columns("sequence", "session_id", "mode", "question_id", "question_type", "answer",
			"outcome", "correct", "latency_ms", "error_message", "created_at").
		Values(seq, data.SessionID, data.Mode, data.QuestionID, data.QuestionType,
			strings.Join(data.Answer, answerSep), data.Outcome, data.Correct,
			data.LatencyMs, data.ErrorMessage, nowUTC()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("append verification event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendExamResult(ctx context.Context, data ExamResultData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(examResultsTable).
		Columns("sequence", "session_id", "total", "answered", "correct", "failed",
			"percent", "duration_secs", "created_at").
		Values(seq, data.SessionID, data.Total, data.Answered, data.Correct,
			data.Failed, data.Percent, data.DurationSecs, nowUTC()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("append exam result: %w", err)
	}
	return nil
}

func validOutcome(o string) error {
	switch o {
	case OutcomeOK, OutcomeTimeout, OutcomeError, OutcomeCancelled:
		return nil
	}
	return fmt.Errorf("unknown verification outcome %q", o)
}

func validMode(m string) error {
	switch m {
	case ModePractice, ModeExam, ModeCheck:
		return nil
	}
	return fmt.Errorf("unknown verification mode %q", m)
}
