package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type statsRepo struct {
	drv *entsql.Driver
}

// countWhere sums the rows matching a boolean SQL condition.
func countWhere(cond string) string {
	return "COALESCE(SUM(CASE WHEN " + cond + " THEN 1 ELSE 0 END), 0)"
}

func (r *statsRepo) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	b := entsql.Dialect(dialect.SQLite)

	query, args := b.Select(
		"COUNT(DISTINCT session_id)",
		countWhere("outcome = 'ok'"),
		countWhere("outcome = 'ok' AND correct = 1"),
		countWhere("outcome = 'timeout'"),
		countWhere("outcome = 'error'"),
	).From(entsql.Table(verificationEventsTable)).Query()
	err := r.queryRow(ctx, query, args, &s.Sessions, &s.Attempts, &s.Correct, &s.Timeouts, &s.Failures)
	if err != nil {
		return Summary{}, fmt.Errorf("query verification totals: %w", err)
	}

	query, args = b.Select(entsql.Count("*"), "COALESCE(MAX(percent), 0)").
		From(entsql.Table(examResultsTable)).
		Query()
	if err := r.queryRow(ctx, query, args, &s.Exams, &s.BestExam); err != nil {
		return Summary{}, fmt.Errorf("query exam totals: %w", err)
	}
	if s.Exams > 0 {
		query, args = b.Select("percent").
			From(entsql.Table(examResultsTable)).
			OrderBy(entsql.Desc("sequence")).
			Limit(1).
			Query()
		if err := r.queryRow(ctx, query, args, &s.LastExam); err != nil {
			return Summary{}, fmt.Errorf("query last exam: %w", err)
		}
	}

	lastSeq, err := r.questionStats(ctx, &s)
	if err != nil {
		return Summary{}, err
	}
	for i := range s.Questions {
		t, err := r.createdAt(ctx, lastSeq[s.Questions[i].QuestionID])
		if err != nil {
			return Summary{}, err
		}
		s.Questions[i].LastAnswered = t
	}

	sortWeakestFirst(s.Questions)
	return s, nil
}

// questionStats fills s.Questions from accepted verifications and returns
// the latest sequence per question.
func (r *statsRepo) questionStats(ctx context.Context, s *Summary) (map[string]int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("question_id", entsql.Count("*"), countWhere("correct = 1"), entsql.Max("sequence")).
		From(entsql.Table(verificationEventsTable)).
		Where(entsql.EQ("outcome", OutcomeOK)).
		GroupBy("question_id").
		Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query question stats: %w", err)
	}
	defer rows.Close()

	lastSeq := map[string]int64{}
	for rows.Next() {
		var q QuestionStats
		var seq int64
		if err := rows.Scan(&q.QuestionID, &q.Attempts, &q.Correct, &seq); err != nil {
			return nil, fmt.Errorf("scan question stats: %w", err)
		}
		lastSeq[q.QuestionID] = seq
		s.Questions = append(s.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question stats: %w", err)
	}
	return lastSeq, nil
}

func (r *statsRepo) createdAt(ctx context.Context, seq int64) (time.Time, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("created_at").
		From(entsql.Table(verificationEventsTable)).
		Where(entsql.EQ("sequence", seq)).
		Query()
	var t time.Time
	if err := r.queryRow(ctx, query, args, &t); err != nil {
		return time.Time{}, fmt.Errorf("query last answered: %w", err)
	}
	return t, nil
}

// queryRow scans the first row of query into dest.
func (r *statsRepo) queryRow(ctx context.Context, query string, args []any, dest ...any) error {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	return rows.Err()
}
