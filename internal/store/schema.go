package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	verificationEventsTable = "verification_events"
	examResultsTable        = "exam_results"
	globalSequenceTable     = "global_sequence"
)

var (
	// VerificationEventsColumns holds the columns for the "verification_events" table.
	VerificationEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "mode", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "question_type", Type: field.TypeString},
		{Name: "answer", Type: field.TypeString},
		{Name: "outcome", Type: field.TypeString},
		{Name: "correct", Type: field.TypeBool},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "error_message", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	// VerificationEventsTable holds the schema information for the "verification_events" table.
	VerificationEventsTable = &schema.Table{
		Name:       verificationEventsTable,
		Columns:    VerificationEventsColumns,
		PrimaryKey: []*schema.Column{VerificationEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "verificationevent_question_id",
				Unique:  false,
				Columns: []*schema.Column{VerificationEventsColumns[4]},
			},
			{
				Name:    "verificationevent_session_id",
				Unique:  false,
				Columns: []*schema.Column{VerificationEventsColumns[2]},
			},
		},
	}
	// ExamResultsColumns holds the columns for the "exam_results" table.
	ExamResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "total", Type: field.TypeInt},
		{Name: "answered", Type: field.TypeInt},
		{Name: "correct", Type: field.TypeInt},
		{Name: "failed", Type: field.TypeInt},
		{Name: "percent", Type: field.TypeFloat64},
		{Name: "duration_secs", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ExamResultsTable holds the schema information for the "exam_results" table.
	ExamResultsTable = &schema.Table{
		Name:       examResultsTable,
		Columns:    ExamResultsColumns,
		PrimaryKey: []*schema.Column{ExamResultsColumns[0]},
	}
	// GlobalSequenceColumns holds the columns for the "global_sequence" table.
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64},
	}
	// GlobalSequenceTable holds the single-row sequence shared by every event table.
	GlobalSequenceTable = &schema.Table{
		Name:       globalSequenceTable,
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		VerificationEventsTable,
		ExamResultsTable,
		GlobalSequenceTable,
	}
)

// createSchema migrates all tables to the current definition and seeds the
// sequence row. Safe to call repeatedly.
func createSchema(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(globalSequenceTable).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if err := drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}
