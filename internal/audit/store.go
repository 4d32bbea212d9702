// Package audit records completed conversions in PostgreSQL.
//
// Each run produces one row in premis_conversion_runs with the operator,
// the input tables, the output path and the row counts. The ledger is the
// provenance trail for who generated which PREMIS document.
package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/premiscsv2xml/internal/core"
)

// DBTX is the subset of pgx used by the store.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS premis_conversion_runs (
    run_id       UUID PRIMARY KEY,
    operator     TEXT NOT NULL,
    source       TEXT NOT NULL,
    objects      TEXT NOT NULL,
    events       TEXT NOT NULL,
    output_path  TEXT,
    object_rows  INTEGER NOT NULL,
    event_rows   INTEGER NOT NULL,
    started_at   TIMESTAMPTZ NOT NULL,
    duration_ms  BIGINT NOT NULL
)`

const insertRun = `
INSERT INTO premis_conversion_runs (
    run_id, operator, source, objects, events, output_path,
    object_rows, event_rows, started_at, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Store writes run records. It implements core.RunRecorder.
type Store struct {
	db DBTX
}

var _ core.RunRecorder = (*Store)(nil)

// NewStore creates a store over db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the runs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create premis_conversion_runs: %w", err)
	}
	return nil
}

// RecordRun inserts one run.
func (s *Store) RecordRun(ctx context.Context, rec core.RunRecord) error {
	id, err := toPgUUID(rec.RunID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, insertRun,
		id,
		rec.Operator,
		string(rec.Source),
		rec.Objects,
		rec.Events,
		toPgText(rec.OutputPath),
		int32(rec.ObjectRows),
		int32(rec.EventRows),
		pgtype.Timestamptz{Time: rec.StartedAt, Valid: true},
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rec.RunID, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("insert run %s: %d rows affected", rec.RunID, tag.RowsAffected())
	}
	return nil
}

// toPgUUID converts a run ID to pgtype.UUID.
func toPgUUID(s string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("invalid run id %q: %w", s, err)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

// toPgText stores empty strings as NULL.
func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
