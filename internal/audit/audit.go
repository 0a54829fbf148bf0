// internal/audit/audit.go
package audit

import (
	"context"
	"database/sql"
	"time"

	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/eam"
)

// PredictionRecord is one attribute outcome of a prediction request.
type PredictionRecord struct {
	RequestID        string
	AssetDescription string
	Attribute        string
	StoragePath      string
	HistoricalCount  int
	Prediction       *string
	Error            string
	Duration         time.Duration
}

// EAMWriteRecord is one create request sent to EAM.
type EAMWriteRecord struct {
	RequestID         string
	Entity            string
	Code              string
	Status            string
	RevisionUsed      int
	Attempts          int
	MaxRetriesReached bool
	ResponseBody      string
}

// FromCreateResult converts a revisioned create outcome.
func FromCreateResult(requestID string, r *eam.CreateResult) EAMWriteRecord {
	return EAMWriteRecord{
		RequestID:         requestID,
		Entity:            r.Entity,
		Code:              r.Code,
		Status:            string(r.Status),
		RevisionUsed:      r.RevisionUsed,
		Attempts:          r.Attempts,
		MaxRetriesReached: r.MaxRetriesReached,
		ResponseBody:      r.ResponseBody,
	}
}

// Recorder persists audit records. Implementations must be safe to call from
// request handlers.
type Recorder interface {
	RecordPrediction(ctx context.Context, rec PredictionRecord) error
	RecordEAMWrite(ctx context.Context, rec EAMWriteRecord) error
}

// Nop discards every record. It is used when no database is configured.
type Nop struct{}

func (Nop) RecordPrediction(context.Context, PredictionRecord) error { return nil }
func (Nop) RecordEAMWrite(context.Context, EAMWriteRecord) error     { return nil }

const schema = `
CREATE TABLE IF NOT EXISTS prediction_audit (
	id BIGSERIAL PRIMARY KEY,
	request_id TEXT NOT NULL,
	asset_description TEXT NOT NULL,
	attribute TEXT NOT NULL,
	storage_path TEXT,
	historical_count INTEGER NOT NULL,
	prediction TEXT,
	error TEXT,
	duration_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS eam_write_audit (
	id BIGSERIAL PRIMARY KEY,
	request_id TEXT NOT NULL,
	entity TEXT NOT NULL,
	code TEXT NOT NULL,
	status TEXT NOT NULL,
	revision_used INTEGER NOT NULL,
	attempts INTEGER NOT NULL,
	max_retries_reached BOOLEAN NOT NULL,
	response_body TEXT,
	created_at TIMESTAMPTZ NOT NULL
);`

// Store writes audit records to Postgres.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the audit tables when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func (s *Store) RecordPrediction(ctx context.Context, rec PredictionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prediction_audit (
			request_id, asset_description, attribute, storage_path,
			historical_count, prediction, error, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.RequestID,
		rec.AssetDescription,
		rec.Attribute,
		nullString(rec.StoragePath),
		rec.HistoricalCount,
		nullStringPtr(rec.Prediction),
		nullString(rec.Error),
		rec.Duration.Milliseconds(),
		s.now(),
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func (s *Store) RecordEAMWrite(ctx context.Context, rec EAMWriteRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO eam_write_audit (
			request_id, entity, code, status, revision_used,
			attempts, max_retries_reached, response_body, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.RequestID,
		rec.Entity,
		rec.Code,
		rec.Status,
		rec.RevisionUsed,
		rec.Attempts,
		rec.MaxRetriesReached,
		nullString(rec.ResponseBody),
		s.now(),
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
