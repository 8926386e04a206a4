// Package archive records raw fetched payloads in a durable Postgres ledger.
// The archive is an optional side channel of the export pipeline: it never
// affects normalization and its failures never abort a batch.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shelfpull/internal/db"
	"shelfpull/internal/fetch"
	"shelfpull/internal/globaltime"
)

const maxErrorMessageLength = 4000

type Service struct {
	pool   *db.Pool
	logger zerolog.Logger
}

func NewService(pool *db.Pool, logger zerolog.Logger) *Service {
	return &Service{
		pool:   pool,
		logger: logger,
	}
}

// BeginRun opens a ledger entry for one export batch and returns its row id.
func (s *Service) BeginRun(ctx context.Context, runUUID, baseURL string) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("archive service is not initialized")
	}

	const q = `
INSERT INTO export_runs (run_uuid, base_url, status, started_at)
VALUES ($1, $2, 'running', $3)
RETURNING run_id
`

	var runID int64
	if err := s.pool.QueryRow(ctx, q, runUUID, baseURL, globaltime.UTC()).Scan(&runID); err != nil {
		return 0, fmt.Errorf("insert export run: %w", err)
	}
	return runID, nil
}

// RecordPayload stores one successful fetch result. Identical payloads for
// the same product are deduplicated by content hash; the return value reports
// whether a new row was inserted. Failure-marker results are not archived.
func (s *Service) RecordPayload(ctx context.Context, runID int64, res fetch.Result) (bool, error) {
	if s == nil || s.pool == nil {
		return false, fmt.Errorf("archive service is not initialized")
	}
	if res.Failure != nil {
		return false, nil
	}

	raw, err := json.Marshal(res.Payload)
	if err != nil {
		return false, fmt.Errorf("marshal payload for %s: %w", res.ProductID, err)
	}
	hash := sha256.Sum256(raw)

	const q = `
INSERT INTO raw_payloads (run_id, product_id, raw_payload, payload_hash, fetched_at)
VALUES ($1, $2, $3::jsonb, $4, $5)
ON CONFLICT (product_id, payload_hash) DO NOTHING
`

	tag, err := s.pool.Exec(ctx, q, runID, res.ProductID, string(raw), hash[:], globaltime.UTC())
	if err != nil {
		return false, fmt.Errorf("insert raw payload for %s: %w", res.ProductID, err)
	}

	inserted := tag.RowsAffected() > 0
	s.logger.Debug().
		Str("product_id", res.ProductID).
		Bool("inserted", inserted).
		Msg("raw payload archived")
	return inserted, nil
}

// FinishRun marks a run completed with its final counters.
func (s *Service) FinishRun(ctx context.Context, runID int64, fetched, archived int) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("archive service is not initialized")
	}

	const q = `
UPDATE export_runs
SET status = 'completed',
    items_fetched = $2,
    items_archived = $3,
    error_message = NULL,
    finished_at = $4
WHERE run_id = $1
`
	_, err := s.pool.Exec(ctx, q, runID, fetched, archived, globaltime.UTC())
	return err
}

// FailRun marks a run failed, keeping a truncated cause for inspection.
func (s *Service) FailRun(ctx context.Context, runID int64, cause error) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("archive service is not initialized")
	}

	msg := "unknown failure"
	if cause != nil {
		msg = strings.TrimSpace(cause.Error())
	}
	if len(msg) > maxErrorMessageLength {
		msg = msg[:maxErrorMessageLength]
	}

	const q = `
UPDATE export_runs
SET status = 'failed',
    error_message = $2,
    finished_at = $3
WHERE run_id = $1
`
	_, err := s.pool.Exec(ctx, q, runID, msg, globaltime.UTC())
	return err
}

// Elapsed is a small helper for run-duration log fields.
func Elapsed(start time.Time) time.Duration {
	return globaltime.UTC().Sub(start.UTC())
}
