package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FilterRepository handles filter queue database operations.
type FilterRepository struct {
	pool *pgxpool.Pool
}

// ReplaceQueue replaces a session's whole filter queue in one transaction.
// Positions are assigned from the slice order.
func (r *FilterRepository) ReplaceQueue(ctx context.Context, sessionID uuid.UUID, records []FilterRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := replaceQueue(ctx, tx, sessionID, records); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetQueue retrieves a session's filter queue in application order.
func (r *FilterRepository) GetQueue(ctx context.Context, sessionID uuid.UUID) ([]FilterRecord, error) {
	query := `
		SELECT session_id, position, filter_id, application_index, applied_at
		FROM session_filters
		WHERE session_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying filter queue: %w", err)
	}
	defer rows.Close()

	var records []FilterRecord
	for rows.Next() {
		var rec FilterRecord
		if err := rows.Scan(
			&rec.SessionID,
			&rec.Position,
			&rec.FilterID,
			&rec.ApplicationIndex,
			&rec.AppliedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning filter record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating filter queue: %w", err)
	}
	return records, nil
}
