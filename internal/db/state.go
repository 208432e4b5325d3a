package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveSession writes a session's settings, replaces its filter queue and
// adds its likes in one transaction. On error nothing is written.
func (db *DB) SaveSession(ctx context.Context, session *Session, queue []FilterRecord, likes []Like) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertSession(ctx, tx, session); err != nil {
		return err
	}
	if err := replaceQueue(ctx, tx, session.ID, queue); err != nil {
		return err
	}
	if err := addLikes(ctx, tx, session.ID, likes); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func replaceQueue(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, records []FilterRecord) error {
	if _, err := tx.Exec(ctx, `DELETE FROM session_filters WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clearing filter queue: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = []any{sessionID, i, rec.FilterID, rec.ApplicationIndex, rec.AppliedAt}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"session_filters"},
		[]string{"session_id", "position", "filter_id", "application_index", "applied_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting filter queue: %w", err)
	}
	return nil
}

// addLikes inserts likes in one statement. Existing likes keep their
// first timestamp.
func addLikes(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID, likes []Like) error {
	if len(likes) == 0 {
		return nil
	}

	itemIDs := make([]string, len(likes))
	likedAt := make([]time.Time, len(likes))
	for i, l := range likes {
		itemIDs[i] = l.ItemID
		likedAt[i] = l.LikedAt
	}
	query := `
		INSERT INTO session_likes (session_id, item_id, liked_at)
		SELECT $1, item_id, liked_at
		FROM unnest($2::text[], $3::timestamptz[]) AS l(item_id, liked_at)
		ON CONFLICT (session_id, item_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, query, sessionID, itemIDs, likedAt); err != nil {
		return fmt.Errorf("inserting likes: %w", err)
	}
	return nil
}
