package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles liked item database operations.
type LikeRepository struct {
	pool *pgxpool.Pool
}

// Add records a like. Liking an item twice keeps the first timestamp.
func (r *LikeRepository) Add(ctx context.Context, like *Like) error {
	query := `
		INSERT INTO session_likes (session_id, item_id, liked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, item_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, like.SessionID, like.ItemID, like.LikedAt)
	if err != nil {
		return fmt.Errorf("inserting like: %w", err)
	}
	return nil
}

// List returns a session's likes, oldest first.
func (r *LikeRepository) List(ctx context.Context, sessionID uuid.UUID) ([]Like, error) {
	query := `
		SELECT session_id, item_id, liked_at
		FROM session_likes
		WHERE session_id = $1
		ORDER BY liked_at, item_id
	`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying likes: %w", err)
	}
	defer rows.Close()

	var likes []Like
	for rows.Next() {
		var l Like
		if err := rows.Scan(&l.SessionID, &l.ItemID, &l.LikedAt); err != nil {
			return nil, fmt.Errorf("scanning like: %w", err)
		}
		likes = append(likes, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating likes: %w", err)
	}
	return likes, nil
}
