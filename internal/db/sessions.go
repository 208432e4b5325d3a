package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository handles session database operations.
type SessionRepository struct {
	pool *pgxpool.Pool
}

const sessionColumns = `id, name, category, fresh_injection_ratio, strategy, avoid_liked, created_at, updated_at`

// Upsert inserts a session or updates its settings.
func (r *SessionRepository) Upsert(ctx context.Context, session *Session) error {
	return upsertSession(ctx, r.pool, session)
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func upsertSession(ctx context.Context, q rowQuerier, session *Session) error {
	query := `
		INSERT INTO sessions (id, name, category, fresh_injection_ratio, strategy, avoid_liked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			fresh_injection_ratio = EXCLUDED.fresh_injection_ratio,
			strategy = EXCLUDED.strategy,
			avoid_liked = EXCLUDED.avoid_liked,
			updated_at = NOW()
		RETURNING updated_at
	`
	err := q.QueryRow(ctx, query,
		session.ID,
		session.Name,
		session.Category,
		session.FreshInjectionRatio,
		session.Strategy,
		session.AvoidLiked,
		session.CreatedAt,
	).Scan(&session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return session, nil
}

// List returns all sessions, most recently updated first.
func (r *SessionRepository) List(ctx context.Context) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes a session by ID. Its filters and likes go with it.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sessions WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Category,
		&s.FreshInjectionRatio,
		&s.Strategy,
		&s.AvoidLiked,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
