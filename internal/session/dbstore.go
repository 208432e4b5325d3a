package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/justestif/go-vibe-discovery/internal/db"
	"github.com/justestif/go-vibe-discovery/internal/filters"
	"github.com/justestif/go-vibe-discovery/internal/pool"
)

// DBStore keeps session state in PostgreSQL.
type DBStore struct {
	database *db.DB
}

// NewDBStore creates a database-backed store. The schema must already be
// migrated.
func NewDBStore(database *db.DB) *DBStore {
	return &DBStore{database: database}
}

// Save writes the session row, its filter queue and its likes atomically.
func (s *DBStore) Save(ctx context.Context, st State) error {
	id, err := uuid.Parse(st.ID)
	if err != nil {
		return fmt.Errorf("parsing session id: %w", err)
	}

	row := &db.Session{
		ID:                  id,
		Name:                st.Name,
		Category:            st.Category,
		FreshInjectionRatio: st.FreshInjectionRatio,
		Strategy:            st.Strategy.String(),
		AvoidLiked:          st.AvoidLiked,
		CreatedAt:           st.CreatedAt,
	}
	records := make([]db.FilterRecord, len(st.Filters))
	for i, r := range st.Filters {
		records[i] = db.FilterRecord{
			SessionID:        id,
			Position:         i,
			FilterID:         int(r.ID),
			ApplicationIndex: r.ApplicationIndex,
			AppliedAt:        r.AppliedAt,
		}
	}
	likes := make([]db.Like, len(st.Likes))
	for i, l := range st.Likes {
		likes[i] = db.Like{SessionID: id, ItemID: l.ItemID, LikedAt: l.LikedAt}
	}
	return s.database.SaveSession(ctx, row, records, likes)
}

// Load reads a session with its queue and likes.
func (s *DBStore) Load(ctx context.Context, id string) (State, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return State{}, ErrNotFound
	}

	row, err := s.database.Sessions().Get(ctx, sid)
	if errors.Is(err, db.ErrNotFound) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, err
	}
	st, err := stateFromRow(row)
	if err != nil {
		return State{}, err
	}

	queue, err := s.database.Filters().GetQueue(ctx, sid)
	if err != nil {
		return State{}, err
	}
	st.Filters = make([]filters.Record, len(queue))
	for i, r := range queue {
		st.Filters[i] = filters.Record{
			ID:               filters.ID(r.FilterID),
			ApplicationIndex: r.ApplicationIndex,
			AppliedAt:        r.AppliedAt,
		}
	}

	likes, err := s.database.Likes().List(ctx, sid)
	if err != nil {
		return State{}, err
	}
	st.Likes = make([]Like, len(likes))
	for i, l := range likes {
		st.Likes[i] = Like{ItemID: l.ItemID, LikedAt: l.LikedAt}
	}
	return st, nil
}

// List returns session settings without queues or likes.
func (s *DBStore) List(ctx context.Context) ([]State, error) {
	rows, err := s.database.Sessions().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]State, 0, len(rows))
	for i := range rows {
		st, err := stateFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// Delete removes a session and everything attached to it.
func (s *DBStore) Delete(ctx context.Context, id string) error {
	sid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	err = s.database.Sessions().Delete(ctx, sid)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func stateFromRow(row *db.Session) (State, error) {
	strategy, err := pool.ParseStrategy(row.Strategy)
	if err != nil {
		return State{}, fmt.Errorf("session %s: %w", row.ID, err)
	}
	return State{
		ID:                  row.ID.String(),
		Name:                row.Name,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
		Category:            row.Category,
		FreshInjectionRatio: row.FreshInjectionRatio,
		Strategy:            strategy,
		AvoidLiked:          row.AvoidLiked,
	}, nil
}

// Ensure both stores implement Store.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*DBStore)(nil)
)
