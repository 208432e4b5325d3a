package session

import (
	"context"
	"slices"
	"time"

	"github.com/justestif/go-vibe-discovery/internal/filters"
	"github.com/justestif/go-vibe-discovery/internal/pool"
)

// State is everything needed to rebuild a session. The shown history
// is not kept; a restored session starts with a fresh one.
type State struct {
	ID                  string
	Name                string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Category            string
	FreshInjectionRatio float64
	Strategy            pool.Strategy
	AvoidLiked          bool
	Filters             []filters.Record
	Likes               []Like
}

func (st State) clone() State {
	st.Filters = slices.Clone(st.Filters)
	st.Likes = slices.Clone(st.Likes)
	return st
}

// Store persists session state.
type Store interface {
	Save(ctx context.Context, st State) error
	Load(ctx context.Context, id string) (State, error)
	List(ctx context.Context) ([]State, error)
	Delete(ctx context.Context, id string) error
}
