package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/logging"
	"github.com/justestif/go-vibe-discovery/internal/metrics"
	"github.com/justestif/go-vibe-discovery/internal/pool"
)

// Registry holds the live sessions and loads the rest from a Store.
type Registry struct {
	catalog    *catalog.Catalog
	store      Store
	engine     pool.Config
	categories catalog.Categories
	seed       uint64
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithEngineConfig sets the engine configuration of new sessions.
func WithEngineConfig(cfg pool.Config) RegistryOption {
	return func(r *Registry) {
		r.engine = cfg
	}
}

// WithCategories sets the category groups used by every session.
func WithCategories(c catalog.Categories) RegistryOption {
	return func(r *Registry) {
		r.categories = c
	}
}

// WithSeed makes every session's selection reproducible. Zero keeps
// random seeding.
func WithSeed(seed uint64) RegistryOption {
	return func(r *Registry) {
		r.seed = seed
	}
}

// WithClock sets the time source for creation and like timestamps.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry over a shared catalog.
func NewRegistry(c *catalog.Catalog, store Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		catalog:    c,
		store:      store,
		engine:     pool.DefaultConfig(),
		categories: catalog.DefaultCategories(),
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the shared catalog.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// Categories returns the category groups sessions choose from.
func (r *Registry) Categories() catalog.Categories {
	return r.categories
}

// Create starts a new session and saves it.
func (r *Registry) Create(ctx context.Context, name string) (*Session, error) {
	s := newSession(uuid.New().String(), name, r.now(), r.now)
	s.manager = r.newManager(s)

	if err := r.save(ctx, s); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	r.updateGauge()

	logging.Info().Str("session", s.ID).Str("name", name).Msg("session created")
	return s, nil
}

// Get returns the live session id, loading it from the store if needed.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	st, err := r.store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("load")
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}

	s = r.restore(st)

	r.mu.Lock()
	// Another request may have restored it first.
	if existing, ok := r.sessions[id]; ok {
		s = existing
	} else {
		r.sessions[id] = s
	}
	r.mu.Unlock()
	r.updateGauge()
	return s, nil
}

// Save persists the session's current state.
func (r *Registry) Save(ctx context.Context, s *Session) error {
	return r.save(ctx, s)
}

// Like records a like on the session and saves it.
func (r *Registry) Like(ctx context.Context, s *Session, itemID string) (bool, error) {
	if _, ok := r.catalog.Item(itemID); !ok {
		return false, fmt.Errorf("item %q: %w", itemID, catalog.ErrItemNotFound)
	}
	added := s.Like(itemID, r.now())
	if !added {
		return false, nil
	}
	return true, r.save(ctx, s)
}

// Delete removes a session from memory and from the store.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	_, live := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	r.updateGauge()

	err := r.store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		if live {
			return nil
		}
		return ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("delete")
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	logging.Info().Str("session", id).Msg("session deleted")
	return nil
}

// List summarises every stored session. Live sessions report their
// current state.
func (r *Registry) List(ctx context.Context) ([]Info, error) {
	states, err := r.store.List(ctx)
	if err != nil {
		metrics.RecordStoreError("list")
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	out := make([]Info, 0, len(states))
	for _, st := range states {
		r.mu.RLock()
		s, ok := r.sessions[st.ID]
		r.mu.RUnlock()
		if ok {
			out = append(out, s.Info())
			continue
		}
		out = append(out, Info{
			ID:          st.ID,
			Name:        st.Name,
			CreatedAt:   st.CreatedAt,
			Category:    st.Category,
			QueueLength: len(st.Filters),
			Likes:       len(st.Likes),
			Config:      r.configFor(st),
		})
	}
	return out, nil
}

// Evict drops sessions idle for longer than idle from memory. They stay in
// the store and are restored on the next Get. It returns how many went.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var evicted []string
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			evicted = append(evicted, id)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	if len(evicted) > 0 {
		r.updateGauge()
		slices.Sort(evicted)
		logging.Debug().Strs("sessions", evicted).Msg("idle sessions evicted")
	}
	return len(evicted)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) save(ctx context.Context, s *Session) error {
	if err := r.store.Save(ctx, s.Snapshot()); err != nil {
		metrics.RecordStoreError("save")
		return fmt.Errorf("saving session %s: %w", s.ID, err)
	}
	return nil
}

func (r *Registry) newManager(s *Session) *pool.Manager {
	return r.newManagerWith(s, r.engine)
}

func (r *Registry) newManagerWith(s *Session, cfg pool.Config) *pool.Manager {
	opts := []pool.Option{
		pool.WithConfig(cfg),
		pool.WithCategories(r.categories),
		pool.WithLikedSet(s),
		pool.WithClock(r.now),
		pool.WithLogger(sessionLogger(s.ID)),
	}
	if r.seed != 0 {
		opts = append(opts, pool.WithSeed(r.seed))
	}
	return pool.New(r.catalog, opts...)
}

func (r *Registry) configFor(st State) pool.Config {
	cfg := r.engine
	cfg.FreshInjectionRatio = st.FreshInjectionRatio
	cfg.Strategy = st.Strategy
	cfg.AvoidLiked = st.AvoidLiked
	return cfg
}

// restore rebuilds a session from stored state. A category that no longer
// exists leaves the session without a genre pool.
func (r *Registry) restore(st State) *Session {
	s := newSession(st.ID, st.Name, st.CreatedAt, r.now)
	for _, l := range st.Likes {
		s.Like(l.ItemID, l.LikedAt)
	}
	s.manager = r.newManagerWith(s, r.configFor(st))

	if st.Category == "" {
		return s
	}
	if err := s.manager.SetGenrePool(st.Category); err != nil {
		logging.Warn().Err(err).Str("session", st.ID).Msg("stored category unavailable")
		return s
	}
	if err := s.manager.Restore(st.Filters); err != nil {
		logging.Warn().Err(err).Str("session", st.ID).Msg("restoring filter queue")
	}

	logging.Info().
		Str("session", st.ID).
		Str("category", st.Category).
		Int("filters", len(st.Filters)).
		Int("likes", len(st.Likes)).
		Msg("session restored")
	return s
}

func (r *Registry) updateGauge() {
	metrics.SetActiveSessions(r.Len())
}

func sessionLogger(id string) zerolog.Logger {
	return logging.With().Str("session", id).Logger()
}
