// Package pool implements the steerable discovery engine: the genre pool,
// the filter queue, the rebuild pipeline that turns the queue into a
// playback pool, and the history-aware selector that serves items from it.
package pool

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/filters"
	"github.com/justestif/go-vibe-discovery/internal/logging"
	"github.com/justestif/go-vibe-discovery/internal/metrics"
)

// Default engine parameters.
const (
	DefaultFreshInjectionRatio = 0.3
	DefaultMinPoolSize         = 50
	DefaultRadiusRelaxation    = 0.5
	DefaultRelaxThreshold      = 0.5
)

// Config holds the tunable parameters of a Manager.
type Config struct {
	// FreshInjectionRatio is the fraction of each mixed pool drawn from the
	// pool that existed before the filter step.
	FreshInjectionRatio float64 `json:"fresh_injection_ratio"`

	// MinPoolSize triggers cross-genre expansion when the playback pool is smaller.
	MinPoolSize int `json:"min_pool_size"`

	// RadiusRelaxation scales the radius of a step that removed too much.
	RadiusRelaxation float64 `json:"radius_relaxation"`

	// RelaxThreshold is the reduction ratio above which a step is relaxed.
	RelaxThreshold float64 `json:"relax_threshold"`

	Strategy   Strategy `json:"strategy"`
	AvoidLiked bool     `json:"avoid_liked"`
}

// DefaultConfig returns the recommended engine configuration.
func DefaultConfig() Config {
	return Config{
		FreshInjectionRatio: DefaultFreshInjectionRatio,
		MinPoolSize:         DefaultMinPoolSize,
		RadiusRelaxation:    DefaultRadiusRelaxation,
		RelaxThreshold:      DefaultRelaxThreshold,
		Strategy:            StrategyAverageCentered,
	}
}

// LikedSet reports whether an item has been liked. Sessions implement it.
type LikedSet interface {
	IsLiked(itemID string) bool
}

// Manager owns the per-consumer discovery state over a shared Catalog.
// It is not safe for concurrent use.
type Manager struct {
	catalog    *catalog.Catalog
	categories catalog.Categories
	cfg        Config
	rng        *rand.Rand
	liked      LikedSet
	now        func() time.Time
	log        zerolog.Logger

	category string
	genre    []*catalog.Item
	queue    []filters.Record
	playback []*catalog.Item
	shown    map[string]struct{}
	last     RebuildReport
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig sets the engine parameters.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithSeed makes every sampling step reproducible.
func WithSeed(seed uint64) Option {
	return func(m *Manager) {
		m.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the random source.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) {
		if r != nil {
			m.rng = r
		}
	}
}

// WithCategories replaces the category to tag mapping.
func WithCategories(c catalog.Categories) Option {
	return func(m *Manager) {
		if len(c) > 0 {
			m.categories = c
		}
	}
}

// WithLikedSet attaches the set consulted when AvoidLiked is on.
func WithLikedSet(l LikedSet) Option {
	return func(m *Manager) {
		m.liked = l
	}
}

// WithClock sets the time source used to stamp filter records.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger, e.g. one carrying a session id.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// New creates a Manager over c. No genre pool is selected.
func New(c *catalog.Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog:    c,
		categories: catalog.DefaultCategories(),
		cfg:        DefaultConfig(),
		now:        time.Now,
		log:        logging.Logger(),
		shown:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if m.cfg.RadiusRelaxation <= 0 || m.cfg.RadiusRelaxation > 1 {
		m.cfg.RadiusRelaxation = DefaultRadiusRelaxation
	}
	m.cfg.FreshInjectionRatio = max(0, min(1, m.cfg.FreshInjectionRatio))
	return m
}

// Catalog returns the backing catalog.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// Categories returns the category to tag mapping in use.
func (m *Manager) Categories() catalog.Categories {
	return m.categories
}

// SetGenrePool selects the genre pool for category and resets the queue,
// the shown set and the playback pool. On error nothing changes.
func (m *Manager) SetGenrePool(category string) error {
	tags, ok := m.categories.Tags(category)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	genre := catalog.UniqueByID(m.catalog.ByTags(tags))
	if len(genre) == 0 {
		return fmt.Errorf("category %q: %w", category, ErrEmptyPool)
	}

	m.category = category
	m.genre = genre
	m.queue = nil
	clear(m.shown)
	m.playback = slices.Clone(genre)
	m.last = RebuildReport{GenreSize: len(genre), PlaybackSize: len(genre)}

	m.log.Info().
		Str("category", category).
		Int("pool_size", len(genre)).
		Msg("genre pool set")
	return nil
}

// Category returns the selected category, or "" before SetGenrePool.
func (m *Manager) Category() string {
	return m.category
}

// HasGenrePool reports whether a category has been selected.
func (m *Manager) HasGenrePool() bool {
	return m.genre != nil
}

// ApplyResult describes the outcome of ApplyFilter.
type ApplyResult struct {
	Message     string     `json:"message"`
	FilterID    filters.ID `json:"filter_id"`
	Cancelled   bool       `json:"cancelled"`
	PoolSize    int        `json:"pool_size"`
	QueueLength int        `json:"queue_length"`
}

// ApplyFilter resolves name with filters.Parse and applies it.
func (m *Manager) ApplyFilter(name string) (ApplyResult, error) {
	if m.genre == nil {
		return ApplyResult{}, ErrNoGenrePool
	}
	id, err := filters.Parse(name)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return m.ApplyFilterID(id)
}

// ApplyFilterID adds id to the queue, cancelling it against an opposite
// filter already queued, and rebuilds the playback pool.
func (m *Manager) ApplyFilterID(id filters.ID) (ApplyResult, error) {
	if m.genre == nil {
		return ApplyResult{}, ErrNoGenrePool
	}
	if !id.Valid() {
		return ApplyResult{}, fmt.Errorf("%w: %w: %d", ErrInvalidFilter, filters.ErrUnknownFilter, int(id))
	}

	before := len(m.playback)
	queue, cancelled := filters.Push(m.queue, id, m.now())
	m.queue = queue
	m.rebuild()

	metrics.RecordFilterApplied(id.String(), cancelled)

	msg := "Filter applied: " + id.String()
	if cancelled {
		msg = fmt.Sprintf("Filter cancelled: %s removed %s", id, id.Opposite())
	}

	m.log.Info().
		Str("filter", id.String()).
		Bool("cancelled", cancelled).
		Int("before", before).
		Int("after", len(m.playback)).
		Int("queue_length", len(m.queue)).
		Msg("filter applied")

	return ApplyResult{
		Message:     msg,
		FilterID:    id,
		Cancelled:   cancelled,
		PoolSize:    len(m.playback),
		QueueLength: len(m.queue),
	}, nil
}

// Restore replaces the queue with records loaded from a session store, in
// chronological order, and rebuilds. Invalid ids and contradictions are
// normalised away.
func (m *Manager) Restore(records []filters.Record) error {
	if m.genre == nil {
		if len(records) == 0 {
			return nil
		}
		return ErrNoGenrePool
	}
	m.queue = filters.Normalize(records)
	m.rebuild()
	return nil
}

// Queue returns a copy of the filter queue.
func (m *Manager) Queue() []filters.Record {
	return slices.Clone(m.queue)
}

// PlaybackPool returns a copy of the playback pool.
func (m *Manager) PlaybackPool() []*catalog.Item {
	return slices.Clone(m.playback)
}

// GenrePool returns a copy of the genre pool.
func (m *Manager) GenrePool() []*catalog.Item {
	return slices.Clone(m.genre)
}

// Shown reports whether id has been served since the last reset.
func (m *Manager) Shown(id string) bool {
	_, ok := m.shown[id]
	return ok
}

// Clear empties the queue and the shown set and resets the playback pool
// to the genre pool. Calling it repeatedly is the same as calling it once.
func (m *Manager) Clear() {
	filtersCount, shownCount := len(m.queue), len(m.shown)

	m.queue = nil
	clear(m.shown)
	if m.genre == nil {
		m.log.Warn().Msg("reset requested without a genre pool")
		return
	}
	m.playback = slices.Clone(m.genre)
	m.last = RebuildReport{GenreSize: len(m.genre), PlaybackSize: len(m.playback)}

	m.log.Info().
		Int("filters_removed", filtersCount).
		Int("shown_cleared", shownCount).
		Int("pool_size", len(m.playback)).
		Msg("pool reset")
}

// ClearShown empties only the shown set.
func (m *Manager) ClearShown() {
	n := len(m.shown)
	clear(m.shown)
	m.log.Info().Int("shown_cleared", n).Msg("shown history cleared")
}

// FreshInjectionRatio returns the fraction of old items kept when mixing.
func (m *Manager) FreshInjectionRatio() float64 {
	return m.cfg.FreshInjectionRatio
}

// SetFreshInjectionRatio changes the mixing ratio used by later rebuilds.
func (m *Manager) SetFreshInjectionRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}
	m.cfg.FreshInjectionRatio = ratio
	m.log.Info().Float64("ratio", ratio).Msg("fresh injection ratio set")
	return nil
}

// Strategy returns the selection strategy.
func (m *Manager) Strategy() Strategy {
	return m.cfg.Strategy
}

// SetStrategy changes the selection strategy.
func (m *Manager) SetStrategy(s Strategy) error {
	if s != StrategyAverageCentered && s != StrategyRandom {
		return fmt.Errorf("%w: %s", ErrInvalidStrategy, s)
	}
	m.cfg.Strategy = s
	m.log.Info().Stringer("strategy", s).Msg("selection strategy set")
	return nil
}

// AvoidLiked reports whether liked items are skipped by the selector.
func (m *Manager) AvoidLiked() bool {
	return m.cfg.AvoidLiked
}

// SetAvoidLiked toggles skipping liked items.
func (m *Manager) SetAvoidLiked(on bool) {
	m.cfg.AvoidLiked = on
}

// Config returns the current engine configuration.
func (m *Manager) Config() Config {
	return m.cfg
}
