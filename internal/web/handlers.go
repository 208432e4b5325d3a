package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/filters"
	"github.com/justestif/go-vibe-discovery/internal/pool"
	"github.com/justestif/go-vibe-discovery/internal/session"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	registry     *session.Registry
	moodClusters int
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *session.Registry, moodClusters int) *Handlers {
	if moodClusters <= 0 {
		moodClusters = 3
	}
	return &Handlers{
		registry:     registry,
		moodClusters: moodClusters,
	}
}

// ListCategories handles GET /api/categories.
func (h *Handlers) ListCategories(w http.ResponseWriter, _ *http.Request) {
	cats := h.registry.Categories()
	c := h.registry.Catalog()

	out := make([]CategoryResponse, 0, len(cats))
	for _, name := range cats.Names() {
		tags, _ := cats.Tags(name)
		out = append(out, CategoryResponse{
			Name: name,
			Tags: tags,
			Size: len(catalog.UniqueByID(c.ByTags(tags))),
		})
	}
	respondOK(w, out)
}

// ListFilters handles GET /api/filters.
func (h *Handlers) ListFilters(w http.ResponseWriter, _ *http.Request) {
	ids := filters.All()
	out := make([]FilterResponse, len(ids))
	for i, id := range ids {
		out[i] = newFilterResponse(id)
	}
	respondOK(w, out)
}

// ListStrategies handles GET /api/strategies.
func (h *Handlers) ListStrategies(w http.ResponseWriter, _ *http.Request) {
	strategies := []pool.Strategy{pool.StrategyAverageCentered, pool.StrategyRandom}
	out := make([]StrategyResponse, len(strategies))
	for i, s := range strategies {
		out[i] = StrategyResponse{Name: s.String(), Description: s.Description()}
	}
	respondOK(w, out)
}

// GetItem handles GET /api/items/{itemID}.
func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.registry.Catalog().Item(chi.URLParam(r, "itemID"))
	if !ok {
		respondErr(w, r, catalog.ErrItemNotFound)
		return
	}
	respondOK(w, newItemResponse(it, false))
}

// CreateSession handles POST /api/sessions.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	s, err := h.registry.Create(r.Context(), req.Name)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondCreated(w, s.Info())
}

// ListSessions handles GET /api/sessions.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	infos, err := h.registry.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondOK(w, infos)
}

// GetSession handles GET /api/sessions/{sessionID}.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	respondOK(w, sessionFrom(r).Info())
}

// DeleteSession handles DELETE /api/sessions/{sessionID}.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(r.Context(), sessionFrom(r).ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respondOK(w, nil)
}

// SetGenrePool handles POST /api/sessions/{sessionID}/genre.
func (h *Handlers) SetGenrePool(w http.ResponseWriter, r *http.Request) {
	var req SetGenreRequest
	if err := decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	s := sessionFrom(r)
	var stats pool.PoolStats
	err := s.Do(func(m *pool.Manager) error {
		if err := m.SetGenrePool(req.Category); err != nil {
			return err
		}
		stats = m.Stats()
		return nil
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if !h.save(w, r, s) {
		return
	}
	respondOK(w, stats)
}

// GetQueue handles GET /api/sessions/{sessionID}/filters.
func (h *Handlers) GetQueue(w http.ResponseWriter, r *http.Request) {
	var queue []filters.Record
	sessionFrom(r).Use(func(m *pool.Manager) {
		queue = m.Queue()
	})
	out := make([]QueueEntryResponse, len(queue))
	for i, rec := range queue {
		out[i] = QueueEntryResponse{
			Filter:           newFilterResponse(rec.ID),
			ApplicationIndex: rec.ApplicationIndex,
			AppliedAt:        rec.AppliedAt,
		}
	}
	respondOK(w, out)
}

// ApplyFilter handles POST /api/sessions/{sessionID}/filters.
func (h *Handlers) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	var req ApplyFilterRequest
	if err := decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	s := sessionFrom(r)
	var result pool.ApplyResult
	err := s.Do(func(m *pool.Manager) error {
		var err error
		result, err = m.ApplyFilter(req.Filter)
		return err
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if !h.save(w, r, s) {
		return
	}
	respondOK(w, result)
}

// NextItem handles GET /api/sessions/{sessionID}/next.
func (h *Handlers) NextItem(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	var it *catalog.Item
	err := s.Do(func(m *pool.Manager) error {
		var err error
		it, err = m.NextItem()
		return err
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondOK(w, newItemResponse(it, s.IsLiked(it.ID)))
}

// Clear handles POST /api/sessions/{sessionID}/clear.
func (h *Handlers) Clear(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	var stats pool.PoolStats
	s.Use(func(m *pool.Manager) {
		m.Clear()
		stats = m.Stats()
	})
	if !h.save(w, r, s) {
		return
	}
	respondOK(w, stats)
}

// ClearShown handles POST /api/sessions/{sessionID}/shown/clear.
func (h *Handlers) ClearShown(w http.ResponseWriter, r *http.Request) {
	var stats pool.PoolStats
	sessionFrom(r).Use(func(m *pool.Manager) {
		m.ClearShown()
		stats = m.Stats()
	})
	respondOK(w, stats)
}

// Stats handles GET /api/sessions/{sessionID}/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	var stats pool.PoolStats
	sessionFrom(r).Use(func(m *pool.Manager) {
		stats = m.Stats()
	})
	respondOK(w, stats)
}

// LastRebuild handles GET /api/sessions/{sessionID}/rebuild.
func (h *Handlers) LastRebuild(w http.ResponseWriter, r *http.Request) {
	var report pool.RebuildReport
	sessionFrom(r).Use(func(m *pool.Manager) {
		report = m.LastRebuild()
	})
	respondOK(w, report)
}

// Moods handles GET /api/sessions/{sessionID}/moods?k=N.
func (h *Handlers) Moods(w http.ResponseWriter, r *http.Request) {
	k := h.moodClusters
	if v := r.URL.Query().Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			respondError(w, http.StatusBadRequest, CodeValidation, "k must be an integer between 1 and 12")
			return
		}
		k = n
	}

	var resp MoodsResponse
	err := sessionFrom(r).Do(func(m *pool.Manager) error {
		if !m.HasGenrePool() {
			return pool.ErrNoGenrePool
		}
		moods, outliers := m.Moods(k)
		resp = newMoodsResponse(moods, outliers)
		return nil
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondOK(w, resp)
}

// GetConfig handles GET /api/sessions/{sessionID}/config.
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg pool.Config
	sessionFrom(r).Use(func(m *pool.Manager) {
		cfg = m.Config()
	})
	respondOK(w, cfg)
}

// UpdateConfig handles PUT /api/sessions/{sessionID}/config. Omitted
// fields keep their values; nothing changes if any field is invalid.
func (h *Handlers) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req UpdateConfigRequest
	if err := decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	var strategy pool.Strategy
	if req.Strategy != nil {
		var err error
		if strategy, err = pool.ParseStrategy(*req.Strategy); err != nil {
			respondErr(w, r, err)
			return
		}
	}

	s := sessionFrom(r)
	var cfg pool.Config
	err := s.Do(func(m *pool.Manager) error {
		if req.FreshInjectionRatio != nil {
			if err := m.SetFreshInjectionRatio(*req.FreshInjectionRatio); err != nil {
				return err
			}
		}
		if req.Strategy != nil {
			if err := m.SetStrategy(strategy); err != nil {
				return err
			}
		}
		if req.AvoidLiked != nil {
			m.SetAvoidLiked(*req.AvoidLiked)
		}
		cfg = m.Config()
		return nil
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if !h.save(w, r, s) {
		return
	}
	respondOK(w, cfg)
}

// ListLikes handles GET /api/sessions/{sessionID}/likes.
func (h *Handlers) ListLikes(w http.ResponseWriter, r *http.Request) {
	c := h.registry.Catalog()
	likes := sessionFrom(r).Liked()

	out := make([]LikeResponse, 0, len(likes))
	for _, l := range likes {
		resp := LikeResponse{ItemID: l.ItemID, LikedAt: l.LikedAt}
		if it, ok := c.Item(l.ItemID); ok {
			item := newItemResponse(it, true)
			resp.Item = &item
		}
		out = append(out, resp)
	}
	respondOK(w, out)
}

// Like handles POST /api/sessions/{sessionID}/likes.
func (h *Handlers) Like(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if err := decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	added, err := h.registry.Like(r.Context(), sessionFrom(r), req.ItemID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondOK(w, map[string]any{"item_id": req.ItemID, "added": added})
}

// save persists s and writes an error response on failure.
func (h *Handlers) save(w http.ResponseWriter, r *http.Request, s *session.Session) bool {
	if err := h.registry.Save(r.Context(), s); err != nil {
		respondErr(w, r, err)
		return false
	}
	return true
}
