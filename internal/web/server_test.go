package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/logging"
	"github.com/justestif/go-vibe-discovery/internal/pool"
	"github.com/justestif/go-vibe-discovery/internal/session"
)

func TestMain(m *testing.M) {
	logging.SetLogger(zerolog.Nop())
	os.Exit(m.Run())
}

var testCategories = catalog.Categories{
	"Test":  {"test"},
	"Ghost": {"nothing-tagged-this"},
}

func testCatalog() *catalog.Catalog {
	items := make([]catalog.Item, 60)
	for i := range items {
		var f catalog.Features
		f[catalog.Danceability] = float64(i) / 60
		f[catalog.Energy] = 0.7
		f[catalog.Valence] = 0.6
		f[catalog.Tempo] = 120
		items[i] = catalog.Item{
			ID:       fmt.Sprintf("t-%d", i),
			Name:     fmt.Sprintf("Track %d", i),
			Artist:   "Artist",
			Category: "test",
			Features: f,
		}
	}
	return catalog.New(items)
}

func newTestServer(t *testing.T, cfg ServerConfig) (*Server, *session.Registry) {
	t.Helper()
	registry := session.NewRegistry(testCatalog(), session.NewMemoryStore(),
		session.WithCategories(testCategories),
		session.WithSeed(7),
	)
	return NewServer(cfg, registry), registry
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, testResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decoding %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, resp
}

func decode[T any](t *testing.T, resp testResponse) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		t.Fatalf("decoding data %s: %v", resp.Data, err)
	}
	return v
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	code, resp := do(t, h, http.MethodPost, "/api/sessions", map[string]string{"name": "test"})
	if code != http.StatusCreated {
		t.Fatalf("create session status = %d, body = %+v", code, resp)
	}
	return decode[session.Info](t, resp).ID
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, ServerConfig{})
	code, resp := do(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	if code != http.StatusOK || !resp.Success {
		t.Errorf("healthz = %d %+v", code, resp)
	}

	failing, _ := newTestServer(t, ServerConfig{
		HealthCheck: func(context.Context) error { return errors.New("db down") },
	})
	code, resp = do(t, failing.Handler(), http.MethodGet, "/healthz", nil)
	if code != http.StatusServiceUnavailable || resp.Success {
		t.Errorf("failing healthz = %d %+v", code, resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, ServerConfig{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d", rec.Code)
	}
}

func TestListCategoriesAndFilters(t *testing.T) {
	srv, _ := newTestServer(t, ServerConfig{})
	h := srv.Handler()

	_, resp := do(t, h, http.MethodGet, "/api/categories", nil)
	cats := decode[[]CategoryResponse](t, resp)
	sizes := map[string]int{}
	for _, c := range cats {
		sizes[c.Name] = c.Size
	}
	if sizes["Test"] != 60 || sizes["Ghost"] != 0 || len(cats) != 2 {
		t.Errorf("categories = %+v", cats)
	}

	_, resp = do(t, h, http.MethodGet, "/api/filters", nil)
	fs := decode[[]FilterResponse](t, resp)
	if len(fs) != 16 {
		t.Fatalf("filters = %d, want 16", len(fs))
	}
	if fs[1].Name != "increase_danceability" || fs[1].Progressive {
		t.Errorf("filter 1 = %+v", fs[1])
	}

	_, resp = do(t, h, http.MethodGet, "/api/strategies", nil)
	if got := decode[[]StrategyResponse](t, resp); len(got) != 2 {
		t.Errorf("strategies = %+v", got)
	}
}

func TestGetItem(t *testing.T) {
	srv, _ := newTestServer(t, ServerConfig{})
	h := srv.Handler()

	code, resp := do(t, h, http.MethodGet, "/api/items/t-3", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if it := decode[ItemResponse](t, resp); it.Name != "Track 3" || it.Features["energy"] != 0.7 {
		t.Errorf("item = %+v", it)
	}

	code, resp = do(t, h, http.MethodGet, "/api/items/missing", nil)
	if code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != CodeNotFound {
		t.Errorf("missing item = %d %+v", code, resp.Error)
	}
}

func TestSessionFlow(t *testing.T) {
	srv, registry := newTestServer(t, ServerConfig{})
	h := srv.Handler()
	id := createSession(t, h)
	base := "/api/sessions/" + id

	code, resp := do(t, h, http.MethodPost, base+"/genre", map[string]string{"category": "Test"})
	if code != http.StatusOK {
		t.Fatalf("set genre = %d %+v", code, resp.Error)
	}
	if stats := decode[pool.PoolStats](t, resp); stats.GenreSize != 60 || stats.Category != "Test" {
		t.Errorf("stats = %+v", stats)
	}

	code, resp = do(t, h, http.MethodPost, base+"/filters", map[string]string{"filter": "increase_danceability"})
	if code != http.StatusOK {
		t.Fatalf("apply filter = %d %+v", code, resp.Error)
	}
	result := decode[pool.ApplyResult](t, resp)
	if result.Cancelled || result.QueueLength != 1 || result.Message != "Filter applied: increase_danceability" {
		t.Errorf("apply result = %+v", result)
	}

	_, resp = do(t, h, http.MethodGet, base+"/filters", nil)
	if q := decode[[]QueueEntryResponse](t, resp); len(q) != 1 || q[0].Filter.ID != 1 {
		t.Errorf("queue = %+v", q)
	}

	code, resp = do(t, h, http.MethodPost, base+"/filters", map[string]string{"filter": "decrease_danceability"})
	if code != http.StatusOK {
		t.Fatalf("cancel filter = %d", code)
	}
	if result := decode[pool.ApplyResult](t, resp); !result.Cancelled || result.QueueLength != 0 {
		t.Errorf("cancel result = %+v", result)
	}

	code, resp = do(t, h, http.MethodGet, base+"/next", nil)
	if code != http.StatusOK {
		t.Fatalf("next = %d %+v", code, resp.Error)
	}
	item := decode[ItemResponse](t, resp)

	code, resp = do(t, h, http.MethodPost, base+"/likes", map[string]string{"item_id": item.ID})
	if code != http.StatusOK {
		t.Fatalf("like = %d %+v", code, resp.Error)
	}
	_, resp = do(t, h, http.MethodGet, base+"/likes", nil)
	if likes := decode[[]LikeResponse](t, resp); len(likes) != 1 || likes[0].Item == nil || likes[0].Item.ID != item.ID {
		t.Errorf("likes = %+v", likes)
	}

	_, resp = do(t, h, http.MethodGet, base+"/stats", nil)
	if stats := decode[pool.PoolStats](t, resp); stats.ItemsShown != 1 {
		t.Errorf("items shown = %d, want 1", stats.ItemsShown)
	}

	_, resp = do(t, h, http.MethodPost, base+"/shown/clear", nil)
	if stats := decode[pool.PoolStats](t, resp); stats.ItemsShown != 0 {
		t.Errorf("items shown after clear = %d", stats.ItemsShown)
	}

	_, resp = do(t, h, http.MethodGet, base+"/moods?k=2", nil)
	moods := decode[MoodsResponse](t, resp)
	total := len(moods.Outliers)
	for _, m := range moods.Moods {
		total += m.Size
	}
	if total != 60 {
		t.Errorf("moods cover %d items, want 60", total)
	}

	_, resp = do(t, h, http.MethodPost, base+"/clear", nil)
	if stats := decode[pool.PoolStats](t, resp); stats.PlaybackSize != 60 || stats.FiltersApplied != 0 {
		t.Errorf("stats after clear = %+v", stats)
	}

	// The state was saved: the store sees the category.
	_, resp = do(t, h, http.MethodGet, "/api/sessions", nil)
	if infos := decode[[]session.Info](t, resp); len(infos) != 1 || infos[0].Category != "Test" {
		t.Errorf("sessions = %+v", infos)
	}

	code, _ = do(t, h, http.MethodDelete, base, nil)
	if code != http.StatusOK {
		t.Fatalf("delete = %d", code)
	}
	code, _ = do(t, h, http.MethodGet, base, nil)
	if code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", code)
	}
	if registry.Len() != 0 {
		t.Errorf("live sessions = %d", registry.Len())
	}
}

func TestUpdateConfig(t *testing.T) {
	srv, _ := newTestServer(t, ServerConfig{})
	h := srv.Handler()
	base := "/api/sessions/" + createSession(t, h)

	code, resp := do(t, h, http.MethodPut, base+"/config", map[string]any{
		"fresh_injection_ratio": 0.6,
		"strategy":              "random",
	})
	if code != http.StatusOK {
		t.Fatalf("update config = %d %+v", code, resp.Error)
	}
	cfg := decode[pool.Config](t, resp)
	if cfg.FreshInjectionRatio != 0.6 || cfg.Strategy != pool.StrategyRandom || cfg.AvoidLiked {
		t.Errorf("config = %+v", cfg)
	}

	// Omitted fields are untouched.
	_, resp = do(t, h, http.MethodPut, base+"/config", map[string]any{"avoid_liked": true})
	cfg = decode[pool.Config](t, resp)
	if cfg.FreshInjectionRatio != 0.6 || !cfg.AvoidLiked {
		t.Errorf("config after partial update = %+v", cfg)
	}

	_, resp = do(t, h, http.MethodGet, base+"/config", nil)
	if got := decode[pool.Config](t, resp); got != cfg {
		t.Errorf("GET config = %+v, want %+v", got, cfg)
	}
}

func TestErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t, ServerConfig{})
	h := srv.Handler()
	base := "/api/sessions/" + createSession(t, h)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"filter before genre", http.MethodPost, base + "/filters", map[string]string{"filter": "increase_energy"}, http.StatusConflict, CodeNoGenrePool},
		{"next before genre", http.MethodGet, base + "/next", nil, http.StatusNotFound, CodeEmptyPool},
		{"moods before genre", http.MethodGet, base + "/moods", nil, http.StatusConflict, CodeNoGenrePool},
		{"unknown category", http.MethodPost, base + "/genre", map[string]string{"category": "Polka"}, http.StatusBadRequest, CodeInvalidCategory},
		{"empty category", http.MethodPost, base + "/genre", map[string]string{"category": "Ghost"}, http.StatusNotFound, CodeEmptyPool},
		{"missing category", http.MethodPost, base + "/genre", map[string]string{}, http.StatusBadRequest, CodeValidation},
		{"ratio out of range", http.MethodPut, base + "/config", map[string]any{"fresh_injection_ratio": 1.5}, http.StatusBadRequest, CodeValidation},
		{"unknown strategy", http.MethodPut, base + "/config", map[string]any{"strategy": "greedy"}, http.StatusBadRequest, CodeInvalidStrategy},
		{"bad k", http.MethodGet, base + "/moods?k=0", nil, http.StatusBadRequest, CodeValidation},
		{"invalid json", http.MethodPost, base + "/genre", "{", http.StatusBadRequest, CodeBadRequest},
		{"unknown field", http.MethodPost, base + "/genre", map[string]string{"genre": "Test"}, http.StatusBadRequest, CodeBadRequest},
		{"like unknown item", http.MethodPost, base + "/likes", map[string]string{"item_id": "nope"}, http.StatusNotFound, CodeNotFound},
		{"unknown session", http.MethodGet, "/api/sessions/nope", nil, http.StatusNotFound, CodeNotFound},
		{"unknown route", http.MethodGet, "/api/nothing", nil, http.StatusNotFound, CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := do(t, h, tt.method, tt.path, tt.body)
			if code != tt.wantStatus {
				t.Errorf("status = %d, want %d", code, tt.wantStatus)
			}
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}

	// A bad filter name after the genre pool is set.
	do(t, h, http.MethodPost, base+"/genre", map[string]string{"category": "Test"})
	code, resp := do(t, h, http.MethodPost, base+"/filters", map[string]string{"filter": "increase_loudness"})
	if code != http.StatusBadRequest || resp.Error.Code != CodeInvalidFilter {
		t.Errorf("bad filter = %d %+v", code, resp.Error)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("setting strategy: %w", pool.ErrInvalidStrategy), http.StatusBadRequest, CodeInvalidStrategy},
		{fmt.Errorf("%w: 2", pool.ErrInvalidRatio), http.StatusBadRequest, CodeInvalidRatio},
		{pool.ErrNoGenrePool, http.StatusConflict, CodeNoGenrePool},
		{pool.ErrInvalidFilter, http.StatusBadRequest, CodeInvalidFilter},
		{session.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, code := classify(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("classify(%v) = %d %s, want %d %s", tt.err, status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, ServerConfig{RateLimit: 2})
	h := srv.Handler()

	for i := range 2 {
		if code, _ := do(t, h, http.MethodGet, "/api/filters", nil); code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, code)
		}
	}
	code, resp := do(t, h, http.MethodGet, "/api/filters", nil)
	if code != http.StatusTooManyRequests || resp.Error == nil {
		t.Errorf("third request = %d %+v", code, resp.Error)
	}

	// Health checks are outside the limited group.
	if code, _ := do(t, h, http.MethodGet, "/healthz", nil); code != http.StatusOK {
		t.Errorf("healthz under limit = %d", code)
	}
}
