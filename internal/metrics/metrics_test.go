package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFilterApplied(t *testing.T) {
	before := testutil.ToFloat64(FiltersApplied.WithLabelValues("increase_energy"))
	contradictions := testutil.ToFloat64(FilterContradictions)

	RecordFilterApplied("increase_energy", false)
	RecordFilterApplied("increase_energy", true)

	if got := testutil.ToFloat64(FiltersApplied.WithLabelValues("increase_energy")); got != before+2 {
		t.Errorf("filters applied = %v, want %v", got, before+2)
	}
	if got := testutil.ToFloat64(FilterContradictions); got != contradictions+1 {
		t.Errorf("contradictions = %v, want %v", got, contradictions+1)
	}
}

func TestRecordExpansion(t *testing.T) {
	tests := []struct {
		name    string
		added   int
		outcome string
	}{
		{"items added", 10, "expanded"},
		{"no candidates", 0, "no_candidates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(Expansions.WithLabelValues(tt.outcome))
			RecordExpansion(tt.added)
			if got := testutil.ToFloat64(Expansions.WithLabelValues(tt.outcome)); got != before+1 {
				t.Errorf("%s = %v, want %v", tt.outcome, got, before+1)
			}
		})
	}
}

func TestRecordItemServed(t *testing.T) {
	resets := testutil.ToFloat64(ShownResets)
	before := testutil.ToFloat64(ItemsServed.WithLabelValues("average_centered", "decile"))

	RecordItemServed("average_centered", "decile", true)

	if got := testutil.ToFloat64(ItemsServed.WithLabelValues("average_centered", "decile")); got != before+1 {
		t.Errorf("items served = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(ShownResets); got != resets+1 {
		t.Errorf("resets = %v, want %v", got, resets+1)
	}
}

func TestSetActiveSessions(t *testing.T) {
	SetActiveSessions(7)
	if got := testutil.ToFloat64(ActiveSessions); got != 7 {
		t.Errorf("active sessions = %v, want 7", got)
	}
	SetActiveSessions(0)
}

func TestRecordRebuildAndRequest(t *testing.T) {
	// Should not panic
	RecordRebuild(2*time.Millisecond, 120)
	RecordRelaxation("decrease_tempo")
	RecordFallback()
	RecordStoreError("save")
	RecordAPIRequest("GET", "/api/sessions/{id}/next", 200, 3*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/sessions/{id}/next", "200")); got < 1 {
		t.Errorf("api requests = %v, want >= 1", got)
	}
}

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric %s: %s", p.Metric, p.Text)
	}
}
