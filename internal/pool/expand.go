package pool

import (
	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/filters"
	"github.com/justestif/go-vibe-discovery/internal/metrics"
)

// ExpandReport describes a cross-genre expansion.
type ExpandReport struct {
	Needed     int `json:"needed"`
	Candidates int `json:"candidates"`
	Added      int `json:"added"`
}

// expand tops the playback pool up towards MinPoolSize with catalog items
// inside the radius envelope of the catalog-wide averages. Items already
// in the pool are skipped. With no candidates the pool is left as is.
func (m *Manager) expand() ExpandReport {
	report := ExpandReport{Needed: m.cfg.MinPoolSize - len(m.playback)}
	if report.Needed <= 0 {
		return report
	}

	inPool := catalog.IDs(m.playback)
	var candidates []*catalog.Item
	for _, it := range filters.InEnvelope(m.catalog.Items(), m.catalog.Averages(), 1) {
		if _, ok := inPool[it.ID]; ok {
			continue
		}
		inPool[it.ID] = struct{}{}
		candidates = append(candidates, it)
	}
	report.Candidates = len(candidates)

	if len(candidates) == 0 {
		m.log.Warn().
			Int("pool_size", len(m.playback)).
			Int("needed", report.Needed).
			Msg("no catalog items within radius of catalog averages")
		metrics.RecordExpansion(0)
		return report
	}

	added := sample(m.rng, candidates, report.Needed)
	m.playback = append(m.playback, added...)
	shuffle(m.rng, m.playback)
	report.Added = len(added)

	m.log.Info().
		Int("added", report.Added).
		Int("pool_size", len(m.playback)).
		Msg("cross-genre expansion complete")
	metrics.RecordExpansion(report.Added)
	return report
}
