package pool

import (
	"cmp"
	"math"
	"slices"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/filters"
	"github.com/justestif/go-vibe-discovery/internal/metrics"
)

// Tempo reference range used to normalise BPM for the distance fallback.
const (
	TempoRangeMin = 60.0
	TempoRangeMax = 200.0
)

// Pick paths, as reported to metrics.
const (
	pathEnvelope = "envelope"
	pathDecile   = "decile"
	pathRandom   = "random"
)

// NextItem serves one item from the playback pool, or from the genre pool
// when the playback pool is empty. Items already served are skipped until
// every item has been served, at which point the history is cleared.
func (m *Manager) NextItem() (*catalog.Item, error) {
	source := m.playback
	if len(source) == 0 {
		source = m.genre
	}
	if len(source) == 0 {
		m.log.Warn().Msg("next item requested from empty pool")
		return nil, ErrEmptyPool
	}

	candidates := m.unshown(source)
	reset := false
	if len(candidates) == 0 {
		m.log.Info().Int("shown", len(m.shown)).Msg("all items shown, resetting history")
		clear(m.shown)
		candidates = slices.Clone(source)
		reset = true
	}
	candidates = m.withoutLiked(candidates)

	var it *catalog.Item
	path := pathRandom
	if m.cfg.Strategy == StrategyAverageCentered {
		it, path = m.averageCentered(candidates)
	} else {
		it = pick(m.rng, candidates)
	}

	m.shown[it.ID] = struct{}{}
	metrics.RecordItemServed(m.cfg.Strategy.String(), path, reset)

	m.log.Debug().
		Str("item", it.ID).
		Str("path", path).
		Int("shown", len(m.shown)).
		Msg("item selected")
	return it, nil
}

func (m *Manager) unshown(pool []*catalog.Item) []*catalog.Item {
	out := make([]*catalog.Item, 0, len(pool))
	for _, it := range pool {
		if _, ok := m.shown[it.ID]; !ok {
			out = append(out, it)
		}
	}
	return out
}

// withoutLiked drops liked items when AvoidLiked is on, unless that would
// leave nothing.
func (m *Manager) withoutLiked(candidates []*catalog.Item) []*catalog.Item {
	if !m.cfg.AvoidLiked || m.liked == nil {
		return candidates
	}
	out := make([]*catalog.Item, 0, len(candidates))
	for _, it := range candidates {
		if !m.liked.IsLiked(it.ID) {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}

// averageCentered picks uniformly among the candidates inside the radius
// envelope of their own averages, or from the closest decile when none is.
func (m *Manager) averageCentered(candidates []*catalog.Item) (*catalog.Item, string) {
	averages := catalog.Averages(candidates)

	if near := filters.InEnvelope(candidates, averages, 1); len(near) > 0 {
		return pick(m.rng, near), pathEnvelope
	}
	return pick(m.rng, closestDecile(candidates, averages)), pathDecile
}

// closestDecile returns the max(1, n/10) candidates nearest to averages.
func closestDecile(candidates []*catalog.Item, averages catalog.Features) []*catalog.Item {
	type scored struct {
		item *catalog.Item
		dist float64
	}
	ranked := make([]scored, len(candidates))
	for i, it := range candidates {
		ranked[i] = scored{item: it, dist: Distance(it.Features, averages)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(a.dist, b.dist)
	})

	n := max(1, len(ranked)/10)
	out := make([]*catalog.Item, n)
	for i := range n {
		out[i] = ranked[i].item
	}
	return out
}

// Distance is the Euclidean distance between a and b over the primary
// features, with tempo normalised into [0,1] over the reference range.
func Distance(a, b catalog.Features) float64 {
	var sum float64
	for _, f := range catalog.PrimaryFeatures {
		x, y := a[f], b[f]
		if f == catalog.Tempo {
			x, y = normalizeTempo(x), normalizeTempo(y)
		}
		d := x - y
		sum += d * d
	}
	return math.Sqrt(sum)
}

func normalizeTempo(bpm float64) float64 {
	return (bpm - TempoRangeMin) / (TempoRangeMax - TempoRangeMin)
}
