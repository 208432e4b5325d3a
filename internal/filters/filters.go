package filters

import (
	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/logging"
)

const (
	// Radius is the band around the pool mean for [0,1] features.
	Radius = 0.1

	// TempoRadiusFactor is the tempo band as a fraction of the pool mean.
	TempoRadiusFactor = 0.15
)

// Progressive ladders, indexed by application index.
var (
	increaseLadder = []float64{0.5, 0.75, 0.9}
	decreaseLadder = []float64{0.5, 0.25, 0.1}
)

// Params configures a single filter invocation.
type Params struct {
	// RadiusScale multiplies the nominal radius. Zero means 1.
	// A scale below 1 also relaxes progressive filters by one rung.
	RadiusScale float64

	// ApplicationIndex counts earlier applications of the same ID in the
	// queue. Only progressive filters read it.
	ApplicationIndex int
}

func (p Params) scale() float64 {
	if p.RadiusScale <= 0 {
		return 1
	}
	return p.RadiusScale
}

// Result is the outcome of one filter invocation.
type Result struct {
	Items     []*catalog.Item
	Threshold float64 // inclusive bound the items were compared against
	Warning   bool    // input was empty and returned unchanged
}

// Apply runs filter id over pool. The pool slice is never modified.
func Apply(id ID, pool []*catalog.Item, p Params) Result {
	if len(pool) == 0 {
		logging.Warn().
			Str("filter", id.String()).
			Msg("empty pool provided to filter")
		return Result{Items: pool, Warning: true}
	}

	var threshold float64
	if id.Progressive() {
		threshold = progressiveThreshold(id, p)
	} else {
		threshold = directionalThreshold(id, pool, p)
	}

	out := narrow(pool, id.Feature(), id.Direction(), threshold)

	logging.Debug().
		Str("filter", id.String()).
		Int("before", len(pool)).
		Int("after", len(out)).
		Float64("threshold", threshold).
		Msg("filter applied")

	return Result{Items: out, Threshold: threshold}
}

// RadiusFor returns the tolerance band around mean for feature f.
func RadiusFor(f catalog.Feature, mean, scale float64) float64 {
	if f == catalog.Tempo {
		return mean * TempoRadiusFactor * scale
	}
	return Radius * scale
}

// LadderThreshold returns the absolute threshold a progressive filter
// uses at the given application index. Indices past the ladder clamp to
// the last rung; negative indices clamp to the first.
func LadderThreshold(d Direction, index int) float64 {
	ladder := decreaseLadder
	if d == Increase {
		ladder = increaseLadder
	}
	index = max(0, min(index, len(ladder)-1))
	return ladder[index]
}

func directionalThreshold(id ID, pool []*catalog.Item, p Params) float64 {
	f := id.Feature()
	mean := catalog.Mean(pool, f)
	r := RadiusFor(f, mean, p.scale())
	if id.Direction() == Increase {
		return mean + r
	}
	return mean - r
}

func progressiveThreshold(id ID, p Params) float64 {
	index := p.ApplicationIndex
	if p.scale() < 1 {
		index--
	}
	return LadderThreshold(id.Direction(), index)
}

func narrow(pool []*catalog.Item, f catalog.Feature, d Direction, threshold float64) []*catalog.Item {
	out := make([]*catalog.Item, 0, len(pool)/2)
	for _, it := range pool {
		v := it.Features[f]
		if (d == Increase && v >= threshold) || (d == Decrease && v <= threshold) {
			out = append(out, it)
		}
	}
	return out
}
