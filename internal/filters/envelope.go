package filters

import "github.com/justestif/go-vibe-discovery/internal/catalog"

// WithinEnvelope reports whether it lies inside the radius band around
// averages on every primary feature.
func WithinEnvelope(it *catalog.Item, averages catalog.Features, scale float64) bool {
	for _, f := range catalog.PrimaryFeatures {
		avg := averages[f]
		r := RadiusFor(f, avg, scale)
		v := it.Features[f]
		if v < avg-r || v > avg+r {
			return false
		}
	}
	return true
}

// InEnvelope returns the items of pool inside the band around averages.
func InEnvelope(pool []*catalog.Item, averages catalog.Features, scale float64) []*catalog.Item {
	var out []*catalog.Item
	for _, it := range pool {
		if WithinEnvelope(it, averages, scale) {
			out = append(out, it)
		}
	}
	return out
}
