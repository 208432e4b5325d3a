package pool

import (
	"math"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
)

// MixReport describes one fresh injection blend.
type MixReport struct {
	Ratio float64 `json:"ratio"`
	Old   int     `json:"old"`
	New   int     `json:"new"`
}

// mix blends a filter step's result with the pool that existed before the
// step. The target size is len(filtered); round(ratio*target) items come
// from old items not already in filtered and the rest from filtered. A
// shortfall of old items is made up from filtered. The ratio is read from
// the current configuration on every call.
func (m *Manager) mix(old, filtered []*catalog.Item) ([]*catalog.Item, MixReport) {
	ratio := m.cfg.FreshInjectionRatio
	target := len(filtered)

	inFiltered := catalog.IDs(filtered)
	supply := make([]*catalog.Item, 0, len(old))
	for _, it := range old {
		if _, ok := inFiltered[it.ID]; !ok {
			supply = append(supply, it)
		}
	}

	oldCount := min(int(math.Round(ratio*float64(target))), len(supply))
	newCount := target - oldCount

	mixed := make([]*catalog.Item, 0, target)
	mixed = append(mixed, sample(m.rng, supply, oldCount)...)
	mixed = append(mixed, sample(m.rng, filtered, newCount)...)
	shuffle(m.rng, mixed)

	m.log.Debug().
		Float64("ratio", ratio).
		Int("old", oldCount).
		Int("new", newCount).
		Msg("pool mixed")

	return mixed, MixReport{Ratio: ratio, Old: oldCount, New: newCount}
}
