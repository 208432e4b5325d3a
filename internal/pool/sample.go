package pool

import (
	"math/rand/v2"
	"slices"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
)

// sample draws n items from items without replacement. items is not modified.
func sample(r *rand.Rand, items []*catalog.Item, n int) []*catalog.Item {
	n = min(n, len(items))
	if n <= 0 {
		return nil
	}
	buf := slices.Clone(items)
	for i := range n {
		j := i + r.IntN(len(buf)-i)
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf[:n:n]
}

// pick returns one uniformly chosen item, or nil when items is empty.
func pick(r *rand.Rand, items []*catalog.Item) *catalog.Item {
	if len(items) == 0 {
		return nil
	}
	return items[r.IntN(len(items))]
}

func shuffle(r *rand.Rand, items []*catalog.Item) {
	r.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
