package catalog

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Item is a single catalog track. Items are never mutated after load.
type Item struct {
	ID       string
	Name     string
	Artist   string
	Album    string
	Category string // dataset genre tag, e.g. "deep-house"
	Features Features
}

// Feature returns the value of feature f.
func (it *Item) Feature(f Feature) float64 {
	return it.Features[f]
}

// Catalog is the read-only backing table. It is safe for concurrent use.
type Catalog struct {
	items    []*Item
	byID     map[string]*Item
	averages Features
}

// New builds a catalog from items. The first occurrence of an id wins
// for lookups by id; every row stays in the table.
func New(items []Item) *Catalog {
	c := &Catalog{
		items: make([]*Item, len(items)),
		byID:  make(map[string]*Item, len(items)),
	}
	for i := range items {
		it := items[i]
		c.items[i] = &it
		if _, ok := c.byID[it.ID]; !ok {
			c.byID[it.ID] = &it
		}
	}
	c.averages = Averages(c.items)
	return c
}

// Len returns the number of rows.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns every row in load order. The returned slice is a copy;
// the items themselves are shared.
func (c *Catalog) Items() []*Item {
	return slices.Clone(c.items)
}

// Item looks up an item by id.
func (c *Catalog) Item(id string) (*Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Averages returns the catalog-wide mean of every feature.
func (c *Catalog) Averages() Features {
	return c.averages
}

// ByTags returns the rows whose Category is one of tags, in load order.
func (c *Catalog) ByTags(tags []string) []*Item {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	var out []*Item
	for _, it := range c.items {
		if _, ok := set[it.Category]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Mean returns the arithmetic mean of feature f over items, or 0 when items is empty.
func Mean(items []*Item, f Feature) float64 {
	if len(items) == 0 {
		return 0
	}
	values := make([]float64, len(items))
	for i, it := range items {
		values[i] = it.Features[f]
	}
	return stat.Mean(values, nil)
}

// Averages returns the per-feature means over items.
func Averages(items []*Item) Features {
	var avg Features
	if len(items) == 0 {
		return avg
	}
	values := make([]float64, len(items))
	for _, f := range AllFeatures {
		for i, it := range items {
			values[i] = it.Features[f]
		}
		avg[f] = stat.Mean(values, nil)
	}
	return avg
}

// IDs returns the ids of items as a set.
func IDs(items []*Item) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it.ID] = struct{}{}
	}
	return set
}

// UniqueByID drops rows whose id already appeared earlier in items.
func UniqueByID(items []*Item) []*Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
