package catalog

import (
	"slices"
	"testing"
)

func TestByTags(t *testing.T) {
	c := New([]Item{
		{ID: "1", Category: "pop"},
		{ID: "2", Category: "rock"},
		{ID: "3", Category: "edm"},
		{ID: "4", Category: "jazz"},
	})

	tags, ok := DefaultCategories().Tags("Pop & Mainstream")
	if !ok {
		t.Fatal("default category missing")
	}

	got := c.ByTags(tags)
	var ids []string
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	if !slices.Equal(ids, []string{"1", "3"}) {
		t.Errorf("ByTags() ids = %v, want [1 3]", ids)
	}
}

func TestCategories(t *testing.T) {
	cats := Categories{"b": {"x"}, "a": {"y"}, "empty": nil}

	if _, ok := cats.Tags("empty"); ok {
		t.Error("category without tags should not resolve")
	}
	if _, ok := cats.Tags("missing"); ok {
		t.Error("unknown category should not resolve")
	}
	if got := cats.Names(); !slices.Equal(got, []string{"a", "b", "empty"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestAverages(t *testing.T) {
	items := []*Item{
		{ID: "1", Features: Features{Danceability: 0.2, Tempo: 100}},
		{ID: "2", Features: Features{Danceability: 0.6, Tempo: 140}},
	}

	avg := Averages(items)
	if abs(avg[Danceability]-0.4) > 1e-9 {
		t.Errorf("danceability = %v, want 0.4", avg[Danceability])
	}
	if abs(avg[Tempo]-120) > 1e-9 {
		t.Errorf("tempo = %v, want 120", avg[Tempo])
	}
	if Mean(nil, Energy) != 0 {
		t.Error("Mean of empty input should be 0")
	}
}

func TestParseFeature(t *testing.T) {
	for _, f := range AllFeatures {
		got, ok := ParseFeature(f.String())
		if !ok || got != f {
			t.Errorf("ParseFeature(%q) = %v, %v", f.String(), got, ok)
		}
	}
	if _, ok := ParseFeature("loudness"); ok {
		t.Error("loudness is not an engine feature")
	}
	if !Tempo.Primary() || Acousticness.Primary() {
		t.Error("primary feature classification is wrong")
	}
	if Tempo.UnitScaled() || !Energy.UnitScaled() {
		t.Error("unit scale classification is wrong")
	}
}

func TestUniqueByID(t *testing.T) {
	c := New([]Item{
		{ID: "1", Name: "first", Category: "pop"},
		{ID: "2", Category: "pop"},
		{ID: "1", Name: "second", Category: "dance"},
	})

	got := UniqueByID(c.Items())
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "first" {
		t.Errorf("first occurrence should win, got %q", got[0].Name)
	}
	if it, _ := c.Item("1"); it.Name != "first" {
		t.Errorf("Item(1) = %q, want first", it.Name)
	}
}
