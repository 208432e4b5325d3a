// Package filters implements the directional and progressive narrowing
// rules that a user's nudges are replayed through.
package filters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
)

// ErrUnknownFilter is returned when a filter name does not resolve to an ID.
var ErrUnknownFilter = errors.New("unknown filter")

// Direction is the sense of a nudge.
type Direction int

const (
	Decrease Direction = iota
	Increase
)

func (d Direction) String() string {
	if d == Increase {
		return "increase"
	}
	return "decrease"
}

// ID identifies one filter. The set is closed: two IDs per feature, the
// even one decreasing and the odd one increasing, in catalog feature order.
type ID int

const (
	DecreaseDanceability ID = iota
	IncreaseDanceability
	DecreaseEnergy
	IncreaseEnergy
	DecreaseSpeechiness
	IncreaseSpeechiness
	DecreaseValence
	IncreaseValence
	DecreaseTempo
	IncreaseTempo
	DecreaseAcousticness
	IncreaseAcousticness
	DecreaseInstrumentalness
	IncreaseInstrumentalness
	DecreaseLiveness
	IncreaseLiveness

	numIDs
)

// legacyAdjustments is the highest numeric adjustment code accepted by Parse.
const legacyAdjustments = int(IncreaseTempo)

// progressiveAliases are the user-facing names of the skewed-feature filters.
var progressiveAliases = map[string]ID{
	"include_acoustic":     IncreaseAcousticness,
	"exclude_acoustic":     DecreaseAcousticness,
	"include_instrumental": IncreaseInstrumentalness,
	"exclude_instrumental": DecreaseInstrumentalness,
	"include_live":         IncreaseLiveness,
	"exclude_live":         DecreaseLiveness,
}

// New returns the ID for a feature and direction.
func New(f catalog.Feature, d Direction) ID {
	return ID(int(f)*2 + int(d))
}

// All returns every filter ID in order.
func All() []ID {
	ids := make([]ID, numIDs)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Valid reports whether id is a member of the closed set.
func (id ID) Valid() bool {
	return id >= 0 && id < numIDs
}

// Feature returns the feature the filter narrows.
func (id ID) Feature() catalog.Feature {
	return catalog.Feature(int(id) / 2)
}

// Direction returns whether the filter raises or lowers the feature.
func (id ID) Direction() Direction {
	return Direction(int(id) % 2)
}

// Opposite returns the contradicting filter: same feature, other direction.
func (id ID) Opposite() ID {
	return id ^ 1
}

// Progressive reports whether the filter uses the absolute threshold ladder.
func (id ID) Progressive() bool {
	return !id.Feature().Primary()
}

// String returns the canonical name, e.g. "increase_energy".
func (id ID) String() string {
	if !id.Valid() {
		return "unknown_filter(" + strconv.Itoa(int(id)) + ")"
	}
	return id.Direction().String() + "_" + id.Feature().String()
}

// MarshalText encodes the canonical name.
func (id ID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFilter, int(id))
	}
	return []byte(id.String()), nil
}

// UnmarshalText accepts any name Parse accepts.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parse resolves a filter name. It accepts the canonical form
// ("decrease_valence"), the same with a "filter_" prefix, the progressive
// aliases ("include_acoustic") and the numeric adjustment codes 0-9.
func Parse(name string) (ID, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "filter_")

	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n <= legacyAdjustments {
			return ID(n), nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}

	if id, ok := progressiveAliases[s]; ok {
		return id, nil
	}

	dir, feature, ok := strings.Cut(s, "_")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	f, ok := catalog.ParseFeature(feature)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	switch dir {
	case "increase":
		return New(f, Increase), nil
	case "decrease":
		return New(f, Decrease), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}
