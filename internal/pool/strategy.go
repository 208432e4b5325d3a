package pool

import (
	"fmt"
	"strings"
)

// Strategy selects how NextItem picks from the candidates.
type Strategy int

const (
	// StrategyAverageCentered prefers items near the candidates' averages.
	StrategyAverageCentered Strategy = iota

	// StrategyRandom picks uniformly among unshown candidates.
	StrategyRandom
)

func (s Strategy) String() string {
	switch s {
	case StrategyAverageCentered:
		return "average_centered"
	case StrategyRandom:
		return "random"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Description is a human-readable summary of the strategy.
func (s Strategy) Description() string {
	if s == StrategyRandom {
		return "Pure random selection from the unshown pool"
	}
	return "Average-centered selection, avoids extreme outliers"
}

// ParseStrategy resolves a strategy name. Hyphens and underscores are
// interchangeable.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_") {
	case "average_centered", "":
		return StrategyAverageCentered, nil
	case "random":
		return StrategyRandom, nil
	}
	return 0, fmt.Errorf("%w %q", ErrInvalidStrategy, name)
}

// MarshalText encodes the strategy name.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a strategy name.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
