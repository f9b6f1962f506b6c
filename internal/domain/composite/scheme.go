// Package composite combines normalized indicators into weighted scores.
package composite

import (
	"fmt"
	"math"

	"github.com/tourstat/compass/internal/domain/model"
)

// Weights must sum to 1 within this tolerance.
const weightTolerance = 1e-6

// Mode selects how a scheme combines its components.
type Mode string

const (
	// ModeWeighted sums weighted normalized indicator values.
	ModeWeighted Mode = "weighted"
	// ModeRank averages weighted per-indicator rank tiles (lower is better).
	ModeRank Mode = "rank"
)

// MissingPolicy fixes how an entity lacking a required indicator is scored.
type MissingPolicy string

const (
	// MissingExclude gives the entity a null composite for the scheme.
	MissingExclude MissingPolicy = "exclude"
	// MissingRenormalize rescales the remaining weights over the present
	// indicators so they sum to 1.
	MissingRenormalize MissingPolicy = "renormalize"
)

// Component is one (indicator, weight) pair of a scheme. Ascending marks
// indicators where a lower raw value is better (volatility, risk): in
// weighted mode the contribution becomes 1 - normalized, in rank mode the
// ranking sorts ascending.
type Component struct {
	Indicator string
	Weight    float64
	Ascending bool
}

// Scheme is a named weighting of indicators producing one composite score
// per entity. Schemes over the same population do not interact.
type Scheme struct {
	ID         string
	Mode       Mode
	Components []Component
	Missing    MissingPolicy
	Order      model.SortOrder

	// RankTiles is the quantile count used to rank each indicator in
	// ModeRank. Tied entities are partitioned by equal-size tiles in
	// stable input order, not dense-ranked.
	RankTiles int
}

// Validate rejects caller mistakes: these abort the run rather than being
// absorbed as nulls.
func (s Scheme) Validate(population int, known func(string) bool) error {
	if s.ID == "" {
		return fmt.Errorf("%w: scheme missing id", ErrInvalidScheme)
	}
	if len(s.Components) == 0 {
		return fmt.Errorf("%w: scheme %q has no components", ErrInvalidScheme, s.ID)
	}
	sum := 0.0
	for _, c := range s.Components {
		if c.Indicator == "" {
			return fmt.Errorf("%w: scheme %q has a component without an indicator", ErrInvalidScheme, s.ID)
		}
		if known != nil && !known(c.Indicator) {
			return fmt.Errorf("%w: scheme %q references undeclared indicator %q", ErrInvalidScheme, s.ID, c.Indicator)
		}
		if c.Weight < 0 {
			return fmt.Errorf("%w: scheme %q has negative weight for %q", ErrInvalidScheme, s.ID, c.Indicator)
		}
		sum += c.Weight
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: scheme %q weights sum to %.6f, must sum to 1.0", ErrInvalidScheme, s.ID, sum)
	}
	switch s.Mode {
	case ModeWeighted:
	case ModeRank:
		if s.RankTiles < 1 {
			return fmt.Errorf("%w: scheme %q needs a positive rank tile count", ErrInvalidScheme, s.ID)
		}
		if s.RankTiles > population {
			return fmt.Errorf("%w: scheme %q requests %d rank tiles for %d entities", ErrInvalidScheme, s.ID, s.RankTiles, population)
		}
	default:
		return fmt.Errorf("%w: scheme %q has unknown mode %q", ErrInvalidScheme, s.ID, s.Mode)
	}
	switch s.Missing {
	case MissingExclude, MissingRenormalize:
	default:
		return fmt.Errorf("%w: scheme %q has unknown missing policy %q", ErrInvalidScheme, s.ID, s.Missing)
	}
	return nil
}
