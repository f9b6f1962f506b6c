package composite

import (
	"sort"

	"github.com/tourstat/compass/internal/domain/model"
	"github.com/tourstat/compass/internal/domain/tier"
)

// Score computes one CompositeScore per entity. The input slice order is the
// stable tie-break order and is preserved in the output. The scheme must have
// been validated against this population.
func Score(scheme Scheme, sets []model.NormalizedSet) []model.CompositeScore {
	switch scheme.Mode {
	case ModeRank:
		return rankScore(scheme, sets)
	default:
		return weightedScore(scheme, sets)
	}
}

// weightedScore is score = sum(weight_i * directed_i) over present
// components, with the missing policy deciding how absent indicators
// are handled.
func weightedScore(scheme Scheme, sets []model.NormalizedSet) []model.CompositeScore {
	out := make([]model.CompositeScore, len(sets))
	for i, s := range sets {
		cs := model.CompositeScore{
			EntityID:   s.EntityID,
			SchemeID:   scheme.ID,
			Components: make(map[string]model.Scalar, len(scheme.Components)),
		}
		sum, weightSum := 0.0, 0.0
		missing := false
		for _, c := range scheme.Components {
			v := s.Get(c.Indicator)
			if !v.Valid {
				cs.Components[c.Indicator] = model.Null()
				missing = true
				continue
			}
			directed := v.Float64
			if c.Ascending {
				directed = 1 - directed
			}
			cs.Components[c.Indicator] = model.Some(directed)
			sum += c.Weight * directed
			weightSum += c.Weight
		}
		switch {
		case missing && scheme.Missing == MissingExclude:
			cs.Score = model.Null()
		case weightSum == 0:
			cs.Score = model.Null()
		default:
			cs.Score = model.Some(sum / weightSum)
		}
		out[i] = cs
	}
	return out
}

// rankScore ranks the population independently per indicator into equal-size
// tiles (tile 1 = best by that indicator's direction) and averages the
// weighted tiles. Lower composite means better.
func rankScore(scheme Scheme, sets []model.NormalizedSet) []model.CompositeScore {
	tiles := make(map[string]map[string]int, len(scheme.Components))
	for _, c := range scheme.Components {
		tiles[c.Indicator] = indicatorTiles(c, scheme.RankTiles, sets)
	}

	out := make([]model.CompositeScore, len(sets))
	for i, s := range sets {
		cs := model.CompositeScore{
			EntityID:   s.EntityID,
			SchemeID:   scheme.ID,
			Components: make(map[string]model.Scalar, len(scheme.Components)),
		}
		sum, weightSum := 0.0, 0.0
		missing := false
		for _, c := range scheme.Components {
			t, ok := tiles[c.Indicator][s.EntityID]
			if !ok {
				cs.Components[c.Indicator] = model.Null()
				missing = true
				continue
			}
			cs.Components[c.Indicator] = model.Some(float64(t))
			sum += c.Weight * float64(t)
			weightSum += c.Weight
		}
		switch {
		case missing && scheme.Missing == MissingExclude:
			cs.Score = model.Null()
		case weightSum == 0:
			cs.Score = model.Null()
		default:
			cs.Score = model.Some(sum / weightSum)
		}
		out[i] = cs
	}
	return out
}

// indicatorTiles orders entities with a non-null value by the component's
// better direction, ties kept in input order, and partitions them into
// equal-size tiles. Entities with null values get no tile.
func indicatorTiles(c Component, n int, sets []model.NormalizedSet) map[string]int {
	type entry struct {
		idx int
		id  string
		v   float64
	}
	entries := make([]entry, 0, len(sets))
	for i, s := range sets {
		if v := s.Get(c.Indicator); v.Valid {
			entries = append(entries, entry{idx: i, id: s.EntityID, v: v.Float64})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if c.Ascending {
			return entries[i].v < entries[j].v
		}
		return entries[i].v > entries[j].v
	})
	ordered := make([]string, len(entries))
	for i, e := range entries {
		ordered[i] = e.id
	}
	return tier.Quantiles(n, ordered)
}
