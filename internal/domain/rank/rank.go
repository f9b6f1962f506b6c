// Package rank orders scored entities and assembles the final report rows.
package rank

import (
	"sort"

	"github.com/tourstat/compass/internal/domain/model"
)

// Rank stable-sorts entities by composite score in the scheme's direction and
// emits one row per entity with its rank, tier, and the contributing raw and
// normalized indicators for audit. Entities with null composites keep rank 0
// and sort after every scored entity, preserving their enumeration order.
func Rank(
	scores []model.CompositeScore,
	tiers []model.Tier,
	raw []model.IndicatorSet,
	norm []model.NormalizedSet,
	order model.SortOrder,
) []model.Row {
	tierByID := make(map[string]model.Tier, len(tiers))
	for _, t := range tiers {
		tierByID[t.EntityID] = t
	}
	rawByID := make(map[string]model.IndicatorSet, len(raw))
	for _, s := range raw {
		rawByID[s.EntityID] = s
	}
	normByID := make(map[string]model.NormalizedSet, len(norm))
	for _, s := range norm {
		normByID[s.EntityID] = s
	}

	rows := make([]model.Row, len(scores))
	for i, cs := range scores {
		t := tierByID[cs.EntityID]
		rows[i] = model.Row{
			EntityID:   cs.EntityID,
			Score:      cs.Score,
			Bucket:     t.Bucket,
			Label:      t.Label,
			Indicators: rawByID[cs.EntityID].Values,
			Normalized: normByID[cs.EntityID].Values,
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Score, rows[j].Score
		switch {
		case a.Valid && !b.Valid:
			return true
		case !a.Valid:
			return false
		case order == model.Ascending:
			return a.Float64 < b.Float64
		default:
			return a.Float64 > b.Float64
		}
	})

	pos := 0
	for i := range rows {
		if rows[i].Score.Valid {
			pos++
			rows[i].Rank = pos
		}
	}
	return rows
}
