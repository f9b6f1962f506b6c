// Package normalize rescales indicators to [0,1] across the population.
package normalize

import "github.com/tourstat/compass/internal/domain/model"

// Stats records the population extremes observed for one indicator.
type Stats struct {
	Min        float64
	Max        float64
	Count      int
	Degenerate bool // max == min across all non-null values
}

// Result carries the normalized sets and the per-indicator population stats.
type Result struct {
	Sets  []model.NormalizedSet
	Stats map[string]Stats
}

// Normalize applies population min-max scaling per indicator. It requires the
// complete population: a partial one would silently skew the scale, so callers
// must not invoke it before every entity's aggregation has finished.
//
// Null raw values stay null. When max == min the indicator carries no signal
// and every entity's normalized value is null rather than a false 0 or 1.
func Normalize(sets []model.IndicatorSet) Result {
	stats := make(map[string]Stats)
	for _, s := range sets {
		for name, v := range s.Values {
			if !v.Valid {
				continue
			}
			st, seen := stats[name]
			if !seen {
				st = Stats{Min: v.Float64, Max: v.Float64}
			} else {
				if v.Float64 < st.Min {
					st.Min = v.Float64
				}
				if v.Float64 > st.Max {
					st.Max = v.Float64
				}
			}
			st.Count++
			stats[name] = st
		}
	}
	for name, st := range stats {
		st.Degenerate = st.Max == st.Min
		stats[name] = st
	}

	out := make([]model.NormalizedSet, len(sets))
	for i, s := range sets {
		n := model.NormalizedSet{
			EntityID: s.EntityID,
			Values:   make(map[string]model.Scalar, len(s.Values)),
		}
		for name, v := range s.Values {
			st := stats[name]
			if !v.Valid || st.Degenerate {
				n.Values[name] = model.Null()
				continue
			}
			n.Values[name] = model.Some((v.Float64 - st.Min) / (st.Max - st.Min))
		}
		out[i] = n
	}
	return Result{Sets: out, Stats: stats}
}
