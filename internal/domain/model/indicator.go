package model

// IndicatorSet holds the per-entity scalar indicators produced by the
// aggregation stage. Indicator names map to nullable values.
type IndicatorSet struct {
	EntityID string
	Values   map[string]Scalar
}

// Get returns the named indicator, null if absent.
func (s IndicatorSet) Get(name string) Scalar {
	return s.Values[name]
}

// NormalizedSet has the same shape as IndicatorSet, each value rescaled to
// [0,1] across the population, or null.
type NormalizedSet struct {
	EntityID string
	Values   map[string]Scalar
}

// Get returns the named normalized indicator, null if absent.
func (s NormalizedSet) Get(name string) Scalar {
	return s.Values[name]
}

// SortOrder declares which direction of a composite score is "better".
type SortOrder int

const (
	// Descending means higher scores rank first (opportunity-style schemes).
	Descending SortOrder = iota
	// Ascending means lower scores rank first (risk-style schemes).
	Ascending
)

// CompositeScore is one entity's weighted score under a named scheme.
type CompositeScore struct {
	EntityID   string
	SchemeID   string
	Score      Scalar
	Components map[string]Scalar
}

// Tier is a quantile bucket and/or threshold band assigned from a
// composite score. Bucket 0 with an empty label means unclassified
// (null composite).
type Tier struct {
	EntityID string
	SchemeID string
	Bucket   int
	Label    string
}

// Row is one entity's final report line under a scheme.
type Row struct {
	EntityID   string
	Rank       int // 0 when the composite is null
	Score      Scalar
	Bucket     int
	Label      string
	Indicators map[string]Scalar
	Normalized map[string]Scalar
}
