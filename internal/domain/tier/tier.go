// Package tier assigns quantile buckets and threshold bands from composite scores.
package tier

import (
	"fmt"
	"sort"

	"github.com/tourstat/compass/internal/domain/model"
)

// Band maps a lower score bound to a category label. Bands are evaluated
// from the highest bound downward so a boundary value selects the higher band.
type Band struct {
	Lower float64
	Label string
}

// Classifier maps composite scores to quantile buckets and/or band labels.
// Either mechanism may be absent.
type Classifier struct {
	buckets int
	bands   []Band
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithBuckets enables quantile classification into n buckets.
func WithBuckets(n int) Option {
	return func(c *Classifier) {
		c.buckets = n
	}
}

// WithBands enables threshold-band classification.
func WithBands(bands []Band) Option {
	return func(c *Classifier) {
		c.bands = make([]Band, len(bands))
		copy(c.bands, bands)
		sort.SliceStable(c.bands, func(i, j int) bool {
			return c.bands[i].Lower > c.bands[j].Lower
		})
	}
}

// New creates a Classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate rejects classifier configurations that cannot apply to a
// population of the given size.
func (c *Classifier) Validate(population int) error {
	if c.buckets < 0 {
		return fmt.Errorf("%w: negative bucket count", ErrInvalidClassifier)
	}
	if c.buckets > population {
		return fmt.Errorf("%w: %d buckets for %d entities", ErrInvalidClassifier, c.buckets, population)
	}
	return nil
}

// Quantiles partitions the ordered ids into n as-equal-as-possible groups:
// with P ids the first P mod n groups get one extra member. Ids must already
// be in rank order; ties must have been resolved by stable input order before
// calling, which makes the boundary assignment deterministic.
func Quantiles(n int, ordered []string) map[string]int {
	out := make(map[string]int, len(ordered))
	if n <= 0 || len(ordered) == 0 {
		return out
	}
	p := len(ordered)
	base := p / n
	extra := p % n
	idx := 0
	for bucket := 1; bucket <= n; bucket++ {
		size := base
		if bucket <= extra {
			size++
		}
		for i := 0; i < size && idx < p; i++ {
			out[ordered[idx]] = bucket
			idx++
		}
	}
	return out
}

// Band returns the label for a raw composite score, or "" when no band matches.
func (c *Classifier) Band(score float64) string {
	for _, b := range c.bands {
		if score >= b.Lower {
			return b.Label
		}
	}
	return ""
}

// Classify assigns each scored entity a quantile bucket and band label.
// Entities with null composites are left unclassified (bucket 0, empty label)
// and do not consume a quantile slot. Order of the input slice is the stable
// tie-break order.
func (c *Classifier) Classify(scores []model.CompositeScore, order model.SortOrder) []model.Tier {
	type scored struct {
		idx int
		cs  model.CompositeScore
	}
	ranked := make([]scored, 0, len(scores))
	for i, cs := range scores {
		if cs.Score.Valid {
			ranked = append(ranked, scored{idx: i, cs: cs})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].cs.Score.Float64, ranked[j].cs.Score.Float64
		if order == model.Ascending {
			return a < b
		}
		return a > b
	})

	ordered := make([]string, len(ranked))
	for i, r := range ranked {
		ordered[i] = r.cs.EntityID
	}
	buckets := Quantiles(c.buckets, ordered)

	out := make([]model.Tier, len(scores))
	for i, cs := range scores {
		t := model.Tier{EntityID: cs.EntityID, SchemeID: cs.SchemeID}
		if cs.Score.Valid {
			t.Bucket = buckets[cs.EntityID]
			t.Label = c.Band(cs.Score.Float64)
		}
		out[i] = t
	}
	return out
}
