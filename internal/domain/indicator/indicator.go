// Package indicator reduces one entity's observations into scalar indicators.
package indicator

import (
	"fmt"
	"math"
	"sort"

	"github.com/tourstat/compass/internal/domain/model"
)

// Kind selects the reduction applied to a metric's period values.
type Kind string

const (
	KindMean           Kind = "mean"
	KindStdDev         Kind = "stddev"
	KindCV             Kind = "cv"
	KindMin            Kind = "min"
	KindMax            Kind = "max"
	KindMinMaxRatio    Kind = "minmax_ratio"
	KindCompoundGrowth Kind = "compound_growth"
	KindConcentration  Kind = "concentration"
	KindMeanReturn     Kind = "mean_return"
	KindPositiveShare  Kind = "positive_share"
)

// Formula declares one indicator: a named reduction of a metric.
type Formula struct {
	// Name is the indicator name in the resulting set. Must be unique per report.
	Name string

	// Metric selects the observation column being reduced.
	Metric model.Metric

	// Kind selects the reduction.
	Kind Kind

	// MinPeriods nulls the indicator when the entity has fewer usable
	// periods. Zero means no minimum.
	MinPeriods int

	// Cap clips each contributing period value (or period return) to
	// [-Cap, +Cap] before averaging, so a single outlier period cannot
	// dominate a composite. Zero means no cap.
	Cap float64

	// Sample selects the sample standard deviation (n-1 denominator).
	// Only meaningful for KindStdDev and KindCV.
	Sample bool
}

// Validate checks a formula list for caller mistakes.
func Validate(formulas []Formula) error {
	if len(formulas) == 0 {
		return fmt.Errorf("%w: no formulas declared", ErrInvalidFormula)
	}
	seen := make(map[string]struct{}, len(formulas))
	for _, f := range formulas {
		if f.Name == "" {
			return fmt.Errorf("%w: formula missing name", ErrInvalidFormula)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate indicator %q", ErrInvalidFormula, f.Name)
		}
		seen[f.Name] = struct{}{}
		switch f.Kind {
		case KindMean, KindStdDev, KindCV, KindMin, KindMax, KindMinMaxRatio,
			KindCompoundGrowth, KindConcentration, KindMeanReturn, KindPositiveShare:
		default:
			return fmt.Errorf("%w: unknown kind %q for indicator %q", ErrInvalidFormula, f.Kind, f.Name)
		}
		if f.MinPeriods < 0 {
			return fmt.Errorf("%w: negative min periods for indicator %q", ErrInvalidFormula, f.Name)
		}
		if f.Cap < 0 {
			return fmt.Errorf("%w: negative cap for indicator %q", ErrInvalidFormula, f.Name)
		}
	}
	return nil
}

// Aggregator turns an entity's observations into an IndicatorSet.
type Aggregator struct {
	formulas []Formula
	minObs   int
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithMinObservations drops an entity entirely when its observation count is
// below n. The dropped entity does not appear in the indicator population.
func WithMinObservations(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.minObs = n
		}
	}
}

// New creates an Aggregator for the given formulas.
func New(formulas []Formula, opts ...Option) *Aggregator {
	a := &Aggregator{formulas: formulas}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate reduces one entity's observations. The second return value is
// false when the entity has fewer observations than the report minimum and
// must be excluded from the population.
func (a *Aggregator) Aggregate(entityID string, obs []model.Observation) (model.IndicatorSet, bool) {
	if len(obs) < a.minObs {
		return model.IndicatorSet{}, false
	}

	// Period order matters for growth and lag reductions. Sorting a copy
	// keeps results independent of source enumeration order.
	ordered := make([]model.Observation, len(obs))
	copy(ordered, obs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Period.Before(ordered[j].Period)
	})

	set := model.IndicatorSet{
		EntityID: entityID,
		Values:   make(map[string]model.Scalar, len(a.formulas)),
	}
	for _, f := range a.formulas {
		set.Values[f.Name] = reduce(f, ordered)
	}
	return set, true
}

// reduce computes a single indicator. Undefined arithmetic yields null,
// never an error.
func reduce(f Formula, ordered []model.Observation) model.Scalar {
	vals := make([]float64, 0, len(ordered))
	for _, o := range ordered {
		if v, ok := o.Value(f.Metric); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) < f.MinPeriods {
		return model.Null()
	}
	if len(vals) == 0 {
		return model.Null()
	}

	var s model.Scalar
	switch f.Kind {
	case KindMean:
		s = model.Some(mean(clip(vals, f.Cap)))
	case KindStdDev:
		s = stddev(vals, f.Sample)
	case KindCV:
		s = coefficientOfVariation(vals, f.Sample)
	case KindMin:
		s = model.Some(minOf(vals))
	case KindMax:
		s = model.Some(maxOf(vals))
	case KindMinMaxRatio:
		s = minMaxRatio(vals)
	case KindCompoundGrowth:
		s = compoundGrowth(vals)
	case KindConcentration:
		s = concentration(vals)
	case KindMeanReturn:
		s = meanReturn(vals, f.Cap)
	case KindPositiveShare:
		s = positiveShare(vals)
	default:
		return model.Null()
	}
	return finite(s)
}

// finite nulls NaN and infinite results so they cannot leak downstream.
func finite(s model.Scalar) model.Scalar {
	if !s.Valid || math.IsNaN(s.Float64) || math.IsInf(s.Float64, 0) {
		if !s.Valid {
			return s
		}
		return model.Null()
	}
	return s
}

func clip(vals []float64, cap float64) []float64 {
	if cap == 0 {
		return vals
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Max(-cap, math.Min(cap, v))
	}
	return out
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddev returns 0 for a single observation in population mode; sample mode
// needs at least two points and yields null otherwise.
func stddev(vals []float64, sample bool) model.Scalar {
	n := len(vals)
	if sample && n < 2 {
		return model.Null()
	}
	if n == 1 {
		return model.Some(0)
	}
	m := mean(vals)
	ss := 0.0
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	denom := float64(n)
	if sample {
		denom = float64(n - 1)
	}
	return model.Some(math.Sqrt(ss / denom))
}

func coefficientOfVariation(vals []float64, sample bool) model.Scalar {
	m := mean(vals)
	if m == 0 {
		return model.Null()
	}
	sd := stddev(vals, sample)
	if !sd.Valid {
		return model.Null()
	}
	return model.Some(sd.Float64 / m)
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minMaxRatio(vals []float64) model.Scalar {
	lo, hi := minOf(vals), maxOf(vals)
	if lo == 0 {
		return model.Null()
	}
	return model.Some(hi / lo)
}

// compoundGrowth is (last/first)^(1/(n-1)) - 1 over the ordered periods.
func compoundGrowth(vals []float64) model.Scalar {
	n := len(vals)
	if n < 2 {
		return model.Null()
	}
	first, last := vals[0], vals[n-1]
	if first <= 0 || last < 0 {
		return model.Null()
	}
	return model.Some(math.Pow(last/first, 1/float64(n-1)) - 1)
}

// concentration is the Herfindahl-style sum of squared period shares.
func concentration(vals []float64) model.Scalar {
	total := 0.0
	for _, v := range vals {
		total += v
	}
	if total == 0 {
		return model.Null()
	}
	sum := 0.0
	for _, v := range vals {
		share := v / total
		sum += share * share
	}
	return model.Some(sum)
}

// returns computes lag-1 period-over-period returns, skipping periods whose
// predecessor is zero.
func returns(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for i := 1; i < len(vals); i++ {
		prev := vals[i-1]
		if prev == 0 {
			continue
		}
		out = append(out, (vals[i]-prev)/prev)
	}
	return out
}

func meanReturn(vals []float64, cap float64) model.Scalar {
	r := returns(vals)
	if len(r) == 0 {
		return model.Null()
	}
	return model.Some(mean(clip(r, cap)))
}

func positiveShare(vals []float64) model.Scalar {
	r := returns(vals)
	if len(r) == 0 {
		return model.Null()
	}
	pos := 0
	for _, v := range r {
		if v > 0 {
			pos++
		}
	}
	return model.Some(float64(pos) / float64(len(r)))
}
