// Package model contains domain types passed between pipeline stages.
package model

// Metric identifies a raw value column on an observation.
type Metric string

// Metrics carried by the tourism arrivals dataset.
const (
	MetricArrivals          Metric = "arrivals"
	MetricGrowthRate        Metric = "growth_rate"
	MetricArrivalsPerCapita Metric = "arrivals_per_capita"
	MetricDiversity         Metric = "source_market_diversity"
	MetricPeakArrivals      Metric = "peak_season_arrivals"
	MetricOffPeakArrivals   Metric = "off_season_arrivals"
)

// Period is a calendar month within a year. Month 0 means an annual value.
type Period struct {
	Year  int
	Month int
}

// Before reports whether p precedes q in calendar order.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// Observation is one immutable row of the source time series.
type Observation struct {
	EntityID string
	Period   Period
	Values   map[Metric]float64
}

// Value returns the named metric, or false if the observation does not carry it.
func (o Observation) Value(m Metric) (float64, bool) {
	v, ok := o.Values[m]
	return v, ok
}

// Entity describes the unit being scored, a country in the source data.
type Entity struct {
	ID       string
	Name     string
	Region   string
	Maturity string
}
