// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars on top.
// - External errors must be wrapped via this package's error kinds.
package config

// Config contains process configuration: where the data comes from, how the
// run is parallelized, and the report definitions to execute.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// DataFile is the arrivals CSV to ingest.
	DataFile string `koanf:"data_file"`

	// WorkerCount sets the number of aggregation workers. Zero means one
	// per CPU.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// ServeAddr, when set, serves run results and metrics over HTTP after
	// the batch completes, e.g. ":8080". Empty disables serving.
	ServeAddr string `koanf:"serve_addr"`

	// Reports are the report definitions to run.
	Reports []Report `koanf:"reports"`
}

// Report declares one report: indicator formulas, schemes, and tiering.
type Report struct {
	ID string `koanf:"id"`

	// MinObservations drops entities with fewer observations from the
	// whole report.
	MinObservations int `koanf:"min_observations"`

	Indicators []Indicator `koanf:"indicators"`
	Schemes    []Scheme    `koanf:"schemes"`

	// SimilarityTopK, when positive, emits the K nearest peers per entity.
	SimilarityTopK int `koanf:"similarity_top_k"`
}

// Indicator declares one aggregation formula.
type Indicator struct {
	Name       string  `koanf:"name"`
	Metric     string  `koanf:"metric"`
	Kind       string  `koanf:"kind"`
	MinPeriods int     `koanf:"min_periods"`
	Cap        float64 `koanf:"cap"`
	Sample     bool    `koanf:"sample"`
}

// Scheme declares one weighting scheme with its tier mechanism.
type Scheme struct {
	ID         string      `koanf:"id"`
	Mode       string      `koanf:"mode"`      // weighted | rank
	Missing    string      `koanf:"missing"`   // exclude | renormalize
	Direction  string      `koanf:"direction"` // desc | asc
	RankTiles  int         `koanf:"rank_tiles"`
	Buckets    int         `koanf:"buckets"`
	Bands      []Band      `koanf:"bands"`
	Components []Component `koanf:"components"`
}

// Component is one (indicator, weight) pair. Ascending marks lower-is-better
// indicators.
type Component struct {
	Indicator string  `koanf:"indicator"`
	Weight    float64 `koanf:"weight"`
	Ascending bool    `koanf:"ascending"`
}

// Band maps a lower composite-score bound to a label.
type Band struct {
	Lower float64 `koanf:"lower"`
	Label string  `koanf:"label"`
}

// New creates a Config with the built-in report definitions. They reproduce
// the standard executive report variants over the arrivals dataset; callers
// may replace them wholesale from a YAML file.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		DataFile:  "Tourism_Arrivals_Enhanced.csv",
		QueueSize: 4096,
		Reports:   []Report{marketPositioning(), riskReturn()},
	}
}

// marketPositioning scores markets on scale, growth, diversification, and
// stability with a normalized weighted sum.
func marketPositioning() Report {
	return Report{
		ID:              "market-positioning",
		MinObservations: 12,
		SimilarityTopK:  3,
		Indicators: []Indicator{
			{Name: "avg_arrivals", Metric: "arrivals", Kind: "mean"},
			{Name: "growth", Metric: "arrivals", Kind: "compound_growth", MinPeriods: 12},
			{Name: "avg_growth_rate", Metric: "growth_rate", Kind: "mean", Cap: 50},
			{Name: "diversity", Metric: "source_market_diversity", Kind: "mean"},
			{Name: "volatility", Metric: "arrivals", Kind: "cv"},
		},
		Schemes: []Scheme{
			{
				ID:        "opportunity",
				Mode:      "weighted",
				Missing:   "exclude",
				Direction: "desc",
				Buckets:   4,
				Bands: []Band{
					{Lower: 0.75, Label: "leader"},
					{Lower: 0.5, Label: "challenger"},
					{Lower: 0.25, Label: "follower"},
					{Lower: 0, Label: "niche"},
				},
				Components: []Component{
					{Indicator: "growth", Weight: 0.3},
					{Indicator: "avg_arrivals", Weight: 0.25},
					{Indicator: "diversity", Weight: 0.25},
					{Indicator: "volatility", Weight: 0.2, Ascending: true},
				},
			},
		},
	}
}

// riskReturn ranks markets by return, consistency, and volatility using
// per-indicator rank tiles.
func riskReturn() Report {
	return Report{
		ID:              "risk-return",
		MinObservations: 12,
		Indicators: []Indicator{
			{Name: "mean_return", Metric: "arrivals", Kind: "mean_return", MinPeriods: 2, Cap: 0.5},
			{Name: "volatility", Metric: "arrivals", Kind: "stddev", MinPeriods: 2, Sample: true},
			{Name: "consistency", Metric: "arrivals", Kind: "positive_share", MinPeriods: 2},
		},
		Schemes: []Scheme{
			{
				ID:        "risk-rank",
				Mode:      "rank",
				Missing:   "renormalize",
				Direction: "asc",
				RankTiles: 5,
				Buckets:   5,
				Components: []Component{
					{Indicator: "mean_return", Weight: 0.4},
					{Indicator: "volatility", Weight: 0.4, Ascending: true},
					{Indicator: "consistency", Weight: 0.2},
				},
			},
		},
	}
}
