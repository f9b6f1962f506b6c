package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "Tourism_Arrivals_Enhanced.csv", cfg.DataFile)
	assert.Equal(t, 4096, cfg.QueueSize)
	require.Len(t, cfg.Reports, 2)
	assert.Equal(t, "market-positioning", cfg.Reports[0].ID)
	assert.Equal(t, "risk-return", cfg.Reports[1].ID)
	assert.Equal(t, 12, cfg.Reports[0].MinObservations)
	assert.Equal(t, 3, cfg.Reports[0].SimilarityTopK)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COMPASS_DATA_FILE", "arrivals.csv")
	t.Setenv("COMPASS_WORKER_COUNT", "8")
	t.Setenv("COMPASS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "arrivals.csv", cfg.DataFile)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Reports are untouched by flat env keys.
	require.Len(t, cfg.Reports, 2)
}

func TestLoad_FileReplacesReports(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compass.yaml")
	body := `
data_file: arrivals.csv
worker_count: 2
reports:
  - id: custom
    min_observations: 6
    indicators:
      - name: avg_arrivals
        metric: arrivals
        kind: mean
    schemes:
      - id: simple
        mode: weighted
        buckets: 2
        components:
          - indicator: avg_arrivals
            weight: 1.0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("COMPASS_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "arrivals.csv", cfg.DataFile)
	assert.Equal(t, 2, cfg.WorkerCount)
	require.Len(t, cfg.Reports, 1)
	assert.Equal(t, "custom", cfg.Reports[0].ID)
	assert.Equal(t, 6, cfg.Reports[0].MinObservations)
	require.Len(t, cfg.Reports[0].Schemes, 1)
	assert.Equal(t, 1.0, cfg.Reports[0].Schemes[0].Components[0].Weight)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compass.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_file: from_file.csv\n"), 0o600))
	t.Setenv("COMPASS_CONFIG", path)
	t.Setenv("COMPASS_DATA_FILE", "from_env.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from_env.csv", cfg.DataFile)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("COMPASS_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.ErrorIs(t, err, ErrLoadConfig)
}

func TestLoad_RejectsInvalidConfigs(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty data file", "data_file: \"\"\n"},
		{"no reports", "reports: []\n"},
		{"report missing id", `
reports:
  - indicators:
      - {name: a, metric: arrivals, kind: mean}
    schemes:
      - {id: s, components: [{indicator: a, weight: 1.0}]}
`},
		{"duplicate report ids", `
reports:
  - id: dup
    indicators:
      - {name: a, metric: arrivals, kind: mean}
    schemes:
      - {id: s, components: [{indicator: a, weight: 1.0}]}
  - id: dup
    indicators:
      - {name: a, metric: arrivals, kind: mean}
    schemes:
      - {id: s, components: [{indicator: a, weight: 1.0}]}
`},
		{"no indicators", `
reports:
  - id: r
    indicators: []
    schemes:
      - {id: s, components: [{indicator: a, weight: 1.0}]}
`},
		{"no schemes", `
reports:
  - id: r
    indicators:
      - {name: a, metric: arrivals, kind: mean}
    schemes: []
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "compass.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o600))
			t.Setenv("COMPASS_CONFIG", path)

			_, err := Load()
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
