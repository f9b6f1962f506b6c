// Package source loads tourism arrivals observations from CSV files.
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tourstat/compass/internal/adapters/repository"
	"github.com/tourstat/compass/internal/domain/model"
	"github.com/tourstat/compass/pkg/logger"
	"github.com/tourstat/compass/pkg/metrics"
)

// Column headers of the Tourism_Arrivals dataset. Header matching is
// case-insensitive; column order is free.
const (
	colCountry     = "country"
	colCountryCode = "country_code"
	colRegion      = "region"
	colYear        = "year"
	colMonth       = "month"
	colMaturity    = "tourism_maturity"
)

// metricColumns maps dataset headers to observation metrics.
var metricColumns = map[string]model.Metric{
	"arrivals":                model.MetricArrivals,
	"arrivals_growth_rate":    model.MetricGrowthRate,
	"arrivals_per_capita":     model.MetricArrivalsPerCapita,
	"source_market_diversity": model.MetricDiversity,
	"peak_season_arrivals":    model.MetricPeakArrivals,
	"off_season_arrivals":     model.MetricOffPeakArrivals,
}

// LoadStats summarizes one ingestion pass.
type LoadStats struct {
	Loaded     int
	Skipped    int
	Duplicates int
}

// Loader reads arrivals CSV rows into an observation store. Malformed rows
// are skipped and counted, not fatal: a bad export line must not abort a run.
type Loader struct {
	store repository.Store
	log   logger.Logger
}

// NewLoader creates a Loader writing into store.
func NewLoader(store repository.Store) *Loader {
	return &Loader{
		store: store,
		log:   logger.Named("source"),
	}
}

// Load ingests all rows from r. The first record must be the header.
func (l *Loader) Load(ctx context.Context, r io.Reader) (LoadStats, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return LoadStats{}, fmt.Errorf("%w: %v", ErrMissingHeader, err)
	}
	cols, err := indexHeader(header)
	if err != nil {
		return LoadStats{}, err
	}

	var stats LoadStats
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Skipped++
			metrics.RecordObservationSkipped()
			l.log.Warn(ctx, "unreadable csv row", logger.Int("line", line), logger.Error(err))
			continue
		}
		entity, obs, perr := parseRow(cols, record)
		if perr != nil {
			stats.Skipped++
			metrics.RecordObservationSkipped()
			l.log.Warn(ctx, "malformed csv row", logger.Int("line", line), logger.Error(perr))
			continue
		}
		if !l.store.Add(ctx, entity, obs) {
			stats.Duplicates++
			metrics.RecordDuplicateRow()
			continue
		}
		stats.Loaded++
		metrics.RecordObservationLoaded()
	}
	return stats, nil
}

// columnIndex records where each known column sits in the header.
type columnIndex struct {
	country     int
	countryCode int
	region      int
	year        int
	month       int
	maturity    int
	metrics     map[model.Metric]int
}

func indexHeader(header []string) (columnIndex, error) {
	ci := columnIndex{
		country: -1, countryCode: -1, region: -1,
		year: -1, month: -1, maturity: -1,
		metrics: make(map[model.Metric]int),
	}
	for i, h := range header {
		switch name := strings.ToLower(strings.TrimSpace(h)); name {
		case colCountry:
			ci.country = i
		case colCountryCode:
			ci.countryCode = i
		case colRegion:
			ci.region = i
		case colYear:
			ci.year = i
		case colMonth:
			ci.month = i
		case colMaturity:
			ci.maturity = i
		default:
			if m, ok := metricColumns[name]; ok {
				ci.metrics[m] = i
			}
		}
	}
	if ci.country < 0 || ci.year < 0 {
		return ci, fmt.Errorf("%w: need at least country and year columns", ErrMissingHeader)
	}
	if len(ci.metrics) == 0 {
		return ci, fmt.Errorf("%w: no metric columns recognized", ErrMissingHeader)
	}
	return ci, nil
}

func parseRow(cols columnIndex, record []string) (model.Entity, model.Observation, error) {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := get(cols.country)
	if name == "" {
		return model.Entity{}, model.Observation{}, fmt.Errorf("empty country")
	}
	year, err := strconv.Atoi(get(cols.year))
	if err != nil {
		return model.Entity{}, model.Observation{}, fmt.Errorf("bad year: %w", err)
	}
	month := 0
	if s := get(cols.month); s != "" {
		month, err = strconv.Atoi(s)
		if err != nil || month < 1 || month > 12 {
			return model.Entity{}, model.Observation{}, fmt.Errorf("bad month %q", s)
		}
	}

	id := get(cols.countryCode)
	if id == "" {
		id = name
	}
	entity := model.Entity{
		ID:       id,
		Name:     name,
		Region:   get(cols.region),
		Maturity: get(cols.maturity),
	}

	values := make(map[model.Metric]float64, len(cols.metrics))
	for metric, idx := range cols.metrics {
		s := get(idx)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Entity{}, model.Observation{}, fmt.Errorf("bad %s value %q", metric, s)
		}
		values[metric] = v
	}
	if len(values) == 0 {
		return model.Entity{}, model.Observation{}, fmt.Errorf("row carries no metric values")
	}

	obs := model.Observation{
		EntityID: id,
		Period:   model.Period{Year: year, Month: month},
		Values:   values,
	}
	return entity, obs, nil
}
