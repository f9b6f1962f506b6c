// Package app orchestrates the staged scoring pipeline over a snapshot of
// the observation store: aggregate per entity in parallel, barrier, then
// normalize, score, classify, and rank the population.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tourstat/compass/internal/adapters/mq/queue"
	workerpool "github.com/tourstat/compass/internal/adapters/mq/worker"
	"github.com/tourstat/compass/internal/adapters/repository"
	"github.com/tourstat/compass/internal/config"
	"github.com/tourstat/compass/internal/domain/composite"
	"github.com/tourstat/compass/internal/domain/indicator"
	"github.com/tourstat/compass/internal/domain/model"
	"github.com/tourstat/compass/internal/domain/normalize"
	"github.com/tourstat/compass/internal/domain/rank"
	"github.com/tourstat/compass/internal/domain/similarity"
	"github.com/tourstat/compass/internal/domain/tier"
	"github.com/tourstat/compass/pkg/logger"
	"github.com/tourstat/compass/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultQueueSize = 4096
)

// SchemeResult is the ranked output of one scheme.
type SchemeResult struct {
	SchemeID string
	Order    model.SortOrder
	Rows     []model.Row
}

// Result is the complete output of one report run. Reruns over an unchanged
// snapshot reproduce identical rows.
type Result struct {
	RunID     string
	ReportID  string
	StartedAt time.Time
	Duration  time.Duration

	// Excluded lists entities dropped for insufficient observations,
	// in entity-id order.
	Excluded []string

	Schemes []SchemeResult

	// Peers holds the nearest-peer extension output when requested.
	Peers map[string][]similarity.Peer
}

// Engine runs reports against an observation store.
type Engine struct {
	store       repository.Store
	workerCount int
	queueSize   int
	clock       clockwork.Clock
	log         logger.Logger

	mu      sync.RWMutex
	results map[string]*Result
	order   []string
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWorkerCount sets the number of aggregation workers.
func WithWorkerCount(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.workerCount = count
		}
	}
}

// WithQueueSize bounds the job queue.
func WithQueueSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.queueSize = size
		}
	}
}

// WithClock injects a clock, used by tests to fake run timing.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New constructs an Engine reading from store.
func New(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		queueSize: defaultQueueSize,
		clock:     clockwork.NewRealClock(),
		results:   make(map[string]*Result),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("engine")
	}
	return e
}

// collector gathers worker output behind a mutex.
type collector struct {
	mu       sync.Mutex
	sets     []model.IndicatorSet
	excluded []string
}

func (c *collector) Collect(set model.IndicatorSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = append(c.sets, set)
}

func (c *collector) Exclude(entityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.excluded = append(c.excluded, entityID)
}

// Run executes one report definition and retains its result for readers.
// Configuration mistakes abort the run; data defects (missing windows,
// undefined arithmetic, degenerate populations) surface as nulls in the rows.
func (e *Engine) Run(ctx context.Context, report config.Report) (*Result, error) {
	start := e.clock.Now()
	metrics.RecordRunStarted()

	res, err := e.run(ctx, report)
	if err != nil {
		metrics.RecordRunError()
		return nil, err
	}

	res.RunID = uuid.NewString()
	res.ReportID = report.ID
	res.StartedAt = start
	res.Duration = e.clock.Since(start)
	metrics.RecordRunDuration(res.Duration.Seconds())

	e.mu.Lock()
	if _, seen := e.results[report.ID]; !seen {
		e.order = append(e.order, report.ID)
	}
	e.results[report.ID] = res
	e.mu.Unlock()

	e.log.Info(ctx, "report run complete",
		logger.String("report", report.ID),
		logger.String("run_id", res.RunID),
		logger.Int("schemes", len(res.Schemes)),
		logger.Int("excluded", len(res.Excluded)),
	)
	return res, nil
}

func (e *Engine) run(ctx context.Context, report config.Report) (*Result, error) {
	formulas, err := buildFormulas(report.Indicators)
	if err != nil {
		return nil, err
	}
	if err := indicator.Validate(formulas); err != nil {
		return nil, err
	}

	snap := e.store.Snapshot(ctx)
	if len(snap.Entities) == 0 {
		return nil, repository.ErrEmptyStore
	}

	sets, excluded, err := e.aggregate(ctx, report, formulas, snap)
	if err != nil {
		return nil, err
	}

	// Population barrier crossed: every entity's indicators are in.
	normed := normalize.Normalize(sets)
	for name, st := range normed.Stats {
		if st.Degenerate {
			metrics.RecordDegenerateIndicator()
			e.log.Warn(ctx, "indicator carries no population signal",
				logger.String("report", report.ID),
				logger.String("indicator", name),
			)
		}
	}

	known := make(map[string]struct{}, len(formulas))
	names := make([]string, 0, len(formulas))
	for _, f := range formulas {
		known[f.Name] = struct{}{}
		names = append(names, f.Name)
	}
	sort.Strings(names)

	res := &Result{Excluded: excluded}
	for _, sc := range report.Schemes {
		sr, err := e.runScheme(sc, sets, normed.Sets, known)
		if err != nil {
			return nil, err
		}
		res.Schemes = append(res.Schemes, sr)
	}

	if report.SimilarityTopK > 0 {
		res.Peers = similarity.Nearest(normed.Sets, names, report.SimilarityTopK)
	}
	return res, nil
}

// aggregate fans per-entity reduction out over the worker pool and waits for
// the barrier. Output is re-ordered by entity id so worker completion order
// cannot leak into results.
func (e *Engine) aggregate(
	ctx context.Context,
	report config.Report,
	formulas []indicator.Formula,
	snap repository.Snapshot,
) ([]model.IndicatorSet, []string, error) {
	agg := indicator.New(formulas, indicator.WithMinObservations(report.MinObservations))

	capacity := e.queueSize
	if n := len(snap.Entities); n > capacity {
		capacity = n
	}
	q := queue.NewInMemoryQueue(queue.WithCapacity(capacity))
	for _, entity := range snap.Entities {
		if !q.Enqueue(ctx, queue.Job{Entity: entity, Observations: snap.Observations[entity.ID]}) {
			_ = q.Close()
			return nil, nil, fmt.Errorf("enqueue aggregation job for %s: %w", entity.ID, ctx.Err())
		}
	}
	_ = q.Close()

	coll := &collector{}
	pool := workerpool.NewPool(e.workerCount, q, agg, coll)
	pool.Start(ctx)
	pool.Wait()
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	idx := make(map[string]int, len(snap.Entities))
	for i, entity := range snap.Entities {
		idx[entity.ID] = i
	}
	sort.Slice(coll.sets, func(i, j int) bool {
		return idx[coll.sets[i].EntityID] < idx[coll.sets[j].EntityID]
	})
	sort.Slice(coll.excluded, func(i, j int) bool {
		return idx[coll.excluded[i]] < idx[coll.excluded[j]]
	})
	return coll.sets, coll.excluded, nil
}

func (e *Engine) runScheme(
	sc config.Scheme,
	sets []model.IndicatorSet,
	normed []model.NormalizedSet,
	known map[string]struct{},
) (SchemeResult, error) {
	scheme, order, err := buildScheme(sc)
	if err != nil {
		return SchemeResult{}, err
	}
	if err := scheme.Validate(len(sets), func(name string) bool {
		_, ok := known[name]
		return ok
	}); err != nil {
		return SchemeResult{}, err
	}

	classifier := tier.New(tier.WithBuckets(sc.Buckets), tier.WithBands(buildBands(sc.Bands)))
	if err := classifier.Validate(len(sets)); err != nil {
		return SchemeResult{}, fmt.Errorf("scheme %q: %w", sc.ID, err)
	}

	scores := composite.Score(scheme, normed)
	for _, cs := range scores {
		metrics.RecordSchemeScore()
		if !cs.Score.Valid {
			metrics.RecordNullComposite()
		}
	}

	tiers := classifier.Classify(scores, order)
	rows := rank.Rank(scores, tiers, sets, normed, order)
	return SchemeResult{SchemeID: sc.ID, Order: order, Rows: rows}, nil
}

// Result returns the retained result for a report id.
func (e *Engine) Result(reportID string) (*Result, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	res, ok := e.results[reportID]
	return res, ok
}

// ReportIDs lists retained report ids in run order.
func (e *Engine) ReportIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}
