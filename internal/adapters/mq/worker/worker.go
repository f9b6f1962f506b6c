// Package worker runs per-entity aggregation concurrently.
//
// Aggregation is embarrassingly parallel: each entity's indicators depend
// only on that entity's observations. The pool's Wait is the population
// barrier required before normalization.
package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/tourstat/compass/internal/adapters/mq/queue"
	"github.com/tourstat/compass/internal/domain/model"
	"github.com/tourstat/compass/pkg/logger"
	"github.com/tourstat/compass/pkg/metrics"
)

// Aggregator reduces one entity's observations into an indicator set.
// The second return value is false when the entity must be excluded.
type Aggregator interface {
	Aggregate(entityID string, obs []model.Observation) (model.IndicatorSet, bool)
}

// Collector receives worker results. Implementations must be safe for
// concurrent use.
type Collector interface {
	Collect(set model.IndicatorSet)
	Exclude(entityID string)
}

// Worker consumes jobs off the queue until it is drained or ctx is canceled.
type Worker struct {
	queue     queue.Queue
	agg       Aggregator
	collector Collector
	name      string
	log       logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
			w.log = logger.Named(name)
		}
	}
}

// NewWorker creates a worker.
func NewWorker(q queue.Queue, agg Aggregator, collector Collector, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		agg:       agg,
		collector: collector,
		name:      "worker",
		log:       logger.Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes jobs until the queue drains or ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job queue.Job) {
	set, ok := w.agg.Aggregate(job.Entity.ID, job.Observations)
	if !ok {
		metrics.RecordEntityExcluded()
		w.log.Debug(ctx, "entity excluded for insufficient observations",
			logger.String("entity", job.Entity.ID),
			logger.Int("observations", len(job.Observations)),
		)
		w.collector.Exclude(job.Entity.ID)
		return
	}
	metrics.RecordEntityAggregated()
	for _, v := range set.Values {
		if !v.Valid {
			metrics.RecordNullIndicator()
		}
	}
	w.collector.Collect(set)
}

// Pool fans aggregation out over a fixed number of workers.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool creates a pool of workerCount workers. A non-positive count
// defaults to the CPU count.
func NewPool(workerCount int, q queue.Queue, agg Aggregator, collector Collector) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{workers: make([]*Worker, workerCount)}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, agg, collector, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has drained the queue. This is the
// population barrier: normalization must not start before Wait returns.
func (p *Pool) Wait() {
	p.wg.Wait()
}
