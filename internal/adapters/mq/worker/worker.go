// Package worker analyzes queued matches and feeds the streak leaderboard.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/libero/internal/adapters/mq/queue"
	"github.com/okian/libero/internal/domain/analysis"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/simulator"
	"github.com/okian/libero/internal/domain/streaks"
	"github.com/okian/libero/internal/domain/types"
	"github.com/okian/libero/pkg/logger"
	"github.com/okian/libero/pkg/metrics"
)

const (
	poolShutdownTimeout = 30 * time.Second
	workerStopTimeout   = time.Second
)

// Analyzer turns a match into its per-match results.
type Analyzer interface {
	Analyze(ctx context.Context, m *model.Match) (analysis.Result, error)
}

// Updater receives every streak found.
type Updater interface {
	Offer(ctx context.Context, e types.Entry) (bool, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until the queue is drained or it is stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	updater  Updater
	name     string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker. updater may be nil.
func NewInMemoryWorker(q Queue, analyzer Analyzer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		analyzer: analyzer,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.GetOrNop().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown stops the worker without draining the queue.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) {
	res, err := w.analyze(ctx, j)
	if err == nil {
		w.offer(ctx, j, res.Streaks)
	}
	if j.Done != nil {
		j.Done <- queue.Outcome{JobID: j.ID, Result: res, Err: err}
	}
}

func (w *InMemoryWorker) analyze(ctx context.Context, j queue.Job) (analysis.Result, error) {
	start := time.Now()
	matchID := ""
	if j.Match != nil {
		matchID = j.Match.ID
	}

	res, err := w.analyzer.Analyze(ctx, j.Match)
	if err != nil {
		metrics.RecordMatchRejected(rejectReason(err))
		metrics.RecordWorkerError()
		w.logger.Warn(ctx, "match rejected",
			logger.String("job_id", j.ID),
			logger.String("match_id", matchID),
			logger.Error(err),
		)
		return analysis.Result{}, fmt.Errorf("analyze match %s: %w", matchID, err)
	}

	metrics.RecordMatchAnalyzed(float64(time.Since(start).Milliseconds()))
	metrics.RecordEventsProcessed(res.Stats.EventsProcessed)
	metrics.RecordStreaks(len(res.Streaks))
	for _, warn := range res.Stats.Warnings {
		switch warn.Kind {
		case simulator.WarnUnparseableScore, simulator.WarnEventPanic:
			metrics.RecordEventSkipped(warn.Kind)
		default:
			metrics.RecordDataQualityIssue(warn.Kind)
		}
	}
	if res.Stats.Incomplete {
		metrics.RecordMatchIncomplete()
	}
	w.logger.Debug(ctx, "match analyzed",
		logger.String("match_id", matchID),
		logger.Int("events", res.Stats.EventsProcessed),
		logger.Int("streaks", len(res.Streaks)),
	)
	return res, nil
}

func (w *InMemoryWorker) offer(ctx context.Context, j queue.Job, found []streaks.Streak) {
	if w.updater == nil {
		return
	}
	for _, s := range found {
		_, err := w.updater.Offer(ctx, types.Entry{
			PlayerID: s.PlayerID,
			Name:     s.Name,
			Shirt:    s.Shirt,
			TeamID:   j.Match.Team(s.Team).ID,
			MatchID:  j.Match.ID,
			Set:      s.Set,
			Length:   s.Length,
		})
		if err != nil {
			metrics.RecordWorkerError()
			w.logger.Error(ctx, "leaderboard update failed",
				logger.String("player_id", s.PlayerID),
				logger.Error(err),
			)
		}
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, simulator.ErrMissingEvents):
		return "missing_events"
	case errors.Is(err, simulator.ErrMissingLineups):
		return "missing_lineups"
	case errors.Is(err, simulator.ErrInvalidLineup):
		return "invalid_lineup"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a worker pool. A non-positive count uses runtime.NumCPU.
func NewPool(workerCount int, q Queue, analyzer Analyzer, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.GetOrNop().Named("worker-pool"),
	}
	for i := range pool.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, analyzer, updater, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still busy when ctx or the pool timeout expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			stopCtx, stop := context.WithTimeout(context.Background(), workerStopTimeout)
			if err := w.Shutdown(stopCtx); err != nil {
				p.logger.Error(ctx, "worker shutdown failed", logger.Int("worker_id", i), logger.Error(err))
			}
			stop()
			timedOut = drainCtx.Err()
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut != nil {
		return fmt.Errorf("worker pool drain: %w", timedOut)
	}
	return nil
}
