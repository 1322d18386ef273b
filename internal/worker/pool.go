// Package worker implements the buffered worker pool that archives rating
// snapshots to ClickHouse. Rating requests never wait on the history store:
// - Load shedding when the queue is full
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/openfrc/stats-api/internal/metrics"
	"github.com/openfrc/stats-api/internal/models"
)

const insertSnapshots = `
	INSERT INTO fsm_stats.rating_snapshots (
		run_id, event_code, team_key, fsm, matches, computed_at
	)
`

// Job represents a unit of work for the worker pool
type Job struct {
	Snapshot  *models.RatingSnapshot
	Timestamp time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Logger        *zap.Logger
}

// Pool manages a pool of workers writing snapshots in batches
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	stopOnce sync.Once
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Snapshot pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop closes the queue and waits for workers to flush what they hold
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping snapshot pool...")
		close(p.jobQueue)
		p.wg.Wait()
		if p.cancel != nil {
			p.cancel()
		}
		p.logger.Info("Snapshot pool stopped")
	})
}

// Enqueue adds a snapshot to the queue. It never blocks: when the queue is full
// or the pool is stopped, the snapshot is dropped and false is returned.
func (p *Pool) Enqueue(snapshot *models.RatingSnapshot) (ok bool) {
	job := Job{
		Snapshot:  snapshot,
		Timestamp: time.Now(),
	}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue snapshot (pool stopped)", "error", r)
			metrics.SnapshotsShed.Inc()
			ok = false
		}
	}()

	select {
	case p.jobQueue <- job:
		metrics.SnapshotsIngested.Inc()
		return true
	default:
		metrics.SnapshotsShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.QueueDepth.Set(float64(p.QueueDepth()))
		case <-p.ctx.Done():
			return
		}
	}
}

// worker collects jobs into batches and flushes on size or interval
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Snapshot batch failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			metrics.SnapshotsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Snapshot batch written", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			metrics.SnapshotsProcessed.Add(float64(len(batch)))
		}
		metrics.BatchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// processBatch writes a batch of snapshots in one ClickHouse insert
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx := context.Background()
	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, insertSnapshots)
	if err != nil {
		return err
	}

	for _, job := range batch {
		s := job.Snapshot
		computedAt := s.ComputedAt
		if computedAt.IsZero() {
			computedAt = job.Timestamp
		}
		if err := chBatch.Append(s.RunID, s.EventCode, s.TeamKey, s.FSM, s.Matches, computedAt); err != nil {
			p.logger.Warnw("Failed to append snapshot to batch", "error", err, "event", s.EventCode, "team", s.TeamKey)
			continue
		}
	}

	return chBatch.Send()
}

// EnsureSchema creates the snapshot table when it does not exist
func EnsureSchema(ctx context.Context, ch driver.Conn) error {
	if err := ch.Exec(ctx, `CREATE DATABASE IF NOT EXISTS fsm_stats`); err != nil {
		return err
	}
	return ch.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS fsm_stats.rating_snapshots (
			run_id String,
			event_code LowCardinality(String),
			team_key LowCardinality(String),
			fsm Float64,
			matches UInt32,
			computed_at DateTime64(3)
		) ENGINE = MergeTree
		ORDER BY (team_key, event_code, computed_at)
	`)
}
