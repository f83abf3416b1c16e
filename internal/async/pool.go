package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed is returned by Submit after Shutdown has started.
var ErrClosed = errors.New("pool is shutting down")

// Job is one independent unit of work. A failing job never affects others.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool runs jobs on a fixed number of workers until Shutdown drains it.
type Pool struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.ch = make(chan Job, n)
		}
	}
}

// WithJobTimeout bounds each job. Zero leaves jobs bounded only by the Submit context.
func WithJobTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPool(logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		logger:  logger,
		workers: 4,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pool) start(ctx context.Context) {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func(workerID int) {
				defer p.wg.Done()
				for job := range p.ch {
					p.run(ctx, workerID, job)
				}
			}(i + 1)
		}
		p.logger.Debug("async.pool.started", "workers", p.workers)
	})
}

func (p *Pool) run(ctx context.Context, workerID int, job Job) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("async.job.panic", "worker_id", workerID, "job", job.Name, "panic", r)
		}
	}()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		p.logger.Warn("async.job.failed",
			"worker_id", workerID,
			"job", job.Name,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	p.logger.Debug("async.job.ok", "worker_id", workerID, "job", job.Name, "elapsed_ms", time.Since(start).Milliseconds())
}

// Submit queues job, blocking while the queue is full. Workers start on the
// first Submit and inherit ctx, detached from its cancellation, so a caller
// that goes away does not abandon half-written work.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("cannot submit: pool is shutting down", "job", job.Name)
		return ErrClosed
	}
	p.start(context.WithoutCancel(ctx))
	select {
	case p.ch <- job:
	default:
		p.logger.Debug("async.pool.backpressure", "job", job.Name)
		select {
		case p.ch <- job:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Shutdown stops accepting jobs and waits for queued jobs to finish or ctx to end.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); p.wg.Wait() }()

	select {
	case <-ctx.Done():
		p.logger.Warn("async.pool.shutdown_interrupted", "error", ctx.Err())
		return ctx.Err()
	case <-done:
		return nil
	}
}
