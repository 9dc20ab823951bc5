package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned by Submit when the task queue is saturated
var ErrQueueFull = errors.New("worker queue full")

// Task is one unit of background work. The correlation ID ties pool logs
// back to the webhook delivery that enqueued the task.
type Task struct {
	CorrelationID string
	Run           func(ctx context.Context) error
}

// Config contains worker pool configuration
type Config struct {
	WorkerCount int
	QueueSize   int
	TaskTimeout time.Duration
}

// Pool runs submitted tasks on a fixed set of background workers. Webhook
// handlers acknowledge the platform first and hand the slow path to the
// pool, so task failures are logged but never reach the HTTP response.
type Pool struct {
	tasks       chan Task
	workerCount int
	taskTimeout time.Duration
	log         zerolog.Logger
	wg          sync.WaitGroup
	stopOnce    sync.Once

	mu      sync.Mutex
	stopped bool
}

// NewPool creates a new worker pool
func NewPool(cfg Config, log zerolog.Logger) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 60 * time.Second
	}
	return &Pool{
		tasks:       make(chan Task, cfg.QueueSize),
		workerCount: cfg.WorkerCount,
		taskTimeout: cfg.TaskTimeout,
		log:         log.With().Str("component", "worker-pool").Logger(),
	}
}

// Start launches the workers
func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Msg("starting worker pool")
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i+1)
	}
}

// Submit enqueues a task without blocking. Returns ErrQueueFull when the
// queue has no room or the pool is stopping, so callers can log the drop
// and still acknowledge. The stopped check and the send share a lock with
// Stop's close of the queue.
func (p *Pool) Submit(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrQueueFull
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		p.log.Warn().Str("correlation_id", task.CorrelationID).Msg("task dropped, queue full")
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for in-flight tasks to finish, up to a
// 30s deadline.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.tasks)
		p.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info().Msg("all workers stopped")
	case <-time.After(30 * time.Second):
		p.log.Warn().Msg("worker pool shutdown timed out")
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.log.With().Int("worker_id", id).Logger()
	for task := range p.tasks {
		p.runTask(ctx, log, task)
	}
}

// runTask isolates one task behind its own timeout and recover boundary
// so a panicking handler cannot take a worker down.
func (p *Pool) runTask(ctx context.Context, log zerolog.Logger, task Task) {
	taskCtx, cancel := context.WithTimeout(ctx, p.taskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("correlation_id", task.CorrelationID).
				Msg("task panicked")
		}
	}()

	start := time.Now()
	if err := task.Run(taskCtx); err != nil {
		log.Error().
			Err(err).
			Str("correlation_id", task.CorrelationID).
			Dur("elapsed", time.Since(start)).
			Msg("task failed")
		return
	}
	log.Debug().
		Str("correlation_id", task.CorrelationID).
		Dur("elapsed", time.Since(start)).
		Msg("task completed")
}
