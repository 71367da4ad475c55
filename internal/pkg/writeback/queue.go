package writeback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrQueueClosed = errors.New("writeback queue is closed")

// Statistics is a snapshot of submitted / completed / failed task counts
type Statistics struct {
	Submitted int64
	Completed int64
	Failed    int64
}

type counters struct {
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

func (c *counters) snapshot() Statistics {
	return Statistics{
		Submitted: c.submitted.Load(),
		Completed: c.completed.Load(),
		Failed:    c.failed.Load(),
	}
}

// Config holds queue configuration
type Config struct {
	Workers     int           `mapstructure:"workers"`      // pool size
	TaskTimeout time.Duration `mapstructure:"task_timeout"` // per-task deadline
}

// DefaultConfig returns default queue configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:     8,
		TaskTimeout: 10 * time.Second,
	}
}

// Observer is notified after every task settles. Used by callers that need to
// watch the persistence window (tests, metrics); err is nil on success.
type Observer func(name string, err error)

// Queue runs best-effort persistence tasks behind the caller's back. A task's
// failure is logged and counted, never propagated: delivery is at-most-once
// with no retry, so the stores may stay divergent until a later write lands.
type Queue struct {
	pool     *ants.Pool
	logger   *zap.Logger
	stats    counters
	timeout  time.Duration
	observer Observer

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool

	keymu  sync.Mutex
	chains map[string][]*task
}

type task struct {
	name string
	fn   func(ctx context.Context) error
}

// New creates a writeback queue backed by an ants pool
func New(cfg *Config, logger *zap.Logger) (*Queue, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = DefaultConfig().TaskTimeout
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}

	return &Queue{
		pool:    pool,
		logger:  logger,
		timeout: cfg.TaskTimeout,
		chains:  make(map[string][]*task),
	}, nil
}

// SetObserver registers a settle callback. Must be called before the first
// Enqueue; not synchronized against in-flight tasks.
func (q *Queue) SetObserver(fn Observer) {
	q.observer = fn
}

// Enqueue schedules fn to run asynchronously. The name identifies the task in
// logs and observer callbacks ("topic.put", "topic.delete").
func (q *Queue) Enqueue(name string, fn func(ctx context.Context) error) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.wg.Add(1)
	q.mu.Unlock()

	q.stats.submitted.Add(1)

	err := q.pool.Submit(func() {
		q.run(name, fn)
	})
	if err != nil {
		q.wg.Done()
		q.stats.failed.Add(1)
		q.logger.Error("failed to submit writeback task",
			zap.String("task", name),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// EnqueueKeyed schedules fn like Enqueue, except that tasks sharing a key run
// one at a time in submission order. Per-topic durable writes use the topic id
// as the key so a record can never commit ahead of an earlier one for the
// same topic.
func (q *Queue) EnqueueKeyed(name, key string, fn func(ctx context.Context) error) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.wg.Add(1)
	q.mu.Unlock()

	q.stats.submitted.Add(1)

	t := &task{name: name, fn: fn}

	q.keymu.Lock()
	if _, active := q.chains[key]; active {
		// a worker already owns this key; it will pick the task up
		q.chains[key] = append(q.chains[key], t)
		q.keymu.Unlock()
		return nil
	}
	q.chains[key] = []*task{t}
	q.keymu.Unlock()

	err := q.pool.Submit(func() {
		q.runChain(key)
	})
	if err != nil {
		q.keymu.Lock()
		delete(q.chains, key)
		q.keymu.Unlock()
		q.wg.Done()
		q.stats.failed.Add(1)
		q.logger.Error("failed to submit writeback task",
			zap.String("task", name),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// runChain drains one key's task list in order. The worker holds the key
// until the list is empty, so tasks appended mid-run are picked up here
// rather than submitted again.
func (q *Queue) runChain(key string) {
	for {
		q.keymu.Lock()
		t := q.chains[key][0]
		q.keymu.Unlock()

		q.run(t.name, t.fn)

		q.keymu.Lock()
		rest := q.chains[key][1:]
		if len(rest) == 0 {
			delete(q.chains, key)
			q.keymu.Unlock()
			return
		}
		q.chains[key] = rest
		q.keymu.Unlock()
	}
}

func (q *Queue) run(name string, fn func(ctx context.Context) error) {
	defer q.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	taskErr := fn(ctx)
	if taskErr != nil {
		q.stats.failed.Add(1)
		q.logger.Warn("writeback task failed",
			zap.String("task", name),
			zap.Error(taskErr),
		)
	} else {
		q.stats.completed.Add(1)
	}

	if q.observer != nil {
		q.observer(name, taskErr)
	}
}

// Stats returns a snapshot of queue statistics
func (q *Queue) Stats() Statistics {
	return q.stats.snapshot()
}

// Wait blocks until all enqueued tasks have settled
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Shutdown drains pending tasks and releases the pool
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	q.pool.Release()
}
