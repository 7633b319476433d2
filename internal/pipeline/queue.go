package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Queue processes watcher-discovered documents asynchronously. Workers run
// until Shutdown drains the channel.
type Queue struct {
	proc    *Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan string
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type QueueOption func(*Queue)

func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan string, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc *Processor, logger *slog.Logger, opts ...QueueOption) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan string, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker.started", "worker_id", workerID)

				for path := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					out := q.proc.ProcessFile(ctx, path)
					cancel()

					if out.Err != nil {
						q.logger.Error("queue.process.failed", "worker_id", workerID, "path", path, "error", out.Err)
					} else {
						q.logger.Info("queue.process.ok", "worker_id", workerID, "path", path,
							"status", out.Status, "merge", out.Merge)
					}
				}

				q.logger.Info("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) Enqueue(path string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.rejected", "path", path)
		return
	}
	select {
	case q.ch <- path:
		q.logger.Info("queue.enqueued", "path", path)
	default:
		q.logger.Warn("queue.full", "path", path)
		q.ch <- path
	}
}

// Shutdown stops accepting work and waits for the channel to drain, or for
// the context to expire.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
