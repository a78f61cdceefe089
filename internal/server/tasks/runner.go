// Package tasks runs fire-and-forget background jobs that must outlive the
// request which started them.
package tasks

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/dmitrijs2005/charstudio/internal/logging"
	"golang.org/x/sync/semaphore"
)

// Runner executes submitted jobs on a context detached from any request.
// At most maxConcurrent jobs run at once; the rest wait for a slot.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	logger logging.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRunner returns a Runner. maxConcurrent below 1 is treated as 1.
func NewRunner(logger logging.Logger, maxConcurrent int64) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		ctx:    ctx,
		cancel: cancel,
		sem:    semaphore.NewWeighted(maxConcurrent),
		logger: logger.With("module", "tasks"),
	}
}

// Submit schedules fn and returns immediately. fn receives the runner's
// context, which is cancelled by Shutdown. A panic inside fn is recovered
// and logged. Jobs submitted after Shutdown are dropped.
func (r *Runner) Submit(name string, fn func(ctx context.Context)) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn(context.Background(), "task dropped, runner is shut down", "task", name)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			r.logger.Warn(r.ctx, "task dropped before start", "task", name, "error", err)
			return
		}
		defer r.sem.Release(1)

		defer func() {
			if p := recover(); p != nil {
				r.logger.Error(r.ctx, "task panicked", "task", name, "panic", p, "stack", string(debug.Stack()))
			}
		}()

		r.logger.Debug(r.ctx, "task started", "task", name)
		fn(r.ctx)
		r.logger.Debug(r.ctx, "task finished", "task", name)
	}()
}

// Shutdown cancels the jobs' context and waits for running jobs to return
// or for ctx to end, whichever comes first.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
