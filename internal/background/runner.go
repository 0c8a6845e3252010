// Package background runs detached side effects outside the request lifecycle.
package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of detached work. It receives a context that is not tied to any request.
type Task func(ctx context.Context) error

// TaskError reports a failed task.
type TaskError struct {
	Name string
	Err  error
}

func (e TaskError) Error() string { return fmt.Sprintf("task %s: %v", e.Name, e.Err) }

func (e TaskError) Unwrap() error { return e.Err }

// Runner spawns tasks with their own timeout. Failures are sent to an error channel that a
// logging goroutine drains; callers never wait on a task.
type Runner struct {
	base    context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *zap.Logger

	errs     chan TaskError
	tasks    sync.WaitGroup
	drained  chan struct{}
	mu       sync.RWMutex
	stopping bool
}

// NewRunner starts the error drain. Every task is bounded by timeout.
func NewRunner(logger *zap.Logger, timeout time.Duration) *Runner {
	base, cancel := context.WithCancel(context.Background())
	r := &Runner{
		base:    base,
		cancel:  cancel,
		timeout: timeout,
		logger:  logger,
		errs:    make(chan TaskError, 64),
		drained: make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Runner) drain() {
	defer close(r.drained)
	for e := range r.errs {
		r.logger.Warn("background task failed", zap.String("task", e.Name), zap.Error(e.Err))
	}
}

// Go runs task in a new goroutine. It returns false when the runner is shutting down.
func (r *Runner) Go(name string, task Task) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopping {
		r.logger.Warn("background task dropped during shutdown", zap.String("task", name))
		return false
	}

	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()
		ctx, cancel := context.WithTimeout(r.base, r.timeout)
		defer cancel()

		err := r.run(ctx, task)
		if err != nil {
			r.errs <- TaskError{Name: name, Err: err}
		}
	}()
	return true
}

func (r *Runner) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return task(ctx)
}

// Shutdown stops accepting tasks and waits for running ones. When ctx expires first, the
// remaining tasks are cancelled and ctx's error is returned.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.stopping {
		r.mu.Unlock()
		<-r.drained
		return nil
	}
	r.stopping = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.tasks.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		r.cancel()
		<-done
		err = ctx.Err()
	}
	r.cancel()
	close(r.errs)
	<-r.drained
	return err
}
