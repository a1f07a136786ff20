package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"archie-core-auth-gateway/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Task is a fire-and-forget unit of work started by a TaskRunner
type Task struct {
	ID   string
	Name string

	done chan struct{}
	err  error
}

// Done is closed once the task has finished
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task result. It is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is done
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TaskRunner starts background side effects that must never block or fail the caller
type TaskRunner struct {
	logger  zerolog.Logger
	metrics ports.Metrics
	wg      sync.WaitGroup
}

// NewTaskRunner creates a new task runner
func NewTaskRunner(logger zerolog.Logger, metrics ports.Metrics) *TaskRunner {
	return &TaskRunner{
		logger:  logger,
		metrics: metrics,
	}
}

// Go starts fn in the background and returns once it has been started.
// The task context keeps the values of ctx but not its cancellation, so the
// task outlives the request that issued it. A positive timeout bounds it.
func (r *TaskRunner) Go(ctx context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) *Task {
	task := &Task{
		ID:   uuid.NewString(),
		Name: name,
		done: make(chan struct{}),
	}

	taskCtx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		taskCtx, cancel = context.WithTimeout(taskCtx, timeout)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(task.done)
		defer cancel()

		task.err = r.run(taskCtx, fn)
		if task.err != nil {
			r.logger.Error().
				Err(task.err).
				Str("taskId", task.ID).
				Str("task", name).
				Msg("Background task failed")
			if r.metrics != nil {
				r.metrics.TaskFailed(name)
			}
		}
	}()

	return task
}

func (r *TaskRunner) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task panicked: %v", rec)
		}
	}()
	return fn(ctx)
}

// Wait blocks until every started task has finished or ctx is done
func (r *TaskRunner) Wait(ctx context.Context) error {
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
