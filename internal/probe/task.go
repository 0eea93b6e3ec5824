package probe

import (
	"context"
	"time"
)

// Task is a measurement running in the background. Its result is set exactly once.
type Task struct {
	Target string

	done   chan struct{}
	result Result
}

// Start runs p against target on a new goroutine with a deadline of timeout.
func Start(ctx context.Context, p Prober, target string, timeout time.Duration) *Task {
	t := &Task{Target: target, done: make(chan struct{})}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	go func() {
		defer cancel()
		t.result = p.Measure(ctx, target)
		close(t.done)
	}()
	return t
}

// Done is closed once the result is available.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome without blocking. ok is false while the task is running.
func (t *Task) Result() (Result, bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
