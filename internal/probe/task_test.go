package probe

import (
	"context"
	"errors"
	"testing"
	"time"
)

type gatedProber struct {
	release chan struct{}
}

func (g *gatedProber) Measure(ctx context.Context, target string) Result {
	select {
	case <-g.release:
		return succeeded(42)
	case <-ctx.Done():
		return failed(KindTimeout, "gave up: %v", ctx.Err())
	}
}

func TestTaskPollAndWait(t *testing.T) {
	p := &gatedProber{release: make(chan struct{})}
	task := Start(context.Background(), p, "example.com", time.Second)

	if _, ok := task.Result(); ok {
		t.Fatalf("expected no result while running")
	}
	if task.Target != "example.com" {
		t.Fatalf("unexpected target %q", task.Target)
	}

	close(p.release)
	result, err := task.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !result.Success || result.LatencyMS != 42 {
		t.Fatalf("unexpected result %+v", result)
	}

	polled, ok := task.Result()
	if !ok || polled != result {
		t.Fatalf("expected polled result to match waited result")
	}
}

func TestTaskDeadline(t *testing.T) {
	p := &gatedProber{release: make(chan struct{})}
	task := Start(context.Background(), p, "example.com", 20*time.Millisecond)

	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("task deadline not enforced")
	}

	result, _ := task.Result()
	wantFailure(t, result, KindTimeout)
}

func TestTaskWaitRespectsCallerContext(t *testing.T) {
	p := &gatedProber{release: make(chan struct{})}
	defer close(p.release)
	task := Start(context.Background(), p, "example.com", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := task.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
