package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestPool(cfg Config) *Pool {
	return NewPool(cfg, zerolog.Nop())
}

func TestPoolRunsSubmittedTasks(t *testing.T) {
	pool := newTestPool(Config{WorkerCount: 2, QueueSize: 8})
	pool.Start(context.Background())

	var count int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := pool.Submit(Task{
			CorrelationID: "t",
			Run: func(ctx context.Context) error {
				defer wg.Done()
				atomic.AddInt32(&count, 1)
				return nil
			},
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	wg.Wait()
	pool.Stop()

	if got := atomic.LoadInt32(&count); got != 5 {
		t.Errorf("ran %d tasks, want 5", got)
	}
}

func TestPoolSurvivesPanics(t *testing.T) {
	pool := newTestPool(Config{WorkerCount: 1, QueueSize: 4})
	pool.Start(context.Background())

	done := make(chan struct{})
	if err := pool.Submit(Task{CorrelationID: "boom", Run: func(ctx context.Context) error {
		panic("handler bug")
	}}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := pool.Submit(Task{CorrelationID: "after", Run: func(ctx context.Context) error {
		close(done)
		return nil
	}}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover from panic")
	}
	pool.Stop()
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	pool := newTestPool(Config{WorkerCount: 1, QueueSize: 1})
	// Not started: nothing drains the queue.

	if err := pool.Submit(Task{Run: func(ctx context.Context) error { return nil }}); err != nil {
		t.Fatalf("first submit should fit: %v", err)
	}
	err := pool.Submit(Task{Run: func(ctx context.Context) error { return nil }})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestPoolRejectsAfterStop(t *testing.T) {
	pool := newTestPool(Config{WorkerCount: 1, QueueSize: 4})
	pool.Start(context.Background())
	pool.Stop()

	err := pool.Submit(Task{Run: func(ctx context.Context) error { return nil }})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull after stop, got %v", err)
	}
}

func TestPoolSubmitDuringStopDoesNotPanic(t *testing.T) {
	pool := newTestPool(Config{WorkerCount: 2, QueueSize: 4})
	pool.Start(context.Background())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-stop
			for j := 0; j < 100; j++ {
				// Either accepted or ErrQueueFull; never a send on a
				// closed channel.
				_ = pool.Submit(Task{Run: func(ctx context.Context) error { return nil }})
			}
		}()
	}

	close(stop)
	pool.Stop()
	wg.Wait()

	err := pool.Submit(Task{Run: func(ctx context.Context) error { return nil }})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull after stop, got %v", err)
	}
}

func TestPoolAppliesTaskTimeout(t *testing.T) {
	pool := newTestPool(Config{WorkerCount: 1, QueueSize: 1, TaskTimeout: 50 * time.Millisecond})
	pool.Start(context.Background())

	expired := make(chan bool, 1)
	if err := pool.Submit(Task{Run: func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			expired <- true
		case <-time.After(2 * time.Second):
			expired <- false
		}
		return ctx.Err()
	}}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case ok := <-expired:
		if !ok {
			t.Error("task context did not expire")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("task never observed timeout")
	}
	pool.Stop()
}
