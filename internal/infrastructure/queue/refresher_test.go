package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

func TestEnqueue_JobsRun(t *testing.T) {
	r := NewRefresher(2, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	done := make(chan string, 3)
	for _, key := range []string{"leads?scope=pipeline", "products?page=1", "orders?scope=my"} {
		k := key
		r.Enqueue(ports.RefreshJob{Key: k, Run: func(context.Context) error {
			done <- k
			return nil
		}})
	}

	seen := map[string]bool{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 3 {
		select {
		case k := <-done:
			seen[k] = true
		case <-timeout:
			t.Fatalf("jobs not run, saw %v", seen)
		}
	}
}

func TestEnqueue_SameKeyStaysOrdered(t *testing.T) {
	r := NewRefresher(4, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	const n = 20
	var mu sync.Mutex
	var order []int
	done := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		seq := i
		r.Enqueue(ports.RefreshJob{Key: "leads?scope=pipeline", Run: func(context.Context) error {
			mu.Lock()
			order = append(order, seq)
			mu.Unlock()
			done <- struct{}{}
			return nil
		}})
	}

	timeout := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-timeout:
			t.Fatalf("only %d of %d jobs ran", i, n)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, seq := range order {
		if seq != i {
			t.Fatalf("same-key jobs ran out of order: %v", order)
		}
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	r := NewRefresher(4, zerolog.Nop())
	for _, key := range []string{"leads?scope=pipeline", "products?page=1", ""} {
		a, b := r.shardIndex(key), r.shardIndex(key)
		if a != b {
			t.Fatalf("shardIndex(%q) unstable: %d vs %d", key, a, b)
		}
		if a < 0 || a >= 4 {
			t.Fatalf("shardIndex(%q) = %d out of range", key, a)
		}
	}
}

func TestNewRefresher_DefaultsWorkerCount(t *testing.T) {
	r := NewRefresher(0, zerolog.Nop())
	if len(r.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(r.workers))
	}
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	r := NewRefresher(1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	// After cancellation enqueued jobs may never run; the refresher must
	// not panic or block the caller up to channel capacity.
	ran := make(chan struct{}, 1)
	time.Sleep(20 * time.Millisecond)
	r.Enqueue(ports.RefreshJob{Key: "k", Run: func(context.Context) error {
		ran <- struct{}{}
		return nil
	}})

	select {
	case <-ran:
		// A worker that drained the channel before exiting is acceptable.
	case <-time.After(100 * time.Millisecond):
	}
}
