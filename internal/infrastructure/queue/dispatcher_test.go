package queue

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestDispatcher_PerKeyOrder(t *testing.T) {
	d := NewDispatcher(3, zerolog.Nop())
	d.Start(context.Background())

	var mu sync.Mutex
	got := map[string][]int{}
	for i := 0; i < 100; i++ {
		for _, key := range []string{"session", "toasts", "other"} {
			i, key := i, key
			d.Enqueue(key, func(context.Context) {
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
			})
		}
	}
	d.Stop()

	for key, seq := range got {
		if len(seq) != 100 {
			t.Fatalf("%s: expected 100 tasks, got %d", key, len(seq))
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("%s: out of order at %d: %v", key, i, seq[:i+1])
			}
		}
	}
}

func TestDispatcher_StopRejectsAndSurvivesPanic(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(context.Background())

	ran := make(chan struct{}, 1)
	d.Enqueue("k", func(context.Context) { panic("boom") })
	d.Enqueue("k", func(context.Context) { ran <- struct{}{} })
	d.Stop()

	select {
	case <-ran:
	default:
		t.Fatalf("task after a panic did not run")
	}
	if d.Enqueue("k", func(context.Context) {}) {
		t.Fatalf("enqueue after stop must be rejected")
	}
	d.Stop()
}

func TestDispatcher_Shard(t *testing.T) {
	d := NewDispatcher(0, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	if d.shardIndex("session") != d.shardIndex("session") {
		t.Fatalf("shard must be deterministic")
	}
}
