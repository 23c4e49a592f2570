package service

import (
	"sync"
	"testing"
	"time"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

func TestToastQueue_ZeroDurationPersists(t *testing.T) {
	q := NewToastQueue()
	defer q.Close()

	q.Push("x", domain.SeveritySuccess, 0)

	got := q.List()
	if len(got) != 1 || got[0].Message != "x" || got[0].Severity != domain.SeveritySuccess {
		t.Fatalf("unexpected queue %+v", got)
	}
	time.Sleep(30 * time.Millisecond)
	if len(q.List()) != 1 {
		t.Fatalf("zero-duration toast must not expire")
	}
}

func TestToastQueue_Expires(t *testing.T) {
	q := NewToastQueue()
	defer q.Close()

	id := q.Push("y", domain.SeverityInfo, 50*time.Millisecond)
	if len(q.List()) != 1 {
		t.Fatalf("expected toast queued")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(q.List()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("toast %d still queued after its duration", id)
}

func TestToastQueue_NegativeDurationPersists(t *testing.T) {
	q := NewToastQueue()
	defer q.Close()

	q.Push("sticky", domain.SeverityWarning, -time.Second)
	time.Sleep(20 * time.Millisecond)
	if len(q.List()) != 1 {
		t.Fatalf("negative-duration toast must not expire")
	}
}

func TestToastQueue_IDsIncrease(t *testing.T) {
	q := NewToastQueue()
	defer q.Close()

	a := q.Push("a", domain.SeverityInfo, 0)
	b := q.Push("b", domain.SeverityInfo, 0)
	q.Remove(a)
	c := q.Push("c", domain.SeverityInfo, 0)

	if !(a < b && b < c) {
		t.Fatalf("ids not increasing: %d %d %d", a, b, c)
	}
	got := q.List()
	if len(got) != 2 || got[0].Message != "b" || got[1].Message != "c" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestToastQueue_RemoveIdempotent(t *testing.T) {
	q := NewToastQueue()
	defer q.Close()

	id := q.Push("once", domain.SeverityError, time.Hour)
	q.Remove(id)
	q.Remove(id)
	q.Remove(12345)

	if len(q.List()) != 0 {
		t.Fatalf("expected empty queue")
	}
}

func TestToastQueue_Helpers(t *testing.T) {
	q := NewToastQueue()
	defer q.Close()

	q.Success("saved")
	q.Error("failed")
	q.Warning("careful")
	q.Info("fyi")
	q.Push("plain", "", 0)

	want := []domain.Severity{
		domain.SeveritySuccess, domain.SeverityError, domain.SeverityWarning, domain.SeverityInfo, domain.SeverityInfo,
	}
	got := q.List()
	if len(got) != len(want) {
		t.Fatalf("expected %d toasts, got %d", len(want), len(got))
	}
	for i, toast := range got {
		if toast.Severity != want[i] {
			t.Fatalf("toast %d: want %s, got %s", i, want[i], toast.Severity)
		}
		if i < 4 && toast.Duration != domain.DefaultToastDuration {
			t.Fatalf("toast %d: expected default duration, got %s", i, toast.Duration)
		}
	}
}

func TestToastQueue_Subscribe(t *testing.T) {
	q := NewToastQueue()
	defer q.Close()

	var mu sync.Mutex
	var sizes []int
	cancel := q.Subscribe(func(ts []domain.Toast) {
		mu.Lock()
		sizes = append(sizes, len(ts))
		mu.Unlock()
	})

	id := q.Push("a", domain.SeverityInfo, 0)
	q.Remove(id)
	cancel()
	q.Push("b", domain.SeverityInfo, 0)

	mu.Lock()
	defer mu.Unlock()
	if len(sizes) != 2 || sizes[0] != 1 || sizes[1] != 0 {
		t.Fatalf("unexpected notifications %v", sizes)
	}
}

func TestToastQueue_CloseStopsExpiry(t *testing.T) {
	q := NewToastQueue()
	q.Push("z", domain.SeverityInfo, 20*time.Millisecond)
	q.Close()

	time.Sleep(50 * time.Millisecond)
	if len(q.List()) != 1 {
		t.Fatalf("closed queue must not expire toasts")
	}
}
