package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
)

// scriptedSurface answers each prompt with whatever the test sends on answers.
type scriptedSurface struct {
	mu      sync.Mutex
	shown   []domain.ConfirmRequest
	prompts chan domain.ConfirmRequest
	answers chan bool
}

func newScriptedSurface() *scriptedSurface {
	return &scriptedSurface{
		prompts: make(chan domain.ConfirmRequest, 16),
		answers: make(chan bool),
	}
}

func (s *scriptedSurface) Prompt(ctx context.Context, req domain.ConfirmRequest) (bool, error) {
	s.mu.Lock()
	s.shown = append(s.shown, req)
	s.mu.Unlock()
	s.prompts <- req
	select {
	case ok := <-s.answers:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func countingFactory(s ports.ConfirmSurface, created *atomic.Int32) ports.SurfaceFactory {
	return func() (ports.ConfirmSurface, error) {
		created.Add(1)
		return s, nil
	}
}

func waitPrompt(t *testing.T, s *scriptedSurface) domain.ConfirmRequest {
	t.Helper()
	select {
	case req := <-s.prompts:
		return req
	case <-time.After(2 * time.Second):
		t.Fatalf("no prompt shown")
		return domain.ConfirmRequest{}
	}
}

func TestConfirmBroker_LazySingleSurface(t *testing.T) {
	surface := newScriptedSurface()
	var created atomic.Int32
	b := NewConfirmBroker(countingFactory(surface, &created), zerolog.Nop())

	if created.Load() != 0 {
		t.Fatalf("surface must not exist before first use")
	}

	for _, want := range []bool{true, false} {
		done := make(chan bool)
		go func() {
			ok, _ := b.ConfirmMessage(context.Background(), "delete project?")
			done <- ok
		}()
		if req := waitPrompt(t, surface); req.Message != "delete project?" || req.Title != "" {
			t.Fatalf("unexpected request %+v", req)
		}
		surface.answers <- want
		if got := <-done; got != want {
			t.Fatalf("want %v, got %v", want, got)
		}
	}

	if created.Load() != 1 {
		t.Fatalf("expected one surface, created %d", created.Load())
	}
}

func TestConfirmBroker_ConcurrentRequestsAnsweredInOrder(t *testing.T) {
	surface := newScriptedSurface()
	var created atomic.Int32
	b := NewConfirmBroker(countingFactory(surface, &created), zerolog.Nop())

	type result struct {
		msg string
		ok  bool
	}
	results := make(chan result, 2)
	ask := func(msg string) {
		ok, err := b.Confirm(context.Background(), domain.ConfirmRequest{Title: "Confirm", Message: msg})
		if err != nil {
			t.Errorf("confirm %q: %v", msg, err)
		}
		results <- result{msg, ok}
	}

	go ask("first")
	if req := waitPrompt(t, surface); req.Message != "first" {
		t.Fatalf("expected first prompt, got %q", req.Message)
	}
	go ask("second")

	deadline := time.Now().Add(2 * time.Second)
	for b.Pending() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("second request never queued")
		}
		time.Sleep(5 * time.Millisecond)
	}

	surface.answers <- true
	if r := <-results; r.msg != "first" || !r.ok {
		t.Fatalf("unexpected result %+v", r)
	}

	if req := waitPrompt(t, surface); req.Message != "second" {
		t.Fatalf("expected second prompt, got %q", req.Message)
	}
	surface.answers <- false
	if r := <-results; r.msg != "second" || r.ok {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestConfirmBroker_CancelWhileQueued(t *testing.T) {
	surface := newScriptedSurface()
	var created atomic.Int32
	b := NewConfirmBroker(countingFactory(surface, &created), zerolog.Nop())

	first := make(chan bool)
	go func() {
		ok, _ := b.ConfirmMessage(context.Background(), "first")
		first <- ok
	}()
	waitPrompt(t, surface)

	ctx, cancel := context.WithCancel(context.Background())
	queued := make(chan error)
	go func() {
		_, err := b.ConfirmMessage(ctx, "abandoned")
		queued <- err
	}()
	for b.Pending() != 1 {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-queued; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if b.Pending() != 0 {
		t.Fatalf("cancelled request must leave the queue")
	}

	surface.answers <- true
	<-first

	third := make(chan bool)
	go func() {
		ok, _ := b.ConfirmMessage(context.Background(), "third")
		third <- ok
	}()
	if req := waitPrompt(t, surface); req.Message != "third" {
		t.Fatalf("abandoned prompt was shown: %q", req.Message)
	}
	surface.answers <- true
	<-third
}

func TestConfirmBroker_FactoryError(t *testing.T) {
	b := NewConfirmBroker(func() (ports.ConfirmSurface, error) {
		return nil, errors.New("no display")
	}, zerolog.Nop())

	ok, err := b.ConfirmMessage(context.Background(), "sure?")
	if ok || err == nil {
		t.Fatalf("expected failure, got %v %v", ok, err)
	}
	// The turn is released, so a second call fails the same way instead of blocking.
	if _, err := b.ConfirmMessage(context.Background(), "sure?"); err == nil {
		t.Fatalf("expected failure")
	}
}
