package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
)

// ConfirmBroker asks yes/no questions on a single confirmation surface,
// created on first use. Concurrent requests are queued and shown one at a
// time in arrival order; each caller gets the answer to its own question.
type ConfirmBroker struct {
	factory ports.SurfaceFactory
	log     zerolog.Logger

	mu      sync.Mutex
	surface ports.ConfirmSurface
	busy    bool
	waiting []chan struct{}
}

func NewConfirmBroker(factory ports.SurfaceFactory, log zerolog.Logger) *ConfirmBroker {
	return &ConfirmBroker{factory: factory, log: log}
}

// Confirm shows req and blocks until it is answered. If ctx ends while the
// request is still queued, it is dropped and ctx.Err() returned.
func (b *ConfirmBroker) Confirm(ctx context.Context, req domain.ConfirmRequest) (bool, error) {
	if err := b.acquire(ctx); err != nil {
		return false, err
	}
	defer b.release()

	s, err := b.surfaceFor()
	if err != nil {
		return false, err
	}
	return s.Prompt(ctx, req)
}

// ConfirmMessage is Confirm with only a message.
func (b *ConfirmBroker) ConfirmMessage(ctx context.Context, message string) (bool, error) {
	return b.Confirm(ctx, domain.ConfirmRequest{Message: message})
}

// Pending returns the number of requests waiting behind the visible one.
func (b *ConfirmBroker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.waiting)
}

func (b *ConfirmBroker) surfaceFor() (ports.ConfirmSurface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.surface != nil {
		return b.surface, nil
	}
	s, err := b.factory()
	if err != nil {
		return nil, fmt.Errorf("create confirm surface: %w", err)
	}
	b.log.Debug().Msg("confirm surface created")
	b.surface = s
	return s, nil
}

// acquire waits for the surface's turn.
func (b *ConfirmBroker) acquire(ctx context.Context) error {
	b.mu.Lock()
	if !b.busy {
		b.busy = true
		b.mu.Unlock()
		return nil
	}
	turn := make(chan struct{})
	b.waiting = append(b.waiting, turn)
	b.mu.Unlock()

	select {
	case <-turn:
		return nil
	case <-ctx.Done():
	}

	b.mu.Lock()
	for i, ch := range b.waiting {
		if ch == turn {
			b.waiting = append(b.waiting[:i], b.waiting[i+1:]...)
			b.mu.Unlock()
			return ctx.Err()
		}
	}
	b.mu.Unlock()
	// The turn was handed over while ctx ended; pass it on.
	b.release()
	return ctx.Err()
}

func (b *ConfirmBroker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.waiting) == 0 {
		b.busy = false
		return
	}
	next := b.waiting[0]
	b.waiting = b.waiting[1:]
	close(next)
}
