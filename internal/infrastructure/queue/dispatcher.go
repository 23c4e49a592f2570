// Package queue runs notification work off the caller's goroutine while
// keeping the order of tasks that share a key.
package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Task is one unit of work.
type Task func(ctx context.Context)

// Dispatcher routes tasks to a fixed set of workers by hashing their key, so
// tasks with the same key run one at a time in enqueue order.
type Dispatcher struct {
	workers []chan Task
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Task, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Task, channelBuffer)
	}
	return d
}

// Start launches the workers. They stop when ctx is cancelled or after Stop
// has drained their queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands task to the worker owning key. It blocks only when that
// worker's buffer is full, and reports false once the dispatcher is stopped.
func (d *Dispatcher) Enqueue(key string, task Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	d.workers[d.shardIndex(key)] <- task
	return true
}

// Stop rejects new tasks and waits for queued ones to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Task) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-ch:
			if !ok {
				return
			}
			d.run(ctx, id, task)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Int("worker_id", id).Msg("task panicked")
		}
	}()
	task(ctx)
}
