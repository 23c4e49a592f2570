package service

import (
	"sync"
	"time"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// ToastQueue is the ordered list of transient notifications. IDs increase
// monotonically for the lifetime of the queue.
type ToastQueue struct {
	mu        sync.Mutex
	toasts    []domain.Toast
	timers    map[int]*time.Timer
	nextID    int
	closed    bool
	listeners map[int]func([]domain.Toast)
	nextSub   int
}

func NewToastQueue() *ToastQueue {
	return &ToastQueue{
		timers:    make(map[int]*time.Timer),
		listeners: make(map[int]func([]domain.Toast)),
	}
}

// Push appends a toast and returns its id. A positive duration schedules its
// removal; zero or less keeps it until Remove. An empty severity means info.
func (q *ToastQueue) Push(message string, severity domain.Severity, duration time.Duration) int {
	if severity == "" {
		severity = domain.SeverityInfo
	}

	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.toasts = append(q.toasts, domain.Toast{ID: id, Message: message, Severity: severity, Duration: duration})
	if duration > 0 && !q.closed {
		q.timers[id] = time.AfterFunc(duration, func() { q.Remove(id) })
	}
	q.mu.Unlock()

	q.notify()
	return id
}

// Remove drops the toast with id. Unknown ids are ignored.
func (q *ToastQueue) Remove(id int) {
	q.mu.Lock()
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	idx := -1
	for i, t := range q.toasts {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	q.toasts = append(q.toasts[:idx], q.toasts[idx+1:]...)
	q.mu.Unlock()

	q.notify()
}

// List returns the queued toasts in push order.
func (q *ToastQueue) List() []domain.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.Toast(nil), q.toasts...)
}

func (q *ToastQueue) Success(message string) int {
	return q.Push(message, domain.SeveritySuccess, domain.DefaultToastDuration)
}

func (q *ToastQueue) Error(message string) int {
	return q.Push(message, domain.SeverityError, domain.DefaultToastDuration)
}

func (q *ToastQueue) Warning(message string) int {
	return q.Push(message, domain.SeverityWarning, domain.DefaultToastDuration)
}

func (q *ToastQueue) Info(message string) int {
	return q.Push(message, domain.SeverityInfo, domain.DefaultToastDuration)
}

// Subscribe registers fn to receive the queue after each change.
func (q *ToastQueue) Subscribe(fn func([]domain.Toast)) (cancel func()) {
	q.mu.Lock()
	id := q.nextSub
	q.nextSub++
	q.listeners[id] = fn
	q.mu.Unlock()
	return func() {
		q.mu.Lock()
		delete(q.listeners, id)
		q.mu.Unlock()
	}
}

// Close stops pending expiry timers. Queued toasts stay listed and later
// pushes no longer expire.
func (q *ToastQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
}

func (q *ToastQueue) notify() {
	q.mu.Lock()
	snapshot := append([]domain.Toast(nil), q.toasts...)
	fns := make([]func([]domain.Toast), 0, len(q.listeners))
	for _, fn := range q.listeners {
		fns = append(fns, fn)
	}
	q.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
