package service

import (
	"sync"

	"github.com/FruitsAI/orange-client/internal/core/domain"
)

// Navigator holds the current location. Every transition, the initial one
// included, goes through the guard.
type Navigator struct {
	guard *NavigationGuard

	mu      sync.RWMutex
	current domain.NavigationDecision
	history []domain.NavigationDecision
	started bool
}

func NewNavigator(guard *NavigationGuard) *Navigator {
	return &Navigator{guard: guard}
}

// Start resolves the initial location, typically whatever was entered
// directly. Calling it again restarts the history.
func (n *Navigator) Start(initial string) domain.NavigationDecision {
	d := n.guard.Resolve(initial)
	n.mu.Lock()
	n.current = d
	n.history = []domain.NavigationDecision{d}
	n.started = true
	n.mu.Unlock()
	return d
}

// Navigate guards and commits a transition to path.
func (n *Navigator) Navigate(path string) domain.NavigationDecision {
	d := n.guard.Resolve(path)
	n.mu.Lock()
	n.current = d
	n.history = append(n.history, d)
	n.started = true
	n.mu.Unlock()
	return d
}

// Redirect implements ports.Locator.
func (n *Navigator) Redirect(path string) {
	n.Navigate(path)
}

// Current returns the committed location, or "" before the first transition.
func (n *Navigator) Current() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if !n.started {
		return ""
	}
	return n.current.Target
}

// Decision returns the decision that produced the current location.
func (n *Navigator) Decision() domain.NavigationDecision {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// History returns every committed transition in order.
func (n *Navigator) History() []domain.NavigationDecision {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]domain.NavigationDecision(nil), n.history...)
}
