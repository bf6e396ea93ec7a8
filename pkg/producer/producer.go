package producer

import (
	"context"
	"fmt"
	"sync"
)

// Completion reports the outcome of one dispatched work brief.
type Completion struct {
	OrderID     string
	Success     bool
	ArtifactRef string
}

// Brief is what the production side needs to start work.
type Brief struct {
	OrderID     string
	Title       string
	Description string
}

// Producer hands work briefs to the production side and streams back
// completions. Submit must not block on the work itself.
type Producer interface {
	Submit(ctx context.Context, brief *Brief) error
	Completions() <-chan Completion
}

// Local is a channel-backed producer for single-binary deployments. Work is
// completed out of band through Complete, usually by an operator endpoint.
type Local struct {
	mu          sync.Mutex
	pending     map[string]*Brief
	completions chan Completion
}

func NewLocal() *Local {
	return &Local{
		pending:     map[string]*Brief{},
		completions: make(chan Completion, 64),
	}
}

func (l *Local) Submit(ctx context.Context, brief *Brief) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.pending[brief.OrderID]; ok {
		return fmt.Errorf("brief %v already submitted", brief.OrderID)
	}
	l.pending[brief.OrderID] = brief
	return nil
}

func (l *Local) Completions() <-chan Completion {
	return l.completions
}

// Complete resolves a pending brief and emits its completion.
func (l *Local) Complete(orderID string, success bool, artifactRef string) error {
	l.mu.Lock()
	_, ok := l.pending[orderID]
	if ok {
		delete(l.pending, orderID)
	}
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("no pending brief %v", orderID)
	}
	l.completions <- Completion{
		OrderID:     orderID,
		Success:     success,
		ArtifactRef: artifactRef,
	}
	return nil
}
