// Package aggregator provides a correlation-scoped join: it buffers
// events per correlation id until a required set of event types has
// all arrived, then releases every waiter blocked on that id.
package aggregator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/svetzal/mojentic-go/event"
	"github.com/svetzal/mojentic-go/pkg/mjerrors"
)

// OnSatisfiedFunc is an optional composition hook, invoked with the
// satisfying buffer once a correlation id's required types have all
// arrived. It mirrors the source crate's process_events override
// point: subclasses there return synthesized follow-up events, this
// library expresses the same idea as an injected callback since Go
// favors composition over inheritance.
type OnSatisfiedFunc func(events []event.Event) []event.Event

type waiter struct {
	ch chan []event.Event
}

// Aggregator implements event.Subscriber so it can be registered
// directly with a Router.
type Aggregator struct {
	required []string

	mu      sync.Mutex
	buffers map[string][]event.Event
	waiters map[string][]*waiter

	onSatisfied OnSatisfiedFunc
	logger      *zap.Logger
}

type Option func(*Aggregator)

func WithOnSatisfied(fn OnSatisfiedFunc) Option {
	return func(a *Aggregator) { a.onSatisfied = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator fixes the required type-set for the lifetime of the
// aggregator.
func NewAggregator(requiredTypes []string, opts ...Option) *Aggregator {
	a := &Aggregator{
		required: append([]string(nil), requiredTypes...),
		buffers:  make(map[string][]event.Event),
		waiters:  make(map[string][]*waiter),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ReceiveEvent implements event.Subscriber.
func (a *Aggregator) ReceiveEvent(ctx context.Context, evt event.Event) ([]event.Event, error) {
	satisfied, err := a.OnEvent(evt)
	if err != nil {
		return nil, err
	}
	if satisfied == nil {
		return nil, nil
	}
	if a.onSatisfied != nil {
		return a.onSatisfied(satisfied), nil
	}
	return nil, nil
}

// OnEvent appends evt to the buffer for its correlation id. If the
// buffer now contains at least one event of every required type, every
// pending waiter for that id is notified with an independent snapshot
// and the buffer entry is cleared; OnEvent returns that snapshot. If
// the required set is not yet satisfied, OnEvent returns nil.
//
// The buffer-and-waiter mutation happens as a single critical section
// so a satisfying event can never be lost to a waiter that registers
// between the satisfaction check and notifier registration.
func (a *Aggregator) OnEvent(evt event.Event) ([]event.Event, error) {
	if evt.CorrelationID() == "" {
		return nil, mjerrors.NewEventError("event missing correlation_id")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	id := evt.CorrelationID()
	a.buffers[id] = append(a.buffers[id], evt)

	if !hasAllRequiredTypes(a.buffers[id], a.required) {
		return nil, nil
	}

	snapshot := a.buffers[id]
	delete(a.buffers, id)

	pending := a.waiters[id]
	delete(a.waiters, id)
	for _, w := range pending {
		w.ch <- cloneSnapshot(snapshot)
	}

	return cloneSnapshot(snapshot), nil
}

// Wait blocks until the correlation id's buffer satisfies the required
// type-set, or until timeout elapses. If the buffer already satisfies
// the set at call time, Wait returns immediately.
func (a *Aggregator) Wait(ctx context.Context, correlationID string, timeout time.Duration) ([]event.Event, error) {
	a.mu.Lock()
	if hasAllRequiredTypes(a.buffers[correlationID], a.required) {
		snapshot := cloneSnapshot(a.buffers[correlationID])
		delete(a.buffers, correlationID)
		a.mu.Unlock()
		return snapshot, nil
	}

	w := &waiter{ch: make(chan []event.Event, 1)}
	a.waiters[correlationID] = append(a.waiters[correlationID], w)
	a.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case events := <-w.ch:
		return events, nil
	case <-timer.C:
		a.abandon(correlationID, w)
		return nil, mjerrors.NewTimeoutError("aggregator wait timed out")
	case <-ctx.Done():
		a.abandon(correlationID, w)
		return nil, mjerrors.NewTimeoutError("aggregator wait canceled")
	}
}

func (a *Aggregator) abandon(correlationID string, target *waiter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	waiters := a.waiters[correlationID]
	for i, w := range waiters {
		if w == target {
			a.waiters[correlationID] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(a.waiters[correlationID]) == 0 {
		delete(a.waiters, correlationID)
	}
}

func hasAllRequiredTypes(events []event.Event, required []string) bool {
	if len(events) == 0 {
		return false
	}
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		seen[e.Type()] = true
	}
	for _, t := range required {
		if !seen[t] {
			return false
		}
	}
	return true
}

func cloneSnapshot(events []event.Event) []event.Event {
	out := make([]event.Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}
