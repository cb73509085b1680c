package solver

import (
	"sync"

	"github.com/svetzal/mojentic-go/pkg/safego"
	"go.uber.org/zap"
)

// SubscriberFunc receives solver lifecycle events.
type SubscriberFunc func(Event)

// EventEmitter fans lifecycle events out to subscribers without blocking
// the caller: each subscriber is invoked on its own goroutine, panic-isolated
// from both the emitter and its sibling subscribers.
type EventEmitter struct {
	mu          sync.Mutex
	subscribers []SubscriberFunc
	logger      *zap.Logger
}

func NewEventEmitter(logger *zap.Logger) *EventEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventEmitter{logger: logger}
}

func (e *EventEmitter) Subscribe(fn SubscriberFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

// Emit dispatches evt to every subscriber asynchronously.
func (e *EventEmitter) Emit(evt Event) {
	e.mu.Lock()
	subs := make([]SubscriberFunc, len(e.subscribers))
	copy(subs, e.subscribers)
	e.mu.Unlock()

	for _, sub := range subs {
		sub := sub
		safego.Go(e.logger, "solver-event-subscriber", func() {
			sub(evt)
		})
	}
}
