package event

import "context"

// Subscriber is the Go analogue of the source crate's BaseAsyncAgent:
// it receives one event and may emit zero or more new events in
// response. The dispatcher delivers events to a subscriber one at a
// time from its drain goroutine; implementations that are also called
// from other goroutines (as Aggregator is, alongside Wait) must be safe
// for concurrent use.
type Subscriber interface {
	ReceiveEvent(ctx context.Context, evt Event) ([]Event, error)
}

// SubscriberFunc adapts a plain function to the Subscriber interface.
type SubscriberFunc func(ctx context.Context, evt Event) ([]Event, error)

func (f SubscriberFunc) ReceiveEvent(ctx context.Context, evt Event) ([]Event, error) {
	return f(ctx, evt)
}
