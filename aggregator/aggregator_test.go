package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/svetzal/mojentic-go/event"
)

type typedEvent struct {
	event.BaseEvent
	kind string
}

func newTypedEvent(kind, correlationID string) *typedEvent {
	e := &typedEvent{BaseEvent: event.NewBaseEvent("test"), kind: kind}
	if correlationID != "" {
		e.SetCorrelationID(correlationID)
	}
	return e
}

func (e *typedEvent) Type() string  { return e.kind }
func (e *typedEvent) Clone() event.Event { c := *e; return &c }

func TestAggregator_JoinAcrossTwoTypes(t *testing.T) {
	agg := NewAggregator([]string{"A", "B"})

	done := make(chan []event.Event, 1)
	go func() {
		events, err := agg.Wait(context.Background(), "x", 5*time.Second)
		if err != nil {
			t.Errorf("wait: %v", err)
			return
		}
		done <- events
	}()

	time.Sleep(20 * time.Millisecond)
	if _, err := agg.OnEvent(newTypedEvent("A", "x")); err != nil {
		t.Fatalf("on_event A: %v", err)
	}

	select {
	case <-done:
		t.Fatal("should not have resolved before B arrived")
	case <-time.After(30 * time.Millisecond):
	}

	if _, err := agg.OnEvent(newTypedEvent("B", "x")); err != nil {
		t.Fatalf("on_event B: %v", err)
	}

	select {
	case events := <-done:
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
	case <-time.After(time.Second):
		t.Fatal("wait did not resolve after both types arrived")
	}
}

func TestAggregator_WaitTimeout(t *testing.T) {
	agg := NewAggregator([]string{"A"})
	_, err := agg.Wait(context.Background(), "none", 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestAggregator_MissingCorrelationIDIsError(t *testing.T) {
	agg := NewAggregator([]string{"A"})
	_, err := agg.OnEvent(newTypedEvent("A", ""))
	if err == nil {
		t.Fatal("expected error for missing correlation id")
	}
}

func TestAggregator_FastPathWhenAlreadySatisfied(t *testing.T) {
	agg := NewAggregator([]string{"A"})
	if _, err := agg.OnEvent(newTypedEvent("A", "y")); err != nil {
		t.Fatalf("on_event: %v", err)
	}

	// OnEvent clears a buffer as soon as it is satisfied, so place an
	// already-satisfying buffer directly to exercise Wait's fast path.
	agg.mu.Lock()
	agg.buffers["y"] = []event.Event{newTypedEvent("A", "y")}
	agg.mu.Unlock()
	events, err := agg.Wait(context.Background(), "y", time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 buffered event, got %d", len(events))
	}
}

func TestAggregator_LateEventStartsFreshBuffer(t *testing.T) {
	agg := NewAggregator([]string{"A"})
	if _, err := agg.OnEvent(newTypedEvent("A", "z")); err != nil {
		t.Fatalf("on_event 1: %v", err)
	}
	// Buffer for "z" is now cleared since {A} was satisfied above, so the
	// late event is joined alone rather than alongside the first one.
	events, err := agg.OnEvent(newTypedEvent("A", "z"))
	if err != nil {
		t.Fatalf("on_event 2: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected fresh buffer with 1 event, got %d", len(events))
	}
}
