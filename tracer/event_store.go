package tracer

import "sync"

// Callback is invoked with each event just before it is stored.
type Callback func(Event)

// EventStore is thread-safe storage for tracer events with support for a
// store callback, time-range filtering, and custom predicates.
type EventStore struct {
	mu       sync.Mutex
	events   []Event
	onStore  Callback
}

// NewEventStore constructs an EventStore. onStore may be nil.
func NewEventStore(onStore Callback) *EventStore {
	return &EventStore{onStore: onStore}
}

// Store appends evt, invoking the store callback first if configured.
func (s *EventStore) Store(evt Event) {
	if s.onStore != nil {
		s.onStore(evt)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func matches(e Event, start, end *int64, filter FilterFunc) bool {
	ts := e.Timestamp().Unix()
	if start != nil && ts < *start {
		return false
	}
	if end != nil && ts > *end {
		return false
	}
	if filter != nil && !filter(e) {
		return false
	}
	return true
}

// CountEvents counts stored events matching the given filters. Any of
// start, end, filter may be nil to skip that criterion.
func (s *EventStore) CountEvents(start, end *int64, filter FilterFunc) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, e := range s.events {
		if matches(e, start, end, filter) {
			count++
		}
	}
	return count
}

// GetEventSummaries returns printable summaries of events matching the
// given filters, in storage order.
func (s *EventStore) GetEventSummaries(start, end *int64, filter FilterFunc) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0)
	for _, e := range s.events {
		if matches(e, start, end, filter) {
			out = append(out, e.PrintableSummary())
		}
	}
	return out
}

// GetLastNSummaries returns the last n summaries (after filtering), in
// storage order. If n exceeds the filtered count, all of them are returned.
func (s *EventStore) GetLastNSummaries(n int, filter FilterFunc) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		if filter == nil || filter(e) {
			filtered = append(filtered, e)
		}
	}
	start := 0
	if n < len(filtered) {
		start = len(filtered) - n
	}
	out := make([]string, 0, len(filtered)-start)
	for _, e := range filtered[start:] {
		out = append(out, e.PrintableSummary())
	}
	return out
}

// Clear removes all stored events.
func (s *EventStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// Len returns the number of stored events.
func (s *EventStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// IsEmpty reports whether the store holds no events.
func (s *EventStore) IsEmpty() bool {
	return s.Len() == 0
}
