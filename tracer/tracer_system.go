package tracer

import (
	"sync/atomic"
	"time"
)

// System is the central coordination layer recording LLM calls, tool
// executions, and agent interactions into an EventStore.
type System struct {
	store   *EventStore
	enabled atomic.Bool
}

// NewSystem constructs a System. A nil store gets a fresh EventStore.
func NewSystem(store *EventStore, enabled bool) *System {
	if store == nil {
		store = NewEventStore(nil)
	}
	s := &System{store: store}
	s.enabled.Store(enabled)
	return s
}

// NewDefaultSystem returns a System backed by a fresh, enabled EventStore.
func NewDefaultSystem() *System {
	return NewSystem(nil, true)
}

func (s *System) IsEnabled() bool { return s.enabled.Load() }
func (s *System) Enable()         { s.enabled.Store(true) }
func (s *System) Disable()        { s.enabled.Store(false) }

func (s *System) RecordEvent(evt Event) {
	if !s.IsEnabled() {
		return
	}
	s.store.Store(evt)
}

func (s *System) RecordLlmCall(model string, messages []map[string]any, temperature float64, tools []map[string]any, source, correlationID string) {
	if !s.IsEnabled() {
		return
	}
	s.store.Store(LlmCallEvent{
		base:        base{timestamp: time.Now(), correlationID: correlationID, source: source},
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		Tools:       tools,
	})
}

func (s *System) RecordLlmResponse(model, content string, toolCalls []map[string]any, callDurationMs *float64, source, correlationID string) {
	if !s.IsEnabled() {
		return
	}
	s.store.Store(LlmResponseEvent{
		base:           base{timestamp: time.Now(), correlationID: correlationID, source: source},
		Model:          model,
		Content:        content,
		ToolCalls:      toolCalls,
		CallDurationMs: callDurationMs,
	})
}

func (s *System) RecordToolCall(toolName string, arguments map[string]any, result any, caller *string, callDurationMs *float64, source, correlationID string) {
	if !s.IsEnabled() {
		return
	}
	s.store.Store(ToolCallEvent{
		base:           base{timestamp: time.Now(), correlationID: correlationID, source: source},
		ToolName:       toolName,
		Arguments:      arguments,
		Result:         result,
		Caller:         caller,
		CallDurationMs: callDurationMs,
	})
}

func (s *System) RecordAgentInteraction(fromAgent, toAgent, eventType string, eventID *string, source, correlationID string) {
	if !s.IsEnabled() {
		return
	}
	s.store.Store(AgentInteractionEvent{
		base:      base{timestamp: time.Now(), correlationID: correlationID, source: source},
		FromAgent: fromAgent,
		ToAgent:   toAgent,
		EventType: eventType,
		EventID:   eventID,
	})
}

func (s *System) GetEventSummaries(start, end *int64, filter FilterFunc) []string {
	return s.store.GetEventSummaries(start, end, filter)
}

func (s *System) GetLastNSummaries(n int, filter FilterFunc) []string {
	return s.store.GetLastNSummaries(n, filter)
}

func (s *System) CountEvents(start, end *int64, filter FilterFunc) int {
	return s.store.CountEvents(start, end, filter)
}

func (s *System) Clear()      { s.store.Clear() }
func (s *System) Len() int    { return s.store.Len() }
func (s *System) IsEmpty() bool { return s.store.IsEmpty() }

var _ Tracer = (*System)(nil)
