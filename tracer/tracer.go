package tracer

// Tracer is the narrow sink every recording call in the system writes
// through. NullTracer is the required no-op default so call sites never
// need to branch on whether tracing is configured.
type Tracer interface {
	RecordEvent(evt Event)
	RecordLlmCall(model string, messages []map[string]any, temperature float64, tools []map[string]any, source, correlationID string)
	RecordLlmResponse(model, content string, toolCalls []map[string]any, callDurationMs *float64, source, correlationID string)
	RecordToolCall(toolName string, arguments map[string]any, result any, caller *string, callDurationMs *float64, source, correlationID string)
	RecordAgentInteraction(fromAgent, toAgent, eventType string, eventID *string, source, correlationID string)
	GetEventSummaries(start, end *int64, filter FilterFunc) []string
	GetLastNSummaries(n int, filter FilterFunc) []string
	CountEvents(start, end *int64, filter FilterFunc) int
	Clear()
	Enable()
	Disable()
	IsEnabled() bool
	Len() int
	IsEmpty() bool
}
