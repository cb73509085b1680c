package tracer

// NullTracer discards every recording call and answers every query with
// an empty result. It exists so client code never has to branch on
// whether tracing is configured.
type NullTracer struct{}

func NewNullTracer() *NullTracer { return &NullTracer{} }

func (NullTracer) RecordEvent(Event) {}
func (NullTracer) RecordLlmCall(string, []map[string]any, float64, []map[string]any, string, string) {
}
func (NullTracer) RecordLlmResponse(string, string, []map[string]any, *float64, string, string) {}
func (NullTracer) RecordToolCall(string, map[string]any, any, *string, *float64, string, string)  {}
func (NullTracer) RecordAgentInteraction(string, string, string, *string, string, string)          {}
func (NullTracer) GetEventSummaries(*int64, *int64, FilterFunc) []string                           { return nil }
func (NullTracer) GetLastNSummaries(int, FilterFunc) []string                                      { return nil }
func (NullTracer) CountEvents(*int64, *int64, FilterFunc) int                                       { return 0 }
func (NullTracer) Clear()                                                                          {}
func (NullTracer) Enable()                                                                          {}
func (NullTracer) Disable()                                                                         {}
func (NullTracer) IsEnabled() bool                                                                  { return false }
func (NullTracer) Len() int                                                                         { return 0 }
func (NullTracer) IsEmpty() bool                                                                    { return true }

var _ Tracer = (*NullTracer)(nil)
