package tracer

import "testing"

func TestSystem_DefaultIsEnabled(t *testing.T) {
	sys := NewDefaultSystem()
	if !sys.IsEnabled() {
		t.Fatal("expected default system to be enabled")
	}
	if sys.Len() != 0 {
		t.Fatalf("expected empty system, got %d events", sys.Len())
	}
}

func TestSystem_EnableDisable(t *testing.T) {
	sys := NewDefaultSystem()
	sys.Disable()
	if sys.IsEnabled() {
		t.Fatal("expected disabled")
	}
	sys.Enable()
	if !sys.IsEnabled() {
		t.Fatal("expected enabled")
	}
}

func TestSystem_RecordLlmCall(t *testing.T) {
	sys := NewDefaultSystem()
	sys.RecordLlmCall("llama3.2", nil, 0.7, nil, "test", "corr-123")
	if sys.Len() != 1 {
		t.Fatalf("expected 1 event, got %d", sys.Len())
	}
}

func TestSystem_DisabledDoesNotRecord(t *testing.T) {
	sys := NewSystem(nil, false)
	sys.RecordLlmCall("llama3.2", nil, 1.0, nil, "test", "corr-123")
	if sys.Len() != 0 {
		t.Fatalf("expected 0 events while disabled, got %d", sys.Len())
	}
}

func TestSystem_Clear(t *testing.T) {
	sys := NewDefaultSystem()
	sys.RecordLlmCall("llama3.2", nil, 1.0, nil, "test", "corr-123")
	sys.Clear()
	if !sys.IsEmpty() {
		t.Fatal("expected empty after clear")
	}
}

func TestSystem_GetLastNSummaries(t *testing.T) {
	sys := NewDefaultSystem()
	for i := 0; i < 5; i++ {
		sys.RecordLlmCall("llama3.2", nil, 1.0, nil, "test", "corr")
	}
	summaries := sys.GetLastNSummaries(2, nil)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
}

func TestNullTracer_NeverRecords(t *testing.T) {
	nt := NewNullTracer()
	nt.RecordLlmCall("llama3.2", nil, 0.7, nil, "test", "corr-123")
	nt.RecordLlmResponse("llama3.2", "hi", nil, nil, "test", "corr-456")
	if nt.IsEnabled() {
		t.Fatal("null tracer must report disabled")
	}
	if nt.Len() != 0 || !nt.IsEmpty() {
		t.Fatal("null tracer must never store events")
	}
	if len(nt.GetEventSummaries(nil, nil, nil)) != 0 {
		t.Fatal("null tracer summaries must be empty")
	}
}
