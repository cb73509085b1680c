package llm

import (
	"context"
	"sync"
	"testing"
)

type mockTransport struct {
	mu        sync.Mutex
	responses []GatewayResponse
	callCount int
}

func newMockTransport(responses ...GatewayResponse) *mockTransport {
	return &mockTransport{responses: responses}
}

func (m *mockTransport) Complete(ctx context.Context, model string, messages []Message, tools []ToolDescriptor, config CompletionConfig) (GatewayResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.callCount
	m.callCount++
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return GatewayResponse{Content: "default response"}, nil
}

func (m *mockTransport) CompleteJSON(ctx context.Context, model string, messages []Message, schema any, config CompletionConfig) (any, error) {
	return map[string]any{"test": "value"}, nil
}

func (m *mockTransport) CompleteStream(ctx context.Context, model string, messages []Message, tools []ToolDescriptor, config CompletionConfig) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk, 1)
	close(ch)
	return ch, nil
}

func (m *mockTransport) ListModels(ctx context.Context) ([]string, error) {
	return []string{"test-model"}, nil
}

func (m *mockTransport) CalculateEmbeddings(ctx context.Context, text string, model *string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

type mockTool struct {
	name   string
	result any
}

func (t *mockTool) Run(ctx context.Context, arguments map[string]any) (any, error) {
	return t.result, nil
}

func (t *mockTool) Descriptor() ToolDescriptor {
	return ToolDescriptor{Name: t.name, Description: "a mock tool"}
}

func (t *mockTool) Matches(name string) bool { return t.name == name }

func (t *mockTool) CloneIntoBox() Tool { return t }

func TestBroker_GenerateSimpleResponse(t *testing.T) {
	transport := newMockTransport(GatewayResponse{Content: "Hello, World!"})
	broker := NewBroker("test-model", transport)

	result, err := broker.Generate(context.Background(), []Message{UserMessage("Hi")}, nil, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result != "Hello, World!" {
		t.Fatalf("expected %q, got %q", "Hello, World!", result)
	}
}

func TestBroker_GenerateWithToolCall(t *testing.T) {
	transport := newMockTransport(
		GatewayResponse{ToolCalls: []ToolCall{{ID: "call_1", Name: "echo", Arguments: map[string]any{"arg": "hi"}}}},
		GatewayResponse{Content: "done"},
	)
	broker := NewBroker("test-model", transport)
	tool := &mockTool{name: "echo", result: "hi"}

	result, err := broker.Generate(context.Background(), []Message{UserMessage("run echo")}, []Tool{tool}, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result != "done" {
		t.Fatalf("expected %q, got %q", "done", result)
	}
}

func TestBroker_ToolCallWithoutToolsFallsBackToContent(t *testing.T) {
	transport := newMockTransport(GatewayResponse{
		Content:   "fallback",
		ToolCalls: []ToolCall{{Name: "echo"}},
	})
	broker := NewBroker("test-model", transport)

	result, err := broker.Generate(context.Background(), []Message{UserMessage("hi")}, nil, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result != "fallback" {
		t.Fatalf("expected fallback content, got %q", result)
	}
}

func TestGenerateObject(t *testing.T) {
	transport := newMockTransport()
	broker := NewBroker("test-model", transport)

	type testObject struct {
		Test string `json:"test"`
	}

	result, err := GenerateObject[testObject](context.Background(), broker, []Message{UserMessage("generate")}, nil)
	if err != nil {
		t.Fatalf("generate_object: %v", err)
	}
	if result.Test != "value" {
		t.Fatalf("expected test=value, got %q", result.Test)
	}
}
