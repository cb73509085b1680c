package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	jsonschemav5 "github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/svetzal/mojentic-go/pkg/mjerrors"
)

// BrokerOption configures a Broker at construction time.
type BrokerOption func(*Broker)

func WithBrokerLogger(logger *zap.Logger) BrokerOption {
	return func(b *Broker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMaxToolIterations imposes a recursion bound on the tool-call
// loop. The spec does not mandate a specific limit, but recommends
// one; this is disabled (0 = unbounded) by default.
func WithMaxToolIterations(n int) BrokerOption {
	return func(b *Broker) { b.maxToolIterations = n }
}

// Broker mediates between a caller and an LLM Transport, driving the
// tool-call loop described in the component design.
type Broker struct {
	model             string
	transport         Transport
	logger            *zap.Logger
	maxToolIterations int
}

func NewBroker(model string, transport Transport, opts ...BrokerOption) *Broker {
	b := &Broker{
		model:     model,
		transport: transport,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Generate drives the tool-call loop to completion and returns the
// final text response.
func (b *Broker) Generate(ctx context.Context, messages []Message, tools []Tool, config *CompletionConfig) (string, error) {
	cfg := DefaultCompletionConfig()
	if config != nil {
		cfg = *config
	}
	return b.generate(ctx, append([]Message(nil), messages...), tools, cfg, 0)
}

func (b *Broker) generate(ctx context.Context, messages []Message, tools []Tool, cfg CompletionConfig, depth int) (string, error) {
	descriptors := descriptorsOf(tools)
	resp, err := b.transport.Complete(ctx, b.model, messages, descriptors, cfg)
	if err != nil {
		return "", mjerrors.NewGatewayErrorWithCause("transport completion failed", err)
	}

	if len(resp.ToolCalls) == 0 {
		return resp.Content, nil
	}
	if len(tools) == 0 {
		return resp.Content, nil
	}

	if b.maxToolIterations > 0 && depth >= b.maxToolIterations {
		return "", mjerrors.NewToolError("tool-call recursion limit exceeded")
	}

	messages, err = b.executeToolCalls(ctx, messages, resp.ToolCalls, tools)
	if err != nil {
		return "", err
	}

	return b.generate(ctx, messages, tools, cfg, depth+1)
}

// executeToolCalls runs every tool call in resp against the registered
// tools, appending an assistant tool-call message and a tool-result
// message for each match. This processes every call in a single
// response rather than stopping after the first match (see DESIGN.md
// for the rationale).
func (b *Broker) executeToolCalls(ctx context.Context, messages []Message, calls []ToolCall, tools []Tool) ([]Message, error) {
	for _, call := range calls {
		tool := findTool(tools, call.Name)
		if tool == nil {
			b.logger.Warn("LLM requested unknown tool", zap.String("tool", call.Name))
			continue
		}

		output, err := tool.Run(ctx, call.Arguments)
		if err != nil {
			return nil, mjerrors.NewToolErrorWithCause(fmt.Sprintf("tool %q failed", call.Name), err)
		}

		encoded, err := json.Marshal(output)
		if err != nil {
			return nil, mjerrors.NewSerializationErrorWithCause("failed to encode tool result", err)
		}

		messages = append(messages,
			AssistantToolCallMessage([]ToolCall{call}),
			ToolResultMessage(string(encoded), []ToolCall{call}),
		)
	}
	return messages, nil
}

func findTool(tools []Tool, name string) Tool {
	for _, t := range tools {
		if t.Matches(name) {
			return t
		}
	}
	return nil
}

func descriptorsOf(tools []Tool) []ToolDescriptor {
	if len(tools) == 0 {
		return nil
	}
	out := make([]ToolDescriptor, len(tools))
	for i, t := range tools {
		out[i] = t.Descriptor()
	}
	return out
}

// GenerateObject requests a response conforming to a JSON schema
// derived from T, decodes it, and validates it against that schema
// before returning.
func GenerateObject[T any](ctx context.Context, b *Broker, messages []Message, config *CompletionConfig) (T, error) {
	var zero T
	cfg := DefaultCompletionConfig()
	if config != nil {
		cfg = *config
	}

	reflector := &jsonschema.Reflector{}
	schema := reflector.Reflect(zero)
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return zero, mjerrors.NewSerializationErrorWithCause("failed to encode schema", err)
	}
	var schemaValue any
	if err := json.Unmarshal(schemaBytes, &schemaValue); err != nil {
		return zero, mjerrors.NewSerializationErrorWithCause("failed to decode schema", err)
	}

	raw, err := b.transport.CompleteJSON(ctx, b.model, messages, schemaValue, cfg)
	if err != nil {
		return zero, mjerrors.NewGatewayErrorWithCause("transport structured completion failed", err)
	}

	rawBytes, err := json.Marshal(raw)
	if err != nil {
		return zero, mjerrors.NewSerializationErrorWithCause("failed to re-encode structured response", err)
	}

	compiled, err := jsonschemav5.CompileString("schema.json", string(schemaBytes))
	if err == nil {
		var forValidation any
		if err := json.Unmarshal(rawBytes, &forValidation); err == nil {
			if err := compiled.Validate(forValidation); err != nil {
				return zero, mjerrors.NewSerializationErrorWithCause("structured response failed schema validation", err)
			}
		}
	}

	var out T
	if err := json.Unmarshal(rawBytes, &out); err != nil {
		return zero, mjerrors.NewSerializationErrorWithCause("failed to decode structured response", err)
	}
	return out, nil
}

// GenerateStream streams content chunks, transparently executing any
// tool calls encountered mid-stream and continuing the stream with the
// follow-up call's output.
func (b *Broker) GenerateStream(ctx context.Context, messages []Message, tools []Tool, config *CompletionConfig) (<-chan StreamChunk, error) {
	cfg := DefaultCompletionConfig()
	if config != nil {
		cfg = *config
	}
	out := make(chan StreamChunk)
	go b.streamLoop(ctx, out, append([]Message(nil), messages...), tools, cfg, 0)
	return out, nil
}

func (b *Broker) streamLoop(ctx context.Context, out chan<- StreamChunk, messages []Message, tools []Tool, cfg CompletionConfig, depth int) {
	defer func() {
		if depth == 0 {
			close(out)
		}
	}()

	descriptors := descriptorsOf(tools)
	chunks, err := b.transport.CompleteStream(ctx, b.model, messages, descriptors, cfg)
	if err != nil {
		out <- StreamChunk{Err: mjerrors.NewGatewayErrorWithCause("transport stream failed", err)}
		return
	}

	var toolCalls []ToolCall
	for chunk := range chunks {
		if chunk.Err != nil {
			out <- chunk
			return
		}
		if len(chunk.ToolCalls) > 0 {
			toolCalls = append(toolCalls, chunk.ToolCalls...)
			continue
		}
		out <- chunk
	}

	if len(toolCalls) == 0 || len(tools) == 0 {
		return
	}

	messages, err = b.executeToolCalls(ctx, messages, toolCalls, tools)
	if err != nil {
		out <- StreamChunk{Err: err}
		return
	}

	b.streamLoopContinue(ctx, out, messages, tools, cfg, depth+1)
}

func (b *Broker) streamLoopContinue(ctx context.Context, out chan<- StreamChunk, messages []Message, tools []Tool, cfg CompletionConfig, depth int) {
	b.streamLoop(ctx, out, messages, tools, cfg, depth)
}
