package llm

import "context"

// Transport is the abstract LLM completion endpoint the core consumes
// but does not implement. A reference implementation lives in
// transport/openaicompat.
type Transport interface {
	Complete(ctx context.Context, model string, messages []Message, tools []ToolDescriptor, config CompletionConfig) (GatewayResponse, error)
	CompleteJSON(ctx context.Context, model string, messages []Message, schema any, config CompletionConfig) (any, error)
	CompleteStream(ctx context.Context, model string, messages []Message, tools []ToolDescriptor, config CompletionConfig) (<-chan StreamChunk, error)
	ListModels(ctx context.Context) ([]string, error)
	CalculateEmbeddings(ctx context.Context, text string, model *string) ([]float32, error)
}

// ToolDescriptor is the public, transport-facing shape of a tool: its
// name, description, and JSON-Schema parameter object. Also used for
// dispatch matching by name in the broker's tool-call loop.
type ToolDescriptor struct {
	Name             string
	Description      string
	ParametersSchema map[string]any
}

// Tool is the interface a caller-supplied tool implements. Run
// executes synchronously and may fail; Descriptor advertises the tool
// to the LLM; Matches lets a tool claim alternate names; CloneIntoBox
// returns an independent handle suitable for registering the same tool
// with more than one ChatSession or solver without aliasing mutable
// state between them.
type Tool interface {
	Run(ctx context.Context, arguments map[string]any) (any, error)
	Descriptor() ToolDescriptor
	Matches(name string) bool
	CloneIntoBox() Tool
}
