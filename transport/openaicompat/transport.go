// Package openaicompat provides a reference llm.Transport implementation
// backed by an OpenAI-compatible chat completions API, grounded on the
// teacher's internal/infrastructure/llm/openai.Provider (tuned
// http.Transport, provider-prefixed model names, SSE-derived streaming)
// but issuing its calls through github.com/sashabaranov/go-openai rather
// than a hand-rolled HTTP client.
package openaicompat

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/svetzal/mojentic-go/llm"
	"github.com/svetzal/mojentic-go/pkg/mjerrors"
	"go.uber.org/zap"
)

// Transport is a Go-native OpenAI-compatible client satisfying
// llm.Transport. It works against OpenAI itself and any
// chat-completions-compatible endpoint (Ollama, vLLM, etc.) by pointing
// BaseURL at the target host.
type Transport struct {
	client *openai.Client
	logger *zap.Logger
}

// Config configures a Transport.
type Config struct {
	APIKey  string
	BaseURL string
	Logger  *zap.Logger
}

// New constructs a Transport with a connection-tuned http.Client, mirroring
// the teacher's dial/handshake/idle timeouts.
func New(cfg Config) *Transport {
	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   15 * time.Second,
			ResponseHeaderTimeout: 300 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   5,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = httpClient

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transport{client: openai.NewClientWithConfig(clientCfg), logger: logger}
}

func toAPIMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		apiMsg := openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
		for _, tc := range m.ToolCalls {
			args, _ := json.Marshal(tc.Arguments)
			apiMsg.ToolCalls = append(apiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(args),
				},
			})
			if m.Role == llm.RoleTool {
				apiMsg.ToolCallID = tc.ID
			}
		}
		out = append(out, apiMsg)
	}
	return out
}

func toAPITools(tools []llm.ToolDescriptor) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, td := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        td.Name,
				Description: td.Description,
				Parameters:  td.ParametersSchema,
			},
		})
	}
	return out
}

func (t *Transport) Complete(ctx context.Context, model string, messages []llm.Message, tools []llm.ToolDescriptor, config llm.CompletionConfig) (llm.GatewayResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toAPIMessages(messages),
		Tools:       toAPITools(tools),
		Temperature: float32(config.Temperature),
	}
	if config.MaxTokens > 0 {
		req.MaxTokens = config.MaxTokens
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return llm.GatewayResponse{}, mjerrors.NewGatewayErrorWithCause("openai-compatible completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return llm.GatewayResponse{}, mjerrors.NewGatewayError("openai-compatible response had no choices")
	}

	choice := resp.Choices[0]
	out := llm.GatewayResponse{Content: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return llm.GatewayResponse{}, mjerrors.NewSerializationErrorWithCause(
					fmt.Sprintf("decode tool call arguments for %s", tc.Function.Name), err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	return out, nil
}

func (t *Transport) CompleteJSON(ctx context.Context, model string, messages []llm.Message, schema any, config llm.CompletionConfig) (any, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, mjerrors.NewSerializationErrorWithCause("marshal response schema", err)
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toAPIMessages(messages),
		Temperature: float32(config.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "response",
				Schema: json.RawMessage(schemaJSON),
				Strict: true,
			},
		},
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mjerrors.NewGatewayErrorWithCause("openai-compatible structured completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, mjerrors.NewGatewayError("openai-compatible response had no choices")
	}

	var decoded any
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &decoded); err != nil {
		return nil, mjerrors.NewSerializationErrorWithCause("decode structured response", err)
	}
	return decoded, nil
}

func (t *Transport) CompleteStream(ctx context.Context, model string, messages []llm.Message, tools []llm.ToolDescriptor, config llm.CompletionConfig) (<-chan llm.StreamChunk, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toAPIMessages(messages),
		Tools:       toAPITools(tools),
		Temperature: float32(config.Temperature),
		Stream:      true,
	}

	stream, err := t.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, mjerrors.NewGatewayErrorWithCause("openai-compatible stream request failed", err)
	}

	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()

		toolCallsByIndex := map[int]*streamingToolCall{}
		var order []int

		flush := func() {
			calls := drainToolCalls(toolCallsByIndex, order)
			if len(calls) > 0 {
				out <- llm.StreamChunk{ToolCalls: calls}
			}
		}

		for {
			resp, err := stream.Recv()
			if err != nil {
				if err.Error() == "EOF" {
					flush()
					return
				}
				out <- llm.StreamChunk{Err: mjerrors.NewGatewayErrorWithCause("openai-compatible stream read failed", err)}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta
			if delta.Content != "" {
				out <- llm.StreamChunk{Content: delta.Content}
			}
			for _, tc := range delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				existing, ok := toolCallsByIndex[idx]
				if !ok {
					existing = &streamingToolCall{}
					toolCallsByIndex[idx] = existing
					order = append(order, idx)
				}
				if tc.ID != "" {
					existing.id = tc.ID
				}
				if tc.Function.Name != "" {
					existing.name = tc.Function.Name
				}
				// Argument fragments arrive incrementally across deltas and
				// must be concatenated, not replaced: a single tool call's
				// JSON arguments are typically split across many chunks.
				existing.args.WriteString(tc.Function.Arguments)
			}
		}
	}()
	return out, nil
}

// streamingToolCall accumulates one tool call's fields across the many
// stream deltas an OpenAI-compatible server splits it into.
type streamingToolCall struct {
	id   string
	name string
	args strings.Builder
}

// drainToolCalls finalizes the accumulated tool calls in delta-arrival
// (index) order, parsing each one's concatenated argument fragments as
// JSON. A tool call whose arguments never parse as JSON is still
// returned, with an empty argument map, rather than silently dropped.
func drainToolCalls(byIndex map[int]*streamingToolCall, order []int) []llm.ToolCall {
	calls := make([]llm.ToolCall, 0, len(order))
	for _, idx := range order {
		tc := byIndex[idx]
		args := map[string]any{}
		if raw := tc.args.String(); raw != "" {
			_ = json.Unmarshal([]byte(raw), &args)
		}
		calls = append(calls, llm.ToolCall{ID: tc.id, Name: tc.name, Arguments: args})
	}
	return calls
}

func (t *Transport) ListModels(ctx context.Context) ([]string, error) {
	resp, err := t.client.ListModels(ctx)
	if err != nil {
		return nil, mjerrors.NewGatewayErrorWithCause("list models failed", err)
	}
	out := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		out = append(out, m.ID)
	}
	return out, nil
}

func (t *Transport) CalculateEmbeddings(ctx context.Context, text string, model *string) ([]float32, error) {
	modelName := openai.SmallEmbedding3
	if model != nil {
		modelName = openai.EmbeddingModel(*model)
	}

	resp, err := t.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: modelName,
	})
	if err != nil {
		return nil, mjerrors.NewGatewayErrorWithCause("embeddings request failed", err)
	}
	if len(resp.Data) == 0 {
		return nil, mjerrors.NewGatewayError("embeddings response had no data")
	}
	return resp.Data[0].Embedding, nil
}

var _ llm.Transport = (*Transport)(nil)
