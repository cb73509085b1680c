package llm

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SizedMessage pairs a Message with the token length it contributed to
// the session at insertion time.
type SizedMessage struct {
	Message     Message
	TokenLength int
}

const defaultSystemPrompt = "You are a helpful assistant."
const defaultMaxContext = 32768

// ChatSessionBuilder configures a ChatSession before construction.
type ChatSessionBuilder struct {
	broker       *Broker
	systemPrompt string
	tools        []Tool
	maxContext   int
	temperature  float64
	tokenizer    Tokenizer
	logger       *zap.Logger
}

func NewChatSessionBuilder(broker *Broker) *ChatSessionBuilder {
	return &ChatSessionBuilder{
		broker:       broker,
		systemPrompt: defaultSystemPrompt,
		maxContext:   defaultMaxContext,
		temperature:  1.0,
		logger:       zap.NewNop(),
	}
}

func (b *ChatSessionBuilder) SystemPrompt(prompt string) *ChatSessionBuilder {
	b.systemPrompt = prompt
	return b
}

func (b *ChatSessionBuilder) Tools(tools []Tool) *ChatSessionBuilder {
	b.tools = tools
	return b
}

func (b *ChatSessionBuilder) MaxContext(n int) *ChatSessionBuilder {
	b.maxContext = n
	return b
}

func (b *ChatSessionBuilder) Temperature(t float64) *ChatSessionBuilder {
	b.temperature = t
	return b
}

func (b *ChatSessionBuilder) WithTokenizer(t Tokenizer) *ChatSessionBuilder {
	b.tokenizer = t
	return b
}

func (b *ChatSessionBuilder) WithLogger(logger *zap.Logger) *ChatSessionBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

func (b *ChatSessionBuilder) Build() *ChatSession {
	tokenizer := b.tokenizer
	if tokenizer == nil {
		tokenizer = noopTokenizer{}
	}

	s := &ChatSession{
		broker:      b.broker,
		tools:       b.tools,
		maxContext:  b.maxContext,
		temperature: b.temperature,
		tokenizer:   tokenizer,
		logger:      b.logger,
	}
	systemLen := 0
	if b.systemPrompt != "" {
		systemLen = tokenizer.CountTokens(b.systemPrompt)
	}
	s.messages = []SizedMessage{{
		Message:     SystemMessage(b.systemPrompt),
		TokenLength: systemLen,
	}}
	return s
}

// noopTokenizer is used only when a caller constructs a ChatSession
// without supplying one; callers are expected to provide the
// tokenizer package's Cl100kTokenizer in real use.
type noopTokenizer struct{}

func (noopTokenizer) Encode(text string) []int   { return []int{len(text)} }
func (noopTokenizer) Decode(ids []int) string     { return "" }
func (noopTokenizer) CountTokens(text string) int { return len(text) }

// ChatSession maintains a token-budget-managed message log over a
// Broker, evicting the oldest non-system messages once the budget is
// exceeded.
type ChatSession struct {
	broker      *Broker
	tools       []Tool
	maxContext  int
	temperature float64
	tokenizer   Tokenizer
	logger      *zap.Logger

	mu       sync.Mutex
	messages []SizedMessage
}

// Send appends a user message, invokes the broker, appends the
// assistant response, and returns it.
func (s *ChatSession) Send(ctx context.Context, query string) (string, error) {
	s.insert(UserMessage(query))

	cfg := CompletionConfig{Temperature: s.temperature, NumCtx: s.maxContext, MaxTokens: DefaultCompletionConfig().MaxTokens}
	response, err := s.broker.Generate(ctx, s.snapshotMessages(), s.tools, &cfg)
	if err != nil {
		return "", err
	}

	s.ensureAllMessagesAreSized()
	s.insert(AssistantMessage(response))
	return response, nil
}

// SendStream appends a user message before yielding any chunks, then
// streams the broker's output, and appends exactly one assistant
// message containing the concatenation of all chunks once the stream
// is exhausted without error. If the stream errors, no assistant
// message is appended.
func (s *ChatSession) SendStream(ctx context.Context, query string) (<-chan StreamChunk, error) {
	s.insert(UserMessage(query))

	cfg := CompletionConfig{Temperature: s.temperature, NumCtx: s.maxContext, MaxTokens: DefaultCompletionConfig().MaxTokens}
	upstream, err := s.broker.GenerateStream(ctx, s.snapshotMessages(), s.tools, &cfg)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		var accumulated strings.Builder
		for chunk := range upstream {
			if chunk.Err != nil {
				out <- chunk
				return
			}
			accumulated.WriteString(chunk.Content)
			out <- chunk
		}
		s.ensureAllMessagesAreSized()
		s.insert(AssistantMessage(accumulated.String()))
	}()
	return out, nil
}

// Messages returns a read-only snapshot of the current message log.
func (s *ChatSession) Messages() []SizedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SizedMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// TotalTokens sums the token length of every message currently in the
// log.
func (s *ChatSession) TotalTokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, m := range s.messages {
		total += m.TokenLength
	}
	return total
}

func (s *ChatSession) snapshotMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Message
	}
	return out
}

// insert appends msg, sizes it, and evicts from index 1 onward (the
// system prompt at index 0 is never evicted) until the total is
// within budget or only the system prompt remains.
func (s *ChatSession) insert(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	length := 0
	if msg.HasContent {
		length = s.tokenizer.CountTokens(msg.Content)
	}
	s.messages = append(s.messages, SizedMessage{Message: msg, TokenLength: length})

	total := s.totalLocked()
	for total > s.maxContext && len(s.messages) > 1 {
		removed := s.messages[1]
		s.messages = append(s.messages[:1], s.messages[2:]...)
		total -= removed.TokenLength
	}
}

func (s *ChatSession) totalLocked() int {
	total := 0
	for _, m := range s.messages {
		total += m.TokenLength
	}
	return total
}

// ensureAllMessagesAreSized recomputes token lengths for any message
// whose content became available after insertion (e.g. an
// assistant-with-tool-calls message that is later followed by tool
// output sharing its slot is not retroactively resized here; this
// pass exists for transports that backfill content on messages
// originally inserted with TokenLength 0).
func (s *ChatSession) ensureAllMessagesAreSized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.TokenLength == 0 && m.Message.HasContent && m.Message.Content != "" {
			s.messages[i].TokenLength = s.tokenizer.CountTokens(m.Message.Content)
		}
	}
}
