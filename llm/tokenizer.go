package llm

// Tokenizer is the pluggable interface ChatSession uses to size
// messages for context-window eviction. A reference implementation
// backed by tiktoken-go lives in package tokenizer.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
	CountTokens(text string) int
}
