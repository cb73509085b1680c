// Package tokenizer provides concrete llm.Tokenizer implementations.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Cl100kTokenizer implements llm.Tokenizer using the cl100k_base encoding
// (used by GPT-3.5/GPT-4-era models), backed by tiktoken-go.
type Cl100kTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewCl100kTokenizer loads the cl100k_base encoding. Returns an error if
// the encoding table cannot be loaded.
func NewCl100kTokenizer() (*Cl100kTokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load cl100k_base: %w", err)
	}
	return &Cl100kTokenizer{enc: enc}, nil
}

func (t *Cl100kTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *Cl100kTokenizer) Decode(ids []int) string {
	return t.enc.Decode(ids)
}

func (t *Cl100kTokenizer) CountTokens(text string) int {
	return len(t.Encode(text))
}
