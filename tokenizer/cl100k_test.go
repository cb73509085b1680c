package tokenizer

import "testing"

func TestCl100kTokenizer_RoundTrip(t *testing.T) {
	tok, err := NewCl100kTokenizer()
	if err != nil {
		t.Fatalf("new tokenizer: %v", err)
	}

	text := "hello, world"
	ids := tok.Encode(text)
	if len(ids) == 0 {
		t.Fatal("expected at least one token")
	}
	if decoded := tok.Decode(ids); decoded != text {
		t.Fatalf("expected round trip %q, got %q", text, decoded)
	}
	if count := tok.CountTokens(text); count != len(ids) {
		t.Fatalf("expected CountTokens to match Encode length, got %d vs %d", count, len(ids))
	}
}

func TestCl100kTokenizer_EmptyString(t *testing.T) {
	tok, err := NewCl100kTokenizer()
	if err != nil {
		t.Fatalf("new tokenizer: %v", err)
	}
	if count := tok.CountTokens(""); count != 0 {
		t.Fatalf("expected 0 tokens for empty string, got %d", count)
	}
}
