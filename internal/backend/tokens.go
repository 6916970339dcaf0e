// internal/backend/tokens.go
package backend

import (
	"github.com/pkoukk/tiktoken-go"
)

// trimToTokenBudget cuts text down to at most maxTokens tokens for the given
// model, keeping the tail: the most recent part of the document is the
// context that matters for continuation. A zero or negative budget leaves
// the text alone.
func trimToTokenBudget(text, model string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			// no encoder available; fall back to a crude rune cut
			runes := []rune(text)
			if len(runes) > maxTokens*4 {
				return string(runes[len(runes)-maxTokens*4:])
			}
			return text
		}
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[len(tokens)-maxTokens:])
}
