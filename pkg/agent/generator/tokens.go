package generator

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many model tokens a text occupies.
type TokenCounter func(text string) int

// ApproxCounter assumes four characters per token.
func ApproxCounter(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// NewTiktokenCounter counts with the cl100k_base encoding, falling back to
// ApproxCounter when the encoding cannot be loaded.
func NewTiktokenCounter() TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return ApproxCounter
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}
}
