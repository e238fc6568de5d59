package generator

import (
	"log"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// runesPerToken approximates token size when no BPE encoding is available.
const runesPerToken = 4

const truncationMarker = "\n[...content truncated...]"

type tokenCodec interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

var encodings sync.Map // encoding name -> tokenCodec (nil when unavailable)

// encodingForModel picks the BPE encoding for an OpenAI-style model name.
func encodingForModel(model string) string {
	switch {
	case strings.HasPrefix(model, "gpt-4o"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"):
		return "o200k_base"
	default:
		return "cl100k_base"
	}
}

func loadEncoding(name string) tokenCodec {
	if v, ok := encodings.Load(name); ok {
		codec, _ := v.(tokenCodec)
		return codec
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		log.Printf("generator.Budget: %s encoding unavailable, using rune estimate: %v", name, err)
		encodings.Store(name, nil)
		return nil
	}
	encodings.Store(name, tokenCodec(enc))
	return enc
}

// Budget caps prompt content at a token count.
type Budget struct {
	tokens int
	codec  tokenCodec
}

// NewBudget returns a Budget of maxTokens for model. maxTokens <= 0 disables
// truncation.
func NewBudget(model string, maxTokens int) *Budget {
	b := &Budget{tokens: maxTokens}
	if maxTokens > 0 {
		b.codec = loadEncoding(encodingForModel(model))
	}
	return b
}

// Count returns the number of tokens in text, or an estimate from its rune
// count when no encoding is loaded.
func (b *Budget) Count(text string) int {
	if b.codec != nil {
		return len(b.codec.Encode(text, nil, nil))
	}
	n := len([]rune(text))
	return (n + runesPerToken - 1) / runesPerToken
}

// Truncate returns text unchanged when it fits the budget, otherwise its
// leading part followed by a truncation marker.
func (b *Budget) Truncate(text string) string {
	if b.tokens <= 0 {
		return text
	}
	if b.codec != nil {
		toks := b.codec.Encode(text, nil, nil)
		if len(toks) <= b.tokens {
			return text
		}
		return strings.ToValidUTF8(b.codec.Decode(toks[:b.tokens]), "") + truncationMarker
	}
	runes := []rune(text)
	limit := b.tokens * runesPerToken
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + truncationMarker
}
