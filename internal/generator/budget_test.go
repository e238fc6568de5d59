package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type wordCodec struct{}

func (wordCodec) Encode(text string, _, _ []string) []int {
	words := strings.Fields(text)
	out := make([]int, len(words))
	for i := range words {
		out[i] = i
	}
	return out
}

func (wordCodec) Decode(tokens []int) string {
	return strings.Repeat("w ", len(tokens))
}

func TestBudget_RuneEstimate(t *testing.T) {
	b := &Budget{tokens: 2}

	assert.Equal(t, "abcdefgh", b.Truncate("abcdefgh"))
	assert.Equal(t, "abcdefgh"+truncationMarker, b.Truncate("abcdefghi"))
	assert.Equal(t, 3, b.Count("abcdefghi"))
	assert.Equal(t, "жжжжжжжж"+truncationMarker, b.Truncate(strings.Repeat("ж", 20)))
}

func TestBudget_Codec(t *testing.T) {
	b := &Budget{tokens: 3, codec: wordCodec{}}

	assert.Equal(t, "one two three", b.Truncate("one two three"))
	assert.Equal(t, "w w w "+truncationMarker, b.Truncate("one two three four"))
	assert.Equal(t, 4, b.Count("one two three four"))
}

func TestBudget_Disabled(t *testing.T) {
	b := NewBudget("gpt-4o", 0)

	long := strings.Repeat("x", 10000)
	assert.Equal(t, long, b.Truncate(long))
}

func TestEncodingForModel(t *testing.T) {
	assert.Equal(t, "o200k_base", encodingForModel("gpt-4o-mini"))
	assert.Equal(t, "cl100k_base", encodingForModel("gpt-4-turbo"))
	assert.Equal(t, "cl100k_base", encodingForModel(""))
}
