package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowbase/internal/config"
	"knowbase/internal/domain"
	"knowbase/internal/generator"
	"knowbase/internal/generator/openai"
	"knowbase/internal/port"
)

func chatReply(content, finish string) map[string]interface{} {
	return map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini-2024-07-18",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": finish,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			},
		},
	}
}

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *openai.Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return openai.NewGenerator(&config.LLMProviderConfig{
		Provider:     "openai",
		APIKey:       "sk-test",
		BaseURL:      srv.URL + "/v1",
		DefaultModel: "gpt-4o-mini",
	}, generator.Options{MaxTokens: 500, Temperature: 0.2})
}

var input = port.GenerateInput{
	DocumentTitle: "Warehouse Safety",
	Content:       "# Forklifts\nOnly certified staff may drive forklifts.",
	QuestionCount: 3,
}

func TestGenerate_Success(t *testing.T) {
	var gotReq map[string]interface{}
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply(
			"Here you go: {\"questions\":[{\"type\":\"true_false\",\"prompt\":\"Anyone may drive a forklift.\",\"correct_answer\":\"False\"}]}",
			"stop"))
	})

	out, err := g.Generate(context.Background(), input)

	require.NoError(t, err)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, "q1", out.Questions[0].ID)
	assert.Equal(t, domain.QuestionTrueFalse, out.Questions[0].Type)
	assert.Equal(t, "False", out.Questions[0].CorrectAnswer)
	assert.Equal(t, domain.TestSourceLLM, out.Source)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", out.ModelUsed)

	assert.Equal(t, "gpt-4o-mini", gotReq["model"])
	assert.EqualValues(t, 500, gotReq["max_tokens"])
	msgs, ok := gotReq["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]interface{})
	assert.Contains(t, user["content"], "Only certified staff may drive forklifts.")
	assert.Contains(t, user["content"], "Write 3 questions")
}

func TestGenerate_RateLimited(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	})

	_, err := g.Generate(context.Background(), input)

	var rl *generator.RateLimitError
	require.True(t, errors.As(err, &rl), "got %v", err)
	assert.Equal(t, "openai", rl.Provider)
}

func TestGenerate_RegionRestricted(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"Country, region, or territory not supported","type":"request_forbidden","code":"unsupported_country_region_territory"}}`))
	})

	_, err := g.Generate(context.Background(), input)

	var region *generator.RegionRestrictedError
	assert.True(t, errors.As(err, &region), "got %v", err)
}

func TestGenerate_Truncated(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply(`{"questions":[{"prompt":"half`, "length"))
	})

	_, err := g.Generate(context.Background(), input)

	assert.ErrorContains(t, err, "truncated")
}

func TestGenerate_NoQuestions(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply(`{"questions":[]}`, "stop"))
	})

	_, err := g.Generate(context.Background(), input)

	assert.ErrorIs(t, err, generator.ErrNoQuestions)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, generator.Providers(), "openai")
}
