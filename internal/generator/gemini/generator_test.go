package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowbase/internal/config"
	"knowbase/internal/domain"
	"knowbase/internal/generator"
	"knowbase/internal/generator/gemini"
	"knowbase/internal/port"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *gemini.Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return gemini.NewGenerator(&config.LLMProviderConfig{
		Provider: "gemini",
		APIKey:   "g-test",
		BaseURL:  srv.URL,
	}, generator.Options{Temperature: 0.2})
}

var input = port.GenerateInput{DocumentTitle: "Forklift Safety", Content: "Sound the horn at blind corners.", QuestionCount: 1}

func candidate(text, finish string) map[string]interface{} {
	return map[string]interface{}{
		"modelVersion": "gemini-2.0-flash-001",
		"candidates": []map[string]interface{}{{
			"finishReason": finish,
			"content":      map[string]interface{}{"parts": []map[string]string{{"text": text}}},
		}},
	}
}

func TestGenerate_Success(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-test", r.Header.Get("x-goog-api-key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cfg := body["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", cfg["responseMimeType"])
		assert.EqualValues(t, 4096, cfg["maxOutputTokens"])
		assert.NotNil(t, body["systemInstruction"])

		_ = json.NewEncoder(w).Encode(candidate(
			`{"questions":[{"type":"true_false","prompt":"Sound the horn at blind corners.","correct_answer":"true"},{"prompt":"Over the limit"}]}`,
			"STOP"))
	})

	out, err := g.Generate(context.Background(), input)

	require.NoError(t, err)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, domain.QuestionTrueFalse, out.Questions[0].Type)
	assert.Equal(t, "gemini-2.0-flash-001", out.ModelUsed)
	assert.Equal(t, domain.TestSourceLLM, out.Source)
}

func TestGenerate_RateLimited(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := g.Generate(context.Background(), input)

	var rl *generator.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
	assert.Equal(t, "gemini", rl.Provider)
}

func TestGenerate_Truncated(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(candidate(`{"questions":[`, "MAX_TOKENS"))
	})

	_, err := g.Generate(context.Background(), input)

	assert.ErrorContains(t, err, "MAX_TOKENS")
}

func TestGenerate_NoCandidates(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := g.Generate(context.Background(), input)

	assert.ErrorContains(t, err, "no candidates")
}
