// Package gemini generates questions through Google's generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"knowbase/internal/config"
	"knowbase/internal/domain"
	"knowbase/internal/generator"
	"knowbase/internal/port"
)

const (
	providerName = "gemini"
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
)

func init() {
	generator.RegisterProvider(providerName, func(cfg *config.LLMProviderConfig, opts generator.Options) (port.TestGenerator, error) {
		return NewGenerator(cfg, opts), nil
	})
}

// Generator implements port.TestGenerator using the Gemini API.
type Generator struct {
	apiKey   string
	model    string
	endpoint string
	opts     generator.Options
	budget   *generator.Budget
	client   *http.Client
}

// NewGenerator creates a Gemini-backed generator. A non-empty cfg.BaseURL
// replaces the models base URL.
func NewGenerator(cfg *config.LLMProviderConfig, opts generator.Options) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	base := apiBaseURL
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	return &Generator{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: fmt.Sprintf("%s/%s:generateContent", base, model),
		opts:     opts,
		budget:   generator.NewBudget("", opts.ContentTokens),
		client:   &http.Client{Timeout: timeout},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type request struct {
	SystemInstruction content          `json:"systemInstruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	Temperature      float32 `json:"temperature"`
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	body := request{
		SystemInstruction: content{Parts: []part{{Text: generator.SystemPrompt()}}},
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: generator.BuildUserPrompt(input, g.budget.Truncate(input.Content))}},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			MaxOutputTokens:  g.opts.MaxTokens,
			Temperature:      g.opts.Temperature,
		},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, generator.StatusError(providerName, resp.StatusCode, string(respBody), resp.Header.Get("Retry-After"))
	}

	return parseResponse(respBody, g.model, input.QuestionCount)
}

type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

func parseResponse(body []byte, model string, limit int) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == "MAX_TOKENS" {
		return nil, fmt.Errorf("output truncated (finishReason: MAX_TOKENS): raise llm.max_tokens")
	}

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}

	questions, err := generator.ParseQuestions(text.String(), limit)
	if err != nil {
		return nil, err
	}
	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return &port.GenerateOutput{
		Questions: questions,
		Source:    domain.TestSourceLLM,
		ModelUsed: model,
	}, nil
}
