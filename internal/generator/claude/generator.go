// Package claude generates questions through the Anthropic Messages API.
package claude

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
	providerName = "claude"
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
)

func init() {
	generator.RegisterProvider(providerName, func(cfg *config.LLMProviderConfig, opts generator.Options) (port.TestGenerator, error) {
		return NewGenerator(cfg, opts), nil
	})
}

// Generator implements port.TestGenerator using the Anthropic Messages API.
type Generator struct {
	apiKey   string
	model    string
	endpoint string
	opts     generator.Options
	budget   *generator.Budget
	client   *http.Client
}

// NewGenerator creates a Claude-backed generator. A non-empty cfg.BaseURL
// replaces the default endpoint.
func NewGenerator(cfg *config.LLMProviderConfig, opts generator.Options) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	opts.MaxTokens = maxTokens
	return &Generator{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		opts:     opts,
		// Claude tokenizes differently; cl100k gives a close enough count.
		budget: generator.NewBudget("", opts.ContentTokens),
		client: &http.Client{Timeout: timeout},
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	content := g.budget.Truncate(input.Content)

	reqBody := map[string]interface{}{
		"model":       g.model,
		"max_tokens":  g.opts.MaxTokens,
		"temperature": g.opts.Temperature,
		"system":      generator.SystemPrompt(),
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": generator.BuildUserPrompt(input, content),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
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

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string, limit int) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): raise llm.max_tokens")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	questions, err := generator.ParseQuestions(text.String(), limit)
	if err != nil {
		return nil, err
	}
	if resp.Model != "" {
		model = resp.Model
	}
	return &port.GenerateOutput{
		Questions: questions,
		Source:    domain.TestSourceLLM,
		ModelUsed: model,
	}, nil
}
