// Package openai generates questions through any OpenAI-compatible chat
// completions endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"knowbase/internal/config"
	"knowbase/internal/domain"
	"knowbase/internal/generator"
	"knowbase/internal/port"
)

const providerName = "openai"

func init() {
	generator.RegisterProvider(providerName, func(cfg *config.LLMProviderConfig, opts generator.Options) (port.TestGenerator, error) {
		return NewGenerator(cfg, opts), nil
	})
}

// Generator implements port.TestGenerator using the Chat Completions API.
type Generator struct {
	client *goopenai.Client
	model  string
	opts   generator.Options
	budget *generator.Budget
}

// NewGenerator creates a Generator. cfg.BaseURL points it at a compatible
// server instead of api.openai.com.
func NewGenerator(cfg *config.LLMProviderConfig, opts generator.Options) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = goopenai.GPT4oMini
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Generator{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
		opts:   opts,
		budget: generator.NewBudget(model, opts.ContentTokens),
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	content := g.budget.Truncate(input.Content)

	req := goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: generator.SystemPrompt()},
			{Role: goopenai.ChatMessageRoleUser, Content: generator.BuildUserPrompt(input, content)},
		},
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from %s", providerName)
	}
	if resp.Choices[0].FinishReason == goopenai.FinishReasonLength {
		return nil, fmt.Errorf("output truncated (finish_reason: length): raise llm.max_tokens")
	}

	questions, err := generator.ParseQuestions(resp.Choices[0].Message.Content, input.QuestionCount)
	if err != nil {
		return nil, err
	}

	model := resp.Model
	if model == "" {
		model = g.model
	}
	return &port.GenerateOutput{
		Questions: questions,
		Source:    domain.TestSourceLLM,
		ModelUsed: model,
	}, nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		body := fmt.Sprintf("%v %s", apiErr.Code, apiErr.Message)
		return generator.StatusError(providerName, apiErr.HTTPStatusCode, body, "")
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return generator.StatusError(providerName, reqErr.HTTPStatusCode, reqErr.Error(), "")
	}
	return fmt.Errorf("calling %s API: %w", providerName, err)
}
