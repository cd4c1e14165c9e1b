package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAIClient implements Client over the Gemini API via langchaingo.
type GoogleAIClient struct {
	model llms.Model
	name  string
}

// GoogleAIConfig configures the Gemini-backed client.
type GoogleAIConfig struct {
	APIKey string
	Model  string // e.g. "gemini-2.5-pro"
}

// NewGoogleAIClient creates a Gemini-backed client.
func NewGoogleAIClient(ctx context.Context, cfg GoogleAIConfig) (*GoogleAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: googleai api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create googleai client: %w", err)
	}
	return &GoogleAIClient{model: llm, name: model}, nil
}

// Generate performs one model call. Transport retries are the resilient
// wrapper's job, not this client's.
func (c *GoogleAIClient) Generate(ctx context.Context, req Request) (string, error) {
	var messages []llms.MessageContent
	if req.Options.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.Options.SystemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))

	var callOpts []llms.CallOption
	if req.Options.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.Options.MaxTokens))
	}
	callOpts = append(callOpts, llms.WithTemperature(req.Options.Temperature))

	resp, err := c.model.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("llm: %s call %q failed: %w", c.name, req.Label, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: %s call %q returned no choices", c.name, req.Label)
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
