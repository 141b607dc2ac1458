package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator generates outputs with the OpenAI Chat Completions API.
type OpenAIGenerator struct {
	client *openai.Client
	opts   Options
}

// NewOpenAIGenerator creates a generator. baseURL may be empty for the
// public API.
func NewOpenAIGenerator(apiKey, baseURL string, opts Options) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		opts:   opts.withDefaults(),
	}
}

func (g *OpenAIGenerator) Name() string {
	return "openai"
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.opts.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.opts.MaxTokens,
		Temperature: float32(g.opts.Temperature),
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyOutput
	}
	return finish(resp.Choices[0].Message.Content)
}
