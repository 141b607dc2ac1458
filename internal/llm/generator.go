// Package llm generates outputs locally so they can be registered as proofs.
package llm

import (
	"context"
	"errors"
	"strings"
)

// DefaultSystemPrompt frames the model as a plain content generator.
const DefaultSystemPrompt = "You are a helpful assistant. Respond with the requested content only."

// ErrEmptyOutput is returned when the model produced no text.
var ErrEmptyOutput = errors.New("llm: model returned an empty output")

// Generator turns a prompt into an output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Name returns the provider name, e.g. "openai".
	Name() string
}

// Options tune a single generation.
type Options struct {
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

func (o Options) withDefaults() Options {
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = 2048
	}
	return o
}

func finish(out string) (string, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}
