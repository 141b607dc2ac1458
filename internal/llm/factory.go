package llm

import (
	"fmt"
	"os"
)

// NewGenerator creates a generator for the given provider. The API key is
// read from apiKeyEnv.
func NewGenerator(provider, model, apiKeyEnv string) (Generator, error) {
	if apiKeyEnv == "" {
		return nil, fmt.Errorf("no API key variable configured for provider %q", provider)
	}
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", apiKeyEnv)
	}
	opts := Options{Model: model}

	switch provider {
	case "openai":
		return NewOpenAIGenerator(apiKey, "", opts), nil
	case "google":
		return NewGoogleGenerator(apiKey, "", opts), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", provider)
	}
}
