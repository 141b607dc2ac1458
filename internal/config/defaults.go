package config

import "time"

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = ".proofchain.yml"

// defaultModels is the model used per generator provider.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGoogle: "gemini-2.0-flash",
}

// DefaultModel returns the default model for a provider.
func DefaultModel(p ProviderType) string {
	return defaultModels[p]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIURL:         "http://127.0.0.1:8000",
		RequestTimeout: Duration(60 * time.Second),
		PollInterval:   Duration(30 * time.Second),
		DataDir:        ".proofchain",
		Wallet: WalletConfig{
			Endpoint: "ws://127.0.0.1:1248",
			Timeout:  Duration(2 * time.Minute),
		},
		Server: ServerConfig{
			Port: 3000,
		},
		Generator: GeneratorConfig{
			Provider: ProviderGoogle,
			Model:    DefaultModel(ProviderGoogle),
		},
	}
}
