// Package config loads ProofChain settings from .proofchain.yml with
// PROOFCHAIN_* environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const envPrefix = "PROOFCHAIN_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. Nested keys use a double underscore:
// PROOFCHAIN_WALLET__ENDPOINT -> wallet.endpoint.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderGoogle: true,
}

var walletSchemes = map[string]bool{
	"ws": true, "wss": true, "http": true, "https": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an http(s) URL", c.APIURL)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be non-negative")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if ep := c.Wallet.Endpoint; ep != "" {
		u, err := url.Parse(ep)
		// Anything without a scheme is treated as an IPC socket path.
		if err != nil || (u.Scheme != "" && !walletSchemes[u.Scheme]) {
			return fmt.Errorf("invalid wallet.endpoint %q: must be ws(s), http(s) or an IPC path", ep)
		}
	}
	if c.Wallet.Timeout < 0 {
		return fmt.Errorf("wallet.timeout must be non-negative")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	if c.Generator.Provider != "" && !validProviders[c.Generator.Provider] {
		return fmt.Errorf("invalid generator.provider %q: must be one of openai, google", c.Generator.Provider)
	}

	return nil
}

// DatabasePath is where chat history is stored.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "proofchain.db")
}

// APIKeyEnvVar returns the environment variable holding the generator's API
// key.
func (c *Config) APIKeyEnvVar() string {
	if c.Generator.APIKeyEnv != "" {
		return c.Generator.APIKeyEnv
	}
	switch c.Generator.Provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}
