package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.APIURL != "http://127.0.0.1:8000" {
		t.Errorf("expected default api_url, got %q", cfg.APIURL)
	}
	if cfg.RequestTimeout.Std() != 60*time.Second {
		t.Errorf("expected request_timeout 60s, got %s", cfg.RequestTimeout)
	}
	if cfg.PollInterval.Std() != 30*time.Second {
		t.Errorf("expected poll_interval 30s, got %s", cfg.PollInterval)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.proofchain.yml")

	original := DefaultConfig()
	original.APIURL = "https://proofs.example.com"
	original.RequestTimeout = Duration(15 * time.Second)
	original.Wallet.Endpoint = "wss://wallet.example.com"
	original.Wallet.Timeout = Duration(90 * time.Second)
	original.Server.AllowedOrigins = []string{"http://localhost:5173"}
	original.Generator.Provider = ProviderOpenAI
	original.Generator.Model = "gpt-4o"

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.Contains(string(data), "request_timeout: 15s") {
		t.Errorf("durations should be saved in readable form, got:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.APIURL != original.APIURL {
		t.Errorf("api_url: got %q, want %q", loaded.APIURL, original.APIURL)
	}
	if loaded.RequestTimeout != original.RequestTimeout {
		t.Errorf("request_timeout: got %s, want %s", loaded.RequestTimeout, original.RequestTimeout)
	}
	if loaded.Wallet.Endpoint != original.Wallet.Endpoint {
		t.Errorf("wallet.endpoint: got %q, want %q", loaded.Wallet.Endpoint, original.Wallet.Endpoint)
	}
	if loaded.Wallet.Timeout != original.Wallet.Timeout {
		t.Errorf("wallet.timeout: got %s, want %s", loaded.Wallet.Timeout, original.Wallet.Timeout)
	}
	if len(loaded.Server.AllowedOrigins) != 1 || loaded.Server.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("allowed_origins: got %v", loaded.Server.AllowedOrigins)
	}
	if loaded.Generator.Provider != ProviderOpenAI || loaded.Generator.Model != "gpt-4o" {
		t.Errorf("generator: got %+v", loaded.Generator)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIURL != DefaultConfig().APIURL {
		t.Errorf("expected default api_url, got %q", cfg.APIURL)
	}
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("PROOFCHAIN_API_URL", "http://api.internal:9000")
	t.Setenv("PROOFCHAIN_WALLET__ENDPOINT", "ws://wallet.internal:8546")
	t.Setenv("PROOFCHAIN_POLL_INTERVAL", "5s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIURL != "http://api.internal:9000" {
		t.Errorf("api_url: got %q", cfg.APIURL)
	}
	if cfg.Wallet.Endpoint != "ws://wallet.internal:8546" {
		t.Errorf("wallet.endpoint: got %q", cfg.Wallet.Endpoint)
	}
	if cfg.PollInterval.Std() != 5*time.Second {
		t.Errorf("poll_interval: got %s", cfg.PollInterval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad api url", func(c *Config) { c.APIURL = "ftp://x" }, true},
		{"empty api url", func(c *Config) { c.APIURL = "" }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -1 }, true},
		{"zero timeout disables", func(c *Config) { c.RequestTimeout = 0 }, false},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, true},
		{"no wallet", func(c *Config) { c.Wallet.Endpoint = "" }, false},
		{"ipc wallet", func(c *Config) { c.Wallet.Endpoint = "/tmp/wallet.ipc" }, false},
		{"bad wallet scheme", func(c *Config) { c.Wallet.Endpoint = "ftp://wallet" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad provider", func(c *Config) { c.Generator.Provider = "anthropic" }, true},
		{"no data dir", func(c *Config) { c.DataDir = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Generator.Provider = ProviderOpenAI
	if got := cfg.APIKeyEnvVar(); got != "OPENAI_API_KEY" {
		t.Errorf("got %q", got)
	}
	cfg.Generator.APIKeyEnv = "MY_KEY"
	if got := cfg.APIKeyEnvVar(); got != "MY_KEY" {
		t.Errorf("got %q", got)
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/var/lib/proofchain"
	if got := cfg.DatabasePath(); got != filepath.Join("/var/lib/proofchain", "proofchain.db") {
		t.Errorf("got %q", got)
	}
}
