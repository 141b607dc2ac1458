package config

import (
	"fmt"
	"time"
)

// ProviderType identifies the LLM used to generate outputs locally.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGoogle ProviderType = "google"
)

// Config is the top-level ProofChain configuration, corresponding to
// .proofchain.yml.
type Config struct {
	APIURL         string          `yaml:"api_url" koanf:"api_url"`
	RequestTimeout Duration        `yaml:"request_timeout" koanf:"request_timeout"`
	PollInterval   Duration        `yaml:"poll_interval" koanf:"poll_interval"`
	DataDir        string          `yaml:"data_dir" koanf:"data_dir"`
	Wallet         WalletConfig    `yaml:"wallet" koanf:"wallet"`
	Server         ServerConfig    `yaml:"server" koanf:"server"`
	Generator      GeneratorConfig `yaml:"generator" koanf:"generator"`
}

// WalletConfig points at the wallet's JSON-RPC endpoint. An empty endpoint
// runs without a wallet.
type WalletConfig struct {
	Endpoint      string   `yaml:"endpoint" koanf:"endpoint"`
	Timeout       Duration `yaml:"timeout" koanf:"timeout"`
	SepoliaRPCURL string   `yaml:"sepolia_rpc_url" koanf:"sepolia_rpc_url"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	AllowAll       bool     `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// GeneratorConfig selects the model used by `proofchain generate`.
type GeneratorConfig struct {
	Provider  ProviderType `yaml:"provider" koanf:"provider"`
	Model     string       `yaml:"model" koanf:"model"`
	APIKeyEnv string       `yaml:"api_key_env,omitempty" koanf:"api_key_env"`
}

// Duration is a time.Duration written as "30s" in YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}
