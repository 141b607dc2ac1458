package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to ProofChain! Let's configure your client.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Proof API.
	apiPrompt := promptui.Prompt{
		Label:    "Proof API URL",
		Default:  cfg.APIURL,
		Validate: validateHTTPURL,
	}
	apiURL, err := apiPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("api url: %w", err)
	}
	cfg.APIURL = strings.TrimSpace(apiURL)

	// 2. Wallet endpoint.
	walletPrompt := promptui.Prompt{
		Label:   "Wallet JSON-RPC endpoint (blank for none)",
		Default: cfg.Wallet.Endpoint,
	}
	endpoint, err := walletPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("wallet endpoint: %w", err)
	}
	cfg.Wallet.Endpoint = strings.TrimSpace(endpoint)

	// 3. Generator for `proofchain generate`.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider for local generation",
		Items: []string{string(ProviderGoogle), string(ProviderOpenAI)},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Generator.Provider = ProviderType(providerStr)
	cfg.Generator.Model = DefaultModel(cfg.Generator.Provider)

	// 4. Web UI port.
	portPrompt := promptui.Prompt{
		Label:   "Web UI port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("port must be 1-65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envVar := cfg.APIKeyEnvVar(); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running proofchain generate.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateHTTPURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an http(s) URL")
	}
	return nil
}
