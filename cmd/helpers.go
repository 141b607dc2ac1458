package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ziadkadry99/proofchain/internal/audit"
	"github.com/ziadkadry99/proofchain/internal/config"
	"github.com/ziadkadry99/proofchain/internal/dashboard"
	"github.com/ziadkadry99/proofchain/internal/db"
	"github.com/ziadkadry99/proofchain/internal/logging"
	"github.com/ziadkadry99/proofchain/internal/progress"
	"github.com/ziadkadry99/proofchain/internal/proofapi"
	"github.com/ziadkadry99/proofchain/internal/provider"
	"github.com/ziadkadry99/proofchain/internal/wallet"
)

var log = logging.Logger("cmd")

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `proofchain init` to create a config file", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *proofapi.Client {
	return proofapi.New(cfg.APIURL, proofapi.WithTimeout(cfg.RequestTimeout.Std()))
}

// openWallet dials the configured wallet endpoint and returns a session on
// it. A missing or unreachable wallet is not an error: the session then has
// no provider and reports the no-wallet advisory when used.
func openWallet(ctx context.Context, cfg *config.Config) (*wallet.Session, func()) {
	opts := []wallet.Option{
		wallet.WithCallTimeout(cfg.Wallet.Timeout.Std()),
		wallet.WithAdvisor(func(a wallet.Advisory) {
			fmt.Fprintln(os.Stderr, a.Message)
		}),
	}

	dctx, cancel := context.WithTimeout(ctx, dialTimeout(cfg))
	defer cancel()

	p, err := provider.Dial(dctx, cfg.Wallet.Endpoint)
	if err != nil {
		if !errors.Is(err, provider.ErrNoWallet) {
			log.Warnf("wallet unavailable: %v", err)
		}
		return wallet.New(nil, opts...), func() {}
	}

	s := wallet.New(p, opts...)
	return s, func() {
		if err := s.Close(); err != nil {
			log.Debugf("closing wallet session: %v", err)
		}
		p.Close()
	}
}

const defaultDialTimeout = 5 * time.Second

func dialTimeout(cfg *config.Config) time.Duration {
	if t := cfg.Wallet.Timeout.Std(); t > 0 && t < defaultDialTimeout {
		return t
	}
	return defaultDialTimeout
}

// requireWallet restores an authorized account, asking the wallet for
// access when none is.
func requireWallet(ctx context.Context, s *wallet.Session) error {
	s.Init(ctx)
	if s.IsConnected() {
		return nil
	}
	if err := s.Connect(ctx); err != nil {
		if errors.Is(err, provider.ErrNoWallet) {
			return fmt.Errorf("no wallet available: set wallet.endpoint in %s", cfgFile)
		}
		if provider.IsUserRejected(err) {
			return fmt.Errorf("wallet request rejected")
		}
		return err
	}
	return nil
}

// openDB opens the chat history database under the data directory.
func openDB(cfg *config.Config) (*db.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// pending runs fn behind a terminal spinner.
func pending[T any](label string, fn func() (T, error)) (T, error) {
	sp := progress.StartSpinner(label)
	defer sp.Stop()
	return fn()
}

// newDashboard builds the registration controller with the local activity
// trail attached. A trail that cannot be opened is skipped with a warning.
func newDashboard(cfg *config.Config, api *proofapi.Client, s *wallet.Session) (*dashboard.Dashboard, func()) {
	database, err := openDB(cfg)
	if err != nil {
		log.Warnf("activity trail disabled: %v", err)
		return dashboard.New(api, s), func() {}
	}
	return dashboard.New(api, s, dashboard.WithRecorder(audit.NewStore(database))), func() { database.Close() }
}
