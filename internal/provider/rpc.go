package provider

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// RPCProvider talks to a local wallet over JSON-RPC (websocket, IPC or HTTP).
// Notifications need a websocket or IPC endpoint.
type RPCProvider struct {
	client *rpc.Client
	url    string
}

// Dial connects to the wallet endpoint.
func Dial(ctx context.Context, url string) (*RPCProvider, error) {
	if url == "" {
		return nil, ErrNoWallet
	}
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial wallet %s: %w", url, err)
	}
	return &RPCProvider{client: c, url: url}, nil
}

// NewRPCProvider wraps an existing client.
func NewRPCProvider(c *rpc.Client) *RPCProvider {
	return &RPCProvider{client: c}
}

func (p *RPCProvider) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}
	return accounts, nil
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, fmt.Errorf("eth_requestAccounts: %w", err)
	}
	return accounts, nil
}

func (p *RPCProvider) ChainID(ctx context.Context) (string, error) {
	var id string
	if err := p.client.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return "", fmt.Errorf("eth_chainId: %w", err)
	}
	return id, nil
}

func (p *RPCProvider) SwitchChain(ctx context.Context, chainID string) error {
	param := map[string]string{"chainId": chainID}
	if err := p.client.CallContext(ctx, nil, "wallet_switchEthereumChain", param); err != nil {
		return fmt.Errorf("wallet_switchEthereumChain: %w", err)
	}
	return nil
}

func (p *RPCProvider) AddChain(ctx context.Context, params AddChainParams) error {
	if err := p.client.CallContext(ctx, nil, "wallet_addEthereumChain", params); err != nil {
		return fmt.Errorf("wallet_addEthereumChain: %w", err)
	}
	return nil
}

func (p *RPCProvider) SubscribeAccounts(ctx context.Context, ch chan<- []string) (Subscription, error) {
	sub, err := p.client.EthSubscribe(ctx, ch, "accountsChanged")
	if err != nil {
		return nil, fmt.Errorf("subscribe accountsChanged: %w", err)
	}
	return sub, nil
}

func (p *RPCProvider) SubscribeChain(ctx context.Context, ch chan<- string) (Subscription, error) {
	sub, err := p.client.EthSubscribe(ctx, ch, "chainChanged")
	if err != nil {
		return nil, fmt.Errorf("subscribe chainChanged: %w", err)
	}
	return sub, nil
}

// URL returns the endpoint the provider was dialed with.
func (p *RPCProvider) URL() string { return p.url }

func (p *RPCProvider) Close() {
	p.client.Close()
}
