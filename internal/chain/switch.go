package chain

import (
	"context"

	"github.com/ziadkadry99/proofchain/internal/logging"
	"github.com/ziadkadry99/proofchain/internal/provider"
)

var log = logging.Logger("chain")

// SepoliaParams returns the wallet_addEthereumChain parameters for Sepolia.
// An empty rpcURL uses DefaultSepoliaRPCURL.
func SepoliaParams(rpcURL string) provider.AddChainParams {
	if rpcURL == "" {
		rpcURL = DefaultSepoliaRPCURL
	}
	return provider.AddChainParams{
		ChainID:   SepoliaChainIDHex,
		ChainName: "Sepolia",
		RPCURLs:   []string{rpcURL},
		NativeCurrency: provider.NativeCurrency{
			Name:     "Sepolia ETH",
			Symbol:   "ETH",
			Decimals: 18,
		},
		BlockExplorerURLs: []string{SepoliaExplorerURL},
	}
}

// Switcher moves a wallet onto Sepolia.
type Switcher struct {
	RPCURL string
}

// SwitchToSepolia asks the wallet to change its active network to Sepolia
// using the default network parameters.
func SwitchToSepolia(ctx context.Context, p provider.Provider) bool {
	return Switcher{}.Switch(ctx, p)
}

// Switch asks the wallet to change to Sepolia. If the wallet does not know
// the network it is added and the switch is retried once. Failures are logged
// and reported as false.
func (s Switcher) Switch(ctx context.Context, p provider.Provider) bool {
	if p == nil {
		log.Warn("switch network: no wallet detected")
		return false
	}

	err := p.SwitchChain(ctx, SepoliaChainIDHex)
	if err == nil {
		return true
	}
	if provider.Code(err) != provider.CodeUnrecognizedChain {
		log.Errorf("switch network: %v", err)
		return false
	}

	log.Infof("wallet does not know Sepolia, adding it")
	if err := p.AddChain(ctx, SepoliaParams(s.RPCURL)); err != nil {
		log.Errorf("add network: %v", err)
		return false
	}
	if err := p.SwitchChain(ctx, SepoliaChainIDHex); err != nil {
		log.Errorf("switch network after add: %v", err)
		return false
	}
	return true
}
