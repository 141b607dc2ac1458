// Package provider defines the wallet capability consumed by ProofChain: the
// EIP-1193 request surface of a user's wallet (accounts, chain id, network
// switching) plus its account and chain change notifications.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnrecognizedChain = 4902
)

// ErrNoWallet is returned when no wallet capability is available.
var ErrNoWallet = errors.New("no wallet detected")

// Provider is the wallet capability set. Implementations must be safe for
// concurrent use.
type Provider interface {
	// Accounts lists already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)
	// RequestAccounts asks the user to authorize account access.
	RequestAccounts(ctx context.Context) ([]string, error)
	// ChainID returns the active chain id in hexadecimal form.
	ChainID(ctx context.Context) (string, error)
	SwitchChain(ctx context.Context, chainID string) error
	AddChain(ctx context.Context, params AddChainParams) error
	// SubscribeAccounts delivers the new account list on every change.
	SubscribeAccounts(ctx context.Context, ch chan<- []string) (Subscription, error)
	// SubscribeChain delivers the new hexadecimal chain id on every change.
	SubscribeChain(ctx context.Context, ch chan<- string) (Subscription, error)
}

// Subscription is an active notification stream. Err is closed once the
// subscription ends; Unsubscribe may be called more than once.
type Subscription interface {
	Unsubscribe()
	Err() <-chan error
}

// AddChainParams is the wallet_addEthereumChain request body.
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	RPCURLs           []string       `json:"rpcUrls"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Error is a wallet request failure carrying its EIP-1193 code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

// Code extracts the provider error code from err, or 0 if there is none.
func Code(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	var re rpc.Error
	if errors.As(err, &re) {
		return re.ErrorCode()
	}
	return 0
}

// IsUserRejected reports whether the user declined the request.
func IsUserRejected(err error) bool {
	return Code(err) == CodeUserRejected
}
