// Package chain holds stateless helpers for account addresses, chain ids and
// the Sepolia test network that ProofChain registers proofs on.
package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	SepoliaChainID    uint64 = 11155111
	SepoliaChainIDHex        = "0xaa36a7"
	MainnetChainID    uint64 = 1
	PolygonChainID    uint64 = 137

	DefaultSepoliaRPCURL = "https://sepolia.infura.io/v3/YOUR_INFURA_KEY"
	SepoliaExplorerURL   = "https://sepolia.etherscan.io"

	UnknownNetwork = "Unknown Network"
)

var chainNames = map[uint64]string{
	SepoliaChainID: "Sepolia Testnet",
	MainnetChainID: "Ethereum Mainnet",
	PolygonChainID: "Polygon",
}

// FormatAddress shortens an address to its first 6 and last 4 characters,
// e.g. "0xAbCd...1234". Empty input yields "".
func FormatAddress(address string) string {
	if address == "" {
		return ""
	}
	head := address[:min(6, len(address))]
	tail := address[max(0, len(address)-4):]
	return head + "..." + tail
}

// IsValidAddress reports whether address is "0x" followed by exactly 40 hex
// characters.
func IsValidAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

// Name maps a chain id to a display name.
func Name(id uint64) string {
	if name, ok := chainNames[id]; ok {
		return name
	}
	return UnknownNetwork
}

// NameOf is Name for an optional chain id; nil is unknown.
func NameOf(id *uint64) string {
	if id == nil {
		return UnknownNetwork
	}
	return Name(*id)
}

// ParseChainID decodes a wallet's hexadecimal chain id ("0xaa36a7"). Some
// wallets pad the digits ("0x01"), so leading zeros are accepted.
func ParseChainID(s string) (uint64, error) {
	if len(s) < 2 || (s[:2] != "0x" && s[:2] != "0X") {
		return 0, hexutil.ErrMissingPrefix
	}
	digits := strings.TrimLeft(s[2:], "0")
	if digits == "" && len(s) > 2 {
		digits = "0"
	}
	return hexutil.DecodeUint64("0x" + digits)
}

// TxURL links a transaction on the Sepolia block explorer.
func TxURL(txHash string) string {
	if txHash == "" {
		return ""
	}
	if !strings.HasPrefix(txHash, "0x") {
		txHash = "0x" + txHash
	}
	return SepoliaExplorerURL + "/tx/" + txHash
}

// AddressURL links an account on the Sepolia block explorer.
func AddressURL(address string) string {
	if address == "" {
		return ""
	}
	return SepoliaExplorerURL + "/address/" + address
}
