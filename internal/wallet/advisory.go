package wallet

import "time"

type AdvisoryKind string

const (
	AdvisoryNoWallet     AdvisoryKind = "no_wallet"
	AdvisoryWrongNetwork AdvisoryKind = "wrong_network"
)

// Message is the user-facing text for the advisory.
func (k AdvisoryKind) Message() string {
	switch k {
	case AdvisoryNoWallet:
		return "Please install MetaMask or another Web3 wallet"
	case AdvisoryWrongNetwork:
		return "Please switch to Sepolia testnet"
	}
	return string(k)
}

// Advisory is a non-blocking notice for the user.
type Advisory struct {
	Kind    AdvisoryKind `json:"kind"`
	Message string       `json:"message"`
	At      time.Time    `json:"at"`
}
