// Package audit keeps a local trail of the registrations and verifications
// made from this client, so a user can find their receipts again without a
// wallet connection.
package audit

import "time"

// Action describes what was done.
type Action string

const (
	ActionRegistered  Action = "registered"
	ActionVerified    Action = "verified"
	ActionTxVerified  Action = "tx_verified"
	ActionSwitchedNet Action = "network_switched"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionRegistered, ActionVerified, ActionTxVerified, ActionSwitchedNet:
		return true
	}
	return false
}

// Outcome is how the action ended.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeNotVerified Outcome = "not_verified"
	OutcomeFailed      Outcome = "failed"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeOK, OutcomeNotVerified, OutcomeFailed:
		return true
	}
	return false
}

// Entry is a single audit trail record.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	Outcome    Outcome   `json:"outcome"`
	Wallet     string    `json:"wallet,omitempty"`
	PromptHash string    `json:"prompt_hash,omitempty"`
	OutputHash string    `json:"output_hash,omitempty"`
	TxHash     string    `json:"tx_hash,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}
