package proofapi

import (
	"encoding/json"

	"github.com/ziadkadry99/proofchain/internal/proofs"
)

// ProofRecord is a proof as returned by the backend.
type ProofRecord = proofs.Record

type registerRequest struct {
	Prompt string `json:"prompt"`
	Output string `json:"output"`
}

type verifyRequest struct {
	Prompt  string `json:"prompt"`
	Output  string `json:"output"`
	Creator string `json:"creator"`
}

type verifyTxRequest struct {
	TxHash string `json:"tx_hash"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// RegisterResult is the backend's answer to a registration.
type RegisterResult struct {
	Message     string `json:"message,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Output      string `json:"output,omitempty"`
	PromptHash  string `json:"prompt_hash"`
	OutputHash  string `json:"output_hash"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

// UnmarshalJSON also accepts the camelCase blockNumber some backend
// versions send.
func (r *RegisterResult) UnmarshalJSON(b []byte) error {
	type plain RegisterResult
	var aux struct {
		plain
		BlockNumberCamel *uint64 `json:"blockNumber"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = RegisterResult(aux.plain)
	if r.BlockNumber == 0 && aux.BlockNumberCamel != nil {
		r.BlockNumber = *aux.BlockNumberCamel
	}
	return nil
}

type VerifyResult struct {
	Verified bool `json:"verified"`
}

type ProofList struct {
	Count  int           `json:"count"`
	Proofs []ProofRecord `json:"proofs"`
}

type ProofPage struct {
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
	Count  int           `json:"count"`
	Proofs []ProofRecord `json:"proofs"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type GenerateResult struct {
	Prompt string `json:"prompt,omitempty"`
	Output string `json:"output"`
}
