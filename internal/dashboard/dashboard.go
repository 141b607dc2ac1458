// Package dashboard is the proof registration page: it registers
// prompt/output pairs for the connected wallet and verifies existing proofs.
package dashboard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/skip2/go-qrcode"

	"github.com/ziadkadry99/proofchain/internal/audit"
	"github.com/ziadkadry99/proofchain/internal/chain"
	"github.com/ziadkadry99/proofchain/internal/logging"
	"github.com/ziadkadry99/proofchain/internal/proofapi"
	"github.com/ziadkadry99/proofchain/internal/proofs"
)

var log = logging.Logger("dashboard")

var (
	ErrNotConnected = errors.New("wallet not connected")
	ErrBusy         = errors.New("a registration is already in progress")

	ErrNoPrompt  = &InputError{Field: "prompt", Message: "Please enter a prompt"}
	ErrNoOutput  = &InputError{Field: "output", Message: "Please enter the output text"}
	ErrNoFile    = &InputError{Field: "file", Message: "Please select a file"}
	ErrNoCreator = &InputError{Field: "creator", Message: "Please enter a valid creator address"}
	ErrNoTxHash  = &InputError{Field: "tx_hash", Message: "Please enter a transaction hash"}
)

// InputError rejects a form before anything is sent to the backend.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Backend is the part of the proof API the dashboard drives.
type Backend interface {
	Register(ctx context.Context, prompt, output string) (*proofapi.RegisterResult, error)
	Verify(ctx context.Context, prompt, output, creator string) (*proofapi.VerifyResult, error)
	VerifyTx(ctx context.Context, txHash string) (*proofapi.VerifyResult, error)
}

// Wallet reports the connected account.
type Wallet interface {
	Address() string
}

// Recorder keeps a trail of completed actions. *audit.Store satisfies it.
type Recorder interface {
	Log(ctx context.Context, e audit.Entry) error
}

// Dashboard registers and verifies proofs on behalf of the connected wallet.
type Dashboard struct {
	api    Backend
	wallet Wallet
	rec    Recorder
	busy   atomic.Bool
}

type Option func(*Dashboard)

// WithRecorder records every backend call made by the dashboard.
func WithRecorder(r Recorder) Option {
	return func(d *Dashboard) { d.rec = r }
}

func New(api Backend, wallet Wallet, opts ...Option) *Dashboard {
	d := &Dashboard{api: api, wallet: wallet}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// record never fails the action it describes.
func (d *Dashboard) record(ctx context.Context, e audit.Entry, err error) {
	if d.rec == nil {
		return
	}
	if err != nil {
		e.Outcome = audit.OutcomeFailed
		e.Detail = err.Error()
	}
	if e.Wallet == "" {
		e.Wallet = d.wallet.Address()
	}
	if rerr := d.rec.Log(context.WithoutCancel(ctx), e); rerr != nil {
		log.Warnf("recording %s: %v", e.Action, rerr)
	}
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Prompt     string            `json:"prompt"`
	OutputType proofs.OutputType `json:"output_type"`
	Output     string            `json:"output"`
	FileName   string            `json:"file_name,omitempty"`
	File       []byte            `json:"-"`
}

// Receipt is a completed registration as shown to the user. Creator is the
// wallet address at submission time; the backend keeps its own record.
type Receipt struct {
	Message     string            `json:"message,omitempty"`
	PromptHash  string            `json:"prompt_hash"`
	OutputHash  string            `json:"output_hash"`
	TxHash      string            `json:"tx_hash"`
	BlockNumber uint64            `json:"block_number"`
	Creator     string            `json:"creator"`
	OutputType  proofs.OutputType `json:"output_type"`
	FileName    string            `json:"file_name,omitempty"`
	ExplorerURL string            `json:"explorer_url,omitempty"`
	QRCode      string            `json:"qr_code,omitempty"`
}

// Busy reports whether a registration is in flight.
func (d *Dashboard) Busy() bool { return d.busy.Load() }

// Register validates the form and submits it. Only one registration runs at
// a time; a concurrent call fails with ErrBusy.
func (d *Dashboard) Register(ctx context.Context, in RegisterInput) (*Receipt, error) {
	creator := d.wallet.Address()
	if creator == "" {
		return nil, ErrNotConnected
	}
	output, err := in.validate()
	if err != nil {
		return nil, err
	}

	if !d.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer d.busy.Store(false)

	res, err := d.api.Register(ctx, strings.TrimSpace(in.Prompt), output)
	if err != nil {
		log.Errorf("registering proof: %v", err)
		d.record(ctx, audit.Entry{Action: audit.ActionRegistered, Wallet: creator, FileName: in.FileName}, err)
		return nil, fmt.Errorf("register proof: %w", err)
	}
	d.record(ctx, audit.Entry{
		Action:     audit.ActionRegistered,
		Outcome:    audit.OutcomeOK,
		Wallet:     creator,
		PromptHash: res.PromptHash,
		OutputHash: res.OutputHash,
		TxHash:     res.TxHash,
		FileName:   in.FileName,
	}, nil)

	rc := &Receipt{
		Message:     res.Message,
		PromptHash:  res.PromptHash,
		OutputHash:  res.OutputHash,
		TxHash:      res.TxHash,
		BlockNumber: res.BlockNumber,
		Creator:     creator,
		OutputType:  in.OutputType,
		FileName:    in.FileName,
		ExplorerURL: chain.TxURL(res.TxHash),
	}
	if rc.ExplorerURL != "" {
		png, err := qrcode.Encode(rc.ExplorerURL, qrcode.Medium, 256)
		if err != nil {
			log.Warnf("encoding receipt qr code: %v", err)
		} else {
			rc.QRCode = base64.StdEncoding.EncodeToString(png)
		}
	}
	log.Infof("registered proof tx=%s block=%d", res.TxHash, res.BlockNumber)
	return rc, nil
}

// validate returns the output string to register.
func (in *RegisterInput) validate() (string, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return "", ErrNoPrompt
	}
	ot, err := proofs.ParseOutputType(string(in.OutputType))
	if err != nil {
		return "", &InputError{Field: "output_type", Message: err.Error()}
	}
	in.OutputType = ot

	if ot == proofs.OutputFile {
		if len(in.File) == 0 {
			return "", ErrNoFile
		}
		return EncodeFile(in.File), nil
	}
	if strings.TrimSpace(in.Output) == "" {
		return "", ErrNoOutput
	}
	return in.Output, nil
}

// EncodeFile turns file content into the output string sent for hashing:
// UTF-8 text as is, anything else base64 encoded.
func EncodeFile(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Verify checks a prompt/output pair against a creator. An empty creator
// means the connected wallet.
func (d *Dashboard) Verify(ctx context.Context, prompt, output, creator string) (bool, error) {
	if creator == "" {
		creator = d.wallet.Address()
	}
	if strings.TrimSpace(prompt) == "" {
		return false, ErrNoPrompt
	}
	if output == "" {
		return false, ErrNoOutput
	}
	if !chain.IsValidAddress(creator) {
		return false, ErrNoCreator
	}
	res, err := d.api.Verify(ctx, prompt, output, creator)
	if err != nil {
		d.record(ctx, audit.Entry{Action: audit.ActionVerified, Wallet: creator}, err)
		return false, fmt.Errorf("verify proof: %w", err)
	}
	d.record(ctx, audit.Entry{Action: audit.ActionVerified, Outcome: verifyOutcome(res.Verified), Wallet: creator}, nil)
	return res.Verified, nil
}

func (d *Dashboard) VerifyTx(ctx context.Context, txHash string) (bool, error) {
	txHash = strings.TrimSpace(txHash)
	if txHash == "" {
		return false, ErrNoTxHash
	}
	res, err := d.api.VerifyTx(ctx, txHash)
	if err != nil {
		d.record(ctx, audit.Entry{Action: audit.ActionTxVerified, TxHash: txHash}, err)
		return false, fmt.Errorf("verify transaction: %w", err)
	}
	d.record(ctx, audit.Entry{Action: audit.ActionTxVerified, Outcome: verifyOutcome(res.Verified), TxHash: txHash}, nil)
	return res.Verified, nil
}

func verifyOutcome(ok bool) audit.Outcome {
	if ok {
		return audit.OutcomeOK
	}
	return audit.OutcomeNotVerified
}

// UserMessage turns a dashboard error into the text shown next to the form.
// action names what failed, e.g. "register proof".
func UserMessage(err error, action string) string {
	var inErr *InputError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConnected):
		return "Please connect your wallet first"
	case errors.Is(err, ErrBusy):
		return "Registration already in progress"
	case errors.As(err, &inErr):
		return inErr.Message
	}
	var apiErr *proofapi.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return "Failed to " + action + ": " + apiErr.Detail
	}
	return "Failed to " + action
}
