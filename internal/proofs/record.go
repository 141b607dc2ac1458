// Package proofs models the proof records returned by the ProofChain backend
// and the local filtering applied to them.
package proofs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OutputType says whether a proof's output was text or a file.
type OutputType string

const (
	OutputText OutputType = "text"
	OutputFile OutputType = "file"
)

// ParseOutputType validates s; empty means text.
func ParseOutputType(s string) (OutputType, error) {
	switch OutputType(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputFile:
		return OutputFile, nil
	}
	return "", fmt.Errorf("invalid output type %q: must be text or file", s)
}

// Record is a registered proof as the backend reports it.
type Record struct {
	ID          ID         `json:"id,omitempty"`
	PromptHash  string     `json:"prompt_hash"`
	OutputHash  string     `json:"output_hash"`
	Creator     string     `json:"creator"`
	Timestamp   Timestamp  `json:"timestamp"`
	OutputType  OutputType `json:"output_type,omitempty"`
	TxHash      string     `json:"tx_hash,omitempty"`
	BlockNumber uint64     `json:"block_number,omitempty"`
}

// ID is a proof identifier. The contract indexes proofs by number, so the
// backend may send it as a JSON number or string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("parse proof id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// Timestamp accepts unix seconds (as a number or numeric string) or an
// RFC 3339 string.
type Timestamp struct {
	time.Time
}

func At(unix int64) Timestamp {
	return Timestamp{time.Unix(unix, 0).UTC()}
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	if b[0] != '"' {
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("parse timestamp %s: %w", b, err)
		}
		t.Time = time.Unix(int64(f), 0).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(n, 0).UTC()
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q: unsupported format", s)
}

// MarshalJSON writes unix seconds, the backend's own representation.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, t.Unix(), 10), nil
}
