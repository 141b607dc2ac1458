// Package proofapi is the HTTP client for the ProofChain backend, which
// hashes prompt/output pairs and anchors them on chain.
package proofapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is where a locally run backend listens.
const DefaultBaseURL = "http://127.0.0.1:8000"

// Client calls the backend. It does no local validation and never retries.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

// WithHTTPClient sends requests through c. A nil c keeps the default.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds every request. Zero means no bound. It never modifies a
// client passed with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorDetail pulls the message out of a FastAPI style {"detail": ...} body.
func errorDetail(body []byte) string {
	var e struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if len(e.Detail) > 0 {
			var s string
			if json.Unmarshal(e.Detail, &s) == nil {
				return s
			}
			return string(e.Detail)
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) Register(ctx context.Context, prompt, output string) (*RegisterResult, error) {
	var res RegisterResult
	if err := c.post(ctx, "/register", registerRequest{Prompt: prompt, Output: output}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Verify(ctx context.Context, prompt, output, creator string) (*VerifyResult, error) {
	var res VerifyResult
	req := verifyRequest{Prompt: prompt, Output: output, Creator: creator}
	if err := c.post(ctx, "/verify", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) VerifyTx(ctx context.Context, txHash string) (*VerifyResult, error) {
	var res VerifyResult
	if err := c.post(ctx, "/verify_tx", verifyTxRequest{TxHash: txHash}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListProofs(ctx context.Context) (*ProofList, error) {
	var res ProofList
	if err := c.get(ctx, "/proofs", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListPaginated(ctx context.Context, offset, limit int) (*ProofPage, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var res ProofPage
	if err := c.get(ctx, "/proofs/paginated?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListByCreator(ctx context.Context, creator string) (*ProofList, error) {
	var res ProofList
	if err := c.get(ctx, "/proofs/creator/"+url.PathEscape(creator), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetProof(ctx context.Context, id string) (*ProofRecord, error) {
	var res ProofRecord
	if err := c.get(ctx, "/proof/"+url.PathEscape(id), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ProofCount(ctx context.Context) (int, error) {
	var res struct {
		ProofCount int `json:"proof_count"`
	}
	if err := c.get(ctx, "/proofs/count", &res); err != nil {
		return 0, err
	}
	return res.ProofCount, nil
}

func (c *Client) CreatorCount(ctx context.Context) (int, error) {
	var res struct {
		CreatorCount int `json:"creator_count"`
	}
	if err := c.get(ctx, "/creators/count", &res); err != nil {
		return 0, err
	}
	return res.CreatorCount, nil
}

// Chat sends a message to the assistant. The backend registers the reply
// as a proof.
func (c *Client) Chat(ctx context.Context, message string) (*ChatResponse, error) {
	var res ChatResponse
	if err := c.post(ctx, "/api/chat", chatRequest{Message: message}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (*GenerateResult, error) {
	var res GenerateResult
	if err := c.post(ctx, "/generate_text", promptRequest{Prompt: prompt}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GenerateAndRegister(ctx context.Context, prompt string) (*RegisterResult, error) {
	var res RegisterResult
	if err := c.post(ctx, "/generate_and_register", promptRequest{Prompt: prompt}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
