// Package chat is the assistant page. Each message goes to the backend
// assistant, which also registers its reply as a proof; transcripts are kept
// in the local database.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ziadkadry99/proofchain/internal/logging"
	"github.com/ziadkadry99/proofchain/internal/proofapi"
)

var log = logging.Logger("chat")

// PendingText is shown while the assistant is answering.
const PendingText = "Thinking..."

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("assistant is still answering")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Assistant answers chat messages.
type Assistant interface {
	Chat(ctx context.Context, message string) (*proofapi.ChatResponse, error)
}

// Wallet reports the connected account, recorded on new sessions.
type Wallet interface {
	Address() string
}

// Turn is one exchange. Assistant is nil when the backend call failed.
type Turn struct {
	SessionID string   `json:"session_id"`
	User      *Message `json:"user"`
	Assistant *Message `json:"assistant,omitempty"`
}

type Controller struct {
	api    Assistant
	store  *Store
	wallet Wallet
	busy   atomic.Bool
}

func NewController(api Assistant, store *Store, wallet Wallet) *Controller {
	return &Controller{api: api, store: store, wallet: wallet}
}

// Busy reports whether a message is waiting for its answer.
func (c *Controller) Busy() bool { return c.busy.Load() }

// Send appends input to the session transcript and asks the assistant. An
// empty sessionID starts a new session. While one message is in flight
// further sends fail with ErrBusy. When the assistant fails the user message
// stays in the transcript.
func (c *Controller) Send(ctx context.Context, sessionID, input string) (*Turn, error) {
	content := strings.TrimSpace(input)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.busy.Store(false)

	if sessionID == "" {
		addr := ""
		if c.wallet != nil {
			addr = c.wallet.Address()
		}
		sess, err := c.store.CreateSession(ctx, addr)
		if err != nil {
			return nil, err
		}
		sessionID = sess.ID
	} else if _, err := c.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	userMsg, err := c.store.AppendMessage(ctx, sessionID, RoleUser, content)
	if err != nil {
		return nil, err
	}
	turn := &Turn{SessionID: sessionID, User: userMsg}

	resp, err := c.api.Chat(ctx, content)
	if err != nil {
		log.Errorf("chat: %v", err)
		return turn, fmt.Errorf("ask assistant: %w", err)
	}

	reply, err := c.store.AppendMessage(ctx, sessionID, RoleAssistant, resp.Response)
	if err != nil {
		return turn, err
	}
	turn.Assistant = reply
	return turn, nil
}

// History returns a session's transcript.
func (c *Controller) History(ctx context.Context, sessionID string) ([]Message, error) {
	if _, err := c.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return c.store.Messages(ctx, sessionID)
}

// Sessions lists recent chat sessions.
func (c *Controller) Sessions(ctx context.Context, limit int) ([]Session, error) {
	return c.store.ListSessions(ctx, limit)
}
