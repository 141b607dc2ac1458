package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/proofchain/internal/db"
)

// ErrSessionNotFound is returned for an unknown chat session id.
var ErrSessionNotFound = errors.New("chat session not found")

// Store persists chat sessions and their transcripts.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Session is one chat transcript.
type Session struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *Store) CreateSession(ctx context.Context, walletAddress string) (*Session, error) {
	sess := &Session{
		ID:            uuid.New().String(),
		WalletAddress: walletAddress,
		CreatedAt:     time.Now().UTC(),
	}
	sess.UpdatedAt = sess.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, wallet_address, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.WalletAddress, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting chat session: %w", err)
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, wallet_address, created_at, updated_at FROM chat_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.WalletAddress, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying chat session: %w", err)
	}
	return &sess, nil
}

// ListSessions returns sessions, most recently active first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, wallet_address, created_at, updated_at FROM chat_sessions ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing chat sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.WalletAddress, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// AppendMessage adds a message to the end of a session's transcript.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, role Role, content string) (*Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_messages WHERE session_id = ?`, sessionID,
	).Scan(&seq); err != nil {
		return nil, fmt.Errorf("next message sequence: %w", err)
	}

	msg := &Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, seq, string(msg.Role), msg.Content, msg.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("inserting chat message: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, msg.CreatedAt, sessionID,
	); err != nil {
		return nil, fmt.Errorf("touching chat session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing chat message: %w", err)
	}
	return msg, nil
}

// Messages returns a session's transcript in order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at FROM chat_messages WHERE session_id = ? ORDER BY seq`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var role string
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		m.Role = Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}
