package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/proofchain/internal/db"
	"github.com/ziadkadry99/proofchain/internal/proofapi"
)

type fakeAssistant struct {
	mu       sync.Mutex
	messages []string
	err      error
	block    chan struct{}
}

func (f *fakeAssistant) Chat(ctx context.Context, message string) (*proofapi.ChatResponse, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	if f.err != nil {
		return nil, f.err
	}
	return &proofapi.ChatResponse{Response: "echo: " + message}, nil
}

type fakeWallet string

func (w fakeWallet) Address() string { return string(w) }

func setupTest(t *testing.T) (*Controller, *fakeAssistant, *Store) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := NewStore(database)
	api := &fakeAssistant{}
	return NewController(api, store, fakeWallet("0xabc")), api, store
}

func TestSendCreatesSession(t *testing.T) {
	c, api, store := setupTest(t)
	ctx := context.Background()

	turn, err := c.Send(ctx, "", "  hello  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if turn.SessionID == "" {
		t.Fatal("expected a new session id")
	}
	if turn.User.Content != "hello" || turn.Assistant.Content != "echo: hello" {
		t.Errorf("unexpected turn %+v / %+v", turn.User, turn.Assistant)
	}
	if api.messages[0] != "hello" {
		t.Errorf("expected trimmed message, got %q", api.messages[0])
	}

	sess, err := store.GetSession(ctx, turn.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess.WalletAddress != "0xabc" {
		t.Errorf("expected wallet address on session, got %q", sess.WalletAddress)
	}

	if _, err := c.Send(ctx, turn.SessionID, "again"); err != nil {
		t.Fatalf("second Send: %v", err)
	}
	history, err := c.History(ctx, turn.SessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	want := []string{"hello", "echo: hello", "again", "echo: again"}
	if len(history) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(history))
	}
	for i, m := range history {
		if m.Content != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], m.Content)
		}
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Errorf("unexpected roles %s, %s", history[0].Role, history[1].Role)
	}
}

func TestSendIgnoresBlankInput(t *testing.T) {
	c, api, _ := setupTest(t)

	if _, err := c.Send(context.Background(), "", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if len(api.messages) != 0 {
		t.Error("blank input must not reach the assistant")
	}
}

func TestSendFailureKeepsUserMessage(t *testing.T) {
	c, api, _ := setupTest(t)
	api.err = &proofapi.APIError{StatusCode: 500, Detail: "gemini quota exceeded"}

	turn, err := c.Send(context.Background(), "", "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if turn == nil || turn.Assistant != nil {
		t.Fatalf("expected a turn without an answer, got %+v", turn)
	}

	history, err := c.History(context.Background(), turn.SessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Role != RoleUser {
		t.Errorf("expected only the user message, got %+v", history)
	}
}

func TestSendUnknownSession(t *testing.T) {
	c, _, _ := setupTest(t)
	if _, err := c.Send(context.Background(), "missing", "hi"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSendSingleFlight(t *testing.T) {
	c, api, _ := setupTest(t)
	api.block = make(chan struct{})

	done := make(chan error)
	go func() {
		_, err := c.Send(context.Background(), "", "first")
		done <- err
	}()
	for !c.Busy() {
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Send(context.Background(), "", "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(api.block)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
}

func setupServer(t *testing.T, c *Controller) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	c.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocketChat(t *testing.T) {
	c, _, _ := setupTest(t)
	srv := setupServer(t, c)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	if err := conn.WriteJSON(wsRequest{Type: "message", Content: "hi"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var pending, answer wsResponse
	if err := conn.ReadJSON(&pending); err != nil {
		t.Fatalf("read pending: %v", err)
	}
	if pending.Type != "pending" || pending.Content != PendingText {
		t.Errorf("unexpected pending frame %+v", pending)
	}
	if err := conn.ReadJSON(&answer); err != nil {
		t.Fatalf("read answer: %v", err)
	}
	if answer.Type != "response" || answer.Content != "echo: hi" || answer.SessionID == "" {
		t.Errorf("unexpected answer %+v", answer)
	}
}

func TestWebSocketErrors(t *testing.T) {
	c, _, _ := setupTest(t)
	srv := setupServer(t, c)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	var resp wsResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" || resp.Content != "invalid message format" {
		t.Errorf("unexpected response %+v", resp)
	}

	conn.WriteJSON(wsRequest{Type: "ask", Content: "hi"})
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Type != "error" || !strings.Contains(resp.Content, "unknown message type") {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHTTPChat(t *testing.T) {
	c, _, _ := setupTest(t)
	srv := setupServer(t, c)

	res, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"message":"hello"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var turn Turn
	if err := json.NewDecoder(res.Body).Decode(&turn); err != nil {
		t.Fatalf("decode: %v", err)
	}

	hres, err := http.Get(srv.URL + "/api/chat/" + turn.SessionID + "/history")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	defer hres.Body.Close()
	var msgs []Message
	json.NewDecoder(hres.Body).Decode(&msgs)
	if len(msgs) != 2 {
		t.Errorf("expected 2 messages, got %d", len(msgs))
	}

	bres, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"message":" "}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	bres.Body.Close()
	if bres.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for blank message, got %d", bres.StatusCode)
	}

	nres, err := http.Get(srv.URL + "/api/chat/nope/history")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	nres.Body.Close()
	if nres.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", nres.StatusCode)
	}
}
