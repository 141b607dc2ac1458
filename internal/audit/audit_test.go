package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/proofchain/internal/db"
)

const alice = "0xAbC0000000000000000000000000000000000001"

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		ID:         "test-1",
		Action:     ActionRegistered,
		Outcome:    OutcomeOK,
		Wallet:     alice,
		PromptHash: "0xp",
		OutputHash: "0xo",
		TxHash:     "0xt",
		FileName:   "logo.png",
	}
	if err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "test-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Action != ActionRegistered || got.Outcome != OutcomeOK {
		t.Errorf("action/outcome = %q/%q", got.Action, got.Outcome)
	}
	if got.Wallet != "0xabc0000000000000000000000000000000000001" {
		t.Errorf("wallet should be stored lowercase, got %q", got.Wallet)
	}
	if got.TxHash != "0xt" || got.FileName != "logo.png" {
		t.Errorf("unexpected entry %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestLogGeneratesUUID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{Action: ActionVerified, Outcome: OutcomeNotVerified}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	entries, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].ID == "" {
		t.Fatalf("expected one entry with a generated ID, got %+v", entries)
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Action: ActionRegistered, Outcome: OutcomeOK, Wallet: alice, Timestamp: base},
		{Action: ActionVerified, Outcome: OutcomeOK, Wallet: alice, Timestamp: base.Add(time.Hour)},
		{Action: ActionRegistered, Outcome: OutcomeFailed, Wallet: "0x02", Timestamp: base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	got, _ := store.Query(ctx, QueryFilter{Action: ActionRegistered})
	if len(got) != 2 {
		t.Errorf("expected 2 registrations, got %d", len(got))
	}
	if got[0].Wallet != "0x02" {
		t.Errorf("expected newest first, got %q", got[0].Wallet)
	}

	got, _ = store.Query(ctx, QueryFilter{Wallet: "0xABC0000000000000000000000000000000000001"})
	if len(got) != 2 {
		t.Errorf("wallet filter should be case-insensitive, got %d", len(got))
	}

	since := base.Add(30 * time.Minute)
	got, _ = store.Query(ctx, QueryFilter{Since: &since})
	if len(got) != 2 {
		t.Errorf("expected 2 entries since %s, got %d", since, len(got))
	}

	got, _ = store.Query(ctx, QueryFilter{Limit: 1, Offset: 1})
	if len(got) != 1 || got[0].Action != ActionVerified {
		t.Errorf("unexpected page %+v", got)
	}

	got, _ = store.Query(ctx, QueryFilter{Offset: 2})
	if len(got) != 1 || got[0].Action != ActionRegistered {
		t.Errorf("unexpected offset result %+v", got)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Log(ctx, Entry{Action: ActionTxVerified, Outcome: OutcomeOK}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	deleted, err := store.DeleteBefore(ctx, time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)
	if _, err := store.GetByID(context.Background(), "nonexistent"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// --- HTTP handler tests ---

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPQuery(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()
	store.Log(ctx, Entry{Action: ActionRegistered, Outcome: OutcomeOK, Wallet: alice})
	store.Log(ctx, Entry{Action: ActionVerified, Outcome: OutcomeOK, Wallet: alice})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activity?action=registered", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []Entry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Action != ActionRegistered {
		t.Errorf("unexpected entries %+v", got)
	}
}

func TestHTTPQueryEmpty(t *testing.T) {
	r, _ := setupRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activity", nil))
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("expected empty array, got %q", body)
	}
}

func TestHTTPGetByID(t *testing.T) {
	r, store := setupRouter(t)
	store.Log(context.Background(), Entry{ID: "http-1", Action: ActionRegistered, Outcome: OutcomeOK})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activity/http-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got Entry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "http-1" {
		t.Errorf("ID = %q, want %q", got.ID, "http-1")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activity/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestQueryOutcome(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	store.Log(ctx, Entry{Action: ActionVerified, Outcome: OutcomeOK})
	store.Log(ctx, Entry{Action: ActionVerified, Outcome: OutcomeNotVerified})
	store.Log(ctx, Entry{Action: ActionRegistered, Outcome: OutcomeFailed})

	got, err := store.Query(ctx, QueryFilter{Outcome: OutcomeNotVerified})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].Outcome != OutcomeNotVerified {
		t.Errorf("unexpected entries %+v", got)
	}
}

func TestHTTPQueryRejectsBadParams(t *testing.T) {
	r, _ := setupRouter(t)
	for _, q := range []string{
		"action=deleted",
		"outcome=maybe",
		"since=yesterday",
		"limit=-1",
		"offset=abc",
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activity?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestHTTPPrune(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.Log(ctx, Entry{Action: ActionRegistered, Outcome: OutcomeOK, Timestamp: base})
	store.Log(ctx, Entry{Action: ActionRegistered, Outcome: OutcomeOK, Timestamp: base.Add(2 * time.Hour)})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/activity?before=2026-03-01T13:00:00Z", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res map[string]int64
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res["deleted"] != 1 {
		t.Errorf("deleted = %d, want 1", res["deleted"])
	}

	left, _ := store.Query(ctx, QueryFilter{})
	if len(left) != 1 {
		t.Errorf("expected 1 entry left, got %d", len(left))
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/activity", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("prune without cutoff: status = %d, want 400", rec.Code)
	}
}
