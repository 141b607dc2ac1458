package hashes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/proofchain/internal/chain"
	"github.com/ziadkadry99/proofchain/internal/proofapi"
	"github.com/ziadkadry99/proofchain/internal/proofs"
	"github.com/ziadkadry99/proofchain/internal/provider/providertest"
	"github.com/ziadkadry99/proofchain/internal/wallet"
)

type fakeLister struct {
	mu      sync.Mutex
	records []proofs.Record
	err     error
	calls   int
}

func (f *fakeLister) ListProofs(ctx context.Context) (*proofapi.ProofList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &proofapi.ProofList{Count: len(f.records), Proofs: append([]proofs.Record(nil), f.records...)}, nil
}

func (f *fakeLister) GetProof(ctx context.Context, id string) (*proofapi.ProofRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if string(r.ID) == id {
			return &r, nil
		}
	}
	return nil, &proofapi.APIError{StatusCode: http.StatusNotFound, Detail: "Proof not found"}
}

func (f *fakeLister) set(records []proofs.Record) {
	f.mu.Lock()
	f.records = records
	f.mu.Unlock()
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func sampleProofs() []proofs.Record {
	return []proofs.Record{
		{ID: "1", PromptHash: "p1", OutputHash: "o1", Creator: "0xAAA", Timestamp: proofs.At(100)},
		{ID: "2", PromptHash: "p2", OutputHash: "o2", Creator: "0xBBB", Timestamp: proofs.At(300)},
		{ID: "3", PromptHash: "p3", OutputHash: "o3", Creator: "0xAAA", Timestamp: proofs.At(200)},
	}
}

func setupView(t *testing.T, w *providertest.Fake) (*View, *fakeLister, *wallet.Session) {
	t.Helper()
	api := &fakeLister{records: sampleProofs()}
	s := wallet.New(w)
	v := New(api, s, time.Hour)
	t.Cleanup(func() { v.Close() })
	return v, api, s
}

func ids(records []proofs.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = string(r.ID)
	}
	return out
}

func TestQueryBeforeLoad(t *testing.T) {
	v, _, _ := setupView(t, providertest.New(chain.SepoliaChainIDHex))
	res := v.Query(proofs.Query{})
	assert.False(t, res.Loaded)
	assert.Empty(t, res.Proofs)
}

func TestQueryMyProofsUsesSessionAddress(t *testing.T) {
	v, _, s := setupView(t, providertest.New(chain.SepoliaChainIDHex, "0xaaa"))
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, v.Refresh(context.Background()))

	res := v.Query(proofs.Query{Mode: proofs.ModeMy, Sort: proofs.SortOldest})
	assert.Equal(t, []string{"1", "3"}, ids(res.Proofs))
	assert.Equal(t, proofs.Stats{TotalProofs: 3, UniqueCreators: 2, MyProofs: 2}, res.Stats)

	res = v.Query(proofs.Query{Sort: proofs.SortRecent})
	assert.Equal(t, []string{"2", "3", "1"}, ids(res.Proofs))
}

func TestRefreshReplacesCollection(t *testing.T) {
	v, api, _ := setupView(t, providertest.New(chain.SepoliaChainIDHex))
	require.NoError(t, v.Refresh(context.Background()))
	assert.Len(t, v.Query(proofs.Query{}).Proofs, 3)

	api.set(sampleProofs()[:1])
	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, []string{"1"}, ids(v.Query(proofs.Query{}).Proofs))
}

func TestRefreshErrorKeepsLastCollection(t *testing.T) {
	v, api, _ := setupView(t, providertest.New(chain.SepoliaChainIDHex))
	require.NoError(t, v.Refresh(context.Background()))

	api.mu.Lock()
	api.err = errors.New("backend down")
	api.mu.Unlock()

	require.Error(t, v.Refresh(context.Background()))
	res := v.Query(proofs.Query{})
	assert.Len(t, res.Proofs, 3)
	assert.Equal(t, "Failed to load proofs", res.Error)
}

func TestRunPollsAndStops(t *testing.T) {
	api := &fakeLister{records: sampleProofs()}
	v := New(api, wallet.New(nil), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		v.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return api.callCount() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	n := api.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, api.callCount(), "no polling after teardown")
}

func TestRunRefreshesOnAddressChange(t *testing.T) {
	w := providertest.New(chain.SepoliaChainIDHex, "0xAAA")
	v, api, s := setupView(t, w)

	go v.Run(context.Background())
	require.Eventually(t, func() bool { return api.callCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, s.Connect(context.Background()))
	require.Eventually(t, func() bool { return api.callCount() == 2 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, v.Close())
}

func TestRoutes(t *testing.T) {
	v, _, s := setupView(t, providertest.New(chain.SepoliaChainIDHex, "0xbbb"))
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, v.Refresh(context.Background()))

	r := chi.NewRouter()
	RegisterRoutes(r, v)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proofs?filter=my&search=P2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var res Result
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, []string{"2"}, ids(res.Proofs))
	assert.Equal(t, 1, res.Stats.MyProofs)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proofs?sort=sideways", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proofs/3", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proofs/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/proofs/refresh", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
