package wallet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/proofchain/internal/chain"
	"github.com/ziadkadry99/proofchain/internal/provider"
	"github.com/ziadkadry99/proofchain/internal/provider/providertest"
)

func setupRoutes(t *testing.T, p provider.Provider) (*Session, http.Handler) {
	t.Helper()
	s := New(p)
	r := chi.NewRouter()
	RegisterRoutes(r, s, func(r *http.Request, p provider.Provider) bool {
		return chain.SwitchToSepolia(r.Context(), p)
	})
	return s, r
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w, body
}

func TestConnectRoute(t *testing.T) {
	s, h := setupRoutes(t, providertest.New("0x1", addrA))

	w, body := do(t, h, http.MethodPost, "/api/wallet/connect")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, addrA, body["address"])
	assert.Equal(t, true, body["is_connected"])
	advisory, ok := body["advisory"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "wrong_network", advisory["kind"])

	w, body = do(t, h, http.MethodPost, "/api/wallet/switch")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["switched"])

	_, body = do(t, h, http.MethodPost, "/api/wallet/disconnect")
	assert.Equal(t, false, body["is_connected"])
	assert.False(t, s.IsConnected())
}

func TestConnectRouteNoWallet(t *testing.T) {
	_, h := setupRoutes(t, nil)

	w, body := do(t, h, http.MethodPost, "/api/wallet/connect")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Please install MetaMask or another Web3 wallet", body["error"])

	_, body = do(t, h, http.MethodGet, "/api/wallet")
	assert.Equal(t, false, body["wallet_detected"])
	assert.Equal(t, false, body["is_connected"])
}

func TestConnectRouteRejected(t *testing.T) {
	w := providertest.New(chain.SepoliaChainIDHex, addrA)
	w.Fail("eth_requestAccounts", &provider.Error{Code: provider.CodeUserRejected})
	_, h := setupRoutes(t, w)

	rec, _ := do(t, h, http.MethodPost, "/api/wallet/connect")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
