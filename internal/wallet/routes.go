package wallet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/proofchain/internal/provider"
)

// SwitchFunc moves the wallet onto the target network.
type SwitchFunc func(r *http.Request, p provider.Provider) bool

type stateResponse struct {
	State
	WalletDetected bool      `json:"wallet_detected"`
	Advisory       *Advisory `json:"advisory,omitempty"`
}

// RegisterRoutes mounts the wallet session API.
func RegisterRoutes(r chi.Router, s *Session, switchNetwork SwitchFunc) {
	r.Route("/api/wallet", func(r chi.Router) {
		r.Get("/", handleState(s))
		r.Post("/connect", handleConnect(s))
		r.Post("/disconnect", handleDisconnect(s))
		r.Post("/switch", handleSwitch(s, switchNetwork))
	})
}

func respondState(w http.ResponseWriter, status int, s *Session) {
	writeJSON(w, status, stateResponse{
		State:          s.State(),
		WalletDetected: s.Provider() != nil,
		Advisory:       s.LastAdvisory(),
	})
}

func handleState(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondState(w, http.StatusOK, s)
	}
}

func handleConnect(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.Connect(r.Context())
		switch {
		case err == nil:
			respondState(w, http.StatusOK, s)
		case errors.Is(err, provider.ErrNoWallet):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": AdvisoryNoWallet.Message(),
			})
		case provider.IsUserRejected(err):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "wallet request rejected"})
		default:
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
	}
}

func handleDisconnect(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Disconnect()
		respondState(w, http.StatusOK, s)
	}
}

func handleSwitch(s *Session, switchNetwork SwitchFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := switchNetwork(r, s.Provider())
		writeJSON(w, http.StatusOK, map[string]any{
			"switched": ok,
			"state":    s.State(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
