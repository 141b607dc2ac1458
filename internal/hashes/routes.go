package hashes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/proofchain/internal/proofapi"
	"github.com/ziadkadry99/proofchain/internal/proofs"
)

// RegisterRoutes mounts the proof browser API.
func RegisterRoutes(r chi.Router, v *View) {
	r.Route("/api/proofs", func(r chi.Router) {
		r.Get("/", handleList(v))
		r.Post("/refresh", handleRefresh(v))
		r.Get("/{id}", handleGet(v))
	})
}

func handleList(v *View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, v.Query(q))
	}
}

func parseQuery(r *http.Request) (proofs.Query, error) {
	params := r.URL.Query()
	mode, err := proofs.ParseMode(params.Get("filter"))
	if err != nil {
		return proofs.Query{}, err
	}
	order, err := proofs.ParseSort(params.Get("sort"))
	if err != nil {
		return proofs.Query{}, err
	}
	return proofs.Query{Mode: mode, Sort: order, Search: params.Get("search")}, nil
}

func handleRefresh(v *View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := v.Refresh(r.Context()); err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Failed to load proofs"})
			return
		}
		q, _ := parseQuery(r)
		writeJSON(w, http.StatusOK, v.Query(q))
	}
}

func handleGet(v *View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := v.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			var apiErr *proofapi.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "proof not found"})
				return
			}
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
