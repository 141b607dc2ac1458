// Package home serves the landing page statistics.
package home

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/proofchain/internal/logging"
)

var log = logging.Logger("home")

// Counter reads the backend's global counters.
type Counter interface {
	ProofCount(ctx context.Context) (int, error)
	CreatorCount(ctx context.Context) (int, error)
}

type Stats struct {
	TotalProofs    int `json:"total_proofs"`
	UniqueCreators int `json:"unique_creators"`
}

type Controller struct {
	api Counter
}

func NewController(api Counter) *Controller {
	return &Controller{api: api}
}

// Stats fetches both counters concurrently. A failed counter stays 0 and
// the first error is returned alongside whatever was fetched. One failure
// does not cancel the other request.
func (c *Controller) Stats(ctx context.Context) (Stats, error) {
	var (
		st Stats
		g  errgroup.Group
	)
	g.Go(func() error {
		n, err := c.api.ProofCount(ctx)
		if err != nil {
			return err
		}
		st.TotalProofs = n
		return nil
	})
	g.Go(func() error {
		n, err := c.api.CreatorCount(ctx)
		if err != nil {
			return err
		}
		st.UniqueCreators = n
		return nil
	})
	err := g.Wait()
	if err != nil {
		log.Errorf("fetching stats: %v", err)
	}
	return st, err
}

type statsResponse struct {
	Stats
	Error string `json:"error,omitempty"`
}

// RegisterRoutes mounts the home page API.
func RegisterRoutes(r chi.Router, c *Controller) {
	r.Get("/api/home", func(w http.ResponseWriter, r *http.Request) {
		st, err := c.Stats(r.Context())
		resp := statsResponse{Stats: st}
		if err != nil {
			resp.Error = "Failed to load statistics"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
}
