package docs

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes serves the documentation pages.
func (s *Site) RegisterRoutes(r chi.Router) {
	r.Get("/docs", s.handlePage)
	r.Get("/docs/{slug}", s.handlePage)
	r.Get("/api/docs", s.handleIndex)
}

func (s *Site) handlePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p := s.pages[0]
	if slug != "" {
		var ok bool
		if p, ok = s.Page(slug); !ok {
			http.NotFound(w, r)
			return
		}
	}
	body, err := s.Render(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

func (s *Site) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.pages)
}
