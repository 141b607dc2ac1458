package docs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
)

func TestLoadEmbedded(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	pages := s.Pages()
	if len(pages) != 4 {
		t.Fatalf("expected 4 pages, got %d", len(pages))
	}
	if pages[0].Slug != "overview" || pages[0].Title != "Overview" {
		t.Errorf("unexpected first page %s %q", pages[0].Slug, pages[0].Title)
	}

	api, ok := s.Page("api")
	if !ok {
		t.Fatal("api page missing")
	}
	if !strings.Contains(string(api.HTML), "<table>") {
		t.Error("expected GFM table rendering")
	}
}

func TestLoadOrdersByPrefix(t *testing.T) {
	fsys := fstest.MapFS{
		"d/2-b.md":   {Data: []byte("# Second\n")},
		"d/1-a.md":   {Data: []byte("no heading\n")},
		"d/notes.md": {Data: []byte("# Notes\n")},
		"d/skip.txt": {Data: []byte("ignored")},
	}
	s, err := load(fsys, "d")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var slugs []string
	for _, p := range s.Pages() {
		slugs = append(slugs, p.Slug)
	}
	if strings.Join(slugs, ",") != "notes,a,b" {
		t.Errorf("unexpected order %v", slugs)
	}
	if p, _ := s.Page("a"); p.Title != "a" {
		t.Errorf("expected slug as fallback title, got %q", p.Title)
	}
}

func TestRoutes(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := chi.NewRouter()
	s.RegisterRoutes(r)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/docs", http.StatusOK, "<title>Overview"},
		{"/docs/wallet", http.StatusOK, "wallet_switchEthereumChain"},
		{"/docs/missing", http.StatusNotFound, ""},
		{"/api/docs", http.StatusOK, `"slug":"getting-started"`},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, w.Code)
			continue
		}
		if tt.want != "" && !strings.Contains(w.Body.String(), tt.want) {
			t.Errorf("%s: body missing %q", tt.path, tt.want)
		}
	}
}
