package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(r chi.Router) {
	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
}

func TestHealthCheck(t *testing.T) {
	srv := New(Config{Port: 0})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestIndexPage(t *testing.T) {
	srv := New(Config{})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<title>ProofChain</title>") {
		t.Error("expected the UI page")
	}
}

func TestControllersMounted(t *testing.T) {
	srv := New(Config{}, pingRoutes{})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/ping", nil))
	if w.Body.String() != "pong" {
		t.Errorf("expected pong, got %q", w.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{Port: 0, AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestCORSConfiguredOrigins(t *testing.T) {
	srv := New(Config{AllowedOrigins: []string{"https://app.example.com"}})

	for origin, allowed := range map[string]bool{
		"https://app.example.com":  true,
		"https://evil.example.com": false,
	} {
		req := httptest.NewRequest("OPTIONS", "/healthz", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "GET")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		got := w.Header().Get("Access-Control-Allow-Origin") != ""
		if got != allowed {
			t.Errorf("origin %s: allowed=%v, want %v", origin, got, allowed)
		}
	}
}

func TestShutdownStopsBackgroundLoops(t *testing.T) {
	srv := New(Config{})
	stopped := make(chan struct{})
	srv.Go(func(ctx context.Context) {
		<-ctx.Done()
		close(stopped)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case <-stopped:
	default:
		t.Fatal("background loop still running after Shutdown")
	}
}

func TestCORSAllowsDelete(t *testing.T) {
	srv := New(Config{AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/api/activity", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("DELETE preflight was refused")
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
		t.Errorf("Allow-Methods = %q, want DELETE", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

type slowRoutes struct {
	entered  chan struct{}
	finished atomic.Bool
}

func (s *slowRoutes) RegisterRoutes(r chi.Router) {
	r.Get("/api/slow", func(w http.ResponseWriter, r *http.Request) {
		close(s.entered)
		time.Sleep(100 * time.Millisecond)
		s.finished.Store(true)
		w.Write([]byte("done"))
	})
}

func TestRunDrainsBeforeReturning(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	routes := &slowRoutes{entered: make(chan struct{})}
	srv := New(Config{}, routes)

	var loopStopped atomic.Bool
	srv.Go(func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		loopStopped.Store(true)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- srv.run(ctx, ln, 2*time.Second) }()

	body := make(chan string, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/slow")
		if err != nil {
			body <- "error: " + err.Error()
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body <- string(b)
	}()

	select {
	case <-routes.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the handler")
	}
	cancel()

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if !routes.finished.Load() {
		t.Error("Run returned before the in-flight request finished")
	}
	if !loopStopped.Load() {
		t.Error("Run returned before the background loop stopped")
	}
	if got := <-body; got != "done" {
		t.Errorf("response = %q, want done", got)
	}
}

func TestRunReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	srv := New(Config{Port: port})
	stopped := make(chan struct{})
	srv.Go(func(ctx context.Context) {
		<-ctx.Done()
		close(stopped)
	})

	if err := srv.Run(context.Background(), time.Second); err == nil {
		t.Fatal("expected an error for a port in use")
	}
	select {
	case <-stopped:
	default:
		t.Fatal("background loop still running after a failed Run")
	}
}
