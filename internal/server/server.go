// Package server hosts the ProofChain web UI and its JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/proofchain/internal/logging"
)

var log = logging.Logger("server")

//go:embed static
var staticFS embed.FS

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	AllowAll       bool // allow all CORS origins (dev mode)
	RequestTimeout time.Duration
}

// Routes is implemented by every page controller.
type Routes interface {
	RegisterRoutes(r chi.Router)
}

// Server serves the UI and owns the background loops started with Go.
type Server struct {
	cfg        Config
	router     chi.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a server and mounts the given controllers.
func New(cfg Config, controllers ...Routes) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{cfg: cfg, ctx: ctx, cancel: cancel}
	s.router = s.buildRouter()
	for _, c := range controllers {
		c.RegisterRoutes(s.router)
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		// Leave room for the backend call to time out first.
		r.Use(middleware.Timeout(s.cfg.RequestTimeout + 5*time.Second))
	}

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(s.cfg.AllowedOrigins) > 0 {
		corsOpts.AllowedOrigins = s.cfg.AllowedOrigins
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	static, _ := fs.Sub(staticFS, "static")
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, static, "index.html")
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Go runs fn in the background until Shutdown.
func (s *Server) Go(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

func (s *Server) serve(ln net.Listener) error {
	log.Infof("proofchain UI listening on %s", ln.Addr())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down, giving in-flight
// requests up to drain to finish. It returns only after the handlers and
// the loops started with Go have stopped, so resources they use can be
// released by the caller afterwards.
func (s *Server) Run(ctx context.Context, drain time.Duration) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.stopLoops()
		return err
	}
	return s.run(ctx, ln, drain)
}

func (s *Server) run(ctx context.Context, ln net.Listener, drain time.Duration) error {
	served := make(chan error, 1)
	go func() { served <- s.serve(ln) }()

	select {
	case err := <-served:
		s.stopLoops()
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	err := s.Shutdown(sctx)
	if serr := <-served; err == nil {
		err = serr
	}
	return err
}

// Shutdown stops background loops and gracefully shuts down the server,
// waiting for in-flight requests and loops to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.stopLoops()
	return err
}

func (s *Server) stopLoops() {
	s.cancel()
	s.wg.Wait()
}
