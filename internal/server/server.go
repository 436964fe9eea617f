// Package server exposes the site over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/prettyirrelevant/eniola.wtf/internal/config"
	derrors "github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
	"github.com/prettyirrelevant/eniola.wtf/internal/logfields"
	"github.com/prettyirrelevant/eniola.wtf/internal/metrics"
	smw "github.com/prettyirrelevant/eniola.wtf/internal/server/middleware"
	"github.com/prettyirrelevant/eniola.wtf/internal/site"
	"github.com/prettyirrelevant/eniola.wtf/internal/version"
)

// Options carries optional dependencies for the server.
type Options struct {
	Logger   *slog.Logger
	Recorder metrics.Recorder
	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler
}

// Server serves the site pages, assets and operational endpoints.
type Server struct {
	cfg          config.ServerConfig
	site         *site.Site
	logger       *slog.Logger
	errorAdapter *derrors.HTTPErrorAdapter
	router       chi.Router

	mu         sync.Mutex
	httpServer *http.Server
	addr       net.Addr
}

// New constructs the server and its routes.
func New(cfg config.ServerConfig, s *site.Site, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	srv := &Server{
		cfg:          cfg,
		site:         s,
		logger:       opts.Logger,
		errorAdapter: derrors.NewHTTPErrorAdapter(opts.Logger),
	}
	srv.router = srv.routes(opts)
	return srv
}

func (s *Server) routes(opts Options) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(smw.Chain(s.logger, s.errorAdapter, opts.Recorder))
	r.Use(chimw.StripSlashes)
	r.Use(chimw.GetHead)
	r.Use(serverHeader)

	r.Get("/", s.handlePage(site.Page{Kind: site.PageHome, Path: "/"}))
	r.Get("/projects", s.handlePage(site.Page{Kind: site.PageProjects, Path: "/projects"}))
	r.Get("/blog", s.handlePage(site.Page{Kind: site.PageBlog, Path: "/blog"}))
	r.Get("/blog/{slug}", s.handlePost)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/robots.txt", s.handleRobots)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/assets/*", http.StripPrefix("/assets/", cacheAssets(http.FileServerFS(site.Assets()))))
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}
	r.NotFound(s.handleNotFound)
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener and serves in the background. Binding happens
// before Start returns so address errors surface immediately.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "failed to bind http listener").
			WithContext("addr", s.cfg.Addr).
			Build()
	}

	httpServer := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.addr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", logfields.Error(err))
		}
	}()
	s.logger.Info("HTTP server started", logfields.Addr(ln.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handlePage(page site.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writePage(w, r, page, http.StatusOK)
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := s.site.Post(slug)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	etag := `"` + post.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	s.writePage(w, r, site.PostPage(slug), http.StatusOK)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, site.NotFoundPage, http.StatusNotFound)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.site.WriteSitemap(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.site.WriteRobots(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, page site.Page, status int) {
	var buf bytes.Buffer
	if err := s.site.Render(r.Context(), &buf, page); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = buf.WriteTo(w)
	}
}

// writeError renders the 404 page for not_found errors and a plain status
// page for everything else.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := s.errorAdapter.StatusCodeFor(err)
	if status == http.StatusNotFound {
		s.handleNotFound(w, r)
		return
	}
	s.errorAdapter.Log(r.Context(), err)
	w.Header().Del("ETag")
	http.Error(w, http.StatusText(status), status)
}

func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag || candidate == "W/"+etag {
			return true
		}
	}
	return false
}

func serverHeader(next http.Handler) http.Handler {
	v := "site/" + version.Version
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", v)
		next.ServeHTTP(w, r)
	})
}

func cacheAssets(next http.Handler) http.Handler {
	maxAge := fmt.Sprintf("public, max-age=%d", int((time.Hour).Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", maxAge)
		next.ServeHTTP(w, r)
	})
}
