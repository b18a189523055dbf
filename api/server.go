// Package api exposes the compile, merge and sync pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aqlanhadi/kwgn-sms/extractor"
	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/aqlanhadi/kwgn-sms/logger"
	"github.com/aqlanhadi/kwgn-sms/pipeline"
	"github.com/aqlanhadi/kwgn-sms/reconcile"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 10 << 20

// Config holds the API server configuration
type Config struct {
	Port string
	// Window is the duplicate window used by /merge.
	Window time.Duration
	// Categories label summaries when none are stored.
	Categories []common.Category
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:   ":8080",
		Window: reconcile.DefaultWindow,
	}
}

// Server represents the HTTP API server
type Server struct {
	config   Config
	router   chi.Router
	syncer   *pipeline.Syncer
	compiler *extractor.Compiler
	log      zerolog.Logger
	http     *http.Server
}

// New creates a new API server on top of syncer. The compile endpoints share
// the syncer's compiler and pattern cache.
func New(cfg Config, syncer *pipeline.Syncer, log zerolog.Logger) *Server {
	if cfg.Window == 0 {
		cfg.Window = reconcile.DefaultWindow
	}
	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		syncer:   syncer,
		compiler: syncer.Compiler(),
		log:      log,
	}
	s.registerRoutes()
	s.http = &http.Server{
		Addr:              cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.contextLogger)

	r.Get("/health", s.handleHealth)

	r.Post("/compile", s.handleCompile)
	r.Post("/extract", s.handleExtract)
	r.Post("/merge", s.handleMerge)

	r.Post("/messages", s.handleAddMessage)
	r.Post("/sync", s.handleSync)

	r.Get("/transactions", s.handleListTransactions)
	r.Post("/transactions", s.handleAddTransaction)
	r.Post("/transactions/{id}/recompile", s.handleRecompile)
	r.Get("/summary", s.handleSummary)

	r.Get("/export", s.handleExport)
	r.Post("/import", s.handleImport)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server (blocking). It returns nil after Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("port", s.config.Port).Msg("starting server")
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// contextLogger attaches a request scoped logger carrying the request id.
func (s *Server) contextLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := s.log.With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		reqLog.Debug().Str("remote", r.RemoteAddr).Msg("request received")
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), reqLog)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
	} else {
		log.Debug().Err(err).Msg(msg)
	}
	body := map[string]string{"error": msg}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
