// Package api exposes wizard sessions and decision history over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/decision-cli/internal/store"
	"github.com/sells-group/decision-cli/internal/wizard"
	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

// Pinger probes the upstream decision service.
type Pinger interface {
	TestConnection(ctx context.Context) (*decisionapi.ConnectionStatus, error)
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	sessions *wizard.Registry
	upstream Pinger
	history  store.Store
	origins  []string
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables the decision history endpoints.
func WithHistory(st store.Store) Option {
	return func(s *Server) { s.history = st }
}

// WithAllowedOrigins sets the CORS allow list.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates a Server over a session registry and an upstream pinger.
func New(sessions *wizard.Registry, upstream Pinger, opts ...Option) *Server {
	s := &Server{sessions: sessions, upstream: upstream}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/upstream/test", s.handleUpstreamTest)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/scenario", s.handleScenario)
			r.Put("/answers/{qid}", s.handleSetAnswer)
			r.Post("/answers/{qid}/move", s.handleMoveRank)
			r.Post("/submit", s.handleSubmit)
			r.Post("/back", s.handleBack)
			r.Post("/restart", s.handleRestart)
		})

		r.Get("/decisions", s.handleListDecisions)
		r.Get("/decisions/{id}", s.handleGetDecision)
	})
	return r
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleUpstreamTest(w http.ResponseWriter, r *http.Request) {
	if s.upstream == nil {
		respondError(w, http.StatusServiceUnavailable, "no upstream configured")
		return
	}
	status, err := s.upstream.TestConnection(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, status)
}
