// Package stub serves a canned decision analysis service for demos and
// end-to-end tests.
package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

// Server answers analyze, evaluate and test requests with canned data.
type Server struct {
	latency time.Duration
	now     func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLatency delays every analyze and evaluate response. Analyze delays
// are scaled by depth: half for quick, one and a half for thorough.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// New creates a stub Server.
func New(opts ...Option) *Server {
	s := &Server{now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the router with every route mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api", func(r chi.Router) {
		r.Get("/test", s.handleTest)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/evaluate", s.handleEvaluate)
	})
	return r
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("stub: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// wait sleeps for d or until the request is cancelled.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, decisionapi.ConnectionStatus{
		Status:    "success",
		Message:   "Decision API is running successfully",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req decisionapi.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Scenario) == "" {
		respondError(w, http.StatusBadRequest, "scenario is required")
		return
	}

	delay := s.latency
	switch req.Depth {
	case "quick":
		delay /= 2
	case "thorough":
		delay = delay * 3 / 2
	}
	if !wait(r.Context(), delay) {
		return
	}

	fx := pickFixture(req.Scenario)
	n := questionCount(req.Depth, len(fx.questions))
	resp := decisionapi.AnalyzeResponse{
		DecisionType:   fx.decisionType,
		Title:          fx.title,
		Options:        fx.options,
		Criteria:       fx.criteria,
		Questions:      fx.questions[:n],
		ContextFactors: fx.contextFactors,
		Depth:          req.Depth,
		ScenarioText:   req.Scenario,
	}

	zap.L().Debug("stub: analyze",
		zap.String("decision_type", resp.DecisionType),
		zap.String("depth", req.Depth),
		zap.Int("questions", n),
	)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req decisionapi.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Framework.Options) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "framework has no options")
		return
	}
	if !wait(r.Context(), s.latency) {
		return
	}

	resp := evaluate(req.Framework)
	zap.L().Debug("stub: evaluate",
		zap.Int("options", len(req.Framework.Options)),
		zap.Int("responses", len(req.Responses)),
		zap.String("primary_choice", resp.Recommendation.PrimaryChoice),
	)
	respondJSON(w, http.StatusOK, resp)
}
