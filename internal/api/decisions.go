package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/store"
)

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusNotFound, "decision history is disabled")
		return
	}

	q := r.URL.Query()
	filter := store.DecisionFilter{Search: q.Get("q")}
	if v := q.Get("depth"); v != "" {
		d, err := model.ParseDepth(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Depth = d
	}
	if v := q.Get("since"); v != "" {
		since, err := time.ParseDuration(v)
		if err != nil || since < 0 {
			respondError(w, http.StatusBadRequest, "since must be a duration such as 24h")
			return
		}
		filter.Since = time.Now().Add(-since)
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	ds, err := s.history.ListDecisions(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list decisions", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}
	if ds == nil {
		ds = []store.DecisionSummary{}
	}
	respondJSON(w, http.StatusOK, ds)
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusNotFound, "decision history is disabled")
		return
	}
	rec, err := s.history.GetDecision(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "decision not found")
		return
	}
	if err != nil {
		zap.L().Error("api: get decision", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load decision")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}
