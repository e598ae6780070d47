package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/decision-cli/internal/answer"
	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/wizard"
)

// sessionView is the body of every session response.
type sessionView struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
	wizard.State
}

func view(id string, m *wizard.Machine) sessionView {
	return sessionView{ID: id, State: m.State()}
}

// respondOutcome maps an operation result to a status code. Guard refusals
// and stale responses are conflicts; upstream failures are bad gateways.
func respondOutcome(w http.ResponseWriter, id string, m *wizard.Machine, out wizard.Outcome, err error) {
	v := view(id, m)
	v.Outcome = out.String()

	var svcErr *wizard.ServiceError
	switch {
	case errors.As(err, &svcErr):
		v.Error = svcErr.Error()
		respondJSON(w, http.StatusBadGateway, v)
	case errors.Is(err, answer.ErrUnknownQuestion):
		v.Error = err.Error()
		respondJSON(w, http.StatusNotFound, v)
	case err != nil:
		v.Error = err.Error()
		respondJSON(w, http.StatusUnprocessableEntity, v)
	case out == wizard.OutcomeApplied:
		respondJSON(w, http.StatusOK, v)
	default:
		respondJSON(w, http.StatusConflict, v)
	}
}

// session resolves the {id} URL parameter, writing a 404 when unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *wizard.Machine, bool) {
	id := chi.URLParam(r, "id")
	m, ok := s.sessions.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return id, nil, false
	}
	return id, m, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id, m := s.sessions.Create()
	respondJSON(w, http.StatusCreated, view(id, m))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, m, ok := s.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, view(id, m))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Delete(id) {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	id, m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Scenario string `json:"scenario"`
		Depth    string `json:"depth"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in := model.ScenarioInput{Text: req.Scenario}
	if req.Depth != "" {
		d, err := model.ParseDepth(req.Depth)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.Depth = d
	}

	out, err := m.SubmitScenario(r.Context(), in)
	respondOutcome(w, id, m, out, err)
}

func (s *Server) handleSetAnswer(w http.ResponseWriter, r *http.Request) {
	id, m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Value) == 0 {
		respondError(w, http.StatusBadRequest, "request body must contain a value")
		return
	}
	var raw any
	if err := json.Unmarshal(req.Value, &raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid value")
		return
	}

	qid := chi.URLParam(r, "qid")
	v, err := m.DecodeAnswer(qid, raw)
	if err != nil {
		respondOutcome(w, id, m, wizard.OutcomeRejected, err)
		return
	}
	out, err := m.SetAnswer(qid, v)
	respondOutcome(w, id, m, out, err)
}

func (s *Server) handleMoveRank(w http.ResponseWriter, r *http.Request) {
	id, m, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.From == nil || req.To == nil {
		respondError(w, http.StatusBadRequest, "request body must contain from and to")
		return
	}
	out, err := m.MoveRank(chi.URLParam(r, "qid"), *req.From, *req.To)
	respondOutcome(w, id, m, out, err)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, m, ok := s.session(w, r)
	if !ok {
		return
	}
	out, err := m.Submit(r.Context())
	respondOutcome(w, id, m, out, err)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	id, m, ok := s.session(w, r)
	if !ok {
		return
	}
	respondOutcome(w, id, m, m.Back(), nil)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	id, m, ok := s.session(w, r)
	if !ok {
		return
	}
	respondOutcome(w, id, m, m.Restart(), nil)
}
