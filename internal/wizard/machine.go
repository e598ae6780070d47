// Package wizard drives a decision session through its three phases:
// describing the scenario, answering clarifying questions and viewing the
// ranked result.
package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/decision-cli/internal/answer"
	"github.com/sells-group/decision-cli/internal/merge"
	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

// Phase is a wizard step.
type Phase string

const (
	PhaseScenario  Phase = "scenario"
	PhaseQuestions Phase = "questions"
	PhaseResults   Phase = "results"
)

// Client is the part of the decision service the machine calls.
type Client interface {
	Analyze(ctx context.Context, req decisionapi.AnalyzeRequest) (*decisionapi.AnalyzeResponse, error)
	Evaluate(ctx context.Context, req decisionapi.EvaluateRequest) (*decisionapi.EvaluateResponse, error)
}

// ViolationRecorder receives every contract violation the machine observes.
type ViolationRecorder interface {
	RecordViolations(op string, violations []model.Violation)
}

// CompletionFunc is called, outside the machine lock, each time a session
// reaches the results phase.
type CompletionFunc func(ctx context.Context, rec model.DecisionRecord)

// Option configures a Machine.
type Option func(*Machine)

// WithStrictContract fails the analyze transition on fatal contract
// violations instead of degrading.
func WithStrictContract(strict bool) Option {
	return func(m *Machine) { m.strict = strict }
}

// WithViolationRecorder replaces the default warn-level logging of violations.
func WithViolationRecorder(r ViolationRecorder) Option {
	return func(m *Machine) { m.recorder = r }
}

// WithCompletion registers fn to receive each completed decision.
func WithCompletion(fn CompletionFunc) Option {
	return func(m *Machine) { m.onComplete = fn }
}

// WithDefaultDepth sets the depth a fresh machine starts with. Restart always
// returns to model.DefaultDepth.
func WithDefaultDepth(d model.Depth) Option {
	return func(m *Machine) {
		if d.Valid() {
			m.defaultDepth = d
		}
	}
}

// Machine is a single wizard session. It is safe for concurrent use;
// upstream calls are made without holding the lock, and a response is only
// applied if no transition happened while it was in flight. At most one
// upstream call per session is outstanding at any time.
type Machine struct {
	client       Client
	strict       bool
	recorder     ViolationRecorder
	onComplete   CompletionFunc
	defaultDepth model.Depth

	mu         sync.Mutex
	phase      Phase
	generation uint64
	pending    bool
	inFlight   bool // a call is outstanding, possibly a stale one
	scenario   model.ScenarioInput
	framework  *model.Framework
	answers    *answer.Store
	evaluation *model.Evaluation
	result     *model.MergedResult
	decisionID string
	violations []model.Violation
	lastError  string
}

// New returns a machine in the scenario phase.
func New(client Client, opts ...Option) *Machine {
	m := &Machine{client: client, defaultDepth: model.DefaultDepth}
	for _, o := range opts {
		o(m)
	}
	m.reset()
	m.scenario.Depth = m.defaultDepth
	return m
}

// State is a point-in-time copy of the machine, safe to render or encode.
type State struct {
	Phase      Phase                        `json:"phase"`
	Generation uint64                       `json:"generation"`
	Pending    bool                         `json:"pending"`
	Scenario   model.ScenarioInput          `json:"scenario"`
	Framework  *model.Framework             `json:"framework,omitempty"`
	Answers    map[string]model.AnswerValue `json:"-"`
	Values     map[string]any               `json:"answers,omitempty"`
	Complete   bool                         `json:"complete"`
	Missing    []string                     `json:"missing,omitempty"`
	Evaluation *model.Evaluation            `json:"evaluation,omitempty"`
	Result     *model.MergedResult          `json:"result,omitempty"`
	DecisionID string                       `json:"decision_id,omitempty"`
	Violations []model.Violation            `json:"violations,omitempty"`
	LastError  string                       `json:"last_error,omitempty"`
}

// State returns a snapshot. The framework, evaluation and result are shared
// because they are never mutated after creation.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		Phase:      m.phase,
		Generation: m.generation,
		Pending:    m.pending,
		Scenario:   m.scenario,
		Framework:  m.framework,
		Evaluation: m.evaluation,
		Result:     m.result,
		DecisionID: m.decisionID,
		Violations: append([]model.Violation(nil), m.violations...),
		LastError:  m.lastError,
	}
	if m.answers != nil {
		s.Answers = m.answers.Snapshot()
		s.Values = make(map[string]any, len(s.Answers))
		for id, v := range s.Answers {
			s.Values[id] = v.Wire()
		}
		s.Complete = m.answers.Complete()
		s.Missing = m.answers.Missing()
	}
	return s
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// SetDepth changes the analysis depth before the scenario is submitted.
func (m *Machine) SetDepth(d model.Depth) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseScenario || m.pending || !d.Valid() {
		return OutcomeRejected
	}
	m.scenario.Depth = d
	return OutcomeApplied
}

// SubmitScenario analyzes in and, on success, moves to the questions phase
// with a freshly seeded answer store. An empty scenario, a submission while
// a call is pending or outside the scenario phase is rejected. A failed
// call leaves the machine in the scenario phase and returns a
// *ServiceError.
func (m *Machine) SubmitScenario(ctx context.Context, in model.ScenarioInput) (Outcome, error) {
	m.mu.Lock()
	if in.Depth == "" {
		in.Depth = m.scenario.Depth
	}
	if m.phase != PhaseScenario || m.pending || m.inFlight || in.Blank() || !in.Depth.Valid() {
		m.mu.Unlock()
		return OutcomeRejected, nil
	}
	m.generation++
	gen := m.generation
	m.pending = true
	m.inFlight = true
	m.scenario = in
	m.lastError = ""
	m.mu.Unlock()

	start := time.Now()
	resp, err := m.client.Analyze(ctx, decisionapi.AnalyzeRequest{
		Scenario: in.Text,
		Depth:    string(in.Depth),
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	if gen != m.generation || m.phase != PhaseScenario {
		zap.L().Info("wizard: discarding stale analyze response", zap.Uint64("generation", gen))
		return OutcomeStale, nil
	}
	m.pending = false

	if err == nil && resp == nil {
		err = eris.New("wizard: empty analyze response")
	}
	if err != nil {
		return OutcomeRejected, m.fail("analyze", err)
	}

	fw, violations := frameworkFromWire(resp, in)
	m.observe("analyze", violations)
	if m.strict {
		for _, v := range violations {
			if v.Fatal() {
				return OutcomeRejected, m.fail("analyze",
					eris.Wrapf(ErrContractViolation, "%s %s: %s", v.Kind, v.Subject, v.Detail))
			}
		}
	}

	m.framework = &fw
	m.answers = answer.NewStore(fw.Questions)
	m.violations = violations
	m.phase = PhaseQuestions
	m.generation++

	zap.L().Info("wizard: scenario analyzed",
		zap.String("decision_type", fw.DecisionType),
		zap.Int("options", len(fw.Options)),
		zap.Int("questions", len(fw.Questions)),
		zap.Int("violations", len(violations)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return OutcomeApplied, nil
}

// SetAnswer applies one answer. Edits are accepted only in the questions
// phase while no evaluation is pending; an invalid value returns the
// answer package's error and leaves the store unchanged.
func (m *Machine) SetAnswer(id string, v model.AnswerValue) (Outcome, error) {
	return m.edit(func(s *answer.Store) error { return s.Set(id, v) })
}

// MoveRank reorders one item of a rank question.
func (m *Machine) MoveRank(id string, from, to int) (Outcome, error) {
	return m.edit(func(s *answer.Store) error { return s.MoveRank(id, from, to) })
}

// DecodeAnswer converts a loosely typed value for question id.
func (m *Machine) DecodeAnswer(id string, raw any) (model.AnswerValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.framework == nil {
		return nil, eris.Wrapf(answer.ErrUnknownQuestion, "wizard: %q", id)
	}
	i := m.framework.QuestionIndex(id)
	if i < 0 {
		return nil, eris.Wrapf(answer.ErrUnknownQuestion, "wizard: %q", id)
	}
	return answer.Decode(m.framework.Questions[i], raw)
}

func (m *Machine) edit(fn func(*answer.Store) error) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseQuestions || m.pending || m.answers == nil {
		return OutcomeRejected, nil
	}
	if err := fn(m.answers); err != nil {
		return OutcomeRejected, err
	}
	return OutcomeApplied, nil
}

// Submit evaluates the current answers and, on success, moves to the
// results phase. It is rejected unless the machine is in the questions
// phase, idle, and every question is answered. A failed call keeps the
// framework and answers and returns a *ServiceError.
func (m *Machine) Submit(ctx context.Context) (Outcome, error) {
	m.mu.Lock()
	if m.phase != PhaseQuestions || m.pending || m.inFlight || m.answers == nil || !m.answers.Complete() {
		m.mu.Unlock()
		return OutcomeRejected, nil
	}
	m.generation++
	gen := m.generation
	m.pending = true
	m.inFlight = true
	m.lastError = ""
	scenario := m.scenario
	fw := m.framework
	responses := m.answers.Responses()
	m.mu.Unlock()

	resp, err := m.client.Evaluate(ctx, decisionapi.EvaluateRequest{
		Framework: frameworkToWire(fw),
		Responses: responsesToWire(responses),
	})

	m.mu.Lock()
	m.inFlight = false
	if gen != m.generation || m.phase != PhaseQuestions {
		m.mu.Unlock()
		zap.L().Info("wizard: discarding stale evaluate response", zap.Uint64("generation", gen))
		return OutcomeStale, nil
	}
	m.pending = false

	if err == nil && resp == nil {
		err = eris.New("wizard: empty evaluate response")
	}
	if err != nil {
		serr := m.fail("evaluate", err)
		m.mu.Unlock()
		return OutcomeRejected, serr
	}

	eval := evaluationFromWire(resp)
	result, violations := merge.Merge(fw, &eval)
	m.observe("evaluate", violations)

	rec := model.NewDecisionRecord(scenario, *fw, responses, eval, *result)
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	m.evaluation = &eval
	m.result = result
	m.decisionID = rec.ID
	m.violations = append(m.violations, violations...)
	m.phase = PhaseResults
	m.generation++
	onComplete := m.onComplete
	m.mu.Unlock()

	top, score := rec.TopOption()
	zap.L().Info("wizard: decision evaluated",
		zap.String("decision_id", rec.ID),
		zap.String("top_option", top),
		zap.Float64("top_score", score),
		zap.String("primary_choice", result.PrimaryChoice),
	)
	if onComplete != nil {
		onComplete(ctx, rec)
	}
	return OutcomeApplied, nil
}

// Back returns from the questions phase to the scenario phase, discarding
// the framework and answers but keeping the scenario text for editing. Any
// evaluation in flight is discarded when it resolves, and the scenario cannot
// be resubmitted until then.
func (m *Machine) Back() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseQuestions {
		return OutcomeRejected
	}
	m.framework = nil
	m.answers = nil
	m.violations = nil
	m.pending = false
	m.lastError = ""
	m.phase = PhaseScenario
	m.generation++
	return OutcomeApplied
}

// Restart clears everything and returns to the scenario phase with the
// default depth. It is allowed from any phase, including while a call is
// pending; a new scenario is accepted once that call has returned.
func (m *Machine) Restart() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return OutcomeApplied
}

func (m *Machine) reset() {
	m.phase = PhaseScenario
	m.pending = false
	m.scenario = model.ScenarioInput{Depth: model.DefaultDepth}
	m.framework = nil
	m.answers = nil
	m.evaluation = nil
	m.result = nil
	m.decisionID = ""
	m.violations = nil
	m.lastError = ""
	m.generation++
}

// fail records a failed call. Callers hold the lock.
func (m *Machine) fail(op string, err error) *ServiceError {
	m.lastError = err.Error()
	zap.L().Warn("wizard: upstream call failed", zap.String("op", op), zap.Error(err))
	return &ServiceError{Op: op, Err: err}
}

// observe reports violations. Callers hold the lock.
func (m *Machine) observe(op string, violations []model.Violation) {
	if len(violations) == 0 {
		return
	}
	if m.recorder != nil {
		m.recorder.RecordViolations(op, violations)
		return
	}
	for _, v := range violations {
		zap.L().Warn("wizard: contract violation",
			zap.String("op", op),
			zap.String("kind", string(v.Kind)),
			zap.String("subject", v.Subject),
			zap.String("detail", v.Detail),
		)
	}
}
