package wizard

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Analyze(ctx context.Context, req decisionapi.AnalyzeRequest) (*decisionapi.AnalyzeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*decisionapi.AnalyzeResponse), args.Error(1)
}

func (m *mockClient) Evaluate(ctx context.Context, req decisionapi.EvaluateRequest) (*decisionapi.EvaluateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*decisionapi.EvaluateResponse), args.Error(1)
}

type recordingRecorder struct {
	mu    sync.Mutex
	ops   []string
	kinds []model.ViolationKind
}

func (r *recordingRecorder) RecordViolations(op string, vs []model.Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range vs {
		r.ops = append(r.ops, op)
		r.kinds = append(r.kinds, v.Kind)
	}
}

func ptr(v float64) *float64 { return &v }

const jobScenario = "Job A pays more; Job B has better culture"

func jobFramework() *decisionapi.AnalyzeResponse {
	return &decisionapi.AnalyzeResponse{
		DecisionType: "career_choice",
		Title:        "Job A or Job B",
		Options: []decisionapi.Choice{
			{Name: "Job A", Description: "Higher salary"},
			{Name: "Job B", Description: "Better culture"},
		},
		Criteria: []decisionapi.Criterion{
			{Name: "Salary", Weight: 0.6, Category: "financial"},
			{Name: "Culture", Weight: 0.4, Category: "personal"},
		},
		Questions: []decisionapi.Question{
			{Text: "How important is salary?", Type: "scale", Min: ptr(1), Max: ptr(10), CriteriaLink: "Salary"},
			{Text: "Is remote work acceptable?", Type: "boolean", CriteriaLink: "Culture"},
		},
		ContextFactors: []string{"Commute"},
		Depth:          "balanced",
		ScenarioText:   jobScenario,
	}
}

func jobEvaluation() *decisionapi.EvaluateResponse {
	return &decisionapi.EvaluateResponse{
		OptionScores: map[string]decisionapi.OptionScore{
			"Job A": {TotalScore: 7.8, CriteriaScores: map[string]float64{"Salary": 9, "Culture": 6}, Strengths: []string{"Pay"}, Confidence: "high"},
			"Job B": {TotalScore: 6.4, CriteriaScores: map[string]float64{"Salary": 5, "Culture": 8.5}, Weaknesses: []string{"Pay"}, Confidence: "medium"},
		},
		Recommendation: decisionapi.Recommendation{
			PrimaryChoice: "Job A",
			Reasoning:     "Salary carries the most weight",
			Alternatives:  []string{"Job B"},
		},
	}
}
