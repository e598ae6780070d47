package wizard

import (
	"slices"
	"strconv"

	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/question"
	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

// frameworkFromWire normalizes an analyze response. The scenario and depth
// the user submitted fill in when the service does not echo them.
func frameworkFromWire(resp *decisionapi.AnalyzeResponse, in model.ScenarioInput) (model.Framework, []model.Violation) {
	questions, violations := question.Normalize(resp.Questions)

	fw := model.Framework{
		DecisionType:   resp.DecisionType,
		Title:          resp.Title,
		ScenarioText:   resp.ScenarioText,
		Depth:          in.Depth,
		Options:        make([]model.Option, 0, len(resp.Options)),
		Criteria:       make([]model.Criterion, 0, len(resp.Criteria)),
		Questions:      questions,
		ContextFactors: slices.Clone(resp.ContextFactors),
	}
	if fw.ScenarioText == "" {
		fw.ScenarioText = in.Text
	}
	if d := model.Depth(resp.Depth); d.Valid() {
		fw.Depth = d
	}
	if fw.ContextFactors == nil {
		fw.ContextFactors = []string{}
	}
	for _, o := range resp.Options {
		fw.Options = append(fw.Options, model.Option(o))
	}
	for _, c := range resp.Criteria {
		fw.Criteria = append(fw.Criteria, model.Criterion(c))
	}
	return fw, violations
}

// frameworkToWire is the framework half of an evaluate request.
func frameworkToWire(fw *model.Framework) decisionapi.AnalyzeResponse {
	out := decisionapi.AnalyzeResponse{
		DecisionType:   fw.DecisionType,
		Title:          fw.Title,
		Options:        make([]decisionapi.Choice, 0, len(fw.Options)),
		Criteria:       make([]decisionapi.Criterion, 0, len(fw.Criteria)),
		Questions:      question.ToWire(fw.Questions),
		ContextFactors: slices.Clone(fw.ContextFactors),
		Depth:          string(fw.Depth),
		ScenarioText:   fw.ScenarioText,
	}
	for _, o := range fw.Options {
		out.Options = append(out.Options, decisionapi.Choice(o))
	}
	for _, c := range fw.Criteria {
		out.Criteria = append(out.Criteria, decisionapi.Criterion(c))
	}
	return out
}

func responsesToWire(r model.Responses) map[string]any {
	out := make(map[string]any, len(r))
	for i, v := range r {
		out[strconv.Itoa(i)] = v
	}
	return out
}

func evaluationFromWire(resp *decisionapi.EvaluateResponse) model.Evaluation {
	eval := model.Evaluation{
		OptionScores: make(map[string]model.OptionScore, len(resp.OptionScores)),
		Recommendation: model.Recommendation{
			PrimaryChoice: resp.Recommendation.PrimaryChoice,
			Reasoning:     resp.Recommendation.Reasoning,
			Alternatives:  slices.Clone(resp.Recommendation.Alternatives),
			RedFlags:      slices.Clone(resp.Recommendation.RedFlags),
		},
		ModelUsed:       resp.ModelUsed,
		ComplexityScore: resp.ComplexityScore,
	}
	for name, s := range resp.OptionScores {
		eval.OptionScores[name] = model.OptionScore{
			TotalScore:     s.TotalScore,
			CriteriaScores: s.CriteriaScores,
			Strengths:      slices.Clone(s.Strengths),
			Weaknesses:     slices.Clone(s.Weaknesses),
			Confidence:     model.ParseConfidence(s.Confidence),
		}
	}
	if sa := resp.SensitivityAnalysis; sa != nil {
		eval.Sensitivity = &model.Sensitivity{
			CriticalFactors: slices.Clone(sa.CriticalFactors),
			RobustChoice:    sa.RobustChoice,
		}
	}
	return eval
}
