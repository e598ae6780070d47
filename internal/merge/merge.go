// Package merge combines a decision framework with its evaluation into the
// ranked model the result views render.
package merge

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/sells-group/decision-cli/internal/model"
)

// Merge builds a fresh MergedResult from fw and eval. Options are ranked by
// total score, highest first, keeping framework order on ties. An option
// the evaluation does not mention scores 0 with medium confidence, and
// evaluation entries for options outside the framework are ignored. Both
// cases are reported as violations.
func Merge(fw *model.Framework, eval *model.Evaluation) (*model.MergedResult, []model.Violation) {
	var violations []model.Violation

	known := make(map[string]bool, len(fw.Options))
	options := make([]model.RankedOption, 0, len(fw.Options))
	for _, o := range fw.Options {
		known[o.Name] = true
		ranked := model.RankedOption{
			Name:        o.Name,
			Description: o.Description,
			Inferred:    o.Inferred,
			Pros:        []string{},
			Cons:        []string{},
			Confidence:  model.ConfidenceMedium,
		}

		score, ok := eval.OptionScores[o.Name]
		if !ok {
			violations = append(violations, model.Violation{
				Kind:    model.ViolationMissingEvaluation,
				Subject: o.Name,
				Detail:  "evaluation has no entry for option, scored 0",
			})
		} else {
			ranked.Score = score.TotalScore
			ranked.Pros = nonNil(score.Strengths)
			ranked.Cons = nonNil(score.Weaknesses)
			ranked.Confidence = model.ParseConfidence(string(score.Confidence))
		}
		options = append(options, ranked)
	}

	for _, name := range sortedKeys(eval.OptionScores) {
		if !known[name] {
			violations = append(violations, model.Violation{
				Kind:    model.ViolationUnknownEvaluation,
				Subject: name,
				Detail:  fmt.Sprintf("evaluation scored %q, which is not a framework option", name),
			})
		}
	}

	slices.SortStableFunc(options, func(a, b model.RankedOption) int {
		return cmp.Compare(b.Score, a.Score)
	})

	criteria := make([]model.CriterionSummary, 0, len(fw.Criteria))
	for _, c := range fw.Criteria {
		scores := make(map[string]float64, len(fw.Options))
		for _, o := range fw.Options {
			scores[o.Name] = eval.OptionScores[o.Name].CriteriaScores[c.Name]
		}
		criteria = append(criteria, model.CriterionSummary{
			Name:          c.Name,
			Description:   c.Description,
			Category:      c.Category,
			Weight:        c.Weight,
			WeightPercent: int(math.Round(c.Weight * 100)),
			Scores:        scores,
		})
	}

	rec := eval.Recommendation
	result := &model.MergedResult{
		Title:          fw.Title,
		Options:        options,
		Criteria:       criteria,
		PrimaryChoice:  rec.PrimaryChoice,
		Recommendation: rec.Reasoning,
		Alternatives:   nonNil(slices.Clone(rec.Alternatives)),
		RedFlags:       nonNil(slices.Clone(rec.RedFlags)),
	}
	if eval.Sensitivity != nil {
		result.CriticalFactors = slices.Clone(eval.Sensitivity.CriticalFactors)
		result.RobustChoice = eval.Sensitivity.RobustChoice
	}
	return result, violations
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
