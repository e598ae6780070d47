package stub

import (
	"fmt"
	"hash/fnv"
	"math"
	"slices"

	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

// criterionScore is a stable pseudo-score in [5.0, 9.0] for an option on a
// criterion. The same pair always scores the same.
func criterionScore(option, criterion string) float64 {
	h := fnv.New32a()
	h.Write([]byte(option + "|" + criterion)) //nolint:errcheck
	return 5 + float64(h.Sum32()%41)/10
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func confidenceFor(total float64) string {
	switch {
	case total >= 7.5:
		return "high"
	case total >= 6.5:
		return "medium"
	default:
		return "low"
	}
}

// evaluate scores every framework option as the weighted mean of its
// criterion scores and recommends the best one. Ties keep framework order.
func evaluate(fw decisionapi.AnalyzeResponse) decisionapi.EvaluateResponse {
	out := decisionapi.EvaluateResponse{
		OptionScores:    make(map[string]decisionapi.OptionScore, len(fw.Options)),
		ModelUsed:       "stub",
		ComplexityScore: round1(math.Min(10, float64(len(fw.Options)*len(fw.Criteria))/2)),
	}

	var weightSum float64
	for _, c := range fw.Criteria {
		weightSum += c.Weight
	}

	for _, o := range fw.Options {
		s := decisionapi.OptionScore{
			CriteriaScores: make(map[string]float64, len(fw.Criteria)),
			Strengths:      []string{},
			Weaknesses:     []string{},
		}
		var total float64
		for _, c := range fw.Criteria {
			cs := criterionScore(o.Name, c.Name)
			s.CriteriaScores[c.Name] = cs
			total += cs * c.Weight
			switch {
			case cs >= 8:
				s.Strengths = append(s.Strengths, fmt.Sprintf("Strong on %s", c.Name))
			case cs < 6:
				s.Weaknesses = append(s.Weaknesses, fmt.Sprintf("Weaker on %s", c.Name))
			}
		}
		if weightSum > 0 {
			total /= weightSum
		}
		s.TotalScore = round1(total)
		s.Confidence = confidenceFor(s.TotalScore)
		out.OptionScores[o.Name] = s
	}

	ranked := make([]string, 0, len(fw.Options))
	for _, o := range fw.Options {
		ranked = append(ranked, o.Name)
	}
	slices.SortStableFunc(ranked, func(a, b string) int {
		sa, sb := out.OptionScores[a].TotalScore, out.OptionScores[b].TotalScore
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})

	rec := decisionapi.Recommendation{Alternatives: []string{}, RedFlags: []string{}}
	if len(ranked) > 0 {
		top := ranked[0]
		rec.PrimaryChoice = top
		rec.Reasoning = fmt.Sprintf("%s has the highest weighted score (%.1f) across %d criteria.",
			top, out.OptionScores[top].TotalScore, len(fw.Criteria))
		for _, name := range ranked[1:] {
			rec.Alternatives = append(rec.Alternatives,
				fmt.Sprintf("%s scores %.1f", name, out.OptionScores[name].TotalScore))
		}
		if len(ranked) > 1 && out.OptionScores[top].TotalScore-out.OptionScores[ranked[1]].TotalScore < 0.5 {
			rec.RedFlags = append(rec.RedFlags, fmt.Sprintf("%s and %s are within half a point", top, ranked[1]))
		}
	}
	out.Recommendation = rec

	if fw.Depth == "thorough" && len(ranked) > 0 {
		crit := slices.Clone(fw.Criteria)
		slices.SortStableFunc(crit, func(a, b decisionapi.Criterion) int {
			switch {
			case a.Weight > b.Weight:
				return -1
			case a.Weight < b.Weight:
				return 1
			default:
				return 0
			}
		})
		var factors []string
		for _, c := range crit[:min(2, len(crit))] {
			factors = append(factors, c.Name)
		}
		out.SensitivityAnalysis = &decisionapi.SensitivityAnalysis{
			CriticalFactors: factors,
			RobustChoice:    ranked[0],
		}
	}

	return out
}
