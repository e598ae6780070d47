package question

import (
	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

// ToWire converts normalized questions back to the upstream shape, as sent
// in the framework of an evaluate call. Normalize(ToWire(qs)) yields qs.
func ToWire(qs []model.Question) []decisionapi.Question {
	out := make([]decisionapi.Question, 0, len(qs))
	for _, q := range qs {
		w := decisionapi.Question{
			Text:         q.Text,
			Type:         string(q.Type()),
			CriteriaLink: q.CriteriaLink,
		}
		switch s := q.Spec.(type) {
		case model.ScaleSpec:
			lo, hi := float64(s.Min), float64(s.Max)
			w.Min, w.Max = &lo, &hi
			w.MinLabel, w.MaxLabel = s.MinLabel, s.MaxLabel
		case model.RankSpec:
			w.Options = cloneStrings(s.Options)
		case model.BooleanSpec:
			w.Labels = []string{s.Labels[0], s.Labels[1]}
		case model.TextSpec:
			w.Placeholder = s.Placeholder
		case model.ChoiceSpec:
			w.Options = cloneStrings(s.Options)
		case nil:
			w.Type = string(model.QuestionText)
		}
		out = append(out, w)
	}
	return out
}
