// Package question turns raw upstream questions into the closed set of
// model.Question variants, applying fallbacks for malformed input.
package question

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/pkg/decisionapi"
)

// choiceAliases are the upstream spellings of the mcq type.
var choiceAliases = map[string]bool{
	"mcq":             true,
	"multiple_choice": true,
}

// Normalize converts raw questions in order. IDs are positional ("q_0",
// "q_1", ...). It never fails: every contract violation is repaired with a
// fallback and reported alongside the result.
func Normalize(raw []decisionapi.Question) ([]model.Question, []model.Violation) {
	out := make([]model.Question, 0, len(raw))
	var violations []model.Violation

	for i, r := range raw {
		q := model.Question{
			ID:           model.QuestionID(i),
			Text:         r.Text,
			CriteriaLink: r.CriteriaLink,
		}
		spec, vs := normalizeSpec(q.ID, r)
		q.Spec = spec
		out = append(out, q)
		violations = append(violations, vs...)
	}
	return out, violations
}

func normalizeSpec(id string, r decisionapi.Question) (model.QuestionSpec, []model.Violation) {
	typ := strings.ToLower(strings.TrimSpace(r.Type))
	if choiceAliases[typ] {
		typ = string(model.QuestionChoice)
	}

	switch model.QuestionType(typ) {
	case model.QuestionScale:
		return normalizeScale(id, r)
	case model.QuestionRank:
		opts := cloneStrings(r.Options)
		if len(opts) == 0 {
			return model.RankSpec{Options: []string{}}, []model.Violation{{
				Kind:    model.ViolationRankOptionsMissing,
				Subject: id,
				Detail:  "rank question has no options",
			}}
		}
		return model.RankSpec{Options: opts}, nil
	case model.QuestionBoolean:
		return model.BooleanSpec{Labels: model.DefaultBooleanLabels}, nil
	case model.QuestionText:
		return textSpec(r.Placeholder), nil
	case model.QuestionChoice:
		opts := cloneStrings(r.Options)
		if len(opts) == 0 {
			return model.ChoiceSpec{Options: []string{}}, []model.Violation{{
				Kind:    model.ViolationMCQOptionsMissing,
				Subject: id,
				Detail:  "mcq question has no options and can never be answered",
			}}
		}
		return model.ChoiceSpec{Options: opts}, nil
	default:
		return textSpec(r.Placeholder), []model.Violation{{
			Kind:    model.ViolationUnknownQuestionType,
			Subject: id,
			Detail:  fmt.Sprintf("question type %q treated as text", r.Type),
		}}
	}
}

func normalizeScale(id string, r decisionapi.Question) (model.QuestionSpec, []model.Violation) {
	s := model.ScaleSpec{
		Min:      model.DefaultScaleMin,
		Max:      model.DefaultScaleMax,
		MinLabel: r.MinLabel,
		MaxLabel: r.MaxLabel,
	}

	var violations []model.Violation
	var missing []string
	if r.Min != nil {
		s.Min = roundBound(*r.Min)
	} else {
		missing = append(missing, "min")
	}
	if r.Max != nil {
		s.Max = roundBound(*r.Max)
	} else {
		missing = append(missing, "max")
	}
	if len(missing) > 0 {
		violations = append(violations, model.Violation{
			Kind:    model.ViolationScaleBoundsMissing,
			Subject: id,
			Detail:  fmt.Sprintf("scale %s missing, using %d..%d", strings.Join(missing, " and "), s.Min, s.Max),
		})
	}

	if s.Min > s.Max {
		violations = append(violations, model.Violation{
			Kind:    model.ViolationScaleBoundsInverted,
			Subject: id,
			Detail:  fmt.Sprintf("scale min %d exceeds max %d, swapped", s.Min, s.Max),
		})
		s.Min, s.Max = s.Max, s.Min
		s.MinLabel, s.MaxLabel = s.MaxLabel, s.MinLabel
	}
	return s, violations
}

func roundBound(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

func textSpec(placeholder string) model.TextSpec {
	if strings.TrimSpace(placeholder) == "" {
		placeholder = model.DefaultTextPlaceholder
	}
	return model.TextSpec{Placeholder: placeholder}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
