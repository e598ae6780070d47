package answer

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/decision-cli/internal/model"
)

// Decode converts a loosely typed value (from JSON, YAML or a terminal
// prompt) into the answer variant q expects. It validates shape only; the
// store validates ranges and options.
func Decode(q model.Question, raw any) (model.AnswerValue, error) {
	switch s := q.Spec.(type) {
	case model.ScaleSpec:
		n, err := toInt(raw)
		if err != nil {
			return nil, eris.Wrapf(ErrTypeMismatch, "answer: %s: %v", q.ID, err)
		}
		return model.ScaleAnswer(n), nil
	case model.RankSpec:
		order, err := toStrings(raw)
		if err != nil {
			return nil, eris.Wrapf(ErrTypeMismatch, "answer: %s: %v", q.ID, err)
		}
		return model.RankAnswer(order), nil
	case model.BooleanSpec:
		if raw == nil {
			return model.BooleanAnswer{}, nil
		}
		b, err := toBool(raw, s.Labels)
		if err != nil {
			return nil, eris.Wrapf(ErrTypeMismatch, "answer: %s: %v", q.ID, err)
		}
		return model.BooleanAnswer{Set: true, Value: b}, nil
	case model.TextSpec:
		str, ok := raw.(string)
		if !ok && raw != nil {
			return nil, eris.Wrapf(ErrTypeMismatch, "answer: %s: want text, got %T", q.ID, raw)
		}
		return model.TextAnswer(str), nil
	case model.ChoiceSpec:
		if raw == nil {
			return model.ChoiceAnswer{}, nil
		}
		str, ok := raw.(string)
		if !ok {
			return nil, eris.Wrapf(ErrTypeMismatch, "answer: %s: want option, got %T", q.ID, raw)
		}
		return model.ChoiceAnswer{Set: true, Value: str}, nil
	default:
		return nil, eris.Wrapf(ErrTypeMismatch, "answer: %s has no spec", q.ID)
	}
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, eris.Errorf("scale value %v is not a whole number", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, eris.Errorf("scale value %q is not a number", v)
		}
		return n, nil
	default:
		return 0, eris.Errorf("want number, got %T", raw)
	}
}

func toStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, eris.Errorf("ranking item %d is %T, want text", i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, eris.Errorf("want list, got %T", raw)
	}
}

func toBool(raw any, labels [2]string) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		t := strings.ToLower(strings.TrimSpace(v))
		switch t {
		case "y", "yes", "true", strings.ToLower(labels[1]):
			return true, nil
		case "n", "no", "false", strings.ToLower(labels[0]):
			return false, nil
		}
		return false, eris.Errorf("%q is not yes or no", v)
	default:
		return false, eris.Errorf("want yes/no, got %T", raw)
	}
}
