package model

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
)

// QuestionType discriminates the question variants.
type QuestionType string

const (
	QuestionScale   QuestionType = "scale"
	QuestionRank    QuestionType = "rank"
	QuestionBoolean QuestionType = "boolean"
	QuestionText    QuestionType = "text"
	QuestionChoice  QuestionType = "mcq"
)

// Default presentation values applied by the normalizer.
const (
	DefaultScaleMin        = 1
	DefaultScaleMax        = 10
	DefaultTextPlaceholder = "Type your answer here..."
)

// DefaultBooleanLabels is the canonical [false, true] label pair.
var DefaultBooleanLabels = [2]string{"No", "Yes"}

// QuestionID returns the positional identifier for the question at index i.
func QuestionID(i int) string {
	return fmt.Sprintf("q_%d", i)
}

// QuestionSpec is the type-specific half of a Question. The set of
// implementations is closed: ScaleSpec, RankSpec, BooleanSpec, TextSpec and
// ChoiceSpec.
type QuestionSpec interface {
	Type() QuestionType
	isQuestionSpec()
}

// ScaleSpec is an integer slider between Min and Max inclusive.
type ScaleSpec struct {
	Min      int
	Max      int
	MinLabel string
	MaxLabel string
}

// RankSpec asks the user to order Options by preference.
type RankSpec struct {
	Options []string
}

// BooleanSpec is a two-button yes/no question. Labels are [false, true].
type BooleanSpec struct {
	Labels [2]string
}

// TextSpec is a free-text question.
type TextSpec struct {
	Placeholder string
}

// ChoiceSpec is a single-select multiple choice question.
type ChoiceSpec struct {
	Options []string
}

func (ScaleSpec) Type() QuestionType   { return QuestionScale }
func (RankSpec) Type() QuestionType    { return QuestionRank }
func (BooleanSpec) Type() QuestionType { return QuestionBoolean }
func (TextSpec) Type() QuestionType    { return QuestionText }
func (ChoiceSpec) Type() QuestionType  { return QuestionChoice }

func (ScaleSpec) isQuestionSpec()   {}
func (RankSpec) isQuestionSpec()    {}
func (BooleanSpec) isQuestionSpec() {}
func (TextSpec) isQuestionSpec()    {}
func (ChoiceSpec) isQuestionSpec()  {}

// Midpoint is the default scale answer: min plus half the range, rounded down.
func (s ScaleSpec) Midpoint() int {
	return s.Min + (s.Max-s.Min)/2
}

// Contains reports whether v lies within the scale bounds.
func (s ScaleSpec) Contains(v int) bool {
	return v >= s.Min && v <= s.Max
}

// Question is one clarifying question in normalized form.
type Question struct {
	ID           string
	Text         string
	CriteriaLink string
	Spec         QuestionSpec
}

// Type returns the question's variant tag.
func (q Question) Type() QuestionType {
	if q.Spec == nil {
		return ""
	}
	return q.Spec.Type()
}

// questionJSON is the flat, render-friendly encoding of a Question.
type questionJSON struct {
	ID           string       `json:"id"`
	Type         QuestionType `json:"type"`
	Text         string       `json:"question"`
	CriteriaLink string       `json:"criteria_link,omitempty"`
	Min          *int         `json:"min,omitempty"`
	Max          *int         `json:"max,omitempty"`
	MinLabel     string       `json:"min_label,omitempty"`
	MaxLabel     string       `json:"max_label,omitempty"`
	Options      []string     `json:"options,omitempty"`
	Labels       []string     `json:"labels,omitempty"`
	Placeholder  string       `json:"placeholder,omitempty"`
}

// MarshalJSON flattens the variant into a single object keyed by type.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:           q.ID,
		Type:         q.Type(),
		Text:         q.Text,
		CriteriaLink: q.CriteriaLink,
	}
	switch s := q.Spec.(type) {
	case ScaleSpec:
		out.Min, out.Max = &s.Min, &s.Max
		out.MinLabel, out.MaxLabel = s.MinLabel, s.MaxLabel
	case RankSpec:
		out.Options = s.Options
	case BooleanSpec:
		out.Labels = []string{s.Labels[0], s.Labels[1]}
	case TextSpec:
		out.Placeholder = s.Placeholder
	case ChoiceSpec:
		out.Options = s.Options
	case nil:
		return nil, eris.Errorf("model: question %s has no spec", q.ID)
	default:
		return nil, eris.Errorf("model: question %s has unsupported spec %T", q.ID, s)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a Question written by MarshalJSON.
func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return eris.Wrap(err, "model: decode question")
	}
	q.ID, q.Text, q.CriteriaLink = in.ID, in.Text, in.CriteriaLink

	switch in.Type {
	case QuestionScale:
		s := ScaleSpec{MinLabel: in.MinLabel, MaxLabel: in.MaxLabel}
		if in.Min != nil {
			s.Min = *in.Min
		}
		if in.Max != nil {
			s.Max = *in.Max
		}
		q.Spec = s
	case QuestionRank:
		q.Spec = RankSpec{Options: in.Options}
	case QuestionBoolean:
		labels := DefaultBooleanLabels
		if len(in.Labels) == 2 {
			labels = [2]string{in.Labels[0], in.Labels[1]}
		}
		q.Spec = BooleanSpec{Labels: labels}
	case QuestionText:
		q.Spec = TextSpec{Placeholder: in.Placeholder}
	case QuestionChoice:
		q.Spec = ChoiceSpec{Options: in.Options}
	default:
		return eris.Errorf("model: unknown question type %q", in.Type)
	}
	return nil
}
