package model

import "strings"

// AnswerValue is the type-dependent answer to one question. The set of
// implementations is closed: ScaleAnswer, RankAnswer, BooleanAnswer,
// TextAnswer and ChoiceAnswer.
type AnswerValue interface {
	Type() QuestionType
	// Answered reports whether the value counts toward completeness.
	Answered() bool
	// Wire returns the JSON-ready value sent upstream. Unanswered values
	// encode as nil.
	Wire() any
}

// ScaleAnswer is the selected point on a scale.
type ScaleAnswer int

// RankAnswer is the user's ordering of a rank question's options.
type RankAnswer []string

// BooleanAnswer is a yes/no answer. Set is false until the user picks.
type BooleanAnswer struct {
	Set   bool
	Value bool
}

// TextAnswer is free text.
type TextAnswer string

// ChoiceAnswer is the selected mcq option. Set is false until the user picks.
type ChoiceAnswer struct {
	Set   bool
	Value string
}

func (ScaleAnswer) Type() QuestionType   { return QuestionScale }
func (RankAnswer) Type() QuestionType    { return QuestionRank }
func (BooleanAnswer) Type() QuestionType { return QuestionBoolean }
func (TextAnswer) Type() QuestionType    { return QuestionText }
func (ChoiceAnswer) Type() QuestionType  { return QuestionChoice }

func (ScaleAnswer) Answered() bool     { return true }
func (RankAnswer) Answered() bool      { return true }
func (a BooleanAnswer) Answered() bool { return a.Set }
func (a TextAnswer) Answered() bool    { return strings.TrimSpace(string(a)) != "" }
func (a ChoiceAnswer) Answered() bool  { return a.Set }

func (a ScaleAnswer) Wire() any { return int(a) }

func (a RankAnswer) Wire() any {
	out := make([]string, len(a))
	copy(out, a)
	return out
}

func (a BooleanAnswer) Wire() any {
	if !a.Set {
		return nil
	}
	return a.Value
}

func (a TextAnswer) Wire() any { return string(a) }

func (a ChoiceAnswer) Wire() any {
	if !a.Set {
		return nil
	}
	return a.Value
}

// DefaultAnswer returns the seed value for a question.
func DefaultAnswer(q Question) AnswerValue {
	switch s := q.Spec.(type) {
	case ScaleSpec:
		return ScaleAnswer(s.Midpoint())
	case RankSpec:
		out := make(RankAnswer, len(s.Options))
		copy(out, s.Options)
		return out
	case BooleanSpec:
		return BooleanAnswer{}
	case TextSpec:
		return TextAnswer("")
	case ChoiceSpec:
		return ChoiceAnswer{}
	default:
		// A question without a spec is never answered.
		return TextAnswer("")
	}
}

// Responses are answers re-keyed by question position, the addressing the
// evaluate call expects.
type Responses map[int]any
