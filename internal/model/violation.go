package model

// ViolationKind names a way an upstream payload can be structurally present
// but semantically incomplete.
type ViolationKind string

const (
	ViolationScaleBoundsMissing  ViolationKind = "scale_bounds_missing"
	ViolationScaleBoundsInverted ViolationKind = "scale_bounds_inverted"
	ViolationRankOptionsMissing  ViolationKind = "rank_options_missing"
	ViolationMCQOptionsMissing   ViolationKind = "mcq_options_missing"
	ViolationUnknownQuestionType ViolationKind = "unknown_question_type"
	ViolationMissingEvaluation   ViolationKind = "evaluation_missing_option"
	ViolationUnknownEvaluation   ViolationKind = "evaluation_unknown_option"
)

// Violation records one contract violation and the fallback applied for it.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Subject string        `json:"subject"`
	Detail  string        `json:"detail"`
}

// Fatal reports whether the violation leaves the wizard unable to complete.
// An mcq question without choices can never be answered.
func (v Violation) Fatal() bool {
	return v.Kind == ViolationMCQOptionsMissing
}
