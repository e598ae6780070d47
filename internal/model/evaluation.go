package model

import "strings"

// Confidence is the upstream's certainty in an option's score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence maps upstream text to a Confidence, defaulting to medium.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceLow:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// OptionScore is the evaluation of a single option.
type OptionScore struct {
	TotalScore     float64            `json:"total_score"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	Strengths      []string           `json:"strengths"`
	Weaknesses     []string           `json:"weaknesses"`
	Confidence     Confidence         `json:"confidence"`
}

// Recommendation is the upstream's overall verdict.
type Recommendation struct {
	PrimaryChoice string   `json:"primary_choice"`
	Reasoning     string   `json:"reasoning"`
	Alternatives  []string `json:"alternatives"`
	RedFlags      []string `json:"red_flags"`
}

// Sensitivity describes how robust the recommendation is.
type Sensitivity struct {
	CriticalFactors []string `json:"critical_factors"`
	RobustChoice    string   `json:"robust_choice"`
}

// Evaluation is the stage-2 output. It is never mutated once received.
type Evaluation struct {
	OptionScores    map[string]OptionScore `json:"option_scores"`
	Recommendation  Recommendation         `json:"recommendation"`
	Sensitivity     *Sensitivity           `json:"sensitivity_analysis,omitempty"`
	ModelUsed       string                 `json:"model_used,omitempty"`
	ComplexityScore float64                `json:"complexity_score,omitempty"`
}
