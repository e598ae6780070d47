package model

// RankedOption is one option in the render model.
type RankedOption struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Inferred    bool       `json:"inferred" yaml:"inferred"`
	Pros        []string   `json:"pros" yaml:"pros"`
	Cons        []string   `json:"cons" yaml:"cons"`
	Score       float64    `json:"score" yaml:"score"`
	Confidence  Confidence `json:"confidence" yaml:"confidence"`
}

// CriterionSummary is a criterion annotated with its weight percentage and
// the score each option received on it.
type CriterionSummary struct {
	Name          string             `json:"name" yaml:"name"`
	Description   string             `json:"description" yaml:"description"`
	Category      string             `json:"category" yaml:"category"`
	Weight        float64            `json:"weight" yaml:"weight"`
	WeightPercent int                `json:"weight_percent" yaml:"weight_percent"`
	Scores        map[string]float64 `json:"scores" yaml:"scores"`
}

// MergedResult is the render-ready combination of a Framework and its
// Evaluation. Options are ranked by score, highest first.
type MergedResult struct {
	Title           string             `json:"title,omitempty" yaml:"title,omitempty"`
	Options         []RankedOption     `json:"options" yaml:"options"`
	Criteria        []CriterionSummary `json:"criteria" yaml:"criteria"`
	PrimaryChoice   string             `json:"primary_choice" yaml:"primary_choice"`
	Recommendation  string             `json:"recommendation" yaml:"recommendation"`
	Alternatives    []string           `json:"alternatives" yaml:"alternatives"`
	RedFlags        []string           `json:"red_flags" yaml:"red_flags"`
	CriticalFactors []string           `json:"critical_factors,omitempty" yaml:"critical_factors,omitempty"`
	RobustChoice    string             `json:"robust_choice,omitempty" yaml:"robust_choice,omitempty"`
}

// Top returns the highest-ranked option, or nil when there are none.
func (r *MergedResult) Top() *RankedOption {
	if r == nil || len(r.Options) == 0 {
		return nil
	}
	return &r.Options[0]
}
