package decisionapi

// AnalyzeRequest is the body for POST /analyze.
type AnalyzeRequest struct {
	Scenario string `json:"scenario"`
	Depth    string `json:"depth"`
}

// Choice is a candidate option as returned by /analyze.
type Choice struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Inferred    bool   `json:"inferred"`
}

// Criterion is a weighted evaluation dimension as returned by /analyze.
type Criterion struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	Category    string  `json:"category"`
}

// Question is a clarifying question in its raw upstream shape. Which fields
// are populated depends on Type, and the service does not always honor that.
type Question struct {
	Text         string   `json:"text"`
	Type         string   `json:"type"`
	CriteriaLink string   `json:"criteria_link,omitempty"`
	Options      []string `json:"options,omitempty"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	MinLabel     string   `json:"minLabel,omitempty"`
	MaxLabel     string   `json:"maxLabel,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	Placeholder  string   `json:"placeholder,omitempty"`
}

// AnalyzeResponse is the decision framework returned by /analyze. It is also
// sent back verbatim-shaped as the framework of an evaluate call.
type AnalyzeResponse struct {
	DecisionType   string      `json:"decision_type"`
	Title          string      `json:"title"`
	Options        []Choice    `json:"options"`
	Criteria       []Criterion `json:"criteria"`
	Questions      []Question  `json:"questions"`
	ContextFactors []string    `json:"context_factors"`
	Depth          string      `json:"depth"`
	ScenarioText   string      `json:"scenario_text"`
}

// EvaluateRequest is the body for POST /evaluate. Responses are keyed by
// question position ("0", "1", ...).
type EvaluateRequest struct {
	Framework AnalyzeResponse `json:"framework"`
	Responses map[string]any  `json:"responses"`
}

// OptionScore is the evaluation of one option.
type OptionScore struct {
	TotalScore     float64            `json:"total_score"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	Strengths      []string           `json:"strengths"`
	Weaknesses     []string           `json:"weaknesses"`
	Confidence     string             `json:"confidence"`
}

// Recommendation is the service's verdict.
type Recommendation struct {
	PrimaryChoice string   `json:"primary_choice"`
	Reasoning     string   `json:"reasoning"`
	Alternatives  []string `json:"alternatives"`
	RedFlags      []string `json:"red_flags"`
}

// SensitivityAnalysis is optional and only present on deeper analyses.
type SensitivityAnalysis struct {
	CriticalFactors []string `json:"critical_factors"`
	RobustChoice    string   `json:"robust_choice"`
}

// EvaluateResponse is the scored result returned by /evaluate.
type EvaluateResponse struct {
	OptionScores        map[string]OptionScore `json:"option_scores"`
	Recommendation      Recommendation         `json:"recommendation"`
	SensitivityAnalysis *SensitivityAnalysis   `json:"sensitivity_analysis,omitempty"`
	ModelUsed           string                 `json:"model_used,omitempty"`
	ComplexityScore     float64                `json:"complexity_score,omitempty"`
}

// ConnectionStatus is the body of GET /test.
type ConnectionStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}
