package model

// Option is a candidate choice in a decision.
type Option struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Inferred marks options the upstream suggested rather than ones the user stated.
	Inferred bool `json:"inferred"`
}

// Criterion is a weighted evaluation dimension.
type Criterion struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	Category    string  `json:"category"`
}

// Framework is the normalized stage-1 analysis. It is built once per
// successful analyze call and only read afterwards.
type Framework struct {
	DecisionType   string      `json:"decision_type,omitempty"`
	Title          string      `json:"title,omitempty"`
	ScenarioText   string      `json:"scenario_text"`
	Depth          Depth       `json:"depth"`
	Options        []Option    `json:"options"`
	Criteria       []Criterion `json:"criteria"`
	Questions      []Question  `json:"questions"`
	ContextFactors []string    `json:"context_factors"`
}

// OptionNames returns option names in framework order.
func (f *Framework) OptionNames() []string {
	names := make([]string, len(f.Options))
	for i, o := range f.Options {
		names[i] = o.Name
	}
	return names
}

// QuestionIndex returns the position of the question with the given id, or -1.
func (f *Framework) QuestionIndex(id string) int {
	for i, q := range f.Questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}
