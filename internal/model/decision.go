package model

import "time"

// DecisionRecord is a completed wizard run as kept in the decision history.
type DecisionRecord struct {
	ID         string        `json:"id"`
	Scenario   ScenarioInput `json:"scenario"`
	Framework  Framework     `json:"framework"`
	Responses  Responses     `json:"responses"`
	Evaluation Evaluation    `json:"evaluation"`
	Result     MergedResult  `json:"result"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewDecisionRecord assembles a record from the artifacts of one run. The
// scenario is what the user submitted, not the upstream echo.
func NewDecisionRecord(in ScenarioInput, fw Framework, responses Responses, eval Evaluation, result MergedResult) DecisionRecord {
	return DecisionRecord{
		Scenario:   in,
		Framework:  fw,
		Responses:  responses,
		Evaluation: eval,
		Result:     result,
	}
}

// TopOption returns the name and score of the highest-ranked option.
func (d *DecisionRecord) TopOption() (string, float64) {
	top := d.Result.Top()
	if top == nil {
		return "", 0
	}
	return top.Name, top.Score
}
