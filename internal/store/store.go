// Package store persists completed decisions.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/decision-cli/internal/model"
)

// ErrNotFound is returned when a decision id does not exist.
var ErrNotFound = eris.New("store: decision not found")

// DecisionFilter specifies criteria for listing decisions.
type DecisionFilter struct {
	Depth  model.Depth `json:"depth,omitempty"`
	Search string      `json:"search,omitempty"`
	Since  time.Time   `json:"since,omitempty"`
	Limit  int         `json:"limit,omitempty"`
	Offset int         `json:"offset,omitempty"`
}

// DecisionSummary is the listing form of a stored decision.
type DecisionSummary struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Scenario      string      `json:"scenario"`
	Depth         model.Depth `json:"depth"`
	PrimaryChoice string      `json:"primary_choice"`
	TopOption     string      `json:"top_option"`
	TopScore      float64     `json:"top_score"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Agrees reports whether the service's primary choice is also the
// top-ranked option.
func (d DecisionSummary) Agrees() bool {
	return d.PrimaryChoice != "" && d.PrimaryChoice == d.TopOption
}

// Store defines the persistence interface for decision history.
type Store interface {
	SaveDecision(ctx context.Context, rec *model.DecisionRecord) error
	GetDecision(ctx context.Context, id string) (*model.DecisionRecord, error)
	ListDecisions(ctx context.Context, filter DecisionFilter) ([]DecisionSummary, error)
	DeleteDecision(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 50

// prepare fills in the id and timestamp of a new record and encodes its
// document columns.
func prepare(rec *model.DecisionRecord) (docs, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Scenario.Depth == "" {
		rec.Scenario.Depth = rec.Framework.Depth
	}

	var d docs
	var err error
	if d.framework, err = json.Marshal(rec.Framework); err != nil {
		return d, eris.Wrap(err, "store: marshal framework")
	}
	if d.responses, err = json.Marshal(rec.Responses); err != nil {
		return d, eris.Wrap(err, "store: marshal responses")
	}
	if d.evaluation, err = json.Marshal(rec.Evaluation); err != nil {
		return d, eris.Wrap(err, "store: marshal evaluation")
	}
	if d.result, err = json.Marshal(rec.Result); err != nil {
		return d, eris.Wrap(err, "store: marshal result")
	}
	return d, nil
}

type docs struct {
	framework  []byte
	responses  []byte
	evaluation []byte
	result     []byte
}

func (d docs) decode(rec *model.DecisionRecord) error {
	if err := json.Unmarshal(d.framework, &rec.Framework); err != nil {
		return eris.Wrap(err, "store: unmarshal framework")
	}
	if err := json.Unmarshal(d.responses, &rec.Responses); err != nil {
		return eris.Wrap(err, "store: unmarshal responses")
	}
	if err := json.Unmarshal(d.evaluation, &rec.Evaluation); err != nil {
		return eris.Wrap(err, "store: unmarshal evaluation")
	}
	if err := json.Unmarshal(d.result, &rec.Result); err != nil {
		return eris.Wrap(err, "store: unmarshal result")
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}
