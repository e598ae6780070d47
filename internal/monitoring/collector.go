package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of decision quality.
type MetricsSnapshot struct {
	// Decision metrics (within lookback window).
	DecisionsTotal int                 `json:"decisions_total"`
	ByDepth        map[model.Depth]int `json:"by_depth"`
	AvgTopScore    float64             `json:"avg_top_score"`
	Agreed         int                 `json:"agreed"`
	AgreementRate  float64             `json:"agreement_rate"`

	// Contract violations since process start.
	Violations      map[model.ViolationKind]int `json:"violations"`
	ViolationsTotal int                         `json:"violations_total"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// collectLimit caps how many decisions a single snapshot reads.
const collectLimit = 10000

// Collector gathers metrics from the decision history and the violation
// recorder. Either source may be nil.
type Collector struct {
	store    store.Store
	recorder *Recorder
	now      func() time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store, rec *Recorder) *Collector {
	return &Collector{store: st, recorder: rec, now: time.Now}
}

// Collect gathers a snapshot over the given lookback window. A non-positive
// window covers the whole history.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.now().UTC()
	snap := &MetricsSnapshot{
		ByDepth:       make(map[model.Depth]int),
		Violations:    make(map[model.ViolationKind]int),
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	if c.store != nil {
		filter := store.DecisionFilter{Limit: collectLimit}
		if lookbackHours > 0 {
			filter.Since = now.Add(-time.Duration(lookbackHours) * time.Hour)
		}
		decisions, err := c.store.ListDecisions(ctx, filter)
		if err != nil {
			return nil, eris.Wrap(err, "monitoring: list decisions")
		}

		var totalScore float64
		for _, d := range decisions {
			snap.DecisionsTotal++
			snap.ByDepth[d.Depth]++
			totalScore += d.TopScore
			if d.Agrees() {
				snap.Agreed++
			}
		}
		if snap.DecisionsTotal > 0 {
			snap.AvgTopScore = totalScore / float64(snap.DecisionsTotal)
			snap.AgreementRate = float64(snap.Agreed) / float64(snap.DecisionsTotal)
		}
	}

	if c.recorder != nil {
		snap.Violations = c.recorder.Counts()
		snap.ViolationsTotal = c.recorder.Total()
	}

	return snap, nil
}
