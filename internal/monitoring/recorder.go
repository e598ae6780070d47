// Package monitoring tracks contract violations and decision quality.
package monitoring

import (
	"maps"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/decision-cli/internal/model"
)

// Recorder logs contract violations reported by wizard sessions and keeps a
// running count per kind. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	counts map[model.ViolationKind]int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{counts: make(map[model.ViolationKind]int)}
}

// RecordViolations logs each violation at warn level and counts it.
func (r *Recorder) RecordViolations(op string, vs []model.Violation) {
	if len(vs) == 0 {
		return
	}
	log := zap.L().With(zap.String("component", "monitoring.recorder"), zap.String("op", op))

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range vs {
		r.counts[v.Kind]++
		log.Warn("upstream contract violation",
			zap.String("kind", string(v.Kind)),
			zap.String("subject", v.Subject),
			zap.String("detail", v.Detail),
			zap.Bool("fatal", v.Fatal()),
		)
	}
}

// Counts returns a copy of the per-kind totals.
func (r *Recorder) Counts() map[model.ViolationKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.counts)
}

// Total returns the number of violations recorded so far.
func (r *Recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.counts {
		n += c
	}
	return n
}
