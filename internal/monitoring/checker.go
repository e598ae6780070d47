package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/decision-cli/internal/config"
)

const defaultCheckInterval = 5 * time.Minute

// Checker periodically collects a snapshot and notifies on newly breached
// thresholds. An alert type is not re-sent while it stays breached.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cfg       config.MonitoringConfig

	active map[AlertType]bool
}

// NewChecker wires a collector and an alerter.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		collector: collector,
		alerter:   alerter,
		cfg:       cfg,
		active:    make(map[AlertType]bool),
	}
}

// Run checks every interval until ctx is done.
func (c *Checker) Run(ctx context.Context) error {
	every := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if every <= 0 {
		every = defaultCheckInterval
	}
	zap.L().Info("monitoring: checker started",
		zap.Duration("every", every),
		zap.Int("lookback_hours", c.cfg.LookbackWindowHours),
	)

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		c.Check(ctx)
	}
}

// Check runs one collection and returns the number of newly raised alerts.
// Not safe for concurrent use.
func (c *Checker) Check(ctx context.Context) int {
	snap, err := c.collector.Collect(ctx, c.cfg.LookbackWindowHours)
	if err != nil {
		zap.L().Error("monitoring: collect failed", zap.Error(err))
		return 0
	}

	breached := make(map[AlertType]bool)
	var fresh []Alert
	for _, a := range c.alerter.Evaluate(snap) {
		breached[a.Type] = true
		if !c.active[a.Type] {
			fresh = append(fresh, a)
		}
	}

	if err := c.alerter.Notify(ctx, snap, fresh); err != nil {
		// Leave the types inactive so the next check tries again.
		zap.L().Error("monitoring: notify failed", zap.Int("alerts", len(fresh)), zap.Error(err))
		for _, a := range fresh {
			delete(breached, a.Type)
		}
	}
	c.active = breached

	if len(fresh) > 0 {
		zap.L().Info("monitoring: alerts raised",
			zap.Int("new", len(fresh)),
			zap.Int("breached", len(breached)),
			zap.Int("decisions", snap.DecisionsTotal),
		)
	}
	return len(fresh)
}
