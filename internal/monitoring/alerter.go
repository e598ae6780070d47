package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/decision-cli/internal/config"
	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/resilience"
)

// AlertType identifies the condition an alert reports.
type AlertType string

const (
	AlertLowAgreement       AlertType = "low_agreement"
	AlertContractViolations AlertType = "contract_violations"
)

// minDecisionsForAgreement is the sample size below which the agreement
// rate is not alerted on.
const minDecisionsForAgreement = 5

// Alert is one breached threshold.
type Alert struct {
	Type     AlertType      `json:"type"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// Notification is the webhook body: the alerts raised by one check and the
// snapshot they were computed from.
type Notification struct {
	Source   string           `json:"source"`
	SentAt   time.Time        `json:"sent_at"`
	Alerts   []Alert          `json:"alerts"`
	Snapshot *MetricsSnapshot `json:"snapshot,omitempty"`
}

// Alerter compares snapshots with the configured thresholds and posts
// notifications to a webhook.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
	retry  resilience.RetryPolicy
}

// NewAlerter creates an Alerter for cfg.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	retry := resilience.DefaultRetryPolicy()
	retry.MaxAttempts = 3
	retry.OnRetry = resilience.RetryLogger("monitoring.webhook")
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		retry:  retry,
	}
}

// Evaluate returns the alerts snap triggers, agreement first.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert

	// A primary choice that differs from the service's own top-ranked option
	// means its verdicts and its scores disagree.
	if snap.DecisionsTotal >= minDecisionsForAgreement && snap.AgreementRate < a.cfg.AgreementThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertLowAgreement,
			Severity: "medium",
			Message: fmt.Sprintf("Primary choice matched the top-ranked option in %.1f%% of decisions (%d of %d in the last %dh), below %.1f%%",
				snap.AgreementRate*100, snap.Agreed, snap.DecisionsTotal, snap.LookbackHours, a.cfg.AgreementThreshold*100),
			Details: map[string]any{
				"agreement_rate": snap.AgreementRate,
				"threshold":      a.cfg.AgreementThreshold,
			},
		})
	}

	if a.cfg.ViolationThreshold > 0 && snap.ViolationsTotal >= a.cfg.ViolationThreshold {
		kinds := make([]string, 0, len(snap.Violations))
		for k := range snap.Violations {
			kinds = append(kinds, string(k))
		}
		slices.Sort(kinds)
		alerts = append(alerts, Alert{
			Type:     AlertContractViolations,
			Severity: severityFor(snap.Violations),
			Message: fmt.Sprintf("Repaired %d malformed upstream response field(s) since start, threshold %d",
				snap.ViolationsTotal, a.cfg.ViolationThreshold),
			Details: map[string]any{
				"total": snap.ViolationsTotal,
				"kinds": kinds,
			},
		})
	}

	return alerts
}

// severityFor is high when any recorded violation could have blocked a
// session.
func severityFor(counts map[model.ViolationKind]int) string {
	for kind, n := range counts {
		if n > 0 && (model.Violation{Kind: kind}).Fatal() {
			return "high"
		}
	}
	return "low"
}

// Notify posts alerts to the webhook as a single notification. Transient
// delivery failures are retried. It is a no-op without a webhook URL or
// alerts.
func (a *Alerter) Notify(ctx context.Context, snap *MetricsSnapshot, alerts []Alert) error {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return nil
	}

	body, err := json.Marshal(Notification{
		Source:   "decide",
		SentAt:   time.Now().UTC(),
		Alerts:   alerts,
		Snapshot: snap,
	})
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal notification")
	}

	_, err = resilience.Retry(ctx, a.retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.post(ctx, body)
	})
	if err != nil {
		return err
	}
	zap.L().Info("monitoring: notification sent", zap.Int("alerts", len(alerts)))
	return nil
}

func (a *Alerter) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "monitoring: build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		err := eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}
	return nil
}
