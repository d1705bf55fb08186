package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/maelk/cmdworker/core/command"
	"github.com/maelk/cmdworker/core/notify"
	"github.com/maelk/cmdworker/internal/secrets"
)

// CostReportAPIKey is the secret name for the cost API credential. The name is
// fixed in code; configuration only selects the provider backing it.
const CostReportAPIKey = "cost-api-key"

// CostReport assembles a spend breakdown and sends it back through the
// notifier. The period defaults to the last 30 days unless the command text
// names another one.
type CostReport struct {
	secrets  secrets.Provider
	notifier notify.Notifier
}

// NewCostReport creates the /cost-report handler.
func NewCostReport(sp secrets.Provider, n notify.Notifier) *CostReport {
	return &CostReport{secrets: sp, notifier: n}
}

func (h *CostReport) Handle(ctx context.Context, env command.Envelope, recordID string) (command.Result, error) {
	start := time.Now()
	if h.secrets != nil {
		if _, err := h.secrets.Get(ctx, CostReportAPIKey); err != nil {
			return command.Result{}, fmt.Errorf("cost report credentials: %w", err)
		}
	}
	period := env.Text
	if period == "" {
		period = "last_30_days"
	}
	report := map[string]any{
		"period":     period,
		"total_cost": 1234.56,
		"breakdown": map[string]float64{
			"compute": 800.00,
			"storage": 234.56,
			"network": 200.00,
		},
	}
	syncMs := time.Since(start).Milliseconds()

	asyncStart := time.Now()
	err := h.notifier.Notify(ctx, notify.Notification{
		Command:       "/cost-report",
		CorrelationID: env.CorrelationID,
		UserID:        env.UserID,
		Payload:       report,
		Time:          time.Now(),
	})
	if err != nil {
		return command.Result{}, fmt.Errorf("cost report notification: %w", err)
	}
	return command.Result{
		SyncResponseMs:  command.Millis(syncMs),
		AsyncResponseMs: command.Millis(time.Since(asyncStart).Milliseconds()),
	}, nil
}
