package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/maelk/cmdworker/core/command"
	"github.com/maelk/cmdworker/core/notify"
)

// InfraAudit reports infrastructure configuration findings.
type InfraAudit struct {
	notifier notify.Notifier
}

// NewInfraAudit creates the /infra-audit handler.
func NewInfraAudit(n notify.Notifier) *InfraAudit {
	return &InfraAudit{notifier: n}
}

func (h *InfraAudit) Handle(ctx context.Context, env command.Envelope, recordID string) (command.Result, error) {
	start := time.Now()
	audit := map[string]any{
		"checks_passed": 42,
		"checks_failed": 3,
		"warnings":      7,
		"findings": []string{
			"S3 bucket public access detected",
			"Unused security groups found",
			"EC2 instances without tags",
		},
	}
	syncMs := time.Since(start).Milliseconds()

	asyncStart := time.Now()
	err := h.notifier.Notify(ctx, notify.Notification{
		Command:       "/infra-audit",
		CorrelationID: env.CorrelationID,
		UserID:        env.UserID,
		Payload:       audit,
		Time:          time.Now(),
	})
	if err != nil {
		return command.Result{}, fmt.Errorf("audit notification: %w", err)
	}
	return command.Result{
		SyncResponseMs:  command.Millis(syncMs),
		AsyncResponseMs: command.Millis(time.Since(asyncStart).Milliseconds()),
	}, nil
}
