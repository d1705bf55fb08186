package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/maelk/cmdworker/core/command"
	"github.com/maelk/cmdworker/core/notify"
)

// UserStats reports command usage statistics.
type UserStats struct {
	notifier notify.Notifier
}

// NewUserStats creates the /user-stats handler.
func NewUserStats(n notify.Notifier) *UserStats {
	return &UserStats{notifier: n}
}

func (h *UserStats) Handle(ctx context.Context, env command.Envelope, recordID string) (command.Result, error) {
	start := time.Now()
	stats := map[string]any{
		"active_users":      156,
		"commands_executed": 2341,
		"most_used_command": "/cost-report",
	}
	syncMs := time.Since(start).Milliseconds()

	asyncStart := time.Now()
	err := h.notifier.Notify(ctx, notify.Notification{
		Command:       "/user-stats",
		CorrelationID: env.CorrelationID,
		UserID:        env.UserID,
		Payload:       stats,
		Time:          time.Now(),
	})
	if err != nil {
		return command.Result{}, fmt.Errorf("stats notification: %w", err)
	}
	return command.Result{
		SyncResponseMs:  command.Millis(syncMs),
		AsyncResponseMs: command.Millis(time.Since(asyncStart).Milliseconds()),
	}, nil
}
