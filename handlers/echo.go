package handlers

import (
	"context"
	"time"

	"github.com/maelk/cmdworker/core/command"
	"github.com/maelk/cmdworker/core/logger"
)

// Echo replies with the command's text payload. Mostly a liveness probe for
// the whole pipeline.
type Echo struct {
	log logger.Logger
}

// NewEcho creates the /echo handler.
func NewEcho(log logger.Logger) *Echo {
	return &Echo{log: log}
}

func (h *Echo) Handle(_ context.Context, env command.Envelope, recordID string) (command.Result, error) {
	start := time.Now()
	if h.log != nil {
		h.log.Infow("echo", map[string]any{
			"record_id": recordID,
			"user_id":   env.UserID,
			"text":      env.Text,
		})
	}
	return command.Result{SyncResponseMs: command.Millis(time.Since(start).Milliseconds())}, nil
}
