// Package handlers contains the command implementations served by the worker.
// Each command is an independent unit; adding one means implementing
// command.Handler and listing it in RegisterAll.
package handlers

import (
	"github.com/maelk/cmdworker/core/command"
	"github.com/maelk/cmdworker/core/logger"
	"github.com/maelk/cmdworker/core/notify"
	"github.com/maelk/cmdworker/internal/secrets"
)

// Deps groups the collaborators shared by the handlers.
type Deps struct {
	Log      logger.Logger
	Secrets  secrets.Provider
	Notifier notify.Notifier
}

// RegisterAll wires every known command into the registry.
func RegisterAll(reg *command.Registry, deps Deps) error {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	entries := []struct {
		name    string
		handler command.Handler
	}{
		{"/echo", NewEcho(deps.Log)},
		{"/cost-report", NewCostReport(deps.Secrets, deps.Notifier)},
		{"/infra-audit", NewInfraAudit(deps.Notifier)},
		{"/user-stats", NewUserStats(deps.Notifier)},
	}
	for _, e := range entries {
		if err := reg.Register(e.name, e.handler); err != nil {
			return err
		}
	}
	return nil
}
