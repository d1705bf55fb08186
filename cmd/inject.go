package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/maelk/cmdworker/config"
	"github.com/maelk/cmdworker/core/command"
	"github.com/maelk/cmdworker/core/worker"
	"github.com/maelk/cmdworker/handlers"
	"github.com/maelk/cmdworker/infra/logger"
	"github.com/maelk/cmdworker/internal/secrets"
)

var batchPath string

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Run a batch file through the dispatcher without a broker",
	RunE:  injectBatch,
}

func init() {
	injectCmd.Flags().StringVarP(&batchPath, "batch", "b", "", "batch JSON file")
	_ = injectCmd.MarkFlagRequired("batch")
	rootCmd.AddCommand(injectCmd)
}

// injectBatch wires a standalone dispatcher and feeds it one batch read from
// disk. Useful to smoke-test handlers before pointing the worker at a broker.
func injectBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := os.ReadFile(batchPath)
	if err != nil {
		return fmt.Errorf("read batch: %w", err)
	}
	batch, err := worker.ParseBatch(data)
	if err != nil {
		return fmt.Errorf("parse batch: %w", err)
	}
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}

	logg := logger.New("inject")
	registry := command.NewRegistry()
	provider := secrets.Cached(
		secrets.EnvProvider{Prefix: cfg.Secrets.EnvPrefix},
		time.Duration(cfg.Secrets.TTLSeconds)*time.Second,
	)
	if err := handlers.RegisterAll(registry, handlers.Deps{Log: logg, Secrets: provider}); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}
	dispatcher, err := worker.NewDispatcher(registry, logg, nil, nil,
		time.Duration(cfg.Worker.HandlerTimeoutSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("dispatcher: %w", err)
	}

	out := dispatcher.Dispatch(cmd.Context(), batch)
	if len(out.FailedIDs) > 0 {
		return fmt.Errorf("%d of %d records failed: %v", len(out.FailedIDs), len(batch.Records), out.FailedIDs)
	}
	logg.Infof("all %d records processed", len(batch.Records))
	return nil
}
