package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hemascan/internal/backendsync"
	"hemascan/internal/blob"
	"hemascan/internal/daemon"
	"hemascan/internal/pipeline"
	"hemascan/internal/providers"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the hemascan HTTP service",
		Long: `Run the long-lived hemascan service. The service holds a single-instance
lock, exposes the scan pipeline over HTTP on the configured bind address, and
shuts down cleanly on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			chain, err := providers.BuildChain(cfg)
			if err != nil {
				return err
			}
			manager := providers.NewManager(chain, logger)
			orchestrator := pipeline.NewOrchestrator(
				store,
				blob.NewFilesystemStore(cfg),
				backendsync.NewService(cfg),
				cfg.Corpus,
				logger,
			)

			service, err := daemon.New(cfg, store, manager, orchestrator, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := service.Start(runCtx); err != nil {
				return err
			}
			<-runCtx.Done()
			service.Stop()
			return nil
		},
	}
}
