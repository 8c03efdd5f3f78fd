package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"techsupport-agent/config"
	"techsupport-agent/metrics"
	"techsupport-agent/reasoning"
	"techsupport-agent/web"
	"techsupport-agent/web/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap(cmd, opts)
			if err != nil {
				return err
			}
			defer config.Cleanup()
			return runServe(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().Int("port", 8080, "Port to listen on (overrides WEB_PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	kb, err := loadKnowledge(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	var (
		recorder *metrics.Recorder
		observer reasoning.Observer
	)
	if cfg.MetricsEnabled {
		recorder = metrics.NewRecorder(nil)
		observer = recorder
	}

	engine, err := newEngine(cfg, kb, logger, observer)
	if err != nil {
		return err
	}

	var history *services.History
	var historyStore services.HistoryRecorder
	if cfg.HistoryEnabled {
		if history, err = services.NewHistory(cfg.HistorySize); err != nil {
			return fmt.Errorf("failed to create history cache: %w", err)
		}
		if store != nil {
			historyStore = store
		}
	}
	askService := services.NewAskService(engine, history, historyStore, logger, cfg.MaxQuestionLength)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if store != nil && cfg.CleanupEnabled {
		cleanupService := web.NewCleanupService(store, logger)
		go web.StartHistoryCleanup(ctx, cleanupService, cfg.CleanupInterval, cfg.HistoryRetentionAge)
	}

	webServer := web.NewServer(askService, recorder, logger, cfg)
	port := fmt.Sprintf(":%d", cfg.WebPort)
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server shut down gracefully")
	return nil
}
