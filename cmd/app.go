package cmd

import (
	"context"
	"fmt"

	"techsupport-agent/config"
	"techsupport-agent/database"
	apperrors "techsupport-agent/errors"
	"techsupport-agent/knowledge"
	"techsupport-agent/reasoning"

	"go.uber.org/zap"
)

// openStore connects when DATABASE_URL is set. A nil store and nil error
// mean no database is configured.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.PostgresStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	store, err := database.NewPostgresStore(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	return store, nil
}

// loadKnowledge reads the knowledge base from the configured source.
func loadKnowledge(ctx context.Context, cfg *config.Config, store *database.PostgresStore, logger *zap.Logger) (*knowledge.Base, error) {
	switch cfg.KnowledgeSource {
	case config.SourcePostgres:
		if store == nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "KNOWLEDGE_SOURCE=postgres requires DATABASE_URL")
		}
		return store.LoadKnowledgeBase(ctx)
	case config.SourceFile:
		return knowledge.LoadFile(cfg.KnowledgeBasePath, logger)
	default:
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "unknown KNOWLEDGE_SOURCE %q", cfg.KnowledgeSource)
	}
}

// newEngine builds the reasoning engine from configuration.
func newEngine(cfg *config.Config, kb *knowledge.Base, logger *zap.Logger, observer reasoning.Observer) (*reasoning.Engine, error) {
	registry, err := reasoning.LoadRegistry(cfg.SymptomRegistryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load symptom registry: %w", err)
	}
	return reasoning.NewEngine(kb, registry, knowledge.Rules{}, logger, reasoning.Options{
		MaxAnswers:            cfg.MaxAnswers,
		ParallelScanThreshold: cfg.ParallelScanThreshold,
		ScanWorkers:           cfg.ScanWorkers,
		Observer:              observer,
	})
}
