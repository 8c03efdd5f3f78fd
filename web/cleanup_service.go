package web

import (
	"context"
	"time"

	apperrors "techsupport-agent/errors"

	"go.uber.org/zap"
)

// HistoryPruner deletes question history older than a cutoff.
type HistoryPruner interface {
	DeleteHistoryOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupService handles question history retention
type CleanupService struct {
	store  HistoryPruner
	logger *zap.Logger
	now    func() time.Time
}

// NewCleanupService creates a new cleanup service instance
func NewCleanupService(store HistoryPruner, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CleanupStaleHistory deletes history records older than maxAge
// Returns the number of records deleted and any error encountered
func (cs *CleanupService) CleanupStaleHistory(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, apperrors.WrapError(apperrors.ErrInvalidInput, "retention age must be positive")
	}
	cutoffTime := cs.now().Add(-maxAge)

	cs.logger.Info("Starting stale history cleanup",
		zap.Time("cutoff_time", cutoffTime),
		zap.Duration("max_age", maxAge))

	deleted, err := cs.store.DeleteHistoryOlderThan(ctx, cutoffTime)
	if err != nil {
		return 0, apperrors.WrapError(err, "failed to delete stale history")
	}

	if deleted == 0 {
		cs.logger.Debug("No stale history found")
		return 0, nil
	}

	cs.logger.Info("Stale history cleanup completed",
		zap.Int64("records_deleted", deleted))

	return deleted, nil
}

// StartHistoryCleanup runs CleanupStaleHistory immediately and then every
// interval until ctx is cancelled.
func StartHistoryCleanup(ctx context.Context, cs *CleanupService, interval, maxAge time.Duration) {
	if interval <= 0 {
		cs.logger.Warn("History cleanup disabled: interval must be positive")
		return
	}

	run := func() {
		if _, err := cs.CleanupStaleHistory(ctx, maxAge); err != nil {
			cs.logger.Error("History cleanup failed", zap.Error(err))
		}
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			run()
		case <-ctx.Done():
			cs.logger.Info("History cleanup stopped")
			return
		}
	}
}
