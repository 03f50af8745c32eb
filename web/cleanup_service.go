package web

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RunPruner deletes run history older than a cutoff. PostgresStore implements it.
type RunPruner interface {
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupService handles run history retention
type CleanupService struct {
	store  RunPruner
	logger *zap.Logger
}

// NewCleanupService creates a new cleanup service instance
func NewCleanupService(store RunPruner, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		store:  store,
		logger: logger,
	}
}

// CleanupStaleRuns deletes runs older than maxAge.
// Returns the number of runs deleted and any error encountered
func (cs *CleanupService) CleanupStaleRuns(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-maxAge)

	cs.logger.Debug("Starting stale run cleanup",
		zap.Time("cutoff_time", cutoffTime),
		zap.Duration("max_age", maxAge))

	deleted, err := cs.store.DeleteRunsBefore(ctx, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale runs: %w", err)
	}

	if deleted > 0 {
		cs.logger.Info("Stale run cleanup completed", zap.Int64("runs_deleted", deleted))
	}
	return deleted, nil
}

// Run cleans up once immediately and then every interval until ctx is done.
func (cs *CleanupService) Run(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := cs.CleanupStaleRuns(ctx, maxAge); err != nil {
			cs.logger.Warn("Run cleanup failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
