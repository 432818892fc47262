package commands

import (
	"context"
	"log/slog"

	"kilnhall/internal/pkg/clock"
	"kilnhall/internal/pkg/config"
)

type RetentionStats struct {
	JobsPruned        int64
	DeadLettersPruned int64
}

// MaintenanceCommands prunes finished jobs and expired dead letters past
// their retention windows.
type MaintenanceCommands interface {
	PruneRetention(ctx context.Context) (RetentionStats, error)
}

type maintenanceImpl struct {
	jobStore        JobStore
	deadLetterStore DeadLetterStore
	cfg             config.NotifyConfig
	clock           clock.Clock
	logger          *slog.Logger
}

func NewMaintenanceUseCase(
	jobStore JobStore,
	deadLetterStore DeadLetterStore,
	cfg config.NotifyConfig,
	clock clock.Clock,
	logger *slog.Logger,
) MaintenanceCommands {
	return &maintenanceImpl{
		jobStore:        jobStore,
		deadLetterStore: deadLetterStore,
		cfg:             cfg,
		clock:           clock,
		logger:          logger,
	}
}

func (m *maintenanceImpl) PruneRetention(ctx context.Context) (RetentionStats, error) {
	var stats RetentionStats
	now := m.clock.Now()

	jobs, err := m.jobStore.PruneFinished(ctx, now.Add(-m.cfg.JobRetention))
	if err != nil {
		return stats, err
	}
	stats.JobsPruned = jobs

	letters, err := m.deadLetterStore.PruneBefore(ctx, now.Add(-m.cfg.DeadLetterKeep))
	if err != nil {
		return stats, err
	}
	stats.DeadLettersPruned = letters

	m.logger.InfoContext(ctx, "retention pruning finished",
		slog.Int64("jobs_pruned", stats.JobsPruned),
		slog.Int64("dead_letters_pruned", stats.DeadLettersPruned),
	)
	return stats, nil
}
