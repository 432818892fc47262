package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kilnhall/internal/pkg/config"
	"kilnhall/internal/pkg/errs"
	"kilnhall/internal/usecase/commands"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the three periodic processes: the due-job pump, the
// storage-policy sweep and retention pruning. Each run gets its own timeout;
// overlapping sweeps are rejected by the engine itself.
type Scheduler struct {
	cronEngine    *cron.Cron
	queue         commands.QueueCommands
	storagePolicy commands.StoragePolicyCommands
	maintenance   commands.MaintenanceCommands
	cfg           config.SchedulerConfig
	logger        *slog.Logger
}

func New(
	queue commands.QueueCommands,
	storagePolicy commands.StoragePolicyCommands,
	maintenance commands.MaintenanceCommands,
	cfg config.SchedulerConfig,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		cronEngine:    cron.New(cron.WithLocation(time.UTC)),
		queue:         queue,
		storagePolicy: storagePolicy,
		maintenance:   maintenance,
		cfg:           cfg,
		logger:        logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cfg.JobPumpSpec, s.runJobPump); err != nil {
		return errs.Wrap(err, "failed to register job pump")
	}
	if _, err := s.cronEngine.AddFunc(s.cfg.SweepSpec, s.runSweep); err != nil {
		return errs.Wrap(err, "failed to register storage-policy sweep")
	}
	if _, err := s.cronEngine.AddFunc(s.cfg.RetentionSpec, s.runRetention); err != nil {
		return errs.Wrap(err, "failed to register retention pruning")
	}

	s.cronEngine.Start()
	s.logger.Info("scheduler started",
		slog.String("job_pump", s.cfg.JobPumpSpec),
		slog.String("sweep", s.cfg.SweepSpec),
		slog.String("retention", s.cfg.RetentionSpec),
	)
	return nil
}

// Stop halts scheduling and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runJobPump() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	stats, err := s.queue.ProcessDueJobs(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "due-job pump failed", slog.String("error", err.Error()))
		return
	}
	if stats.Picked > 0 {
		s.logger.InfoContext(ctx, "due-job pump finished",
			slog.Int("picked", stats.Picked),
			slog.Int("done", stats.Done),
			slog.Int("skipped", stats.Skipped),
			slog.Int("retried", stats.Retried),
			slog.Int("failed", stats.Failed),
		)
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	if _, err := s.storagePolicy.Sweep(ctx); err != nil {
		if errors.Is(err, commands.ErrSweepAlreadyRunning) {
			s.logger.WarnContext(ctx, "storage-policy sweep still running, skipping this tick")
			return
		}
		s.logger.ErrorContext(ctx, "storage-policy sweep failed", slog.String("error", err.Error()))
	}
}

func (s *Scheduler) runRetention() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	if _, err := s.maintenance.PruneRetention(ctx); err != nil {
		s.logger.ErrorContext(ctx, "retention pruning failed", slog.String("error", err.Error()))
	}
}
