package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/domain/reservation"
	"kilnhall/internal/infra"
	"kilnhall/internal/pkg/clock"
	"kilnhall/internal/pkg/config"

	"github.com/google/uuid"
)

type ProcessStats struct {
	Picked  int
	Done    int
	Skipped int
	Retried int
	Failed  int
}

// FollowUpScheduler is what the queue engine needs from the follow-up
// chainer: schedule the next link after a successful follow-up run.
type FollowUpScheduler interface {
	ScheduleNext(ctx context.Context, userID uuid.UUID, p notify.Payload) error
}

// QueueCommands owns the job state machine: due-job processing, the
// dispatch-time preference recheck, live-condition revalidation, retry
// backoff and dead-lettering.
type QueueCommands interface {
	ProcessDueJobs(ctx context.Context) (ProcessStats, error)
	ProcessJob(ctx context.Context, jobID uuid.UUID) error
}

type queueEngineImpl struct {
	jobStore        JobStore
	deadLetterStore DeadLetterStore
	prefStore       PreferencesStore
	reservationRepo ReservationStore
	dispatcher      Dispatcher
	chainer         FollowUpScheduler
	cfg             config.NotifyConfig
	clock           clock.Clock
	logger          *slog.Logger
}

func NewQueueEngine(
	jobStore JobStore,
	deadLetterStore DeadLetterStore,
	prefStore PreferencesStore,
	reservationRepo ReservationStore,
	dispatcher Dispatcher,
	chainer FollowUpScheduler,
	cfg config.NotifyConfig,
	clock clock.Clock,
	logger *slog.Logger,
) QueueCommands {
	return &queueEngineImpl{
		jobStore:        jobStore,
		deadLetterStore: deadLetterStore,
		prefStore:       prefStore,
		reservationRepo: reservationRepo,
		dispatcher:      dispatcher,
		chainer:         chainer,
		cfg:             cfg,
		clock:           clock,
		logger:          logger,
	}
}

func (e *queueEngineImpl) ProcessDueJobs(ctx context.Context) (ProcessStats, error) {
	var stats ProcessStats

	jobs, err := e.jobStore.FindDue(ctx, e.clock.Now(), e.cfg.BatchLimit)
	if err != nil {
		return stats, err
	}

	for _, job := range jobs {
		stats.Picked++
		outcome, err := e.processOne(ctx, job.ID)
		if err != nil {
			e.logger.ErrorContext(ctx, "job processing failed",
				slog.String("job_id", job.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		switch outcome {
		case outcomeDone:
			stats.Done++
		case outcomeSkipped:
			stats.Skipped++
		case outcomeRetried:
			stats.Retried++
		case outcomeFailed:
			stats.Failed++
		}
	}

	return stats, nil
}

// ProcessJob is the best-effort immediate path used right after enqueue. A
// job already claimed by a concurrent sweep is simply not processed again.
func (e *queueEngineImpl) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	_, err := e.processOne(ctx, jobID)
	return err
}

type jobOutcome int

const (
	outcomeNotClaimed jobOutcome = iota
	outcomeDone
	outcomeSkipped
	outcomeRetried
	outcomeFailed
)

func (e *queueEngineImpl) processOne(ctx context.Context, jobID uuid.UUID) (jobOutcome, error) {
	job, err := e.jobStore.Claim(ctx, jobID, e.clock.Now())
	if err != nil {
		return outcomeNotClaimed, err
	}
	if job == nil {
		return outcomeNotClaimed, nil
	}

	prefs, err := e.prefStore.Find(ctx, job.UserID)
	if err != nil {
		return outcomeNotClaimed, err
	}

	if reason := dispatchSkipReason(job.Kind, prefs); reason != "" {
		return e.skip(ctx, job, reason)
	}

	channels := job.Channels.Intersect(prefs.EnabledChannels())
	if !channels.Any() {
		return e.skip(ctx, job, notify.SkipNoChannelsEnabled)
	}

	var snap *reservation.Snapshot
	if job.Kind.NeedsRevalidation() {
		var reason notify.SkipReason
		snap, reason, err = e.revalidate(ctx, job)
		if err != nil {
			return outcomeNotClaimed, err
		}
		if reason != "" {
			return e.skip(ctx, job, reason)
		}
	}

	outcome, dispatchErr := e.dispatcher.Dispatch(ctx, job, channels)
	if dispatchErr != nil {
		return e.handleFailure(ctx, job, dispatchErr)
	}

	if err := e.jobStore.Finish(ctx, job.ID, notify.StatusDone, outcome.JoinedWarnings(), nil); err != nil {
		return outcomeNotClaimed, err
	}

	e.afterSuccess(ctx, job, snap)
	return outcomeDone, nil
}

func dispatchSkipReason(kind notify.Kind, prefs notify.Preferences) notify.SkipReason {
	if !prefs.KindEnabled(kind) {
		return notify.SkipPrefsDisabled
	}
	if kind.IsReservationKind() && !prefs.ReservationUpdates {
		return notify.SkipReservationPrefDisabled
	}
	return ""
}

// revalidate checks that the live reservation still warrants sending. Only
// the self-rescheduling kinds carry this check; their conditions can lapse
// between enqueue and dispatch.
func (e *queueEngineImpl) revalidate(ctx context.Context, job *notify.Job) (*reservation.Snapshot, notify.SkipReason, error) {
	p, err := notify.ParsePayload(job.Payload)
	if err != nil {
		return nil, "", err
	}
	if p.ReservationID == nil {
		return nil, notify.SkipReservationNotFound, nil
	}

	snap, err := e.reservationRepo.FindByID(ctx, *p.ReservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, notify.SkipReservationNotFound, nil
		}
		return nil, "", err
	}

	switch job.Kind {
	case notify.KindReservationDelayFollowUp:
		if snap.Status == reservation.StatusCancelled ||
			snap.LoadStatus == reservation.LoadStatusLoaded ||
			!snap.Delayed() {
			return nil, notify.SkipNoLongerDelayed, nil
		}
		if p.EpisodeID != nil && (snap.DelayEpisodeID == nil || *snap.DelayEpisodeID != *p.EpisodeID) {
			return nil, notify.SkipNoLongerDelayed, nil
		}

	case notify.KindReservationPickupReminder:
		if !snap.SweepEligible() {
			return nil, notify.SkipNotReadyForPickup, nil
		}
		if snap.StorageFinalized() && p.StorageStatus != string(reservation.StorageStoredByPolicy) {
			return nil, notify.SkipStorageFinalized, nil
		}
		if p.ReminderOrdinal > 0 && snap.HasNotice(reminderSentEvent(p.ReminderOrdinal)) {
			return nil, notify.SkipReminderAlreadyRecorded, nil
		}
	}

	return snap, "", nil
}

func (e *queueEngineImpl) skip(ctx context.Context, job *notify.Job, reason notify.SkipReason) (jobOutcome, error) {
	r := string(reason)
	if err := e.jobStore.Finish(ctx, job.ID, notify.StatusSkipped, &r, nil); err != nil {
		return outcomeNotClaimed, err
	}

	e.logger.InfoContext(ctx, "notification job skipped",
		slog.String("job_id", job.ID.String()),
		slog.String("reason", r),
	)
	return outcomeSkipped, nil
}

func (e *queueEngineImpl) handleFailure(ctx context.Context, job *notify.Job, dispatchErr error) (jobOutcome, error) {
	class := notify.Classify(dispatchErr)
	msg := dispatchErr.Error()
	classStr := class.String()

	if class.Retryable() && job.Attempts < e.cfg.MaxAttempts {
		runAfter := e.clock.Now().Add(e.backoffDelay(job.Attempts))
		if err := e.jobStore.Requeue(ctx, job.ID, runAfter, msg, classStr); err != nil {
			return outcomeNotClaimed, err
		}

		e.logger.WarnContext(ctx, "notification job requeued",
			slog.String("job_id", job.ID.String()),
			slog.Int("attempt", int(job.Attempts)),
			slog.String("error_class", classStr),
			slog.Time("run_after", runAfter),
		)
		return outcomeRetried, nil
	}

	if err := e.jobStore.Finish(ctx, job.ID, notify.StatusFailed, &msg, &classStr); err != nil {
		return outcomeNotClaimed, err
	}

	if err := e.deadLetterStore.Create(ctx, &notify.DeadLetter{
		JobID:        job.ID,
		Kind:         job.Kind,
		DedupeKey:    job.DedupeKey,
		UserID:       job.UserID,
		Payload:      job.Payload,
		Attempts:     job.Attempts,
		ErrorClass:   class,
		ErrorMessage: msg,
		FailedAt:     e.clock.Now(),
	}); err != nil {
		return outcomeNotClaimed, err
	}

	if job.Kind == notify.KindReservationPickupReminder {
		e.recordReminderFailure(ctx, job)
	}

	e.logger.ErrorContext(ctx, "notification job dead-lettered",
		slog.String("job_id", job.ID.String()),
		slog.String("error_class", classStr),
	)
	return outcomeFailed, nil
}

func (e *queueEngineImpl) recordReminderFailure(ctx context.Context, job *notify.Job) {
	p, err := notify.ParsePayload(job.Payload)
	if err != nil || p.ReservationID == nil {
		return
	}
	if err := e.reservationRepo.RecordReminderFailure(ctx, *p.ReservationID); err != nil {
		e.logger.ErrorContext(ctx, "failed to record reminder failure",
			slog.String("reservation_id", p.ReservationID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := e.reservationRepo.AppendAudit(ctx, *p.ReservationID, "reminder_failed", map[string]any{
		"job_id":  job.ID.String(),
		"ordinal": p.ReminderOrdinal,
	}); err != nil {
		e.logger.ErrorContext(ctx, "failed to audit reminder failure",
			slog.String("reservation_id", p.ReservationID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// afterSuccess runs the post-delivery hooks. Failures here never undo the
// done transition; they are logged and picked up by the next sweep.
func (e *queueEngineImpl) afterSuccess(ctx context.Context, job *notify.Job, snap *reservation.Snapshot) {
	switch job.Kind {
	case notify.KindReservationDelayFollowUp:
		p, err := notify.ParsePayload(job.Payload)
		if err != nil {
			return
		}
		if err := e.chainer.ScheduleNext(ctx, job.UserID, p); err != nil {
			e.logger.ErrorContext(ctx, "failed to schedule next follow-up",
				slog.String("job_id", job.ID.String()),
				slog.String("error", err.Error()),
			)
		}

	case notify.KindReservationPickupReminder:
		if snap == nil {
			return
		}
		p, err := notify.ParsePayload(job.Payload)
		if err != nil || p.ReminderOrdinal == 0 {
			return
		}
		notice := reservation.Notice{
			At:     e.clock.Now(),
			Event:  reminderSentEvent(p.ReminderOrdinal),
			Detail: job.ID.String(),
		}
		if err := e.reservationRepo.AppendNotice(ctx, snap, notice); err != nil {
			e.logger.ErrorContext(ctx, "failed to record reminder notice",
				slog.String("reservation_id", snap.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

// backoffDelay is base doubled per prior attempt, scaled by a jitter factor
// in [0.85, 1.0] and capped.
func (e *queueEngineImpl) backoffDelay(attempt int32) time.Duration {
	delay := e.cfg.BackoffBase
	for i := int32(1); i < attempt && delay < e.cfg.BackoffCap; i++ {
		delay *= 2
	}
	if delay > e.cfg.BackoffCap {
		delay = e.cfg.BackoffCap
	}

	jitter := 0.85 + 0.15*rand.Float64()
	return time.Duration(float64(delay) * jitter)
}

func reminderSentEvent(ordinal int) string {
	return fmt.Sprintf("reminder_sent_%d", ordinal)
}
