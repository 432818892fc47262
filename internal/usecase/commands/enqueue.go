package commands

import (
	"context"
	"log/slog"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/pkg/clock"
	"kilnhall/internal/pkg/errs"

	"github.com/google/uuid"
)

type EnqueueResult struct {
	JobID   uuid.UUID
	Created bool
	Status  notify.Status
}

// Enqueuer is the single entry point for job creation, shared by event
// intake, the storage-policy sweep and the follow-up chainer.
type Enqueuer interface {
	Enqueue(ctx context.Context, spec notify.Spec) (*EnqueueResult, error)
}

type enqueuerImpl struct {
	jobStore  JobStore
	prefStore PreferencesStore
	clock     clock.Clock
	logger    *slog.Logger
}

func NewEnqueuer(
	jobStore JobStore,
	prefStore PreferencesStore,
	clock clock.Clock,
	logger *slog.Logger,
) Enqueuer {
	return &enqueuerImpl{
		jobStore:  jobStore,
		prefStore: prefStore,
		clock:     clock,
		logger:    logger,
	}
}

// Enqueue creates the job record if no job with the same dedupe key exists.
// Preference gating that can be decided at creation time (master switch,
// per-kind toggle, reservation opt-in, zero enabled channels) produces a
// terminal skipped record rather than queued work.
func (e *enqueuerImpl) Enqueue(ctx context.Context, spec notify.Spec) (*EnqueueResult, error) {
	if !spec.Kind.Valid() {
		return nil, errs.Mark(errs.Newf("unknown job kind %q", spec.Kind), errs.ErrInvalidJobKind)
	}
	if spec.DedupeKey == "" {
		return nil, errs.Mark(errs.New("empty dedupe key"), errs.ErrDomainValidation)
	}

	prefs, err := e.prefStore.Find(ctx, spec.UserID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	base := spec.BaseTime
	if base.IsZero() {
		base = now
	}

	payload, err := spec.Payload.Marshal()
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidPayload)
	}

	job := &notify.Job{
		ID:        notify.JobID(spec.DedupeKey),
		Kind:      spec.Kind,
		DedupeKey: spec.DedupeKey,
		UserID:    spec.UserID,
		Channels:  prefs.EnabledChannels(),
		Payload:   payload,
		Status:    notify.StatusQueued,
	}

	if reason := creationSkipReason(spec.Kind, prefs); reason != "" {
		job.Status = notify.StatusSkipped
		r := string(reason)
		job.LastError = &r
	} else {
		// A future base (deferred chain links) defers on its own; quiet
		// hours and digest mode can push it out further.
		runAfter := notify.ResolveRunAfter(base, prefs)
		if runAfter.After(now) {
			job.RunAfter = &runAfter
		}
	}

	created, err := e.jobStore.Create(ctx, job)
	if err != nil {
		return nil, err
	}

	if created {
		e.logger.InfoContext(ctx, "notification job enqueued",
			slog.String("job_id", job.ID.String()),
			slog.String("kind", string(job.Kind)),
			slog.String("status", string(job.Status)),
		)
	}

	return &EnqueueResult{
		JobID:   job.ID,
		Created: created,
		Status:  job.Status,
	}, nil
}

func creationSkipReason(kind notify.Kind, prefs notify.Preferences) notify.SkipReason {
	if !prefs.KindEnabled(kind) {
		return notify.SkipPrefsDisabled
	}
	if kind.IsReservationKind() && !prefs.ReservationUpdates {
		return notify.SkipReservationPrefDisabled
	}
	if !prefs.EnabledChannels().Any() {
		return notify.SkipNoChannelsEnabled
	}
	return ""
}
