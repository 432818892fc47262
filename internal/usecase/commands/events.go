package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/pkg/clock"
	"kilnhall/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrUnknownEventType = errs.New("unknown reservation event type")

const (
	ReservationEventStatusChanged = "status_changed"
	ReservationEventETAShift      = "eta_shift"
	ReservationEventReadyPickup   = "ready_pickup"
)

type KilnUnloadedItem struct {
	ReservationID uuid.UUID
	UserID        uuid.UUID
}

type KilnUnloadedEvent struct {
	FiringID   uuid.UUID
	UnloadedAt time.Time
	Items      []KilnUnloadedItem
}

type ReservationEvent struct {
	EventID       string
	Type          string
	ReservationID uuid.UUID
	UserID        uuid.UUID
	Status        string
	Reason        string
	SLAState      string
	EpisodeID     *uuid.UUID
	WindowStart   *time.Time
	WindowEnd     *time.Time
}

type FanOutResult struct {
	Enqueued int
	Replayed int
}

// EventCommands converts domain events into queue work: the kiln-unload
// fan-out and the per-reservation lifecycle events.
type EventCommands interface {
	KilnUnloaded(ctx context.Context, ev KilnUnloadedEvent) (*FanOutResult, error)
	HandleReservationEvent(ctx context.Context, ev ReservationEvent) (*EnqueueResult, error)
}

type eventUseCaseImpl struct {
	enqueuer      Enqueuer
	queue         QueueCommands
	storagePolicy StoragePolicyCommands
	chainer       FollowUpCommands
	clock         clock.Clock
	logger        *slog.Logger
}

func NewEventUseCase(
	enqueuer Enqueuer,
	queue QueueCommands,
	storagePolicy StoragePolicyCommands,
	chainer FollowUpCommands,
	clock clock.Clock,
	logger *slog.Logger,
) EventCommands {
	return &eventUseCaseImpl{
		enqueuer:      enqueuer,
		queue:         queue,
		storagePolicy: storagePolicy,
		chainer:       chainer,
		clock:         clock,
		logger:        logger,
	}
}

// KilnUnloaded resets storage-policy state for every unloaded reservation
// and fans out one unload notice per recipient plus a ready-for-pickup
// notice per reservation. Replaying the same firing is a no-op end to end.
func (e *eventUseCaseImpl) KilnUnloaded(ctx context.Context, ev KilnUnloadedEvent) (*FanOutResult, error) {
	if ev.FiringID == uuid.Nil {
		return nil, errs.Mark(errs.New("missing firing id"), errs.ErrDomainValidation)
	}

	unloadedAt := ev.UnloadedAt
	if unloadedAt.IsZero() {
		unloadedAt = e.clock.Now()
	}

	result := &FanOutResult{}
	for _, item := range ev.Items {
		if err := e.storagePolicy.MarkPickupReady(ctx, item.ReservationID, unloadedAt); err != nil {
			return nil, err
		}

		unload, err := e.enqueuer.Enqueue(ctx, notify.Spec{
			Kind:      notify.KindKilnUnloaded,
			DedupeKey: fmt.Sprintf("firing:%s:user:%s:unloaded", ev.FiringID, item.UserID),
			UserID:    item.UserID,
			Payload:   notify.Payload{FiringID: &ev.FiringID},
		})
		if err != nil {
			return nil, err
		}
		e.countAndKick(ctx, result, unload)

		reservationID := item.ReservationID
		ready, err := e.enqueuer.Enqueue(ctx, notify.Spec{
			Kind:      notify.KindReservationReadyPickup,
			DedupeKey: fmt.Sprintf("resv:%s:ready_pickup:%s", item.ReservationID, ev.FiringID),
			UserID:    item.UserID,
			Payload:   notify.Payload{FiringID: &ev.FiringID, ReservationID: &reservationID},
		})
		if err != nil {
			return nil, err
		}
		e.countAndKick(ctx, result, ready)
	}

	return result, nil
}

func (e *eventUseCaseImpl) HandleReservationEvent(ctx context.Context, ev ReservationEvent) (*EnqueueResult, error) {
	if ev.EventID == "" {
		return nil, errs.Mark(errs.New("missing event id"), errs.ErrDomainValidation)
	}

	reservationID := ev.ReservationID

	switch ev.Type {
	case ReservationEventStatusChanged:
		result, err := e.enqueuer.Enqueue(ctx, notify.Spec{
			Kind:      notify.KindReservationStatus,
			DedupeKey: fmt.Sprintf("resv:%s:status:%s", ev.ReservationID, ev.EventID),
			UserID:    ev.UserID,
			Payload: notify.Payload{
				ReservationID: &reservationID,
				Status:        ev.Status,
				Reason:        ev.Reason,
			},
		})
		if err != nil {
			return nil, err
		}
		e.kick(ctx, result)
		return result, nil

	case ReservationEventETAShift:
		result, err := e.enqueuer.Enqueue(ctx, notify.Spec{
			Kind:      notify.KindReservationETAShift,
			DedupeKey: fmt.Sprintf("resv:%s:eta:%s", ev.ReservationID, ev.EventID),
			UserID:    ev.UserID,
			Payload: notify.Payload{
				ReservationID: &reservationID,
				Reason:        ev.Reason,
				WindowStart:   ev.WindowStart,
				WindowEnd:     ev.WindowEnd,
			},
		})
		if err != nil {
			return nil, err
		}
		e.kick(ctx, result)

		// A delayed estimate opens a follow-up chain for its episode.
		if ev.SLAState == "delayed" && ev.EpisodeID != nil {
			if err := e.chainer.StartChain(ctx, ev.ReservationID, ev.UserID, *ev.EpisodeID, ev.Reason); err != nil {
				return nil, err
			}
		}
		return result, nil

	case ReservationEventReadyPickup:
		if err := e.storagePolicy.MarkPickupReady(ctx, ev.ReservationID, e.clock.Now()); err != nil {
			return nil, err
		}
		result, err := e.enqueuer.Enqueue(ctx, notify.Spec{
			Kind:      notify.KindReservationReadyPickup,
			DedupeKey: fmt.Sprintf("resv:%s:ready_pickup:%s", ev.ReservationID, ev.EventID),
			UserID:    ev.UserID,
			Payload:   notify.Payload{ReservationID: &reservationID},
		})
		if err != nil {
			return nil, err
		}
		e.kick(ctx, result)
		return result, nil
	}

	return nil, errs.Mark(errs.Newf("event type %q", ev.Type), ErrUnknownEventType)
}

func (e *eventUseCaseImpl) countAndKick(ctx context.Context, result *FanOutResult, r *EnqueueResult) {
	if r.Created {
		result.Enqueued++
	} else {
		result.Replayed++
	}
	e.kick(ctx, r)
}

// kick triggers best-effort immediate processing for a freshly queued job.
// The periodic pump catches anything this misses.
func (e *eventUseCaseImpl) kick(ctx context.Context, r *EnqueueResult) {
	if !r.Created || r.Status != notify.StatusQueued {
		return
	}

	jobID := r.JobID
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := e.queue.ProcessJob(detached, jobID); err != nil {
			e.logger.WarnContext(detached, "immediate job processing failed",
				slog.String("job_id", jobID.String()),
				slog.String("error", err.Error()),
			)
		}
	}()
}
