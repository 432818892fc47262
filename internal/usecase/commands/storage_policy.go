package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/domain/reservation"
	"kilnhall/internal/pkg/clock"
	"kilnhall/internal/pkg/config"
	"kilnhall/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrSweepAlreadyRunning = errs.New("storage-policy sweep already running")

type SweepStats struct {
	Evaluated   int
	Transitions int
	Reminders   int
	Errors      int
}

// StoragePolicyCommands runs the uncollected-work escalation: the periodic
// sweep over loaded reservations and the external pickup-ready reset.
type StoragePolicyCommands interface {
	Sweep(ctx context.Context) (SweepStats, error)
	MarkPickupReady(ctx context.Context, reservationID uuid.UUID, readyAt time.Time) error
}

type storagePolicyImpl struct {
	reservationRepo ReservationStore
	enqueuer        Enqueuer
	policy          reservation.Policy
	clock           clock.Clock
	logger          *slog.Logger

	// Serializes sweep invocations; concurrent sweeps are not safe.
	sweepMu sync.Mutex
}

func NewStoragePolicyEngine(
	reservationRepo ReservationStore,
	enqueuer Enqueuer,
	cfg config.NotifyConfig,
	clock clock.Clock,
	logger *slog.Logger,
) StoragePolicyCommands {
	return &storagePolicyImpl{
		reservationRepo: reservationRepo,
		enqueuer:        enqueuer,
		policy: reservation.Policy{
			Thresholds:  []time.Duration{cfg.ReminderFirst, cfg.ReminderSecond, cfg.ReminderFinal},
			StoredAfter: cfg.StoredAfter,
		},
		clock:  clock,
		logger: logger,
	}
}

func (s *storagePolicyImpl) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats

	if !s.sweepMu.TryLock() {
		return stats, ErrSweepAlreadyRunning
	}
	defer s.sweepMu.Unlock()

	candidates, err := s.reservationRepo.ListSweepCandidates(ctx)
	if err != nil {
		return stats, err
	}

	now := s.clock.Now()
	for _, snap := range candidates {
		if !snap.SweepEligible() {
			continue
		}
		stats.Evaluated++

		transitioned, reminded, err := s.sweepOne(ctx, snap, now)
		if err != nil {
			stats.Errors++
			s.logger.ErrorContext(ctx, "storage-policy sweep failed for reservation",
				slog.String("reservation_id", snap.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if transitioned {
			stats.Transitions++
		}
		if reminded {
			stats.Reminders++
		}
	}

	s.logger.InfoContext(ctx, "storage-policy sweep finished",
		slog.Int("evaluated", stats.Evaluated),
		slog.Int("transitions", stats.Transitions),
		slog.Int("reminders", stats.Reminders),
		slog.Int("errors", stats.Errors),
	)
	return stats, nil
}

func (s *storagePolicyImpl) sweepOne(ctx context.Context, snap *reservation.Snapshot, now time.Time) (bool, bool, error) {
	changed := false

	if snap.ReadyForPickupAt == nil {
		anchor := snap.AnchorTime()
		snap.ReadyForPickupAt = &anchor
		changed = true
		s.audit(ctx, snap.ID, "anchor_backfilled", map[string]any{"anchor": anchor})
	}

	elapsed := now.Sub(*snap.ReadyForPickupAt)

	// A missed confirmed window pre-empts the ordinal schedule for this pass.
	if missedWindow(snap, now) {
		return true, true, s.handleMissedWindow(ctx, snap, now)
	}

	reminded := false
	if ordinal := s.policy.NextDueOrdinal(elapsed, snap.PickupReminderCount); ordinal > 0 && !snap.StorageFinalized() {
		if err := s.enqueueReminder(ctx, snap, reminderDedupeKey(snap.ID, ordinal), ordinal, s.policy.StatusForOrdinal(ordinal)); err != nil {
			return changed, false, err
		}

		snap.PickupReminderCount = int32(ordinal)
		advanceStorage(snap, s.policy.StatusForOrdinal(ordinal))
		snap.NoticeHistory = reservation.AppendNotice(snap.NoticeHistory, reservation.Notice{
			At:    now,
			Event: fmt.Sprintf("reminder_scheduled_%d", ordinal),
		})
		s.audit(ctx, snap.ID, "reminder_enqueued", map[string]any{
			"ordinal": ordinal,
			"status":  snap.StorageStatus,
		})
		changed = true
		reminded = true
	}

	// Independent recompute from elapsed time alone, so a reservation whose
	// reminders failed still ends up stored past the ceiling.
	if mandated := s.policy.MandatedStatus(elapsed, snap.PickupReminderCount); advanceStorage(snap, mandated) {
		snap.NoticeHistory = reservation.AppendNotice(snap.NoticeHistory, reservation.Notice{
			At:    now,
			Event: "storage_status_" + string(mandated),
		})
		s.audit(ctx, snap.ID, "storage_status_recomputed", map[string]any{"status": mandated})
		changed = true

		if mandated == reservation.StorageStoredByPolicy {
			if err := s.enqueueReminder(ctx, snap, storedDedupeKey(snap.ID), int(snap.PickupReminderCount), mandated); err != nil {
				return changed, reminded, err
			}
			reminded = true
		}
	}

	if !changed {
		return false, false, nil
	}
	return true, reminded, s.reservationRepo.ApplyStorageTransition(ctx, snap)
}

func (s *storagePolicyImpl) handleMissedWindow(ctx context.Context, snap *reservation.Snapshot, now time.Time) error {
	snap.Pickup.MissedCount++
	snap.Pickup.Status = reservation.WindowMissed

	target := reservation.StorageHoldPending
	if snap.Pickup.MissedCount >= 2 {
		target = reservation.StorageStoredByPolicy
	}
	advanceStorage(snap, target)

	snap.NoticeHistory = reservation.AppendNotice(snap.NoticeHistory, reservation.Notice{
		At:     now,
		Event:  "pickup_window_missed",
		Detail: fmt.Sprintf("miss %d", snap.Pickup.MissedCount),
	})
	s.audit(ctx, snap.ID, "pickup_window_missed", map[string]any{
		"missed_count": snap.Pickup.MissedCount,
		"status":       snap.StorageStatus,
	})

	key := missedDedupeKey(snap.ID, snap.Pickup.MissedCount)
	if err := s.enqueueReminder(ctx, snap, key, int(snap.PickupReminderCount), snap.StorageStatus); err != nil {
		return err
	}

	return s.reservationRepo.ApplyStorageTransition(ctx, snap)
}

// MarkPickupReady resets the storage-policy state for a reservation that
// just became collectable, leaving a single pickup_ready notice.
func (s *storagePolicyImpl) MarkPickupReady(ctx context.Context, reservationID uuid.UUID, readyAt time.Time) error {
	if err := s.reservationRepo.ResetOnPickupReady(ctx, reservationID, readyAt); err != nil {
		return err
	}

	s.audit(ctx, reservationID, "pickup_ready", map[string]any{"ready_at": readyAt})
	return nil
}

func (s *storagePolicyImpl) enqueueReminder(ctx context.Context, snap *reservation.Snapshot, key string, ordinal int, status reservation.StorageStatus) error {
	_, err := s.enqueuer.Enqueue(ctx, notify.Spec{
		Kind:      notify.KindReservationPickupReminder,
		DedupeKey: key,
		UserID:    snap.UserID,
		Payload: notify.Payload{
			ReservationID:   &snap.ID,
			ReminderOrdinal: ordinal,
			StorageStatus:   string(status),
		},
	})
	return err
}

func (s *storagePolicyImpl) audit(ctx context.Context, id uuid.UUID, event string, detail map[string]any) {
	if err := s.reservationRepo.AppendAudit(ctx, id, event, detail); err != nil {
		s.logger.WarnContext(ctx, "failed to append reservation audit",
			slog.String("reservation_id", id.String()),
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

func missedWindow(snap *reservation.Snapshot, now time.Time) bool {
	if snap.Pickup.ConfirmedEnd == nil || !now.After(*snap.Pickup.ConfirmedEnd) {
		return false
	}
	return snap.Pickup.Status == reservation.WindowOpen || snap.Pickup.Status == reservation.WindowConfirmed
}

func advanceStorage(snap *reservation.Snapshot, target reservation.StorageStatus) bool {
	if target.Rank() <= snap.StorageStatus.Rank() {
		return false
	}
	snap.StorageStatus = target
	return true
}

func reminderDedupeKey(reservationID uuid.UUID, ordinal int) string {
	return fmt.Sprintf("resv:%s:pickup_reminder:%d", reservationID, ordinal)
}

func missedDedupeKey(reservationID uuid.UUID, missCount int32) string {
	return fmt.Sprintf("resv:%s:window_missed:%d", reservationID, missCount)
}

func storedDedupeKey(reservationID uuid.UUID) string {
	return fmt.Sprintf("resv:%s:stored_by_policy", reservationID)
}
