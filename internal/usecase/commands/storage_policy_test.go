//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/domain/reservation"
	"kilnhall/internal/pkg/clock"
	"kilnhall/internal/usecase/commands"
	commandsmock "kilnhall/tests/mock/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sweepFixture struct {
	reservationRepo *commandsmock.MockReservationStore
	enqueuer        *commandsmock.MockEnqueuer
	clock           *clock.MockClock
	engine          commands.StoragePolicyCommands
}

func newSweepFixture(t *testing.T) *sweepFixture {
	ctrl := gomock.NewController(t)
	f := &sweepFixture{
		reservationRepo: commandsmock.NewMockReservationStore(ctrl),
		enqueuer:        commandsmock.NewMockEnqueuer(ctrl),
		clock:           clock.NewMockClock(testNow),
	}
	f.engine = commands.NewStoragePolicyEngine(
		f.reservationRepo, f.enqueuer, testNotifyConfig(), f.clock, newTestLogger(),
	)
	return f
}

func readySnapshot(elapsed time.Duration) *reservation.Snapshot {
	ready := testNow.Add(-elapsed)
	return &reservation.Snapshot{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		Status:           reservation.StatusLoaded,
		LoadStatus:       reservation.LoadStatusLoaded,
		StorageStatus:    reservation.StorageActive,
		ReadyForPickupAt: &ready,
		Pickup:           reservation.PickupWindow{Status: reservation.WindowOpen},
	}
}

func (f *sweepFixture) expectList(snaps ...*reservation.Snapshot) {
	f.reservationRepo.EXPECT().ListSweepCandidates(gomock.Any()).Return(snaps, nil)
}

func (f *sweepFixture) allowAudit() {
	f.reservationRepo.EXPECT().AppendAudit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).AnyTimes()
}

func TestSweep(t *testing.T) {
	t.Run("閾値未満の予約は変化しない", func(t *testing.T) {
		f := newSweepFixture(t)
		f.expectList(readySnapshot(10 * time.Hour))
		f.allowAudit()

		stats, err := f.engine.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Evaluated)
		assert.Equal(t, 0, stats.Transitions)
		assert.Equal(t, 0, stats.Reminders)
	})

	t.Run("72時間経過で第1リマインダを積む", func(t *testing.T) {
		f := newSweepFixture(t)
		snap := readySnapshot(80 * time.Hour)
		f.expectList(snap)
		f.allowAudit()

		f.enqueuer.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, spec notify.Spec) (*commands.EnqueueResult, error) {
				assert.Equal(t, notify.KindReservationPickupReminder, spec.Kind)
				assert.Equal(t, fmt.Sprintf("resv:%s:pickup_reminder:1", snap.ID), spec.DedupeKey)
				assert.Equal(t, 1, spec.Payload.ReminderOrdinal)
				assert.Equal(t, "reminder_pending", spec.Payload.StorageStatus)
				return &commands.EnqueueResult{Created: true, Status: notify.StatusQueued}, nil
			})
		f.reservationRepo.EXPECT().ApplyStorageTransition(gomock.Any(), snap).Return(nil)

		stats, err := f.engine.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Transitions)
		assert.Equal(t, 1, stats.Reminders)

		assert.Equal(t, int32(1), snap.PickupReminderCount)
		assert.Equal(t, reservation.StorageReminderPending, snap.StorageStatus)
		assert.True(t, snap.HasNotice("reminder_scheduled_1"))
	})

	t.Run("130時間で第2リマインダとhold_pending", func(t *testing.T) {
		f := newSweepFixture(t)
		snap := readySnapshot(130 * time.Hour)
		snap.PickupReminderCount = 1
		snap.StorageStatus = reservation.StorageReminderPending
		f.expectList(snap)
		f.allowAudit()

		f.enqueuer.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, spec notify.Spec) (*commands.EnqueueResult, error) {
				assert.Equal(t, fmt.Sprintf("resv:%s:pickup_reminder:2", snap.ID), spec.DedupeKey)
				return &commands.EnqueueResult{Created: true, Status: notify.StatusQueued}, nil
			})
		f.reservationRepo.EXPECT().ApplyStorageTransition(gomock.Any(), snap).Return(nil)

		_, err := f.engine.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(2), snap.PickupReminderCount)
		// Past the second threshold the recompute mandates the hold.
		assert.Equal(t, reservation.StorageHoldPending, snap.StorageStatus)
	})

	t.Run("192時間超過でstored_by_policyに到達し通知を積む", func(t *testing.T) {
		f := newSweepFixture(t)
		snap := readySnapshot(200 * time.Hour)
		snap.PickupReminderCount = 3
		snap.StorageStatus = reservation.StorageHoldPending
		f.expectList(snap)
		f.allowAudit()

		f.enqueuer.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, spec notify.Spec) (*commands.EnqueueResult, error) {
				assert.Equal(t, fmt.Sprintf("resv:%s:stored_by_policy", snap.ID), spec.DedupeKey)
				assert.Equal(t, "stored_by_policy", spec.Payload.StorageStatus)
				return &commands.EnqueueResult{Created: true, Status: notify.StatusQueued}, nil
			})
		f.reservationRepo.EXPECT().ApplyStorageTransition(gomock.Any(), snap).Return(nil)

		_, err := f.engine.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, reservation.StorageStoredByPolicy, snap.StorageStatus)
		assert.True(t, snap.HasNotice("storage_status_stored_by_policy"))
	})

	t.Run("リマインダ未送信でも時間経過だけで保管に到達する", func(t *testing.T) {
		f := newSweepFixture(t)
		snap := readySnapshot(200 * time.Hour)
		snap.PickupReminderCount = 3 // reminders recorded but deliveries failed
		snap.ReminderFailureCount = 3
		snap.StorageStatus = reservation.StorageHoldPending
		f.expectList(snap)
		f.allowAudit()

		f.enqueuer.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
			Return(&commands.EnqueueResult{Created: true, Status: notify.StatusQueued}, nil)
		f.reservationRepo.EXPECT().ApplyStorageTransition(gomock.Any(), snap).Return(nil)

		_, err := f.engine.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, reservation.StorageStoredByPolicy, snap.StorageStatus)
	})

	t.Run("確定窓の初回不在はhold_pendingへ", func(t *testing.T) {
		f := newSweepFixture(t)
		snap := readySnapshot(20 * time.Hour)
		end := testNow.Add(-2 * time.Hour)
		snap.Pickup = reservation.PickupWindow{Status: reservation.WindowConfirmed, ConfirmedEnd: &end}
		f.expectList(snap)
		f.allowAudit()

		f.enqueuer.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, spec notify.Spec) (*commands.EnqueueResult, error) {
				assert.Equal(t, fmt.Sprintf("resv:%s:window_missed:1", snap.ID), spec.DedupeKey)
				return &commands.EnqueueResult{Created: true, Status: notify.StatusQueued}, nil
			})
		f.reservationRepo.EXPECT().ApplyStorageTransition(gomock.Any(), snap).Return(nil)

		_, err := f.engine.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(1), snap.Pickup.MissedCount)
		assert.Equal(t, reservation.WindowMissed, snap.Pickup.Status)
		assert.Equal(t, reservation.StorageHoldPending, snap.StorageStatus)
		assert.True(t, snap.HasNotice("pickup_window_missed"))
	})

	t.Run("二度目の不在はstored_by_policyへ", func(t *testing.T) {
		f := newSweepFixture(t)
		snap := readySnapshot(20 * time.Hour)
		end := testNow.Add(-time.Hour)
		snap.Pickup = reservation.PickupWindow{
			Status:       reservation.WindowOpen,
			ConfirmedEnd: &end,
			MissedCount:  1,
		}
		snap.StorageStatus = reservation.StorageHoldPending
		f.expectList(snap)
		f.allowAudit()

		f.enqueuer.EXPECT().Enqueue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, spec notify.Spec) (*commands.EnqueueResult, error) {
				assert.Equal(t, fmt.Sprintf("resv:%s:window_missed:2", snap.ID), spec.DedupeKey)
				return &commands.EnqueueResult{Created: true, Status: notify.StatusQueued}, nil
			})
		f.reservationRepo.EXPECT().ApplyStorageTransition(gomock.Any(), snap).Return(nil)

		_, err := f.engine.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(2), snap.Pickup.MissedCount)
		assert.Equal(t, reservation.StorageStoredByPolicy, snap.StorageStatus)
	})

	t.Run("アンカー未設定は更新時刻から補完する", func(t *testing.T) {
		f := newSweepFixture(t)
		updated := testNow.Add(-time.Hour)
		snap := &reservation.Snapshot{
			ID:         uuid.New(),
			UserID:     uuid.New(),
			Status:     reservation.StatusLoaded,
			LoadStatus: reservation.LoadStatusLoaded,
			Pickup:     reservation.PickupWindow{Status: reservation.WindowOpen},
			UpdatedAt:  updated,
		}
		f.expectList(snap)
		f.allowAudit()
		f.reservationRepo.EXPECT().ApplyStorageTransition(gomock.Any(), snap).Return(nil)

		stats, err := f.engine.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Transitions)
		require.NotNil(t, snap.ReadyForPickupAt)
		assert.Equal(t, updated, *snap.ReadyForPickupAt)
	})

	t.Run("対象外の予約は評価されない", func(t *testing.T) {
		f := newSweepFixture(t)
		snap := readySnapshot(200 * time.Hour)
		snap.Status = reservation.StatusCancelled
		f.expectList(snap)

		stats, err := f.engine.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Evaluated)
	})
}

func TestMarkPickupReady(t *testing.T) {
	f := newSweepFixture(t)
	resvID := uuid.New()
	readyAt := testNow

	f.reservationRepo.EXPECT().ResetOnPickupReady(gomock.Any(), resvID, readyAt).Return(nil)
	f.reservationRepo.EXPECT().AppendAudit(gomock.Any(), resvID, "pickup_ready", gomock.Any()).Return(nil)

	require.NoError(t, f.engine.MarkPickupReady(context.Background(), resvID, readyAt))
}
