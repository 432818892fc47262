//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/domain/reservation"
	"kilnhall/internal/pkg/clock"
	"kilnhall/internal/pkg/config"
	"kilnhall/internal/usecase/commands"
	commandsmock "kilnhall/tests/mock/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testNotifyConfig() config.NotifyConfig {
	return config.NotifyConfig{
		MaxAttempts:      5,
		BackoffBase:      30 * time.Second,
		BackoffCap:       2 * time.Hour,
		BatchLimit:       100,
		ReminderFirst:    72 * time.Hour,
		ReminderSecond:   120 * time.Hour,
		ReminderFinal:    168 * time.Hour,
		StoredAfter:      192 * time.Hour,
		FollowUpInitial:  12 * time.Hour,
		FollowUpInterval: 24 * time.Hour,
		FollowUpMax:      14,
	}
}

type queueFixture struct {
	jobStore        *commandsmock.MockJobStore
	deadLetterStore *commandsmock.MockDeadLetterStore
	prefStore       *commandsmock.MockPreferencesStore
	reservationRepo *commandsmock.MockReservationStore
	dispatcher      *commandsmock.MockDispatcher
	chainer         *commandsmock.MockFollowUpScheduler
	clock           *clock.MockClock
	queue           commands.QueueCommands
}

func newQueueFixture(t *testing.T) *queueFixture {
	ctrl := gomock.NewController(t)
	f := &queueFixture{
		jobStore:        commandsmock.NewMockJobStore(ctrl),
		deadLetterStore: commandsmock.NewMockDeadLetterStore(ctrl),
		prefStore:       commandsmock.NewMockPreferencesStore(ctrl),
		reservationRepo: commandsmock.NewMockReservationStore(ctrl),
		dispatcher:      commandsmock.NewMockDispatcher(ctrl),
		chainer:         commandsmock.NewMockFollowUpScheduler(ctrl),
		clock:           clock.NewMockClock(testNow),
	}
	f.queue = commands.NewQueueEngine(
		f.jobStore, f.deadLetterStore, f.prefStore, f.reservationRepo,
		f.dispatcher, f.chainer, testNotifyConfig(), f.clock, newTestLogger(),
	)
	return f
}

func claimedJob(kind notify.Kind, dedupeKey string, attempts int32, p notify.Payload) *notify.Job {
	payload, _ := p.Marshal()
	return &notify.Job{
		ID:        notify.JobID(dedupeKey),
		Kind:      kind,
		DedupeKey: dedupeKey,
		UserID:    uuid.New(),
		Channels:  notify.Channels{InApp: true, Email: true},
		Payload:   payload,
		Status:    notify.StatusProcessing,
		Attempts:  attempts,
	}
}

func TestProcessJob(t *testing.T) {
	t.Run("確保できなかったジョブは何もしない", func(t *testing.T) {
		f := newQueueFixture(t)
		jobID := uuid.New()
		f.jobStore.EXPECT().Claim(gomock.Any(), jobID, testNow).Return(nil, nil)

		require.NoError(t, f.queue.ProcessJob(context.Background(), jobID))
	})

	t.Run("配信成功でdoneに確定", func(t *testing.T) {
		f := newQueueFixture(t)
		job := claimedJob(notify.KindReservationStatus, "resv:r1:status:ev-1", 1, notify.Payload{Status: "CONFIRMED"})

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), job, notify.Channels{InApp: true, Email: true}).
			Return(commands.DispatchOutcome{}, nil)
		f.jobStore.EXPECT().Finish(gomock.Any(), job.ID, notify.StatusDone, gomock.Nil(), gomock.Nil()).Return(nil)

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("配信時点で通知停止ならskipped", func(t *testing.T) {
		f := newQueueFixture(t)
		job := claimedJob(notify.KindReservationStatus, "resv:r1:status:ev-2", 1, notify.Payload{})
		prefs := enabledPrefs(job.UserID)
		prefs.Enabled = false

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(prefs, nil)
		f.jobStore.EXPECT().
			Finish(gomock.Any(), job.ID, notify.StatusSkipped, gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ notify.Status, lastError, _ *string) error {
				require.NotNil(t, lastError)
				assert.Equal(t, string(notify.SkipPrefsDisabled), *lastError)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("チャネル交差が空ならNO_CHANNELS_ENABLED", func(t *testing.T) {
		f := newQueueFixture(t)
		job := claimedJob(notify.KindReservationStatus, "resv:r1:status:ev-3", 1, notify.Payload{})
		job.Channels = notify.Channels{SMS: true}
		prefs := enabledPrefs(job.UserID) // in-app + email only

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(prefs, nil)
		f.jobStore.EXPECT().
			Finish(gomock.Any(), job.ID, notify.StatusSkipped, gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ notify.Status, lastError, _ *string) error {
				assert.Equal(t, string(notify.SkipNoChannelsEnabled), *lastError)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("警告付き成功はlastErrorに記録される", func(t *testing.T) {
		f := newQueueFixture(t)
		job := claimedJob(notify.KindReservationStatus, "resv:r1:status:ev-4", 1, notify.Payload{})

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), job, gomock.Any()).
			Return(commands.DispatchOutcome{Warnings: []string{commands.WarnSMSHardFail, commands.WarnSMSFallbackEmailSent}}, nil)
		f.jobStore.EXPECT().
			Finish(gomock.Any(), job.ID, notify.StatusDone, gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ notify.Status, lastError, _ *string) error {
				require.NotNil(t, lastError)
				assert.Equal(t, "SMS_HARD_FAIL,SMS_FALLBACK_EMAIL_SENT", *lastError)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})
}

func TestRetryAndDeadLetter(t *testing.T) {
	dispatchErr := &notify.HTTPStatusError{Status: 503, Body: "service unavailable"}

	t.Run("再試行可能な失敗はバックオフ付きで再投入", func(t *testing.T) {
		for _, attempt := range []int32{1, 2, 3} {
			f := newQueueFixture(t)
			job := claimedJob(notify.KindReservationStatus, "resv:r1:status:ev-5", attempt, notify.Payload{})

			f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
			f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
			f.dispatcher.EXPECT().Dispatch(gomock.Any(), job, gomock.Any()).
				Return(commands.DispatchOutcome{}, dispatchErr)

			base := 30 * time.Second
			for i := int32(1); i < attempt; i++ {
				base *= 2
			}
			minDelay := time.Duration(float64(base) * 0.85)

			f.jobStore.EXPECT().
				Requeue(gomock.Any(), job.ID, gomock.Any(), gomock.Any(), "provider_5xx").
				DoAndReturn(func(_ context.Context, _ uuid.UUID, runAfter time.Time, _, _ string) error {
					delay := runAfter.Sub(testNow)
					assert.GreaterOrEqual(t, delay, minDelay, "attempt %d", attempt)
					assert.LessOrEqual(t, delay, base, "attempt %d", attempt)
					return nil
				})

			require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
		}
	})

	t.Run("バックオフはキャップを超えない", func(t *testing.T) {
		f := newQueueFixture(t)
		// attempt 4 raw delay would be 30s*2^3=240s; with a 100s cap it clamps.
		cfg := testNotifyConfig()
		cfg.BackoffCap = 100 * time.Second
		ctrl := gomock.NewController(t)
		jobStore := commandsmock.NewMockJobStore(ctrl)
		queue := commands.NewQueueEngine(
			jobStore, f.deadLetterStore, f.prefStore, f.reservationRepo,
			f.dispatcher, f.chainer, cfg, f.clock, newTestLogger(),
		)

		job := claimedJob(notify.KindReservationStatus, "resv:r1:status:ev-6", 4, notify.Payload{})
		jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), job, gomock.Any()).
			Return(commands.DispatchOutcome{}, dispatchErr)
		jobStore.EXPECT().
			Requeue(gomock.Any(), job.ID, gomock.Any(), gomock.Any(), "provider_5xx").
			DoAndReturn(func(_ context.Context, _ uuid.UUID, runAfter time.Time, _, _ string) error {
				assert.LessOrEqual(t, runAfter.Sub(testNow), 100*time.Second)
				return nil
			})

		require.NoError(t, queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("試行上限到達でfailedかつデッドレター化", func(t *testing.T) {
		f := newQueueFixture(t)
		job := claimedJob(notify.KindReservationStatus, "resv:r1:status:ev-7", 5, notify.Payload{})

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), job, gomock.Any()).
			Return(commands.DispatchOutcome{}, dispatchErr)
		f.jobStore.EXPECT().Finish(gomock.Any(), job.ID, notify.StatusFailed, gomock.Any(), gomock.Any()).Return(nil)
		f.deadLetterStore.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, dl *notify.DeadLetter) error {
				assert.Equal(t, job.ID, dl.JobID)
				assert.Equal(t, job.DedupeKey, dl.DedupeKey)
				assert.Equal(t, notify.ClassProvider5xx, dl.ErrorClass)
				assert.Equal(t, int32(5), dl.Attempts)
				assert.Equal(t, testNow, dl.FailedAt)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("認証エラーは初回でも再試行しない", func(t *testing.T) {
		f := newQueueFixture(t)
		job := claimedJob(notify.KindReservationStatus, "resv:r1:status:ev-8", 1, notify.Payload{})

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), job, gomock.Any()).
			Return(commands.DispatchOutcome{}, &notify.HTTPStatusError{Status: 401})
		f.jobStore.EXPECT().Finish(gomock.Any(), job.ID, notify.StatusFailed, gomock.Any(), gomock.Any()).Return(nil)
		f.deadLetterStore.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, dl *notify.DeadLetter) error {
				assert.Equal(t, notify.ClassAuth, dl.ErrorClass)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("引取リマインダの最終失敗は予約に記録される", func(t *testing.T) {
		f := newQueueFixture(t)
		resvID := uuid.New()
		job := claimedJob(notify.KindReservationPickupReminder, "resv:r2:pickup_reminder:2", 5,
			notify.Payload{ReservationID: &resvID, ReminderOrdinal: 2})

		snap := &reservation.Snapshot{
			ID:         resvID,
			UserID:     job.UserID,
			Status:     reservation.StatusLoaded,
			LoadStatus: reservation.LoadStatusLoaded,
			Pickup:     reservation.PickupWindow{Status: reservation.WindowOpen},
		}

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.reservationRepo.EXPECT().FindByID(gomock.Any(), resvID).Return(snap, nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), job, gomock.Any()).
			Return(commands.DispatchOutcome{}, dispatchErr)
		f.jobStore.EXPECT().Finish(gomock.Any(), job.ID, notify.StatusFailed, gomock.Any(), gomock.Any()).Return(nil)
		f.deadLetterStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.reservationRepo.EXPECT().RecordReminderFailure(gomock.Any(), resvID).Return(nil)
		f.reservationRepo.EXPECT().AppendAudit(gomock.Any(), resvID, "reminder_failed", gomock.Any()).Return(nil)

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})
}

func TestRevalidation(t *testing.T) {
	resvID := uuid.New()
	episodeID := uuid.New()

	followUpJob := func() *notify.Job {
		return claimedJob(notify.KindReservationDelayFollowUp,
			"resv:r3:episode:e1:followup:3", 1,
			notify.Payload{ReservationID: &resvID, EpisodeID: &episodeID, FollowUpOrdinal: 3})
	}

	delayedSnap := func() *reservation.Snapshot {
		eid := episodeID
		return &reservation.Snapshot{
			ID:             resvID,
			Status:         reservation.StatusConfirmed,
			LoadStatus:     reservation.LoadStatusPending,
			Estimated:      reservation.EstimatedWindow{SLAState: reservation.SLADelayed},
			DelayEpisodeID: &eid,
		}
	}

	t.Run("遅延解消済みのフォローアップはskip", func(t *testing.T) {
		f := newQueueFixture(t)
		job := followUpJob()
		snap := delayedSnap()
		snap.Estimated.SLAState = reservation.SLAOnTrack

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.reservationRepo.EXPECT().FindByID(gomock.Any(), resvID).Return(snap, nil)
		f.jobStore.EXPECT().
			Finish(gomock.Any(), job.ID, notify.StatusSkipped, gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ notify.Status, lastError, _ *string) error {
				assert.Equal(t, string(notify.SkipNoLongerDelayed), *lastError)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("別エピソードに移ったフォローアップもskip", func(t *testing.T) {
		f := newQueueFixture(t)
		job := followUpJob()
		snap := delayedSnap()
		other := uuid.New()
		snap.DelayEpisodeID = &other

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.reservationRepo.EXPECT().FindByID(gomock.Any(), resvID).Return(snap, nil)
		f.jobStore.EXPECT().
			Finish(gomock.Any(), job.ID, notify.StatusSkipped, gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ notify.Status, lastError, _ *string) error {
				assert.Equal(t, string(notify.SkipNoLongerDelayed), *lastError)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("継続中のフォローアップは配信後に次リンクを予約", func(t *testing.T) {
		f := newQueueFixture(t)
		job := followUpJob()

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.reservationRepo.EXPECT().FindByID(gomock.Any(), resvID).Return(delayedSnap(), nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), job, gomock.Any()).
			Return(commands.DispatchOutcome{}, nil)
		f.jobStore.EXPECT().Finish(gomock.Any(), job.ID, notify.StatusDone, gomock.Nil(), gomock.Nil()).Return(nil)
		f.chainer.EXPECT().ScheduleNext(gomock.Any(), job.UserID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, p notify.Payload) error {
				assert.Equal(t, 3, p.FollowUpOrdinal)
				require.NotNil(t, p.ReservationID)
				assert.Equal(t, resvID, *p.ReservationID)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("送信済みリマインダは再送しない", func(t *testing.T) {
		f := newQueueFixture(t)
		job := claimedJob(notify.KindReservationPickupReminder, "resv:r4:pickup_reminder:1", 1,
			notify.Payload{ReservationID: &resvID, ReminderOrdinal: 1})
		snap := &reservation.Snapshot{
			ID:            resvID,
			Status:        reservation.StatusLoaded,
			LoadStatus:    reservation.LoadStatusLoaded,
			Pickup:        reservation.PickupWindow{Status: reservation.WindowOpen},
			NoticeHistory: []reservation.Notice{{Event: "reminder_sent_1"}},
		}

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.reservationRepo.EXPECT().FindByID(gomock.Any(), resvID).Return(snap, nil)
		f.jobStore.EXPECT().
			Finish(gomock.Any(), job.ID, notify.StatusSkipped, gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ notify.Status, lastError, _ *string) error {
				assert.Equal(t, string(notify.SkipReminderAlreadyRecorded), *lastError)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})

	t.Run("リマインダ成功で通知履歴に記録される", func(t *testing.T) {
		f := newQueueFixture(t)
		job := claimedJob(notify.KindReservationPickupReminder, "resv:r5:pickup_reminder:2", 1,
			notify.Payload{ReservationID: &resvID, ReminderOrdinal: 2})
		snap := &reservation.Snapshot{
			ID:         resvID,
			Status:     reservation.StatusLoaded,
			LoadStatus: reservation.LoadStatusLoaded,
			Pickup:     reservation.PickupWindow{Status: reservation.WindowOpen},
		}

		f.jobStore.EXPECT().Claim(gomock.Any(), job.ID, testNow).Return(job, nil)
		f.prefStore.EXPECT().Find(gomock.Any(), job.UserID).Return(enabledPrefs(job.UserID), nil)
		f.reservationRepo.EXPECT().FindByID(gomock.Any(), resvID).Return(snap, nil)
		f.dispatcher.EXPECT().Dispatch(gomock.Any(), job, gomock.Any()).
			Return(commands.DispatchOutcome{}, nil)
		f.jobStore.EXPECT().Finish(gomock.Any(), job.ID, notify.StatusDone, gomock.Nil(), gomock.Nil()).Return(nil)
		f.reservationRepo.EXPECT().
			AppendNotice(gomock.Any(), snap, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *reservation.Snapshot, notice reservation.Notice) error {
				assert.Equal(t, "reminder_sent_2", notice.Event)
				assert.Equal(t, job.ID.String(), notice.Detail)
				return nil
			})

		require.NoError(t, f.queue.ProcessJob(context.Background(), job.ID))
	})
}

func TestProcessDueJobs(t *testing.T) {
	f := newQueueFixture(t)
	good := claimedJob(notify.KindReservationStatus, "resv:r6:status:ev-a", 1, notify.Payload{})
	muted := claimedJob(notify.KindReservationStatus, "resv:r6:status:ev-b", 1, notify.Payload{})

	f.jobStore.EXPECT().FindDue(gomock.Any(), testNow, int32(100)).
		Return([]*notify.Job{good, muted}, nil)

	f.jobStore.EXPECT().Claim(gomock.Any(), good.ID, testNow).Return(good, nil)
	f.prefStore.EXPECT().Find(gomock.Any(), good.UserID).Return(enabledPrefs(good.UserID), nil)
	f.dispatcher.EXPECT().Dispatch(gomock.Any(), good, gomock.Any()).
		Return(commands.DispatchOutcome{}, nil)
	f.jobStore.EXPECT().Finish(gomock.Any(), good.ID, notify.StatusDone, gomock.Nil(), gomock.Nil()).Return(nil)

	mutedPrefs := enabledPrefs(muted.UserID)
	mutedPrefs.Enabled = false
	f.jobStore.EXPECT().Claim(gomock.Any(), muted.ID, testNow).Return(muted, nil)
	f.prefStore.EXPECT().Find(gomock.Any(), muted.UserID).Return(mutedPrefs, nil)
	f.jobStore.EXPECT().Finish(gomock.Any(), muted.ID, notify.StatusSkipped, gomock.Any(), gomock.Nil()).Return(nil)

	stats, err := f.queue.ProcessDueJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Picked)
	assert.Equal(t, 1, stats.Done)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Retried)
	assert.Equal(t, 0, stats.Failed)
}
