//go:build unit

package commands_test

import (
	"context"
	"testing"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/infra/provider"
	"kilnhall/internal/pkg/config"
	"kilnhall/internal/usecase/commands"
	commandsmock "kilnhall/tests/mock/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type dispatcherFixture struct {
	inappStore   *commandsmock.MockInAppStore
	mailStore    *commandsmock.MockMailStore
	contactStore *commandsmock.MockContactStore
	tokenStore   *commandsmock.MockDeviceTokenStore
	smsSender    *commandsmock.MockSMSSender
	pushSender   *commandsmock.MockPushSender
	dispatcher   commands.Dispatcher
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	ctrl := gomock.NewController(t)
	f := &dispatcherFixture{
		inappStore:   commandsmock.NewMockInAppStore(ctrl),
		mailStore:    commandsmock.NewMockMailStore(ctrl),
		contactStore: commandsmock.NewMockContactStore(ctrl),
		tokenStore:   commandsmock.NewMockDeviceTokenStore(ctrl),
		smsSender:    commandsmock.NewMockSMSSender(ctrl),
		pushSender:   commandsmock.NewMockPushSender(ctrl),
	}
	f.dispatcher = commands.NewDispatcher(
		f.inappStore, f.mailStore, f.contactStore, f.tokenStore,
		f.smsSender, f.pushSender,
		config.NotifyConfig{MaxDeviceTokens: 20},
		newTestLogger(),
	)
	return f
}

func testJob(kind notify.Kind, dedupeKey string) *notify.Job {
	payload, _ := notify.Payload{Status: "CONFIRMED"}.Marshal()
	return &notify.Job{
		ID:        notify.JobID(dedupeKey),
		Kind:      kind,
		DedupeKey: dedupeKey,
		UserID:    uuid.New(),
		Payload:   payload,
		Status:    notify.StatusProcessing,
	}
}

func strPtr(s string) *string { return &s }

func TestDispatch(t *testing.T) {
	job := testJob(notify.KindReservationStatus, "resv:r1:status:ev-1")

	t.Run("アプリ内はチャネル別IDで冪等に書き込む", func(t *testing.T) {
		f := newDispatcherFixture(t)
		wantID := notify.ChannelDedupeID(job.DedupeKey, "inapp")
		f.inappStore.EXPECT().
			CreateIfAbsent(gomock.Any(), wantID, job.UserID, string(job.Kind), gomock.Any(), gomock.Any(), job.Payload).
			Return(true, nil)

		outcome, err := f.dispatcher.Dispatch(context.Background(), job, notify.Channels{InApp: true})
		require.NoError(t, err)
		assert.Empty(t, outcome.Warnings)
	})

	t.Run("SMSハード失敗はメールへフォールバック", func(t *testing.T) {
		f := newDispatcherFixture(t)
		contact := &commands.ContactSnapshot{
			Email: strPtr("potter@example.com"),
			Phone: strPtr("+15550001111"),
		}
		f.contactStore.EXPECT().FindContact(gomock.Any(), job.UserID).Return(contact, nil)
		f.smsSender.EXPECT().Send(gomock.Any(), "+15550001111", gomock.Any()).
			Return(provider.SMSResult{HardFailed: true, ProviderCode: "21211"}, nil)

		fallbackID := notify.ChannelDedupeID(job.DedupeKey, "fallback")
		f.mailStore.EXPECT().
			CreateIfAbsent(gomock.Any(), fallbackID, "potter@example.com", gomock.Any(), gomock.Any()).
			Return(true, nil)

		outcome, err := f.dispatcher.Dispatch(context.Background(), job, notify.Channels{SMS: true})
		require.NoError(t, err)
		assert.Equal(t, []string{commands.WarnSMSHardFail, commands.WarnSMSFallbackEmailSent}, outcome.Warnings)
	})

	t.Run("ハード失敗かつメールなしは警告のみ", func(t *testing.T) {
		f := newDispatcherFixture(t)
		contact := &commands.ContactSnapshot{Phone: strPtr("+15550001111")}
		f.contactStore.EXPECT().FindContact(gomock.Any(), job.UserID).Return(contact, nil)
		f.smsSender.EXPECT().Send(gomock.Any(), "+15550001111", gomock.Any()).
			Return(provider.SMSResult{HardFailed: true, ProviderCode: "21610"}, nil)

		outcome, err := f.dispatcher.Dispatch(context.Background(), job, notify.Channels{SMS: true})
		require.NoError(t, err)
		assert.Equal(t, []string{commands.WarnSMSHardFail, commands.WarnEmailNoAddress}, outcome.Warnings)
	})

	t.Run("電話番号なしのSMSは警告のみで成功", func(t *testing.T) {
		f := newDispatcherFixture(t)
		contact := &commands.ContactSnapshot{Email: strPtr("potter@example.com")}
		f.contactStore.EXPECT().FindContact(gomock.Any(), job.UserID).Return(contact, nil)

		outcome, err := f.dispatcher.Dispatch(context.Background(), job, notify.Channels{SMS: true})
		require.NoError(t, err)
		assert.Equal(t, []string{commands.WarnSMSNoPhone}, outcome.Warnings)
	})

	t.Run("SMSの一時エラーはそのまま返る", func(t *testing.T) {
		f := newDispatcherFixture(t)
		contact := &commands.ContactSnapshot{Phone: strPtr("+15550001111")}
		f.contactStore.EXPECT().FindContact(gomock.Any(), job.UserID).Return(contact, nil)

		sendErr := &notify.HTTPStatusError{Status: 503}
		f.smsSender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(provider.SMSResult{}, sendErr)

		_, err := f.dispatcher.Dispatch(context.Background(), job, notify.Channels{SMS: true})
		require.Error(t, err)
		assert.Equal(t, notify.ClassProvider5xx, notify.Classify(err))
	})

	t.Run("プッシュは無効トークンを失効させる", func(t *testing.T) {
		f := newDispatcherFixture(t)
		tokens := []string{"tok-a", "tok-b", "tok-c"}
		f.tokenStore.EXPECT().ListActive(gomock.Any(), job.UserID, int32(20)).Return(tokens, nil)
		f.pushSender.EXPECT().Send(gomock.Any(), tokens, gomock.Any(), gomock.Any(), job.Payload).
			Return([]provider.PushResult{
				{TokenHash: provider.TokenHash("tok-a"), OK: true},
				{TokenHash: provider.TokenHash("tok-b"), OK: false, ProviderCode: "UNREGISTERED"},
				{TokenHash: provider.TokenHash("tok-c"), OK: false, ProviderCode: "QUOTA_EXCEEDED"},
			}, nil)
		f.tokenStore.EXPECT().Deactivate(gomock.Any(), "tok-b").Return(nil)

		outcome, err := f.dispatcher.Dispatch(context.Background(), job, notify.Channels{Push: true})
		require.NoError(t, err)
		assert.Empty(t, outcome.Warnings)
	})

	t.Run("トークンゼロのプッシュは警告のみ", func(t *testing.T) {
		f := newDispatcherFixture(t)
		f.tokenStore.EXPECT().ListActive(gomock.Any(), job.UserID, int32(20)).Return(nil, nil)

		outcome, err := f.dispatcher.Dispatch(context.Background(), job, notify.Channels{Push: true})
		require.NoError(t, err)
		assert.Equal(t, []string{commands.WarnPushNoTokens}, outcome.Warnings)
	})

	t.Run("連絡先は一度だけ引く", func(t *testing.T) {
		f := newDispatcherFixture(t)
		contact := &commands.ContactSnapshot{
			Email: strPtr("potter@example.com"),
			Phone: strPtr("+15550001111"),
		}
		f.contactStore.EXPECT().FindContact(gomock.Any(), job.UserID).Return(contact, nil).Times(1)
		f.smsSender.EXPECT().Send(gomock.Any(), "+15550001111", gomock.Any()).
			Return(provider.SMSResult{}, nil)

		emailID := notify.ChannelDedupeID(job.DedupeKey, "email")
		f.mailStore.EXPECT().
			CreateIfAbsent(gomock.Any(), emailID, "potter@example.com", gomock.Any(), gomock.Any()).
			Return(true, nil)

		outcome, err := f.dispatcher.Dispatch(context.Background(), job, notify.Channels{SMS: true, Email: true})
		require.NoError(t, err)
		assert.Empty(t, outcome.Warnings)
	})
}

func TestJoinedWarnings(t *testing.T) {
	assert.Nil(t, commands.DispatchOutcome{}.JoinedWarnings())

	out := commands.DispatchOutcome{Warnings: []string{"A", "B"}}
	joined := out.JoinedWarnings()
	require.NotNil(t, joined)
	assert.Equal(t, "A,B", *joined)
}
