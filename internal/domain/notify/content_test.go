//go:build unit

package notify_test

import (
	"testing"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/pkg/errs"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMarshal(t *testing.T, p notify.Payload) []byte {
	t.Helper()
	raw, err := p.Marshal()
	require.NoError(t, err)
	return raw
}

func TestBuildContent(t *testing.T) {
	windowStart := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2025, 6, 12, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		kind    notify.Kind
		payload notify.Payload
		want    notify.Content
	}{
		{
			name: "窯出し通知",
			kind: notify.KindKilnUnloaded,
			want: notify.Content{
				Title: "Kiln unloaded",
				Body:  "A firing with your pieces has been unloaded. They will be ready for pickup shortly.",
			},
		},
		{
			name:    "ステータス変更は状態と理由を含む",
			kind:    notify.KindReservationStatus,
			payload: notify.Payload{Status: "delayed", Reason: "Glaze kiln maintenance."},
			want: notify.Content{
				Title: "Reservation update",
				Body:  "Your reservation is now delayed. Glaze kiln maintenance.",
			},
		},
		{
			name: "ステータスなしはフォールバック文面",
			kind: notify.KindReservationStatus,
			want: notify.Content{
				Title: "Reservation update",
				Body:  "Your reservation status changed.",
			},
		},
		{
			name:    "ETA変更は新しい時間帯を含む",
			kind:    notify.KindReservationETAShift,
			payload: notify.Payload{WindowStart: &windowStart, WindowEnd: &windowEnd},
			want: notify.Content{
				Title: "Estimate updated",
				Body: "Your estimated window is now " + windowStart.Format(time.RFC1123) +
					" to " + windowEnd.Format(time.RFC1123) + ".",
			},
		},
		{
			name: "受取可能通知",
			kind: notify.KindReservationReadyPickup,
			want: notify.Content{
				Title: "Ready for pickup",
				Body:  "Your pieces are out of the kiln and ready for pickup at the studio.",
			},
		},
		{
			name:    "遅延フォローアップは理由を含む",
			kind:    notify.KindReservationDelayFollowUp,
			payload: notify.Payload{Reason: "glaze kiln failure"},
			want: notify.Content{
				Title: "Still delayed",
				Body:  "Your reservation is still delayed: glaze kiln failure",
			},
		},
		{
			name:    "初回の受取リマインダー",
			kind:    notify.KindReservationPickupReminder,
			payload: notify.Payload{ReminderOrdinal: 1},
			want: notify.Content{
				Title: "Pickup reminder",
				Body:  "Your fired pieces are waiting for pickup.",
			},
		},
		{
			name:    "2回目のリマインダー",
			kind:    notify.KindReservationPickupReminder,
			payload: notify.Payload{ReminderOrdinal: 2},
			want: notify.Content{
				Title: "Pickup reminder",
				Body:  "Second reminder: your fired pieces are still waiting for pickup.",
			},
		},
		{
			name:    "最終リマインダー",
			kind:    notify.KindReservationPickupReminder,
			payload: notify.Payload{ReminderOrdinal: 3},
			want: notify.Content{
				Title: "Final pickup reminder",
				Body:  "Final reminder: uncollected pieces will be moved to studio storage soon.",
			},
		},
		{
			name:    "保管移行後の通知",
			kind:    notify.KindReservationPickupReminder,
			payload: notify.Payload{ReminderOrdinal: 3, StorageStatus: "stored_by_policy"},
			want: notify.Content{
				Title: "Pieces moved to storage",
				Body:  "Your pieces were moved to studio storage under the uncollected-work policy. Contact the studio to arrange pickup.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := notify.BuildContent(tt.kind, mustMarshal(t, tt.payload))
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Content mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("未知の種別はエラー", func(t *testing.T) {
		_, err := notify.BuildContent(notify.Kind("postcard"), nil)
		assert.ErrorIs(t, err, errs.ErrInvalidJobKind)
	})

	t.Run("壊れたペイロードはエラー", func(t *testing.T) {
		_, err := notify.BuildContent(notify.KindReservationStatus, []byte(`{"status":`))
		assert.ErrorIs(t, err, errs.ErrInvalidPayload)
	})
}
