//go:build unit

package notify_test

import (
	"testing"

	"kilnhall/internal/domain/notify"

	"github.com/stretchr/testify/assert"
)

func TestJobID(t *testing.T) {
	t.Run("同じキーからは常に同じID", func(t *testing.T) {
		a := notify.JobID("resv:abc:status:ev-1")
		b := notify.JobID("resv:abc:status:ev-1")
		assert.Equal(t, a, b)
	})

	t.Run("異なるキーはIDが衝突しない", func(t *testing.T) {
		a := notify.JobID("resv:abc:status:ev-1")
		b := notify.JobID("resv:abc:status:ev-2")
		assert.NotEqual(t, a, b)
	})

	t.Run("チャネル別IDはジョブIDとも互いにも別物", func(t *testing.T) {
		key := "resv:abc:ready_pickup:f-1"
		jobID := notify.JobID(key)
		inapp := notify.ChannelDedupeID(key, "inapp")
		email := notify.ChannelDedupeID(key, "email")
		fallback := notify.ChannelDedupeID(key, "fallback")

		assert.NotEqual(t, jobID, inapp)
		assert.NotEqual(t, inapp, email)
		assert.NotEqual(t, email, fallback)
	})
}

func TestKind(t *testing.T) {
	valid := []notify.Kind{
		notify.KindKilnUnloaded,
		notify.KindReservationStatus,
		notify.KindReservationETAShift,
		notify.KindReservationReadyPickup,
		notify.KindReservationDelayFollowUp,
		notify.KindReservationPickupReminder,
	}
	for _, k := range valid {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, notify.Kind("something_else").Valid())

	assert.False(t, notify.KindKilnUnloaded.IsReservationKind())
	assert.True(t, notify.KindReservationStatus.IsReservationKind())

	assert.True(t, notify.KindReservationDelayFollowUp.NeedsRevalidation())
	assert.True(t, notify.KindReservationPickupReminder.NeedsRevalidation())
	assert.False(t, notify.KindReservationStatus.NeedsRevalidation())
}

func TestChannels(t *testing.T) {
	t.Run("Anyは一つでも有効ならtrue", func(t *testing.T) {
		assert.False(t, notify.Channels{}.Any())
		assert.True(t, notify.Channels{Push: true}.Any())
	})

	t.Run("Intersectは両方で有効なチャネルだけ残す", func(t *testing.T) {
		created := notify.Channels{InApp: true, Email: true, SMS: true}
		current := notify.Channels{InApp: true, Push: true, SMS: false}
		got := created.Intersect(current)
		assert.Equal(t, notify.Channels{InApp: true}, got)
	})
}

func TestPayloadRoundTrip(t *testing.T) {
	p := notify.Payload{Reason: "glaze firing delayed", ReminderOrdinal: 2}
	raw, err := p.Marshal()
	assert.NoError(t, err)

	got, err := notify.ParsePayload(raw)
	assert.NoError(t, err)
	assert.Equal(t, p, got)

	empty, err := notify.ParsePayload(nil)
	assert.NoError(t, err)
	assert.Equal(t, notify.Payload{}, empty)
}
