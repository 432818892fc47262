package notify

import "github.com/google/uuid"

type FrequencyMode string

const (
	FrequencyImmediate FrequencyMode = "immediate"
	FrequencyDigest    FrequencyMode = "digest"
)

// QuietHours is a local time-of-day window during which dispatch is deferred.
// The window may wrap midnight (StartMinute > EndMinute). StartMinute equal
// to EndMinute is the degenerate "always quiet" case.
type QuietHours struct {
	Enabled     bool
	StartMinute int // minutes since local midnight
	EndMinute   int
	Timezone    string // IANA name, e.g. "America/Los_Angeles"
}

type Frequency struct {
	Mode        FrequencyMode
	DigestHours int
}

// Preferences is the per-user notification configuration. It is owned by
// profile management; this core only reads it.
type Preferences struct {
	UserID             uuid.UUID
	Enabled            bool
	Channels           Channels
	EventToggles       map[Kind]bool
	ReservationUpdates bool
	QuietHours         QuietHours
	Frequency          Frequency
}

// DefaultPreferences is used when a user has never saved preferences:
// everything on, in-app plus email, immediate delivery, no quiet hours.
func DefaultPreferences(userID uuid.UUID) Preferences {
	return Preferences{
		UserID:             userID,
		Enabled:            true,
		Channels:           Channels{InApp: true, Email: true},
		ReservationUpdates: true,
		Frequency:          Frequency{Mode: FrequencyImmediate},
	}
}

// KindEnabled applies the master switch and the per-event toggle. An absent
// toggle means enabled.
func (p Preferences) KindEnabled(k Kind) bool {
	if !p.Enabled {
		return false
	}
	if p.EventToggles == nil {
		return true
	}
	if on, ok := p.EventToggles[k]; ok {
		return on
	}
	return true
}

// EnabledChannels returns the channels usable right now, empty when the
// master switch is off.
func (p Preferences) EnabledChannels() Channels {
	if !p.Enabled {
		return Channels{}
	}
	return p.Channels
}
