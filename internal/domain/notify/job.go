package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the closed set of notification job types.
type Kind string

const (
	KindKilnUnloaded              Kind = "kiln_unloaded"
	KindReservationStatus         Kind = "reservation_status"
	KindReservationETAShift       Kind = "reservation_eta_shift"
	KindReservationReadyPickup    Kind = "reservation_ready_pickup"
	KindReservationDelayFollowUp  Kind = "reservation_delay_follow_up"
	KindReservationPickupReminder Kind = "reservation_pickup_reminder"
)

func (k Kind) Valid() bool {
	switch k {
	case KindKilnUnloaded, KindReservationStatus, KindReservationETAShift,
		KindReservationReadyPickup, KindReservationDelayFollowUp, KindReservationPickupReminder:
		return true
	}
	return false
}

// IsReservationKind reports whether the job is tied to a reservation and its
// recipient opt-in, which gates the dispatch-time preference recheck.
func (k Kind) IsReservationKind() bool {
	return k != KindKilnUnloaded
}

// NeedsRevalidation reports whether the job's live condition must still hold
// at dispatch time (self-rescheduling and reminder kinds).
func (k Kind) NeedsRevalidation() bool {
	return k == KindReservationDelayFollowUp || k == KindReservationPickupReminder
}

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// SkipReason is the terminal reason recorded on a skipped job.
type SkipReason string

const (
	SkipPrefsDisabled           SkipReason = "PREFS_DISABLED"
	SkipNoChannelsEnabled       SkipReason = "NO_CHANNELS_ENABLED"
	SkipReservationPrefDisabled SkipReason = "RESERVATION_PREF_DISABLED"
	SkipReservationNotFound     SkipReason = "RESERVATION_NOT_FOUND"
	SkipNoLongerDelayed         SkipReason = "RESERVATION_NO_LONGER_DELAYED"
	SkipNotReadyForPickup       SkipReason = "RESERVATION_NOT_READY_FOR_PICKUP"
	SkipStorageFinalized        SkipReason = "RESERVATION_STORAGE_FINALIZED"
	SkipReminderAlreadyRecorded SkipReason = "REMINDER_ALREADY_RECORDED"
)

// jobNamespace seeds the deterministic job identity. For a given dedupe key
// there is exactly one job ID, which is what makes Enqueue a no-op on replay.
var jobNamespace = uuid.MustParse("8f6f31fa-2b9d-4f0e-9c3a-16e8a6f0d7b1")

// JobID derives the job record identity from its dedupe key.
func JobID(dedupeKey string) uuid.UUID {
	return uuid.NewSHA1(jobNamespace, []byte(dedupeKey))
}

// ChannelDedupeID derives a per-channel write identity so that a retried job
// re-issuing an already-completed channel is a no-op at the store.
func ChannelDedupeID(dedupeKey, channel string) uuid.UUID {
	return uuid.NewSHA1(jobNamespace, []byte(dedupeKey+":"+channel))
}

// Channels holds the per-channel enablement resolved once at job creation.
type Channels struct {
	InApp bool `json:"inapp"`
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

func (c Channels) Any() bool {
	return c.InApp || c.Email || c.Push || c.SMS
}

// Intersect narrows the creation-time channels by the recipient's current
// preferences (dispatch-time recheck).
func (c Channels) Intersect(other Channels) Channels {
	return Channels{
		InApp: c.InApp && other.InApp,
		Email: c.Email && other.Email,
		Push:  c.Push && other.Push,
		SMS:   c.SMS && other.SMS,
	}
}

// Spec is the caller-facing description of a job to enqueue.
type Spec struct {
	Kind      Kind
	DedupeKey string
	UserID    uuid.UUID
	Payload   Payload
	// BaseTime anchors scheduling resolution; zero means "now".
	BaseTime time.Time
}

// Payload carries event-specific fields. It is opaque to the queue engine and
// interpreted only by content builders and the revalidation step.
type Payload struct {
	FiringID        *uuid.UUID `json:"firing_id,omitempty"`
	ReservationID   *uuid.UUID `json:"reservation_id,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	Status          string     `json:"status,omitempty"`
	WindowStart     *time.Time `json:"window_start,omitempty"`
	WindowEnd       *time.Time `json:"window_end,omitempty"`
	StorageStatus   string     `json:"storage_status,omitempty"`
	ReminderOrdinal int        `json:"reminder_ordinal,omitempty"`
	EpisodeID       *uuid.UUID `json:"episode_id,omitempty"`
	FollowUpOrdinal int        `json:"follow_up_ordinal,omitempty"`
}

func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func ParsePayload(raw []byte) (Payload, error) {
	var p Payload
	if len(raw) == 0 {
		return p, nil
	}
	err := json.Unmarshal(raw, &p)
	return p, err
}

// Job is the persisted unit of work owned by the queue engine.
type Job struct {
	ID             uuid.UUID
	Kind           Kind
	DedupeKey      string
	UserID         uuid.UUID
	Channels       Channels
	Payload        []byte
	Status         Status
	RunAfter       *time.Time
	Attempts       int32
	LastError      *string
	LastErrorClass *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DeadLetter is the immutable archival copy of a job that exhausted retries.
type DeadLetter struct {
	JobID        uuid.UUID
	Kind         Kind
	DedupeKey    string
	UserID       uuid.UUID
	Payload      []byte
	Attempts     int32
	ErrorClass   ErrorClass
	ErrorMessage string
	FailedAt     time.Time
}
