package reservation

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusConfirmed  Status = "CONFIRMED"
	StatusWaitlisted Status = "WAITLISTED"
	StatusCancelled  Status = "CANCELLED"
	StatusLoaded     Status = "LOADED"
)

type LoadStatus string

const (
	LoadStatusPending LoadStatus = "pending"
	LoadStatusLoaded  LoadStatus = "loaded"
)

type SLAState string

const (
	SLAOnTrack SLAState = "on_track"
	SLAAtRisk  SLAState = "at_risk"
	SLADelayed SLAState = "delayed"
)

// StorageStatus only moves forward, except for the reset to active on a
// fresh pickup-ready transition.
type StorageStatus string

const (
	StorageActive          StorageStatus = "active"
	StorageReminderPending StorageStatus = "reminder_pending"
	StorageHoldPending     StorageStatus = "hold_pending"
	StorageStoredByPolicy  StorageStatus = "stored_by_policy"
)

// Rank orders storage statuses for the forward-only invariant.
func (s StorageStatus) Rank() int {
	switch s {
	case StorageActive:
		return 0
	case StorageReminderPending:
		return 1
	case StorageHoldPending:
		return 2
	case StorageStoredByPolicy:
		return 3
	}
	return -1
}

type PickupWindowStatus string

const (
	WindowOpen      PickupWindowStatus = "open"
	WindowConfirmed PickupWindowStatus = "confirmed"
	WindowMissed    PickupWindowStatus = "missed"
	WindowExpired   PickupWindowStatus = "expired"
	WindowCompleted PickupWindowStatus = "completed"
)

type EstimatedWindow struct {
	Start      *time.Time
	End        *time.Time
	UpdatedAt  *time.Time
	SLAState   SLAState
	Confidence string
}

type PickupWindow struct {
	RequestedStart  *time.Time
	RequestedEnd    *time.Time
	ConfirmedStart  *time.Time
	ConfirmedEnd    *time.Time
	Status          PickupWindowStatus
	MissedCount     int32
	RescheduleCount int32
}

// Notice is one entry in the bounded storage notice history.
type Notice struct {
	At     time.Time `json:"at"`
	Event  string    `json:"event"`
	Detail string    `json:"detail,omitempty"`
}

// MaxNoticeHistory bounds the per-reservation notice ring; oldest entries
// are dropped first.
const MaxNoticeHistory = 60

// AppendNotice appends to the history, dropping the oldest entries beyond
// the cap.
func AppendNotice(history []Notice, n Notice) []Notice {
	history = append(history, n)
	if len(history) > MaxNoticeHistory {
		history = history[len(history)-MaxNoticeHistory:]
	}
	return history
}

// Snapshot is the read-mostly reservation view shared by the event intake
// and the storage-policy sweep.
type Snapshot struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	FiringID             *uuid.UUID
	Status               Status
	LoadStatus           LoadStatus
	Estimated            EstimatedWindow
	DelayEpisodeID       *uuid.UUID
	StorageStatus        StorageStatus
	PickupReminderCount  int32
	ReminderFailureCount int32
	ReadyForPickupAt     *time.Time
	NoticeHistory        []Notice
	Pickup               PickupWindow
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// AnchorTime is the reference point for elapsed-time escalation, backfilled
// from update/creation times when ready-for-pickup was never stamped.
func (s *Snapshot) AnchorTime() time.Time {
	if s.ReadyForPickupAt != nil {
		return *s.ReadyForPickupAt
	}
	if !s.UpdatedAt.IsZero() {
		return s.UpdatedAt
	}
	return s.CreatedAt
}

// SweepEligible reports whether the storage-policy sweep should evaluate
// this reservation.
func (s *Snapshot) SweepEligible() bool {
	return s.LoadStatus == LoadStatusLoaded &&
		s.Status != StatusCancelled &&
		s.Pickup.Status != WindowCompleted
}

// Delayed reports whether the reservation currently sits in a delay episode.
func (s *Snapshot) Delayed() bool {
	return s.Estimated.SLAState == SLADelayed
}

// StorageFinalized reports whether the storage policy has run its course.
func (s *Snapshot) StorageFinalized() bool {
	return s.StorageStatus == StorageStoredByPolicy
}

// HasNotice reports whether the notice history records the given event.
func (s *Snapshot) HasNotice(event string) bool {
	for _, n := range s.NoticeHistory {
		if n.Event == event {
			return true
		}
	}
	return false
}
