package request

import (
	"time"

	"kilnhall/internal/usecase/commands"

	"github.com/google/uuid"
)

type KilnUnloadedItem struct {
	ReservationID uuid.UUID `json:"reservation_id" binding:"required"`
	UserID        uuid.UUID `json:"user_id" binding:"required"`
}

type KilnUnloadedRequest struct {
	FiringID   uuid.UUID          `json:"firing_id" binding:"required"`
	UnloadedAt *time.Time         `json:"unloaded_at,omitempty"`
	Items      []KilnUnloadedItem `json:"items" binding:"required,min=1,dive"`
}

func (r KilnUnloadedRequest) ToCommand() commands.KilnUnloadedEvent {
	ev := commands.KilnUnloadedEvent{
		FiringID: r.FiringID,
		Items:    make([]commands.KilnUnloadedItem, len(r.Items)),
	}
	if r.UnloadedAt != nil {
		ev.UnloadedAt = *r.UnloadedAt
	}
	for i, item := range r.Items {
		ev.Items[i] = commands.KilnUnloadedItem{
			ReservationID: item.ReservationID,
			UserID:        item.UserID,
		}
	}
	return ev
}

type ReservationEventRequest struct {
	EventID       string     `json:"event_id" binding:"required"`
	Type          string     `json:"type" binding:"required,oneof=status_changed eta_shift ready_pickup"`
	ReservationID uuid.UUID  `json:"reservation_id" binding:"required"`
	UserID        uuid.UUID  `json:"user_id" binding:"required"`
	Status        string     `json:"status,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	SLAState      string     `json:"sla_state,omitempty"`
	EpisodeID     *uuid.UUID `json:"episode_id,omitempty"`
	WindowStart   *time.Time `json:"window_start,omitempty"`
	WindowEnd     *time.Time `json:"window_end,omitempty"`
}

func (r ReservationEventRequest) ToCommand() commands.ReservationEvent {
	return commands.ReservationEvent{
		EventID:       r.EventID,
		Type:          r.Type,
		ReservationID: r.ReservationID,
		UserID:        r.UserID,
		Status:        r.Status,
		Reason:        r.Reason,
		SLAState:      r.SLAState,
		EpisodeID:     r.EpisodeID,
		WindowStart:   r.WindowStart,
		WindowEnd:     r.WindowEnd,
	}
}
