package queries

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type JobView struct {
	ID             uuid.UUID  `json:"id"`
	Kind           string     `json:"kind"`
	DedupeKey      string     `json:"dedupe_key"`
	UserID         uuid.UUID  `json:"user_id"`
	Status         string     `json:"status"`
	RunAfter       *time.Time `json:"run_after,omitempty"`
	Attempts       int32      `json:"attempts"`
	LastError      *string    `json:"last_error,omitempty"`
	LastErrorClass *string    `json:"last_error_class,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type DeadLetterView struct {
	JobID        uuid.UUID `json:"job_id"`
	Kind         string    `json:"kind"`
	DedupeKey    string    `json:"dedupe_key"`
	UserID       uuid.UUID `json:"user_id"`
	Attempts     int32     `json:"attempts"`
	ErrorClass   string    `json:"error_class"`
	ErrorMessage string    `json:"error_message"`
	FailedAt     time.Time `json:"failed_at"`
}

type AuditEntryView struct {
	ID            int64           `json:"id"`
	ReservationID uuid.UUID       `json:"reservation_id"`
	Event         string          `json:"event"`
	Detail        json.RawMessage `json:"detail,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
