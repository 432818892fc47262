package commands

import (
	"context"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/domain/reservation"
	"kilnhall/internal/infra/provider"

	"github.com/google/uuid"
)

// ContactSnapshot prevents dependency on infra row types: the resolved
// delivery identity for one recipient, verified addresses only.
type ContactSnapshot struct {
	Email *string
	Phone *string
	Staff bool
}

type JobStore interface {
	Create(ctx context.Context, job *notify.Job) (bool, error)
	FindDue(ctx context.Context, now time.Time, limit int32) ([]*notify.Job, error)
	Claim(ctx context.Context, id uuid.UUID, now time.Time) (*notify.Job, error)
	Finish(ctx context.Context, id uuid.UUID, status notify.Status, lastError *string, errorClass *string) error
	Requeue(ctx context.Context, id uuid.UUID, runAfter time.Time, lastError string, errorClass string) error
	PruneFinished(ctx context.Context, before time.Time) (int64, error)
}

type DeadLetterStore interface {
	Create(ctx context.Context, dl *notify.DeadLetter) error
	PruneBefore(ctx context.Context, before time.Time) (int64, error)
}

type PreferencesStore interface {
	Find(ctx context.Context, userID uuid.UUID) (notify.Preferences, error)
}

type ContactStore interface {
	FindContact(ctx context.Context, userID uuid.UUID) (*ContactSnapshot, error)
}

type ReservationStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Snapshot, error)
	ListSweepCandidates(ctx context.Context) ([]*reservation.Snapshot, error)
	ApplyStorageTransition(ctx context.Context, snap *reservation.Snapshot) error
	ResetOnPickupReady(ctx context.Context, id uuid.UUID, readyAt time.Time) error
	RecordReminderFailure(ctx context.Context, id uuid.UUID) error
	AppendNotice(ctx context.Context, snap *reservation.Snapshot, notice reservation.Notice) error
	AppendAudit(ctx context.Context, id uuid.UUID, event string, detail any) error
}

type InAppStore interface {
	CreateIfAbsent(ctx context.Context, id, userID uuid.UUID, kind, title, body string, payload []byte) (bool, error)
}

type MailStore interface {
	CreateIfAbsent(ctx context.Context, id uuid.UUID, recipient, subject, body string) (bool, error)
}

type DeviceTokenStore interface {
	ListActive(ctx context.Context, userID uuid.UUID, limit int32) ([]string, error)
	Deactivate(ctx context.Context, token string) error
}

type SMSSender interface {
	Send(ctx context.Context, to, body string) (provider.SMSResult, error)
}

type PushSender interface {
	Send(ctx context.Context, tokens []string, title, body string, data []byte) ([]provider.PushResult, error)
}
