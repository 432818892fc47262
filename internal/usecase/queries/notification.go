package queries

import (
	"context"

	"kilnhall/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrUnknownJobStatus = errs.New("unknown job status")

var validJobStatuses = map[string]struct{}{
	"queued":     {},
	"processing": {},
	"done":       {},
	"failed":     {},
	"skipped":    {},
}

type NotificationReadStore interface {
	ListJobsByStatus(ctx context.Context, status string, limit int32) ([]JobView, error)
	ListDeadLetters(ctx context.Context, limit int32) ([]DeadLetterView, error)
}

type ReservationReadStore interface {
	ListAudit(ctx context.Context, reservationID uuid.UUID, limit int32) ([]AuditEntryView, error)
}

// NotificationQueries is the operational read surface: job listings, dead
// letters and per-reservation audit trails for dashboards.
type NotificationQueries interface {
	ListJobsByStatus(ctx context.Context, status string, limit int32) ([]JobView, error)
	ListDeadLetters(ctx context.Context, limit int32) ([]DeadLetterView, error)
	ListReservationAudit(ctx context.Context, reservationID uuid.UUID, limit int32) ([]AuditEntryView, error)
}

type notificationQueriesImpl struct {
	notificationStore NotificationReadStore
	reservationStore  ReservationReadStore
}

func NewNotificationQueries(
	notificationStore NotificationReadStore,
	reservationStore ReservationReadStore,
) NotificationQueries {
	return &notificationQueriesImpl{
		notificationStore: notificationStore,
		reservationStore:  reservationStore,
	}
}

func (q *notificationQueriesImpl) ListJobsByStatus(ctx context.Context, status string, limit int32) ([]JobView, error) {
	if _, ok := validJobStatuses[status]; !ok {
		return nil, ErrUnknownJobStatus
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return q.notificationStore.ListJobsByStatus(ctx, status, limit)
}

func (q *notificationQueriesImpl) ListDeadLetters(ctx context.Context, limit int32) ([]DeadLetterView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return q.notificationStore.ListDeadLetters(ctx, limit)
}

func (q *notificationQueriesImpl) ListReservationAudit(ctx context.Context, reservationID uuid.UUID, limit int32) ([]AuditEntryView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return q.reservationStore.ListAudit(ctx, reservationID, limit)
}
