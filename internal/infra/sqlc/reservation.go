package sqlc

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationColumns = `
id, user_id, firing_id, status, load_status,
est_window_start, est_window_end, est_window_updated_at, sla_state, confidence,
delay_episode_id, storage_status, pickup_reminder_count, reminder_failure_count,
ready_for_pickup_at, notice_history,
pw_requested_start, pw_requested_end, pw_confirmed_start, pw_confirmed_end,
pw_status, pw_missed_count, pw_reschedule_count,
created_at, updated_at
`

func scanReservation(row scanner, i *Reservations) error {
	return row.Scan(
		&i.ID, &i.UserID, &i.FiringID, &i.Status, &i.LoadStatus,
		&i.EstWindowStart, &i.EstWindowEnd, &i.EstWindowUpdatedAt, &i.SlaState, &i.Confidence,
		&i.DelayEpisodeID, &i.StorageStatus, &i.PickupReminderCount, &i.ReminderFailureCount,
		&i.ReadyForPickupAt, &i.NoticeHistory,
		&i.PwRequestedStart, &i.PwRequestedEnd, &i.PwConfirmedStart, &i.PwConfirmedEnd,
		&i.PwStatus, &i.PwMissedCount, &i.PwRescheduleCount,
		&i.CreatedAt, &i.UpdatedAt,
	)
}

// scanner narrows pgx.Row/pgx.Rows to the shared Scan signature.
type scanner interface {
	Scan(dest ...any) error
}

const getReservation = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE id = $1
`

func (q *Queries) GetReservation(ctx context.Context, db DBTX, id uuid.UUID) (Reservations, error) {
	var i Reservations
	err := scanReservation(db.QueryRow(ctx, getReservation, id), &i)
	return i, err
}

const listSweepReservations = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE load_status = 'loaded'
  AND status <> 'CANCELLED'
  AND pw_status <> 'completed'
ORDER BY ready_for_pickup_at ASC NULLS FIRST
`

func (q *Queries) ListSweepReservations(ctx context.Context, db DBTX) ([]Reservations, error) {
	rows, err := db.Query(ctx, listSweepReservations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Reservations
	for rows.Next() {
		var i Reservations
		if err := scanReservation(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const applyStorageTransition = `
UPDATE reservations
SET storage_status = $2,
    pickup_reminder_count = $3,
    ready_for_pickup_at = $4,
    notice_history = $5,
    pw_status = $6,
    pw_missed_count = $7,
    updated_at = now()
WHERE id = $1
`

type ApplyStorageTransitionParams struct {
	ID                  uuid.UUID
	StorageStatus       string
	PickupReminderCount int32
	ReadyForPickupAt    pgtype.Timestamptz
	NoticeHistory       []byte
	PwStatus            string
	PwMissedCount       int32
}

func (q *Queries) ApplyStorageTransition(ctx context.Context, db DBTX, arg ApplyStorageTransitionParams) error {
	_, err := db.Exec(ctx, applyStorageTransition,
		arg.ID, arg.StorageStatus, arg.PickupReminderCount, arg.ReadyForPickupAt,
		arg.NoticeHistory, arg.PwStatus, arg.PwMissedCount,
	)
	return err
}

const resetReservationStorage = `
UPDATE reservations
SET storage_status = 'active',
    pickup_reminder_count = 0,
    reminder_failure_count = 0,
    ready_for_pickup_at = $2,
    notice_history = $3,
    updated_at = now()
WHERE id = $1
`

type ResetReservationStorageParams struct {
	ID               uuid.UUID
	ReadyForPickupAt pgtype.Timestamptz
	NoticeHistory    []byte
}

func (q *Queries) ResetReservationStorage(ctx context.Context, db DBTX, arg ResetReservationStorageParams) error {
	_, err := db.Exec(ctx, resetReservationStorage, arg.ID, arg.ReadyForPickupAt, arg.NoticeHistory)
	return err
}

const incrementReminderFailure = `
UPDATE reservations
SET reminder_failure_count = reminder_failure_count + 1, updated_at = now()
WHERE id = $1
`

func (q *Queries) IncrementReminderFailure(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, incrementReminderFailure, id)
	return err
}

const appendNoticeHistory = `
UPDATE reservations
SET notice_history = $2, updated_at = now()
WHERE id = $1
`

type AppendNoticeHistoryParams struct {
	ID            uuid.UUID
	NoticeHistory []byte
}

func (q *Queries) AppendNoticeHistory(ctx context.Context, db DBTX, arg AppendNoticeHistoryParams) error {
	_, err := db.Exec(ctx, appendNoticeHistory, arg.ID, arg.NoticeHistory)
	return err
}

const createReservationAudit = `
INSERT INTO reservation_audit (reservation_id, event, detail, created_at)
VALUES ($1, $2, $3, now())
`

type CreateReservationAuditParams struct {
	ReservationID uuid.UUID
	Event         string
	Detail        []byte
}

func (q *Queries) CreateReservationAudit(ctx context.Context, db DBTX, arg CreateReservationAuditParams) error {
	_, err := db.Exec(ctx, createReservationAudit, arg.ReservationID, arg.Event, arg.Detail)
	return err
}

const pruneReservationAudit = `
DELETE FROM reservation_audit
WHERE reservation_id = $1
  AND id NOT IN (
      SELECT id FROM reservation_audit
      WHERE reservation_id = $1
      ORDER BY id DESC
      LIMIT $2
  )
`

type PruneReservationAuditParams struct {
	ReservationID uuid.UUID
	Keep          int32
}

func (q *Queries) PruneReservationAudit(ctx context.Context, db DBTX, arg PruneReservationAuditParams) error {
	_, err := db.Exec(ctx, pruneReservationAudit, arg.ReservationID, arg.Keep)
	return err
}

const listReservationAudit = `
SELECT id, reservation_id, event, detail, created_at
FROM reservation_audit
WHERE reservation_id = $1
ORDER BY id DESC
LIMIT $2
`

type ListReservationAuditParams struct {
	ReservationID uuid.UUID
	Limit         int32
}

func (q *Queries) ListReservationAudit(ctx context.Context, db DBTX, arg ListReservationAuditParams) ([]ReservationAudit, error) {
	rows, err := db.Query(ctx, listReservationAudit, arg.ReservationID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReservationAudit
	for rows.Next() {
		var i ReservationAudit
		if err := rows.Scan(&i.ID, &i.ReservationID, &i.Event, &i.Detail, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
