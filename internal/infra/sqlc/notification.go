package sqlc

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createNotificationJob = `
INSERT INTO notification_jobs (
    id, kind, dedupe_key, user_id,
    inapp_enabled, email_enabled, push_enabled, sms_enabled,
    payload, status, run_after, attempts, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, now(), now())
ON CONFLICT (id) DO NOTHING
`

type CreateNotificationJobParams struct {
	ID           uuid.UUID
	Kind         string
	DedupeKey    string
	UserID       uuid.UUID
	InappEnabled bool
	EmailEnabled bool
	PushEnabled  bool
	SmsEnabled   bool
	Payload      []byte
	Status       string
	RunAfter     pgtype.Timestamptz
}

// CreateNotificationJob inserts a job if absent and reports the number of
// rows written; 0 means a job with the same identity already exists.
func (q *Queries) CreateNotificationJob(ctx context.Context, db DBTX, arg CreateNotificationJobParams) (int64, error) {
	result, err := db.Exec(ctx, createNotificationJob,
		arg.ID, arg.Kind, arg.DedupeKey, arg.UserID,
		arg.InappEnabled, arg.EmailEnabled, arg.PushEnabled, arg.SmsEnabled,
		arg.Payload, arg.Status, arg.RunAfter,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getDueNotificationJobs = `
SELECT id, kind, dedupe_key, user_id,
       inapp_enabled, email_enabled, push_enabled, sms_enabled,
       payload, status, run_after, attempts, last_error, last_error_class,
       created_at, updated_at
FROM notification_jobs
WHERE status = 'queued' AND (run_after IS NULL OR run_after <= $1)
ORDER BY COALESCE(run_after, created_at) ASC
LIMIT $2
`

type GetDueNotificationJobsParams struct {
	Now   pgtype.Timestamptz
	Limit int32
}

func (q *Queries) GetDueNotificationJobs(ctx context.Context, db DBTX, arg GetDueNotificationJobsParams) ([]NotificationJobs, error) {
	rows, err := db.Query(ctx, getDueNotificationJobs, arg.Now, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NotificationJobs
	for rows.Next() {
		var i NotificationJobs
		if err := rows.Scan(
			&i.ID, &i.Kind, &i.DedupeKey, &i.UserID,
			&i.InappEnabled, &i.EmailEnabled, &i.PushEnabled, &i.SmsEnabled,
			&i.Payload, &i.Status, &i.RunAfter, &i.Attempts, &i.LastError, &i.LastErrorClass,
			&i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const claimNotificationJob = `
UPDATE notification_jobs
SET status = 'processing', attempts = attempts + 1, updated_at = now()
WHERE id = $1 AND status = 'queued' AND (run_after IS NULL OR run_after <= $2)
RETURNING id, kind, dedupe_key, user_id,
          inapp_enabled, email_enabled, push_enabled, sms_enabled,
          payload, status, run_after, attempts, last_error, last_error_class,
          created_at, updated_at
`

type ClaimNotificationJobParams struct {
	ID  uuid.UUID
	Now pgtype.Timestamptz
}

// ClaimNotificationJob flips a queued, due job to processing and bumps the
// attempt counter. No row comes back when the job is not claimable, which
// is the duplicate-trigger guard.
func (q *Queries) ClaimNotificationJob(ctx context.Context, db DBTX, arg ClaimNotificationJobParams) (NotificationJobs, error) {
	row := db.QueryRow(ctx, claimNotificationJob, arg.ID, arg.Now)
	var i NotificationJobs
	err := row.Scan(
		&i.ID, &i.Kind, &i.DedupeKey, &i.UserID,
		&i.InappEnabled, &i.EmailEnabled, &i.PushEnabled, &i.SmsEnabled,
		&i.Payload, &i.Status, &i.RunAfter, &i.Attempts, &i.LastError, &i.LastErrorClass,
		&i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}

const finishNotificationJob = `
UPDATE notification_jobs
SET status = $2, last_error = $3, last_error_class = $4, updated_at = now()
WHERE id = $1 AND status = 'processing'
`

type FinishNotificationJobParams struct {
	ID             uuid.UUID
	Status         string
	LastError      pgtype.Text
	LastErrorClass pgtype.Text
}

func (q *Queries) FinishNotificationJob(ctx context.Context, db DBTX, arg FinishNotificationJobParams) error {
	_, err := db.Exec(ctx, finishNotificationJob, arg.ID, arg.Status, arg.LastError, arg.LastErrorClass)
	return err
}

const requeueNotificationJob = `
UPDATE notification_jobs
SET status = 'queued', run_after = $2, last_error = $3, last_error_class = $4, updated_at = now()
WHERE id = $1 AND status = 'processing'
`

type RequeueNotificationJobParams struct {
	ID             uuid.UUID
	RunAfter       pgtype.Timestamptz
	LastError      pgtype.Text
	LastErrorClass pgtype.Text
}

func (q *Queries) RequeueNotificationJob(ctx context.Context, db DBTX, arg RequeueNotificationJobParams) error {
	_, err := db.Exec(ctx, requeueNotificationJob, arg.ID, arg.RunAfter, arg.LastError, arg.LastErrorClass)
	return err
}

const listNotificationJobsByStatus = `
SELECT id, kind, dedupe_key, user_id,
       inapp_enabled, email_enabled, push_enabled, sms_enabled,
       payload, status, run_after, attempts, last_error, last_error_class,
       created_at, updated_at
FROM notification_jobs
WHERE status = $1
ORDER BY updated_at DESC
LIMIT $2
`

type ListNotificationJobsByStatusParams struct {
	Status string
	Limit  int32
}

func (q *Queries) ListNotificationJobsByStatus(ctx context.Context, db DBTX, arg ListNotificationJobsByStatusParams) ([]NotificationJobs, error) {
	rows, err := db.Query(ctx, listNotificationJobsByStatus, arg.Status, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NotificationJobs
	for rows.Next() {
		var i NotificationJobs
		if err := rows.Scan(
			&i.ID, &i.Kind, &i.DedupeKey, &i.UserID,
			&i.InappEnabled, &i.EmailEnabled, &i.PushEnabled, &i.SmsEnabled,
			&i.Payload, &i.Status, &i.RunAfter, &i.Attempts, &i.LastError, &i.LastErrorClass,
			&i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteFinishedNotificationJobs = `
DELETE FROM notification_jobs
WHERE status IN ('done', 'skipped', 'failed') AND updated_at < $1
`

func (q *Queries) DeleteFinishedNotificationJobs(ctx context.Context, db DBTX, before pgtype.Timestamptz) (int64, error) {
	result, err := db.Exec(ctx, deleteFinishedNotificationJobs, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const createDeadLetter = `
INSERT INTO dead_letters (
    job_id, kind, dedupe_key, user_id, payload, attempts, error_class, error_message, failed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (job_id) DO NOTHING
`

type CreateDeadLetterParams struct {
	JobID        uuid.UUID
	Kind         string
	DedupeKey    string
	UserID       uuid.UUID
	Payload      []byte
	Attempts     int32
	ErrorClass   string
	ErrorMessage string
	FailedAt     pgtype.Timestamptz
}

func (q *Queries) CreateDeadLetter(ctx context.Context, db DBTX, arg CreateDeadLetterParams) (int64, error) {
	result, err := db.Exec(ctx, createDeadLetter,
		arg.JobID, arg.Kind, arg.DedupeKey, arg.UserID, arg.Payload,
		arg.Attempts, arg.ErrorClass, arg.ErrorMessage, arg.FailedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listDeadLetters = `
SELECT job_id, kind, dedupe_key, user_id, payload, attempts, error_class, error_message, failed_at
FROM dead_letters
ORDER BY failed_at DESC
LIMIT $1
`

func (q *Queries) ListDeadLetters(ctx context.Context, db DBTX, limit int32) ([]DeadLetters, error) {
	rows, err := db.Query(ctx, listDeadLetters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DeadLetters
	for rows.Next() {
		var i DeadLetters
		if err := rows.Scan(
			&i.JobID, &i.Kind, &i.DedupeKey, &i.UserID, &i.Payload,
			&i.Attempts, &i.ErrorClass, &i.ErrorMessage, &i.FailedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteDeadLettersBefore = `
DELETE FROM dead_letters WHERE failed_at < $1
`

func (q *Queries) DeleteDeadLettersBefore(ctx context.Context, db DBTX, before pgtype.Timestamptz) (int64, error) {
	result, err := db.Exec(ctx, deleteDeadLettersBefore, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
