package repository

import (
	"context"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"
	"kilnhall/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type JobQueries interface {
	CreateNotificationJob(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateNotificationJobParams) (int64, error)
	GetDueNotificationJobs(ctx context.Context, db sqlc.DBTX, arg sqlc.GetDueNotificationJobsParams) ([]sqlc.NotificationJobs, error)
	ClaimNotificationJob(ctx context.Context, db sqlc.DBTX, arg sqlc.ClaimNotificationJobParams) (sqlc.NotificationJobs, error)
	FinishNotificationJob(ctx context.Context, db sqlc.DBTX, arg sqlc.FinishNotificationJobParams) error
	RequeueNotificationJob(ctx context.Context, db sqlc.DBTX, arg sqlc.RequeueNotificationJobParams) error
	DeleteFinishedNotificationJobs(ctx context.Context, db sqlc.DBTX, before pgtype.Timestamptz) (int64, error)
}

type JobRepository struct {
	queries JobQueries
	db      sqlc.DBTX
}

func NewJobRepository(queries *sqlc.Queries, db sqlc.DBTX) *JobRepository {
	return &JobRepository{
		queries: queries,
		db:      db,
	}
}

// Create inserts the job if no job with the same identity exists. The
// returned bool reports whether a new record was written.
func (r *JobRepository) Create(ctx context.Context, job *notify.Job) (bool, error) {
	params := sqlc.CreateNotificationJobParams{
		ID:           job.ID,
		Kind:         string(job.Kind),
		DedupeKey:    job.DedupeKey,
		UserID:       job.UserID,
		InappEnabled: job.Channels.InApp,
		EmailEnabled: job.Channels.Email,
		PushEnabled:  job.Channels.Push,
		SmsEnabled:   job.Channels.SMS,
		Payload:      job.Payload,
		Status:       string(job.Status),
		RunAfter:     pgconv.TimePtrToPgtype(job.RunAfter),
	}

	rows, err := r.queries.CreateNotificationJob(ctx, r.db, params)
	if err != nil {
		return false, infra.WrapRepoErr("failed to create notification job", err)
	}

	return rows > 0, nil
}

func (r *JobRepository) FindDue(ctx context.Context, now time.Time, limit int32) ([]*notify.Job, error) {
	rows, err := r.queries.GetDueNotificationJobs(ctx, r.db, sqlc.GetDueNotificationJobsParams{
		Now:   pgconv.TimeToPgtype(now),
		Limit: limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get due notification jobs", err)
	}

	result := make([]*notify.Job, len(rows))
	for i, row := range rows {
		result[i] = toJobFromRow(row)
	}

	return result, nil
}

// Claim flips a queued, due job to processing, incrementing the attempt
// counter. Returns nil job (no error) when the job is not in a claimable
// state.
func (r *JobRepository) Claim(ctx context.Context, id uuid.UUID, now time.Time) (*notify.Job, error) {
	row, err := r.queries.ClaimNotificationJob(ctx, r.db, sqlc.ClaimNotificationJobParams{
		ID:  id,
		Now: pgconv.TimeToPgtype(now),
	})
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to claim notification job", err)
	}

	return toJobFromRow(row), nil
}

func (r *JobRepository) Finish(ctx context.Context, id uuid.UUID, status notify.Status, lastError *string, errorClass *string) error {
	err := r.queries.FinishNotificationJob(ctx, r.db, sqlc.FinishNotificationJobParams{
		ID:             id,
		Status:         string(status),
		LastError:      pgconv.StringPtrToPgtype(lastError),
		LastErrorClass: pgconv.StringPtrToPgtype(errorClass),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to finish notification job", err)
	}

	return nil
}

func (r *JobRepository) Requeue(ctx context.Context, id uuid.UUID, runAfter time.Time, lastError string, errorClass string) error {
	err := r.queries.RequeueNotificationJob(ctx, r.db, sqlc.RequeueNotificationJobParams{
		ID:             id,
		RunAfter:       pgconv.TimeToPgtype(runAfter),
		LastError:      pgconv.StringToPgtype(lastError),
		LastErrorClass: pgconv.StringToPgtype(errorClass),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to requeue notification job", err)
	}

	return nil
}

func (r *JobRepository) PruneFinished(ctx context.Context, before time.Time) (int64, error) {
	count, err := r.queries.DeleteFinishedNotificationJobs(ctx, r.db, pgconv.TimeToPgtype(before))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to prune finished notification jobs", err)
	}

	return count, nil
}

func toJobFromRow(row sqlc.NotificationJobs) *notify.Job {
	job := &notify.Job{
		ID:        row.ID,
		Kind:      notify.Kind(row.Kind),
		DedupeKey: row.DedupeKey,
		UserID:    row.UserID,
		Channels: notify.Channels{
			InApp: row.InappEnabled,
			Email: row.EmailEnabled,
			Push:  row.PushEnabled,
			SMS:   row.SmsEnabled,
		},
		Payload:   row.Payload,
		Status:    notify.Status(row.Status),
		RunAfter:  pgconv.TimePtrFromPgtype(row.RunAfter),
		Attempts:  row.Attempts,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}

	job.LastError = pgconv.StringPtrFromPgtype(row.LastError)
	job.LastErrorClass = pgconv.StringPtrFromPgtype(row.LastErrorClass)

	return job
}
