package readstore

import (
	"context"

	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"
	"kilnhall/internal/pkg/pgconv"
	"kilnhall/internal/usecase/queries"
)

type NotificationReadQueries interface {
	ListNotificationJobsByStatus(ctx context.Context, db sqlc.DBTX, arg sqlc.ListNotificationJobsByStatusParams) ([]sqlc.NotificationJobs, error)
	ListDeadLetters(ctx context.Context, db sqlc.DBTX, limit int32) ([]sqlc.DeadLetters, error)
}

type NotificationReadStore struct {
	queries NotificationReadQueries
	db      sqlc.DBTX
}

func NewNotificationReadStore(queries *sqlc.Queries, db sqlc.DBTX) *NotificationReadStore {
	return &NotificationReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *NotificationReadStore) ListJobsByStatus(ctx context.Context, status string, limit int32) ([]queries.JobView, error) {
	rows, err := r.queries.ListNotificationJobsByStatus(ctx, r.db, sqlc.ListNotificationJobsByStatusParams{
		Status: status,
		Limit:  limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list notification jobs", err)
	}

	views := make([]queries.JobView, len(rows))
	for i, row := range rows {
		views[i] = toJobView(row)
	}
	return views, nil
}

func (r *NotificationReadStore) ListDeadLetters(ctx context.Context, limit int32) ([]queries.DeadLetterView, error) {
	rows, err := r.queries.ListDeadLetters(ctx, r.db, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list dead letters", err)
	}

	views := make([]queries.DeadLetterView, len(rows))
	for i, row := range rows {
		views[i] = queries.DeadLetterView{
			JobID:        row.JobID,
			Kind:         row.Kind,
			DedupeKey:    row.DedupeKey,
			UserID:       row.UserID,
			Attempts:     row.Attempts,
			ErrorClass:   row.ErrorClass,
			ErrorMessage: row.ErrorMessage,
			FailedAt:     row.FailedAt.Time,
		}
	}
	return views, nil
}

func toJobView(row sqlc.NotificationJobs) queries.JobView {
	return queries.JobView{
		ID:             row.ID,
		Kind:           row.Kind,
		DedupeKey:      row.DedupeKey,
		UserID:         row.UserID,
		Status:         row.Status,
		RunAfter:       pgconv.TimePtrFromPgtype(row.RunAfter),
		Attempts:       row.Attempts,
		LastError:      pgconv.StringPtrFromPgtype(row.LastError),
		LastErrorClass: pgconv.StringPtrFromPgtype(row.LastErrorClass),
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
