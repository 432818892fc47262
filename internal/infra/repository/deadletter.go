package repository

import (
	"context"
	"time"

	"kilnhall/internal/domain/notify"
	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"
	"kilnhall/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

type DeadLetterQueries interface {
	CreateDeadLetter(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateDeadLetterParams) (int64, error)
	DeleteDeadLettersBefore(ctx context.Context, db sqlc.DBTX, before pgtype.Timestamptz) (int64, error)
}

type DeadLetterRepository struct {
	queries DeadLetterQueries
	db      sqlc.DBTX
}

func NewDeadLetterRepository(queries *sqlc.Queries, db sqlc.DBTX) *DeadLetterRepository {
	return &DeadLetterRepository{
		queries: queries,
		db:      db,
	}
}

// Create archives a permanently failed job. Keyed by the job id, so a crash
// between the failed transition and this write cannot produce duplicates.
func (r *DeadLetterRepository) Create(ctx context.Context, dl *notify.DeadLetter) error {
	params := sqlc.CreateDeadLetterParams{
		JobID:        dl.JobID,
		Kind:         string(dl.Kind),
		DedupeKey:    dl.DedupeKey,
		UserID:       dl.UserID,
		Payload:      dl.Payload,
		Attempts:     dl.Attempts,
		ErrorClass:   string(dl.ErrorClass),
		ErrorMessage: dl.ErrorMessage,
		FailedAt:     pgconv.TimeToPgtype(dl.FailedAt),
	}

	if _, err := r.queries.CreateDeadLetter(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to create dead letter", err)
	}

	return nil
}

func (r *DeadLetterRepository) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	count, err := r.queries.DeleteDeadLettersBefore(ctx, r.db, pgconv.TimeToPgtype(before))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to prune dead letters", err)
	}

	return count, nil
}
