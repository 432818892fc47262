package readstore

import (
	"context"

	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"
	"kilnhall/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationReadQueries interface {
	ListReservationAudit(ctx context.Context, db sqlc.DBTX, arg sqlc.ListReservationAuditParams) ([]sqlc.ReservationAudit, error)
}

type ReservationReadStore struct {
	queries ReservationReadQueries
	db      sqlc.DBTX
}

func NewReservationReadStore(queries *sqlc.Queries, db sqlc.DBTX) *ReservationReadStore {
	return &ReservationReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *ReservationReadStore) ListAudit(ctx context.Context, reservationID uuid.UUID, limit int32) ([]queries.AuditEntryView, error) {
	rows, err := r.queries.ListReservationAudit(ctx, r.db, sqlc.ListReservationAuditParams{
		ReservationID: reservationID,
		Limit:         limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservation audit", err)
	}

	views := make([]queries.AuditEntryView, len(rows))
	for i, row := range rows {
		views[i] = queries.AuditEntryView{
			ID:            row.ID,
			ReservationID: row.ReservationID,
			Event:         row.Event,
			Detail:        row.Detail,
			CreatedAt:     row.CreatedAt.Time,
		}
	}
	return views, nil
}
