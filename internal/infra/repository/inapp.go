package repository

import (
	"context"

	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"

	"github.com/google/uuid"
)

type InAppQueries interface {
	CreateInappNotification(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateInappNotificationParams) (int64, error)
}

type InAppRepository struct {
	queries InAppQueries
	db      sqlc.DBTX
}

func NewInAppRepository(queries *sqlc.Queries, db sqlc.DBTX) *InAppRepository {
	return &InAppRepository{
		queries: queries,
		db:      db,
	}
}

// CreateIfAbsent writes the in-app notification record. An existing record
// with the same identity is success, not an error.
func (r *InAppRepository) CreateIfAbsent(ctx context.Context, id, userID uuid.UUID, kind, title, body string, payload []byte) (bool, error) {
	rows, err := r.queries.CreateInappNotification(ctx, r.db, sqlc.CreateInappNotificationParams{
		ID:      id,
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Body:    body,
		Payload: payload,
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to create in-app notification", err)
	}

	return rows > 0, nil
}
