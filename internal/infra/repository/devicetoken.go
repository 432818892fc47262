package repository

import (
	"context"

	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"

	"github.com/google/uuid"
)

type DeviceTokenQueries interface {
	GetActiveDeviceTokens(ctx context.Context, db sqlc.DBTX, arg sqlc.GetActiveDeviceTokensParams) ([]sqlc.DeviceTokens, error)
	DeactivateDeviceToken(ctx context.Context, db sqlc.DBTX, token string) error
}

type DeviceTokenRepository struct {
	queries DeviceTokenQueries
	db      sqlc.DBTX
}

func NewDeviceTokenRepository(queries *sqlc.Queries, db sqlc.DBTX) *DeviceTokenRepository {
	return &DeviceTokenRepository{
		queries: queries,
		db:      db,
	}
}

func (r *DeviceTokenRepository) ListActive(ctx context.Context, userID uuid.UUID, limit int32) ([]string, error) {
	rows, err := r.queries.GetActiveDeviceTokens(ctx, r.db, sqlc.GetActiveDeviceTokensParams{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list active device tokens", err)
	}

	tokens := make([]string, len(rows))
	for i, row := range rows {
		tokens[i] = row.Token
	}

	return tokens, nil
}

// Deactivate marks a token the provider reported as permanently invalid so
// future sends skip it.
func (r *DeviceTokenRepository) Deactivate(ctx context.Context, token string) error {
	if err := r.queries.DeactivateDeviceToken(ctx, r.db, token); err != nil {
		return infra.WrapRepoErr("failed to deactivate device token", err)
	}

	return nil
}
