package repository

import (
	"context"

	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"

	"github.com/google/uuid"
)

type MailQueries interface {
	CreateMailMessage(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateMailMessageParams) (int64, error)
}

// MailRepository writes to the outbound mail queue; an external mailer
// consumes the records.
type MailRepository struct {
	queries MailQueries
	db      sqlc.DBTX
}

func NewMailRepository(queries *sqlc.Queries, db sqlc.DBTX) *MailRepository {
	return &MailRepository{
		queries: queries,
		db:      db,
	}
}

func (r *MailRepository) CreateIfAbsent(ctx context.Context, id uuid.UUID, recipient, subject, body string) (bool, error) {
	rows, err := r.queries.CreateMailMessage(ctx, r.db, sqlc.CreateMailMessageParams{
		ID:        id,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to create mail message", err)
	}

	return rows > 0, nil
}
