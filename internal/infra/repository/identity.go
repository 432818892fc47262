package repository

import (
	"context"

	"kilnhall/internal/infra"
	"kilnhall/internal/infra/sqlc"
	"kilnhall/internal/pkg/pgconv"
	"kilnhall/internal/usecase/commands"

	"github.com/google/uuid"
)

type IdentityQueries interface {
	GetUserContact(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Users, error)
}

type IdentityRepository struct {
	queries IdentityQueries
	db      sqlc.DBTX
}

func NewIdentityRepository(queries *sqlc.Queries, db sqlc.DBTX) *IdentityRepository {
	return &IdentityRepository{
		queries: queries,
		db:      db,
	}
}

// FindContact resolves delivery addresses for one user: verified email and
// phone, preferring the auth-profile phone over profile fields.
func (r *IdentityRepository) FindContact(ctx context.Context, userID uuid.UUID) (*commands.ContactSnapshot, error) {
	row, err := r.queries.GetUserContact(ctx, r.db, userID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user contact", err)
	}

	contact := &commands.ContactSnapshot{
		Staff: row.Role == "staff" || row.Role == "admin",
	}

	if row.EmailVerified {
		contact.Email = pgconv.StringPtrFromPgtype(row.Email)
	}

	// Auth-profile phone wins over the profile field.
	if row.AuthPhone.Valid {
		contact.Phone = &row.AuthPhone.String
	} else if row.PhoneVerified {
		contact.Phone = pgconv.StringPtrFromPgtype(row.Phone)
	}

	return contact, nil
}
