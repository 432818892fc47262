package components

import (
	"kilnhall/internal/infra/readstore"
	repo_impl "kilnhall/internal/infra/repository"
	"kilnhall/internal/infra/sqlc"
	"kilnhall/internal/usecase/commands"
	"kilnhall/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewSQLQueries,
		NewDBTX,
		fx.Annotate(
			repo_impl.NewJobRepository,
			fx.As(new(commands.JobStore)),
		),
		fx.Annotate(
			repo_impl.NewDeadLetterRepository,
			fx.As(new(commands.DeadLetterStore)),
		),
		fx.Annotate(
			repo_impl.NewPreferencesRepository,
			fx.As(new(commands.PreferencesStore)),
		),
		fx.Annotate(
			repo_impl.NewIdentityRepository,
			fx.As(new(commands.ContactStore)),
		),
		fx.Annotate(
			repo_impl.NewReservationRepository,
			fx.As(new(commands.ReservationStore)),
		),
		fx.Annotate(
			repo_impl.NewInAppRepository,
			fx.As(new(commands.InAppStore)),
		),
		fx.Annotate(
			repo_impl.NewMailRepository,
			fx.As(new(commands.MailStore)),
		),
		fx.Annotate(
			repo_impl.NewDeviceTokenRepository,
			fx.As(new(commands.DeviceTokenStore)),
		),
		// Read-side stores for queries
		fx.Annotate(
			readstore.NewNotificationReadStore,
			fx.As(new(queries.NotificationReadStore)),
		),
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationReadStore)),
		),
	),
)

func NewSQLQueries(_ *pgxpool.Pool) *sqlc.Queries {
	return sqlc.New()
}

func NewDBTX(pool *pgxpool.Pool) sqlc.DBTX {
	return pool
}
