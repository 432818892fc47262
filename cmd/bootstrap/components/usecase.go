package components

import (
	"kilnhall/internal/pkg/clock"
	"kilnhall/internal/usecase/commands"
	"kilnhall/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewEnqueuer,
		commands.NewDispatcher,
		commands.NewQueueEngine,
		commands.NewStoragePolicyEngine,
		commands.NewEventUseCase,
		commands.NewMaintenanceUseCase,
		fx.Annotate(
			commands.NewFollowUpChainer,
			fx.As(new(commands.FollowUpCommands)),
			fx.As(new(commands.FollowUpScheduler)),
		),
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewNotificationQueries,
	),
)
