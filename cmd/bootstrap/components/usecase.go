package components

import (
	"account-provisioner/internal/usecase"
	"account-provisioner/internal/usecase/commands"
	"account-provisioner/internal/usecase/queries"
	"account-provisioner/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

// One serializer for every command so registration, sweep and payment
// handling never interleave.
var usecaseBaseOption = fx.Provide(
	shared.NewSerializer,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewRegistrationCommands,
		commands.NewSweepCommands,
		commands.NewPaymentCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
		queries.NewQuoteQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
