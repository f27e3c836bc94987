package bootstrap

import (
	"account-provisioner/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// CoreModule is everything a command needs to touch reservations and
// payments, without the HTTP server or background workers.
var CoreModule = fx.Options(
	LoggerModule,
	StoreModule,
	components.LedgerModule,
	components.UseCaseModule,
)

var Module = fx.Options(
	ConfigModule,
	JWTModule,
	CoreModule,
	components.HandlerModule,
	components.ServerModule,
	components.WorkerModule,
)
