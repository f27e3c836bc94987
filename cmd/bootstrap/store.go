package bootstrap

import (
	"context"
	"log/slog"

	"account-provisioner/internal/infra/db"
	"account-provisioner/internal/infra/memstore"
	"account-provisioner/internal/infra/redisstore"
	"account-provisioner/internal/infra/uow"
	"account-provisioner/internal/pkg/config"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		NewUnitOfWork,
	),
)

// NewUnitOfWork opens the reservation store selected by STORE_DRIVER.
func NewUnitOfWork(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.UnitOfWork, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store, err := memstore.New(logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreDriverPostgres:
		return newPostgresStore(lc, cfg.DB, logger)
	case config.StoreDriverRedis:
		return newRedisStore(lc, cfg.Redis, logger)
	default:
		return nil, errs.Newf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newPostgresStore(lc fx.Lifecycle, cfg config.DBConfig, logger *slog.Logger) (shared.UnitOfWork, error) {
	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		cleanup()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	return uow.NewPostgresUoW(pool, logger), nil
}

func newRedisStore(lc fx.Lifecycle, cfg config.RedisConfig, logger *slog.Logger) (shared.UnitOfWork, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	store, err := redisstore.New(context.Background(), client, cfg.KeyPrefix, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return store, nil
}
