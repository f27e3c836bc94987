package components

import (
	"context"
	"errors"
	"log/slog"

	"account-provisioner/internal/infra/ledger"
	"account-provisioner/internal/pkg/config"
	"account-provisioner/internal/usecase/commands"
	"account-provisioner/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Invoke(
		StartSweeper,
		StartPaymentConsumer,
	),
)

// runInBackground ties a long-running loop to the fx lifecycle. A loop that
// returns an error takes the application down with it, unless the error is
// just the lifecycle's own cancellation.
func runInBackground(lc fx.Lifecycle, sd fx.Shutdowner, logger *slog.Logger, name string, run func(ctx context.Context) error, cleanup func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				if err := run(ctx); err != nil && !stoppedByLifecycle(ctx, err) {
					logger.Error(name+" stopped", slog.String("error", err.Error()))
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})
}

func stoppedByLifecycle(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

func StartSweeper(lc fx.Lifecycle, sd fx.Shutdowner, cfg config.Config, sweep commands.SweepCommands, logger *slog.Logger) {
	if cfg.Sweeper.Interval <= 0 {
		logger.Info("background sweeper disabled")
		return
	}
	s := worker.NewSweeper(sweep, cfg.Sweeper.Interval, logger)
	runInBackground(lc, sd, logger, "sweeper", s.Run, nil)
}

func StartPaymentConsumer(lc fx.Lifecycle, sd fx.Shutdowner, cfg config.Config, payments commands.PaymentCommands, logger *slog.Logger) error {
	if !cfg.Kafka.Enabled() {
		return nil
	}

	if cfg.Kafka.EnsureTopics {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return ledger.EnsureTopics(ctx, cfg.Kafka.Brokers, 1, cfg.Kafka.PaymentsTopic, cfg.Kafka.CommandsTopic)
			},
		})
	}

	consumer, err := ledger.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.PaymentsTopic, cfg.Kafka.ConsumerGroup, payments, logger)
	if err != nil {
		return err
	}
	runInBackground(lc, sd, logger, "payment consumer", consumer.Run, consumer.Close)
	return nil
}
