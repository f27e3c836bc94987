package components

import (
	"context"
	"log/slog"

	"account-provisioner/internal/domain/asset"
	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/infra/host"
	"account-provisioner/internal/infra/market"
	"account-provisioner/internal/infra/metrics"
	"account-provisioner/internal/pkg/clock"
	"account-provisioner/internal/pkg/config"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/commands"

	"go.uber.org/fx"
)

var LedgerModule = fx.Module("ledger",
	fx.Provide(
		clock.NewRealClock,
		NewPolicy,
		NewKeyParser,
		NewRegistrationFactory,
		NewMarket,
		NewCommandEmitter,
		metrics.New,
		func(m *metrics.Metrics) commands.Observer { return m },
	),
)

func NewPolicy(cfg config.Config) (provisioning.Policy, error) {
	l := cfg.Ledger
	core, err := asset.NewSymbol(l.CoreSymbol, l.CorePrecision)
	if err != nil {
		return provisioning.Policy{}, errs.Wrap(err, "invalid core symbol")
	}
	p := provisioning.Policy{
		Self:                l.SelfAccount,
		System:              l.SystemAccount,
		Token:               l.TokenAccount,
		FeeSink:             l.FeeSink,
		ReferenceSender:     l.ReferenceSender,
		Core:                core,
		DefaultCPUStake:     l.DefaultCPUStake,
		DefaultNetStake:     l.DefaultNetStake,
		DefaultRAMBytes:     l.DefaultRAMBytes,
		ReplacementRAMBytes: l.ReplacementRAMBytes,
		RentCPUAmount:       l.RentCPUAmount,
		FeeAddend:           l.FeeAddend,
		FeeDivisor:          l.FeeDivisor,
		MinFee:              l.MinFee,
	}
	if err := p.Validate(); err != nil {
		return provisioning.Policy{}, err
	}
	return p, nil
}

func NewKeyParser(cfg config.Config) key.Parser {
	return key.NewParser(cfg.Ledger.VerifyKeyChecksum)
}

func NewRegistrationFactory(clk clock.Clock, cfg config.Config) *registration.Factory {
	return registration.NewFactory(clk, cfg.Ledger.ReservationTTL)
}

func NewMarket(cfg config.Config) commands.MarketReader {
	return market.NewStatic(provisioning.RAMMarket{
		Bytes: cfg.Ledger.RAMMarketBytes,
		Quote: cfg.Ledger.RAMMarketQuote,
	})
}

// NewCommandEmitter selects where provisioning batches go: the log for local
// runs, or a transactional Kafka topic read by the host.
func NewCommandEmitter(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (commands.CommandEmitter, error) {
	switch cfg.Kafka.Emitter {
	case config.EmitterLog:
		return host.NewLogEmitter(logger), nil
	case config.EmitterKafka:
		if !cfg.Kafka.Enabled() {
			return nil, errs.New("kafka emitter needs KAFKA_BROKERS")
		}
		emitter, err := host.NewKafkaEmitter(cfg.Kafka.Brokers, cfg.Kafka.CommandsTopic, cfg.Kafka.TransactionalID, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				emitter.Close()
				return nil
			},
		})
		return emitter, nil
	default:
		return nil, errs.Newf("unknown command emitter %q", cfg.Kafka.Emitter)
	}
}
