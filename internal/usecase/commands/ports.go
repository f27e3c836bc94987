package commands

import (
	"context"

	"account-provisioner/internal/domain/provisioning"
)

//go:generate mockgen -source=ports.go -destination=../../../tests/mock/commands/ports_mock.go -package=commandsmock

// CommandEmitter hands a batch to the host ledger. A nil error means the host
// accepted every action in it.
type CommandEmitter interface {
	Emit(ctx context.Context, batch *provisioning.Batch) error
}

// MarketReader returns the current RAM market connector balances.
type MarketReader interface {
	RAMMarket(ctx context.Context) (provisioning.RAMMarket, error)
}

// Observer receives operation outcomes for metrics.
type Observer interface {
	RegistrationRecorded(result RegisterResult)
	ReservationsSwept(count int)
	PaymentHandled(outcome PaymentOutcome, source provisioning.Source)
}

type nopObserver struct{}

func (nopObserver) RegistrationRecorded(RegisterResult)                {}
func (nopObserver) ReservationsSwept(int)                              {}
func (nopObserver) PaymentHandled(PaymentOutcome, provisioning.Source) {}
