package commands

import (
	"context"
	"log/slog"
	"time"

	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/pkg/clock"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/shared"
)

//go:generate mockgen -source=registration.go -destination=../../../tests/mock/commands/registration_mock.go -package=commandsmock

type RegisterResult string

const (
	RegisterCreated       RegisterResult = "created"
	RegisterAlreadyExists RegisterResult = "already_exists"
)

type RegisterInput struct {
	Fingerprint  registration.Fingerprint
	OwnerKey     string
	ActiveKey    string
	RegisteredBy string
}

type RegisterOutput struct {
	Result        RegisterResult
	ReservationID int64
	ExpiresAt     time.Time
	Swept         int
}

type RegistrationCommands interface {
	// Register is idempotent per fingerprint: a second call reports
	// RegisterAlreadyExists and changes nothing.
	Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error)
}

type SweepCommands interface {
	// Sweep removes every reservation that expired before now and reports
	// how many it removed.
	Sweep(ctx context.Context) (int, error)
}

type registrationCommandsImpl struct {
	uow        shared.UnitOfWork
	serializer *shared.Serializer
	factory    *registration.Factory
	keys       key.Parser
	clock      clock.Clock
	observer   Observer
	logger     *slog.Logger
}

func NewRegistrationCommands(
	uow shared.UnitOfWork,
	serializer *shared.Serializer,
	factory *registration.Factory,
	keys key.Parser,
	clk clock.Clock,
	observer Observer,
	logger *slog.Logger,
) RegistrationCommands {
	if observer == nil {
		observer = nopObserver{}
	}
	return &registrationCommandsImpl{
		uow:        uow,
		serializer: serializer,
		factory:    factory,
		keys:       keys,
		clock:      clk,
		observer:   observer,
		logger:     logger,
	}
}

func (c *registrationCommandsImpl) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	owner, err := c.keys.Parse(in.OwnerKey)
	if err != nil {
		return nil, errs.Wrap(err, "owner key")
	}
	active, err := c.keys.Parse(in.ActiveKey)
	if err != nil {
		return nil, errs.Wrap(err, "active key")
	}

	var out *RegisterOutput
	err = c.serializer.Do(ctx, func(ctx context.Context) error {
		return c.uow.WithinRetry(ctx, func(ctx context.Context, tx shared.Tx) error {
			repo := tx.Reservations()

			swept, err := sweepExpired(ctx, repo, c.clock.Now())
			if err != nil {
				return err
			}

			existing, err := repo.FindByFingerprint(ctx, in.Fingerprint)
			if err != nil {
				return err
			}
			if existing != nil {
				out = &RegisterOutput{
					Result:        RegisterAlreadyExists,
					ReservationID: existing.ID(),
					ExpiresAt:     existing.ExpiresAt(),
					Swept:         swept,
				}
				return nil
			}

			res, err := c.factory.NewReservation(in.Fingerprint, owner, active, in.RegisteredBy)
			if err != nil {
				return err
			}
			id, err := repo.Insert(ctx, res)
			if err != nil {
				return err
			}
			out = &RegisterOutput{
				Result:        RegisterCreated,
				ReservationID: id,
				ExpiresAt:     res.ExpiresAt(),
				Swept:         swept,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	c.observer.RegistrationRecorded(out.Result)
	if out.Swept > 0 {
		c.observer.ReservationsSwept(out.Swept)
	}
	c.logger.InfoContext(ctx, "registration recorded",
		slog.String("fingerprint", in.Fingerprint.String()),
		slog.String("result", string(out.Result)),
		slog.Int64("reservation_id", out.ReservationID),
		slog.Int("swept", out.Swept),
	)
	return out, nil
}

type sweepCommandsImpl struct {
	uow        shared.UnitOfWork
	serializer *shared.Serializer
	clock      clock.Clock
	observer   Observer
	logger     *slog.Logger
}

func NewSweepCommands(
	uow shared.UnitOfWork,
	serializer *shared.Serializer,
	clk clock.Clock,
	observer Observer,
	logger *slog.Logger,
) SweepCommands {
	if observer == nil {
		observer = nopObserver{}
	}
	return &sweepCommandsImpl{
		uow:        uow,
		serializer: serializer,
		clock:      clk,
		observer:   observer,
		logger:     logger,
	}
}

func (c *sweepCommandsImpl) Sweep(ctx context.Context) (int, error) {
	var removed int
	err := c.serializer.Do(ctx, func(ctx context.Context) error {
		return c.uow.WithinRetry(ctx, func(ctx context.Context, tx shared.Tx) error {
			n, err := sweepExpired(ctx, tx.Reservations(), c.clock.Now())
			removed = n
			return err
		})
	})
	if err != nil {
		return 0, err
	}

	c.observer.ReservationsSwept(removed)
	if removed > 0 {
		c.logger.InfoContext(ctx, "expired reservations removed", slog.Int("count", removed))
	}
	return removed, nil
}

// sweepExpired collects the expired prefix first and deletes in a second pass
// so the expiry index is never mutated while it is being walked.
func sweepExpired(ctx context.Context, repo shared.ReservationRepository, now time.Time) (int, error) {
	expired, err := repo.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, res := range expired {
		if err := repo.Delete(ctx, res.ID()); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}
