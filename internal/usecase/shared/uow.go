package shared

import (
	"context"
	"time"

	"account-provisioner/internal/domain/registration"
)

//go:generate mockgen -source=uow.go -destination=../../../tests/mock/shared/uow_mock.go -package=sharedmock

type UnitOfWork interface {
	// Within runs fn in one transaction and never retries it. Callers that
	// emit side effects from fn must use this.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinRetry retries fn on transient conflicts; fn must be safe to rerun.
	WithinRetry(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly gives a consistent snapshot for lookups.
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Reservations() ReservationRepository
}

// ReservationRepository is the pending-registration table. Absence is never
// an error: lookups return nil and deletes of unknown ids do nothing.
type ReservationRepository interface {
	// Insert stores res under the next id. Ids are never reused; running out
	// of them is errs.ErrInvariantViolation. A fingerprint that is already
	// present is an error and stores nothing.
	Insert(ctx context.Context, res *registration.Reservation) (int64, error)
	FindByFingerprint(ctx context.Context, fp registration.Fingerprint) (*registration.Reservation, error)
	Delete(ctx context.Context, id int64) error
	// ListExpired walks the expiry index from the earliest entry and stops at
	// the first reservation that has not expired at now.
	ListExpired(ctx context.Context, now time.Time) ([]*registration.Reservation, error)
}
