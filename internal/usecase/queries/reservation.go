package queries

import (
	"context"

	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/shared"
)

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/queries/reservation_mock.go -package=queriesmock

type ReservationQueries interface {
	// GetByFingerprint returns errs.ErrReservationNotFound when nothing is
	// pending under fp.
	GetByFingerprint(ctx context.Context, fp registration.Fingerprint) (*ReservationView, error)
}

type reservationQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewReservationQueries(uow shared.UnitOfWork) ReservationQueries {
	return &reservationQueriesImpl{uow: uow}
}

func (q *reservationQueriesImpl) GetByFingerprint(ctx context.Context, fp registration.Fingerprint) (*ReservationView, error) {
	var res *registration.Reservation
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		res, err = tx.Reservations().FindByFingerprint(ctx, fp)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errs.Wrapf(errs.ErrReservationNotFound, "fingerprint %s", fp)
	}
	return ToReservationView(res), nil
}

func ToReservationView(res *registration.Reservation) *ReservationView {
	return &ReservationView{
		ID:           res.ID(),
		Fingerprint:  res.Fingerprint().String(),
		OwnerKey:     res.OwnerKey().String(),
		ActiveKey:    res.ActiveKey().String(),
		RegisteredBy: res.RegisteredBy(),
		CreatedAt:    res.CreatedAt(),
		ExpiresAt:    res.ExpiresAt(),
	}
}
