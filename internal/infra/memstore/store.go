// Package memstore keeps pending registrations in an in-process go-memdb
// database. It is the default backend and the one the unit tests run on.
package memstore

import (
	"context"
	"log/slog"
	"math"
	"time"

	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/infra"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/shared"

	"github.com/hashicorp/go-memdb"
)

type Option func(*Store)

// WithNextID seeds the id sequence.
func WithNextID(id uint64) Option {
	return func(s *Store) { s.firstID = id }
}

type Store struct {
	db      *memdb.MemDB
	logger  *slog.Logger
	firstID uint64
}

var _ shared.UnitOfWork = (*Store)(nil)

func New(logger *slog.Logger, opts ...Option) (*Store, error) {
	db, err := memdb.NewMemDB(newSchema())
	if err != nil {
		return nil, errs.Wrap(err, "create memdb")
	}
	s := &Store{db: db, logger: logger, firstID: 1}
	for _, opt := range opts {
		opt(s)
	}

	txn := db.Txn(true)
	if err := txn.Insert(tableSequences, &sequenceRow{Name: reservationSequence, Next: s.firstID}); err != nil {
		txn.Abort()
		return nil, errs.Wrap(err, "seed id sequence")
	}
	txn.Commit()
	return s, nil
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	if err := fn(ctx, &memTx{txn: txn, logger: s.logger}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// WithinRetry is Within: memdb serializes writers, so there is nothing to
// retry.
func (s *Store) WithinRetry(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.Within(ctx, fn)
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	txn := s.db.Txn(false)
	defer txn.Abort()
	return fn(ctx, &memTx{txn: txn, logger: s.logger})
}

type memTx struct {
	txn    *memdb.Txn
	logger *slog.Logger
}

func (t *memTx) Reservations() shared.ReservationRepository {
	return &reservationRepository{txn: t.txn, logger: t.logger}
}

type reservationRepository struct {
	txn    *memdb.Txn
	logger *slog.Logger
}

func (r *reservationRepository) Insert(_ context.Context, res *registration.Reservation) (int64, error) {
	// memdb does not enforce uniqueness on secondary indexes.
	dup, err := r.txn.First(tableReservations, indexFingerprint, res.Fingerprint().String())
	if err != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "check fingerprint", err)
	}
	if dup != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "fingerprint already reserved", nil)
	}

	raw, err := r.txn.First(tableSequences, indexID, reservationSequence)
	if err != nil || raw == nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "read id sequence", err)
	}
	seq := *raw.(*sequenceRow)
	if seq.Next > math.MaxInt64 {
		return 0, infra.WrapRepoErr(r.logger, infra.KindIDExhausted, "reservation id space exhausted", nil)
	}

	id := seq.Next
	seq.Next++
	if err := r.txn.Insert(tableSequences, &seq); err != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "advance id sequence", err)
	}

	row := toRow(res.WithID(int64(id)))
	if err := r.txn.Insert(tableReservations, row); err != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "insert reservation", err)
	}
	return int64(id), nil
}

func (r *reservationRepository) FindByFingerprint(_ context.Context, fp registration.Fingerprint) (*registration.Reservation, error) {
	raw, err := r.txn.First(tableReservations, indexFingerprint, fp.String())
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "find reservation by fingerprint", err)
	}
	if raw == nil {
		return nil, nil
	}
	return r.fromRow(raw.(*reservationRow))
}

func (r *reservationRepository) Delete(_ context.Context, id int64) error {
	if id <= 0 {
		return nil
	}
	if _, err := r.txn.DeleteAll(tableReservations, indexID, uint64(id)); err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "delete reservation", err)
	}
	return nil
}

func (r *reservationRepository) ListExpired(_ context.Context, now time.Time) ([]*registration.Reservation, error) {
	it, err := r.txn.Get(tableReservations, indexExpiresAt)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "walk expiry index", err)
	}

	cutoff := unixNanos(now)
	var expired []*registration.Reservation
	for raw := it.Next(); raw != nil; raw = it.Next() {
		row := raw.(*reservationRow)
		if row.ExpiresAt >= cutoff {
			break
		}
		res, err := r.fromRow(row)
		if err != nil {
			return nil, err
		}
		expired = append(expired, res)
	}
	return expired, nil
}

func toRow(res *registration.Reservation) *reservationRow {
	return &reservationRow{
		ID:           uint64(res.ID()),
		Fingerprint:  res.Fingerprint().String(),
		ExpiresAt:    unixNanos(res.ExpiresAt()),
		CreatedAt:    res.CreatedAt(),
		OwnerKey:     res.OwnerKey().String(),
		ActiveKey:    res.ActiveKey().String(),
		RegisteredBy: res.RegisteredBy(),
	}
}

func (r *reservationRepository) fromRow(row *reservationRow) (*registration.Reservation, error) {
	fp, err := registration.ParseFingerprint(row.Fingerprint)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode fingerprint", err)
	}
	var owner, active key.Record
	if err := owner.UnmarshalText([]byte(row.OwnerKey)); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode owner key", err)
	}
	if err := active.UnmarshalText([]byte(row.ActiveKey)); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode active key", err)
	}
	return registration.Reconstruct(
		int64(row.ID),
		fp,
		owner,
		active,
		row.RegisteredBy,
		row.CreatedAt,
		time.Unix(0, int64(row.ExpiresAt)).UTC(),
	), nil
}

func unixNanos(t time.Time) uint64 {
	n := t.UnixNano()
	if n < 0 {
		return 0
	}
	return uint64(n)
}
