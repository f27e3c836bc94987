package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation         = "23505"
	pgErrCodeSequenceLimitExceeded   = "2200H"
	reservationFingerprintConstraint = "reservations_fingerprint_key"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	insertReservation = `
INSERT INTO reservations (fingerprint, owner_key, active_key, registered_by, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (fingerprint) DO NOTHING
RETURNING id`

	selectReservationByFingerprint = `
SELECT id, fingerprint, owner_key, active_key, registered_by, created_at, expires_at
FROM reservations
WHERE fingerprint = $1`

	deleteReservation = `DELETE FROM reservations WHERE id = $1`

	selectExpiredReservations = `
SELECT id, fingerprint, owner_key, active_key, registered_by, created_at, expires_at
FROM reservations
WHERE expires_at < $1
ORDER BY expires_at, id`
)

type ReservationRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewReservationRepository(db DBTX, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReservationRepository) Insert(ctx context.Context, res *registration.Reservation) (int64, error) {
	fp := res.Fingerprint()

	var id int64
	err := r.db.QueryRow(ctx, insertReservation,
		fp[:],
		res.OwnerKey().String(),
		res.ActiveKey().String(),
		res.RegisteredBy(),
		res.CreatedAt(),
		res.ExpiresAt(),
	).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, pgx.ErrNoRows):
		return 0, infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "fingerprint already reserved", nil)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgErrCodeSequenceLimitExceeded:
			return 0, infra.WrapRepoErr(r.logger, infra.KindIDExhausted, "reservation id space exhausted", err)
		case pgErr.Code == pgErrCodeUniqueViolation && pgErr.ConstraintName == reservationFingerprintConstraint:
			return 0, infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "fingerprint already reserved", err)
		}
	}
	return 0, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "insert reservation", err)
}

func (r *ReservationRepository) FindByFingerprint(ctx context.Context, fp registration.Fingerprint) (*registration.Reservation, error) {
	rows, err := r.db.Query(ctx, selectReservationByFingerprint, fp[:])
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "find reservation by fingerprint", err)
	}
	found, err := r.collect(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, deleteReservation, id); err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "delete reservation", err)
	}
	return nil
}

func (r *ReservationRepository) ListExpired(ctx context.Context, now time.Time) ([]*registration.Reservation, error) {
	rows, err := r.db.Query(ctx, selectExpiredReservations, now)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "list expired reservations", err)
	}
	return r.collect(rows)
}

type reservationRow struct {
	ID           int64
	Fingerprint  []byte
	OwnerKey     string
	ActiveKey    string
	RegisteredBy string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func (r *ReservationRepository) collect(rows pgx.Rows) ([]*registration.Reservation, error) {
	scanned, err := pgx.CollectRows(rows, pgx.RowToStructByPos[reservationRow])
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStoreFailure, "scan reservations", err)
	}

	out := make([]*registration.Reservation, 0, len(scanned))
	for _, row := range scanned {
		res, err := r.toDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *ReservationRepository) toDomain(row reservationRow) (*registration.Reservation, error) {
	var fp registration.Fingerprint
	if len(row.Fingerprint) != len(fp) {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode fingerprint", nil)
	}
	copy(fp[:], row.Fingerprint)

	var owner, active key.Record
	if err := owner.UnmarshalText([]byte(row.OwnerKey)); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode owner key", err)
	}
	if err := active.UnmarshalText([]byte(row.ActiveKey)); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindCorruptRecord, "decode active key", err)
	}

	return registration.Reconstruct(
		row.ID,
		fp,
		owner,
		active,
		row.RegisteredBy,
		row.CreatedAt.UTC(),
		row.ExpiresAt.UTC(),
	), nil
}
