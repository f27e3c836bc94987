package registration

import (
	"errors"
	"time"

	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/pkg/clock"
	"account-provisioner/internal/pkg/errs"
)

const DefaultTTL = 3 * time.Hour

var ErrMissingKey = errors.New("reservation requires owner and active keys")

// Reservation is a pending registration. It is only ever inserted or removed;
// nothing about it changes after NewReservation.
type Reservation struct {
	id           int64
	fingerprint  Fingerprint
	ownerKey     key.Record
	activeKey    key.Record
	registeredBy string
	createdAt    time.Time
	expiresAt    time.Time
}

type Factory struct {
	clock clock.Clock
	ttl   time.Duration
}

func NewFactory(c clock.Clock, ttl time.Duration) *Factory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Factory{clock: c, ttl: ttl}
}

// NewReservation stamps the expiry once. The id is assigned by the store.
func (f *Factory) NewReservation(fp Fingerprint, owner, active key.Record, registeredBy string) (*Reservation, error) {
	if owner.IsZero() || active.IsZero() {
		return nil, errs.Mark(ErrMissingKey, errs.ErrFormat)
	}
	now := f.clock.Now()
	return &Reservation{
		fingerprint:  fp,
		ownerKey:     owner,
		activeKey:    active,
		registeredBy: registeredBy,
		createdAt:    now,
		expiresAt:    now.Add(f.ttl),
	}, nil
}

func Reconstruct(
	id int64,
	fp Fingerprint,
	owner, active key.Record,
	registeredBy string,
	createdAt, expiresAt time.Time,
) *Reservation {
	return &Reservation{
		id:           id,
		fingerprint:  fp,
		ownerKey:     owner,
		activeKey:    active,
		registeredBy: registeredBy,
		createdAt:    createdAt,
		expiresAt:    expiresAt,
	}
}

// WithID returns a copy carrying the store-assigned id.
func (r *Reservation) WithID(id int64) *Reservation {
	cp := *r
	cp.id = id
	return &cp
}

// IsExpired is strict: a reservation expiring exactly at now is still live.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.expiresAt.Before(now)
}

func (r *Reservation) ID() int64                { return r.id }
func (r *Reservation) Fingerprint() Fingerprint { return r.fingerprint }
func (r *Reservation) OwnerKey() key.Record     { return r.ownerKey }
func (r *Reservation) ActiveKey() key.Record    { return r.activeKey }
func (r *Reservation) RegisteredBy() string     { return r.registeredBy }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
func (r *Reservation) ExpiresAt() time.Time     { return r.expiresAt }
