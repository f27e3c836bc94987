//go:build unit || integration || e2e

package builder

import (
	"time"

	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/pkg/clock"
)

// Well-known development key in its three spellings.
const (
	LegacyKey = "EOS6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV"
	K1Key     = "PUB_K1_6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5BoDq63"
	R1Key     = "PUB_R1_6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5Bpuyty"
)

type ReservationBuilder struct {
	Memo         string
	OwnerKey     string
	ActiveKey    string
	RegisteredBy string
	Now          time.Time
	TTL          time.Duration
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		Memo:         "alice",
		OwnerKey:     LegacyKey,
		ActiveKey:    R1Key,
		RegisteredBy: "registrar1",
		Now:          time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		TTL:          registration.DefaultTTL,
	}
}

func (b *ReservationBuilder) WithMemo(memo string) *ReservationBuilder {
	b.Memo = memo
	return b
}

func (b *ReservationBuilder) WithNow(now time.Time) *ReservationBuilder {
	b.Now = now
	return b
}

func (b *ReservationBuilder) WithTTL(ttl time.Duration) *ReservationBuilder {
	b.TTL = ttl
	return b
}

func (b *ReservationBuilder) Fingerprint() registration.Fingerprint {
	return registration.FingerprintOf(b.Memo)
}

// Build returns an unsaved reservation (id 0).
func (b *ReservationBuilder) Build() *registration.Reservation {
	parser := key.NewParser(true)
	owner, err := parser.Parse(b.OwnerKey)
	if err != nil {
		panic(err)
	}
	active, err := parser.Parse(b.ActiveKey)
	if err != nil {
		panic(err)
	}
	res, err := registration.NewFactory(clock.NewMockClock(b.Now), b.TTL).
		NewReservation(b.Fingerprint(), owner, active, b.RegisteredBy)
	if err != nil {
		panic(err)
	}
	return res
}
