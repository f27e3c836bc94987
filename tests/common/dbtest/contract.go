//go:build unit || integration

// Package dbtest holds the behaviour every reservation store backend must
// share. Backends run it against a fresh, empty store.
package dbtest

import (
	"context"
	"testing"
	"time"

	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/usecase/shared"
	"account-provisioner/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type StoreFactory func(t *testing.T) shared.UnitOfWork

func RunReservationStoreContract(t *testing.T, newStore StoreFactory) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("insert then find by fingerprint", func(t *testing.T) {
		store := newStore(t)
		res := builder.NewReservationBuilder().WithNow(base).Build()

		id := Insert(t, store, res)
		assert.Positive(t, id)

		got := Find(t, store, res.Fingerprint())
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID())
		assert.Equal(t, res.Fingerprint(), got.Fingerprint())
		assert.True(t, res.OwnerKey().Equal(got.OwnerKey()))
		assert.True(t, res.ActiveKey().Equal(got.ActiveKey()))
		assert.Equal(t, res.RegisteredBy(), got.RegisteredBy())
		assert.True(t, res.ExpiresAt().Equal(got.ExpiresAt()), "expires %v vs %v", res.ExpiresAt(), got.ExpiresAt())
	})

	t.Run("absent fingerprint is nil without error", func(t *testing.T) {
		store := newStore(t)
		assert.Nil(t, Find(t, store, registration.FingerprintOf("nobody")))
	})

	t.Run("ids increase and are never reused", func(t *testing.T) {
		store := newStore(t)
		first := Insert(t, store, builder.NewReservationBuilder().WithMemo("a").Build())
		Delete(t, store, first)
		second := Insert(t, store, builder.NewReservationBuilder().WithMemo("b").Build())
		third := Insert(t, store, builder.NewReservationBuilder().WithMemo("a").Build())
		assert.Greater(t, second, first)
		assert.Greater(t, third, second)
	})

	t.Run("duplicate fingerprint is rejected and stores nothing", func(t *testing.T) {
		store := newStore(t)
		res := builder.NewReservationBuilder().Build()
		id := Insert(t, store, res)

		err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
			_, err := tx.Reservations().Insert(ctx, res)
			return err
		})
		require.Error(t, err)

		got := Find(t, store, res.Fingerprint())
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID())
	})

	t.Run("delete of an unknown id is a no-op", func(t *testing.T) {
		store := newStore(t)
		res := builder.NewReservationBuilder().Build()
		Insert(t, store, res)

		Delete(t, store, 424242)
		assert.NotNil(t, Find(t, store, res.Fingerprint()))
	})

	t.Run("failed transaction leaves no trace", func(t *testing.T) {
		store := newStore(t)
		res := builder.NewReservationBuilder().Build()
		boom := assert.AnError

		err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
			if _, err := tx.Reservations().Insert(ctx, res); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Nil(t, Find(t, store, res.Fingerprint()))
	})

	t.Run("list expired returns the expired prefix in expiry order", func(t *testing.T) {
		store := newStore(t)
		ttl := time.Hour
		// expiries at base+1h, base+2h, base+3h, inserted out of order
		late := Insert(t, store, builder.NewReservationBuilder().WithMemo("late").WithNow(base.Add(2*time.Hour)).WithTTL(ttl).Build())
		early := Insert(t, store, builder.NewReservationBuilder().WithMemo("early").WithNow(base).WithTTL(ttl).Build())
		mid := Insert(t, store, builder.NewReservationBuilder().WithMemo("mid").WithNow(base.Add(time.Hour)).WithTTL(ttl).Build())

		testCases := []struct {
			name     string
			now      time.Time
			expected []int64
		}{
			{name: "before anything expires", now: base.Add(30 * time.Minute), expected: nil},
			{name: "exactly at the first expiry", now: base.Add(time.Hour), expected: nil},
			{name: "just after the first expiry", now: base.Add(time.Hour + time.Second), expected: []int64{early}},
			{name: "after two", now: base.Add(150 * time.Minute), expected: []int64{early, mid}},
			{name: "after all", now: base.Add(10 * time.Hour), expected: []int64{early, mid, late}},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				var ids []int64
				err := store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
					expired, err := tx.Reservations().ListExpired(ctx, tc.now)
					for _, r := range expired {
						ids = append(ids, r.ID())
					}
					return err
				})
				require.NoError(t, err)
				assert.Equal(t, tc.expected, ids)
			})
		}
	})
}

func Insert(t *testing.T, store shared.UnitOfWork, res *registration.Reservation) int64 {
	t.Helper()
	var id int64
	err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		id, err = tx.Reservations().Insert(ctx, res)
		return err
	})
	require.NoError(t, err)
	return id
}

func Find(t *testing.T, store shared.UnitOfWork, fp registration.Fingerprint) *registration.Reservation {
	t.Helper()
	var res *registration.Reservation
	err := store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		res, err = tx.Reservations().FindByFingerprint(ctx, fp)
		return err
	})
	require.NoError(t, err)
	return res
}

func Delete(t *testing.T, store shared.UnitOfWork, id int64) {
	t.Helper()
	err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().Delete(ctx, id)
	})
	require.NoError(t, err)
}
