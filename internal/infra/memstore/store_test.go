//go:build unit

package memstore_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"account-provisioner/internal/infra"
	"account-provisioner/internal/infra/memstore"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/shared"
	"account-provisioner/tests/common/builder"
	"account-provisioner/tests/common/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_Contract(t *testing.T) {
	dbtest.RunReservationStoreContract(t, func(t *testing.T) shared.UnitOfWork {
		store, err := memstore.New(discardLogger())
		require.NoError(t, err)
		return store
	})
}

func TestStore_IDExhaustion(t *testing.T) {
	store, err := memstore.New(discardLogger(), memstore.WithNextID(math.MaxInt64))
	require.NoError(t, err)

	last := dbtest.Insert(t, store, builder.NewReservationBuilder().WithMemo("last").Build())
	assert.Equal(t, int64(math.MaxInt64), last)

	err = store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Insert(ctx, builder.NewReservationBuilder().WithMemo("one-too-many").Build())
		return err
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrInvariantViolation))
	assert.True(t, infra.IsKind(err, infra.KindIDExhausted))
}

func TestStore_ReadOnlyRejectsWrites(t *testing.T) {
	store, err := memstore.New(discardLogger())
	require.NoError(t, err)

	err = store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Insert(ctx, builder.NewReservationBuilder().Build())
		return err
	})
	assert.Error(t, err)
}
