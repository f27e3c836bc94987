//go:build integration

package redisstore_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"account-provisioner/internal/infra"
	"account-provisioner/internal/infra/redisstore"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/shared"
	"account-provisioner/tests/common/builder"
	"account-provisioner/tests/common/dbtest"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const prefix = "provisioner-test"

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T, client *redis.Client, opts ...redisstore.Option) *redisstore.Store {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, client.FlushAll(ctx).Err())
	store, err := redisstore.New(ctx, client, prefix, discardLogger(), opts...)
	require.NoError(t, err)
	return store
}

func TestStore_Contract(t *testing.T) {
	client := startRedis(t)
	dbtest.RunReservationStoreContract(t, func(t *testing.T) shared.UnitOfWork {
		return newStore(t, client)
	})
}

func TestStore_IDExhaustion(t *testing.T) {
	client := startRedis(t)
	store := newStore(t, client, redisstore.WithNextID(math.MaxInt64))

	last := dbtest.Insert(t, store, builder.NewReservationBuilder().WithMemo("last").Build())
	assert.Equal(t, int64(math.MaxInt64), last)

	err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Insert(ctx, builder.NewReservationBuilder().WithMemo("one-too-many").Build())
		return err
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrInvariantViolation))
	assert.True(t, infra.IsKind(err, infra.KindIDExhausted))
}

func TestStore_SeesOwnWritesBeforeCommit(t *testing.T) {
	client := startRedis(t)
	store := newStore(t, client)
	res := builder.NewReservationBuilder().Build()
	id := dbtest.Insert(t, store, res)

	err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		repo := tx.Reservations()
		require.NoError(t, repo.Delete(ctx, id))

		got, err := repo.FindByFingerprint(ctx, res.Fingerprint())
		require.NoError(t, err)
		assert.Nil(t, got)

		// Re-reserving a fingerprint freed in the same unit of work is allowed.
		newID, err := repo.Insert(ctx, res)
		require.NoError(t, err)
		assert.Greater(t, newID, id)
		return nil
	})
	require.NoError(t, err)

	got := dbtest.Find(t, store, res.Fingerprint())
	require.NotNil(t, got)
	assert.Greater(t, got.ID(), id)
}

func TestStore_ConcurrentReservationLosesAtCommit(t *testing.T) {
	client := startRedis(t)
	store := newStore(t, client)
	res := builder.NewReservationBuilder().Build()

	err := store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Reservations().Insert(ctx, res); err != nil {
			return err
		}
		// Another replica commits the same fingerprint first.
		dbtest.Insert(t, store, res)
		return nil
	})
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
}

func TestStore_ReadOnlyRejectsWrites(t *testing.T) {
	client := startRedis(t)
	store := newStore(t, client)

	err := store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Reservations().Insert(ctx, builder.NewReservationBuilder().Build())
		return err
	})
	assert.Error(t, err)
}
