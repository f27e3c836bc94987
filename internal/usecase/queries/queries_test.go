//go:build unit

package queries_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"account-provisioner/internal/domain/asset"
	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/infra/memstore"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/queries"
	"account-provisioner/tests/common/builder"
	"account-provisioner/tests/common/dbtest"
	commandsmock "account-provisioner/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReservationQueries_GetByFingerprint(t *testing.T) {
	store, err := memstore.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	q := queries.NewReservationQueries(store)

	b := builder.NewReservationBuilder()
	res := b.Build()
	id := dbtest.Insert(t, store, res)

	t.Run("found", func(t *testing.T) {
		view, err := q.GetByFingerprint(context.Background(), b.Fingerprint())
		require.NoError(t, err)
		assert.Equal(t, &queries.ReservationView{
			ID:           id,
			Fingerprint:  b.Fingerprint().String(),
			OwnerKey:     builder.K1Key,
			ActiveKey:    builder.R1Key,
			RegisteredBy: "registrar1",
			CreatedAt:    res.CreatedAt(),
			ExpiresAt:    res.ExpiresAt(),
		}, view)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := q.GetByFingerprint(context.Background(), builder.NewReservationBuilder().WithMemo("other").Fingerprint())
		assert.True(t, errs.Is(err, errs.ErrReservationNotFound))
	})
}

func TestQuoteQueries_Quote(t *testing.T) {
	ctrl := gomock.NewController(t)
	market := commandsmock.NewMockMarketReader(ctrl)
	market.EXPECT().RAMMarket(gomock.Any()).Return(provisioning.RAMMarket{Bytes: 1 << 30, Quote: 1 << 30}, nil).AnyTimes()

	policy := provisioning.Policy{
		Self: "saccountcrtr", System: "eosio", Token: "eosio.token", FeeSink: "saccountfees",
		Core:            asset.MustSymbol("EOS", 4),
		DefaultCPUStake: 1500, DefaultNetStake: 500,
		DefaultRAMBytes: 3000, ReplacementRAMBytes: 800,
		FeeAddend: 119, FeeDivisor: 200, MinFee: 1000,
	}
	q := queries.NewQuoteQueries(policy, market)

	t.Run("defaults", func(t *testing.T) {
		view, err := q.Quote(context.Background(), queries.QuoteRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(6819), view.MinimumPayment)
		assert.Equal(t, "0.6819 EOS", view.MinimumPaymentAsset)
		assert.Equal(t, int64(3015), view.RAMCost)
		assert.Equal(t, int64(804), view.ReplacementCost)
		assert.Equal(t, int64(1000), view.Fee)
		assert.Equal(t, "4,EOS", view.Symbol)
	})

	t.Run("explicit resources", func(t *testing.T) {
		view, err := q.Quote(context.Background(), queries.QuoteRequest{CPUStake: 1, RAMKiB: 4})
		require.NoError(t, err)
		assert.Equal(t, int64(10000), view.CPUStake)
		assert.Equal(t, uint32(4096), view.RAMBytes)
	})

	t.Run("ram below the floor", func(t *testing.T) {
		_, err := q.Quote(context.Background(), queries.QuoteRequest{RAMKiB: 2})
		assert.True(t, errs.Is(err, errs.ErrFormat))
	})
}
