package queries

import (
	"context"
	"errors"
	"math"

	"account-provisioner/internal/domain/asset"
	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/commands"
)

//go:generate mockgen -source=quote.go -destination=../../../tests/mock/queries/quote_mock.go -package=queriesmock

var ErrInvalidQuoteRequest = errors.New("invalid quote request")

type QuoteRequest struct {
	// Whole tokens; zero means the default stake.
	CPUStake int64
	// KiB; zero means the default allocation.
	RAMKiB uint32
}

type QuoteQueries interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteView, error)
}

type quoteQueriesImpl struct {
	policy provisioning.Policy
	market commands.MarketReader
}

func NewQuoteQueries(policy provisioning.Policy, market commands.MarketReader) QuoteQueries {
	return &quoteQueriesImpl{policy: policy, market: market}
}

func (q *quoteQueriesImpl) Quote(ctx context.Context, req QuoteRequest) (*QuoteView, error) {
	cpu := q.policy.DefaultCPUStake
	if req.CPUStake != 0 {
		scale := q.policy.Core.Scale()
		if req.CPUStake < 0 || req.CPUStake > math.MaxInt64/scale {
			return nil, errs.Mark(errs.Wrap(ErrInvalidQuoteRequest, "stake out of range"), errs.ErrFormat)
		}
		cpu = req.CPUStake * scale
	}

	ram := q.policy.DefaultRAMBytes
	if req.RAMKiB != 0 {
		bytes := uint64(req.RAMKiB) * 1024
		if bytes > math.MaxUint32 || bytes <= uint64(q.policy.DefaultRAMBytes) {
			return nil, errs.Mark(errs.Wrap(ErrInvalidQuoteRequest, "ram out of range"), errs.ErrFormat)
		}
		ram = uint32(bytes)
	}

	market, err := q.market.RAMMarket(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "read ram market")
	}
	b, err := q.policy.MinimumPayment(cpu, ram, market)
	if err != nil {
		return nil, err
	}

	return &QuoteView{
		CPUStake:            b.CPUStake,
		NetStake:            b.NetStake,
		RAMBytes:            b.RAMBytes,
		RAMCost:             b.RAMCost,
		ReplacementCost:     b.ReplacementCost,
		RentCPU:             b.RentCPU,
		Fee:                 b.Fee,
		MinimumPayment:      b.Amount,
		MinimumPaymentAsset: asset.New(b.Amount, q.policy.Core).String(),
		Symbol:              q.policy.Core.String(),
	}, nil
}
