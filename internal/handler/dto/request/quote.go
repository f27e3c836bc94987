package request

import "account-provisioner/internal/usecase/queries"

type QuoteRequest struct {
	RAMKiB   uint32 `form:"ram_kb"`
	CPUStake int64  `form:"stake" binding:"gte=0"`
}

func (r QuoteRequest) ToQuery() queries.QuoteRequest {
	return queries.QuoteRequest{CPUStake: r.CPUStake, RAMKiB: r.RAMKiB}
}
