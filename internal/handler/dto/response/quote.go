package response

import (
	"account-provisioner/internal/usecase/queries"

	"github.com/jinzhu/copier"
)

type QuoteResponse struct {
	CPUStake            int64  `json:"cpuStake"`
	NetStake            int64  `json:"netStake"`
	RAMBytes            uint32 `json:"ramBytes"`
	RAMCost             int64  `json:"ramCost"`
	ReplacementCost     int64  `json:"replacementCost"`
	RentCPU             int64  `json:"rentCpu"`
	Fee                 int64  `json:"fee"`
	MinimumPayment      int64  `json:"minimumPayment"`
	MinimumPaymentAsset string `json:"minimumPaymentAsset"`
	Symbol              string `json:"symbol"`
}

func FromQuoteView(v *queries.QuoteView) (*QuoteResponse, error) {
	var out QuoteResponse
	if err := copier.Copy(&out, v); err != nil {
		return nil, err
	}
	return &out, nil
}
