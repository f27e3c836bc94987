package response

import (
	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/usecase/commands"
)

type BreakdownResponse struct {
	Amount          int64  `json:"amount"`
	CPUStake        int64  `json:"cpuStake"`
	NetStake        int64  `json:"netStake"`
	RAMBytes        uint32 `json:"ramBytes"`
	RAMCost         int64  `json:"ramCost"`
	ReplacementCost int64  `json:"replacementCost"`
	RentCPU         int64  `json:"rentCpu"`
	Fee             int64  `json:"fee"`
	Remaining       int64  `json:"remaining"`
}

type PaymentResponse struct {
	Outcome   string                `json:"outcome"`
	Reason    string                `json:"reason,omitempty"`
	BatchID   string                `json:"batchId,omitempty"`
	Account   string                `json:"account,omitempty"`
	Source    string                `json:"source,omitempty"`
	Breakdown *BreakdownResponse    `json:"breakdown,omitempty"`
	Actions   []provisioning.Action `json:"actions,omitempty"`
}

func FromPaymentResult(res *commands.PaymentResult) *PaymentResponse {
	out := &PaymentResponse{
		Outcome: string(res.Outcome),
		Reason:  string(res.IgnoreReason),
	}
	if b := res.Batch; b != nil {
		out.BatchID = b.ID.String()
		out.Account = b.Account.String()
		out.Source = b.Source.String()
		out.Breakdown = &BreakdownResponse{
			Amount:          b.Breakdown.Amount,
			CPUStake:        b.Breakdown.CPUStake,
			NetStake:        b.Breakdown.NetStake,
			RAMBytes:        b.Breakdown.RAMBytes,
			RAMCost:         b.Breakdown.RAMCost,
			ReplacementCost: b.Breakdown.ReplacementCost,
			RentCPU:         b.Breakdown.RentCPU,
			Fee:             b.Breakdown.Fee,
			Remaining:       b.Breakdown.Remaining,
		}
		out.Actions = b.Actions
	}
	return out
}
