package request

import "account-provisioner/internal/usecase/commands"

// PaymentRequest is a token transfer relayed by the ledger watcher.
type PaymentRequest struct {
	From     string `json:"from" binding:"required"`
	To       string `json:"to" binding:"required"`
	Quantity string `json:"quantity" binding:"required"`
	Memo     string `json:"memo"`
}

func (r PaymentRequest) ToEvent() commands.PaymentEvent {
	return commands.PaymentEvent{
		From:     r.From,
		To:       r.To,
		Quantity: r.Quantity,
		Memo:     r.Memo,
	}
}
