package queries

import "time"

// ReservationView is the read model for a pending registration.
type ReservationView struct {
	ID           int64     `json:"id"`
	Fingerprint  string    `json:"fingerprint"`
	OwnerKey     string    `json:"owner_key"`
	ActiveKey    string    `json:"active_key"`
	RegisteredBy string    `json:"registered_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// QuoteView prices an account before paying for it. Amounts are in minor
// units; the *Asset fields are the same values formatted for display.
type QuoteView struct {
	CPUStake        int64
	NetStake        int64
	RAMBytes        uint32
	RAMCost         int64
	ReplacementCost int64
	RentCPU         int64
	Fee             int64
	MinimumPayment  int64

	MinimumPaymentAsset string
	Symbol              string
}
