package response

import (
	"time"

	"account-provisioner/internal/usecase/commands"
	"account-provisioner/internal/usecase/queries"
)

type RegistrationResponse struct {
	Result        string    `json:"result"`
	ReservationID int64     `json:"reservationId"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Swept         int       `json:"swept"`
}

func FromRegisterOutput(out *commands.RegisterOutput) *RegistrationResponse {
	return &RegistrationResponse{
		Result:        string(out.Result),
		ReservationID: out.ReservationID,
		ExpiresAt:     out.ExpiresAt,
		Swept:         out.Swept,
	}
}

type ReservationResponse struct {
	ID           int64     `json:"id"`
	Fingerprint  string    `json:"fingerprint"`
	OwnerKey     string    `json:"ownerKey"`
	ActiveKey    string    `json:"activeKey"`
	RegisteredBy string    `json:"registeredBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func FromReservationView(v *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:           v.ID,
		Fingerprint:  v.Fingerprint,
		OwnerKey:     v.OwnerKey,
		ActiveKey:    v.ActiveKey,
		RegisteredBy: v.RegisteredBy,
		CreatedAt:    v.CreatedAt,
		ExpiresAt:    v.ExpiresAt,
	}
}

type SweepResponse struct {
	Removed int `json:"removed"`
}
