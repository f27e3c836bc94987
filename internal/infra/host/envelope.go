// Package host delivers command batches to the ledger host.
package host

import (
	"encoding/json"

	"account-provisioner/internal/domain/provisioning"
)

// Envelope is the wire form of a batch. The host applies Actions in order and
// all or nothing.
type Envelope struct {
	BatchID       string                `json:"batch_id"`
	Account       string                `json:"account"`
	Source        string                `json:"source"`
	ReservationID int64                 `json:"reservation_id,omitempty"`
	Actions       []provisioning.Action `json:"actions"`
}

func NewEnvelope(batch *provisioning.Batch) Envelope {
	return Envelope{
		BatchID:       batch.ID.String(),
		Account:       batch.Account.String(),
		Source:        batch.Source.String(),
		ReservationID: batch.ReservationID,
		Actions:       batch.Actions,
	}
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
