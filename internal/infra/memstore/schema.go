package memstore

import (
	"time"

	"github.com/hashicorp/go-memdb"
)

const (
	tableReservations = "reservations"
	tableSequences    = "sequences"

	indexID          = "id"
	indexFingerprint = "fingerprint"
	indexExpiresAt   = "expires_at"

	reservationSequence = "reservations"
)

// reservationRow is the stored form. ExpiresAt is unix nanoseconds so the
// big-endian uint index orders rows by expiry.
type reservationRow struct {
	ID           uint64
	Fingerprint  string
	ExpiresAt    uint64
	CreatedAt    time.Time
	OwnerKey     string
	ActiveKey    string
	RegisteredBy string
}

type sequenceRow struct {
	Name string
	Next uint64
}

func newSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableReservations: {
				Name: tableReservations,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.UintFieldIndex{Field: "ID"},
					},
					indexFingerprint: {
						Name:    indexFingerprint,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Fingerprint"},
					},
					indexExpiresAt: {
						Name:    indexExpiresAt,
						Indexer: &memdb.UintFieldIndex{Field: "ExpiresAt"},
					},
				},
			},
			tableSequences: {
				Name: tableSequences,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
		},
	}
}
