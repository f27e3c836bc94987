package registration

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"account-provisioner/internal/pkg/errs"
)

const FingerprintSize = sha256.Size

var ErrInvalidFingerprint = errors.New("invalid fingerprint")

// Fingerprint content-addresses a reservation: the SHA-256 of the memo that
// will later accompany the payment.
type Fingerprint [FingerprintSize]byte

// FingerprintOf hashes memo after trimming surrounding spaces, so a payment
// note and the registered payload compare equal regardless of padding.
func FingerprintOf(memo string) Fingerprint {
	return sha256.Sum256([]byte(strings.Trim(memo, " ")))
}

func ParseFingerprint(s string) (Fingerprint, error) {
	var fp Fingerprint
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != FingerprintSize {
		return fp, errs.Mark(errs.Wrapf(ErrInvalidFingerprint, "%q", s), errs.ErrFormat)
	}
	copy(fp[:], raw)
	return fp, nil
}

func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := ParseFingerprint(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
