package request

import (
	"strings"

	"account-provisioner/internal/domain/registration"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/commands"
)

// RegisterRequest reserves keys for a future payment. Callers send either
// the hex fingerprint of the memo they will pay with or the memo itself.
type RegisterRequest struct {
	Fingerprint string `json:"fingerprint"`
	Memo        string `json:"memo"`
	OwnerKey    string `json:"ownerKey" binding:"required"`
	ActiveKey   string `json:"activeKey" binding:"required"`
}

var ErrFingerprintOrMemo = errs.New("exactly one of fingerprint or memo is required")

func (r RegisterRequest) ToInput(registeredBy string) (commands.RegisterInput, error) {
	fpHex := strings.TrimSpace(r.Fingerprint)
	if (fpHex == "") == (r.Memo == "") {
		return commands.RegisterInput{}, errs.Mark(ErrFingerprintOrMemo, errs.ErrFormat)
	}

	var fp registration.Fingerprint
	if fpHex != "" {
		parsed, err := registration.ParseFingerprint(fpHex)
		if err != nil {
			return commands.RegisterInput{}, err
		}
		fp = parsed
	} else {
		fp = registration.FingerprintOf(r.Memo)
	}

	return commands.RegisterInput{
		Fingerprint:  fp,
		OwnerKey:     strings.TrimSpace(r.OwnerKey),
		ActiveKey:    strings.TrimSpace(r.ActiveKey),
		RegisteredBy: registeredBy,
	}, nil
}
