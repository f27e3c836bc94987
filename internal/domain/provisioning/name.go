package provisioning

import (
	"errors"

	"account-provisioner/internal/pkg/errs"
)

const MaxAccountNameLength = 13

var ErrInvalidAccountName = errors.New("invalid account name")

// AccountName follows the ledger's base-32 name encoding: up to twelve
// characters from ".12345abcdefghijklmnopqrstuvwxyz" plus an optional
// thirteenth from ".12345abcdefghij". A trailing '.' is never allowed.
type AccountName string

func ParseAccountName(s string) (AccountName, error) {
	if s == "" || len(s) > MaxAccountNameLength || s[len(s)-1] == '.' {
		return "", invalidName(s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		last := 'z'
		if i == 12 {
			last = 'j'
		}
		if !(c == '.' || (c >= '1' && c <= '5') || (c >= 'a' && rune(c) <= last)) {
			return "", invalidName(s)
		}
	}
	return AccountName(s), nil
}

func (n AccountName) String() string { return string(n) }

func invalidName(s string) error {
	return errs.Mark(errs.Wrapf(ErrInvalidAccountName, "%q", s), errs.ErrFormat)
}
