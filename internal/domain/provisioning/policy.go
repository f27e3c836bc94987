// Package provisioning turns a payment into the ordered batch of ledger
// actions that creates and funds a new account.
package provisioning

import (
	"errors"

	"account-provisioner/internal/domain/asset"
	"account-provisioner/internal/pkg/errs"
)

var ErrInvalidPolicy = errors.New("invalid provisioning policy")

// Policy collects the deployment-specific constants. Every amount is in minor
// units of Core.
type Policy struct {
	Self            string
	System          string
	Token           string
	FeeSink         string
	ReferenceSender string

	Core asset.Symbol

	DefaultCPUStake     int64
	DefaultNetStake     int64
	DefaultRAMBytes     uint32
	ReplacementRAMBytes uint32
	RentCPUAmount       int64

	FeeAddend  int64
	FeeDivisor int64
	MinFee     int64
}

func (p Policy) Validate() error {
	switch {
	case p.Self == "" || p.System == "" || p.Token == "" || p.FeeSink == "":
		return errs.Wrap(ErrInvalidPolicy, "account names must be set")
	case p.Core.Code() == "":
		return errs.Wrap(ErrInvalidPolicy, "core symbol must be set")
	case p.FeeDivisor <= 0:
		return errs.Wrap(ErrInvalidPolicy, "fee divisor must be positive")
	case p.DefaultCPUStake < 0 || p.DefaultNetStake < 0 || p.RentCPUAmount < 0 || p.MinFee < 0 || p.FeeAddend < 0:
		return errs.Wrap(ErrInvalidPolicy, "amounts must not be negative")
	}
	for _, n := range []string{p.Self, p.System, p.Token, p.FeeSink} {
		if _, err := ParseAccountName(n); err != nil {
			return errs.Wrapf(ErrInvalidPolicy, "account %q: %v", n, err)
		}
	}
	return nil
}

// Fee is max((amount + addend) / divisor, minFee): half a percent with a floor
// under the default constants.
func (p Policy) Fee(amount int64) int64 {
	return max((amount+p.FeeAddend)/p.FeeDivisor, p.MinFee)
}
