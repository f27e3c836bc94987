package provisioning

import (
	"errors"
	"math/big"

	"account-provisioner/internal/pkg/errs"
)

var ErrInvalidMarket = errors.New("ram market has no liquidity")

// RAMMarket is a snapshot of the host's RAM connector balances: Bytes of RAM
// against Quote minor units of the core token.
type RAMMarket struct {
	Bytes int64
	Quote int64
}

// Price returns what the host charges for bytes of RAM: the Bancor output
// bytes*quote/(balance+bytes), then grossed up for the 0.5% trading fee as
// (p*200 + 199) / 199. All arithmetic is exact.
func (m RAMMarket) Price(bytes uint32) (int64, error) {
	if m.Bytes <= 0 || m.Quote <= 0 {
		return 0, errs.Wrapf(ErrInvalidMarket, "bytes=%d quote=%d", m.Bytes, m.Quote)
	}
	if bytes == 0 {
		return 0, nil
	}

	in := new(big.Int).SetUint64(uint64(bytes))
	out := new(big.Int).Mul(in, big.NewInt(m.Quote))
	out.Quo(out, new(big.Int).Add(big.NewInt(m.Bytes), in))

	out.Mul(out, big.NewInt(200))
	out.Add(out, big.NewInt(199))
	out.Quo(out, big.NewInt(199))

	if !out.IsInt64() {
		return 0, errs.Mark(errs.Newf("ram price for %d bytes overflows", bytes), errs.ErrInsufficientFunds)
	}
	return out.Int64(), nil
}
