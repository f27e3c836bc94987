package provisioning

import (
	"math"

	"account-provisioner/internal/domain/asset"
	"account-provisioner/internal/pkg/errs"

	"github.com/google/uuid"
)

// Breakdown is where a payment goes. Remaining is negative when the payment
// does not cover the costs.
type Breakdown struct {
	Amount          int64
	CPUStake        int64
	NetStake        int64
	RAMBytes        uint32
	RAMCost         int64
	ReplacementCost int64
	RentCPU         int64
	Fee             int64
	Remaining       int64
}

func (b Breakdown) Affordable() bool { return b.Remaining >= 0 }

// Costs is everything except the remaining balance.
func (b Breakdown) Costs() int64 { return b.Amount - b.Remaining }

// Batch is the ordered set of actions for one provisioned account. The host
// applies it all or nothing.
type Batch struct {
	ID            uuid.UUID
	Account       AccountName
	Source        Source
	ReservationID int64
	Breakdown     Breakdown
	Actions       []Action
}

// Price splits amount across the requested resources, the fixed costs and the
// fee.
func (p Policy) Price(amount, cpuStake int64, ramBytes uint32, market RAMMarket) (Breakdown, error) {
	ramCost, err := market.Price(ramBytes)
	if err != nil {
		return Breakdown{}, err
	}
	replacementCost, err := market.Price(p.ReplacementRAMBytes)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Amount:          amount,
		CPUStake:        cpuStake,
		NetStake:        p.DefaultNetStake,
		RAMBytes:        ramBytes,
		RAMCost:         ramCost,
		ReplacementCost: replacementCost,
		RentCPU:         p.RentCPUAmount,
		Fee:             p.Fee(amount),
	}

	remaining := amount
	for _, cost := range []int64{b.CPUStake, b.NetStake, b.RAMCost, b.Fee, b.ReplacementCost, b.RentCPU} {
		if remaining < math.MinInt64+cost {
			remaining = math.MinInt64
			break
		}
		remaining -= cost
	}
	b.Remaining = remaining
	return b, nil
}

// Plan prices req and, if the payment covers it, lays out the actions in the
// order the host must run them. Nothing is planned for an unaffordable
// request; the error carries errs.ErrInsufficientFunds.
func (p Policy) Plan(amount int64, req Request, market RAMMarket) (*Batch, error) {
	b, err := p.Price(amount, req.CPUStake, req.RAMBytes, market)
	if err != nil {
		return nil, err
	}
	if !b.Affordable() {
		return nil, errs.Mark(
			errs.Newf("payment of %s does not cover %s of costs", p.asset(b.Amount), p.asset(b.Costs())),
			errs.ErrInsufficientFunds,
		)
	}

	self := p.Self
	name := req.Account.String()
	auth := []PermissionLevel{{Actor: self, Permission: activePermission}}
	action := func(contract, actionName string, data any) Action {
		return Action{Account: contract, Name: actionName, Authorization: auth, Data: data}
	}

	actions := []Action{
		action(p.System, ActionNewAccount, NewAccount{
			Creator: self,
			Name:    name,
			Owner:   SingleKeyAuthority(req.OwnerKey),
			Active:  SingleKeyAuthority(req.ActiveKey),
		}),
		action(p.System, ActionBuyRAM, BuyRAM{Payer: self, Receiver: name, Quant: p.asset(b.RAMCost)}),
	}
	if b.ReplacementCost > 0 {
		actions = append(actions,
			action(p.System, ActionBuyRAM, BuyRAM{Payer: self, Receiver: self, Quant: p.asset(b.ReplacementCost)}))
	}
	actions = append(actions,
		action(p.System, ActionDelegateBW, DelegateBW{
			From:             self,
			Receiver:         name,
			StakeNetQuantity: p.asset(b.NetStake),
			StakeCPUQuantity: p.asset(b.CPUStake),
			Transfer:         true,
		}),
		action(p.Token, ActionTransfer, Transfer{From: self, To: p.FeeSink, Quantity: p.asset(b.Fee), Memo: FeeTransferMemo}),
	)
	if b.RentCPU > 0 {
		actions = append(actions,
			action(p.System, ActionDeposit, Deposit{Owner: self, Amount: p.asset(b.RentCPU)}),
			action(p.System, ActionRentCPU, RentCPU{
				From:        self,
				Receiver:    name,
				LoanPayment: p.asset(b.RentCPU),
				LoanFund:    p.asset(0),
			}),
		)
	}
	if b.Remaining > 0 {
		actions = append(actions,
			action(p.Token, ActionTransfer, Transfer{From: self, To: name, Quantity: p.asset(b.Remaining), Memo: InitialBalanceMemo}))
	}

	return &Batch{
		ID:            uuid.New(),
		Account:       req.Account,
		Source:        req.Source,
		ReservationID: req.ReservationID,
		Breakdown:     b,
		Actions:       actions,
	}, nil
}

// MinimumPayment is the smallest amount whose breakdown is affordable for the
// given resources. Remaining never decreases as the amount grows, so a binary
// search over the valid asset range finds it.
func (p Policy) MinimumPayment(cpuStake int64, ramBytes uint32, market RAMMarket) (Breakdown, error) {
	lo, hi := int64(1), int64(1)<<62-1
	best, err := p.Price(hi, cpuStake, ramBytes, market)
	if err != nil {
		return Breakdown{}, err
	}
	if !best.Affordable() {
		return Breakdown{}, errs.Mark(errs.New("no payable amount covers these resources"), errs.ErrInsufficientFunds)
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		b, err := p.Price(mid, cpuStake, ramBytes, market)
		if err != nil {
			return Breakdown{}, err
		}
		if b.Affordable() {
			hi, best = mid, b
		} else {
			lo = mid + 1
		}
	}
	return best, nil
}

func (p Policy) asset(amount int64) asset.Asset {
	return asset.New(amount, p.Core)
}
