package provisioning

import (
	"account-provisioner/internal/domain/asset"
	"account-provisioner/internal/domain/key"
)

const (
	ActionNewAccount = "newaccount"
	ActionBuyRAM     = "buyram"
	ActionDelegateBW = "delegatebw"
	ActionTransfer   = "transfer"
	ActionDeposit    = "deposit"
	ActionRentCPU    = "rentcpu"

	activePermission = "active"

	FeeTransferMemo    = "Account creation fee"
	InitialBalanceMemo = "Initial balance"
)

type PermissionLevel struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
}

type KeyWeight struct {
	Key    key.Record `json:"key"`
	Weight uint16     `json:"weight"`
}

type PermissionLevelWeight struct {
	Permission PermissionLevel `json:"permission"`
	Weight     uint16          `json:"weight"`
}

type WaitWeight struct {
	WaitSec uint32 `json:"wait_sec"`
	Weight  uint16 `json:"weight"`
}

type Authority struct {
	Threshold uint32                  `json:"threshold"`
	Keys      []KeyWeight             `json:"keys"`
	Accounts  []PermissionLevelWeight `json:"accounts"`
	Waits     []WaitWeight            `json:"waits"`
}

// SingleKeyAuthority is threshold 1 satisfied by k alone.
func SingleKeyAuthority(k key.Record) Authority {
	return Authority{
		Threshold: 1,
		Keys:      []KeyWeight{{Key: k, Weight: 1}},
		Accounts:  []PermissionLevelWeight{},
		Waits:     []WaitWeight{},
	}
}

type NewAccount struct {
	Creator string    `json:"creator"`
	Name    string    `json:"name"`
	Owner   Authority `json:"owner"`
	Active  Authority `json:"active"`
}

type BuyRAM struct {
	Payer    string      `json:"payer"`
	Receiver string      `json:"receiver"`
	Quant    asset.Asset `json:"quant"`
}

type DelegateBW struct {
	From             string      `json:"from"`
	Receiver         string      `json:"receiver"`
	StakeNetQuantity asset.Asset `json:"stake_net_quantity"`
	StakeCPUQuantity asset.Asset `json:"stake_cpu_quantity"`
	Transfer         bool        `json:"transfer"`
}

type Transfer struct {
	From     string      `json:"from"`
	To       string      `json:"to"`
	Quantity asset.Asset `json:"quantity"`
	Memo     string      `json:"memo"`
}

type Deposit struct {
	Owner  string      `json:"owner"`
	Amount asset.Asset `json:"amount"`
}

type RentCPU struct {
	From        string      `json:"from"`
	Receiver    string      `json:"receiver"`
	LoanPayment asset.Asset `json:"loan_payment"`
	LoanFund    asset.Asset `json:"loan_fund"`
}

// Action is one host command. Data holds one of the payload structs above.
type Action struct {
	Account       string            `json:"account"`
	Name          string            `json:"name"`
	Authorization []PermissionLevel `json:"authorization"`
	Data          any               `json:"data"`
}
