//go:build unit

package provisioning_test

import (
	"testing"

	"account-provisioner/internal/domain/asset"
	"account-provisioner/internal/domain/key"
	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/pkg/errs"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerKeyLegacy = "EOS6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV"
	activeKeyR1    = "PUB_R1_6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5Bpuyty"
)

var (
	eos = asset.MustSymbol("EOS", 4)

	// 2^30 bytes against 2^30 minor units: 3000 bytes cost 3015, 800 cost 804.
	market = provisioning.RAMMarket{Bytes: 1 << 30, Quote: 1 << 30}
)

func testPolicy() provisioning.Policy {
	return provisioning.Policy{
		Self:                "saccountcrtr",
		System:              "eosio",
		Token:               "eosio.token",
		FeeSink:             "saccountfees",
		ReferenceSender:     "ge4dknjtgqge",
		Core:                eos,
		DefaultCPUStake:     1500,
		DefaultNetStake:     500,
		DefaultRAMBytes:     3000,
		ReplacementRAMBytes: 800,
		FeeAddend:           119,
		FeeDivisor:          200,
		MinFee:              1000,
	}
}

func mustKey(t *testing.T, s string) key.Record {
	t.Helper()
	rec, err := key.NewParser(true).Parse(s)
	require.NoError(t, err)
	return rec
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, testPolicy().Validate())

	p := testPolicy()
	p.FeeDivisor = 0
	assert.True(t, errs.Is(p.Validate(), provisioning.ErrInvalidPolicy))

	p = testPolicy()
	p.FeeSink = "Not.Valid"
	assert.True(t, errs.Is(p.Validate(), provisioning.ErrInvalidPolicy))
}

func TestPolicy_Fee(t *testing.T) {
	p := testPolicy()
	testCases := []struct {
		amount   int64
		expected int64
	}{
		{amount: 1, expected: 1000},
		{amount: 10000, expected: 1000},
		{amount: 199881, expected: 1000},
		{amount: 199882, expected: 1000},
		{amount: 200081, expected: 1001},
		{amount: 1_000_000, expected: 5000},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, p.Fee(tc.amount), "amount %d", tc.amount)
	}
}

func TestParseAccountName(t *testing.T) {
	for _, ok := range []string{"a", "alice", "alice.bob", "abcde12345ab", "1", "myaccount1111", "abcdefghijklj"} {
		_, err := provisioning.ParseAccountName(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "Alice", "alice.", "abcdefghijklk", "abcdefghijklmn", "alice6", "al ice", "alice_b"} {
		_, err := provisioning.ParseAccountName(bad)
		assert.True(t, errs.Is(err, errs.ErrFormat), bad)
	}
}

func TestRAMMarket_Price(t *testing.T) {
	t.Run("bancor output with fee gross-up", func(t *testing.T) {
		testCases := []struct {
			name     string
			market   provisioning.RAMMarket
			bytes    uint32
			expected int64
		}{
			{name: "default allocation", market: market, bytes: 3000, expected: 3015},
			{name: "replacement", market: market, bytes: 800, expected: 804},
			{name: "zero bytes", market: market, bytes: 0, expected: 0},
			{name: "mainnet-like balances", market: provisioning.RAMMarket{Bytes: 68719476736, Quote: 100000000000}, bytes: 3000, expected: 4387},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := tc.market.Price(tc.bytes)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, got)
			})
		}
	})

	t.Run("empty market", func(t *testing.T) {
		_, err := provisioning.RAMMarket{}.Price(3000)
		assert.True(t, errs.Is(err, provisioning.ErrInvalidMarket))
	})
}

func TestPolicy_ParseMemo(t *testing.T) {
	p := testPolicy()
	parser := key.NewParser(false)
	owner := mustKey(t, ownerKeyLegacy)
	active := mustKey(t, activeKeyR1)

	t.Run("success", func(t *testing.T) {
		testCases := []struct {
			name     string
			memo     string
			expected provisioning.Request
		}{
			{
				name:     "two fields",
				memo:     "alice:" + ownerKeyLegacy,
				expected: provisioning.Request{Account: "alice", OwnerKey: owner, ActiveKey: owner, CPUStake: 1500, RAMBytes: 3000},
			},
			{
				name:     "three fields with dash separators and padding",
				memo:     "  alice-" + ownerKeyLegacy + "-" + activeKeyR1 + " ",
				expected: provisioning.Request{Account: "alice", OwnerKey: owner, ActiveKey: active, CPUStake: 1500, RAMBytes: 3000},
			},
			{
				name:     "four fields",
				memo:     "bob:" + ownerKeyLegacy + ":2:4",
				expected: provisioning.Request{Account: "bob", OwnerKey: owner, ActiveKey: owner, CPUStake: 20000, RAMBytes: 4096},
			},
			{
				name:     "four fields with a thirteen character name",
				memo:     "myaccount1111:" + ownerKeyLegacy + ":1000:5",
				expected: provisioning.Request{Account: "myaccount1111", OwnerKey: owner, ActiveKey: owner, CPUStake: 1000 * 10000, RAMBytes: 5 * 1024},
			},
			{
				name:     "five fields",
				memo:     "carol:" + ownerKeyLegacy + ":" + activeKeyR1 + ":1:8",
				expected: provisioning.Request{Account: "carol", OwnerKey: owner, ActiveKey: active, CPUStake: 10000, RAMBytes: 8192},
			},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := p.ParseMemo(tc.memo, parser)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, got)
			})
		}
	})

	t.Run("format errors", func(t *testing.T) {
		testCases := []struct {
			name  string
			memo  string
			cause error
		}{
			{name: "empty", memo: "", cause: provisioning.ErrFieldCount},
			{name: "one field", memo: "alice", cause: provisioning.ErrFieldCount},
			{name: "six fields", memo: "a:b:c:d:e:f", cause: provisioning.ErrFieldCount},
			{name: "bad name", memo: "Alice:" + ownerKeyLegacy, cause: provisioning.ErrInvalidAccountName},
			{name: "bad owner key", memo: "alice:PUB_R1_invalidchars!!", cause: errs.ErrFormat},
			{name: "bad active key", memo: "alice:" + ownerKeyLegacy + ":nokey", cause: key.ErrUnrecognizedFormat},
			{name: "zero stake", memo: "alice:" + ownerKeyLegacy + ":0:4", cause: provisioning.ErrStakeAmount},
			{name: "fractional stake", memo: "alice:" + ownerKeyLegacy + ":1.5:4", cause: provisioning.ErrStakeAmount},
			{name: "ram at the floor", memo: "alice:" + ownerKeyLegacy + ":1:2", cause: provisioning.ErrRAMAmount},
			{name: "ram not a number", memo: "alice:" + ownerKeyLegacy + ":1:lots", cause: provisioning.ErrRAMAmount},
			{name: "ram overflows", memo: "alice:" + ownerKeyLegacy + ":1:4194304", cause: provisioning.ErrRAMAmount},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := p.ParseMemo(tc.memo, parser)
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.ErrFormat))
				assert.True(t, errs.Is(err, tc.cause), "got %v", err)
			})
		}
	})
}

func TestPolicy_Plan(t *testing.T) {
	p := testPolicy()
	owner := mustKey(t, ownerKeyLegacy)
	req := provisioning.Request{Account: "alice", OwnerKey: owner, ActiveKey: owner, CPUStake: 1500, RAMBytes: 3000}

	names := func(b *provisioning.Batch) []string {
		out := make([]string, len(b.Actions))
		for i, a := range b.Actions {
			out[i] = a.Account + "::" + a.Name
		}
		return out
	}

	t.Run("remaining balance is forwarded", func(t *testing.T) {
		batch, err := p.Plan(10000, req, market)
		require.NoError(t, err)

		assert.Equal(t, provisioning.Breakdown{
			Amount: 10000, CPUStake: 1500, NetStake: 500, RAMBytes: 3000,
			RAMCost: 3015, ReplacementCost: 804, Fee: 1000, Remaining: 3181,
		}, batch.Breakdown)

		if diff := cmp.Diff([]string{
			"eosio::newaccount",
			"eosio::buyram",
			"eosio::buyram",
			"eosio::delegatebw",
			"eosio.token::transfer",
			"eosio.token::transfer",
		}, names(batch)); diff != "" {
			t.Errorf("action order mismatch (-want +got):\n%s", diff)
		}

		assert.Equal(t, provisioning.NewAccount{
			Creator: "saccountcrtr",
			Name:    "alice",
			Owner:   provisioning.SingleKeyAuthority(owner),
			Active:  provisioning.SingleKeyAuthority(owner),
		}, batch.Actions[0].Data)
		assert.Equal(t, provisioning.BuyRAM{Payer: "saccountcrtr", Receiver: "alice", Quant: asset.New(3015, eos)}, batch.Actions[1].Data)
		assert.Equal(t, provisioning.BuyRAM{Payer: "saccountcrtr", Receiver: "saccountcrtr", Quant: asset.New(804, eos)}, batch.Actions[2].Data)
		assert.Equal(t, provisioning.DelegateBW{
			From: "saccountcrtr", Receiver: "alice",
			StakeNetQuantity: asset.New(500, eos), StakeCPUQuantity: asset.New(1500, eos),
			Transfer: true,
		}, batch.Actions[3].Data)
		assert.Equal(t, provisioning.Transfer{From: "saccountcrtr", To: "saccountfees", Quantity: asset.New(1000, eos), Memo: provisioning.FeeTransferMemo}, batch.Actions[4].Data)
		assert.Equal(t, provisioning.Transfer{From: "saccountcrtr", To: "alice", Quantity: asset.New(3181, eos), Memo: provisioning.InitialBalanceMemo}, batch.Actions[5].Data)

		for _, a := range batch.Actions {
			assert.Equal(t, []provisioning.PermissionLevel{{Actor: "saccountcrtr", Permission: "active"}}, a.Authorization)
		}
	})

	t.Run("exact payment emits no balance transfer", func(t *testing.T) {
		batch, err := p.Plan(6819, req, market)
		require.NoError(t, err)
		assert.Zero(t, batch.Breakdown.Remaining)
		assert.Len(t, batch.Actions, 5)
		assert.Equal(t, "saccountfees", batch.Actions[4].Data.(provisioning.Transfer).To)
	})

	t.Run("one unit short is refused", func(t *testing.T) {
		batch, err := p.Plan(6818, req, market)
		assert.Nil(t, batch)
		assert.True(t, errs.Is(err, errs.ErrInsufficientFunds))
	})

	t.Run("rent cpu adds deposit and rental before the balance transfer", func(t *testing.T) {
		rent := testPolicy()
		rent.RentCPUAmount = 10
		batch, err := rent.Plan(10000, req, market)
		require.NoError(t, err)
		assert.Equal(t, int64(3171), batch.Breakdown.Remaining)
		if diff := cmp.Diff([]string{
			"eosio::newaccount",
			"eosio::buyram",
			"eosio::buyram",
			"eosio::delegatebw",
			"eosio.token::transfer",
			"eosio::deposit",
			"eosio::rentcpu",
			"eosio.token::transfer",
		}, names(batch)); diff != "" {
			t.Errorf("action order mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, provisioning.RentCPU{
			From: "saccountcrtr", Receiver: "alice",
			LoanPayment: asset.New(10, eos), LoanFund: asset.New(0, eos),
		}, batch.Actions[6].Data)
	})

	t.Run("affordable iff remaining is non-negative", func(t *testing.T) {
		for amount := int64(6700); amount <= 7000; amount++ {
			b, err := p.Price(amount, req.CPUStake, req.RAMBytes, market)
			require.NoError(t, err)
			_, planErr := p.Plan(amount, req, market)
			assert.Equal(t, b.Remaining >= 0, planErr == nil, "amount %d", amount)
		}
	})
}

func TestPolicy_MinimumPayment(t *testing.T) {
	p := testPolicy()

	b, err := p.MinimumPayment(1500, 3000, market)
	require.NoError(t, err)
	assert.Equal(t, int64(6819), b.Amount)
	assert.Zero(t, b.Remaining)

	// above the fee floor every extra 200 units adds one unit of fee
	b, err = p.MinimumPayment(1_000_000, 3000, market)
	require.NoError(t, err)
	assert.True(t, b.Affordable())
	prev, err := p.Price(b.Amount-1, 1_000_000, 3000, market)
	require.NoError(t, err)
	assert.False(t, prev.Affordable())
}
