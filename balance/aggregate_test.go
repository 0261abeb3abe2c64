package balance

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/agglayer/pessimistic-proof-go/types"
)

func withdrawal(destNetwork types.NetworkId, tok types.TokenInfo, amount uint64) types.Withdrawal {
	return types.Withdrawal{
		TokenInfo:   tok,
		DestNetwork: destNetwork,
		Amount:      uint256.NewInt(amount),
	}
}

func TestAggregateInsertDebitsOriginCreditsDest(t *testing.T) {
	agg := NewAggregateByNetwork()
	eth := token(0)

	if err := agg.Insert(0, withdrawal(1, eth, 10)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	origin := agg.Tree(0).Balance(eth)
	if origin.Debit.Uint64() != 10 {
		t.Fatalf("origin debit = %d, want 10", origin.Debit.Uint64())
	}

	dest := agg.Tree(1).Balance(eth)
	if dest.Credit.Uint64() != 10 {
		t.Fatalf("dest credit = %d, want 10", dest.Credit.Uint64())
	}
}

func TestAggregateDebtorsEmptyWhenBalanced(t *testing.T) {
	agg := NewAggregateByNetwork()
	eth := token(0)
	_ = agg.Insert(0, withdrawal(1, eth, 10))
	_ = agg.Insert(1, withdrawal(0, eth, 10))

	if debtors := agg.Debtors(); len(debtors) != 0 {
		t.Fatalf("expected no debtors, got %v", debtors)
	}
}

// TestCrossNetworkBalanceSuccess reproduces spec scenario S4: two networks,
// prior credited balances, reciprocal withdrawals that leave every
// collated balance non-negative.
func TestCrossNetworkBalanceSuccess(t *testing.T) {
	eth := types.TokenInfo{OriginNetwork: 0, OriginTokenAddress: types.HexToAddress("1111111111111111111111111111111111111111")}
	usdc := types.TokenInfo{OriginNetwork: 0, OriginTokenAddress: types.HexToAddress("2222222222222222222222222222222222222222")}

	priorNet0 := NewBalanceTree()
	_ = priorNet0.Credit(eth, uint256.NewInt(12))
	_ = priorNet0.Credit(usdc, uint256.NewInt(102))

	priorNet1 := NewBalanceTree()
	_ = priorNet1.Credit(eth, uint256.NewInt(20))
	_ = priorNet1.Credit(usdc, uint256.NewInt(201))

	collated := NewAggregateByNetwork()
	collated.SeedNetwork(0, priorNet0)
	collated.SeedNetwork(1, priorNet1)

	batch0 := NewAggregateByNetwork()
	_ = batch0.Insert(0, withdrawal(1, eth, 10))
	_ = batch0.Insert(0, withdrawal(1, usdc, 100))

	batch1 := NewAggregateByNetwork()
	_ = batch1.Insert(1, withdrawal(0, eth, 20))
	_ = batch1.Insert(1, withdrawal(0, usdc, 200))

	if err := collated.Merge(batch0); err != nil {
		t.Fatalf("merge batch0: %v", err)
	}
	if err := collated.Merge(batch1); err != nil {
		t.Fatalf("merge batch1: %v", err)
	}

	if debtors := collated.Debtors(); len(debtors) != 0 {
		t.Fatalf("expected no debtors, got %v", debtors)
	}
}

// TestCrossNetworkBalanceDebtor reproduces spec scenario S5: the same
// withdrawal shape as S4 but with priors too small to cover them, so the
// full proof's debt check must flag network 0.
func TestCrossNetworkBalanceDebtor(t *testing.T) {
	eth := types.TokenInfo{OriginNetwork: 0, OriginTokenAddress: types.HexToAddress("1111111111111111111111111111111111111111")}
	usdc := types.TokenInfo{OriginNetwork: 0, OriginTokenAddress: types.HexToAddress("2222222222222222222222222222222222222222")}

	priorNet0 := NewBalanceTree()
	_ = priorNet0.Credit(eth, uint256.NewInt(2))
	_ = priorNet0.Credit(usdc, uint256.NewInt(10))

	priorNet1 := NewBalanceTree()
	_ = priorNet1.Credit(eth, uint256.NewInt(1))
	_ = priorNet1.Credit(usdc, uint256.NewInt(200))

	collated := NewAggregateByNetwork()
	collated.SeedNetwork(0, priorNet0)
	collated.SeedNetwork(1, priorNet1)

	batch0 := NewAggregateByNetwork()
	_ = batch0.Insert(0, withdrawal(1, eth, 10))
	_ = batch0.Insert(0, withdrawal(1, usdc, 100))

	batch1 := NewAggregateByNetwork()
	_ = batch1.Insert(1, withdrawal(0, eth, 20))
	_ = batch1.Insert(1, withdrawal(0, usdc, 200))

	_ = collated.Merge(batch0)
	_ = collated.Merge(batch1)

	debtors := collated.Debtors()
	if len(debtors) == 0 {
		t.Fatal("expected at least one debtor")
	}
	found := false
	for _, d := range debtors {
		if d == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected network 0 among debtors, got %v", debtors)
	}
}

func TestAggregateHashDeterministic(t *testing.T) {
	eth := token(0)

	a := NewAggregateByNetwork()
	_ = a.Insert(0, withdrawal(1, eth, 10))

	b := NewAggregateByNetwork()
	_ = b.Insert(0, withdrawal(1, eth, 10))

	if a.Hash() != b.Hash() {
		t.Fatal("identical aggregates should hash identically")
	}
}

func TestAggregateMergeEmptyIsIdentity(t *testing.T) {
	eth := token(0)
	a := NewAggregateByNetwork()
	_ = a.Insert(0, withdrawal(1, eth, 10))
	before := a.Hash()

	if err := a.Merge(NewAggregateByNetwork()); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if a.Hash() != before {
		t.Fatal("merging an empty aggregate should not change the hash")
	}
}
