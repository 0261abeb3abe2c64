package pessimisticproof

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/agglayer/pessimistic-proof-go/balance"
	"github.com/agglayer/pessimistic-proof-go/certificate"
	"github.com/agglayer/pessimistic-proof-go/exittree"
	"github.com/agglayer/pessimistic-proof-go/types"
)

func withdrawalTo(destNetwork types.NetworkId, amount uint64) types.Withdrawal {
	return types.Withdrawal{
		TokenInfo:   types.TokenInfo{OriginNetwork: 0},
		DestNetwork: destNetwork,
		Amount:      uint256.NewInt(amount),
	}
}

func TestLeafProofRejectsWrongPriorRoot(t *testing.T) {
	tree := exittree.New()
	tree.Append(types.Digest{1})

	batch := certificate.Batch{
		OriginNetwork:     0,
		PrevLocalExitTree: tree,
		PrevLocalExitRoot: types.Digest{}, // wrong: tree is non-empty
		Withdrawals:       nil,
	}

	_, _, err := LeafProof(batch)
	var invalidRoot *InvalidLocalExitRootError
	if !errors.As(err, &invalidRoot) {
		t.Fatalf("expected InvalidLocalExitRootError, got %v", err)
	}
}

func TestLeafProofAppendsWithdrawalsAndBuildsAggregate(t *testing.T) {
	tree := exittree.New()
	batch := certificate.Batch{
		OriginNetwork:     0,
		PrevLocalExitTree: tree,
		PrevLocalExitRoot: tree.Root(),
		Withdrawals: []types.Withdrawal{
			withdrawalTo(1, 10),
			withdrawalTo(1, 5),
		},
	}

	newRoot, aggregate, err := LeafProof(batch)
	if err != nil {
		t.Fatalf("LeafProof: %v", err)
	}
	if newRoot == (types.Digest{}) {
		t.Fatal("expected non-zero new root after appending withdrawals")
	}

	eth := types.TokenInfo{OriginNetwork: 0}
	origin := aggregate.Tree(0).Balance(eth)
	if origin.Debit.Uint64() != 15 {
		t.Fatalf("origin debit = %d, want 15", origin.Debit.Uint64())
	}
	dest := aggregate.Tree(1).Balance(eth)
	if dest.Credit.Uint64() != 15 {
		t.Fatalf("dest credit = %d, want 15", dest.Credit.Uint64())
	}
}

// TestFullProofConservationOnEmptyBatches reproduces testable property 4:
// a full proof over batches with empty withdrawal lists must reproduce
// the prior exit roots unchanged and the prior balance tree's hash.
func TestFullProofConservationOnEmptyBatches(t *testing.T) {
	tree0 := exittree.New()
	priorBalance := balance.NewBalanceTree()
	_ = priorBalance.Credit(types.TokenInfo{OriginNetwork: 0}, uint256.NewInt(50))

	batches := []certificate.Batch{
		{
			OriginNetwork:        0,
			PrevLocalExitTree:    tree0,
			PrevLocalExitRoot:    tree0.Root(),
			PrevLocalBalanceTree: priorBalance,
		},
	}

	exitRoots, balanceRoots, err := FullProof(batches)
	if err != nil {
		t.Fatalf("FullProof: %v", err)
	}
	if exitRoots[0] != tree0.Root() {
		t.Fatalf("exit root changed on empty batch: got %s, want %s", exitRoots[0].Hex(), tree0.Root().Hex())
	}
	if balanceRoots[0] != priorBalance.Hash() {
		t.Fatal("balance root should equal the prior balance tree's hash on an empty batch")
	}
}

// TestFullProofDebtDetection reproduces testable property 5 using the
// S5 scenario shape: a network whose outbound sum exceeds its inbound
// sum plus prior credit must appear in the debtor list.
func TestFullProofDebtDetection(t *testing.T) {
	tree0 := exittree.New()
	tree1 := exittree.New()

	priorNet0 := balance.NewBalanceTree()
	_ = priorNet0.Credit(types.TokenInfo{OriginNetwork: 0}, uint256.NewInt(2))
	priorNet1 := balance.NewBalanceTree()
	_ = priorNet1.Credit(types.TokenInfo{OriginNetwork: 0}, uint256.NewInt(1))

	batches := []certificate.Batch{
		{
			OriginNetwork:        0,
			PrevLocalExitTree:    tree0,
			PrevLocalExitRoot:    tree0.Root(),
			PrevLocalBalanceTree: priorNet0,
			Withdrawals:          []types.Withdrawal{withdrawalTo(1, 10)},
		},
		{
			OriginNetwork:        1,
			PrevLocalExitTree:    tree1,
			PrevLocalExitRoot:    tree1.Root(),
			PrevLocalBalanceTree: priorNet1,
			Withdrawals:          []types.Withdrawal{withdrawalTo(0, 1)},
		},
	}

	_, _, err := FullProof(batches)
	var notEnough *NotEnoughBalanceError
	if !errors.As(err, &notEnough) {
		t.Fatalf("expected NotEnoughBalanceError, got %v", err)
	}
	found := false
	for _, d := range notEnough.Debtors {
		if d == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected network 0 among debtors, got %v", notEnough.Debtors)
	}
}

// TestLeafProofOrderSensitivity reproduces testable property 6: permuting
// withdrawals within a batch changes the new exit root but not the
// resulting balance flows (so the aggregate hash, which is order
// insensitive up to commutative arithmetic, stays equal).
func TestLeafProofOrderSensitivity(t *testing.T) {
	w1 := withdrawalTo(1, 10)
	w2 := withdrawalTo(1, 20)

	batchA := certificate.Batch{
		OriginNetwork:     0,
		PrevLocalExitTree: exittree.New(),
		PrevLocalExitRoot: exittree.New().Root(),
		Withdrawals:       []types.Withdrawal{w1, w2},
	}
	batchB := certificate.Batch{
		OriginNetwork:     0,
		PrevLocalExitTree: exittree.New(),
		PrevLocalExitRoot: exittree.New().Root(),
		Withdrawals:       []types.Withdrawal{w2, w1},
	}

	rootA, aggA, err := LeafProof(batchA)
	if err != nil {
		t.Fatalf("LeafProof A: %v", err)
	}
	rootB, aggB, err := LeafProof(batchB)
	if err != nil {
		t.Fatalf("LeafProof B: %v", err)
	}

	if rootA == rootB {
		t.Fatal("permuting withdrawals should change the exit root")
	}
	if aggA.Hash() != aggB.Hash() {
		t.Fatal("permuting withdrawals should not change the resulting aggregate hash")
	}
}
