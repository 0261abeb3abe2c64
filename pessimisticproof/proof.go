// Package pessimisticproof implements the two proof algorithms described by
// the AggLayer pessimistic-proof system: the per-batch leaf proof (append
// withdrawals to a local exit tree and derive the balance flows they
// induce) and the cross-network full proof (run every batch's leaf proof,
// collate the resulting balance flows, and reject the whole proof if any
// network ends up in debt on any token).
package pessimisticproof

import (
	"fmt"
	"time"

	"github.com/agglayer/pessimistic-proof-go/balance"
	"github.com/agglayer/pessimistic-proof-go/certificate"
	"github.com/agglayer/pessimistic-proof-go/crypto"
	"github.com/agglayer/pessimistic-proof-go/log"
	"github.com/agglayer/pessimistic-proof-go/metrics"
	"github.com/agglayer/pessimistic-proof-go/types"
)

var logger = log.Default().Module("pessimisticproof")

// InvalidLocalExitRootError reports that a batch's claimed prior root does
// not match the root recomputed from its local exit tree. This always
// means the caller supplied an inconsistent (tree, root) pair.
type InvalidLocalExitRootError struct {
	Got      types.Digest
	Expected types.Digest
}

func (e *InvalidLocalExitRootError) Error() string {
	return fmt.Sprintf("pessimisticproof: invalid local exit root: got %s, expected %s", e.Got.Hex(), e.Expected.Hex())
}

// NotEnoughBalanceError reports that, after collating every batch's balance
// flows, at least one network ended up with debit exceeding credit on some
// token. Debtors names the offending networks, not the specific tokens
// (spec note: richer per-token reporting is a known future extension).
type NotEnoughBalanceError struct {
	Debtors []types.NetworkId
}

func (e *NotEnoughBalanceError) Error() string {
	return fmt.Sprintf("pessimisticproof: not enough balance, debtors=%v", e.Debtors)
}

// LeafProof verifies a single batch's claimed prior root, appends its
// withdrawals to the local exit tree, and returns the resulting new root
// together with the AggregateByNetwork induced by the batch's
// withdrawals (seeded with the batch's prior balance tree under its
// origin network).
func LeafProof(batch certificate.Batch) (types.Digest, *balance.AggregateByNetwork, error) {
	start := time.Now()
	defer func() { metrics.LeafProofDuration.Observe(float64(time.Since(start).Milliseconds())) }()

	computedRoot := batch.PrevLocalExitTree.Root()
	if computedRoot != batch.PrevLocalExitRoot {
		metrics.LeafProofRejections.Inc()
		logger.Warn("invalid local exit root", "origin_network", batch.OriginNetwork,
			"got", computedRoot.Hex(), "expected", batch.PrevLocalExitRoot.Hex())
		return types.Digest{}, nil, &InvalidLocalExitRootError{Got: computedRoot, Expected: batch.PrevLocalExitRoot}
	}

	tree := batch.PrevLocalExitTree.Clone()
	aggregate := balance.NewAggregateByNetwork()
	if batch.PrevLocalBalanceTree != nil {
		aggregate.SeedNetwork(batch.OriginNetwork, batch.PrevLocalBalanceTree)
	}

	for _, w := range batch.Withdrawals {
		tree.Append(crypto.LeafHash(w))
		if err := aggregate.Insert(batch.OriginNetwork, w); err != nil {
			return types.Digest{}, nil, err
		}
	}
	metrics.ExitTreeAppends.Add(int64(len(batch.Withdrawals)))
	metrics.ExitTreeLeafCount.Set(int64(tree.LeafCount()))

	newRoot := tree.Root()
	metrics.LeafProofsVerified.Inc()
	metrics.LeafProofRate.Mark(1)
	logger.Debug("leaf proof verified", "origin_network", batch.OriginNetwork,
		"withdrawals", len(batch.Withdrawals), "new_root", newRoot.Hex())

	return newRoot, aggregate, nil
}

// FullProof runs LeafProof independently over every batch, collates the
// resulting aggregators, rejects the whole proof if any network is left
// in debt, and otherwise returns the per-network exit root and balance
// root that the full-proof variant commits.
func FullProof(batches []certificate.Batch) (exitRoots map[types.NetworkId]types.Digest, balanceRoots map[types.NetworkId]types.Digest, err error) {
	start := time.Now()
	defer func() { metrics.FullProofDuration.Observe(float64(time.Since(start).Milliseconds())) }()

	exitRoots = make(map[types.NetworkId]types.Digest, len(batches))
	collated := balance.NewAggregateByNetwork()

	for _, batch := range batches {
		newRoot, aggregate, err := LeafProof(batch)
		if err != nil {
			return nil, nil, err
		}
		exitRoots[batch.OriginNetwork] = newRoot
		if err := collated.Merge(aggregate); err != nil {
			return nil, nil, err
		}
	}

	if debtors := collated.Debtors(); len(debtors) > 0 {
		metrics.BalanceDebtRejections.Inc()
		logger.Warn("full proof rejected for debt", "debtors", debtors)
		return nil, nil, &NotEnoughBalanceError{Debtors: debtors}
	}

	// Settle every network's ledger now that it is known not to be in
	// debt: credit absorbs debit, matching proof.rs's placement of
	// apply_withdraw between the debt check and committing the output
	// balance roots.
	collated.ApplyWithdraw()

	var tokensTracked int64
	balanceRoots = make(map[types.NetworkId]types.Digest, len(collated.Networks()))
	for _, network := range collated.Networks() {
		tree := collated.Tree(network)
		balanceRoots[network] = tree.Hash()
		tokensTracked += int64(len(tree.Tokens()))
	}
	metrics.BalanceTokensTracked.Set(tokensTracked)

	metrics.FullProofsVerified.Inc()
	logger.Info("full proof verified", "networks", len(balanceRoots))

	return exitRoots, balanceRoots, nil
}

// CommitLeafProof returns the three digests a leaf proof commits, in the
// fixed order external callers depend on: initial_local_exit_root,
// new_local_exit_root, aggregate.hash().
func CommitLeafProof(initialRoot, newRoot types.Digest, aggregate *balance.AggregateByNetwork) [3]types.Digest {
	return [3]types.Digest{initialRoot, newRoot, aggregate.Hash()}
}
