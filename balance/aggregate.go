package balance

import (
	"sort"

	"github.com/agglayer/pessimistic-proof-go/crypto"
	"github.com/agglayer/pessimistic-proof-go/types"
)

// AggregateByNetwork is an ordered mapping from NetworkId to BalanceTree,
// covering every network touched while processing one or more batches. It
// is the aggregator the leaf proof returns and the full proof collates.
type AggregateByNetwork struct {
	trees map[types.NetworkId]*BalanceTree
}

// NewAggregateByNetwork returns an empty aggregator.
func NewAggregateByNetwork() *AggregateByNetwork {
	return &AggregateByNetwork{trees: make(map[types.NetworkId]*BalanceTree)}
}

func (a *AggregateByNetwork) tree(network types.NetworkId) *BalanceTree {
	if a.trees == nil {
		a.trees = make(map[types.NetworkId]*BalanceTree)
	}
	t, ok := a.trees[network]
	if !ok {
		t = NewBalanceTree()
		a.trees[network] = t
	}
	return t
}

// SeedNetwork installs tree as the starting BalanceTree for network,
// overwriting any existing entry. This is how a leaf proof seeds the
// aggregator with the origin network's prior balance tree before
// processing withdrawals (spec section 4.6 step 2).
func (a *AggregateByNetwork) SeedNetwork(network types.NetworkId, tree *BalanceTree) {
	if a.trees == nil {
		a.trees = make(map[types.NetworkId]*BalanceTree)
	}
	a.trees[network] = tree
}

// Insert records one withdrawal: it debits the origin network's ledger and
// credits the destination network's ledger for the same TokenInfo. Both
// sides touch the same token identity, which is what lets the full proof's
// conservation check operate per token across networks.
func (a *AggregateByNetwork) Insert(origin types.NetworkId, w types.Withdrawal) error {
	if err := a.tree(origin).Debit(w.TokenInfo, w.AmountOrZero()); err != nil {
		return err
	}
	return a.tree(w.DestNetwork).Credit(w.TokenInfo, w.AmountOrZero())
}

// Tree returns the BalanceTree recorded for network, or an empty tree if
// the network has never been touched.
func (a *AggregateByNetwork) Tree(network types.NetworkId) *BalanceTree {
	if a.trees == nil {
		return NewBalanceTree()
	}
	if t, ok := a.trees[network]; ok {
		return t
	}
	return NewBalanceTree()
}

// Merge folds every network's BalanceTree from other into a.
func (a *AggregateByNetwork) Merge(other *AggregateByNetwork) error {
	for _, network := range other.sortedNetworks() {
		if err := a.tree(network).Merge(other.trees[network]); err != nil {
			return err
		}
	}
	return nil
}

// sortedNetworks returns the aggregator's NetworkId keys in ascending
// order, the iteration order required by any operation whose result must
// be independent of map iteration order.
func (a *AggregateByNetwork) sortedNetworks() []types.NetworkId {
	networks := make([]types.NetworkId, 0, len(a.trees))
	for n := range a.trees {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool { return networks[i] < networks[j] })
	return networks
}

// Debtors returns the set of networks whose BalanceTree has at least one
// token in debt, in ascending NetworkId order.
func (a *AggregateByNetwork) Debtors() []types.NetworkId {
	var debtors []types.NetworkId
	for _, n := range a.sortedNetworks() {
		if a.trees[n].HasDebt() {
			debtors = append(debtors, n)
		}
	}
	return debtors
}

// Networks returns every network id the aggregator has an entry for, in
// ascending order.
func (a *AggregateByNetwork) Networks() []types.NetworkId {
	return a.sortedNetworks()
}

// Hash computes the aggregator's commitment digest: a single Keccak-256
// run over, for each network in ascending order, the network id (4 bytes
// big-endian) followed by every (token.hash(), balance.hash()) pair in
// that network's BalanceTree, also in ascending TokenInfo order. This is
// the aggregate_deposits.hash() committed after a leaf proof (spec
// section 4.8) and must stay bit-identical across implementations.
func (a *AggregateByNetwork) Hash() types.Digest {
	var preimage []byte
	for _, network := range a.sortedNetworks() {
		networkBytes := network.BigEndianBytes()
		preimage = append(preimage, networkBytes[:]...)

		tree := a.trees[network]
		for _, token := range tree.sortedTokens() {
			tokenHash := crypto.HashTokenInfo(token.OriginNetwork, token.OriginTokenAddress)
			balanceHash := tree.balances[token].Hash()
			preimage = append(preimage, tokenHash[:]...)
			preimage = append(preimage, balanceHash[:]...)
		}
	}
	return crypto.Keccak256Hash(preimage)
}

// ApplyWithdraw settles every network's BalanceTree in the aggregator.
// Callers must have already confirmed Debtors is empty.
func (a *AggregateByNetwork) ApplyWithdraw() {
	for _, tree := range a.trees {
		tree.ApplyWithdraw()
	}
}
