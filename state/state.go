// Package state holds the AggLayer's persisted view across certificates:
// for every network, its current local exit tree and local balance tree.
// State is an ordinary in-memory value owned by the host; nothing in this
// package touches disk.
package state

import (
	"fmt"
	"sort"

	"github.com/agglayer/pessimistic-proof-go/balance"
	"github.com/agglayer/pessimistic-proof-go/certificate"
	"github.com/agglayer/pessimistic-proof-go/crypto"
	"github.com/agglayer/pessimistic-proof-go/exittree"
	"github.com/agglayer/pessimistic-proof-go/log"
	"github.com/agglayer/pessimistic-proof-go/metrics"
	"github.com/agglayer/pessimistic-proof-go/types"
)

var logger = log.Default().Module("state")

// InvalidLocalExitRootError reports that a certificate's claimed prior
// root does not match the root of the network's current local exit tree.
type InvalidLocalExitRootError struct {
	Got      types.Digest
	Expected types.Digest
}

func (e *InvalidLocalExitRootError) Error() string {
	return fmt.Sprintf("state: invalid local exit root: got %s, expected %s", e.Got.Hex(), e.Expected.Hex())
}

// HasDebtError reports that applying a certificate would leave its origin
// network's balance tree with at least one token in debt.
type HasDebtError struct {
	Network types.NetworkId
}

func (e *HasDebtError) Error() string {
	return fmt.Sprintf("state: network %d has debt", e.Network)
}

// Checkpoint is the public (exit_root, balance_root) pair committed for
// one network.
type Checkpoint struct {
	ExitRoot    types.Digest
	BalanceRoot types.Digest
}

// State is the AggLayer's global view: every participating network's
// current local exit tree and local balance tree.
type State struct {
	GlobalExitTree    map[types.NetworkId]*exittree.LocalExitTree
	GlobalBalanceTree map[types.NetworkId]*balance.BalanceTree
}

// New returns an empty State.
func New() *State {
	return &State{
		GlobalExitTree:    make(map[types.NetworkId]*exittree.LocalExitTree),
		GlobalBalanceTree: make(map[types.NetworkId]*balance.BalanceTree),
	}
}

func (s *State) exitTree(network types.NetworkId) *exittree.LocalExitTree {
	t, ok := s.GlobalExitTree[network]
	if !ok {
		t = exittree.New()
		s.GlobalExitTree[network] = t
	}
	return t
}

func (s *State) balanceTree(network types.NetworkId) *balance.BalanceTree {
	t, ok := s.GlobalBalanceTree[network]
	if !ok {
		t = balance.NewBalanceTree()
		s.GlobalBalanceTree[network] = t
	}
	return t
}

// GetCheckpoint derives the public (exit_root, balance_root) map from the
// current state, one entry per network in GlobalExitTree. The map has no
// iteration order; Networks returns the ids sorted.
func (s *State) GetCheckpoint() map[types.NetworkId]Checkpoint {
	checkpoint := make(map[types.NetworkId]Checkpoint, len(s.GlobalExitTree))
	for network, tree := range s.GlobalExitTree {
		checkpoint[network] = Checkpoint{
			ExitRoot:    tree.Root(),
			BalanceRoot: s.balanceTree(network).Hash(),
		}
	}
	return checkpoint
}

// Networks returns every network id touched by the exit tree side of the
// state, in ascending order. Useful for deterministic iteration when
// serializing a Checkpoint map for the commit channel.
func (s *State) Networks() []types.NetworkId {
	networks := make([]types.NetworkId, 0, len(s.GlobalExitTree))
	for n := range s.GlobalExitTree {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool { return networks[i] < networks[j] })
	return networks
}

// ApplyCertificate applies a single certificate against the state: it
// recomputes the origin network's prior root, appends the certificate's
// withdrawals to a clone of that network's local exit tree, updates a
// clone of the global balance tree, and rejects the certificate
// (leaving the state untouched) if the origin network's own balance
// tree ends up in debt. On success it commits both trees back into the
// state and returns the new exit root.
func (s *State) ApplyCertificate(cert certificate.Certificate) (types.Digest, error) {
	origin := cert.OriginNetwork

	prevExitTree, ok := s.GlobalExitTree[origin]
	if !ok {
		prevExitTree = exittree.New()
	}
	newExitTree := prevExitTree.Clone()
	computedRoot := newExitTree.Root()
	if computedRoot != cert.PrevLocalExitRoot {
		return types.Digest{}, &InvalidLocalExitRootError{Got: computedRoot, Expected: cert.PrevLocalExitRoot}
	}
	for _, w := range cert.Withdrawals {
		newExitTree.Append(crypto.LeafHash(w))
	}

	newBalanceTrees := make(map[types.NetworkId]*balance.BalanceTree, len(s.GlobalBalanceTree))
	for network, tree := range s.GlobalBalanceTree {
		newBalanceTrees[network] = tree.Clone()
	}
	for _, w := range cert.Withdrawals {
		originTree, ok := newBalanceTrees[origin]
		if !ok {
			originTree = balance.NewBalanceTree()
			newBalanceTrees[origin] = originTree
		}
		if err := originTree.Debit(w.TokenInfo, w.AmountOrZero()); err != nil {
			return types.Digest{}, err
		}
		destTree, ok := newBalanceTrees[w.DestNetwork]
		if !ok {
			destTree = balance.NewBalanceTree()
			newBalanceTrees[w.DestNetwork] = destTree
		}
		if err := destTree.Credit(w.TokenInfo, w.AmountOrZero()); err != nil {
			return types.Digest{}, err
		}
	}

	if originTree, ok := newBalanceTrees[origin]; ok && originTree.HasDebt() {
		metrics.BalanceDebtRejections.Inc()
		return types.Digest{}, &HasDebtError{Network: origin}
	}

	s.GlobalExitTree[origin] = newExitTree
	s.GlobalBalanceTree = newBalanceTrees

	newRoot := newExitTree.Root()
	logger.Info("certificate applied", "origin_network", origin, "new_root", newRoot.Hex())
	return newRoot, nil
}

// ApplyCertificates applies every certificate in order, stopping at the
// first failure. The spec does not prescribe stricter linkage checking
// among certificates beyond sequential application.
func (s *State) ApplyCertificates(certs []certificate.Certificate) error {
	for _, c := range certs {
		if _, err := s.ApplyCertificate(c); err != nil {
			return err
		}
	}
	return nil
}
