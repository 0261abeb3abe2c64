// Package certificate defines the inputs a CDK network submits to the
// AggLayer: a Batch (for the standalone leaf proof) and a Certificate
// (for the stateful full proof running against a persisted State).
package certificate

import (
	"github.com/agglayer/pessimistic-proof-go/balance"
	"github.com/agglayer/pessimistic-proof-go/exittree"
	"github.com/agglayer/pessimistic-proof-go/types"
)

// Batch is a network's submission of a contiguous sequence of withdrawals,
// accompanied by a prior-state claim: the local exit tree and local
// balance tree the network claims to be building on.
type Batch struct {
	OriginNetwork        types.NetworkId
	PrevLocalExitTree    *exittree.LocalExitTree
	PrevLocalExitRoot    types.Digest
	PrevLocalBalanceTree *balance.BalanceTree
	Withdrawals          []types.Withdrawal
}

// Certificate is the stateful counterpart of Batch: it carries only the
// claimed prior exit root (the prior balance tree and exit tree are read
// from the State the certificate is applied against), matching the
// external submission shape a CDK network sends to the AggLayer.
type Certificate struct {
	OriginNetwork     types.NetworkId
	PrevLocalExitRoot types.Digest
	Withdrawals       []types.Withdrawal
}
