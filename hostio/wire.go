// Package hostio implements the canonical binary serialization the host
// uses to hand batches and certificates to the proof guest, and the
// commit-channel encoding the guest writes its public outputs to. A
// state.State value has no wire encoding in this package.
//
// The domain types in certificate, balance, and exittree are not encoded
// directly: *uint256.Int does not round-trip through the teacher's
// reflection-based rlp encoder, which only special-cases *big.Int. Each
// domain type has a wire mirror here with Amount/Credit/Debit carried as
// fixed 32-byte big-endian digests instead, converted via
// uint256.Int.Bytes32/SetBytes32 at the encode/decode boundary.
package hostio

import (
	"github.com/holiman/uint256"

	"github.com/agglayer/pessimistic-proof-go/types"
)

// WireWithdrawal mirrors types.Withdrawal for serialization.
type WireWithdrawal struct {
	LeafType           uint8
	OriginNetwork      uint32
	OriginTokenAddress types.Address
	DestNetwork        uint32
	DestAddress        types.Address
	Amount             types.Digest
	Metadata           []byte
}

// ToWireWithdrawal converts a domain Withdrawal into its wire mirror.
func ToWireWithdrawal(w types.Withdrawal) WireWithdrawal {
	return WireWithdrawal{
		LeafType:           uint8(w.LeafType),
		OriginNetwork:      uint32(w.TokenInfo.OriginNetwork),
		OriginTokenAddress: w.TokenInfo.OriginTokenAddress,
		DestNetwork:        uint32(w.DestNetwork),
		DestAddress:        w.DestAddress,
		Amount:             types.Digest(w.AmountOrZero().Bytes32()),
		Metadata:           w.Metadata,
	}
}

// FromWire converts a wire mirror back into a domain Withdrawal.
func (w WireWithdrawal) FromWire() types.Withdrawal {
	amount := new(uint256.Int).SetBytes32(w.Amount[:])
	return types.Withdrawal{
		LeafType:    types.LeafType(w.LeafType),
		TokenInfo:   types.TokenInfo{OriginNetwork: types.NetworkId(w.OriginNetwork), OriginTokenAddress: w.OriginTokenAddress},
		DestNetwork: types.NetworkId(w.DestNetwork),
		DestAddress: w.DestAddress,
		Amount:      amount,
		Metadata:    w.Metadata,
	}
}

// WireBalanceEntry mirrors one BalanceTree entry for serialization: a
// token identity paired with its credit/debit pair.
type WireBalanceEntry struct {
	OriginNetwork      uint32
	OriginTokenAddress types.Address
	Credit             types.Digest
	Debit              types.Digest
}

// WireBatch mirrors certificate.Batch for serialization. The prior local
// exit tree is carried as its leaf count and frontier, the minimal state
// needed to reconstruct it (exittree.FromParts).
type WireBatch struct {
	OriginNetwork        uint32
	PrevLeafCount        uint32
	PrevFrontier         [32]types.Digest
	PrevLocalExitRoot    types.Digest
	PrevLocalBalanceTree []WireBalanceEntry
	Withdrawals          []WireWithdrawal
}

// WireCertificate mirrors certificate.Certificate for serialization.
type WireCertificate struct {
	OriginNetwork     uint32
	PrevLocalExitRoot types.Digest
	Withdrawals       []WireWithdrawal
}

// WireCheckpointEntry mirrors one state.Checkpoint entry for the
// full-proof commit, pairing a network id with its exit and balance
// roots.
type WireCheckpointEntry struct {
	Network     uint32
	ExitRoot    types.Digest
	BalanceRoot types.Digest
}
