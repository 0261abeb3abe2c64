package types

import "github.com/holiman/uint256"

// LeafType discriminates what kind of cross-network transfer a Withdrawal
// represents.
type LeafType uint8

const (
	// LeafTypeAsset is a plain token transfer.
	LeafTypeAsset LeafType = 0
	// LeafTypeMessage is an arbitrary message, carrying no guaranteed
	// value semantics beyond what Amount/Metadata encode.
	LeafTypeMessage LeafType = 1
)

// Withdrawal is a single outbound transfer recorded by the origin network's
// local exit tree. A withdrawal from the origin network's perspective is a
// deposit from the destination network's perspective: the same event, two
// names.
type Withdrawal struct {
	LeafType    LeafType
	TokenInfo   TokenInfo
	DestNetwork NetworkId
	DestAddress Address
	Amount      *uint256.Int
	Metadata    []byte
}

// AmountOrZero returns w.Amount, or a fresh zero value if it is nil. Batches
// arriving from an untrusted host should never carry a nil Amount, but
// defaulting avoids a nil pointer panic deep in balance bookkeeping.
func (w Withdrawal) AmountOrZero() *uint256.Int {
	if w.Amount == nil {
		return new(uint256.Int)
	}
	return w.Amount
}
