package crypto

import (
	"github.com/agglayer/pessimistic-proof-go/types"
)

// LeafHash computes the canonical 32-byte Merkle leaf for a withdrawal. The
// preimage is fixed-width and unseparated, 113 bytes total, and must stay
// bit-identical to the bridge contract's getLeafValue:
//
//	leaf_type            1 byte
//	token origin network 4 bytes  (big-endian)
//	token origin address 20 bytes
//	dest network         4 bytes  (big-endian)
//	dest address         20 bytes
//	amount               32 bytes (big-endian, zero-padded)
//	keccak256(metadata)  32 bytes
//
// metadata is hashed first so the preimage length never varies with
// payload size.
func LeafHash(w types.Withdrawal) types.Digest {
	var preimage [113]byte

	preimage[0] = byte(w.LeafType)

	origNet := w.TokenInfo.OriginNetwork.BigEndianBytes()
	copy(preimage[1:5], origNet[:])
	copy(preimage[5:25], w.TokenInfo.OriginTokenAddress[:])

	destNet := w.DestNetwork.BigEndianBytes()
	copy(preimage[25:29], destNet[:])
	copy(preimage[29:49], w.DestAddress[:])

	amount := w.AmountOrZero().Bytes32()
	copy(preimage[49:81], amount[:])

	metadataHash := Keccak256(w.Metadata)
	copy(preimage[81:113], metadataHash)

	return Keccak256Hash(preimage[:])
}

// HashTokenInfo computes Keccak256(origin_network || origin_token_address),
// the per-token key digest fed into BalanceTree.Hash.
func HashTokenInfo(origin types.NetworkId, addr types.Address) types.Digest {
	originBytes := origin.BigEndianBytes()
	return Keccak256Hash(originBytes[:], addr[:])
}
