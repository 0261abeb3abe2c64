package crypto

import "github.com/agglayer/pessimistic-proof-go/types"

// Hasher is the 2-to-1 compression capability the frontier Merkle
// accumulator is built against: a deterministic, collision-resistant merge
// of two digests into one. It is a capability, not a hierarchy — a single
// method, passed explicitly to anything that needs it.
type Hasher interface {
	Merge(left, right types.Digest) types.Digest
}

// Keccak256Hasher is the production Hasher: concatenate the two 32-byte
// inputs in order and apply Keccak-256. The bridge's on-chain verifier
// assumes this exact construction; no other merge function is compatible.
type Keccak256Hasher struct{}

// Merge implements Hasher.
func (Keccak256Hasher) Merge(left, right types.Digest) types.Digest {
	return Keccak256Hash(left[:], right[:])
}
