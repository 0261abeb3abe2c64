// Package crypto provides the hashing primitives used throughout the
// pessimistic-proof pipeline: a plain Keccak-256 function, and the Hasher
// capability the frontier Merkle accumulator is built against.
package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/agglayer/pessimistic-proof-go/types"
)

// Keccak256 calculates the Keccak-256 hash of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates Keccak-256 over data and returns it as a
// types.Digest.
func Keccak256Hash(data ...[]byte) types.Digest {
	return types.BytesToDigest(Keccak256(data...))
}
