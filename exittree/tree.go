// Package exittree implements the frontier-based Merkle accumulator used
// as each network's local exit tree: a constant-space representation of a
// fixed-depth (32), append-only Merkle tree that supports O(depth) append
// and O(depth) root computation without ever storing internal nodes.
//
// The design mirrors the teacher's ssz package (see Merkleize/zeroHashes in
// the SSZ merkleization helpers this was adapted from), specialized to a
// single fixed depth, a single Hasher, and an append-only frontier instead
// of a generic chunk list.
package exittree

import (
	"fmt"
	"math/bits"

	"github.com/agglayer/pessimistic-proof-go/crypto"
	"github.com/agglayer/pessimistic-proof-go/types"
)

// Depth is the fixed height of every local exit tree. It is an external
// contract with the bridge contracts and is never parameterized at runtime.
const Depth = 32

// MaxLeaves is the maximum number of leaves a tree of this depth can hold.
const MaxLeaves = uint64(1) << Depth

// LocalExitTree is an append-only, fixed-depth Merkle accumulator. Its
// zero value is not ready for use; construct one with New, FromLeaves, or
// FromParts.
//
// Invariant: after leaf_count = n appends, for every bit i set in n,
// frontier[i] holds the root of the most recently completed subtree of
// height i. Entries at other indices are stale and must never be read
// directly — only Root and Append may touch them.
type LocalExitTree struct {
	leafCount uint32
	frontier  [Depth]types.Digest
	hasher    crypto.Hasher
}

// New creates an empty LocalExitTree using the production Keccak-256 hasher.
func New() *LocalExitTree {
	return NewWithHasher(crypto.Keccak256Hasher{})
}

// NewWithHasher creates an empty LocalExitTree using an explicit Hasher.
// Implementers needing a non-production merge function (tests, alternate
// digest widths) use this instead of New.
func NewWithHasher(h crypto.Hasher) *LocalExitTree {
	return &LocalExitTree{hasher: h}
}

// FromLeaves builds a tree by appending every leaf in order. A convenience
// over repeated calls to Append.
func FromLeaves(leaves []types.Digest) *LocalExitTree {
	t := New()
	for _, leaf := range leaves {
		t.Append(leaf)
	}
	return t
}

// FromParts reconstructs a tree from a host-supplied leaf count and
// frontier, using the production Keccak-256 hasher. The caller is
// responsible for supplying a leaf_count/frontier pair that satisfies the
// frontier invariant: no validation is performed here, because a root
// computed from an inconsistent state simply will not match the caller's
// claimed root, and that mismatch is exactly what the leaf proof checks.
func FromParts(leafCount uint32, frontier [Depth]types.Digest) *LocalExitTree {
	return &LocalExitTree{
		leafCount: leafCount,
		frontier:  frontier,
		hasher:    crypto.Keccak256Hasher{},
	}
}

// LeafCount returns the number of leaves appended so far.
func (t *LocalExitTree) LeafCount() uint32 { return t.leafCount }

// Frontier returns a copy of the current frontier array. Entries at
// indices whose bit is clear in LeafCount() are stale and must not be
// interpreted as subtree roots.
func (t *LocalExitTree) Frontier() [Depth]types.Digest { return t.frontier }

// Clone returns an independent copy of the tree.
func (t *LocalExitTree) Clone() *LocalExitTree {
	c := *t
	return &c
}

// Append inserts a new leaf into the accumulator, restoring the frontier
// invariant for the incremented leaf count. Appending past the tree's
// capacity (2^Depth leaves) is a programmer error and panics rather than
// silently wrapping the leaf count.
func (t *LocalExitTree) Append(leaf types.Digest) {
	if uint64(t.leafCount)+1 > MaxLeaves {
		panic(fmt.Sprintf("exittree: cannot append past capacity of %d leaves", MaxLeaves))
	}

	n := t.leafCount
	// Height of the subtree this insertion completes: the number of
	// trailing zero bits of n+1.
	height := bits.TrailingZeros32(n + 1)

	entry := leaf
	for h := 0; h < height; h++ {
		entry = t.hasher.Merge(t.frontier[h], entry)
	}
	t.frontier[height] = entry
	t.leafCount = n + 1
}

// Root computes the tree's current Merkle root in O(Depth) time, without
// mutating any state. Bits of leaf_count select, at each height, whether
// the frontier holds a real left subtree (bit set) or the height
// contributes a virtual empty right sibling (bit clear).
func (t *LocalExitTree) Root() types.Digest {
	var root, emptyAtHeight types.Digest

	for h := 0; h < Depth; h++ {
		if (t.leafCount>>uint(h))&1 == 1 {
			root = t.hasher.Merge(t.frontier[h], root)
		} else {
			root = t.hasher.Merge(root, emptyAtHeight)
		}
		emptyAtHeight = t.hasher.Merge(emptyAtHeight, emptyAtHeight)
	}

	return root
}
