package hostio

import (
	"sort"

	"github.com/agglayer/pessimistic-proof-go/balance"
	"github.com/agglayer/pessimistic-proof-go/rlp"
	"github.com/agglayer/pessimistic-proof-go/state"
	"github.com/agglayer/pessimistic-proof-go/types"
)

// CommitLeafProof returns the guest's fixed-order public output for the
// leaf-proof variant: initial_local_exit_root || new_local_exit_root ||
// aggregate.hash(), 96 bytes total. This is the only public output; any
// off-chain index into it is part of the external contract (spec section
// 6), so the three digests are concatenated directly rather than wrapped
// in a further envelope.
func CommitLeafProof(initialRoot, newRoot types.Digest, aggregate *balance.AggregateByNetwork) []byte {
	out := make([]byte, 0, 3*types.DigestLength)
	out = append(out, initialRoot[:]...)
	out = append(out, newRoot[:]...)
	aggHash := aggregate.Hash()
	out = append(out, aggHash[:]...)
	return out
}

// CommitFullProof serializes the full-proof variant's public output: the
// per-network (exit_root, balance_root) checkpoint map, in ascending
// NetworkId order so the committed bytes are independent of map
// iteration order.
func CommitFullProof(checkpoint map[types.NetworkId]state.Checkpoint) ([]byte, error) {
	networks := make([]types.NetworkId, 0, len(checkpoint))
	for n := range checkpoint {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool { return networks[i] < networks[j] })

	entries := make([]WireCheckpointEntry, 0, len(networks))
	for _, n := range networks {
		c := checkpoint[n]
		entries = append(entries, WireCheckpointEntry{
			Network:     uint32(n),
			ExitRoot:    c.ExitRoot,
			BalanceRoot: c.BalanceRoot,
		})
	}
	return encoderPool.EncodeBytes(entries)
}

// DecodeFullProofCommit reverses CommitFullProof, for harnesses that need
// to read back a committed checkpoint.
func DecodeFullProofCommit(data []byte) (map[types.NetworkId]state.Checkpoint, error) {
	var entries []WireCheckpointEntry
	if err := rlp.DecodeBytes(data, &entries); err != nil {
		return nil, err
	}
	checkpoint := make(map[types.NetworkId]state.Checkpoint, len(entries))
	for _, e := range entries {
		checkpoint[types.NetworkId(e.Network)] = state.Checkpoint{ExitRoot: e.ExitRoot, BalanceRoot: e.BalanceRoot}
	}
	return checkpoint, nil
}

