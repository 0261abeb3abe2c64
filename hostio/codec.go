package hostio

import (
	"github.com/holiman/uint256"

	"github.com/agglayer/pessimistic-proof-go/balance"
	"github.com/agglayer/pessimistic-proof-go/certificate"
	"github.com/agglayer/pessimistic-proof-go/exittree"
	"github.com/agglayer/pessimistic-proof-go/rlp"
	"github.com/agglayer/pessimistic-proof-go/types"
)

// encoderPool backs every canonical encode call in this package, reusing
// buffers across batches the way the teacher's rlp package intends for
// high-throughput encoding.
var encoderPool = rlp.NewEncoderPool()

// EncodeBatch returns the canonical binary serialization of a Batch, as
// the host writes it to the guest's input stream.
func EncodeBatch(batch certificate.Batch) ([]byte, error) {
	wire := WireBatch{
		OriginNetwork:     uint32(batch.OriginNetwork),
		PrevLocalExitRoot: batch.PrevLocalExitRoot,
	}
	if batch.PrevLocalExitTree != nil {
		wire.PrevLeafCount = batch.PrevLocalExitTree.LeafCount()
		wire.PrevFrontier = batch.PrevLocalExitTree.Frontier()
	}
	if batch.PrevLocalBalanceTree != nil {
		wire.PrevLocalBalanceTree = encodeBalanceTree(batch.PrevLocalBalanceTree)
	}
	for _, w := range batch.Withdrawals {
		wire.Withdrawals = append(wire.Withdrawals, ToWireWithdrawal(w))
	}
	return encoderPool.EncodeBytes(wire)
}

// DecodeBatch reconstructs a Batch from its canonical binary
// serialization.
func DecodeBatch(data []byte) (certificate.Batch, error) {
	var wire WireBatch
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return certificate.Batch{}, err
	}

	batch := certificate.Batch{
		OriginNetwork:        types.NetworkId(wire.OriginNetwork),
		PrevLocalExitTree:    exittree.FromParts(wire.PrevLeafCount, wire.PrevFrontier),
		PrevLocalExitRoot:    wire.PrevLocalExitRoot,
		PrevLocalBalanceTree: decodeBalanceTree(wire.PrevLocalBalanceTree),
	}
	for _, w := range wire.Withdrawals {
		batch.Withdrawals = append(batch.Withdrawals, w.FromWire())
	}
	return batch, nil
}

// EncodeCertificate returns the canonical binary serialization of a
// Certificate.
func EncodeCertificate(cert certificate.Certificate) ([]byte, error) {
	wire := WireCertificate{
		OriginNetwork:     uint32(cert.OriginNetwork),
		PrevLocalExitRoot: cert.PrevLocalExitRoot,
	}
	for _, w := range cert.Withdrawals {
		wire.Withdrawals = append(wire.Withdrawals, ToWireWithdrawal(w))
	}
	return encoderPool.EncodeBytes(wire)
}

// DecodeCertificate reconstructs a Certificate from its canonical binary
// serialization.
func DecodeCertificate(data []byte) (certificate.Certificate, error) {
	var wire WireCertificate
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return certificate.Certificate{}, err
	}

	cert := certificate.Certificate{
		OriginNetwork:     types.NetworkId(wire.OriginNetwork),
		PrevLocalExitRoot: wire.PrevLocalExitRoot,
	}
	for _, w := range wire.Withdrawals {
		cert.Withdrawals = append(cert.Withdrawals, w.FromWire())
	}
	return cert, nil
}

// EncodeBatches serializes a slice of Batches for the full-proof variant,
// which takes one batch per participating network rather than a single
// batch.
func EncodeBatches(batches []certificate.Batch) ([]byte, error) {
	wires := make([]WireBatch, 0, len(batches))
	for _, batch := range batches {
		wire := WireBatch{
			OriginNetwork:     uint32(batch.OriginNetwork),
			PrevLocalExitRoot: batch.PrevLocalExitRoot,
		}
		if batch.PrevLocalExitTree != nil {
			wire.PrevLeafCount = batch.PrevLocalExitTree.LeafCount()
			wire.PrevFrontier = batch.PrevLocalExitTree.Frontier()
		}
		if batch.PrevLocalBalanceTree != nil {
			wire.PrevLocalBalanceTree = encodeBalanceTree(batch.PrevLocalBalanceTree)
		}
		for _, w := range batch.Withdrawals {
			wire.Withdrawals = append(wire.Withdrawals, ToWireWithdrawal(w))
		}
		wires = append(wires, wire)
	}
	return encoderPool.EncodeBytes(wires)
}

// DecodeBatches reverses EncodeBatches.
func DecodeBatches(data []byte) ([]certificate.Batch, error) {
	var wires []WireBatch
	if err := rlp.DecodeBytes(data, &wires); err != nil {
		return nil, err
	}
	batches := make([]certificate.Batch, 0, len(wires))
	for _, wire := range wires {
		batch := certificate.Batch{
			OriginNetwork:        types.NetworkId(wire.OriginNetwork),
			PrevLocalExitTree:    exittree.FromParts(wire.PrevLeafCount, wire.PrevFrontier),
			PrevLocalExitRoot:    wire.PrevLocalExitRoot,
			PrevLocalBalanceTree: decodeBalanceTree(wire.PrevLocalBalanceTree),
		}
		for _, w := range wire.Withdrawals {
			batch.Withdrawals = append(batch.Withdrawals, w.FromWire())
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func encodeBalanceTree(tree *balance.BalanceTree) []WireBalanceEntry {
	var entries []WireBalanceEntry
	for _, token := range tree.Tokens() {
		b := tree.Balance(token)
		entries = append(entries, WireBalanceEntry{
			OriginNetwork:      uint32(token.OriginNetwork),
			OriginTokenAddress: token.OriginTokenAddress,
			Credit:             types.Digest(b.Credit.Bytes32()),
			Debit:              types.Digest(b.Debit.Bytes32()),
		})
	}
	return entries
}

func decodeBalanceTree(entries []WireBalanceEntry) *balance.BalanceTree {
	tree := balance.NewBalanceTree()
	for _, e := range entries {
		token := types.TokenInfo{OriginNetwork: types.NetworkId(e.OriginNetwork), OriginTokenAddress: e.OriginTokenAddress}
		_ = tree.Credit(token, new(uint256.Int).SetBytes32(e.Credit[:]))
		_ = tree.Debit(token, new(uint256.Int).SetBytes32(e.Debit[:]))
	}
	return tree
}
