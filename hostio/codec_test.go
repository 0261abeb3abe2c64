package hostio

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/agglayer/pessimistic-proof-go/balance"
	"github.com/agglayer/pessimistic-proof-go/certificate"
	"github.com/agglayer/pessimistic-proof-go/exittree"
	"github.com/agglayer/pessimistic-proof-go/state"
	"github.com/agglayer/pessimistic-proof-go/types"
)

func TestEncodeDecodeBatchRoundTrip(t *testing.T) {
	tree := exittree.New()
	tree.Append(types.HexToDigest("01"))

	priorBalance := balance.NewBalanceTree()
	_ = priorBalance.Credit(types.TokenInfo{OriginNetwork: 0}, uint256.NewInt(42))

	original := certificate.Batch{
		OriginNetwork:        0,
		PrevLocalExitTree:    tree,
		PrevLocalExitRoot:    tree.Root(),
		PrevLocalBalanceTree: priorBalance,
		Withdrawals: []types.Withdrawal{
			{
				LeafType:    types.LeafTypeAsset,
				TokenInfo:   types.TokenInfo{OriginNetwork: 0, OriginTokenAddress: types.HexToAddress("aa")},
				DestNetwork: 1,
				DestAddress: types.HexToAddress("bb"),
				Amount:      uint256.NewInt(123456789),
				Metadata:    []byte("hello"),
			},
		},
	}

	encoded, err := EncodeBatch(original)
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}

	decoded, err := DecodeBatch(encoded)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}

	if decoded.OriginNetwork != original.OriginNetwork {
		t.Errorf("OriginNetwork = %d, want %d", decoded.OriginNetwork, original.OriginNetwork)
	}
	if decoded.PrevLocalExitRoot != original.PrevLocalExitRoot {
		t.Errorf("PrevLocalExitRoot mismatch")
	}
	if decoded.PrevLocalExitTree.Root() != original.PrevLocalExitTree.Root() {
		t.Errorf("reconstructed exit tree root mismatch")
	}
	if len(decoded.Withdrawals) != 1 {
		t.Fatalf("expected 1 withdrawal, got %d", len(decoded.Withdrawals))
	}
	got := decoded.Withdrawals[0]
	if got.Amount.Uint64() != 123456789 {
		t.Errorf("amount = %d, want 123456789", got.Amount.Uint64())
	}
	if string(got.Metadata) != "hello" {
		t.Errorf("metadata = %q, want %q", got.Metadata, "hello")
	}
	if got.DestAddress != original.Withdrawals[0].DestAddress {
		t.Errorf("dest address mismatch")
	}

	gotBalance := decoded.PrevLocalBalanceTree.Balance(types.TokenInfo{OriginNetwork: 0})
	if gotBalance.Credit.Uint64() != 42 {
		t.Errorf("prior balance credit = %d, want 42", gotBalance.Credit.Uint64())
	}
}

func TestEncodeDecodeCertificateRoundTrip(t *testing.T) {
	original := certificate.Certificate{
		OriginNetwork:     7,
		PrevLocalExitRoot: types.HexToDigest("deadbeef"),
		Withdrawals: []types.Withdrawal{
			{TokenInfo: types.TokenInfo{OriginNetwork: 7}, DestNetwork: 8, Amount: uint256.NewInt(1)},
		},
	}

	encoded, err := EncodeCertificate(original)
	if err != nil {
		t.Fatalf("EncodeCertificate: %v", err)
	}
	decoded, err := DecodeCertificate(encoded)
	if err != nil {
		t.Fatalf("DecodeCertificate: %v", err)
	}

	if decoded.OriginNetwork != original.OriginNetwork {
		t.Errorf("OriginNetwork mismatch")
	}
	if decoded.PrevLocalExitRoot != original.PrevLocalExitRoot {
		t.Errorf("PrevLocalExitRoot mismatch")
	}
	if len(decoded.Withdrawals) != 1 || decoded.Withdrawals[0].Amount.Uint64() != 1 {
		t.Fatalf("withdrawal round trip failed: %+v", decoded.Withdrawals)
	}
}

func TestCommitLeafProofLength(t *testing.T) {
	agg := balance.NewAggregateByNetwork()
	out := CommitLeafProof(types.Digest{1}, types.Digest{2}, agg)
	if len(out) != 96 {
		t.Fatalf("commit length = %d, want 96", len(out))
	}
}

func TestCommitFullProofRoundTrip(t *testing.T) {
	checkpoint := map[types.NetworkId]state.Checkpoint{
		0: {ExitRoot: types.Digest{1}, BalanceRoot: types.Digest{2}},
		1: {ExitRoot: types.Digest{3}, BalanceRoot: types.Digest{4}},
	}

	encoded, err := CommitFullProof(checkpoint)
	if err != nil {
		t.Fatalf("CommitFullProof: %v", err)
	}

	decoded, err := DecodeFullProofCommit(encoded)
	if err != nil {
		t.Fatalf("DecodeFullProofCommit: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 networks, got %d", len(decoded))
	}
	if decoded[0] != checkpoint[0] || decoded[1] != checkpoint[1] {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestCommitFullProofDeterministicAcrossMapOrder(t *testing.T) {
	a := map[types.NetworkId]state.Checkpoint{
		0: {ExitRoot: types.Digest{1}},
		5: {ExitRoot: types.Digest{5}},
		2: {ExitRoot: types.Digest{2}},
	}
	encoded1, _ := CommitFullProof(a)
	encoded2, _ := CommitFullProof(a)
	if string(encoded1) != string(encoded2) {
		t.Fatal("CommitFullProof should be deterministic across calls")
	}
}
