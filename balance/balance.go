// Package balance implements per-token credit/debit bookkeeping for a
// single network, and the cross-network aggregation of that bookkeeping
// that the full proof's conservation check runs against.
//
// A balance is kept as an unsigned (credit, debit) pair rather than a
// signed integer: the underlying arithmetic type (uint256.Int) is
// unsigned-only, and debits that temporarily exceed credits mid-batch
// must still serialize deterministically. has_debt surfaces the
// otherwise-implicit sign.
package balance

import (
	"errors"
	"sort"

	"github.com/holiman/uint256"

	"github.com/agglayer/pessimistic-proof-go/crypto"
	"github.com/agglayer/pessimistic-proof-go/types"
)

// ErrOverflow is returned when a credit or debit would overflow a 256-bit
// unsigned integer. This is a programmer/economic-bound violation, not an
// expected proof outcome; callers should treat it as fatal to the
// surrounding proof, matching the "no silent wraparound" requirement.
var ErrOverflow = errors.New("balance: arithmetic overflow")

// Balance is one token's credit/debit pair within one network's ledger.
// The zero value is a valid empty balance (0, 0).
type Balance struct {
	Credit *uint256.Int
	Debit  *uint256.Int
}

// NewBalance returns an empty (0, 0) balance.
func NewBalance() *Balance {
	return &Balance{Credit: new(uint256.Int), Debit: new(uint256.Int)}
}

func (b *Balance) ensure() {
	if b.Credit == nil {
		b.Credit = new(uint256.Int)
	}
	if b.Debit == nil {
		b.Debit = new(uint256.Int)
	}
}

// AddCredit increases credit by amount, failing rather than wrapping on
// overflow.
func (b *Balance) AddCredit(amount *uint256.Int) error {
	b.ensure()
	var sum uint256.Int
	if sum.AddOverflow(b.Credit, amount) {
		return ErrOverflow
	}
	b.Credit = &sum
	return nil
}

// AddDebit increases debit by amount, failing rather than wrapping on
// overflow.
func (b *Balance) AddDebit(amount *uint256.Int) error {
	b.ensure()
	var sum uint256.Int
	if sum.AddOverflow(b.Debit, amount) {
		return ErrOverflow
	}
	b.Debit = &sum
	return nil
}

// HasDebt reports whether this balance's debit exceeds its credit.
func (b *Balance) HasDebt() bool {
	b.ensure()
	return b.Debit.Gt(b.Credit)
}

// ApplyWithdraw settles the balance once it is known not to be in debt:
// credit absorbs debit and debit resets to zero, establishing the
// steady-state invariant debit <= credit (here, debit == 0) for the
// persisted state. Callers must check HasDebt before calling this; it
// panics if the balance is in debt, since that would make the subtraction
// underflow.
func (b *Balance) ApplyWithdraw() {
	b.ensure()
	if b.HasDebt() {
		panic("balance: ApplyWithdraw called on a balance in debt")
	}
	var settled uint256.Int
	settled.Sub(b.Credit, b.Debit)
	b.Credit = &settled
	b.Debit = new(uint256.Int)
}

// Merge folds other's credit and debit into b.
func (b *Balance) Merge(other *Balance) error {
	b.ensure()
	other.ensure()
	if err := b.AddCredit(other.Credit); err != nil {
		return err
	}
	return b.AddDebit(other.Debit)
}

// Hash computes Keccak256(credit || debit), each a 32-byte big-endian
// encoding.
func (b *Balance) Hash() types.Digest {
	b.ensure()
	creditBytes := b.Credit.Bytes32()
	debitBytes := b.Debit.Bytes32()
	return crypto.Keccak256Hash(creditBytes[:], debitBytes[:])
}

// BalanceTree is an ordered mapping from TokenInfo to Balance for a single
// network. Entries absent from the map behave as an empty (0, 0) balance;
// Hash iterates in ascending TokenInfo order, and HasDebt's answer does
// not depend on order, so results are independent of insertion order.
type BalanceTree struct {
	balances map[types.TokenInfo]*Balance
}

// NewBalanceTree returns an empty BalanceTree.
func NewBalanceTree() *BalanceTree {
	return &BalanceTree{balances: make(map[types.TokenInfo]*Balance)}
}

func (t *BalanceTree) entry(token types.TokenInfo) *Balance {
	if t.balances == nil {
		t.balances = make(map[types.TokenInfo]*Balance)
	}
	b, ok := t.balances[token]
	if !ok {
		b = NewBalance()
		t.balances[token] = b
	}
	return b
}

// Credit adds amount to the credit side of token's balance.
func (t *BalanceTree) Credit(token types.TokenInfo, amount *uint256.Int) error {
	return t.entry(token).AddCredit(amount)
}

// Debit adds amount to the debit side of token's balance.
func (t *BalanceTree) Debit(token types.TokenInfo, amount *uint256.Int) error {
	return t.entry(token).AddDebit(amount)
}

// Balance returns the balance recorded for token, or an empty (0, 0)
// balance if token has never been touched. The returned value is a copy
// reference into the tree's own entry and must not be mutated directly by
// callers outside this package.
func (t *BalanceTree) Balance(token types.TokenInfo) *Balance {
	if t.balances == nil {
		return NewBalance()
	}
	if b, ok := t.balances[token]; ok {
		return b
	}
	return NewBalance()
}

// Tokens returns every TokenInfo held in the tree, in ascending order.
func (t *BalanceTree) Tokens() []types.TokenInfo {
	return t.sortedTokens()
}

// HasDebt reports whether any token in the tree has debit exceeding credit.
func (t *BalanceTree) HasDebt() bool {
	for _, b := range t.balances {
		if b.HasDebt() {
			return true
		}
	}
	return false
}

// Merge folds every entry of other into t, by TokenInfo.
func (t *BalanceTree) Merge(other *BalanceTree) error {
	for _, token := range other.sortedTokens() {
		if err := t.entry(token).Merge(other.balances[token]); err != nil {
			return err
		}
	}
	return nil
}

// sortedTokens returns the tree's TokenInfo keys in ascending order, the
// iteration order required wherever the tree's contents feed a hash
// preimage or a merge must be deterministic.
func (t *BalanceTree) sortedTokens() []types.TokenInfo {
	tokens := make([]types.TokenInfo, 0, len(t.balances))
	for token := range t.balances {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Less(tokens[j]) })
	return tokens
}

// Hash iterates entries in ascending TokenInfo order and feeds
// token.Hash() || balance.Hash() into a running Keccak-256, matching the
// on-chain balance-tree commitment.
func (t *BalanceTree) Hash() types.Digest {
	preimage := make([]byte, 0, len(t.balances)*2*types.DigestLength)
	for _, token := range t.sortedTokens() {
		tokenHash := crypto.HashTokenInfo(token.OriginNetwork, token.OriginTokenAddress)
		balanceHash := t.balances[token].Hash()
		preimage = append(preimage, tokenHash[:]...)
		preimage = append(preimage, balanceHash[:]...)
	}
	return crypto.Keccak256Hash(preimage)
}

// ApplyWithdraw settles every balance in the tree. Callers must have
// already confirmed HasDebt is false for the whole tree.
func (t *BalanceTree) ApplyWithdraw() {
	for _, b := range t.balances {
		b.ApplyWithdraw()
	}
}

// Clone returns a deep copy of t.
func (t *BalanceTree) Clone() *BalanceTree {
	c := NewBalanceTree()
	for token, b := range t.balances {
		c.balances[token] = &Balance{
			Credit: new(uint256.Int).Set(b.Credit),
			Debit:  new(uint256.Int).Set(b.Debit),
		}
	}
	return c
}
