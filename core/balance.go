package core

import "math/big"

// Balance is an arbitrary-precision, non-negative quantity used for native
// currency and fungible-token amounts. The teacher's ledger uses *big.Int
// for MintBig/big-value accounting (see core/ledger.go); Keypom amounts can
// exceed uint64 (yoctoNEAR has 24 decimal places) so the same representation
// is used throughout the claim machine and funder ledger.
type Balance struct {
	v *big.Int
}

// ZeroBalance returns a Balance of value 0.
func ZeroBalance() Balance { return Balance{v: big.NewInt(0)} }

// NewBalance wraps an existing *big.Int. A nil input is treated as zero.
func NewBalance(v *big.Int) Balance {
	if v == nil {
		return ZeroBalance()
	}
	return Balance{v: new(big.Int).Set(v)}
}

// BalanceFromUint64 builds a Balance from a uint64 amount.
func BalanceFromUint64(v uint64) Balance {
	return Balance{v: new(big.Int).SetUint64(v)}
}

// BalanceFromString parses a decimal string amount, as used for FT
// "amount" fields and yoctoNEAR string literals on the wire.
func BalanceFromString(s string) (Balance, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Balance{}, ErrInvalidInput
	}
	if v.Sign() < 0 {
		return Balance{}, ErrInvalidInput
	}
	return Balance{v: v}, nil
}

func (b Balance) big() *big.Int {
	if b.v == nil {
		return big.NewInt(0)
	}
	return b.v
}

// String renders the decimal representation, matching the FT/Near wire
// convention of amounts-as-strings.
func (b Balance) String() string { return b.big().String() }

// IsZero reports whether the balance is exactly zero.
func (b Balance) IsZero() bool { return b.big().Sign() == 0 }

// Add returns a + b.
func (a Balance) Add(b Balance) Balance {
	return Balance{v: new(big.Int).Add(a.big(), b.big())}
}

// Sub returns a - b. The caller must ensure a >= b; SubChecked should be
// preferred anywhere underflow is a real possibility (pool accounting).
func (a Balance) Sub(b Balance) Balance {
	return Balance{v: new(big.Int).Sub(a.big(), b.big())}
}

// SubChecked returns a - b, or an error if the result would be negative.
func (a Balance) SubChecked(b Balance) (Balance, error) {
	if a.LessThan(b) {
		return Balance{}, ErrInsufficientBalance
	}
	return a.Sub(b), nil
}

// Mul returns a * n.
func (a Balance) Mul(n uint64) Balance {
	return Balance{v: new(big.Int).Mul(a.big(), new(big.Int).SetUint64(n))}
}

// LessThan reports whether a < b.
func (a Balance) LessThan(b Balance) bool { return a.big().Cmp(b.big()) < 0 }

// Cmp reports -1/0/1 for a</==/> b.
func (a Balance) Cmp(b Balance) int { return a.big().Cmp(b.big()) }

// Uint64 returns the balance truncated/converted to uint64; callers must
// only use this on values already known to fit (e.g. gas, not yoctoNEAR).
func (a Balance) Uint64() uint64 { return a.big().Uint64() }

// MulDivFloor returns floor(a * num / den), used to prorate a per-key total
// across a key's remaining uses without losing big.Int precision to an
// intermediate uint64 conversion. den must be non-zero.
func (a Balance) MulDivFloor(num, den uint64) Balance {
	if den == 0 {
		return ZeroBalance()
	}
	product := new(big.Int).Mul(a.big(), new(big.Int).SetUint64(num))
	return Balance{v: product.Div(product, new(big.Int).SetUint64(den))}
}
