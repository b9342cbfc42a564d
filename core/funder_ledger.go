package core

import (
	"fmt"
	"sync"
)

// FunderLedger is the per-funder, process-wide prepaid balance (spec.md
// §4.7), structured the same way the teacher's AccountManager wraps a
// ledger's balance map with a dedicated mutex
// (core/account_and_balance_operations.go).
type FunderLedger struct {
	mu     sync.RWMutex
	byID   map[AccountID]*FunderInfo
}

// NewFunderLedger returns an empty funder balance ledger.
func NewFunderLedger() *FunderLedger {
	return &FunderLedger{byID: make(map[AccountID]*FunderInfo)}
}

// AddToBalance credits amount to a funder's prepaid balance, creating the
// entry if this is the funder's first deposit.
func (l *FunderLedger) AddToBalance(id AccountID, amount Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, ok := l.byID[id]
	if !ok {
		info = &FunderInfo{Balance: ZeroBalance()}
		l.byID[id] = info
	}
	info.Balance = info.Balance.Add(amount)
}

// WithdrawFromBalance debits amount from a funder's prepaid balance,
// failing if the funder has insufficient funds.
func (l *FunderLedger) WithdrawFromBalance(id AccountID, amount Balance) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("%w: funder %s", ErrInsufficientBalance, id)
	}
	newBal, err := info.Balance.SubChecked(amount)
	if err != nil {
		return err
	}
	info.Balance = newBal
	return nil
}

// DebitForKeys atomically charges a funder for key issuance, drawing first
// from attachedDeposit and the remainder from their prepaid balance,
// returning any surplus (spec.md §4.5 "Final deposit demanded...").
func (l *FunderLedger) DebitForKeys(id AccountID, required, attachedDeposit Balance) (surplus Balance, err error) {
	if attachedDeposit.Cmp(required) >= 0 {
		return attachedDeposit.Sub(required), nil
	}
	shortfall := required.Sub(attachedDeposit)
	l.mu.Lock()
	defer l.mu.Unlock()
	info, ok := l.byID[id]
	if !ok || info.Balance.LessThan(shortfall) {
		return Balance{}, fmt.Errorf("%w: funder %s needs %s more", ErrInsufficientDeposit, id, shortfall)
	}
	info.Balance = info.Balance.Sub(shortfall)
	return ZeroBalance(), nil
}

// GetBalance returns the funder's current prepaid balance.
func (l *FunderLedger) GetBalance(id AccountID) Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	info, ok := l.byID[id]
	if !ok {
		return ZeroBalance()
	}
	return info.Balance
}

// SetMetadata overwrites or append-merges a funder's metadata blob; append
// (shallow key-merge) is the default per spec.md §4.7.
func (l *FunderLedger) SetMetadata(id AccountID, metadata map[string]any, overwrite bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, ok := l.byID[id]
	if !ok {
		info = &FunderInfo{Balance: ZeroBalance()}
		l.byID[id] = info
	}
	if overwrite || info.Metadata == nil {
		info.Metadata = metadata
		return
	}
	for k, v := range metadata {
		info.Metadata[k] = v
	}
}

// GetMetadata returns a funder's metadata blob, or nil if unset.
func (l *FunderLedger) GetMetadata(id AccountID) map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	info, ok := l.byID[id]
	if !ok {
		return nil
	}
	return info.Metadata
}
