package workload

import "sync/atomic"

// BankAccount is the in-process balance of the bank in the bank-mediated economy.
//
// It is not persisted: a new run starts again at the initial value, so validating a store that
// was not freshly loaded reports a spurious deviation. It is also not tied to the store's
// transaction scopes, so a crash between a bank change and the matching account write leaves
// the two out of step.
type BankAccount struct {
	balance atomic.Int64
}

// NewBankAccount creates a bank holding the initial balance.
func NewBankAccount(initial int64) *BankAccount {
	b := &BankAccount{}
	b.balance.Store(initial)

	return b
}

// Balance returns the current balance.
func (b *BankAccount) Balance() int64 {
	return b.balance.Load()
}

// Withdraw reserves one unit. It returns false, leaving the balance unchanged, when the bank is empty.
func (b *BankAccount) Withdraw() bool {
	if b.balance.Add(-1) < 0 {
		b.balance.Add(1)
		return false
	}

	return true
}

// Deposit adds one unit, also used to give back a reserved unit.
func (b *BankAccount) Deposit() {
	b.balance.Add(1)
}
