// Package ledger implements the transactional core: accounts with
// append-only transaction logs, reversible operations, and a single-owner
// undo history. All mutation is serialized through the owning Ledger's
// mutex; nothing in this package starts goroutines or blocks.
package ledger

import (
	"time"

	"github.com/quillbank/ledgerd/internal/domain"

	"github.com/google/uuid"
)

// Account holds a balance and its transaction log. Mutators are unexported:
// external callers go through the Ledger, which serializes access and hands
// out snapshots only.
type Account struct {
	id        string
	name      string
	category  domain.AccountCategory
	balance   float64
	log       []domain.Transaction
	policy    InterestPolicy
	createdAt time.Time
}

func newAccount(name string, category domain.AccountCategory, policy InterestPolicy, initialBalance float64) *Account {
	a := &Account{
		id:        uuid.New().String(),
		name:      name,
		category:  category,
		policy:    policy,
		createdAt: time.Now(),
	}
	// The opening balance is recorded as a regular deposit so that the
	// balance always equals the signed sum of the log.
	if initialBalance > 0 {
		a.balance = initialBalance
		a.append(domain.KindDeposit, initialBalance, "opening balance")
	}
	return a
}

// deposit increases the balance and appends one transaction of the given
// kind. The kind is caller-specified so reversals and transfer legs record
// their own direction.
func (a *Account) deposit(amount float64, kind domain.TransactionKind, description string) error {
	if amount <= 0 {
		return &domain.ErrInvalidAmount{Amount: amount}
	}
	a.balance += amount
	a.append(kind, amount, description)
	return nil
}

// withdraw decreases the balance and appends one transaction. The balance
// never goes negative: overdrawing fails before any mutation.
func (a *Account) withdraw(amount float64, kind domain.TransactionKind, description string) error {
	if amount <= 0 {
		return &domain.ErrInvalidAmount{Amount: amount}
	}
	if amount > a.balance {
		return &domain.ErrInsufficientFunds{Available: a.balance, Required: amount}
	}
	a.balance -= amount
	a.append(kind, amount, description)
	return nil
}

// accrueInterest applies the account's bound policy. A zero computation is
// a no-op (no transaction appended), not an error. Returns the amount
// credited, possibly zero.
func (a *Account) accrueInterest() float64 {
	interest := a.policy.Calculate(a.balance)
	if interest <= 0 {
		return 0
	}
	a.balance += interest
	a.append(domain.KindInterest, interest, "interest accrual")
	return interest
}

func (a *Account) append(kind domain.TransactionKind, amount float64, description string) {
	a.log = append(a.log, domain.Transaction{
		ID:          uuid.New().String(),
		AccountID:   a.id,
		Kind:        kind,
		Amount:      amount,
		Timestamp:   time.Now(),
		Description: description,
	})
}

// snapshot returns a value copy safe to hand to callers.
func (a *Account) snapshot() domain.Account {
	return domain.Account{
		ID:        a.id,
		Name:      a.name,
		Category:  a.category,
		Balance:   a.balance,
		CreatedAt: a.createdAt,
	}
}

// transactions returns an independent copy of the log, insertion order
// preserved. Callers cannot mutate the account through it.
func (a *Account) transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(a.log))
	copy(out, a.log)
	return out
}
