package ledger

import (
	"sync"

	"github.com/quillbank/ledgerd/internal/domain"
)

// Ledger owns the account registry and the undo history stack. It is the
// sole entry point for executing and undoing operations and for bulk
// interest accrual.
//
// A single mutex guards the registry, every balance and the history stack
// together: transfers and their inverses touch two accounts, so
// coarse-grained locking is the correctness boundary, not an optimization.
// Multiple independent Ledger instances can coexist (one per test, say);
// nothing here is package-level state.
type Ledger struct {
	mu          sync.Mutex
	savingsRate float64
	accounts    map[string]*Account
	order       []string // registration order, the stable order for listings
	history     []Operation
}

// New creates an empty ledger. A non-positive savingsRate falls back to
// DefaultSavingsRate.
func New(savingsRate float64) *Ledger {
	if savingsRate <= 0 {
		savingsRate = DefaultSavingsRate
	}
	return &Ledger{
		savingsRate: savingsRate,
		accounts:    make(map[string]*Account),
	}
}

// account is the internal lookup used by operations. Callers must hold mu.
func (l *Ledger) account(id string) (*Account, error) {
	a, ok := l.accounts[id]
	if !ok {
		return nil, &domain.ErrAccountNotFound{ID: id}
	}
	return a, nil
}

// OpenAccount constructs and registers a new account and returns its
// snapshot. The interest policy is fixed here by category and never changes.
func (l *Ledger) OpenAccount(name string, category domain.AccountCategory, initialBalance float64) (domain.Account, error) {
	if name == "" {
		return domain.Account{}, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	if !category.Valid() {
		return domain.Account{}, &domain.ErrValidation{Field: "category", Message: "must be checking or savings"}
	}
	if initialBalance < 0 {
		return domain.Account{}, &domain.ErrInvalidAmount{Amount: initialBalance}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a := newAccount(name, category, policyFor(category, l.savingsRate), initialBalance)
	l.accounts[a.id] = a
	l.order = append(l.order, a.id)
	return a.snapshot(), nil
}

// GetAccount returns a snapshot of one account. Absence is reported by the
// second return value, not an error.
func (l *Ledger) GetAccount(id string) (domain.Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[id]
	if !ok {
		return domain.Account{}, false
	}
	return a.snapshot(), true
}

// ListAccounts returns snapshots of all accounts in registration order.
func (l *Ledger) ListAccounts() []domain.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Account, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.accounts[id].snapshot())
	}
	return out
}

// Transactions returns an independent, ordered copy of one account's log.
func (l *Ledger) Transactions(id string) ([]domain.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[id]
	if !ok {
		return nil, false
	}
	return a.transactions(), true
}

// RenameAccount updates the display name. The name is the only mutable
// attribute outside the balance path.
func (l *Ledger) RenameAccount(id, name string) error {
	if name == "" {
		return &domain.ErrValidation{Field: "name", Message: "name is required"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a, err := l.account(id)
	if err != nil {
		return err
	}
	a.name = name
	return nil
}

// Execute applies the operation. On failure the error propagates and the
// operation never reaches the history stack; on success it is pushed,
// becoming the next candidate for UndoLast.
func (l *Ledger) Execute(op Operation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := op.apply(l); err != nil {
		return err
	}
	l.history = append(l.history, op)
	return nil
}

// UndoLast pops the most recent operation and applies its inverse. If the
// inverse fails the operation is pushed back on top of the stack and the
// state is as if the undo were never attempted. Returns the description of
// the undone operation.
func (l *Ledger) UndoLast() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.history) == 0 {
		return "", &domain.ErrNothingToUndo{}
	}

	op := l.history[len(l.history)-1]
	l.history = l.history[:len(l.history)-1]

	if err := op.invert(l); err != nil {
		l.history = append(l.history, op)
		return "", &domain.ErrUndoRejected{Operation: op.Description(), Err: err}
	}
	return op.Description(), nil
}

// AccrueInterestForAll runs interest accrual on every account in
// registration order and reports the amount credited to each. The bulk run
// is deliberately not recorded on the undo history: it cannot be reversed
// via UndoLast.
func (l *Ledger) AccrueInterestForAll() []domain.InterestAccrual {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.InterestAccrual, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, domain.InterestAccrual{
			AccountID: id,
			Amount:    l.accounts[id].accrueInterest(),
		})
	}
	return out
}

// History returns a read-only view of the undo stack, most recent last.
func (l *Ledger) History() []domain.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.HistoryEntry, len(l.history))
	for i, op := range l.history {
		out[i] = domain.HistoryEntry{Position: i + 1, Description: op.Description()}
	}
	return out
}
