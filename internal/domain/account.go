package domain

import "time"

// ============================================================
// Accounts
// ============================================================

// AccountCategory determines whether an account accrues interest.
type AccountCategory string

const (
	CategoryChecking AccountCategory = "checking"
	CategorySavings  AccountCategory = "savings"
)

// Valid reports whether the category is one of the two known kinds.
func (c AccountCategory) Valid() bool {
	return c == CategoryChecking || c == CategorySavings
}

// Account is a read-only snapshot of a ledger account.
type Account struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  AccountCategory `json:"category"`
	Balance   float64         `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// ============================================================
// Transactions
// ============================================================

// TransactionKind classifies a single balance change. Amounts are always
// positive magnitudes; the kind carries the direction.
type TransactionKind string

const (
	KindDeposit     TransactionKind = "deposit"
	KindWithdraw    TransactionKind = "withdraw"
	KindTransferIn  TransactionKind = "transfer_in"
	KindTransferOut TransactionKind = "transfer_out"
	KindInterest    TransactionKind = "interest"
)

// Signed returns the amount with the sign implied by the kind.
func (k TransactionKind) Signed(amount float64) float64 {
	switch k {
	case KindWithdraw, KindTransferOut:
		return -amount
	default:
		return amount
	}
}

// Transaction is one immutable entry of an account's log.
type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Kind        TransactionKind `json:"kind"`
	Amount      float64         `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
}

// ============================================================
// Ledger views
// ============================================================

// HistoryEntry describes one operation on the undo stack, most recent last.
type HistoryEntry struct {
	Position    int    `json:"position"`
	Description string `json:"description"`
}

// InterestAccrual reports the interest credited to one account by a bulk
// accrual run. Amount is zero for non-accruing accounts.
type InterestAccrual struct {
	AccountID string  `json:"account_id"`
	Amount    float64 `json:"amount"`
}
