package ledger

import (
	"errors"
	"fmt"

	"github.com/quillbank/ledgerd/internal/domain"
)

// Operation is a reversible unit of work bound to one or two accounts by id.
// Exactly three implementers exist: DepositOp, WithdrawOp and TransferOp.
// Operations resolve their accounts by id at call time rather than holding
// long-lived pointers, and are only ever applied and inverted by the Ledger
// while it holds its mutex.
type Operation interface {
	// apply mutates state and moves the operation Created -> Applied.
	apply(l *Ledger) error
	// invert reverses a prior successful apply (Applied -> Reverted). The
	// reversal appends new transactions; it never erases history.
	invert(l *Ledger) error
	// Description is a short human-readable summary for the history view.
	Description() string
}

var (
	errAlreadyApplied = errors.New("operation already applied")
	errNotApplied     = errors.New("operation is not in the applied state")
)

type opState uint8

const (
	opCreated opState = iota
	opApplied
	opReverted
)

// ============================================================
// Deposit
// ============================================================

// DepositOp deposits a positive amount into one account.
type DepositOp struct {
	accountID string
	amount    float64
	state     opState
}

// NewDeposit creates a deposit operation. Validation happens at apply time.
func NewDeposit(accountID string, amount float64) *DepositOp {
	return &DepositOp{accountID: accountID, amount: amount}
}

func (o *DepositOp) Description() string {
	return fmt.Sprintf("deposit %.2f into %s", o.amount, o.accountID)
}

func (o *DepositOp) apply(l *Ledger) error {
	if o.state != opCreated {
		return errAlreadyApplied
	}
	acct, err := l.account(o.accountID)
	if err != nil {
		return err
	}
	if err := acct.deposit(o.amount, domain.KindDeposit, "deposit"); err != nil {
		return err
	}
	o.state = opApplied
	return nil
}

// invert withdraws the deposited amount back out. If intervening operations
// have drained the balance below the amount, the withdrawal fails and the
// undo is rejected, not forced.
func (o *DepositOp) invert(l *Ledger) error {
	if o.state != opApplied {
		return errNotApplied
	}
	acct, err := l.account(o.accountID)
	if err != nil {
		return err
	}
	if err := acct.withdraw(o.amount, domain.KindWithdraw, "reversal of deposit"); err != nil {
		return err
	}
	o.state = opReverted
	return nil
}

// ============================================================
// Withdraw
// ============================================================

// WithdrawOp withdraws a positive amount from one account.
type WithdrawOp struct {
	accountID string
	amount    float64
	state     opState
}

// NewWithdraw creates a withdrawal operation.
func NewWithdraw(accountID string, amount float64) *WithdrawOp {
	return &WithdrawOp{accountID: accountID, amount: amount}
}

func (o *WithdrawOp) Description() string {
	return fmt.Sprintf("withdraw %.2f from %s", o.amount, o.accountID)
}

func (o *WithdrawOp) apply(l *Ledger) error {
	if o.state != opCreated {
		return errAlreadyApplied
	}
	acct, err := l.account(o.accountID)
	if err != nil {
		return err
	}
	if err := acct.withdraw(o.amount, domain.KindWithdraw, "withdrawal"); err != nil {
		return err
	}
	o.state = opApplied
	return nil
}

// invert deposits the amount back. A positive deposit cannot fail on
// validation grounds, so inverting a withdrawal always succeeds.
func (o *WithdrawOp) invert(l *Ledger) error {
	if o.state != opApplied {
		return errNotApplied
	}
	acct, err := l.account(o.accountID)
	if err != nil {
		return err
	}
	if err := acct.deposit(o.amount, domain.KindDeposit, "reversal of withdrawal"); err != nil {
		return err
	}
	o.state = opReverted
	return nil
}

// ============================================================
// Transfer
// ============================================================

// TransferOp moves a positive amount between two accounts. Its two legs are
// logically atomic: both accounts are resolved and the source balance
// checked before any mutation, and the deposit leg cannot fail once the
// withdrawal has succeeded.
type TransferOp struct {
	fromID string
	toID   string
	amount float64
	state  opState
}

// NewTransfer creates a transfer operation.
func NewTransfer(fromID, toID string, amount float64) *TransferOp {
	return &TransferOp{fromID: fromID, toID: toID, amount: amount}
}

func (o *TransferOp) Description() string {
	return fmt.Sprintf("transfer %.2f from %s to %s", o.amount, o.fromID, o.toID)
}

func (o *TransferOp) apply(l *Ledger) error {
	if o.state != opCreated {
		return errAlreadyApplied
	}
	if o.fromID == o.toID {
		return &domain.ErrValidation{Field: "to_account_id", Message: "source and destination are the same account"}
	}
	// Resolve both ends before touching either balance.
	from, err := l.account(o.fromID)
	if err != nil {
		return err
	}
	to, err := l.account(o.toID)
	if err != nil {
		return err
	}
	if err := from.withdraw(o.amount, domain.KindTransferOut, "transfer to "+to.name); err != nil {
		return err
	}
	if err := to.deposit(o.amount, domain.KindTransferIn, "transfer from "+from.name); err != nil {
		// Unreachable for a positive amount; noted for symmetry.
		return err
	}
	o.state = opApplied
	return nil
}

// invert moves the amount back from the destination to the source. If the
// destination balance has since dropped below the amount the reversing
// withdrawal fails and the whole undo is rejected.
func (o *TransferOp) invert(l *Ledger) error {
	if o.state != opApplied {
		return errNotApplied
	}
	from, err := l.account(o.fromID)
	if err != nil {
		return err
	}
	to, err := l.account(o.toID)
	if err != nil {
		return err
	}
	if err := to.withdraw(o.amount, domain.KindTransferOut, "reversal of transfer from "+from.name); err != nil {
		return err
	}
	if err := from.deposit(o.amount, domain.KindTransferIn, "reversal of transfer to "+to.name); err != nil {
		return err
	}
	o.state = opReverted
	return nil
}
