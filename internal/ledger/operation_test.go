package ledger

import (
	"errors"
	"testing"

	"github.com/quillbank/ledgerd/internal/domain"
)

// White-box tests for the operation state machine and the undo-rejection
// path. Rejection needs a balance change that bypasses the history stack,
// which only internal mutation (or a concurrent collaborator in a future
// design) can produce, so it is exercised here rather than through the
// public API.

func TestOperation_ApplyOnlyOnce(t *testing.T) {
	l := New(DefaultSavingsRate)
	acct, err := l.OpenAccount("A", domain.CategoryChecking, 100)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	op := NewDeposit(acct.ID, 10)
	if err := l.Execute(op); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	if err := l.Execute(op); !errors.Is(err, errAlreadyApplied) {
		t.Fatalf("expected errAlreadyApplied, got %v", err)
	}
	if len(l.history) != 1 {
		t.Errorf("re-execution must not duplicate the history entry, got %d", len(l.history))
	}
}

func TestOperation_InvertRequiresApplied(t *testing.T) {
	l := New(DefaultSavingsRate)
	acct, err := l.OpenAccount("A", domain.CategoryChecking, 100)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	op := NewWithdraw(acct.ID, 10)
	if err := op.invert(l); !errors.Is(err, errNotApplied) {
		t.Fatalf("expected errNotApplied, got %v", err)
	}
}

func TestOperation_NoReapplyAfterRevert(t *testing.T) {
	l := New(DefaultSavingsRate)
	acct, err := l.OpenAccount("A", domain.CategoryChecking, 100)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	op := NewDeposit(acct.ID, 10)
	if err := l.Execute(op); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := l.UndoLast(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	// Reverted is terminal: there is no redo transition.
	if err := l.Execute(op); !errors.Is(err, errAlreadyApplied) {
		t.Fatalf("expected errAlreadyApplied after revert, got %v", err)
	}
}

func TestUndoLast_RejectedDepositReversal(t *testing.T) {
	l := New(DefaultSavingsRate)
	acct, err := l.OpenAccount("A", domain.CategoryChecking, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.Execute(NewDeposit(acct.ID, 100)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// Drain the balance behind the history's back.
	if err := l.accounts[acct.ID].withdraw(80, domain.KindWithdraw, "drain"); err != nil {
		t.Fatalf("drain: %v", err)
	}

	_, err = l.UndoLast()
	var rejected *domain.ErrUndoRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrUndoRejected, got %v", err)
	}
	var insufficient *domain.ErrInsufficientFunds
	if !errors.As(err, &insufficient) {
		t.Errorf("expected wrapped ErrInsufficientFunds, got %v", err)
	}

	// The operation is back on top and the balance is untouched by the
	// failed undo.
	if len(l.history) != 1 {
		t.Errorf("expected operation restored to history, got %d entries", len(l.history))
	}
	if got := l.accounts[acct.ID].balance; got != 20 {
		t.Errorf("expected balance 20 after rejected undo, got %.2f", got)
	}

	// A later top-up makes the same undo succeed.
	if err := l.accounts[acct.ID].deposit(80, domain.KindDeposit, "top up"); err != nil {
		t.Fatalf("top up: %v", err)
	}
	if _, err := l.UndoLast(); err != nil {
		t.Fatalf("expected undo to succeed after top-up, got %v", err)
	}
	if got := l.accounts[acct.ID].balance; got != 0 {
		t.Errorf("expected balance 0, got %.2f", got)
	}
}

func TestUndoLast_RejectedTransferReversal(t *testing.T) {
	l := New(DefaultSavingsRate)
	from, err := l.OpenAccount("from", domain.CategoryChecking, 100)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	to, err := l.OpenAccount("to", domain.CategoryChecking, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.Execute(NewTransfer(from.ID, to.ID, 100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// Drain the destination so the reversing withdrawal cannot succeed.
	if err := l.accounts[to.ID].withdraw(100, domain.KindWithdraw, "drain"); err != nil {
		t.Fatalf("drain: %v", err)
	}

	_, err = l.UndoLast()
	var rejected *domain.ErrUndoRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrUndoRejected, got %v", err)
	}
	if len(l.history) != 1 {
		t.Errorf("expected transfer restored to history, got %d entries", len(l.history))
	}
	// Neither leg of the inverse ran.
	if got := l.accounts[from.ID].balance; got != 0 {
		t.Errorf("expected source untouched at 0, got %.2f", got)
	}
}

func TestPolicy_TwoVariants(t *testing.T) {
	accruing := policyFor(domain.CategorySavings, 0.03)
	if got := accruing.Calculate(1000); got != 30 {
		t.Errorf("expected 30, got %.2f", got)
	}
	if accruing.Description() == "" {
		t.Error("expected non-empty description")
	}

	flat := policyFor(domain.CategoryChecking, 0.03)
	if got := flat.Calculate(1000); got != 0 {
		t.Errorf("expected 0 for non-accruing policy, got %.2f", got)
	}
}
