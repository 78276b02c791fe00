package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/quillbank/ledgerd/internal/domain"
	"github.com/quillbank/ledgerd/internal/infra/observability"
	"github.com/quillbank/ledgerd/internal/ledger"
	"github.com/quillbank/ledgerd/internal/service"

	"go.uber.org/zap"
)

func newService(t *testing.T) *service.LedgerService {
	t.Helper()
	return service.NewLedgerService(
		ledger.New(ledger.DefaultSavingsRate),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func TestLedgerService_DepositTransferUndoFlow(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	alice, err := svc.OpenAccount(ctx, "alice", domain.CategoryChecking, 500)
	if err != nil {
		t.Fatalf("open alice: %v", err)
	}
	bob, err := svc.OpenAccount(ctx, "bob", domain.CategorySavings, 0)
	if err != nil {
		t.Fatalf("open bob: %v", err)
	}

	if _, err := svc.Deposit(ctx, alice.ID, 250); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	from, to, err := svc.Transfer(ctx, alice.ID, bob.ID, 300)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if from.Balance != 450 {
		t.Errorf("expected alice balance 450, got %.2f", from.Balance)
	}
	if to.Balance != 300 {
		t.Errorf("expected bob balance 300, got %.2f", to.Balance)
	}

	undone, err := svc.UndoLast(ctx)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if undone == "" {
		t.Error("expected a description of the undone operation")
	}

	acct, err := svc.GetAccount(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if acct.Balance != 750 {
		t.Errorf("expected alice balance 750 after undo, got %.2f", acct.Balance)
	}
}

func TestLedgerService_GetAccountNotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetAccount(context.Background(), "no-such-id")
	var notFound *domain.ErrAccountNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestLedgerService_GetTransactionsNotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetTransactions(context.Background(), "no-such-id")
	var notFound *domain.ErrAccountNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestLedgerService_WithdrawInsufficientFunds(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	acct, err := svc.OpenAccount(ctx, "alice", domain.CategoryChecking, 100)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = svc.Withdraw(ctx, acct.ID, 150)
	var insufficient *domain.ErrInsufficientFunds
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if insufficient.Available != 100 || insufficient.Required != 150 {
		t.Errorf("expected available=100 required=150, got %+v", insufficient)
	}
}

func TestLedgerService_UndoEmptyHistory(t *testing.T) {
	svc := newService(t)

	_, err := svc.UndoLast(context.Background())
	var nothing *domain.ErrNothingToUndo
	if !errors.As(err, &nothing) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestLedgerService_RenameAccount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	acct, err := svc.OpenAccount(ctx, "old name", domain.CategoryChecking, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	renamed, err := svc.RenameAccount(ctx, acct.ID, "new name")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "new name" {
		t.Errorf("expected 'new name', got '%s'", renamed.Name)
	}
}

func TestLedgerService_AccrueInterest(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	checking, err := svc.OpenAccount(ctx, "checking", domain.CategoryChecking, 1000)
	if err != nil {
		t.Fatalf("open checking: %v", err)
	}
	savings, err := svc.OpenAccount(ctx, "savings", domain.CategorySavings, 1000)
	if err != nil {
		t.Fatalf("open savings: %v", err)
	}

	accruals := svc.AccrueInterest(ctx)
	if len(accruals) != 2 {
		t.Fatalf("expected 2 accrual entries, got %d", len(accruals))
	}
	for _, a := range accruals {
		switch a.AccountID {
		case checking.ID:
			if a.Amount != 0 {
				t.Errorf("checking must not accrue, got %.2f", a.Amount)
			}
		case savings.ID:
			if a.Amount != 30 {
				t.Errorf("expected savings accrual 30, got %.2f", a.Amount)
			}
		default:
			t.Errorf("unexpected account id %s", a.AccountID)
		}
	}

	// Accrual is not undoable.
	if _, err := svc.UndoLast(ctx); err == nil {
		t.Fatal("expected nothing to undo after accrual-only activity")
	}
}

func TestLedgerService_HistoryTracksOperations(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	acct, err := svc.OpenAccount(ctx, "alice", domain.CategoryChecking, 100)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Deposit(ctx, acct.ID, 10); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := svc.Withdraw(ctx, acct.ID, 5); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	history := svc.History(ctx)
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Position != 1 || history[1].Position != 2 {
		t.Errorf("expected positions 1 and 2, got %d and %d", history[0].Position, history[1].Position)
	}
}
