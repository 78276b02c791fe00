// Package service provides the business logic layer (use cases) on top of
// the transactional core: account lifecycle, the four mutating operations,
// undo, bulk interest accrual, and the AI advisory orchestration.
package service

import (
	"context"
	"time"

	"github.com/quillbank/ledgerd/internal/domain"
	"github.com/quillbank/ledgerd/internal/infra/observability"
	"github.com/quillbank/ledgerd/internal/ledger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ledgerTracer = otel.Tracer("service/ledger")

// LedgerService exposes the ledger core to the presentation layer, adding
// tracing spans, metrics and structured logging around every entry point.
// The core itself stays synchronous; the ctx is for observability only.
type LedgerService struct {
	book    *ledger.Ledger
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(book *ledger.Ledger, metrics *observability.Metrics, logger *zap.Logger) *LedgerService {
	return &LedgerService{book: book, metrics: metrics, logger: logger}
}

// Book returns the underlying ledger as a read-only snapshot source for the
// advisor service.
func (s *LedgerService) Book() *ledger.Ledger {
	return s.book
}

// ============================================================
// Accounts
// ============================================================

func (s *LedgerService) OpenAccount(ctx context.Context, name string, category domain.AccountCategory, initialBalance float64) (domain.Account, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.OpenAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.category", string(category)))

	acct, err := s.book.OpenAccount(name, category, initialBalance)
	if err != nil {
		return domain.Account{}, err
	}

	s.logger.Info("account opened",
		zap.String("account_id", acct.ID),
		zap.String("category", string(category)),
		zap.Float64("initial_balance", initialBalance),
	)
	return acct, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.GetAccount")
	defer span.End()

	acct, ok := s.book.GetAccount(id)
	if !ok {
		return domain.Account{}, &domain.ErrAccountNotFound{ID: id}
	}
	return acct, nil
}

func (s *LedgerService) ListAccounts(ctx context.Context) []domain.Account {
	_, span := ledgerTracer.Start(ctx, "LedgerService.ListAccounts")
	defer span.End()

	return s.book.ListAccounts()
}

func (s *LedgerService) GetTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.GetTransactions")
	defer span.End()

	txs, ok := s.book.Transactions(accountID)
	if !ok {
		return nil, &domain.ErrAccountNotFound{ID: accountID}
	}
	return txs, nil
}

func (s *LedgerService) RenameAccount(ctx context.Context, accountID, name string) (domain.Account, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.RenameAccount")
	defer span.End()

	if err := s.book.RenameAccount(accountID, name); err != nil {
		return domain.Account{}, err
	}
	acct, _ := s.book.GetAccount(accountID)
	return acct, nil
}

// ============================================================
// Mutating operations
// ============================================================

func (s *LedgerService) Deposit(ctx context.Context, accountID string, amount float64) (domain.Account, error) {
	return s.execute(ctx, "deposit", accountID, ledger.NewDeposit(accountID, amount))
}

func (s *LedgerService) Withdraw(ctx context.Context, accountID string, amount float64) (domain.Account, error) {
	return s.execute(ctx, "withdraw", accountID, ledger.NewWithdraw(accountID, amount))
}

// Transfer moves amount between two accounts and returns fresh snapshots of
// both. The two legs are atomic under the ledger's lock.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID string, amount float64) (from, to domain.Account, err error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.Transfer")
	defer span.End()

	start := time.Now()
	err = s.book.Execute(ledger.NewTransfer(fromID, toID, amount))
	s.metrics.RecordRequestDuration("transfer", time.Since(start))

	if err != nil {
		s.metrics.IncrOperation("transfer", "error")
		s.logger.Warn("transfer failed",
			zap.String("from_account_id", fromID),
			zap.String("to_account_id", toID),
			zap.Float64("amount", amount),
			zap.Error(err),
		)
		return domain.Account{}, domain.Account{}, err
	}

	s.metrics.IncrOperation("transfer", "success")
	s.logger.Info("transfer executed",
		zap.String("from_account_id", fromID),
		zap.String("to_account_id", toID),
		zap.Float64("amount", amount),
	)
	from, _ = s.book.GetAccount(fromID)
	to, _ = s.book.GetAccount(toID)
	return from, to, nil
}

// execute runs a single-account operation and returns the account's fresh
// snapshot on success.
func (s *LedgerService) execute(ctx context.Context, kind, accountID string, op ledger.Operation) (domain.Account, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService."+kind)
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	start := time.Now()
	err := s.book.Execute(op)
	s.metrics.RecordRequestDuration(kind, time.Since(start))

	if err != nil {
		s.metrics.IncrOperation(kind, "error")
		s.logger.Warn("operation failed",
			zap.String("kind", kind),
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return domain.Account{}, err
	}

	s.metrics.IncrOperation(kind, "success")
	s.logger.Info("operation executed",
		zap.String("kind", kind),
		zap.String("account_id", accountID),
	)
	acct, _ := s.book.GetAccount(accountID)
	return acct, nil
}

// ============================================================
// Undo / history / accrual
// ============================================================

// UndoLast reverses the most recently executed operation. A rejected undo
// leaves the history stack untouched.
func (s *LedgerService) UndoLast(ctx context.Context) (string, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.UndoLast")
	defer span.End()

	undone, err := s.book.UndoLast()
	if err != nil {
		s.metrics.IncrUndo("error")
		s.logger.Warn("undo failed", zap.Error(err))
		return "", err
	}

	s.metrics.IncrUndo("success")
	s.logger.Info("operation undone", zap.String("operation", undone))
	return undone, nil
}

func (s *LedgerService) History(ctx context.Context) []domain.HistoryEntry {
	_, span := ledgerTracer.Start(ctx, "LedgerService.History")
	defer span.End()

	return s.book.History()
}

// AccrueInterest runs bulk interest accrual over every account. Not
// undoable; the caller is expected to know this asymmetry.
func (s *LedgerService) AccrueInterest(ctx context.Context) []domain.InterestAccrual {
	_, span := ledgerTracer.Start(ctx, "LedgerService.AccrueInterest")
	defer span.End()

	start := time.Now()
	accruals := s.book.AccrueInterestForAll()
	s.metrics.RecordRequestDuration("accrue_interest", time.Since(start))

	var total float64
	for _, a := range accruals {
		total += a.Amount
	}
	s.metrics.AddInterestAccrued(total)
	s.logger.Info("interest accrued",
		zap.Int("accounts", len(accruals)),
		zap.Float64("total", total),
	)
	return accruals
}
