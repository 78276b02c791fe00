// Package port defines the interfaces (ports) for external dependencies.
// They decouple the service layer from concrete implementations, and make
// the advisor agent trivially mockable in tests.
package port

import (
	"context"

	"github.com/quillbank/ledgerd/internal/domain"
)

// SnapshotSource is the read-only view of the ledger handed to the advisor
// service: account snapshots plus per-account transaction copies, nothing
// mutable.
type SnapshotSource interface {
	ListAccounts() []domain.Account
	Transactions(id string) ([]domain.Transaction, bool)
}

// AdvisorCaller invokes the external AI advisor agent. The agent only ever
// sees read-only snapshots; it has no path back into ledger state.
type AdvisorCaller interface {
	Advise(ctx context.Context, req *domain.AdviceRequest) (*domain.AdviceResponse, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
