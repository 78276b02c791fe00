package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/quillbank/ledgerd/internal/domain"
	"github.com/quillbank/ledgerd/internal/infra/observability"
	"github.com/quillbank/ledgerd/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/advisor")

// Advisor orchestrates the AI advisory call: it gathers read-only ledger
// snapshots, consults the cache, and invokes the external agent. The agent
// has no write access; when it is unavailable the fixed fallback advice is
// returned instead of an error, so advisory failures never surface as
// ledger failures.
type Advisor struct {
	source        port.SnapshotSource
	agent         port.AdvisorCaller
	cache         port.Cache[any]
	metrics       *observability.Metrics
	logger        *zap.Logger
	recentTxLimit int
}

// NewAdvisor creates the advisor service with all dependencies injected.
func NewAdvisor(
	source port.SnapshotSource,
	agent port.AdvisorCaller,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
	recentTxLimit int,
) *Advisor {
	if recentTxLimit <= 0 {
		recentTxLimit = 50
	}
	return &Advisor{
		source:        source,
		agent:         agent,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		recentTxLimit: recentTxLimit,
	}
}

// GetAdvice builds the snapshot payload and asks the agent for advice.
func (a *Advisor) GetAdvice(ctx context.Context, question string) (*domain.AdviceResult, error) {
	// Bail out early if the caller already cancelled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Advisor.GetAdvice")
	defer span.End()

	start := time.Now()
	defer func() {
		a.metrics.RecordRequestDuration("advice", time.Since(start))
	}()

	// --- Step 1: Gather read-only snapshots ---
	accounts := a.source.ListAccounts()

	cacheKey := a.cacheKey(question, accounts)
	if cached, ok := a.cache.Get(cacheKey); ok {
		if result, ok := cached.(*domain.AdviceResult); ok {
			a.metrics.IncrCacheHit("advice")
			return result, nil
		}
	}
	a.metrics.IncrCacheMiss("advice")

	transactions, err := a.gatherRecentTransactions(ctx, accounts)
	if err != nil {
		return nil, err
	}

	// --- Step 2: Call the agent ---
	resp, err := a.agent.Advise(ctx, &domain.AdviceRequest{
		Accounts:     accounts,
		Transactions: transactions,
		Question:     question,
	})
	if err != nil {
		a.logger.Warn("advisor agent unavailable, serving fallback", zap.Error(err))
		a.metrics.IncrExternalError("advisor")
		a.metrics.IncrAdviceRequest("fallback")
		return &domain.AdviceResult{
			ID:          uuid.New().String(),
			Advice:      domain.FallbackAdvice,
			Fallback:    true,
			GeneratedAt: time.Now(),
		}, nil
	}

	// --- Step 3: Record usage and cache ---
	a.metrics.RecordTokens(resp.TokensUsed.PromptTokens, resp.TokensUsed.CompletionTokens)
	a.metrics.IncrAdviceRequest("success")

	result := &domain.AdviceResult{
		ID:          uuid.New().String(),
		Advice:      resp.Advice,
		GeneratedAt: time.Now(),
	}
	a.cache.Set(cacheKey, result)
	return result, nil
}

// GetAdvisorMetrics returns the advisor usage snapshot.
func (a *Advisor) GetAdvisorMetrics() *domain.AdvisorMetrics {
	return a.metrics.GetAdvisorSnapshot()
}

// gatherRecentTransactions collects each account's log concurrently and
// keeps the most recent entries up to the configured limit.
func (a *Advisor) gatherRecentTransactions(ctx context.Context, accounts []domain.Account) ([]domain.Transaction, error) {
	perAccount := make([][]domain.Transaction, len(accounts))

	g, _ := errgroup.WithContext(ctx)
	for i, acct := range accounts {
		i, acct := i, acct
		g.Go(func() error {
			txs, ok := a.source.Transactions(acct.ID)
			if !ok {
				// The account registry is append-only, so a vanished id
				// means the caller raced a different ledger instance.
				return &domain.ErrAccountNotFound{ID: acct.ID}
			}
			perAccount[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.Transaction
	for _, txs := range perAccount {
		all = append(all, txs...)
	}
	if len(all) > a.recentTxLimit {
		all = all[len(all)-a.recentTxLimit:]
	}
	return all, nil
}

// cacheKey fingerprints the question and current balances, so advice is
// reused only while no balance has changed.
func (a *Advisor) cacheKey(question string, accounts []domain.Account) string {
	h := fnv.New64a()
	fmt.Fprint(h, question)
	for _, acct := range accounts {
		fmt.Fprintf(h, "|%s:%.2f", acct.ID, acct.Balance)
	}
	return fmt.Sprintf("advice:%x", h.Sum64())
}
