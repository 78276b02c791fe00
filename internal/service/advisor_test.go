package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quillbank/ledgerd/internal/domain"
	"github.com/quillbank/ledgerd/internal/infra/cache"
	"github.com/quillbank/ledgerd/internal/infra/observability"
	"github.com/quillbank/ledgerd/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockSnapshotSource struct {
	accounts     []domain.Account
	transactions map[string][]domain.Transaction
}

func (m *mockSnapshotSource) ListAccounts() []domain.Account {
	return m.accounts
}

func (m *mockSnapshotSource) Transactions(id string) ([]domain.Transaction, bool) {
	txs, ok := m.transactions[id]
	return txs, ok
}

type mockAdvisorCaller struct {
	response *domain.AdviceResponse
	err      error
	calls    int
}

func (m *mockAdvisorCaller) Advise(_ context.Context, _ *domain.AdviceRequest) (*domain.AdviceResponse, error) {
	m.calls++
	return m.response, m.err
}

func testSource() *mockSnapshotSource {
	return &mockSnapshotSource{
		accounts: []domain.Account{
			{ID: "acc-1", Name: "checking", Category: domain.CategoryChecking, Balance: 500},
			{ID: "acc-2", Name: "savings", Category: domain.CategorySavings, Balance: 1000},
		},
		transactions: map[string][]domain.Transaction{
			"acc-1": {{ID: "tx-1", AccountID: "acc-1", Kind: domain.KindDeposit, Amount: 500}},
			"acc-2": {{ID: "tx-2", AccountID: "acc-2", Kind: domain.KindDeposit, Amount: 1000}},
		},
	}
}

// --- Tests ---

func TestGetAdvice_Success(t *testing.T) {
	agent := &mockAdvisorCaller{
		response: &domain.AdviceResponse{
			Advice:     "Shift idle checking funds into savings.",
			Reasoning:  "Savings accrues interest, checking does not.",
			Confidence: 0.9,
			TokensUsed: domain.TokenUsage{PromptTokens: 400, CompletionTokens: 150, TotalTokens: 550},
		},
	}

	svc := service.NewAdvisor(
		testSource(),
		agent,
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		50,
	)

	result, err := svc.GetAdvice(context.Background(), "where should my money go?")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Fallback {
		t.Error("expected a live answer, got fallback")
	}
	if result.Advice != "Shift idle checking funds into savings." {
		t.Errorf("unexpected advice: %s", result.Advice)
	}
	if result.ID == "" {
		t.Error("expected a generated result id")
	}
}

func TestGetAdvice_AgentErrorServesFallback(t *testing.T) {
	svc := service.NewAdvisor(
		testSource(),
		&mockAdvisorCaller{err: errors.New("agent unavailable")},
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		50,
	)

	result, err := svc.GetAdvice(context.Background(), "test")
	if err != nil {
		t.Fatalf("agent failure must not surface as an error, got %v", err)
	}
	if !result.Fallback {
		t.Error("expected fallback flag set")
	}
	if result.Advice != domain.FallbackAdvice {
		t.Errorf("expected the fixed fallback advice, got '%s'", result.Advice)
	}
}

func TestGetAdvice_CacheHit(t *testing.T) {
	agent := &mockAdvisorCaller{
		response: &domain.AdviceResponse{Advice: "keep saving"},
	}

	svc := service.NewAdvisor(
		testSource(),
		agent,
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		50,
	)

	first, err := svc.GetAdvice(context.Background(), "same question")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.GetAdvice(context.Background(), "same question")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if agent.calls != 1 {
		t.Errorf("expected exactly one agent call, got %d", agent.calls)
	}
	if first.ID != second.ID {
		t.Error("expected the cached result to be returned verbatim")
	}
}

func TestGetAdvice_DistinctQuestionsMissCache(t *testing.T) {
	agent := &mockAdvisorCaller{
		response: &domain.AdviceResponse{Advice: "keep saving"},
	}

	svc := service.NewAdvisor(
		testSource(),
		agent,
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		50,
	)

	if _, err := svc.GetAdvice(context.Background(), "question one"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.GetAdvice(context.Background(), "question two"); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if agent.calls != 2 {
		t.Errorf("expected two agent calls, got %d", agent.calls)
	}
}

func TestGetAdvice_MissingTransactionsError(t *testing.T) {
	source := testSource()
	delete(source.transactions, "acc-2")

	svc := service.NewAdvisor(
		source,
		&mockAdvisorCaller{response: &domain.AdviceResponse{}},
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		50,
	)

	_, err := svc.GetAdvice(context.Background(), "test")
	var notFound *domain.ErrAccountNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestGetAdvice_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	svc := service.NewAdvisor(
		testSource(),
		&mockAdvisorCaller{response: &domain.AdviceResponse{}},
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		50,
	)

	_, err := svc.GetAdvice(ctx, "test")
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

func TestGetAdvice_RecentTransactionLimit(t *testing.T) {
	source := testSource()
	var long []domain.Transaction
	for i := 0; i < 30; i++ {
		long = append(long, domain.Transaction{ID: "tx", AccountID: "acc-1", Kind: domain.KindDeposit, Amount: 1})
	}
	source.transactions["acc-1"] = long

	var captured *domain.AdviceRequest
	agent := &capturingCaller{response: &domain.AdviceResponse{Advice: "ok"}, captured: &captured}

	svc := service.NewAdvisor(
		source,
		agent,
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		10,
	)

	if _, err := svc.GetAdvice(context.Background(), "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured == nil {
		t.Fatal("agent was not called")
	}
	if len(captured.Transactions) != 10 {
		t.Errorf("expected payload clipped to 10 transactions, got %d", len(captured.Transactions))
	}
}

type capturingCaller struct {
	response *domain.AdviceResponse
	captured **domain.AdviceRequest
}

func (c *capturingCaller) Advise(_ context.Context, req *domain.AdviceRequest) (*domain.AdviceResponse, error) {
	*c.captured = req
	return c.response, nil
}
