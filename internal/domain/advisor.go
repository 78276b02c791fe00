package domain

import "time"

// ============================================================
// AI Advisor (external text-generation collaborator)
// ============================================================

// FallbackAdvice is returned whenever the advisor agent is unavailable.
// The advisor has read-only access: it never influences ledger state, so
// failures degrade to this fixed string rather than an error.
const FallbackAdvice = "Financial advice is temporarily unavailable. " +
	"Your accounts and transactions are unaffected; please try again later."

// AdviceRequest is the payload sent to the advisor agent. It carries only
// read-only snapshots of the ledger.
type AdviceRequest struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	Question     string        `json:"question,omitempty"`
}

// AdviceResponse is the advisor agent's answer.
type AdviceResponse struct {
	Advice     string     `json:"advice"`
	Reasoning  string     `json:"reasoning,omitempty"`
	Confidence float64    `json:"confidence"`
	TokensUsed TokenUsage `json:"tokens_used"`
}

// TokenUsage tracks LLM token consumption for one advisor call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AdviceResult is what the advisor service hands to the presentation layer.
// Fallback is true when the fixed fallback string was substituted.
type AdviceResult struct {
	ID          string    `json:"id"`
	Advice      string    `json:"advice"`
	Fallback    bool      `json:"fallback"`
	GeneratedAt time.Time `json:"generated_at"`
}

// AdvisorMetrics is the usage snapshot served by GET /v1/metrics/advisor.
type AdvisorMetrics struct {
	TotalRequests       int64   `json:"total_requests"`
	ErrorRate           float64 `json:"error_rate"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
	EstimatedCostUsd    float64 `json:"estimated_cost_usd"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	Period              string  `json:"period"`
}
