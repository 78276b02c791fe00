// Package client holds HTTP clients for external collaborators.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/quillbank/ledgerd/internal/domain"
	"github.com/quillbank/ledgerd/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// AdvisorClient calls the external AI advisor agent.
type AdvisorClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
}

// NewAdvisorClient creates a new AdvisorClient. The bulkhead caps in-flight
// agent calls at cfg.MaxConcurrency.
func NewAdvisorClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *AdvisorClient {
	return &AdvisorClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
	}
}

// Advise sends the read-only ledger snapshots to the agent and returns its
// generated advice, with retry, circuit breaker, and tracing.
func (c *AdvisorClient) Advise(ctx context.Context, req *domain.AdviceRequest) (*domain.AdviceResponse, error) {
	ctx, span := tracer.Start(ctx, "AdvisorClient.Advise")
	defer span.End()
	span.SetAttributes(attribute.Int("accounts.count", len(req.Accounts)))

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrExternalService{Service: "advisor", Err: err}
	}
	defer c.bulkhead.Release()

	var adviceResp domain.AdviceResponse

	result, err := c.cb.Execute(func() (any, error) {
		var innerErr error
		innerErr = resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(req)
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/advisor/invoke", c.baseURL)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("advisor API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&adviceResp)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &adviceResp, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "advisor", Err: err}
	}

	return result.(*domain.AdviceResponse), nil
}
