package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quillbank/ledgerd/internal/infra/observability"
	"github.com/quillbank/ledgerd/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// AI Advisory — POST /v1/advice
// ============================================================

func adviceHandler(svc *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/advice")
		defer span.End()

		var req struct {
			Question string `json:"question,omitempty"`
		}
		// An empty body means "general advice"; only malformed JSON is rejected.
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		result, err := svc.GetAdvice(ctx, req.Question)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func advisorMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/advisor")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetAdvisorSnapshot())
	}
}
