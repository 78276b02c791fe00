package handler

import (
	"net/http"
	"time"

	"github.com/quillbank/ledgerd/internal/infra/observability"
	"github.com/quillbank/ledgerd/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Every mutating route maps 1:1 onto a ledger entry point; callers re-fetch
// snapshots after each call.
func NewRouter(ledgerSvc *service.LedgerService, advisorSvc *service.Advisor, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(ledgerSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Accounts
		r.Post("/accounts", openAccountHandler(ledgerSvc, logger))
		r.Get("/accounts", listAccountsHandler(ledgerSvc, logger))
		r.Get("/accounts/{accountId}", getAccountHandler(ledgerSvc, logger))
		r.Patch("/accounts/{accountId}", renameAccountHandler(ledgerSvc, logger))
		r.Get("/accounts/{accountId}/transactions", getTransactionsHandler(ledgerSvc, logger))

		// Mutating operations
		r.Post("/accounts/{accountId}/deposit", depositHandler(ledgerSvc, logger))
		r.Post("/accounts/{accountId}/withdraw", withdrawHandler(ledgerSvc, logger))
		r.Post("/transfers", transferHandler(ledgerSvc, logger))

		// Undo / history
		r.Post("/undo", undoHandler(ledgerSvc, logger))
		r.Get("/history", historyHandler(ledgerSvc, logger))

		// Interest
		r.Post("/interest/accrual", accrueInterestHandler(ledgerSvc, logger))

		// AI advisory
		r.Post("/advice", adviceHandler(advisorSvc, logger))
		r.Get("/metrics/advisor", advisorMetricsHandler(metrics, logger))
	})

	return r
}

func healthzHandler(ledgerSvc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		}
		if ledgerSvc != nil {
			status["accounts"] = len(ledgerSvc.ListAccounts(r.Context()))
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The ledger is in-memory; once the process is up it is ready.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
