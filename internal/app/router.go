package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/accounts"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/fec"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/fiscalyears"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/journals"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/ledger"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/reports"
	"github.com/grandlivre-erp/grandlivre-erp/internal/observability"
	"github.com/grandlivre-erp/grandlivre-erp/internal/organizations"
	"github.com/grandlivre-erp/grandlivre-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AccountsHandler    *accounts.Handler
	FiscalYearsHandler *fiscalyears.Handler
	JournalsHandler    *journals.Handler
	LedgerHandler      *ledger.Handler
	ReportsHandler     *reports.Handler
	FECHandler         *fec.Handler
	OrgHandler         *organizations.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.AccountsHandler != nil {
		r.Route("/accounting/accounts", params.AccountsHandler.MountRoutes)
	}
	if params.FiscalYearsHandler != nil {
		r.Route("/accounting/fiscal-years", params.FiscalYearsHandler.MountRoutes)
	}
	if params.JournalsHandler != nil {
		r.Route("/accounting/journals", params.JournalsHandler.MountRoutes)
	}
	if params.LedgerHandler != nil {
		r.Route("/accounting/ledger", params.LedgerHandler.MountRoutes)
	}
	if params.ReportsHandler != nil {
		r.Route("/accounting/reports", params.ReportsHandler.MountRoutes)
	}
	if params.FECHandler != nil {
		r.Route("/accounting/fec", params.FECHandler.MountRoutes)
	}
	if params.OrgHandler != nil {
		r.Route("/organizations", params.OrgHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
