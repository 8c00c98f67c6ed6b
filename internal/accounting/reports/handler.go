package reports

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/ledger"
	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/httpx"
	"github.com/grandlivre-erp/grandlivre-erp/internal/rbac"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// TrialBalanceSource provides the aggregated balance the statements build on.
type TrialBalanceSource interface {
	TrialBalance(ctx context.Context, orgID int64, from, to *time.Time) (ledger.TrialBalance, error)
}

// Handler wires financial statement HTTP endpoints.
type Handler struct {
	logger *slog.Logger
	ledger TrialBalanceSource
	rbac   rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, source TrialBalanceSource, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, ledger: source, rbac: rbacMW}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermReportsView)).Get("/balance-sheet", h.BalanceSheet)
	r.With(h.rbac.RequireAny(shared.PermReportsView)).Get("/income-statement", h.IncomeStatement)
	r.With(h.rbac.RequireAny(shared.PermReportsView)).Get("/vat", h.VAT)
}

// BalanceSheet returns the bilan for the range.
func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	h.statement(w, r, "balance sheet", func(tb ledger.TrialBalance) any {
		return BuildBalanceSheet(tb)
	})
}

// IncomeStatement returns the compte de résultat for the range.
func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	h.statement(w, r, "income statement", func(tb ledger.TrialBalance) any {
		return BuildIncomeStatement(tb)
	})
}

// VAT returns the VAT declaration summary for the range.
func (h *Handler) VAT(w http.ResponseWriter, r *http.Request) {
	h.statement(w, r, "vat summary", func(tb ledger.TrialBalance) any {
		return BuildVATSummary(tb)
	})
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request, name string, build func(ledger.TrialBalance) any) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tb, err := h.ledger.TrialBalance(r.Context(), principal.OrganizationID, from, to)
	if err != nil {
		h.logger.Error(name, slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, build(tb))
}

func parseRange(r *http.Request) (*time.Time, *time.Time, error) {
	q := r.URL.Query()
	var from, to *time.Time
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}
