package ledger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/httpx"
	"github.com/grandlivre-erp/grandlivre-erp/internal/rbac"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// Handler wires ledger HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermReportsView)).Get("/general", h.GeneralLedger)
	r.With(h.rbac.RequireAny(shared.PermReportsView)).Get("/trial-balance", h.TrialBalance)
}

// GeneralLedger returns per-account movements with running balances.
func (h *Handler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
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
	gl, err := h.service.GeneralLedger(r.Context(), principal.OrganizationID, from, to)
	if err != nil {
		h.logger.Error("general ledger", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	if account := r.URL.Query().Get("account"); account != "" {
		gl = filterAccount(gl, account)
	}
	httpx.JSON(w, http.StatusOK, toGeneralLedgerView(gl))
}

// TrialBalance returns the aggregated balance per account.
func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
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
	tb, err := h.service.TrialBalance(r.Context(), principal.OrganizationID, from, to)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTrialBalanceView(tb))
}

// filterAccount narrows a built ledger to a single account. Filtering happens
// after the cached build so the cache key does not vary per account.
func filterAccount(gl GeneralLedger, number string) GeneralLedger {
	out := gl
	out.Accounts = nil
	for _, al := range gl.Accounts {
		if al.AccountNumber == number {
			out.Accounts = []AccountLedger{al}
			break
		}
	}
	return out
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

type ledgerLineView struct {
	EntryNumber int64   `json:"entry_number"`
	EntryDate   string  `json:"entry_date"`
	Journal     string  `json:"journal"`
	Label       string  `json:"label,omitempty"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	Running     float64 `json:"running_balance"`
}

type accountLedgerView struct {
	AccountNumber string           `json:"account_number"`
	AccountName   string           `json:"account_name"`
	PriorBalance  float64          `json:"prior_balance"`
	Lines         []ledgerLineView `json:"lines"`
	TotalDebit    float64          `json:"total_debit"`
	TotalCredit   float64          `json:"total_credit"`
	EndBalance    float64          `json:"end_balance"`
}

func toGeneralLedgerView(gl GeneralLedger) map[string]any {
	accounts := make([]accountLedgerView, 0, len(gl.Accounts))
	for _, al := range gl.Accounts {
		view := accountLedgerView{
			AccountNumber: al.AccountNumber,
			AccountName:   al.AccountName,
			PriorBalance:  al.PriorBalance,
			TotalDebit:    al.TotalDebit,
			TotalCredit:   al.TotalCredit,
			EndBalance:    al.EndBalance,
			Lines:         make([]ledgerLineView, 0, len(al.Lines)),
		}
		for _, l := range al.Lines {
			view.Lines = append(view.Lines, ledgerLineView{
				EntryNumber: l.EntryNumber,
				EntryDate:   l.EntryDate.Format("2006-01-02"),
				Journal:     l.Journal,
				Label:       l.Label,
				Debit:       l.Debit,
				Credit:      l.Credit,
				Running:     l.Running,
			})
		}
		accounts = append(accounts, view)
	}
	return map[string]any{
		"date_from": rangeToken(gl.From),
		"date_to":   rangeToken(gl.To),
		"accounts":  accounts,
	}
}

type trialBalanceRowView struct {
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
	Class         int     `json:"class"`
	TotalDebit    float64 `json:"total_debit"`
	TotalCredit   float64 `json:"total_credit"`
	SoldeDebit    float64 `json:"solde_debit"`
	SoldeCredit   float64 `json:"solde_credit"`
}

func toTrialBalanceView(tb TrialBalance) map[string]any {
	rows := make([]trialBalanceRowView, 0, len(tb.Rows))
	for _, row := range tb.Rows {
		rows = append(rows, trialBalanceRowView{
			AccountNumber: row.AccountNumber,
			AccountName:   row.AccountName,
			Class:         row.Class,
			TotalDebit:    row.TotalDebit,
			TotalCredit:   row.TotalCredit,
			SoldeDebit:    row.SoldeDebit,
			SoldeCredit:   row.SoldeCredit,
		})
	}
	return map[string]any{
		"date_from":          rangeToken(tb.From),
		"date_to":            rangeToken(tb.To),
		"rows":               rows,
		"total_debit":        tb.TotalDebit,
		"total_credit":       tb.TotalCredit,
		"total_solde_debit":  tb.TotalSoldeDebit,
		"total_solde_credit": tb.TotalSoldeCredit,
		"balanced":           CheckBalanced(tb),
	}
}
