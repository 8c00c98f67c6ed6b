package fiscalyears

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/httpx"
	"github.com/grandlivre-erp/grandlivre-erp/internal/rbac"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// Handler wires fiscal year HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		rbac:      rbacMW,
	}
}

// MountRoutes registers fiscal year routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermReportsView, shared.PermFiscalClose)).Get("/", h.List)
	r.With(h.rbac.RequireAny(shared.PermFiscalClose)).Post("/", h.Create)
	r.With(h.rbac.RequireAny(shared.PermFiscalClose)).Post("/{id}/close", h.Close)
	r.With(h.rbac.RequireAny(shared.PermFiscalClose)).Post("/{id}/reopen", h.Reopen)
}

// List returns the organization's fiscal years.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	years, err := h.service.List(r.Context(), principal.OrganizationID)
	if err != nil {
		h.logger.Error("list fiscal years", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"fiscal_years": toViews(years)})
}

// Create registers a new fiscal year.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	in.OrgID = principal.OrganizationID
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	fy, err := h.service.Create(r.Context(), principal.UserID, in)
	if err != nil {
		h.logger.Warn("create fiscal year", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(fy))
}

// Close freezes a fiscal year.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "close", func(ctx *http.Request, p shared.Principal, id int64) error {
		return h.service.Close(ctx.Context(), p.OrganizationID, p.UserID, id)
	})
}

// Reopen lifts a fiscal year closure.
func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reopen", func(ctx *http.Request, p shared.Principal, id int64) error {
		return h.service.Reopen(ctx.Context(), p.OrganizationID, p.UserID, id)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(*http.Request, shared.Principal, int64) error) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year id")
		return
	}
	if err := fn(r, principal, id); err != nil {
		h.logger.Warn("fiscal year "+action, slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type fiscalYearView struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsClosed  bool   `json:"is_closed"`
	ClosedAt  string `json:"closed_at,omitempty"`
}

func toView(fy FiscalYear) fiscalYearView {
	v := fiscalYearView{
		ID:        fy.ID,
		Label:     fy.Label,
		StartDate: fy.StartDate.Format("2006-01-02"),
		EndDate:   fy.EndDate.Format("2006-01-02"),
		IsClosed:  fy.IsClosed,
	}
	if fy.ClosedAt != nil {
		v.ClosedAt = fy.ClosedAt.Format(time.RFC3339)
	}
	return v
}

func toViews(years []FiscalYear) []fiscalYearView {
	out := make([]fiscalYearView, 0, len(years))
	for _, fy := range years {
		out = append(out, toView(fy))
	}
	return out
}
