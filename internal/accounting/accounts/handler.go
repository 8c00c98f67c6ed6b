package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/httpx"
	"github.com/grandlivre-erp/grandlivre-erp/internal/rbac"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// Handler wires chart-of-accounts HTTP endpoints.
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

// MountRoutes registers chart-of-accounts routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermCoaView, shared.PermCoaEdit)).Get("/", h.List)
	r.With(h.rbac.RequireAny(shared.PermCoaView, shared.PermCoaEdit)).Get("/classes", h.ListByClass)
	r.With(h.rbac.RequireAny(shared.PermCoaView, shared.PermCoaEdit)).Get("/tree", h.Tree)
	r.With(h.rbac.RequireAny(shared.PermCoaEdit)).Post("/", h.Create)
	r.With(h.rbac.RequireAny(shared.PermCoaEdit)).Post("/seed", h.Seed)
	r.With(h.rbac.RequireAny(shared.PermCoaEdit)).Delete("/{id}", h.Delete)
}

// Seed installs the default PCG chart for the organization. Existing
// accounts are left untouched, so reseeding is safe.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	if err := h.service.SeedDefaults(r.Context(), principal.OrganizationID, principal.UserID); err != nil {
		h.logger.Error("seed chart", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List returns all accounts of the caller's organization.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	accounts, err := h.service.List(r.Context(), principal.OrganizationID)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": toViews(accounts)})
}

// ListByClass returns accounts grouped into the 8 PCG classes.
func (h *Handler) ListByClass(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	accounts, err := h.service.List(r.Context(), principal.OrganizationID)
	if err != nil {
		h.logger.Error("group accounts", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	groups := GroupByClass(accounts)
	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, map[string]any{
			"class":    g.Class,
			"label":    g.Label,
			"accounts": toViews(g.Accounts),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"classes": out})
}

// Tree returns the account hierarchy with orphaned parent references.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	accounts, err := h.service.List(r.Context(), principal.OrganizationID)
	if err != nil {
		h.logger.Error("account tree", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	tree := BuildTree(accounts)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"roots":   toTreeViews(tree.Roots),
		"orphans": tree.Orphans,
	})
}

// Create inserts a new account.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	var in CreateAccountInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	in.OrgID = principal.OrganizationID
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), principal.UserID, in)
	if err != nil {
		h.logger.Warn("create account", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(account))
}

// Delete removes (or deactivates) an account.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	if err := h.service.Delete(r.Context(), principal.OrganizationID, principal.UserID, id); err != nil {
		h.logger.Warn("delete account", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type accountView struct {
	ID           int64   `json:"id"`
	Number       string  `json:"number"`
	Name         string  `json:"name"`
	Class        int     `json:"class"`
	Type         string  `json:"type"`
	ParentNumber *string `json:"parent_number,omitempty"`
	IsSystem     bool    `json:"is_system"`
	IsActive     bool    `json:"is_active"`
}

func toView(a Account) accountView {
	return accountView{
		ID:           a.ID,
		Number:       a.Number,
		Name:         a.Name,
		Class:        a.Class,
		Type:         string(a.Type),
		ParentNumber: a.ParentNumber,
		IsSystem:     a.IsSystem,
		IsActive:     a.IsActive,
	}
}

func toViews(accounts []Account) []accountView {
	out := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toView(a))
	}
	return out
}

type treeView struct {
	accountView
	Children []treeView `json:"children,omitempty"`
}

func toTreeViews(nodes []*TreeNode) []treeView {
	out := make([]treeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, treeView{
			accountView: toView(n.Account),
			Children:    toTreeViews(n.Children),
		})
	}
	return out
}
