package organizations

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/httpx"
)

// Handler wires organization registry endpoints. These sit outside the
// tenant scope: creation happens before a principal has an organization.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers organization routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
}

type createInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	SIREN string `json:"siren" validate:"required,len=9,numeric"`
}

// Create registers a new organization.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	org, err := h.service.Create(r.Context(), in.Name, in.SIREN)
	if err != nil {
		h.logger.Warn("create organization", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(org))
}

// Get fetches one organization.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid organization id")
		return
	}
	org, err := h.service.Get(r.Context(), id)
	if err != nil {
		acctshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(org))
}

type organizationView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SIREN     string `json:"siren"`
	CreatedAt string `json:"created_at"`
}

func toView(org Organization) organizationView {
	return organizationView{
		ID:        org.ID,
		Name:      org.Name,
		SIREN:     org.SIREN,
		CreatedAt: org.CreatedAt.Format(time.RFC3339),
	}
}
