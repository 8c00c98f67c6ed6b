package fec

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/httpx"
	"github.com/grandlivre-erp/grandlivre-erp/internal/rbac"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// Handler wires the FEC export endpoint.
type Handler struct {
	logger          *slog.Logger
	service         *Service
	rbac            rbac.Middleware
	defaultEncoding Encoding
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware, defaultEncoding Encoding) *Handler {
	if defaultEncoding == "" {
		defaultEncoding = EncodingUTF8
	}
	return &Handler{logger: logger, service: service, rbac: rbacMW, defaultEncoding: defaultEncoding}
}

// MountRoutes registers FEC routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.PermFECExport)).Get("/{fiscalYearID}", h.Export)
}

// Export streams the file for the requested fiscal year.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	fiscalYearID, err := strconv.ParseInt(chi.URLParam(r, "fiscalYearID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid fiscal year id")
		return
	}
	enc := h.defaultEncoding
	if v := r.URL.Query().Get("encoding"); v != "" {
		enc, err = ParseEncoding(v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
	}

	// The filename depends on lookups inside the service, so buffer headers
	// until the export is known to start cleanly.
	recorder := &exportRecorder{}
	export, err := h.service.ExportYear(r.Context(), principal.OrganizationID, principal.UserID, fiscalYearID, enc, recorder)
	if err != nil {
		h.logger.Warn("fec export", slog.Any("error", err))
		acctshared.RespondError(w, err)
		return
	}

	contentType := "text/plain; charset=utf-8"
	if enc == EncodingLatin9 {
		contentType = "text/plain; charset=iso-8859-15"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(recorder.buf)))
	_, _ = w.Write(recorder.buf)
}

type exportRecorder struct {
	buf []byte
}

func (r *exportRecorder) Write(p []byte) (int, error) {
	r.buf = append(r.buf, p...)
	return len(p), nil
}
